package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inscricao/internal/platform/metrics"
)

// Latency records per-route request duration. Must run inside a chi router so
// the route pattern is resolved by the time the handler returns.
func Latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			m.ObserveRequest(route, time.Since(start).Seconds())
		})
	}
}
