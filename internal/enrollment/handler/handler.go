// Package handler is the thin HTTP layer over the eligibility and submission
// services. It owns decoding, error translation, and nothing else.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inscricao/internal/address"
	"inscricao/internal/eligibility"
	"inscricao/internal/enrollment/models"
	"inscricao/internal/platform/metrics"
	"inscricao/internal/platform/middleware"
	"inscricao/pkg/cpf"
	dErrors "inscricao/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mock_services.go -package=mocks

// CheckService answers eligibility queries for the pre-submission check.
type CheckService interface {
	Check(ctx context.Context, rawCPF string) (eligibility.Verdict, error)
}

// SubmitService runs the authoritative submission pipeline.
type SubmitService interface {
	Submit(ctx context.Context, req *models.SubmissionRequest) (*models.Enrollment, error)
}

// AddressLookup resolves postal codes for the address autofill proxy route.
type AddressLookup interface {
	Lookup(ctx context.Context, cep string) (address.Address, error)
}

// Handler handles the public registration endpoints.
type Handler struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	check   CheckService
	submit  SubmitService
	address AddressLookup
	limiter func(http.Handler) http.Handler
}

// Option configures the Handler.
type Option func(*Handler)

// WithRateLimiter installs a rate-limiting middleware on the public routes.
func WithRateLimiter(limiter func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.limiter = limiter }
}

// WithAddressLookup enables the CEP autofill proxy route.
func WithAddressLookup(lookup AddressLookup) Option {
	return func(h *Handler) { h.address = lookup }
}

// New creates the registration Handler.
func New(check CheckService, submit SubmitService, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Handler {
	h := &Handler{
		logger:  logger,
		metrics: m,
		check:   check,
		submit:  submit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the registration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))
	if h.limiter != nil {
		router.Use(h.limiter)
	}
	router.Get("/check-cpf", h.handleCheckCPF)
	router.Post("/submit-inscricao", h.handleSubmitInscricao)
	router.Post("/enroll", h.handleEnroll)
	if h.address != nil {
		router.Get("/cep/{cep}", h.handleCEP)
	}

	r.Mount("/", router)
}

// handleCheckCPF serves the advisory pre-submission check consumed by the
// wizard's debounced validator.
func (h *Handler) handleCheckCPF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := r.URL.Query().Get("cpf")
	if len(cpf.Normalize(raw)) != 11 {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "cpf invalid"))
		return
	}

	verdict, err := h.check.Check(ctx, raw)
	if err != nil {
		h.logger.ErrorContext(ctx, "cpf check failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.CheckResponse{
		Exists:       verdict.Exists,
		Person:       verdict.Person,
		Participated: verdict.Participated,
	})
}

// handleCEP proxies the postal-code lookup so the form never calls the
// upstream API from the browser.
func (h *Handler) handleCEP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, err := h.address.Lookup(ctx, chi.URLParam(r, "cep"))
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeInvalidInput) && !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.WarnContext(ctx, "cep lookup failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *Handler) handleSubmitInscricao(w http.ResponseWriter, r *http.Request) {
	var req models.SubmissionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	enrollment, ok := h.runSubmit(w, r, &req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, models.SubmitResponse{OK: true, Data: enrollment})
}

// handleEnroll is the legacy enrollment endpoint. It still takes the original
// cpf/personal/finance/terms envelope and answers with the older response
// shape; the pipeline behind it is the same.
func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var legacy models.LegacyEnrollRequest
	if !h.decodeBody(w, r, &legacy) {
		return
	}
	enrollment, ok := h.runSubmit(w, r, legacy.ToSubmission())
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, models.EnrollResponse{Success: true, Enrollment: enrollment})
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid submission body",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

func (h *Handler) runSubmit(w http.ResponseWriter, r *http.Request, req *models.SubmissionRequest) (*models.Enrollment, bool) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	enrollment, err := h.submit.Submit(ctx, req)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInvalidInput) || dErrors.Is(err, dErrors.CodeConflict) {
			h.logger.WarnContext(ctx, "submission rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
		} else {
			h.logger.ErrorContext(ctx, "submission failed",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		writeError(w, err)
		return nil, false
	}
	return enrollment, true
}

// writeError centralizes domain error translation to HTTP responses so every
// endpoint shares one JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(dErrors.CodeOf(err))
	writeJSON(w, status, models.ErrorResponse{Error: dErrors.Message(err)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
