package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"inscricao/internal/address"
	"inscricao/internal/audit"
	"inscricao/internal/eligibility"
	"inscricao/internal/enrollment/handler"
	"inscricao/internal/enrollment/service"
	"inscricao/internal/enrollment/store"
	"inscricao/internal/platform/config"
	"inscricao/internal/platform/httpserver"
	"inscricao/internal/platform/logger"
	"inscricao/internal/platform/metrics"
	"inscricao/internal/platform/middleware"
	platformredis "inscricao/internal/platform/redis"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	txStore, closeDB, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("store init failed", "error", err.Error())
		return
	}
	defer closeDB()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err.Error())
		return
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	inbox := make(chan audit.Event, 256)
	publisher := audit.NewPublisher(inbox, log)
	var sink audit.Sink
	if cfg.KafkaBrokers != "" {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka init failed", "error", err.Error())
			return
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	}
	worker := audit.NewWorker(inbox, sink, log)

	checkService := eligibility.NewService(txStore, m)
	submitService := service.NewService(txStore, m, publisher, cfg.EventKey)

	opts := []handler.Option{
		handler.WithAddressLookup(address.NewClient(cfg.CEPBaseURL, nil)),
	}
	if redisClient != nil {
		opts = append(opts, handler.WithRateLimiter(
			middleware.RateLimit(redisClient.Client, 30, time.Minute, log),
		))
	}
	h := handler.New(checkService, submitService, log, m, opts...)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h.Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting inscricao", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err.Error())
	}
}

// buildStore connects to PostgreSQL when DATABASE_URL is set and falls back
// to the in-memory store for local runs without one.
func buildStore(ctx context.Context, cfg config.Server) (store.TxStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemory(), func() {}, nil
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	pg := store.NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, func() { db.Close() }, nil
}
