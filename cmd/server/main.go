package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"vigil/internal/audit"
	"vigil/internal/export"
	"vigil/internal/platform/config"
	"vigil/internal/platform/httpserver"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/metrics"
	"vigil/internal/platform/middleware"
	"vigil/internal/platform/postgres"
	"vigil/internal/platform/redis"
	"vigil/internal/screening/handler"
	"vigil/internal/screening/index"
	"vigil/internal/screening/service"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var idx index.Index
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		idx = index.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory index")
		idx = index.NewMemory()
	}

	cache, err := redis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	var auditStore audit.Store
	if len(cfg.KafkaBrokers) > 0 {
		kafkaStore, err := audit.NewKafkaStore(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
	} else {
		log.Warn("KAFKA_BROKERS not set, keeping audit trail in memory")
		auditStore = audit.NewMemoryStore()
	}
	inbox := make(chan audit.Event, 256)
	worker := audit.NewWorker(auditStore, inbox, log)
	publisher := audit.NewPublisher(inbox, log)

	exporter, err := export.NewExcelWriter(cfg.FileLocation, log)
	if err != nil {
		return err
	}

	svc := service.New(log, idx, exporter, cfg.DownloadURL, cfg.DetailURL,
		service.WithCache(cache),
		service.WithMetrics(m),
		service.WithAudit(publisher),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Mount("/search", handler.New(svc, exporter, log).Routes())

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
