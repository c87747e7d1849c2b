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

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	"github.com/BruksfildServices01/agenda-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/agenda-scheduler/internal/db"
	"github.com/BruksfildServices01/agenda-scheduler/internal/events"
	infraRepo "github.com/BruksfildServices01/agenda-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/agenda-scheduler/internal/jobs"
	"github.com/BruksfildServices01/agenda-scheduler/internal/logging"
	"github.com/BruksfildServices01/agenda-scheduler/internal/media"
	"github.com/BruksfildServices01/agenda-scheduler/internal/routes"
	"github.com/BruksfildServices01/agenda-scheduler/internal/telemetry"
	"github.com/BruksfildServices01/agenda-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/agenda-scheduler/internal/usecase/appointment"
)

func main() {
	cfg := config.Load()
	logger := logging.New(telemetry.ServiceName, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timezone.SetDefault(cfg.DefaultTimezone)

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return err
	}

	// ======================================================
	// OPTIONAL INFRA
	// ======================================================
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting fails open", "err", err)
		}
		defer rdb.Close()
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	}

	var store media.Store
	if cfg.StorageEnabled() {
		store = media.NewS3Store(cfg)
	}

	dispatcher := audit.NewDispatcher(audit.New(db), logger)

	// ======================================================
	// JOBS
	// ======================================================
	completeElapsed := ucAppointment.NewCompleteElapsed(
		infraRepo.NewAppointmentGormRepository(db),
		dispatcher,
		publisher,
		logger,
	)

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.Register("complete_elapsed_appointments", cfg.CompletionSchedule, completeElapsed); err != nil {
		return err
	}
	scheduler.Start()

	// ======================================================
	// HTTP
	// ======================================================
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		DB:        db,
		Config:    cfg,
		Logger:    logger,
		Audit:     dispatcher,
		Publisher: publisher,
		Redis:     rdb,
		Store:     store,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(r, telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	scheduler.Stop(shutdownCtx)
	dispatcher.Close()
	if err := publisher.Close(); err != nil {
		logger.Error("close publisher", "err", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("flush traces", "err", err)
	}

	return nil
}
