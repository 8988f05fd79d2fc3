package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/physiotrack/clinic-api/internal/config"
	"github.com/physiotrack/clinic-api/internal/email"
	"github.com/physiotrack/clinic-api/internal/handler/health"
	promHandler "github.com/physiotrack/clinic-api/internal/handler/prometheus"
	"github.com/physiotrack/clinic-api/internal/middleware"
	"github.com/physiotrack/clinic-api/internal/repository/postgres"
	"github.com/physiotrack/clinic-api/internal/service/backup"
	"github.com/physiotrack/clinic-api/internal/service/notification"
	cleanup "github.com/physiotrack/clinic-api/internal/worker"
	"github.com/physiotrack/clinic-api/pkg/logger"
	"github.com/physiotrack/clinic-api/pkg/messaging/redis"
	"github.com/physiotrack/clinic-api/pkg/metrics"
	"github.com/physiotrack/clinic-api/pkg/worker"
)

func setupHealthServer(port int, db health.Pinger, reg *prometheus.Registry, log *logger.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.Recovery())

	health.NewHandler(db).RegisterRoutes(&engine.RouterGroup)
	engine.GET("/metrics", promHandler.New("worker", reg, reg).Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "Health check server failed")
		}
	}()
	return srv
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Log.Console,
	}).WithFields(map[string]interface{}{"component": "worker"})
	logger.SetGlobal(appLogger)

	backupCfg, err := backup.LoadConfig()
	if err != nil {
		appLogger.Fatal(err, "Failed to load backup config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(cfg.Monitoring.Namespace, registry)

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:              cfg.Redis.URL,
		MaxRetries:       cfg.Redis.MaxRetries,
		RetryBackoff:     cfg.Redis.RetryBackoff,
		PoolSize:         cfg.Redis.PoolSize,
		MinIdleConns:     cfg.Redis.MinIdleConns,
		FailureThreshold: cfg.Redis.FailureThreshold,
		OpenTimeout:      cfg.Redis.OpenTimeout,
	}, appLogger.ZL)
	if err != nil {
		appLogger.Fatal(err, "Failed to create Redis broker")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db, cfg.Outbox.MaxRetries, cfg.Outbox.ClaimLease)

	processor, err := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		},
		appLogger,
		m,
	)
	if err != nil {
		appLogger.Fatal(err, "Invalid outbox processor config")
	}

	var backups cleanup.BackupCleaner
	if backupCfg.Enabled {
		backups = backup.NewService(backupCfg, cfg.Database.DSN(), m)
	}
	cleaner := cleanup.NewCleanupWorker(outboxRepo, backups, cleanup.CleanupConfig{
		Interval:        cfg.Outbox.CleanupInterval,
		OutboxRetention: cfg.Outbox.RetentionPeriod,
	}, appLogger)

	healthSrv := setupHealthServer(cfg.Worker.HealthPort, db, registry, appLogger)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleaner.Start(ctx)
	}()

	if cfg.Notification.Enabled() {
		mailer := email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.Notification.SMTPHost,
			Port:     cfg.Notification.SMTPPort,
			Username: cfg.Notification.SMTPUser,
			Password: cfg.Notification.SMTPPassword,
			From:     cfg.Notification.From,
		})
		notifier := notification.NewService(broker, mailer, cfg.Notification.Recipients, appLogger, m)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := notifier.Run(ctx); err != nil {
				appLogger.Error(err, "Low stock notifier stopped")
			}
		}()
	} else {
		appLogger.Info("SMTP not configured, low stock emails disabled")
	}

	<-ctx.Done()
	appLogger.Info("Shutting down...")

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "Health check server shutdown failed")
	}
}
