package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/physiotrack/clinic-api/internal/handler"
	backupHandler "github.com/physiotrack/clinic-api/internal/handler/backup"
	dashboardHandler "github.com/physiotrack/clinic-api/internal/handler/dashboard"
	"github.com/physiotrack/clinic-api/internal/handler/health"
	inventoryHandler "github.com/physiotrack/clinic-api/internal/handler/inventory"
	patientHandler "github.com/physiotrack/clinic-api/internal/handler/patient"
	paymentHandler "github.com/physiotrack/clinic-api/internal/handler/payment"
	"github.com/physiotrack/clinic-api/internal/handler/prometheus"
	visitHandler "github.com/physiotrack/clinic-api/internal/handler/visit"
	"github.com/physiotrack/clinic-api/internal/middleware"
	"github.com/physiotrack/clinic-api/internal/repository/postgres"
	"github.com/physiotrack/clinic-api/internal/router"
	dashboardService "github.com/physiotrack/clinic-api/internal/service/dashboard"
	inventoryService "github.com/physiotrack/clinic-api/internal/service/inventory"
	patientService "github.com/physiotrack/clinic-api/internal/service/patient"
	paymentService "github.com/physiotrack/clinic-api/internal/service/payment"
	visitService "github.com/physiotrack/clinic-api/internal/service/visit"
)

func runServer(ctx context.Context, migrate bool) error {
	app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.db.Close()
	cfg := app.cfg

	if migrate {
		count, err := app.migrate(ctx)
		if err != nil {
			return err
		}
		app.logger.Info("Migrations applied", "count", count)
	}

	app.startupBackup(ctx)

	if err := middleware.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	// Initialize repositories
	patientRepo := postgres.NewPatientRepository(app.db)
	visitRepo := postgres.NewVisitRepository(app.db)
	paymentRepo := postgres.NewPaymentRepository(app.db)
	inventoryRepo := postgres.NewInventoryRepository(app.db)
	dashboardRepo := postgres.NewDashboardRepository(app.db)

	// Initialize services
	patientSvc := patientService.NewService(patientRepo)
	visitSvc := visitService.NewService(visitRepo, patientRepo, app.metrics)
	paymentSvc := paymentService.NewService(paymentRepo, patientRepo, visitRepo, app.metrics)
	inventorySvc := inventoryService.NewService(inventoryRepo, app.metrics)
	dashboardSvc := dashboardService.NewService(dashboardRepo, app.metrics, cfg.Dashboard.Parallelism)

	// Initialize handlers
	handlers := []handler.Handler{
		patientHandler.NewHandler(patientSvc, visitSvc, paymentSvc),
		visitHandler.NewHandler(visitSvc, paymentSvc),
		paymentHandler.NewHandler(paymentSvc),
		inventoryHandler.NewHandler(inventorySvc),
		dashboardHandler.NewHandler(dashboardSvc),
		backupHandler.NewHandler(app.backups),
	}

	gin.SetMode(gin.ReleaseMode)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	}

	r := router.NewRouter(
		health.NewHandler(app.db),
		prometheus.New(cfg.Monitoring.Namespace, app.registry, app.registry),
		handlers,
		router.RouterConfig{
			RateLimit:      rate.Limit(cfg.RateLimit.RPS),
			RateBurst:      cfg.RateLimit.Burst,
			RateClientTTL:  cfg.RateLimit.ClientTTL,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			CORSConfig:     corsConfig,
			MetricsEnabled: cfg.Monitoring.PrometheusEnabled,
			MetricsPath:    cfg.Monitoring.MetricsPath,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	app.logger.Info("Server exited properly")
	return nil
}
