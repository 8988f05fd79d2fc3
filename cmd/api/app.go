package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/physiotrack/clinic-api/internal/config"
	"github.com/physiotrack/clinic-api/internal/repository/postgres"
	"github.com/physiotrack/clinic-api/internal/service/backup"
	"github.com/physiotrack/clinic-api/pkg/logger"
	"github.com/physiotrack/clinic-api/pkg/metrics"
)

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg       *config.Config
	backupCfg backup.Config
	logger    *logger.Logger
	db        *sqlx.DB
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	backups   backup.Service
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Log.Console,
	})
	logger.SetGlobal(log)

	backupCfg, err := backup.LoadConfig()
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(cfg.Monitoring.Namespace, registry)

	return &app{
		cfg:       cfg,
		backupCfg: backupCfg,
		logger:    log,
		db:        db,
		registry:  registry,
		metrics:   m,
		backups:   backup.NewService(backupCfg, cfg.Database.DSN(), m),
	}, nil
}

func (a *app) migrate(ctx context.Context) (int, error) {
	count, err := postgres.NewMigrator(a.db).Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migration failed: %w", err)
	}
	return count, nil
}

// startupBackup takes the boot-time dump and prunes old ones. Failures are
// logged and never stop the server.
func (a *app) startupBackup(ctx context.Context) {
	if !a.backupCfg.Enabled || !a.backupCfg.OnStartup {
		return
	}

	file, err := a.backups.CreateBackup(ctx, "")
	if err != nil {
		a.logger.Error(err, "Startup backup failed")
	} else {
		a.logger.Info("Startup backup created", "file", file.Filename, "size", file.Size)
	}

	if removed, err := a.backups.Cleanup(ctx); err != nil {
		a.logger.Error(err, "Backup cleanup failed")
	} else if removed > 0 {
		a.logger.Info("Removed expired backups", "count", removed)
	}
}
