package backup

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	FormatSQL        = "sql"
	FormatCompressed = "compressed"
)

// Config is read from BACKUP_* environment variables.
type Config struct {
	Enabled       bool   `envconfig:"ENABLED" default:"false"`
	OnStartup     bool   `envconfig:"ON_STARTUP" default:"true"`
	Directory     string `envconfig:"DIRECTORY" default:"backups"`
	Format        string `envconfig:"FORMAT" default:"sql"`
	RetentionDays int    `envconfig:"RETENTION_DAYS" default:"7"`
	PgDumpPath    string `envconfig:"PG_DUMP_PATH" default:"pg_dump"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("backup", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load backup config: %w", err)
	}
	if cfg.Format != FormatSQL && cfg.Format != FormatCompressed {
		return Config{}, fmt.Errorf("BACKUP_FORMAT must be %q or %q, got %q", FormatSQL, FormatCompressed, cfg.Format)
	}
	return cfg, nil
}

func (c Config) extension() string {
	if c.Format == FormatCompressed {
		return ".dump"
	}
	return ".sql"
}
