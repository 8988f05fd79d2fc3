package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 4, cfg.Dashboard.Parallelism)
	assert.Equal(t, "postgres://postgres:@localhost:5432/physiotrack?sslmode=disable", cfg.Database.DSN())
	assert.False(t, cfg.Notification.Enabled())
	assert.Equal(t, 8081, cfg.Worker.HealthPort)
	assert.Equal(t, 5*time.Minute, cfg.Outbox.ClaimLease)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yml := []byte(`
server:
  port: 8080
database:
  host: db
  name: clinic
outbox:
  poll_interval: 2s
notification:
  smtp_host: mail.local
  recipients: ["front-desk@clinic.test"]
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), yml, 0o600))

	t.Setenv("DATABASE_URL", "postgres://u:p@remote:5432/prod")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@remote:5432/prod", cfg.Database.DSN())
	assert.Equal(t, "clinic", cfg.Database.Name)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.True(t, cfg.Notification.Enabled())
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Dashboard.Parallelism = 0
	assert.Error(t, cfg.Validate())
}
