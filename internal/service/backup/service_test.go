package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/physiotrack/clinic-api/pkg/errors"
	"github.com/physiotrack/clinic-api/pkg/metrics"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 45, 123000000, time.UTC)

// fakeDump writes content to the --file argument, standing in for pg_dump.
type fakeDump struct {
	content string
	err     error
	args    []string
}

func (f *fakeDump) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.args = append([]string{name}, args...)
	if f.err != nil {
		return []byte("pg_dump: error: connection refused"), f.err
	}
	for _, a := range args {
		if path, ok := strings.CutPrefix(a, "--file="); ok {
			return nil, os.WriteFile(path, []byte(f.content), 0o600)
		}
	}
	return nil, nil
}

func newTestService(t *testing.T, format string, runner CommandRunner) (Service, string, *metrics.Metrics) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "backups")
	m := metrics.NewNop()
	cfg := Config{Directory: dir, Format: format, RetentionDays: 7, PgDumpPath: "pg_dump"}
	svc := NewService(cfg, "postgres://localhost/physiotrack", m,
		WithRunner(runner),
		WithClock(func() time.Time { return fixedNow }))
	return svc, dir, m
}

func TestCreateBackup(t *testing.T) {
	t.Run("default name plain format", func(t *testing.T) {
		runner := &fakeDump{content: "-- dump"}
		svc, dir, m := newTestService(t, FormatSQL, runner)

		file, err := svc.CreateBackup(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "physiotrack_backup_2024-03-15T10-30-45-123Z.sql", file.Filename)
		assert.Equal(t, int64(len("-- dump")), file.Size)
		assert.FileExists(t, filepath.Join(dir, file.Filename))
		assert.Contains(t, runner.args, "--format=plain")
		assert.Equal(t, "postgres://localhost/physiotrack", runner.args[1])
		assert.Equal(t, float64(1), testutil.ToFloat64(m.BackupsCreated.WithLabelValues("ok")))
	})

	t.Run("compressed format", func(t *testing.T) {
		runner := &fakeDump{content: "PGDMP"}
		svc, _, _ := newTestService(t, FormatCompressed, runner)

		file, err := svc.CreateBackup(context.Background(), "")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(file.Filename, ".dump"))
		assert.Contains(t, runner.args, "--format=custom")
		assert.Contains(t, runner.args, "--compress=9")
	})

	t.Run("client name is reduced to its base", func(t *testing.T) {
		svc, dir, _ := newTestService(t, FormatSQL, &fakeDump{content: "x"})

		file, err := svc.CreateBackup(context.Background(), "../../etc/nightly")
		require.NoError(t, err)
		assert.Equal(t, "nightly.sql", file.Filename)
		assert.FileExists(t, filepath.Join(dir, "nightly.sql"))
	})

	t.Run("pg_dump failure", func(t *testing.T) {
		svc, _, m := newTestService(t, FormatSQL, &fakeDump{err: errors.New("exit status 1")})

		_, err := svc.CreateBackup(context.Background(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, float64(1), testutil.ToFloat64(m.BackupsCreated.WithLabelValues("error")))
	})

	t.Run("empty dump is discarded", func(t *testing.T) {
		svc, dir, _ := newTestService(t, FormatSQL, &fakeDump{})

		_, err := svc.CreateBackup(context.Background(), "empty.sql")
		require.Error(t, err)
		assert.NoFileExists(t, filepath.Join(dir, "empty.sql"))
	})
}

func writeBackup(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	mod := fixedNow.Add(-age)
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestListBackups(t *testing.T) {
	svc, dir, _ := newTestService(t, FormatSQL, &fakeDump{})

	files, err := svc.ListBackups(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)

	writeBackup(t, dir, "old.sql", 48*time.Hour)
	writeBackup(t, dir, "new.dump", time.Hour)
	writeBackup(t, dir, "notes.txt", 0)

	files, err = svc.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "new.dump", files[0].Filename)
	assert.Equal(t, "old.sql", files[1].Filename)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestDeleteBackup(t *testing.T) {
	svc, dir, _ := newTestService(t, FormatSQL, &fakeDump{})
	writeBackup(t, dir, "a.sql", 0)

	require.NoError(t, svc.DeleteBackup(context.Background(), "a.sql"))
	assert.NoFileExists(t, filepath.Join(dir, "a.sql"))

	err := svc.DeleteBackup(context.Background(), "a.sql")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	err = svc.DeleteBackup(context.Background(), "../config.yml")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCleanup(t *testing.T) {
	svc, dir, _ := newTestService(t, FormatSQL, &fakeDump{})
	writeBackup(t, dir, "expired.sql", 8*24*time.Hour)
	writeBackup(t, dir, "recent.sql", 6*24*time.Hour)

	removed, err := svc.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, filepath.Join(dir, "expired.sql"))
	assert.FileExists(t, filepath.Join(dir, "recent.sql"))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("BACKUP_ENABLED", "true")
	t.Setenv("BACKUP_DIRECTORY", "/var/backups/clinic")
	t.Setenv("BACKUP_FORMAT", "compressed")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.OnStartup)
	assert.Equal(t, "/var/backups/clinic", cfg.Directory)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, ".dump", cfg.extension())

	t.Setenv("BACKUP_FORMAT", "zip")
	_, err = LoadConfig()
	assert.Error(t, err)
}
