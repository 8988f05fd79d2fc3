// Package backup wraps pg_dump to write, list and prune database dumps in a
// local directory.
package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/pkg/errors"
	"github.com/physiotrack/clinic-api/pkg/metrics"
)

const filePrefix = "physiotrack_backup_"

// CommandRunner runs an external program and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type Service interface {
	// CreateBackup dumps the database. An empty filename gets a timestamped
	// default name.
	CreateBackup(ctx context.Context, filename string) (*model.BackupFile, error)
	// ListBackups returns dump files, newest first.
	ListBackups(ctx context.Context) ([]*model.BackupFile, error)
	DeleteBackup(ctx context.Context, filename string) error
	// Cleanup removes dumps older than the retention window and reports how
	// many were deleted.
	Cleanup(ctx context.Context) (int, error)
}

type Option func(*service)

func WithRunner(r CommandRunner) Option {
	return func(s *service) {
		s.runner = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	cfg     Config
	dsn     string
	runner  CommandRunner
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(cfg Config, dsn string, m *metrics.Metrics, opts ...Option) Service {
	s := &service{
		cfg:     cfg,
		dsn:     dsn,
		runner:  execRunner{},
		metrics: m,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateBackup(ctx context.Context, filename string) (*model.BackupFile, error) {
	name, err := s.backupName(filename)
	if err != nil {
		return nil, err
	}

	file, err := s.dump(ctx, name)
	if err != nil {
		s.metrics.BackupsCreated.WithLabelValues("error").Inc()
		return nil, err
	}
	s.metrics.BackupsCreated.WithLabelValues("ok").Inc()
	return file, nil
}

func (s *service) dump(ctx context.Context, name string) (*model.BackupFile, error) {
	if err := os.MkdirAll(s.cfg.Directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := filepath.Join(s.cfg.Directory, name)
	args := []string{s.dsn, "--clean", "--no-acl", "--no-owner"}
	if s.cfg.Format == FormatCompressed {
		args = append(args, "--format=custom", "--compress=9")
	} else {
		args = append(args, "--format=plain")
	}
	args = append(args, "--file="+path)

	if out, err := s.runner.Run(ctx, s.pgDump(), args...); err != nil {
		return nil, fmt.Errorf("pg_dump failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("backup file was not created: %w", err)
	}
	if info.Size() == 0 {
		os.Remove(path)
		return nil, fmt.Errorf("backup file %s is empty", name)
	}

	return &model.BackupFile{Filename: name, Size: info.Size(), CreatedAt: info.ModTime()}, nil
}

func (s *service) ListBackups(ctx context.Context) ([]*model.BackupFile, error) {
	entries, err := os.ReadDir(s.cfg.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return []*model.BackupFile{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	files := []*model.BackupFile{}
	for _, entry := range entries {
		if entry.IsDir() || !isBackupFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, &model.BackupFile{
			Filename:  entry.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

func (s *service) DeleteBackup(ctx context.Context, filename string) error {
	name := filepath.Base(filename)
	if name != filename || !isBackupFile(name) {
		return errors.Validation("invalid backup filename",
			errors.FieldError{Field: "filename", Message: "must be a .sql or .dump file name"})
	}

	if err := os.Remove(filepath.Join(s.cfg.Directory, name)); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("backup", err)
		}
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

func (s *service) Cleanup(ctx context.Context) (int, error) {
	if s.cfg.RetentionDays <= 0 {
		return 0, nil
	}

	files, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().AddDate(0, 0, -s.cfg.RetentionDays)
	removed := 0
	for _, f := range files {
		if !f.CreatedAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.cfg.Directory, f.Filename)); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", f.Filename, err)
		}
		removed++
	}
	return removed, nil
}

// backupName validates a client-supplied name or builds the default one.
// Only the base name is kept so a request cannot escape the directory.
func (s *service) backupName(filename string) (string, error) {
	if filename == "" {
		stamp := strings.ReplaceAll(s.now().UTC().Format("2006-01-02T15-04-05.000Z"), ".", "-")
		return filePrefix + stamp + s.cfg.extension(), nil
	}

	name := filepath.Base(filename)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", errors.Validation("invalid backup filename",
			errors.FieldError{Field: "filename", Message: "must be a file name"})
	}
	if !isBackupFile(name) {
		name += s.cfg.extension()
	}
	return name, nil
}

func (s *service) pgDump() string {
	if s.cfg.PgDumpPath != "" {
		return s.cfg.PgDumpPath
	}
	return "pg_dump"
}

func isBackupFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".sql" || ext == ".dump"
}
