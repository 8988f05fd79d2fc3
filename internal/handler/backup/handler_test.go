package backup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/pkg/errors"
)

type stubService struct {
	requested string
	deleted   string
}

func (s *stubService) CreateBackup(ctx context.Context, filename string) (*model.BackupFile, error) {
	s.requested = filename
	name := filename
	if name == "" {
		name = "physiotrack_backup_default.sql"
	}
	return &model.BackupFile{Filename: name, Size: 2048, CreatedAt: time.Now()}, nil
}

func (s *stubService) ListBackups(ctx context.Context) ([]*model.BackupFile, error) {
	return []*model.BackupFile{{Filename: "a.sql", Size: 1}}, nil
}

func (s *stubService) DeleteBackup(ctx context.Context, filename string) error {
	if filename != "a.sql" {
		return errors.NotFound("backup", nil)
	}
	s.deleted = filename
	return nil
}

func (s *stubService) Cleanup(ctx context.Context) (int, error) { return 0, nil }

func newEngine(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBackup(t *testing.T) {
	svc := &stubService{}
	r := newEngine(svc)

	w := serve(r, http.MethodPost, "/api/database/backup", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, svc.requested)
	assert.Contains(t, w.Body.String(), "physiotrack_backup_default.sql")

	w = serve(r, http.MethodPost, "/api/database/backup", `{"filename":"before-migration.sql"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "before-migration.sql", svc.requested)
}

func TestListAndDeleteBackups(t *testing.T) {
	svc := &stubService{}
	r := newEngine(svc)

	w := serve(r, http.MethodGet, "/api/database/backups", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"filename":"a.sql"`)

	w = serve(r, http.MethodDelete, "/api/database/backups/a.sql", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "a.sql", svc.deleted)

	w = serve(r, http.MethodDelete, "/api/database/backups/missing.sql", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
