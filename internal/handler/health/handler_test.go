package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func TestHealthRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		path       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{name: "live", path: "/health/live", wantStatus: http.StatusOK, wantBody: `"UP"`},
		{name: "ready", path: "/health/ready", wantStatus: http.StatusOK, wantBody: `"UP"`},
		{name: "not ready", path: "/health/ready", pingErr: errors.New("refused"), wantStatus: http.StatusServiceUnavailable, wantBody: `"DOWN"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHandler(stubPinger{err: tt.pingErr}).RegisterRoutes(&r.RouterGroup)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
