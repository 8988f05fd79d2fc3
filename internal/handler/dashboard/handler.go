package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/physiotrack/clinic-api/internal/service/dashboard"
	"github.com/physiotrack/clinic-api/pkg/httputil"
)

type Handler struct {
	service dashboard.Service
}

func NewHandler(service dashboard.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/stats", h.GetStats)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, stats)
}
