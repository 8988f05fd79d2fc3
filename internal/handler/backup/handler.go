package backup

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/service/backup"
	"github.com/physiotrack/clinic-api/pkg/httputil"
)

type Handler struct {
	service backup.Service
}

func NewHandler(service backup.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	db := r.Group("/database")
	{
		db.POST("/backup", h.CreateBackup)
		db.GET("/backups", h.ListBackups)
		db.DELETE("/backups/:filename", h.DeleteBackup)
	}
}

// CreateBackup accepts an empty body for a default-named dump.
func (h *Handler) CreateBackup(c *gin.Context) {
	var req model.CreateBackupRequest
	if c.Request.ContentLength > 0 {
		if err := httputil.BindJSON(c, &req); err != nil {
			httputil.RespondWithError(c, err)
			return
		}
	}

	file, err := h.service.CreateBackup(c.Request.Context(), req.Filename)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, file)
}

func (h *Handler) ListBackups(c *gin.Context) {
	files, err := h.service.ListBackups(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, files)
}

func (h *Handler) DeleteBackup(c *gin.Context) {
	if err := h.service.DeleteBackup(c.Request.Context(), c.Param("filename")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
