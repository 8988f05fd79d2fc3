package visit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/physiotrack/clinic-api/internal/handler"
	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/service/payment"
	"github.com/physiotrack/clinic-api/internal/service/visit"
	"github.com/physiotrack/clinic-api/pkg/httputil"
)

type Handler struct {
	service    visit.Service
	paymentSvc payment.Service
}

func NewHandler(service visit.Service, paymentSvc payment.Service) *Handler {
	return &Handler{
		service:    service,
		paymentSvc: paymentSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	visits := r.Group("/visits")
	{
		visits.POST("", h.CreateVisit)
		visits.GET("", h.ListVisits)
		visits.GET("/:id", h.GetVisit)
		visits.PUT("/:id", h.UpdateVisit)
		visits.DELETE("/:id", h.DeleteVisit)
		visits.GET("/:id/payments", h.ListPayments)
	}
}

func (h *Handler) CreateVisit(c *gin.Context) {
	var req model.CreateVisitRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	v, err := h.service.CreateVisit(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, v)
}

func (h *Handler) GetVisit(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	v, err := h.service.GetVisit(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, v)
}

func (h *Handler) ListVisits(c *gin.Context) {
	visits, err := h.service.ListVisits(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, visits)
}

func (h *Handler) UpdateVisit(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateVisitRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	v, err := h.service.UpdateVisit(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, v)
}

// DeleteVisit answers 409 with the payment count when payments reference
// the visit.
func (h *Handler) DeleteVisit(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.DeleteVisit(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPayments(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	payments, err := h.paymentSvc.ListVisitPayments(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, payments)
}
