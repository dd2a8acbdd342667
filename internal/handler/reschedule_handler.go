package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aulaflow/agenda-api/internal/service"
	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
	"github.com/aulaflow/agenda-api/pkg/response"
)

// RescheduleHandler manages makeup lesson endpoints.
type RescheduleHandler struct {
	service *service.RescheduleService
}

// NewRescheduleHandler constructs handler.
func NewRescheduleHandler(svc *service.RescheduleService) *RescheduleHandler {
	return &RescheduleHandler{service: svc}
}

// ListForDate godoc
// @Summary List a teacher's makeup lessons on a date
// @Tags Reschedules
// @Produce json
// @Param id path string true "Teacher ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/reschedules [get]
func (h *RescheduleHandler) ListForDate(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}
	reschedules, err := h.service.ListForDate(c.Request.Context(), tenantID, c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reschedules, nil)
}

// ListUnscheduled godoc
// @Summary List a teacher's makeup lessons awaiting a slot
// @Tags Reschedules
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/reschedules/unscheduled [get]
func (h *RescheduleHandler) ListUnscheduled(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	reschedules, err := h.service.ListUnscheduled(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reschedules, nil)
}

// Create godoc
// @Summary Create a makeup lesson manually
// @Tags Reschedules
// @Accept json
// @Produce json
// @Param payload body service.CreateRescheduleRequest true "Reschedule data"
// @Success 201 {object} response.Envelope
// @Router /reschedules [post]
func (h *RescheduleHandler) Create(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	reschedule, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reschedule)
}

// Schedule godoc
// @Summary Assign a date and time slot to a makeup lesson
// @Tags Reschedules
// @Accept json
// @Produce json
// @Param id path string true "Reschedule ID"
// @Param payload body service.ScheduleRescheduleRequest true "Slot data"
// @Success 200 {object} response.Envelope
// @Router /reschedules/{id}/schedule [put]
func (h *RescheduleHandler) Schedule(c *gin.Context) {
	var req service.ScheduleRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	reschedule, err := h.service.Schedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reschedule, nil)
}

// Cancel godoc
// @Summary Cancel a makeup lesson
// @Tags Reschedules
// @Produce json
// @Param id path string true "Reschedule ID"
// @Success 204
// @Router /reschedules/{id} [delete]
func (h *RescheduleHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
