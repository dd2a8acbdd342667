package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aulaflow/agenda-api/internal/service"
	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
	"github.com/aulaflow/agenda-api/pkg/response"
)

// ScheduleHandler serves the weekly grid and availability endpoints.
type ScheduleHandler struct {
	grid *service.GridService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(grid *service.GridService) *ScheduleHandler {
	return &ScheduleHandler{grid: grid}
}

// WeeklyGrid godoc
// @Summary Weekly grid for a teacher
// @Tags Schedule
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/grid [get]
func (h *ScheduleHandler) WeeklyGrid(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	grid, err := h.grid.WeeklyGrid(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Availability godoc
// @Summary Declared free slots for a teacher
// @Tags Schedule
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/availability [get]
func (h *ScheduleHandler) Availability(c *gin.Context) {
	slots := h.grid.LoadAvailability(c.Request.Context(), c.Param("id"))
	response.JSON(c, http.StatusOK, slots, nil)
}

// PublishAvailability godoc
// @Summary Replace a teacher's availability set
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body service.PublishAvailabilityRequest true "Availability slots"
// @Success 204
// @Router /teachers/{id}/availability [put]
func (h *ScheduleHandler) PublishAvailability(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.PublishAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.grid.PublishAvailability(c.Request.Context(), tenantID, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
