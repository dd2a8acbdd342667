package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aulaflow/agenda-api/internal/service"
	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
	"github.com/aulaflow/agenda-api/pkg/response"
)

// BookingHandler manages recurring booking endpoints.
type BookingHandler struct {
	grid *service.GridService
}

// NewBookingHandler constructs handler.
func NewBookingHandler(grid *service.GridService) *BookingHandler {
	return &BookingHandler{grid: grid}
}

// Assign godoc
// @Summary Book a student into weekly slots
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.AssignStudentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Assign(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.AssignStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	bookings, err := h.grid.AssignStudent(c.Request.Context(), tenantID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, bookings)
}

// CheckConflict godoc
// @Summary Check which requested days are already booked
// @Tags Bookings
// @Produce json
// @Param teacherId query string true "Teacher ID"
// @Param days query string true "Comma separated weekday names"
// @Param time query string true "Grid time slot"
// @Success 200 {object} response.Envelope
// @Router /bookings/conflicts [get]
func (h *BookingHandler) CheckConflict(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	days := strings.Split(c.Query("days"), ",")
	for i := range days {
		days[i] = strings.TrimSpace(days[i])
	}
	conflicts, err := h.grid.CheckConflict(c.Request.Context(), tenantID, c.Query("teacherId"), days, c.Query("time"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []string{}
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicting_days": conflicts}, nil)
}

// Unassign godoc
// @Summary Remove one booking
// @Tags Bookings
// @Param id path string true "Booking ID"
// @Success 204
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Unassign(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.grid.Unassign(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveStudent godoc
// @Summary Remove every booking of a student
// @Tags Bookings
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id}/bookings [delete]
func (h *BookingHandler) RemoveStudent(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.grid.RemoveStudent(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
