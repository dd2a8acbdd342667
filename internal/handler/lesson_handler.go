package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aulaflow/agenda-api/internal/service"
	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
	"github.com/aulaflow/agenda-api/pkg/response"
)

// LessonHandler serves occurrence expansion and reconciliation endpoints.
type LessonHandler struct {
	occurrences *service.OccurrenceService
	reconciler  *service.ReconcilerService
}

// NewLessonHandler constructs handler.
func NewLessonHandler(occurrences *service.OccurrenceService, reconciler *service.ReconcilerService) *LessonHandler {
	return &LessonHandler{occurrences: occurrences, reconciler: reconciler}
}

// Occurrences godoc
// @Summary Expected lesson occurrences in a date range
// @Tags Lessons
// @Produce json
// @Param id path string true "Teacher ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/occurrences [get]
func (h *LessonHandler) Occurrences(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD"))
		return
	}
	if to.Before(from) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must not precede from"))
		return
	}

	result := h.occurrences.Expand(c.Request.Context(), tenantID, c.Param("id"), from, to, service.ExpandOptions{})
	meta := partialMeta(result.SkippedDays)
	response.JSON(c, http.StatusOK, result, nil, meta)
}

// DueToday godoc
// @Summary Lessons due for logging now
// @Tags Lessons
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/lessons/due-today [get]
func (h *LessonHandler) DueToday(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result := h.reconciler.DueToday(c.Request.Context(), tenantID, c.Param("id"), time.Now())
	response.JSON(c, http.StatusOK, result, nil, partialMeta(result.SkippedDays))
}

// Pending godoc
// @Summary Overdue unlogged lessons
// @Tags Lessons
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/lessons/pending [get]
func (h *LessonHandler) Pending(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result := h.reconciler.Pending(c.Request.Context(), tenantID, c.Param("id"), time.Now())
	response.JSON(c, http.StatusOK, result, nil, partialMeta(result.SkippedDays))
}

// partialMeta surfaces skipped days as a warning instead of masking them.
func partialMeta(skipped []service.SkippedDay) map[string]interface{} {
	if len(skipped) == 0 {
		return nil
	}
	return map[string]interface{}{"partial": true, "skipped_days": len(skipped)}
}
