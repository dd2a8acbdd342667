package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aulaflow/agenda-api/internal/service"
	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
	"github.com/aulaflow/agenda-api/pkg/response"
)

// ClassLogHandler manages attendance record endpoints.
type ClassLogHandler struct {
	service *service.ClassLogService
}

// NewClassLogHandler constructs handler.
func NewClassLogHandler(svc *service.ClassLogService) *ClassLogHandler {
	return &ClassLogHandler{service: svc}
}

// Commit godoc
// @Summary Record a batch of class logs
// @Tags Class Logs
// @Accept json
// @Produce json
// @Param payload body service.CommitClassLogsRequest true "Log batch"
// @Success 201 {object} response.Envelope
// @Router /class-logs [post]
func (h *ClassLogHandler) Commit(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CommitClassLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.CommitBatch(c.Request.Context(), tenantID, req, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List a teacher's class logs in a date range
// @Tags Class Logs
// @Produce json
// @Param id path string true "Teacher ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/class-logs [get]
func (h *ClassLogHandler) List(c *gin.Context) {
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
	logs, err := h.service.List(c.Request.Context(), tenantID, c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
