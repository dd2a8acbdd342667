package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aulaflow/agenda-api/internal/service"
	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
	"github.com/aulaflow/agenda-api/pkg/response"
)

// ReportHandler serves downloadable reports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// PendingLessons godoc
// @Summary Export a teacher's pending lessons as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Teacher ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} binary
// @Router /teachers/{id}/reports/pending-lessons [get]
func (h *ReportHandler) PendingLessons(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	file, err := h.service.PendingLessons(c.Request.Context(), tenantID, c.Param("id"), c.DefaultQuery("format", "csv"), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(200, file.ContentType, file.Data)
}
