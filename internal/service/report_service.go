package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
	"github.com/aulaflow/agenda-api/pkg/export"
)

type pendingLister interface {
	Pending(ctx context.Context, tenantID, teacherID string, now time.Time) ReconcileResult
}

// ReportFile is a rendered export ready to stream to the client.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService renders pending-lesson reports for download.
type ReportService struct {
	reconciler pendingLister
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewReportService instantiates ReportService.
func NewReportService(reconciler pendingLister, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reconciler: reconciler,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// PendingLessons exports the teacher's pending (overdue, unlogged) lessons
// as CSV or PDF.
func (s *ReportService) PendingLessons(ctx context.Context, tenantID, teacherID, format string, now time.Time) (*ReportFile, error) {
	result := s.reconciler.Pending(ctx, tenantID, teacherID, now)
	if len(result.SkippedDays) > 0 {
		s.logger.Warn("pending report is partial",
			zap.String("teacher_id", teacherID),
			zap.Int("skipped_days", len(result.SkippedDays)))
	}

	dataset := export.Dataset{
		Headers: []string{"Data", "Hora", "Aluno", "Tipo", "Módulo"},
		Rows:    make([]map[string]string, 0, len(result.Unlogged)),
	}
	for _, occ := range result.Unlogged {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Data":   occ.Date.Format("02/01/2006"),
			"Hora":   occ.Time,
			"Aluno":  occ.StudentName,
			"Tipo":   string(occ.Type),
			"Módulo": occ.Module,
		})
	}

	stamp := now.Format("2006-01-02")
	switch format {
	case "csv", "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("aulas-pendentes-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case "pdf":
		data, err := s.pdf.Render(dataset, "Aulas Pendentes")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("aulas-pendentes-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
}
