package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaflow/agenda-api/internal/models"
)

type stubPendingLister struct {
	result ReconcileResult
}

func (s *stubPendingLister) Pending(_ context.Context, _, _ string, _ time.Time) ReconcileResult {
	return s.result
}

func TestPendingLessonsCSV(t *testing.T) {
	lister := &stubPendingLister{result: ReconcileResult{Unlogged: []models.Occurrence{
		{Type: models.OccurrenceRegular, StudentName: "Ana Souza", Module: "A1", Date: date(2026, 8, 10), Time: "10:00"},
	}}}
	svc := NewReportService(lister, nil)

	file, err := svc.PendingLessons(context.Background(), "t1", "teacher-1", "csv", date(2026, 8, 26))

	require.NoError(t, err)
	assert.Equal(t, "aulas-pendentes-2026-08-26.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	content := string(file.Data)
	assert.True(t, strings.HasPrefix(content, "Data,Hora,Aluno,Tipo,Módulo"))
	assert.Contains(t, content, "10/08/2026,10:00,Ana Souza,REGULAR,A1")
}

func TestPendingLessonsDefaultsToCSV(t *testing.T) {
	svc := NewReportService(&stubPendingLister{}, nil)

	file, err := svc.PendingLessons(context.Background(), "t1", "teacher-1", "", date(2026, 8, 26))

	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
}

func TestPendingLessonsPDF(t *testing.T) {
	lister := &stubPendingLister{result: ReconcileResult{Unlogged: []models.Occurrence{
		{Type: models.OccurrenceMakeup, StudentName: "Bia Lima", Date: date(2026, 8, 12), Time: "16:00"},
	}}}
	svc := NewReportService(lister, nil)

	file, err := svc.PendingLessons(context.Background(), "t1", "teacher-1", "pdf", date(2026, 8, 26))

	require.NoError(t, err)
	assert.Equal(t, "aulas-pendentes-2026-08-26.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.NotEmpty(t, file.Data)
}

func TestPendingLessonsRejectsUnknownFormat(t *testing.T) {
	svc := NewReportService(&stubPendingLister{}, nil)

	_, err := svc.PendingLessons(context.Background(), "t1", "teacher-1", "xlsx", date(2026, 8, 26))

	require.Error(t, err)
}
