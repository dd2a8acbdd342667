package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aulaflow/agenda-api/internal/models"
)

type reconcilerLogRepository interface {
	ListByTeacherBetween(ctx context.Context, tenantID, teacherID string, from, to time.Time) ([]models.ClassLog, error)
}

type occurrenceExpander interface {
	Expand(ctx context.Context, tenantID, teacherID string, from, to time.Time, opts ExpandOptions) ExpandResult
}

// ReconcilerWindows configures the rolling date windows.
type ReconcilerWindows struct {
	// DueTodayDays is the size of the "due today" window ending today.
	DueTodayDays int
	// PendingGraceDays is how many most-recent days are never flagged
	// pending, leaving teachers room to log normally.
	PendingGraceDays int
	// PendingMaxDays is how far back pending lessons are surfaced at all.
	PendingMaxDays int
}

// DefaultReconcilerWindows mirrors the production screens: an 8-day due
// window, a 7-day grace period, and a 30-day pending horizon.
func DefaultReconcilerWindows() ReconcilerWindows {
	return ReconcilerWindows{DueTodayDays: 8, PendingGraceDays: 7, PendingMaxDays: 30}
}

func (w ReconcilerWindows) normalized() ReconcilerWindows {
	if w.DueTodayDays <= 0 {
		w.DueTodayDays = 8
	}
	if w.PendingGraceDays <= 0 {
		w.PendingGraceDays = 7
	}
	if w.PendingMaxDays <= w.PendingGraceDays {
		w.PendingMaxDays = 30
	}
	return w
}

// ReconcileResult lists occurrences with no matching class log, plus any
// days whose expansion was skipped because of read failures.
type ReconcileResult struct {
	Unlogged    []models.Occurrence `json:"unlogged"`
	SkippedDays []SkippedDay        `json:"skipped_days,omitempty"`
}

// ReconcilerService diffs expected occurrences against recorded class logs
// over rolling windows.
type ReconcilerService struct {
	expander occurrenceExpander
	logs     reconcilerLogRepository
	windows  ReconcilerWindows
	logger   *zap.Logger
}

// NewReconcilerService instantiates ReconcilerService.
func NewReconcilerService(expander occurrenceExpander, logs reconcilerLogRepository, windows ReconcilerWindows, logger *zap.Logger) *ReconcilerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcilerService{expander: expander, logs: logs, windows: windows.normalized(), logger: logger}
}

// DueToday lists unlogged lessons over the last DueTodayDays calendar days
// up to and including today, so a teacher's daily screen also surfaces very
// recent backlog. Occurrences later today whose time has not yet arrived are
// excluded, and results put today's lessons before older ones.
func (s *ReconcilerService) DueToday(ctx context.Context, tenantID, teacherID string, now time.Time) ReconcileResult {
	today := models.DateOnly(now)
	from := today.AddDate(0, 0, -(s.windows.DueTodayDays - 1))

	expansion := s.expander.Expand(ctx, tenantID, teacherID, from, today, ExpandOptions{Now: now, OnlyElapsedToday: true})
	result := s.subtractLogged(ctx, tenantID, teacherID, from, today, expansion)
	SortForLogging(result.Unlogged, today)
	return result
}

// Pending lists unlogged lessons older than the grace period but inside the
// pending horizon: days [today-PendingMaxDays, today-PendingGraceDays-1].
// Lessons inside the grace period are deliberately not flagged, and lessons
// beyond the horizon are written off as already reconciled.
func (s *ReconcilerService) Pending(ctx context.Context, tenantID, teacherID string, now time.Time) ReconcileResult {
	today := models.DateOnly(now)
	from := today.AddDate(0, 0, -s.windows.PendingMaxDays)
	to := today.AddDate(0, 0, -(s.windows.PendingGraceDays + 1))

	expansion := s.expander.Expand(ctx, tenantID, teacherID, from, to, ExpandOptions{})
	return s.subtractLogged(ctx, tenantID, teacherID, from, to, expansion)
}

func (s *ReconcilerService) subtractLogged(ctx context.Context, tenantID, teacherID string, from, to time.Time, expansion ExpandResult) ReconcileResult {
	result := ReconcileResult{Unlogged: []models.Occurrence{}, SkippedDays: expansion.SkippedDays}

	logs, err := s.logs.ListByTeacherBetween(ctx, tenantID, teacherID, from, to)
	if err != nil {
		// Without the log set every occurrence would look unlogged, so the
		// whole window degrades to skipped rather than producing false
		// positives.
		s.logger.Warn("class log fetch failed, window skipped",
			zap.String("teacher_id", teacherID),
			zap.Time("from", from),
			zap.Time("to", to),
			zap.Error(err))
		for d := models.DateOnly(from); !d.After(models.DateOnly(to)); d = d.AddDate(0, 0, 1) {
			result.SkippedDays = append(result.SkippedDays, SkippedDay{Date: d, Reason: "class logs unavailable"})
		}
		return result
	}

	index := buildLogIndex(logs)
	for _, occ := range expansion.Occurrences {
		if index.matches(occ) {
			continue
		}
		result.Unlogged = append(result.Unlogged, occ)
	}
	return result
}

type logIndex struct {
	byBookingDate map[string]struct{}
	byReschedule  map[string]struct{}
	byStudentDate map[string]struct{}
}

func buildLogIndex(logs []models.ClassLog) logIndex {
	index := logIndex{
		byBookingDate: make(map[string]struct{}, len(logs)),
		byReschedule:  make(map[string]struct{}, len(logs)),
		byStudentDate: make(map[string]struct{}, len(logs)),
	}
	for _, log := range logs {
		date := models.DateOnly(log.ClassDate).Format("2006-01-02")
		if log.BookingID != nil {
			index.byBookingDate[fmt.Sprintf("%s|%s", *log.BookingID, date)] = struct{}{}
		}
		if log.RescheduleID != nil {
			index.byReschedule[*log.RescheduleID] = struct{}{}
		}
		index.byStudentDate[fmt.Sprintf("%s|%s", log.StudentID, date)] = struct{}{}
	}
	return index
}

// matches applies the matching rule: a REGULAR occurrence is logged when a
// class log carries its booking id on the same date (the booking recurs
// weekly, so the date must re-match); a REPOSIÇÃO occurrence is logged when
// any class log carries its reschedule id. The (student, date) fallback
// covers legacy logs that predate source ids.
func (i logIndex) matches(occ models.Occurrence) bool {
	date := models.DateOnly(occ.Date).Format("2006-01-02")
	switch occ.Type {
	case models.OccurrenceRegular:
		if _, ok := i.byBookingDate[fmt.Sprintf("%s|%s", occ.SourceID, date)]; ok {
			return true
		}
	case models.OccurrenceMakeup:
		if _, ok := i.byReschedule[occ.SourceID]; ok {
			return true
		}
	}
	_, ok := i.byStudentDate[fmt.Sprintf("%s|%s", occ.StudentID, date)]
	return ok
}
