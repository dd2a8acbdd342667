package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaflow/agenda-api/internal/models"
)

type stubBookingRepo struct {
	byDay map[string][]models.Booking
	err   error
	calls []string
}

func (s *stubBookingRepo) ListByTeacherAndDay(_ context.Context, _, _ string, dayOfWeek string) ([]models.Booking, error) {
	s.calls = append(s.calls, dayOfWeek)
	if s.err != nil {
		return nil, s.err
	}
	return s.byDay[dayOfWeek], nil
}

type stubRescheduleRepo struct {
	byDate map[string][]models.Reschedule
	err    error
}

func (s *stubRescheduleRepo) ListByTeacherAndDate(_ context.Context, _, _ string, date time.Time) ([]models.Reschedule, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byDate[date.Format("2006-01-02")], nil
}

type stubProfileRepo struct {
	profiles map[string]models.Profile
	err      error
}

func (s *stubProfileRepo) ListByIDs(_ context.Context, _ []string) (map[string]models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func TestExpandEmitsRegularOccurrencesPerWeekday(t *testing.T) {
	bookings := &stubBookingRepo{byDay: map[string][]models.Booking{
		"Segunda": {{ID: "b1", StudentID: "st1", TimeSlot: "10:00", Module: "A1"}},
		"Quarta":  {{ID: "b2", StudentID: "st2", TimeSlot: "14:30", Module: "B2"}},
	}}
	svc := NewOccurrenceService(bookings, &stubRescheduleRepo{}, nil, nil)

	// Mon 2026-08-24 through Fri 2026-08-28.
	result := svc.Expand(context.Background(), "t1", "teacher-1", date(2026, 8, 24), date(2026, 8, 28), ExpandOptions{})

	require.Empty(t, result.SkippedDays)
	require.Len(t, result.Occurrences, 2)
	assert.Equal(t, models.OccurrenceRegular, result.Occurrences[0].Type)
	assert.Equal(t, "b1", result.Occurrences[0].SourceID)
	assert.Equal(t, date(2026, 8, 24), result.Occurrences[0].Date)
	assert.Equal(t, "b2", result.Occurrences[1].SourceID)
	assert.Equal(t, date(2026, 8, 26), result.Occurrences[1].Date)
}

func TestExpandSkipsSundays(t *testing.T) {
	bookings := &stubBookingRepo{byDay: map[string][]models.Booking{}}
	svc := NewOccurrenceService(bookings, &stubRescheduleRepo{}, nil, nil)

	// Sat 2026-08-29 through Mon 2026-08-31: Sunday must never be queried.
	result := svc.Expand(context.Background(), "t1", "teacher-1", date(2026, 8, 29), date(2026, 8, 31), ExpandOptions{})

	require.Empty(t, result.SkippedDays)
	assert.Equal(t, []string{"Sábado", "Segunda"}, bookings.calls)
}

func TestExpandHonoursBookingStartDate(t *testing.T) {
	start := date(2026, 8, 26)
	bookings := &stubBookingRepo{byDay: map[string][]models.Booking{
		"Segunda": {{ID: "b1", StudentID: "st1", TimeSlot: "10:00", StartDate: &start}},
		"Quarta":  {{ID: "b2", StudentID: "st1", TimeSlot: "10:00", StartDate: &start}},
	}}
	svc := NewOccurrenceService(bookings, &stubRescheduleRepo{}, nil, nil)

	result := svc.Expand(context.Background(), "t1", "teacher-1", date(2026, 8, 24), date(2026, 8, 28), ExpandOptions{})

	// Monday the 24th precedes start_date; Wednesday the 26th is the first hit.
	require.Len(t, result.Occurrences, 1)
	assert.Equal(t, "b2", result.Occurrences[0].SourceID)
	assert.Equal(t, date(2026, 8, 26), result.Occurrences[0].Date)
}

func TestExpandIncludesScheduledReschedules(t *testing.T) {
	reschedules := &stubRescheduleRepo{byDate: map[string][]models.Reschedule{
		"2026-08-25": {{ID: "r1", StudentID: "st9", Time: strPtr("16:00")}},
	}}
	svc := NewOccurrenceService(&stubBookingRepo{}, reschedules, nil, nil)

	result := svc.Expand(context.Background(), "t1", "teacher-1", date(2026, 8, 25), date(2026, 8, 25), ExpandOptions{})

	require.Len(t, result.Occurrences, 1)
	assert.Equal(t, models.OccurrenceMakeup, result.Occurrences[0].Type)
	assert.Equal(t, "r1", result.Occurrences[0].SourceID)
	assert.Equal(t, "16:00", result.Occurrences[0].Time)
}

func TestExpandElapsedTodayFilter(t *testing.T) {
	bookings := &stubBookingRepo{byDay: map[string][]models.Booking{
		"Terça": {
			{ID: "b-early", StudentID: "st1", TimeSlot: "09:00"},
			{ID: "b-late", StudentID: "st2", TimeSlot: "18:00"},
		},
	}}
	svc := NewOccurrenceService(bookings, &stubRescheduleRepo{}, nil, nil)

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	result := svc.Expand(context.Background(), "t1", "teacher-1", now, now, ExpandOptions{Now: now, OnlyElapsedToday: true})

	require.Len(t, result.Occurrences, 1)
	assert.Equal(t, "b-early", result.Occurrences[0].SourceID)
}

func TestExpandElapsedFilterOnlyAppliesToToday(t *testing.T) {
	bookings := &stubBookingRepo{byDay: map[string][]models.Booking{
		"Segunda": {{ID: "b1", StudentID: "st1", TimeSlot: "22:00"}},
	}}
	svc := NewOccurrenceService(bookings, &stubRescheduleRepo{}, nil, nil)

	// Yesterday's 22:00 lesson stays even though now is 08:00.
	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	result := svc.Expand(context.Background(), "t1", "teacher-1", date(2026, 8, 24), date(2026, 8, 24), ExpandOptions{Now: now, OnlyElapsedToday: true})

	require.Len(t, result.Occurrences, 1)
}

func TestExpandReportsSkippedDays(t *testing.T) {
	bookings := &stubBookingRepo{err: errors.New("connection refused")}
	svc := NewOccurrenceService(bookings, &stubRescheduleRepo{}, nil, nil)

	result := svc.Expand(context.Background(), "t1", "teacher-1", date(2026, 8, 24), date(2026, 8, 26), ExpandOptions{})

	assert.Empty(t, result.Occurrences)
	require.Len(t, result.SkippedDays, 3)
	assert.Equal(t, date(2026, 8, 24), result.SkippedDays[0].Date)
	assert.Contains(t, result.SkippedDays[0].Reason, "connection refused")
}

func TestExpandDenormalizesStudentNames(t *testing.T) {
	bookings := &stubBookingRepo{byDay: map[string][]models.Booking{
		"Segunda": {{ID: "b1", StudentID: "st1", TimeSlot: "10:00"}},
	}}
	profiles := &stubProfileRepo{profiles: map[string]models.Profile{
		"st1": {ID: "st1", FullName: "Ana Souza"},
	}}
	svc := NewOccurrenceService(bookings, &stubRescheduleRepo{}, profiles, nil)

	result := svc.Expand(context.Background(), "t1", "teacher-1", date(2026, 8, 24), date(2026, 8, 24), ExpandOptions{})

	require.Len(t, result.Occurrences, 1)
	assert.Equal(t, "Ana Souza", result.Occurrences[0].StudentName)
}

func TestSortForLoggingPutsTodayFirst(t *testing.T) {
	today := date(2026, 8, 26)
	occurrences := []models.Occurrence{
		{SourceID: "old-1", Date: date(2026, 8, 24)},
		{SourceID: "today-1", Date: today},
		{SourceID: "old-2", Date: date(2026, 8, 25)},
		{SourceID: "today-2", Date: today},
	}

	SortForLogging(occurrences, today)

	assert.Equal(t, "today-1", occurrences[0].SourceID)
	assert.Equal(t, "today-2", occurrences[1].SourceID)
	// Backlog keeps its original relative order.
	assert.Equal(t, "old-1", occurrences[2].SourceID)
	assert.Equal(t, "old-2", occurrences[3].SourceID)
}
