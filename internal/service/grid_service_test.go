package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaflow/agenda-api/internal/models"
	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
)

type stubGridBookingRepo struct {
	views     []models.BookingView
	byStudent []models.Booking
	created   []models.Booking
	deleted   []string
	listErr   error
}

func (s *stubGridBookingRepo) ListByTeacher(_ context.Context, _, _ string) ([]models.BookingView, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.views, nil
}

func (s *stubGridBookingRepo) ListByStudent(_ context.Context, _, _ string) ([]models.Booking, error) {
	return s.byStudent, nil
}

func (s *stubGridBookingRepo) FindByID(_ context.Context, id string) (*models.Booking, error) {
	for i := range s.views {
		if s.views[i].ID == id {
			return &s.views[i].Booking, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubGridBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	s.created = append(s.created, *booking)
	return nil
}

func (s *stubGridBookingRepo) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubGridBookingRepo) DeleteByStudent(_ context.Context, _, _ string) error {
	return nil
}

type stubAvailabilityRepo struct {
	rows     []models.Availability
	replaced [][]models.Availability
	err      error
}

func (s *stubAvailabilityRepo) ListByTeacher(_ context.Context, _ string) ([]models.Availability, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubAvailabilityRepo) ReplaceAll(_ context.Context, _ string, slots []models.Availability) error {
	s.replaced = append(s.replaced, slots)
	return nil
}

type stubGridCache struct {
	gets    []string
	sets    []string
	deletes []string
}

func (s *stubGridCache) Get(_ context.Context, key string, _ interface{}) error {
	s.gets = append(s.gets, key)
	return appErrors.ErrCacheMiss
}

func (s *stubGridCache) Set(_ context.Context, key string, _ interface{}, _ time.Duration) error {
	s.sets = append(s.sets, key)
	return nil
}

func (s *stubGridCache) Delete(_ context.Context, keys ...string) {
	s.deletes = append(s.deletes, keys...)
}

func bookingView(id, day, timeSlot, studentID, studentName string) models.BookingView {
	return models.BookingView{
		Booking: models.Booking{
			ID:        id,
			TeacherID: "teacher-1",
			StudentID: studentID,
			DayOfWeek: day,
			TimeSlot:  timeSlot,
		},
		StudentName: studentName,
	}
}

func TestWeeklyGridKeysBookingsBySlot(t *testing.T) {
	bookings := &stubGridBookingRepo{views: []models.BookingView{
		bookingView("b1", "Segunda", "10:00", "st1", "Ana"),
		bookingView("b2", "Sábado", "00:00", "st2", "Bia"),
	}}
	svc := NewGridService(bookings, &stubAvailabilityRepo{}, nil, nil, time.Minute, nil, nil)

	grid, err := svc.WeeklyGrid(context.Background(), "t1", "teacher-1")

	require.NoError(t, err)
	assert.Len(t, grid.TimeGrid, models.GridSlotCount)
	require.Len(t, grid.Bookings, 2)
	assert.Equal(t, "b1", grid.Bookings["0-10:00"].ID)
	assert.Equal(t, "b2", grid.Bookings["5-00:00"].ID)
}

func TestWeeklyGridCachesResult(t *testing.T) {
	cache := &stubGridCache{}
	svc := NewGridService(&stubGridBookingRepo{}, &stubAvailabilityRepo{}, cache, nil, time.Minute, nil, nil)

	_, err := svc.WeeklyGrid(context.Background(), "t1", "teacher-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"grid:t1:teacher-1"}, cache.gets)
	assert.Equal(t, []string{"grid:t1:teacher-1"}, cache.sets)
}

func TestLoadAvailabilityDegradesToEmpty(t *testing.T) {
	svc := NewGridService(&stubGridBookingRepo{}, &stubAvailabilityRepo{err: assert.AnError}, nil, nil, time.Minute, nil, nil)

	slots := svc.LoadAvailability(context.Background(), "teacher-1")

	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestLoadAvailabilitySortsByDayThenTime(t *testing.T) {
	availability := &stubAvailabilityRepo{rows: []models.Availability{
		{TeacherID: "teacher-1", DayOfWeek: "Quarta", StartTime: "08:00"},
		{TeacherID: "teacher-1", DayOfWeek: "Segunda", StartTime: "00:00"},
		{TeacherID: "teacher-1", DayOfWeek: "Segunda", StartTime: "18:00"},
	}}
	svc := NewGridService(&stubGridBookingRepo{}, availability, nil, nil, time.Minute, nil, nil)

	slots := svc.LoadAvailability(context.Background(), "teacher-1")

	require.Len(t, slots, 3)
	// "00:00" closes Monday, so it sorts after 18:00.
	assert.Equal(t, models.WeekSlot{Day: 0, Time: "18:00"}, slots[0])
	assert.Equal(t, models.WeekSlot{Day: 0, Time: "00:00"}, slots[1])
	assert.Equal(t, models.WeekSlot{Day: 2, Time: "08:00"}, slots[2])
}

func TestPublishAvailabilityRejectsBookedSlot(t *testing.T) {
	bookings := &stubGridBookingRepo{views: []models.BookingView{
		bookingView("b1", "Segunda", "10:00", "st1", "Ana"),
	}}
	availability := &stubAvailabilityRepo{}
	svc := NewGridService(bookings, availability, nil, nil, time.Minute, nil, nil)

	err := svc.PublishAvailability(context.Background(), "t1", "teacher-1", PublishAvailabilityRequest{
		Slots: []models.WeekSlot{{Day: 0, Time: "10:00"}},
	})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, availability.replaced)
}

func TestPublishAvailabilityRejectsInvalidSlot(t *testing.T) {
	svc := NewGridService(&stubGridBookingRepo{}, &stubAvailabilityRepo{}, nil, nil, time.Minute, nil, nil)

	err := svc.PublishAvailability(context.Background(), "t1", "teacher-1", PublishAvailabilityRequest{
		Slots: []models.WeekSlot{{Day: 6, Time: "10:00"}},
	})

	require.Error(t, err)
}

func TestPublishAvailabilityDeduplicatesAndInvalidates(t *testing.T) {
	availability := &stubAvailabilityRepo{}
	cache := &stubGridCache{}
	svc := NewGridService(&stubGridBookingRepo{}, availability, cache, nil, time.Minute, nil, nil)

	err := svc.PublishAvailability(context.Background(), "t1", "teacher-1", PublishAvailabilityRequest{
		Slots: []models.WeekSlot{
			{Day: 1, Time: "09:00"},
			{Day: 1, Time: "09:00"},
			{Day: 1, Time: "09:30"},
		},
	})

	require.NoError(t, err)
	require.Len(t, availability.replaced, 1)
	assert.Len(t, availability.replaced[0], 2)
	assert.Equal(t, []string{"grid:t1:teacher-1"}, cache.deletes)
}

func TestCheckConflictReturnsOnlyClashingDays(t *testing.T) {
	bookings := &stubGridBookingRepo{views: []models.BookingView{
		bookingView("b1", "Segunda", "10:00", "st1", "Ana"),
	}}
	svc := NewGridService(bookings, &stubAvailabilityRepo{}, nil, nil, time.Minute, nil, nil)

	conflicts, err := svc.CheckConflict(context.Background(), "t1", "teacher-1", []string{"Segunda", "Quarta", "Sexta"}, "10:00")

	require.NoError(t, err)
	assert.Equal(t, []string{"Segunda"}, conflicts)
}

func TestAssignStudentCreatesOneBookingPerDay(t *testing.T) {
	bookings := &stubGridBookingRepo{}
	cache := &stubGridCache{}
	svc := NewGridService(bookings, &stubAvailabilityRepo{}, cache, nil, time.Minute, nil, nil)
	start := "2026-09-01"

	created, err := svc.AssignStudent(context.Background(), "t1", AssignStudentRequest{
		TeacherID: "teacher-1",
		StudentID: "st1",
		Days:      []string{"Segunda", "Quarta"},
		TimeSlot:  "10:00",
		Module:    "A1",
		StartDate: &start,
	})

	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Segunda", created[0].DayOfWeek)
	assert.Equal(t, "Quarta", created[1].DayOfWeek)
	require.NotNil(t, created[0].StartDate)
	assert.Equal(t, date(2026, 9, 1), *created[0].StartDate)
	assert.Equal(t, []string{"grid:t1:teacher-1"}, cache.deletes)
}

func TestAssignStudentRejectsConflict(t *testing.T) {
	bookings := &stubGridBookingRepo{views: []models.BookingView{
		bookingView("b1", "Quarta", "10:00", "st9", "Caio"),
	}}
	svc := NewGridService(bookings, &stubAvailabilityRepo{}, nil, nil, time.Minute, nil, nil)

	_, err := svc.AssignStudent(context.Background(), "t1", AssignStudentRequest{
		TeacherID: "teacher-1",
		StudentID: "st1",
		Days:      []string{"Segunda", "Quarta"},
		TimeSlot:  "10:00",
	})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSlotTaken.Code, appErr.Code)
	assert.Empty(t, bookings.created)
}

func TestAssignStudentRejectsOffGridTime(t *testing.T) {
	svc := NewGridService(&stubGridBookingRepo{}, &stubAvailabilityRepo{}, nil, nil, time.Minute, nil, nil)

	_, err := svc.AssignStudent(context.Background(), "t1", AssignStudentRequest{
		TeacherID: "teacher-1",
		StudentID: "st1",
		Days:      []string{"Segunda"},
		TimeSlot:  "10:15",
	})

	require.Error(t, err)
}

func TestAssignStudentRejectsTooManyDays(t *testing.T) {
	svc := NewGridService(&stubGridBookingRepo{}, &stubAvailabilityRepo{}, nil, nil, time.Minute, nil, nil)

	_, err := svc.AssignStudent(context.Background(), "t1", AssignStudentRequest{
		TeacherID: "teacher-1",
		StudentID: "st1",
		Days:      []string{"Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"},
		TimeSlot:  "10:00",
	})

	require.Error(t, err)
}

func TestUnassignDeletesAndInvalidates(t *testing.T) {
	bookings := &stubGridBookingRepo{views: []models.BookingView{
		bookingView("b1", "Segunda", "10:00", "st1", "Ana"),
	}}
	cache := &stubGridCache{}
	svc := NewGridService(bookings, &stubAvailabilityRepo{}, cache, nil, time.Minute, nil, nil)

	err := svc.Unassign(context.Background(), "t1", "b1")

	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, bookings.deleted)
	assert.Equal(t, []string{"grid:t1:teacher-1"}, cache.deletes)
}

func TestUnassignMissingBookingReturnsNotFound(t *testing.T) {
	svc := NewGridService(&stubGridBookingRepo{}, &stubAvailabilityRepo{}, nil, nil, time.Minute, nil, nil)

	err := svc.Unassign(context.Background(), "t1", "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRemoveStudentInvalidatesEachTeacherGrid(t *testing.T) {
	bookings := &stubGridBookingRepo{byStudent: []models.Booking{
		{ID: "b1", TeacherID: "teacher-1"},
		{ID: "b2", TeacherID: "teacher-2"},
		{ID: "b3", TeacherID: "teacher-1"},
	}}
	cache := &stubGridCache{}
	svc := NewGridService(bookings, &stubAvailabilityRepo{}, cache, nil, time.Minute, nil, nil)

	err := svc.RemoveStudent(context.Background(), "t1", "st1")

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"grid:t1:teacher-1", "grid:t1:teacher-2"}, cache.deletes)
}
