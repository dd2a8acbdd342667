package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aulaflow/agenda-api/internal/models"
	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
)

type gridBookingRepository interface {
	ListByTeacher(ctx context.Context, tenantID, teacherID string) ([]models.BookingView, error)
	ListByStudent(ctx context.Context, tenantID, studentID string) ([]models.Booking, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) error
	DeleteByStudent(ctx context.Context, tenantID, studentID string) error
}

type availabilityRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Availability, error)
	ReplaceAll(ctx context.Context, teacherID string, slots []models.Availability) error
}

type gridCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string)
}

type cacheObserver interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

// WeeklyGrid combines a teacher's bookings and declared availability, keyed
// by the legacy "{day}-{time}" slot composite for wire compatibility.
type WeeklyGrid struct {
	TeacherID    string                        `json:"teacher_id"`
	Bookings     map[string]models.BookingView `json:"bookings"`
	Availability []models.WeekSlot             `json:"availability"`
	TimeGrid     []string                      `json:"time_grid"`
}

// AssignStudentRequest books a student into up to five weekdays at one time.
type AssignStudentRequest struct {
	TeacherID string   `json:"teacher_id" validate:"required"`
	StudentID string   `json:"student_id" validate:"required"`
	Days      []string `json:"days" validate:"required,min=1,max=5"`
	TimeSlot  string   `json:"time_slot" validate:"required"`
	Module    string   `json:"module"`
	Type      string   `json:"type"`
	StartDate *string  `json:"start_date"`
}

// PublishAvailabilityRequest replaces a teacher's whole availability set.
type PublishAvailabilityRequest struct {
	Slots []models.WeekSlot `json:"slots" validate:"required,dive"`
}

// GridService coordinates the weekly grid: bookings, availability, and the
// conflict rule that a slot resolves to at most one active booking.
type GridService struct {
	bookings     gridBookingRepository
	availability availabilityRepository
	cache        gridCache
	metrics      cacheObserver
	cacheTTL     time.Duration
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewGridService instantiates GridService.
func NewGridService(bookings gridBookingRepository, availability availabilityRepository, cache gridCache, metrics cacheObserver, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *GridService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GridService{
		bookings:     bookings,
		availability: availability,
		cache:        cache,
		metrics:      metrics,
		cacheTTL:     cacheTTL,
		validator:    validate,
		logger:       logger,
	}
}

func gridCacheKey(tenantID, teacherID string) string {
	return fmt.Sprintf("grid:%s:%s", tenantID, teacherID)
}

// WeeklyGrid builds the slot-keyed grid for a teacher, serving from cache
// when possible.
func (s *GridService) WeeklyGrid(ctx context.Context, tenantID, teacherID string) (*WeeklyGrid, error) {
	key := gridCacheKey(tenantID, teacherID)
	if s.cache != nil {
		start := time.Now()
		var cached WeeklyGrid
		err := s.cache.Get(ctx, key, &cached)
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		}
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("grid cache read failed", zap.String("teacher_id", teacherID), zap.Error(err))
		}
	}

	views, err := s.bookings.ListByTeacher(ctx, tenantID, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher bookings")
	}

	grid := &WeeklyGrid{
		TeacherID: teacherID,
		Bookings:  make(map[string]models.BookingView, len(views)),
		TimeGrid:  models.TimeGrid(),
	}
	for _, view := range views {
		slot, ok := view.Slot()
		if !ok {
			s.logger.Warn("booking with unknown weekday skipped", zap.String("booking_id", view.ID), zap.String("day_of_week", view.DayOfWeek))
			continue
		}
		grid.Bookings[slot.Key()] = view
	}
	grid.Availability = s.LoadAvailability(ctx, teacherID)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, grid, s.cacheTTL); err != nil {
			s.logger.Warn("grid cache write failed", zap.String("teacher_id", teacherID), zap.Error(err))
		}
	}
	return grid, nil
}

// LoadAvailability returns the teacher's declared free slots. A read failure
// degrades to an empty set: absence of availability is not an error state.
func (s *GridService) LoadAvailability(ctx context.Context, teacherID string) []models.WeekSlot {
	rows, err := s.availability.ListByTeacher(ctx, teacherID)
	if err != nil {
		s.logger.Warn("availability load failed, treating as none declared", zap.String("teacher_id", teacherID), zap.Error(err))
		return []models.WeekSlot{}
	}
	slots := make([]models.WeekSlot, 0, len(rows))
	for _, row := range rows {
		slot, ok := row.Slot()
		if !ok {
			continue
		}
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		return models.SlotMinutes(slots[i].Time) < models.SlotMinutes(slots[j].Time)
	})
	return slots
}

// PublishAvailability replaces the teacher's availability set wholesale.
// Slots already occupied by a booking are rejected up front: a booked slot
// can never simultaneously be available.
func (s *GridService) PublishAvailability(ctx context.Context, tenantID, teacherID string, req PublishAvailabilityRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	seen := make(map[models.WeekSlot]struct{}, len(req.Slots))
	rows := make([]models.Availability, 0, len(req.Slots))
	for _, slot := range req.Slots {
		if !slot.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid slot %s", slot.Key()))
		}
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		day, _ := models.WeekdayName(slot.Day)
		rows = append(rows, models.Availability{TeacherID: teacherID, DayOfWeek: day, StartTime: slot.Time})
	}

	booked, err := s.bookings.ListByTeacher(ctx, tenantID, teacherID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher bookings")
	}
	for _, view := range booked {
		slot, ok := view.Slot()
		if !ok {
			continue
		}
		if _, clash := seen[slot]; clash {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("slot %s is already booked", slot.Key()))
		}
	}

	if err := s.availability.ReplaceAll(ctx, teacherID, rows); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish availability")
	}
	if s.cache != nil {
		s.cache.Delete(ctx, gridCacheKey(tenantID, teacherID))
	}
	return nil
}

// CheckConflict returns the subset of requested days whose slot at the given
// time already has an occupant. Day order is preserved from the request.
func (s *GridService) CheckConflict(ctx context.Context, tenantID, teacherID string, days []string, timeSlot string) ([]string, error) {
	views, err := s.bookings.ListByTeacher(ctx, tenantID, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher bookings")
	}
	occupied := make(map[models.WeekSlot]struct{}, len(views))
	for _, view := range views {
		if slot, ok := view.Slot(); ok {
			occupied[slot] = struct{}{}
		}
	}

	var conflicts []string
	for _, day := range days {
		index, ok := models.WeekdayIndex(day)
		if !ok {
			continue
		}
		if _, taken := occupied[models.WeekSlot{Day: index, Time: timeSlot}]; taken {
			conflicts = append(conflicts, day)
		}
	}
	return conflicts, nil
}

// AssignStudent books a student into the requested weekdays after proving no
// slot is already taken. The write is never attempted on conflict.
func (s *GridService) AssignStudent(ctx context.Context, tenantID string, req AssignStudentRequest) ([]models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if !models.ValidGridTime(req.TimeSlot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("time %q is not a grid slot", req.TimeSlot))
	}
	for _, day := range req.Days {
		if _, ok := models.WeekdayIndex(day); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday %q", day))
		}
	}

	var startDate *time.Time
	if req.StartDate != nil && *req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
		}
		startDate = &parsed
	}

	conflicts, err := s.CheckConflict(ctx, tenantID, req.TeacherID, req.Days, req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, appErrors.Clone(appErrors.ErrSlotTaken, fmt.Sprintf("slot already booked on: %v", conflicts))
	}

	created := make([]models.Booking, 0, len(req.Days))
	for _, day := range req.Days {
		booking := models.Booking{
			TenantID:  tenantID,
			TeacherID: req.TeacherID,
			StudentID: req.StudentID,
			DayOfWeek: day,
			TimeSlot:  req.TimeSlot,
			Module:    req.Module,
			Type:      req.Type,
			StartDate: startDate,
		}
		if err := s.bookings.Create(ctx, &booking); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
		}
		created = append(created, booking)
	}

	if s.cache != nil {
		s.cache.Delete(ctx, gridCacheKey(tenantID, req.TeacherID))
	}
	return created, nil
}

// Unassign removes one booking.
func (s *GridService) Unassign(ctx context.Context, tenantID, bookingID string) error {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if err := s.bookings.Delete(ctx, bookingID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete booking")
	}
	if s.cache != nil {
		s.cache.Delete(ctx, gridCacheKey(tenantID, booking.TeacherID))
	}
	return nil
}

// RemoveStudent clears every booking of a student, e.g. when the student
// leaves the school.
func (s *GridService) RemoveStudent(ctx context.Context, tenantID, studentID string) error {
	bookings, err := s.bookings.ListByStudent(ctx, tenantID, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student bookings")
	}
	if err := s.bookings.DeleteByStudent(ctx, tenantID, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student bookings")
	}
	if s.cache != nil {
		keys := make(map[string]struct{})
		for _, b := range bookings {
			keys[gridCacheKey(tenantID, b.TeacherID)] = struct{}{}
		}
		for key := range keys {
			s.cache.Delete(ctx, key)
		}
	}
	return nil
}
