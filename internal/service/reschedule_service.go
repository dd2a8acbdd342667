package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aulaflow/agenda-api/internal/models"
	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
)

type rescheduleRepository interface {
	ListByTeacherAndDate(ctx context.Context, tenantID, teacherID string, date time.Time) ([]models.Reschedule, error)
	ListUnscheduledByTeacher(ctx context.Context, tenantID, teacherID string) ([]models.Reschedule, error)
	FindByID(ctx context.Context, id string) (*models.Reschedule, error)
	Create(ctx context.Context, reschedule *models.Reschedule) error
	Schedule(ctx context.Context, id string, date time.Time, timeSlot string) error
	Delete(ctx context.Context, id string) error
}

// CreateRescheduleRequest creates a makeup manually from the staff screen.
type CreateRescheduleRequest struct {
	TeacherID         string  `json:"teacher_id" validate:"required"`
	StudentID         string  `json:"student_id" validate:"required"`
	Date              *string `json:"date"`
	Time              *string `json:"time"`
	OriginalBookingID *string `json:"original_booking_id"`
	CreatedByFault    *string `json:"created_by_fault"`
}

// ScheduleRescheduleRequest assigns a date and time to a pending makeup.
type ScheduleRescheduleRequest struct {
	Date string `json:"date" validate:"required"`
	Time string `json:"time" validate:"required"`
}

// RescheduleService manages one-off makeup lessons outside the automatic
// absence policy: listing, manual creation, scheduling, cancellation.
type RescheduleService struct {
	repo      rescheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRescheduleService instantiates RescheduleService.
func NewRescheduleService(repo rescheduleRepository, validate *validator.Validate, logger *zap.Logger) *RescheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RescheduleService{repo: repo, validator: validate, logger: logger}
}

// ListForDate returns a teacher's makeups on one calendar date.
func (s *RescheduleService) ListForDate(ctx context.Context, tenantID, teacherID string, date time.Time) ([]models.Reschedule, error) {
	reschedules, err := s.repo.ListByTeacherAndDate(ctx, tenantID, teacherID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reschedules")
	}
	return reschedules, nil
}

// ListUnscheduled returns the teacher's makeups still waiting for a date.
func (s *RescheduleService) ListUnscheduled(ctx context.Context, tenantID, teacherID string) ([]models.Reschedule, error) {
	reschedules, err := s.repo.ListUnscheduledByTeacher(ctx, tenantID, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending reschedules")
	}
	return reschedules, nil
}

// Create stores a manually requested makeup.
func (s *RescheduleService) Create(ctx context.Context, tenantID string, req CreateRescheduleRequest) (*models.Reschedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	reschedule := models.Reschedule{
		TenantID:          tenantID,
		TeacherID:         req.TeacherID,
		StudentID:         req.StudentID,
		OriginalBookingID: req.OriginalBookingID,
	}
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		reschedule.Date = &parsed
	}
	if req.Time != nil && *req.Time != "" {
		if !models.ValidGridTime(*req.Time) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("time %q is not a grid slot", *req.Time))
		}
		reschedule.Time = req.Time
	}
	if req.CreatedByFault != nil {
		fault := models.RescheduleFault(*req.CreatedByFault)
		if fault != models.FaultTeacher && fault != models.FaultStudent {
			return nil, appErrors.Clone(appErrors.ErrValidation, "created_by_fault must be TEACHER or STUDENT")
		}
		reschedule.CreatedByFault = &fault
	}

	if err := s.repo.Create(ctx, &reschedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reschedule")
	}
	return &reschedule, nil
}

// Schedule picks a concrete date and time for a pending makeup.
func (s *RescheduleService) Schedule(ctx context.Context, id string, req ScheduleRescheduleRequest) (*models.Reschedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if date.Weekday() == time.Sunday {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lessons are never scheduled on Domingo")
	}
	if !models.ValidGridTime(req.Time) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("time %q is not a grid slot", req.Time))
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reschedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reschedule")
	}

	if err := s.repo.Schedule(ctx, id, date, req.Time); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule reschedule")
	}
	return s.find(ctx, id)
}

// Cancel removes a makeup that will not happen.
func (s *RescheduleService) Cancel(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "reschedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reschedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete reschedule")
	}
	return nil
}

func (s *RescheduleService) find(ctx context.Context, id string) (*models.Reschedule, error) {
	reschedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reschedule")
	}
	return reschedule, nil
}
