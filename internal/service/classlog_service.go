package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aulaflow/agenda-api/internal/models"
	appErrors "github.com/aulaflow/agenda-api/pkg/errors"
)

type classLogRepository interface {
	ListByTeacherBetween(ctx context.Context, tenantID, teacherID string, from, to time.Time) ([]models.ClassLog, error)
	ExistsForBookingOnDate(ctx context.Context, bookingID string, date time.Time) (bool, error)
	ExistsForReschedule(ctx context.Context, rescheduleID string) (bool, error)
	BulkInsert(ctx context.Context, logs []models.ClassLog) error
}

type consumingRescheduleRepository interface {
	DeleteByIDs(ctx context.Context, ids []string) error
}

// ClassLogEntry is one attendance record inside a bulk commit.
type ClassLogEntry struct {
	StudentID      string                `json:"student_id" validate:"required"`
	BookingID      *string               `json:"booking_id"`
	RescheduleID   *string               `json:"reschedule_id"`
	Presence       models.PresenceStatus `json:"presence" validate:"required"`
	Subtype        *string               `json:"subtype"`
	ContentCovered *string               `json:"content_covered"`
	ClassDate      string                `json:"class_date" validate:"required"`
}

// CommitClassLogsRequest records a batch of lessons for one teacher.
type CommitClassLogsRequest struct {
	TeacherID string          `json:"teacher_id" validate:"required"`
	Entries   []ClassLogEntry `json:"entries" validate:"required,min=1,dive"`
}

// SkippedEntry reports one entry dropped before insert, usually a duplicate.
type SkippedEntry struct {
	StudentID string `json:"student_id"`
	ClassDate string `json:"class_date"`
	Reason    string `json:"reason"`
}

// CommitClassLogsResult summarises a bulk commit.
type CommitClassLogsResult struct {
	Committed      []models.ClassLog   `json:"committed"`
	Skipped        []SkippedEntry      `json:"skipped,omitempty"`
	MakeupsCreated []models.Reschedule `json:"makeups_created,omitempty"`
}

// ClassLogService commits attendance batches: it inserts logs, consumes the
// reschedules those logs fulfil, then runs the absence policy over the
// committed absences.
type ClassLogService struct {
	logs        classLogRepository
	reschedules consumingRescheduleRepository
	policy      *AbsencePolicy
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewClassLogService instantiates ClassLogService.
func NewClassLogService(logs classLogRepository, reschedules consumingRescheduleRepository, policy *AbsencePolicy, validate *validator.Validate, logger *zap.Logger) *ClassLogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassLogService{logs: logs, reschedules: reschedules, policy: policy, validator: validate, logger: logger}
}

// List returns a teacher's class logs inside a date range.
func (s *ClassLogService) List(ctx context.Context, tenantID, teacherID string, from, to time.Time) ([]models.ClassLog, error) {
	logs, err := s.logs.ListByTeacherBetween(ctx, tenantID, teacherID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class logs")
	}
	return logs, nil
}

// CommitBatch validates, de-duplicates, and inserts the batch, then deletes
// every reschedule the batch consumed, and finally applies the absence
// policy per committed absence. Policy failures on individual entries are
// logged and skipped; a partially applied policy is an accepted outcome.
func (s *ClassLogService) CommitBatch(ctx context.Context, tenantID string, req CommitClassLogsRequest, now time.Time) (*CommitClassLogsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class log payload")
	}

	result := &CommitClassLogsResult{}
	toInsert := make([]models.ClassLog, 0, len(req.Entries))

	for _, entry := range req.Entries {
		if !entry.Presence.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown presence status "+string(entry.Presence))
		}
		if entry.BookingID != nil && entry.RescheduleID != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a class log links to a booking or a reschedule, never both")
		}
		classDate, err := time.Parse("2006-01-02", entry.ClassDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class_date must be YYYY-MM-DD")
		}

		// Duplicate prevention is query-before-insert by convention; there
		// is no uniqueness constraint backing it up.
		if entry.BookingID != nil {
			exists, err := s.logs.ExistsForBookingOnDate(ctx, *entry.BookingID, classDate)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for duplicate log")
			}
			if exists {
				result.Skipped = append(result.Skipped, SkippedEntry{StudentID: entry.StudentID, ClassDate: entry.ClassDate, Reason: "already logged for this booking and date"})
				continue
			}
		}
		if entry.RescheduleID != nil {
			exists, err := s.logs.ExistsForReschedule(ctx, *entry.RescheduleID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for duplicate log")
			}
			if exists {
				result.Skipped = append(result.Skipped, SkippedEntry{StudentID: entry.StudentID, ClassDate: entry.ClassDate, Reason: "reschedule already logged"})
				continue
			}
		}

		toInsert = append(toInsert, models.ClassLog{
			TenantID:       tenantID,
			TeacherID:      req.TeacherID,
			StudentID:      entry.StudentID,
			BookingID:      entry.BookingID,
			RescheduleID:   entry.RescheduleID,
			Presence:       entry.Presence,
			Subtype:        entry.Subtype,
			ContentCovered: entry.ContentCovered,
			ClassDate:      classDate,
		})
	}

	if len(toInsert) > 0 {
		if err := s.logs.BulkInsert(ctx, toInsert); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert class logs")
		}
	}
	result.Committed = toInsert

	// Consume fulfilled reschedules before the policy runs, so the monthly
	// count operates on a consistent snapshot.
	var consumed []string
	for _, log := range toInsert {
		if log.RescheduleID != nil {
			consumed = append(consumed, *log.RescheduleID)
		}
	}
	if len(consumed) > 0 {
		if err := s.reschedules.DeleteByIDs(ctx, consumed); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume reschedules")
		}
	}

	if s.policy != nil {
		for _, log := range toInsert {
			makeup, err := s.policy.Apply(ctx, log, now)
			if err != nil {
				s.logger.Warn("absence policy skipped for entry",
					zap.String("student_id", log.StudentID),
					zap.Time("class_date", log.ClassDate),
					zap.Error(err))
				continue
			}
			if makeup != nil {
				result.MakeupsCreated = append(result.MakeupsCreated, *makeup)
			}
		}
	}

	return result, nil
}
