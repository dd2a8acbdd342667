package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aulaflow/agenda-api/internal/models"
)

type policyRescheduleRepository interface {
	CountByStudentSince(ctx context.Context, tenantID, studentID string, since time.Time, fault *models.RescheduleFault) (int, error)
	Create(ctx context.Context, reschedule *models.Reschedule) error
}

// AbsencePolicy decides which committed absences spawn a makeup lesson.
//
// Teacher-caused absences always earn a makeup. Student-caused absences are
// capped: only this month's student-fault makeups count against the cap, so
// the counter resets naturally at each month boundary and teacher-fault
// makeups never consume the student's allowance.
type AbsencePolicy struct {
	reschedules policyRescheduleRepository
	monthlyCap  int
	logger      *zap.Logger
}

// NewAbsencePolicy instantiates the policy. A non-positive cap falls back to
// the production default of 5.
func NewAbsencePolicy(reschedules policyRescheduleRepository, monthlyCap int, logger *zap.Logger) *AbsencePolicy {
	if monthlyCap <= 0 {
		monthlyCap = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsencePolicy{reschedules: reschedules, monthlyCap: monthlyCap, logger: logger}
}

// Apply evaluates one just-committed class log and creates the makeup it
// earns, if any. The returned reschedule is nil when no makeup is due. It
// must run after the log insert and after consumed reschedules are deleted,
// so counting sees a consistent snapshot.
func (p *AbsencePolicy) Apply(ctx context.Context, log models.ClassLog, now time.Time) (*models.Reschedule, error) {
	if !log.Presence.Absence() {
		return nil, nil
	}
	// A missed makeup never spawns a further makeup; otherwise a chronically
	// absent student builds an unbounded chain.
	if log.Subtype != nil && *log.Subtype == models.SubtypeMakeup {
		return nil, nil
	}

	fault := models.FaultStudent
	if log.Presence == models.PresenceTeacherAbsent {
		fault = models.FaultTeacher
	} else {
		studentFault := models.FaultStudent
		count, err := p.reschedules.CountByStudentSince(ctx, log.TenantID, log.StudentID, models.MonthStart(now), &studentFault)
		if err != nil {
			return nil, err
		}
		if count >= p.monthlyCap {
			p.logger.Info("monthly makeup cap reached, no reschedule created",
				zap.String("student_id", log.StudentID),
				zap.Int("cap", p.monthlyCap))
			return nil, nil
		}
	}

	makeup := &models.Reschedule{
		TenantID:          log.TenantID,
		TeacherID:         log.TeacherID,
		StudentID:         log.StudentID,
		OriginalBookingID: log.BookingID,
		CreatedByFault:    &fault,
	}
	if err := p.reschedules.Create(ctx, makeup); err != nil {
		return nil, err
	}
	return makeup, nil
}
