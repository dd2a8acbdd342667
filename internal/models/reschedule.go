package models

import "time"

// RescheduleFault attributes who caused the absence a makeup compensates.
type RescheduleFault string

const (
	FaultTeacher RescheduleFault = "TEACHER"
	FaultStudent RescheduleFault = "STUDENT"
)

// Reschedule is a one-off makeup lesson. It is created automatically by the
// absence policy or manually by staff, and deleted once a class log is
// recorded against it.
type Reschedule struct {
	ID                string           `db:"id" json:"id"`
	TenantID          string           `db:"tenant_id" json:"tenant_id"`
	TeacherID         string           `db:"teacher_id" json:"teacher_id"`
	StudentID         string           `db:"student_id" json:"student_id"`
	Date              *time.Time       `db:"date" json:"date,omitempty"`
	Time              *string          `db:"time" json:"time,omitempty"`
	OriginalBookingID *string          `db:"original_booking_id" json:"original_booking_id,omitempty"`
	CreatedByFault    *RescheduleFault `db:"created_by_fault" json:"created_by_fault,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}

// Scheduled reports whether staff have already picked a concrete date and
// time for the makeup. Unscheduled makeups stay out of occurrence expansion.
func (r *Reschedule) Scheduled() bool {
	return r.Date != nil && r.Time != nil
}
