package models

import "time"

// PresenceStatus is the attendance outcome recorded for one lesson.
type PresenceStatus string

const (
	PresencePresent       PresenceStatus = "Presença"
	PresenceAbsent        PresenceStatus = "Falta"
	PresenceExcused       PresenceStatus = "Falta Justificada"
	PresenceTeacherAbsent PresenceStatus = "Falta do Professor"
)

// Valid returns true when the status is a supported value.
func (s PresenceStatus) Valid() bool {
	switch s {
	case PresencePresent, PresenceAbsent, PresenceExcused, PresenceTeacherAbsent:
		return true
	default:
		return false
	}
}

// Absence reports whether the status records a missed lesson.
func (s PresenceStatus) Absence() bool {
	switch s {
	case PresenceAbsent, PresenceExcused, PresenceTeacherAbsent:
		return true
	default:
		return false
	}
}

// Lesson subtypes carried on class logs.
const (
	SubtypeTrial  = "AULA EXPERIMENTAL"
	SubtypeMakeup = "REPOSIÇÃO"
)

// ClassLog is the attendance/content record for one lesson occurrence. It
// links back to either the recurring booking or the consumed reschedule,
// never both; legacy rows may carry neither.
type ClassLog struct {
	ID             string         `db:"id" json:"id"`
	TenantID       string         `db:"tenant_id" json:"tenant_id"`
	TeacherID      string         `db:"teacher_id" json:"teacher_id"`
	StudentID      string         `db:"student_id" json:"student_id"`
	BookingID      *string        `db:"booking_id" json:"booking_id,omitempty"`
	RescheduleID   *string        `db:"reschedule_id" json:"reschedule_id,omitempty"`
	Presence       PresenceStatus `db:"presence" json:"presence"`
	Subtype        *string        `db:"subtype" json:"subtype,omitempty"`
	ContentCovered *string        `db:"content_covered" json:"content_covered,omitempty"`
	ClassDate      time.Time      `db:"class_date" json:"class_date"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}
