package models

import "time"

// OccurrenceType distinguishes recurring lessons from one-off makeups.
type OccurrenceType string

const (
	OccurrenceRegular OccurrenceType = "REGULAR"
	OccurrenceMakeup  OccurrenceType = "REPOSIÇÃO"
)

// Occurrence is a computed expected lesson instance on a specific calendar
// date. It is derived from bookings and reschedules and never persisted.
type Occurrence struct {
	Type        OccurrenceType `json:"type"`
	SourceID    string         `json:"source_id"`
	StudentID   string         `json:"student_id"`
	StudentName string         `json:"student_name,omitempty"`
	Module      string         `json:"module,omitempty"`
	Date        time.Time      `json:"date"`
	Time        string         `json:"time"`
}

// LateRelativeTo reports whether the occurrence fell on a day before today.
// Bulk-logging screens surface today's lessons before older backlog.
func (o Occurrence) LateRelativeTo(today time.Time) bool {
	return DateOnly(o.Date).Before(DateOnly(today))
}
