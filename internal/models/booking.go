package models

import "time"

// Booking is a recurring weekly commitment between a teacher and a student.
// It occupies exactly one WeekSlot; a slot can hold at most one active booking
// per teacher, and a booked slot is never simultaneously "available".
type Booking struct {
	ID        string     `db:"id" json:"id"`
	TenantID  string     `db:"tenant_id" json:"tenant_id"`
	TeacherID string     `db:"teacher_id" json:"teacher_id"`
	StudentID string     `db:"student_id" json:"student_id"`
	DayOfWeek string     `db:"day_of_week" json:"day_of_week"`
	TimeSlot  string     `db:"time_slot" json:"time_slot"`
	Module    string     `db:"module" json:"module"`
	Type      string     `db:"type" json:"type"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Slot returns the grid cell the booking occupies.
func (b *Booking) Slot() (WeekSlot, bool) {
	day, ok := WeekdayIndex(b.DayOfWeek)
	if !ok {
		return WeekSlot{}, false
	}
	return WeekSlot{Day: day, Time: b.TimeSlot}, true
}

// ActiveOn reports whether the booking already applies on the given calendar
// date. Bookings are not retroactive: before start_date they emit nothing.
// A booking without start_date is treated as always active.
func (b *Booking) ActiveOn(d time.Time) bool {
	if b.StartDate == nil {
		return true
	}
	return !DateOnly(d).Before(DateOnly(*b.StartDate))
}

// BookingView extends a booking with denormalized student display data for
// direct grid rendering.
type BookingView struct {
	Booking
	StudentName string  `db:"student_name" json:"student_name"`
	AvatarURL   *string `db:"avatar_url" json:"avatar_url,omitempty"`
}
