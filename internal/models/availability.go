package models

// Availability declares that a teacher is free at one WeekSlot. It has no
// identity beyond (teacher, slot); publishing replaces the whole set.
type Availability struct {
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	DayOfWeek string `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
}

// Slot returns the grid cell the declaration refers to.
func (a Availability) Slot() (WeekSlot, bool) {
	day, ok := WeekdayIndex(a.DayOfWeek)
	if !ok {
		return WeekSlot{}, false
	}
	return WeekSlot{Day: day, Time: a.StartTime}, true
}
