package models

import "fmt"

// GridSlotCount is the number of half-hour labels in the weekly grid.
const GridSlotCount = 37

// Weekday names as persisted in the day_of_week columns. Domingo is never
// schedulable and therefore has no grid index.
var weekdayNames = [6]string{"Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}

var weekdayIndexes = func() map[string]int {
	m := make(map[string]int, len(weekdayNames))
	for i, name := range weekdayNames {
		m[name] = i
	}
	return m
}()

// WeekSlot identifies one cell of the recurring weekly grid.
type WeekSlot struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// Key renders the legacy "{day}-{time}" composite under which bookings and
// availability were historically indexed. Persisted slot maps still use it.
func (s WeekSlot) Key() string {
	return fmt.Sprintf("%d-%s", s.Day, s.Time)
}

// Valid reports whether the slot names an existing grid cell.
func (s WeekSlot) Valid() bool {
	if s.Day < 0 || s.Day >= len(weekdayNames) {
		return false
	}
	return ValidGridTime(s.Time)
}

// WeekdayName returns the persisted name for a grid index.
func WeekdayName(index int) (string, bool) {
	if index < 0 || index >= len(weekdayNames) {
		return "", false
	}
	return weekdayNames[index], true
}

// WeekdayIndex maps a persisted weekday name to its grid index
// (0=Segunda .. 5=Sábado). Domingo and unknown names have no index.
func WeekdayIndex(name string) (int, bool) {
	i, ok := weekdayIndexes[name]
	return i, ok
}

// TimeGrid returns the fixed sequence of half-hour labels from 06:00 through
// midnight. The closing slot is labeled "00:00", not "24:00"; every persisted
// time_slot value is one of these labels.
func TimeGrid() []string {
	grid := make([]string, 0, GridSlotCount)
	for m := 6 * 60; m <= 24*60; m += 30 {
		grid = append(grid, fmt.Sprintf("%02d:%02d", (m/60)%24, m%60))
	}
	return grid
}

// ValidGridTime reports whether t is one of the TimeGrid labels.
func ValidGridTime(t string) bool {
	m := SlotMinutes(t)
	return m >= 6*60 && m <= 24*60 && m%30 == 0
}

// SlotMinutes converts a grid label to minutes from midnight. The "00:00"
// label closes the day and counts as 24:00, so slots compare correctly when
// deciding whether a lesson time has already elapsed.
func SlotMinutes(t string) int {
	var h, m int
	if _, err := fmt.Sscanf(t, "%02d:%02d", &h, &m); err != nil {
		return -1
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return -1
	}
	total := h*60 + m
	if total == 0 {
		return 24 * 60
	}
	return total
}
