package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeGridShape(t *testing.T) {
	grid := TimeGrid()
	require.Len(t, grid, GridSlotCount)
	assert.Equal(t, "06:00", grid[0])
	assert.Equal(t, "23:30", grid[len(grid)-2])
	assert.Equal(t, "00:00", grid[len(grid)-1])
}

func TestTimeGridAllLabelsValid(t *testing.T) {
	for _, label := range TimeGrid() {
		assert.True(t, ValidGridTime(label), "label %s should be valid", label)
	}
}

func TestValidGridTimeRejectsOffGrid(t *testing.T) {
	assert.False(t, ValidGridTime("05:30"))
	assert.False(t, ValidGridTime("06:15"))
	assert.False(t, ValidGridTime("24:00"))
	assert.False(t, ValidGridTime("bogus"))
	assert.False(t, ValidGridTime(""))
}

func TestSlotMinutesMidnightClosesDay(t *testing.T) {
	assert.Equal(t, 24*60, SlotMinutes("00:00"))
	assert.Equal(t, 6*60, SlotMinutes("06:00"))
	assert.Equal(t, 23*60+30, SlotMinutes("23:30"))
	assert.Equal(t, -1, SlotMinutes("nope"))
}

func TestSlotMinutesOrdersEvening(t *testing.T) {
	// "00:00" must sort after every evening slot.
	assert.Greater(t, SlotMinutes("00:00"), SlotMinutes("23:30"))
}

func TestWeekSlotKey(t *testing.T) {
	slot := WeekSlot{Day: 2, Time: "14:30"}
	assert.Equal(t, "2-14:30", slot.Key())
}

func TestWeekSlotValid(t *testing.T) {
	assert.True(t, WeekSlot{Day: 0, Time: "06:00"}.Valid())
	assert.True(t, WeekSlot{Day: 5, Time: "00:00"}.Valid())
	assert.False(t, WeekSlot{Day: 6, Time: "06:00"}.Valid())
	assert.False(t, WeekSlot{Day: -1, Time: "06:00"}.Valid())
	assert.False(t, WeekSlot{Day: 1, Time: "06:10"}.Valid())
}

func TestWeekdayNameRoundTrip(t *testing.T) {
	names := []string{"Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}
	for i, want := range names {
		name, ok := WeekdayName(i)
		require.True(t, ok)
		assert.Equal(t, want, name)

		idx, ok := WeekdayIndex(name)
		require.True(t, ok)
		assert.Equal(t, i, idx)
	}

	_, ok := WeekdayName(6)
	assert.False(t, ok)
	_, ok = WeekdayIndex("Domingo")
	assert.False(t, ok)
}
