package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderClockTimes(t *testing.T) {
	tests := []struct {
		n    int
		want []string
	}{
		{1, []string{"06:00"}},
		{2, []string{"06:00", "14:00"}},
		{3, []string{"06:00", "11:20", "16:40"}},
		{4, []string{"06:00", "10:00", "14:00", "18:00"}},
		{0, []string{"06:00"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReminderClockTimes(tt.n), "timesPerDay=%d", tt.n)
	}
}

func TestIsDoseDay(t *testing.T) {
	// every day for 3 days
	assert.True(t, IsDoseDay(0, 3, 0))
	assert.True(t, IsDoseDay(2, 3, 0))
	assert.False(t, IsDoseDay(3, 3, 0))
	assert.False(t, IsDoseDay(-1, 3, 0))

	// every other day
	assert.True(t, IsDoseDay(0, 7, 1))
	assert.False(t, IsDoseDay(1, 7, 1))
	assert.True(t, IsDoseDay(2, 7, 1))
	assert.True(t, IsDoseDay(6, 7, 1))

	// every third day
	assert.True(t, IsDoseDay(3, 10, 2))
	assert.False(t, IsDoseDay(4, 10, 2))
}

func TestIsOnTime(t *testing.T) {
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	assert.True(t, IsOnTime(at, at))
	assert.True(t, IsOnTime(at.Add(30*time.Minute), at))
	assert.True(t, IsOnTime(at.Add(-30*time.Minute), at))
	assert.False(t, IsOnTime(at.Add(31*time.Minute), at))
	assert.False(t, IsOnTime(at.Add(-31*time.Minute), at))
}

func TestNextStreak(t *testing.T) {
	loc := time.UTC
	day1 := time.Date(2026, 3, 10, 8, 0, 0, 0, loc)

	assert.Equal(t, 1, NextStreak(nil, 0, day1, loc))

	sameDay := day1.Add(6 * time.Hour)
	assert.Equal(t, 3, NextStreak(&day1, 3, sameDay, loc))

	nextDay := day1.Add(20 * time.Hour)
	assert.Equal(t, 4, NextStreak(&day1, 3, nextDay, loc))

	gap := day1.AddDate(0, 0, 2)
	assert.Equal(t, 1, NextStreak(&day1, 3, gap, loc))
}

func TestNormalizeClockTimes(t *testing.T) {
	got, err := NormalizeClockTimes([]string{"21:30", "08:05", "21:30"})
	require.NoError(t, err)
	assert.Equal(t, []string{"08:05", "21:30"}, got)

	for _, bad := range []string{"8:00", "24:00", "12:60", "noon", "12:00:00"} {
		_, err := NormalizeClockTimes([]string{bad})
		assert.ErrorIs(t, err, ErrInvalidClockTime, bad)
	}
}

func TestDaysBetween_UsesLocationCalendar(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	// 20:00 UTC on the 10th is already the 11th in IST
	late := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(start, late, loc))
	midday := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysBetween(start, midday, loc))
}
