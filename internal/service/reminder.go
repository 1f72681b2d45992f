package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	firstDoseMinute = 6 * 60
	dosingWindow    = 16 * 60
	onTimeWindow    = 30 * time.Minute
)

// ReminderClockTimes spreads timesPerDay doses over the waking day: the first at 06:00,
// then every 16h/timesPerDay.
func ReminderClockTimes(timesPerDay int) []string {
	if timesPerDay < 1 {
		timesPerDay = 1
	}
	step := dosingWindow / timesPerDay
	out := make([]string, 0, timesPerDay)
	for i := 0; i < timesPerDay; i++ {
		m := firstDoseMinute + i*step
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, ErrInvalidClockTime
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidClockTime
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidClockTime
	}
	return hour, minute, nil
}

// NormalizeClockTimes validates, dedupes and sorts reminder times.
func NormalizeClockTimes(times []string) ([]string, error) {
	seen := make(map[string]bool, len(times))
	out := make([]string, 0, len(times))
	for _, t := range times {
		h, m, err := ParseClock(t)
		if err != nil {
			return nil, err
		}
		c := fmt.Sprintf("%02d:%02d", h, m)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out, nil
}

// DaysBetween counts calendar days from from to to in loc.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// IsDoseDay reports whether day index d of a course is a dosing day.
func IsDoseDay(d, numberOfDays, gapBetweenDays int) bool {
	if d < 0 || d >= numberOfDays {
		return false
	}
	if gapBetweenDays < 0 {
		gapBetweenDays = 0
	}
	return d%(gapBetweenDays+1) == 0
}

// StartOfDay is midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ClockOn returns the instant clock ("HH:MM") falls on during day's calendar day in loc.
func ClockOn(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.In(loc).Date()
	return time.Date(y, mo, d, h, m, 0, 0, loc), nil
}

// IsOnTime reports whether takenAt is within 30 minutes either side of scheduled.
func IsOnTime(takenAt, scheduled time.Time) bool {
	diff := takenAt.Sub(scheduled)
	if diff < 0 {
		diff = -diff
	}
	return diff <= onTimeWindow
}

// NextStreak returns the consecutive-day count after a dose at takenAt.
func NextStreak(lastTaken *time.Time, streak int, takenAt time.Time, loc *time.Location) int {
	if lastTaken == nil {
		return 1
	}
	switch DaysBetween(*lastTaken, takenAt, loc) {
	case 0:
		if streak < 1 {
			return 1
		}
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}
