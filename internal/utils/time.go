package utils

import (
	"fmt"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
)

// DayString returns the local calendar date (YYYY-MM-DD) for a
// timestamp. All "same day" comparisons in the application go through
// this, so duplicate completions within a day collapse to one date.
func DayString(t time.Time) string {
	return t.Local().Format(constants.DateFormat)
}

// Today returns today's local calendar date string.
func Today() string {
	return DayString(time.Now())
}

// ParseDay parses a YYYY-MM-DD string into a local-midnight time.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
}

// ISOWeekLabel returns the ISO 8601 week identifier for a timestamp,
// e.g. "2024-W23". Weeks start on Monday and week 1 contains the year's
// first Thursday, which is exactly time.Time.ISOWeek's contract.
func ISOWeekLabel(t time.Time) string {
	year, week := t.Local().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthLabel returns the calendar month identifier (YYYY-MM).
func MonthLabel(t time.Time) string {
	return t.Local().Format(constants.MonthFormat)
}

// DaysInMonth returns the number of days in the month identified by a
// YYYY-MM label. Returns 0 for a malformed label.
func DaysInMonth(month string) int {
	t, err := time.Parse(constants.MonthFormat, month)
	if err != nil {
		return 0
	}
	// Day zero of the following month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseClock parses an HH:MM string into hour and minute components.
func ParseClock(clock string) (hour, minute int, err error) {
	t, err := time.Parse(constants.TimeFormat, clock)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}
	return t.Hour(), t.Minute(), nil
}

// NextOccurrence returns the next future occurrence of the given
// time-of-day relative to now. If today's occurrence has already
// passed, the result falls on tomorrow.
func NextOccurrence(now time.Time, hour, minute int) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}
