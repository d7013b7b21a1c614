// Package dateutil provides date parsing and term-week utilities.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrBeforeTerm        = errors.New("date is before the term starts")
)

// ParseDate parses a date string in YYYY-MM-DD format as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	t = TruncateToDay(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday becomes day 7 in ISO week
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

// TermWeek returns the 1-based teaching week containing t, counting weeks
// from the Monday of the week termStart falls in.
func TermWeek(termStart, t time.Time) (int, error) {
	first := WeekStart(termStart)
	day := TruncateToDay(t.In(first.Location()))
	if day.Before(first) {
		return 0, ErrBeforeTerm
	}
	// Count calendar days so DST shifts never split a week.
	days := 0
	for d := first; d.Before(day); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days/7 + 1, nil
}
