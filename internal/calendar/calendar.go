// Package calendar builds the continuous daily index that every stock
// series is aligned to.
package calendar

import (
	"fmt"
	"strings"
	"time"

	apperrors "consolidator/internal/errors"
	"consolidator/pkg/contracts/domain"
)

// Day is the calendar step.
const Day = 24 * time.Hour

// Range is an inclusive span of calendar days at UTC midnight.
type Range struct {
	Start time.Time
	End   time.Time
}

// Parse reads an ISO YYYY-MM-DD date. Surrounding whitespace is ignored.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperrors.NewParseError("date is empty", nil)
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewParseError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value), err)
	}
	return t, nil
}

// Build parses start and end and returns the range between them. maxDays
// bounds the number of days; zero means unbounded.
func Build(start, end string, maxDays int) (Range, error) {
	s, err := Parse(start)
	if err != nil {
		return Range{}, fmt.Errorf("start date: %w", err)
	}
	e, err := Parse(end)
	if err != nil {
		return Range{}, fmt.Errorf("end date: %w", err)
	}
	return NewRange(s, e, maxDays)
}

// NewRange validates an already parsed pair of dates.
func NewRange(start, end time.Time, maxDays int) (Range, error) {
	r := Range{Start: Truncate(start), End: Truncate(end)}
	if r.Start.After(r.End) {
		return Range{}, apperrors.NewAppValidationError(fmt.Sprintf(
			"start date %s is after end date %s",
			r.Start.Format(domain.DateLayout), r.End.Format(domain.DateLayout)))
	}
	if maxDays > 0 && r.Days() > maxDays {
		return Range{}, apperrors.NewAppValidationError(fmt.Sprintf(
			"date range spans %d days, the maximum is %d", r.Days(), maxDays))
	}
	return r, nil
}

// Days is the number of calendar days in the range, both ends included.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start)/Day) + 1
}

// Dates returns every day of the range in ascending order.
func (r Range) Dates() []time.Time {
	dates := make([]time.Time, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Contains reports whether the day of t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	d := Truncate(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Index returns the row position of t in Dates, or -1 if out of range.
func (r Range) Index(t time.Time) int {
	if !r.Contains(t) {
		return -1
	}
	return int(Truncate(t).Sub(r.Start) / Day)
}

// String formats the range as "start..end".
func (r Range) String() string {
	return r.Start.Format(domain.DateLayout) + ".." + r.End.Format(domain.DateLayout)
}

// Truncate drops the time of day, keeping the wall-clock date, in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports whether t is a Saturday or a Sunday.
func IsWeekend(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}
