// Package calendar resolves calendar-day filters into instant ranges.
package calendar

import (
	"time"
)

const DayLayout = "2006-01-02"

// Range is an inclusive instant range. A nil bound is open.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// DayRange expands "YYYY-MM-DD" bounds into [from 00:00:00.000, to
// 23:59:59.999] in loc. Empty strings leave the matching bound open. ok is
// false when either non-empty bound is malformed; callers treat that as "no
// matching records".
func DayRange(from, to string, loc *time.Location) (r Range, ok bool) {
	if loc == nil {
		loc = time.UTC
	}

	if from != "" {
		d, err := time.ParseInLocation(DayLayout, from, loc)
		if err != nil {
			return Range{}, false
		}
		start := startOfDay(d)
		r.From = &start
	}

	if to != "" {
		d, err := time.ParseInLocation(DayLayout, to, loc)
		if err != nil {
			return Range{}, false
		}
		end := endOfDay(d)
		r.To = &end
	}

	return r, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
