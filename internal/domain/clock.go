package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var clockRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ParseClock converts a 24-hour "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}

	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])

	return h*60 + mm, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ClockOf returns minutes since midnight of t in its own location.
func ClockOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func ValidDay(day int) bool {
	return day >= 0 && day <= 6
}

func DayName(day int) string {
	if !ValidDay(day) {
		return fmt.Sprintf("day %d", day)
	}
	return dayNames[day]
}

// Window returns the opening and closing minutes of s.
func (s *Schedule) Window() (open, close int, err error) {
	open, err = ParseClock(s.StartTime)
	if err != nil {
		return 0, 0, err
	}

	close, err = ParseClock(s.EndTime)
	if err != nil {
		return 0, 0, err
	}

	return open, close, nil
}

// OpenAt reports whether the minute of day falls inside [start, end) of an
// active schedule.
func (s *Schedule) OpenAt(minute int) bool {
	if !s.IsActive {
		return false
	}

	open, close, err := s.Window()
	if err != nil {
		return false
	}

	return minute >= open && minute < close
}
