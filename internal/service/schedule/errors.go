package schedule

import (
	"fmt"

	"github.com/kirinyoku/valet-go/internal/apperr"
	"github.com/kirinyoku/valet-go/internal/domain"
)

var (
	ErrScheduleNotFound = apperr.NotFound("Schedule not found")
	ErrLocationNotFound = apperr.NotFound("Location not found")
	ErrInvalidDay       = apperr.Validation("Day of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidTime      = apperr.Validation("Time must be in 24-hour HH:MM format")
	ErrInvalidWindow    = apperr.Validation("End time must be after start time")
)

// DuplicateDayError is returned when the location already has a schedule
// for the day.
type DuplicateDayError struct {
	Day int
}

func (e DuplicateDayError) Error() string {
	return fmt.Sprintf("Schedule for %s already exists for this location", domain.DayName(e.Day))
}

func (e DuplicateDayError) Kind() apperr.Kind {
	return apperr.KindConflict
}
