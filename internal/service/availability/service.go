// Package availability decides whether a time window at a location can be
// booked: the location must be open for the whole window and no active
// booking may intersect it.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/valet-go/internal/apperr"
	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository"
)

var (
	ErrInvalidWindow    = apperr.Validation("End time must be after start time")
	ErrSlotUnavailable  = apperr.Conflict("Time slot is not available")
	ErrLocationClosed   = apperr.Validation("Location is closed during the requested time")
	ErrLocationNotFound = apperr.NotFound("Location not found")
	ErrLocationInactive = apperr.Validation("Location is not accepting bookings")
)

type Config struct {
	// Timezone in which schedules' HH:MM windows are interpreted.
	Timezone *time.Location
	// SkipOperatingHours disables the schedule check; overlap is still
	// enforced.
	SkipOperatingHours bool
}

type Checker struct {
	repos repository.Repositories
	cfg   Config
}

func New(repos repository.Repositories, cfg Config) *Checker {
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}

	return &Checker{repos: repos, cfg: cfg}
}

// In returns a copy of the checker reading through repos, typically the
// repositories of an open transaction.
func (c *Checker) In(repos repository.Repositories) *Checker {
	cp := *c
	cp.repos = repos
	return &cp
}

// CheckOverlap reports whether [start, end) is unavailable at the location
// because an active booking other than exclude intersects it.
//
// Parameters:
//   - ctx: request-scoped context.
//   - locationID: location to check; its existence is the caller's concern.
//   - start, end: half-open window, start before end.
//   - exclude: booking to ignore when rescheduling it, uuid.Nil for none.
//
// Returns:
//   - bool: true when the slot is taken.
//   - error: availability.ErrInvalidWindow if end is not after start.
func (c *Checker) CheckOverlap(
	ctx context.Context,
	locationID int64,
	start, end time.Time,
	exclude uuid.UUID,
) (bool, error) {
	const op = "service.availability.CheckOverlap"

	if !end.After(start) {
		return false, fmt.Errorf("%s:%w", op, ErrInvalidWindow)
	}

	taken, err := c.repos.Bookings().HasOverlap(ctx, locationID, start, end, exclude)
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	return taken, nil
}

// WithinOperatingHours reports whether [start, end) lies inside the active
// schedule of the start's weekday. end may equal closing time.
func (c *Checker) WithinOperatingHours(ctx context.Context, locationID int64, start, end time.Time) (bool, error) {
	const op = "service.availability.WithinOperatingHours"

	ls := start.In(c.cfg.Timezone)
	le := end.In(c.cfg.Timezone)

	sched, err := c.repos.Schedules().GetByDay(ctx, locationID, int(ls.Weekday()))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s:%w", op, err)
	}

	if !sched.IsActive {
		return false, nil
	}

	open, close, err := sched.Window()
	if err != nil {
		return false, nil
	}

	// Wall-clock minutes, so DST transition days keep their HH:MM hours.
	endMin := domain.ClockOf(le)
	if le.Second() != 0 || le.Nanosecond() != 0 {
		endMin++
	}

	y, m, d := ls.Date()
	if ey, em, ed := le.Date(); ey != y || em != m || ed != d {
		// only an end at the following midnight stays on the start's day
		if !le.Equal(time.Date(y, m, d+1, 0, 0, 0, 0, c.cfg.Timezone)) {
			return false, nil
		}
		endMin = 24 * 60
	}

	return domain.ClockOf(ls) >= open && endMin <= close, nil
}

// Ensure verifies that the location accepts bookings and that [start, end)
// is inside operating hours and free.
//
// Returns:
//   - error: availability.ErrLocationNotFound, ErrLocationInactive,
//     ErrInvalidWindow, ErrLocationClosed or ErrSlotUnavailable.
func (c *Checker) Ensure(
	ctx context.Context,
	locationID int64,
	start, end time.Time,
	exclude uuid.UUID,
) error {
	const op = "service.availability.Ensure"

	if !end.After(start) {
		return fmt.Errorf("%s:%w", op, ErrInvalidWindow)
	}

	loc, err := c.repos.Locations().Get(ctx, locationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrLocationNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}
	if !loc.IsActive {
		return fmt.Errorf("%s:%w", op, ErrLocationInactive)
	}

	if !c.cfg.SkipOperatingHours {
		open, err := c.WithinOperatingHours(ctx, locationID, start, end)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if !open {
			return fmt.Errorf("%s:%w", op, ErrLocationClosed)
		}
	}

	taken, err := c.CheckOverlap(ctx, locationID, start, end, exclude)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	if taken {
		return fmt.Errorf("%s:%w", op, ErrSlotUnavailable)
	}

	return nil
}
