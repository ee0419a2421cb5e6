// Package schedule manages the weekly operating hours of locations.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository"
	redisrepo "github.com/kirinyoku/valet-go/internal/repository/redis"
	"github.com/kirinyoku/valet-go/internal/uow"
)

// Input describes one schedule to create. IsActive defaults to true.
type Input struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  *bool  `json:"is_active,omitempty"`
}

type Patch struct {
	DayOfWeek *int
	StartTime *string
	EndTime   *string
	IsActive  *bool
}

type Config struct {
	CacheTTL time.Duration
}

type Service struct {
	repos repository.Repositories
	uow   uow.Runner
	cache *redisrepo.Cache
	cfg   Config
}

func New(repos repository.Repositories, runner uow.Runner, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	return &Service{
		repos: repos,
		uow:   runner,
		cache: cache,
		cfg:   cfg,
	}
}

// Create adds the schedule of one weekday to a location.
//
// Parameters:
//   - ctx: request-scoped context.
//   - locationID: location the schedule belongs to.
//   - in: day and HH:MM window; times are stored normalized to two digits.
//
// Returns:
//   - *domain.Schedule: the persisted schedule.
//   - error: VALIDATION for a bad day, time or window; NOT_FOUND for an
//     unknown location; DuplicateDayError when the day is already scheduled.
func (s *Service) Create(ctx context.Context, locationID int64, in Input) (*domain.Schedule, error) {
	const op = "service.schedule.Create"

	sched := &domain.Schedule{
		LocationID: locationID,
		DayOfWeek:  in.DayOfWeek,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		IsActive:   in.IsActive == nil || *in.IsActive,
	}
	if err := normalize(sched); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repositories,
		after func(uow.AfterCommit),
	) error {
		if _, err := repos.Locations().Get(ctx, locationID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		if _, err := repos.Schedules().GetByDay(ctx, locationID, sched.DayOfWeek); err == nil {
			return DuplicateDayError{Day: sched.DayOfWeek}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := repos.Schedules().Create(ctx, sched); err != nil {
			if repository.IsDuplicateKey(err) {
				return DuplicateDayError{Day: sched.DayOfWeek}
			}
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateLocation(ctx, locationID)
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sched, nil
}

// Update changes a schedule. Start and end are re-validated together
// whenever either of them changes.
//
// Returns:
//   - error: schedule.ErrScheduleNotFound if absent, VALIDATION for bad
//     values, DuplicateDayError when moving onto a scheduled day.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p Patch) (*domain.Schedule, error) {
	const op = "service.schedule.Update"

	var out *domain.Schedule

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repositories,
		after func(uow.AfterCommit),
	) error {
		sched, err := repos.Schedules().Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrScheduleNotFound
			}
			return err
		}

		if p.DayOfWeek != nil {
			sched.DayOfWeek = *p.DayOfWeek
		}
		if p.StartTime != nil {
			sched.StartTime = *p.StartTime
		}
		if p.EndTime != nil {
			sched.EndTime = *p.EndTime
		}
		if p.IsActive != nil {
			sched.IsActive = *p.IsActive
		}

		if err := normalize(sched); err != nil {
			return err
		}

		if err := repos.Schedules().Update(ctx, sched); err != nil {
			if repository.IsDuplicateKey(err) {
				return DuplicateDayError{Day: sched.DayOfWeek}
			}
			if errors.Is(err, repository.ErrNotFound) {
				return ErrScheduleNotFound
			}
			return err
		}

		out = sched
		locationID := sched.LocationID
		after(func(ctx context.Context) {
			_ = s.cache.InvalidateLocation(ctx, locationID)
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.schedule.Delete"

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repositories,
		after func(uow.AfterCommit),
	) error {
		sched, err := repos.Schedules().Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrScheduleNotFound
			}
			return err
		}

		if err := repos.Schedules().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrScheduleNotFound
			}
			return err
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateLocation(ctx, sched.LocationID)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	const op = "service.schedule.Get"

	sched, err := s.repos.Schedules().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrScheduleNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sched, nil
}

// ListByLocation returns the weekly schedule of a location ordered by day.
// Results are cached until the next schedule change of the location.
func (s *Service) ListByLocation(ctx context.Context, locationID int64) ([]domain.Schedule, error) {
	const op = "service.schedule.ListByLocation"

	out, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyLocationSchedules(locationID),
		s.cfg.CacheTTL,
		func(ctx context.Context) ([]domain.Schedule, error) {
			list, err := s.repos.Schedules().ListByLocation(ctx, locationID)
			if err != nil {
				return nil, err
			}
			if list == nil {
				list = []domain.Schedule{}
			}
			return list, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// ListAll returns every schedule ordered by location, day and start time.
func (s *Service) ListAll(ctx context.Context) ([]domain.Schedule, error) {
	const op = "service.schedule.ListAll"

	out, err := s.repos.Schedules().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// IsLocationOpen reports whether the location is open at clock on day.
// Malformed input, a missing or inactive schedule and times outside
// [start, end) all yield false without an error.
func (s *Service) IsLocationOpen(ctx context.Context, locationID int64, day int, clock string) (bool, error) {
	const op = "service.schedule.IsLocationOpen"

	minute, err := domain.ParseClock(clock)
	if err != nil || !domain.ValidDay(day) {
		return false, nil
	}

	list, err := s.ListByLocation(ctx, locationID)
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	for i := range list {
		if list[i].DayOfWeek == day {
			return list[i].OpenAt(minute), nil
		}
	}

	return false, nil
}

// normalize validates sched and rewrites its times as zero-padded HH:MM.
func normalize(sched *domain.Schedule) error {
	if !domain.ValidDay(sched.DayOfWeek) {
		return ErrInvalidDay
	}

	open, err := domain.ParseClock(sched.StartTime)
	if err != nil {
		return ErrInvalidTime
	}
	close, err := domain.ParseClock(sched.EndTime)
	if err != nil {
		return ErrInvalidTime
	}
	if close <= open {
		return ErrInvalidWindow
	}

	sched.StartTime = domain.FormatClock(open)
	sched.EndTime = domain.FormatClock(close)

	return nil
}
