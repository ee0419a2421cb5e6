// Package location answers the questions the location collaborator asks of
// the booking core and guards location deletion.
package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirinyoku/valet-go/internal/apperr"
	"github.com/kirinyoku/valet-go/internal/repository"
	redisrepo "github.com/kirinyoku/valet-go/internal/repository/redis"
	"github.com/kirinyoku/valet-go/internal/uow"
)

var (
	ErrLocationNotFound  = apperr.NotFound("Location not found")
	ErrHasActiveBookings = apperr.Conflict("Location has active bookings and cannot be deleted")
)

type Service struct {
	repos repository.Repositories
	uow   uow.Runner
	cache *redisrepo.Cache
}

func New(repos repository.Repositories, runner uow.Runner, cache *redisrepo.Cache) *Service {
	return &Service{repos: repos, uow: runner, cache: cache}
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	const op = "service.location.Exists"

	_, err := s.repos.Locations().Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	return true, nil
}

// IsActive reports false for unknown locations.
func (s *Service) IsActive(ctx context.Context, id int64) (bool, error) {
	const op = "service.location.IsActive"

	loc, err := s.repos.Locations().Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	return loc.IsActive, nil
}

func (s *Service) HasActiveBookings(ctx context.Context, id int64) (bool, error) {
	const op = "service.location.HasActiveBookings"

	n, err := s.repos.Bookings().CountActiveByLocation(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	return n > 0, nil
}

// Delete removes a location with its schedules and past bookings. It is
// refused while any active booking remains. The location's booking lock is
// held so no booking can be created between the check and the delete.
//
// Returns:
//   - error: location.ErrLocationNotFound, location.ErrHasActiveBookings.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "service.location.Delete"

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repositories,
		after func(uow.AfterCommit),
	) error {
		if err := repos.Bookings().LockLocation(ctx, id); err != nil {
			return err
		}

		n, err := repos.Bookings().CountActiveByLocation(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrHasActiveBookings
		}

		if err := repos.Locations().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateLocation(ctx, id)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
