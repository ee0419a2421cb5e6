// Package memory is an in-process storage driver implementing the repository
// and unit of work contracts. It enforces the same constraints as the
// PostgreSQL schema: unique (location, day) schedules, no overlapping active
// bookings per location and references to existing locations.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository"
	"github.com/kirinyoku/valet-go/internal/uow"
)

type state struct {
	bookings  map[uuid.UUID]domain.Booking
	schedules map[uuid.UUID]domain.Schedule
	locations map[int64]domain.Location
}

func newState() *state {
	return &state{
		bookings:  make(map[uuid.UUID]domain.Booking),
		schedules: make(map[uuid.UUID]domain.Schedule),
		locations: make(map[int64]domain.Location),
	}
}

func (s *state) clone() *state {
	cp := &state{
		bookings:  make(map[uuid.UUID]domain.Booking, len(s.bookings)),
		schedules: make(map[uuid.UUID]domain.Schedule, len(s.schedules)),
		locations: make(map[int64]domain.Location, len(s.locations)),
	}
	for k, v := range s.bookings {
		cp.bookings[k] = v
	}
	for k, v := range s.schedules {
		cp.schedules[k] = v
	}
	for k, v := range s.locations {
		cp.locations[k] = v
	}
	return cp
}

// access runs fn against a state. write selects the lock mode when the
// accessor owns the lock.
type access func(write bool, fn func(st *state) error) error

// Store keeps all data in memory. Units of work run one at a time on a copy
// of the data that replaces the original only on success.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{
		st:  newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// PutLocation creates or replaces a location.
func (s *Store) PutLocation(l domain.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.locations[l.ID] = l
}

func (s *Store) access(write bool, fn func(st *state) error) error {
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.st)
}

func (s *Store) Bookings() repository.Bookings {
	return &bookingRepo{access: s.access, now: s.now}
}

func (s *Store) Schedules() repository.Schedules {
	return &scheduleRepo{access: s.access, now: s.now}
}

func (s *Store) Locations() repository.Locations {
	return &locationRepo{access: s.access}
}

// Do runs fn atomically. Writes made through the repositories handed to fn
// become visible only if fn returns nil; hooks run after that.
func (s *Store) Do(ctx context.Context, fn uow.Func) error {
	var hooks []uow.AfterCommit

	err := func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		tx := s.st.clone()
		if err := fn(ctx, txRepos{st: tx, now: s.now}, func(h uow.AfterCommit) {
			hooks = append(hooks, h)
		}); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		s.st = tx
		return nil
	}()
	if err != nil {
		return err
	}

	uow.RunHooks(ctx, hooks)

	return nil
}

type txRepos struct {
	st  *state
	now func() time.Time
}

func (t txRepos) access(_ bool, fn func(st *state) error) error {
	return fn(t.st)
}

func (t txRepos) Bookings() repository.Bookings {
	return &bookingRepo{access: t.access, now: t.now}
}

func (t txRepos) Schedules() repository.Schedules {
	return &scheduleRepo{access: t.access, now: t.now}
}

func (t txRepos) Locations() repository.Locations {
	return &locationRepo{access: t.access}
}

type locationRepo struct {
	access access
}

func (r *locationRepo) Get(ctx context.Context, id int64) (*domain.Location, error) {
	var out *domain.Location

	err := r.access(false, func(st *state) error {
		l, ok := st.locations[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &l
		return nil
	})

	return out, err
}

func (r *locationRepo) Delete(ctx context.Context, id int64) error {
	return r.access(true, func(st *state) error {
		if _, ok := st.locations[id]; !ok {
			return repository.ErrNotFound
		}

		delete(st.locations, id)
		for k, s := range st.schedules {
			if s.LocationID == id {
				delete(st.schedules, k)
			}
		}
		for k, b := range st.bookings {
			if b.LocationID == id {
				delete(st.bookings, k)
			}
		}

		return nil
	})
}
