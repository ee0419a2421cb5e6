package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository"
)

type scheduleRepo struct {
	access access
	now    func() time.Time
}

func (r *scheduleRepo) Create(ctx context.Context, s *domain.Schedule) error {
	const op = "memory.scheduleRepo.Create"

	return r.access(true, func(st *state) error {
		if _, ok := st.locations[s.LocationID]; !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}

		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if dayTaken(st, s.LocationID, s.DayOfWeek, s.ID) {
			return fmt.Errorf("%s:%w", op, &repository.DuplicateKeyError{Constraint: repository.ConstraintScheduleLocationDay})
		}

		now := r.now()
		s.CreatedAt = now
		s.UpdatedAt = now
		st.schedules[s.ID] = *s

		return nil
	})
}

func (r *scheduleRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	const op = "memory.scheduleRepo.Get"

	var out *domain.Schedule

	err := r.access(false, func(st *state) error {
		s, ok := st.schedules[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		out = &s
		return nil
	})

	return out, err
}

func (r *scheduleRepo) GetByDay(ctx context.Context, locationID int64, day int) (*domain.Schedule, error) {
	const op = "memory.scheduleRepo.GetByDay"

	var out *domain.Schedule

	err := r.access(false, func(st *state) error {
		for _, s := range st.schedules {
			if s.LocationID == locationID && s.DayOfWeek == day {
				out = &s
				return nil
			}
		}
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	})

	return out, err
}

func (r *scheduleRepo) ListByLocation(ctx context.Context, locationID int64) ([]domain.Schedule, error) {
	return r.list(func(s domain.Schedule) bool { return s.LocationID == locationID })
}

func (r *scheduleRepo) ListAll(ctx context.Context) ([]domain.Schedule, error) {
	return r.list(func(domain.Schedule) bool { return true })
}

func (r *scheduleRepo) Update(ctx context.Context, s *domain.Schedule) error {
	const op = "memory.scheduleRepo.Update"

	return r.access(true, func(st *state) error {
		cur, ok := st.schedules[s.ID]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		if dayTaken(st, cur.LocationID, s.DayOfWeek, s.ID) {
			return fmt.Errorf("%s:%w", op, &repository.DuplicateKeyError{Constraint: repository.ConstraintScheduleLocationDay})
		}

		cur.DayOfWeek = s.DayOfWeek
		cur.StartTime = s.StartTime
		cur.EndTime = s.EndTime
		cur.IsActive = s.IsActive
		cur.UpdatedAt = r.now()
		st.schedules[s.ID] = cur

		s.UpdatedAt = cur.UpdatedAt

		return nil
	})
}

func (r *scheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "memory.scheduleRepo.Delete"

	return r.access(true, func(st *state) error {
		if _, ok := st.schedules[id]; !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		delete(st.schedules, id)
		return nil
	})
}

func (r *scheduleRepo) list(match func(domain.Schedule) bool) ([]domain.Schedule, error) {
	var out []domain.Schedule

	err := r.access(false, func(st *state) error {
		for _, s := range st.schedules {
			if match(s) {
				out = append(out, s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LocationID != b.LocationID {
			return a.LocationID < b.LocationID
		}
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		return a.StartTime < b.StartTime
	})

	return out, nil
}

func dayTaken(st *state, locationID int64, day int, self uuid.UUID) bool {
	for id, s := range st.schedules {
		if id != self && s.LocationID == locationID && s.DayOfWeek == day {
			return true
		}
	}
	return false
}
