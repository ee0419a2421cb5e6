package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/valet-go/internal/calendar"
	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository"
)

type bookingRepo struct {
	access access
	now    func() time.Time
}

func (r *bookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "memory.bookingRepo.Create"

	return r.access(true, func(st *state) error {
		if _, ok := st.locations[b.LocationID]; !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}

		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		if _, ok := st.bookings[b.ID]; ok {
			return fmt.Errorf("%s:%w", op, &repository.DuplicateKeyError{Constraint: "bookings_pkey"})
		}

		if b.Status.Active() && overlaps(st, b.LocationID, b.StartTime, b.EndTime, b.ID) {
			return fmt.Errorf("%s:%w", op, repository.ErrOverlap)
		}

		now := r.now()
		b.CreatedAt = now
		b.UpdatedAt = now
		st.bookings[b.ID] = *b

		return nil
	})
}

func (r *bookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "memory.bookingRepo.Get"

	var out *domain.Booking

	err := r.access(false, func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		out = &b
		return nil
	})

	return out, err
}

// GetForUpdate is Get: units of work already run exclusively.
func (r *bookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.Get(ctx, id)
}

func (r *bookingRepo) LockLocation(ctx context.Context, locationID int64) error {
	return nil
}

func (r *bookingRepo) HasOverlap(
	ctx context.Context,
	locationID int64,
	start, end time.Time,
	exclude uuid.UUID,
) (bool, error) {
	var found bool

	err := r.access(false, func(st *state) error {
		found = overlaps(st, locationID, start, end, exclude)
		return nil
	})

	return found, err
}

func (r *bookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	const op = "memory.bookingRepo.Update"

	return r.access(true, func(st *state) error {
		cur, ok := st.bookings[b.ID]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}

		if cur.Status.Active() && overlaps(st, cur.LocationID, b.StartTime, b.EndTime, b.ID) {
			return fmt.Errorf("%s:%w", op, repository.ErrOverlap)
		}

		cur.StartTime = b.StartTime
		cur.EndTime = b.EndTime
		cur.PriceCents = b.PriceCents
		cur.Notes = b.Notes
		cur.UpdatedAt = r.now()
		st.bookings[b.ID] = cur

		b.UpdatedAt = cur.UpdatedAt

		return nil
	})
}

func (r *bookingRepo) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.BookingStatus,
) (*domain.Booking, error) {
	const op = "memory.bookingRepo.UpdateStatus"

	var out *domain.Booking

	err := r.access(true, func(st *state) error {
		cur, ok := st.bookings[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		if cur.Status != from {
			return fmt.Errorf("%s:%w", op, repository.ErrStaleStatus)
		}

		if to.Active() && !from.Active() && overlaps(st, cur.LocationID, cur.StartTime, cur.EndTime, id) {
			return fmt.Errorf("%s:%w", op, repository.ErrOverlap)
		}

		cur.Status = to
		cur.UpdatedAt = r.now()
		st.bookings[id] = cur
		out = &cur

		return nil
	})

	return out, err
}

func (r *bookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "memory.bookingRepo.Delete"

	return r.access(true, func(st *state) error {
		if _, ok := st.bookings[id]; !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		delete(st.bookings, id)
		return nil
	})
}

func (r *bookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int64, error) {
	const op = "memory.bookingRepo.List"

	order, err := repository.ParseBookingSort(f.Sort)
	if err != nil {
		return nil, 0, fmt.Errorf("%s:%w", op, err)
	}

	var matched []domain.Booking

	err = r.access(false, func(st *state) error {
		for _, b := range st.bookings {
			if matchesFilter(b, f) {
				matched = append(matched, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool {
		c := compareBookings(matched[i], matched[j], order.Column)
		if c == 0 {
			c = strings.Compare(matched[i].ID.String(), matched[j].ID.String())
		}
		if order.Desc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matched))

	lo := min(f.Offset, len(matched))
	hi := len(matched)
	if f.Limit > 0 {
		hi = min(lo+f.Limit, len(matched))
	}

	page := make([]domain.Booking, hi-lo)
	copy(page, matched[lo:hi])

	return page, total, nil
}

func (r *bookingRepo) CountActiveByLocation(ctx context.Context, locationID int64) (int64, error) {
	return r.countActive(func(b domain.Booking) bool { return b.LocationID == locationID })
}

func (r *bookingRepo) CountActiveByUser(ctx context.Context, userID int64) (int64, error) {
	return r.countActive(func(b domain.Booking) bool { return b.UserID == userID })
}

func (r *bookingRepo) Revenue(ctx context.Context, from, to *time.Time) (*domain.RevenueSummary, error) {
	sum := &domain.RevenueSummary{ByStatus: make(map[domain.BookingStatus]int64)}
	rng := calendar.Range{From: from, To: to}

	err := r.access(false, func(st *state) error {
		for _, b := range st.bookings {
			if !rng.Contains(b.StartTime) {
				continue
			}

			sum.ByStatus[b.Status]++
			if b.Status == domain.StatusCompleted {
				sum.CompletedCount++
				sum.RevenueCents += b.PriceCents
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sum, nil
}

func (r *bookingRepo) countActive(match func(domain.Booking) bool) (int64, error) {
	var n int64

	err := r.access(false, func(st *state) error {
		for _, b := range st.bookings {
			if b.Status.Active() && match(b) {
				n++
			}
		}
		return nil
	})

	return n, err
}

func overlaps(st *state, locationID int64, start, end time.Time, exclude uuid.UUID) bool {
	for id, b := range st.bookings {
		if id == exclude || b.LocationID != locationID || !b.Status.Active() {
			continue
		}
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func matchesFilter(b domain.Booking, f domain.BookingFilter) bool {
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.LocationID != nil && b.LocationID != *f.LocationID {
		return false
	}
	if f.UserID != nil && b.UserID != *f.UserID {
		return false
	}
	return calendar.Range{From: f.StartFrom, To: f.StartTo}.Contains(b.StartTime)
}

func compareBookings(a, b domain.Booking, column string) int {
	switch column {
	case "end_time":
		return a.EndTime.Compare(b.EndTime)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "price_cents":
		return cmpInt64(a.PriceCents, b.PriceCents)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	default:
		return a.StartTime.Compare(b.StartTime)
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
