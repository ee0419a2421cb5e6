// Package admin is the oversight layer used by administrators: filtered
// booking listings, the schedule overview, forced status changes and
// reporting.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/valet-go/internal/calendar"
	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository"
	"github.com/kirinyoku/valet-go/internal/service/booking"
	"github.com/kirinyoku/valet-go/internal/service/schedule"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Config struct {
	// Timezone in which calendar-day filters are interpreted.
	Timezone *time.Location
}

type Service struct {
	repos     repository.Repositories
	bookings  *booking.Service
	schedules *schedule.Service
	cfg       Config
}

func New(
	repos repository.Repositories,
	bookings *booking.Service,
	schedules *schedule.Service,
	cfg Config,
) *Service {
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}

	return &Service{
		repos:     repos,
		bookings:  bookings,
		schedules: schedules,
		cfg:       cfg,
	}
}

// ListBookings returns one page of bookings matching f.
//
// f.From and f.To are inclusive calendar days applied to the start time.
// Malformed days match nothing and yield an empty page rather than an error.
//
// Returns:
//   - *domain.BookingPage: the page, with Total counting all matches.
//   - error: admin.ErrInvalidSort for a sort outside the whitelist.
func (s *Service) ListBookings(ctx context.Context, f domain.BookingFilter) (*domain.BookingPage, error) {
	const op = "service.admin.ListBookings"

	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	if _, err := repository.ParseBookingSort(f.Sort); err != nil {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidSort)
	}

	empty := &domain.BookingPage{Items: []domain.Booking{}, Limit: f.Limit, Offset: f.Offset}

	r, ok := calendar.DayRange(f.From, f.To, s.cfg.Timezone)
	if !ok {
		return empty, nil
	}
	f.StartFrom, f.StartTo = r.From, r.To

	items, total, err := s.repos.Bookings().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if items == nil {
		items = []domain.Booking{}
	}

	return &domain.BookingPage{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// ListSchedules returns all schedules ordered by location, day and start
// time.
func (s *Service) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	const op = "service.admin.ListSchedules"

	list, err := s.schedules.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if list == nil {
		list = []domain.Schedule{}
	}

	return list, nil
}

// UpdateBookingStatus changes a booking's status on behalf of an
// administrator.
//
// Returns:
//   - error: admin.StatusChangeError naming the allowed statuses when to is
//     not reachable, otherwise whatever booking.Service.UpdateStatus returns.
func (s *Service) UpdateBookingStatus(ctx context.Context, id uuid.UUID, to domain.BookingStatus) (*domain.Booking, error) {
	const op = "service.admin.UpdateBookingStatus"

	if !to.Valid() {
		return nil, fmt.Errorf("%s:%w", op, booking.ErrInvalidStatus)
	}

	cur, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !cur.Status.CanTransition(to) {
		return nil, fmt.Errorf("%s:%w", op, StatusChangeError{
			From:    cur.Status,
			To:      to,
			Allowed: cur.Status.Next(),
		})
	}

	b, err := s.bookings.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

func (s *Service) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	const op = "service.admin.DeleteBooking"

	if err := s.bookings.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Revenue sums completed bookings whose start falls within the inclusive
// calendar days [from, to]. Empty bounds are open; malformed bounds give an
// empty summary.
func (s *Service) Revenue(ctx context.Context, from, to string) (*domain.RevenueSummary, error) {
	const op = "service.admin.Revenue"

	r, ok := calendar.DayRange(from, to, s.cfg.Timezone)
	if !ok {
		return &domain.RevenueSummary{From: from, To: to, ByStatus: map[domain.BookingStatus]int64{}}, nil
	}

	sum, err := s.repos.Bookings().Revenue(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	sum.From, sum.To = from, to

	return sum, nil
}

// ValetStats reports per-valet totals. Bookings carry no valet assignment
// yet, so every valet reports zero.
func (s *Service) ValetStats(ctx context.Context, valetID int64) (*domain.ValetStats, error) {
	return &domain.ValetStats{ValetID: valetID}, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
