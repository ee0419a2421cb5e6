// Package booking is the booking lifecycle engine: it creates bookings through
// the availability checker, moves them along the status machine and emits the
// side effects of every change once it is committed.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/notify"
	"github.com/kirinyoku/valet-go/internal/repository"
	"github.com/kirinyoku/valet-go/internal/service/availability"
	"github.com/kirinyoku/valet-go/internal/uow"
)

type CreateInput struct {
	UserID     int64
	LocationID int64
	StartTime  time.Time
	EndTime    time.Time
	PriceCents int64
	Notes      string
}

// Patch changes non-status fields of a booking. Nil fields are left as they
// are.
type Patch struct {
	StartTime  *time.Time
	EndTime    *time.Time
	PriceCents *int64
	Notes      *string
}

type Service struct {
	repos    repository.Repositories
	uow      uow.Runner
	checker  *availability.Checker
	notifier notify.Notifier
	now      func() time.Time
}

func New(
	repos repository.Repositories,
	runner uow.Runner,
	checker *availability.Checker,
	notifier notify.Notifier,
) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}

	return &Service{
		repos:    repos,
		uow:      runner,
		checker:  checker,
		notifier: notifier,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for the past start check.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// Create books [in.StartTime, in.EndTime) at a location with status PENDING.
//
// The overlap check and the insert run in one transaction holding the
// location's booking lock, so of two racing requests for the same slot only
// one commits.
//
// Parameters:
//   - ctx: request-scoped context.
//   - in: booking data; times are stored in UTC.
//
// Returns:
//   - *domain.Booking: the persisted booking.
//   - error: VALIDATION for a bad window, a past start, a negative price or
//     long notes; NOT_FOUND for an unknown location; CONFLICT when the slot
//     is taken.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Booking, error) {
	const op = "service.booking.Create"

	if err := s.validateCreate(in); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	b := &domain.Booking{
		UserID:     in.UserID,
		LocationID: in.LocationID,
		StartTime:  in.StartTime.UTC(),
		EndTime:    in.EndTime.UTC(),
		Status:     domain.StatusPending,
		PriceCents: in.PriceCents,
		Notes:      in.Notes,
	}

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repositories,
		after func(uow.AfterCommit),
	) error {
		if err := repos.Bookings().LockLocation(ctx, b.LocationID); err != nil {
			return err
		}

		if err := s.checker.In(repos).Ensure(ctx, b.LocationID, b.StartTime, b.EndTime, uuid.Nil); err != nil {
			return err
		}

		if err := repos.Bookings().Create(ctx, b); err != nil {
			if errors.Is(err, repository.ErrOverlap) {
				return availability.ErrSlotUnavailable
			}
			if errors.Is(err, repository.ErrNotFound) {
				return availability.ErrLocationNotFound
			}
			return err
		}

		created := *b
		after(func(ctx context.Context) {
			s.notifier.BookingUpdated(ctx, eventOf(created))
			s.notifier.Notify(ctx, noticeOf(created))
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := s.repos.Bookings().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

// UpdateStatus moves a booking to status to.
//
// Returns:
//   - *domain.Booking: the booking after the change.
//   - error: NOT_FOUND if absent, InvalidTransitionError if to is not
//     reachable from the current status, CONFLICT if a concurrent request
//     changed the status first.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to domain.BookingStatus) (*domain.Booking, error) {
	const op = "service.booking.UpdateStatus"

	if !to.Valid() {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidStatus)
	}

	b, err := s.transition(ctx, id, to, nil)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

// Cancel moves a booking to CANCELLED.
//
// Returns:
//   - error: booking.ErrCompletedNotCancellable or booking.ErrAlreadyCancelled
//     for terminal bookings, NOT_FOUND if absent.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Cancel"

	b, err := s.transition(ctx, id, domain.StatusCancelled, func(cur *domain.Booking) error {
		switch cur.Status {
		case domain.StatusCompleted:
			return ErrCompletedNotCancellable
		case domain.StatusCancelled:
			return ErrAlreadyCancelled
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

func (s *Service) transition(
	ctx context.Context,
	id uuid.UUID,
	to domain.BookingStatus,
	guard func(cur *domain.Booking) error,
) (*domain.Booking, error) {
	var out *domain.Booking

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repositories,
		after func(uow.AfterCommit),
	) error {
		cur, err := repos.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if guard != nil {
			if err := guard(cur); err != nil {
				return err
			}
		}

		if !cur.Status.CanTransition(to) {
			return InvalidTransitionError{From: cur.Status, To: to}
		}

		updated, err := repos.Bookings().UpdateStatus(ctx, id, cur.Status, to)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return ErrBookingNotFound
			case errors.Is(err, repository.ErrStaleStatus):
				return ErrConcurrentUpdate
			}
			return err
		}

		out = updated
		changed := *updated
		after(func(ctx context.Context) {
			s.notifier.BookingUpdated(ctx, eventOf(changed))
			if changed.Status.Terminal() {
				s.notifier.Notify(ctx, noticeOf(changed))
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Update applies a patch to an active booking. A changed window is checked
// for availability with the booking itself excluded, inside the same
// transaction as the write.
//
// Returns:
//   - error: NOT_FOUND if absent; VALIDATION for an invalid patch or a
//     booking that is no longer active; booking.ErrUpdatedSlotUnavailable
//     when the new window is taken.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p Patch) (*domain.Booking, error) {
	const op = "service.booking.Update"

	if p.PriceCents != nil && *p.PriceCents < 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrNegativePrice)
	}
	if p.Notes != nil && utf8.RuneCountInString(*p.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%s:%w", op, ErrNotesTooLong)
	}

	var out *domain.Booking

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repositories,
		after func(uow.AfterCommit),
	) error {
		b, err := repos.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		reschedule := (p.StartTime != nil && !p.StartTime.Equal(b.StartTime)) ||
			(p.EndTime != nil && !p.EndTime.Equal(b.EndTime))

		if p.StartTime != nil {
			b.StartTime = p.StartTime.UTC()
		}
		if p.EndTime != nil {
			b.EndTime = p.EndTime.UTC()
		}
		if p.PriceCents != nil {
			b.PriceCents = *p.PriceCents
		}
		if p.Notes != nil {
			b.Notes = *p.Notes
		}

		if reschedule {
			if !b.Status.Active() {
				return ErrNotReschedulable
			}

			if err := repos.Bookings().LockLocation(ctx, b.LocationID); err != nil {
				return err
			}

			err := s.checker.In(repos).Ensure(ctx, b.LocationID, b.StartTime, b.EndTime, b.ID)
			if errors.Is(err, availability.ErrSlotUnavailable) {
				return ErrUpdatedSlotUnavailable
			}
			if err != nil {
				return err
			}
		}

		if err := repos.Bookings().Update(ctx, b); err != nil {
			if errors.Is(err, repository.ErrOverlap) {
				return ErrUpdatedSlotUnavailable
			}
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		out = b

		if reschedule {
			changed := *b
			after(func(ctx context.Context) {
				s.notifier.BookingUpdated(ctx, eventOf(changed))
			})
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Delete removes a booking permanently. Only administrative callers reach
// it, and bookings that are in progress or completed are kept.
//
// Returns:
//   - error: NOT_FOUND if absent, booking.ErrNotDeletable otherwise.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.booking.Delete"

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repositories,
		_ func(uow.AfterCommit),
	) error {
		b, err := repos.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if b.Status == domain.StatusInProgress || b.Status == domain.StatusCompleted {
			return ErrNotDeletable
		}

		if err := repos.Bookings().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// HasActiveForUser reports whether the user still holds an active booking,
// which blocks deleting the user.
func (s *Service) HasActiveForUser(ctx context.Context, userID int64) (bool, error) {
	const op = "service.booking.HasActiveForUser"

	n, err := s.repos.Bookings().CountActiveByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	return n > 0, nil
}

func (s *Service) validateCreate(in CreateInput) error {
	if !in.EndTime.After(in.StartTime) {
		return availability.ErrInvalidWindow
	}
	if in.StartTime.Before(s.now()) {
		return ErrStartInPast
	}
	if in.PriceCents < 0 {
		return ErrNegativePrice
	}
	if utf8.RuneCountInString(in.Notes) > domain.MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}
