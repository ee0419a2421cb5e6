// Package repository declares the storage contracts of the booking core.
// Implementations live in the postgres and memory subpackages.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/valet-go/internal/domain"
)

// Schedule constraint names shared by every driver.
const (
	ConstraintScheduleLocationDay = "schedules_location_day_key"
	ConstraintBookingNoOverlap    = "bookings_no_overlap"
)

type Bookings interface {
	Create(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// GetForUpdate loads a booking and locks it for the rest of the
	// surrounding transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// LockLocation serializes booking writers of one location until the
	// surrounding transaction ends.
	LockLocation(ctx context.Context, locationID int64) error
	// HasOverlap reports whether an active booking other than exclude
	// intersects [start, end).
	HasOverlap(ctx context.Context, locationID int64, start, end time.Time, exclude uuid.UUID) (bool, error)
	Update(ctx context.Context, b *domain.Booking) error
	// UpdateStatus moves a booking from -> to and returns ErrStaleStatus when
	// the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) (*domain.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int64, error)
	CountActiveByLocation(ctx context.Context, locationID int64) (int64, error)
	CountActiveByUser(ctx context.Context, userID int64) (int64, error)
	// Revenue sums completed bookings whose start falls in [from, to] and
	// counts bookings per status over the same range.
	Revenue(ctx context.Context, from, to *time.Time) (*domain.RevenueSummary, error)
}

type Schedules interface {
	Create(ctx context.Context, s *domain.Schedule) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Schedule, error)
	GetByDay(ctx context.Context, locationID int64, day int) (*domain.Schedule, error)
	ListByLocation(ctx context.Context, locationID int64) ([]domain.Schedule, error)
	// ListAll orders by location, day of week, start time.
	ListAll(ctx context.Context) ([]domain.Schedule, error)
	Update(ctx context.Context, s *domain.Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Locations interface {
	Get(ctx context.Context, id int64) (*domain.Location, error)
	Delete(ctx context.Context, id int64) error
}

// Repositories groups the repositories of one storage handle, either the
// shared pool or a single transaction.
type Repositories interface {
	Bookings() Bookings
	Schedules() Schedules
	Locations() Locations
}
