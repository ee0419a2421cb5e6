package booking

import (
	"fmt"

	"github.com/kirinyoku/valet-go/internal/apperr"
	"github.com/kirinyoku/valet-go/internal/domain"
)

var (
	ErrBookingNotFound        = apperr.NotFound("Booking not found")
	ErrStartInPast            = apperr.Validation("Start time cannot be in the past")
	ErrNegativePrice          = apperr.Validation("Price cannot be negative")
	ErrNotesTooLong           = apperr.Validation("Notes cannot exceed %d characters", domain.MaxNotesLength)
	ErrInvalidStatus          = apperr.Validation("Invalid booking status")
	ErrUpdatedSlotUnavailable = apperr.Conflict("Updated booking time slot is not available")
	ErrConcurrentUpdate       = apperr.Conflict("Booking was modified by another request")
	ErrNotReschedulable       = apperr.Validation("Only pending, confirmed or in-progress bookings can be changed")
	ErrNotDeletable           = apperr.Conflict("Bookings that are in progress or completed cannot be deleted")

	ErrAlreadyCancelled        = apperr.New(apperr.KindInvalidTransition, "Booking is already cancelled")
	ErrCompletedNotCancellable = apperr.New(apperr.KindInvalidTransition, "Completed bookings cannot be cancelled")
)

// InvalidTransitionError reports a status change outside the lifecycle.
type InvalidTransitionError struct {
	From domain.BookingStatus
	To   domain.BookingStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("Cannot transition from %s to %s", e.From, e.To)
}

func (e InvalidTransitionError) Kind() apperr.Kind {
	return apperr.KindInvalidTransition
}
