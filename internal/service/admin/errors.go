package admin

import (
	"fmt"
	"strings"

	"github.com/kirinyoku/valet-go/internal/apperr"
	"github.com/kirinyoku/valet-go/internal/domain"
)

var ErrInvalidSort = apperr.Validation("Unsupported sort field")

// StatusChangeError is the admin form of an invalid transition: it names the
// statuses the booking could move to instead.
type StatusChangeError struct {
	From    domain.BookingStatus
	To      domain.BookingStatus
	Allowed []domain.BookingStatus
}

func (e StatusChangeError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("Cannot change booking status from %s to %s: %s is a final status", e.From, e.To, e.From)
	}

	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}

	return fmt.Sprintf(
		"Cannot change booking status from %s to %s: allowed next statuses are %s",
		e.From, e.To, strings.Join(allowed, ", "),
	)
}

func (e StatusChangeError) Kind() apperr.Kind {
	return apperr.KindInvalidTransition
}
