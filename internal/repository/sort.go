package repository

import (
	"fmt"
	"strings"
)

// DefaultBookingSort lists newest start time first.
const DefaultBookingSort = "-start_time"

var bookingSortColumns = map[string]struct{}{
	"start_time":  {},
	"end_time":    {},
	"created_at":  {},
	"price_cents": {},
	"status":      {},
}

// BookingSort is a validated ordering for booking listings.
type BookingSort struct {
	Column string
	Desc   bool
}

// ParseBookingSort accepts "column" or "-column" for a whitelisted column. An
// empty string yields DefaultBookingSort.
func ParseBookingSort(s string) (BookingSort, error) {
	if s == "" {
		s = DefaultBookingSort
	}

	desc := strings.HasPrefix(s, "-")
	col := strings.TrimPrefix(s, "-")

	if _, ok := bookingSortColumns[col]; !ok {
		return BookingSort{}, fmt.Errorf("unsupported sort field %q", col)
	}

	return BookingSort{Column: col, Desc: desc}, nil
}

func (s BookingSort) SQL() string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	// id breaks ties so pages are stable.
	return fmt.Sprintf("%s %s, id %s", s.Column, dir, dir)
}
