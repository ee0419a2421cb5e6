package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxNotesLength bounds Booking.Notes, counted in runes.
const MaxNotesLength = 500

type Location struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsActive  bool    `json:"is_active"`
}

type Booking struct {
	ID         uuid.UUID     `json:"id"`
	UserID     int64         `json:"user_id"`
	LocationID int64         `json:"location_id"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Status     BookingStatus `json:"status"`
	PriceCents int64         `json:"price_cents"`
	Notes      string        `json:"notes,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// DurationHours returns the booked span in fractional hours, or 0 when either
// bound is unset.
func (b *Booking) DurationHours() float64 {
	if b.StartTime.IsZero() || b.EndTime.IsZero() {
		return 0
	}
	return b.EndTime.Sub(b.StartTime).Hours()
}

// Overlaps reports whether b occupies any instant of [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

type Schedule struct {
	ID         uuid.UUID `json:"id"`
	LocationID int64     `json:"location_id"`
	DayOfWeek  int       `json:"day_of_week"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookingFilter narrows admin booking listings. From and To are calendar
// days in YYYY-MM-DD form; they have already been resolved into
// StartFrom/StartTo by the time the filter reaches a repository.
type BookingFilter struct {
	Status     *BookingStatus
	LocationID *int64
	UserID     *int64
	From       string
	To         string
	StartFrom  *time.Time
	StartTo    *time.Time
	Sort       string
	Limit      int
	Offset     int
}

type BookingPage struct {
	Items  []Booking `json:"items"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// BookingEvent is pushed to live subscribers on every status change.
type BookingEvent struct {
	BookingID  uuid.UUID     `json:"booking_id"`
	Status     BookingStatus `json:"status"`
	LocationID int64         `json:"location_id"`
	UserID     int64         `json:"user_id"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Notification is a user facing message about a booking.
type Notification struct {
	UserID    int64          `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type RevenueSummary struct {
	From           string                  `json:"from,omitempty"`
	To             string                  `json:"to,omitempty"`
	CompletedCount int64                   `json:"completed_count"`
	RevenueCents   int64                   `json:"revenue_cents"`
	ByStatus       map[BookingStatus]int64 `json:"by_status"`
}

type ValetStats struct {
	ValetID        int64 `json:"valet_id"`
	CompletedCount int64 `json:"completed_count"`
	RevenueCents   int64 `json:"revenue_cents"`
}
