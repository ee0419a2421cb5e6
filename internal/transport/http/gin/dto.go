package httpgin

import (
	"time"

	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/service/schedule"
)

type CreateBookingRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	LocationID int64  `json:"location_id" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	PriceCents int64  `json:"price_cents"`
	Notes      string `json:"notes"`
}

type UpdateBookingRequest struct {
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	PriceCents *int64  `json:"price_cents"`
	Notes      *string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ScheduleRequest struct {
	DayOfWeek *int   `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  *bool  `json:"is_active"`
}

type BulkScheduleRequest struct {
	Schedules []ScheduleRequest `json:"schedules" binding:"required,min=1"`
}

type UpdateScheduleRequest struct {
	DayOfWeek *int    `json:"day_of_week"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	IsActive  *bool   `json:"is_active"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type BookingResponse struct {
	domain.Booking
	DurationHours float64 `json:"duration_hours"`
}

type BookingPageResponse struct {
	Items  []BookingResponse `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type OpenResponse struct {
	Open bool `json:"open"`
}

type ActiveBookingsResponse struct {
	HasActiveBookings bool `json:"has_active_bookings"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{Booking: *b, DurationHours: b.DurationHours()}
}

func toBookingPageResponse(p *domain.BookingPage) BookingPageResponse {
	items := make([]BookingResponse, len(p.Items))
	for i := range p.Items {
		items[i] = toBookingResponse(&p.Items[i])
	}
	return BookingPageResponse{Items: items, Total: p.Total, Limit: p.Limit, Offset: p.Offset}
}

// toScheduleInput maps a missing day to -1 so that the entry fails day
// validation on its own instead of rejecting the whole request.
func (r ScheduleRequest) toScheduleInput() schedule.Input {
	day := -1
	if r.DayOfWeek != nil {
		day = *r.DayOfWeek
	}
	return schedule.Input{
		DayOfWeek: day,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		IsActive:  r.IsActive,
	}
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func parseOptionalRFC3339(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseRFC3339(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
