package booking

import (
	"fmt"
	"time"

	"github.com/kirinyoku/valet-go/internal/domain"
)

// Notification types, also used as routing key suffixes by the AMQP
// publisher.
const (
	NoticeCreated   = "booking_created"
	NoticeCompleted = "booking_completed"
	NoticeCancelled = "booking_cancelled"
)

func eventOf(b domain.Booking) domain.BookingEvent {
	return domain.BookingEvent{
		BookingID:  b.ID,
		Status:     b.Status,
		LocationID: b.LocationID,
		UserID:     b.UserID,
		Timestamp:  time.Now().UTC(),
	}
}

func noticeOf(b domain.Booking) domain.Notification {
	n := domain.Notification{
		UserID: b.UserID,
		Data: map[string]any{
			"booking_id":  b.ID.String(),
			"location_id": b.LocationID,
			"start_time":  b.StartTime,
			"end_time":    b.EndTime,
			"status":      b.Status,
		},
		Timestamp: time.Now().UTC(),
	}

	when := b.StartTime.Format("Jan 2, 2006 15:04 MST")

	switch b.Status {
	case domain.StatusCompleted:
		n.Type = NoticeCompleted
		n.Title = "Booking completed"
		n.Message = fmt.Sprintf("Your booking for %s has been completed. Thank you for using our valet service.", when)
	case domain.StatusCancelled:
		n.Type = NoticeCancelled
		n.Title = "Booking cancelled"
		n.Message = fmt.Sprintf("Your booking for %s has been cancelled.", when)
	default:
		n.Type = NoticeCreated
		n.Title = "Booking received"
		n.Message = fmt.Sprintf("Your booking for %s has been received and is pending confirmation.", when)
	}

	return n
}
