// Package notify delivers booking side effects to the notification and
// WebSocket collaborators. Delivery is fire-and-forget: callers never wait for
// it and never see its failures.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kirinyoku/valet-go/internal/domain"
)

// Notifier receives booking side effects after they are committed.
type Notifier interface {
	BookingUpdated(ctx context.Context, ev domain.BookingEvent)
	Notify(ctx context.Context, n domain.Notification)
}

// EventPublisher pushes booking updates to live subscribers.
type EventPublisher interface {
	PublishBookingUpdate(ctx context.Context, ev domain.BookingEvent) error
}

// NotificationPublisher hands user notifications to the delivery service.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n domain.Notification) error
}

const defaultTimeout = 5 * time.Second

// Dispatcher implements Notifier by publishing in background goroutines with
// their own timeout, detached from the caller's cancellation. A nil publisher
// turns the matching side effect into a debug log line.
type Dispatcher struct {
	events  EventPublisher
	notices NotificationPublisher
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(events EventPublisher, notices NotificationPublisher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		events:  events,
		notices: notices,
		logger:  logger,
		timeout: defaultTimeout,
	}
}

func (d *Dispatcher) BookingUpdated(ctx context.Context, ev domain.BookingEvent) {
	if d.events == nil {
		d.logger.Debug("booking update not published", "booking_id", ev.BookingID, "status", ev.Status)
		return
	}

	d.spawn(ctx, func(ctx context.Context) {
		if err := d.events.PublishBookingUpdate(ctx, ev); err != nil {
			d.logger.Warn("publish booking update failed",
				"booking_id", ev.BookingID,
				"status", ev.Status,
				"error", err,
			)
		}
	})
}

func (d *Dispatcher) Notify(ctx context.Context, n domain.Notification) {
	if d.notices == nil {
		d.logger.Debug("notification not published", "user_id", n.UserID, "type", n.Type)
		return
	}

	d.spawn(ctx, func(ctx context.Context) {
		if err := d.notices.PublishNotification(ctx, n); err != nil {
			d.logger.Warn("publish notification failed",
				"user_id", n.UserID,
				"type", n.Type,
				"error", err,
			)
		}
	})
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (d *Dispatcher) spawn(ctx context.Context, fn func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notification delivery panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		fn(ctx)
	}()
}

// Discard is a Notifier that drops everything.
type Discard struct{}

func (Discard) BookingUpdated(context.Context, domain.BookingEvent) {}

func (Discard) Notify(context.Context, domain.Notification) {}
