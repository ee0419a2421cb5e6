package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kirinyoku/valet-go/internal/domain"
)

// EventsPubSub carries booking status changes to live subscribers such as the
// WebSocket gateway.
type EventsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewEventsPubSub(rdb *redis.Client) *EventsPubSub {
	return &EventsPubSub{
		rdb:     rdb,
		channel: ChannelBookingUpdates(),
	}
}

type bookingUpdateMsg struct {
	Type string `json:"type"`
	domain.BookingEvent
}

func (p *EventsPubSub) PublishBookingUpdate(ctx context.Context, ev domain.BookingEvent) error {
	const op = "redis.EventsPubSub.PublishBookingUpdate"

	b, err := json.Marshal(bookingUpdateMsg{Type: "booking_update", BookingEvent: ev})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Subscribe delivers booking updates to handler until ctx is done.
// Undecodable messages are skipped.
func (p *EventsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ev domain.BookingEvent)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so no publish is missed.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg bookingUpdateMsg
			if err := json.Unmarshal([]byte(m.Payload), &msg); err == nil &&
				msg.BookingID != uuid.Nil {
				handler(ctx, msg.BookingEvent)
			}
		}
	}
}
