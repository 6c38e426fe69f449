package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/decoder-44/vehicle-service-super-app/internal/events"
	kafkax "github.com/decoder-44/vehicle-service-super-app/internal/kafka"
	"github.com/decoder-44/vehicle-service-super-app/internal/redisx"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "notify").Logger()

// Service turns order and booking events into customer notifications. The
// actual delivery channel is a log line here; the gateway behind it is a
// deployment concern.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// Handle processes one event. Redelivered events are dropped via a redis
// dedup key on the event id, so a notification goes out at most once.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var ev events.Envelope
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		// Poison message; commit and move on.
		logger.Error().Err(err).Msg("undecodable event dropped")
		return nil
	}

	dedupKey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, ev.EventID)
	set, err := s.Redis.SetNX(ctx, dedupKey, 1, redisx.TTLDedup).Result()
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if !set {
		logger.Debug().Str("event_id", ev.EventID).Msg("duplicate event skipped")
		return nil
	}

	switch ev.EventType {
	case events.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[events.OrderCreatedPayload](ev.Payload)
		if err != nil {
			return err
		}
		logger.Info().
			Str("user_id", p.CustomerID).
			Str("order_number", p.OrderNumber).
			Str("total", p.TotalAmount.String()).
			Msg("notify: order placed")
	case events.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[events.OrderStatusChangedPayload](ev.Payload)
		if err != nil {
			return err
		}
		logger.Info().
			Str("user_id", p.CustomerID).
			Str("order_id", p.OrderID).
			Str("status", p.Status).
			Msg("notify: order status changed")
	case events.EventBookingCreated, events.EventBookingStatusChanged:
		p, err := kafkax.UnwrapPayload[events.BookingStatusChangedPayload](ev.Payload)
		if err != nil {
			return err
		}
		logger.Info().
			Str("user_id", p.CustomerID).
			Str("domain", p.Domain).
			Str("booking_id", p.BookingID).
			Str("status", p.Status).
			Msg("notify: booking update")
	default:
		logger.Warn().Str("event_type", ev.EventType).Msg("unknown event type skipped")
	}
	return nil
}
