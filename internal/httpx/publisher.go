package httpx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/decoder-44/vehicle-service-super-app/internal/events"
	kafkax "github.com/decoder-44/vehicle-service-super-app/internal/kafka"
	"github.com/decoder-44/vehicle-service-super-app/internal/redisx"
)

// BookingPublisher emits lifecycle events for the three booking domains on
// one topic and keeps the status cache warm. Shared by the workshop, rental
// and roadside handlers.
type BookingPublisher struct {
	Producer *kafkax.Producer
	Redis    *redis.Client
	Service  string
}

func (p *BookingPublisher) Created(r *http.Request, domain, bookingID, customerID, status string) {
	p.publish(r, events.EventBookingCreated, domain, bookingID, customerID, status)
}

func (p *BookingPublisher) StatusChanged(r *http.Request, domain, bookingID, customerID, status string) {
	p.publish(r, events.EventBookingStatusChanged, domain, bookingID, customerID, status)
}

func (p *BookingPublisher) publish(r *http.Request, eventType, domain, bookingID, customerID, status string) {
	statusKey := fmt.Sprintf(redisx.KeyBookingStatus, domain, bookingID)
	_ = p.Redis.Set(r.Context(), statusKey, status, redisx.TTLStatusCache).Err()

	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: bookingID,
	}
	ev.Payload = kafkax.MustMarshal(events.BookingStatusChangedPayload{
		Domain:     domain,
		BookingID:  bookingID,
		CustomerID: customerID,
		Status:     status,
	})
	p.Producer.Publish(events.PartitionKey(bookingID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
