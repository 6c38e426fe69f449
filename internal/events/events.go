package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated         = "OrderCreated"
	EventOrderStatusChanged   = "OrderStatusChanged"
	EventBookingCreated       = "BookingCreated"
	EventBookingStatusChanged = "BookingStatusChanged"
)

const (
	TopicOrderCreated  = "marketplace.order.created"
	TopicOrderStatus   = "marketplace.order.status"
	TopicBookingStatus = "marketplace.booking.status"
)

// Envelope wraps every published event. CorrelationID is the order or
// booking id so one entity's events stay on one partition, in order.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  string          `json:"customer_id"`
	MerchantID  string          `json:"merchant_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderStatusChangedPayload struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"`
}

type BookingStatusChangedPayload struct {
	Domain     string `json:"domain"` // service | rental | rsa
	BookingID  string `json:"booking_id"`
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"`
}

// PartitionKey keeps all events of one entity ordered.
func PartitionKey(id string) []byte { return []byte(id) }
