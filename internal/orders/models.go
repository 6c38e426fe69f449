package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool { return validNext[from][to] }

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// CartLine is one requested item in a checkout; consumed entirely within a
// single CreateOrders call, never persisted.
type CartLine struct {
	PartID   string `json:"catalogItemId"`
	Quantity int    `json:"quantity"`
}

type CreateRequest struct {
	Items             []CartLine `json:"items"`
	DeliveryAddressID string     `json:"deliveryAddressId"`
}

// Order settles one merchant's slice of a checkout. Money fields are
// computed once at creation and never recomputed.
type Order struct {
	ID                 string          `json:"id"`
	OrderNumber        string          `json:"orderNumber"`
	CustomerID         string          `json:"customerId"`
	MerchantID         string          `json:"merchantId"`
	DeliveryAddressID  string          `json:"deliveryAddressId,omitempty"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	PlatformCommission decimal.Decimal `json:"platformCommission"`
	TaxAmount          decimal.Decimal `json:"taxAmount"`
	DeliveryCharge     decimal.Decimal `json:"deliveryCharge"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Status             Status          `json:"status"`
	TrackingNumber     string          `json:"trackingNumber,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	DeliveredAt        *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	Items              []LineItem      `json:"items,omitempty"`
}

// LineItem captures the unit price at order time, decoupled from later
// catalog price changes. Immutable once written.
type LineItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	PartID    string          `json:"catalogItemId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// StatusUpdate is the merchant-supplied transition payload.
type StatusUpdate struct {
	Status             Status `json:"status"`
	TrackingNumber     string `json:"trackingNumber,omitempty"`
	CancellationReason string `json:"cancellationReason,omitempty"`
}
