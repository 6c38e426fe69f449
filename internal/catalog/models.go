package catalog

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Part is a merchant-listed vehicle part. Stock is only ever decremented by
// order creation; listings are deactivated, never deleted.
type Part struct {
	ID             string          `json:"id"`
	MerchantID     string          `json:"merchantId"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	VehicleType    string          `json:"vehicleType,omitempty"`
	Category       string          `json:"category,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	Model          string          `json:"model,omitempty"`
	Price          decimal.Decimal `json:"price"`
	StockQuantity  int             `json:"stockQuantity"`
	SKU            string          `json:"sku,omitempty"`
	Images         []string        `json:"images"`
	Specifications json.RawMessage `json:"specifications"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Filters narrow part listings; zero values mean "no constraint".
type Filters struct {
	VehicleType string
	Category    string
	MerchantID  string
	Search      string
	MinPrice    decimal.Decimal
	MaxPrice    decimal.Decimal
}

// PartUpdate carries a partial update; nil fields keep current values.
type PartUpdate struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	StockQuantity  *int
	Images         []string
	Specifications json.RawMessage
	IsActive       *bool
}
