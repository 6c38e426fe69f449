package rental

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/decoder-44/vehicle-service-super-app/internal/booking"
)

type Vehicle struct {
	ID                  string          `json:"id"`
	HostID              string          `json:"hostId"`
	VehicleType         string          `json:"vehicleType,omitempty"`
	Brand               string          `json:"brand,omitempty"`
	Model               string          `json:"model,omitempty"`
	YearOfManufacture   int             `json:"yearOfManufacture,omitempty"`
	RegistrationNumber  string          `json:"registrationNumber,omitempty"`
	VehicleImages       []string        `json:"vehicleImages"`
	SeatingCapacity     int             `json:"seatingCapacity,omitempty"`
	FuelType            string          `json:"fuelType,omitempty"`
	Transmission        string          `json:"transmission,omitempty"`
	PricePerDay         decimal.Decimal `json:"pricePerDay"`
	IsInsuranceEligible bool            `json:"isInsuranceEligible"`
	LocationCity        string          `json:"currentLocationCity,omitempty"`
	TotalBookings       int             `json:"totalBookings"`
	IsAvailable         bool            `json:"isAvailable"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

type VehicleFilters struct {
	VehicleType string
	City        string
	Search      string
	MinPrice    decimal.Decimal
	MaxPrice    decimal.Decimal
}

type VehicleUpdate struct {
	PricePerDay   *decimal.Decimal
	IsAvailable   *bool
	VehicleImages []string
	LocationCity  *string
}

// Booking is a rental reservation. All money fields are settled at creation
// from the quote and never recomputed from current rates.
type Booking struct {
	ID                 string          `json:"id"`
	BookingNumber      string          `json:"bookingNumber"`
	CustomerID         string          `json:"customerId"`
	VehicleID          string          `json:"vehicleId"`
	HostID             string          `json:"hostId"`
	StartDate          time.Time       `json:"startDate"`
	EndDate            time.Time       `json:"endDate"`
	TotalDays          int             `json:"totalDays"`
	PricePerDay        decimal.Decimal `json:"pricePerDay"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	PlatformCommission decimal.Decimal `json:"platformCommission"`
	InsuranceFee       decimal.Decimal `json:"insuranceFee"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Status             booking.Status  `json:"status"`
	PickupLocation     string          `json:"pickupLocation,omitempty"`
	DropoffLocation    string          `json:"dropoffLocation,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	AcceptedAt         *time.Time      `json:"hostAcceptedAt,omitempty"`
	PickedUpAt         *time.Time      `json:"vehiclePickedUpAt,omitempty"`
	ReturnedAt         *time.Time      `json:"vehicleReturnedAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type BookingRequest struct {
	VehicleID         string
	StartDate         time.Time
	EndDate           time.Time
	PickupLocation    string
	InsuranceRequired bool
}

type StatusUpdate struct {
	Status             booking.Status
	DropoffLocation    string
	CancellationReason string
}
