package workshop

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/decoder-44/vehicle-service-super-app/internal/booking"
)

// MechanicProfile is the provider side of service bookings. Rating and
// TotalJobs are aggregates maintained by booking completion and reviews.
type MechanicProfile struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId"`
	ServiceTypes     []string         `json:"serviceTypes"`
	VehicleExpertise []string         `json:"vehicleExpertise"`
	ServiceAreaCity  string           `json:"serviceAreaCity,omitempty"`
	ServiceRadiusKm  int              `json:"serviceRadiusKm,omitempty"`
	Latitude         float64          `json:"latitude,omitempty"`
	Longitude        float64          `json:"longitude,omitempty"`
	HourlyRate       *decimal.Decimal `json:"hourlyRate,omitempty"`
	Rating           *decimal.Decimal `json:"rating,omitempty"`
	TotalJobs        int              `json:"totalJobs"`
	IsAvailable      bool             `json:"isAvailable"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// NearbyMechanic augments a profile with its distance from the search point.
type NearbyMechanic struct {
	MechanicProfile
	FullName   string  `json:"fullName"`
	Phone      string  `json:"phone,omitempty"`
	DistanceKm float64 `json:"distanceKm"`
}

type ServiceBooking struct {
	ID                 string                 `json:"id"`
	BookingNumber      string                 `json:"bookingNumber"`
	CustomerID         string                 `json:"customerId"`
	MechanicID         string                 `json:"mechanicId,omitempty"`
	ServiceType        string                 `json:"serviceType"`
	VehicleType        string                 `json:"vehicleType,omitempty"`
	VehicleDetails     booking.VehicleDetails `json:"vehicleDetails"`
	LocationLat        float64                `json:"serviceLocationLat,omitempty"`
	LocationLng        float64                `json:"serviceLocationLng,omitempty"`
	LocationAddress    string                 `json:"serviceLocationAddress,omitempty"`
	PreferredDatetime  *time.Time             `json:"preferredDatetime,omitempty"`
	ServiceDescription string                 `json:"serviceDescription,omitempty"`
	Status             booking.Status         `json:"status"`
	EstimatedPrice     *decimal.Decimal       `json:"estimatedPrice,omitempty"`
	FinalPrice         *decimal.Decimal       `json:"finalPrice,omitempty"`
	CancellationReason string                 `json:"cancellationReason,omitempty"`
	CustomerRating     *int                   `json:"customerRating,omitempty"`
	CustomerReview     string                 `json:"customerReview,omitempty"`
	AssignedAt         *time.Time             `json:"mechanicAssignedAt,omitempty"`
	StartedAt          *time.Time             `json:"serviceStartedAt,omitempty"`
	CompletedAt        *time.Time             `json:"serviceCompletedAt,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

// StatusUpdate is the customer/mechanic transition payload.
type StatusUpdate struct {
	Status             booking.Status
	EstimatedPrice     *decimal.Decimal
	FinalPrice         *decimal.Decimal
	CancellationReason string
}

type ProfileUpdate struct {
	ServiceTypes     []string
	VehicleExpertise []string
	ServiceAreaCity  *string
	ServiceRadiusKm  *int
	Latitude         *float64
	Longitude        *float64
	HourlyRate       *decimal.Decimal
	IsAvailable      *bool
}
