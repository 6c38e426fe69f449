package rsa

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/decoder-44/vehicle-service-super-app/internal/booking"
)

// Subscription is the prepaid plan that gates roadside assistance.
type Subscription struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	PlanName  string          `json:"planName"`
	PlanPrice decimal.Decimal `json:"planPrice"`
	Benefits  []string        `json:"benefits"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Request is an emergency callout. It follows the shared booking lifecycle
// with a service partner as the provider.
type Request struct {
	ID               string                 `json:"id"`
	RequestNumber    string                 `json:"requestNumber"`
	UserID           string                 `json:"userId"`
	SubscriptionID   string                 `json:"subscriptionId"`
	ServicePartnerID string                 `json:"servicePartnerId,omitempty"`
	EmergencyType    string                 `json:"emergencyType"`
	LocationLat      float64                `json:"locationLat,omitempty"`
	LocationLng      float64                `json:"locationLng,omitempty"`
	LocationAddress  string                 `json:"locationAddress,omitempty"`
	VehicleDetails   booking.VehicleDetails `json:"vehicleDetails"`
	Status           booking.Status         `json:"status"`
	ResolutionNotes  string                 `json:"resolutionNotes,omitempty"`
	AssignedAt       *time.Time             `json:"partnerAssignedAt,omitempty"`
	StartedAt        *time.Time             `json:"serviceStartedAt,omitempty"`
	CompletedAt      *time.Time             `json:"serviceCompletedAt,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

type StatusUpdate struct {
	Status          booking.Status
	ResolutionNotes string
}
