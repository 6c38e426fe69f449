package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/decoder-44/vehicle-service-super-app/internal/booking"
	"github.com/decoder-44/vehicle-service-super-app/internal/workshop"
)

type WorkshopHandler struct {
	Repo      *workshop.Repo
	Publisher *BookingPublisher
}

func (h *WorkshopHandler) Register(r chi.Router) {
	r.Post("/mechanics/profile", h.createProfile)
	r.Get("/mechanics/profile", h.getProfile)
	r.Put("/mechanics/profile", h.updateProfile)
	r.Get("/mechanics/nearby", h.nearby)

	r.Post("/service-bookings", h.createBooking)
	r.Get("/service-bookings", h.listBookings)
	r.Get("/service-bookings/{id}", h.getBooking)
	r.Put("/service-bookings/{id}/assign", h.assign)
	r.Put("/service-bookings/{id}/status", h.updateStatus)
	r.Post("/service-bookings/{id}/review", h.review)
}

type createProfileReq struct {
	ServiceTypes     []string         `json:"serviceTypes" validate:"required,min=1"`
	VehicleExpertise []string         `json:"vehicleExpertise"`
	ServiceAreaCity  string           `json:"serviceAreaCity"`
	ServiceRadiusKm  int              `json:"serviceRadiusKm" validate:"gte=0"`
	Latitude         float64          `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64          `json:"longitude" validate:"gte=-180,lte=180"`
	HourlyRate       *decimal.Decimal `json:"hourlyRate"`
}

func (h *WorkshopHandler) createProfile(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req createProfileReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.Repo.CreateProfile(ctx, p.UserID, workshop.MechanicProfile{
		ServiceTypes:     req.ServiceTypes,
		VehicleExpertise: req.VehicleExpertise,
		ServiceAreaCity:  req.ServiceAreaCity,
		ServiceRadiusKm:  req.ServiceRadiusKm,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		HourlyRate:       req.HourlyRate,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create profile")
		return
	}
	writeData(w, http.StatusCreated, "mechanic profile created", profile)
}

func (h *WorkshopHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	profile, err := h.Repo.GetProfile(ctx, p.UserID)
	if errors.Is(err, workshop.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "mechanic profile not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch profile")
		return
	}
	writeData(w, http.StatusOK, "mechanic profile", profile)
}

type updateProfileReq struct {
	ServiceTypes     []string         `json:"serviceTypes"`
	VehicleExpertise []string         `json:"vehicleExpertise"`
	ServiceAreaCity  *string          `json:"serviceAreaCity"`
	ServiceRadiusKm  *int             `json:"serviceRadiusKm" validate:"omitempty,gte=0"`
	Latitude         *float64         `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64         `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	HourlyRate       *decimal.Decimal `json:"hourlyRate"`
	IsAvailable      *bool            `json:"isAvailable"`
}

func (h *WorkshopHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, "mechanic")
	if !ok {
		return
	}
	var req updateProfileReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.Repo.UpdateProfile(ctx, p.UserID, workshop.ProfileUpdate{
		ServiceTypes:     req.ServiceTypes,
		VehicleExpertise: req.VehicleExpertise,
		ServiceAreaCity:  req.ServiceAreaCity,
		ServiceRadiusKm:  req.ServiceRadiusKm,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		HourlyRate:       req.HourlyRate,
		IsAvailable:      req.IsAvailable,
	})
	if errors.Is(err, workshop.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "mechanic profile not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update profile")
		return
	}
	writeData(w, http.StatusOK, "mechanic profile updated", profile)
}

func (h *WorkshopHandler) nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := parseCoord(q, "lat")
	lng, lngErr := parseCoord(q, "lng")
	if latErr != nil || lngErr != nil {
		writeError(w, http.StatusBadRequest, "lat and lng must be valid coordinates")
		return
	}
	radius := parseFloat(q.Get("radiusKm"))
	if radius <= 0 {
		radius = 10
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	mechanics, err := h.Repo.FindNearby(ctx, lat, lng, radius)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not search mechanics")
		return
	}
	writeData(w, http.StatusOK, "nearby mechanics", mechanics)
}

type createServiceBookingReq struct {
	ServiceType        string                 `json:"serviceType" validate:"required"`
	VehicleType        string                 `json:"vehicleType" validate:"omitempty,oneof=car bike scooter truck"`
	VehicleDetails     booking.VehicleDetails `json:"vehicleDetails"`
	LocationLat        float64                `json:"serviceLocationLat" validate:"gte=-90,lte=90"`
	LocationLng        float64                `json:"serviceLocationLng" validate:"gte=-180,lte=180"`
	LocationAddress    string                 `json:"serviceLocationAddress"`
	PreferredDatetime  *time.Time             `json:"preferredDatetime"`
	ServiceDescription string                 `json:"serviceDescription"`
}

func (h *WorkshopHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req createServiceBookingReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Repo.CreateBooking(ctx, p.UserID, workshop.ServiceBooking{
		ServiceType:        req.ServiceType,
		VehicleType:        req.VehicleType,
		VehicleDetails:     req.VehicleDetails,
		LocationLat:        req.LocationLat,
		LocationLng:        req.LocationLng,
		LocationAddress:    req.LocationAddress,
		PreferredDatetime:  req.PreferredDatetime,
		ServiceDescription: req.ServiceDescription,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create booking")
		return
	}

	h.Publisher.Created(r, "service", b.ID, b.CustomerID, string(b.Status))
	writeData(w, http.StatusCreated, "service booking created", b)
}

func (h *WorkshopHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bs, meta, err := h.Repo.ListForUser(ctx, p.UserID, p.Role, parsePage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list bookings")
		return
	}
	writeList(w, "service bookings", bs, meta)
}

func (h *WorkshopHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := h.Repo.GetBooking(ctx, chi.URLParam(r, "id"), p.UserID)
	if errors.Is(err, workshop.ErrNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch booking")
		return
	}
	writeData(w, http.StatusOK, "service booking", b)
}

func (h *WorkshopHandler) assign(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, "mechanic")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// A mechanic can only take jobs once their profile exists.
	if _, err := h.Repo.GetProfile(ctx, p.UserID); err != nil {
		if errors.Is(err, workshop.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "mechanic profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not assign booking")
		return
	}

	b, err := h.Repo.Assign(ctx, chi.URLParam(r, "id"), p.UserID)
	switch {
	case errors.Is(err, workshop.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
		return
	case errors.Is(err, workshop.ErrAlreadyAssigned):
		writeError(w, http.StatusConflict, "booking already assigned")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not assign booking")
		return
	}

	h.Publisher.StatusChanged(r, "service", b.ID, b.CustomerID, string(b.Status))
	writeData(w, http.StatusOK, "booking assigned", b)
}

type serviceStatusReq struct {
	Status             booking.Status   `json:"status" validate:"required"`
	EstimatedPrice     *decimal.Decimal `json:"estimatedPrice"`
	FinalPrice         *decimal.Decimal `json:"finalPrice"`
	CancellationReason string           `json:"cancellationReason"`
}

func (h *WorkshopHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req serviceStatusReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Repo.UpdateStatus(ctx, chi.URLParam(r, "id"), p.UserID, workshop.StatusUpdate{
		Status:             req.Status,
		EstimatedPrice:     req.EstimatedPrice,
		FinalPrice:         req.FinalPrice,
		CancellationReason: req.CancellationReason,
	})
	switch {
	case errors.Is(err, workshop.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
		return
	case errors.Is(err, workshop.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "invalid status transition")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not update booking")
		return
	}

	h.Publisher.StatusChanged(r, "service", b.ID, b.CustomerID, string(b.Status))
	writeData(w, http.StatusOK, "booking updated", b)
}

type reviewReq struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Review string `json:"review"`
}

func (h *WorkshopHandler) review(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req reviewReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Repo.AddReview(ctx, chi.URLParam(r, "id"), p.UserID, req.Rating, req.Review)
	switch {
	case errors.Is(err, workshop.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	case errors.Is(err, workshop.ErrNotCompletedOrUnauthorized):
		writeError(w, http.StatusBadRequest, "only your completed bookings can be reviewed")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not save review")
		return
	}
	writeData(w, http.StatusOK, "review saved", b)
}
