package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/decoder-44/vehicle-service-super-app/internal/booking"
	"github.com/decoder-44/vehicle-service-super-app/internal/rental"
)

type RentalHandler struct {
	Repo      *rental.Repo
	Publisher *BookingPublisher
}

func (h *RentalHandler) Register(r chi.Router) {
	r.Post("/rental-vehicles", h.createVehicle)
	r.Get("/rental-vehicles", h.listVehicles)
	r.Get("/rental-vehicles/{id}", h.getVehicle)
	r.Put("/rental-vehicles/{id}", h.updateVehicle)

	r.Post("/rental-bookings", h.createBooking)
	r.Get("/rental-bookings", h.listBookings)
	r.Get("/rental-bookings/{id}", h.getBooking)
	r.Put("/rental-bookings/{id}/accept", h.accept)
	r.Put("/rental-bookings/{id}/status", h.updateStatus)
}

type createVehicleReq struct {
	VehicleType         string          `json:"vehicleType" validate:"required,oneof=car bike scooter truck"`
	Brand               string          `json:"brand"`
	Model               string          `json:"model"`
	YearOfManufacture   int             `json:"yearOfManufacture" validate:"omitempty,gte=1950"`
	RegistrationNumber  string          `json:"registrationNumber" validate:"required"`
	VehicleImages       []string        `json:"vehicleImages"`
	SeatingCapacity     int             `json:"seatingCapacity" validate:"omitempty,gte=1"`
	FuelType            string          `json:"fuelType"`
	Transmission        string          `json:"transmission"`
	PricePerDay         decimal.Decimal `json:"pricePerDay"`
	IsInsuranceEligible bool            `json:"isInsuranceEligible"`
	LocationCity        string          `json:"currentLocationCity"`
}

func (h *RentalHandler) createVehicle(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req createVehicleReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if !req.PricePerDay.IsPositive() {
		writeError(w, http.StatusBadRequest, "pricePerDay must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	v, err := h.Repo.CreateVehicle(ctx, p.UserID, rental.Vehicle{
		VehicleType:         req.VehicleType,
		Brand:               req.Brand,
		Model:               req.Model,
		YearOfManufacture:   req.YearOfManufacture,
		RegistrationNumber:  req.RegistrationNumber,
		VehicleImages:       req.VehicleImages,
		SeatingCapacity:     req.SeatingCapacity,
		FuelType:            req.FuelType,
		Transmission:        req.Transmission,
		PricePerDay:         req.PricePerDay,
		IsInsuranceEligible: req.IsInsuranceEligible,
		LocationCity:        req.LocationCity,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list vehicle")
		return
	}
	writeData(w, http.StatusCreated, "vehicle listed", v)
}

func (h *RentalHandler) listVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := rental.VehicleFilters{
		VehicleType: q.Get("vehicleType"),
		City:        q.Get("city"),
		Search:      q.Get("search"),
		MinPrice:    parseDecimal(q.Get("minPrice")),
		MaxPrice:    parseDecimal(q.Get("maxPrice")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vs, meta, err := h.Repo.ListVehicles(ctx, f, parsePage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list vehicles")
		return
	}
	writeList(w, "rental vehicles", vs, meta)
}

func (h *RentalHandler) getVehicle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err := h.Repo.GetVehicle(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, rental.ErrVehicleNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch vehicle")
		return
	}
	writeData(w, http.StatusOK, "rental vehicle", v)
}

type updateVehicleReq struct {
	PricePerDay   *decimal.Decimal `json:"pricePerDay"`
	IsAvailable   *bool            `json:"isAvailable"`
	VehicleImages []string         `json:"vehicleImages"`
	LocationCity  *string          `json:"currentLocationCity"`
}

func (h *RentalHandler) updateVehicle(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, "host")
	if !ok {
		return
	}
	var req updateVehicleReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.PricePerDay != nil && !req.PricePerDay.IsPositive() {
		writeError(w, http.StatusBadRequest, "pricePerDay must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	v, err := h.Repo.UpdateVehicle(ctx, chi.URLParam(r, "id"), p.UserID, rental.VehicleUpdate{
		PricePerDay:   req.PricePerDay,
		IsAvailable:   req.IsAvailable,
		VehicleImages: req.VehicleImages,
		LocationCity:  req.LocationCity,
	})
	if errors.Is(err, rental.ErrVehicleNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update vehicle")
		return
	}
	writeData(w, http.StatusOK, "vehicle updated", v)
}

type createRentalBookingReq struct {
	VehicleID         string    `json:"vehicleId" validate:"required,uuid"`
	StartDate         time.Time `json:"startDate" validate:"required"`
	EndDate           time.Time `json:"endDate" validate:"required"`
	PickupLocation    string    `json:"pickupLocation"`
	InsuranceRequired bool      `json:"insuranceRequired"`
}

func (h *RentalHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req createRentalBookingReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Repo.CreateBooking(ctx, p.UserID, rental.BookingRequest{
		VehicleID:         req.VehicleID,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		PickupLocation:    req.PickupLocation,
		InsuranceRequired: req.InsuranceRequired,
	})
	switch {
	case errors.Is(err, rental.ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	case errors.Is(err, rental.ErrInvalidDates):
		writeError(w, http.StatusBadRequest, "invalid booking date range")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not create booking")
		return
	}

	h.Publisher.Created(r, "rental", b.ID, b.CustomerID, string(b.Status))
	writeData(w, http.StatusCreated, "rental booking created", b)
}

func (h *RentalHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bs, meta, err := h.Repo.ListForUser(ctx, p.UserID, p.Role, parsePage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list bookings")
		return
	}
	writeList(w, "rental bookings", bs, meta)
}

func (h *RentalHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := h.Repo.GetBooking(ctx, chi.URLParam(r, "id"), p.UserID)
	if errors.Is(err, rental.ErrNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch booking")
		return
	}
	writeData(w, http.StatusOK, "rental booking", b)
}

func (h *RentalHandler) accept(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, "host")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Repo.Accept(ctx, chi.URLParam(r, "id"), p.UserID)
	switch {
	case errors.Is(err, rental.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
		return
	case errors.Is(err, rental.ErrAlreadyAccepted):
		writeError(w, http.StatusConflict, "booking already accepted")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not accept booking")
		return
	}

	h.Publisher.StatusChanged(r, "rental", b.ID, b.CustomerID, string(b.Status))
	writeData(w, http.StatusOK, "booking accepted", b)
}

type rentalStatusReq struct {
	Status             booking.Status `json:"status" validate:"required"`
	DropoffLocation    string         `json:"dropoffLocation"`
	CancellationReason string         `json:"cancellationReason"`
}

func (h *RentalHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req rentalStatusReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Repo.UpdateStatus(ctx, chi.URLParam(r, "id"), p.UserID, rental.StatusUpdate{
		Status:             req.Status,
		DropoffLocation:    req.DropoffLocation,
		CancellationReason: req.CancellationReason,
	})
	switch {
	case errors.Is(err, rental.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
		return
	case errors.Is(err, rental.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "invalid status transition")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not update booking")
		return
	}

	h.Publisher.StatusChanged(r, "rental", b.ID, b.CustomerID, string(b.Status))
	writeData(w, http.StatusOK, "booking updated", b)
}
