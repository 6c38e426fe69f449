package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/decoder-44/vehicle-service-super-app/internal/booking"
	"github.com/decoder-44/vehicle-service-super-app/internal/rsa"
)

type RSAHandler struct {
	Repo      *rsa.Repo
	Publisher *BookingPublisher
}

func (h *RSAHandler) Register(r chi.Router) {
	r.Post("/rsa/subscriptions", h.createSubscription)
	r.Get("/rsa/subscriptions", h.listSubscriptions)

	r.Post("/rsa/requests", h.createRequest)
	r.Get("/rsa/requests", h.listRequests)
	r.Get("/rsa/requests/{id}", h.getRequest)
	r.Put("/rsa/requests/{id}/assign", h.assign)
	r.Put("/rsa/requests/{id}/status", h.updateStatus)
}

type createSubscriptionReq struct {
	PlanName       string          `json:"planName" validate:"required"`
	PlanPrice      decimal.Decimal `json:"planPrice"`
	Benefits       []string        `json:"benefits"`
	DurationMonths int             `json:"durationMonths" validate:"required,gte=1,lte=36"`
}

func (h *RSAHandler) createSubscription(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req createSubscriptionReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.PlanPrice.IsNegative() {
		writeError(w, http.StatusBadRequest, "planPrice must not be negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sub, err := h.Repo.CreateSubscription(ctx, p.UserID, rsa.Subscription{
		PlanName:  req.PlanName,
		PlanPrice: req.PlanPrice,
		Benefits:  req.Benefits,
	}, req.DurationMonths)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create subscription")
		return
	}
	writeData(w, http.StatusCreated, "subscription created", sub)
}

func (h *RSAHandler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	subs, err := h.Repo.ListSubscriptions(ctx, p.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list subscriptions")
		return
	}
	writeData(w, http.StatusOK, "subscriptions", subs)
}

type createRSARequestReq struct {
	EmergencyType   string                 `json:"emergencyType" validate:"required,oneof=breakdown flat_tyre battery_dead towing fuel_delivery lockout accident"`
	LocationLat     float64                `json:"locationLat" validate:"gte=-90,lte=90"`
	LocationLng     float64                `json:"locationLng" validate:"gte=-180,lte=180"`
	LocationAddress string                 `json:"locationAddress"`
	VehicleDetails  booking.VehicleDetails `json:"vehicleDetails"`
}

func (h *RSAHandler) createRequest(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req createRSARequestReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q, err := h.Repo.CreateRequest(ctx, p.UserID, rsa.Request{
		EmergencyType:   req.EmergencyType,
		LocationLat:     req.LocationLat,
		LocationLng:     req.LocationLng,
		LocationAddress: req.LocationAddress,
		VehicleDetails:  req.VehicleDetails,
	})
	if errors.Is(err, rsa.ErrNoActiveSubscription) {
		writeError(w, http.StatusBadRequest, "no active roadside subscription")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create request")
		return
	}

	h.Publisher.Created(r, "rsa", q.ID, q.UserID, string(q.Status))
	writeData(w, http.StatusCreated, "roadside request created", q)
}

func (h *RSAHandler) listRequests(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	qs, meta, err := h.Repo.ListForUser(ctx, p.UserID, parsePage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list requests")
		return
	}
	writeList(w, "roadside requests", qs, meta)
}

func (h *RSAHandler) getRequest(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q, err := h.Repo.GetRequest(ctx, chi.URLParam(r, "id"), p.UserID)
	if errors.Is(err, rsa.ErrNotFound) {
		writeError(w, http.StatusNotFound, "request not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch request")
		return
	}
	writeData(w, http.StatusOK, "roadside request", q)
}

func (h *RSAHandler) assign(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, "service_partner")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q, err := h.Repo.Assign(ctx, chi.URLParam(r, "id"), p.UserID)
	switch {
	case errors.Is(err, rsa.ErrNotFound):
		writeError(w, http.StatusNotFound, "request not found")
		return
	case errors.Is(err, rsa.ErrAlreadyAssigned):
		writeError(w, http.StatusConflict, "request already assigned")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not assign request")
		return
	}

	h.Publisher.StatusChanged(r, "rsa", q.ID, q.UserID, string(q.Status))
	writeData(w, http.StatusOK, "request assigned", q)
}

type rsaStatusReq struct {
	Status          booking.Status `json:"status" validate:"required"`
	ResolutionNotes string         `json:"resolutionNotes"`
}

func (h *RSAHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req rsaStatusReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q, err := h.Repo.UpdateStatus(ctx, chi.URLParam(r, "id"), p.UserID, rsa.StatusUpdate{
		Status:          req.Status,
		ResolutionNotes: req.ResolutionNotes,
	})
	switch {
	case errors.Is(err, rsa.ErrNotFound):
		writeError(w, http.StatusNotFound, "request not found")
		return
	case errors.Is(err, rsa.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "invalid status transition")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not update request")
		return
	}

	h.Publisher.StatusChanged(r, "rsa", q.ID, q.UserID, string(q.Status))
	writeData(w, http.StatusOK, "request updated", q)
}
