package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/decoder-44/vehicle-service-super-app/internal/events"
	kafkax "github.com/decoder-44/vehicle-service-super-app/internal/kafka"
	"github.com/decoder-44/vehicle-service-super-app/internal/orders"
	"github.com/decoder-44/vehicle-service-super-app/internal/redisx"
)

type OrdersHandler struct {
	Repo *orders.Repo
	// Created and StatusChanged go to separate topics.
	Producer       *kafkax.Producer
	StatusProducer *kafkax.Producer
	Redis          *redis.Client
	Service        string
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Put("/orders/{id}/status", h.updateStatus)
}

type checkoutReq struct {
	Items             []orders.CartLine `json:"items" validate:"required,min=1,dive"`
	DeliveryAddressID string            `json:"deliveryAddressId"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var req checkoutReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Best-effort dedup on the client-supplied key. The DB transaction is
	// the authority either way.
	idemKey := ""
	if k := r.Header.Get("Idempotency-Key"); k != "" {
		idemKey = fmt.Sprintf(redisx.KeyIdemCheckout, p.UserID, k)
		if ok, _ := redisx.Exists(ctx, h.Redis, idemKey); ok {
			writeError(w, http.StatusConflict, "checkout already processed")
			return
		}
	}

	created, err := h.Repo.CreateOrders(ctx, p.UserID, orders.CreateRequest{
		Items:             req.Items,
		DeliveryAddressID: req.DeliveryAddressID,
	})
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	if idemKey != "" {
		_ = h.Redis.Set(ctx, idemKey, created[0].OrderNumber, redisx.TTLIdempotency).Err()
	}

	for _, o := range created {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
		_ = h.Redis.Set(ctx, statusKey, string(o.Status), redisx.TTLStatusCache).Err()

		ev := events.Envelope{
			EventID:       uuid.NewString(),
			EventType:     events.EventOrderCreated,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      h.Service,
			TraceID:       r.Header.Get("X-Request-Id"),
			CorrelationID: o.ID,
		}
		ev.Payload = kafkax.MustMarshal(events.OrderCreatedPayload{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			CustomerID:  o.CustomerID,
			MerchantID:  o.MerchantID,
			TotalAmount: o.TotalAmount,
		})
		h.Producer.Publish(events.PartitionKey(o.ID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderCreated)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeData(w, http.StatusCreated, "orders created", created)
}

func (h *OrdersHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	var notFound *orders.ItemNotFoundError
	var noStock *orders.InsufficientStockError
	switch {
	case errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, orders.ErrInvalidQuantity),
		errors.As(err, &notFound),
		errors.As(err, &noStock):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "checkout failed")
	}
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.GetByID(ctx, chi.URLParam(r, "id"), p.UserID)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch order")
		return
	}
	writeData(w, http.StatusOK, "order", o)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	os, meta, err := h.Repo.ListForUser(ctx, p.UserID, p.Role, parsePage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list orders")
		return
	}
	writeList(w, "orders", os, meta)
}

type orderStatusReq struct {
	Status             orders.Status `json:"status" validate:"required"`
	TrackingNumber     string        `json:"trackingNumber"`
	CancellationReason string        `json:"cancellationReason"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, "merchant")
	if !ok {
		return
	}
	var req orderStatusReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdateStatus(ctx, chi.URLParam(r, "id"), p.UserID, orders.StatusUpdate{
		Status:             req.Status,
		TrackingNumber:     req.TrackingNumber,
		CancellationReason: req.CancellationReason,
	})
	switch {
	case errors.Is(err, orders.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
		return
	case errors.Is(err, orders.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "invalid status transition")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not update order")
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	_ = h.Redis.Set(ctx, statusKey, string(o.Status), redisx.TTLStatusCache).Err()

	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: o.ID,
	}
	ev.Payload = kafkax.MustMarshal(events.OrderStatusChangedPayload{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
	})
	h.StatusProducer.Publish(events.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeData(w, http.StatusOK, "order updated", o)
}
