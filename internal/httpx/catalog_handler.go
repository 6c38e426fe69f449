package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/decoder-44/vehicle-service-super-app/internal/catalog"
)

type CatalogHandler struct {
	Repo *catalog.Repo
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/parts", h.list)
	r.Get("/parts/{id}", h.get)
	r.Post("/parts", h.create)
	r.Put("/parts/{id}", h.update)
	r.Delete("/parts/{id}", h.deactivate)
}

type createPartReq struct {
	Name           string          `json:"name" validate:"required"`
	Description    string          `json:"description"`
	VehicleType    string          `json:"vehicleType" validate:"omitempty,oneof=car bike scooter truck universal"`
	Category       string          `json:"category"`
	Brand          string          `json:"brand"`
	Model          string          `json:"model"`
	Price          decimal.Decimal `json:"price"`
	StockQuantity  int             `json:"stockQuantity" validate:"gte=0"`
	SKU            string          `json:"sku"`
	Images         []string        `json:"images"`
	Specifications json.RawMessage `json:"specifications"`
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, "merchant")
	if !ok {
		return
	}
	var req createPartReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if !req.Price.IsPositive() {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	part, err := h.Repo.Create(ctx, p.UserID, catalog.Part{
		Name:           req.Name,
		Description:    req.Description,
		VehicleType:    req.VehicleType,
		Category:       req.Category,
		Brand:          req.Brand,
		Model:          req.Model,
		Price:          req.Price,
		StockQuantity:  req.StockQuantity,
		SKU:            req.SKU,
		Images:         req.Images,
		Specifications: req.Specifications,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create listing")
		return
	}
	writeData(w, http.StatusCreated, "part listed", part)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filters{
		VehicleType: q.Get("vehicleType"),
		Category:    q.Get("category"),
		MerchantID:  q.Get("merchantId"),
		Search:      q.Get("search"),
		MinPrice:    parseDecimal(q.Get("minPrice")),
		MaxPrice:    parseDecimal(q.Get("maxPrice")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	parts, meta, err := h.Repo.List(ctx, f, parsePage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list parts")
		return
	}
	writeList(w, "parts", parts, meta)
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	part, err := h.Repo.GetByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "part not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch part")
		return
	}
	writeData(w, http.StatusOK, "part", part)
}

type updatePartReq struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	StockQuantity  *int             `json:"stockQuantity" validate:"omitempty,gte=0"`
	Images         []string         `json:"images"`
	Specifications json.RawMessage  `json:"specifications"`
	IsActive       *bool            `json:"isActive"`
}

func (h *CatalogHandler) update(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, "merchant")
	if !ok {
		return
	}
	var req updatePartReq
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Price != nil && !req.Price.IsPositive() {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	part, err := h.Repo.Update(ctx, chi.URLParam(r, "id"), p.UserID, catalog.PartUpdate{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		StockQuantity:  req.StockQuantity,
		Images:         req.Images,
		Specifications: req.Specifications,
		IsActive:       req.IsActive,
	})
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "part not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update part")
		return
	}
	writeData(w, http.StatusOK, "part updated", part)
}

func (h *CatalogHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, "merchant")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Repo.Deactivate(ctx, chi.URLParam(r, "id"), p.UserID)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "part not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not remove part")
		return
	}
	writeData(w, http.StatusOK, "part removed", nil)
}
