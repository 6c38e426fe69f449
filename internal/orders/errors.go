package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart rejects a checkout with zero lines before any store access.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNotFound covers both a missing order and an order the caller is not
	// a party to, so an unauthorized probe cannot confirm existence.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidTransition rejects a status step the machine does not allow.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrInvalidQuantity guards against non-positive line quantities; the
	// HTTP boundary validates this too.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// ItemNotFoundError names the cart line that referenced a missing or
// inactive catalog item.
type ItemNotFoundError struct {
	PartID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("catalog item not found: %s", e.PartID)
}

// InsufficientStockError names the offending item; no partial fulfillment.
type InsufficientStockError struct {
	PartID    string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}
