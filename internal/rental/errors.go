package rental

import "errors"

var (
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrNotFound covers missing bookings and ones the caller is not a
	// party to.
	ErrNotFound = errors.New("rental booking not found")

	// ErrAlreadyAccepted is what the loser of an acceptance race sees.
	ErrAlreadyAccepted = errors.New("rental booking already accepted")

	ErrInvalidTransition = errors.New("invalid rental status transition")
)
