package workshop

import "errors"

var (
	// ErrNotFound covers missing bookings/profiles and ones the caller is
	// not a party to; unauthorized probes cannot confirm existence.
	ErrNotFound = errors.New("booking not found")

	ErrProfileNotFound = errors.New("mechanic profile not found")

	// ErrAlreadyAssigned is what the loser of an assignment race sees.
	ErrAlreadyAssigned = errors.New("booking already assigned")

	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrNotCompletedOrUnauthorized rejects a review on a booking that is
	// not the caller's own completed booking.
	ErrNotCompletedOrUnauthorized = errors.New("booking not completed or not yours")

	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
