package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrOccupied is returned when a unique index rejects a second booking
	// for the same room or tenant.
	ErrOccupied = errors.New("room or tenant already booked")

	ErrLockHeld = errors.New("booking lock is held by another request")
)
