package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrAlreadyDecided = errors.New("reservation has already been decided")

	ErrCapacityExceeded = errors.New("slot capacity exceeded")
)
