package errors

import "errors"

var (
	ErrNotFound = errors.New("contact message not found")

	ErrInvalidID = errors.New("invalid contact message ID format")
)
