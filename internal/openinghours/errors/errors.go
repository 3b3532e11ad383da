package errors

import "errors"

var (
	ErrNotFound = errors.New("opening hours document not found")
)
