package errors

import "errors"

var (
	ErrNotFound = errors.New("resource booking not found")

	ErrInvalidID = errors.New("invalid resource booking ID format")
)
