package errors

import "errors"

var (
	ErrNotFound = errors.New("room booking not found")

	ErrInvalidID = errors.New("invalid room booking ID format")
)
