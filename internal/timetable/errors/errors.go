package errors

import "errors"

var (
	ErrNotFound = errors.New("class session not found")

	ErrInvalidID = errors.New("invalid session ID format")

	ErrCourseNotFound = errors.New("course not found")
)
