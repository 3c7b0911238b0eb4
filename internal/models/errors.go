package models

import "errors"

var (
	// ErrNotFound is returned by storage providers when a row does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidHabit is returned when a habit fails validation
	ErrInvalidHabit = errors.New("invalid habit")
)
