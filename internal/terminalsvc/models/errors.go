package models

import "errors"

var (
	ErrMalformed        = errors.New("malformed json")
	ErrMissingField     = errors.New("missing field")
	ErrInvalidReference = errors.New("invalid reference")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrNotFound         = errors.New("terminal not found")

	// ErrTerminalAssigned is returned when a terminal that already carries an
	// id is submitted for insertion. It signals a caller bug, not bad input.
	ErrTerminalAssigned = errors.New("terminal already has an id")
)
