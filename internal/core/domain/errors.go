package domain

import "errors"

var (
	// ErrUnknownMedium is returned when a profile has no limits for the given
	// payment medium.
	ErrUnknownMedium    = errors.New("unknown payment medium")
	ErrTxMethodNotFound = errors.New("no trade direction recorded for tx")
	ErrInvalidRate      = errors.New("rate must be positive")
)
