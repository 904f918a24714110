package domain

import "errors"

var (
	// ErrNotFit is returned by any transform or match made before fit completed.
	ErrNotFit = errors.New("not fit")
	// ErrInvalidInput is returned for empty or inconsistent training input.
	ErrInvalidInput = errors.New("invalid input")
)
