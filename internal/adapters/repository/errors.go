package repository

import "errors"

// Sentinel kinds for accumulation store errors.
var (
	ErrClosed    = errors.New("store closed")
	ErrMalformed = errors.New("malformed stored row")
)
