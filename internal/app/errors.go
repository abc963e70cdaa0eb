package app

import "errors"

// Sentinel kinds for service errors.
var (
	ErrBusy         = errors.New("a run for this race is already in flight")
	ErrBackpressure = errors.New("job queue is full")
	ErrJobNotFound  = errors.New("job not found")
	ErrNotStarted   = errors.New("service not started")
)
