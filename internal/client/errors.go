package client

import (
	"errors"
	"fmt"
)

// Sentinel kinds for client failures.
var (
	ErrUnhealthy = errors.New("service unhealthy")
	ErrJobFailed = errors.New("run failed")
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status %d %s: %s", e.Status, e.Code, e.Message)
}
