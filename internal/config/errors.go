package config

import "errors"

// Sentinel kinds returned by Load and Validate; match them with errors.Is.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")
)
