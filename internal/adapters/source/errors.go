package source

import "errors"

// Sentinel kinds for source loading errors.
var (
	ErrSourceNotFound = errors.New("source file not found")
	ErrBadHeader      = errors.New("community header missing required columns")
)
