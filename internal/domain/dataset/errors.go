package dataset

import "errors"

// Sentinel kinds for dataset queries.
var (
	ErrEmpty         = errors.New("no matching rows")
	ErrInvalidFilter = errors.New("invalid filter")
)
