package finishtime

import "errors"

// Sentinel kinds for time parsing errors.
var (
	ErrFormat = errors.New("malformed time")
)
