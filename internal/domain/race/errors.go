package race

import "errors"

// Sentinel kinds for catalog lookups.
var (
	ErrUnknownRace = errors.New("unknown race")
)
