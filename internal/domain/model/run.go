package model

import "time"

// RunRequest asks for one asynchronous linkage run of a race.
type RunRequest struct {
	ID          string    // run id, a UUID
	RaceID      string    // e.g. "NY19"
	SubmittedAt time.Time
}
