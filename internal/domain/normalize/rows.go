// Package normalize turns per-source rows into canonical result records.
//
// Rows that cannot be normalized are dropped and reported, never fatal to a batch.
package normalize

import "fmt"

// Source names used in rejections.
const (
	SourceOfficial  = "official"
	SourceCommunity = "community"
)

// OfficialRow is one raw row of the official results file.
type OfficialRow struct {
	Line      int    // 1-based line in the source file
	Name      string
	GenderAge string // combined token: gender character followed by an age expression
	Time      string // "H:M:S"
}

// CommunityRow is one raw row of the community results file.
type CommunityRow struct {
	Line    int
	EventID string
	Name    string
	Gender  string
	Shoes   string
	Time    string // first time column; the second one is discarded by the loader
	Age     string
}

// Rejection describes a dropped row.
type Rejection struct {
	Line   int
	Source string
	Err    error
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s line %d: %v", r.Source, r.Line, r.Err)
}

// Batch is the outcome of normalizing one source file.
type Batch[T any] struct {
	Records []T
	Dropped []Rejection
}
