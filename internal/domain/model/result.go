// Package model contains domain models passed between layers.
package model

// Age bracket defaults applied when a source supplies no bound. Unknown age is
// the widest bracket, never a non-match.
const (
	DefaultAgeLower = 0
	DefaultAgeUpper = 120
)

// OfficialResult is one finisher record from the authoritative results feed.
type OfficialResult struct {
	Name              string // title-cased when the source batch was upper-case
	FinishTimeSeconds int    // seconds since the start gun
	Gender            string // single-character code, e.g. "M", "F"
	EventID           string // race edition, e.g. "NY19"
	AgeLower          int
	AgeUpper          int
}

// CommunityResult is one crowd-submitted record for the same race edition.
type CommunityResult struct {
	EventID           string
	Name              string
	Gender            string
	ShoeDescription   string // free text, may be empty
	FinishTimeSeconds int
	AgeLower          int
	AgeUpper          int
}

// Match is one linked pair of an official and a community record.
// The age interval is the intersection of both sources' brackets.
type Match struct {
	EventID           string `json:"event_id"`
	Name              string `json:"name"`
	FinishTimeSeconds int    `json:"finish_time_seconds"`
	Gender            string `json:"gender"`
	AgeLower          int    `json:"age_lower"`
	AgeUpper          int    `json:"age_upper"`
	ShoeDescription   string `json:"shoe_description"`
}

// MatchColumns is the column order used when matches are written as delimited text.
var MatchColumns = []string{
	"event_id",
	"name",
	"finish_time_seconds",
	"gender",
	"age_lower",
	"age_upper",
	"shoe_description",
}
