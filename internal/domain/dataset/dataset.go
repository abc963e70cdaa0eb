// Package dataset provides an immutable handle over linked matches and the
// aggregate queries run against it.
//
// A Dataset is built once by the caller and passed explicitly to every query.
package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/pacematch/internal/domain/model"
)

// Sexes accepted by filters.
var sexes = map[string]bool{"M": true, "F": true}

// RaceValidator reports whether a race filter names a known race or city.
type RaceValidator interface {
	Known(id string) bool
}

// Filter selects rows. Zero fields do not filter.
type Filter struct {
	Race string // race id such as "NY19", or a city code such as "NY" for every edition
	Sex  string // "M" or "F"
	Age  *int   // row bracket must contain Age (inclusive)
}

// Dataset is an immutable collection of matches.
type Dataset struct {
	rows  []model.Match
	races RaceValidator
}

// New copies matches into a new Dataset. races may be nil to accept any race filter.
func New(matches []model.Match, races RaceValidator) *Dataset {
	rows := make([]model.Match, len(matches))
	copy(rows, matches)
	return &Dataset{rows: rows, races: races}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Races returns the distinct event ids present, sorted.
func (d *Dataset) Races() []string {
	seen := make(map[string]struct{})
	for _, r := range d.rows {
		seen[r.EventID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Validate checks the filter against the accepted sexes and known races.
func (d *Dataset) Validate(f Filter) error {
	if f.Sex != "" && !sexes[f.Sex] {
		return fmt.Errorf("%w: sex %q", ErrInvalidFilter, f.Sex)
	}
	if f.Race != "" && d.races != nil && !d.races.Known(f.Race) {
		return fmt.Errorf("%w: race %q", ErrInvalidFilter, f.Race)
	}
	if f.Age != nil && *f.Age < 0 {
		return fmt.Errorf("%w: age %d", ErrInvalidFilter, *f.Age)
	}
	return nil
}

// Select returns copies of the rows matching f, in dataset order.
func (d *Dataset) Select(f Filter) []model.Match {
	var out []model.Match
	for _, r := range d.rows {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// AverageFinishTime returns the mean finish time in seconds of the rows matching f.
func (d *Dataset) AverageFinishTime(f Filter) (float64, int, error) {
	if err := d.Validate(f); err != nil {
		return 0, 0, err
	}
	var sum, n int
	for _, r := range d.rows {
		if f.matches(r) {
			sum += r.FinishTimeSeconds
			n++
		}
	}
	if n == 0 {
		return 0, 0, ErrEmpty
	}
	return float64(sum) / float64(n), n, nil
}

func (f Filter) matches(r model.Match) bool {
	if f.Race != "" && !raceMatches(f.Race, r.EventID) {
		return false
	}
	if f.Sex != "" && r.Gender != f.Sex {
		return false
	}
	if f.Age != nil && (r.AgeLower > *f.Age || r.AgeUpper < *f.Age) {
		return false
	}
	return true
}

// raceMatches compares an exact race id, or every edition when filter is a city code.
func raceMatches(filter, eventID string) bool {
	filter = strings.ToUpper(strings.TrimSpace(filter))
	if len(filter) == 2 {
		return strings.HasPrefix(eventID, filter)
	}
	return eventID == filter
}
