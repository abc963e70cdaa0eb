// Package race names the supported race editions and their source files.
package race

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	firstYear = 14
	lastYear  = 19
)

// cities maps city codes to the names used in source file names.
var cities = map[string]string{
	"CH": "Chicago",
	"NY": "NewYork",
	"BS": "Boston",
}

// Race is one edition of a marathon.
type Race struct {
	ID            string // e.g. "NY19"
	City          string // e.g. "NewYork"
	Year          int    // e.g. 2019
	OfficialFile  string // e.g. "NewYork2019official.csv"
	CommunityFile string // e.g. "strava_newyork_2019.csv"
}

// Catalog resolves race ids.
type Catalog struct {
	races map[string]Race
}

// NewCatalog builds the catalog of every supported city and year.
func NewCatalog() *Catalog {
	c := &Catalog{races: make(map[string]Race, len(cities)*(lastYear-firstYear+1))}
	for code, city := range cities {
		for yy := firstYear; yy <= lastYear; yy++ {
			id := code + strconv.Itoa(yy)
			year := 2000 + yy
			c.races[id] = Race{
				ID:            id,
				City:          city,
				Year:          year,
				OfficialFile:  fmt.Sprintf("%s%dofficial.csv", city, year),
				CommunityFile: fmt.Sprintf("strava_%s_%d.csv", strings.ToLower(city), year),
			}
		}
	}
	return c
}

// Lookup returns the race with the given id.
func (c *Catalog) Lookup(id string) (Race, error) {
	r, ok := c.races[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return Race{}, fmt.Errorf("%w: %q", ErrUnknownRace, id)
	}
	return r, nil
}

// IDs returns every race id in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.races))
	for id := range c.races {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cities returns the city codes in sorted order.
func (c *Catalog) Cities() []string {
	codes := make([]string, 0, len(cities))
	for code := range cities {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Known reports whether id is a race id or a bare city code.
func (c *Catalog) Known(id string) bool {
	id = strings.ToUpper(strings.TrimSpace(id))
	if _, ok := c.races[id]; ok {
		return true
	}
	_, ok := cities[id]
	return ok
}
