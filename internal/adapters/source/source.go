// Package source reads the delimited-text result files of one race edition.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/pacematch/internal/domain/normalize"
	"github.com/okian/pacematch/internal/domain/race"
)

// Delimiters of the two source formats.
const (
	officialDelimiter  = ','
	communityDelimiter = '|'
)

// Official files carry three columns and no header.
const (
	officialColName = iota
	officialColGenderAge
	officialColTime
)

// communityAliases maps accepted community header names to canonical columns.
var communityAliases = map[string]string{
	"raceid":   "event_id",
	"event_id": "event_id",
	"name":     "name",
	"gender":   "gender",
	"shoes":    "shoes",
	"shoe":     "shoes",
	"time1":    "time1",
	"time2":    "time2",
	"age":      "age",
}

// Loader reads race files from a directory.
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the directory the loader reads from.
func (l *Loader) Dir() string { return l.dir }

// LoadOfficial reads the official results file of r.
func (l *Loader) LoadOfficial(ctx context.Context, r race.Race) ([]normalize.OfficialRow, error) {
	f, err := l.open(r.OfficialFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadOfficial(ctx, f)
}

// LoadCommunity reads the community results file of r.
func (l *Loader) LoadCommunity(ctx context.Context, r race.Race) ([]normalize.CommunityRow, error) {
	f, err := l.open(r.CommunityFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCommunity(ctx, f)
}

func (l *Loader) open(name string) (*os.File, error) {
	path := filepath.Join(l.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// ReadOfficial parses header-less "name,gender_and_age,time" rows.
func ReadOfficial(ctx context.Context, r io.Reader) ([]normalize.OfficialRow, error) {
	reader := newReader(r, officialDelimiter)

	var rows []normalize.OfficialRow
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("read official rows: %w", err)
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read official line %d: %w", line, err)
		}
		rows = append(rows, normalize.OfficialRow{
			Line:      line,
			Name:      column(record, officialColName),
			GenderAge: column(record, officialColGenderAge),
			Time:      column(record, officialColTime),
		})
	}
	return rows, nil
}

// ReadCommunity parses pipe-delimited community rows, locating columns by header.
// The second time column is discarded.
func ReadCommunity(ctx context.Context, r io.Reader) ([]normalize.CommunityRow, error) {
	reader := newReader(r, communityDelimiter)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read community header: %w", err)
	}

	index := make(map[string]int)
	for i, h := range header {
		if canonical, ok := communityAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			index[canonical] = i
		}
	}
	for _, required := range []string{"name", "time1"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadHeader, required)
		}
	}
	get := func(record []string, col string) string {
		i, ok := index[col]
		if !ok {
			return ""
		}
		return column(record, i)
	}

	var rows []normalize.CommunityRow
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("read community rows: %w", err)
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read community line %d: %w", line, err)
		}
		rows = append(rows, normalize.CommunityRow{
			Line:    line,
			EventID: get(record, "event_id"),
			Name:    get(record, "name"),
			Gender:  get(record, "gender"),
			Shoes:   get(record, "shoes"),
			Time:    get(record, "time1"),
			Age:     get(record, "age"),
		})
	}
	return rows, nil
}

func newReader(r io.Reader, delim rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

func column(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}
