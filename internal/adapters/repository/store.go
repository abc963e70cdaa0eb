// Package repository persists linked matches across runs.
package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/okian/pacematch/internal/domain/model"
)

// Store accumulates matches from successive linkage runs.
type Store interface {
	// Append adds matches after the rows already stored.
	Append(ctx context.Context, matches []model.Match) error

	// Load returns every stored match in insertion order.
	Load(ctx context.Context) ([]model.Match, error)

	// Count returns the number of stored matches.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying resources.
	Close() error
}

// toRecord renders m in model.MatchColumns order.
func toRecord(m model.Match) []string {
	return []string{
		m.EventID,
		m.Name,
		strconv.Itoa(m.FinishTimeSeconds),
		m.Gender,
		strconv.Itoa(m.AgeLower),
		strconv.Itoa(m.AgeUpper),
		m.ShoeDescription,
	}
}

// fromRecord parses a row written by toRecord.
func fromRecord(rec []string) (model.Match, error) {
	if len(rec) != len(model.MatchColumns) {
		return model.Match{}, fmt.Errorf("%w: %d columns", ErrMalformed, len(rec))
	}
	ints := make([]int, 0, 3)
	for _, i := range []int{2, 4, 5} {
		v, err := strconv.Atoi(rec[i])
		if err != nil {
			return model.Match{}, fmt.Errorf("%w: %s: %v", ErrMalformed, model.MatchColumns[i], err)
		}
		ints = append(ints, v)
	}
	return model.Match{
		EventID:           rec[0],
		Name:              rec[1],
		FinishTimeSeconds: ints[0],
		Gender:            rec[3],
		AgeLower:          ints[1],
		AgeUpper:          ints[2],
		ShoeDescription:   rec[6],
	}, nil
}
