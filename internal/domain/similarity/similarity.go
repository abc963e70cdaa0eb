// Package similarity scores how alike two runner names are.
package similarity

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Scorer returns a similarity in [0,1] for two names.
type Scorer interface {
	Similarity(a, b string) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(a, b string) float64

// Similarity calls f(a, b).
func (f ScorerFunc) Similarity(a, b string) float64 { return f(a, b) }

// JaroWinkler is a case-sensitive Jaro-Winkler scorer. Inputs are expected to be
// case-normalized already. The metric is not guaranteed to be symmetric.
// strutil caps the rewarded common prefix at four characters.
type JaroWinkler struct {
	metric *metrics.JaroWinkler
}

// NewJaroWinkler returns the default name scorer.
func NewJaroWinkler() *JaroWinkler {
	m := metrics.NewJaroWinkler()
	m.CaseSensitive = true
	return &JaroWinkler{metric: m}
}

// Similarity returns 1 for identical names and 0 for names with nothing in common.
func (j *JaroWinkler) Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	return strutil.Similarity(a, b, j.metric)
}

var defaultScorer = NewJaroWinkler()

// Similarity scores a and b with the default Jaro-Winkler scorer.
func Similarity(a, b string) float64 {
	return defaultScorer.Similarity(a, b)
}
