// Package linkage links community results to official results.
package linkage

import "github.com/okian/pacematch/internal/domain/similarity"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTimeTolerance sets how many seconds two finish times may differ.
// Negative values are ignored.
func WithTimeTolerance(seconds int) Option {
	return func(e *Engine) {
		if seconds >= 0 {
			e.timeTolerance = seconds
		}
	}
}

// WithNameThreshold sets the minimum name similarity for a match.
// Values outside [0,1] are ignored.
func WithNameThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold >= 0 && threshold <= 1 {
			e.nameThreshold = threshold
		}
	}
}

// WithScorer replaces the name similarity scorer.
func WithScorer(s similarity.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}
