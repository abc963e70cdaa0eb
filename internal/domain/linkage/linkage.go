package linkage

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pacematch/internal/domain/candidate"
	"github.com/okian/pacematch/internal/domain/model"
	"github.com/okian/pacematch/internal/domain/similarity"
)

// DefaultNameThreshold is the minimum name similarity accepted by default.
const DefaultNameThreshold = 0.85

// Engine decides, for every community record, whether it corresponds to one
// official record. It holds configuration only; every call works on the
// batches it is given.
//
// Matching is greedy: candidates are scanned in official-batch order and the
// first one that passes the age and name gates wins, even if a later candidate
// would score higher. An official record may be matched by several community
// records.
type Engine struct {
	timeTolerance int
	nameThreshold float64
	scorer        similarity.Scorer
}

// New creates an engine with the default 60 second tolerance, 0.85 name
// threshold and Jaro-Winkler scorer.
func New(opts ...Option) *Engine {
	e := &Engine{
		timeTolerance: candidate.DefaultTolerance,
		nameThreshold: DefaultNameThreshold,
		scorer:        similarity.NewJaroWinkler(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// TimeTolerance returns the configured tolerance in seconds.
func (e *Engine) TimeTolerance() int { return e.timeTolerance }

// NameThreshold returns the configured name similarity threshold.
func (e *Engine) NameThreshold() float64 { return e.nameThreshold }

// Link returns the matches for community against official, in community order.
func (e *Engine) Link(community []model.CommunityResult, official []model.OfficialResult) []model.Match {
	var out []model.Match
	e.Each(community, official, func(m model.Match) bool {
		out = append(out, m)
		return true
	})
	return out
}

// Each produces matches lazily in community order. It stops when yield
// returns false.
func (e *Engine) Each(community []model.CommunityResult, official []model.OfficialResult, yield func(model.Match) bool) {
	for _, c := range community {
		o, ok := e.first(c, official)
		if !ok {
			continue
		}
		if !yield(Reconcile(c, o)) {
			return
		}
	}
}

// first returns the first candidate for c that passes both gates.
func (e *Engine) first(c model.CommunityResult, official []model.OfficialResult) (model.OfficialResult, bool) {
	for _, o := range candidate.Filter(c, official, e.timeTolerance) {
		if !Overlaps(o.AgeLower, o.AgeUpper, c.AgeLower, c.AgeUpper) {
			continue
		}
		if e.scorer.Similarity(c.Name, o.Name) >= e.nameThreshold {
			return o, true
		}
	}
	return model.OfficialResult{}, false
}

// LinkParallel links contiguous partitions of the community batch concurrently,
// each against the full official batch, and concatenates the results in
// partition order. The output is identical to Link.
func (e *Engine) LinkParallel(ctx context.Context, community []model.CommunityResult, official []model.OfficialResult, partitions int) ([]model.Match, error) {
	if partitions < 1 {
		partitions = 1
	}
	if partitions > len(community) {
		partitions = len(community)
	}
	if partitions <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("link cancelled: %w", err)
		}
		return e.Link(community, official), nil
	}

	size := (len(community) + partitions - 1) / partitions
	results := make([][]model.Match, partitions)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < partitions; i++ {
		lo := i * size
		hi := min(lo+size, len(community))
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			var part []model.Match
			var err error
			e.Each(community[lo:hi], official, func(m model.Match) bool {
				if err = ctx.Err(); err != nil {
					return false
				}
				part = append(part, m)
				return true
			})
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				return fmt.Errorf("link partition %d cancelled: %w", i, err)
			}
			results[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.Match
	for _, part := range results {
		out = append(out, part...)
	}
	return out, nil
}
