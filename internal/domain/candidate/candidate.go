// Package candidate narrows the official batch to plausible partners of one
// community record.
package candidate

import "github.com/okian/pacematch/internal/domain/model"

// DefaultTolerance is how far apart, in seconds, two clocks may legitimately
// disagree for the same runner.
const DefaultTolerance = 60

// Filter returns, in their original order, the official records whose finish
// time lies within tolerance seconds of c and whose gender equals c's.
// Inputs are not modified.
func Filter(c model.CommunityResult, officials []model.OfficialResult, tolerance int) []model.OfficialResult {
	var out []model.OfficialResult
	for _, o := range officials {
		if o.Gender != c.Gender {
			continue
		}
		if abs(o.FinishTimeSeconds-c.FinishTimeSeconds) > tolerance {
			continue
		}
		out = append(out, o)
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
