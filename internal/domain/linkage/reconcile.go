package linkage

import "github.com/okian/pacematch/internal/domain/model"

// Reconcile merges a linked pair into a Match. The community side supplies the
// name, finish time and shoes; the official side supplies the event. The age
// bracket is the intersection of both brackets.
func Reconcile(c model.CommunityResult, o model.OfficialResult) model.Match {
	return model.Match{
		EventID:           o.EventID,
		Name:              c.Name,
		FinishTimeSeconds: c.FinishTimeSeconds,
		Gender:            c.Gender,
		AgeLower:          max(o.AgeLower, c.AgeLower),
		AgeUpper:          min(o.AgeUpper, c.AgeUpper),
		ShoeDescription:   c.ShoeDescription,
	}
}

// Overlaps reports whether the half-open intervals [aLower,aUpper) and
// [bLower,bUpper) share a point. Intervals that only touch do not overlap.
func Overlaps(aLower, aUpper, bLower, bUpper int) bool {
	return aLower < bUpper && bLower < aUpper
}
