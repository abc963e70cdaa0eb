package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/pacematch/internal/domain/finishtime"
	"github.com/okian/pacematch/internal/domain/model"
)

var (
	lowerBoundRe = regexp.MustCompile(`(\d+)-`)
	upperBoundRe = regexp.MustCompile(`-(\d+)`)

	// Community exports carry free-form time cells; only cells starting with a
	// single-digit hour are finish times.
	communityTimeRe = regexp.MustCompile(`^\d:`)
)

// Official normalizes the official batch of one race edition.
func Official(eventID string, rows []OfficialRow) Batch[model.OfficialResult] {
	titled := needsTitleCase(len(rows), func(i int) string { return rows[i].Name })
	caser := cases.Title(language.Und)

	out := Batch[model.OfficialResult]{Records: make([]model.OfficialResult, 0, len(rows))}
	for _, row := range rows {
		rec, err := official(eventID, row)
		if err != nil {
			out.Dropped = append(out.Dropped, Rejection{Line: row.Line, Source: SourceOfficial, Err: err})
			continue
		}
		if titled {
			rec.Name = caser.String(rec.Name)
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

func official(eventID string, row OfficialRow) (model.OfficialResult, error) {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return model.OfficialResult{}, fmt.Errorf("%w: name", ErrMissingField)
	}
	rawTime := strings.TrimSpace(row.Time)
	if rawTime == "" {
		return model.OfficialResult{}, fmt.Errorf("%w: time", ErrMissingField)
	}
	secs, err := finishtime.ToSeconds(rawTime)
	if err != nil {
		return model.OfficialResult{}, err
	}

	gender, ageExpr := splitGenderAge(row.GenderAge)
	lower, upper, err := ParseAge(ageExpr)
	if err != nil {
		return model.OfficialResult{}, err
	}

	return model.OfficialResult{
		Name:              name,
		FinishTimeSeconds: secs,
		Gender:            gender,
		EventID:           eventID,
		AgeLower:          lower,
		AgeUpper:          upper,
	}, nil
}

// Community normalizes the community batch of one race edition.
func Community(rows []CommunityRow) Batch[model.CommunityResult] {
	titled := needsTitleCase(len(rows), func(i int) string { return rows[i].Name })
	caser := cases.Title(language.Und)

	out := Batch[model.CommunityResult]{Records: make([]model.CommunityResult, 0, len(rows))}
	for _, row := range rows {
		rec, err := community(row)
		if err != nil {
			out.Dropped = append(out.Dropped, Rejection{Line: row.Line, Source: SourceCommunity, Err: err})
			continue
		}
		if titled {
			rec.Name = caser.String(rec.Name)
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

func community(row CommunityRow) (model.CommunityResult, error) {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return model.CommunityResult{}, fmt.Errorf("%w: name", ErrMissingField)
	}
	rawTime := strings.TrimSpace(row.Time)
	if rawTime == "" {
		return model.CommunityResult{}, fmt.Errorf("%w: time", ErrMissingField)
	}
	if !communityTimeRe.MatchString(rawTime) {
		return model.CommunityResult{}, fmt.Errorf("%w: %q is not an H:M:S finish time", ErrFormat, rawTime)
	}
	secs, err := finishtime.ToSeconds(rawTime)
	if err != nil {
		return model.CommunityResult{}, err
	}
	lower, upper, err := ParseAge(row.Age)
	if err != nil {
		return model.CommunityResult{}, err
	}

	return model.CommunityResult{
		EventID:           strings.TrimSpace(row.EventID),
		Name:              name,
		Gender:            strings.TrimSpace(row.Gender),
		ShoeDescription:   strings.TrimSpace(row.Shoes),
		FinishTimeSeconds: secs,
		AgeLower:          lower,
		AgeUpper:          upper,
	}, nil
}

// ParseAge extracts an age bracket from expressions such as "35-39", "18-" or
// "-19". Each bound is found independently; an absent bound takes its default.
// The bracket is half-open, so lower must be strictly below upper.
func ParseAge(expr string) (lower, upper int, err error) {
	lower, upper = model.DefaultAgeLower, model.DefaultAgeUpper

	if m := lowerBoundRe.FindStringSubmatch(expr); m != nil {
		if lower, err = strconv.Atoi(m[1]); err != nil {
			return 0, 0, fmt.Errorf("%w: age %q: %v", ErrFormat, expr, err)
		}
	}
	if m := upperBoundRe.FindStringSubmatch(expr); m != nil {
		if upper, err = strconv.Atoi(m[1]); err != nil {
			return 0, 0, fmt.Errorf("%w: age %q: %v", ErrFormat, expr, err)
		}
	}

	if lower >= upper || upper > model.DefaultAgeUpper {
		return 0, 0, fmt.Errorf("%w: age %q: bracket [%d,%d] out of range", ErrFormat, expr, lower, upper)
	}
	return lower, upper, nil
}

// splitGenderAge splits the official "M35-39" token into gender and age expression.
func splitGenderAge(token string) (gender, age string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ""
	}
	r := []rune(token)
	return string(r[0]), string(r[1:])
}

// needsTitleCase samples the name column the way the official exports are
// inspected: the second row when present, the first otherwise.
func needsTitleCase(n int, name func(int) string) bool {
	switch {
	case n == 0:
		return false
	case n == 1:
		return isUpper(name(0))
	default:
		return isUpper(name(1))
	}
}

// isUpper reports whether s has at least one cased letter and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}
