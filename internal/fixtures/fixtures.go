// Package fixtures writes synthetic official and community result files for a
// race edition. Output is deterministic for a given seed.
package fixtures

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/pacematch/internal/domain/finishtime"
	"github.com/okian/pacematch/internal/domain/race"
	"github.com/okian/pacematch/pkg/logger"
)

// Finish time range of generated runners, in seconds.
const (
	fastestFinish = 2*3600 + 10*60
	slowestFinish = 6*3600 + 30*60
	maxTimeDrift  = 45
)

var (
	firstNames = []string{"John", "Mary", "Ana", "Peter", "Lucia", "Mark", "Sarah", "David", "Emma", "Carlos",
		"Grace", "Liam", "Olivia", "Noah", "Sofia", "Ethan", "Mia", "Lucas", "Chloe", "Mateo"}
	lastNames = []string{"Smith", "Johnson", "Garcia", "Brown", "Miller", "Davis", "Martinez", "Wilson", "Anderson",
		"Taylor", "Thomas", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White", "Harris", "Clark"}
	shoes = []string{"Nike Vaporfly 4%", "Nike ZoomX Vaporfly NEXT%", "Adidas Adizero Adios", "Hoka Carbon X",
		"Saucony Endorphin Pro", "Asics Metaspeed Sky", "Brooks Hyperion Elite", ""}
	brackets = []string{"18-29", "30-34", "35-39", "40-44", "45-49", "50-54", "55-59", "60-64", "65-69", ""}
)

// Config controls the generated population.
type Config struct {
	Runners    int     // official finishers
	MatchShare float64 // share of official runners that also appear in the community file
	NoiseShare float64 // community-only runners, relative to Runners
	BadShare   float64 // community rows with unparsable times, relative to Runners
	Seed       uint64
}

// DefaultConfig returns a small mixed population.
func DefaultConfig() Config {
	return Config{Runners: 200, MatchShare: 0.4, NoiseShare: 0.1, BadShare: 0.02, Seed: 1}
}

// Stats reports what was written.
type Stats struct {
	OfficialRows  int
	CommunityRows int
	Planted       int // community rows copied from an official runner
	Malformed     int
}

type runner struct {
	first, last string
	gender      string
	bracket     string
	seconds     int
}

// Write generates both files of r into dir.
func Write(ctx context.Context, dir string, r race.Race, cfg Config) (Stats, error) {
	if cfg.Runners < 0 {
		return Stats{}, fmt.Errorf("runners must be >= 0, got %d", cfg.Runners)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Stats{}, fmt.Errorf("create fixture dir: %w", err)
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	official := make([]runner, cfg.Runners)
	for i := range official {
		official[i] = randomRunner(rng)
	}

	var stats Stats
	officialRecords := make([][]string, 0, len(official))
	for _, o := range official {
		officialRecords = append(officialRecords, []string{
			strings.ToUpper(o.first + " " + o.last),
			o.gender + o.bracket,
			finishtime.ToText(o.seconds),
		})
	}
	stats.OfficialRows = len(officialRecords)

	communityRecords := [][]string{{"RaceID", "Name", "Gender", "Shoes", "Time1", "Time2", "Age"}}
	for _, o := range official {
		if rng.Float64() >= cfg.MatchShare {
			continue
		}
		drift := rng.IntN(2*maxTimeDrift+1) - maxTimeDrift
		name := o.first + " " + o.last
		if rng.IntN(4) == 0 {
			name = typo(rng, name)
		}
		age := o.bracket
		if rng.IntN(5) == 0 {
			age = ""
		}
		communityRecords = append(communityRecords, communityRecord(r.ID, name, o.gender,
			shoes[rng.IntN(len(shoes))], max(o.seconds+drift, 0), age))
		stats.Planted++
	}
	for i := 0; i < int(float64(cfg.Runners)*cfg.NoiseShare); i++ {
		n := randomRunner(rng)
		communityRecords = append(communityRecords, communityRecord(r.ID, n.first+" "+n.last, n.gender,
			shoes[rng.IntN(len(shoes))], n.seconds, n.bracket))
	}
	for i := 0; i < int(float64(cfg.Runners)*cfg.BadShare); i++ {
		n := randomRunner(rng)
		rec := communityRecord(r.ID, n.first+" "+n.last, n.gender, shoes[0], n.seconds, n.bracket)
		rec[4] = "DNF"
		communityRecords = append(communityRecords, rec)
		stats.Malformed++
	}
	rng.Shuffle(len(communityRecords)-1, func(i, j int) {
		communityRecords[i+1], communityRecords[j+1] = communityRecords[j+1], communityRecords[i+1]
	})
	stats.CommunityRows = len(communityRecords) - 1

	if err := ctx.Err(); err != nil {
		return Stats{}, fmt.Errorf("generate fixtures: %w", err)
	}
	if err := writeFile(filepath.Join(dir, r.OfficialFile), ',', officialRecords); err != nil {
		return Stats{}, err
	}
	if err := writeFile(filepath.Join(dir, r.CommunityFile), '|', communityRecords); err != nil {
		return Stats{}, err
	}

	logger.Get().Info(ctx, "fixtures written",
		logger.String("race", r.ID),
		logger.String("dir", dir),
		logger.Int("official", stats.OfficialRows),
		logger.Int("community", stats.CommunityRows),
		logger.Int("planted", stats.Planted),
	)
	return stats, nil
}

func randomRunner(rng *rand.Rand) runner {
	gender := "M"
	if rng.IntN(2) == 0 {
		gender = "F"
	}
	return runner{
		first:   firstNames[rng.IntN(len(firstNames))],
		last:    lastNames[rng.IntN(len(lastNames))],
		gender:  gender,
		bracket: brackets[rng.IntN(len(brackets))],
		seconds: fastestFinish + rng.IntN(slowestFinish-fastestFinish),
	}
}

func communityRecord(raceID, name, gender, shoe string, seconds int, age string) []string {
	return []string{raceID, name, gender, shoe, finishtime.ToText(seconds), finishtime.ToText(seconds + 1), age}
}

// typo swaps two adjacent letters after the first four characters.
func typo(rng *rand.Rand, name string) string {
	b := []byte(name)
	if len(b) < 7 {
		return name
	}
	i := 4 + rng.IntN(len(b)-5)
	b[i], b[i+1] = b[i+1], b[i]
	return string(b)
}

func writeFile(path string, delim rune, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	w.Comma = delim
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
