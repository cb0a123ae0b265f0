package albumgen

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"golang.org/x/image/bmp"

	"github.com/okian/podium/internal/adapters/album"
	"github.com/okian/podium/internal/fixture"
	"github.com/okian/podium/pkg/logger"
)

// File names written next to the album.
const (
	ReferenceDir = "references"
	ExpectedFile = "expected.json"
	ConfigFile   = "podium.yaml"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

var (
	themes       = []fixture.Theme{fixture.Classic, fixture.Peach, fixture.Lavender}
	playerCounts = []int{2, 3, 4}
)

// Round is one planned screenshot.
type Round struct {
	Name   string // file name without extension
	Podium fixture.Podium
	Copy   bool // also written as BMP
}

// Plan lays out the rounds of cfg. The same seed always yields the same plan.
func Plan(cfg *Config) []Round {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	rounds := make([]Round, cfg.Rounds)
	for i := range rounds {
		victor := cfg.Players[rng.IntN(len(cfg.Players))]
		if rng.Float64() < cfg.Unknown {
			victor = UnknownVictor
		}
		rounds[i] = Round{
			Name: album.FormatTimestamp(cfg.Start.Add(time.Duration(i) * cfg.Interval)),
			Podium: fixture.Podium{
				Players: playerCounts[rng.IntN(len(playerCounts))],
				Victor:  victor,
				Theme:   themes[rng.IntN(len(themes))],
				Obscure: rng.Float64() < cfg.Obscured,
			},
			Copy: rng.Float64() < cfg.Duplicates,
		}
	}
	return rounds
}

// Generate writes the album, a reference per player, a podium config and the
// expected results, and returns the latter.
func Generate(ctx context.Context, cfg *Config) (*Expected, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("albumgen")

	refDir := filepath.Join(cfg.Dir, ReferenceDir)
	if err := os.MkdirAll(refDir, directoryPermission); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	expected := &Expected{
		Wins:       make(map[string]int),
		Players:    make(map[int]int),
		References: make(map[string]string, len(cfg.Players)),
	}
	for _, name := range cfg.Players {
		path := filepath.Join(refDir, name+".png")
		if err := fixture.WritePNG(path, fixture.Podium{Victor: name}.Image()); err != nil {
			return nil, fmt.Errorf("reference %s: %w", name, err)
		}
		expected.References[name] = path
	}

	rounds := Plan(cfg)
	for _, r := range rounds {
		expected.Rounds++
		expected.Players[r.Podium.Players]++
		if r.Podium.Victor == UnknownVictor {
			expected.Unknown++
		} else {
			expected.Wins[r.Podium.Victor]++
		}
		if r.Copy {
			expected.Duplicates++
		}
	}

	log.Info(ctx, "writing album",
		logger.String("dir", cfg.Dir),
		logger.Int("rounds", len(rounds)),
		logger.Int("duplicates", expected.Duplicates),
		logger.Int("workers", cfg.Workers),
	)
	if err := writeRounds(ctx, cfg, rounds, log); err != nil {
		return nil, err
	}

	if err := writeJSON(filepath.Join(cfg.Dir, ExpectedFile), expected); err != nil {
		return nil, err
	}
	if err := writeConfig(cfg.Dir, expected.References, cfg.Unknown > 0); err != nil {
		return nil, err
	}
	log.Info(ctx, "album written", logger.String("dir", cfg.Dir))
	return expected, nil
}

// writeRounds renders and writes rounds using cfg.Workers goroutines.
func writeRounds(ctx context.Context, cfg *Config, rounds []Round, log logger.Logger) error {
	workerCount := max(1, min(cfg.Workers, len(rounds)))
	indices := make(chan int)
	errs := make(chan error, workerCount)

	for w := 0; w < workerCount; w++ {
		go func() {
			var err error
			for i := range indices {
				if err != nil {
					continue // drain after the first failure
				}
				err = writeRound(cfg.Dir, rounds[i])
				if err == nil && cfg.Verbose {
					log.Debug(ctx, "wrote round", logger.String("name", rounds[i].Name), logger.String("victor", rounds[i].Podium.Victor))
				}
			}
			errs <- err
		}()
	}

	var sendErr error
feed:
	for i := range rounds {
		select {
		case <-ctx.Done():
			sendErr = fmt.Errorf("context cancelled during album generation: %w", ctx.Err())
			break feed
		case indices <- i:
		}
	}
	close(indices)

	for w := 0; w < workerCount; w++ {
		if err := <-errs; err != nil && sendErr == nil {
			sendErr = err
		}
	}
	return sendErr
}

func writeRound(dir string, r Round) error {
	img := r.Podium.Image()
	if err := fixture.WritePNG(filepath.Join(dir, r.Name+".png"), img); err != nil {
		return err
	}
	if r.Copy {
		return writeBMP(filepath.Join(dir, r.Name+".bmp"), img)
	}
	return nil
}

func writeBMP(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := bmp.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeConfig writes a podium config that analyses the album with its references.
func writeConfig(dir string, references map[string]string, learn bool) error {
	players := make(map[string]interface{}, len(references))
	for name, path := range references {
		players[name] = path
	}

	data, err := kyaml.Parser().Marshal(map[string]interface{}{
		"album_dir":     dir,
		"known_players": players,
		"learn_unknown": learn,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dir, ConfigFile)
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
