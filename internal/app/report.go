package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/activity"
	"github.com/okian/podium/internal/domain/model"
)

// Report summarises one pass over the album.
type Report struct {
	RunID     uuid.UUID `json:"run_id"`
	AlbumDir  string    `json:"album_dir"`
	StartedAt time.Time `json:"started_at"`
	Duration  Duration  `json:"duration"`

	// Screenshots counts the image files found, misnamed ones included.
	Screenshots int `json:"screenshots"`
	Analysed    int `json:"analysed"`
	Duplicates  int `json:"duplicates"`

	// Players maps a player count to the number of rounds played with it.
	Players     map[int]int        `json:"players"`
	Leaderboard []repository.Entry `json:"leaderboard"`
	// Unidentified counts analysed rounds whose victor matched no known player.
	Unidentified int              `json:"unidentified"`
	Failures     []FailureReport  `json:"failures"`
	Activity     activity.Summary `json:"activity"`
}

// FailureReport is the serialisable form of a model.Failure.
type FailureReport struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// Duration marshals as a Go duration string such as "1.5s".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

func newFailureReports(failures []*model.Failure) []FailureReport {
	out := make([]FailureReport, 0, len(failures))
	for _, f := range failures {
		out = append(out, FailureReport{
			ID:    f.Screenshot.ID,
			Path:  f.Screenshot.Path,
			Stage: f.Stage,
			Error: f.Err.Error(),
		})
	}
	return out
}

// WriteReport encodes r as indented JSON.
func WriteReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// SaveReport writes r to path, replacing any previous report.
func SaveReport(path string, r Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report %s: %w", path, cerr)
		}
	}()
	return WriteReport(f, r)
}
