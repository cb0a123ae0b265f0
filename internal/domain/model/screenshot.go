// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/podium/internal/domain/banner"
)

// Screenshot is one podium screenshot found in the album.
type Screenshot struct {
	ID      string    // file name without extension, e.g. "12-15-16 18;50"
	Path    string    // absolute or album-relative path to the image
	TakenAt time.Time // parsed from the file name
}

// Analysis is the outcome of analysing one screenshot.
type Analysis struct {
	Screenshot  Screenshot
	PlayerCount int
	// Victor is the known or learned player name; empty when unidentified.
	Victor      string
	Palette     banner.Palette
	Fingerprint banner.Fingerprint
	Coverage    float64
	AnalyzedAt  time.Time
}

// Pipeline stages a screenshot can fail in.
const (
	StageFilename    = "filename"
	StageDecode      = "decode"
	StagePlayerCount = "player-count"
	StageBanner      = "banner"
	StageIdentify    = "identify"
)

// Failure records a screenshot that could not be analysed.
type Failure struct {
	Screenshot Screenshot
	Stage      string
	Err        error
}

func (f *Failure) Error() string {
	return f.Screenshot.ID + ": " + f.Stage + ": " + f.Err.Error()
}

// Unwrap exposes the underlying cause.
func (f *Failure) Unwrap() error { return f.Err }
