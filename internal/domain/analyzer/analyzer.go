// Package analyzer turns a decoded podium screenshot into an Analysis.
package analyzer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/okian/podium/internal/domain/banner"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/podium"
	"github.com/okian/podium/internal/domain/raster"
)

// Option applies a configuration option to the PodiumAnalyzer.
type Option func(*PodiumAnalyzer)

// WithClock sets the time source used to stamp analyses.
func WithClock(now func() time.Time) Option {
	return func(a *PodiumAnalyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// Analyzer extracts player count and victor fingerprint from a screenshot.
type Analyzer interface {
	// Analyze honours ctx for cancellation. Errors are *model.Failure.
	Analyze(ctx context.Context, shot model.Screenshot, img image.Image) (model.Analysis, error)
}

// PodiumAnalyzer implements Analyzer for the fixed podium layout.
type PodiumAnalyzer struct {
	now func() time.Time
}

// New creates a podium analyzer.
func New(opts ...Option) *PodiumAnalyzer {
	a := &PodiumAnalyzer{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze resolves the player count and fingerprints the victor banner.
// The victor name is left empty; identifying it is up to the caller.
func (a *PodiumAnalyzer) Analyze(ctx context.Context, shot model.Screenshot, img image.Image) (model.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return model.Analysis{}, fmt.Errorf("context cancelled: %w", err)
	}

	full := raster.FromImage(img).Region()

	players, err := podium.ResolvePlayerCount(full)
	if err != nil {
		return model.Analysis{}, &model.Failure{Screenshot: shot, Stage: model.StagePlayerCount, Err: err}
	}

	region, err := podium.BannerRegion(full)
	if err != nil {
		return model.Analysis{}, &model.Failure{Screenshot: shot, Stage: model.StageBanner, Err: err}
	}
	fp, palette, err := banner.Analyze(region)
	if err != nil {
		return model.Analysis{}, &model.Failure{Screenshot: shot, Stage: model.StageBanner, Err: err}
	}

	return model.Analysis{
		Screenshot:  shot,
		PlayerCount: players,
		Palette:     palette,
		Fingerprint: fp,
		Coverage:    fp.Coverage(),
		AnalyzedAt:  a.now(),
	}, nil
}

// Reference fingerprints the victor banner of a podium screenshot,
// without requiring the placards to be readable.
func Reference(img image.Image) (banner.Fingerprint, error) {
	region, err := podium.BannerRegion(raster.FromImage(img).Region())
	if err != nil {
		return banner.Fingerprint{}, err
	}
	fp, _, err := banner.Analyze(region)
	return fp, err
}
