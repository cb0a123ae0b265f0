// Package service wires the album scanner, worker pool, victor registry and
// result store into album passes, and serves the results to the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/adapters/album"
	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/adapters/mq/worker"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/activity"
	"github.com/okian/podium/internal/domain/analyzer"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/registry"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Service runs album passes and exposes the latest results.
//
// Every Run analyses the whole album into a fresh store, so a rerun never
// counts a screenshot twice. The registry lives as long as the service:
// learned players keep their generated names across runs.
type Service struct {
	mu sync.RWMutex
	// runMu serialises album passes.
	runMu sync.Mutex

	// Core components
	registry *registry.Registry
	analyzer *analyzer.PodiumAnalyzer
	store    *repository.MemoryStore

	// Configuration
	albumDir     string
	location     *time.Location
	workerCount  int
	queueSize    int
	dedupeSize   int
	knownPlayers map[string]string
	learnUnknown bool
	decoder      worker.Decoder

	// State
	started    bool
	runs       int
	lastReport *Report
	cancelRun  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAlbumDir sets the directory scanned for screenshots.
func WithAlbumDir(dir string) Option {
	return func(s *Service) {
		s.albumDir = dir
	}
}

// WithLocation sets the zone screenshot file names are written in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the screenshot queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many dedupe keys a run remembers. Zero or negative is unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithKnownPlayers registers each player with the reference at its path.
func WithKnownPlayers(players map[string]string) Option {
	return func(s *Service) {
		s.knownPlayers = make(map[string]string, len(players))
		for name, path := range players {
			s.knownPlayers[name] = path
		}
	}
}

// WithLearning names unregistered victors unknown-1, unknown-2, ... by banner.
func WithLearning(enabled bool) Option {
	return func(s *Service) {
		s.learnUnknown = enabled
	}
}

// WithDecoder replaces the function workers load screenshots with.
func WithDecoder(decode worker.Decoder) Option {
	return func(s *Service) {
		s.decoder = decode
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		location:    time.UTC,
		workerCount: runtime.NumCPU(),
		queueSize:   256,
		dedupeSize:  10_000,
		logger:      nil, // resolved in Start
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the known players and prepares an empty store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	reg := registry.New(registry.WithLearning(s.learnUnknown))
	names := make([]string, 0, len(s.knownPlayers))
	for name := range s.knownPlayers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := s.knownPlayers[name]
		fp, err := album.LoadReference(path)
		if err != nil {
			return fmt.Errorf("player %q: %w: %w", name, ErrReference, err)
		}
		if err := reg.Register(name, fp); err != nil {
			return fmt.Errorf("player %q: %w: %w", name, ErrReference, err)
		}
		s.logger.Debug(ctx, "registered player",
			logger.String("player", name),
			logger.String("reference", path),
			logger.Float64("coverage", fp.Coverage()),
		)
	}
	metrics.UpdateKnownPlayers(len(names))

	s.registry = reg
	s.analyzer = analyzer.New()
	s.store = repository.NewMemoryStore()
	s.started = true

	s.logger.Info(ctx, "podium service started",
		logger.String("album", s.albumDir),
		logger.Int("knownPlayers", len(names)),
		logger.Bool("learnUnknown", s.learnUnknown),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop cancels a running album pass. Results stay readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.started = false
	s.logger.Info(context.Background(), "podium service stopped")
}

// Run analyses every screenshot in the album and returns the report of the pass.
// Unreadable screenshots do not fail the run; they are listed in the report.
func (s *Service) Run(ctx context.Context) (Report, error) {
	if !s.runMu.TryLock() {
		return Report{}, ErrRunning
	}
	defer s.runMu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return Report{}, ErrNotStarted
	}
	s.cancelRun = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancelRun = nil
		s.mu.Unlock()
	}()

	report := Report{RunID: uuid.New(), AlbumDir: s.albumDir, StartedAt: time.Now()}
	log := s.logger.Named("run")
	log.Info(ctx, "album pass started", logger.String("runID", report.RunID.String()), logger.String("album", s.albumDir))

	shots, misnamed, err := album.Scan(s.albumDir, s.location)
	if err != nil {
		metrics.RecordErrorByComponent("service", "scan_error")
		return Report{}, fmt.Errorf("scan: %w", err)
	}
	report.Screenshots = len(shots) + len(misnamed)

	store := repository.NewMemoryStore()
	for _, f := range misnamed {
		metrics.RecordAnalysisFailure(f.Stage)
		log.Warn(ctx, "screenshot not analysed",
			logger.String("id", f.Screenshot.ID),
			logger.String("stage", f.Stage),
			logger.Error(f.Err),
		)
		if err := store.RecordFailure(ctx, f); err != nil {
			return Report{}, fmt.Errorf("record failure: %w", err)
		}
	}

	if err := s.process(ctx, shots, store); err != nil {
		return Report{}, err
	}

	report, err = s.buildReport(ctx, report, store)
	if err != nil {
		return Report{}, err
	}
	metrics.RecordRun(time.Duration(report.Duration).Seconds())
	metrics.UpdateKnownPlayers(len(s.registry.Names()))

	s.mu.Lock()
	s.store = store
	s.runs++
	s.lastReport = &report
	s.mu.Unlock()

	log.Info(ctx, "album pass finished",
		logger.String("runID", report.RunID.String()),
		logger.Int("screenshots", report.Screenshots),
		logger.Int("analysed", report.Analysed),
		logger.Int("duplicates", report.Duplicates),
		logger.Int("failures", len(report.Failures)),
		logger.Duration("took", time.Duration(report.Duration)),
	)
	return report, nil
}

// process feeds shots through a worker pool into store.
func (s *Service) process(ctx context.Context, shots []model.Screenshot, store *repository.MemoryStore) error {
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	opts := []worker.Option{
		worker.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))),
		worker.WithIdentifier(s.registry),
	}
	if s.decoder != nil {
		opts = append(opts, worker.WithDecoder(s.decoder))
	}
	pool := worker.NewPool(s.workerCount, q, s.analyzer, store, opts...)
	pool.Start(ctx)

	for _, shot := range shots {
		if err := q.Put(ctx, shot); err != nil {
			if serr := pool.Shutdown(context.Background()); serr != nil {
				s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(serr))
			}
			return fmt.Errorf("enqueue %s: %w", shot.ID, err)
		}
	}
	if err := pool.Drain(ctx); err != nil {
		return err
	}
	// Workers also stop on cancellation; a pass cut short is not a result.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("album pass: %w", err)
	}
	return nil
}

func (s *Service) buildReport(ctx context.Context, report Report, store *repository.MemoryStore) (Report, error) {
	leaderboard, err := store.TopN(ctx, max(store.Count(ctx), 1))
	if err != nil {
		return Report{}, fmt.Errorf("leaderboard: %w", err)
	}

	analyses := store.Analyses(ctx)
	times := make([]time.Time, 0, len(analyses))
	for _, a := range analyses {
		times = append(times, a.Screenshot.TakenAt)
		if a.Victor == "" {
			report.Unidentified++
		}
	}

	report.Analysed = len(analyses)
	report.Duplicates = store.Duplicates(ctx)
	report.Players = store.PlayerCounts(ctx)
	report.Leaderboard = leaderboard
	report.Failures = newFailureReports(store.Failures(ctx))
	report.Activity = activity.Summarize(times)
	report.Duration = Duration(time.Since(report.StartedAt))
	return report, nil
}

// TopN returns the top n players of the latest album pass.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}
	return store.TopN(ctx, n)
}

// Rank returns the leaderboard row of player in the latest album pass.
func (s *Service) Rank(ctx context.Context, player string) (repository.Entry, error) {
	store, err := s.currentStore()
	if err != nil {
		return repository.Entry{}, err
	}
	return store.Rank(ctx, player)
}

// Analyses returns the analyses of the latest album pass ordered by capture time.
func (s *Service) Analyses(ctx context.Context) ([]model.Analysis, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}
	return store.Analyses(ctx), nil
}

// LastReport returns the report of the latest finished album pass.
func (s *Service) LastReport() (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastReport == nil {
		return Report{}, false
	}
	return *s.lastReport, true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"albumDir":     s.albumDir,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"learnUnknown": s.learnUnknown,
		"runs":         s.runs,
	}

	if s.registry != nil {
		stats["knownPlayers"] = len(s.registry.Names())
		stats["learnedPlayers"] = s.registry.Learned()
	}
	if s.store != nil {
		stats["analysed"] = len(s.store.Analyses(ctx))
		stats["failures"] = len(s.store.Failures(ctx))
		stats["duplicates"] = s.store.Duplicates(ctx)
		stats["victors"] = s.store.Count(ctx)
	}
	if s.lastReport != nil {
		stats["lastRunID"] = s.lastReport.RunID.String()
		stats["lastRunAt"] = s.lastReport.StartedAt
		stats["lastRunDuration"] = time.Duration(s.lastReport.Duration).String()
	}

	return stats
}

func (s *Service) currentStore() (*repository.MemoryStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}
