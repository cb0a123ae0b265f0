package worker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/podium/internal/adapters/album"
	"github.com/okian/podium/internal/domain/banner"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Decoder loads the image of a screenshot.
type Decoder func(path string) (image.Image, error)

// Analyzer extracts the player count and victor fingerprint of a screenshot.
type Analyzer interface {
	Analyze(ctx context.Context, shot model.Screenshot, img image.Image) (model.Analysis, error)
}

// Identifier names the victor behind a banner fingerprint. An empty name means unknown.
type Identifier interface {
	Observe(fp banner.Fingerprint) (name string, learned bool, err error)
}

// Recorder stores the outcome of every screenshot.
type Recorder interface {
	Record(ctx context.Context, a model.Analysis) error
	RecordFailure(ctx context.Context, f *model.Failure) error
	RecordDuplicate(ctx context.Context, shot model.Screenshot) error
}

// Queue defines how workers receive screenshots.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Screenshot
}

// Worker processes screenshots until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is closed.
	Run(ctx context.Context)

	// Shutdown stops the worker after the screenshot in progress.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker: decode, dedupe, analyse, identify, record.
type InMemoryWorker struct {
	queue      Queue
	analyzer   Analyzer
	recorder   Recorder
	decode     Decoder
	deduper    dedupe.Deduper
	identifier Identifier
	name       string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, analyzer Analyzer, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		analyzer: analyzer,
		recorder: recorder,
		decode:   album.Decode,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	shots := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case shot, ok := <-shots:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, shot); err != nil {
				w.logger.Error(ctx, "error processing screenshot",
					logger.String("id", shot.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process handles one screenshot. Analysis failures are recorded, not returned;
// the returned error means the outcome could not be stored.
func (w *InMemoryWorker) process(ctx context.Context, shot model.Screenshot) error {
	start := time.Now()
	metrics.AddWorkerActive(1)
	defer func() {
		metrics.AddWorkerActive(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	img, err := w.decode(shot.Path)
	if err != nil {
		return w.fail(ctx, &model.Failure{Screenshot: shot, Stage: model.StageDecode, Err: err})
	}

	var key string
	if w.deduper != nil {
		key, err = dedupe.Key(shot.TakenAt, img)
		if err != nil {
			return w.fail(ctx, &model.Failure{Screenshot: shot, Stage: model.StageDecode, Err: err})
		}
		if w.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordScreenshotDuplicate()
			w.logger.Debug(ctx, "duplicate screenshot skipped", logger.String("id", shot.ID))
			return w.recorder.RecordDuplicate(ctx, shot)
		}
	}

	analyzeStart := time.Now()
	a, err := w.analyzer.Analyze(ctx, shot, img)
	metrics.RecordAnalysisLatency(float64(time.Since(analyzeStart).Milliseconds()))
	if err != nil {
		var failure *model.Failure
		if !errors.As(err, &failure) {
			failure = &model.Failure{Screenshot: shot, Stage: model.StageBanner, Err: err}
		}
		return w.forget(ctx, key, failure)
	}

	if w.identifier != nil {
		name, learned, err := w.identifier.Observe(a.Fingerprint)
		if err != nil {
			return w.forget(ctx, key, &model.Failure{Screenshot: shot, Stage: model.StageIdentify, Err: err})
		}
		if learned {
			w.logger.Info(ctx, "learned new player", logger.String("player", name), logger.String("id", shot.ID))
		}
		a.Victor = name
	}

	metrics.RecordScreenshotAnalyzed(a.PlayerCount, a.Coverage)
	if a.Victor != "" {
		metrics.RecordVictory(a.Victor)
	}
	w.logger.Debug(ctx, "screenshot analysed",
		logger.String("id", shot.ID),
		logger.Int("players", a.PlayerCount),
		logger.String("victor", a.Victor),
		logger.Float64("coverage", a.Coverage),
		logger.Duration("took", time.Since(start)),
	)

	if err := w.recorder.Record(ctx, a); err != nil {
		metrics.RecordErrorByComponent("worker", "record_error")
		return fmt.Errorf("record %s: %w", shot.ID, err)
	}
	return nil
}

// forget frees the dedupe key of a screenshot whose analysis failed, so a
// copy of it is analysed instead of counted as a duplicate, then records f.
func (w *InMemoryWorker) forget(ctx context.Context, key string, f *model.Failure) error {
	if w.deduper != nil && key != "" {
		w.deduper.Unrecord(ctx, key)
	}
	return w.fail(ctx, f)
}

func (w *InMemoryWorker) fail(ctx context.Context, f *model.Failure) error {
	metrics.RecordAnalysisFailure(f.Stage)
	metrics.RecordErrorByComponent("worker", f.Stage)
	w.logger.Warn(ctx, "screenshot not analysed",
		logger.String("id", f.Screenshot.ID),
		logger.String("stage", f.Stage),
		logger.Error(f.Err),
	)
	if err := w.recorder.RecordFailure(ctx, f); err != nil {
		return fmt.Errorf("record failure of %s: %w", f.Screenshot.ID, err)
	}
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a worker pool. A workerCount below 1 means one worker per CPU.
// The options are applied to every worker.
func NewPool(workerCount int, queue Queue, analyzer Analyzer, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append(append([]Option(nil), opts...), WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(queue, analyzer, recorder, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Drain closes the queue and waits until every queued screenshot is processed.
func (p *Pool) Drain(ctx context.Context) error {
	p.closeQueue(ctx)
	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "drain interrupted", logger.Int("worker_id", i))
			return fmt.Errorf("drain: %w", ctx.Err())
		}
	}
	return nil
}

// Shutdown stops all workers after their current screenshot. Queued screenshots are dropped.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.closeQueue(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for _, worker := range p.workers {
		if err := worker.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", worker.name, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Pool) closeQueue(ctx context.Context) {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
}
