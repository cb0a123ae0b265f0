// Package worker analyses queued screenshots concurrently.
package worker

import (
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDecoder replaces the function used to load screenshots.
func WithDecoder(decode Decoder) Option {
	return func(w *InMemoryWorker) {
		if decode != nil {
			w.decode = decode
		}
	}
}

// WithDeduper skips screenshots whose dedupe key was already seen.
func WithDeduper(d dedupe.Deduper) Option {
	return func(w *InMemoryWorker) {
		w.deduper = d
	}
}

// WithIdentifier names the victor of every analysed screenshot.
func WithIdentifier(id Identifier) Option {
	return func(w *InMemoryWorker) {
		w.identifier = id
	}
}
