// Package dedupe tracks which screenshots have already been analysed.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen screenshot keys so each screenshot is analysed at most once.
type Deduper interface {
	// SeenAndRecord reports whether key was already seen, recording it if not.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a later copy can be analysed again.
	// Used when a screenshot was recorded but its analysis failed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type slot struct {
	key  string
	used bool
}

// inMemoryDeduper keeps keys in a map plus an insertion-ordered ring.
// In bounded mode the oldest key is evicted first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> slot in order
	order   []slot         // insertion ring
	next    int            // next slot to write
	maxSize int            // 0 or negative means unbounded
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.order = make([]slot, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize <= 0 {
		d.seen[key] = -1
		return false
	}

	if old := d.order[d.next]; old.used {
		delete(d.seen, old.key)
	}
	d.order[d.next] = slot{key: key, used: true}
	d.seen[key] = d.next
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if i >= 0 {
		d.order[i] = slot{}
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
