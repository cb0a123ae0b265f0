// Package registry maps victor-banner fingerprints to player names.
//
// Known players are registered with one or more reference fingerprints. A banner
// identifies a player when it matches any of that player's references. With
// learning enabled, banners that match nobody start a new numbered player, so
// later banners of the same unnamed player are grouped under one name.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/okian/podium/internal/domain/banner"
)

const defaultUnknownPrefix = "unknown-"

type reference struct {
	name    string
	fp      banner.Fingerprint
	learned bool
}

// Registry is safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	refs          []reference
	learn         bool
	unknownPrefix string
	learned       int
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{unknownPrefix: defaultUnknownPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a reference fingerprint for name. A name may carry several references.
func (r *Registry) Register(name string, fp banner.Fingerprint) error {
	if name == "" {
		return ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs = append(r.refs, reference{name: name, fp: fp})
	return nil
}

// Identify returns the player whose reference matches fp, or "" when nobody matches.
func (r *Registry) Identify(fp banner.Fingerprint) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.identifyLocked(fp)
}

// Observe identifies fp and, when learning is enabled and nobody matches, registers
// fp under a fresh unknown name which it returns. Learned names are numbered in the
// order Observe is called, so with concurrent callers the numbering follows
// processing order rather than capture time.
func (r *Registry) Observe(fp banner.Fingerprint) (name string, learned bool, err error) {
	if !r.learn {
		name, err = r.Identify(fp)
		return name, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	name, err = r.identifyLocked(fp)
	if err != nil || name != "" {
		return name, false, err
	}
	r.learned++
	name = r.unknownPrefix + strconv.Itoa(r.learned)
	r.refs = append(r.refs, reference{name: name, fp: fp, learned: true})
	return name, true, nil
}

func (r *Registry) identifyLocked(fp banner.Fingerprint) (string, error) {
	var matched []string
	for _, ref := range r.refs {
		ok, err := banner.Matches(ref.fp, fp)
		if err != nil {
			return "", fmt.Errorf("reference %q: %w", ref.name, err)
		}
		if ok && !containsName(matched, ref.name) {
			matched = append(matched, ref.name)
		}
	}

	switch len(matched) {
	case 0:
		return "", nil
	case 1:
		return matched[0], nil
	default:
		sort.Strings(matched)
		return "", fmt.Errorf("%v: %w", matched, ErrAmbiguousVictor)
	}
}

// Names returns every registered player name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for _, ref := range r.refs {
		if !containsName(names, ref.name) {
			names = append(names, ref.name)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of reference fingerprints, learned ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.refs)
}

// Learned returns how many players were learned by Observe.
func (r *Registry) Learned() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.learned
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
