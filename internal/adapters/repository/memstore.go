package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/podium/internal/domain/banner"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

type tally struct {
	wins    int
	lastWin time.Time
}

// MemoryStore implements Store in memory. Leaderboard reads are served from a
// snapshot that is rebuilt on the first read after a write.
type MemoryStore struct {
	mu               sync.RWMutex
	analyses         []model.Analysis
	failures         []*model.Failure
	duplicates       int
	byPlayer         map[string]*tally
	playerCounts     map[int]int
	keepFingerprints bool

	snapshot atomic.Pointer[snapshot]
}

type snapshot struct {
	entries  []Entry
	byPlayer map[string]int // player -> index in entries
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byPlayer:     make(map[string]*tally),
		playerCounts: make(map[int]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record implements Store.Record.
func (s *MemoryStore) Record(_ context.Context, a model.Analysis) error {
	if !s.keepFingerprints {
		a.Fingerprint = banner.Fingerprint{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.analyses = append(s.analyses, a)
	s.playerCounts[a.PlayerCount]++
	if a.Victor != "" {
		t, ok := s.byPlayer[a.Victor]
		if !ok {
			t = &tally{}
			s.byPlayer[a.Victor] = t
		}
		t.wins++
		if a.Screenshot.TakenAt.After(t.lastWin) {
			t.lastWin = a.Screenshot.TakenAt
		}
		s.snapshot.Store(nil)
	}
	return nil
}

// RecordFailure implements Store.RecordFailure.
func (s *MemoryStore) RecordFailure(_ context.Context, f *model.Failure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, f)
	return nil
}

// RecordDuplicate implements Store.RecordDuplicate.
func (s *MemoryStore) RecordDuplicate(_ context.Context, _ model.Screenshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicates++
	return nil
}

// Rank returns the leaderboard row of player.
func (s *MemoryStore) Rank(_ context.Context, player string) (Entry, error) {
	snap := s.current()
	i, ok := snap.byPlayer[player]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return snap.entries[i], nil
}

// TopN returns the top n leaderboard rows.
func (s *MemoryStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	entries := s.current().entries
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]Entry, n)
	copy(out, entries[:n])
	return out, nil
}

// Wins returns the number of rounds player won.
func (s *MemoryStore) Wins(_ context.Context, player string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.byPlayer[player]; ok {
		return t.wins
	}
	return 0
}

// PlayerCounts returns a copy of the rounds-per-player-count histogram.
func (s *MemoryStore) PlayerCounts(_ context.Context) map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]int, len(s.playerCounts))
	for k, v := range s.playerCounts {
		out[k] = v
	}
	return out
}

// Analyses returns the stored analyses ordered by capture time, then ID.
func (s *MemoryStore) Analyses(_ context.Context) []model.Analysis {
	s.mu.RLock()
	out := append([]model.Analysis(nil), s.analyses...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Screenshot, out[j].Screenshot
		if !a.TakenAt.Equal(b.TakenAt) {
			return a.TakenAt.Before(b.TakenAt)
		}
		return a.ID < b.ID
	})
	return out
}

// Failures returns the recorded failures ordered by screenshot ID.
func (s *MemoryStore) Failures(_ context.Context) []*model.Failure {
	s.mu.RLock()
	out := append([]*model.Failure(nil), s.failures...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Screenshot.ID < out[j].Screenshot.ID
	})
	return out
}

// Duplicates returns how many screenshots were skipped as duplicates.
func (s *MemoryStore) Duplicates(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duplicates
}

// Count returns the number of players that won at least once.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPlayer)
}

// current returns the leaderboard snapshot, rebuilding it if a write invalidated it.
func (s *MemoryStore) current() *snapshot {
	if snap := s.snapshot.Load(); snap != nil {
		return snap
	}

	// Writers invalidate under the write lock, so storing under the read lock
	// never publishes a stale snapshot.
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.byPlayer))
	for name, t := range s.byPlayer {
		entries = append(entries, Entry{Player: name, Wins: t.wins, LastWin: t.lastWin})
	}
	sortEntries(entries)
	assignRanksWithTies(entries)

	snap := &snapshot{entries: entries, byPlayer: make(map[string]int, len(entries))}
	for i, e := range entries {
		snap.byPlayer[e.Player] = i
	}
	s.snapshot.Store(snap)
	return snap
}

// sortEntries orders entries by wins (descending) and player (ascending).
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Player < entries[j].Player
	})
}

// assignRanksWithTies gives players with equal wins the same rank.
// Ranks are dense: 1, 1, 2, ...
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Wins != entries[i-1].Wins {
			rank++
		}
		entries[i].Rank = rank
	}
}
