// Package repository stores analysis outcomes and ranks players by victories.
package repository

import (
	"context"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// Entry represents a leaderboard row.
type Entry struct {
	Rank    int       `json:"rank"`
	Player  string    `json:"player"`
	Wins    int       `json:"wins"`
	LastWin time.Time `json:"last_win"`
}

// Store provides read/write access to analysis outcomes.
type Store interface {
	// Record stores a successful analysis and credits its victor, if named.
	Record(ctx context.Context, a model.Analysis) error
	RecordFailure(ctx context.Context, f *model.Failure) error
	RecordDuplicate(ctx context.Context, shot model.Screenshot) error

	// Rank returns the leaderboard row of a player.
	// Returns ErrNotFound if the player never won.
	Rank(ctx context.Context, player string) (Entry, error)

	// TopN returns the top-N rows ordered by wins desc, then player name asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Wins returns how many rounds player won; zero for unknown players.
	Wins(ctx context.Context, player string) int

	// PlayerCounts returns the number of analysed rounds per player count.
	PlayerCounts(ctx context.Context) map[int]int

	// Analyses returns every stored analysis ordered by capture time.
	Analyses(ctx context.Context) []model.Analysis
	Failures(ctx context.Context) []*model.Failure
	Duplicates(ctx context.Context) int

	// Count returns the number of players on the leaderboard.
	Count(ctx context.Context) int
}
