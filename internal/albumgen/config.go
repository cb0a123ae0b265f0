// Package albumgen writes synthetic podium albums and checks a running
// service's leaderboard against what was written.
package albumgen

import (
	"errors"
	"fmt"
	"time"
)

// Config holds configuration for album generation.
type Config struct {
	Dir        string        // Album directory to write
	Rounds     int           // Number of rounds to render
	Players    []string      // Victor names; they must differ in their first letters
	Duplicates float64       // Share of rounds that also get a BMP copy
	Obscured   float64       // Share of rounds with a partly covered banner
	Unknown    float64       // Share of rounds won by a player without reference
	Workers    int           // Number of concurrent writers
	Seed       uint64        // Seed of the round plan
	Start      time.Time     // Capture time of the first round
	Interval   time.Duration // Time between rounds, at least a minute
	Verbose    bool          // Log every written file
}

// Expected describes a generated album.
type Expected struct {
	Rounds     int               `json:"rounds"`
	Duplicates int               `json:"duplicates"`
	Unknown    int               `json:"unknown"`
	Wins       map[string]int    `json:"wins"`
	Players    map[int]int       `json:"players"`
	References map[string]string `json:"references"`
}

// ErrConfig marks an unusable generator configuration.
var ErrConfig = errors.New("invalid generator config")

// UnknownVictor is the name rendered on banners of unregistered players.
const UnknownVictor = "Xerxes"

func (c *Config) validate() error {
	switch {
	case c.Dir == "":
		return fmt.Errorf("dir must not be empty: %w", ErrConfig)
	case c.Rounds < 1:
		return fmt.Errorf("rounds must be positive, got %d: %w", c.Rounds, ErrConfig)
	case len(c.Players) == 0:
		return fmt.Errorf("at least one player is required: %w", ErrConfig)
	case c.Interval < time.Minute:
		return fmt.Errorf("interval must be at least a minute, got %s: %w", c.Interval, ErrConfig)
	}
	seen := make(map[byte]string, len(c.Players))
	for _, p := range c.Players {
		if p == "" || p == UnknownVictor {
			return fmt.Errorf("player name %q: %w", p, ErrConfig)
		}
		if other, ok := seen[p[0]]; ok {
			return fmt.Errorf("players %q and %q share a first letter: %w", other, p, ErrConfig)
		}
		seen[p[0]] = p
	}
	if _, ok := seen[UnknownVictor[0]]; ok && c.Unknown > 0 {
		return fmt.Errorf("player names must not start like %q: %w", UnknownVictor, ErrConfig)
	}
	return nil
}
