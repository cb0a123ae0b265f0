package albumgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/podium/pkg/logger"
)

// ErrMismatch marks a service whose results disagree with the generated album.
var ErrMismatch = errors.New("results do not match the album")

// Entry represents a leaderboard entry as served by the API.
type Entry struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	Wins   int    `json:"wins"`
}

type reportSummary struct {
	Analysed     int `json:"analysed"`
	Duplicates   int `json:"duplicates"`
	Unidentified int `json:"unidentified"`
}

// Verify compares the service at baseURL with the expected results of an album.
// Every mismatch is logged; the returned error joins them.
func Verify(ctx context.Context, client *HTTPClient, baseURL string, expected *Expected) error {
	log := logger.Get().Named("albumgen")

	var report reportSummary
	if err := client.GetJSON(ctx, baseURL+"/report", &report); err != nil {
		return fmt.Errorf("report retrieval failed: %w", err)
	}
	var leaderboard []Entry
	if err := client.GetJSON(ctx, baseURL+"/leaderboard", &leaderboard); err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err := fmt.Errorf(format+": %w", append(args, ErrMismatch)...)
			log.Warn(ctx, "verification failed", logger.Error(err))
			errs = append(errs, err)
		}
	}

	check(report.Analysed == expected.Rounds, "analysed %d rounds, expected %d", report.Analysed, expected.Rounds)
	check(report.Duplicates == expected.Duplicates, "skipped %d duplicates, expected %d", report.Duplicates, expected.Duplicates)

	served := make(map[string]int, len(leaderboard))
	learned := 0
	for i, e := range leaderboard {
		served[e.Player] = e.Wins
		if _, known := expected.References[e.Player]; !known {
			learned += e.Wins
		}
		if i > 0 {
			check(e.Wins <= leaderboard[i-1].Wins, "leaderboard not sorted at entry %d", i)
		}
	}
	for name, wins := range expected.Wins {
		check(served[name] == wins, "%s has %d wins, expected %d", name, served[name], wins)
	}
	// Unregistered victors are either learned or left unidentified.
	check(learned+report.Unidentified == expected.Unknown,
		"%d learned and %d unidentified wins, expected %d unknown", learned, report.Unidentified, expected.Unknown)

	if len(errs) == 0 {
		log.Info(ctx, "results verified",
			logger.Int("rounds", expected.Rounds),
			logger.Int("players", len(leaderboard)),
		)
	}
	return errors.Join(errs...)
}
