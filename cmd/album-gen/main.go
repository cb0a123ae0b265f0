package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/okian/podium/internal/albumgen"
	"github.com/okian/podium/pkg/logger"
)

// Default configuration constants.
const (
	defaultRounds     = 200
	defaultDuplicates = 0.1
	defaultObscured   = 0.2
	defaultUnknown    = 0.1
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

var defaultStart = time.Date(2016, 12, 15, 18, 0, 0, 0, time.UTC)

func main() {
	var (
		dir        = flag.String("dir", "album", "Album directory")
		rounds     = flag.Int("rounds", defaultRounds, "Number of rounds to render")
		players    = flag.String("players", "Mario,Peach,Toad,Wario", "Comma separated victor names")
		duplicates = flag.Float64("duplicates", defaultDuplicates, "Share of rounds also written as BMP copies")
		obscured   = flag.Float64("obscured", defaultObscured, "Share of rounds with a partly covered banner")
		unknown    = flag.Float64("unknown", defaultUnknown, "Share of rounds won by a player without reference")
		seed       = flag.Uint64("seed", 1, "Seed of the round plan")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent writers")
		baseURL    = flag.String("url", "", "Verify the service at this base URL")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		albumgen.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	if *baseURL != "" {
		if err := verify(ctx, *dir, *baseURL, *timeout); err != nil {
			_, _ = os.Stderr.WriteString("verification failed: " + err.Error() + "\n")
			os.Exit(1)
		}
		return
	}

	cfg := &albumgen.Config{
		Dir:        *dir,
		Rounds:     *rounds,
		Players:    splitPlayers(*players),
		Duplicates: *duplicates,
		Obscured:   *obscured,
		Unknown:    *unknown,
		Workers:    *workers,
		Seed:       *seed,
		Start:      defaultStart,
		Interval:   time.Hour + 7*time.Minute,
		Verbose:    *verbose,
	}
	if _, err := albumgen.Generate(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func verify(ctx context.Context, dir, baseURL string, timeout time.Duration) error {
	data, err := os.ReadFile(filepath.Join(dir, albumgen.ExpectedFile))
	if err != nil {
		return err
	}
	var expected albumgen.Expected
	if err := json.Unmarshal(data, &expected); err != nil {
		return err
	}
	return albumgen.Verify(ctx, albumgen.NewHTTPClient(timeout), strings.TrimSuffix(baseURL, "/"), &expected)
}

func splitPlayers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
