package albumgen

import "os"

// ShowHelp prints usage information for the album generator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Podium Album Generator
======================

Writes a synthetic album of podium screenshots together with player references,
a podium config (podium.yaml) and the expected results (expected.json). With -url
it instead checks a running podium service against a previously written album.

Usage:
  go run ./cmd/album-gen [options]

Options:
  -dir string
        Album directory (default "album")
  -rounds int
        Number of rounds to render (default 200)
  -players string
        Comma separated victor names, distinct first letters (default "Mario,Peach,Toad,Wario")
  -duplicates float
        Share of rounds also written as BMP copies (default 0.1)
  -obscured float
        Share of rounds with a partly covered banner (default 0.2)
  -unknown float
        Share of rounds won by a player without reference (default 0.1)
  -seed uint
        Seed of the round plan (default 1)
  -workers int
        Number of concurrent writers (default CPU cores)
  -url string
        Verify the service at this base URL against dir/expected.json
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Write an album and analyse it
  go run ./cmd/album-gen -dir /tmp/album -rounds 500
  PODIUM_CONFIG=/tmp/album/podium.yaml PODIUM_ADDR=:9080 go run ./cmd/podium

  # Check the running service
  go run ./cmd/album-gen -dir /tmp/album -url http://localhost:9080
`)
}
