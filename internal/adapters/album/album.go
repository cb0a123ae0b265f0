// Package album reads podium screenshots from an album directory.
//
// Screenshots are named after their capture time, e.g. "12-15-16 18;50.png"
// for 15 December 2016 at 18:50. The hour may be written without a leading zero.
package album

import (
	"fmt"
	"image"
	_ "image/png" // register PNG decoder
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/okian/podium/internal/domain/model"
)

// TimestampLayout is the capture-time layout of screenshot file names.
const TimestampLayout = "01-02-06 15;04"

var extensions = map[string]bool{
	".png":  true,
	".bmp":  true,
	".webp": true,
}

// IsScreenshot reports whether name has a supported image extension.
func IsScreenshot(name string) bool {
	return extensions[strings.ToLower(filepath.Ext(name))]
}

// ParseTimestamp parses a file name, with or without extension, into its capture time.
// Times are in loc; a nil loc means UTC.
func ParseTimestamp(name string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	base := filepath.Base(name)
	if IsScreenshot(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	t, err := time.ParseInLocation(TimestampLayout, base, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", base, ErrFilename)
	}
	return t, nil
}

// FormatTimestamp renders t as a screenshot file name without extension.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Scan lists the screenshots in dir ordered by capture time, then by ID.
// Image files whose names are not capture times are returned as failures;
// directories and other files are ignored.
func Scan(dir string, loc *time.Location) ([]model.Screenshot, []*model.Failure, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read album %s: %w", dir, err)
	}

	var (
		shots    []model.Screenshot
		failures []*model.Failure
	)
	for _, e := range entries {
		if e.IsDir() || !IsScreenshot(e.Name()) {
			continue
		}
		shot := model.Screenshot{
			ID:   strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Path: filepath.Join(dir, e.Name()),
		}
		shot.TakenAt, err = ParseTimestamp(e.Name(), loc)
		if err != nil {
			failures = append(failures, &model.Failure{Screenshot: shot, Stage: model.StageFilename, Err: err})
			continue
		}
		shots = append(shots, shot)
	}

	sort.SliceStable(shots, func(i, j int) bool {
		if !shots[i].TakenAt.Equal(shots[j].TakenAt) {
			return shots[i].TakenAt.Before(shots[j].TakenAt)
		}
		return shots[i].ID < shots[j].ID
	})
	return shots, failures, nil
}

// Decode opens and decodes the image at path.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrDecode, err)
	}
	if !extensions["."+format] {
		return nil, fmt.Errorf("%s: unsupported format %q: %w", path, format, ErrDecode)
	}
	return img, nil
}
