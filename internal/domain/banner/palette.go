// Package banner fingerprints the victor banner of a podium screenshot.
//
// A banner is a flat two-tone panel whose actual colors vary with the game theme.
// The palette is estimated per banner (light from the border, dark from the darkest
// pixel), each pixel is classified against it under a 4-neighbour purity rule, and
// the resulting Fingerprint can be compared with fingerprints of other banners.
package banner

import (
	"fmt"

	"github.com/okian/podium/internal/domain/raster"
)

// Palette is the two-tone color pair of one banner.
type Palette struct {
	Light raster.Color
	Dark  raster.Color
}

func (p Palette) String() string {
	return fmt.Sprintf("light=%s dark=%s", p.Light, p.Dark)
}

// ColorTally counts colors and remembers the order in which each was first seen.
type ColorTally struct {
	counts map[raster.Color]int
	order  []raster.Color
}

func newColorTally() *ColorTally {
	return &ColorTally{counts: make(map[raster.Color]int)}
}

func (t *ColorTally) add(c raster.Color) {
	if _, ok := t.counts[c]; !ok {
		t.order = append(t.order, c)
	}
	t.counts[c]++
}

// Count returns how often c was seen.
func (t *ColorTally) Count(c raster.Color) int { return t.counts[c] }

// Len returns the number of distinct colors.
func (t *ColorTally) Len() int { return len(t.order) }

// Total returns the number of colors tallied.
func (t *ColorTally) Total() int {
	n := 0
	for _, c := range t.counts {
		n += c
	}
	return n
}

// Colors returns the distinct colors in first-seen order.
func (t *ColorTally) Colors() []raster.Color {
	out := make([]raster.Color, len(t.order))
	copy(out, t.order)
	return out
}

// Max returns the most frequent color. Ties go to the color seen first.
func (t *ColorTally) Max() (raster.Color, bool) {
	if len(t.order) == 0 {
		return raster.Color{}, false
	}
	best := t.order[0]
	for _, c := range t.order[1:] {
		if t.counts[c] > t.counts[best] {
			best = c
		}
	}
	return best, true
}

// BorderColorCounts tallies every pixel on the outer border of region exactly once.
// Scan order: top row, bottom row, then the left and right columns without corners.
func BorderColorCounts(region raster.Region) (*ColorTally, error) {
	if region.Empty() {
		return nil, fmt.Errorf("border tally: %w", raster.ErrEmptyRegion)
	}
	w, h := region.Width(), region.Height()
	tally := newColorTally()
	rows := []int{0}
	if h > 1 {
		rows = append(rows, h-1)
	}
	for _, y := range rows {
		for x := 0; x < w; x++ {
			c, _ := region.Lookup(x, y)
			tally.add(c)
		}
	}

	cols := []int{0}
	if w > 1 {
		cols = append(cols, w-1)
	}
	for _, x := range cols {
		for y := 1; y < h-1; y++ {
			c, _ := region.Lookup(x, y)
			tally.add(c)
		}
	}
	return tally, nil
}

// LightColor returns the dominant border color of region, the banner background tone.
func LightColor(region raster.Region) (raster.Color, error) {
	tally, err := BorderColorCounts(region)
	if err != nil {
		return raster.Color{}, err
	}
	c, _ := tally.Max()
	return c, nil
}

// DarkColor returns the pixel of region with the smallest R+G+B, the glyph stroke tone.
// Ties go to the first pixel in row-major order.
func DarkColor(region raster.Region) (raster.Color, error) {
	if region.Empty() {
		return raster.Color{}, fmt.Errorf("darkest pixel: %w", raster.ErrEmptyRegion)
	}
	var darkest raster.Color
	best := -1
	for _, c := range region.Pixels() {
		if b := c.Brightness(); best < 0 || b < best {
			darkest, best = c, b
		}
	}
	return darkest, nil
}

// EstimatePalette derives the light and dark tones of a banner.
func EstimatePalette(region raster.Region) (Palette, error) {
	light, err := LightColor(region)
	if err != nil {
		return Palette{}, err
	}
	dark, err := DarkColor(region)
	if err != nil {
		return Palette{}, err
	}
	return Palette{Light: light, Dark: dark}, nil
}
