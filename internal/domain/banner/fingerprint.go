package banner

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/podium/internal/domain/raster"
)

// Class is the classification of one banner pixel.
type Class uint8

const (
	// Indeterminate pixels are off-palette or sit next to an off-palette pixel.
	Indeterminate Class = iota
	// Background pixels carry the light tone.
	Background
	// Foreground pixels carry the dark tone.
	Foreground
)

func (c Class) String() string {
	switch c {
	case Background:
		return "background"
	case Foreground:
		return "foreground"
	default:
		return "indeterminate"
	}
}

// glyphs used by String and the text encoding.
const (
	glyphIndeterminate = '?'
	glyphBackground    = '.'
	glyphForeground    = '#'
	rowSeparator       = '/'
)

func (c Class) glyph() byte {
	switch c {
	case Background:
		return glyphBackground
	case Foreground:
		return glyphForeground
	default:
		return glyphIndeterminate
	}
}

// Fingerprint is the classified raster of one banner. It has the banner's exact
// dimensions and is never modified once built.
type Fingerprint struct {
	width  int
	height int
	cells  []Class
}

// Width returns the fingerprint width.
func (f Fingerprint) Width() int { return f.width }

// Height returns the fingerprint height.
func (f Fingerprint) Height() int { return f.height }

// At returns the class at (x, y); coordinates outside the fingerprint are Indeterminate.
func (f Fingerprint) At(x, y int) Class {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return Indeterminate
	}
	return f.cells[y*f.width+x]
}

// Count returns how many cells carry class c.
func (f Fingerprint) Count(c Class) int {
	n := 0
	for _, have := range f.cells {
		if have == c {
			n++
		}
	}
	return n
}

// Coverage returns the share of definite (non-Indeterminate) cells, in [0, 1].
func (f Fingerprint) Coverage() float64 {
	if len(f.cells) == 0 {
		return 0
	}
	return 1 - float64(f.Count(Indeterminate))/float64(len(f.cells))
}

// Classify assigns every pixel of region a Class under palette.
//
// A pixel is trusted only when it and its four orthogonal neighbours all belong to
// the palette. Neighbours outside the region count as belonging. This rejects
// anti-aliased pixels that match a palette tone by coincidence.
func Classify(region raster.Region, palette Palette) Fingerprint {
	w, h := region.Width(), region.Height()
	fp := Fingerprint{width: w, height: h, cells: make([]Class, w*h)}
	for p, c := range region.Pixels() {
		fp.cells[p.Y*w+p.X] = classifyPixel(region, p.X, p.Y, c, palette)
	}
	return fp
}

func classifyPixel(region raster.Region, x, y int, c raster.Color, palette Palette) Class {
	var class Class
	switch c {
	case palette.Light:
		class = Background
	case palette.Dark:
		class = Foreground
	default:
		return Indeterminate
	}
	if !pureNeighbourhood(region, x, y, palette) {
		return Indeterminate
	}
	return class
}

func pureNeighbourhood(region raster.Region, x, y int, palette Palette) bool {
	return inPalette(region, x-1, y, palette) &&
		inPalette(region, x+1, y, palette) &&
		inPalette(region, x, y-1, palette) &&
		inPalette(region, x, y+1, palette)
}

func inPalette(region raster.Region, x, y int, palette Palette) bool {
	c, ok := region.Lookup(x, y)
	if !ok {
		return true
	}
	return c == palette.Light || c == palette.Dark
}

// Analyze estimates the banner palette and classifies the banner with it.
func Analyze(region raster.Region) (Fingerprint, Palette, error) {
	palette, err := EstimatePalette(region)
	if err != nil {
		return Fingerprint{}, Palette{}, err
	}
	return Classify(region, palette), palette, nil
}

// Matches reports whether a and b are compatible: at every coordinate where both are
// definite, they agree. Indeterminate cells on either side match anything.
func Matches(a, b Fingerprint) (bool, error) {
	if a.width != b.width || a.height != b.height {
		return false, fmt.Errorf("%dx%d vs %dx%d: %w", a.width, a.height, b.width, b.height, ErrShapeMismatch)
	}
	for i, ca := range a.cells {
		cb := b.cells[i]
		if ca == Indeterminate || cb == Indeterminate {
			continue
		}
		if ca != cb {
			return false, nil
		}
	}
	return true, nil
}

// String renders the fingerprint one row per line: '#' foreground, '.' background, '?' indeterminate.
func (f Fingerprint) String() string {
	var sb strings.Builder
	for y := 0; y < f.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < f.width; x++ {
			sb.WriteByte(f.cells[y*f.width+x].glyph())
		}
	}
	return sb.String()
}

// MarshalText encodes the fingerprint as "WxH:row/row/...".
func (f Fingerprint) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(strconv.Itoa(f.width))
	buf.WriteByte('x')
	buf.WriteString(strconv.Itoa(f.height))
	buf.WriteByte(':')
	for y := 0; y < f.height; y++ {
		if y > 0 {
			buf.WriteByte(rowSeparator)
		}
		for x := 0; x < f.width; x++ {
			buf.WriteByte(f.cells[y*f.width+x].glyph())
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalText decodes the MarshalText form.
func (f *Fingerprint) UnmarshalText(text []byte) error {
	header, body, ok := strings.Cut(strings.TrimSpace(string(text)), ":")
	if !ok {
		return fmt.Errorf("missing header: %w", ErrFingerprintFormat)
	}
	ws, hs, ok := strings.Cut(header, "x")
	if !ok {
		return fmt.Errorf("header %q: %w", header, ErrFingerprintFormat)
	}
	w, errW := strconv.Atoi(ws)
	h, errH := strconv.Atoi(hs)
	if errW != nil || errH != nil || w < 0 || h < 0 {
		return fmt.Errorf("header %q: %w", header, ErrFingerprintFormat)
	}

	var rows []string
	if h > 0 {
		rows = strings.Split(body, string(rowSeparator))
	}
	if len(rows) != h {
		return fmt.Errorf("want %d rows, got %d: %w", h, len(rows), ErrFingerprintFormat)
	}
	for y, row := range rows {
		if len(row) != w {
			return fmt.Errorf("row %d: want %d cells, got %d: %w", y, w, len(row), ErrFingerprintFormat)
		}
	}
	// Rows are checked first so the header alone never sizes an allocation.
	cells := make([]Class, 0, len(body))
	for y, row := range rows {
		for i := 0; i < len(row); i++ {
			switch row[i] {
			case glyphBackground:
				cells = append(cells, Background)
			case glyphForeground:
				cells = append(cells, Foreground)
			case glyphIndeterminate:
				cells = append(cells, Indeterminate)
			default:
				return fmt.Errorf("row %d: cell %q: %w", y, row[i], ErrFingerprintFormat)
			}
		}
	}
	*f = Fingerprint{width: w, height: h, cells: cells}
	return nil
}
