// Package raster provides an immutable RGB pixel grid and non-owning rectangular views into it.
//
// Every analysis step in this module reads pixels through a Region. Regions never
// copy pixel data and never reach outside their backing Raster: any request that
// would is rejected with ErrOutOfBounds.
package raster

import (
	"fmt"
	"image"
	"iter"

	"golang.org/x/image/draw"
)

// Color is an 8-bit RGB triple. Equality is exact component-wise comparison.
type Color struct {
	R, G, B uint8
}

// White is the canonical application-wide white.
var White = Color{R: 255, G: 255, B: 255}

// Black is pure black.
var Black = Color{R: 0, G: 0, B: 0}

// Brightness returns R+G+B.
func (c Color) Brightness() int {
	return int(c.R) + int(c.G) + int(c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Raster is a width×height row-major grid of colors. It is never mutated after construction.
type Raster struct {
	width  int
	height int
	pix    []Color
}

// New builds a Raster over a copy of pix, which must hold exactly width*height colors.
func New(width, height int, pix []Color) (*Raster, error) {
	if width < 0 || height < 0 || len(pix) != width*height {
		return nil, fmt.Errorf("%dx%d with %d pixels: %w", width, height, len(pix), ErrDimensions)
	}
	owned := make([]Color, len(pix))
	copy(owned, pix)
	return &Raster{width: width, height: height, pix: owned}, nil
}

// Filled builds a width×height Raster where every pixel is c.
func Filled(width, height int, c Color) (*Raster, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrDimensions)
	}
	pix := make([]Color, width*height)
	for i := range pix {
		pix[i] = c
	}
	return &Raster{width: width, height: height, pix: pix}, nil
}

// FromImage converts a decoded image into a Raster. Alpha is discarded after
// un-premultiplying, so opaque screenshots keep their exact channel values.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	w, h := b.Dx(), b.Dy()
	pix := make([]Color, w*h)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < w; x++ {
			o := x * 4
			pix[y*w+x] = Color{R: row[o], G: row[o+1], B: row[o+2]}
		}
	}
	return &Raster{width: w, height: h, pix: pix}
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.height }

// Region returns a view over the whole raster.
func (r *Raster) Region() Region {
	return Region{src: r, width: r.width, height: r.height}
}

// Region is a rectangular view (offset plus size) into a Raster.
// The zero value is an empty region.
type Region struct {
	src    *Raster
	left   int
	top    int
	width  int
	height int
}

// Width returns the region width.
func (g Region) Width() int { return g.width }

// Height returns the region height.
func (g Region) Height() int { return g.height }

// Empty reports whether the region holds no pixels.
func (g Region) Empty() bool { return g.width == 0 || g.height == 0 }

// Origin returns the region's top-left corner in backing-raster coordinates.
func (g Region) Origin() image.Point { return image.Pt(g.left, g.top) }

// Contains reports whether (x, y) lies inside the region's local coordinate space.
func (g Region) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Sub returns the sub-region at (left, top) of the given size, in this region's coordinates.
func (g Region) Sub(left, top, width, height int) (Region, error) {
	if left < 0 || top < 0 || width < 0 || height < 0 ||
		left+width > g.width || top+height > g.height {
		return Region{}, &BoundsError{
			Op:   "raster.sub",
			Left: left, Top: top, Width: width, Height: height,
			ParentWidth: g.width, ParentHeight: g.height,
		}
	}
	return Region{
		src:    g.src,
		left:   g.left + left,
		top:    g.top + top,
		width:  width,
		height: height,
	}, nil
}

// At returns the pixel at region-local (x, y).
func (g Region) At(x, y int) (Color, error) {
	if !g.Contains(x, y) {
		return Color{}, &BoundsError{
			Op:   "raster.at",
			Left: x, Top: y, Width: 1, Height: 1,
			ParentWidth: g.width, ParentHeight: g.height,
		}
	}
	return g.at(x, y), nil
}

// at reads a pixel already known to be in bounds.
func (g Region) at(x, y int) Color {
	return g.src.pix[(g.top+y)*g.src.width+g.left+x]
}

// Pixels yields every pixel of the region in row-major order with its local coordinate.
func (g Region) Pixels() iter.Seq2[image.Point, Color] {
	return func(yield func(image.Point, Color) bool) {
		for y := 0; y < g.height; y++ {
			for x := 0; x < g.width; x++ {
				if !yield(image.Pt(x, y), g.at(x, y)) {
					return
				}
			}
		}
	}
}

// Lookup returns the pixel at (x, y) and whether it lies inside the region.
// It is the unchecked-by-error variant used by neighbourhood scans.
func (g Region) Lookup(x, y int) (Color, bool) {
	if !g.Contains(x, y) {
		return Color{}, false
	}
	return g.at(x, y), true
}
