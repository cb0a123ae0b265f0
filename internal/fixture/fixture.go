// Package fixture renders synthetic podium screenshots for tests.
//
// The images follow the fixed podium layout: a textured backdrop, score placards
// in the slots of the requested player count, and a two-tone victor banner whose
// glyphs are derived from the victor name.
package fixture

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/okian/podium/internal/domain/podium"
	"github.com/okian/podium/internal/domain/raster"
)

// Screen size of the rendered podium.
const (
	Width  = 320
	Height = 180
)

const (
	glyphTop     = 8
	glyphLeft    = 4
	glyphAdvance = 6
	glyphCols    = 5
	glyphRows    = 7
)

// Theme is the two-tone banner palette.
type Theme struct {
	Light raster.Color
	Dark  raster.Color
}

// Themes seen in the wild.
var (
	Classic  = Theme{Light: raster.Color{R: 232, G: 232, B: 232}, Dark: raster.Black}
	Peach    = Theme{Light: raster.Color{R: 252, G: 198, B: 162}, Dark: raster.Color{R: 0, G: 0, B: 3}}
	Lavender = Theme{Light: raster.Color{R: 207, G: 206, B: 247}, Dark: raster.Color{R: 10, G: 3, B: 17}}
)

var (
	plateColor  = color.NRGBA{R: 41, G: 36, B: 52, A: 255}
	digitColor  = color.NRGBA{R: 250, G: 196, B: 10, A: 255}
	obscureTint = color.NRGBA{R: 90, G: 140, B: 200, A: 255}
)

// Podium describes one synthetic screenshot.
type Podium struct {
	Players int
	Victor  string
	Theme   Theme
	// Obscure paints a foreign-colored panel over the right part of the banner.
	Obscure bool
}

// Image renders the screenshot.
func (p Podium) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, Width, Height))
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8((x + y) * 3), A: 255})
		}
	}

	for i, slot := range Slots(p.Players) {
		drawPlacard(img, slot, i%2 == 0)
	}
	drawBanner(img, image.Pt(podium.BannerLeft, podium.BannerTop), p.Victor, p.theme(), p.Obscure)
	return img
}

// Raster renders the screenshot as a raster.
func (p Podium) Raster() *raster.Raster {
	return raster.FromImage(p.Image())
}

// Banner renders only the banner, as a standalone raster of banner size.
func (p Podium) Banner() *raster.Raster {
	img := image.NewNRGBA(image.Rect(0, 0, podium.BannerWidth, podium.BannerHeight))
	drawBanner(img, image.Point{}, p.Victor, p.theme(), p.Obscure)
	return raster.FromImage(img)
}

func (p Podium) theme() Theme {
	if p.Theme == (Theme{}) {
		return Classic
	}
	return p.Theme
}

// Slots returns the placard slots a podium of n players fills.
func Slots(n int) []image.Point {
	switch n {
	case 4:
		return podium.FourPlayerPlacards[:]
	case 3:
		return podium.ThreePlayerPlacards[:]
	case 2:
		return []image.Point{podium.FourPlayerPlacards[1], podium.FourPlayerPlacards[2]}
	default:
		return nil
	}
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func drawPlacard(img *image.NRGBA, at image.Point, withWhite bool) {
	for y := 0; y < podium.PlacardHeight; y++ {
		for x := 0; x < podium.PlacardWidth; x++ {
			img.SetNRGBA(at.X+x, at.Y+y, plateColor)
		}
	}
	// A blocky "10".
	for y := 2; y < 6; y++ {
		img.SetNRGBA(at.X+7, at.Y+y, digitColor)
		img.SetNRGBA(at.X+10, at.Y+y, digitColor)
		img.SetNRGBA(at.X+13, at.Y+y, digitColor)
	}
	img.SetNRGBA(at.X+11, at.Y+2, digitColor)
	img.SetNRGBA(at.X+12, at.Y+5, digitColor)
	if withWhite {
		img.SetNRGBA(at.X+8, at.Y+2, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	}
}

func drawBanner(img *image.NRGBA, at image.Point, name string, theme Theme, obscure bool) {
	light := nrgba(theme.Light)
	dark := nrgba(theme.Dark)
	for y := 0; y < podium.BannerHeight; y++ {
		for x := 0; x < podium.BannerWidth; x++ {
			img.SetNRGBA(at.X+x, at.Y+y, light)
		}
	}

	for i := 0; i < len(name); i++ {
		bits := glyph(name[i])
		left := glyphLeft + i*glyphAdvance
		if left+glyphCols >= podium.BannerWidth {
			break
		}
		for r := 0; r < glyphRows; r++ {
			for c := 0; c < glyphCols; c++ {
				if bits>>(r*glyphCols+c)&1 == 1 {
					img.SetNRGBA(at.X+left+c, at.Y+glyphTop+r, dark)
				}
			}
		}
	}

	if obscure {
		for y := 0; y < podium.BannerHeight; y++ {
			for x := 120; x < podium.BannerWidth; x++ {
				img.SetNRGBA(at.X+x, at.Y+y, obscureTint)
			}
		}
	}
}

// glyph returns a 5x7 bitmap for b.
func glyph(b byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{b, b ^ 0x5a})
	return h.Sum64()
}

func nrgba(c raster.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
