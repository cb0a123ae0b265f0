// Package placard recognises score placards.
//
// A placard shows a flat background and one or two glyph colors for the digits.
// White shows up as a glyph anti-aliasing artifact, so a third distinct color is
// tolerated only when it is pure white. Textured backgrounds and overlapping UI
// produce more distinct colors and are rejected.
package placard

import "github.com/okian/podium/internal/domain/raster"

// maxPlacardColors bounds the distinct-color scan; anything beyond it is not a placard.
const maxPlacardColors = 3

// IsScorePlacard reports whether region looks like a score placard.
func IsScorePlacard(region raster.Region) bool {
	distinct := make([]raster.Color, 0, maxPlacardColors+1)
	for _, c := range region.Pixels() {
		if containsColor(distinct, c) {
			continue
		}
		distinct = append(distinct, c)
		if len(distinct) > maxPlacardColors {
			return false
		}
	}

	switch len(distinct) {
	case 2:
		return true
	case 3:
		return containsColor(distinct, raster.White)
	default:
		return false
	}
}

func containsColor(colors []raster.Color, c raster.Color) bool {
	for _, have := range colors {
		if have == c {
			return true
		}
	}
	return false
}
