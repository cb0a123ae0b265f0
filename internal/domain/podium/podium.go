// Package podium reads the structural landmarks of a full podium screenshot:
// the number of players from the score placards, and the victor banner region.
package podium

import (
	"fmt"
	"image"

	"github.com/okian/podium/internal/domain/placard"
	"github.com/okian/podium/internal/domain/raster"
)

// ResolvePlayerCount infers how many players competed from which placard slots hold a placard.
//
// The checks run in a fixed order: all four 4-player slots, then the two middle
// slots (2 players), then all three 3-player slots. The middle-pair check must come
// before the 3-player check.
func ResolvePlayerCount(img raster.Region) (int, error) {
	four, err := placardsAt(img, FourPlayerPlacards[:])
	if err != nil {
		return 0, err
	}
	if all(four) {
		return 4, nil
	}
	if four[1] && four[2] {
		return 2, nil
	}

	three, err := placardsAt(img, ThreePlayerPlacards[:])
	if err != nil {
		return 0, err
	}
	if all(three) {
		return 3, nil
	}
	return 0, fmt.Errorf("placards 4p=%v 3p=%v: %w", four, three, ErrUndeterminedPlayerCount)
}

// IsPlacardAt reports whether a placard-sized region with top-left at p is a score placard.
func IsPlacardAt(img raster.Region, p image.Point) (bool, error) {
	sub, err := img.Sub(p.X, p.Y, PlacardWidth, PlacardHeight)
	if err != nil {
		return false, fmt.Errorf("placard probe at %v: %w", p, err)
	}
	return placard.IsScorePlacard(sub), nil
}

// BannerRegion cuts the victor banner out of a full podium screenshot.
func BannerRegion(img raster.Region) (raster.Region, error) {
	banner, err := img.Sub(BannerLeft, BannerTop, BannerWidth, BannerHeight)
	if err != nil {
		return raster.Region{}, fmt.Errorf("victor banner: %w", err)
	}
	return banner, nil
}

func placardsAt(img raster.Region, slots []image.Point) ([]bool, error) {
	found := make([]bool, len(slots))
	for i, p := range slots {
		ok, err := IsPlacardAt(img, p)
		if err != nil {
			return nil, err
		}
		found[i] = ok
	}
	return found, nil
}

func all(found []bool) bool {
	for _, ok := range found {
		if !ok {
			return false
		}
	}
	return true
}
