package podium

import "image"

// Fixed podium-screen layout. All coordinates are top-left offsets into the full
// screenshot; a layout change in the game is an edit to this file only.
const (
	PlacardWidth  = 21
	PlacardHeight = 8

	BannerLeft   = 72
	BannerTop    = 35
	BannerWidth  = 179
	BannerHeight = 23
)

// FourPlayerPlacards are the placard slots of a four-player podium. Slots 1 and 2
// double as the two centred slots a two-player podium uses.
var FourPlayerPlacards = [4]image.Point{
	{X: 85, Y: 149},
	{X: 127, Y: 149},
	{X: 169, Y: 149},
	{X: 211, Y: 149},
}

// ThreePlayerPlacards are the placard slots of a three-player podium.
var ThreePlayerPlacards = [3]image.Point{
	{X: 106, Y: 149},
	{X: 148, Y: 149},
	{X: 190, Y: 149},
}
