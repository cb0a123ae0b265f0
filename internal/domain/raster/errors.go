package raster

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrEmptyRegion = errors.New("empty region")
	ErrDimensions  = errors.New("invalid raster dimensions")
)

// BoundsError describes a sub-region or pixel request that does not fit its parent.
type BoundsError struct {
	Op            string
	Left, Top     int
	Width, Height int
	ParentWidth   int
	ParentHeight  int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: %dx%d at (%d,%d) exceeds %dx%d: %v",
		e.Op, e.Width, e.Height, e.Left, e.Top, e.ParentWidth, e.ParentHeight, ErrOutOfBounds)
}

// Unwrap lets errors.Is(err, ErrOutOfBounds) succeed.
func (e *BoundsError) Unwrap() error { return ErrOutOfBounds }
