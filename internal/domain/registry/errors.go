package registry

import "errors"

// Sentinel error kinds for the victor registry.
var (
	ErrAmbiguousVictor = errors.New("banner matches more than one player")
	ErrEmptyName       = errors.New("player name must not be empty")
)
