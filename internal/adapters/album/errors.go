package album

import "errors"

// Sentinel error kinds for album access.
var (
	ErrFilename = errors.New("file name is not a capture time")
	ErrDecode   = errors.New("decode screenshot")
)
