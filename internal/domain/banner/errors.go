package banner

import "errors"

// Sentinel error kinds for banner analysis.
var (
	ErrShapeMismatch     = errors.New("fingerprint shapes differ")
	ErrFingerprintFormat = errors.New("malformed fingerprint")
)
