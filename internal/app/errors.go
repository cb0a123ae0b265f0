package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted = errors.New("service not started")
	ErrReference  = errors.New("invalid player reference")
	ErrRunning    = errors.New("album pass already running")
)
