package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted = errors.New("collector service not started")
)
