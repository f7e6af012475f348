package dashboard

import "errors"

// Sentinel kinds for dashboard errors.
var (
	ErrFetch       = errors.New("fetch stats failed")
	ErrInvalidDate = errors.New("invalid date")
	ErrNoSnapshot  = errors.New("no stats fetched yet")
)
