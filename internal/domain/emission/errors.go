package emission

import "errors"

// Sentinel kinds for emission errors.
var (
	ErrInvalidRecord    = errors.New("invalid emission record")
	ErrInvalidTimestamp = errors.New("invalid timestamp; must be ISO-8601")
	ErrUnknownTier      = errors.New("unknown badge tier")
)
