package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("emission not found")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrOpen              = errors.New("open store failed")
	ErrQuery             = errors.New("store query failed")
)
