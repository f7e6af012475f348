package repository

import "github.com/carboncost/carboncost/pkg/logger"

// Option applies a configuration option to the GormStore.
type Option func(*GormStore)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *GormStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxOpenConns caps the connection pool. SQLite defaults to one;
// zero or less keeps the driver default.
func WithMaxOpenConns(n int) Option {
	return func(s *GormStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}
