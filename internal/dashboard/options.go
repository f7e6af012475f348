package dashboard

import (
	"time"

	"github.com/carboncost/carboncost/pkg/logger"
)

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the refresh interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}
