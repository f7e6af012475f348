package emission

import (
	"math/rand"
	"sync"
	"time"
)

// Synthetic duration bounds used by the recorder, in seconds. Max is exclusive.
const (
	DefaultMinDuration = 60
	DefaultMaxDuration = 660
)

// DurationSource yields a job duration in seconds.
type DurationSource interface {
	Duration() int
}

// DurationOption configures a RandomDuration.
type DurationOption func(*RandomDuration)

// WithDurationRange sets the half-open range [minSeconds, maxSeconds).
func WithDurationRange(minSeconds, maxSeconds int) DurationOption {
	return func(d *RandomDuration) {
		if minSeconds > 0 && maxSeconds > minSeconds {
			d.min = minSeconds
			d.max = maxSeconds
		}
	}
}

// WithSeed makes the sequence reproducible.
func WithSeed(seed int64) DurationOption {
	return func(d *RandomDuration) {
		d.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data, not security sensitive
	}
}

// RandomDuration draws uniformly distributed synthetic durations.
// The value is not a measurement of the actual job.
type RandomDuration struct {
	mu  sync.Mutex
	rng *rand.Rand
	min int
	max int
}

// NewRandomDuration creates a source over [60, 660) unless configured otherwise.
func NewRandomDuration(opts ...DurationOption) *RandomDuration {
	d := &RandomDuration{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // synthetic data
		min: DefaultMinDuration,
		max: DefaultMaxDuration,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Duration returns the next synthetic duration.
func (d *RandomDuration) Duration() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.min + d.rng.Intn(d.max-d.min)
}

// FixedDuration always returns the same value.
type FixedDuration int

// Duration implements DurationSource.
func (f FixedDuration) Duration() int { return int(f) }
