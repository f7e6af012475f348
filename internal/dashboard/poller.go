package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carboncost/carboncost/internal/domain/types"
	"github.com/carboncost/carboncost/pkg/logger"
)

// DefaultRefreshInterval is how long a fetched snapshot stays current.
const DefaultRefreshInterval = 60 * time.Second

// Snapshot is the last fetch result. Err is set when that fetch failed;
// Stats then holds the last successful value, if any.
type Snapshot struct {
	Stats     types.Stats
	FetchedAt time.Time
	Err       error
	HasStats  bool
}

// Poller keeps a cached copy of the collector stats, refreshed on an interval.
type Poller struct {
	fetcher  StatsFetcher
	interval time.Duration

	mu   sync.RWMutex
	snap Snapshot

	refreshMu sync.Mutex

	shutdown chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	logger logger.Logger
}

// NewPoller creates a poller over fetcher.
func NewPoller(fetcher StatsFetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		interval: DefaultRefreshInterval,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("poller")
	}
	return p
}

// Run fetches once immediately and then every interval until ctx is done
// or Shutdown is called.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.done)

	_ = p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			_ = p.Refresh(ctx)
		}
	}
}

// Shutdown stops Run and waits for it to return.
func (p *Poller) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.shutdown) })

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Refresh fetches now and replaces the snapshot. Concurrent calls are
// serialized.
func (p *Poller) Refresh(ctx context.Context) error {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	stats, err := p.fetcher.FetchStats(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.FetchedAt = time.Now()
	p.snap.Err = err
	if err != nil {
		p.logger.Warn(ctx, "stats refresh failed", logger.Error(err))
		return err
	}
	p.snap.Stats = stats
	p.snap.HasStats = true
	p.logger.Debug(ctx, "stats refreshed", logger.Int("records", len(stats.Emissions)))
	return nil
}

// Snapshot returns the current cached state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Current returns the cached stats, fetching them first if nothing has been
// fetched yet.
func (p *Poller) Current(ctx context.Context) (types.Stats, error) {
	snap := p.Snapshot()
	if snap.FetchedAt.IsZero() {
		if err := p.Refresh(ctx); err != nil {
			return types.Stats{}, err
		}
		snap = p.Snapshot()
	}
	if snap.Err != nil {
		return types.Stats{}, snap.Err
	}
	if !snap.HasStats {
		return types.Stats{}, ErrNoSnapshot
	}
	return snap.Stats, nil
}
