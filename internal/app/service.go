// Package service provides the collector business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/carboncost/carboncost/internal/adapters/repository"
	"github.com/carboncost/carboncost/internal/domain/emission"
	"github.com/carboncost/carboncost/internal/domain/types"
	"github.com/carboncost/carboncost/pkg/logger"
	"github.com/carboncost/carboncost/pkg/metrics"
)

// Service implements the API dependencies for the collector.
type Service struct {
	mu sync.RWMutex

	store        repository.Store
	driver       string
	dsn          string
	maxOpenConns int
	ownStore     bool

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore uses an already opened store. The service will not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDatabase sets the driver and DSN opened on Start when no store is given.
func WithDatabase(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.driver = driver
		}
		if dsn != "" {
			s.dsn = dsn
		}
	}
}

// WithMaxOpenConns caps the pool of the store opened on Start.
func WithMaxOpenConns(n int) Option {
	return func(s *Service) {
		s.maxOpenConns = n
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		driver: repository.DriverSQLite,
		dsn:    "carbon.db",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store when one was not injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		store, err := repository.Open(ctx, s.driver, s.dsn,
			repository.WithLogger(s.logger.Named("store")),
			repository.WithMaxOpenConns(s.maxOpenConns),
		)
		if err != nil {
			return fmt.Errorf("open %s store: %w", s.driver, err)
		}
		s.store = store
		s.ownStore = true
		s.logger.Info(ctx, "store opened", logger.String("driver", s.driver))
	}

	s.started = true
	s.logger.Info(ctx, "collector service started")
	return nil
}

// Stop closes the store if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.ownStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store failed", logger.Error(err))
		}
		s.store = nil
		s.ownStore = false
	}
	s.started = false
	s.logger.Info(context.Background(), "collector service stopped")
}

func (s *Service) getStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Record validates rec and persists it.
func (s *Service) Record(ctx context.Context, rec emission.Record) (uint, error) {
	store, err := s.getStore()
	if err != nil {
		return 0, err
	}
	if err := rec.Validate(); err != nil {
		metrics.RecordRejected("validation")
		return 0, err
	}

	id, err := store.Insert(ctx, rec)
	if err != nil {
		return 0, err
	}
	metrics.RecordAccepted(string(rec.Badge), rec.CO2)
	s.logger.Debug(ctx, "emission recorded",
		logger.Int("id", int(id)),
		logger.String("repo", rec.Repo),
		logger.String("run_id", rec.RunID),
		logger.Float64("co2", rec.CO2),
		logger.String("badge", string(rec.Badge)),
	)
	return id, nil
}

// Stats returns totals, the mean, per-tier counts and every record.
func (s *Service) Stats(ctx context.Context) (types.Stats, error) {
	store, err := s.getStore()
	if err != nil {
		return types.Stats{}, err
	}

	snap, err := store.Snapshot(ctx)
	if err != nil {
		return types.Stats{}, err
	}
	sum, entries := snap.Summary, snap.Entries

	out := types.Stats{
		TotalCO2:    sum.TotalCO2,
		BadgeCounts: make(map[string]int, len(sum.TierCounts)),
		Emissions:   make([]emission.Record, len(entries)),
	}
	if sum.Count > 0 {
		out.AverageCO2 = sum.TotalCO2 / float64(sum.Count)
	}
	for tier, n := range sum.TierCounts {
		out.BadgeCounts[string(tier)] = n
	}
	for i, e := range entries {
		out.Emissions[i] = e.Record
	}
	metrics.UpdateStoredRecords(sum.Count)
	return out, nil
}

// LatestBadge returns the badge of the most recent record, or "No Data".
func (s *Service) LatestBadge(ctx context.Context) (types.Badge, error) {
	store, err := s.getStore()
	if err != nil {
		return types.Badge{}, err
	}

	latest, err := store.Latest(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return types.NoDataBadge(), nil
	case err != nil:
		return types.Badge{}, err
	}
	return types.NewBadge(latest.Record.Badge), nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	store, err := s.getStore()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

// GetStats returns service state for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"started": s.started,
		"driver":  s.driver,
	}
}
