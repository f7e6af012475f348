// Package repository persists emission records and answers the aggregate
// queries behind /stats and the badge endpoint.
package repository

import (
	"context"
	"time"

	"github.com/carboncost/carboncost/internal/domain/emission"
)

// Entry is a stored record with its store-assigned id.
type Entry struct {
	ID         uint
	Record     emission.Record
	OccurredAt time.Time
}

// Summary holds the aggregates computed by the store.
type Summary struct {
	Count      int
	TotalCO2   float64
	TierCounts map[emission.Tier]int
}

// Snapshot is a consistent view of the summary and the stored records.
type Snapshot struct {
	Summary Summary
	Entries []Entry
}

// Store provides append-only access to emission records.
type Store interface {
	// Insert persists rec as a single row and returns its id.
	Insert(ctx context.Context, rec emission.Record) (uint, error)

	// Snapshot returns the summary and all records in insertion order,
	// read by one transaction.
	Snapshot(ctx context.Context) (Snapshot, error)

	// Latest returns the record with the most recent timestamp.
	// Returns ErrNotFound when the store is empty.
	Latest(ctx context.Context) (Entry, error)

	// Ping checks connectivity to the backing database.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}
