package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/carboncost/carboncost/internal/domain/emission"
	"github.com/carboncost/carboncost/pkg/logger"
	"github.com/carboncost/carboncost/pkg/metrics"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// emissionRow is the persisted shape of an emission record. Timestamp keeps
// the submitted string verbatim; OccurredAt is its parsed form for ordering.
type emissionRow struct {
	ID          uint      `gorm:"primaryKey"`
	Repo        string    `gorm:"size:100;not null"`
	Owner       string    `gorm:"size:100;not null"`
	RunID       string    `gorm:"column:run_id;size:100;not null"`
	CO2         float64   `gorm:"column:co2;not null"`
	Duration    int       `gorm:"not null"`
	MachineType string    `gorm:"size:50;not null"`
	Badge       string    `gorm:"size:10;not null;index"`
	Timestamp   string    `gorm:"size:64;not null"`
	OccurredAt  time.Time `gorm:"not null;index"`
	CreatedAt   time.Time
}

func (emissionRow) TableName() string { return "emissions" }

func (r emissionRow) entry() Entry {
	return Entry{
		ID: r.ID,
		Record: emission.Record{
			Repo:        r.Repo,
			Owner:       r.Owner,
			RunID:       r.RunID,
			CO2:         r.CO2,
			Duration:    r.Duration,
			MachineType: r.MachineType,
			Badge:       emission.Tier(r.Badge),
			Timestamp:   r.Timestamp,
		},
		OccurredAt: r.OccurredAt,
	}
}

// GormStore implements Store on top of gorm.
type GormStore struct {
	db           *gorm.DB
	logger       logger.Logger
	maxOpenConns int
	readTx       *sql.TxOptions
}

var _ Store = (*GormStore)(nil)

// Open connects to the database for driver/dsn and migrates the emissions table.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*GormStore, error) {
	s := &GormStore{}
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		s.maxOpenConns = 1
	case DriverPostgres:
		dialector = postgres.Open(dsn)
		// Snapshot's two queries must share one view of the table.
		s.readTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if s.maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(s.maxOpenConns)
	}
	if err := db.WithContext(ctx).AutoMigrate(&emissionRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: migrate: %w", ErrOpen, err)
	}
	s.db = db
	return s, nil
}

// observe records latency for op and counts failures.
func (s *GormStore) observe(ctx context.Context, op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(op)
		if s.logger != nil {
			s.logger.Error(ctx, "store operation failed", logger.String("op", op), logger.Error(err))
		}
	}
}

// Insert persists rec as a single row.
func (s *GormStore) Insert(ctx context.Context, rec emission.Record) (id uint, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "insert", start, err) }()

	at, err := rec.Time()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	row := emissionRow{
		Repo:        rec.Repo,
		Owner:       rec.Owner,
		RunID:       rec.RunID,
		CO2:         rec.CO2,
		Duration:    rec.Duration,
		MachineType: rec.MachineType,
		Badge:       string(rec.Badge),
		Timestamp:   rec.Timestamp,
		OccurredAt:  at.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("%w: insert: %w", ErrQuery, err)
	}
	return row.ID, nil
}

// Snapshot reads the summary and the listed records in one read
// transaction, so concurrent inserts land in both or in neither.
func (s *GormStore) Snapshot(ctx context.Context) (snap Snapshot, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "snapshot", start, err) }()

	var opts []*sql.TxOptions
	if s.readTx != nil {
		opts = append(opts, s.readTx)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sum, err := summarize(tx)
		if err != nil {
			return err
		}
		entries, err := listEntries(tx)
		if err != nil {
			return err
		}
		snap = Snapshot{Summary: sum, Entries: entries}
		return nil
	}, opts...)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// listEntries returns all records ordered by id.
func listEntries(db *gorm.DB) ([]Entry, error) {
	var rows []emissionRow
	if err := db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrQuery, err)
	}
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = r.entry()
	}
	return entries, nil
}

// summarize aggregates in SQL rather than over the listed rows.
func summarize(db *gorm.DB) (Summary, error) {
	var totals struct {
		Count int64
		Total float64
	}
	if err := db.Model(&emissionRow{}).
		Select("COUNT(*) AS count, COALESCE(SUM(co2), 0) AS total").
		Scan(&totals).Error; err != nil {
		return Summary{}, fmt.Errorf("%w: summary: %w", ErrQuery, err)
	}

	var perTier []struct {
		Badge string
		N     int64
	}
	if err := db.Model(&emissionRow{}).
		Select("badge, COUNT(*) AS n").
		Group("badge").
		Scan(&perTier).Error; err != nil {
		return Summary{}, fmt.Errorf("%w: tier counts: %w", ErrQuery, err)
	}

	sum := Summary{
		Count:      int(totals.Count),
		TotalCO2:   totals.Total,
		TierCounts: make(map[emission.Tier]int, len(emission.Tiers())),
	}
	for _, t := range emission.Tiers() {
		sum.TierCounts[t] = 0
	}
	for _, pt := range perTier {
		sum.TierCounts[emission.Tier(pt.Badge)] = int(pt.N)
	}
	return sum, nil
}

// Latest returns the record with the greatest timestamp; ties go to the newest row.
func (s *GormStore) Latest(ctx context.Context) (entry Entry, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "latest", start, err) }()

	var row emissionRow
	err = s.db.WithContext(ctx).Order("occurred_at DESC").Order("id DESC").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("%w: latest: %w", ErrQuery, err)
	}
	return row.entry(), nil
}

// Ping checks database connectivity.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
