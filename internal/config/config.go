// Package config defines process configuration shared by the collector,
// recorder and dashboard binaries.
//
// Conventions:
// - Defaults come from New(); Load layers a YAML file and CARBON_* env vars on top.
// - Errors returned by Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"time"

	"github.com/carboncost/carboncost/internal/domain/emission"
)

// Storage drivers supported by the collector.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr is the collector HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// DBDriver selects the collector store: sqlite or postgres.
	DBDriver string `koanf:"db_driver"`

	// DBDSN is the driver-specific data source name.
	DBDSN string `koanf:"db_dsn"`

	// DBMaxOpenConns caps the store's connection pool; 0 keeps the driver
	// default (one connection for sqlite).
	DBMaxOpenConns int `koanf:"db_max_open_conns"`

	// Factors maps platforms to kg CO2 per second. Entries can be set from
	// the environment as CARBON_FACTORS_<PLATFORM>.
	Factors map[string]float64 `koanf:"factors"`

	// DefaultFactor is used for platforms missing from Factors.
	DefaultFactor float64 `koanf:"default_factor"`

	// BackendURL is the collector record endpoint used by the recorder.
	BackendURL string `koanf:"backend_url"`

	// DashboardAddr is the dashboard HTTP listen address.
	DashboardAddr string `koanf:"dashboard_addr"`

	// CollectorURL is the collector base URL polled by the dashboard and simulator.
	CollectorURL string `koanf:"collector_url"`

	// RefreshInterval is how often the dashboard refetches /stats.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":5000",
		DBDriver:        DriverSQLite,
		DBDSN:           "carbon.db",
		Factors:         emission.DefaultFactors(),
		DefaultFactor:   emission.DefaultFactor,
		DashboardAddr:   ":8501",
		CollectorURL:    "http://localhost:5000",
		RefreshInterval: 60 * time.Second,
	}
}

// EstimatorOptions returns the estimator options matching this config.
func (c *Config) EstimatorOptions() []emission.Option {
	return []emission.Option{
		emission.WithFactors(c.Factors),
		emission.WithDefaultFactor(c.DefaultFactor),
	}
}
