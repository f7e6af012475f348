package recorder

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carboncost/carboncost/internal/domain/emission"
	"github.com/carboncost/carboncost/pkg/logger"
)

// Simulation defaults.
const (
	DefaultRuns  = 20
	DefaultDelay = 500 * time.Millisecond
	DefaultOwner = "carbon-cost-team"

	simMinDuration = 30
	simMaxDuration = 900 // inclusive
	simSpreadDays  = 7
)

// DefaultRepos are the demo repositories runs are attributed to.
var DefaultRepos = []string{"frontend-app", "backend-api", "mobile-app", "data-pipeline", "ml-service"}

var simMachineTypes = []string{"ubuntu-latest", "windows-latest", "macos-latest"}

// SimulateConfig holds configuration for a simulated batch of CI runs.
type SimulateConfig struct {
	BaseURL string        // collector base URL
	Runs    int           // number of runs to submit
	Delay   time.Duration // pause between runs
	Repos   []string
	Owner   string
	Timeout time.Duration
	Seed    int64 // zero picks a time-based seed
}

// SimulateStats summarizes a simulation.
type SimulateStats struct {
	BatchID    string
	Submitted  int
	Successful int
	Failed     int
	Duration   time.Duration
}

// Simulator generates and submits demo records.
type Simulator struct {
	cfg       SimulateConfig
	estimator *emission.Estimator
	durations emission.DurationSource
	client    *HTTPClient
	rng       *rand.Rand
	now       func() time.Time
	logger    logger.Logger
}

// NewSimulator creates a Simulator. A nil estimator uses the default table.
func NewSimulator(cfg SimulateConfig, estimator *emission.Estimator) *Simulator {
	if cfg.Runs <= 0 {
		cfg.Runs = DefaultRuns
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if len(cfg.Repos) == 0 {
		cfg.Repos = DefaultRepos
	}
	if cfg.Owner == "" {
		cfg.Owner = DefaultOwner
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if estimator == nil {
		estimator = emission.NewEstimator()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Simulator{
		cfg:       cfg,
		estimator: estimator,
		durations: emission.NewRandomDuration(
			emission.WithSeed(cfg.Seed),
			emission.WithDurationRange(simMinDuration, simMaxDuration+1),
		),
		client: NewHTTPClient(cfg.Timeout),
		rng:    rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // synthetic data
		now:    time.Now,
		logger: logger.Get().Named("simulate"),
	}
}

// Run checks the collector and submits cfg.Runs records. Per-run failures
// are counted; only an unreachable collector or cancellation aborts.
func (s *Simulator) Run(ctx context.Context) (SimulateStats, error) {
	start := time.Now()
	stats := SimulateStats{BatchID: uuid.NewString()}
	log := s.logger
	log.Info(ctx, "starting simulation",
		logger.String("batch_id", stats.BatchID),
		logger.String("baseURL", s.cfg.BaseURL),
		logger.Int("runs", s.cfg.Runs),
		logger.Duration("delay", s.cfg.Delay))

	if err := s.checkCollector(ctx); err != nil {
		return stats, err
	}

	url := s.cfg.BaseURL + recordPath
	for i := 1; i <= s.cfg.Runs; i++ {
		rec := s.generate(i)
		stats.Submitted++
		if err := s.client.submit(ctx, url, rec); err != nil {
			stats.Failed++
			log.Warn(ctx, "run failed",
				logger.String("batch_id", stats.BatchID),
				logger.String("repo", rec.Repo),
				logger.Error(err))
		} else {
			stats.Successful++
			log.Info(ctx, "run recorded",
				logger.String("batch_id", stats.BatchID),
				logger.String("repo", rec.Repo),
				logger.Float64("co2", rec.CO2),
				logger.String("badge", string(rec.Badge)))
		}

		if i < s.cfg.Runs && s.cfg.Delay > 0 {
			select {
			case <-ctx.Done():
				stats.Duration = time.Since(start)
				return stats, ctx.Err()
			case <-time.After(s.cfg.Delay):
			}
		} else if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
	}

	stats.Duration = time.Since(start)
	log.Info(ctx, "simulation complete",
		logger.String("batch_id", stats.BatchID),
		logger.String("recorded", fmt.Sprintf("%d/%d", stats.Successful, stats.Submitted)),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// checkCollector verifies the collector answers GET /stats with 200.
func (s *Simulator) checkCollector(ctx context.Context) error {
	url := s.cfg.BaseURL + "/stats"
	resp, err := s.client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("collector not reachable at %s: %w", s.cfg.BaseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("collector not responding properly: GET %s returned %d", url, resp.StatusCode)
	}
	return nil
}

// generate builds the record for run i.
func (s *Simulator) generate(i int) emission.Record {
	repo := s.cfg.Repos[s.rng.Intn(len(s.cfg.Repos))]
	machineType := simMachineTypes[s.rng.Intn(len(simMachineTypes))]
	duration := s.durations.Duration()
	co2 := math.Round(s.estimator.Estimate(duration, machineType)*1000) / 1000

	ago := time.Duration(s.rng.Intn(simSpreadDays+1))*24*time.Hour +
		time.Duration(s.rng.Intn(25))*time.Hour +
		time.Duration(s.rng.Intn(61))*time.Minute

	return emission.Record{
		Repo:        repo,
		Owner:       s.cfg.Owner,
		RunID:       strconv.Itoa(i),
		CO2:         co2,
		Duration:    duration,
		MachineType: machineType,
		Badge:       emission.Classify(co2),
		Timestamp:   emission.FormatTimestamp(s.now().Add(-ago)),
	}
}
