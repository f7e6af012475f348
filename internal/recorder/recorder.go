package recorder

import (
	"context"
	"time"

	"github.com/carboncost/carboncost/internal/domain/emission"
	"github.com/carboncost/carboncost/pkg/logger"
)

// Recorder performs one estimate-and-submit run.
type Recorder struct {
	cfg       Config
	durations emission.DurationSource
	estimator *emission.Estimator
	client    *HTTPClient
	now       func() time.Time
	logger    logger.Logger
}

// Option applies a configuration option to the Recorder.
type Option func(*Recorder)

// WithDurationSource overrides the synthetic duration source.
func WithDurationSource(src emission.DurationSource) Option {
	return func(r *Recorder) {
		if src != nil {
			r.durations = src
		}
	}
}

// WithEstimator overrides the factor table.
func WithEstimator(e *emission.Estimator) Option {
	return func(r *Recorder) {
		if e != nil {
			r.estimator = e
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Recorder for cfg.
func New(cfg Config, opts ...Option) *Recorder {
	r := &Recorder{
		cfg:       cfg,
		durations: emission.NewRandomDuration(),
		estimator: emission.NewEstimator(),
		client:    NewHTTPClient(cfg.Timeout),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("recorder")
	}
	return r
}

// Build estimates the emission of the current job.
func (r *Recorder) Build() emission.Record {
	d := r.durations.Duration()
	co2 := r.estimator.Estimate(d, r.cfg.Env.Platform)
	return emission.Record{
		Repo:        r.cfg.Env.Repository,
		Owner:       r.cfg.Env.Owner,
		RunID:       r.cfg.Env.RunID,
		CO2:         co2,
		Duration:    d,
		MachineType: r.cfg.Env.MachineType(),
		Badge:       emission.Classify(co2),
		Timestamp:   emission.FormatTimestamp(r.now()),
	}
}

// Record builds the record, submits it once and returns the step outputs.
func (r *Recorder) Record(ctx context.Context) (Outputs, error) {
	rec := r.Build()
	r.logger.Info(ctx, "estimated job emission",
		logger.String("repo", rec.Repo),
		logger.String("machine_type", rec.MachineType),
		logger.Int("duration", rec.Duration),
		logger.Float64("co2", rec.CO2),
		logger.String("badge", string(rec.Badge)),
	)

	if err := r.client.submit(ctx, r.cfg.BackendURL, rec); err != nil {
		return Outputs{}, err
	}
	r.logger.Info(ctx, "emission submitted", logger.String("backend_url", r.cfg.BackendURL))

	return Outputs{
		CO2:      FormatCO2(rec.CO2),
		BadgeURL: BadgeURL(r.cfg.BackendURL),
	}, nil
}
