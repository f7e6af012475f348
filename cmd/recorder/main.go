// Command recorder estimates the CO2 of the current CI job, submits it to
// the collector and writes the co2 and badge_url step outputs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/carboncost/carboncost/internal/config"
	"github.com/carboncost/carboncost/internal/domain/emission"
	"github.com/carboncost/carboncost/internal/recorder"
	"github.com/carboncost/carboncost/pkg/logger"
)

var (
	backendURL string
	timeout    time.Duration

	simURL     string
	simRuns    int
	simDelay   time.Duration
	simRepos   []string
	simOwner   string
	simTimeout time.Duration
)

// rootCmd records the current job.
var rootCmd = &cobra.Command{
	Use:   "recorder",
	Short: "Estimate and record the CO2 emission of a CI job",
	Long: `Estimate the CO2 emission of the current CI job and submit it to the
Carbon-Cost collector.

Inputs:
  --backend-url, INPUT_BACKEND_URL or CARBON_BACKEND_URL  collector record endpoint

Environment:
  RUNNER_OS, GITHUB_REPOSITORY, GITHUB_REPOSITORY_OWNER, GITHUB_RUN_ID

Outputs (stdout and $GITHUB_OUTPUT):
  co2        estimated kg CO2, three decimals
  badge_url  shields.io URL rendering the latest badge`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRecord(cmd.Context(), cmd.OutOrStdout(), os.LookupEnv)
	},
}

// simulateCmd submits a batch of demo runs.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Submit simulated CI runs to populate the dashboard",
	Long: `Generate random emission records for a set of demo repositories and
submit them to the collector. The collector must answer GET /stats first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSimulate(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.Flags().StringVar(&backendURL, "backend-url", "", "Collector record endpoint, e.g. http://localhost:5000/record")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "HTTP timeout for the submission (0 = none)")

	simulateCmd.Flags().StringVar(&simURL, "url", "", "Collector base URL (default: collector_url from config)")
	simulateCmd.Flags().IntVar(&simRuns, "runs", recorder.DefaultRuns, "Number of runs to simulate")
	simulateCmd.Flags().DurationVar(&simDelay, "delay", recorder.DefaultDelay, "Delay between runs")
	simulateCmd.Flags().StringSliceVar(&simRepos, "repos", recorder.DefaultRepos, "Repositories runs are attributed to")
	simulateCmd.Flags().StringVar(&simOwner, "owner", recorder.DefaultOwner, "Owner recorded on every run")
	simulateCmd.Flags().DurationVar(&simTimeout, "timeout", 10*time.Second, "HTTP timeout per request")

	rootCmd.AddCommand(simulateCmd)
}

func main() {
	// Logs go to stderr; stdout carries the step outputs.
	if err := logger.InitWithOptions(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		recorder.Annotate(os.Stdout, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig applies the shared configuration to the logger.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := logger.InitWithOptions(logger.WithWriter(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// runRecord resolves inputs, records the job and writes the outputs.
func runRecord(ctx context.Context, stdout io.Writer, lookup recorder.LookupFunc) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	url, err := recorder.ResolveBackendURL(backendURL, lookup)
	if err != nil {
		if cfg.BackendURL == "" {
			return err
		}
		url = cfg.BackendURL
	}
	env, err := recorder.LoadEnvironment(lookup)
	if err != nil {
		return err
	}

	rec := recorder.New(
		recorder.Config{BackendURL: url, Timeout: timeout, Env: env},
		recorder.WithEstimator(emission.NewEstimator(cfg.EstimatorOptions()...)),
	)
	out, err := rec.Record(ctx)
	if err != nil {
		return err
	}

	outputPath, _ := lookup(recorder.EnvGitHubOutput)
	return out.Write(stdout, outputPath)
}

// runSimulate submits a batch of simulated runs.
func runSimulate(ctx context.Context, stdout io.Writer) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	base := simURL
	if base == "" {
		base = cfg.CollectorURL
	}
	sim := recorder.NewSimulator(recorder.SimulateConfig{
		BaseURL: base,
		Runs:    simRuns,
		Delay:   simDelay,
		Repos:   simRepos,
		Owner:   simOwner,
		Timeout: simTimeout,
	}, emission.NewEstimator(cfg.EstimatorOptions()...))

	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "Successfully recorded %d/%d runs\n", stats.Successful, stats.Submitted)
	return err
}
