// Command dashboard serves the Carbon-Cost dashboard, rendering the
// collector's statistics as metrics, charts and a recent-builds table.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carboncost/carboncost/internal/adapters/http/api"
	"github.com/carboncost/carboncost/internal/adapters/http/site"
	"github.com/carboncost/carboncost/internal/config"
	"github.com/carboncost/carboncost/internal/dashboard"
	"github.com/carboncost/carboncost/pkg/logger"
	"github.com/carboncost/carboncost/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.InitWithOptions(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	loggerInstance := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	poller := dashboard.NewPoller(
		dashboard.NewClient(cfg.CollectorURL),
		dashboard.WithInterval(cfg.RefreshInterval),
		dashboard.WithLogger(loggerInstance.Named("poller")),
	)
	go poller.Run(ctx)

	handler, err := newHandler(ctx, poller, cfg.CollectorURL)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build dashboard", logger.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.DashboardAddr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting dashboard",
			logger.String("addr", cfg.DashboardAddr),
			logger.String("collector_url", cfg.CollectorURL),
			logger.Duration("refresh_interval", cfg.RefreshInterval))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
	}
	loggerInstance.Info(ctx, "shutting down dashboard...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := poller.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "poller shutdown failed", logger.Error(err))
	}
	loggerInstance.Info(ctx, "dashboard stopped")
}

// newHandler registers the dashboard pages, static assets and metrics.
func newHandler(ctx context.Context, poller *dashboard.Poller, collectorURL string) (http.Handler, error) {
	h, err := dashboard.NewHandler(poller, collectorURL)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	h.Register(ctx, mux)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	return api.RequestID(mux), nil
}
