package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carboncost/carboncost/pkg/metrics"
)

// healthPingTimeout bounds the store ping performed by /healthz.
const healthPingTimeout = 2 * time.Second

// Pinger checks the backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and metrics requests.
type HealthHandler struct {
	pinger Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		logError(r.Context(), Wrap("api.health", err))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}

// HandleMetrics serves the custom Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
