// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/carboncost/carboncost/internal/domain/emission"
	"github.com/carboncost/carboncost/internal/domain/types"
	"github.com/carboncost/carboncost/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecordDependencies

	// Stats returns the aggregate view over every stored record.
	Stats(ctx context.Context) (types.Stats, error)

	// LatestBadge returns the badge for the most recent record.
	LatestBadge(ctx context.Context) (types.Badge, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// RecordDependencies persists submitted records.
type RecordDependencies interface {
	Record(ctx context.Context, rec emission.Record) (uint, error)
}

// Server wires HTTP routes for the collector API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	recordHandler *RecordHandler
	badgeHandler  *BadgeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(deps),
		recordHandler: NewRecordHandler(deps),
		badgeHandler:  NewBadgeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/record", MetricsMiddleware(s.recordHandler.HandlePostRecord, "record"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/latest_co2_badge", MetricsMiddleware(s.badgeHandler.HandleLatestBadge, "latest_co2_badge"))
}

// Handler returns mux wrapped with the cross-cutting middleware.
func Handler(mux *http.ServeMux) http.Handler {
	return RequestID(CORS(mux))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg})
}

// logError reports server-side failures; client errors are not logged.
func logError(ctx context.Context, err error) {
	logger.Get().Named("api").Error(ctx, "request failed",
		logger.String("request_id", RequestIDFromContext(ctx)),
		logger.Error(err))
}
