package api

import (
	"context"
	"net/http"

	"github.com/carboncost/carboncost/internal/domain/types"
)

// StatsProvider defines the interface for aggregate statistics.
type StatsProvider interface {
	Stats(ctx context.Context) (types.Stats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	stats, err := h.statsProvider.Stats(r.Context())
	if err != nil {
		err = WrapKind(op, ErrInternal, err)
		logError(r.Context(), err)
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
