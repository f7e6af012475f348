package api

import (
	"context"
	"net/http"

	"github.com/carboncost/carboncost/internal/domain/types"
)

// BadgeProvider returns the badge for the most recent record.
type BadgeProvider interface {
	LatestBadge(ctx context.Context) (types.Badge, error)
}

// BadgeHandler serves the shields.io endpoint badge.
type BadgeHandler struct {
	provider BadgeProvider
}

// NewBadgeHandler creates a new badge handler.
func NewBadgeHandler(provider BadgeProvider) *BadgeHandler {
	return &BadgeHandler{provider: provider}
}

// HandleLatestBadge handles GET /latest_co2_badge requests.
func (h *BadgeHandler) HandleLatestBadge(w http.ResponseWriter, r *http.Request) {
	const op = "api.latest_badge"
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	badge, err := h.provider.LatestBadge(r.Context())
	if err != nil {
		err = WrapKind(op, ErrInternal, err)
		logError(r.Context(), err)
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, badge)
}
