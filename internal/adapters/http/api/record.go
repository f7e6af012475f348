package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/carboncost/carboncost/internal/domain/emission"
	"github.com/carboncost/carboncost/internal/domain/types"
	"github.com/carboncost/carboncost/pkg/metrics"
)

// maxRecordBody bounds the size of a POST /record payload.
const maxRecordBody = 1 << 20

// RecordHandler handles record submissions.
type RecordHandler struct {
	deps RecordDependencies
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(deps RecordDependencies) *RecordHandler {
	return &RecordHandler{deps: deps}
}

// HandlePostRecord handles POST /record requests.
func (h *RecordHandler) HandlePostRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_record"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	var rec emission.Record
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRecordBody))
	if err := dec.Decode(&rec); err != nil {
		metrics.RecordRejected("decode")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("invalid JSON body: %w", err)))
		return
	}

	id, err := h.deps.Record(r.Context(), rec)
	switch {
	case errors.Is(err, emission.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case err != nil:
		err = WrapKind(op, ErrInternal, err)
		logError(r.Context(), err)
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusCreated, types.AckResponse{Status: "success", ID: id})
}
