package api

import (
	"encoding/json"
	"net/http"

	"github.com/pitwall/tyretrace/internal/domain/model"
)

// TelemetryHandler handles inbound telemetry frames.
type TelemetryHandler struct {
	deps Dependencies
}

// NewTelemetryHandler creates a new telemetry handler.
func NewTelemetryHandler(deps Dependencies) *TelemetryHandler {
	return &TelemetryHandler{deps: deps}
}

// HandlePostFrame handles POST /telemetry requests. Missing per-driver
// fields decode to zero values, which is the defined default; frames are
// never rejected for incompleteness.
func (h *TelemetryHandler) HandlePostFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var frame model.Frame
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	accepted, duplicate := h.deps.Ingest(r.Context(), frame)
	switch {
	case duplicate:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
	case !accepted:
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
	}
}
