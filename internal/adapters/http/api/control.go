package api

import (
	"encoding/json"
	"net/http"
)

// ControlHandler exposes the control surface: selection, reset and forced
// recomputation.
type ControlHandler struct {
	deps Dependencies
}

// NewControlHandler creates a new control handler.
func NewControlHandler(deps Dependencies) *ControlHandler {
	return &ControlHandler{deps: deps}
}

type selectRequest struct {
	Driver string `json:"driver"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// HandleSelect handles POST /select requests. An empty or "all" driver
// selects all drivers.
func (h *ControlHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	h.deps.Select(r.Context(), req.Driver)
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// HandleReset handles POST /reset requests, clearing all retained
// telemetry.
func (h *ControlHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	h.deps.Reset(r.Context())
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// HandleTick handles POST /tick requests, forcing a view recomputation and
// returning the fresh model.
func (h *ControlHandler) HandleTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, h.deps.Tick(r.Context()))
}
