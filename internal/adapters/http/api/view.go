package api

import (
	"net/http"

	"github.com/pitwall/tyretrace/internal/domain/view"
)

// ViewHandler serves the derived view model.
type ViewHandler struct {
	deps Dependencies
}

// NewViewHandler creates a new view handler.
func NewViewHandler(deps Dependencies) *ViewHandler {
	return &ViewHandler{deps: deps}
}

// HandleGetView handles GET /view requests. Without a driver query
// parameter it returns the cached, tick-refreshed view for the current
// selection; with ?driver=CODE (or ?driver=all) it builds an ad-hoc
// projection without touching the cache.
func (h *ViewHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	driver, explicit := queryDriver(r)
	if !explicit {
		writeJSON(w, http.StatusOK, h.deps.View(r.Context()))
		return
	}

	writeJSON(w, http.StatusOK, h.deps.ViewFor(r.Context(), driver))
}

// queryDriver parses the driver query parameter into a selection. The
// second return value reports whether the parameter was present at all.
func queryDriver(r *http.Request) (view.Selection, bool) {
	if !r.URL.Query().Has("driver") {
		return view.All, false
	}
	code := r.URL.Query().Get("driver")
	if code == "" || code == "all" {
		return view.All, true
	}
	return view.Selection(code), true
}
