package api

import (
	"net/http"
)

// DriversHandler lists the drivers currently known to the store, letting a
// host shell refresh any selector it maintains.
type DriversHandler struct {
	deps Dependencies
}

// NewDriversHandler creates a new drivers handler.
func NewDriversHandler(deps Dependencies) *DriversHandler {
	return &DriversHandler{deps: deps}
}

type driversResponse struct {
	Drivers []string `json:"drivers"`
}

// HandleGetDrivers handles GET /drivers requests.
func (h *DriversHandler) HandleGetDrivers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	drivers := h.deps.Drivers(r.Context())
	if drivers == nil {
		drivers = []string{}
	}
	writeJSON(w, http.StatusOK, driversResponse{Drivers: drivers})
}
