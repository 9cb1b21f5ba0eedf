// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/internal/domain/view"
)

// Dependencies required by the HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Ingest submits a telemetry frame. A false accepted with false
	// duplicate signals feed backpressure.
	Ingest(ctx context.Context, frame model.Frame) (accepted, duplicate bool)

	// Read operations over the derived view state.
	View(ctx context.Context) view.Model
	ViewFor(ctx context.Context, sel view.Selection) view.Model
	Drivers(ctx context.Context) []string

	// Control surface.
	Select(ctx context.Context, code string)
	Reset(ctx context.Context)
	Tick(ctx context.Context) view.Model
}

// Server wires HTTP routes for the telemetry API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	telemetryHandler *TelemetryHandler
	viewHandler      *ViewHandler
	driversHandler   *DriversHandler
	controlHandler   *ControlHandler
	chartHandler     *ChartHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		telemetryHandler: NewTelemetryHandler(deps),
		viewHandler:      NewViewHandler(deps),
		driversHandler:   NewDriversHandler(deps),
		controlHandler:   NewControlHandler(deps),
		chartHandler:     NewChartHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/telemetry", MetricsMiddleware(s.telemetryHandler.HandlePostFrame, "telemetry"))
	mux.HandleFunc("/view", MetricsMiddleware(s.viewHandler.HandleGetView, "view"))
	mux.HandleFunc("/drivers", MetricsMiddleware(s.driversHandler.HandleGetDrivers, "drivers"))
	mux.HandleFunc("/select", MetricsMiddleware(s.controlHandler.HandleSelect, "select"))
	mux.HandleFunc("/reset", MetricsMiddleware(s.controlHandler.HandleReset, "reset"))
	mux.HandleFunc("/tick", MetricsMiddleware(s.controlHandler.HandleTick, "tick"))
	mux.HandleFunc("/chart", MetricsMiddleware(s.chartHandler.HandleGetChart, "chart"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
