package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// palette mirrors the ten-colour cycle renderers are expected to use for
// stable per-driver colours.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ChartHandler renders the current view model as an HTML line chart. It is
// the service's rendering-collaborator surface: anything that can show
// HTML can display the degradation curves.
type ChartHandler struct {
	deps Dependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps Dependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandleGetChart handles GET /chart requests. Like /view it serves the
// cached model by default and an ad-hoc projection with ?driver=.
func (h *ChartHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	driver, explicit := queryDriver(r)
	vm := h.deps.View(r.Context())
	if explicit {
		vm = h.deps.ViewFor(r.Context(), driver)
	}

	if vm.Placeholder {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<html><body><h2>%s</h2><p>%s</p></body></html>", vm.Title, vm.Message)
		return
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: vm.Title, Width: "1000px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: vm.Title, Subtitle: fmt.Sprintf("drivers=%d stints=%d", len(vm.Series), vm.StintCount)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: vm.XMin, Max: vm.XMax, Name: "Race Lap", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Tyre Health (%)", NameLocation: "middle", NameGap: 35}),
	)

	for _, series := range vm.Series {
		data := make([]opts.LineData, 0, len(series.Points))
		for _, p := range series.Points {
			data = append(data, opts.LineData{Value: []interface{}{p.RaceLap, p.Health}})
		}
		line.AddSeries(series.Driver, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: palette[series.ColorIndex%len(palette)]}),
		)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "render_error", fmt.Errorf("%w: %w", ErrRender, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
