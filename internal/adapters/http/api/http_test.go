package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pitwall/tyretrace/internal/adapters/http/api"
	"github.com/pitwall/tyretrace/internal/domain/health"
	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/internal/domain/view"
	. "github.com/smartystreets/goconvey/convey"
)

// mockService implements api.Dependencies and api.StatsProvider for handler
// tests without spinning up the full feed pipeline.
type mockService struct {
	acceptFrames bool
	seen         map[int64]bool
	ingested     []model.Frame

	cached    view.Model
	adHoc     map[view.Selection]view.Model
	drivers   []string
	selected  string
	resets    int
	ticks     int
	stats     map[string]interface{}
}

func newMockService() *mockService {
	return &mockService{
		acceptFrames: true,
		seen:         make(map[int64]bool),
		adHoc:        make(map[view.Selection]view.Model),
		stats:        map[string]interface{}{"samplesRetained": 0},
	}
}

func (m *mockService) Ingest(ctx context.Context, frame model.Frame) (bool, bool) {
	if m.seen[frame.FrameIndex] {
		return false, true
	}
	if !m.acceptFrames {
		return false, false
	}
	m.seen[frame.FrameIndex] = true
	m.ingested = append(m.ingested, frame)
	return true, false
}

func (m *mockService) View(ctx context.Context) view.Model { return m.cached }

func (m *mockService) ViewFor(ctx context.Context, sel view.Selection) view.Model {
	if vm, ok := m.adHoc[sel]; ok {
		return vm
	}
	return m.cached
}

func (m *mockService) Drivers(ctx context.Context) []string { return m.drivers }

func (m *mockService) Select(ctx context.Context, code string) { m.selected = code }

func (m *mockService) Reset(ctx context.Context) { m.resets++ }

func (m *mockService) Tick(ctx context.Context) view.Model {
	m.ticks++
	return m.cached
}

func (m *mockService) GetStats() map[string]interface{} { return m.stats }

func plottedModel() view.Model {
	return view.Model{
		Title: "Tyre Degradation Analysis - All Drivers",
		XMin:  0,
		XMax:  12,
		Series: []view.Series{
			{Driver: "ALO", ColorIndex: 0, Points: []health.Point{{RaceLap: 1, Health: 100}, {RaceLap: 2, Health: 95.8}}},
			{Driver: "VER", ColorIndex: 1, Points: []health.Point{{RaceLap: 1, Health: 100}, {RaceLap: 2, Health: 96.5}}},
		},
		StintCount: 2,
	}
}

func placeholderModel() view.Model {
	return view.Model{
		Title:       "Tyre Degradation Analysis - All Drivers",
		Placeholder: true,
		Message:     "Waiting for telemetry data...",
		XMin:        0,
		XMax:        1,
	}
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := newMockService()
		svc.cached = placeholderModel()
		server := api.NewServer(svc, svc)
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("Then the health endpoint serves metrics", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint is accessible", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the telemetry endpoint accepts frames", func() {
			req := httptest.NewRequest("POST", "/telemetry", strings.NewReader(`{"frame_index":1,"drivers":{}}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusAccepted)
		})

		Convey("And the view endpoint is accessible", func() {
			req := httptest.NewRequest("GET", "/view", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the chart endpoint serves HTML", func() {
			req := httptest.NewRequest("GET", "/chart", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
		})

		Convey("And unknown routes fall through to not found", func() {
			req := httptest.NewRequest("GET", "/unknown", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestTelemetryHandler_HandlePostFrame(t *testing.T) {
	Convey("Given a telemetry handler", t, func() {
		svc := newMockService()
		handler := api.NewTelemetryHandler(svc)

		frameJSON := `{
			"frame_index": 42,
			"drivers": {
				"ALO": {"tyre": 2, "tyre_life": 3, "lap": 5},
				"VER": {"tyre": 0, "tyre_life": 1, "lap": 5}
			}
		}`

		Convey("When handling a valid frame", func() {
			req := httptest.NewRequest("POST", "/telemetry", strings.NewReader(frameJSON))
			w := httptest.NewRecorder()
			handler.HandlePostFrame(w, req)

			Convey("Then it should be accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)

				var resp struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.Status, ShouldEqual, "accepted")
				So(resp.Duplicate, ShouldBeFalse)
				So(len(svc.ingested), ShouldEqual, 1)
				So(svc.ingested[0].Drivers["ALO"].Lap, ShouldEqual, 5)
			})
		})

		Convey("When handling the same frame index twice", func() {
			req1 := httptest.NewRequest("POST", "/telemetry", strings.NewReader(frameJSON))
			handler.HandlePostFrame(httptest.NewRecorder(), req1)

			req2 := httptest.NewRequest("POST", "/telemetry", strings.NewReader(frameJSON))
			w := httptest.NewRecorder()
			handler.HandlePostFrame(w, req2)

			Convey("Then the second is reported as duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.Status, ShouldEqual, "duplicate")
				So(resp.Duplicate, ShouldBeTrue)
			})
		})

		Convey("When a frame omits per-driver fields", func() {
			req := httptest.NewRequest("POST", "/telemetry", strings.NewReader(`{"frame_index":7,"drivers":{"HAM":{}}}`))
			w := httptest.NewRecorder()
			handler.HandlePostFrame(w, req)

			Convey("Then it is accepted with zero defaults", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(svc.ingested[0].Drivers["HAM"].TyreLife, ShouldEqual, 0)
			})
		})

		Convey("When the body is not valid JSON", func() {
			req := httptest.NewRequest("POST", "/telemetry", strings.NewReader(`{invalid`))
			w := httptest.NewRecorder()
			handler.HandlePostFrame(w, req)

			Convey("Then it returns bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the feed is saturated", func() {
			svc.acceptFrames = false
			req := httptest.NewRequest("POST", "/telemetry", strings.NewReader(frameJSON))
			w := httptest.NewRecorder()
			handler.HandlePostFrame(w, req)

			Convey("Then it returns too many requests", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)

				var resp struct {
					Code string `json:"code"`
				}
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "backpressure")
			})
		})

		Convey("When using a non-POST method", func() {
			req := httptest.NewRequest("GET", "/telemetry", nil)
			w := httptest.NewRecorder()
			handler.HandlePostFrame(w, req)

			Convey("Then it returns not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestViewHandler_HandleGetView(t *testing.T) {
	Convey("Given a view handler", t, func() {
		svc := newMockService()
		svc.cached = plottedModel()
		svc.adHoc[view.Selection("ALO")] = view.Model{
			Title:  "Tyre Degradation Analysis - ALO",
			XMax:   12,
			Series: []view.Series{{Driver: "ALO", ColorIndex: 0}},
		}
		handler := api.NewViewHandler(svc)

		Convey("When requesting without a driver parameter", func() {
			req := httptest.NewRequest("GET", "/view", nil)
			w := httptest.NewRecorder()
			handler.HandleGetView(w, req)

			Convey("Then it returns the cached model", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var vm view.Model
				So(json.NewDecoder(w.Body).Decode(&vm), ShouldBeNil)
				So(len(vm.Series), ShouldEqual, 2)
				So(vm.XMax, ShouldEqual, 12)
			})
		})

		Convey("When requesting a specific driver", func() {
			req := httptest.NewRequest("GET", "/view?driver=ALO", nil)
			w := httptest.NewRecorder()
			handler.HandleGetView(w, req)

			Convey("Then it returns the ad-hoc projection", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var vm view.Model
				So(json.NewDecoder(w.Body).Decode(&vm), ShouldBeNil)
				So(len(vm.Series), ShouldEqual, 1)
				So(vm.Series[0].Driver, ShouldEqual, "ALO")
			})
		})

		Convey("When requesting driver=all", func() {
			svc.adHoc[view.All] = plottedModel()
			req := httptest.NewRequest("GET", "/view?driver=all", nil)
			w := httptest.NewRecorder()
			handler.HandleGetView(w, req)

			Convey("Then it returns the all-drivers projection", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var vm view.Model
				So(json.NewDecoder(w.Body).Decode(&vm), ShouldBeNil)
				So(len(vm.Series), ShouldEqual, 2)
			})
		})

		Convey("When using a non-GET method", func() {
			req := httptest.NewRequest("POST", "/view", nil)
			w := httptest.NewRecorder()
			handler.HandleGetView(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestDriversHandler_HandleGetDrivers(t *testing.T) {
	Convey("Given a drivers handler", t, func() {
		svc := newMockService()
		handler := api.NewDriversHandler(svc)

		Convey("When drivers are known", func() {
			svc.drivers = []string{"ALO", "HAM", "VER"}
			req := httptest.NewRequest("GET", "/drivers", nil)
			w := httptest.NewRecorder()
			handler.HandleGetDrivers(w, req)

			Convey("Then they are listed in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp struct {
					Drivers []string `json:"drivers"`
				}
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.Drivers, ShouldResemble, []string{"ALO", "HAM", "VER"})
			})
		})

		Convey("When no telemetry has arrived", func() {
			req := httptest.NewRequest("GET", "/drivers", nil)
			w := httptest.NewRecorder()
			handler.HandleGetDrivers(w, req)

			Convey("Then the list is empty, not null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"drivers":[]`)
			})
		})
	})
}

func TestControlHandler(t *testing.T) {
	Convey("Given a control handler", t, func() {
		svc := newMockService()
		svc.cached = placeholderModel()
		handler := api.NewControlHandler(svc)

		Convey("When selecting a driver", func() {
			req := httptest.NewRequest("POST", "/select", strings.NewReader(`{"driver":"VER"}`))
			w := httptest.NewRecorder()
			handler.HandleSelect(w, req)

			Convey("Then the selection is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(svc.selected, ShouldEqual, "VER")
			})
		})

		Convey("When the select body is malformed", func() {
			req := httptest.NewRequest("POST", "/select", strings.NewReader(`{broken`))
			w := httptest.NewRecorder()
			handler.HandleSelect(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When resetting", func() {
			req := httptest.NewRequest("POST", "/reset", nil)
			w := httptest.NewRecorder()
			handler.HandleReset(w, req)

			Convey("Then the service reset runs once", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(svc.resets, ShouldEqual, 1)
			})
		})

		Convey("When forcing a tick", func() {
			req := httptest.NewRequest("POST", "/tick", nil)
			w := httptest.NewRecorder()
			handler.HandleTick(w, req)

			Convey("Then a fresh model is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(svc.ticks, ShouldEqual, 1)

				var vm view.Model
				So(json.NewDecoder(w.Body).Decode(&vm), ShouldBeNil)
				So(vm.Placeholder, ShouldBeTrue)
			})
		})

		Convey("When using GET on control routes", func() {
			for _, h := range []http.HandlerFunc{handler.HandleSelect, handler.HandleReset, handler.HandleTick} {
				req := httptest.NewRequest("GET", "/", nil)
				w := httptest.NewRecorder()
				h(w, req)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			}
		})
	})
}

func TestChartHandler_HandleGetChart(t *testing.T) {
	Convey("Given a chart handler", t, func() {
		svc := newMockService()
		handler := api.NewChartHandler(svc)

		Convey("When no telemetry has arrived", func() {
			svc.cached = placeholderModel()
			req := httptest.NewRequest("GET", "/chart", nil)
			w := httptest.NewRecorder()
			handler.HandleGetChart(w, req)

			Convey("Then a waiting page is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, "Waiting for telemetry data...")
			})
		})

		Convey("When curves are available", func() {
			svc.cached = plottedModel()
			req := httptest.NewRequest("GET", "/chart", nil)
			w := httptest.NewRecorder()
			handler.HandleGetChart(w, req)

			Convey("Then a rendered chart names each driver series", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "ALO")
				So(body, ShouldContainSubstring, "VER")
				So(body, ShouldContainSubstring, "Race Lap")
			})
		})

		Convey("When a driver is requested explicitly", func() {
			svc.cached = plottedModel()
			svc.adHoc[view.Selection("ALO")] = view.Model{
				Title:  "Tyre Degradation Analysis - ALO",
				XMax:   12,
				Series: []view.Series{{Driver: "ALO", Points: []health.Point{{RaceLap: 1, Health: 100}}}},
			}
			req := httptest.NewRequest("GET", "/chart?driver=ALO", nil)
			w := httptest.NewRecorder()
			handler.HandleGetChart(w, req)

			Convey("Then only that driver's series is rendered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "ALO")
				So(body, ShouldNotContainSubstring, "VER")
			})
		})

		Convey("When using a non-GET method", func() {
			req := httptest.NewRequest("POST", "/chart", nil)
			w := httptest.NewRecorder()
			handler.HandleGetChart(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		svc := newMockService()
		svc.stats = map[string]interface{}{
			"framesIngested":  100,
			"samplesRetained": 250,
		}
		handler := api.NewStatsHandler(svc)

		Convey("When handling a stats request", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then the provider's stats are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp["framesIngested"], ShouldEqual, 100)
				So(resp["samplesRetained"], ShouldEqual, 250)
			})
		})
	})
}
