package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When applying them to a manager", func() {
			reg := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("testns"),
				WithSubsystem("testsub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(reg),
			)

			Convey("Then the manager carries the configured values", func() {
				So(m, ShouldNotBeNil)
				So(m.namespace, ShouldEqual, "testns")
				So(m.subsystem, ShouldEqual, "testsub")
				So(m.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When applying empty values", func() {
			reg := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(reg),
			)

			Convey("Then the defaults survive", func() {
				So(m.namespace, ShouldEqual, "tyretrace")
				So(m.subsystem, ShouldEqual, "core")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the package-global manager", t, func() {
		Convey("When recording through the helper functions", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordFrameIngested()
					RecordFrameDuplicate()
					RecordFrameDropped()
					RecordSamplesRecorded(20)
					RecordSamplesEvicted(5)
					UpdateDriversTracked(3)
					UpdateStoreSamples(42)
					RecordViewRebuild(1.2)
					UpdateStintsDerived(7)
					UpdateQueueSize(10)
					UpdateQueueCapacity(100)
					RecordHTTPRequest("view", "GET", "200")
					RecordHTTPRequestDuration("view", "GET", "200", 0.8)
				}, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			Convey("Then the custom registry is exposed", func() {
				So(GetRegistry(), ShouldNotBeNil)
			})
		})

		Convey("When gathering from the registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then the service metrics are registered", func() {
				So(err, ShouldBeNil)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["tyretrace_core_frames_ingested_total"], ShouldBeTrue)
				So(names["tyretrace_core_view_rebuild_duration_milliseconds"], ShouldBeTrue)
				So(names["tyretrace_core_http_requests_total"], ShouldBeTrue)
			})
		})
	})
}
