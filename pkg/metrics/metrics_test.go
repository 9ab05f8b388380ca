package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the service namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "elocompare")
				So(manager.subsystem, ShouldEqual, "viewer")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pfx"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.chartsCreated.Inc()

			Convey("Then metric names should carry namespace, subsystem and prefix", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_pfx_charts_created_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty option values are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "elocompare")
				So(manager.subsystem, ShouldEqual, "viewer")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording fetches", func() {
			before := testutil.ToFloat64(globalManager.fetches.WithLabelValues(KindHistory, OutcomeOK))
			RecordFetch(KindHistory, OutcomeOK, 12)
			RecordFetch(KindHistory, OutcomeSkipped, 0)

			Convey("Then the counter should move", func() {
				after := testutil.ToFloat64(globalManager.fetches.WithLabelValues(KindHistory, OutcomeOK))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When a chart is created then destroyed", func() {
			RecordChartCreated()
			So(testutil.ToFloat64(globalManager.chartsLive), ShouldEqual, 1)
			RecordChartDestroyed()

			Convey("Then no chart should be live", func() {
				So(testutil.ToFloat64(globalManager.chartsLive), ShouldEqual, 0)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateRosterSize(7)
			UpdateActionQueueSize(3)

			Convey("Then they should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.rosterSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.actionQueueSize), ShouldEqual, 3)
			})
		})

		Convey("When process metrics are updated", func() {
			UpdateSystemMemoryUsage(2048)
			UpdateSystemGoroutineCount(12)
			RecordSystemGCPauseTime(0.4)

			Convey("Then the gauges should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.systemMemory), ShouldEqual, 2048)
				So(testutil.ToFloat64(globalManager.systemGoroutines), ShouldEqual, 12)
				So(testutil.CollectAndCount(globalManager.systemGCPause), ShouldEqual, 1)
			})
		})

		Convey("When the registry is gathered", func() {
			RecordViewAction("rendered")
			RecordHTTPRequest("view", "POST", "200")
			families, err := GetRegistry().Gather()

			Convey("Then only service metrics should be present", func() {
				So(err, ShouldBeNil)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "elocompare_viewer_"), ShouldBeTrue)
				}
			})
		})
	})
}
