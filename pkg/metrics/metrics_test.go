package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it registers the fetch collectors", func() {
				So(m, ShouldNotBeNil)
				m.ObserveFetch("dynamic", "GET", 200, 5*time.Millisecond)
				n, err := testutil.GatherAndCount(registry, "surething_client_fetch_requests_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("fetch"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.RecordFetchError("static", "unknown_path")

			Convey("Then metric names follow the namespace and subsystem", func() {
				n, err := testutil.GatherAndCount(registry, "test_fetch_fetch_errors_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithConstLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "surething")
				So(m.subsystem, ShouldEqual, "client")
				So(len(m.histogramBuckets), ShouldBeGreaterThan, 0)
				So(m.constLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When fetches are observed", func() {
			m.ObserveFetch("static", "GET", 200, time.Millisecond)
			m.ObserveFetch("static", "GET", 200, time.Millisecond)
			m.ObserveFetch("dynamic", "POST", 400, time.Millisecond)

			Convey("Then counters are split by labels", func() {
				So(testutil.ToFloat64(m.fetchRequests.WithLabelValues("static", "GET", "200")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.fetchRequests.WithLabelValues("dynamic", "POST", "400")), ShouldEqual, 1)
			})
		})

		Convey("When errors are recorded", func() {
			m.RecordFetchError("dynamic", "status")

			Convey("Then the error counter increments", func() {
				So(testutil.ToFloat64(m.fetchErrors.WithLabelValues("dynamic", "status")), ShouldEqual, 1)
			})
		})

		Convey("When static server requests are observed", func() {
			m.ObserveHTTP("files", "GET", 404, 2*time.Millisecond)

			Convey("Then the request counter increments", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("files", "GET", "404")), ShouldEqual, 1)
			})
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given configured metric naming", t, func() {
		before := GetRegistry()
		m := Init(
			WithNamespace("site"),
			WithSubsystem("dev"),
			WithConstLabels(map[string]string{"env": "ci"}),
			WithHistogramBuckets([]float64{1, 10}),
		)
		Reset(func() { Init() })

		Convey("Then the global manager and registry are replaced", func() {
			So(Default(), ShouldEqual, m)
			So(GetRegistry(), ShouldNotEqual, before)
		})

		Convey("And the global helper records under the new names", func() {
			ObserveHTTP("files", "GET", 200, 3*time.Millisecond)
			n, err := testutil.GatherAndCount(GetRegistry(), "site_dev_http_requests_total")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			So(m.histogramBuckets, ShouldResemble, []float64{1, 10})
			So(m.constLabels, ShouldResemble, map[string]string{"env": "ci"})
		})

		Convey("And calling Init again does not collide with earlier collectors", func() {
			So(func() { Init(WithNamespace("site"), WithSubsystem("dev")) }, ShouldNotPanic)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the package helpers do not panic", func() {
			So(func() {
				Default().ObserveFetch("dynamic", "GET", 200, time.Millisecond)
				Default().RecordFetchError("dynamic", "transport")
				ObserveHTTP("healthz", "GET", 200, time.Millisecond)
			}, ShouldNotPanic)
		})

		Convey("And Default shares the custom registry", func() {
			So(Default(), ShouldNotBeNil)
			Default().ObserveFetch("static", "GET", 200, time.Millisecond)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
