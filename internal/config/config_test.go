package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/surething/internal/config"
	"github.com/okian/surething/pkg/metrics"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it points at the local backend", func() {
			convey.So(cfg.APIBase, convey.ShouldEqual, "http://127.0.0.1:5000/api")
			convey.So(cfg.Mode, convey.ShouldEqual, config.ModeAuto)
			convey.So(cfg.StaticHostSuffixes, convey.ShouldResemble, []string{"github.io"})
			convey.So(cfg.StaticPorts, convey.ShouldResemble, []string{"5500"})
			convey.So(cfg.Addr, convey.ShouldEqual, ":5500")
			convey.So(cfg.StaticBase, convey.ShouldBeEmpty)
			convey.So(cfg.Timeout(), convey.ShouldEqual, time.Duration(0))
		})

		convey.Convey("And it carries the three static resources", func() {
			convey.So(cfg.StaticMap, convey.ShouldResemble, map[string]string{
				"/accounts/":   "data/accounts.json",
				"/categories/": "data/categories.json",
				"/requests/":   "data/requests.json",
			})
		})

		convey.Convey("And it validates", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When api_base is blank", func() {
			cfg.APIBase = "  "
			err := cfg.Validate()

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "api_base")
			})
		})

		convey.Convey("When the mode is unknown", func() {
			cfg.Mode = "hybrid"
			err := cfg.Validate()

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "hybrid")
			})
		})

		convey.Convey("When the page url is malformed in auto mode", func() {
			cfg.PageURL = "http://[::1"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)

			convey.Convey("Then forcing a mode skips the page url", func() {
				cfg.Mode = config.ModeDynamic
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})

			convey.Convey("Then static mode still needs it to resolve files", func() {
				cfg.Mode = config.ModeStatic
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)

				cfg.StaticBase = "https://cdn.example.org/surething/"
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the timeout is negative", func() {
			cfg.TimeoutMS = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When addr is empty", func() {
			cfg.Addr = ""
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When metric naming is invalid", func() {
			bad := []func(){
				func() { cfg.MetricsNamespace = "" },
				func() { cfg.MetricsNamespace = "sure-thing" },
				func() { cfg.MetricsSubsystem = "9lives" },
				func() { cfg.MetricsLabels = map[string]string{"__name": "x"} },
				func() { cfg.MetricsBucketsMS = []float64{10, 5} },
			}
			for _, mutate := range bad {
				c := *config.New()
				cfg = &c
				mutate()
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}

func TestConfig_MetricsOptions(t *testing.T) {
	convey.Convey("Given metric naming in the config", t, func() {
		cfg := config.New()
		cfg.MetricsNamespace = "site"
		cfg.MetricsSubsystem = "dev"
		cfg.MetricsLabels = map[string]string{"env": "ci"}
		cfg.MetricsBucketsMS = []float64{5, 50}

		convey.Convey("When a manager is built from it", func() {
			reg := prometheus.NewRegistry()
			m := metrics.NewManager(append(cfg.MetricsOptions(), metrics.WithPrometheusRegistry(reg))...)
			m.ObserveHTTP("files", "GET", 200, time.Millisecond)

			convey.Convey("Then collectors carry the configured names and labels", func() {
				families, err := reg.Gather()
				convey.So(err, convey.ShouldBeNil)
				var names []string
				for _, mf := range families {
					names = append(names, mf.GetName())
					for _, metric := range mf.GetMetric() {
						labels := map[string]string{}
						for _, lp := range metric.GetLabel() {
							labels[lp.GetName()] = lp.GetValue()
						}
						convey.So(labels["env"], convey.ShouldEqual, "ci")
					}
				}
				convey.So(names, convey.ShouldContain, "site_dev_http_requests_total")
				n, err := testutil.GatherAndCount(reg, "site_dev_http_request_duration_milliseconds")
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 1)
			})
		})
	})
}
