// Package config defines client and static-server configuration.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers an optional YAML file and SURETHING_* env vars on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Mode values accepted by the mode key.
const (
	ModeAuto    = "auto"
	ModeStatic  = "static"
	ModeDynamic = "dynamic"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// APIBase is the dynamic backend base URL; paths are appended verbatim.
	APIBase string `koanf:"api_base"`

	// StaticBase is the URL static map locations are resolved against.
	// Empty means PageURL, the way a browser resolves them against the page.
	StaticBase string `koanf:"static_base"`

	// PageURL is the address the client is considered to be served from.
	// Host and port drive static/dynamic detection when Mode is auto, and
	// static files resolve against it unless StaticBase is set.
	PageURL string `koanf:"page_url"`

	// Mode forces static or dynamic mode; auto defers to PageURL.
	Mode string `koanf:"mode"`

	// StaticHostSuffixes mark static hosting by hostname suffix.
	StaticHostSuffixes []string `koanf:"static_host_suffixes"`

	// StaticPorts mark static dev servers by port.
	StaticPorts []string `koanf:"static_ports"`

	// StaticMap maps logical paths to static file locations.
	StaticMap map[string]string `koanf:"static_map"`

	// TimeoutMS bounds each request; 0 disables the client-side timeout.
	TimeoutMS int `koanf:"timeout_ms"`

	// DataDir is the directory the static server exposes; empty serves the
	// embedded sample data.
	DataDir string `koanf:"data_dir"`

	// Addr is the static server listen address.
	Addr string `koanf:"addr"`

	// Metrics naming. Collectors are named namespace_subsystem_*.
	MetricsNamespace string            `koanf:"metrics_namespace"`
	MetricsSubsystem string            `koanf:"metrics_subsystem"`
	MetricsLabels    map[string]string `koanf:"metrics_labels"`
	// MetricsBucketsMS are the latency histogram buckets in milliseconds;
	// empty keeps the built-in ones.
	MetricsBucketsMS []float64 `koanf:"metrics_buckets_ms"`
}

var metricNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		APIBase:            "http://127.0.0.1:5000/api",
		PageURL:            "http://127.0.0.1:5000/",
		Mode:               ModeAuto,
		StaticHostSuffixes: []string{"github.io"},
		StaticPorts:        []string{"5500"},
		StaticMap: map[string]string{
			"/accounts/":   "data/accounts.json",
			"/categories/": "data/categories.json",
			"/requests/":   "data/requests.json",
		},
		TimeoutMS:        0,
		DataDir:          "",
		Addr:             ":5500",
		MetricsNamespace: "surething",
		MetricsSubsystem: "client",
		MetricsLabels:    map[string]string{},
	}
}

// Timeout returns TimeoutMS as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Validate checks the fields the client cannot work without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBase) == "" {
		return fmt.Errorf("%w: api_base must not be empty", ErrInvalidConfig)
	}
	if _, err := url.Parse(c.APIBase); err != nil {
		return fmt.Errorf("%w: api_base: %v", ErrInvalidConfig, err)
	}
	if c.StaticBase != "" {
		if _, err := url.Parse(c.StaticBase); err != nil {
			return fmt.Errorf("%w: static_base: %v", ErrInvalidConfig, err)
		}
	}
	switch c.Mode {
	case ModeAuto, ModeStatic, ModeDynamic:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.Mode == ModeAuto || (c.Mode == ModeStatic && c.StaticBase == "") {
		if _, err := url.Parse(c.PageURL); err != nil {
			return fmt.Errorf("%w: page_url: %v", ErrInvalidConfig, err)
		}
	}
	if c.TimeoutMS < 0 {
		return fmt.Errorf("%w: timeout_ms must not be negative", ErrInvalidConfig)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	return c.validateMetrics()
}

func (c *Config) validateMetrics() error {
	if !metricNameRe.MatchString(c.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q is not a metric name", ErrInvalidConfig, c.MetricsNamespace)
	}
	if c.MetricsSubsystem != "" && !metricNameRe.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics_subsystem %q is not a metric name", ErrInvalidConfig, c.MetricsSubsystem)
	}
	for name := range c.MetricsLabels {
		if !metricNameRe.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels key %q is not a label name", ErrInvalidConfig, name)
		}
	}
	for i := 1; i < len(c.MetricsBucketsMS); i++ {
		if c.MetricsBucketsMS[i] <= c.MetricsBucketsMS[i-1] {
			return fmt.Errorf("%w: metrics_buckets_ms must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
