// Package metrics provides Prometheus metrics for the SureThing data client.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the client and static-server collectors.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Fetcher
	fetchRequests *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec

	// Static dev server
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var (
	globalMu       sync.RWMutex         //nolint:gochecknoglobals // guards the two below
	globalManager  *Manager             //nolint:gochecknoglobals // process-wide metrics singleton
	customRegistry *prometheus.Registry //nolint:gochecknoglobals // keeps default Go collectors out
)

func init() { //nolint:gochecknoinits // global metrics setup
	Init()
}

// Init replaces the global manager with one built from opts on a fresh
// registry and returns it. Components capture Default and GetRegistry when
// they are built, so call Init first.
func Init(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	opts = append(opts[:len(opts):len(opts)], WithPrometheusRegistry(reg))
	m := NewManager(opts...)

	globalMu.Lock()
	globalManager, customRegistry = m, reg
	globalMu.Unlock()
	return m
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "surething",
		subsystem:        "client",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.fetchRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_requests_total",
		Help:        "Total number of completed fetches by mode, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"mode", "method", "status_code"})

	m.fetchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_duration_milliseconds",
		Help:        "Fetch latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"mode", "method"})

	m.fetchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_errors_total",
		Help:        "Total number of failed fetches by mode and error kind",
		ConstLabels: m.constLabels,
	}, []string{"mode", "kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of static server requests by endpoint, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "Static server request latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// ObserveFetch records a fetch that produced an HTTP status (or 0 when none).
func (m *Manager) ObserveFetch(mode, method string, status int, d time.Duration) {
	m.fetchRequests.WithLabelValues(mode, method, strconv.Itoa(status)).Inc()
	m.fetchDuration.WithLabelValues(mode, method).Observe(millis(d))
}

// RecordFetchError counts a failed fetch.
func (m *Manager) RecordFetchError(mode, kind string) {
	m.fetchErrors.WithLabelValues(mode, kind).Inc()
}

// ObserveHTTP records one static server request.
func (m *Manager) ObserveHTTP(endpoint, method string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(millis(d))
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Default returns the process-wide manager backed by GetRegistry.
func Default() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// ObserveHTTP records a static server request on the global manager.
func ObserveHTTP(endpoint, method string, status int, d time.Duration) {
	Default().ObserveHTTP(endpoint, method, status, d)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return customRegistry
}
