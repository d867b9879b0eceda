package metrics

import (
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager. Zero values keep the defaults.
type Option func(*Manager)

// WithNamespace prefixes every collector name, e.g. "surething".
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithSubsystem sits between namespace and name, e.g. "client".
func WithSubsystem(sub string) Option {
	return func(m *Manager) {
		if sub != "" {
			m.subsystem = sub
		}
	}
}

// WithHistogramBuckets sets the latency buckets, in milliseconds. They must
// be strictly increasing.
func WithHistogramBuckets(ms []float64) Option {
	return func(m *Manager) {
		if len(ms) > 0 {
			m.histogramBuckets = slices.Clone(ms)
		}
	}
}

// WithConstLabels adds labels carried by every series, such as the
// deployment a client runs in.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.constLabels = maps.Clone(labels)
		}
	}
}

// WithPrometheusRegistry registers collectors on r instead of the default
// registerer.
func WithPrometheusRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}
