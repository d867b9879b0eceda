package config

import "github.com/okian/surething/pkg/metrics"

// MetricsOptions turns the metrics_* keys into manager options.
func (c *Config) MetricsOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(c.MetricsNamespace),
		metrics.WithSubsystem(c.MetricsSubsystem),
		metrics.WithConstLabels(c.MetricsLabels),
		metrics.WithHistogramBuckets(c.MetricsBucketsMS),
	}
}
