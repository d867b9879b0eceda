package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "SURETHING_"
	envFileKey = "SURETHING_CONFIG"

	metricsLabelsKey = "metrics_labels"
	labelsEnvPrefix  = metricsLabelsKey + "_"
)

// listKeys are comma separated when they come from the environment.
var listKeys = map[string]bool{
	"static_host_suffixes": true,
	"static_ports":         true,
	"metrics_buckets_ms":   true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SURETHING_CONFIG is set
//  3. env (prefix SURETHING_)
//
// Lists given by the file or env replace the defaults; static_map and
// metrics_labels entries are merged over the default maps.
func Load(_ context.Context) (*Config, error) {
	cfg := New()
	k := koanf.New(".")

	if path := os.Getenv(envFileKey); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// SURETHING_API_BASE -> api_base, SURETHING_STATIC_PORTS=5500,8080 -> []string.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		// SURETHING_METRICS_LABELS_ENV=prod -> metrics_labels.env
		if name, ok := strings.CutPrefix(key, labelsEnvPrefix); ok && name != "" {
			return metricsLabelsKey + "." + name, value
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	for key := range listKeys {
		if k.Exists(key) {
			switch key {
			case "static_host_suffixes":
				cfg.StaticHostSuffixes = nil
			case "static_ports":
				cfg.StaticPorts = nil
			case "metrics_buckets_ms":
				cfg.MetricsBucketsMS = nil
			}
		}
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
