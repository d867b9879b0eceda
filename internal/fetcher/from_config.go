package fetcher

import (
	"fmt"
	"net/http"

	"github.com/okian/surething/internal/config"
)

// NewFromConfig builds a Fetcher from process configuration. A forced mode
// yields a FixedProbe; auto mode classifies cfg.PageURL with a HostProbe.
// Static locations resolve against cfg.StaticBase, or cfg.PageURL when that
// is empty. Options given by the caller are applied last.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Fetcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}

	var probe Probe
	switch cfg.Mode {
	case config.ModeStatic:
		probe = FixedProbe(ModeStatic)
	case config.ModeDynamic:
		probe = FixedProbe(ModeDynamic)
	case config.ModeAuto, "":
		hp, err := NewHostProbe(cfg.PageURL, cfg.StaticHostSuffixes, cfg.StaticPorts)
		if err != nil {
			return nil, err
		}
		probe = hp
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, cfg.Mode)
	}

	base := []Option{
		WithProbe(probe),
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
	}
	staticBase := cfg.StaticBase
	if staticBase == "" && cfg.Mode != config.ModeDynamic {
		staticBase = cfg.PageURL
	}
	return New(Config{
		APIBase:    cfg.APIBase,
		StaticBase: staticBase,
		StaticMap:  cfg.StaticMap,
	}, append(base, opts...)...)
}
