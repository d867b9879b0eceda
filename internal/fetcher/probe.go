package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Mode says where data comes from.
type Mode int

const (
	// ModeDynamic issues live requests against the API base.
	ModeDynamic Mode = iota
	// ModeStatic reads pre-generated JSON files through the static map.
	ModeStatic
)

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeDynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Probe classifies the hosting environment. Implementations must not have
// side effects.
type Probe interface {
	Mode(ctx context.Context) Mode
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(ctx context.Context) Mode

// Mode calls f.
func (f ProbeFunc) Mode(ctx context.Context) Mode { return f(ctx) }

// FixedProbe always reports the same mode.
type FixedProbe Mode

// Mode returns p.
func (p FixedProbe) Mode(context.Context) Mode { return Mode(p) }

// Default markers for static hosting.
var (
	DefaultStaticSuffixes = []string{"github.io"}
	DefaultStaticPorts    = []string{"5500"}
)

// HostProbe reports static mode when Hostname ends with one of
// StaticSuffixes or Port equals one of StaticPorts.
type HostProbe struct {
	Hostname       string
	Port           string
	StaticSuffixes []string
	StaticPorts    []string
}

// NewHostProbe builds a HostProbe from the address the client is served
// from. Nil marker lists fall back to the defaults; empty lists disable
// that rule.
func NewHostProbe(pageURL string, suffixes, ports []string) (HostProbe, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return HostProbe{}, fmt.Errorf("%w: page url: %v", ErrInvalidConfig, err)
	}
	if suffixes == nil {
		suffixes = DefaultStaticSuffixes
	}
	if ports == nil {
		ports = DefaultStaticPorts
	}
	return HostProbe{
		Hostname:       u.Hostname(),
		Port:           u.Port(),
		StaticSuffixes: suffixes,
		StaticPorts:    ports,
	}, nil
}

// Mode implements Probe.
func (p HostProbe) Mode(context.Context) Mode {
	host := strings.ToLower(p.Hostname)
	for _, s := range p.StaticSuffixes {
		if s != "" && strings.HasSuffix(host, strings.ToLower(s)) {
			return ModeStatic
		}
	}
	if p.Port != "" && slices.Contains(p.StaticPorts, p.Port) {
		return ModeStatic
	}
	return ModeDynamic
}
