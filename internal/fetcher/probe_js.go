//go:build js && wasm

package fetcher

import (
	"context"
	"syscall/js"
)

// LocationProbe classifies the page the wasm module runs in by reading
// window.location.
type LocationProbe struct {
	StaticSuffixes []string
	StaticPorts    []string
}

// Mode implements Probe.
func (p LocationProbe) Mode(ctx context.Context) Mode {
	loc := js.Global().Get("location")
	if loc.IsUndefined() || loc.IsNull() {
		return ModeDynamic
	}
	suffixes, ports := p.StaticSuffixes, p.StaticPorts
	if suffixes == nil {
		suffixes = DefaultStaticSuffixes
	}
	if ports == nil {
		ports = DefaultStaticPorts
	}
	return HostProbe{
		Hostname:       loc.Get("hostname").String(),
		Port:           loc.Get("port").String(),
		StaticSuffixes: suffixes,
		StaticPorts:    ports,
	}.Mode(ctx)
}
