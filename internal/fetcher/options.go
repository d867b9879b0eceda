package fetcher

import (
	"io/fs"
	"net/http"

	"github.com/okian/surething/pkg/logger"
	"github.com/okian/surething/pkg/metrics"
)

// Doer is the subset of *http.Client the fetcher needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithProbe sets the environment probe. The default always reports dynamic mode.
func WithProbe(p Probe) Option {
	return func(f *Fetcher) {
		if p != nil {
			f.probe = p
		}
	}
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c Doer) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.http = c
		}
	}
}

// WithStaticFS serves static-mode reads from fsys instead of HTTP.
// Static map locations are treated as slash-separated paths inside fsys.
func WithStaticFS(fsys fs.FS) Option {
	return func(f *Fetcher) {
		f.staticFS = fsys
	}
}

// WithLogger sets the logger used for per-request debug records.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// WithMetrics records fetches on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(f *Fetcher) {
		if m != nil {
			f.metrics = m
		}
	}
}
