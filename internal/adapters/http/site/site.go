// Package site serves pre-generated JSON data the way static hosting does,
// so clients can be exercised in static mode locally.
package site

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/surething/pkg/logger"
	"github.com/okian/surething/pkg/metrics"
)

//go:embed static
var staticFS embed.FS

// SampleFS returns the embedded sample tree (data/accounts.json, ...).
func SampleFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return staticFS
	}
	return sub
}

// Register attaches the file server at / and metrics at /healthz. A nil
// root serves SampleFS.
func Register(ctx context.Context, mux *http.ServeMux, root fs.FS, log logger.Logger) {
	if mux == nil {
		panic("mux is nil")
	}
	if root == nil {
		root = SampleFS()
	}
	if log == nil {
		log = logger.Nop()
	}

	files := http.FileServerFS(root)
	mux.Handle("/", Middleware(withCORS(files), "files", log))
	mux.Handle("/healthz", Middleware(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}), "healthz", log))
	log.Debug(ctx, "static site routes registered")
}

// withCORS lets pages on other origins read the data, matching the backend.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}
