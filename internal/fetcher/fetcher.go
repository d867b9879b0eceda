// Package fetcher loads SureThing JSON data either from the live API or,
// when the client is served from static hosting, from pre-generated files.
//
// Two operations make up the contract:
//   - Get resolves a logical path through the static map (static mode) or
//     appends it to the API base (dynamic mode) and returns parsed JSON.
//   - JSON sends a JSON body with an arbitrary method to the API base.
//
// A Fetcher is immutable after New and safe for concurrent use. It adds no
// timeout or retry of its own; bound calls with ctx or the HTTP client.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/surething/pkg/logger"
	"github.com/okian/surething/pkg/metrics"
)

// DefaultAPIBase is the local backend address.
const DefaultAPIBase = "http://127.0.0.1:5000/api"

// Config holds the immutable inputs of a Fetcher.
type Config struct {
	// APIBase is prepended verbatim to every dynamic path.
	APIBase string
	// StaticBase resolves relative static map locations when no static
	// FS is configured. Empty means locations are used as given.
	StaticBase string
	// StaticMap maps logical paths to static file locations.
	StaticMap map[string]string
}

// DefaultConfig returns the local backend address and the three generated
// data files.
func DefaultConfig() Config {
	return Config{
		APIBase: DefaultAPIBase,
		StaticMap: map[string]string{
			"/accounts/":   "data/accounts.json",
			"/categories/": "data/categories.json",
			"/requests/":   "data/requests.json",
		},
	}
}

// Fetcher implements Get and JSON over a fixed Config.
type Fetcher struct {
	apiBase    string
	staticBase *url.URL
	staticMap  map[string]string

	probe    Probe
	http     Doer
	staticFS fs.FS
	log      logger.Logger
	metrics  *metrics.Manager
}

// New validates cfg and builds a Fetcher. The static map is copied.
func New(cfg Config, opts ...Option) (*Fetcher, error) {
	if strings.TrimSpace(cfg.APIBase) == "" {
		return nil, fmt.Errorf("%w: api base must not be empty", ErrInvalidConfig)
	}
	f := &Fetcher{
		apiBase:   cfg.APIBase,
		staticMap: maps.Clone(cfg.StaticMap),
		probe:     FixedProbe(ModeDynamic),
		http:      http.DefaultClient,
		log:       logger.Nop(),
		metrics:   metrics.Default(),
	}
	if f.staticMap == nil {
		f.staticMap = map[string]string{}
	}
	if cfg.StaticBase != "" {
		u, err := url.Parse(cfg.StaticBase)
		if err != nil {
			return nil, fmt.Errorf("%w: static base: %v", ErrInvalidConfig, err)
		}
		f.staticBase = u
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Mode reports the mode Get would use right now.
func (f *Fetcher) Mode(ctx context.Context) Mode {
	return f.probe.Mode(ctx)
}

// Get fetches path and returns its parsed JSON body.
//
// In static mode path must be a static map key; otherwise the call fails
// with ErrUnknownPath before any I/O. A non-2xx response fails with a
// *RequestError carrying the raw response text.
func (f *Fetcher) Get(ctx context.Context, path string) (any, error) {
	var v any
	if err := f.GetInto(ctx, path, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetInto is Get decoding into out.
func (f *Fetcher) GetInto(ctx context.Context, path string, out any) error {
	mode := f.probe.Mode(ctx)
	raw, src, err := f.getRaw(ctx, mode, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		f.metrics.RecordFetchError(mode.String(), "decode")
		return fmt.Errorf("%w: %s: %v", ErrDecode, src, err)
	}
	return nil
}

func (f *Fetcher) getRaw(ctx context.Context, mode Mode, p string) ([]byte, string, error) {
	if mode != ModeStatic {
		target := f.apiBase + p
		status, body, err := f.do(ctx, mode, http.MethodGet, target, nil)
		if err != nil {
			return nil, target, err
		}
		if !ok(status) {
			return nil, target, &RequestError{Method: http.MethodGet, URL: target, StatusCode: status, Message: string(body)}
		}
		return body, target, nil
	}

	loc, found := f.staticMap[p]
	if !found {
		f.metrics.RecordFetchError(mode.String(), "unknown_path")
		return nil, p, fmt.Errorf("%w: %q", ErrUnknownPath, p)
	}
	if f.staticFS != nil {
		body, err := f.readStatic(ctx, loc)
		return body, loc, err
	}

	target := f.resolveStatic(loc)
	status, body, err := f.do(ctx, mode, http.MethodGet, target, nil)
	if err != nil {
		return nil, target, err
	}
	if !ok(status) {
		return nil, target, &RequestError{Method: http.MethodGet, URL: target, StatusCode: status, Message: string(body)}
	}
	return body, target, nil
}

func (f *Fetcher) resolveStatic(loc string) string {
	if f.staticBase == nil {
		return loc
	}
	ref, err := url.Parse(loc)
	if err != nil {
		return loc
	}
	return f.staticBase.ResolveReference(ref).String()
}

func (f *Fetcher) readStatic(ctx context.Context, loc string) ([]byte, error) {
	start := time.Now()
	name := path.Clean(strings.TrimLeft(loc, "/"))
	body, err := fs.ReadFile(f.staticFS, name)
	switch {
	case err == nil:
		f.metrics.ObserveFetch(ModeStatic.String(), http.MethodGet, http.StatusOK, time.Since(start))
		f.log.Debug(ctx, "static read", logger.String("file", name), logger.Int("bytes", len(body)))
		return body, nil
	case errors.Is(err, fs.ErrNotExist):
		f.metrics.ObserveFetch(ModeStatic.String(), http.MethodGet, http.StatusNotFound, time.Since(start))
		f.metrics.RecordFetchError(ModeStatic.String(), "status")
		return nil, &RequestError{Method: http.MethodGet, URL: name, StatusCode: http.StatusNotFound, Message: err.Error()}
	default:
		f.metrics.RecordFetchError(ModeStatic.String(), "read")
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
}

// JSON sends body as JSON with method to the API base plus path and returns
// the parsed response.
//
// A nil body is sent as {}. The response is read as text first and an empty
// or unparseable body yields a nil result rather than an error. On a non-2xx
// status the returned *RequestError message is the body's "error" field,
// else the raw text, else "request failed".
func (f *Fetcher) JSON(ctx context.Context, path, method string, body any) (any, error) {
	raw, err := f.jsonRaw(ctx, path, method, body)
	if err != nil || raw == nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return v, nil
}

// JSONInto is JSON decoding into out. A null or unparseable response
// leaves out untouched.
func (f *Fetcher) JSONInto(ctx context.Context, path, method string, body, out any) error {
	raw, err := f.jsonRaw(ctx, path, method, body)
	if err != nil || raw == nil || out == nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		f.metrics.RecordFetchError(ModeDynamic.String(), "decode")
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func (f *Fetcher) jsonRaw(ctx context.Context, p, method string, body any) (json.RawMessage, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	payload := []byte("{}")
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			f.metrics.RecordFetchError(ModeDynamic.String(), "encode")
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		payload = b
	}

	target := f.apiBase + p
	status, text, err := f.do(ctx, ModeDynamic, method, target, payload)
	if err != nil {
		return nil, err
	}

	raw := parseLenient(text)
	if !ok(status) {
		return nil, &RequestError{Method: method, URL: target, StatusCode: status, Message: failureMessage(raw, text)}
	}
	return raw, nil
}

// parseLenient returns text when it is a JSON document other than null, and
// nil otherwise. Parse failure yields a null body by policy.
func parseLenient(text []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 || !json.Valid(trimmed) || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return json.RawMessage(trimmed)
}

// failureMessage picks the parsed "error" field, the raw text, or the
// fallback, in that order. Falsy error values (empty string, 0, false,
// null) are skipped.
func failureMessage(raw json.RawMessage, text []byte) string {
	if raw != nil {
		var obj map[string]json.RawMessage
		if json.Unmarshal(raw, &obj) == nil {
			if msg, found := errorField(obj["error"]); found {
				return msg
			}
		}
	}
	if len(text) > 0 {
		return string(text)
	}
	return fallbackMessage
}

func errorField(field json.RawMessage) (string, bool) {
	if field == nil {
		return "", false
	}
	var v any
	if err := json.Unmarshal(field, &v); err != nil {
		return "", false
	}
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		if !x {
			return "", false
		}
	case float64:
		if x == 0 {
			return "", false
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, field); err != nil {
		return string(field), true
	}
	return buf.String(), true
}

// do performs one HTTP exchange and returns the status and full body.
// Transport failures are returned as errors; any status is not.
func (f *Fetcher) do(ctx context.Context, mode Mode, method, target string, payload []byte) (int, []byte, error) {
	reqID := uuid.NewString()
	start := time.Now()

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		f.metrics.RecordFetchError(mode.String(), "request")
		return 0, nil, fmt.Errorf("create request %s %s: %w", method, target, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.http.Do(req)
	if err != nil {
		f.metrics.ObserveFetch(mode.String(), method, 0, time.Since(start))
		f.metrics.RecordFetchError(mode.String(), "transport")
		f.log.Debug(ctx, "fetch failed",
			logger.String("request_id", reqID),
			logger.String("method", method),
			logger.String("url", target),
			logger.Error(err))
		return 0, nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	f.metrics.ObserveFetch(mode.String(), method, resp.StatusCode, elapsed)
	if err != nil {
		f.metrics.RecordFetchError(mode.String(), "read")
		return 0, nil, fmt.Errorf("read response %s %s: %w", method, target, err)
	}
	if !ok(resp.StatusCode) {
		f.metrics.RecordFetchError(mode.String(), "status")
	}

	f.log.Debug(ctx, "fetch",
		logger.String("request_id", reqID),
		logger.String("mode", mode.String()),
		logger.String("method", method),
		logger.String("url", target),
		logger.Int("status", resp.StatusCode),
		logger.Int("bytes", len(body)),
		logger.Duration("elapsed", elapsed))
	return resp.StatusCode, body, nil
}

func ok(status int) bool {
	return status >= 200 && status <= 299
}
