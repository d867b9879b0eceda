// Package cli implements the fetch command.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/okian/surething/internal/config"
	"github.com/okian/surething/internal/fetcher"
	"github.com/okian/surething/pkg/logger"
	"github.com/okian/surething/pkg/metrics"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const outputFilePermission = 0o600

// Options are the parsed command line.
type Options struct {
	Path       string
	Method     string
	Body       string
	Mode       string
	APIBase    string
	PageURL    string
	StaticBase string
	Timeout    time.Duration
	Output     string
	DataDir    string
	LogLevel   string
}

// ParseArgs parses args (without the program name).
func ParseArgs(args []string, stderr io.Writer) (*Options, error) {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { ShowHelp(stderr) }

	o := &Options{}
	fs.StringVar(&o.Method, "method", http.MethodGet, "HTTP method; anything but GET without -body goes through the JSON call")
	fs.StringVar(&o.Body, "body", "", "JSON request body")
	fs.StringVar(&o.Mode, "mode", "", "auto, static or dynamic (default from config)")
	fs.StringVar(&o.APIBase, "api", "", "API base URL (default from config)")
	fs.StringVar(&o.PageURL, "page", "", "page URL used for static detection (default from config)")
	fs.StringVar(&o.StaticBase, "static-base", "", "URL static files are resolved against (default: the page URL)")
	fs.DurationVar(&o.Timeout, "timeout", 0, "request timeout (default from config, 0 = none)")
	fs.StringVar(&o.DataDir, "data", "", "read static mode files from this directory instead of over HTTP")
	fs.StringVar(&o.Output, "output", "", "write the result to this file instead of stdout")
	fs.StringVar(&o.LogLevel, "log-level", "", "debug, info, warn or error (default from config)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		ShowHelp(stderr)
		return nil, fmt.Errorf("expected exactly one PATH, got %d", fs.NArg())
	}
	o.Path = fs.Arg(0)
	o.Method = strings.ToUpper(strings.TrimSpace(o.Method))
	if o.Body != "" && !json.Valid([]byte(o.Body)) {
		return nil, errors.New("-body is not valid JSON")
	}
	return o, nil
}

// apply layers command line overrides on cfg.
func (o *Options) apply(cfg *config.Config) error {
	if o.Mode != "" {
		cfg.Mode = strings.ToLower(o.Mode)
	}
	if o.APIBase != "" {
		cfg.APIBase = o.APIBase
	}
	if o.PageURL != "" {
		cfg.PageURL = o.PageURL
	}
	if o.StaticBase != "" {
		cfg.StaticBase = o.StaticBase
	}
	if o.Timeout > 0 {
		cfg.TimeoutMS = int(o.Timeout / time.Millisecond)
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	return cfg.Validate()
}

// Run executes the fetch command and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := ParseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, "fetch:", err)
		return ExitUsage
	}

	if err := logger.Init(logger.WithWriter(stderr), logger.WithSource(false)); err != nil {
		fmt.Fprintln(stderr, "fetch: init logger:", err)
		return ExitFailure
	}
	log := logger.Named("fetch")

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "fetch:", err)
		return ExitFailure
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Fprintln(stderr, "fetch:", err)
		return ExitUsage
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	fopts := []fetcher.Option{
		fetcher.WithLogger(log),
		fetcher.WithMetrics(metrics.Init(cfg.MetricsOptions()...)),
	}
	if cfg.DataDir != "" {
		fopts = append(fopts, fetcher.WithStaticFS(os.DirFS(cfg.DataDir)))
	}
	f, err := fetcher.NewFromConfig(cfg, fopts...)
	if err != nil {
		fmt.Fprintln(stderr, "fetch:", err)
		return ExitFailure
	}
	log.Debug(ctx, "fetching",
		logger.String("path", opts.Path),
		logger.String("method", opts.Method),
		logger.String("mode", f.Mode(ctx).String()))

	result, err := fetch(ctx, f, opts)
	if err != nil {
		var reqErr *fetcher.RequestError
		if errors.As(err, &reqErr) {
			log.Debug(ctx, "request failed", logger.Int("status", reqErr.StatusCode), logger.String("url", reqErr.URL))
		}
		fmt.Fprintln(stderr, "fetch:", err)
		return ExitFailure
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(stderr, "fetch: encode result:", err)
		return ExitFailure
	}
	out = append(out, '\n')

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, out, outputFilePermission); err != nil {
			fmt.Fprintln(stderr, "fetch: write output:", err)
			return ExitFailure
		}
		log.Info(ctx, "result written", logger.String("file", opts.Output), logger.Int("bytes", len(out)))
		return ExitOK
	}
	_, _ = stdout.Write(out)
	return ExitOK
}

// fetch picks Get for plain GETs and JSON otherwise.
func fetch(ctx context.Context, f *fetcher.Fetcher, o *Options) (any, error) {
	if o.Method == http.MethodGet && o.Body == "" {
		return f.Get(ctx, o.Path)
	}
	return f.JSON(ctx, o.Path, o.Method, requestBody(o.Body))
}

// requestBody returns nil for an absent or null body so it is sent as {}.
func requestBody(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	return json.RawMessage(raw)
}
