package cli

import "io"

// ShowHelp writes usage to w.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Surething Fetch Tool
====================

Fetches a resource through the data fetcher. In static mode logical paths
are mapped to pre-generated JSON files; in dynamic mode they are appended to
the API base URL.

Usage:
  go run cmd/fetch/main.go [options] PATH

Options:
  -method string
        HTTP method (default "GET"); anything but a bare GET sends a JSON body
  -body string
        JSON request body (default {})
  -mode string
        auto, static or dynamic (default from config)
  -api string
        API base URL (default "http://127.0.0.1:5000/api")
  -page string
        Page URL used to detect static hosting in auto mode
  -static-base string
        URL static files are resolved against (default: the page URL)
  -data string
        Directory holding static files (default: fetch them over HTTP)
  -timeout duration
        Request timeout (default: none)
  -output string
        Write the result to a file instead of stdout
  -log-level string
        debug, info, warn or error (default "info")
  -help
        Show this help message

Environment:
  SURETHING_CONFIG    optional YAML config file
  SURETHING_*         overrides any config key, e.g. SURETHING_API_BASE

Examples:
  # List categories from the local backend
  go run cmd/fetch/main.go /categories/

  # Read accounts from the static data set
  go run cmd/fetch/main.go -mode static -data ./public /accounts/

  # Create a category
  go run cmd/fetch/main.go -method POST -body '{"name":"Food"}' /categories/
`)
}
