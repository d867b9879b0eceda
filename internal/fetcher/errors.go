package fetcher

import "errors"

// Sentinel error kinds. RequestError unwraps to ErrRequest.
var (
	ErrRequest       = errors.New("request failed")
	ErrUnknownPath   = errors.New("path not in static map")
	ErrDecode        = errors.New("decode response")
	ErrEncode        = errors.New("encode request body")
	ErrInvalidConfig = errors.New("invalid fetcher config")
)

// fallbackMessage is used when a failed JSON request has neither an error
// field nor any response text.
const fallbackMessage = "request failed"

// RequestError reports a response whose status was not 2xx.
// Error returns Message alone so callers see exactly what the server said.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string { return e.Message }

// Unwrap lets errors.Is(err, ErrRequest) match.
func (e *RequestError) Unwrap() error { return ErrRequest }
