package config

import "errors"

// Sentinel errors; Load and Validate wrap these so callers can use errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
