package config

import "errors"

// Common errors for configuration validation.
var (
	ErrOutOfRange = errors.New("config: value out of range")
	ErrBadValue   = errors.New("config: unsupported value")
)
