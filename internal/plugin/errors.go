package plugin

import "errors"

// Common errors for hook execution.
var (
	ErrBadHookReturn = errors.New("plugin: unsupported hook return value")
	ErrHookTimeout   = errors.New("plugin: hook timed out")
)
