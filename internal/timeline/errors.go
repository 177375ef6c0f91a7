package timeline

import "errors"

// Validation errors shared across the model types.
var (
	ErrInvalidDuration     = errors.New("timeline: clip duration must be positive")
	ErrInvalidSourceWindow = errors.New("timeline: source window is empty or reversed")
	ErrInvalidRate         = errors.New("timeline: playback rate out of range")
	ErrNegativeStart       = errors.New("timeline: start time is negative")
	ErrInvalidWindow       = errors.New("timeline: effect window is empty or reversed")
	ErrInvalidColor        = errors.New("timeline: invalid color")
	ErrInvalidOpacity      = errors.New("timeline: opacity out of range")
)
