package timeline

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Millis is a time value or duration in milliseconds.
//
// Timeline space and recording (source) space both use Millis; a Clip's
// source window converts between the two.
type Millis int64

// ToDuration converts m to a time.Duration.
func (m Millis) ToDuration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// Seconds returns m as fractional seconds.
func (m Millis) Seconds() float64 {
	return float64(m) / 1000.0
}

// Scale multiplies m by f, rounding to the nearest millisecond.
func (m Millis) Scale(f float64) Millis {
	return Millis(math.Round(float64(m) * f))
}

// Clamp limits m to the inclusive range [lo, hi].
func (m Millis) Clamp(lo, hi Millis) Millis {
	if m < lo {
		return lo
	}
	if m > hi {
		return hi
	}
	return m
}

// DurationMillis converts a time.Duration to Millis.
func DurationMillis(d time.Duration) Millis {
	return Millis(d / time.Millisecond)
}

// NewID mints a fresh unique identifier for a clip, effect or recording.
func NewID() string {
	return uuid.NewString()
}
