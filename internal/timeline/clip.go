package timeline

import "fmt"

// Playback rate bounds accepted by the editing core.
const (
	MinPlaybackRate = 0.0625
	MaxPlaybackRate = 16.0
)

// Clip is a contiguous slice of a source Recording placed on a Track.
//
// StartTime and Duration are in timeline space; SourceIn and SourceOut
// bound the window of the recording being played. EndTime is always
// derived, never stored.
type Clip struct {
	ID          string
	RecordingID string
	StartTime   Millis
	Duration    Millis
	SourceIn    Millis
	SourceOut   Millis

	// PlaybackRate maps source time onto timeline time: one timeline
	// millisecond consumes PlaybackRate source milliseconds.
	PlaybackRate float64
}

// ClipState is an immutable snapshot of a clip's geometry, used to describe
// the before and after of a structural change for effect synchronization.
type ClipState struct {
	StartTime    Millis
	EndTime      Millis
	SourceIn     Millis
	SourceOut    Millis
	PlaybackRate float64
}

// Duration returns the timeline length of the snapshot.
func (s ClipState) Duration() Millis {
	return s.EndTime - s.StartTime
}

// Contains reports whether t lies in [StartTime, EndTime).
func (s ClipState) Contains(t Millis) bool {
	return t >= s.StartTime && t < s.EndTime
}

// NewClip creates a clip over the full given source window at rate 1.
func NewClip(recordingID string, start, sourceIn, sourceOut Millis) *Clip {
	return &Clip{
		ID:           NewID(),
		RecordingID:  recordingID,
		StartTime:    start,
		Duration:     sourceOut - sourceIn,
		SourceIn:     sourceIn,
		SourceOut:    sourceOut,
		PlaybackRate: 1.0,
	}
}

// EndTime returns StartTime + Duration.
func (c *Clip) EndTime() Millis {
	return c.StartTime + c.Duration
}

// SourceDuration returns the length of the source window.
func (c *Clip) SourceDuration() Millis {
	return c.SourceOut - c.SourceIn
}

// Contains reports whether timeline time t falls inside [StartTime, EndTime).
func (c *Clip) Contains(t Millis) bool {
	return t >= c.StartTime && t < c.EndTime()
}

// ToSource projects timeline time t into recording space.
// t is not clamped; callers decide how to treat out-of-range values.
func (c *Clip) ToSource(t Millis) Millis {
	return c.SourceIn + (t - c.StartTime).Scale(c.PlaybackRate)
}

// FromSource projects recording time s into timeline space.
func (c *Clip) FromSource(s Millis) Millis {
	return c.StartTime + (s - c.SourceIn).Scale(1.0/c.PlaybackRate)
}

// State snapshots the clip's geometry.
func (c *Clip) State() ClipState {
	return ClipState{
		StartTime:    c.StartTime,
		EndTime:      c.EndTime(),
		SourceIn:     c.SourceIn,
		SourceOut:    c.SourceOut,
		PlaybackRate: c.PlaybackRate,
	}
}

// Clone returns an independent copy of the clip.
func (c *Clip) Clone() *Clip {
	dup := *c
	return &dup
}

// Validate checks the clip's internal consistency.
func (c *Clip) Validate() error {
	if c.StartTime < 0 {
		return fmt.Errorf("%w: clip %s starts at %d", ErrNegativeStart, c.ID, c.StartTime)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: clip %s has duration %d", ErrInvalidDuration, c.ID, c.Duration)
	}
	if c.SourceOut <= c.SourceIn {
		return fmt.Errorf("%w: clip %s window [%d, %d)", ErrInvalidSourceWindow, c.ID, c.SourceIn, c.SourceOut)
	}
	return ValidateRate(c.PlaybackRate)
}

// ValidateRate checks that rate lies in [MinPlaybackRate, MaxPlaybackRate].
func ValidateRate(rate float64) error {
	if rate < MinPlaybackRate || rate > MaxPlaybackRate {
		return fmt.Errorf("%w: %g not in [%g, %g]", ErrInvalidRate, rate, MinPlaybackRate, MaxPlaybackRate)
	}
	return nil
}
