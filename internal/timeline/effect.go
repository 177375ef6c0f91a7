package timeline

import (
	"fmt"

	"github.com/brunoga/deep"
	"github.com/lucasb-eyer/go-colorful"
)

// EffectKind enumerates the closed set of overlay effect kinds.
type EffectKind uint8

// Effect kinds.
const (
	KindZoom EffectKind = iota
	KindCrop
	KindSubtitle
	KindKeystroke
	KindCursor
	KindBackground
	KindScreen
	KindPlugin
)

// String returns the lowercase name of the kind.
func (k EffectKind) String() string {
	switch k {
	case KindZoom:
		return "zoom"
	case KindCrop:
		return "crop"
	case KindSubtitle:
		return "subtitle"
	case KindKeystroke:
		return "keystroke"
	case KindCursor:
		return "cursor"
	case KindBackground:
		return "background"
	case KindScreen:
		return "screen"
	case KindPlugin:
		return "plugin"
	default:
		return "unknown"
	}
}

// ParseEffectKind converts a stored kind name back to an EffectKind.
func ParseEffectKind(s string) (EffectKind, bool) {
	switch s {
	case "zoom":
		return KindZoom, true
	case "crop":
		return KindCrop, true
	case "subtitle":
		return KindSubtitle, true
	case "keystroke":
		return KindKeystroke, true
	case "cursor":
		return KindCursor, true
	case "background":
		return KindBackground, true
	case "screen":
		return KindScreen, true
	case "plugin":
		return KindPlugin, true
	default:
		return KindZoom, false
	}
}

// ClipBound reports whether effects of this kind are anchored to one clip's
// identity (moving rigidly with it) rather than to a timeline window.
func (k EffectKind) ClipBound() bool {
	switch k {
	case KindCrop, KindCursor, KindScreen:
		return true
	case KindZoom, KindSubtitle, KindKeystroke, KindPlugin, KindBackground:
		return false
	default:
		return false
	}
}

// Singleton reports whether at most one effect of this kind exists per
// project.
func (k EffectKind) Singleton() bool {
	return k == KindBackground
}

// EffectData is the payload carried by an Effect. The set of implementations
// is closed; the synchronization orchestrator dispatches exhaustively over
// it.
type EffectData interface {
	Kind() EffectKind
	effectData()
}

// ZoomData magnifies a region of the frame for the effect's window.
type ZoomData struct {
	Scale  float64
	FocusX float64 // normalized [0, 1]
	FocusY float64
}

func (ZoomData) Kind() EffectKind { return KindZoom }
func (ZoomData) effectData()      {}

// CropData crops the owning clip's frame to a normalized rectangle.
type CropData struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (CropData) Kind() EffectKind { return KindCrop }
func (CropData) effectData()      {}

// SubtitleData is a caption block. Derived blocks remember which transcript
// cluster produced them so regeneration can skip live ones.
type SubtitleData struct {
	Text         string
	RecordingID  string
	ClusterIndex int
	Derived      bool
}

func (SubtitleData) Kind() EffectKind { return KindSubtitle }
func (SubtitleData) effectData()      {}

// KeystrokeData is a typing-highlight block derived from transcript
// analysis of a recording.
type KeystrokeData struct {
	Text         string
	RecordingID  string
	ClusterIndex int
	Derived      bool
}

func (KeystrokeData) Kind() EffectKind { return KindKeystroke }
func (KeystrokeData) effectData()      {}

// CursorData styles the rendered pointer for its owning clip.
type CursorData struct {
	Style     string
	Scale     float64
	Smoothing bool
}

func (CursorData) Kind() EffectKind { return KindCursor }
func (CursorData) effectData()      {}

// ScreenData frames the owning clip's screen capture.
type ScreenData struct {
	CornerRadius float64
	Shadow       float64
}

func (ScreenData) Kind() EffectKind { return KindScreen }
func (ScreenData) effectData()      {}

// PluginData is an externally defined effect. Hooks holds an optional Lua
// script; its on_window_changed function re-derives Params whenever the
// effect's window is moved or truncated.
type PluginData struct {
	PluginID string
	Hooks    string
	Params   map[string]any
}

func (PluginData) Kind() EffectKind { return KindPlugin }
func (PluginData) effectData()      {}

// SuppressionKey identifies one derived block that must not be recreated:
// the cluster at ClusterIndex of the recording's transcript.
type SuppressionKey struct {
	RecordingID  string
	ClusterIndex int
}

// BackgroundData is the global singleton payload: canvas styling plus the
// suppression tombstones for deleted derived blocks.
type BackgroundData struct {
	Color      string // hex, e.g. "#1e1e2e"
	Opacity    float64
	Padding    float64
	Suppressed []SuppressionKey
}

func (BackgroundData) Kind() EffectKind { return KindBackground }
func (BackgroundData) effectData()      {}

// IsSuppressed reports whether the given cluster carries a tombstone.
func (d BackgroundData) IsSuppressed(recordingID string, cluster int) bool {
	for _, k := range d.Suppressed {
		if k.RecordingID == recordingID && k.ClusterIndex == cluster {
			return true
		}
	}
	return false
}

// WithSuppression returns a copy of the payload with the key recorded.
// Adding an existing key is a no-op copy.
func (d BackgroundData) WithSuppression(key SuppressionKey) BackgroundData {
	if d.IsSuppressed(key.RecordingID, key.ClusterIndex) {
		return d
	}
	dup := d
	dup.Suppressed = make([]SuppressionKey, len(d.Suppressed), len(d.Suppressed)+1)
	copy(dup.Suppressed, d.Suppressed)
	dup.Suppressed = append(dup.Suppressed, key)
	return dup
}

// Validate checks color and opacity.
func (d BackgroundData) Validate() error {
	if d.Color != "" {
		if _, err := colorful.Hex(d.Color); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidColor, d.Color)
		}
	}
	if d.Opacity < 0 || d.Opacity > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidOpacity, d.Opacity)
	}
	return nil
}

// NormalizeColor parses Color and returns it in canonical lowercase hex
// form. An empty color normalizes to empty.
func (d BackgroundData) NormalizeColor() (string, error) {
	if d.Color == "" {
		return "", nil
	}
	c, err := colorful.Hex(d.Color)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, d.Color)
	}
	return c.Hex(), nil
}

// Effect is one overlay entity in timeline space.
//
// ClipID non-empty means clip-bound: the effect belongs to that clip and
// follows it rigidly. ClipID empty means time-window bound: the window
// alone defines where the effect applies.
type Effect struct {
	ID        string
	Kind      EffectKind
	StartTime Millis
	EndTime   Millis
	ClipID    string
	Enabled   bool
	Data      EffectData
}

// NewEffect creates an enabled effect with a fresh ID.
// The kind is taken from the payload.
func NewEffect(start, end Millis, data EffectData) *Effect {
	return &Effect{
		ID:        NewID(),
		Kind:      data.Kind(),
		StartTime: start,
		EndTime:   end,
		Enabled:   true,
		Data:      data,
	}
}

// Duration returns EndTime - StartTime.
func (e *Effect) Duration() Millis {
	return e.EndTime - e.StartTime
}

// Midpoint returns the center of the effect's window.
func (e *Effect) Midpoint() Millis {
	return e.StartTime + e.Duration()/2
}

// Contains reports whether t lies in [StartTime, EndTime).
func (e *Effect) Contains(t Millis) bool {
	return t >= e.StartTime && t < e.EndTime
}

// Overlaps reports whether the effect's window intersects [start, end).
func (e *Effect) Overlaps(start, end Millis) bool {
	return e.StartTime < end && e.EndTime > start
}

// Inside reports whether the effect's window lies fully within [start, end].
func (e *Effect) Inside(start, end Millis) bool {
	return e.StartTime >= start && e.EndTime <= end
}

// Clone returns an independent copy of the effect, payload included.
func (e *Effect) Clone() *Effect {
	dup := deep.MustCopy(*e)
	return &dup
}

// Validate checks the effect's window and payload.
func (e *Effect) Validate() error {
	if e.Kind != e.Data.Kind() {
		return fmt.Errorf("timeline: effect %s kind %s does not match payload %s", e.ID, e.Kind, e.Data.Kind())
	}
	// The Background singleton spans whatever the timeline is; its window
	// is allowed to be empty.
	if e.Kind != KindBackground && e.EndTime <= e.StartTime {
		return fmt.Errorf("%w: effect %s [%d, %d)", ErrInvalidWindow, e.ID, e.StartTime, e.EndTime)
	}
	if e.Kind.ClipBound() && e.ClipID == "" {
		return fmt.Errorf("timeline: %s effect %s requires a clip binding", e.Kind, e.ID)
	}
	if bg, ok := e.Data.(BackgroundData); ok {
		return bg.Validate()
	}
	return nil
}
