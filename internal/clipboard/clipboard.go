// Package clipboard holds the session's copied clip or effect and routes
// pastes to the right strategy.
//
// The clipboard is transient state, outside the project aggregate and
// outside undo history: copy and cut set it, paste consumes it without
// clearing, Clear empties it. Everything stored or returned is a deep copy,
// so clipboard contents never alias live project state.
package clipboard

import (
	"sync"

	"github.com/brunoga/deep"

	"github.com/reelcut/reelcut/internal/timeline"
)

// Contents is what the clipboard currently holds: a clip (with the
// clip-bound effects captured alongside it) or a single effect.
type Contents struct {
	Clip         *timeline.Clip
	BoundEffects []*timeline.Effect
	Effect       *timeline.Effect

	// TrackKind is the kind of the track the clip was copied from.
	TrackKind timeline.TrackKind
}

// HasClip reports whether a clip is held.
func (c *Contents) HasClip() bool {
	return c != nil && c.Clip != nil
}

// HasEffect reports whether an effect is held.
func (c *Contents) HasEffect() bool {
	return c != nil && c.Effect != nil
}

// Clipboard is the session-scoped holder. Safe for concurrent use.
type Clipboard struct {
	mu   sync.Mutex
	held *Contents
}

// New creates an empty clipboard.
func New() *Clipboard {
	return &Clipboard{}
}

// SetClip stores a copy of the clip and its clip-bound effects, replacing
// any previous contents.
func (c *Clipboard) SetClip(clip *timeline.Clip, bound []*timeline.Effect, kind timeline.TrackKind) {
	held := &Contents{
		Clip:      clip.Clone(),
		TrackKind: kind,
	}
	for _, e := range bound {
		held.BoundEffects = append(held.BoundEffects, e.Clone())
	}

	c.mu.Lock()
	c.held = held
	c.mu.Unlock()
}

// SetEffect stores a copy of the effect, replacing any previous contents.
func (c *Clipboard) SetEffect(e *timeline.Effect) {
	held := &Contents{Effect: e.Clone()}

	c.mu.Lock()
	c.held = held
	c.mu.Unlock()
}

// Contents returns a deep copy of the current contents, or nil when empty.
// Paste consumes non-destructively: the clipboard keeps what it holds.
func (c *Clipboard) Contents() *Contents {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held == nil {
		return nil
	}
	dup := deep.MustCopy(*c.held)
	return &dup
}

// IsEmpty reports whether nothing is held.
func (c *Clipboard) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held == nil
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() {
	c.mu.Lock()
	c.held = nil
	c.mu.Unlock()
}
