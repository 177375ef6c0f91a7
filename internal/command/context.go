package command

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/reelcut/reelcut/internal/clipboard"
	"github.com/reelcut/reelcut/internal/patch"
	"github.com/reelcut/reelcut/internal/timeline"
)

// Context is the borrowed mutable view a command runs against for the
// duration of one transaction.
//
// Reads see the working state (the committed snapshot plus this
// transaction's writes so far); Base exposes the untouched pre-transaction
// snapshot for synchronization logic that must reason about pre-change
// geometry. Every write clones the touched entity (never the whole
// project) and appends a patch op, so the cost of recording is proportional
// to what the command touched.
type Context struct {
	base *timeline.Project
	work *timeline.Project

	ops     patch.Set
	changes []timeline.ClipChange

	// Tracks already cloned into the working view, by ID.
	clonedTracks map[string]*timeline.Track

	clip *clipboard.Clipboard
}

// NewContext begins a transaction over the committed snapshot base.
func NewContext(base *timeline.Project, clip *clipboard.Clipboard) *Context {
	return &Context{
		base:         base,
		work:         base.ShallowClone(),
		clonedTracks: make(map[string]*timeline.Track),
		clip:         clip,
	}
}

// Base returns the committed pre-transaction snapshot. Read-only.
func (c *Context) Base() *timeline.Project {
	return c.base
}

// Project returns the working state: the snapshot plus this transaction's
// writes so far. Callers must not mutate it directly; all writes go through
// the typed setters.
func (c *Context) Project() *timeline.Project {
	return c.work
}

// Clipboard returns the session clipboard, or nil when the transaction has
// none attached.
func (c *Context) Clipboard() *clipboard.Clipboard {
	return c.clip
}

// Ops returns the writes recorded so far, in order.
func (c *Context) Ops() patch.Set {
	return slices.Clone(c.ops)
}

// =========================================================================
// Lookups
// =========================================================================

// Clip returns the working copy's clip and its track.
func (c *Context) Clip(clipID string) (*timeline.Clip, *timeline.Track, error) {
	clip, track := c.work.ClipByID(clipID)
	if clip == nil {
		return nil, nil, fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}
	return clip, track, nil
}

// Track returns the working copy's track.
func (c *Context) Track(trackID string) (*timeline.Track, error) {
	t := c.work.TrackByID(trackID)
	if t == nil {
		return nil, fmt.Errorf("%w: track %s", ErrNotFound, trackID)
	}
	return t, nil
}

// Effect returns the working copy's effect.
func (c *Context) Effect(effectID string) (*timeline.Effect, error) {
	e := c.work.EffectByID(effectID)
	if e == nil {
		return nil, fmt.Errorf("%w: effect %s", ErrNotFound, effectID)
	}
	return e, nil
}

// Recording returns the referenced recording.
func (c *Context) Recording(recordingID string) (*timeline.Recording, error) {
	r := c.work.Recording(recordingID)
	if r == nil {
		return nil, fmt.Errorf("%w: recording %s", ErrNotFound, recordingID)
	}
	return r, nil
}

// Effects returns a snapshot of the working copy's effect list, safe to
// iterate while effects are being inserted or removed.
func (c *Context) Effects() []*timeline.Effect {
	return slices.Clone(c.work.Effects)
}

// =========================================================================
// Clip writes
// =========================================================================

// InsertClip adds a clip to the track. The context takes ownership of the
// value. Fails if the clip is invalid or would overlap an existing clip.
func (c *Context) InsertClip(trackID string, clip *timeline.Clip) error {
	if err := clip.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	track, err := c.Track(trackID)
	if err != nil {
		return err
	}
	for _, other := range track.Clips {
		if clip.StartTime < other.EndTime() && other.StartTime < clip.EndTime() {
			return fmt.Errorf("%w: clip %s would overlap clip %s", ErrInvalidState, clip.ID, other.ID)
		}
	}

	wt := c.cowTrack(trackID)
	wt.Clips = append(wt.Clips, clip)
	wt.SortClips()
	c.ops = append(c.ops, patch.NewInsert(patch.ClipPath(trackID, clip.ID), clip))
	return nil
}

// RemoveClip deletes the clip from its track.
func (c *Context) RemoveClip(clipID string) error {
	clip, track := c.work.ClipByID(clipID)
	if clip == nil {
		return fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}

	wt := c.cowTrack(track.ID)
	i := wt.IndexOf(clipID)
	wt.Clips = append(wt.Clips[:i], wt.Clips[i+1:]...)
	c.ops = append(c.ops, patch.NewRemove(patch.ClipPath(track.ID, clipID), clip))
	return nil
}

// UpdateClip applies fn to a private copy of the clip and records the
// replacement. A write that leaves the clip unchanged records nothing.
func (c *Context) UpdateClip(clipID string, fn func(*timeline.Clip)) error {
	clip, track := c.work.ClipByID(clipID)
	if clip == nil {
		return fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}

	after := clip.Clone()
	fn(after)
	after.ID = clip.ID // identity is not writable
	if *after == *clip {
		return nil
	}
	if err := after.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	wt := c.cowTrack(track.ID)
	i := wt.IndexOf(clipID)
	wt.Clips[i] = after
	wt.SortClips()
	c.ops = append(c.ops, patch.NewSet(patch.ClipPath(track.ID, clipID), clip, after))
	return nil
}

// =========================================================================
// Effect writes
// =========================================================================

// InsertEffect adds an effect. The context takes ownership of the value.
// At most one Background effect may exist.
func (c *Context) InsertEffect(e *timeline.Effect) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if e.Kind.Singleton() && c.work.Background() != nil {
		return fmt.Errorf("%w: a %s effect already exists", ErrInvalidState, e.Kind)
	}
	if e.ClipID != "" {
		if _, _, err := c.Clip(e.ClipID); err != nil {
			return err
		}
	}

	c.work.Effects = append(c.work.Effects, e)
	c.work.SortEffects()
	c.ops = append(c.ops, patch.NewInsert(patch.EffectPath(e.ID), e))
	return nil
}

// RemoveEffect deletes the effect.
func (c *Context) RemoveEffect(effectID string) error {
	e := c.work.EffectByID(effectID)
	if e == nil {
		return fmt.Errorf("%w: effect %s", ErrNotFound, effectID)
	}

	for i, cur := range c.work.Effects {
		if cur.ID == effectID {
			c.work.Effects = append(c.work.Effects[:i], c.work.Effects[i+1:]...)
			break
		}
	}
	c.ops = append(c.ops, patch.NewRemove(patch.EffectPath(effectID), e))
	return nil
}

// UpdateEffect applies fn to a private copy of the effect and records the
// replacement. A write that leaves the effect unchanged records nothing.
func (c *Context) UpdateEffect(effectID string, fn func(*timeline.Effect)) error {
	e := c.work.EffectByID(effectID)
	if e == nil {
		return fmt.Errorf("%w: effect %s", ErrNotFound, effectID)
	}

	after := e.Clone()
	fn(after)
	after.ID = e.ID // identity is not writable
	if reflect.DeepEqual(e, after) {
		return nil
	}
	if err := after.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	for i, cur := range c.work.Effects {
		if cur.ID == effectID {
			c.work.Effects[i] = after
			break
		}
	}
	c.work.SortEffects()
	c.ops = append(c.ops, patch.NewSet(patch.EffectPath(effectID), e, after))
	return nil
}

// =========================================================================
// Project field writes
// =========================================================================

// SetSelection replaces the selection. Every referenced clip must exist.
func (c *Context) SetSelection(clipIDs []string) error {
	for _, id := range clipIDs {
		if clip, _ := c.work.ClipByID(id); clip == nil {
			return fmt.Errorf("%w: clip %s", ErrNotFound, id)
		}
	}
	if slices.Equal(c.work.Selection, clipIDs) {
		return nil
	}
	before := c.work.Selection
	after := slices.Clone(clipIDs)
	c.work.Selection = after
	c.ops = append(c.ops, selectionOp(before, after))
	return nil
}

// ClearSelection empties the selection.
func (c *Context) ClearSelection() {
	if len(c.work.Selection) == 0 {
		return
	}
	before := c.work.Selection
	c.work.Selection = nil
	c.ops = append(c.ops, selectionOp(before, nil))
}

// selectionOp builds a selection set op, keeping nil (not a typed nil
// wrapped in an interface) for empty sides so inversion round-trips.
func selectionOp(before, after []string) patch.Op {
	op := patch.Op{Path: patch.PathSelection, Kind: patch.OpSet}
	if before != nil {
		op.Before = before
	}
	if after != nil {
		op.After = after
	}
	return op
}

// SetPlayhead moves the playhead, clamped to [0, duration].
func (c *Context) SetPlayhead(t timeline.Millis) {
	t = t.Clamp(0, c.work.Duration)
	if t == c.work.Playhead {
		return
	}
	c.ops = append(c.ops, patch.NewSet(patch.PathPlayhead, c.work.Playhead, t))
	c.work.Playhead = t
}

// RecomputeDuration refreshes the project duration from the tracks and
// clamps the playhead into the new range.
func (c *Context) RecomputeDuration() {
	d := c.work.ComputeDuration()
	if d != c.work.Duration {
		c.ops = append(c.ops, patch.NewSet(patch.PathDuration, c.work.Duration, d))
		c.work.Duration = d
	}
	if c.work.Playhead > d {
		c.SetPlayhead(d)
	}
}

// =========================================================================
// Deferred changes
// =========================================================================

// DeferChange queues a structural clip change for the synchronization
// orchestrator. Drained by the framework after the command's own mutation
// returns, before the transaction is finalized.
func (c *Context) DeferChange(ch timeline.ClipChange) {
	c.changes = append(c.changes, ch)
}

// nextChange pops the oldest queued change.
func (c *Context) nextChange() (timeline.ClipChange, bool) {
	if len(c.changes) == 0 {
		return timeline.ClipChange{}, false
	}
	ch := c.changes[0]
	c.changes = c.changes[1:]
	return ch, true
}

// commit hands the working state over as the next committed snapshot.
func (c *Context) commit() *timeline.Project {
	return c.work
}

// cowTrack returns a track of the working state that is safe to mutate,
// cloning it on first touch.
func (c *Context) cowTrack(trackID string) *timeline.Track {
	if t, ok := c.clonedTracks[trackID]; ok {
		return t
	}
	for i, t := range c.work.Tracks {
		if t.ID == trackID {
			dup := t.ShallowClone()
			c.work.Tracks[i] = dup
			c.clonedTracks[trackID] = dup
			return dup
		}
	}
	return nil
}
