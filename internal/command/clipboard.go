package command

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/clipboard"
	"github.com/reelcut/reelcut/internal/timeline"
)

// Command names for clipboard operations.
const (
	CmdCopyClip       = "clipboard.copyClip"
	CmdCutClip        = "clipboard.cutClip"
	CmdPasteClip      = "clipboard.pasteClip"
	CmdCopyEffect     = "clipboard.copyEffect"
	CmdPasteEffect    = "clipboard.pasteEffect"
	CmdClearClipboard = "clipboard.clear"
)

// clipboardOf returns the transaction's clipboard or an error when none is
// attached. CanExecute cannot see the clipboard (it is a pure predicate
// over the project), so held-contents checks happen here in Mutate.
func clipboardOf(ctx *Context) (*clipboard.Clipboard, error) {
	cb := ctx.Clipboard()
	if cb == nil {
		return nil, fmt.Errorf("%w: no clipboard attached", ErrInvalidState)
	}
	return cb, nil
}

// CopyClip stores a clip and its clip-bound effects on the clipboard.
// The project is untouched, so nothing enters undo history.
type CopyClip struct {
	ClipID string
}

func (c *CopyClip) Name() string        { return CmdCopyClip }
func (c *CopyClip) Description() string { return "Copy clip" }
func (c *CopyClip) Category() string    { return CategoryClipboard }

func (c *CopyClip) CanExecute(p *timeline.Project) bool {
	clip, _ := p.ClipByID(c.ClipID)
	return clip != nil
}

func (c *CopyClip) Mutate(ctx *Context) (Result, error) {
	cb, err := clipboardOf(ctx)
	if err != nil {
		return Result{}, err
	}
	clip, track, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	cb.SetClip(clip, ctx.Project().EffectsForClip(c.ClipID), track.Kind)
	return SuccessWithMessage("copied clip"), nil
}

// CutClip copies a clip to the clipboard, then deletes it.
type CutClip struct {
	ClipID string
	Ripple bool
}

func (c *CutClip) Name() string        { return CmdCutClip }
func (c *CutClip) Description() string { return "Cut clip" }
func (c *CutClip) Category() string    { return CategoryClipboard }

func (c *CutClip) CanExecute(p *timeline.Project) bool {
	return (&DeleteClip{ClipID: c.ClipID}).CanExecute(p)
}

func (c *CutClip) Mutate(ctx *Context) (Result, error) {
	cp := CopyClip{ClipID: c.ClipID}
	if _, err := cp.Mutate(ctx); err != nil {
		return Result{}, err
	}
	del := DeleteClip{ClipID: c.ClipID, Ripple: c.Ripple}
	return del.Mutate(ctx)
}

// PasteClip duplicates the held clip onto a track. At is the timeline
// target; negative means the playhead. The duplicate and its re-anchored
// effects all get fresh IDs.
type PasteClip struct {
	TrackID string
	At      timeline.Millis
}

func (c *PasteClip) Name() string        { return CmdPasteClip }
func (c *PasteClip) Description() string { return "Paste clip" }
func (c *PasteClip) Category() string    { return CategoryClipboard }

func (c *PasteClip) CanExecute(p *timeline.Project) bool {
	return p.TrackByID(c.TrackID) != nil
}

func (c *PasteClip) Mutate(ctx *Context) (Result, error) {
	cb, err := clipboardOf(ctx)
	if err != nil {
		return Result{}, err
	}
	held := cb.Contents()
	if !held.HasClip() {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidState, clipboard.ErrEmpty)
	}

	track, err := ctx.Track(c.TrackID)
	if err != nil {
		return Result{}, err
	}
	at := c.At
	if at < 0 {
		at = ctx.Project().Playhead
	}

	plan, err := clipboard.PlanClipPaste(held, track, at)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	if err := ctx.InsertClip(c.TrackID, plan.Clip); err != nil {
		return Result{}, err
	}
	for _, e := range plan.Effects {
		if err := ctx.InsertEffect(e); err != nil {
			return Result{}, err
		}
	}
	if err := ctx.SetSelection([]string{plan.Clip.ID}); err != nil {
		return Result{}, err
	}
	ctx.RecomputeDuration()

	after := plan.Clip.State()
	ctx.DeferChange(timeline.ClipChange{
		Kind:        timeline.ChangeAdd,
		ClipID:      plan.Clip.ID,
		RecordingID: plan.Clip.RecordingID,
		TrackID:     c.TrackID,
		After:       &after,
	})
	return SuccessWithData("clipID", plan.Clip.ID), nil
}

// CopyEffect stores an effect on the clipboard.
type CopyEffect struct {
	EffectID string
}

func (c *CopyEffect) Name() string        { return CmdCopyEffect }
func (c *CopyEffect) Description() string { return "Copy effect" }
func (c *CopyEffect) Category() string    { return CategoryClipboard }

func (c *CopyEffect) CanExecute(p *timeline.Project) bool {
	return p.EffectByID(c.EffectID) != nil
}

func (c *CopyEffect) Mutate(ctx *Context) (Result, error) {
	cb, err := clipboardOf(ctx)
	if err != nil {
		return Result{}, err
	}
	e, err := ctx.Effect(c.EffectID)
	if err != nil {
		return Result{}, err
	}
	cb.SetEffect(e)
	return SuccessWithMessage("copied " + e.Kind.String() + " effect"), nil
}

// PasteEffect pastes the held effect at the playhead using the strategy its
// kind routes to: update-in-place for the singleton, a recording-anchored
// block, or a free timeline block.
type PasteEffect struct {
	Defaults clipboard.PasteDefaults
}

func (c *PasteEffect) Name() string        { return CmdPasteEffect }
func (c *PasteEffect) Description() string { return "Paste effect" }
func (c *PasteEffect) Category() string    { return CategoryClipboard }

func (c *PasteEffect) CanExecute(p *timeline.Project) bool { return true }

func (c *PasteEffect) Mutate(ctx *Context) (Result, error) {
	cb, err := clipboardOf(ctx)
	if err != nil {
		return Result{}, err
	}
	held := cb.Contents()
	if !held.HasEffect() {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidState, clipboard.ErrEmpty)
	}

	p := ctx.Project()
	plan, err := clipboard.PlanEffectPaste(p, held.Effect, p.Playhead, c.Defaults)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	if plan.UpdateID != "" {
		data := plan.Data
		if bg, ok := data.(timeline.BackgroundData); ok {
			if cur, err := ctx.Effect(plan.UpdateID); err == nil {
				if cd, ok := cur.Data.(timeline.BackgroundData); ok {
					bg.Suppressed = cd.Suppressed
				}
			}
			data = bg
		}
		err := ctx.UpdateEffect(plan.UpdateID, func(x *timeline.Effect) {
			x.Data = data
		})
		if err != nil {
			return Result{}, err
		}
		return SuccessWithData("effectID", plan.UpdateID), nil
	}

	if err := ctx.InsertEffect(plan.Insert); err != nil {
		return Result{}, err
	}
	return SuccessWithData("effectID", plan.Insert.ID), nil
}

// ClearClipboard empties the clipboard. The project is untouched.
type ClearClipboard struct{}

func (c *ClearClipboard) Name() string        { return CmdClearClipboard }
func (c *ClearClipboard) Description() string { return "Clear clipboard" }
func (c *ClearClipboard) Category() string    { return CategoryClipboard }

func (c *ClearClipboard) CanExecute(p *timeline.Project) bool { return true }

func (c *ClearClipboard) Mutate(ctx *Context) (Result, error) {
	cb, err := clipboardOf(ctx)
	if err != nil {
		return Result{}, err
	}
	cb.Clear()
	return SuccessWithMessage("clipboard cleared"), nil
}
