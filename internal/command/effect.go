package command

import (
	"fmt"
	"time"

	"github.com/reelcut/reelcut/internal/timeline"
)

// Command names for effect operations.
const (
	CmdEffectAdd    = "effect.add"
	CmdEffectUpdate = "effect.update"
	CmdEffectDelete = "effect.delete"
)

// =========================================================================
// effect.add
// =========================================================================

// AddEffect places a new effect. Clip-bound kinds require ClipID and a
// window inside the clip; window-bound kinds must leave ClipID empty.
type AddEffect struct {
	Start  timeline.Millis
	End    timeline.Millis
	ClipID string
	Data   timeline.EffectData
}

func (c *AddEffect) Name() string        { return CmdEffectAdd }
func (c *AddEffect) Description() string { return "Add effect" }
func (c *AddEffect) Category() string    { return CategoryEffect }

func (c *AddEffect) CanExecute(p *timeline.Project) bool {
	if c.Data == nil {
		return false
	}
	kind := c.Data.Kind()
	if kind.Singleton() {
		return p.Background() == nil
	}
	if c.End <= c.Start {
		return false
	}
	if kind.ClipBound() {
		clip, _ := p.ClipByID(c.ClipID)
		return clip != nil
	}
	return true
}

func (c *AddEffect) Mutate(ctx *Context) (Result, error) {
	kind := c.Data.Kind()
	if c.ClipID != "" && !kind.ClipBound() {
		return Result{}, fmt.Errorf("%w: %s effects are not clip-bound", ErrInvalidState, kind)
	}

	data := c.Data
	if bg, ok := data.(timeline.BackgroundData); ok {
		hex, err := bg.NormalizeColor()
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		bg.Color = hex
		data = bg
	}

	eff := timeline.NewEffect(c.Start, c.End, data)
	eff.ClipID = c.ClipID

	if kind.ClipBound() {
		clip, _, err := ctx.Clip(c.ClipID)
		if err != nil {
			return Result{}, err
		}
		if c.Start < clip.StartTime || c.End > clip.EndTime() {
			return Result{}, fmt.Errorf("%w: window [%d, %d) outside clip [%d, %d)",
				ErrInvalidState, c.Start, c.End, clip.StartTime, clip.EndTime())
		}
	}

	if err := ctx.InsertEffect(eff); err != nil {
		return Result{}, err
	}
	return SuccessWithData("effectID", eff.ID), nil
}

// =========================================================================
// effect.update
// =========================================================================

// UpdateEffect changes an effect's window, enabled flag or payload. Nil
// fields keep their current value. A clip-bound effect's window must stay
// inside its clip.
//
// Replacing the Background singleton's payload keeps the project's
// suppression tombstones: those belong to the engine, not to whoever built
// the payload.
type UpdateEffect struct {
	EffectID string
	Start    *timeline.Millis
	End      *timeline.Millis
	Enabled  *bool
	Data     timeline.EffectData
}

func (c *UpdateEffect) Name() string        { return CmdEffectUpdate }
func (c *UpdateEffect) Description() string { return "Update effect" }
func (c *UpdateEffect) Category() string    { return CategoryEffect }

// CoalesceKey merges rapid parameter tweaks of one effect (a slider drag)
// into a single history entry.
func (c *UpdateEffect) CoalesceKey() string {
	return CmdEffectUpdate + ":" + c.EffectID
}

// CoalesceWindow defers to the history manager's default.
func (c *UpdateEffect) CoalesceWindow() time.Duration { return 0 }

func (c *UpdateEffect) CanExecute(p *timeline.Project) bool {
	if c.Start == nil && c.End == nil && c.Enabled == nil && c.Data == nil {
		return false
	}
	return p.EffectByID(c.EffectID) != nil
}

func (c *UpdateEffect) Mutate(ctx *Context) (Result, error) {
	e, err := ctx.Effect(c.EffectID)
	if err != nil {
		return Result{}, err
	}
	if c.Data != nil && c.Data.Kind() != e.Kind {
		return Result{}, fmt.Errorf("%w: %s payload for %s effect %s",
			ErrInvalidState, c.Data.Kind(), e.Kind, e.ID)
	}

	start, end := e.StartTime, e.EndTime
	if c.Start != nil {
		start = *c.Start
	}
	if c.End != nil {
		end = *c.End
	}
	if e.Kind != timeline.KindBackground && end <= start {
		return Result{}, fmt.Errorf("%w: window [%d, %d)", ErrInvalidState, start, end)
	}
	if e.ClipID != "" {
		clip, _, err := ctx.Clip(e.ClipID)
		if err != nil {
			return Result{}, err
		}
		if start < clip.StartTime || end > clip.EndTime() {
			return Result{}, fmt.Errorf("%w: window [%d, %d) outside clip [%d, %d)",
				ErrInvalidState, start, end, clip.StartTime, clip.EndTime())
		}
	}

	data := c.Data
	if bg, ok := data.(timeline.BackgroundData); ok {
		hex, err := bg.NormalizeColor()
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		bg.Color = hex
		if cur, ok := e.Data.(timeline.BackgroundData); ok {
			bg.Suppressed = cur.Suppressed
		}
		data = bg
	}

	err = ctx.UpdateEffect(c.EffectID, func(x *timeline.Effect) {
		x.StartTime = start
		x.EndTime = end
		if c.Enabled != nil {
			x.Enabled = *c.Enabled
		}
		if data != nil {
			x.Data = data
		}
	})
	if err != nil {
		return Result{}, err
	}
	return Success(), nil
}

// =========================================================================
// effect.delete
// =========================================================================

// DeleteEffect removes an effect. Deleting an auto-derived typing highlight
// also writes a suppression tombstone so the next derivation pass does not
// bring it back; undoing the delete removes the tombstone with it.
type DeleteEffect struct {
	EffectID string
}

func (c *DeleteEffect) Name() string        { return CmdEffectDelete }
func (c *DeleteEffect) Description() string { return "Delete effect" }
func (c *DeleteEffect) Category() string    { return CategoryEffect }

func (c *DeleteEffect) CanExecute(p *timeline.Project) bool {
	return p.EffectByID(c.EffectID) != nil
}

func (c *DeleteEffect) Mutate(ctx *Context) (Result, error) {
	e, err := ctx.Effect(c.EffectID)
	if err != nil {
		return Result{}, err
	}
	if err := RecordSuppression(ctx, e); err != nil {
		return Result{}, err
	}
	if err := ctx.RemoveEffect(c.EffectID); err != nil {
		return Result{}, err
	}
	return Success(), nil
}
