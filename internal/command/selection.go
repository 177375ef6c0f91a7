package command

import (
	"time"

	"github.com/reelcut/reelcut/internal/timeline"
)

// Command names for selection and playback operations.
const (
	CmdSelect      = "selection.set"
	CmdClearSelect = "selection.clear"
	CmdSetPlayhead = "playhead.set"
)

// Select replaces the selection with the given clips.
type Select struct {
	ClipIDs []string
}

func (c *Select) Name() string        { return CmdSelect }
func (c *Select) Description() string { return "Select clips" }
func (c *Select) Category() string    { return CategorySelection }

func (c *Select) CanExecute(p *timeline.Project) bool {
	for _, id := range c.ClipIDs {
		if clip, _ := p.ClipByID(id); clip == nil {
			return false
		}
	}
	return true
}

func (c *Select) Mutate(ctx *Context) (Result, error) {
	if err := ctx.SetSelection(c.ClipIDs); err != nil {
		return Result{}, err
	}
	return Success(), nil
}

// ClearSelect empties the selection.
type ClearSelect struct{}

func (c *ClearSelect) Name() string        { return CmdClearSelect }
func (c *ClearSelect) Description() string { return "Clear selection" }
func (c *ClearSelect) Category() string    { return CategorySelection }

func (c *ClearSelect) CanExecute(p *timeline.Project) bool { return true }

func (c *ClearSelect) Mutate(ctx *Context) (Result, error) {
	ctx.ClearSelection()
	return Success(), nil
}

// SetPlayhead moves the playhead. The target is clamped to the project
// duration.
type SetPlayhead struct {
	At timeline.Millis
}

func (c *SetPlayhead) Name() string        { return CmdSetPlayhead }
func (c *SetPlayhead) Description() string { return "Move playhead" }
func (c *SetPlayhead) Category() string    { return CategoryPlayback }

// CoalesceKey merges a scrub into a single history entry.
func (c *SetPlayhead) CoalesceKey() string { return CmdSetPlayhead }

// CoalesceWindow defers to the history manager's default.
func (c *SetPlayhead) CoalesceWindow() time.Duration { return 0 }

func (c *SetPlayhead) CanExecute(p *timeline.Project) bool { return true }

func (c *SetPlayhead) Mutate(ctx *Context) (Result, error) {
	ctx.SetPlayhead(c.At)
	return Success(), nil
}
