package command

import (
	"time"

	"github.com/reelcut/reelcut/internal/timeline"
)

// Command categories, used for grouping in UI surfaces.
const (
	CategoryClip      = "clip"
	CategoryEffect    = "effect"
	CategorySelection = "selection"
	CategoryPlayback  = "playback"
	CategoryClipboard = "clipboard"
)

// Command is a named, reversible unit of work.
//
// CanExecute is a pure predicate over the committed snapshot; it must not
// have side effects. Mutate is the only place mutation happens, and all of
// it goes through the Context so it is recorded. Commands never apply
// effect synchronization themselves; they describe structural clip changes
// with Context.DeferChange.
type Command interface {
	// Name is the stable registry identifier, e.g. "clip.trim".
	Name() string

	// Description is a short human-readable summary.
	Description() string

	// Category groups related commands.
	Category() string

	// CanExecute reports whether the command can run against p.
	CanExecute(p *timeline.Project) bool

	// Mutate applies the command's changes to the transaction context.
	Mutate(ctx *Context) (Result, error)
}

// Coalescable is implemented by commands whose rapid repeats (slider drags,
// scrubs) collapse into a single history entry.
type Coalescable interface {
	// CoalesceKey identifies the sequence being coalesced. Entries with
	// equal non-empty keys recorded within the coalesce window merge.
	CoalesceKey() string

	// CoalesceWindow bounds the merge window. Zero means the history
	// manager's default.
	CoalesceWindow() time.Duration
}

// SyncFunc propagates one structural clip change into dependent effects.
// It runs inside the transaction, against the same context.
type SyncFunc func(ctx *Context, change timeline.ClipChange) error

// CoalesceKeyOf returns the command's coalesce key, or "" if the command
// does not coalesce.
func CoalesceKeyOf(c Command) string {
	if co, ok := c.(Coalescable); ok {
		return co.CoalesceKey()
	}
	return ""
}

// CoalesceWindowOf returns the command's coalesce window, or 0 for the
// default.
func CoalesceWindowOf(c Command) time.Duration {
	if co, ok := c.(Coalescable); ok {
		return co.CoalesceWindow()
	}
	return 0
}
