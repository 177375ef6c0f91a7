// Package effectsync keeps derived overlay effects consistent with the
// clips they depend on.
//
// The orchestrator consumes the ClipChange values commands defer and
// rewrites dependent effects inside the same transaction: shifts, truncates,
// duplicates, removals and suppression tombstones all land in the same
// patch sets as the clip edit itself, so one undo reverts both layers.
//
// Ownership of time-window effects is decided against pre-change clip
// geometry and written using post-change geometry. A window effect belongs
// to the clip whose pre-change range contained the effect's midpoint, with
// an inclusive start and exclusive end boundary.
package effectsync

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/timeline"
)

// HookRunner re-derives a plugin effect's parameters when synchronization
// moves or truncates its window. Implemented by the plugin host.
type HookRunner interface {
	WindowChanged(data timeline.PluginData, start, end timeline.Millis) (timeline.PluginData, error)
}

// Orchestrator applies effect synchronization for structural clip changes.
// The zero value is ready to use; Hooks is optional.
type Orchestrator struct {
	// Hooks runs plugin window-change scripts. Nil skips them.
	Hooks HookRunner
}

// New creates an orchestrator without a plugin hook runner.
func New() *Orchestrator {
	return &Orchestrator{}
}

// SyncFunc adapts the orchestrator for a transaction environment.
func (o *Orchestrator) SyncFunc() command.SyncFunc {
	return o.Apply
}

// Apply dispatches one structural clip change. Errors abort the enclosing
// transaction; a half-synchronized effect layer is never committed.
func (o *Orchestrator) Apply(ctx *command.Context, ch timeline.ClipChange) error {
	switch ch.Kind {
	case timeline.ChangeAdd:
		// A new clip has no prior dependents.
		return nil
	case timeline.ChangeDelete:
		return o.clipDeleted(ctx, ch)
	case timeline.ChangeTrimStart, timeline.ChangeTrimEnd:
		return o.clipTrimmed(ctx, ch)
	case timeline.ChangeSplit:
		return o.clipSplit(ctx, ch)
	case timeline.ChangeUpdate, timeline.ChangeRateChange:
		return o.clipRetimed(ctx, ch)
	case timeline.ChangeReorder:
		return o.clipsReordered(ctx, ch)
	default:
		return fmt.Errorf("effectsync: unhandled change kind %s", ch.Kind)
	}
}

// setWindow moves an effect's window, running the plugin window-change hook
// when the effect carries one. A write that changes nothing records nothing.
func (o *Orchestrator) setWindow(ctx *command.Context, e *timeline.Effect, start, end timeline.Millis) error {
	if start == e.StartTime && end == e.EndTime {
		return nil
	}

	var params map[string]any
	ranHook := false
	if pd, ok := e.Data.(timeline.PluginData); ok && o.Hooks != nil && pd.Hooks != "" {
		nd, err := o.Hooks.WindowChanged(pd, start, end)
		if err != nil {
			return fmt.Errorf("effectsync: window hook for plugin effect %s: %w", e.ID, err)
		}
		params = nd.Params
		ranHook = true
	}

	return ctx.UpdateEffect(e.ID, func(x *timeline.Effect) {
		x.StartTime = start
		x.EndTime = end
		if ranHook {
			if pd, ok := x.Data.(timeline.PluginData); ok {
				pd.Params = params
				x.Data = pd
			}
		}
	})
}

// shift moves an effect's window rigidly by delta.
func (o *Orchestrator) shift(ctx *command.Context, e *timeline.Effect, delta timeline.Millis) error {
	if delta == 0 {
		return nil
	}
	return o.setWindow(ctx, e, e.StartTime+delta, e.EndTime+delta)
}

// remove deletes an effect, writing a suppression tombstone first when the
// effect is an auto-derived typing highlight.
func (o *Orchestrator) remove(ctx *command.Context, e *timeline.Effect) error {
	if err := command.RecordSuppression(ctx, e); err != nil {
		return err
	}
	return ctx.RemoveEffect(e.ID)
}

// anchors maps pre-change clip geometry for ownership decisions. Ranges are
// [start, end) in pre-change timeline space.
type anchors struct {
	ranges map[string][2]timeline.Millis
	deltas map[string]timeline.Millis
}

// anchorsOf builds pre-change ranges and per-clip deltas from a change's
// PrevStarts and the post-change working state. durationOf supplies a
// clip's pre-change duration; nil means durations did not change.
func anchorsOf(ctx *command.Context, prevStarts map[string]timeline.Millis, durationOf func(id string) (timeline.Millis, bool)) anchors {
	a := anchors{
		ranges: make(map[string][2]timeline.Millis, len(prevStarts)),
		deltas: make(map[string]timeline.Millis, len(prevStarts)),
	}
	for id, prev := range prevStarts {
		clip, _ := ctx.Project().ClipByID(id)
		if clip == nil {
			continue
		}
		dur := clip.Duration
		if durationOf != nil {
			if d, ok := durationOf(id); ok {
				dur = d
			}
		}
		a.ranges[id] = [2]timeline.Millis{prev, prev + dur}
		a.deltas[id] = clip.StartTime - prev
	}
	return a
}

// owner returns the clip whose pre-change range contains t. Start boundary
// is inclusive, end exclusive.
func (a anchors) owner(t timeline.Millis) (string, bool) {
	for id, r := range a.ranges {
		if t >= r[0] && t < r[1] {
			return id, true
		}
	}
	return "", false
}

// delta returns the clip's start shift, or 0 for unknown clips.
func (a anchors) delta(id string) timeline.Millis {
	return a.deltas[id]
}
