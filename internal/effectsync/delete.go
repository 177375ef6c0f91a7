package effectsync

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/timeline"
)

// clipDeleted removes effects bound to the deleted clip and reconciles
// window effects against the vacated span.
//
// Window effects fully inside the deleted clip's old range are removed;
// effects straddling one edge are truncated to the side that still has
// content. An effect covering the whole vacated span stays: it still has
// content on both sides of the gap. Removed auto-derived typing highlights
// leave suppression tombstones so the next derivation pass does not bring
// them back.
func (o *Orchestrator) clipDeleted(ctx *command.Context, ch timeline.ClipChange) error {
	before := ch.Before
	if before == nil {
		return fmt.Errorf("effectsync: delete change for clip %s has no before state", ch.ClipID)
	}

	for _, e := range ctx.Effects() {
		if e.ClipID == ch.ClipID {
			if err := o.remove(ctx, e); err != nil {
				return err
			}
			continue
		}
		if e.ClipID != "" || e.Kind.Singleton() {
			continue
		}

		switch {
		case e.Inside(before.StartTime, before.EndTime):
			if err := o.remove(ctx, e); err != nil {
				return err
			}
		case e.Overlaps(before.StartTime, before.EndTime):
			if err := o.truncateAround(ctx, e, before.StartTime, before.EndTime); err != nil {
				return err
			}
		}
	}
	return nil
}

// truncateAround cuts the part of an effect's window that overlaps the
// vacated span [from, to). An effect covering the whole span is left alone.
func (o *Orchestrator) truncateAround(ctx *command.Context, e *timeline.Effect, from, to timeline.Millis) error {
	start, end := e.StartTime, e.EndTime
	switch {
	case start < from && end <= to:
		end = from
	case start >= from && end > to:
		start = to
	default:
		return nil
	}
	if end <= start {
		return o.remove(ctx, e)
	}
	return o.setWindow(ctx, e, start, end)
}
