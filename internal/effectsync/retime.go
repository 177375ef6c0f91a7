package effectsync

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/timeline"
)

// clipRetimed reconciles effects after a clip's length changed in place
// (source window update or playback rate change).
//
// Effects anchored in the retimed clip's old range are rescaled into the
// new range at the clip's own stretch factor, then truncated to it. Effects
// anchored in other clips on the track follow their clip's reflow delta.
// Effects anchored outside any moved clip are untouched.
func (o *Orchestrator) clipRetimed(ctx *command.Context, ch timeline.ClipChange) error {
	before, after := ch.Before, ch.After
	if before == nil || after == nil {
		return fmt.Errorf("effectsync: retime change for clip %s is missing a state snapshot", ch.ClipID)
	}
	if before.Duration() <= 0 {
		return fmt.Errorf("effectsync: retime change for clip %s has empty before range", ch.ClipID)
	}
	scale := float64(after.Duration()) / float64(before.Duration())

	a := anchorsOf(ctx, ch.PrevStarts, func(id string) (timeline.Millis, bool) {
		if id == ch.ClipID {
			return before.Duration(), true
		}
		return 0, false
	})

	for _, e := range ctx.Effects() {
		if e.Kind.Singleton() {
			continue
		}

		if e.ClipID != "" {
			if e.ClipID == ch.ClipID {
				if err := o.rescale(ctx, e, before, after, scale); err != nil {
					return err
				}
			} else if err := o.shift(ctx, e, a.delta(e.ClipID)); err != nil {
				return err
			}
			continue
		}

		mid := e.Midpoint()
		switch id, ok := a.owner(mid); {
		case ok && id == ch.ClipID:
			if err := o.rescale(ctx, e, before, after, scale); err != nil {
				return err
			}
		case ok:
			if err := o.shift(ctx, e, a.delta(id)); err != nil {
				return err
			}
		case mid >= before.StartTime && mid < before.EndTime:
			// No PrevStarts on the change; the target range itself is
			// still known from the snapshots.
			if err := o.rescale(ctx, e, before, after, scale); err != nil {
				return err
			}
		}
	}
	return nil
}

// rescale maps an effect window from the clip's old range into its new one
// at the given stretch factor, truncating to the new range.
func (o *Orchestrator) rescale(ctx *command.Context, e *timeline.Effect, before, after *timeline.ClipState, scale float64) error {
	start := after.StartTime + (e.StartTime - before.StartTime).Scale(scale)
	end := after.StartTime + (e.EndTime - before.StartTime).Scale(scale)

	start = start.Clamp(after.StartTime, after.EndTime)
	end = end.Clamp(after.StartTime, after.EndTime)
	if end <= start {
		return ctx.RemoveEffect(e.ID)
	}
	return o.setWindow(ctx, e, start, end)
}
