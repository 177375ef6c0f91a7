package effectsync

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/timeline"
)

// clipTrimmed reconciles effects after a clip lost content at one edge.
//
// The trimmed-away span is where the removed content used to play: the
// leading [oldStart, oldStart+amount) for a start trim, the trailing
// [oldEnd-amount, oldEnd) for an end trim. Window effects fully inside that
// span are removed and straddlers are truncated out of it; everything else
// is untouched. Effects bound to the trimmed clip are clamped into its new
// range, never extended.
func (o *Orchestrator) clipTrimmed(ctx *command.Context, ch timeline.ClipChange) error {
	before, after := ch.Before, ch.After
	if before == nil || after == nil {
		return fmt.Errorf("effectsync: trim change for clip %s is missing a state snapshot", ch.ClipID)
	}

	amount := before.Duration() - after.Duration()
	if amount <= 0 {
		return nil
	}

	var from, to timeline.Millis
	if ch.Kind == timeline.ChangeTrimStart {
		from, to = before.StartTime, before.StartTime+amount
	} else {
		from, to = before.EndTime-amount, before.EndTime
	}

	for _, e := range ctx.Effects() {
		if e.ClipID == ch.ClipID {
			if err := o.clampToClip(ctx, e, after.StartTime, after.EndTime); err != nil {
				return err
			}
			continue
		}
		if e.ClipID != "" || e.Kind.Singleton() {
			continue
		}

		switch {
		case e.Inside(from, to):
			if err := ctx.RemoveEffect(e.ID); err != nil {
				return err
			}
		case e.Overlaps(from, to):
			if err := o.truncateAround(ctx, e, from, to); err != nil {
				return err
			}
		}
	}
	return nil
}

// clampToClip confines a clip-bound effect's window to [clipStart, clipEnd),
// removing it when nothing remains.
func (o *Orchestrator) clampToClip(ctx *command.Context, e *timeline.Effect, clipStart, clipEnd timeline.Millis) error {
	start := e.StartTime.Clamp(clipStart, clipEnd)
	end := e.EndTime.Clamp(clipStart, clipEnd)
	if end <= start {
		return ctx.RemoveEffect(e.ID)
	}
	return o.setWindow(ctx, e, start, end)
}
