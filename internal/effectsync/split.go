package effectsync

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/timeline"
)

// clipSplit re-anchors clip-bound effects after a clip was cut in two.
//
// Each effect bound to the retired original is duplicated: one copy per
// half, same payload, window re-scoped to the half's full timeline range.
// Window effects are untouched; the aggregate timeline range did not
// change, so a window spanning the cut already covers both halves.
func (o *Orchestrator) clipSplit(ctx *command.Context, ch timeline.ClipChange) error {
	before, after := ch.Before, ch.After
	if before == nil || after == nil {
		return fmt.Errorf("effectsync: split change for clip %s is missing a state snapshot", ch.ClipID)
	}
	leftID, rightID := ch.NewClipIDs[0], ch.NewClipIDs[1]
	if leftID == "" || rightID == "" {
		return fmt.Errorf("effectsync: split change for clip %s names no halves", ch.ClipID)
	}

	for _, e := range ctx.Effects() {
		if e.ClipID != ch.ClipID {
			continue
		}

		left := e.Clone()
		left.ID = timeline.NewID()
		left.ClipID = leftID
		left.StartTime = after.StartTime
		left.EndTime = after.EndTime

		right := e.Clone()
		right.ID = timeline.NewID()
		right.ClipID = rightID
		right.StartTime = after.EndTime
		right.EndTime = before.EndTime

		if err := ctx.RemoveEffect(e.ID); err != nil {
			return err
		}
		if err := ctx.InsertEffect(left); err != nil {
			return err
		}
		if err := ctx.InsertEffect(right); err != nil {
			return err
		}
	}
	return nil
}
