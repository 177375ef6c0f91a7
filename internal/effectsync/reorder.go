package effectsync

import (
	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/timeline"
)

// clipsReordered shifts effects after a track reflow moved several clips at
// once.
//
// Every moved clip has a per-instance delta (new start minus old start).
// Clip-bound effects follow their own clip. A window effect follows the
// clip whose pre-change range contained the effect's midpoint; ownership
// cannot go by ID since multiple clips moved in the same transaction.
// Window effects anchored in no moved clip (a gap, or past the track end)
// stay where they are.
func (o *Orchestrator) clipsReordered(ctx *command.Context, ch timeline.ClipChange) error {
	if len(ch.PrevStarts) == 0 {
		return nil
	}
	a := anchorsOf(ctx, ch.PrevStarts, nil)

	for _, e := range ctx.Effects() {
		if e.Kind.Singleton() {
			continue
		}

		if e.ClipID != "" {
			if err := o.shift(ctx, e, a.delta(e.ClipID)); err != nil {
				return err
			}
			continue
		}

		if id, ok := a.owner(e.Midpoint()); ok {
			if err := o.shift(ctx, e, a.delta(id)); err != nil {
				return err
			}
		}
	}
	return nil
}
