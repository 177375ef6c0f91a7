package command

import (
	"github.com/reelcut/reelcut/internal/timeline"
)

// SuppressionKeyFor returns the tombstone key for a derived block, and
// whether e is one. Only the typing-highlight (Keystroke) family records
// tombstones; other derived families delete as plain absence and may be
// recreated by a later derivation pass.
func SuppressionKeyFor(e *timeline.Effect) (timeline.SuppressionKey, bool) {
	switch d := e.Data.(type) {
	case timeline.KeystrokeData:
		if d.Derived {
			return timeline.SuppressionKey{RecordingID: d.RecordingID, ClusterIndex: d.ClusterIndex}, true
		}
	}
	return timeline.SuppressionKey{}, false
}

// RecordSuppression writes a tombstone for a derived block being removed so
// the next derivation pass does not recreate it. Tombstones live in the
// Background singleton's payload; the write is recorded like any other, so
// undoing the removal also removes the tombstone.
func RecordSuppression(ctx *Context, e *timeline.Effect) error {
	key, ok := SuppressionKeyFor(e)
	if !ok {
		return nil
	}

	bg := ctx.Project().Background()
	if bg == nil {
		eff := timeline.NewEffect(0, 0, timeline.BackgroundData{
			Opacity:    1,
			Suppressed: []timeline.SuppressionKey{key},
		})
		return ctx.InsertEffect(eff)
	}

	return ctx.UpdateEffect(bg.ID, func(x *timeline.Effect) {
		if data, ok := x.Data.(timeline.BackgroundData); ok {
			x.Data = data.WithSuppression(key)
		}
	})
}
