package effectsync

import (
	"testing"

	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/patch"
	"github.com/reelcut/reelcut/internal/timeline"
)

func TestTrimStartReconcilesWindowEffects(t *testing.T) {
	env := syncEnv(New())
	p := testProject()
	p, clipID := addClip(t, p, env, 0, 10_000)
	p, gone := addEffect(t, p, env, &command.AddEffect{
		Start: 0, End: 2_000,
		Data: timeline.ZoomData{Scale: 2, FocusX: 0.25},
	})
	p, straddler := addEffect(t, p, env, &command.AddEffect{
		Start: 2_500, End: 4_000,
		Data: timeline.SubtitleData{Text: "hold on"},
	})
	p, outside := addEffect(t, p, env, &command.AddEffect{
		Start: 5_000, End: 6_000,
		Data: timeline.ZoomData{Scale: 1.5},
	})

	next, txn := run(t, p, &command.TrimClip{ClipID: clipID, Amount: 3_000, Edge: command.EdgeStart}, env)

	clip, _ := next.ClipByID(clipID)
	if clip.StartTime != 0 || clip.Duration != 7_000 {
		t.Errorf("clip = [%d, +%d), want [0, +7000)", clip.StartTime, clip.Duration)
	}
	if clip.SourceIn != 3_000 {
		t.Errorf("SourceIn = %d, want 3000", clip.SourceIn)
	}

	// The vacated span is the leading [0, 3000).
	if next.EffectByID(gone) != nil {
		t.Error("zoom inside the trimmed-away span should be removed")
	}
	wantWindow(t, next, straddler, 3_000, 4_000)
	wantWindow(t, next, outside, 5_000, 6_000)

	reverted, err := patch.Apply(next, txn.Inverse)
	if err != nil {
		t.Fatalf("apply inverse: %v", err)
	}
	if clip, _ := reverted.ClipByID(clipID); clip.Duration != 10_000 || clip.SourceIn != 0 {
		t.Errorf("undo left clip %+v, want duration 10000 and SourceIn 0", clip)
	}
	back := effectByID(t, reverted, gone)
	if got, want := back.Data.(timeline.ZoomData), (timeline.ZoomData{Scale: 2, FocusX: 0.25}); got != want {
		t.Errorf("restored zoom payload = %+v, want %+v", got, want)
	}
	wantWindow(t, reverted, gone, 0, 2_000)
	wantWindow(t, reverted, straddler, 2_500, 4_000)
}

func TestTrimEndClampsBoundEffects(t *testing.T) {
	env := syncEnv(New())
	p := testProject()
	p, clipID := addClip(t, p, env, 0, 10_000)
	p, crop := addEffect(t, p, env, &command.AddEffect{
		Start: 5_000, End: 9_000, ClipID: clipID,
		Data: timeline.CropData{Width: 0.8, Height: 0.8},
	})
	p, inside := addEffect(t, p, env, &command.AddEffect{
		Start: 8_000, End: 9_500,
		Data: timeline.SubtitleData{Text: "tail"},
	})
	p, straddler := addEffect(t, p, env, &command.AddEffect{
		Start: 6_000, End: 8_000,
		Data: timeline.ZoomData{Scale: 2},
	})

	next, _ := run(t, p, &command.TrimClip{ClipID: clipID, Amount: 3_000, Edge: command.EdgeEnd}, env)

	clip, _ := next.ClipByID(clipID)
	if clip.Duration != 7_000 || clip.SourceOut != 7_000 {
		t.Errorf("clip duration = %d, SourceOut = %d, want 7000 and 7000", clip.Duration, clip.SourceOut)
	}

	// Bound effects clamp to the new clip end; they never extend past it.
	wantWindow(t, next, crop, 5_000, 7_000)
	if next.EffectByID(inside) != nil {
		t.Error("caption inside the trimmed-away span should be removed")
	}
	wantWindow(t, next, straddler, 6_000, 7_000)
}
