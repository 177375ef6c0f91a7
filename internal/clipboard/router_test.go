package clipboard

import (
	"errors"
	"testing"

	"github.com/reelcut/reelcut/internal/timeline"
)

// pasteProject builds a project with one clip on [0, 10000).
func pasteProject() (*timeline.Project, *timeline.Clip) {
	p := timeline.NewProject("test")
	clip := timeline.NewClip("rec1", 0, 0, 10_000)
	p.Tracks[0].Clips = append(p.Tracks[0].Clips, clip)
	p.Duration = 10_000
	return p, clip
}

func TestRouteEffect(t *testing.T) {
	tests := []struct {
		kind timeline.EffectKind
		want Strategy
	}{
		{timeline.KindZoom, StrategyRecordingBlock},
		{timeline.KindKeystroke, StrategyRecordingBlock},
		{timeline.KindBackground, StrategySingleton},
		{timeline.KindSubtitle, StrategyTimelineBlock},
		{timeline.KindCrop, StrategyTimelineBlock},
		{timeline.KindCursor, StrategyTimelineBlock},
		{timeline.KindScreen, StrategyTimelineBlock},
		{timeline.KindPlugin, StrategyTimelineBlock},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := RouteEffect(tt.kind); got != tt.want {
				t.Errorf("RouteEffect(%s) = %s, want %s", tt.kind, got, tt.want)
			}
		})
	}
}

func TestPlanEffectPasteEmpty(t *testing.T) {
	p, _ := pasteProject()
	if _, err := PlanEffectPaste(p, nil, 0, PasteDefaults{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("error = %v, want ErrEmpty", err)
	}
}

func TestPlanRecordingBlockAtPlayhead(t *testing.T) {
	p, _ := pasteProject()
	held := timeline.NewEffect(5_000, 6_500, timeline.ZoomData{Scale: 2})

	plan, err := PlanEffectPaste(p, held, 2_000, PasteDefaults{})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Insert == nil {
		t.Fatal("want an insert plan")
	}
	if plan.Insert.StartTime != 2_000 || plan.Insert.EndTime != 3_500 {
		t.Errorf("window = [%d, %d), want [2000, 3500)", plan.Insert.StartTime, plan.Insert.EndTime)
	}
	if plan.Insert.ID == held.ID {
		t.Error("pasted effect must get a fresh ID")
	}
}

func TestPlanRecordingBlockSlidesPastSameKind(t *testing.T) {
	p, _ := pasteProject()
	p.Effects = append(p.Effects, timeline.NewEffect(2_000, 4_000, timeline.ZoomData{Scale: 1.5}))
	held := timeline.NewEffect(0, 1_000, timeline.ZoomData{Scale: 2})

	plan, err := PlanEffectPaste(p, held, 2_500, PasteDefaults{})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	// The occupied window pushes the paste to its end.
	if plan.Insert.StartTime != 4_000 || plan.Insert.EndTime != 5_000 {
		t.Errorf("window = [%d, %d), want [4000, 5000)", plan.Insert.StartTime, plan.Insert.EndTime)
	}
}

func TestPlanRecordingBlockIgnoresOtherKinds(t *testing.T) {
	p, _ := pasteProject()
	p.Effects = append(p.Effects, timeline.NewEffect(2_000, 4_000, timeline.SubtitleData{Text: "hi"}))
	held := timeline.NewEffect(0, 1_000, timeline.ZoomData{Scale: 2})

	plan, err := PlanEffectPaste(p, held, 2_500, PasteDefaults{})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Insert.StartTime != 2_500 {
		t.Errorf("start = %d, want 2500; other kinds must not push the paste", plan.Insert.StartTime)
	}
}

func TestPlanRecordingBlockClampsToClip(t *testing.T) {
	p, _ := pasteProject()
	held := timeline.NewEffect(0, 3_000, timeline.ZoomData{Scale: 2})

	plan, err := PlanEffectPaste(p, held, 8_000, PasteDefaults{})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Insert.EndTime != 10_000 {
		t.Errorf("end = %d, want clamped to clip end", plan.Insert.EndTime)
	}
}

func TestPlanRecordingBlockNeedsClip(t *testing.T) {
	p, _ := pasteProject()
	held := timeline.NewEffect(0, 1_000, timeline.ZoomData{Scale: 2})

	if _, err := PlanEffectPaste(p, held, 11_000, PasteDefaults{}); !errors.Is(err, ErrNoClipAtPlayhead) {
		t.Errorf("error = %v, want ErrNoClipAtPlayhead", err)
	}
}

func TestPlanRecordingBlockNoRoom(t *testing.T) {
	p, _ := pasteProject()
	// A zoom already covers the rest of the clip.
	p.Effects = append(p.Effects, timeline.NewEffect(5_000, 10_000, timeline.ZoomData{Scale: 1.5}))
	held := timeline.NewEffect(0, 1_000, timeline.ZoomData{Scale: 2})

	if _, err := PlanEffectPaste(p, held, 6_000, PasteDefaults{}); !errors.Is(err, ErrNoRoom) {
		t.Errorf("error = %v, want ErrNoRoom", err)
	}
}

func TestPlanTimelineBlockAtPlayhead(t *testing.T) {
	p, _ := pasteProject()
	held := timeline.NewEffect(1_000, 2_200, timeline.SubtitleData{Text: "hi"})

	plan, err := PlanEffectPaste(p, held, 7_000, PasteDefaults{})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Insert.StartTime != 7_000 || plan.Insert.EndTime != 8_200 {
		t.Errorf("window = [%d, %d), want [7000, 8200)", plan.Insert.StartTime, plan.Insert.EndTime)
	}
	// Free blocks need no clip under the playhead.
	plan, err = PlanEffectPaste(p, held, 12_000, PasteDefaults{})
	if err != nil {
		t.Fatalf("plan past clip: %v", err)
	}
	if plan.Insert.StartTime != 12_000 {
		t.Errorf("start = %d, want 12000", plan.Insert.StartTime)
	}
}

func TestPlanTimelineBlockFallbackDuration(t *testing.T) {
	p, _ := pasteProject()
	held := timeline.NewEffect(3_000, 3_000, timeline.SubtitleData{Text: "hi"})

	plan, err := PlanEffectPaste(p, held, 0, PasteDefaults{})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if got := plan.Insert.Duration(); got != DefaultBlockDuration {
		t.Errorf("duration = %d, want default %d", got, DefaultBlockDuration)
	}

	plan, err = PlanEffectPaste(p, held, 0, PasteDefaults{BlockDuration: 750})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if got := plan.Insert.Duration(); got != 750 {
		t.Errorf("duration = %d, want configured 750", got)
	}
}

func TestPlanTimelineBlockRebindsClipBoundKind(t *testing.T) {
	p, clip := pasteProject()
	held := timeline.NewEffect(0, 2_000, timeline.CropData{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5})
	held.ClipID = "old-clip"

	plan, err := PlanEffectPaste(p, held, 4_000, PasteDefaults{})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Insert.ClipID != clip.ID {
		t.Errorf("clip binding = %q, want clip at playhead", plan.Insert.ClipID)
	}

	if _, err := PlanEffectPaste(p, held, 11_000, PasteDefaults{}); !errors.Is(err, ErrNoClipAtPlayhead) {
		t.Errorf("error = %v, want ErrNoClipAtPlayhead for clip-bound paste", err)
	}
}

func TestPlanSingletonUpdatesInPlace(t *testing.T) {
	p, _ := pasteProject()
	existing := timeline.NewEffect(0, 10_000, timeline.BackgroundData{Color: "#111111", Opacity: 1})
	p.Effects = append(p.Effects, existing)

	held := timeline.NewEffect(0, 0, timeline.BackgroundData{Color: "#FFAA00", Opacity: 0.5})

	plan, err := PlanEffectPaste(p, held, 0, PasteDefaults{})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Insert != nil {
		t.Error("singleton paste onto an existing background must not insert")
	}
	if plan.UpdateID != existing.ID {
		t.Errorf("update target = %q, want %q", plan.UpdateID, existing.ID)
	}
	bg, ok := plan.Data.(timeline.BackgroundData)
	if !ok {
		t.Fatalf("payload = %T", plan.Data)
	}
	if bg.Color != "#ffaa00" {
		t.Errorf("color = %q, want normalized lowercase", bg.Color)
	}
}

func TestPlanSingletonCreatesWhenAbsent(t *testing.T) {
	p, _ := pasteProject()
	held := timeline.NewEffect(3_000, 4_000, timeline.BackgroundData{Color: "#222222", Opacity: 1})

	plan, err := PlanEffectPaste(p, held, 0, PasteDefaults{})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Insert == nil {
		t.Fatal("want an insert plan")
	}
	if plan.Insert.StartTime != 0 || plan.Insert.EndTime != p.Duration {
		t.Errorf("window = [%d, %d), want the whole timeline", plan.Insert.StartTime, plan.Insert.EndTime)
	}
}

func TestPlanSingletonRejectsBadColor(t *testing.T) {
	p, _ := pasteProject()
	held := timeline.NewEffect(0, 0, timeline.BackgroundData{Color: "not-a-color", Opacity: 1})

	if _, err := PlanEffectPaste(p, held, 0, PasteDefaults{}); err == nil {
		t.Error("want color validation error")
	}
}

func TestPlanClipPaste(t *testing.T) {
	_, clip := pasteProject()
	bound := timeline.NewEffect(1_000, 2_000, timeline.CropData{Width: 1, Height: 1})
	bound.ClipID = clip.ID

	cb := New()
	cb.SetClip(clip, []*timeline.Effect{bound}, timeline.TrackVideo)

	target := timeline.NewTrack(timeline.TrackVideo)
	plan, err := PlanClipPaste(cb.Contents(), target, 20_000)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Clip.ID == clip.ID {
		t.Error("pasted clip must get a fresh ID")
	}
	if plan.Clip.StartTime != 20_000 {
		t.Errorf("start = %d, want 20000", plan.Clip.StartTime)
	}
	if len(plan.Effects) != 1 {
		t.Fatalf("effects = %d, want 1", len(plan.Effects))
	}
	eff := plan.Effects[0]
	if eff.ClipID != plan.Clip.ID {
		t.Error("bound effect must re-anchor to the duplicate")
	}
	if eff.StartTime != 21_000 || eff.EndTime != 22_000 {
		t.Errorf("effect window = [%d, %d), want shifted by 20000", eff.StartTime, eff.EndTime)
	}
}

func TestPlanClipPasteTrackKindMismatch(t *testing.T) {
	_, clip := pasteProject()

	cb := New()
	cb.SetClip(clip, nil, timeline.TrackVideo)

	target := timeline.NewTrack(timeline.TrackAudio)
	if _, err := PlanClipPaste(cb.Contents(), target, 0); !errors.Is(err, ErrTrackKind) {
		t.Errorf("error = %v, want ErrTrackKind", err)
	}
}

func TestPlanClipPasteEmpty(t *testing.T) {
	if _, err := PlanClipPaste(&Contents{}, timeline.NewTrack(timeline.TrackVideo), 0); !errors.Is(err, ErrEmpty) {
		t.Errorf("error = %v, want ErrEmpty", err)
	}
}

func TestClipboardHoldsCopies(t *testing.T) {
	cb := New()
	if !cb.IsEmpty() {
		t.Fatal("new clipboard should be empty")
	}

	clip := timeline.NewClip("rec1", 0, 0, 5_000)
	cb.SetClip(clip, nil, timeline.TrackVideo)

	// Mutating the source after copy must not leak into the clipboard.
	clip.StartTime = 9_999

	held := cb.Contents()
	if held.Clip.StartTime != 0 {
		t.Error("clipboard aliases the copied clip")
	}

	// Reads are non-destructive and independent of each other.
	held.Clip.StartTime = 1
	again := cb.Contents()
	if again.Clip.StartTime != 0 {
		t.Error("contents copies must not alias each other")
	}

	cb.Clear()
	if !cb.IsEmpty() || cb.Contents() != nil {
		t.Error("clear should empty the clipboard")
	}
}

func TestClipboardEffectReplacesClip(t *testing.T) {
	cb := New()
	cb.SetClip(timeline.NewClip("rec1", 0, 0, 5_000), nil, timeline.TrackVideo)
	cb.SetEffect(timeline.NewEffect(0, 1_000, timeline.ZoomData{Scale: 2}))

	held := cb.Contents()
	if held.HasClip() {
		t.Error("setting an effect must replace the held clip")
	}
	if !held.HasEffect() {
		t.Error("effect should be held")
	}
}
