package command

import (
	"errors"
	"testing"

	"github.com/reelcut/reelcut/internal/patch"
	"github.com/reelcut/reelcut/internal/timeline"
)

// threeClips returns a project with clips of 10s, 5s and 10s appended
// back-to-back on the first track, plus the clip IDs in order.
func threeClips(t *testing.T) (*timeline.Project, []string) {
	t.Helper()
	p := testProject()
	var ids []string
	for _, span := range [][2]timeline.Millis{{0, 10_000}, {10_000, 15_000}, {15_000, 25_000}} {
		var id string
		p, id = addClip(t, p, span[0], span[1])
		ids = append(ids, id)
	}
	return p, ids
}

func clipByID(t *testing.T, p *timeline.Project, id string) *timeline.Clip {
	t.Helper()
	clip, _ := p.ClipByID(id)
	if clip == nil {
		t.Fatalf("clip %s not found", id)
	}
	return clip
}

func TestAddClipAppendsSequentially(t *testing.T) {
	p, ids := threeClips(t)

	wantStarts := []timeline.Millis{0, 10_000, 15_000}
	for i, id := range ids {
		if got := clipByID(t, p, id).StartTime; got != wantStarts[i] {
			t.Errorf("clip %d starts at %d, want %d", i, got, wantStarts[i])
		}
	}
	if p.Duration != 25_000 {
		t.Errorf("duration = %d, want 25000", p.Duration)
	}
	if len(p.Selection) != 1 || p.Selection[0] != ids[2] {
		t.Errorf("selection = %v, want last added clip", p.Selection)
	}
}

func TestAddClipRateScalesDuration(t *testing.T) {
	p := testProject()

	next, txn := run(t, p, &AddClip{
		TrackID:     p.Tracks[0].ID,
		RecordingID: "rec1",
		At:          -1,
		SourceIn:    0,
		SourceOut:   10_000,
		Rate:        2.0,
	}, testEnv())
	if txn == nil {
		t.Fatal("no transaction")
	}

	clip := next.Tracks[0].Clips[0]
	if clip.Duration != 5_000 {
		t.Errorf("duration = %d, want 5000 at rate 2", clip.Duration)
	}
	if clip.PlaybackRate != 2.0 {
		t.Errorf("rate = %g, want 2", clip.PlaybackRate)
	}
}

func TestDeleteClipKeepsGap(t *testing.T) {
	p, ids := threeClips(t)

	next, _ := run(t, p, &DeleteClip{ClipID: ids[1]}, testEnv())

	if clip, _ := next.ClipByID(ids[1]); clip != nil {
		t.Fatal("deleted clip still present")
	}
	// Plain delete leaves downstream clips where they were.
	if got := clipByID(t, next, ids[2]).StartTime; got != 15_000 {
		t.Errorf("downstream clip moved to %d, want 15000", got)
	}
	if next.Duration != 25_000 {
		t.Errorf("duration = %d, want 25000", next.Duration)
	}
}

func TestDeleteClipRippleReflows(t *testing.T) {
	p, ids := threeClips(t)

	next, txn := run(t, p, &DeleteClip{ClipID: ids[1], Ripple: true}, testEnv())

	if got := clipByID(t, next, ids[2]).StartTime; got != 10_000 {
		t.Errorf("downstream clip at %d, want 10000", got)
	}
	if next.Duration != 20_000 {
		t.Errorf("duration = %d, want 20000", next.Duration)
	}

	reverted, err := patch.Apply(next, txn.Inverse)
	if err != nil {
		t.Fatalf("apply inverse: %v", err)
	}
	if got := clipByID(t, reverted, ids[2]).StartTime; got != 15_000 {
		t.Errorf("undo left downstream clip at %d, want 15000", got)
	}
	if clip, _ := reverted.ClipByID(ids[1]); clip == nil {
		t.Error("undo did not restore the deleted clip")
	}
}

func TestDeleteClipDropsSelection(t *testing.T) {
	p, ids := threeClips(t)
	// The last add selected ids[2].
	next, _ := run(t, p, &DeleteClip{ClipID: ids[2]}, testEnv())
	if len(next.Selection) != 0 {
		t.Errorf("selection = %v, want empty after deleting selected clip", next.Selection)
	}
}

func TestTrimClipStart(t *testing.T) {
	p := testProject()
	p, id := addClip(t, p, 0, 10_000)

	next, txn := run(t, p, &TrimClip{ClipID: id, Amount: 3_000, Edge: EdgeStart}, testEnv())

	clip := clipByID(t, next, id)
	if clip.StartTime != 0 {
		t.Errorf("start = %d, want 0 (trims do not move clips)", clip.StartTime)
	}
	if clip.Duration != 7_000 {
		t.Errorf("duration = %d, want 7000", clip.Duration)
	}
	if clip.SourceIn != 3_000 || clip.SourceOut != 10_000 {
		t.Errorf("source window = [%d, %d), want [3000, 10000)", clip.SourceIn, clip.SourceOut)
	}

	reverted, err := patch.Apply(next, txn.Inverse)
	if err != nil {
		t.Fatalf("apply inverse: %v", err)
	}
	back := clipByID(t, reverted, id)
	if back.Duration != 10_000 || back.SourceIn != 0 {
		t.Errorf("undo gave duration=%d sourceIn=%d, want 10000/0", back.Duration, back.SourceIn)
	}
}

func TestTrimClipEnd(t *testing.T) {
	p := testProject()
	p, id := addClip(t, p, 2_000, 12_000)

	next, _ := run(t, p, &TrimClip{ClipID: id, Amount: 4_000, Edge: EdgeEnd}, testEnv())

	clip := clipByID(t, next, id)
	if clip.Duration != 6_000 {
		t.Errorf("duration = %d, want 6000", clip.Duration)
	}
	if clip.SourceIn != 2_000 || clip.SourceOut != 8_000 {
		t.Errorf("source window = [%d, %d), want [2000, 8000)", clip.SourceIn, clip.SourceOut)
	}
}

func TestTrimClipScalesSourceByRate(t *testing.T) {
	p := testProject()
	next, txn := run(t, p, &AddClip{
		TrackID:     p.Tracks[0].ID,
		RecordingID: "rec1",
		At:          -1,
		SourceOut:   10_000,
		Rate:        2.0,
	}, testEnv())
	if txn == nil {
		t.Fatal("no transaction")
	}
	id := next.Selection[0]

	// 1s of timeline at rate 2 consumes 2s of source.
	next, _ = run(t, next, &TrimClip{ClipID: id, Amount: 1_000, Edge: EdgeStart}, testEnv())

	clip := clipByID(t, next, id)
	if clip.Duration != 4_000 {
		t.Errorf("duration = %d, want 4000", clip.Duration)
	}
	if clip.SourceIn != 2_000 {
		t.Errorf("sourceIn = %d, want 2000", clip.SourceIn)
	}
}

func TestTrimClipGuardBounds(t *testing.T) {
	p := testProject()
	p, id := addClip(t, p, 0, 10_000)

	tests := []struct {
		name   string
		amount timeline.Millis
	}{
		{"zero amount", 0},
		{"negative amount", -100},
		{"full duration", 10_000},
		{"beyond duration", 12_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Run(p, &TrimClip{ClipID: id, Amount: tt.amount, Edge: EdgeEnd}, testEnv())
			if !errors.Is(err, ErrGuardRejected) {
				t.Errorf("error = %v, want ErrGuardRejected", err)
			}
		})
	}
}

func TestSplitClip(t *testing.T) {
	p := testProject()
	p, id := addClip(t, p, 0, 10_000)

	next, txn := run(t, p, &SplitClip{ClipID: id, At: 4_000}, testEnv())

	if clip, _ := next.ClipByID(id); clip != nil {
		t.Error("original clip should be retired by the split")
	}
	clips := next.Tracks[0].Clips
	if len(clips) != 2 {
		t.Fatalf("%d clips after split, want 2", len(clips))
	}

	left, right := clips[0], clips[1]
	if left.StartTime != 0 || left.Duration != 4_000 {
		t.Errorf("left = [%d, +%d), want [0, +4000)", left.StartTime, left.Duration)
	}
	if right.StartTime != 4_000 || right.Duration != 6_000 {
		t.Errorf("right = [%d, +%d), want [4000, +6000)", right.StartTime, right.Duration)
	}
	if left.SourceOut != 4_000 || right.SourceIn != 4_000 {
		t.Errorf("source boundary = %d / %d, want 4000 / 4000", left.SourceOut, right.SourceIn)
	}
	if left.ID == id || right.ID == id || left.ID == right.ID {
		t.Error("split halves must have fresh distinct ids")
	}
	if len(next.Selection) != 1 || next.Selection[0] != right.ID {
		t.Errorf("selection = %v, want right half", next.Selection)
	}

	reverted, err := patch.Apply(next, txn.Inverse)
	if err != nil {
		t.Fatalf("apply inverse: %v", err)
	}
	back := clipByID(t, reverted, id)
	if back.Duration != 10_000 {
		t.Errorf("undo gave duration %d, want 10000", back.Duration)
	}
	if len(reverted.Tracks[0].Clips) != 1 {
		t.Errorf("undo left %d clips, want 1", len(reverted.Tracks[0].Clips))
	}
}

func TestSplitClipResultCarriesHalfIDs(t *testing.T) {
	p := testProject()
	p, id := addClip(t, p, 0, 10_000)

	txn, res, err := Run(p, &SplitClip{ClipID: id, At: 5_000}, testEnv())
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	leftID := res.GetDataString("leftID")
	rightID := res.GetDataString("rightID")
	if leftID == "" || rightID == "" {
		t.Fatal("result should carry both half ids")
	}
	if clip, _ := txn.Next.ClipByID(leftID); clip == nil {
		t.Error("leftID does not resolve")
	}
	if clip, _ := txn.Next.ClipByID(rightID); clip == nil {
		t.Error("rightID does not resolve")
	}
}

func TestSplitClipBoundaryRejected(t *testing.T) {
	p := testProject()
	p, id := addClip(t, p, 0, 10_000)

	for _, at := range []timeline.Millis{0, 10_000, 12_000} {
		if _, _, err := Run(p, &SplitClip{ClipID: id, At: at}, testEnv()); !errors.Is(err, ErrGuardRejected) {
			t.Errorf("split at %d: error = %v, want ErrGuardRejected", at, err)
		}
	}
}

func TestSplitClipProjectsSourceAtRate(t *testing.T) {
	p := testProject()
	next, txn := run(t, p, &AddClip{
		TrackID:     p.Tracks[0].ID,
		RecordingID: "rec1",
		At:          -1,
		SourceOut:   10_000,
		Rate:        2.0,
	}, testEnv())
	if txn == nil {
		t.Fatal("no transaction")
	}
	id := next.Selection[0]

	next, _ = run(t, next, &SplitClip{ClipID: id, At: 2_000}, testEnv())

	clips := next.Tracks[0].Clips
	if clips[0].SourceOut != 4_000 || clips[1].SourceIn != 4_000 {
		t.Errorf("source boundary = %d / %d, want 4000 at rate 2", clips[0].SourceOut, clips[1].SourceIn)
	}
}

func TestReorderClipPacksFromOrigin(t *testing.T) {
	p, ids := threeClips(t)

	next, txn := run(t, p, &ReorderClip{ClipID: ids[0], ToIndex: 2}, testEnv())

	order := next.Tracks[0].Clips
	want := []string{ids[1], ids[2], ids[0]}
	for i, clip := range order {
		if clip.ID != want[i] {
			t.Fatalf("position %d holds %s, want %s", i, clip.ID, want[i])
		}
	}
	wantStarts := []timeline.Millis{0, 5_000, 15_000}
	for i, clip := range order {
		if clip.StartTime != wantStarts[i] {
			t.Errorf("position %d starts at %d, want %d", i, clip.StartTime, wantStarts[i])
		}
	}

	reverted, err := patch.Apply(next, txn.Inverse)
	if err != nil {
		t.Fatalf("apply inverse: %v", err)
	}
	if got := clipByID(t, reverted, ids[0]).StartTime; got != 0 {
		t.Errorf("undo left moved clip at %d, want 0", got)
	}
}

func TestReorderClipSameIndexIsNoOp(t *testing.T) {
	p, ids := threeClips(t)

	txn, res, err := Run(p, &ReorderClip{ClipID: ids[1], ToIndex: 1}, testEnv())
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if txn != nil || res.Status != StatusNoOp {
		t.Error("reordering to the same index should be a recorded no-op")
	}
}

func TestRateClipReflowsDownstream(t *testing.T) {
	p, ids := threeClips(t)

	next, _ := run(t, p, &RateClip{ClipID: ids[0], Rate: 2.0}, testEnv())

	if got := clipByID(t, next, ids[0]).Duration; got != 5_000 {
		t.Errorf("retimed duration = %d, want 5000", got)
	}
	if got := clipByID(t, next, ids[1]).StartTime; got != 5_000 {
		t.Errorf("second clip at %d, want 5000", got)
	}
	if got := clipByID(t, next, ids[2]).StartTime; got != 10_000 {
		t.Errorf("third clip at %d, want 10000", got)
	}
	if next.Duration != 20_000 {
		t.Errorf("duration = %d, want 20000", next.Duration)
	}
}

func TestRateClipRejectsOutOfRange(t *testing.T) {
	p := testProject()
	p, id := addClip(t, p, 0, 10_000)

	for _, rate := range []float64{0, 0.01, 17} {
		if _, _, err := Run(p, &RateClip{ClipID: id, Rate: rate}, testEnv()); !errors.Is(err, ErrGuardRejected) {
			t.Errorf("rate %g: error = %v, want ErrGuardRejected", rate, err)
		}
	}
}

func TestUpdateClipWindow(t *testing.T) {
	p, ids := threeClips(t)

	in := timeline.Millis(2_000)
	out := timeline.Millis(6_000)
	next, _ := run(t, p, &UpdateClipWindow{ClipID: ids[0], SourceIn: &in, SourceOut: &out}, testEnv())

	clip := clipByID(t, next, ids[0])
	if clip.SourceIn != 2_000 || clip.SourceOut != 6_000 {
		t.Errorf("window = [%d, %d), want [2000, 6000)", clip.SourceIn, clip.SourceOut)
	}
	if clip.Duration != 4_000 {
		t.Errorf("duration = %d, want 4000", clip.Duration)
	}
	// The shrink reflows downstream clips.
	if got := clipByID(t, next, ids[1]).StartTime; got != 4_000 {
		t.Errorf("second clip at %d, want 4000", got)
	}
}

func TestUpdateClipWindowRejectsOutside(t *testing.T) {
	p := testProject()
	p, id := addClip(t, p, 0, 10_000)

	out := timeline.Millis(61_000)
	_, _, err := Run(p, &UpdateClipWindow{ClipID: id, SourceOut: &out}, testEnv())
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", err)
	}
}
