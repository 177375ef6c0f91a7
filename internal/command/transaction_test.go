package command

import (
	"errors"
	"testing"

	"github.com/reelcut/reelcut/internal/clipboard"
	"github.com/reelcut/reelcut/internal/patch"
	"github.com/reelcut/reelcut/internal/timeline"
)

// Test fixtures. Most command tests share one recording on one track.

func testProject() *timeline.Project {
	p := timeline.NewProject("test")
	p.Recordings["rec1"] = &timeline.Recording{
		ID:       "rec1",
		Name:     "capture",
		Duration: 60_000,
	}
	return p
}

func testEnv() Env {
	return Env{Clipboard: clipboard.New()}
}

// run executes cmd and fails the test on any transaction error.
func run(t *testing.T, p *timeline.Project, cmd Command, env Env) (*timeline.Project, *Txn) {
	t.Helper()
	txn, res, err := Run(p, cmd, env)
	if err != nil {
		t.Fatalf("%s: %v", cmd.Name(), err)
	}
	if !res.IsOK() && res.Status != StatusNoOp {
		t.Fatalf("%s: unexpected status %s", cmd.Name(), res.Status)
	}
	if txn == nil {
		return p, nil
	}
	return txn.Next, txn
}

// addClip appends a clip over [sourceIn, sourceOut) and returns its ID.
func addClip(t *testing.T, p *timeline.Project, sourceIn, sourceOut timeline.Millis) (*timeline.Project, string) {
	t.Helper()
	next, txn := run(t, p, &AddClip{
		TrackID:     p.Tracks[0].ID,
		RecordingID: "rec1",
		At:          -1,
		SourceIn:    sourceIn,
		SourceOut:   sourceOut,
	}, testEnv())
	if txn == nil {
		t.Fatal("add clip recorded no ops")
	}
	return next, next.Selection[0]
}

func TestRunGuardRejection(t *testing.T) {
	p := testProject()

	txn, res, err := Run(p, &AddClip{TrackID: "missing", RecordingID: "rec1", SourceOut: 100}, testEnv())
	if !errors.Is(err, ErrGuardRejected) {
		t.Errorf("error = %v, want ErrGuardRejected", err)
	}
	if res.Status != StatusRejected {
		t.Errorf("status = %s, want rejected", res.Status)
	}
	if res.Message == "" {
		t.Error("rejection should carry a reason string")
	}
	if txn != nil {
		t.Error("rejected command must not produce a transaction")
	}
}

func TestRunCommitLeavesBaseUntouched(t *testing.T) {
	base := testProject()

	next, _ := addClip(t, base, 0, 10_000)

	if len(base.Tracks[0].Clips) != 0 {
		t.Error("base snapshot was mutated")
	}
	if len(next.Tracks[0].Clips) != 1 {
		t.Fatalf("next has %d clips, want 1", len(next.Tracks[0].Clips))
	}
	if base.Duration != 0 || next.Duration != 10_000 {
		t.Errorf("durations = %d / %d, want 0 / 10000", base.Duration, next.Duration)
	}
}

func TestRunInverseRevertsCommit(t *testing.T) {
	base := testProject()
	next, txn := run(t, base, &AddClip{
		TrackID:     base.Tracks[0].ID,
		RecordingID: "rec1",
		At:          -1,
		SourceIn:    0,
		SourceOut:   10_000,
	}, testEnv())
	if txn == nil {
		t.Fatal("add clip recorded no ops")
	}

	reverted, err := patch.Apply(next, txn.Inverse)
	if err != nil {
		t.Fatalf("apply inverse: %v", err)
	}
	if len(reverted.Tracks[0].Clips) != 0 {
		t.Errorf("reverted has %d clips, want 0", len(reverted.Tracks[0].Clips))
	}
	if reverted.Duration != 0 {
		t.Errorf("reverted duration = %d, want 0", reverted.Duration)
	}
	if len(reverted.Selection) != 0 {
		t.Errorf("reverted selection = %v, want empty", reverted.Selection)
	}
	// Re-applying the forward set lands back on the committed state.
	redone, err := patch.Apply(reverted, txn.Forward)
	if err != nil {
		t.Fatalf("apply forward: %v", err)
	}
	if len(redone.Tracks[0].Clips) != 1 || redone.Duration != 10_000 {
		t.Error("forward set did not reproduce the committed state")
	}
}

func TestRunMutationFailureRollsBack(t *testing.T) {
	p := testProject()

	// Source window extends beyond the recording; guard passes, mutation
	// rejects.
	txn, res, err := Run(p, &AddClip{
		TrackID:     p.Tracks[0].ID,
		RecordingID: "rec1",
		At:          -1,
		SourceOut:   61_000,
	}, testEnv())
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", err)
	}
	if res.Status != StatusError {
		t.Errorf("status = %s, want error", res.Status)
	}
	if txn != nil {
		t.Error("failed mutation must not commit")
	}
	if len(p.Tracks[0].Clips) != 0 {
		t.Error("base snapshot was mutated by a failed transaction")
	}
}

func TestRunClassifiesUnknownErrors(t *testing.T) {
	err := Classify(errors.New("boom"))
	if !errors.Is(err, ErrMutationFailed) {
		t.Errorf("Classify(boom) = %v, want ErrMutationFailed wrap", err)
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) should stay nil")
	}
}

func TestRunNoOpYieldsNoTransaction(t *testing.T) {
	p := testProject()

	txn, res, err := Run(p, &ClearSelect{}, testEnv())
	if err != nil {
		t.Fatalf("clear select: %v", err)
	}
	if txn != nil {
		t.Error("no-write command produced a transaction")
	}
	if res.Status == StatusError {
		t.Errorf("status = %s", res.Status)
	}
}

func TestRunSyncWritesJoinTransaction(t *testing.T) {
	p := testProject()

	env := testEnv()
	env.Sync = func(ctx *Context, ch timeline.ClipChange) error {
		if ch.Kind != timeline.ChangeAdd {
			return nil
		}
		return ctx.InsertEffect(timeline.NewEffect(ch.After.StartTime, ch.After.EndTime, timeline.ZoomData{Scale: 2}))
	}

	next, txn := run(t, p, &AddClip{
		TrackID:     p.Tracks[0].ID,
		RecordingID: "rec1",
		At:          -1,
		SourceOut:   5_000,
	}, env)
	if len(next.Effects) != 1 {
		t.Fatalf("effects = %d, want 1", len(next.Effects))
	}

	// Undoing the clip add removes the synchronized effect too.
	reverted, err := patch.Apply(next, txn.Inverse)
	if err != nil {
		t.Fatalf("apply inverse: %v", err)
	}
	if len(reverted.Effects) != 0 {
		t.Error("inverse did not revert the synchronized effect")
	}
}

func TestRunSyncErrorAbortsTransaction(t *testing.T) {
	p := testProject()

	env := testEnv()
	env.Sync = func(*Context, timeline.ClipChange) error {
		return errors.New("sync exploded")
	}

	txn, res, err := Run(p, &AddClip{
		TrackID:     p.Tracks[0].ID,
		RecordingID: "rec1",
		At:          -1,
		SourceOut:   5_000,
	}, env)
	if err == nil {
		t.Fatal("want error from failing sync")
	}
	if !errors.Is(err, ErrMutationFailed) {
		t.Errorf("error = %v, want ErrMutationFailed classification", err)
	}
	if txn != nil || res.Status != StatusError {
		t.Error("failing sync must abort the whole transaction")
	}
}

func TestCoalesceKeyOf(t *testing.T) {
	trim := &TrimClip{ClipID: "c1", Amount: 100, Edge: EdgeStart}
	if got := CoalesceKeyOf(trim); got != "clip.trim:c1:start" {
		t.Errorf("CoalesceKeyOf(trim) = %q", got)
	}
	if got := CoalesceKeyOf(&DeleteClip{ClipID: "c1"}); got != "" {
		t.Errorf("CoalesceKeyOf(delete) = %q, want empty", got)
	}
}
