package effectsync

import (
	"errors"
	"strings"
	"testing"

	"github.com/reelcut/reelcut/internal/clipboard"
	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/timeline"
)

// Test fixtures. Sync tests drive real commands through a transaction
// environment wired to the orchestrator, so assertions cover the same path
// an editor session takes: mutate, drain deferred changes, finalize patches.

func testProject() *timeline.Project {
	p := timeline.NewProject("sync test")
	p.Recordings["rec1"] = &timeline.Recording{
		ID:       "rec1",
		Name:     "capture",
		Duration: 120_000,
	}
	return p
}

func syncEnv(o *Orchestrator) command.Env {
	return command.Env{Clipboard: clipboard.New(), Sync: o.SyncFunc()}
}

// run executes cmd and fails the test on any transaction error.
func run(t *testing.T, p *timeline.Project, cmd command.Command, env command.Env) (*timeline.Project, *command.Txn) {
	t.Helper()
	txn, res, err := command.Run(p, cmd, env)
	if err != nil {
		t.Fatalf("%s: %v", cmd.Name(), err)
	}
	if !res.IsOK() && res.Status != command.StatusNoOp {
		t.Fatalf("%s: unexpected status %s", cmd.Name(), res.Status)
	}
	if txn == nil {
		return p, nil
	}
	return txn.Next, txn
}

// addClip appends a rate-1 clip playing [sourceIn, sourceOut) and returns
// its ID.
func addClip(t *testing.T, p *timeline.Project, env command.Env, sourceIn, sourceOut timeline.Millis) (*timeline.Project, string) {
	t.Helper()
	next, txn := run(t, p, &command.AddClip{
		TrackID:     p.Tracks[0].ID,
		RecordingID: "rec1",
		At:          -1,
		SourceIn:    sourceIn,
		SourceOut:   sourceOut,
	}, env)
	if txn == nil {
		t.Fatal("add clip recorded no ops")
	}
	return next, next.Selection[0]
}

// addEffect inserts an effect and returns the snapshot plus the effect ID.
func addEffect(t *testing.T, p *timeline.Project, env command.Env, cmd *command.AddEffect) (*timeline.Project, string) {
	t.Helper()
	txn, res, err := command.Run(p, cmd, env)
	if err != nil {
		t.Fatalf("add effect: %v", err)
	}
	id := res.GetDataString("effectID")
	if id == "" {
		t.Fatal("add effect returned no id")
	}
	return txn.Next, id
}

func effectByID(t *testing.T, p *timeline.Project, id string) *timeline.Effect {
	t.Helper()
	e := p.EffectByID(id)
	if e == nil {
		t.Fatalf("effect %s not found", id)
	}
	return e
}

func wantWindow(t *testing.T, p *timeline.Project, id string, start, end timeline.Millis) {
	t.Helper()
	e := effectByID(t, p, id)
	if e.StartTime != start || e.EndTime != end {
		t.Errorf("effect window = [%d, %d), want [%d, %d)", e.StartTime, e.EndTime, start, end)
	}
}

// stubHooks is a canned HookRunner. It records the windows it was called
// with and either fails or substitutes Params.
type stubHooks struct {
	calls  int
	starts []timeline.Millis
	ends   []timeline.Millis
	params map[string]any
	err    error
}

func (s *stubHooks) WindowChanged(pd timeline.PluginData, start, end timeline.Millis) (timeline.PluginData, error) {
	s.calls++
	s.starts = append(s.starts, start)
	s.ends = append(s.ends, end)
	if s.err != nil {
		return pd, s.err
	}
	if s.params != nil {
		pd.Params = s.params
	}
	return pd, nil
}

func TestApplyAddIsNoOp(t *testing.T) {
	env := syncEnv(New())
	p := testProject()
	p, _ = addClip(t, p, env, 0, 5_000)
	p, zoomID := addEffect(t, p, env, &command.AddEffect{
		Start: 1_000, End: 2_000,
		Data: timeline.ZoomData{Scale: 2},
	})

	// A freshly added clip has no prior dependents to reconcile.
	next, _ := addClip(t, p, env, 5_000, 10_000)

	wantWindow(t, next, zoomID, 1_000, 2_000)
}

func TestApplyRejectsUnknownChangeKind(t *testing.T) {
	ctx := command.NewContext(testProject(), clipboard.New())

	err := New().Apply(ctx, timeline.ClipChange{Kind: timeline.ChangeKind(99)})
	if err == nil || !strings.Contains(err.Error(), "unhandled change kind") {
		t.Errorf("error = %v, want unhandled change kind", err)
	}
}

func TestPluginHookRewritesParamsOnMove(t *testing.T) {
	hooks := &stubHooks{params: map[string]any{"angle": 45.0}}
	env := syncEnv(&Orchestrator{Hooks: hooks})

	p := testProject()
	p, first := addClip(t, p, env, 0, 5_000)
	p, _ = addClip(t, p, env, 5_000, 10_000)
	p, plugID := addEffect(t, p, env, &command.AddEffect{
		Start: 6_000, End: 7_000,
		Data: timeline.PluginData{
			PluginID: "wiggle",
			Hooks:    "function on_window_changed(params, s, e) return params end",
			Params:   map[string]any{"angle": 10.0},
		},
	})

	// Ripple-deleting the first clip slides the second one to 0 and the
	// plugin window with it.
	next, _ := run(t, p, &command.DeleteClip{ClipID: first, Ripple: true}, env)

	wantWindow(t, next, plugID, 1_000, 2_000)
	if hooks.calls != 1 {
		t.Fatalf("hook ran %d times, want 1", hooks.calls)
	}
	if hooks.starts[0] != 1_000 || hooks.ends[0] != 2_000 {
		t.Errorf("hook saw window [%d, %d), want [1000, 2000)", hooks.starts[0], hooks.ends[0])
	}
	data := effectByID(t, next, plugID).Data.(timeline.PluginData)
	if got := data.Params["angle"]; got != 45.0 {
		t.Errorf("params[angle] = %v, want the hook's 45", got)
	}
}

func TestPluginWithoutScriptMovesSilently(t *testing.T) {
	hooks := &stubHooks{params: map[string]any{"angle": 45.0}}
	env := syncEnv(&Orchestrator{Hooks: hooks})

	p := testProject()
	p, first := addClip(t, p, env, 0, 5_000)
	p, _ = addClip(t, p, env, 5_000, 10_000)
	p, plugID := addEffect(t, p, env, &command.AddEffect{
		Start: 6_000, End: 7_000,
		Data: timeline.PluginData{
			PluginID: "wiggle",
			Params:   map[string]any{"angle": 10.0},
		},
	})

	next, _ := run(t, p, &command.DeleteClip{ClipID: first, Ripple: true}, env)

	wantWindow(t, next, plugID, 1_000, 2_000)
	if hooks.calls != 0 {
		t.Errorf("hook ran %d times for a script-less plugin, want 0", hooks.calls)
	}
	data := effectByID(t, next, plugID).Data.(timeline.PluginData)
	if got := data.Params["angle"]; got != 10.0 {
		t.Errorf("params[angle] = %v, want the original 10", got)
	}
}

func TestPluginHookErrorAbortsTransaction(t *testing.T) {
	hooks := &stubHooks{err: errors.New("script blew up")}
	env := syncEnv(&Orchestrator{Hooks: hooks})

	p := testProject()
	p, first := addClip(t, p, env, 0, 5_000)
	p, _ = addClip(t, p, env, 5_000, 10_000)
	p, plugID := addEffect(t, p, env, &command.AddEffect{
		Start: 6_000, End: 7_000,
		Data: timeline.PluginData{
			PluginID: "wiggle",
			Hooks:    "function on_window_changed(params, s, e) return params end",
		},
	})

	txn, _, err := command.Run(p, &command.DeleteClip{ClipID: first, Ripple: true}, env)
	if !errors.Is(err, command.ErrMutationFailed) {
		t.Errorf("error = %v, want ErrMutationFailed", err)
	}
	if txn != nil {
		t.Fatal("failed sync must not produce a transaction")
	}

	// The committed snapshot is untouched: clip still there, window where
	// it was.
	if clip, _ := p.ClipByID(first); clip == nil {
		t.Error("aborted delete removed the clip from the base snapshot")
	}
	wantWindow(t, p, plugID, 6_000, 7_000)
}
