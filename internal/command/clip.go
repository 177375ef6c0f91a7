package command

import (
	"fmt"
	"slices"
	"time"

	"github.com/reelcut/reelcut/internal/timeline"
)

// Command names for clip operations.
const (
	CmdClipAdd     = "clip.add"
	CmdClipDelete  = "clip.delete"
	CmdClipTrim    = "clip.trim"
	CmdClipSplit   = "clip.split"
	CmdClipReorder = "clip.reorder"
	CmdClipRate    = "clip.rate"
	CmdClipUpdate  = "clip.update"
)

// TrimEdge selects which end of a clip a trim shortens.
type TrimEdge uint8

// Trim edges.
const (
	EdgeStart TrimEdge = iota
	EdgeEnd
)

// String returns "start" or "end".
func (e TrimEdge) String() string {
	if e == EdgeEnd {
		return "end"
	}
	return "start"
}

// ParseTrimEdge converts an edge name to a TrimEdge.
func ParseTrimEdge(s string) (TrimEdge, bool) {
	switch s {
	case "start":
		return EdgeStart, true
	case "end":
		return EdgeEnd, true
	default:
		return EdgeStart, false
	}
}

// =========================================================================
// clip.add
// =========================================================================

// AddClip places a new clip over a window of a recording.
type AddClip struct {
	TrackID     string
	RecordingID string

	// At is the timeline insertion point; negative appends at the track
	// end.
	At timeline.Millis

	SourceIn  timeline.Millis
	SourceOut timeline.Millis

	// Rate is the playback rate; zero means 1.
	Rate float64
}

func (c *AddClip) Name() string        { return CmdClipAdd }
func (c *AddClip) Description() string { return "Add clip" }
func (c *AddClip) Category() string    { return CategoryClip }

func (c *AddClip) CanExecute(p *timeline.Project) bool {
	return p.TrackByID(c.TrackID) != nil &&
		p.Recording(c.RecordingID) != nil &&
		c.SourceOut > c.SourceIn
}

func (c *AddClip) Mutate(ctx *Context) (Result, error) {
	rate := c.Rate
	if rate == 0 {
		rate = 1.0
	}

	track, err := ctx.Track(c.TrackID)
	if err != nil {
		return Result{}, err
	}
	rec, err := ctx.Recording(c.RecordingID)
	if err != nil {
		return Result{}, err
	}
	if c.SourceOut > rec.Duration {
		return Result{}, fmt.Errorf("%w: source window ends at %d, recording is %d long",
			ErrInvalidState, c.SourceOut, rec.Duration)
	}

	at := c.At
	if at < 0 {
		at = track.End()
	}

	clip := &timeline.Clip{
		ID:           timeline.NewID(),
		RecordingID:  c.RecordingID,
		StartTime:    at,
		Duration:     (c.SourceOut - c.SourceIn).Scale(1.0 / rate),
		SourceIn:     c.SourceIn,
		SourceOut:    c.SourceOut,
		PlaybackRate: rate,
	}

	if err := ctx.InsertClip(c.TrackID, clip); err != nil {
		return Result{}, err
	}
	if err := ctx.SetSelection([]string{clip.ID}); err != nil {
		return Result{}, err
	}
	ctx.RecomputeDuration()

	after := clip.State()
	ctx.DeferChange(timeline.ClipChange{
		Kind:        timeline.ChangeAdd,
		ClipID:      clip.ID,
		RecordingID: c.RecordingID,
		TrackID:     c.TrackID,
		After:       &after,
	})
	return SuccessWithData("clipID", clip.ID), nil
}

// =========================================================================
// clip.delete
// =========================================================================

// DeleteClip removes a clip. With Ripple set, the track is reflowed to
// close the gap and downstream effects follow their clips.
type DeleteClip struct {
	ClipID string
	Ripple bool
}

func (c *DeleteClip) Name() string        { return CmdClipDelete }
func (c *DeleteClip) Description() string { return "Delete clip" }
func (c *DeleteClip) Category() string    { return CategoryClip }

func (c *DeleteClip) CanExecute(p *timeline.Project) bool {
	clip, _ := p.ClipByID(c.ClipID)
	return clip != nil
}

func (c *DeleteClip) Mutate(ctx *Context) (Result, error) {
	clip, track, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	before := clip.State()
	recID := clip.RecordingID
	trackID := track.ID
	origin := track.Clips[0].StartTime

	if err := ctx.RemoveClip(c.ClipID); err != nil {
		return Result{}, err
	}

	if sel := ctx.Project().Selection; slices.Contains(sel, c.ClipID) {
		kept := make([]string, 0, len(sel)-1)
		for _, id := range sel {
			if id != c.ClipID {
				kept = append(kept, id)
			}
		}
		if err := ctx.SetSelection(kept); err != nil {
			return Result{}, err
		}
	}

	ctx.DeferChange(timeline.ClipChange{
		Kind:        timeline.ChangeDelete,
		ClipID:      c.ClipID,
		RecordingID: recID,
		TrackID:     trackID,
		Before:      &before,
	})

	if c.Ripple {
		remaining, err := ctx.Track(trackID)
		if err != nil {
			return Result{}, err
		}
		if len(remaining.Clips) > 0 {
			prev, err := reflowTrack(ctx, trackID, origin)
			if err != nil {
				return Result{}, err
			}
			ctx.DeferChange(timeline.ClipChange{
				Kind:       timeline.ChangeReorder,
				TrackID:    trackID,
				PrevStarts: prev,
			})
		}
	}

	ctx.RecomputeDuration()
	return Success(), nil
}

// =========================================================================
// clip.trim
// =========================================================================

// TrimClip shortens a clip from one edge. The timeline start of the clip
// never moves: a start trim advances SourceIn instead, so the remaining
// content begins where the clip begins.
type TrimClip struct {
	ClipID string
	Amount timeline.Millis
	Edge   TrimEdge
}

func (c *TrimClip) Name() string        { return CmdClipTrim }
func (c *TrimClip) Description() string { return "Trim clip" }
func (c *TrimClip) Category() string    { return CategoryClip }

// CoalesceKey merges a drag of the same clip edge into one history entry.
func (c *TrimClip) CoalesceKey() string {
	return CmdClipTrim + ":" + c.ClipID + ":" + c.Edge.String()
}

// CoalesceWindow defers to the history manager's default.
func (c *TrimClip) CoalesceWindow() time.Duration { return 0 }

func (c *TrimClip) CanExecute(p *timeline.Project) bool {
	clip, _ := p.ClipByID(c.ClipID)
	return clip != nil && c.Amount > 0 && c.Amount < clip.Duration
}

func (c *TrimClip) Mutate(ctx *Context) (Result, error) {
	clip, track, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	before := clip.State()
	rate := clip.PlaybackRate
	sourceAmount := c.Amount.Scale(rate)

	err = ctx.UpdateClip(c.ClipID, func(x *timeline.Clip) {
		x.Duration -= c.Amount
		if c.Edge == EdgeStart {
			x.SourceIn += sourceAmount
		} else {
			x.SourceOut -= sourceAmount
		}
	})
	if err != nil {
		return Result{}, err
	}

	updated, _, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	after := updated.State()

	kind := timeline.ChangeTrimStart
	if c.Edge == EdgeEnd {
		kind = timeline.ChangeTrimEnd
	}
	ctx.DeferChange(timeline.ClipChange{
		Kind:          kind,
		ClipID:        c.ClipID,
		RecordingID:   clip.RecordingID,
		TrackID:       track.ID,
		Before:        &before,
		After:         &after,
		TimelineDelta: -c.Amount,
	})

	ctx.RecomputeDuration()
	return Success(), nil
}

// =========================================================================
// clip.split
// =========================================================================

// SplitClip cuts a clip in two at a timeline position strictly inside it.
// Both halves get fresh IDs; the original clip is retired.
type SplitClip struct {
	ClipID string
	At     timeline.Millis
}

func (c *SplitClip) Name() string        { return CmdClipSplit }
func (c *SplitClip) Description() string { return "Split clip" }
func (c *SplitClip) Category() string    { return CategoryClip }

func (c *SplitClip) CanExecute(p *timeline.Project) bool {
	clip, _ := p.ClipByID(c.ClipID)
	return clip != nil && c.At > clip.StartTime && c.At < clip.EndTime()
}

func (c *SplitClip) Mutate(ctx *Context) (Result, error) {
	orig, track, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	before := orig.State()
	splitSource := orig.ToSource(c.At)

	left := orig.Clone()
	left.ID = timeline.NewID()
	left.Duration = c.At - orig.StartTime
	left.SourceOut = splitSource

	right := orig.Clone()
	right.ID = timeline.NewID()
	right.StartTime = c.At
	right.Duration = orig.EndTime() - c.At
	right.SourceIn = splitSource

	if err := ctx.RemoveClip(orig.ID); err != nil {
		return Result{}, err
	}
	if err := ctx.InsertClip(track.ID, left); err != nil {
		return Result{}, err
	}
	if err := ctx.InsertClip(track.ID, right); err != nil {
		return Result{}, err
	}
	if err := ctx.SetSelection([]string{right.ID}); err != nil {
		return Result{}, err
	}

	afterLeft := left.State()
	ctx.DeferChange(timeline.ClipChange{
		Kind:        timeline.ChangeSplit,
		ClipID:      c.ClipID,
		RecordingID: orig.RecordingID,
		TrackID:     track.ID,
		Before:      &before,
		After:       &afterLeft,
		NewClipIDs:  [2]string{left.ID, right.ID},
	})

	return Success().WithData("leftID", left.ID).WithData("rightID", right.ID), nil
}

// =========================================================================
// clip.reorder
// =========================================================================

// ReorderClip moves a clip to a new position among its track's clips, then
// reflows the track to stay contiguous from its origin.
type ReorderClip struct {
	ClipID  string
	ToIndex int
}

func (c *ReorderClip) Name() string        { return CmdClipReorder }
func (c *ReorderClip) Description() string { return "Reorder clip" }
func (c *ReorderClip) Category() string    { return CategoryClip }

func (c *ReorderClip) CanExecute(p *timeline.Project) bool {
	clip, track := p.ClipByID(c.ClipID)
	return clip != nil && c.ToIndex >= 0 && c.ToIndex < len(track.Clips)
}

func (c *ReorderClip) Mutate(ctx *Context) (Result, error) {
	clip, track, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	from := track.IndexOf(c.ClipID)
	if from == c.ToIndex {
		return NoOp("clip already at index"), nil
	}

	before := clip.State()
	origin := track.Clips[0].StartTime

	// Capture pre-change geometry and the target order before any write.
	prev := make(map[string]timeline.Millis, len(track.Clips))
	ids := make([]string, len(track.Clips))
	durs := make(map[string]timeline.Millis, len(track.Clips))
	for i, cl := range track.Clips {
		prev[cl.ID] = cl.StartTime
		durs[cl.ID] = cl.Duration
		ids[i] = cl.ID
	}
	ids = slices.Delete(ids, from, from+1)
	ids = slices.Insert(ids, c.ToIndex, c.ClipID)

	next := origin
	for _, id := range ids {
		start := next
		if err := ctx.UpdateClip(id, func(x *timeline.Clip) { x.StartTime = start }); err != nil {
			return Result{}, err
		}
		next += durs[id]
	}

	updated, _, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	after := updated.State()

	ctx.DeferChange(timeline.ClipChange{
		Kind:          timeline.ChangeReorder,
		ClipID:        c.ClipID,
		RecordingID:   clip.RecordingID,
		TrackID:       track.ID,
		Before:        &before,
		After:         &after,
		TimelineDelta: after.StartTime - before.StartTime,
		PrevStarts:    prev,
	})

	ctx.RecomputeDuration()
	return Success(), nil
}

// =========================================================================
// clip.rate
// =========================================================================

// RateClip changes a clip's playback rate. The clip's timeline length is
// recomputed from its source window, and the track is reflowed so
// downstream clips follow the length change.
type RateClip struct {
	ClipID string
	Rate   float64
}

func (c *RateClip) Name() string        { return CmdClipRate }
func (c *RateClip) Description() string { return "Change clip speed" }
func (c *RateClip) Category() string    { return CategoryClip }

// CoalesceKey merges a rate-slider drag into one history entry.
func (c *RateClip) CoalesceKey() string {
	return CmdClipRate + ":" + c.ClipID
}

// CoalesceWindow defers to the history manager's default.
func (c *RateClip) CoalesceWindow() time.Duration { return 0 }

func (c *RateClip) CanExecute(p *timeline.Project) bool {
	clip, _ := p.ClipByID(c.ClipID)
	return clip != nil && timeline.ValidateRate(c.Rate) == nil
}

func (c *RateClip) Mutate(ctx *Context) (Result, error) {
	clip, track, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	if clip.PlaybackRate == c.Rate {
		return NoOp("rate unchanged"), nil
	}
	before := clip.State()
	origin := track.Clips[0].StartTime

	prev := make(map[string]timeline.Millis, len(track.Clips))
	for _, cl := range track.Clips {
		prev[cl.ID] = cl.StartTime
	}

	err = ctx.UpdateClip(c.ClipID, func(x *timeline.Clip) {
		x.PlaybackRate = c.Rate
		x.Duration = x.SourceDuration().Scale(1.0 / c.Rate)
	})
	if err != nil {
		return Result{}, err
	}

	if _, err := reflowTrack(ctx, track.ID, origin); err != nil {
		return Result{}, err
	}

	updated, _, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	after := updated.State()

	ctx.DeferChange(timeline.ClipChange{
		Kind:          timeline.ChangeRateChange,
		ClipID:        c.ClipID,
		RecordingID:   clip.RecordingID,
		TrackID:       track.ID,
		Before:        &before,
		After:         &after,
		TimelineDelta: after.Duration() - before.Duration(),
		PrevStarts:    prev,
	})

	ctx.RecomputeDuration()
	return Success(), nil
}

// =========================================================================
// clip.update
// =========================================================================

// UpdateClipWindow changes which part of the recording a clip plays. The
// clip's timeline length follows the new window at the current rate, and
// the track is reflowed so downstream clips follow.
type UpdateClipWindow struct {
	ClipID    string
	SourceIn  *timeline.Millis
	SourceOut *timeline.Millis
}

func (c *UpdateClipWindow) Name() string        { return CmdClipUpdate }
func (c *UpdateClipWindow) Description() string { return "Update clip source window" }
func (c *UpdateClipWindow) Category() string    { return CategoryClip }

func (c *UpdateClipWindow) CanExecute(p *timeline.Project) bool {
	clip, _ := p.ClipByID(c.ClipID)
	return clip != nil && (c.SourceIn != nil || c.SourceOut != nil)
}

func (c *UpdateClipWindow) Mutate(ctx *Context) (Result, error) {
	clip, track, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	rec, err := ctx.Recording(clip.RecordingID)
	if err != nil {
		return Result{}, err
	}

	in, out := clip.SourceIn, clip.SourceOut
	if c.SourceIn != nil {
		in = *c.SourceIn
	}
	if c.SourceOut != nil {
		out = *c.SourceOut
	}
	if in < 0 || out > rec.Duration || out <= in {
		return Result{}, fmt.Errorf("%w: source window [%d, %d) outside recording of %d",
			ErrInvalidState, in, out, rec.Duration)
	}
	if in == clip.SourceIn && out == clip.SourceOut {
		return NoOp("window unchanged"), nil
	}

	before := clip.State()
	origin := track.Clips[0].StartTime

	prev := make(map[string]timeline.Millis, len(track.Clips))
	for _, cl := range track.Clips {
		prev[cl.ID] = cl.StartTime
	}

	err = ctx.UpdateClip(c.ClipID, func(x *timeline.Clip) {
		x.SourceIn = in
		x.SourceOut = out
		x.Duration = x.SourceDuration().Scale(1.0 / x.PlaybackRate)
	})
	if err != nil {
		return Result{}, err
	}

	if _, err := reflowTrack(ctx, track.ID, origin); err != nil {
		return Result{}, err
	}

	updated, _, err := ctx.Clip(c.ClipID)
	if err != nil {
		return Result{}, err
	}
	after := updated.State()

	ctx.DeferChange(timeline.ClipChange{
		Kind:          timeline.ChangeUpdate,
		ClipID:        c.ClipID,
		RecordingID:   clip.RecordingID,
		TrackID:       track.ID,
		Before:        &before,
		After:         &after,
		TimelineDelta: after.Duration() - before.Duration(),
		PrevStarts:    prev,
	})

	ctx.RecomputeDuration()
	return Success(), nil
}

// reflowTrack packs the track's clips contiguously from origin through
// recorded writes. Returns the pre-reflow start time of every clip on the
// track.
func reflowTrack(ctx *Context, trackID string, origin timeline.Millis) (map[string]timeline.Millis, error) {
	track, err := ctx.Track(trackID)
	if err != nil {
		return nil, err
	}

	prev := make(map[string]timeline.Millis, len(track.Clips))
	ids := make([]string, len(track.Clips))
	durs := make(map[string]timeline.Millis, len(track.Clips))
	for i, cl := range track.Clips {
		prev[cl.ID] = cl.StartTime
		durs[cl.ID] = cl.Duration
		ids[i] = cl.ID
	}

	next := origin
	for _, id := range ids {
		start := next
		if err := ctx.UpdateClip(id, func(x *timeline.Clip) { x.StartTime = start }); err != nil {
			return nil, err
		}
		next += durs[id]
	}
	return prev, nil
}
