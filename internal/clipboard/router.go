package clipboard

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/timeline"
)

// Strategy is how a copied effect pastes back into the project. Routing by
// effect kind means paste itself needs no type-specific logic beyond
// dispatch.
type Strategy uint8

const (
	// StrategyRecordingBlock anchors the paste to the playhead inside the
	// clip occupying it, shifting right past same-kind blocks.
	StrategyRecordingBlock Strategy = iota
	// StrategyTimelineBlock pastes a free time-boxed block at the playhead.
	StrategyTimelineBlock
	// StrategySingleton updates the one global instance in place, creating
	// it only if the project has none.
	StrategySingleton
)

// String returns the name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyRecordingBlock:
		return "recording-block"
	case StrategyTimelineBlock:
		return "timeline-block"
	case StrategySingleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// RouteEffect classifies an effect kind into its paste strategy.
func RouteEffect(kind timeline.EffectKind) Strategy {
	switch kind {
	case timeline.KindZoom, timeline.KindKeystroke:
		return StrategyRecordingBlock
	case timeline.KindBackground:
		return StrategySingleton
	default:
		return StrategyTimelineBlock
	}
}

// DefaultBlockDuration is the fallback length for pasted blocks when
// neither the held effect nor the caller supplies one.
const DefaultBlockDuration timeline.Millis = 2000

// PasteDefaults tunes paste planning.
type PasteDefaults struct {
	// BlockDuration is used when the held effect has no length of its own.
	// Zero or negative means DefaultBlockDuration.
	BlockDuration timeline.Millis
}

// EffectPaste is the planned outcome of pasting an effect: either a new
// effect to insert, or an in-place payload update of the singleton.
type EffectPaste struct {
	Insert   *timeline.Effect
	UpdateID string
	Data     timeline.EffectData
}

// PlanEffectPaste computes what pasting the held effect at the playhead
// should do to the project. Pure: it inspects state and returns a plan, the
// caller applies it transactionally.
func PlanEffectPaste(p *timeline.Project, held *timeline.Effect, playhead timeline.Millis, def PasteDefaults) (*EffectPaste, error) {
	if held == nil {
		return nil, ErrEmpty
	}
	if def.BlockDuration <= 0 {
		def.BlockDuration = DefaultBlockDuration
	}

	switch RouteEffect(held.Kind) {
	case StrategySingleton:
		return planSingletonPaste(p, held)
	case StrategyRecordingBlock:
		return planRecordingBlockPaste(p, held, playhead, def)
	default:
		return planTimelineBlockPaste(p, held, playhead, def)
	}
}

// planSingletonPaste updates the existing singleton's payload in place, or
// creates exactly one spanning the timeline.
func planSingletonPaste(p *timeline.Project, held *timeline.Effect) (*EffectPaste, error) {
	data := held.Data
	if bg, ok := data.(timeline.BackgroundData); ok {
		hex, err := bg.NormalizeColor()
		if err != nil {
			return nil, err
		}
		bg.Color = hex
		data = bg
	}

	if existing := p.Background(); existing != nil {
		return &EffectPaste{UpdateID: existing.ID, Data: data}, nil
	}

	eff := held.Clone()
	eff.ID = timeline.NewID()
	eff.StartTime = 0
	eff.EndTime = p.Duration
	eff.ClipID = ""
	eff.Data = data
	return &EffectPaste{Insert: eff}, nil
}

// planRecordingBlockPaste anchors the block at the playhead inside the clip
// occupying it, sliding right past existing same-kind blocks and clamping
// to the clip's range.
func planRecordingBlockPaste(p *timeline.Project, held *timeline.Effect, playhead timeline.Millis, def PasteDefaults) (*EffectPaste, error) {
	clip := clipAt(p, playhead)
	if clip == nil {
		return nil, ErrNoClipAtPlayhead
	}

	dur := held.Duration()
	if dur <= 0 {
		dur = def.BlockDuration
	}

	start := playhead
	for moved := true; moved; {
		moved = false
		for _, e := range p.Effects {
			if e.Kind != held.Kind {
				continue
			}
			if e.StartTime < start+dur && start < e.EndTime {
				start = e.EndTime
				moved = true
			}
		}
	}

	end := start + dur
	if end > clip.EndTime() {
		end = clip.EndTime()
	}
	if start >= end {
		return nil, fmt.Errorf("%w: %s block at %d", ErrNoRoom, held.Kind, playhead)
	}

	eff := held.Clone()
	eff.ID = timeline.NewID()
	eff.StartTime = start
	eff.EndTime = end
	eff.ClipID = ""
	return &EffectPaste{Insert: eff}, nil
}

// planTimelineBlockPaste drops a time-boxed block at the playhead. A
// clip-bound kind pasted on its own is re-bound to the clip at the
// playhead.
func planTimelineBlockPaste(p *timeline.Project, held *timeline.Effect, playhead timeline.Millis, def PasteDefaults) (*EffectPaste, error) {
	dur := held.Duration()
	if dur <= 0 {
		dur = def.BlockDuration
	}

	eff := held.Clone()
	eff.ID = timeline.NewID()
	eff.StartTime = playhead
	eff.EndTime = playhead + dur
	eff.ClipID = ""

	if held.Kind.ClipBound() {
		clip := clipAt(p, playhead)
		if clip == nil {
			return nil, ErrNoClipAtPlayhead
		}
		eff.ClipID = clip.ID
		if eff.EndTime > clip.EndTime() {
			eff.EndTime = clip.EndTime()
		}
		if eff.StartTime >= eff.EndTime {
			return nil, fmt.Errorf("%w: %s block at %d", ErrNoRoom, held.Kind, playhead)
		}
	}

	return &EffectPaste{Insert: eff}, nil
}

// ClipPaste is the planned outcome of pasting a clip: the duplicated clip
// plus its re-anchored clip-bound effects.
type ClipPaste struct {
	Clip    *timeline.Clip
	Effects []*timeline.Effect
}

// PlanClipPaste duplicates the held clip at the target time on the target
// track, re-anchoring its captured clip-bound effects to the duplicate.
func PlanClipPaste(held *Contents, track *timeline.Track, at timeline.Millis) (*ClipPaste, error) {
	if !held.HasClip() {
		return nil, ErrEmpty
	}
	if track.Kind != held.TrackKind {
		return nil, fmt.Errorf("%w: %s onto %s", ErrTrackKind, held.TrackKind, track.Kind)
	}

	clip := held.Clip.Clone()
	clip.ID = timeline.NewID()
	shift := at - held.Clip.StartTime
	clip.StartTime = at

	plan := &ClipPaste{Clip: clip}
	for _, e := range held.BoundEffects {
		dup := e.Clone()
		dup.ID = timeline.NewID()
		dup.ClipID = clip.ID
		dup.StartTime += shift
		dup.EndTime += shift
		plan.Effects = append(plan.Effects, dup)
	}
	return plan, nil
}

// clipAt returns the first clip occupying t, scanning tracks in order.
func clipAt(p *timeline.Project, t timeline.Millis) *timeline.Clip {
	for _, tr := range p.Tracks {
		if c := tr.ClipAt(t); c != nil {
			return c
		}
	}
	return nil
}
