package patch

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/timeline"
)

// Apply produces a new project snapshot with ops applied in order.
//
// The input project is never mutated: containers and entities are cloned on
// first touch, untouched entities are shared between the snapshots. Entity
// values taken from ops are cloned on the way in so history entries never
// alias live state.
func Apply(base *timeline.Project, ops Set) (*timeline.Project, error) {
	work := base.ShallowClone()

	// Tracks already cloned into this application, by ID.
	cloned := make(map[string]*timeline.Track)
	effectsTouched := false

	for _, op := range ops {
		tgt, err := parsePath(op.Path)
		if err != nil {
			return nil, err
		}

		switch tgt.kind {
		case targetDuration:
			v, err := millisValue(op)
			if err != nil {
				return nil, err
			}
			work.Duration = v

		case targetPlayhead:
			v, err := millisValue(op)
			if err != nil {
				return nil, err
			}
			work.Playhead = v

		case targetSelection:
			v, err := selectionValue(op)
			if err != nil {
				return nil, err
			}
			work.Selection = v

		case targetClip:
			track, err := cowTrack(work, cloned, tgt.trackID)
			if err != nil {
				return nil, err
			}
			if err := applyClipOp(track, tgt.clipID, op); err != nil {
				return nil, err
			}

		case targetEffect:
			if err := applyEffectOp(work, tgt.effectID, op); err != nil {
				return nil, err
			}
			effectsTouched = true
		}
	}

	if effectsTouched {
		work.SortEffects()
	}
	return work, nil
}

// cowTrack returns a track of work that is safe to mutate, cloning it on
// first touch.
func cowTrack(work *timeline.Project, cloned map[string]*timeline.Track, trackID string) (*timeline.Track, error) {
	if t, ok := cloned[trackID]; ok {
		return t, nil
	}
	for i, t := range work.Tracks {
		if t.ID == trackID {
			dup := t.ShallowClone()
			work.Tracks[i] = dup
			cloned[trackID] = dup
			return dup, nil
		}
	}
	return nil, fmt.Errorf("%w: track %s", ErrTargetGone, trackID)
}

func applyClipOp(track *timeline.Track, clipID string, op Op) error {
	switch op.Kind {
	case OpInsert:
		clip, err := clipValue(op.After, op.Path)
		if err != nil {
			return err
		}
		track.Clips = append(track.Clips, clip.Clone())
		track.SortClips()

	case OpRemove:
		i := track.IndexOf(clipID)
		if i < 0 {
			return fmt.Errorf("%w: clip %s", ErrTargetGone, clipID)
		}
		track.Clips = append(track.Clips[:i], track.Clips[i+1:]...)

	case OpSet:
		clip, err := clipValue(op.After, op.Path)
		if err != nil {
			return err
		}
		i := track.IndexOf(clipID)
		if i < 0 {
			return fmt.Errorf("%w: clip %s", ErrTargetGone, clipID)
		}
		track.Clips[i] = clip.Clone()
		track.SortClips()
	}
	return nil
}

func applyEffectOp(work *timeline.Project, effectID string, op Op) error {
	switch op.Kind {
	case OpInsert:
		eff, err := effectValue(op.After, op.Path)
		if err != nil {
			return err
		}
		work.Effects = append(work.Effects, eff.Clone())

	case OpRemove:
		i := effectIndex(work, effectID)
		if i < 0 {
			return fmt.Errorf("%w: effect %s", ErrTargetGone, effectID)
		}
		work.Effects = append(work.Effects[:i], work.Effects[i+1:]...)

	case OpSet:
		eff, err := effectValue(op.After, op.Path)
		if err != nil {
			return err
		}
		i := effectIndex(work, effectID)
		if i < 0 {
			return fmt.Errorf("%w: effect %s", ErrTargetGone, effectID)
		}
		work.Effects[i] = eff.Clone()
	}
	return nil
}

func effectIndex(p *timeline.Project, id string) int {
	for i, e := range p.Effects {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func millisValue(op Op) (timeline.Millis, error) {
	v, ok := op.After.(timeline.Millis)
	if !ok {
		return 0, fmt.Errorf("%w: %s wants Millis, got %T", ErrBadValue, op.Path, op.After)
	}
	return v, nil
}

func selectionValue(op Op) ([]string, error) {
	if op.After == nil {
		return nil, nil
	}
	v, ok := op.After.([]string)
	if !ok {
		return nil, fmt.Errorf("%w: %s wants []string, got %T", ErrBadValue, op.Path, op.After)
	}
	return append([]string(nil), v...), nil
}

func clipValue(v any, path string) (*timeline.Clip, error) {
	c, ok := v.(*timeline.Clip)
	if !ok || c == nil {
		return nil, fmt.Errorf("%w: %s wants *Clip, got %T", ErrBadValue, path, v)
	}
	return c, nil
}

func effectValue(v any, path string) (*timeline.Effect, error) {
	e, ok := v.(*timeline.Effect)
	if !ok || e == nil {
		return nil, fmt.Errorf("%w: %s wants *Effect, got %T", ErrBadValue, path, v)
	}
	return e, nil
}
