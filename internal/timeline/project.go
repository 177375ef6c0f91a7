package timeline

import "sort"

// Word is one transcribed token of a recording, in recording space.
type Word struct {
	Text  string
	Start Millis
	End   Millis
}

// Recording is a captured source media file plus its transcript.
// Recordings are read-only for the editing core; capture and transcription
// belong to neighboring subsystems.
type Recording struct {
	ID         string
	Name       string
	Duration   Millis
	Transcript []Word
}

// Project is the root aggregate of an editing session. It is owned by the
// session's current-snapshot slot and mutated only through commands; readers
// always see a fully committed snapshot.
type Project struct {
	ID         string
	Name       string
	Tracks     []*Track
	Effects    []*Effect
	Recordings map[string]*Recording

	Duration  Millis
	Selection []string
	Playhead  Millis
}

// NewProject creates an empty project with one video track.
func NewProject(name string) *Project {
	return &Project{
		ID:         NewID(),
		Name:       name,
		Tracks:     []*Track{NewTrack(TrackVideo)},
		Recordings: make(map[string]*Recording),
	}
}

// TrackByID returns the track with the given ID, or nil.
func (p *Project) TrackByID(id string) *Track {
	for _, t := range p.Tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ClipByID searches every track for the clip. Returns the clip and its
// containing track, or (nil, nil).
func (p *Project) ClipByID(id string) (*Clip, *Track) {
	for _, t := range p.Tracks {
		if c := t.ClipByID(id); c != nil {
			return c, t
		}
	}
	return nil, nil
}

// EffectByID returns the effect with the given ID, or nil.
func (p *Project) EffectByID(id string) *Effect {
	for _, e := range p.Effects {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// EffectsForClip returns all clip-bound effects referencing the clip.
func (p *Project) EffectsForClip(clipID string) []*Effect {
	var out []*Effect
	for _, e := range p.Effects {
		if e.ClipID == clipID {
			out = append(out, e)
		}
	}
	return out
}

// Background returns the singleton background effect, or nil if the project
// has none yet.
func (p *Project) Background() *Effect {
	for _, e := range p.Effects {
		if e.Kind == KindBackground {
			return e
		}
	}
	return nil
}

// Recording returns the recording with the given ID, or nil.
func (p *Project) Recording(id string) *Recording {
	return p.Recordings[id]
}

// ComputeDuration returns the end time of the last clip across all tracks.
func (p *Project) ComputeDuration() Millis {
	var end Millis
	for _, t := range p.Tracks {
		if e := t.End(); e > end {
			end = e
		}
	}
	return end
}

// ClampTime limits t to [0, Duration].
func (p *Project) ClampTime(t Millis) Millis {
	return t.Clamp(0, p.Duration)
}

// SortEffects restores the canonical (StartTime, ID) effect ordering.
// Intended for transaction working copies after effect windows change.
func (p *Project) SortEffects() {
	sort.SliceStable(p.Effects, func(i, j int) bool {
		if p.Effects[i].StartTime != p.Effects[j].StartTime {
			return p.Effects[i].StartTime < p.Effects[j].StartTime
		}
		return p.Effects[i].ID < p.Effects[j].ID
	})
}

// ShallowClone copies the project header and container slices without
// copying tracks, clips or effects. Transaction working copies and patch
// application clone individual entities on first write.
func (p *Project) ShallowClone() *Project {
	dup := *p
	dup.Tracks = make([]*Track, len(p.Tracks))
	copy(dup.Tracks, p.Tracks)
	dup.Effects = make([]*Effect, len(p.Effects))
	copy(dup.Effects, p.Effects)
	dup.Selection = append([]string(nil), p.Selection...)
	// Recordings are read-only for the core; the map is shared.
	return &dup
}
