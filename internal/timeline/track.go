package timeline

import "sort"

// TrackKind identifies what a track carries.
type TrackKind uint8

// Track kinds.
const (
	TrackVideo TrackKind = iota
	TrackAudio
	TrackWebcam
)

// String returns the lowercase name of the kind.
func (k TrackKind) String() string {
	switch k {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	case TrackWebcam:
		return "webcam"
	default:
		return "unknown"
	}
}

// ParseTrackKind converts a stored kind name back to a TrackKind.
func ParseTrackKind(s string) (TrackKind, bool) {
	switch s {
	case "video":
		return TrackVideo, true
	case "audio":
		return TrackAudio, true
	case "webcam":
		return TrackWebcam, true
	default:
		return TrackVideo, false
	}
}

// Track is an ordered lane of non-overlapping clips.
// Clips are kept sorted by StartTime; that order is canonical.
type Track struct {
	ID    string
	Kind  TrackKind
	Clips []*Clip
}

// NewTrack creates an empty track of the given kind.
func NewTrack(kind TrackKind) *Track {
	return &Track{ID: NewID(), Kind: kind}
}

// ClipByID returns the clip with the given ID, or nil.
func (t *Track) ClipByID(id string) *Clip {
	for _, c := range t.Clips {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// IndexOf returns the position of the clip with the given ID, or -1.
func (t *Track) IndexOf(id string) int {
	for i, c := range t.Clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ClipAt returns the clip occupying timeline time at, or nil.
func (t *Track) ClipAt(at Millis) *Clip {
	for _, c := range t.Clips {
		if c.Contains(at) {
			return c
		}
	}
	return nil
}

// End returns the end time of the last clip, or 0 for an empty track.
func (t *Track) End() Millis {
	var end Millis
	for _, c := range t.Clips {
		if e := c.EndTime(); e > end {
			end = e
		}
	}
	return end
}

// SortClips restores the canonical StartTime ordering.
// Intended for transaction working copies after clip times change.
func (t *Track) SortClips() {
	sort.SliceStable(t.Clips, func(i, j int) bool {
		if t.Clips[i].StartTime != t.Clips[j].StartTime {
			return t.Clips[i].StartTime < t.Clips[j].StartTime
		}
		return t.Clips[i].ID < t.Clips[j].ID
	})
}

// Reflow packs clips back-to-back starting at origin, preserving order.
// Returns the per-clip start deltas (new start minus old start) for clips
// that moved; clips that stayed put are omitted.
func (t *Track) Reflow(origin Millis) map[string]Millis {
	deltas := make(map[string]Millis)
	next := origin
	for _, c := range t.Clips {
		if c.StartTime != next {
			deltas[c.ID] = next - c.StartTime
			c.StartTime = next
		}
		next = c.EndTime()
	}
	return deltas
}

// Contiguous reports whether clips are packed back-to-back from origin.
func (t *Track) Contiguous(origin Millis) bool {
	next := origin
	for _, c := range t.Clips {
		if c.StartTime != next {
			return false
		}
		next = c.EndTime()
	}
	return true
}

// ShallowClone copies the track header and clip slice without copying the
// clips themselves. Transaction working copies clone individual clips on
// first write.
func (t *Track) ShallowClone() *Track {
	dup := *t
	dup.Clips = make([]*Clip, len(t.Clips))
	copy(dup.Clips, t.Clips)
	return &dup
}
