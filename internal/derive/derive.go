// Package derive computes overlay effect blocks from recording transcripts.
//
// A derivation pass clusters a transcript by pause gaps, projects each
// cluster through every clip playing that recording, and emits one derived
// block per projection. Passes are idempotent: a cluster that already has a
// live derived block is skipped, and a typing-highlight cluster carrying a
// suppression tombstone stays suppressed until the tombstone is undone.
package derive

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"

	"github.com/reelcut/reelcut/internal/timeline"
)

// Defaults for Settings zero values.
const (
	DefaultPauseGap     timeline.Millis = 800
	DefaultMinGraphemes                 = 3
	DefaultMinBlock     timeline.Millis = 400
	DefaultMaxBlock     timeline.Millis = 8000
	DefaultReadingMs    timeline.Millis = 60
)

// Settings tunes transcript clustering and block sizing.
type Settings struct {
	// PauseGap splits clusters where the silence between consecutive words
	// exceeds it. Zero or negative means DefaultPauseGap.
	PauseGap timeline.Millis

	// MinGraphemes drops clusters whose joined text renders shorter than
	// this many grapheme clusters. Zero means DefaultMinGraphemes;
	// negative disables the filter.
	MinGraphemes int

	// MinBlock drops projected blocks shorter than this; a flash of text
	// is noise, not an overlay. Zero means DefaultMinBlock; negative
	// disables the filter.
	MinBlock timeline.Millis

	// MaxBlock truncates projected blocks longer than this. Zero means
	// DefaultMaxBlock; negative disables truncation.
	MaxBlock timeline.Millis

	// ReadingMs caps a caption's on-screen time at this many milliseconds
	// per grapheme, floored at MinBlock. Only Subtitles applies it; typing
	// highlights span the typing regardless of length. Zero means
	// DefaultReadingMs; negative disables the cap.
	ReadingMs timeline.Millis
}

func (s Settings) normalized() Settings {
	if s.PauseGap <= 0 {
		s.PauseGap = DefaultPauseGap
	}
	if s.MinGraphemes == 0 {
		s.MinGraphemes = DefaultMinGraphemes
	}
	if s.MinBlock == 0 {
		s.MinBlock = DefaultMinBlock
	}
	if s.MaxBlock == 0 {
		s.MaxBlock = DefaultMaxBlock
	}
	if s.ReadingMs == 0 {
		s.ReadingMs = DefaultReadingMs
	}
	return s
}

// Cluster is a run of consecutive transcript words with no internal pause
// exceeding the gap. Index is the cluster's stable position in the
// recording's transcript; tombstones and dedupe key on it.
type Cluster struct {
	Index int
	Text  string
	Start timeline.Millis // recording space
	End   timeline.Millis
}

// Clusters splits a transcript into pause-separated clusters. Word text is
// NFC-normalized and joined with single spaces; clusters below the grapheme
// minimum are dropped but still consume their index, so indices stay stable
// across settings that only change the filter.
func Clusters(words []timeline.Word, s Settings) []Cluster {
	s = s.normalized()
	if len(words) == 0 {
		return nil
	}

	var out []Cluster
	index := 0
	begin := 0
	flush := func(end int) {
		texts := make([]string, 0, end-begin)
		for _, w := range words[begin:end] {
			texts = append(texts, norm.NFC.String(w.Text))
		}
		text := strings.Join(texts, " ")
		if s.MinGraphemes <= 0 || uniseg.GraphemeClusterCount(text) >= s.MinGraphemes {
			out = append(out, Cluster{
				Index: index,
				Text:  text,
				Start: words[begin].Start,
				End:   words[end-1].End,
			})
		}
		index++
		begin = end
	}

	for i := 1; i < len(words); i++ {
		if words[i].Start-words[i-1].End > s.PauseGap {
			flush(i)
		}
	}
	flush(len(words))
	return out
}

// Block is one planned derived effect: a cluster projected through a clip
// into timeline space.
type Block struct {
	Cluster Cluster
	Start   timeline.Millis // timeline space
	End     timeline.Millis
}

// Blocks projects every cluster of the recording's transcript through every
// clip playing that recording, skipping clusters for which skip returns
// true. The skip callback sees the cluster index; nil skips nothing.
// Projections shorter than MinBlock are dropped; longer than MaxBlock are
// truncated.
func Blocks(p *timeline.Project, recordingID string, s Settings, skip func(cluster int) bool) []Block {
	s = s.normalized()
	rec := p.Recording(recordingID)
	if rec == nil {
		return nil
	}
	clusters := Clusters(rec.Transcript, s)
	if len(clusters) == 0 {
		return nil
	}

	var out []Block
	for _, track := range p.Tracks {
		for _, clip := range track.Clips {
			if clip.RecordingID != recordingID {
				continue
			}
			for _, cl := range clusters {
				if skip != nil && skip(cl.Index) {
					continue
				}
				start, end, ok := project(clip, cl)
				if !ok {
					continue
				}
				if s.MaxBlock > 0 && end-start > s.MaxBlock {
					end = start + s.MaxBlock
				}
				if s.MinBlock > 0 && end-start < s.MinBlock {
					continue
				}
				out = append(out, Block{Cluster: cl, Start: start, End: end})
			}
		}
	}
	return out
}

// project intersects the cluster with the clip's source window and maps the
// intersection into timeline space at the clip's rate.
func project(clip *timeline.Clip, cl Cluster) (start, end timeline.Millis, ok bool) {
	in := max(cl.Start, clip.SourceIn)
	out := min(cl.End, clip.SourceOut)
	if out <= in {
		return 0, 0, false
	}
	return clip.FromSource(in), clip.FromSource(out), true
}

// Keystrokes plans the typing-highlight blocks a derivation pass would add
// for the recording. Clusters with a suppression tombstone or a live
// derived highlight are skipped.
func Keystrokes(p *timeline.Project, recordingID string, s Settings) []*timeline.Effect {
	suppressed := suppressionsFor(p, recordingID)
	live := liveClusters(p, recordingID, timeline.KindKeystroke)

	blocks := Blocks(p, recordingID, s, func(cluster int) bool {
		return suppressed[cluster] || live[cluster]
	})

	out := make([]*timeline.Effect, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, timeline.NewEffect(b.Start, b.End, timeline.KeystrokeData{
			Text:         b.Cluster.Text,
			RecordingID:  recordingID,
			ClusterIndex: b.Cluster.Index,
			Derived:      true,
		}))
	}
	return out
}

// Subtitles plans the caption blocks a derivation pass would add for the
// recording. Deleted captions are plain absence, not tombstones: only a
// live derived caption for the cluster skips it. Each caption's length is
// capped at reading speed so slow narration does not pin text on screen.
func Subtitles(p *timeline.Project, recordingID string, s Settings) []*timeline.Effect {
	s = s.normalized()
	live := liveClusters(p, recordingID, timeline.KindSubtitle)

	blocks := Blocks(p, recordingID, s, func(cluster int) bool {
		return live[cluster]
	})

	out := make([]*timeline.Effect, 0, len(blocks))
	for _, b := range blocks {
		end := b.End
		if limit := readingLimit(b.Cluster.Text, s); limit > 0 && end-b.Start > limit {
			end = b.Start + limit
		}
		out = append(out, timeline.NewEffect(b.Start, end, timeline.SubtitleData{
			Text:         b.Cluster.Text,
			RecordingID:  recordingID,
			ClusterIndex: b.Cluster.Index,
			Derived:      true,
		}))
	}
	return out
}

// readingLimit is the longest a caption should stay up: ReadingMs per
// grapheme, never below MinBlock. Zero means unlimited.
func readingLimit(text string, s Settings) timeline.Millis {
	if s.ReadingMs <= 0 {
		return 0
	}
	limit := timeline.Millis(uniseg.GraphemeClusterCount(text)) * s.ReadingMs
	if s.MinBlock > 0 && limit < s.MinBlock {
		limit = s.MinBlock
	}
	return limit
}

// suppressionsFor collects the recording's tombstoned cluster indices from
// the Background singleton.
func suppressionsFor(p *timeline.Project, recordingID string) map[int]bool {
	bg := p.Background()
	if bg == nil {
		return nil
	}
	data, ok := bg.Data.(timeline.BackgroundData)
	if !ok {
		return nil
	}
	out := make(map[int]bool)
	for _, k := range data.Suppressed {
		if k.RecordingID == recordingID {
			out[k.ClusterIndex] = true
		}
	}
	return out
}

// liveClusters collects cluster indices that already have a derived block
// of the given kind, wherever its window has since been moved.
func liveClusters(p *timeline.Project, recordingID string, kind timeline.EffectKind) map[int]bool {
	out := make(map[int]bool)
	for _, e := range p.Effects {
		if e.Kind != kind {
			continue
		}
		switch d := e.Data.(type) {
		case timeline.KeystrokeData:
			if d.Derived && d.RecordingID == recordingID {
				out[d.ClusterIndex] = true
			}
		case timeline.SubtitleData:
			if d.Derived && d.RecordingID == recordingID {
				out[d.ClusterIndex] = true
			}
		}
	}
	return out
}
