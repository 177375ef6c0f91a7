package store

import (
	"encoding/json"
	"fmt"

	"github.com/reelcut/reelcut/internal/timeline"
)

// The stored document is a stable JSON schema decoupled from the in-memory
// types. Effect payloads are encoded as a kind-tagged envelope because
// timeline.EffectData is an interface.

type projectDoc struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Duration   int64                   `json:"duration"`
	Playhead   int64                   `json:"playhead"`
	Selection  []string                `json:"selection,omitempty"`
	Tracks     []trackDoc              `json:"tracks"`
	Effects    []effectDoc             `json:"effects"`
	Recordings map[string]recordingDoc `json:"recordings,omitempty"`
}

type trackDoc struct {
	ID    string    `json:"id"`
	Kind  string    `json:"kind"`
	Clips []clipDoc `json:"clips"`
}

type clipDoc struct {
	ID          string  `json:"id"`
	RecordingID string  `json:"recordingId"`
	StartTime   int64   `json:"startTime"`
	Duration    int64   `json:"duration"`
	SourceIn    int64   `json:"sourceIn"`
	SourceOut   int64   `json:"sourceOut"`
	Rate        float64 `json:"rate"`
}

type recordingDoc struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Duration   int64     `json:"duration"`
	Transcript []wordDoc `json:"transcript,omitempty"`
}

type wordDoc struct {
	Text  string `json:"text"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

type effectDoc struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind"`
	Start   int64           `json:"start"`
	End     int64           `json:"end"`
	ClipID  string          `json:"clipId,omitempty"`
	Enabled bool            `json:"enabled"`
	Data    json.RawMessage `json:"data"`
}

type zoomDoc struct {
	Scale  float64 `json:"scale"`
	FocusX float64 `json:"focusX"`
	FocusY float64 `json:"focusY"`
}

type cropDoc struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type captionDoc struct {
	Text         string `json:"text"`
	RecordingID  string `json:"recordingId,omitempty"`
	ClusterIndex int    `json:"clusterIndex,omitempty"`
	Derived      bool   `json:"derived,omitempty"`
}

type cursorDoc struct {
	Style     string  `json:"style"`
	Scale     float64 `json:"scale"`
	Smoothing bool    `json:"smoothing"`
}

type screenDoc struct {
	CornerRadius float64 `json:"cornerRadius"`
	Shadow       float64 `json:"shadow"`
}

type pluginDoc struct {
	PluginID string         `json:"pluginId"`
	Hooks    string         `json:"hooks,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
}

type suppressionDoc struct {
	RecordingID  string `json:"recordingId"`
	ClusterIndex int    `json:"clusterIndex"`
}

type backgroundDoc struct {
	Color      string           `json:"color,omitempty"`
	Opacity    float64          `json:"opacity"`
	Padding    float64          `json:"padding"`
	Suppressed []suppressionDoc `json:"suppressed,omitempty"`
}

func encodeProject(p *timeline.Project) ([]byte, error) {
	doc := projectDoc{
		ID:        p.ID,
		Name:      p.Name,
		Duration:  int64(p.Duration),
		Playhead:  int64(p.Playhead),
		Selection: p.Selection,
		Tracks:    make([]trackDoc, 0, len(p.Tracks)),
		Effects:   make([]effectDoc, 0, len(p.Effects)),
	}

	for _, t := range p.Tracks {
		td := trackDoc{ID: t.ID, Kind: t.Kind.String(), Clips: make([]clipDoc, 0, len(t.Clips))}
		for _, c := range t.Clips {
			td.Clips = append(td.Clips, clipDocOf(c))
		}
		doc.Tracks = append(doc.Tracks, td)
	}

	for _, e := range p.Effects {
		ed, err := effectDocOf(e)
		if err != nil {
			return nil, err
		}
		doc.Effects = append(doc.Effects, ed)
	}

	if len(p.Recordings) > 0 {
		doc.Recordings = make(map[string]recordingDoc, len(p.Recordings))
		for id, r := range p.Recordings {
			rd := recordingDoc{ID: r.ID, Name: r.Name, Duration: int64(r.Duration)}
			for _, w := range r.Transcript {
				rd.Transcript = append(rd.Transcript, wordDoc{Text: w.Text, Start: int64(w.Start), End: int64(w.End)})
			}
			doc.Recordings[id] = rd
		}
	}

	return json.Marshal(doc)
}

func clipDocOf(c *timeline.Clip) clipDoc {
	return clipDoc{
		ID:          c.ID,
		RecordingID: c.RecordingID,
		StartTime:   int64(c.StartTime),
		Duration:    int64(c.Duration),
		SourceIn:    int64(c.SourceIn),
		SourceOut:   int64(c.SourceOut),
		Rate:        c.PlaybackRate,
	}
}

func effectDocOf(e *timeline.Effect) (effectDoc, error) {
	raw, err := encodeEffectData(e.Data)
	if err != nil {
		return effectDoc{}, fmt.Errorf("store: encode effect %s: %w", e.ID, err)
	}
	return effectDoc{
		ID:      e.ID,
		Kind:    e.Kind.String(),
		Start:   int64(e.StartTime),
		End:     int64(e.EndTime),
		ClipID:  e.ClipID,
		Enabled: e.Enabled,
		Data:    raw,
	}, nil
}

func decodeProject(data []byte) (*timeline.Project, error) {
	var doc projectDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("store: decode project: %w", err)
	}

	p := &timeline.Project{
		ID:         doc.ID,
		Name:       doc.Name,
		Duration:   timeline.Millis(doc.Duration),
		Playhead:   timeline.Millis(doc.Playhead),
		Selection:  doc.Selection,
		Recordings: make(map[string]*timeline.Recording),
	}

	for _, td := range doc.Tracks {
		kind, ok := timeline.ParseTrackKind(td.Kind)
		if !ok {
			return nil, fmt.Errorf("store: track %s: unknown kind %q", td.ID, td.Kind)
		}
		t := &timeline.Track{ID: td.ID, Kind: kind}
		for _, cd := range td.Clips {
			t.Clips = append(t.Clips, &timeline.Clip{
				ID:           cd.ID,
				RecordingID:  cd.RecordingID,
				StartTime:    timeline.Millis(cd.StartTime),
				Duration:     timeline.Millis(cd.Duration),
				SourceIn:     timeline.Millis(cd.SourceIn),
				SourceOut:    timeline.Millis(cd.SourceOut),
				PlaybackRate: cd.Rate,
			})
		}
		// Journal inserts append at the array end; order is restored here.
		t.SortClips()
		p.Tracks = append(p.Tracks, t)
	}

	for _, ed := range doc.Effects {
		kind, ok := timeline.ParseEffectKind(ed.Kind)
		if !ok {
			return nil, fmt.Errorf("store: effect %s: unknown kind %q", ed.ID, ed.Kind)
		}
		payload, err := decodeEffectData(kind, ed.Data)
		if err != nil {
			return nil, fmt.Errorf("store: effect %s: %w", ed.ID, err)
		}
		p.Effects = append(p.Effects, &timeline.Effect{
			ID:        ed.ID,
			Kind:      kind,
			StartTime: timeline.Millis(ed.Start),
			EndTime:   timeline.Millis(ed.End),
			ClipID:    ed.ClipID,
			Enabled:   ed.Enabled,
			Data:      payload,
		})
	}
	p.SortEffects()

	for id, rd := range doc.Recordings {
		r := &timeline.Recording{ID: rd.ID, Name: rd.Name, Duration: timeline.Millis(rd.Duration)}
		for _, wd := range rd.Transcript {
			r.Transcript = append(r.Transcript, timeline.Word{
				Text:  wd.Text,
				Start: timeline.Millis(wd.Start),
				End:   timeline.Millis(wd.End),
			})
		}
		p.Recordings[id] = r
	}

	return p, nil
}

func encodeEffectData(data timeline.EffectData) (json.RawMessage, error) {
	switch d := data.(type) {
	case timeline.ZoomData:
		return json.Marshal(zoomDoc{Scale: d.Scale, FocusX: d.FocusX, FocusY: d.FocusY})
	case timeline.CropData:
		return json.Marshal(cropDoc{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height})
	case timeline.SubtitleData:
		return json.Marshal(captionDoc{Text: d.Text, RecordingID: d.RecordingID, ClusterIndex: d.ClusterIndex, Derived: d.Derived})
	case timeline.KeystrokeData:
		return json.Marshal(captionDoc{Text: d.Text, RecordingID: d.RecordingID, ClusterIndex: d.ClusterIndex, Derived: d.Derived})
	case timeline.CursorData:
		return json.Marshal(cursorDoc{Style: d.Style, Scale: d.Scale, Smoothing: d.Smoothing})
	case timeline.ScreenData:
		return json.Marshal(screenDoc{CornerRadius: d.CornerRadius, Shadow: d.Shadow})
	case timeline.PluginData:
		return json.Marshal(pluginDoc{PluginID: d.PluginID, Hooks: d.Hooks, Params: d.Params})
	case timeline.BackgroundData:
		bd := backgroundDoc{Color: d.Color, Opacity: d.Opacity, Padding: d.Padding}
		for _, k := range d.Suppressed {
			bd.Suppressed = append(bd.Suppressed, suppressionDoc{RecordingID: k.RecordingID, ClusterIndex: k.ClusterIndex})
		}
		return json.Marshal(bd)
	default:
		return nil, fmt.Errorf("unsupported payload %T", data)
	}
}

func decodeEffectData(kind timeline.EffectKind, raw json.RawMessage) (timeline.EffectData, error) {
	switch kind {
	case timeline.KindZoom:
		var d zoomDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return timeline.ZoomData{Scale: d.Scale, FocusX: d.FocusX, FocusY: d.FocusY}, nil
	case timeline.KindCrop:
		var d cropDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return timeline.CropData{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height}, nil
	case timeline.KindSubtitle:
		var d captionDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return timeline.SubtitleData{Text: d.Text, RecordingID: d.RecordingID, ClusterIndex: d.ClusterIndex, Derived: d.Derived}, nil
	case timeline.KindKeystroke:
		var d captionDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return timeline.KeystrokeData{Text: d.Text, RecordingID: d.RecordingID, ClusterIndex: d.ClusterIndex, Derived: d.Derived}, nil
	case timeline.KindCursor:
		var d cursorDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return timeline.CursorData{Style: d.Style, Scale: d.Scale, Smoothing: d.Smoothing}, nil
	case timeline.KindScreen:
		var d screenDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return timeline.ScreenData{CornerRadius: d.CornerRadius, Shadow: d.Shadow}, nil
	case timeline.KindPlugin:
		var d pluginDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return timeline.PluginData{PluginID: d.PluginID, Hooks: d.Hooks, Params: d.Params}, nil
	case timeline.KindBackground:
		var d backgroundDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		bg := timeline.BackgroundData{Color: d.Color, Opacity: d.Opacity, Padding: d.Padding}
		for _, k := range d.Suppressed {
			bg.Suppressed = append(bg.Suppressed, timeline.SuppressionKey{RecordingID: k.RecordingID, ClusterIndex: k.ClusterIndex})
		}
		return bg, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}
