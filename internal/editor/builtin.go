package editor

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/clipboard"
	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/derive"
	"github.com/reelcut/reelcut/internal/timeline"
)

// RegisterBuiltins installs a builder for every command the engine ships.
func RegisterBuiltins(r *Registry) {
	for _, reg := range builtins() {
		r.Register(reg)
	}
}

func builtins() []Registration {
	return []Registration{
		{
			Name:        command.CmdClipAdd,
			Category:    command.CategoryClip,
			Description: "Add a clip from a recording",
			Build:       buildAddClip,
		},
		{
			Name:        command.CmdClipDelete,
			Category:    command.CategoryClip,
			Description: "Delete a clip",
			Build:       buildDeleteClip,
		},
		{
			Name:        command.CmdClipTrim,
			Category:    command.CategoryClip,
			Description: "Trim a clip edge",
			Build:       buildTrimClip,
		},
		{
			Name:        command.CmdClipSplit,
			Category:    command.CategoryClip,
			Description: "Split a clip in two",
			Build:       buildSplitClip,
		},
		{
			Name:        command.CmdClipReorder,
			Category:    command.CategoryClip,
			Description: "Move a clip to another position",
			Build:       buildReorderClip,
		},
		{
			Name:        command.CmdClipRate,
			Category:    command.CategoryClip,
			Description: "Change a clip's playback speed",
			Build:       buildRateClip,
		},
		{
			Name:        command.CmdClipUpdate,
			Category:    command.CategoryClip,
			Description: "Adjust a clip's source window",
			Build:       buildUpdateClipWindow,
		},
		{
			Name:        command.CmdEffectAdd,
			Category:    command.CategoryEffect,
			Description: "Add an effect",
			Build:       buildAddEffect,
		},
		{
			Name:        command.CmdEffectUpdate,
			Category:    command.CategoryEffect,
			Description: "Update an effect",
			Build:       buildUpdateEffect,
		},
		{
			Name:        command.CmdEffectDelete,
			Category:    command.CategoryEffect,
			Description: "Delete an effect",
			Build:       buildDeleteEffect,
		},
		{
			Name:        command.CmdRegenerate,
			Category:    command.CategoryEffect,
			Description: "Regenerate derived effects from a transcript",
			Build:       buildRegenerate,
		},
		{
			Name:        command.CmdSelect,
			Category:    command.CategorySelection,
			Description: "Select clips",
			Build:       buildSelect,
		},
		{
			Name:        command.CmdClearSelect,
			Category:    command.CategorySelection,
			Description: "Clear the selection",
			Build: func(Args) (command.Command, error) {
				return &command.ClearSelect{}, nil
			},
		},
		{
			Name:        command.CmdSetPlayhead,
			Category:    command.CategoryPlayback,
			Description: "Move the playhead",
			Build:       buildSetPlayhead,
		},
		{
			Name:        command.CmdCopyClip,
			Category:    command.CategoryClipboard,
			Description: "Copy a clip",
			Build:       buildCopyClip,
		},
		{
			Name:        command.CmdCutClip,
			Category:    command.CategoryClipboard,
			Description: "Cut a clip",
			Build:       buildCutClip,
		},
		{
			Name:        command.CmdPasteClip,
			Category:    command.CategoryClipboard,
			Description: "Paste the held clip",
			Build:       buildPasteClip,
		},
		{
			Name:        command.CmdCopyEffect,
			Category:    command.CategoryClipboard,
			Description: "Copy an effect",
			Build:       buildCopyEffect,
		},
		{
			Name:        command.CmdPasteEffect,
			Category:    command.CategoryClipboard,
			Description: "Paste the held effect",
			Build:       buildPasteEffect,
		},
		{
			Name:        command.CmdClearClipboard,
			Category:    command.CategoryClipboard,
			Description: "Clear the clipboard",
			Build: func(Args) (command.Command, error) {
				return &command.ClearClipboard{}, nil
			},
		},
	}
}

func buildAddClip(a Args) (command.Command, error) {
	trackID, err := a.String("trackId")
	if err != nil {
		return nil, err
	}
	recordingID, err := a.String("recordingId")
	if err != nil {
		return nil, err
	}
	sourceIn, err := a.Millis("sourceIn")
	if err != nil {
		return nil, err
	}
	sourceOut, err := a.Millis("sourceOut")
	if err != nil {
		return nil, err
	}
	return &command.AddClip{
		TrackID:     trackID,
		RecordingID: recordingID,
		At:          a.MillisOr("at", -1),
		SourceIn:    sourceIn,
		SourceOut:   sourceOut,
		Rate:        a.FloatOr("rate", 0),
	}, nil
}

func buildDeleteClip(a Args) (command.Command, error) {
	clipID, err := a.String("clipId")
	if err != nil {
		return nil, err
	}
	return &command.DeleteClip{ClipID: clipID, Ripple: a.BoolOr("ripple", false)}, nil
}

func buildTrimClip(a Args) (command.Command, error) {
	clipID, err := a.String("clipId")
	if err != nil {
		return nil, err
	}
	amount, err := a.Millis("amount")
	if err != nil {
		return nil, err
	}
	edgeName, err := a.String("edge")
	if err != nil {
		return nil, err
	}
	edge, ok := command.ParseTrimEdge(edgeName)
	if !ok {
		return nil, fmt.Errorf("%w: edge must be \"start\" or \"end\", got %q", ErrBadArgs, edgeName)
	}
	return &command.TrimClip{ClipID: clipID, Amount: amount, Edge: edge}, nil
}

func buildSplitClip(a Args) (command.Command, error) {
	clipID, err := a.String("clipId")
	if err != nil {
		return nil, err
	}
	at, err := a.Millis("at")
	if err != nil {
		return nil, err
	}
	return &command.SplitClip{ClipID: clipID, At: at}, nil
}

func buildReorderClip(a Args) (command.Command, error) {
	clipID, err := a.String("clipId")
	if err != nil {
		return nil, err
	}
	toIndex, err := a.Int("toIndex")
	if err != nil {
		return nil, err
	}
	return &command.ReorderClip{ClipID: clipID, ToIndex: toIndex}, nil
}

func buildRateClip(a Args) (command.Command, error) {
	clipID, err := a.String("clipId")
	if err != nil {
		return nil, err
	}
	rate, err := a.Float("rate")
	if err != nil {
		return nil, err
	}
	return &command.RateClip{ClipID: clipID, Rate: rate}, nil
}

func buildUpdateClipWindow(a Args) (command.Command, error) {
	clipID, err := a.String("clipId")
	if err != nil {
		return nil, err
	}
	sourceIn, err := a.MillisPtr("sourceIn")
	if err != nil {
		return nil, err
	}
	sourceOut, err := a.MillisPtr("sourceOut")
	if err != nil {
		return nil, err
	}
	return &command.UpdateClipWindow{ClipID: clipID, SourceIn: sourceIn, SourceOut: sourceOut}, nil
}

func buildAddEffect(a Args) (command.Command, error) {
	kindName, err := a.String("kind")
	if err != nil {
		return nil, err
	}
	payload, err := parseEffectData(kindName, a)
	if err != nil {
		return nil, err
	}
	start, err := a.Millis("start")
	if err != nil {
		return nil, err
	}
	end, err := a.Millis("end")
	if err != nil {
		return nil, err
	}
	return &command.AddEffect{
		Start:  start,
		End:    end,
		ClipID: a.StringOr("clipId", ""),
		Data:   payload,
	}, nil
}

func buildUpdateEffect(a Args) (command.Command, error) {
	effectID, err := a.String("effectId")
	if err != nil {
		return nil, err
	}
	start, err := a.MillisPtr("start")
	if err != nil {
		return nil, err
	}
	end, err := a.MillisPtr("end")
	if err != nil {
		return nil, err
	}
	enabled, err := a.BoolPtr("enabled")
	if err != nil {
		return nil, err
	}

	// A payload replacement needs the kind to decode against.
	var payload timeline.EffectData
	if a.Has("data") {
		kindName, err := a.String("kind")
		if err != nil {
			return nil, fmt.Errorf("%w: %q requires %q to type the payload", ErrBadArgs, "data", "kind")
		}
		payload, err = parseEffectData(kindName, a)
		if err != nil {
			return nil, err
		}
	}

	return &command.UpdateEffect{
		EffectID: effectID,
		Start:    start,
		End:      end,
		Enabled:  enabled,
		Data:     payload,
	}, nil
}

func buildDeleteEffect(a Args) (command.Command, error) {
	effectID, err := a.String("effectId")
	if err != nil {
		return nil, err
	}
	return &command.DeleteEffect{EffectID: effectID}, nil
}

func buildRegenerate(a Args) (command.Command, error) {
	recordingID, err := a.String("recordingId")
	if err != nil {
		return nil, err
	}
	var kinds []timeline.EffectKind
	for _, name := range a.StringsOr("kinds") {
		kind, ok := timeline.ParseEffectKind(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown effect kind %q", ErrBadArgs, name)
		}
		kinds = append(kinds, kind)
	}
	return &command.RegenerateEffects{
		RecordingID: recordingID,
		Kinds:       kinds,
		Settings: derive.Settings{
			PauseGap:     a.MillisOr("pauseGap", 0),
			MinGraphemes: a.IntOr("minGraphemes", 0),
			MinBlock:     a.MillisOr("minBlock", 0),
			MaxBlock:     a.MillisOr("maxBlock", 0),
			ReadingMs:    a.MillisOr("readingMs", 0),
		},
	}, nil
}

func buildSelect(a Args) (command.Command, error) {
	ids, err := a.Strings("clipIds")
	if err != nil {
		return nil, err
	}
	return &command.Select{ClipIDs: ids}, nil
}

func buildSetPlayhead(a Args) (command.Command, error) {
	at, err := a.Millis("at")
	if err != nil {
		return nil, err
	}
	return &command.SetPlayhead{At: at}, nil
}

func buildCopyClip(a Args) (command.Command, error) {
	clipID, err := a.String("clipId")
	if err != nil {
		return nil, err
	}
	return &command.CopyClip{ClipID: clipID}, nil
}

func buildCutClip(a Args) (command.Command, error) {
	clipID, err := a.String("clipId")
	if err != nil {
		return nil, err
	}
	return &command.CutClip{ClipID: clipID, Ripple: a.BoolOr("ripple", false)}, nil
}

func buildPasteClip(a Args) (command.Command, error) {
	trackID, err := a.String("trackId")
	if err != nil {
		return nil, err
	}
	return &command.PasteClip{TrackID: trackID, At: a.MillisOr("at", -1)}, nil
}

func buildCopyEffect(a Args) (command.Command, error) {
	effectID, err := a.String("effectId")
	if err != nil {
		return nil, err
	}
	return &command.CopyEffect{EffectID: effectID}, nil
}

func buildPasteEffect(a Args) (command.Command, error) {
	return &command.PasteEffect{
		Defaults: clipboard.PasteDefaults{BlockDuration: a.MillisOr("blockDuration", 0)},
	}, nil
}

// parseEffectData builds a typed payload from the "data" object of an
// effect command.
func parseEffectData(kindName string, a Args) (timeline.EffectData, error) {
	kind, ok := timeline.ParseEffectKind(kindName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown effect kind %q", ErrBadArgs, kindName)
	}
	data, err := a.Map("data")
	if err != nil {
		return nil, err
	}
	d := Args(data)

	switch kind {
	case timeline.KindZoom:
		return timeline.ZoomData{
			Scale:  d.FloatOr("scale", 1),
			FocusX: d.FloatOr("focusX", 0.5),
			FocusY: d.FloatOr("focusY", 0.5),
		}, nil
	case timeline.KindCrop:
		return timeline.CropData{
			X:      d.FloatOr("x", 0),
			Y:      d.FloatOr("y", 0),
			Width:  d.FloatOr("width", 1),
			Height: d.FloatOr("height", 1),
		}, nil
	case timeline.KindSubtitle:
		return timeline.SubtitleData{Text: d.StringOr("text", "")}, nil
	case timeline.KindKeystroke:
		return timeline.KeystrokeData{Text: d.StringOr("text", "")}, nil
	case timeline.KindCursor:
		return timeline.CursorData{
			Style:     d.StringOr("style", "default"),
			Scale:     d.FloatOr("scale", 1),
			Smoothing: d.BoolOr("smoothing", false),
		}, nil
	case timeline.KindScreen:
		return timeline.ScreenData{
			CornerRadius: d.FloatOr("cornerRadius", 0),
			Shadow:       d.FloatOr("shadow", 0),
		}, nil
	case timeline.KindBackground:
		return timeline.BackgroundData{
			Color:   d.StringOr("color", ""),
			Opacity: d.FloatOr("opacity", 1),
			Padding: d.FloatOr("padding", 0),
		}, nil
	case timeline.KindPlugin:
		params, _ := d["params"].(map[string]any)
		return timeline.PluginData{
			PluginID: d.StringOr("pluginId", ""),
			Hooks:    d.StringOr("hooks", ""),
			Params:   params,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown effect kind %q", ErrBadArgs, kindName)
	}
}
