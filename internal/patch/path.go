package patch

import (
	"fmt"
	"strings"
)

// Project-level field paths.
const (
	PathDuration  = "duration"
	PathPlayhead  = "playhead"
	PathSelection = "selection"
)

// ClipPath addresses a clip within its track.
func ClipPath(trackID, clipID string) string {
	return "tracks/" + trackID + "/clips/" + clipID
}

// EffectPath addresses an effect.
func EffectPath(effectID string) string {
	return "effects/" + effectID
}

// targetKind classifies a parsed path.
type targetKind uint8

const (
	targetDuration targetKind = iota
	targetPlayhead
	targetSelection
	targetClip
	targetEffect
)

// target is a parsed op path.
type target struct {
	kind     targetKind
	trackID  string
	clipID   string
	effectID string
}

func parsePath(p string) (target, error) {
	switch p {
	case PathDuration:
		return target{kind: targetDuration}, nil
	case PathPlayhead:
		return target{kind: targetPlayhead}, nil
	case PathSelection:
		return target{kind: targetSelection}, nil
	}

	parts := strings.Split(p, "/")
	switch {
	case len(parts) == 4 && parts[0] == "tracks" && parts[2] == "clips":
		return target{kind: targetClip, trackID: parts[1], clipID: parts[3]}, nil
	case len(parts) == 2 && parts[0] == "effects":
		return target{kind: targetEffect, effectID: parts[1]}, nil
	}
	return target{}, fmt.Errorf("%w: %q", ErrUnknownPath, p)
}
