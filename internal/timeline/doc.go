// Package timeline defines the project state model for the editing core.
//
// A Project aggregates ordered Tracks of non-overlapping Clips, a flat set
// of overlay Effects, the current Selection, and the Playhead. All times are
// Millis in timeline space (the single global composition axis); a Clip maps
// its timeline range onto a window of its source Recording via SourceIn,
// SourceOut and PlaybackRate.
//
// Effects are a closed set of kinds. A clip-bound effect (Crop, Cursor,
// Screen) references its owning clip by ID and moves rigidly with it. A
// time-window effect (Zoom, Subtitle, Keystroke, Plugin) is defined purely
// by a timeline interval and is reconciled against whichever clips occupy
// that interval after an edit. Background is a per-project singleton whose
// payload also stores suppression tombstones for derived blocks that the
// user deleted.
//
// Values in this package are passive: they are created and destroyed only
// by commands, and committed snapshots are never mutated in place. Mutation
// helpers (Reflow, SortClips, ...) exist for transaction working copies.
package timeline
