// Package editor provides the session facade for the editing core.
//
// The editor package combines the command registry, history stack,
// clipboard, effect synchronization, persistence and the event bus into a
// single-writer editing loop around one project.
//
// # Architecture
//
// A Session is built on several sub-packages:
//
//   - command: reversible commands and the transaction runner
//   - history: undo/redo stacks with coalescing and grouping
//   - effectsync: propagation of clip changes into dependent effects
//   - clipboard: held clips and effects with per-kind paste routing
//   - event: session lifecycle notifications
//   - store: SQLite persistence and autosave
//
// # Concurrency
//
// Execute, ExecuteByName, ExecuteShortcut, Undo and Redo serialize on the
// session mutex, so exactly one transaction runs at a time. Project returns
// the committed snapshot; commits swap the snapshot pointer and never
// modify a snapshot a reader may hold.
//
// # Basic Usage
//
// Create a session and edit:
//
//	orch := effectsync.New()
//	s := editor.NewSession(project, editor.WithSync(orch.SyncFunc()))
//
//	// Typed commands
//	res := s.Execute(&command.SplitClip{ClipID: id, At: 4200})
//
//	// By-name dispatch, e.g. from a script bridge
//	res = s.ExecuteByName("clip.trim", editor.Args{
//		"clipId": id, "amount": 500, "edge": "start",
//	})
//
//	// Shortcuts fill arguments from the selection and playhead
//	s.ExecuteShortcut("ctrl+z")
//
// # Grouping
//
// Multi-step gestures collapse into one undo step:
//
//	s.BeginGroup("delete selected")
//	for _, id := range s.Selection() {
//		s.Execute(&command.DeleteClip{ClipID: id})
//	}
//	s.EndGroup()
package editor
