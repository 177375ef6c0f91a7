// Package history maintains the undo/redo stacks and owns the committed
// project snapshot.
//
// Entries pair a forward patch set with its inverse. The stack's current
// slot is the only shared mutable reference to the project: commits, undos
// and redos replace it wholesale by reference swap, so readers always hold
// a fully committed snapshot. Coalescing and grouping are the only
// mechanisms that ever merge entries, and both are explicit opt-ins.
package history

import (
	"sync"
	"time"

	"github.com/reelcut/reelcut/internal/patch"
	"github.com/reelcut/reelcut/internal/timeline"
)

// Defaults for Stack configuration zero values.
const (
	DefaultMaxEntries     = 1000
	DefaultCoalesceWindow = 500 * time.Millisecond
)

// Entry is one undoable step: a forward patch set paired with its inverse,
// plus the metadata coalescing and UI listings need.
type Entry struct {
	// Name is the command name, or the group ID for grouped entries.
	Name string

	Forward patch.Set
	Inverse patch.Set

	// GroupID marks an entry assembled from a command group.
	GroupID string

	// CoalesceKey marks the entry as coalescable; empty never merges.
	CoalesceKey string

	// Window bounds coalescing onto this entry. Zero means the stack's
	// default.
	Window time.Duration

	// At is when the entry was last written, refreshed on every coalesced
	// merge so a continuous drag keeps merging.
	At time.Time
}

// EntryInfo describes one stack entry for UI listings.
type EntryInfo struct {
	Name    string
	GroupID string
	At      time.Time
}

// Stack manages undo/redo state and the committed snapshot.
type Stack struct {
	mu sync.Mutex

	current *timeline.Project

	undoStack []*Entry
	redoStack []*Entry

	// Grouping state
	grouping     bool
	groupID      string
	groupEntries []*Entry

	// Configuration
	maxEntries     int
	coalesceWindow time.Duration

	now func() time.Time
}

// NewStack creates a history stack owning initial as the committed
// snapshot. Non-positive maxEntries or coalesceWindow select the defaults.
func NewStack(initial *timeline.Project, maxEntries int, coalesceWindow time.Duration) *Stack {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if coalesceWindow <= 0 {
		coalesceWindow = DefaultCoalesceWindow
	}
	return &Stack{
		current:        initial,
		maxEntries:     maxEntries,
		coalesceWindow: coalesceWindow,
		now:            time.Now,
	}
}

// Current returns the committed snapshot. Callers must treat it as
// immutable; it is replaced, never mutated, by commits and undo/redo.
func (s *Stack) Current() *timeline.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Replace installs a new committed snapshot and clears all history. Used
// when a project is loaded from outside the command path.
func (s *Stack) Replace(p *timeline.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
	s.undoStack = nil
	s.redoStack = nil
	s.grouping = false
	s.groupEntries = nil
}

// Commit installs next as the committed snapshot and records the entry.
//
// Inside an open group the entry is appended to the group. Otherwise, if
// the entry's coalesce key matches the top of the undo stack and the top
// was written within the coalesce window, the top's forward patches are
// replaced while its original inverse is kept, so one undo reverts the
// whole coalesced run. Any commit clears the redo stack.
func (s *Stack) Commit(next *timeline.Project, e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = next
	s.redoStack = nil
	e.At = s.now()

	if s.grouping {
		s.groupEntries = append(s.groupEntries, e)
		return
	}

	if s.coalesceLocked(e) {
		return
	}
	s.pushLocked(e)
}

// coalesceLocked merges e into the top undo entry when keys match within
// the window. Reports whether the merge happened.
func (s *Stack) coalesceLocked(e *Entry) bool {
	if e.CoalesceKey == "" || len(s.undoStack) == 0 {
		return false
	}
	top := s.undoStack[len(s.undoStack)-1]
	if top.CoalesceKey != e.CoalesceKey {
		return false
	}

	window := e.Window
	if window <= 0 {
		window = s.coalesceWindow
	}
	if e.At.Sub(top.At) > window {
		return false
	}

	top.Forward = e.Forward
	top.At = e.At
	return true
}

// pushLocked appends the entry and enforces the size cap.
func (s *Stack) pushLocked(e *Entry) {
	s.undoStack = append(s.undoStack, e)
	if len(s.undoStack) > s.maxEntries {
		excess := len(s.undoStack) - s.maxEntries
		s.undoStack = s.undoStack[excess:]
	}
}

// Undo applies the inverse of the newest entry and swaps in the resulting
// snapshot. Returns ErrNothingToUndo on an empty stack and ErrGroupOpen
// while a group is open.
func (s *Stack) Undo() (*Entry, error) {
	s.mu.Lock()
	if s.grouping {
		s.mu.Unlock()
		return nil, ErrGroupOpen
	}
	if len(s.undoStack) == 0 {
		s.mu.Unlock()
		return nil, ErrNothingToUndo
	}
	entry := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	base := s.current
	s.mu.Unlock()

	next, err := patch.Apply(base, entry.Inverse)
	if err != nil {
		// Restore entry on failure
		s.mu.Lock()
		s.undoStack = append(s.undoStack, entry)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.current = next
	s.redoStack = append(s.redoStack, entry)
	s.mu.Unlock()
	return entry, nil
}

// Redo re-applies the newest undone entry and swaps in the resulting
// snapshot. Returns ErrNothingToRedo on an empty stack and ErrGroupOpen
// while a group is open.
func (s *Stack) Redo() (*Entry, error) {
	s.mu.Lock()
	if s.grouping {
		s.mu.Unlock()
		return nil, ErrGroupOpen
	}
	if len(s.redoStack) == 0 {
		s.mu.Unlock()
		return nil, ErrNothingToRedo
	}
	entry := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	base := s.current
	s.mu.Unlock()

	next, err := patch.Apply(base, entry.Forward)
	if err != nil {
		// Restore entry on failure
		s.mu.Lock()
		s.redoStack = append(s.redoStack, entry)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.current = next
	s.undoStack = append(s.undoStack, entry)
	s.mu.Unlock()
	return entry, nil
}

// CanUndo returns true if undo is available.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (s *Stack) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack)
}

// RedoCount returns the number of redo steps available.
func (s *Stack) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack)
}

// UndoInfo lists the undo stack, oldest first.
func (s *Stack) UndoInfo() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return infoLocked(s.undoStack)
}

// RedoInfo lists the redo stack, oldest first.
func (s *Stack) RedoInfo() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return infoLocked(s.redoStack)
}

func infoLocked(entries []*Entry) []EntryInfo {
	out := make([]EntryInfo, len(entries))
	for i, e := range entries {
		out[i] = EntryInfo{Name: e.Name, GroupID: e.GroupID, At: e.At}
	}
	return out
}

// Clear removes all undo/redo history. The committed snapshot is kept.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undoStack = nil
	s.redoStack = nil
	s.grouping = false
	s.groupEntries = nil
}
