package history

import (
	"github.com/reelcut/reelcut/internal/patch"
)

// BeginGroup opens a command group. Entries committed while the group is
// open are held back and folded into one undo step at EndGroup. Nested
// calls are ignored.
func (s *Stack) BeginGroup(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grouping {
		return
	}
	s.grouping = true
	s.groupID = id
	s.groupEntries = nil
}

// EndGroup closes the group and pushes a single entry whose forward
// patches are the members' forwards in order and whose inverse patches are
// the members' inverses in reverse order, so one undo reverts the whole
// group. An empty group pushes nothing.
func (s *Stack) EndGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.grouping {
		return
	}
	s.grouping = false

	members := s.groupEntries
	s.groupEntries = nil
	if len(members) == 0 {
		return
	}

	forwards := make([]patch.Set, len(members))
	inverses := make([]patch.Set, len(members))
	for i, m := range members {
		forwards[i] = m.Forward
		inverses[len(members)-1-i] = m.Inverse
	}

	s.pushLocked(&Entry{
		Name:    s.groupID,
		Forward: patch.Concat(forwards...),
		Inverse: patch.Concat(inverses...),
		GroupID: s.groupID,
		At:      s.now(),
	})
}

// CancelGroup closes the group but pushes its members as individual
// entries instead of one compound step. Their snapshots are already
// committed, so dropping them would orphan undo history.
func (s *Stack) CancelGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.grouping {
		return
	}
	s.grouping = false

	for _, m := range s.groupEntries {
		s.pushLocked(m)
	}
	s.groupEntries = nil
}

// IsGrouping returns true while a group is open.
func (s *Stack) IsGrouping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grouping
}

// GroupScope groups commands with a defer-friendly handle.
//
//	defer stack.GroupScope("delete-selection").End()
type GroupScope struct {
	stack  *Stack
	active bool
}

// GroupScope opens a group and returns its handle.
func (s *Stack) GroupScope(id string) *GroupScope {
	s.BeginGroup(id)
	return &GroupScope{stack: s, active: true}
}

// End closes the scope. Safe to call more than once.
func (g *GroupScope) End() {
	if g.active {
		g.stack.EndGroup()
		g.active = false
	}
}

// Cancel closes the scope, keeping members as individual entries.
func (g *GroupScope) Cancel() {
	if g.active {
		g.stack.CancelGroup()
		g.active = false
	}
}
