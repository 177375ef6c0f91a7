package editor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/reelcut/reelcut/internal/clipboard"
	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/config"
	"github.com/reelcut/reelcut/internal/effectsync"
	"github.com/reelcut/reelcut/internal/event"
	"github.com/reelcut/reelcut/internal/history"
	"github.com/reelcut/reelcut/internal/logging"
	"github.com/reelcut/reelcut/internal/patch"
	"github.com/reelcut/reelcut/internal/store"
	"github.com/reelcut/reelcut/internal/timeline"
)

// Session is the single-writer editing loop around one project.
//
// All mutation funnels through Execute and the undo/redo methods; they
// serialize on one mutex, so at most one transaction runs at a time.
// Readers obtain committed snapshots via Project and may hold them for as
// long as they like.
type Session struct {
	mu sync.Mutex

	stack     *history.Stack
	registry  *Registry
	keymap    *Keymap
	clipboard *clipboard.Clipboard
	sync      command.SyncFunc
	bus       *event.Bus
	store     *store.Store
	cfg       config.Config
	logger    *slog.Logger

	groupID  string
	ownsBus  bool
	syncSet  bool
	saved    bool
	lastSave time.Time
}

// Option configures a session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithBus sets the event bus. Sessions without one get a private bus.
func WithBus(b *event.Bus) Option {
	return func(s *Session) { s.bus = b }
}

// WithStore attaches a persistence store, enabling autosave and explicit
// save/load.
func WithStore(st *store.Store) Option {
	return func(s *Session) { s.store = st }
}

// WithConfig applies a full configuration.
func WithConfig(cfg config.Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

// WithSync replaces the effect synchronization hook invoked inside each
// transaction for every structural clip change. The default is the
// orchestrator without plugin hooks; WithSync(nil) disables
// synchronization entirely.
func WithSync(fn command.SyncFunc) Option {
	return func(s *Session) {
		s.sync = fn
		s.syncSet = true
	}
}

// WithKeymap replaces the default shortcut table.
func WithKeymap(k *Keymap) Option {
	return func(s *Session) { s.keymap = k }
}

// WithRegistry replaces the default command registry.
func WithRegistry(r *Registry) Option {
	return func(s *Session) { s.registry = r }
}

// NewSession creates a session owning the given project.
func NewSession(p *timeline.Project, opts ...Option) *Session {
	s := &Session{
		cfg:       config.Default(),
		clipboard: clipboard.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.Discard()
	}
	s.logger = logging.WithComponent(s.logger, "session")
	if s.registry == nil {
		s.registry = NewRegistry()
		RegisterBuiltins(s.registry)
	}
	if s.keymap == nil {
		s.keymap = DefaultKeymap()
	}
	if s.bus == nil {
		s.bus = event.NewBus()
		s.ownsBus = true
	}
	if !s.syncSet {
		s.sync = effectsync.New().SyncFunc()
	}
	s.stack = history.NewStack(p, s.cfg.History.MaxEntries, s.cfg.History.CoalesceWindow())

	// Keymaps may bind commands a host registers after construction, so an
	// unknown name is a warning, not an error.
	for chord, b := range s.keymap.Bindings() {
		if b.Command == CmdUndo || b.Command == CmdRedo {
			continue
		}
		if !s.registry.Has(b.Command) {
			s.logger.Warn("keymap binds unregistered command",
				"chord", chord, "command", b.Command)
		}
	}
	return s
}

// Close flushes pending journal rows and releases the private event bus.
// Shared buses and the store belong to the caller and stay open.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil && s.saved {
		p := s.stack.Current()
		if _, err := s.store.FlushJournal(p.ID); err != nil {
			s.logger.Warn("journal flush failed", "project", p.ID, "error", err)
		}
	}
	if s.ownsBus {
		s.bus.Close()
	}
	return nil
}

// Execute runs one command transactionally. The returned result is always
// meaningful; failed transactions leave the project untouched.
func (s *Session) Execute(cmd command.Command) command.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executeLocked(cmd)
}

// ExecuteByName builds the named command from args and executes it.
// The undo/redo pseudo-commands are resolved here, and missing arguments
// are filled from editing context the same way shortcuts are.
func (s *Session) ExecuteByName(name string, args Args) command.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case CmdUndo:
		return s.undoLocked()
	case CmdRedo:
		return s.redoLocked()
	}

	cmd, err := s.registry.Build(name, s.contextualArgs(name, args))
	if err != nil {
		s.logger.Warn("command build failed", "command", name, "error", err)
		return command.Error(err)
	}
	return s.executeLocked(cmd)
}

// ExecuteShortcut resolves a chord through the keymap and executes its
// binding. Missing arguments are filled from editing context: the first
// selected clip, the playhead for splits, and the target track for clip
// pastes.
func (s *Session) ExecuteShortcut(chord string) command.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	binding, ok := s.keymap.Lookup(chord)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownShortcut, chord)
		return command.Error(err)
	}

	switch binding.Command {
	case CmdUndo:
		return s.undoLocked()
	case CmdRedo:
		return s.redoLocked()
	}

	args := s.contextualArgs(binding.Command, Args(binding.Args))
	cmd, err := s.registry.Build(binding.Command, args)
	if err != nil {
		s.logger.Warn("shortcut build failed", "chord", chord, "command", binding.Command, "error", err)
		return command.Error(err)
	}
	return s.executeLocked(cmd)
}

func (s *Session) executeLocked(cmd command.Command) command.Result {
	base := s.stack.Current()
	env := command.Env{Clipboard: s.clipboard, Sync: s.sync}

	txn, res, err := command.Run(base, cmd, env)
	if err != nil {
		s.logger.Warn("command failed",
			"command", cmd.Name(), "status", res.Status.String(), "error", err)
		return res
	}

	if txn == nil {
		return res
	}

	s.stack.Commit(txn.Next, &history.Entry{
		Name:        cmd.Name(),
		Forward:     txn.Forward,
		Inverse:     txn.Inverse,
		GroupID:     s.groupID,
		CoalesceKey: command.CoalesceKeyOf(cmd),
		Window:      command.CoalesceWindowOf(cmd),
	})
	s.logger.Debug("command committed",
		"command", cmd.Name(), "ops", len(txn.Forward))

	s.publish(event.TopicCommit, event.CommitPayload{
		Command: cmd.Name(),
		Status:  res.Status.String(),
		Project: s.stack.Current(),
	})
	s.maybePersist(cmd.Name(), txn.Forward)
	return res
}

// contextualArgs fills the arguments a bare invocation leaves implicit:
// the first selected clip, the playhead for splits, the target track for
// clip pastes, and configured defaults for derivation and effect pastes.
func (s *Session) contextualArgs(name string, args Args) Args {
	p := s.stack.Current()
	out := args.Clone()

	switch name {
	case command.CmdClipDelete, command.CmdClipTrim, command.CmdClipSplit,
		command.CmdClipReorder, command.CmdClipRate, command.CmdClipUpdate,
		command.CmdCopyClip, command.CmdCutClip:
		if !out.Has("clipId") && len(p.Selection) > 0 {
			out["clipId"] = p.Selection[0]
		}
	}

	switch name {
	case command.CmdClipSplit:
		if !out.Has("at") {
			out["at"] = p.Playhead
		}

	case command.CmdPasteClip:
		if !out.Has("trackId") {
			if trackID := pasteTargetTrack(p); trackID != "" {
				out["trackId"] = trackID
			}
		}

	case command.CmdPasteEffect:
		fillMillis(out, "blockDuration", s.cfg.Paste.BlockDurationMs)

	case command.CmdRegenerate:
		d := s.cfg.Derive
		fillMillis(out, "pauseGap", d.PauseGapMs)
		fillMillis(out, "minBlock", d.MinBlockMs)
		fillMillis(out, "maxBlock", d.MaxBlockMs)
		fillMillis(out, "readingMs", d.ReadingMsPerGrapheme)
		if !out.Has("minGraphemes") && d.MinGraphemes > 0 {
			out["minGraphemes"] = d.MinGraphemes
		}
	}

	return out
}

// fillMillis sets a millisecond argument from configuration when the caller
// left it out and the configured value is positive.
func fillMillis(out Args, key string, ms int) {
	if !out.Has(key) && ms > 0 {
		out[key] = timeline.Millis(ms)
	}
}

// pasteTargetTrack picks the selected clip's track, else the first track.
func pasteTargetTrack(p *timeline.Project) string {
	if len(p.Selection) > 0 {
		if _, track := p.ClipByID(p.Selection[0]); track != nil {
			return track.ID
		}
	}
	if len(p.Tracks) > 0 {
		return p.Tracks[0].ID
	}
	return ""
}

// Undo reverts the most recent committed entry.
// An empty undo stack is a no-op, not an error.
func (s *Session) Undo() command.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undoLocked()
}

// Redo re-applies the most recently undone entry.
func (s *Session) Redo() command.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redoLocked()
}

func (s *Session) undoLocked() command.Result {
	entry, err := s.stack.Undo()
	if errors.Is(err, history.ErrNothingToUndo) {
		return command.NoOp("nothing to undo")
	}
	if err != nil {
		s.logger.Error("undo failed", "error", err)
		return command.Error(err)
	}

	s.publish(event.TopicUndo, event.HistoryPayload{
		Entry:   entry.Name,
		Project: s.stack.Current(),
	})
	// The inverse is the forward direction for the stored document here.
	s.maybePersist("undo:"+entry.Name, entry.Inverse)
	return command.SuccessWithMessage("undid " + entry.Name)
}

func (s *Session) redoLocked() command.Result {
	entry, err := s.stack.Redo()
	if errors.Is(err, history.ErrNothingToRedo) {
		return command.NoOp("nothing to redo")
	}
	if err != nil {
		s.logger.Error("redo failed", "error", err)
		return command.Error(err)
	}

	s.publish(event.TopicRedo, event.HistoryPayload{
		Entry:   entry.Name,
		Project: s.stack.Current(),
	})
	s.maybePersist("redo:"+entry.Name, entry.Forward)
	return command.SuccessWithMessage("redid " + entry.Name)
}

// BeginGroup opens a history group: every command committed until EndGroup
// collapses into a single undo step named after the group.
func (s *Session) BeginGroup(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupID = name
	s.stack.BeginGroup(name)
}

// EndGroup closes the open group.
func (s *Session) EndGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	groupID := s.groupID
	s.groupID = ""
	s.stack.EndGroup()

	if groupID != "" {
		s.publish(event.TopicGroupClosed, event.GroupPayload{
			GroupID: groupID,
			Project: s.stack.Current(),
		})
	}
}

// CancelGroup closes the open group without collapsing it; its members
// remain individually undoable.
func (s *Session) CancelGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupID = ""
	s.stack.CancelGroup()
}

// Project returns the committed snapshot.
func (s *Session) Project() *timeline.Project {
	return s.stack.Current()
}

// Selection returns the committed selection.
func (s *Session) Selection() []string {
	return s.stack.Current().Selection
}

// Playhead returns the committed playhead position.
func (s *Session) Playhead() timeline.Millis {
	return s.stack.Current().Playhead
}

// Clipboard returns the session clipboard.
func (s *Session) Clipboard() *clipboard.Clipboard {
	return s.clipboard
}

// Bus returns the session's event bus.
func (s *Session) Bus() *event.Bus {
	return s.bus
}

// Registry returns the command registry.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Keymap returns the shortcut table.
func (s *Session) Keymap() *Keymap {
	return s.keymap
}

// CanUndo reports whether an undo step exists.
func (s *Session) CanUndo() bool { return s.stack.CanUndo() }

// CanRedo reports whether a redo step exists.
func (s *Session) CanRedo() bool { return s.stack.CanRedo() }

// UndoInfo describes the undo stack, oldest first.
func (s *Session) UndoInfo() []history.EntryInfo { return s.stack.UndoInfo() }

// RedoInfo describes the redo stack, oldest first.
func (s *Session) RedoInfo() []history.EntryInfo { return s.stack.RedoInfo() }

// Save writes the current snapshot to the store.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return ErrNoStore
	}
	p := s.stack.Current()
	if err := s.store.SaveProject(p); err != nil {
		return err
	}
	s.saved = true
	s.lastSave = time.Now()

	s.publish(event.TopicProjectSaved, event.ProjectPayload{ProjectID: p.ID, Name: p.Name})
	s.logger.Info("project saved", "project", p.ID)
	return nil
}

// LoadProject replaces the session's project with a stored one.
// All undo/redo history is discarded.
func (s *Session) LoadProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return ErrNoStore
	}
	p, err := s.store.LoadProject(id)
	if err != nil {
		return err
	}

	s.stack.Replace(p)
	s.saved = true
	s.lastSave = time.Now()

	s.publish(event.TopicProjectLoaded, event.ProjectPayload{ProjectID: p.ID, Name: p.Name})
	s.logger.Info("project loaded", "project", p.ID)
	return nil
}

// ExportEDL writes the current cut list in edit-decision-list form.
func (s *Session) ExportEDL(w io.Writer) error {
	return store.ExportEDL(s.stack.Current(), w)
}

// maybePersist autosaves after a commit. The first commit writes the whole
// document; after that each commit appends its forward patch to the journal
// and the document catches up when the autosave interval elapses (an
// interval of zero flushes every commit). Persistence failures are logged,
// never surfaced: losing an autosave must not fail the edit.
func (s *Session) maybePersist(commandName string, forward patch.Set) {
	if s.store == nil || !s.cfg.Autosave.Enabled {
		return
	}

	p := s.stack.Current()
	if !s.saved {
		if err := s.store.SaveProject(p); err != nil {
			s.logger.Warn("autosave failed", "project", p.ID, "error", err)
			return
		}
		s.saved = true
		s.lastSave = time.Now()
		s.logger.Debug("autosaved", "project", p.ID)
		return
	}

	if len(forward) > 0 {
		if _, err := s.store.AppendJournal(p.ID, commandName, forward); err != nil {
			s.logger.Warn("journal write failed", "project", p.ID, "error", err)
			return
		}
	}

	if time.Since(s.lastSave) >= s.cfg.Autosave.Interval() {
		if _, err := s.store.FlushJournal(p.ID); err != nil {
			s.logger.Warn("journal flush failed", "project", p.ID, "error", err)
			return
		}
		s.lastSave = time.Now()
	}
}

func (s *Session) publish(topic event.Topic, payload any) {
	s.bus.Publish(event.NewEvent(topic, payload, "session"))
}
