// Package reelcut is the editing core of a screen-recording video editor.
//
// It provides a command-based engine over an in-memory timeline: reversible
// clip and effect operations, exact undo/redo built from recorded patches,
// automatic synchronization of derived effects with the clips they depend
// on, a routing clipboard, and optional SQLite persistence.
//
// # Basic Usage
//
//	p := reelcut.NewProject("demo")
//	p.Recordings[rec.ID] = rec
//
//	ed, err := reelcut.New(p)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ed.Close()
//
//	track := p.Tracks[0]
//	res := ed.Execute(&reelcut.AddClip{
//		TrackID:     track.ID,
//		RecordingID: rec.ID,
//		SourceIn:    0,
//		SourceOut:   10_000,
//	})
//	if !res.IsOK() {
//		log.Fatal(res.Error)
//	}
//
//	ed.Undo()
//	ed.Redo()
//
// Commands can also be dispatched by name, which is how script bridges and
// shortcut tables drive the engine:
//
//	ed.ExecuteByName("clip.split", reelcut.Args{"clipId": id, "at": 4200})
//	ed.ExecuteShortcut("ctrl+z")
//
// # Persistence
//
//	ed, err := reelcut.New(p, reelcut.WithStorage("projects.db"))
//	...
//	ed.Save()
package reelcut

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/reelcut/reelcut/internal/config"
	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/effectsync"
	"github.com/reelcut/reelcut/internal/logging"
	"github.com/reelcut/reelcut/internal/plugin"
	"github.com/reelcut/reelcut/internal/store"
)

// Editor is the public handle on one editing session.
type Editor struct {
	session *editor.Session
	store   *store.Store
}

type options struct {
	cfg        config.Config
	configPath string
	logger     *slog.Logger
	storePath  string
	useStore   bool
	bus        *Bus
	keymapPath string
	noHooks    bool
}

// Option configures New.
type Option func(*options)

// WithConfig applies a full configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithConfigFile loads configuration from a TOML file, with REELCUT_*
// environment overrides. A missing file falls back to defaults.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configPath = path }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStorage enables SQLite persistence at path. An empty path selects an
// in-memory database. The editor owns the store; Close releases it.
func WithStorage(path string) Option {
	return func(o *options) {
		o.storePath = path
		o.useStore = true
	}
}

// WithBus shares an external event bus instead of a private one.
func WithBus(b *Bus) Option {
	return func(o *options) { o.bus = b }
}

// WithKeymapFile merges shortcut bindings from a JSON file over the
// defaults.
func WithKeymapFile(path string) Option {
	return func(o *options) { o.keymapPath = path }
}

// WithoutPluginHooks disables Lua window-change hooks for plugin effects;
// synchronization still moves their windows.
func WithoutPluginHooks() Option {
	return func(o *options) { o.noHooks = true }
}

// New creates an editor session owning the given project.
func New(p *Project, opts ...Option) (*Editor, error) {
	o := options{cfg: config.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		o.cfg = cfg
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}

	orch := effectsync.New()
	if o.cfg.Plugin.Enabled && !o.noHooks {
		orch.Hooks = plugin.NewHost(plugin.WithTimeout(o.cfg.Plugin.HookTimeout()))
	}

	keymap := editor.DefaultKeymap()
	if o.keymapPath != "" {
		if err := keymap.LoadFile(o.keymapPath); err != nil {
			return nil, err
		}
	}

	ed := &Editor{}
	sessionOpts := []editor.Option{
		editor.WithConfig(o.cfg),
		editor.WithLogger(o.logger),
		editor.WithSync(orch.SyncFunc()),
		editor.WithKeymap(keymap),
	}
	if o.bus != nil {
		sessionOpts = append(sessionOpts, editor.WithBus(o.bus))
	}
	if o.useStore {
		st, err := store.Open(o.storePath, o.logger)
		if err != nil {
			return nil, err
		}
		ed.store = st
		sessionOpts = append(sessionOpts, editor.WithStore(st))
	}

	ed.session = editor.NewSession(p, sessionOpts...)
	return ed, nil
}

// Close flushes pending autosave state and releases resources the editor
// owns. Safe on editors without storage.
func (e *Editor) Close() error {
	if err := e.session.Close(); err != nil {
		return err
	}
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Execute runs one command transactionally.
func (e *Editor) Execute(cmd Command) Result {
	return e.session.Execute(cmd)
}

// ExecuteByName builds the named command from args and executes it.
func (e *Editor) ExecuteByName(name string, args Args) Result {
	return e.session.ExecuteByName(name, args)
}

// ExecuteShortcut resolves a chord through the keymap and executes its
// binding.
func (e *Editor) ExecuteShortcut(chord string) Result {
	return e.session.ExecuteShortcut(chord)
}

// Undo reverts the most recent committed entry.
func (e *Editor) Undo() Result { return e.session.Undo() }

// Redo re-applies the most recently undone entry.
func (e *Editor) Redo() Result { return e.session.Redo() }

// BeginGroup opens a history group; until EndGroup, committed commands
// collapse into a single undo step.
func (e *Editor) BeginGroup(name string) { e.session.BeginGroup(name) }

// EndGroup closes the open group.
func (e *Editor) EndGroup() { e.session.EndGroup() }

// CancelGroup closes the open group, keeping its members individually
// undoable.
func (e *Editor) CancelGroup() { e.session.CancelGroup() }

// Project returns the committed snapshot. Snapshots are never mutated in
// place; callers may hold them across commits.
func (e *Editor) Project() *Project { return e.session.Project() }

// Selection returns the committed clip selection.
func (e *Editor) Selection() []string { return e.session.Selection() }

// CurrentTime returns the committed playhead position.
func (e *Editor) CurrentTime() Millis { return e.session.Playhead() }

// ClipboardContents returns a snapshot of the held clipboard contents, or
// nil when empty.
func (e *Editor) ClipboardContents() *ClipboardContents {
	return e.session.Clipboard().Contents()
}

// CanUndo reports whether an undo step exists.
func (e *Editor) CanUndo() bool { return e.session.CanUndo() }

// CanRedo reports whether a redo step exists.
func (e *Editor) CanRedo() bool { return e.session.CanRedo() }

// UndoInfo describes the undo stack, oldest first.
func (e *Editor) UndoInfo() []EntryInfo { return e.session.UndoInfo() }

// RedoInfo describes the redo stack, oldest first.
func (e *Editor) RedoInfo() []EntryInfo { return e.session.RedoInfo() }

// Subscribe registers a handler for every event topic matching the
// pattern. Patterns support "*" (one segment) and "**" (any tail).
// Options select filtered, one-shot or asynchronous delivery.
func (e *Editor) Subscribe(pattern Topic, fn Handler, opts ...SubscriptionOption) Subscription {
	return e.session.Bus().Subscribe(pattern, fn, opts...)
}

// Unsubscribe removes a subscription.
func (e *Editor) Unsubscribe(sub Subscription) {
	e.session.Bus().Unsubscribe(sub)
}

// RegisterCommand adds a custom command to the registry.
func (e *Editor) RegisterCommand(reg Registration) {
	e.session.Registry().Register(reg)
}

// Commands returns all registered command names, sorted.
func (e *Editor) Commands() []string {
	return e.session.Registry().List()
}

// Save writes the current snapshot to storage.
func (e *Editor) Save() error { return e.session.Save() }

// Load replaces the session's project with a stored one, discarding all
// history.
func (e *Editor) Load(projectID string) error {
	return e.session.LoadProject(projectID)
}

// ListProjects returns summary rows for every stored project.
func (e *Editor) ListProjects() ([]ProjectInfo, error) {
	if e.store == nil {
		return nil, fmt.Errorf("reelcut: no storage configured")
	}
	return e.store.ListProjects()
}

// Journal returns the most recent persisted command journal entries for
// the current project, newest first.
func (e *Editor) Journal(limit int) ([]JournalEntry, error) {
	if e.store == nil {
		return nil, fmt.Errorf("reelcut: no storage configured")
	}
	return e.store.Journal(e.session.Project().ID, limit)
}

// ExportEDL writes the current cut list in CMX3600-style
// edit-decision-list form.
func (e *Editor) ExportEDL(w io.Writer) error {
	return e.session.ExportEDL(w)
}
