package reelcut

import (
	"github.com/reelcut/reelcut/internal/clipboard"
	"github.com/reelcut/reelcut/internal/command"
	"github.com/reelcut/reelcut/internal/config"
	"github.com/reelcut/reelcut/internal/derive"
	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/event"
	"github.com/reelcut/reelcut/internal/history"
	"github.com/reelcut/reelcut/internal/logging"
	"github.com/reelcut/reelcut/internal/plugin"
	"github.com/reelcut/reelcut/internal/store"
	"github.com/reelcut/reelcut/internal/timeline"
)

// Timeline model.
type (
	// Millis is a time value or duration in milliseconds.
	Millis = timeline.Millis
	// Project is the root aggregate of an editing session.
	Project = timeline.Project
	// Track is an ordered lane of non-overlapping clips.
	Track = timeline.Track
	// TrackKind identifies what a track carries.
	TrackKind = timeline.TrackKind
	// Clip is a contiguous slice of a source recording placed on a track.
	Clip = timeline.Clip
	// ClipState is an immutable snapshot of a clip's geometry.
	ClipState = timeline.ClipState
	// Recording is a captured source media file plus its transcript.
	Recording = timeline.Recording
	// Word is one transcribed token of a recording.
	Word = timeline.Word
	// Effect is one overlay entity in timeline space.
	Effect = timeline.Effect
	// EffectKind enumerates the closed set of overlay effect kinds.
	EffectKind = timeline.EffectKind
	// EffectData is the payload carried by an effect.
	EffectData = timeline.EffectData
	// SuppressionKey identifies one derived block that must not be
	// recreated.
	SuppressionKey = timeline.SuppressionKey
)

// Effect payloads.
type (
	ZoomData       = timeline.ZoomData
	CropData       = timeline.CropData
	SubtitleData   = timeline.SubtitleData
	KeystrokeData  = timeline.KeystrokeData
	CursorData     = timeline.CursorData
	ScreenData     = timeline.ScreenData
	PluginData     = timeline.PluginData
	BackgroundData = timeline.BackgroundData
)

// Command machinery.
type (
	// Command is a named, reversible unit of work.
	Command = command.Command
	// Result is the outcome of executing a command.
	Result = command.Result
	// Status indicates a result's outcome class.
	Status = command.Status
	// Args carries named parameters for by-name dispatch.
	Args = editor.Args
	// Registration describes one named command in the registry.
	Registration = editor.Registration
	// Builder constructs a command from loosely-typed arguments.
	Builder = editor.Builder
	// Binding maps a shortcut chord to a command invocation.
	Binding = editor.Binding
	// EntryInfo describes one history entry.
	EntryInfo = history.EntryInfo
	// ClipboardContents is a snapshot of what the clipboard holds.
	ClipboardContents = clipboard.Contents
	// DeriveSettings tunes transcript clustering for derived effects.
	DeriveSettings = derive.Settings
)

// Concrete commands, usable directly with Execute.
type (
	AddClip           = command.AddClip
	DeleteClip        = command.DeleteClip
	TrimClip          = command.TrimClip
	TrimEdge          = command.TrimEdge
	SplitClip         = command.SplitClip
	ReorderClip       = command.ReorderClip
	RateClip          = command.RateClip
	UpdateClipWindow  = command.UpdateClipWindow
	AddEffect         = command.AddEffect
	UpdateEffect      = command.UpdateEffect
	DeleteEffect      = command.DeleteEffect
	RegenerateEffects = command.RegenerateEffects
	Select            = command.Select
	ClearSelect       = command.ClearSelect
	SetPlayhead       = command.SetPlayhead
	CopyClip          = command.CopyClip
	CutClip           = command.CutClip
	PasteClip         = command.PasteClip
	CopyEffect        = command.CopyEffect
	PasteEffect       = command.PasteEffect
	ClearClipboard    = command.ClearClipboard
)

// Events and configuration.
type (
	// Event is one published notification.
	Event = event.Event
	// Topic names an event stream.
	Topic = event.Topic
	// Handler consumes published events.
	Handler = event.Handler
	// Subscription identifies one bus registration.
	Subscription = event.Subscription
	// SubscriptionOption selects filtered, one-shot or async delivery.
	SubscriptionOption = event.SubscriptionOption
	// Bus is a wildcard-topic event bus.
	Bus = event.Bus
	// BusStats are cumulative bus counters.
	BusStats = event.Stats
	// Config is the full engine configuration.
	Config = config.Config
	// ProjectInfo is a storage listing row.
	ProjectInfo = store.ProjectInfo
	// JournalEntry is one persisted command patch record.
	JournalEntry = store.JournalEntry
	// CommitPayload accompanies TopicCommit events.
	CommitPayload = event.CommitPayload
	// HistoryPayload accompanies TopicUndo and TopicRedo events.
	HistoryPayload = event.HistoryPayload
	// GroupPayload accompanies TopicGroupClosed events.
	GroupPayload = event.GroupPayload
	// ProjectPayload accompanies TopicProjectLoaded and TopicProjectSaved.
	ProjectPayload = event.ProjectPayload
)

// Subscription options.
var (
	WithFilter = event.WithFilter
	WithOnce   = event.WithOnce
	WithAsync  = event.WithAsync
	WithBuffer = event.WithBuffer
)

// Result statuses.
const (
	StatusOK       = command.StatusOK
	StatusNoOp     = command.StatusNoOp
	StatusRejected = command.StatusRejected
	StatusError    = command.StatusError
)

// Effect kinds.
const (
	KindZoom       = timeline.KindZoom
	KindCrop       = timeline.KindCrop
	KindSubtitle   = timeline.KindSubtitle
	KindKeystroke  = timeline.KindKeystroke
	KindCursor     = timeline.KindCursor
	KindBackground = timeline.KindBackground
	KindScreen     = timeline.KindScreen
	KindPlugin     = timeline.KindPlugin
)

// Track kinds.
const (
	TrackVideo  = timeline.TrackVideo
	TrackAudio  = timeline.TrackAudio
	TrackWebcam = timeline.TrackWebcam
)

// Trim edges.
const (
	EdgeStart = command.EdgeStart
	EdgeEnd   = command.EdgeEnd
)

// Event topics.
const (
	TopicCommit        = event.TopicCommit
	TopicUndo          = event.TopicUndo
	TopicRedo          = event.TopicRedo
	TopicGroupClosed   = event.TopicGroupClosed
	TopicProjectLoaded = event.TopicProjectLoaded
	TopicProjectSaved  = event.TopicProjectSaved
)

// Engine defaults.
const (
	MinPlaybackRate = timeline.MinPlaybackRate
	MaxPlaybackRate = timeline.MaxPlaybackRate

	DefaultMaxEntries     = history.DefaultMaxEntries
	DefaultCoalesceWindow = history.DefaultCoalesceWindow
	DefaultBlockDuration  = clipboard.DefaultBlockDuration
	DefaultPauseGap       = derive.DefaultPauseGap
	DefaultMinGraphemes   = derive.DefaultMinGraphemes
	DefaultMinBlock       = derive.DefaultMinBlock
	DefaultMaxBlock       = derive.DefaultMaxBlock
	DefaultReadingMs      = derive.DefaultReadingMs
)

// Error taxonomy.
var (
	ErrGuardRejected  = command.ErrGuardRejected
	ErrNotFound       = command.ErrNotFound
	ErrInvalidState   = command.ErrInvalidState
	ErrMutationFailed = command.ErrMutationFailed
	ErrUnknownCommand = editor.ErrUnknownCommand
	ErrBadArgs        = editor.ErrBadArgs
	ErrHookTimeout    = plugin.ErrHookTimeout
)

// Model constructors.
var (
	NewProject = timeline.NewProject
	NewTrack   = timeline.NewTrack
	NewClip    = timeline.NewClip
	NewEffect  = timeline.NewEffect
	NewID      = timeline.NewID
	NewBus     = event.NewBus
)

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads configuration from a TOML file with REELCUT_*
// environment overrides.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// NewLogger builds a structured logger writing to stderr. Level is one of
// "debug", "info", "warn", "error"; format "text" or "json".
var NewLogger = logging.NewLogger

// ParseEffectKind converts a stored kind name back to an EffectKind.
var ParseEffectKind = timeline.ParseEffectKind

// ParseTrackKind converts a stored kind name back to a TrackKind.
var ParseTrackKind = timeline.ParseTrackKind
