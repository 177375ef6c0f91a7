// Package config loads editing-session configuration.
//
// Values resolve in three layers, later layers winning: compiled defaults,
// an optional TOML file, then REELCUT_* environment variables. The loaded
// Config is a plain value; nothing watches for changes at runtime.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variable prefix for overrides.
const envPrefix = "REELCUT_"

// Config is the root configuration document.
type Config struct {
	History  HistoryConfig  `toml:"history"`
	Paste    PasteConfig    `toml:"paste"`
	Derive   DeriveConfig   `toml:"derive"`
	Plugin   PluginConfig   `toml:"plugin"`
	Autosave AutosaveConfig `toml:"autosave"`
	Logging  LoggingConfig  `toml:"logging"`
}

// HistoryConfig tunes the undo/redo stack.
type HistoryConfig struct {
	// MaxEntries caps the undo stack; oldest entries are dropped beyond it.
	MaxEntries int `toml:"max_entries"`

	// CoalesceWindowMs is the default merge window for coalescable
	// commands that do not set their own.
	CoalesceWindowMs int `toml:"coalesce_window_ms"`
}

// CoalesceWindow returns the window as a duration.
func (c HistoryConfig) CoalesceWindow() time.Duration {
	return time.Duration(c.CoalesceWindowMs) * time.Millisecond
}

// PasteConfig tunes clipboard paste planning.
type PasteConfig struct {
	// BlockDurationMs is the length given to pasted blocks whose source
	// had none.
	BlockDurationMs int `toml:"block_duration_ms"`
}

// DeriveConfig tunes transcript-derived effect generation.
type DeriveConfig struct {
	// PauseGapMs splits transcript clusters at silences longer than this.
	PauseGapMs int `toml:"pause_gap_ms"`

	// MinGraphemes drops clusters rendering shorter than this.
	MinGraphemes int `toml:"min_graphemes"`

	// MinBlockMs drops derived blocks shorter than this.
	MinBlockMs int `toml:"min_block_ms"`

	// MaxBlockMs truncates derived blocks longer than this.
	MaxBlockMs int `toml:"max_block_ms"`

	// ReadingMsPerGrapheme caps caption length at reading speed.
	ReadingMsPerGrapheme int `toml:"reading_ms_per_grapheme"`
}

// PluginConfig tunes Lua hook execution for plugin effects.
type PluginConfig struct {
	// Enabled turns window-change hooks on. Disabled hooks keep their
	// effects; synchronization just moves windows without re-deriving
	// parameters.
	Enabled bool `toml:"enabled"`

	// HookTimeoutMs aborts a hook running longer than this. Zero means no
	// limit.
	HookTimeoutMs int `toml:"hook_timeout_ms"`
}

// HookTimeout returns the hook limit as a duration.
func (c PluginConfig) HookTimeout() time.Duration {
	return time.Duration(c.HookTimeoutMs) * time.Millisecond
}

// AutosaveConfig tunes the persistence journal.
type AutosaveConfig struct {
	Enabled bool `toml:"enabled"`

	// IntervalMs is the minimum spacing between autosave snapshots.
	IntervalMs int `toml:"interval_ms"`

	// Path is the session database file. Empty selects an in-memory
	// database.
	Path string `toml:"path"`
}

// Interval returns the autosave spacing as a duration.
func (c AutosaveConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// LoggingConfig tunes the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is text or json.
	Format string `toml:"format"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{
			MaxEntries:       1000,
			CoalesceWindowMs: 500,
		},
		Paste: PasteConfig{
			BlockDurationMs: 2000,
		},
		Derive: DeriveConfig{
			PauseGapMs:           800,
			MinGraphemes:         3,
			MinBlockMs:           400,
			MaxBlockMs:           8000,
			ReadingMsPerGrapheme: 60,
		},
		Plugin: PluginConfig{
			Enabled:       true,
			HookTimeoutMs: 2000,
		},
		Autosave: AutosaveConfig{
			Enabled:    true,
			IntervalMs: 30000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load resolves configuration from defaults, the TOML file at path (skipped
// when path is empty or the file does not exist), and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults apply.
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := toml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays REELCUT_* variables. Unparseable numbers are ignored in
// favor of the current value.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	envInt(lookup, "HISTORY_MAX_ENTRIES", &c.History.MaxEntries)
	envInt(lookup, "HISTORY_COALESCE_WINDOW_MS", &c.History.CoalesceWindowMs)
	envInt(lookup, "PASTE_BLOCK_DURATION_MS", &c.Paste.BlockDurationMs)
	envInt(lookup, "DERIVE_PAUSE_GAP_MS", &c.Derive.PauseGapMs)
	envInt(lookup, "DERIVE_MIN_GRAPHEMES", &c.Derive.MinGraphemes)
	envInt(lookup, "DERIVE_MIN_BLOCK_MS", &c.Derive.MinBlockMs)
	envInt(lookup, "DERIVE_MAX_BLOCK_MS", &c.Derive.MaxBlockMs)
	envInt(lookup, "DERIVE_READING_MS", &c.Derive.ReadingMsPerGrapheme)
	envBool(lookup, "PLUGIN_ENABLED", &c.Plugin.Enabled)
	envInt(lookup, "PLUGIN_HOOK_TIMEOUT_MS", &c.Plugin.HookTimeoutMs)
	envBool(lookup, "AUTOSAVE_ENABLED", &c.Autosave.Enabled)
	envInt(lookup, "AUTOSAVE_INTERVAL_MS", &c.Autosave.IntervalMs)
	envString(lookup, "AUTOSAVE_PATH", &c.Autosave.Path)
	envString(lookup, "LOG_LEVEL", &c.Logging.Level)
	envString(lookup, "LOG_FORMAT", &c.Logging.Format)
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	if c.History.MaxEntries <= 0 {
		return fmt.Errorf("%w: history.max_entries %d", ErrOutOfRange, c.History.MaxEntries)
	}
	if c.History.CoalesceWindowMs < 0 {
		return fmt.Errorf("%w: history.coalesce_window_ms %d", ErrOutOfRange, c.History.CoalesceWindowMs)
	}
	if c.Paste.BlockDurationMs <= 0 {
		return fmt.Errorf("%w: paste.block_duration_ms %d", ErrOutOfRange, c.Paste.BlockDurationMs)
	}
	if c.Derive.PauseGapMs <= 0 {
		return fmt.Errorf("%w: derive.pause_gap_ms %d", ErrOutOfRange, c.Derive.PauseGapMs)
	}
	if c.Derive.MinBlockMs < 0 {
		return fmt.Errorf("%w: derive.min_block_ms %d", ErrOutOfRange, c.Derive.MinBlockMs)
	}
	if c.Derive.MaxBlockMs < 0 {
		return fmt.Errorf("%w: derive.max_block_ms %d", ErrOutOfRange, c.Derive.MaxBlockMs)
	}
	if c.Derive.MinBlockMs > 0 && c.Derive.MaxBlockMs > 0 && c.Derive.MinBlockMs > c.Derive.MaxBlockMs {
		return fmt.Errorf("%w: derive.min_block_ms %d exceeds max_block_ms %d",
			ErrOutOfRange, c.Derive.MinBlockMs, c.Derive.MaxBlockMs)
	}
	if c.Derive.ReadingMsPerGrapheme < 0 {
		return fmt.Errorf("%w: derive.reading_ms_per_grapheme %d", ErrOutOfRange, c.Derive.ReadingMsPerGrapheme)
	}
	if c.Plugin.HookTimeoutMs < 0 {
		return fmt.Errorf("%w: plugin.hook_timeout_ms %d", ErrOutOfRange, c.Plugin.HookTimeoutMs)
	}
	if c.Autosave.IntervalMs < 0 {
		return fmt.Errorf("%w: autosave.interval_ms %d", ErrOutOfRange, c.Autosave.IntervalMs)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrBadValue, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrBadValue, c.Logging.Format)
	}
	return nil
}

func envString(lookup func(string) (string, bool), key string, dst *string) {
	if v, ok := lookup(envPrefix + key); ok {
		*dst = v
	}
}

func envInt(lookup func(string) (string, bool), key string, dst *int) {
	if v, ok := lookup(envPrefix + key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(lookup func(string) (string, bool), key string, dst *bool) {
	if v, ok := lookup(envPrefix + key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
