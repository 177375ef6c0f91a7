package editor

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Pseudo-commands resolved by the session rather than the registry.
const (
	CmdUndo = "history.undo"
	CmdRedo = "history.redo"
)

// Binding maps a shortcut chord to a command invocation.
type Binding struct {
	Command string         `json:"command"`
	Args    map[string]any `json:"args,omitempty"`
}

// Keymap resolves shortcut chords like "ctrl+shift+z" to bindings.
// Chords are normalized: case-insensitive, modifiers in ctrl-alt-shift-meta
// order, key last.
type Keymap struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

// NewKeymap creates an empty keymap.
func NewKeymap() *Keymap {
	return &Keymap{bindings: make(map[string]Binding)}
}

// DefaultKeymap returns the stock bindings.
func DefaultKeymap() *Keymap {
	k := NewKeymap()
	k.Bind("ctrl+z", Binding{Command: CmdUndo})
	k.Bind("ctrl+shift+z", Binding{Command: CmdRedo})
	k.Bind("ctrl+y", Binding{Command: CmdRedo})
	k.Bind("ctrl+c", Binding{Command: "clipboard.copyClip"})
	k.Bind("ctrl+x", Binding{Command: "clipboard.cutClip"})
	k.Bind("ctrl+v", Binding{Command: "clipboard.pasteClip"})
	k.Bind("delete", Binding{Command: "clip.delete"})
	k.Bind("backspace", Binding{Command: "clip.delete", Args: map[string]any{"ripple": true}})
	k.Bind("s", Binding{Command: "clip.split"})
	return k
}

// Bind sets the binding for a chord, replacing any existing one.
func (k *Keymap) Bind(chord string, b Binding) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.bindings[NormalizeChord(chord)] = b
}

// Unbind removes the binding for a chord.
func (k *Keymap) Unbind(chord string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.bindings, NormalizeChord(chord))
}

// Lookup resolves a chord to its binding.
func (k *Keymap) Lookup(chord string) (Binding, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	b, ok := k.bindings[NormalizeChord(chord)]
	return b, ok
}

// Bindings returns a copy of the chord table.
func (k *Keymap) Bindings() map[string]Binding {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make(map[string]Binding, len(k.bindings))
	for chord, b := range k.bindings {
		out[chord] = b
	}
	return out
}

// LoadJSON merges bindings from a JSON document into the keymap. The
// document is either an object mapping chords to a command name or a
// {command, args} object, or an array of {keys, command, args} entries:
//
//	{
//	  "ctrl+d": "clip.delete",
//	  "ctrl+t": {"command": "clip.trim", "args": {"edge": "end", "amount": 250}}
//	}
//
//	[
//	  {"keys": "ctrl+d", "command": "clip.delete"}
//	]
func (k *Keymap) LoadJSON(data []byte) error {
	if firstToken(data) == '[' {
		return k.loadJSONArray(data)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("editor: parse keymap: %w", err)
	}

	for chord, entry := range raw {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			k.Bind(chord, Binding{Command: name})
			continue
		}
		var b Binding
		if err := json.Unmarshal(entry, &b); err != nil {
			return fmt.Errorf("editor: keymap entry %q: %w", chord, err)
		}
		if b.Command == "" {
			return fmt.Errorf("editor: keymap entry %q: missing command", chord)
		}
		k.Bind(chord, b)
	}
	return nil
}

func (k *Keymap) loadJSONArray(data []byte) error {
	var rows []struct {
		Keys string `json:"keys"`
		Binding
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("editor: parse keymap: %w", err)
	}

	for i, row := range rows {
		if row.Keys == "" {
			return fmt.Errorf("editor: keymap entry %d: missing keys", i)
		}
		if row.Command == "" {
			return fmt.Errorf("editor: keymap entry %q: missing command", row.Keys)
		}
		k.Bind(row.Keys, row.Binding)
	}
	return nil
}

// firstToken returns the first non-whitespace byte, or 0.
func firstToken(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

// LoadFile merges bindings from a JSON file. A missing file is not an
// error; the keymap is left unchanged.
func (k *Keymap) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("editor: read keymap %s: %w", path, err)
	}
	return k.LoadJSON(data)
}

// NormalizeChord canonicalizes a chord string: lowercase, whitespace
// trimmed, modifiers in fixed order before the key.
func NormalizeChord(chord string) string {
	parts := strings.Split(chord, "+")

	var mods [4]bool // ctrl, alt, shift, meta
	var key string
	for _, part := range parts {
		switch p := strings.ToLower(strings.TrimSpace(part)); p {
		case "ctrl", "control":
			mods[0] = true
		case "alt", "option":
			mods[1] = true
		case "shift":
			mods[2] = true
		case "meta", "cmd", "super":
			mods[3] = true
		default:
			key = p
		}
	}

	var out []string
	for i, name := range [4]string{"ctrl", "alt", "shift", "meta"} {
		if mods[i] {
			out = append(out, name)
		}
	}
	if key != "" {
		out = append(out, key)
	}
	return strings.Join(out, "+")
}
