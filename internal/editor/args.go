package editor

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/timeline"
)

// Args carries the named parameters of a by-name command invocation.
// Values arrive as loosely-typed data (JSON keymaps, script bridges), so
// the accessors coerce the usual encodings: any numeric type for numbers,
// []any of strings for string lists.
type Args map[string]any

// Has reports whether the key is present.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns a required string argument.
func (a Args) String(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrBadArgs, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrBadArgs, key, v)
	}
	return s, nil
}

// StringOr returns the string argument or def when absent.
func (a Args) StringOr(key, def string) string {
	if s, err := a.String(key); err == nil {
		return s
	}
	return def
}

// Millis returns a required millisecond timestamp or duration.
func (a Args) Millis(key string) (timeline.Millis, error) {
	v, ok := a[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrBadArgs, key)
	}
	m, ok := asMillis(v)
	if !ok {
		return 0, fmt.Errorf("%w: %q must be a number of milliseconds, got %T", ErrBadArgs, key, v)
	}
	return m, nil
}

// MillisOr returns the millisecond argument or def when absent.
func (a Args) MillisOr(key string, def timeline.Millis) timeline.Millis {
	if v, ok := a[key]; ok {
		if m, ok := asMillis(v); ok {
			return m
		}
	}
	return def
}

// MillisPtr returns the millisecond argument as a pointer, or nil when
// absent. Present-but-mistyped values are an error.
func (a Args) MillisPtr(key string) (*timeline.Millis, error) {
	if !a.Has(key) {
		return nil, nil
	}
	m, err := a.Millis(key)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Int returns a required integer argument.
func (a Args) Int(key string) (int, error) {
	v, ok := a[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrBadArgs, key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %q must be an integer, got %T", ErrBadArgs, key, v)
	}
}

// IntOr returns the integer argument or def when absent or mistyped.
func (a Args) IntOr(key string, def int) int {
	if n, err := a.Int(key); err == nil {
		return n
	}
	return def
}

// Float returns a required float argument.
func (a Args) Float(key string) (float64, error) {
	v, ok := a[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrBadArgs, key)
	}
	f, ok := asFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %q must be a number, got %T", ErrBadArgs, key, v)
	}
	return f, nil
}

// FloatOr returns the float argument or def when absent or mistyped.
func (a Args) FloatOr(key string, def float64) float64 {
	if v, ok := a[key]; ok {
		if f, ok := asFloat(v); ok {
			return f
		}
	}
	return def
}

// BoolOr returns the bool argument or def when absent or mistyped.
func (a Args) BoolOr(key string, def bool) bool {
	if v, ok := a[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// BoolPtr returns the bool argument as a pointer, or nil when absent.
func (a Args) BoolPtr(key string) (*bool, error) {
	v, ok := a[key]
	if !ok {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a bool, got %T", ErrBadArgs, key, v)
	}
	return &b, nil
}

// Strings returns a required list-of-strings argument.
func (a Args) Strings(key string) ([]string, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrBadArgs, key)
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q must contain strings, got %T", ErrBadArgs, key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q must be a string list, got %T", ErrBadArgs, key, v)
	}
}

// StringsOr returns the list argument or nil when absent.
func (a Args) StringsOr(key string) []string {
	list, err := a.Strings(key)
	if err != nil {
		return nil
	}
	return list
}

// Map returns a required nested-object argument.
func (a Args) Map(key string) (map[string]any, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrBadArgs, key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be an object, got %T", ErrBadArgs, key, v)
	}
	return m, nil
}

// Clone returns a shallow copy; injected defaults must not leak into the
// caller's map.
func (a Args) Clone() Args {
	out := make(Args, len(a)+2)
	for k, v := range a {
		out[k] = v
	}
	return out
}

func asMillis(v any) (timeline.Millis, bool) {
	switch n := v.(type) {
	case timeline.Millis:
		return n, true
	case int:
		return timeline.Millis(n), true
	case int64:
		return timeline.Millis(n), true
	case float64:
		return timeline.Millis(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
