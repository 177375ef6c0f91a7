// Package plugin runs the Lua hook scripts carried by plugin effects.
//
// A plugin effect may embed a script defining an on_window_changed
// function; the synchronization orchestrator calls it whenever the
// effect's window is moved or truncated so the script can re-derive its
// parameters. Each invocation runs in a fresh sandboxed Lua state: scripts
// get the base, table, string and math libraries only (no io, os, debug or
// package), share nothing between invocations, and are killed when they
// outrun the host's timeout.
package plugin

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/reelcut/reelcut/internal/timeline"
)

// HookWindowChanged is the global function a hook script defines to react
// to window moves. Signature: on_window_changed(params, start_ms, end_ms)
// returning the new params table (or nil to keep them).
const HookWindowChanged = "on_window_changed"

// Default hook state limits.
const (
	DefaultHookTimeout   = 2 * time.Second
	DefaultCallStackSize = 64
	DefaultRegistrySize  = 1024
)

// Host executes plugin hook scripts.
type Host struct {
	timeout       time.Duration
	callStackSize int
	registrySize  int
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithTimeout bounds each hook invocation; a hook that outruns it fails
// with ErrHookTimeout. Zero or negative disables the limit.
func WithTimeout(d time.Duration) HostOption {
	return func(h *Host) { h.timeout = d }
}

// WithStateLimits sizes the Lua call stack and registry of each hook state.
// Non-positive values keep the defaults.
func WithStateLimits(callStack, registry int) HostOption {
	return func(h *Host) {
		if callStack > 0 {
			h.callStackSize = callStack
		}
		if registry > 0 {
			h.registrySize = registry
		}
	}
}

// NewHost creates a hook host.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		timeout:       DefaultHookTimeout,
		callStackSize: DefaultCallStackSize,
		registrySize:  DefaultRegistrySize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WindowChanged runs the effect's on_window_changed hook against the new
// window and returns the payload with re-derived params. A payload without
// a script, or a script without the hook function, passes through
// unchanged. Script errors are returned; the caller decides whether they
// abort the enclosing transaction.
func (h *Host) WindowChanged(data timeline.PluginData, start, end timeline.Millis) (timeline.PluginData, error) {
	if data.Hooks == "" {
		return data, nil
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: h.callStackSize,
		RegistrySize:  h.registrySize,
	})
	defer L.Close()
	openSafeLibraries(L)

	var ctx context.Context
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		L.SetContext(ctx)
	}

	if err := doStringRecovered(L, data.Hooks); err != nil {
		return data, fmt.Errorf("plugin %s: load hooks: %w", data.PluginID, timeoutErr(ctx, err))
	}

	fn := L.GetGlobal(HookWindowChanged)
	if fn == lua.LNil {
		return data, nil
	}
	if fn.Type() != lua.LTFunction {
		return data, fmt.Errorf("plugin %s: %s is not a function (got %s)",
			data.PluginID, HookWindowChanged, fn.Type())
	}

	L.Push(fn)
	L.Push(ToLua(L, data.Params))
	L.Push(lua.LNumber(start))
	L.Push(lua.LNumber(end))

	if err := pcallRecovered(L, 3, 1); err != nil {
		return data, fmt.Errorf("plugin %s: %s: %w", data.PluginID, HookWindowChanged, timeoutErr(ctx, err))
	}

	ret := L.Get(-1)
	L.Pop(1)

	out := data
	switch ret.Type() {
	case lua.LTNil:
		// Keep current params.
	case lua.LTTable:
		params, ok := FromLua(ret).(map[string]any)
		if !ok {
			return data, fmt.Errorf("%w: plugin %s returned an array, want a table",
				ErrBadHookReturn, data.PluginID)
		}
		out.Params = params
	default:
		return data, fmt.Errorf("%w: plugin %s returned %s, want table or nil",
			ErrBadHookReturn, data.PluginID, ret.Type())
	}
	return out, nil
}

// openSafeLibraries opens only safe Lua standard libraries.
// io, os, debug and package stay closed; scripts must not reach the host.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// doStringRecovered executes code, converting Lua panics to errors.
func doStringRecovered(L *lua.LState, code string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return L.DoString(code)
}

// pcallRecovered calls the function already on the stack, converting Lua
// panics to errors.
func pcallRecovered(L *lua.LState, nargs, nret int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return L.PCall(nargs, nret, nil)
}

// timeoutErr maps an error raised under an expired context to the timeout
// sentinel; other errors pass through.
func timeoutErr(ctx context.Context, err error) error {
	if ctx != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrHookTimeout, ctx.Err())
	}
	return err
}
