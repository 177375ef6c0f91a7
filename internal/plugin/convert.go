package plugin

import (
	lua "github.com/yuin/gopher-lua"
)

// maxDepth bounds table conversion. Lua tables can be cyclic; recursion
// stops here and deeper values become nil.
const maxDepth = 8

// ToLua converts a Go value to a Lua value. Maps become tables keyed by
// string, slices become arrays. Unsupported types convert to nil.
func ToLua(L *lua.LState, v any) lua.LValue {
	return toLua(L, v, 0)
}

func toLua(L *lua.LState, v any, depth int) lua.LValue {
	if depth > maxDepth {
		return lua.LNil
	}
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []any:
		tbl := L.NewTable()
		for _, item := range x {
			tbl.Append(toLua(L, item, depth+1))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for k, item := range x {
			tbl.RawSetString(k, toLua(L, item, depth+1))
		}
		return tbl
	default:
		return lua.LNil
	}
}

// FromLua converts a Lua value to a Go value. Tables with only sequential
// integer keys become []any; all other tables become map[string]any with
// keys stringified.
func FromLua(v lua.LValue) any {
	return fromLua(v, 0)
}

func fromLua(v lua.LValue, depth int) any {
	if depth > maxDepth {
		return nil
	}
	switch x := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	case *lua.LTable:
		return fromTable(x, depth)
	default:
		return nil
	}
}

func fromTable(tbl *lua.LTable, depth int) any {
	n := tbl.MaxN()
	if n > 0 {
		arrayOnly := true
		count := 0
		tbl.ForEach(func(lua.LValue, lua.LValue) { count++ })
		if count != n {
			arrayOnly = false
		}
		if arrayOnly {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(tbl.RawGetInt(i), depth+1))
			}
			return out
		}
	}

	out := make(map[string]any)
	tbl.ForEach(func(k, v lua.LValue) {
		out[k.String()] = fromLua(v, depth+1)
	})
	return out
}
