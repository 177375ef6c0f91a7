// Package patch defines the reversible state patches recorded by command
// transactions and applied by undo/redo.
//
// An Op captures one write: the path of the touched entity, the kind of
// write, and the value on each side. A Set is one direction of a state
// transition; inverting a Set reverses the op order and inverts each op, so
// applying a forward Set and then its inverse always returns to the
// starting snapshot. Apply never mutates its input project: it produces a
// new snapshot, cloning only the containers and entities an op touches.
package patch

// OpKind is the kind of write an Op records.
type OpKind uint8

// Op kinds.
const (
	OpSet OpKind = iota
	OpInsert
	OpRemove
)

// String returns the name of the op kind.
func (k OpKind) String() string {
	switch k {
	case OpSet:
		return "set"
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Op records a single write to the project.
//
// Before is the value replaced (nil for inserts) and After the value
// written (nil for removes). Values are never mutated after recording;
// entity values are pointers into committed snapshots, which are immutable
// by discipline.
type Op struct {
	Path   string
	Kind   OpKind
	Before any
	After  any
}

// NewSet records an in-place replacement.
func NewSet(path string, before, after any) Op {
	return Op{Path: path, Kind: OpSet, Before: before, After: after}
}

// NewInsert records the creation of an entity.
func NewInsert(path string, value any) Op {
	return Op{Path: path, Kind: OpInsert, After: value}
}

// NewRemove records the removal of an entity.
func NewRemove(path string, value any) Op {
	return Op{Path: path, Kind: OpRemove, Before: value}
}

// Invert returns the op that undoes this one.
func (op Op) Invert() Op {
	inv := Op{Path: op.Path, Before: op.After, After: op.Before}
	switch op.Kind {
	case OpInsert:
		inv.Kind = OpRemove
	case OpRemove:
		inv.Kind = OpInsert
	default:
		inv.Kind = OpSet
	}
	return inv
}

// Set is an ordered sequence of ops describing one direction of a state
// transition.
type Set []Op

// Invert returns the inverse transition: each op inverted, in reverse
// order.
func (s Set) Invert() Set {
	inv := make(Set, len(s))
	for i, op := range s {
		inv[len(s)-1-i] = op.Invert()
	}
	return inv
}

// Concat joins sets in order into one.
func Concat(sets ...Set) Set {
	var n int
	for _, s := range sets {
		n += len(s)
	}
	out := make(Set, 0, n)
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}
