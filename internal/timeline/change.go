package timeline

// ChangeKind enumerates the structural clip mutations that effect
// synchronization reacts to.
type ChangeKind uint8

// Change kinds.
const (
	ChangeAdd ChangeKind = iota
	ChangeDelete
	ChangeTrimStart
	ChangeTrimEnd
	ChangeSplit
	ChangeUpdate
	ChangeReorder
	ChangeRateChange
)

// String returns the name of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeDelete:
		return "delete"
	case ChangeTrimStart:
		return "trim-start"
	case ChangeTrimEnd:
		return "trim-end"
	case ChangeSplit:
		return "split"
	case ChangeUpdate:
		return "update"
	case ChangeReorder:
		return "reorder"
	case ChangeRateChange:
		return "rate-change"
	default:
		return "unknown"
	}
}

// ClipChange describes one structural clip mutation. A command produces it
// during its mutation and the synchronization orchestrator consumes it once,
// within the same transaction.
//
// Before and After are the clip's geometry on either side of the change;
// Delete has no After, Add has no Before. For Split, After is the leading
// half and NewClipIDs carries both halves' IDs in timeline order. For
// Reorder, PrevStarts records every moved clip's pre-reflow start time so
// effect ownership can be decided against pre-change geometry.
type ClipChange struct {
	Kind        ChangeKind
	ClipID      string
	RecordingID string
	TrackID     string

	Before *ClipState
	After  *ClipState

	// TimelineDelta is the signed length change of the clip (Update,
	// RateChange, trims) or the start shift for moves.
	TimelineDelta Millis

	// NewClipIDs holds the two halves of a split, leading half first.
	NewClipIDs [2]string

	// PrevStarts maps clip ID to pre-reorder start time for every clip on
	// the reordered track.
	PrevStarts map[string]Millis
}
