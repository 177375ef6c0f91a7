package clipboard

import "errors"

// Errors returned by paste planning.
var (
	ErrEmpty            = errors.New("clipboard: nothing to paste")
	ErrNoClipAtPlayhead = errors.New("clipboard: no clip occupies the playhead")
	ErrNoRoom           = errors.New("clipboard: no room for the block inside the clip")
	ErrTrackKind        = errors.New("clipboard: clip cannot be pasted onto a track of a different kind")
)
