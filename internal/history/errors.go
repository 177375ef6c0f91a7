package history

import "errors"

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("history: nothing to undo")
	ErrNothingToRedo = errors.New("history: nothing to redo")
	ErrGroupOpen     = errors.New("history: command group still open")
)
