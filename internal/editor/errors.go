package editor

import "errors"

var (
	// ErrUnknownCommand indicates a name with no registered builder.
	ErrUnknownCommand = errors.New("editor: unknown command")

	// ErrBadArgs indicates missing or mistyped command arguments.
	ErrBadArgs = errors.New("editor: bad arguments")

	// ErrUnknownShortcut indicates a chord with no binding.
	ErrUnknownShortcut = errors.New("editor: unknown shortcut")

	// ErrNoStore indicates a persistence call on a session without a
	// configured store.
	ErrNoStore = errors.New("editor: no store configured")
)
