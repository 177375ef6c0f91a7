package patch

import "errors"

// Errors returned by Apply.
var (
	ErrUnknownPath = errors.New("patch: unknown path")
	ErrTargetGone  = errors.New("patch: target entity not found")
	ErrBadValue    = errors.New("patch: op value has wrong type")
)
