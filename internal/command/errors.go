package command

import "errors"

// Error taxonomy for command execution. All four are returned to callers as
// structured failure results; none escapes the executor as a panic.
var (
	// ErrGuardRejected means CanExecute returned false. A normal negative
	// outcome, not a fault.
	ErrGuardRejected = errors.New("command: guard rejected")

	// ErrNotFound means a referenced clip, effect, track or recording does
	// not exist.
	ErrNotFound = errors.New("command: not found")

	// ErrInvalidState means arguments conflict with current state: trim
	// beyond clip bounds, empty windows, playback rate out of range.
	ErrInvalidState = errors.New("command: invalid state")

	// ErrMutationFailed means an invariant check failed during the mutation
	// body; the transaction was rolled back.
	ErrMutationFailed = errors.New("command: mutation failed")
)

// Classify wraps err into the taxonomy. Errors already carrying a taxonomy
// sentinel pass through; anything else is a mutation failure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrGuardRejected) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrMutationFailed) {
		return err
	}
	return errors.Join(ErrMutationFailed, err)
}
