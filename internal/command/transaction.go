package command

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/clipboard"
	"github.com/reelcut/reelcut/internal/patch"
	"github.com/reelcut/reelcut/internal/timeline"
)

// Env carries the collaborators a transaction may use.
type Env struct {
	// Clipboard is the session clipboard, consumed by copy/cut/paste.
	Clipboard *clipboard.Clipboard

	// Sync propagates structural clip changes into dependent effects.
	// Nil disables synchronization (tests only).
	Sync SyncFunc
}

// Txn is the committed product of a successful transaction.
type Txn struct {
	// Next is the new committed snapshot.
	Next *timeline.Project

	// Forward replays the transaction; Inverse reverts it.
	Forward patch.Set
	Inverse patch.Set
}

// Run executes one command transactionally against the committed snapshot.
//
// The sequence is fixed: guard, mutation against a recording working view,
// deferred-change drain through env.Sync, patch finalization. On any
// failure the working view is discarded whole; base is never touched. A
// successful command that recorded no writes yields a nil Txn and a no-op
// result.
func Run(base *timeline.Project, cmd Command, env Env) (*Txn, Result, error) {
	if !cmd.CanExecute(base) {
		err := fmt.Errorf("%w: %s", ErrGuardRejected, cmd.Name())
		return nil, Rejected(err, cmd.Description()+" is not possible here"), err
	}

	ctx := NewContext(base, env.Clipboard)

	res, err := cmd.Mutate(ctx)
	if err != nil {
		err = Classify(err)
		return nil, Error(err), err
	}

	// Drain the deferred-change queue through the synchronization
	// orchestrator. Its writes are recorded like any other, so they are
	// part of this transaction's patch sets.
	for {
		ch, ok := ctx.nextChange()
		if !ok {
			break
		}
		if env.Sync == nil {
			continue
		}
		if err := env.Sync(ctx, ch); err != nil {
			err = Classify(err)
			return nil, Error(err), err
		}
	}

	forward := ctx.Ops()
	if len(forward) == 0 {
		if res.Status == StatusOK && res.Message == "" {
			res = res.WithMessage("no changes")
		}
		return nil, res, nil
	}

	return &Txn{
		Next:    ctx.commit(),
		Forward: forward,
		Inverse: forward.Invert(),
	}, res, nil
}
