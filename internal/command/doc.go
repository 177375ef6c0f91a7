// Package command implements the reversible unit of work at the heart of
// the editing core.
//
// A Command is a named mutation over the project. It never hand-rolls
// inverse logic: Run gives the mutation a recording Context, a
// copy-on-write working view of the committed snapshot that logs every
// write as a patch op, and derives the forward and inverse patch sets from
// the log when the mutation finishes. A command that touches a clip, three
// effects, the selection and the playhead gets all of it captured in one
// atomic, invertible transaction.
//
// Structural clip mutations do not update dependent effects themselves.
// They call Context.DeferChange with a ClipChange descriptor; Run drains
// the queue through the effect synchronization function before the patch
// sets are finalized, so synchronization writes land in the same history
// entry as the command's own writes.
//
// Failure cannot leave partial state behind. The committed snapshot is
// never written; a failed mutation simply discards the working view.
package command
