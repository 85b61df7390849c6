package postsolve

import "errors"

// ErrArenaUnderflow indicates a pop read past the boundary of what was
// written — a mismatch between the tag sequence and the arena, i.e. a
// caller bug. Fatal: there is no recovery.
var ErrArenaUnderflow = errors.New("postsolve: arena underflow")

// ErrTypeMismatch indicates a pop was attempted with a type whose width or
// shape (scalar vs. sequence) does not match what was pushed.
var ErrTypeMismatch = errors.New("postsolve: arena type mismatch")

// ErrPreconditionViolation indicates a non-finite fix value, a size mismatch
// between a solution and the index maps, an invalid compression map, or an
// out-of-range UndoUntil position. Pivot coefficients are not checked: a
// zero pivot is divided by as stored. Reported to the caller; there is no recovery, and any already-reconstructed
// entries in the solution/basis are left as-is.
var ErrPreconditionViolation = errors.New("postsolve: precondition violation")

// ErrIntegerSplitFailure is returned by DuplicateColumn's undo when no
// feasible integer split could be found within feastol. The best-effort
// (minimum violation) split is still written to the solution; this is a
// non-fatal warning, not an aborted undo.
var ErrIntegerSplitFailure = errors.New("postsolve: duplicate column integer split failed to reach feasibility")
