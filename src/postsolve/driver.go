package postsolve

import (
	"errors"
	"fmt"
)

// growSlice extends vec to length size, preserving its existing elements
// at the front and zero-filling the rest, reusing the backing array when
// its capacity already covers size.
func growSlice[T any](vec []T, size int) []T {
	if len(vec) >= size {
		return vec[:size]
	}
	if cap(vec) >= size {
		out := vec[:size]
		var zero T
		for i := len(vec); i < size; i++ {
			out[i] = zero
		}
		return out
	}
	out := make([]T, size)
	copy(out, vec)
	return out
}

// expandIndexed grows vec from reduced space to original space (size
// entries) and, in place, moves each reduced-space value at i to its
// original-space position orig[i]. This relies on orig being strictly
// increasing with orig[i] >= i: processing i from the highest reduced
// index down to 0 guarantees every source slot is read before it could
// ever be overwritten as someone else's target.
func expandIndexed[T any](vec []T, orig []int, size int) []T {
	n := len(vec)
	vec = growSlice(vec, size)
	var zero T
	for i := n - 1; i >= 0; i-- {
		val := vec[i]
		if orig[i] != i {
			vec[i] = zero
		}
		vec[orig[i]] = val
	}
	return vec
}

// Undo replays the entire reduction log in reverse, expanding sol (and
// basis, if sol carries duals) from the current reduced problem's shape
// to the original problem's shape. basis may be nil when sol has no
// duals (primal-only postsolve). feastol is only consulted by
// DuplicateColumn's undo (its column split and basis status choice).
func (s *Stack) Undo(sol *Solution, basis *Basis, feastol float64) error {
	return s.UndoUntil(sol, basis, 0, feastol)
}

// UndoUntil replays the log in reverse down to (and including) reduction
// index stopAt, leaving everything before it un-replayed. stopAt == 0 is
// equivalent to Undo. Calling UndoUntil(j) on the same (sol, basis) after
// an earlier UndoUntil(k) with j <= k continues the replay from where it
// left off, rather than starting over.
func (s *Stack) UndoUntil(sol *Solution, basis *Basis, stopAt int, feastol float64) error {
	if stopAt < 0 || stopAt > len(s.tags) {
		return fmt.Errorf("postsolve: %w: stopAt %d out of range [0,%d]", ErrPreconditionViolation, stopAt, len(s.tags))
	}

	if s.replayPos == -1 {
		reducedNumCol := s.maps.NumCol()
		reducedNumRow := s.maps.NumRow()
		if len(sol.ColValue) != reducedNumCol || len(sol.RowValue) != reducedNumRow {
			return fmt.Errorf("postsolve: %w: solution size (%d cols, %d rows) does not match reduced problem size (%d cols, %d rows)",
				ErrPreconditionViolation, len(sol.ColValue), len(sol.RowValue), reducedNumCol, reducedNumRow)
		}

		dualMode := sol.HasDuals()
		if dualMode && basis == nil {
			return fmt.Errorf("postsolve: %w: a solution with duals requires a basis to expand alongside it", ErrPreconditionViolation)
		}

		origNumCol := s.maps.OrigNumCol()
		origNumRow := s.maps.OrigNumRow()

		sol.ColValue = expandIndexed(sol.ColValue, s.maps.origCol, origNumCol)
		sol.RowValue = expandIndexed(sol.RowValue, s.maps.origRow, origNumRow)
		if dualMode {
			sol.ColDual = expandIndexed(sol.ColDual, s.maps.origCol, origNumCol)
			sol.RowDual = expandIndexed(sol.RowDual, s.maps.origRow, origNumRow)
			basis.ColStatus = expandIndexed(basis.ColStatus, s.maps.origCol, origNumCol)
			basis.RowStatus = expandIndexed(basis.RowStatus, s.maps.origRow, origNumRow)
		}

		s.arena.ResetCursor()
		s.replayPos = len(s.tags)
	}

	if stopAt > s.replayPos {
		return fmt.Errorf("postsolve: %w: undo_until(%d) requested past current replay position %d",
			ErrPreconditionViolation, stopAt, s.replayPos)
	}

	var splitErr error
	for i := s.replayPos - 1; i >= stopAt; i-- {
		if err := s.undoOne(s.tags[i], sol, basis, feastol); err != nil {
			if errors.Is(err, ErrIntegerSplitFailure) {
				if splitErr == nil {
					splitErr = err
				}
				continue
			}
			return err
		}
	}
	s.replayPos = stopAt
	return splitErr
}

// undoOne pops exactly the segments one emission call pushed for tag, in
// the reverse order they were pushed, and invokes that variant's undo.
func (s *Stack) undoOne(tag reductionType, sol *Solution, basis *Basis, feastol float64) error {
	switch tag {
	case tagFreeColSubstitution:
		colVals, err := PopSeq[IndexValue](s.arena)
		if err != nil {
			return err
		}
		rowVals, err := PopSeq[IndexValue](s.arena)
		if err != nil {
			return err
		}
		var rec freeColSubstitutionRecord
		if err := Pop(s.arena, &rec); err != nil {
			return err
		}
		rec.undo(rowVals, colVals, sol, basis)

	case tagDoubletonEquation:
		colVals, err := PopSeq[IndexValue](s.arena)
		if err != nil {
			return err
		}
		var rec doubletonEquationRecord
		if err := Pop(s.arena, &rec); err != nil {
			return err
		}
		rec.undo(colVals, sol, basis)

	case tagEqualityRowAddition:
		var rec equalityRowAdditionRecord
		if err := Pop(s.arena, &rec); err != nil {
			return err
		}
		rec.undo(sol, basis)

	case tagSingletonRow:
		var rec singletonRowRecord
		if err := Pop(s.arena, &rec); err != nil {
			return err
		}
		rec.undo(sol, basis)

	case tagFixedCol:
		colVals, err := PopSeq[IndexValue](s.arena)
		if err != nil {
			return err
		}
		var rec fixedColRecord
		if err := Pop(s.arena, &rec); err != nil {
			return err
		}
		rec.undo(colVals, sol, basis)

	case tagRedundantRow:
		var rec redundantRowRecord
		if err := Pop(s.arena, &rec); err != nil {
			return err
		}
		rec.undo(sol, basis)

	case tagForcingRow:
		rowVals, err := PopSeq[IndexValue](s.arena)
		if err != nil {
			return err
		}
		var rec forcingRowRecord
		if err := Pop(s.arena, &rec); err != nil {
			return err
		}
		rec.undo(rowVals, sol, basis)

	case tagDuplicateRow:
		var rec duplicateRowRecord
		if err := Pop(s.arena, &rec); err != nil {
			return err
		}
		rec.undo(sol, basis)

	case tagDuplicateColumn:
		var rec duplicateColumnRecord
		if err := Pop(s.arena, &rec); err != nil {
			return err
		}
		return rec.undo(sol, basis, feastol)

	default:
		return fmt.Errorf("postsolve: %w: unknown reduction tag %d", ErrTypeMismatch, tag)
	}
	return nil
}
