package postsolve

import (
	"fmt"
	"math"
)

// reductionType tags which ReductionRecord variant a pushed record is, in
// the order reductions were emitted. Dispatch on undo is a switch over
// this tag (no runtime polymorphism — the variant set is closed).
type reductionType uint8

const (
	tagFreeColSubstitution reductionType = iota
	tagDoubletonEquation
	tagEqualityRowAddition
	tagSingletonRow
	tagFixedCol
	tagRedundantRow
	tagForcingRow
	tagDuplicateRow
	tagDuplicateColumn
)

// Fixed-size records, one per ReductionRecord variant (§3). Every field is
// a scalar; variable-length neighbor arrays are pushed to the arena
// separately, immediately after the record, per the ordering table in
// SPEC_FULL.md §3.
type freeColSubstitutionRecord struct {
	Rhs     float64
	ColCost float64
	Row     int32
	Col     int32
	RowType RowType
}

type doubletonEquationRecord struct {
	Coef           float64
	CoefSubst      float64
	Rhs            float64
	SubstLower     float64
	SubstUpper     float64
	SubstCost      float64
	Row            int32
	ColSubst       int32
	Col            int32
	LowerTightened bool
	UpperTightened bool
}

type equalityRowAdditionRecord struct {
	Row        int32
	AddedEqRow int32
	EqRowScale float64
}

type singletonRowRecord struct {
	Coef              float64
	Row               int32
	Col               int32
	ColLowerTightened bool
	ColUpperTightened bool
}

type fixedColRecord struct {
	FixValue float64
	ColCost  float64
	Col      int32
	FixType  BasisStatus
}

type redundantRowRecord struct {
	Row int32
}

type forcingRowRecord struct {
	Side    float64
	Row     int32
	RowType RowType
}

type duplicateRowRecord struct {
	DuplicateRowScale float64
	DuplicateRow      int32
	Row               int32
	RowLowerTightened bool
	RowUpperTightened bool
}

type duplicateColumnRecord struct {
	ColScale             float64
	ColLower             float64
	ColUpper             float64
	DuplicateColLower    float64
	DuplicateColUpper    float64
	Col                  int32
	DuplicateCol         int32
	ColIntegral          bool
	DuplicateColIntegral bool
}

// remapViaCol remaps the index of each pair through the column map,
// leaving the value untouched — used for neighbor slices whose entries
// are indexed by column (e.g. a row's coefficient vector).
func remapViaCol(m *IndexMaps, vals []IndexValue) []IndexValue {
	out := make([]IndexValue, len(vals))
	for i, v := range vals {
		out[i] = IndexValue{Index: int32(m.OrigCol(int(v.Index))), Value: v.Value}
	}
	return out
}

// remapViaRow remaps the index of each pair through the row map — used
// for neighbor slices whose entries are indexed by row (e.g. a column's
// coefficient vector).
func remapViaRow(m *IndexMaps, vals []IndexValue) []IndexValue {
	out := make([]IndexValue, len(vals))
	for i, v := range vals {
		out[i] = IndexValue{Index: int32(m.OrigRow(int(v.Index))), Value: v.Value}
	}
	return out
}

// Stack is the PostsolveDriver: the emission entry points used by the
// presolver, plus Undo/UndoUntil (driver.go). It owns the arena, the tag
// sequence, and the index maps for a single presolver instance. Emission
// and Undo must never be called concurrently on the same Stack.
type Stack struct {
	arena *ScratchArena
	tags  []reductionType
	maps  *IndexMaps

	// replayPos is the number of tags, counted from the start, not yet
	// consumed by Undo/UndoUntil. -1 means replay has not started: the
	// next Undo/UndoUntil call must validate sizes, expand the solution
	// and basis, and reset the arena cursor. Once started, further calls
	// resume from replayPos without re-expanding or resetting, which is
	// what makes undo_until(k) followed by undo_until(j<=k) behave as a
	// continuation rather than a second independent replay.
	replayPos int
}

// NewStack returns an empty postsolve stack.
func NewStack() *Stack {
	return &Stack{arena: NewScratchArena(), maps: NewIndexMaps(), replayPos: -1}
}

// InitializeIndexMaps sets both index maps to the identity of the given
// original sizes. Must be called before any emission entry point.
func (s *Stack) InitializeIndexMaps(numRow, numCol int) {
	s.maps.Initialize(numRow, numCol)
}

// CompressIndexMaps shrinks the index maps as the presolver removes rows
// and columns from the LP.
func (s *Stack) CompressIndexMaps(newRowIndex, newColIndex []int) error {
	return s.maps.Compress(newRowIndex, newColIndex)
}

// OrigRow returns the original-space index of current reduced row i.
func (s *Stack) OrigRow(i int) int { return s.maps.OrigRow(i) }

// OrigCol returns the original-space index of current reduced column i.
func (s *Stack) OrigCol(i int) int { return s.maps.OrigCol(i) }

// NumReductions returns how many reductions have been emitted.
func (s *Stack) NumReductions() int { return len(s.tags) }

// Clear discards the entire log and arena, releasing the stack's content
// (the mechanism for cancellation, per SPEC_FULL.md §5).
func (s *Stack) Clear() {
	s.arena.Clear()
	s.tags = s.tags[:0]
	s.replayPos = -1
}

// FreeColSubstitution records the elimination of a free column by
// expressing it from one row equation. rowVec is the row's coefficients
// on the other columns (indices in reduced column space); colVec is the
// column's coefficients on the other rows (indices in reduced row space).
func (s *Stack) FreeColSubstitution(row, col int, rhs, colCost float64, rowType RowType, rowVec, colVec []IndexValue) {
	remRow := remapViaCol(s.maps, rowVec)
	remCol := remapViaRow(s.maps, colVec)
	rec := freeColSubstitutionRecord{
		Rhs: rhs, ColCost: colCost,
		Row: int32(s.maps.OrigRow(row)), Col: int32(s.maps.OrigCol(col)),
		RowType: rowType,
	}
	Push(s.arena, rec)
	PushSeq(s.arena, remRow)
	PushSeq(s.arena, remCol)
	s.tags = append(s.tags, tagFreeColSubstitution)
}

// DoubletonEquation records the elimination of colSubst from the equation
// coefSubst*x[colSubst] + coef*x[col] = rhs. colVec is colSubst's
// coefficients on the other rows (indices in reduced row space).
// oldLower/oldUpper are col's bounds before this reduction tightened them
// to newLower/newUpper.
func (s *Stack) DoubletonEquation(row, colSubst, col int, coefSubst, coef, rhs,
	substLower, substUpper, oldLower, oldUpper, newLower, newUpper, substCost float64,
	colVec []IndexValue) {
	remCol := remapViaRow(s.maps, colVec)
	rec := doubletonEquationRecord{
		Coef: coef, CoefSubst: coefSubst, Rhs: rhs,
		SubstLower: substLower, SubstUpper: substUpper, SubstCost: substCost,
		Row: int32(s.maps.OrigRow(row)), ColSubst: int32(s.maps.OrigCol(colSubst)), Col: int32(s.maps.OrigCol(col)),
		LowerTightened: oldLower < newLower, UpperTightened: oldUpper > newUpper,
	}
	Push(s.arena, rec)
	PushSeq(s.arena, remCol)
	s.tags = append(s.tags, tagDoubletonEquation)
}

// EqualityRowAddition records that row had eqRowScale*addedEqRow added to
// it (both in reduced row space).
func (s *Stack) EqualityRowAddition(row, addedEqRow int, eqRowScale float64) {
	rec := equalityRowAdditionRecord{
		Row: int32(s.maps.OrigRow(row)), AddedEqRow: int32(s.maps.OrigRow(addedEqRow)), EqRowScale: eqRowScale,
	}
	Push(s.arena, rec)
	s.tags = append(s.tags, tagEqualityRowAddition)
}

// SingletonRow records the removal of the row coef*x[col] after
// tightening col's bound(s).
func (s *Stack) SingletonRow(row, col int, coef float64, colLowerTightened, colUpperTightened bool) {
	rec := singletonRowRecord{
		Coef: coef, Row: int32(s.maps.OrigRow(row)), Col: int32(s.maps.OrigCol(col)),
		ColLowerTightened: colLowerTightened, ColUpperTightened: colUpperTightened,
	}
	Push(s.arena, rec)
	s.tags = append(s.tags, tagSingletonRow)
}

// FixedColAtLower records the removal of col after fixing it at its lower
// bound. colVec is col's coefficients on the other rows (reduced row
// space). fixValue must be finite.
func (s *Stack) FixedColAtLower(col int, fixValue, colCost float64, colVec []IndexValue) error {
	return s.fixedCol(col, fixValue, colCost, AtLower, colVec)
}

// FixedColAtUpper is FixedColAtLower's upper-bound counterpart.
func (s *Stack) FixedColAtUpper(col int, fixValue, colCost float64, colVec []IndexValue) error {
	return s.fixedCol(col, fixValue, colCost, AtUpper, colVec)
}

// RemovedFixedCol records the removal of col after it was fixed because
// its bounds became equal (undo picks AtLower/AtUpper from the sign of
// its reconstructed reduced cost).
func (s *Stack) RemovedFixedCol(col int, fixValue, colCost float64, colVec []IndexValue) error {
	return s.fixedCol(col, fixValue, colCost, Nonbasic, colVec)
}

func (s *Stack) fixedCol(col int, fixValue, colCost float64, fixType BasisStatus, colVec []IndexValue) error {
	if math.IsNaN(fixValue) || math.IsInf(fixValue, 0) {
		return fmt.Errorf("postsolve: %w: fixedCol requires a finite fix value, got %v", ErrPreconditionViolation, fixValue)
	}
	remCol := remapViaRow(s.maps, colVec)
	rec := fixedColRecord{FixValue: fixValue, ColCost: colCost, Col: int32(s.maps.OrigCol(col)), FixType: fixType}
	Push(s.arena, rec)
	PushSeq(s.arena, remCol)
	s.tags = append(s.tags, tagFixedCol)
	return nil
}

// RedundantRow records the removal of a row that carried no active
// constraint.
func (s *Stack) RedundantRow(row int) {
	rec := redundantRowRecord{Row: int32(s.maps.OrigRow(row))}
	Push(s.arena, rec)
	s.tags = append(s.tags, tagRedundantRow)
}

// ForcingRow records that every column in row was fixed to a bound
// because row's side forced it. rowVec is row's coefficients on its
// columns (reduced column space).
func (s *Stack) ForcingRow(row int, rowVec []IndexValue, side float64, rowType RowType) {
	remRow := remapViaCol(s.maps, rowVec)
	rec := forcingRowRecord{Side: side, Row: int32(s.maps.OrigRow(row)), RowType: rowType}
	Push(s.arena, rec)
	PushSeq(s.arena, remRow)
	s.tags = append(s.tags, tagForcingRow)
}

// DuplicateRow records the removal of row because it was a scaled copy
// (duplicateRowScale) of duplicateRow.
func (s *Stack) DuplicateRow(row int, rowLowerTightened, rowUpperTightened bool, duplicateRow int, duplicateRowScale float64) {
	rec := duplicateRowRecord{
		DuplicateRowScale: duplicateRowScale,
		DuplicateRow:      int32(s.maps.OrigRow(duplicateRow)),
		Row:               int32(s.maps.OrigRow(row)),
		RowLowerTightened: rowLowerTightened, RowUpperTightened: rowUpperTightened,
	}
	Push(s.arena, rec)
	s.tags = append(s.tags, tagDuplicateRow)
}

// DuplicateColumn records the merge of duplicateCol into col with scale
// colScale: the reduced problem saw a single variable
// z = x[col] + colScale*x[duplicateCol].
func (s *Stack) DuplicateColumn(colScale, colLower, colUpper, duplicateColLower, duplicateColUpper float64,
	col, duplicateCol int, colIntegral, duplicateColIntegral bool) {
	rec := duplicateColumnRecord{
		ColScale: colScale, ColLower: colLower, ColUpper: colUpper,
		DuplicateColLower: duplicateColLower, DuplicateColUpper: duplicateColUpper,
		Col: int32(s.maps.OrigCol(col)), DuplicateCol: int32(s.maps.OrigCol(duplicateCol)),
		ColIntegral: colIntegral, DuplicateColIntegral: duplicateColIntegral,
	}
	Push(s.arena, rec)
	s.tags = append(s.tags, tagDuplicateColumn)
}
