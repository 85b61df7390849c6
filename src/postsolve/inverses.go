package postsolve

import (
	"math"

	"gopkg.in/dnaeon/go-priorityqueue.v1"
)

// tol is the internal numeric tolerance used for bound/zero comparisons
// inside the inverses that are not handed the caller's feastol directly
// (every undo signature in the original stack except DuplicateColumn's).
const tol = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tol
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// nearestBound returns whichever of lo/hi is closer to z.
func nearestBound(z, lo, hi float64) float64 {
	if math.Abs(z-lo) <= math.Abs(z-hi) {
		return lo
	}
	return hi
}

// boundViolation returns how far v lies outside [lo, hi], or 0 if inside.
func boundViolation(v, lo, hi float64) float64 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

// boundStatus reports the basis status a value implies given its bounds,
// and whether it actually sits at one of them (within t).
func boundStatus(v, lo, hi, t float64) (status BasisStatus, atBound bool) {
	if math.Abs(v-lo) <= t {
		return AtLower, true
	}
	if math.Abs(v-hi) <= t {
		return AtUpper, true
	}
	return Basic, false
}

// undo for FreeColSubstitution (§4.4.1). rowValues/colValues are already
// in original index space. The stored rhs/colCost and the neighbor
// coefficients are understood to already be divided by the eliminated
// pivot coefficient a_rc (the original record carries no separate pivot
// field, so a presolver calling FreeColSubstitution must normalize by it
// before emission — the formulas below then read as the spec's with
// a_rc folded to 1).
func (r *freeColSubstitutionRecord) undo(rowValues, colValues []IndexValue, sol *Solution, basis *Basis) {
	sum := 0.0
	for _, rv := range rowValues {
		sum += rv.Value * sol.ColValue[rv.Index]
	}
	sol.ColValue[r.Col] = r.Rhs - sum
	sol.RowValue[r.Row] = r.Rhs

	if !sol.HasDuals() {
		return
	}

	dualSum := 0.0
	for _, cv := range colValues {
		dualSum += cv.Value * sol.RowDual[cv.Index]
	}
	sol.RowDual[r.Row] = r.ColCost - dualSum
	sol.ColDual[r.Col] = 0

	basis.ColStatus[r.Col] = Basic
	switch r.RowType {
	case Geq:
		basis.RowStatus[r.Row] = AtLower
	case Leq:
		basis.RowStatus[r.Row] = AtUpper
	default:
		basis.RowStatus[r.Row] = Nonbasic
	}
}

// undo for DoubletonEquation (§4.4.2).
func (r *doubletonEquationRecord) undo(colValues []IndexValue, sol *Solution, basis *Basis) {
	xCol := sol.ColValue[r.Col]
	xSubst := (r.Rhs - r.Coef*xCol) / r.CoefSubst
	sol.ColValue[r.ColSubst] = xSubst
	sol.RowValue[r.Row] = r.Rhs

	if !sol.HasDuals() {
		return
	}

	if r.LowerTightened && basis.ColStatus[r.Col] == AtLower {
		basis.ColStatus[r.Col] = Basic
	}
	if r.UpperTightened && basis.ColStatus[r.Col] == AtUpper {
		basis.ColStatus[r.Col] = Basic
	}

	dualSum := 0.0
	for _, cv := range colValues {
		dualSum += cv.Value * sol.RowDual[cv.Index]
	}
	yRow := (r.SubstCost - dualSum) / r.CoefSubst
	sol.RowDual[r.Row] = yRow
	sol.ColDual[r.Col] += r.Coef * yRow
	sol.ColDual[r.ColSubst] = 0

	switch {
	case almostEqual(xSubst, r.SubstLower):
		basis.ColStatus[r.ColSubst] = AtLower
	case almostEqual(xSubst, r.SubstUpper):
		basis.ColStatus[r.ColSubst] = AtUpper
	default:
		basis.ColStatus[r.ColSubst] = Basic
	}
}

// undo for EqualityRowAddition (§4.4.3). Primal and basis are unchanged;
// the row's dual contribution, added at presolve time, is folded back
// into the row it came from.
func (r *equalityRowAdditionRecord) undo(sol *Solution, basis *Basis) {
	if !sol.HasDuals() {
		return
	}
	sol.RowDual[r.AddedEqRow] += r.EqRowScale * sol.RowDual[r.Row]
}

// undo for SingletonRow (§4.4.4).
func (r *singletonRowRecord) undo(sol *Solution, basis *Basis) {
	sol.RowValue[r.Row] = r.Coef * sol.ColValue[r.Col]

	if !sol.HasDuals() {
		return
	}

	atLower := r.ColLowerTightened && basis.ColStatus[r.Col] == AtLower
	atUpper := r.ColUpperTightened && basis.ColStatus[r.Col] == AtUpper
	if !atLower && !atUpper {
		sol.RowDual[r.Row] = 0
		basis.RowStatus[r.Row] = Basic
		return
	}

	// the column currently sits at a bound that only existed because of
	// this row's tightening; move it off that bound and let the row
	// absorb its reduced cost.
	sol.RowDual[r.Row] = sol.ColDual[r.Col] / r.Coef
	sol.ColDual[r.Col] = 0
	basis.ColStatus[r.Col] = Basic
	if atLower {
		basis.RowStatus[r.Row] = AtLower
	} else {
		basis.RowStatus[r.Row] = AtUpper
	}
}

// undo for FixedCol (§4.4.5), shared by all three fixedColAtLower /
// fixedColAtUpper / removedFixedCol flavors.
func (r *fixedColRecord) undo(colValues []IndexValue, sol *Solution, basis *Basis) {
	sol.ColValue[r.Col] = r.FixValue
	for _, cv := range colValues {
		sol.RowValue[cv.Index] += cv.Value * r.FixValue
	}

	if !sol.HasDuals() {
		return
	}

	dualSum := 0.0
	for _, cv := range colValues {
		dualSum += cv.Value * sol.RowDual[cv.Index]
	}
	dCol := r.ColCost - dualSum
	sol.ColDual[r.Col] = dCol

	switch r.FixType {
	case AtLower, AtUpper:
		basis.ColStatus[r.Col] = r.FixType
	default:
		if dCol >= 0 {
			basis.ColStatus[r.Col] = AtLower
		} else {
			basis.ColStatus[r.Col] = AtUpper
		}
	}
}

// undo for RedundantRow (§4.4.6).
func (r *redundantRowRecord) undo(sol *Solution, basis *Basis) {
	if !sol.HasDuals() {
		return
	}
	sol.RowDual[r.Row] = 0
	basis.RowStatus[r.Row] = Basic
}

// undo for ForcingRow (§4.4.7). rowValues holds the row's nonzero
// coefficients, indexed by original column.
func (r *forcingRowRecord) undo(rowValues []IndexValue, sol *Solution, basis *Basis) {
	sol.RowValue[r.Row] = r.Side

	if !sol.HasDuals() {
		return
	}

	// pick the largest-magnitude coefficient as the pivot for y_row; its
	// column's reduced cost is driven to zero, and every other forced
	// column's reduced cost is adjusted by the same y_row. The presolver
	// guarantees a consistent sign for all of them; if it didn't, that is
	// a presolver bug, not something this undo can recover from.
	pivot := -1
	pivotCoef := 0.0
	for i, rv := range rowValues {
		if math.Abs(rv.Value) > math.Abs(pivotCoef) {
			pivotCoef = rv.Value
			pivot = i
		}
	}

	var yRow float64
	if pivot >= 0 {
		col := int(rowValues[pivot].Index)
		yRow = sol.ColDual[col] / pivotCoef
	}

	for _, rv := range rowValues {
		col := int(rv.Index)
		sol.ColDual[col] -= rv.Value * yRow
	}

	sol.RowDual[r.Row] = yRow
	basis.RowStatus[r.Row] = Nonbasic
}

// undo for DuplicateRow (§4.4.8). No neighbor slices are stored for this
// variant (§3: "All others: record only").
func (r *duplicateRowRecord) undo(sol *Solution, basis *Basis) {
	sol.RowValue[r.Row] = r.DuplicateRowScale * sol.RowValue[r.DuplicateRow]

	if !sol.HasDuals() {
		return
	}

	if !r.RowLowerTightened && !r.RowUpperTightened {
		sol.RowDual[r.Row] = 0
		basis.RowStatus[r.Row] = Basic
		return
	}

	total := sol.RowDual[r.DuplicateRow]
	switch {
	case r.RowLowerTightened && !r.RowUpperTightened:
		sol.RowDual[r.Row] = total / r.DuplicateRowScale
		sol.RowDual[r.DuplicateRow] = 0
		basis.RowStatus[r.Row] = AtLower
		basis.RowStatus[r.DuplicateRow] = Basic
	case r.RowUpperTightened && !r.RowLowerTightened:
		sol.RowDual[r.Row] = total / r.DuplicateRowScale
		sol.RowDual[r.DuplicateRow] = 0
		basis.RowStatus[r.Row] = AtUpper
		basis.RowStatus[r.DuplicateRow] = Basic
	default:
		// both sides were tightened by the pair acting together: split
		// the combined dual evenly between the two rows.
		sol.RowDual[r.Row] = total / 2 / r.DuplicateRowScale
		sol.RowDual[r.DuplicateRow] = total / 2
	}
}

// undo for DuplicateColumn (§4.4.9), the one inverse that can report a
// non-fatal failure (ErrIntegerSplitFailure) and takes feastol directly.
func (r *duplicateColumnRecord) undo(sol *Solution, basis *Basis, feastol float64) error {
	z := sol.ColValue[r.Col]

	var xCol, xDup float64
	var splitErr error

	if !r.ColIntegral && !r.DuplicateColIntegral {
		xCol = nearestBound(z, r.ColLower, r.ColUpper)
		xDup = (z - xCol) / r.ColScale
		clamped := clampFloat(xDup, r.DuplicateColLower, r.DuplicateColUpper)
		if math.Abs(clamped-xDup) > feastol {
			xDup = clamped
			xCol = clampFloat(z-r.ColScale*xDup, r.ColLower, r.ColUpper)
		} else {
			xDup = clamped
		}
	} else {
		xCol, xDup, splitErr = r.splitInteger(z, feastol)
	}

	sol.ColValue[r.Col] = xCol
	sol.ColValue[r.DuplicateCol] = xDup

	if sol.HasDuals() {
		sol.ColDual[r.DuplicateCol] = r.ColScale * sol.ColDual[r.Col]

		colStatus, colAtBound := boundStatus(xCol, r.ColLower, r.ColUpper, feastol)
		dupStatus, dupAtBound := boundStatus(xDup, r.DuplicateColLower, r.DuplicateColUpper, feastol)
		switch {
		case !colAtBound:
			basis.ColStatus[r.Col] = Basic
			basis.ColStatus[r.DuplicateCol] = dupStatus
		case !dupAtBound:
			basis.ColStatus[r.DuplicateCol] = Basic
			basis.ColStatus[r.Col] = colStatus
		default:
			basis.ColStatus[r.Col] = colStatus
			basis.ColStatus[r.DuplicateCol] = Basic
		}
	}

	return splitErr
}

// splitInteger searches integer values of x_duplicate_col over its
// bounded range, closest-first to the continuous split target, for the
// first one that leaves x_col feasible (and integral, if col is
// integer). Ordering candidates with a priority queue keyed by distance
// from the target mirrors the teacher's own best-first candidate search
// (src/scpcs/greedy.go, src/scpcs/lagrangian.go), here applied to a small
// bounded integer search instead of a combinatorial repair heuristic.
func (r *duplicateColumnRecord) splitInteger(z, feastol float64) (xCol, xDup float64, err error) {
	lo := int64(math.Ceil(r.DuplicateColLower - feastol))
	hi := int64(math.Floor(r.DuplicateColUpper + feastol))
	target := (z - nearestBound(z, r.ColLower, r.ColUpper)) / r.ColScale

	queue := priorityqueue.New[int64, float64](priorityqueue.MinHeap)
	for v := lo; v <= hi; v++ {
		queue.Put(v, math.Abs(float64(v)-target))
	}

	bestViol := math.Inf(1)
	var bestCol, bestDup float64

	for queue.Len() > 0 {
		item := queue.Get()
		cand := float64(item.Value)
		candCol := z - r.ColScale*cand

		viol := boundViolation(candCol, r.ColLower, r.ColUpper)
		if r.ColIntegral {
			rounded := math.Round(candCol)
			if d := math.Abs(candCol - rounded); d > viol {
				viol = d
			}
			candCol = rounded
		}

		if viol <= feastol {
			return candCol, cand, nil
		}
		if viol < bestViol {
			bestViol = viol
			bestCol, bestDup = candCol, cand
		}
	}

	return bestCol, bestDup, ErrIntegerSplitFailure
}
