package postsolve

import (
	"fmt"
	"strings"
)

// RowType classifies which side of a row's bounds is the binding one.
type RowType uint8

const (
	Geq RowType = iota
	Leq
	Eq
)

func (t RowType) String() string {
	switch t {
	case Geq:
		return "Geq"
	case Leq:
		return "Leq"
	case Eq:
		return "Eq"
	default:
		return "RowType(?)"
	}
}

// BasisStatus is the active-set status of one column or row.
type BasisStatus uint8

const (
	Basic BasisStatus = iota
	AtLower
	AtUpper
	Nonbasic
	Zero
)

func (s BasisStatus) String() string {
	switch s {
	case Basic:
		return "Basic"
	case AtLower:
		return "AtLower"
	case AtUpper:
		return "AtUpper"
	case Nonbasic:
		return "Nonbasic"
	case Zero:
		return "Zero"
	default:
		return "BasisStatus(?)"
	}
}

// IndexValue is an (index, value) pair. Emission entry points take
// neighbor nonzeros in the reduced index space as []IndexValue; the same
// type, after remapping, is what gets pushed to the arena in original
// index space.
type IndexValue struct {
	Index int32
	Value float64
}

// Solution holds the four numeric vectors of an LP solution, indexed in
// whichever index space the caller currently works in (reduced, until
// Undo/UndoUntil expands it to original space).
type Solution struct {
	ColValue []float64
	RowValue []float64
	ColDual  []float64
	RowDual  []float64
}

// HasDuals reports whether this solution carries dual values, i.e.
// whether it is in "dual postsolve" mode.
func (s *Solution) HasDuals() bool {
	return len(s.ColDual) == len(s.ColValue)
}

func (s *Solution) String() string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "col values: %v\n", s.ColValue)
	fmt.Fprintf(b, "row values: %v\n", s.RowValue)
	if s.HasDuals() {
		fmt.Fprintf(b, "col duals: %v\n", s.ColDual)
		fmt.Fprintf(b, "row duals: %v\n", s.RowDual)
	}
	return b.String()
}

// Basis holds the active-set status of every column and row.
type Basis struct {
	ColStatus []BasisStatus
	RowStatus []BasisStatus
}

func (b *Basis) String() string {
	s := new(strings.Builder)
	fmt.Fprintf(s, "col status: %v\n", b.ColStatus)
	fmt.Fprintf(s, "row status: %v\n", b.RowStatus)
	return s.String()
}
