package postsolve

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const testFeastol = 1e-7

func approxEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > testFeastol {
		t.Fatalf("%s: got %v, want %v", name, got, want)
	}
}

// Scenario 1: FixedCol at lower bound.
// min x + y s.t. x + y >= 1, 0 <= x,y <= 2; presolve fixes y=0; reduced
// problem min x s.t. x >= 1 yields x=1.
func TestScenarioFixedColAtLower(t *testing.T) {
	s := NewStack()
	s.InitializeIndexMaps(1, 2)

	if err := s.FixedColAtLower(1, 0, 1, []IndexValue{{Index: 0, Value: 1}}); err != nil {
		t.Fatalf("emit FixedColAtLower: %v", err)
	}
	if err := s.CompressIndexMaps([]int{0}, []int{0, Removed}); err != nil {
		t.Fatalf("compress: %v", err)
	}

	sol := &Solution{ColValue: []float64{1}, RowValue: []float64{1}, ColDual: []float64{0}, RowDual: []float64{1}}
	basis := &Basis{ColStatus: []BasisStatus{Basic}, RowStatus: []BasisStatus{AtLower}}

	if err := s.Undo(sol, basis, testFeastol); err != nil {
		t.Fatalf("undo: %v", err)
	}

	// row activity 1 = dot([1,1], [x,y]); verified with gonum instead of
	// hand-multiplying.
	a := mat.NewVecDense(2, []float64{1, 1})
	x := mat.NewVecDense(2, sol.ColValue)
	approxEqual(t, "x", sol.ColValue[0], 1)
	approxEqual(t, "y", sol.ColValue[1], 0)
	approxEqual(t, "row activity", mat.Dot(a, x), 1)
	approxEqual(t, "row dual", sol.RowDual[0], 1)

	if basis.ColStatus[0] != Basic {
		t.Fatalf("x should be Basic, got %v", basis.ColStatus[0])
	}
	if basis.ColStatus[1] != AtLower {
		t.Fatalf("y should be AtLower, got %v", basis.ColStatus[1])
	}
}

// Scenario 2: DoubletonEquation.
// 2x + 3y = 6, cost x+y, 0<=x,y<=10; substitute y=(6-2x)/3; solver
// returns x=0; undo must produce y=2, row activity 6.
func TestScenarioDoubletonEquation(t *testing.T) {
	s := NewStack()
	s.InitializeIndexMaps(1, 2)

	s.DoubletonEquation(0, 1, 0, 3, 2, 6, 0, 10, 0, 10, 0, 10, 1, nil)

	if err := s.CompressIndexMaps([]int{Removed}, []int{0, Removed}); err != nil {
		t.Fatalf("compress: %v", err)
	}

	sol := &Solution{ColValue: []float64{0}, RowValue: []float64{}, ColDual: []float64{1}, RowDual: []float64{}}
	basis := &Basis{ColStatus: []BasisStatus{Basic}, RowStatus: []BasisStatus{}}

	if err := s.Undo(sol, basis, testFeastol); err != nil {
		t.Fatalf("undo: %v", err)
	}

	approxEqual(t, "x", sol.ColValue[0], 0)
	approxEqual(t, "y", sol.ColValue[1], 2)
	approxEqual(t, "row activity", sol.RowValue[0], 6)

	wantYRow := (1.0 - 0) / 3.0
	approxEqual(t, "row dual", sol.RowDual[0], wantYRow)
	approxEqual(t, "x reduced cost", sol.ColDual[0], 1+2*wantYRow)
	approxEqual(t, "y reduced cost", sol.ColDual[1], 0)
}

// Scenario 3: DuplicateColumn, continuous. x and z (cost 1, [0,5] each,
// scale 1) merged into w = x+z; solver returns w=7; expect x=5, z=2.
func TestScenarioDuplicateColumnContinuous(t *testing.T) {
	s := NewStack()
	s.InitializeIndexMaps(0, 2)

	s.DuplicateColumn(1, 0, 5, 0, 5, 0, 1, false, false)

	if err := s.CompressIndexMaps(nil, []int{0, Removed}); err != nil {
		t.Fatalf("compress: %v", err)
	}

	sol := &Solution{ColValue: []float64{7}, RowValue: []float64{}}
	basis := &Basis{}

	if err := s.Undo(sol, basis, testFeastol); err != nil {
		t.Fatalf("undo: %v", err)
	}

	approxEqual(t, "x", sol.ColValue[0], 5)
	approxEqual(t, "z", sol.ColValue[1], 2)
	approxEqual(t, "x+z", sol.ColValue[0]+sol.ColValue[1], 7)
	if sol.ColValue[0] < 0 || sol.ColValue[0] > 5 || sol.ColValue[1] < 0 || sol.ColValue[1] > 5 {
		t.Fatalf("split out of bounds: x=%v z=%v", sol.ColValue[0], sol.ColValue[1])
	}
}

// Scenario 4: DuplicateColumn, integer. Both integer, bounds [0,3],
// solver returns w=4; expect an integer pair in [0,3]^2 summing to 4.
func TestScenarioDuplicateColumnInteger(t *testing.T) {
	s := NewStack()
	s.InitializeIndexMaps(0, 2)

	s.DuplicateColumn(1, 0, 3, 0, 3, 0, 1, true, true)

	if err := s.CompressIndexMaps(nil, []int{0, Removed}); err != nil {
		t.Fatalf("compress: %v", err)
	}

	sol := &Solution{ColValue: []float64{4}, RowValue: []float64{}}
	basis := &Basis{}

	if err := s.Undo(sol, basis, testFeastol); err != nil {
		t.Fatalf("undo: %v", err)
	}

	x, z := sol.ColValue[0], sol.ColValue[1]
	approxEqual(t, "x+z", x+z, 4)
	if x != math.Round(x) || z != math.Round(z) {
		t.Fatalf("split is not integral: x=%v z=%v", x, z)
	}
	if x < 0 || x > 3 || z < 0 || z > 3 {
		t.Fatalf("split out of bounds: x=%v z=%v", x, z)
	}
}

// Scenario 5: EqualityRowAddition. r1: x+y<=4 had 2*r2 added to it where
// r2: x-z=0. Solver returns y_r1=0.5; undo must set y_r2 += 2*0.5 = 1.
func TestScenarioEqualityRowAddition(t *testing.T) {
	s := NewStack()
	s.InitializeIndexMaps(2, 3)

	s.EqualityRowAddition(0, 1, 2)

	sol := &Solution{
		ColValue: []float64{0, 0, 0}, RowValue: []float64{0, 0},
		ColDual: []float64{0, 0, 0}, RowDual: []float64{0.5, 0},
	}
	basis := &Basis{ColStatus: make([]BasisStatus, 3), RowStatus: make([]BasisStatus, 2)}

	if err := s.Undo(sol, basis, testFeastol); err != nil {
		t.Fatalf("undo: %v", err)
	}

	approxEqual(t, "y_r1", sol.RowDual[0], 0.5)
	approxEqual(t, "y_r2", sol.RowDual[1], 1)
}

// Scenario 6: ForcingRow. Row x+y=0 with x,y>=0 forces both to zero;
// undo must set y_row so each column's reduced cost is >= 0, row Nonbasic.
func TestScenarioForcingRow(t *testing.T) {
	s := NewStack()
	s.InitializeIndexMaps(1, 2)

	s.ForcingRow(0, []IndexValue{{Index: 0, Value: 1}, {Index: 1, Value: 1}}, 0, Eq)

	if err := s.CompressIndexMaps([]int{Removed}, []int{0, 1}); err != nil {
		t.Fatalf("compress: %v", err)
	}

	sol := &Solution{
		ColValue: []float64{0, 0}, RowValue: []float64{},
		ColDual: []float64{1, 1}, RowDual: []float64{},
	}
	basis := &Basis{ColStatus: []BasisStatus{Basic, Basic}, RowStatus: []BasisStatus{}}

	if err := s.Undo(sol, basis, testFeastol); err != nil {
		t.Fatalf("undo: %v", err)
	}

	approxEqual(t, "row activity", sol.RowValue[0], 0)
	if sol.ColDual[0] < -testFeastol || sol.ColDual[1] < -testFeastol {
		t.Fatalf("forced columns must keep non-negative reduced cost: %v", sol.ColDual)
	}
	if basis.RowStatus[0] != Nonbasic {
		t.Fatalf("row should be Nonbasic, got %v", basis.RowStatus[0])
	}
}
