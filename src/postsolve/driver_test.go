package postsolve

import "testing"

func buildTwoFixedColStack(t *testing.T) (*Stack, func() *Solution, func() *Basis) {
	t.Helper()
	s := NewStack()
	s.InitializeIndexMaps(0, 3)

	if err := s.FixedColAtLower(2, 0, 1, nil); err != nil {
		t.Fatalf("emit first FixedCol: %v", err)
	}
	if err := s.FixedColAtUpper(1, 4, 1, nil); err != nil {
		t.Fatalf("emit second FixedCol: %v", err)
	}
	if err := s.CompressIndexMaps(nil, []int{0, Removed, Removed}); err != nil {
		t.Fatalf("compress: %v", err)
	}

	newSol := func() *Solution {
		return &Solution{ColValue: []float64{9}, RowValue: []float64{}, ColDual: []float64{0}, RowDual: []float64{}}
	}
	newBasis := func() *Basis {
		return &Basis{ColStatus: []BasisStatus{Basic}, RowStatus: []BasisStatus{}}
	}
	return s, newSol, newBasis
}

func TestUndoUntilCompositionMatchesSingleUndo(t *testing.T) {
	s, newSol, newBasis := buildTwoFixedColStack(t)

	solDirect := newSol()
	basisDirect := newBasis()
	if err := s.Undo(solDirect, basisDirect, testFeastol); err != nil {
		t.Fatalf("direct undo: %v", err)
	}

	s2, _, _ := buildTwoFixedColStack(t)
	solStaged := newSol()
	basisStaged := newBasis()
	if err := s2.UndoUntil(solStaged, basisStaged, 1, testFeastol); err != nil {
		t.Fatalf("undo_until(1): %v", err)
	}
	if err := s2.UndoUntil(solStaged, basisStaged, 0, testFeastol); err != nil {
		t.Fatalf("undo_until(0) on residual state: %v", err)
	}

	for i := range solDirect.ColValue {
		if solDirect.ColValue[i] != solStaged.ColValue[i] {
			t.Fatalf("col %d mismatch: direct=%v staged=%v", i, solDirect.ColValue[i], solStaged.ColValue[i])
		}
	}
	for i := range basisDirect.ColStatus {
		if basisDirect.ColStatus[i] != basisStaged.ColStatus[i] {
			t.Fatalf("col status %d mismatch: direct=%v staged=%v", i, basisDirect.ColStatus[i], basisStaged.ColStatus[i])
		}
	}
}

func TestUndoIsReplayDeterministic(t *testing.T) {
	s1, newSol, newBasis := buildTwoFixedColStack(t)
	s2, _, _ := buildTwoFixedColStack(t)

	sol1, basis1 := newSol(), newBasis()
	sol2, basis2 := newSol(), newBasis()

	if err := s1.Undo(sol1, basis1, testFeastol); err != nil {
		t.Fatalf("undo 1: %v", err)
	}
	if err := s2.Undo(sol2, basis2, testFeastol); err != nil {
		t.Fatalf("undo 2: %v", err)
	}

	for i := range sol1.ColValue {
		if sol1.ColValue[i] != sol2.ColValue[i] {
			t.Fatalf("non-deterministic col %d: %v vs %v", i, sol1.ColValue[i], sol2.ColValue[i])
		}
	}
}

func TestUndoRejectsSizeMismatch(t *testing.T) {
	s := NewStack()
	s.InitializeIndexMaps(1, 1)

	sol := &Solution{ColValue: []float64{0, 0}, RowValue: []float64{0}}
	basis := &Basis{}
	if err := s.Undo(sol, basis, testFeastol); err == nil {
		t.Fatalf("expected precondition violation for mismatched solution size")
	}
}
