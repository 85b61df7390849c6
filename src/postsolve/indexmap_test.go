package postsolve

import "testing"

func TestIndexMapsIdentity(t *testing.T) {
	m := NewIndexMaps()
	m.Initialize(3, 4)

	if m.OrigNumRow() != 3 || m.OrigNumCol() != 4 {
		t.Fatalf("unexpected orig sizes: %d/%d", m.OrigNumRow(), m.OrigNumCol())
	}
	for i := 0; i < 3; i++ {
		if m.OrigRow(i) != i {
			t.Fatalf("row %d: want identity, got %d", i, m.OrigRow(i))
		}
	}
	for i := 0; i < 4; i++ {
		if m.OrigCol(i) != i {
			t.Fatalf("col %d: want identity, got %d", i, m.OrigCol(i))
		}
	}
}

func TestIndexMapsCompressPreservesOrder(t *testing.T) {
	m := NewIndexMaps()
	m.Initialize(4, 5)

	// drop original row 1 and original col 2; everything else keeps its
	// relative order.
	newRow := []int{0, Removed, 1, 2}
	newCol := []int{0, 1, Removed, 2, 3}

	if err := m.Compress(newRow, newCol); err != nil {
		t.Fatalf("compress: %v", err)
	}

	if m.NumRow() != 3 || m.NumCol() != 4 {
		t.Fatalf("unexpected reduced sizes: %d rows, %d cols", m.NumRow(), m.NumCol())
	}

	wantRow := []int{0, 2, 3}
	for i, want := range wantRow {
		if got := m.OrigRow(i); got != want {
			t.Fatalf("row %d: want orig %d, got %d", i, want, got)
		}
	}

	wantCol := []int{0, 1, 3, 4}
	for i, want := range wantCol {
		if got := m.OrigCol(i); got != want {
			t.Fatalf("col %d: want orig %d, got %d", i, want, got)
		}
	}

	// orig[i] >= i must hold after every compression — the invariant the
	// driver's in-place backward expansion relies on.
	for i := 0; i < m.NumRow(); i++ {
		if m.OrigRow(i) < i {
			t.Fatalf("monotonicity violated at row %d: orig %d", i, m.OrigRow(i))
		}
	}
	for i := 0; i < m.NumCol(); i++ {
		if m.OrigCol(i) < i {
			t.Fatalf("monotonicity violated at col %d: orig %d", i, m.OrigCol(i))
		}
	}
}

func TestIndexMapsCompressRejectsDuplicates(t *testing.T) {
	m := NewIndexMaps()
	m.Initialize(2, 2)

	err := m.Compress([]int{0, 0}, []int{0, 1})
	if err == nil {
		t.Fatalf("expected error for duplicate new row index")
	}
}

func TestIndexMapsCompressRejectsLengthMismatch(t *testing.T) {
	m := NewIndexMaps()
	m.Initialize(2, 2)

	err := m.Compress([]int{0}, []int{0, 1})
	if err == nil {
		t.Fatalf("expected error for row index length mismatch")
	}
}
