package postsolve

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Removed is the sentinel new-index value meaning "this row/column did not
// survive compression".
const Removed = -1

// IndexMaps holds the two parallel arrays mapping a reduced-space row/col
// index to its original-space index. Both arrays satisfy orig[i] >= i at
// all times, which is what makes Stack's in-place backward expansion of
// the solution/basis vectors (driver.go) safe.
type IndexMaps struct {
	origRow    []int
	origCol    []int
	origNumRow int
	origNumCol int
}

// NewIndexMaps returns a zero-sized IndexMaps; call Initialize before use.
func NewIndexMaps() *IndexMaps {
	return &IndexMaps{}
}

// Initialize sets both maps to the identity of the given sizes.
func (m *IndexMaps) Initialize(numRow, numCol int) {
	m.origNumRow = numRow
	m.origNumCol = numCol
	m.origRow = make([]int, numRow)
	m.origCol = make([]int, numCol)
	for i := range m.origRow {
		m.origRow[i] = i
	}
	for i := range m.origCol {
		m.origCol[i] = i
	}
}

// OrigNumRow returns the original (pre-presolve) row count.
func (m *IndexMaps) OrigNumRow() int { return m.origNumRow }

// OrigNumCol returns the original (pre-presolve) column count.
func (m *IndexMaps) OrigNumCol() int { return m.origNumCol }

// NumRow returns the current reduced row count.
func (m *IndexMaps) NumRow() int { return len(m.origRow) }

// NumCol returns the current reduced column count.
func (m *IndexMaps) NumCol() int { return len(m.origCol) }

// OrigRow returns the original-space index of reduced row i.
func (m *IndexMaps) OrigRow(i int) int { return m.origRow[i] }

// OrigCol returns the original-space index of reduced column i.
func (m *IndexMaps) OrigCol(i int) int { return m.origCol[i] }

// Compress shrinks both maps in place. newRowIndex[i] / newColIndex[i] is
// either the new index of reduced entity i, or Removed. After compression
// the map entry at each surviving entity's new position holds the old
// original-space index; removed entities are discarded.
func (m *IndexMaps) Compress(newRowIndex, newColIndex []int) error {
	newOrigRow, err := compressOne(m.origRow, newRowIndex)
	if err != nil {
		return fmt.Errorf("postsolve: compress rows: %w", err)
	}
	newOrigCol, err := compressOne(m.origCol, newColIndex)
	if err != nil {
		return fmt.Errorf("postsolve: compress cols: %w", err)
	}
	m.origRow = newOrigRow
	m.origCol = newOrigCol
	return nil
}

// compressOne validates newIndex as an injective, order-preserving partial
// map into [0, survivorCount) using a set to catch collisions, then builds the
// compacted array. The set usage mirrors the teacher's own membership
// bookkeeping over an index domain (mapset.Set in src/scpcs/instance.go).
func compressOne(orig []int, newIndex []int) ([]int, error) {
	if len(newIndex) != len(orig) {
		return nil, fmt.Errorf("%w: new index length %d does not match current size %d",
			ErrPreconditionViolation, len(newIndex), len(orig))
	}

	seen := mapset.NewThreadUnsafeSet[int]()
	survivorCount := 0
	for _, ni := range newIndex {
		if ni == Removed {
			continue
		}
		if ni < 0 {
			return nil, fmt.Errorf("%w: negative new index %d", ErrPreconditionViolation, ni)
		}
		if seen.Contains(ni) {
			return nil, fmt.Errorf("%w: duplicate new index %d", ErrPreconditionViolation, ni)
		}
		seen.Add(ni)
		survivorCount++
	}

	result := make([]int, survivorCount)
	prev := -1
	for i, ni := range newIndex {
		if ni == Removed {
			continue
		}
		if ni >= survivorCount {
			return nil, fmt.Errorf("%w: new index %d is not below survivor count %d",
				ErrPreconditionViolation, ni, survivorCount)
		}
		if ni <= prev {
			return nil, fmt.Errorf("%w: new index %d does not preserve order (follows %d)",
				ErrPreconditionViolation, ni, prev)
		}
		prev = ni
		result[ni] = orig[i]
	}
	return result, nil
}
