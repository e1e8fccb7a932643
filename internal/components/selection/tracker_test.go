package selection

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func identity(row int) int { return row }

// rowsOf builds a row mapping for a filtered view showing the given lines.
func rowsOf(lines []int) (func(int) int, func(int) (int, bool)) {
	sourceOf := func(row int) int { return lines[row] }
	rowOf := func(source int) (int, bool) {
		i := sort.SearchInts(lines, source)
		if i < len(lines) && lines[i] == source {
			return i, true
		}
		return i - 1, false
	}
	return sourceOf, rowOf
}

func TestTrackerMove(t *testing.T) {
	tr := New()
	assert.False(t, tr.HasSelection())

	assert.Equal(t, 3, tr.Move(3, 10, identity))
	assert.Equal(t, 3, tr.Source())

	assert.Equal(t, 9, tr.Move(100, 10, identity), "clamped to last row")
	assert.Equal(t, 0, tr.Move(-100, 10, identity), "clamped to first row")

	assert.Equal(t, 0, tr.Move(1, 0, identity))
	assert.False(t, tr.HasSelection(), "empty list clears selection")
}

func TestTrackerRestoreAcrossFilter(t *testing.T) {
	tr := New()
	tr.MoveTo(7, 20, identity)

	sourceOf, rowOf := rowsOf([]int{2, 5, 7, 11})
	assert.Equal(t, 2, tr.Restore(4, rowOf), "line 7 is row 2 in the filtered view")
	assert.Equal(t, 7, tr.Source())

	tr.Move(1, 4, sourceOf)
	assert.Equal(t, 11, tr.Source())

	// Filter cleared: line 11 is row 11 again.
	assert.Equal(t, 11, tr.Restore(20, func(s int) (int, bool) { return s, true }))
}

func TestTrackerRestoreHiddenLine(t *testing.T) {
	tr := New()
	tr.MoveTo(6, 20, identity)

	_, rowOf := rowsOf([]int{2, 5, 7})
	assert.Equal(t, 1, tr.Restore(3, rowOf), "nearest earlier visible row")
	assert.Equal(t, 6, tr.Source(), "identity survives while hidden")

	_, rowOf = rowsOf([]int{8, 9})
	assert.Equal(t, 0, tr.Restore(2, rowOf), "no earlier row clamps to the top")
}

func TestTrackerRestoreWithoutSelection(t *testing.T) {
	tr := New()
	tr.Select(15, -1)
	assert.Equal(t, 4, tr.Restore(5, nil))
	assert.Equal(t, 0, tr.Restore(0, nil))
}

func TestTrackerClear(t *testing.T) {
	tr := New()
	tr.Select(4, 4)
	tr.Clear()
	assert.Equal(t, 0, tr.Row())
	assert.Equal(t, -1, tr.Source())
}
