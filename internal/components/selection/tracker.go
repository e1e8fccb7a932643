package selection

import "sync"

// Tracker keeps the cursor row and the store line it points at. Rows move
// when a filter changes; the source line does not, so it is what gets
// restored.
type Tracker struct {
	row    int
	source int
	mu     sync.RWMutex
}

// New creates a tracker with nothing selected
func New() *Tracker {
	return &Tracker{source: -1}
}

// Row returns the cursor row
func (t *Tracker) Row() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.row
}

// Source returns the selected store line, or -1
func (t *Tracker) Source() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.source
}

// HasSelection returns true if a store line is selected
func (t *Tracker) HasSelection() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.source >= 0
}

// Select puts the cursor on row, which shows store line source
func (t *Tracker) Select(row, source int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.row = row
	t.source = source
}

// Move moves the cursor by delta rows, clamped to [0, total). sourceOf maps
// the new row to its store line.
func (t *Tracker) Move(delta, total int, sourceOf func(row int) int) int {
	return t.MoveTo(t.Row()+delta, total, sourceOf)
}

// MoveTo places the cursor on row, clamped to [0, total)
func (t *Tracker) MoveTo(row, total int, sourceOf func(row int) int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if total <= 0 {
		t.row = 0
		t.source = -1
		return 0
	}
	t.row = max(0, min(row, total-1))
	t.source = sourceOf(t.row)
	return t.row
}

// Restore finds the selected store line again after the row mapping
// changed. rowOf reports the row showing a store line; when the line is
// hidden it returns the nearest earlier row and false. A hidden line keeps
// its identity so clearing the filter lands on it again.
func (t *Tracker) Restore(total int, rowOf func(source int) (int, bool)) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if total <= 0 {
		t.row = 0
		return 0
	}
	if t.source < 0 {
		t.row = max(0, min(t.row, total-1))
		return t.row
	}

	row, _ := rowOf(t.source)
	t.row = max(0, min(row, total-1))
	return t.row
}

// Clear clears all selection data
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.row = 0
	t.source = -1
}
