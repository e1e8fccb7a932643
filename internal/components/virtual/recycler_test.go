package virtual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	rendered string
	rebinds  int
}

func newTestRecycler() *Recycler[*testRow] {
	return NewRecycler(
		WithSlotFactory(func() *testRow { return &testRow{} }),
		WithRebind(func(s *Slot[*testRow], _ int) {
			s.Value.rendered = ""
			s.Value.rebinds++
		}),
	)
}

func slotsByIndex[T any](bindings []Binding[T]) map[int]*Slot[T] {
	out := make(map[int]*Slot[T], len(bindings))
	for _, b := range bindings {
		out[b.Index] = b.Slot
	}
	return out
}

func TestRecyclerAllocatesLazily(t *testing.T) {
	r := newTestRecycler()

	bindings := r.Reconcile(Range{0, 4}, 100)
	require.Len(t, bindings, 5)

	ids := make(map[uint64]bool)
	for i, b := range bindings {
		assert.Equal(t, i, b.Index)
		assert.Equal(t, i, b.Slot.Index())
		assert.True(t, b.Slot.Bound())
		assert.NotNil(t, b.Slot.Value)
		ids[b.Slot.ID()] = true
	}
	assert.Len(t, ids, 5, "every index should get its own slot")

	st := r.Stats()
	assert.Equal(t, 5, st.Allocated)
	assert.Equal(t, 5, st.Bound)
	assert.Equal(t, 0, st.Rebound)
}

func TestRecyclerPreservesIdentityForUnchangedRange(t *testing.T) {
	r := newTestRecycler()

	first := slotsByIndex(r.Reconcile(Range{10, 20}, 100))
	for _, s := range first {
		s.Value.rendered = "cached"
	}
	second := slotsByIndex(r.Reconcile(Range{10, 20}, 100))

	require.Len(t, second, len(first))
	for idx, s := range first {
		assert.Same(t, s, second[idx], "index %d rebound on a no-op reconcile", idx)
		assert.Equal(t, "cached", second[idx].Value.rendered)
	}
	assert.Equal(t, 11, r.Stats().Allocated)
	assert.Equal(t, 0, r.Stats().Rebound)
}

func TestRecyclerRebindsRetiredSlots(t *testing.T) {
	r := newTestRecycler()

	before := slotsByIndex(r.Reconcile(Range{0, 4}, 100))
	after := slotsByIndex(r.Reconcile(Range{2, 6}, 100))

	for _, idx := range []int{2, 3, 4} {
		assert.Same(t, before[idx], after[idx], "index %d should keep its slot", idx)
	}
	assert.Same(t, before[0], after[5], "oldest retired slot should be reused first")
	assert.Same(t, before[1], after[6])
	assert.Equal(t, 1, after[5].Value.rebinds)
	assert.Equal(t, 5, r.Stats().Allocated, "no allocation when retired slots are available")
	assert.Equal(t, 2, r.Stats().Rebound)
}

func TestRecyclerReusesOldestRetiredFirst(t *testing.T) {
	r := newTestRecycler()

	initial := slotsByIndex(r.Reconcile(Range{0, 4}, 100))
	r.Reconcile(Range{0, 2}, 100) // retires 3, 4
	r.Reconcile(Range{0, 0}, 100) // retires 1, 2

	got := slotsByIndex(r.Reconcile(Range{0, 2}, 100))
	assert.Same(t, initial[3], got[1])
	assert.Same(t, initial[4], got[2])
	assert.Equal(t, 2, r.Stats().Retired, "slots 1 and 2 remain queued")
}

func TestRecyclerRebindReportsPreviousIndex(t *testing.T) {
	var previous []int
	r := NewRecycler(WithRebind(func(_ *Slot[int], prev int) {
		previous = append(previous, prev)
	}))

	r.Reconcile(Range{0, 1}, 10)
	r.Reconcile(Range{5, 6}, 10)
	assert.Equal(t, []int{0, 1}, previous)
}

func TestRecyclerClampsOutOfRangeRequest(t *testing.T) {
	r := newTestRecycler()

	bindings := r.Reconcile(Range{5, 20}, 10)
	require.Len(t, bindings, 5)
	assert.Equal(t, 5, bindings[0].Index)
	assert.Equal(t, 9, bindings[len(bindings)-1].Index)

	_, ok := r.Lookup(10)
	assert.False(t, ok)
}

func TestRecyclerShrinkRetiresOutOfRangeSlots(t *testing.T) {
	r := newTestRecycler()
	r.Reconcile(Range{0, 9}, 10)

	bindings := r.Reconcile(Range{0, 9}, 5)
	require.Len(t, bindings, 5)
	for _, b := range bindings {
		assert.Less(t, b.Index, 5)
	}
	for idx := 5; idx < 10; idx++ {
		_, ok := r.Lookup(idx)
		assert.False(t, ok, "index %d should no longer be bound", idx)
	}
	assert.Equal(t, 5, r.Stats().Retired)
}

func TestRecyclerEmptyRangeRetiresEverything(t *testing.T) {
	r := newTestRecycler()
	r.Reconcile(Range{0, 9}, 10)

	bindings := r.Reconcile(EmptyRange, 0)
	assert.Empty(t, bindings)
	assert.Equal(t, 0, r.Stats().Bound)
	assert.Equal(t, 10, r.Len())

	r.Reconcile(Range{0, 3}, 10)
	r.Clear()
	assert.Equal(t, 0, r.Stats().Bound)
}

func TestRecyclerCapacityTrimsRetiredSlots(t *testing.T) {
	var discarded []uint64
	r := NewRecycler(WithDiscard(func(s *Slot[int]) {
		discarded = append(discarded, s.ID())
	}))
	r.SetCapacity(5)

	r.Reconcile(Range{0, 4}, 100)
	r.Reconcile(Range{10, 14}, 100)
	assert.Equal(t, 5, r.Len())
	assert.Equal(t, 5, r.Stats().Allocated)

	r.SetCapacity(3)
	r.Reconcile(Range{10, 12}, 100)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 2, r.Stats().Discarded)
	assert.Len(t, discarded, 2)
}

func TestRecyclerNeverBindsDuplicates(t *testing.T) {
	r := newTestRecycler()
	r.SetCapacity(PoolCapacity(200, 20, 3))

	for offset := 0.0; offset <= 19800; offset += 37 {
		desired := ComputeRange(offset, Size{Height: 200}, 20, 1000, 3)
		bindings := r.Reconcile(desired, 1000)

		seen := make(map[uint64]int)
		for _, b := range bindings {
			if prev, dup := seen[b.Slot.ID()]; dup {
				t.Fatalf("slot %d bound to both %d and %d", b.Slot.ID(), prev, b.Index)
			}
			seen[b.Slot.ID()] = b.Index
			s, ok := r.Lookup(b.Index)
			require.True(t, ok)
			require.Same(t, b.Slot, s)
		}
		require.Equal(t, desired.Len(), len(bindings))
		require.LessOrEqual(t, r.Len(), r.Capacity())
	}
}
