package virtual

import "slices"

// Slot is a realized row handle. A slot is bound to at most one item index at
// a time and is owned by the Recycler that created it. Hosts keep their
// per-row visual state in Value; it survives for as long as the slot stays
// bound to the same index.
//
// A retired slot must not be used after the Reconcile call that retired it.
type Slot[T any] struct {
	id    uint64
	index int
	last  int
	Value T
}

// ID returns a stable identifier for the slot, unique within its recycler.
func (s *Slot[T]) ID() uint64 { return s.id }

// Index returns the bound item index, or -1 if the slot is retired.
func (s *Slot[T]) Index() int { return s.index }

// Bound reports whether the slot is currently bound to an index.
func (s *Slot[T]) Bound() bool { return s.index >= 0 }

// Binding pairs an item index with the slot realizing it.
type Binding[T any] struct {
	Index int
	Slot  *Slot[T]
}

// RecyclerStats describes the pool. Allocated, Rebound and Discarded are
// cumulative counters.
type RecyclerStats struct {
	Bound     int
	Retired   int
	Allocated int
	Rebound   int
	Discarded int
}

// RecyclerOption configures a Recycler.
type RecyclerOption[T any] func(*Recycler[T])

// WithSlotFactory sets the function that builds Value for newly allocated
// slots.
func WithSlotFactory[T any](fn func() T) RecyclerOption[T] {
	return func(r *Recycler[T]) {
		r.newValue = fn
	}
}

// WithRebind sets a hook run when a retired slot is reassigned. previous is
// the index the slot was last bound to.
func WithRebind[T any](fn func(slot *Slot[T], previous int)) RecyclerOption[T] {
	return func(r *Recycler[T]) {
		r.rebind = fn
	}
}

// WithDiscard sets a hook run when a retired slot is dropped from the pool.
func WithDiscard[T any](fn func(slot *Slot[T])) RecyclerOption[T] {
	return func(r *Recycler[T]) {
		r.discard = fn
	}
}

// Recycler keeps a pool of slots bound to a moving window of item indices.
// It is not safe for concurrent use.
type Recycler[T any] struct {
	bound    map[int]*Slot[T]
	retired  []*Slot[T] // oldest first
	capacity int        // 0 means unbounded

	newValue func() T
	rebind   func(*Slot[T], int)
	discard  func(*Slot[T])

	nextID  uint64
	stats   RecyclerStats
	scratch []int
}

var _ SlotPool[struct{}] = (*Recycler[struct{}])(nil)

// NewRecycler creates an empty recycler.
func NewRecycler[T any](opts ...RecyclerOption[T]) *Recycler[T] {
	r := &Recycler[T]{
		bound: make(map[int]*Slot[T]),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetCapacity bounds the total number of pooled slots, bound and retired.
// Bound slots are never dropped to honour it; surplus retired slots are
// discarded oldest first at the end of the next Reconcile.
func (r *Recycler[T]) SetCapacity(n int) {
	r.capacity = max(n, 0)
}

// Capacity returns the configured pool bound.
func (r *Recycler[T]) Capacity() int { return r.capacity }

// Reconcile updates the pool so that exactly the indices in desired are bound,
// and returns the bindings in ascending index order.
//
// Slots whose index is still desired keep their binding. Slots outside the
// range are retired, in ascending index order, to the back of the free queue.
// Missing indices take the oldest retired slot first and allocate only when
// the queue is empty. Indices at or past itemCount are clamped away.
func (r *Recycler[T]) Reconcile(desired Range, itemCount int) []Binding[T] {
	desired = desired.Clamp(itemCount)

	r.scratch = r.scratch[:0]
	for idx, s := range r.bound {
		if s.index != idx {
			assertf(false, "slot %d records index %d but is mapped at %d", s.id, s.index, idx)
			r.scratch = append(r.scratch, idx)
			continue
		}
		if !desired.Contains(idx) {
			r.scratch = append(r.scratch, idx)
		}
	}
	slices.Sort(r.scratch)
	for _, idx := range r.scratch {
		r.retire(idx)
	}

	bindings := make([]Binding[T], 0, desired.Len())
	for i := desired.First; i <= desired.Last; i++ {
		s, ok := r.bound[i]
		if !ok {
			s = r.acquire(i)
			r.bound[i] = s
		}
		bindings = append(bindings, Binding[T]{Index: i, Slot: s})
	}

	r.trim()
	return bindings
}

// Lookup returns the slot bound to index.
func (r *Recycler[T]) Lookup(index int) (*Slot[T], bool) {
	s, ok := r.bound[index]
	return s, ok
}

// Len returns the number of pooled slots, bound and retired.
func (r *Recycler[T]) Len() int {
	return len(r.bound) + len(r.retired)
}

// Clear retires every bound slot.
func (r *Recycler[T]) Clear() {
	r.Reconcile(EmptyRange, 0)
}

// Stats returns a snapshot of the pool counters.
func (r *Recycler[T]) Stats() RecyclerStats {
	st := r.stats
	st.Bound = len(r.bound)
	st.Retired = len(r.retired)
	return st
}

func (r *Recycler[T]) retire(idx int) {
	s := r.bound[idx]
	delete(r.bound, idx)
	if s.index >= 0 {
		s.last = s.index
	}
	s.index = -1
	r.retired = append(r.retired, s)
}

func (r *Recycler[T]) acquire(index int) *Slot[T] {
	if len(r.retired) > 0 {
		s := r.retired[0]
		r.retired = slices.Delete(r.retired, 0, 1)
		s.index = index
		r.stats.Rebound++
		if r.rebind != nil {
			r.rebind(s, s.last)
		}
		return s
	}

	r.nextID++
	s := &Slot[T]{id: r.nextID, index: index, last: -1}
	if r.newValue != nil {
		s.Value = r.newValue()
	}
	r.stats.Allocated++
	return s
}

func (r *Recycler[T]) trim() {
	if r.capacity == 0 {
		return
	}
	excess := min(r.Len()-r.capacity, len(r.retired))
	if excess <= 0 {
		return
	}
	for _, s := range r.retired[:excess] {
		if r.discard != nil {
			r.discard(s)
		}
	}
	r.retired = slices.Delete(r.retired, 0, excess)
	r.stats.Discarded += excess
}
