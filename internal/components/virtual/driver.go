package virtual

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidItemHeight is returned when the configured item height is not
	// a positive finite number.
	ErrInvalidItemHeight = errors.New("virtual: item height must be positive")
	// ErrInvalidOverscan is returned for a negative overscan.
	ErrInvalidOverscan = errors.New("virtual: overscan must not be negative")
	// ErrInvalidWheelLines is returned for a negative wheel step.
	ErrInvalidWheelLines = errors.New("virtual: wheel lines must not be negative")
)

// Options configures a Driver.
type Options struct {
	ItemHeight float64
	Overscan   int
	WheelLines int
	Mode       ScrollMode
}

// DefaultOptions returns one-pixel rows with the default overscan and wheel
// step.
func DefaultOptions() Options {
	return Options{
		ItemHeight: 1,
		Overscan:   DefaultOverscan,
		WheelLines: DefaultWheelLines,
		Mode:       Pixel,
	}
}

// Validate reports configuration errors.
func (o Options) Validate() error {
	if !(o.ItemHeight > 0) || math.IsInf(o.ItemHeight, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidItemHeight, o.ItemHeight)
	}
	if o.Overscan < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOverscan, o.Overscan)
	}
	if o.WheelLines < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWheelLines, o.WheelLines)
	}
	return nil
}

// Placement is a realized slot and the rectangle, in content space, where the
// host should draw it.
type Placement[T any] struct {
	Index int
	Slot  *Slot[T]
	Rect  Rect
}

// Driver is the single entry point a host calls on every layout pass. It
// sequences extent, offset clamping, range computation and slot
// reconciliation in that fixed order.
type Driver[T any] struct {
	itemHeight float64
	overscan   int
	itemCount  int

	extent   Size
	viewport Size
	rng      Range

	scroller *Scroller
	recycler *Recycler[T]
}

var _ ScrollableSource = (*Driver[struct{}])(nil)

// New validates opts and returns a driver. Configuration errors are reported
// here once; later passes clamp bad inputs instead of failing.
func New[T any](opts Options, recyclerOpts ...RecyclerOption[T]) (*Driver[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Driver[T]{
		itemHeight: opts.ItemHeight,
		overscan:   opts.Overscan,
		rng:        EmptyRange,
		scroller:   NewScroller(opts.ItemHeight, opts.WheelLines, opts.Mode),
		recycler:   NewRecycler(recyclerOpts...),
	}, nil
}

// LayoutPass recomputes the realized window for the given inputs and returns
// one placement per realized row in ascending index order.
//
// A non-positive itemHeight keeps the last valid height. Calling LayoutPass
// twice with the same inputs returns the same slots at the same rectangles.
func (d *Driver[T]) LayoutPass(itemCount int, itemHeight float64, viewport Size) []Placement[T] {
	if itemHeight > 0 && !math.IsInf(itemHeight, 1) {
		d.itemHeight = itemHeight
	}
	d.itemCount = max(itemCount, 0)
	d.viewport = viewport.clamped()

	d.extent = ComputeExtent(d.itemCount, d.itemHeight, d.viewport.Width)
	offset := d.scroller.SetMetrics(d.extent, d.viewport, d.itemHeight)
	d.rng = ComputeRange(offset, d.viewport, d.itemHeight, d.itemCount, d.overscan)

	d.recycler.SetCapacity(PoolCapacity(d.viewport.Height, d.itemHeight, d.overscan))
	bindings := d.recycler.Reconcile(d.rng, d.itemCount)

	placements := make([]Placement[T], len(bindings))
	for i, b := range bindings {
		placements[i] = Placement[T]{
			Index: b.Index,
			Slot:  b.Slot,
			Rect: Rect{
				Y:      float64(b.Index) * d.itemHeight,
				Width:  d.viewport.Width,
				Height: d.itemHeight,
			},
		}
	}
	return placements
}

// Pass runs LayoutPass with the count reported by src and the current item
// height.
func (d *Driver[T]) Pass(src ItemSource, viewport Size) []Placement[T] {
	count := 0
	if src != nil {
		count = src.Count()
	}
	return d.LayoutPass(count, d.itemHeight, viewport)
}

// Scroller returns the scroll controller for host input handling.
func (d *Driver[T]) Scroller() *Scroller { return d.scroller }

// Extent returns the content size from the last pass.
func (d *Driver[T]) Extent() Size { return d.extent }

// Viewport returns the viewport from the last pass.
func (d *Driver[T]) Viewport() Size { return d.viewport }

// Offset returns the current scroll offset.
func (d *Driver[T]) Offset() Point { return d.scroller.Offset() }

// Range returns the desired window from the last pass.
func (d *Driver[T]) Range() Range { return d.rng }

// ItemCount returns the item count from the last pass.
func (d *Driver[T]) ItemCount() int { return d.itemCount }

// ItemHeight returns the row height in effect.
func (d *Driver[T]) ItemHeight() float64 { return d.itemHeight }

// Overscan returns the overscan margin in rows.
func (d *Driver[T]) Overscan() int { return d.overscan }

// SetOverscan changes the overscan margin for subsequent passes. Negative
// values are treated as zero.
func (d *Driver[T]) SetOverscan(n int) { d.overscan = max(n, 0) }

// Lookup returns the slot realizing index, if any.
func (d *Driver[T]) Lookup(index int) (*Slot[T], bool) {
	return d.recycler.Lookup(index)
}

// Stats returns the recycler counters.
func (d *Driver[T]) Stats() RecyclerStats { return d.recycler.Stats() }

// VisibleRange returns the rows intersecting the viewport, without overscan.
func (d *Driver[T]) VisibleRange() Range {
	return ComputeRange(d.scroller.offset, d.viewport, d.itemHeight, d.itemCount, 0)
}
