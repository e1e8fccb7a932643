// Package virtual implements a virtual scrolling engine for long lists of
// fixed-height rows.
//
// A host calls Driver.LayoutPass once per layout cycle. The driver computes the
// content extent, re-clamps the scroll offset, works out which rows must be
// realized (plus an overscan margin), reconciles a pool of recyclable row
// slots against that window and returns the pixel rectangle of every realized
// slot. Everything is synchronous and recomputed from current inputs, so the
// engine may be re-entered at any point of the host's frame.
package virtual

import "math"

// Size is a width/height pair in device-independent pixels.
type Size struct {
	Width  float64
	Height float64
}

// clamped returns s with negative or NaN dimensions replaced by zero.
func (s Size) clamped() Size {
	return Size{Width: nonNegative(s.Width), Height: nonNegative(s.Height)}
}

// Point is a position in content space.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Top returns the top edge of the rectangle.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the bottom edge of the rectangle.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// ScrollMode selects how offsets are rounded when they are written.
type ScrollMode int

const (
	// Pixel keeps offsets as continuous values.
	Pixel ScrollMode = iota
	// Snapped rounds every written offset to the nearest whole pixel. It
	// never rounds to an item boundary.
	Snapped
)

func (m ScrollMode) String() string {
	switch m {
	case Pixel:
		return "pixel"
	case Snapped:
		return "snapped"
	default:
		return "unknown"
	}
}

// ParseScrollMode converts a configuration string into a ScrollMode.
func ParseScrollMode(s string) (ScrollMode, bool) {
	switch s {
	case "pixel", "":
		return Pixel, true
	case "snapped", "snap":
		return Snapped, true
	}
	return Pixel, false
}

// Policy defaults.
const (
	DefaultOverscan   = 3
	DefaultWheelLines = 3
)

// ScrollableSource is the read-only scroll state a host scrollbar binds to.
type ScrollableSource interface {
	Extent() Size
	Viewport() Size
	Offset() Point
}

// ItemSource provides the current logical item count. The count may change
// between layout passes.
type ItemSource interface {
	Count() int
}

// SlotPool maps item indices to realized row slots.
type SlotPool[T any] interface {
	Reconcile(desired Range, itemCount int) []Binding[T]
	Lookup(index int) (*Slot[T], bool)
	Len() int
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
