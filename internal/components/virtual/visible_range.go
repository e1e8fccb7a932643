package virtual

import (
	"fmt"
	"math"
)

// Range is an inclusive span of item indices. It is empty when First > Last.
type Range struct {
	First int
	Last  int
}

// EmptyRange realizes nothing.
var EmptyRange = Range{First: 0, Last: -1}

// Empty reports whether the range contains no indices.
func (r Range) Empty() bool { return r.First > r.Last }

// Len returns the number of indices in the range.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.Last - r.First + 1
}

// Contains reports whether index lies inside the range.
func (r Range) Contains(index int) bool {
	return index >= r.First && index <= r.Last
}

// Clamp restricts the range to [0, itemCount).
func (r Range) Clamp(itemCount int) Range {
	if itemCount <= 0 || r.Empty() {
		return EmptyRange
	}
	first := max(r.First, 0)
	last := min(r.Last, itemCount-1)
	if first > last {
		return EmptyRange
	}
	return Range{First: first, Last: last}
}

func (r Range) String() string {
	if r.Empty() {
		return "[]"
	}
	return fmt.Sprintf("[%d..%d]", r.First, r.Last)
}

// ComputeRange maps a scroll offset and viewport to the inclusive window of
// indices that should be realized, widened by overscan rows on each side.
//
// The overscan margin lets keyboard navigation land on a row that is already
// realized without waiting for another layout pass.
func ComputeRange(offsetY float64, viewport Size, itemHeight float64, itemCount, overscan int) Range {
	if itemCount <= 0 || !(itemHeight > 0) {
		return EmptyRange
	}
	overscan = max(overscan, 0)

	extent := float64(itemCount) * itemHeight
	y := math.Min(nonNegative(offsetY), extent)
	height := nonNegative(viewport.Height)

	firstVisible := int(math.Floor(y / itemHeight))
	lastVisible := int(math.Ceil((y+height)/itemHeight)) - 1
	// A zero-height viewport still realizes the row under the offset.
	lastVisible = max(lastVisible, firstVisible)

	firstVisible = min(firstVisible, itemCount-1)
	lastVisible = min(lastVisible, itemCount-1)

	return Range{
		First: max(0, firstVisible-overscan),
		Last:  min(itemCount-1, lastVisible+overscan),
	}
}

// PoolCapacity is the largest number of slots a pool needs for a viewport of
// the given height: every row that can intersect the viewport at an unaligned
// offset, plus overscan on both sides.
func PoolCapacity(viewportHeight, itemHeight float64, overscan int) int {
	if !(itemHeight > 0) {
		return 0
	}
	visible := int(math.Ceil(nonNegative(viewportHeight)/itemHeight)) + 1
	return visible + 2*max(overscan, 0)
}
