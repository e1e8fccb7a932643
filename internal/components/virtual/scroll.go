package virtual

import "math"

// Scroller owns the vertical scroll offset and implements the scroll
// protocol. Every write is clamped to [0, max(0, extent.Height-viewport.Height)]
// and, in Snapped mode, rounded to a whole pixel.
type Scroller struct {
	extent     Size
	viewport   Size
	itemHeight float64
	wheelLines int

	offset float64
	mode   ScrollMode

	onChange func(from, to float64)
}

var _ ScrollableSource = (*Scroller)(nil)

// NewScroller returns a scroller with an empty extent.
func NewScroller(itemHeight float64, wheelLines int, mode ScrollMode) *Scroller {
	return &Scroller{
		itemHeight: itemHeight,
		wheelLines: max(wheelLines, 0),
		mode:       mode,
	}
}

// SetMetrics updates the extent, viewport and item height, then re-clamps the
// current offset against them. It returns the applied offset.
func (s *Scroller) SetMetrics(extent, viewport Size, itemHeight float64) float64 {
	s.extent = extent.clamped()
	s.viewport = viewport.clamped()
	if itemHeight > 0 {
		s.itemHeight = itemHeight
	}
	return s.Refresh()
}

// Refresh re-applies the clamp to the current offset. Call it whenever the
// extent or viewport changes, e.g. after a filter removes rows.
func (s *Scroller) Refresh() float64 {
	return s.SetOffset(s.offset)
}

// Extent returns the scrollable content size.
func (s *Scroller) Extent() Size { return s.extent }

// Viewport returns the visible window size.
func (s *Scroller) Viewport() Size { return s.viewport }

// Offset returns the current scroll position.
func (s *Scroller) Offset() Point { return Point{Y: s.offset} }

// Mode returns the rounding policy.
func (s *Scroller) Mode() ScrollMode { return s.mode }

// ItemHeight returns the row height used by line and page steps.
func (s *Scroller) ItemHeight() float64 { return s.itemHeight }

// WheelLines returns the number of lines scrolled per wheel notch.
func (s *Scroller) WheelLines() int { return s.wheelLines }

// SetWheelLines changes the number of lines scrolled per wheel notch.
func (s *Scroller) SetWheelLines(n int) { s.wheelLines = max(n, 0) }

// OnOffsetChange registers a callback fired whenever the applied offset
// changes.
func (s *Scroller) OnOffsetChange(fn func(from, to float64)) {
	s.onChange = fn
}

// SetMode changes the rounding policy. Switching to Snapped re-rounds the
// current offset immediately.
func (s *Scroller) SetMode(mode ScrollMode) {
	s.mode = mode
	s.Refresh()
}

// MaxOffset returns the largest legal offset.
func (s *Scroller) MaxOffset() float64 {
	return math.Max(0, s.extent.Height-s.viewport.Height)
}

// AtEnd reports whether the view is scrolled as far down as it can go.
func (s *Scroller) AtEnd() bool {
	limit := s.MaxOffset()
	if s.mode == Snapped {
		limit = math.Floor(limit)
	}
	return s.offset >= limit
}

// SetOffset clamps y to the legal range, rounds it in Snapped mode and
// applies it. It returns the applied value.
func (s *Scroller) SetOffset(y float64) float64 {
	applied := s.clamp(y)
	if applied != s.offset {
		old := s.offset
		s.offset = applied
		if s.onChange != nil {
			s.onChange(old, applied)
		}
	}
	return applied
}

func (s *Scroller) clamp(y float64) float64 {
	if math.IsNaN(y) {
		y = 0
	}
	limit := s.MaxOffset()
	y = math.Min(math.Max(y, 0), limit)
	if s.mode == Snapped {
		rounded := math.Round(y)
		if rounded > limit {
			rounded = math.Floor(limit)
		}
		y = rounded
	}
	return y
}

// ScrollBy adjusts the offset by delta pixels.
func (s *Scroller) ScrollBy(delta float64) float64 {
	return s.SetOffset(s.offset + delta)
}

// LineUp scrolls up by one row.
func (s *Scroller) LineUp() float64 { return s.ScrollBy(-s.itemHeight) }

// LineDown scrolls down by one row.
func (s *Scroller) LineDown() float64 { return s.ScrollBy(s.itemHeight) }

// PageUp scrolls up by the number of whole rows that fit in the viewport.
func (s *Scroller) PageUp() float64 { return s.ScrollBy(-s.pageSize()) }

// PageDown scrolls down by the number of whole rows that fit in the viewport.
func (s *Scroller) PageDown() float64 { return s.ScrollBy(s.pageSize()) }

// ItemsPerPage returns how many whole rows fit in the viewport, at least one.
func (s *Scroller) ItemsPerPage() int {
	if !(s.itemHeight > 0) {
		return 1
	}
	return max(int(math.Floor(s.viewport.Height/s.itemHeight)), 1)
}

func (s *Scroller) pageSize() float64 {
	return float64(s.ItemsPerPage()) * s.itemHeight
}

// WheelUp scrolls up by notches wheel steps.
func (s *Scroller) WheelUp(notches int) float64 {
	return s.ScrollBy(-s.wheelDelta(notches))
}

// WheelDown scrolls down by notches wheel steps.
func (s *Scroller) WheelDown(notches int) float64 {
	return s.ScrollBy(s.wheelDelta(notches))
}

func (s *Scroller) wheelDelta(notches int) float64 {
	return s.itemHeight * float64(s.wheelLines) * float64(max(notches, 0))
}

// ScrollToTop moves to offset zero.
func (s *Scroller) ScrollToTop() float64 { return s.SetOffset(0) }

// ScrollToEnd moves to the largest legal offset.
func (s *Scroller) ScrollToEnd() float64 { return s.SetOffset(s.MaxOffset()) }

// MakeVisible scrolls the minimum amount needed to bring rect, given relative
// to the viewport, into view. A rect taller than the viewport is aligned to
// its top. The returned rect is rect re-expressed relative to the new
// viewport position. A rect that is already fully visible leaves the offset
// unchanged.
func (s *Scroller) MakeVisible(rect Rect) Rect {
	var delta float64
	switch {
	case rect.Top() < 0:
		delta = rect.Top()
	case rect.Bottom() > s.viewport.Height:
		delta = math.Min(rect.Bottom()-s.viewport.Height, rect.Top())
	}
	if delta == 0 {
		return rect
	}

	old := s.offset
	moved := s.SetOffset(old+delta) - old
	rect.Y -= moved
	return rect
}

// ItemRect returns the rectangle of the item at index relative to the
// current viewport.
func (s *Scroller) ItemRect(index int) Rect {
	return Rect{
		Y:      float64(index)*s.itemHeight - s.offset,
		Width:  s.viewport.Width,
		Height: s.itemHeight,
	}
}

// ScrollIntoView makes the item at index fully visible and returns the
// applied offset.
func (s *Scroller) ScrollIntoView(index int) float64 {
	if index < 0 {
		index = 0
	}
	s.MakeVisible(s.ItemRect(index))
	return s.offset
}
