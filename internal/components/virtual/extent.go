package virtual

// ComputeExtent returns the full scrollable content size for itemCount rows of
// itemHeight pixels laid out in a single column as wide as the viewport.
//
// A zero item count yields a zero height, which callers treat as nothing to
// scroll.
func ComputeExtent(itemCount int, itemHeight, viewportWidth float64) Size {
	if itemCount <= 0 || !(itemHeight > 0) {
		return Size{Width: nonNegative(viewportWidth)}
	}
	return Size{
		Width:  nonNegative(viewportWidth),
		Height: float64(itemCount) * itemHeight,
	}
}
