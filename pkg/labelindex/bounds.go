package labelindex

import "math"

// bounds is an axis-aligned rectangle in (start, end) space, all limits inclusive
type bounds struct {
	minBegin, maxBegin int
	minEnd, maxEnd     int
}

var unbounded = bounds{minBegin: 0, maxBegin: math.MaxInt, minEnd: 0, maxEnd: math.MaxInt}

func (b bounds) intersect(o bounds) bounds {
	return bounds{
		minBegin: max(b.minBegin, o.minBegin),
		maxBegin: min(b.maxBegin, o.maxBegin),
		minEnd:   max(b.minEnd, o.minEnd),
		maxEnd:   min(b.maxEnd, o.maxEnd),
	}
}

func (b bounds) empty() bool {
	return b.minBegin > b.maxBegin || b.minEnd > b.maxEnd
}

func (b bounds) admitsEnd(end int) bool {
	return b.minEnd <= end && end <= b.maxEnd
}

func containingBounds(start, end int) bounds {
	return bounds{minBegin: 0, maxBegin: start, minEnd: end, maxEnd: math.MaxInt}
}

func insideBounds(start, end int) bounds {
	return bounds{minBegin: start, maxBegin: end, minEnd: start, maxEnd: end}
}

// beginsInsideBounds admits starts in [start, end); a zero-length query admits nothing
func beginsInsideBounds(start, end int) bounds {
	return bounds{minBegin: start, maxBegin: end - 1, minEnd: 0, maxEnd: math.MaxInt}
}

func leftOfBounds(i int) bounds {
	return bounds{minBegin: 0, maxBegin: i, minEnd: 0, maxEnd: i}
}

func rightOfBounds(i int) bounds {
	return bounds{minBegin: i, maxBegin: math.MaxInt, minEnd: i, maxEnd: math.MaxInt}
}

func pointBounds(start, end int) bounds {
	return bounds{minBegin: start, maxBegin: start, minEnd: end, maxEnd: end}
}
