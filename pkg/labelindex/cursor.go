// ABOUTME: Traversal cursor for Standard views in all four orientations
// ABOUTME: Mixed orientations walk same-start blocks found by boundary search

package labelindex

import "github.com/nainya/spanindex/pkg/labels"

// cursor walks the physical range [left, right] of a location-sorted slice in one
// orientation, yielding only labels whose end satisfies the view's end bounds.
//
// Labels sharing a start are contiguous and sorted by end, so the mixed
// orientations visit whole same-start blocks in the primary direction and walk
// each block in the secondary direction.
type cursor[T labels.Label] struct {
	items       []T
	b           bounds
	left, right int
	order       labels.Order

	started bool
	pos     int
	// current same-start block, [blockLo, blockHi)
	blockLo, blockHi int
}

func newCursor[T labels.Label](items []T, b bounds, left, right int, order labels.Order) *cursor[T] {
	return &cursor[T]{items: items, b: b, left: left, right: right, order: order}
}

// Next returns the next admitted label
func (c *cursor[T]) Next() (T, bool) {
	for {
		i, ok := c.advance()
		if !ok {
			var zero T
			return zero, false
		}
		if item := c.items[i]; c.b.admitsEnd(item.Location().End) {
			return item, true
		}
	}
}

// advance moves to the next physical index in traversal order
func (c *cursor[T]) advance() (int, bool) {
	if c.left > c.right {
		return 0, false
	}
	if !c.started {
		c.started = true
		return c.begin()
	}

	switch c.order {
	case labels.AscendingOrder:
		c.pos++
		return c.pos, c.pos <= c.right

	case labels.DescendingOrder:
		c.pos--
		return c.pos, c.pos >= c.left

	case labels.StartAscEndDesc:
		c.pos--
		if c.pos >= c.blockLo {
			return c.pos, true
		}
		if c.blockHi > c.right {
			return 0, false
		}
		c.blockLo = c.blockHi
		c.blockHi = c.nextBoundary(c.blockLo)
		c.pos = c.blockHi - 1
		return c.pos, true

	default: // StartDescEndAsc
		c.pos++
		if c.pos < c.blockHi {
			return c.pos, true
		}
		if c.blockLo <= c.left {
			return 0, false
		}
		c.blockHi = c.blockLo
		c.blockLo = c.prevBoundary(c.blockHi - 1)
		c.pos = c.blockLo
		return c.pos, true
	}
}

func (c *cursor[T]) begin() (int, bool) {
	switch c.order {
	case labels.AscendingOrder:
		c.pos = c.left
	case labels.DescendingOrder:
		c.pos = c.right
	case labels.StartAscEndDesc:
		c.blockLo = c.left
		c.blockHi = c.nextBoundary(c.left)
		c.pos = c.blockHi - 1
	default:
		c.blockHi = c.right + 1
		c.blockLo = c.prevBoundary(c.right)
		c.pos = c.blockLo
	}
	return c.pos, true
}

// nextBoundary returns the index just past the same-start block beginning at i,
// capped at right+1
func (c *cursor[T]) nextBoundary(i int) int {
	return firstStartAfter(c.items, i, c.right, c.items[i].Location().Start)
}

// prevBoundary returns the first index of the same-start block ending at i,
// floored at left
func (c *cursor[T]) prevBoundary(i int) int {
	return firstStartAtLeast(c.items, c.left, i, c.items[i].Location().Start)
}
