// ABOUTME: Standard engine for labels that may overlap
// ABOUTME: Views are bound rectangles over one location-sorted slice

package labelindex

import (
	"iter"
	"sync/atomic"

	"github.com/nainya/spanindex/pkg/labels"
)

// standardView is a bounded, oriented window over a slice sorted by (start, end).
// [left, right] is the physical range whose starts satisfy the start bounds;
// end bounds are enforced while walking.
type standardView[T labels.Label] struct {
	items       []T
	b           bounds
	left, right int
	order       labels.Order

	// admitted label count plus one; zero until first computed
	size atomic.Int64
}

func newStandardView[T labels.Label](items []T, b bounds, order labels.Order) *standardView[T] {
	return &standardView[T]{items: items, b: b, left: 0, right: len(items) - 1, order: order}
}

func (v *standardView[T]) with(b bounds, left, right int) *standardView[T] {
	if left > right {
		left, right = 0, -1
	}
	return &standardView[T]{items: v.items, b: b, left: left, right: right, order: v.order}
}

// narrow intersects the view with nb and re-derives the physical range
func (v *standardView[T]) narrow(nb bounds) *standardView[T] {
	nb = v.b.intersect(nb)
	if nb.empty() || v.left > v.right {
		return v.with(nb, 0, -1)
	}

	left, right := v.left, v.right
	if nb.minBegin != v.b.minBegin {
		left = firstStartAtLeast(v.items, left, right, nb.minBegin)
	}
	if nb.maxBegin != v.b.maxBegin {
		right = firstStartAfter(v.items, left, right, nb.maxBegin) - 1
	}
	return v.with(nb, left, right)
}

func (v *standardView[T]) reorder(order labels.Order) labels.Index[T] {
	if order == v.order {
		return v
	}
	nv := &standardView[T]{items: v.items, b: v.b, left: v.left, right: v.right, order: order}
	nv.size.Store(v.size.Load())
	return nv
}

func (v *standardView[T]) Containing(start, end int) labels.Index[T] {
	labels.MustCheck(start, end)
	return v.narrow(containingBounds(start, end))
}

func (v *standardView[T]) ContainingSpan(s labels.Span) labels.Index[T] {
	return v.Containing(s.Start, s.End)
}

func (v *standardView[T]) Inside(start, end int) labels.Index[T] {
	labels.MustCheck(start, end)
	return v.narrow(insideBounds(start, end))
}

func (v *standardView[T]) InsideSpan(s labels.Span) labels.Index[T] {
	return v.Inside(s.Start, s.End)
}

func (v *standardView[T]) BeginsInside(start, end int) labels.Index[T] {
	labels.MustCheck(start, end)
	return v.narrow(beginsInsideBounds(start, end))
}

func (v *standardView[T]) BeginsInsideSpan(s labels.Span) labels.Index[T] {
	return v.BeginsInside(s.Start, s.End)
}

func (v *standardView[T]) LeftOf(i int) labels.Index[T] {
	labels.MustCheckPosition(i)
	return v.narrow(leftOfBounds(i))
}

func (v *standardView[T]) RightOf(i int) labels.Index[T] {
	labels.MustCheckPosition(i)
	return v.narrow(rightOfBounds(i))
}

// AtLocation searches on the full location order, so the result range holds
// exactly the labels equal to s, duplicates included
func (v *standardView[T]) AtLocation(s labels.Span) labels.Index[T] {
	labels.MustCheck(s.Start, s.End)
	nb := v.b.intersect(pointBounds(s.Start, s.End))
	if nb.empty() || v.left > v.right {
		return v.with(nb, 0, -1)
	}
	left := firstLocationAtLeast(v.items, v.left, v.right, s)
	right := firstLocationAfter(v.items, left, v.right, s) - 1
	return v.with(nb, left, right)
}

func (v *standardView[T]) AscendingStart() labels.Index[T] {
	return v.reorder(v.order.WithStart(true))
}

func (v *standardView[T]) DescendingStart() labels.Index[T] {
	return v.reorder(v.order.WithStart(false))
}

func (v *standardView[T]) AscendingEnd() labels.Index[T] {
	return v.reorder(v.order.WithEnd(true))
}

func (v *standardView[T]) DescendingEnd() labels.Index[T] {
	return v.reorder(v.order.WithEnd(false))
}

func (v *standardView[T]) Ascending() labels.Index[T] {
	return v.reorder(labels.AscendingOrder)
}

func (v *standardView[T]) Descending() labels.Index[T] {
	return v.reorder(labels.DescendingOrder)
}

func (v *standardView[T]) cursor(order labels.Order) *cursor[T] {
	return newCursor(v.items, v.b, v.left, v.right, order)
}

func (v *standardView[T]) First() (T, bool) {
	return v.cursor(v.order).Next()
}

func (v *standardView[T]) Last() (T, bool) {
	return v.cursor(v.order.Reverse()).Next()
}

func (v *standardView[T]) ContainsSpan(s labels.Span) bool {
	return !v.AtLocation(s).IsEmpty()
}

func (v *standardView[T]) Contains(l T) bool {
	for candidate := range v.AtLocation(l.Location()).All() {
		if labels.Same(candidate, l) {
			return true
		}
	}
	return false
}

func (v *standardView[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		c := v.cursor(v.order)
		for {
			item, ok := c.Next()
			if !ok || !yield(item) {
				return
			}
		}
	}
}

func (v *standardView[T]) List() []T {
	out := make([]T, 0, v.Len())
	for item := range v.All() {
		out = append(out, item)
	}
	return out
}

// Len walks the physical range once and caches the admitted count
func (v *standardView[T]) Len() int {
	if n := v.size.Load(); n > 0 {
		return int(n - 1)
	}
	n := 0
	for i := v.left; i <= v.right; i++ {
		if v.b.admitsEnd(v.items[i].Location().End) {
			n++
		}
	}
	v.size.Store(int64(n) + 1)
	return n
}

func (v *standardView[T]) IsEmpty() bool {
	if n := v.size.Load(); n > 0 {
		return n == 1
	}
	_, ok := v.First()
	return !ok
}

func (v *standardView[T]) Kind() labels.Kind {
	return labels.Standard
}

func (v *standardView[T]) Order() labels.Order {
	return v.order
}
