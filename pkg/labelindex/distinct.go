// ABOUTME: Distinct engine for labels that never overlap
// ABOUTME: Every query is a binary search on start over one contiguous range

package labelindex

import (
	"iter"

	"github.com/nainya/spanindex/pkg/labels"
)

// distinctView is the contiguous physical range [left, right] walked in one direction.
// Without overlap, ends increase with starts, so the end orientation is immaterial
// and inside/left-of queries are contiguous runs.
type distinctView[T labels.Label] struct {
	items       []T
	left, right int
	ascending   bool
}

func (v *distinctView[T]) with(left, right int) *distinctView[T] {
	if left > right {
		left, right = 0, -1
	}
	return &distinctView[T]{items: v.items, left: left, right: right, ascending: v.ascending}
}

func (v *distinctView[T]) end(i int) int {
	return v.items[i].Location().End
}

// Containing takes the last label starting at or before start. A label before it
// can only also qualify when both touch a zero-length query point, so the scan
// back is bounded by the labels sharing that point.
func (v *distinctView[T]) Containing(start, end int) labels.Index[T] {
	labels.MustCheck(start, end)
	hi := firstStartAfter(v.items, v.left, v.right, start) - 1
	if hi < v.left || v.end(hi) < end {
		return v.with(0, -1)
	}
	lo := hi
	for lo > v.left && v.end(lo-1) >= end {
		lo--
	}
	return v.with(lo, hi)
}

func (v *distinctView[T]) ContainingSpan(s labels.Span) labels.Index[T] {
	return v.Containing(s.Start, s.End)
}

func (v *distinctView[T]) Inside(start, end int) labels.Index[T] {
	labels.MustCheck(start, end)
	lo := firstStartAtLeast(v.items, v.left, v.right, start)
	hi := search(lo, v.right, func(i int) bool { return v.end(i) > end }) - 1
	return v.with(lo, hi)
}

func (v *distinctView[T]) InsideSpan(s labels.Span) labels.Index[T] {
	return v.Inside(s.Start, s.End)
}

func (v *distinctView[T]) BeginsInside(start, end int) labels.Index[T] {
	labels.MustCheck(start, end)
	lo := firstStartAtLeast(v.items, v.left, v.right, start)
	hi := firstStartAtLeast(v.items, lo, v.right, end) - 1
	return v.with(lo, hi)
}

func (v *distinctView[T]) BeginsInsideSpan(s labels.Span) labels.Index[T] {
	return v.BeginsInside(s.Start, s.End)
}

func (v *distinctView[T]) LeftOf(i int) labels.Index[T] {
	labels.MustCheckPosition(i)
	hi := search(v.left, v.right, func(j int) bool { return v.end(j) > i }) - 1
	return v.with(v.left, hi)
}

func (v *distinctView[T]) RightOf(i int) labels.Index[T] {
	labels.MustCheckPosition(i)
	return v.with(firstStartAtLeast(v.items, v.left, v.right, i), v.right)
}

// AtLocation returns the run of labels located exactly at s. More than one
// result means the non-overlap invariant was already broken by the caller.
func (v *distinctView[T]) AtLocation(s labels.Span) labels.Index[T] {
	labels.MustCheck(s.Start, s.End)
	lo := firstLocationAtLeast(v.items, v.left, v.right, s)
	hi := firstLocationAfter(v.items, lo, v.right, s) - 1
	return v.with(lo, hi)
}

func (v *distinctView[T]) direction(ascending bool) labels.Index[T] {
	if ascending == v.ascending {
		return v
	}
	return &distinctView[T]{items: v.items, left: v.left, right: v.right, ascending: ascending}
}

func (v *distinctView[T]) AscendingStart() labels.Index[T]  { return v.direction(true) }
func (v *distinctView[T]) DescendingStart() labels.Index[T] { return v.direction(false) }
func (v *distinctView[T]) Ascending() labels.Index[T]       { return v.direction(true) }
func (v *distinctView[T]) Descending() labels.Index[T]      { return v.direction(false) }

// AscendingEnd keeps the current order: start and end order coincide
func (v *distinctView[T]) AscendingEnd() labels.Index[T] { return v }

// DescendingEnd keeps the current order: start and end order coincide
func (v *distinctView[T]) DescendingEnd() labels.Index[T] { return v }

func (v *distinctView[T]) at(k int) T {
	if v.ascending {
		return v.items[v.left+k]
	}
	return v.items[v.right-k]
}

func (v *distinctView[T]) First() (T, bool) {
	if v.left > v.right {
		var zero T
		return zero, false
	}
	return v.at(0), true
}

func (v *distinctView[T]) Last() (T, bool) {
	if v.left > v.right {
		var zero T
		return zero, false
	}
	return v.at(v.Len() - 1), true
}

func (v *distinctView[T]) ContainsSpan(s labels.Span) bool {
	return !v.AtLocation(s).IsEmpty()
}

func (v *distinctView[T]) Contains(l T) bool {
	for candidate := range v.AtLocation(l.Location()).All() {
		if labels.Same(candidate, l) {
			return true
		}
	}
	return false
}

func (v *distinctView[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for k := range v.Len() {
			if !yield(v.at(k)) {
				return
			}
		}
	}
}

func (v *distinctView[T]) List() []T {
	out := make([]T, 0, v.Len())
	for item := range v.All() {
		out = append(out, item)
	}
	return out
}

func (v *distinctView[T]) Len() int {
	return v.right - v.left + 1
}

func (v *distinctView[T]) IsEmpty() bool {
	return v.left > v.right
}

func (v *distinctView[T]) Kind() labels.Kind {
	return labels.Distinct
}

func (v *distinctView[T]) Order() labels.Order {
	if v.ascending {
		return labels.AscendingOrder
	}
	return labels.DescendingOrder
}
