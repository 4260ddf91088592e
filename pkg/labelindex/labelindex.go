// Package labelindex implements the two label index engines: a Standard engine for
// labels that may overlap and a Distinct engine for labels that never do. Both keep
// a single sorted slice and answer every query by binary search plus a bounded,
// lazily filtered walk over that slice. Views never copy or re-sort it.
package labelindex

import (
	"cmp"
	"slices"
	"sort"

	"github.com/nainya/spanindex/pkg/labels"
)

// New sorts a copy of items and wraps it in the engine selected by kind
func New[T labels.Label](kind labels.Kind, items []T) labels.Index[T] {
	if kind == labels.Distinct {
		return NewDistinct(items)
	}
	return NewStandard(items)
}

// NewStandard builds an overlap-tolerant index. Labels with identical locations
// keep their relative input order.
func NewStandard[T labels.Label](items []T) labels.Index[T] {
	return newStandardView(sortedCopy(items), unbounded, labels.AscendingOrder)
}

// NewDistinct builds an index for non-overlapping labels. Overlapping input is a
// caller error: queries stay memory safe but their results are unspecified.
func NewDistinct[T labels.Label](items []T) labels.Index[T] {
	sorted := sortedCopy(items)
	return &distinctView[T]{items: sorted, left: 0, right: len(sorted) - 1, ascending: true}
}

// IsSorted reports whether items are in the backing order the engine for kind expects
func IsSorted[T labels.Label](kind labels.Kind, items []T) bool {
	if kind == labels.Distinct {
		return slices.IsSortedFunc(items, func(a, b T) int {
			return cmp.Compare(a.Location().Start, b.Location().Start)
		})
	}
	return slices.IsSortedFunc(items, compareLocation[T])
}

func sortedCopy[T labels.Label](items []T) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, compareLocation[T])
	return sorted
}

func compareLocation[T labels.Label](a, b T) int {
	return a.Location().Compare(b.Location())
}

// search returns the first index in [lo, hi] where pred holds, or hi+1.
// pred must be monotone (false...true) over the range.
func search(lo, hi int, pred func(i int) bool) int {
	if hi < lo {
		return lo
	}
	return lo + sort.Search(hi-lo+1, func(i int) bool { return pred(lo + i) })
}

func firstStartAtLeast[T labels.Label](items []T, lo, hi, v int) int {
	return search(lo, hi, func(i int) bool { return items[i].Location().Start >= v })
}

func firstStartAfter[T labels.Label](items []T, lo, hi, v int) int {
	return search(lo, hi, func(i int) bool { return items[i].Location().Start > v })
}

func firstLocationAtLeast[T labels.Label](items []T, lo, hi int, s labels.Span) int {
	return search(lo, hi, func(i int) bool { return items[i].Location().Compare(s) >= 0 })
}

func firstLocationAfter[T labels.Label](items []T, lo, hi int, s labels.Span) int {
	return search(lo, hi, func(i int) bool { return items[i].Location().Compare(s) > 0 })
}
