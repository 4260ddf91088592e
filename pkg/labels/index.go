// ABOUTME: Query contract shared by the Standard and Distinct index engines
// ABOUTME: Every narrowing or reordering call returns a new view over the same storage

package labels

import (
	"iter"
	"reflect"
)

// Index is an immutable, queryable collection of labels of one type.
//
// Positional queries take half-open [start, end) arguments and panic with an error
// wrapping ErrInvalidSpan when end < start or start < 0. Validate untrusted input
// with CheckSpan first. "Not found" is always an empty index or a false ok.
type Index[T Label] interface {
	// Containing returns labels with start <= start and end >= end.
	Containing(start, end int) Index[T]
	ContainingSpan(s Span) Index[T]

	// Inside returns labels lying entirely within [start, end).
	Inside(start, end int) Index[T]
	InsideSpan(s Span) Index[T]

	// BeginsInside returns labels whose start lies in [start, end).
	BeginsInside(start, end int) Index[T]
	BeginsInsideSpan(s Span) Index[T]

	// LeftOf returns labels ending at or before position i.
	LeftOf(i int) Index[T]
	// RightOf returns labels starting at or after position i.
	RightOf(i int) Index[T]

	// AtLocation returns every label whose span equals s.
	AtLocation(s Span) Index[T]

	AscendingStart() Index[T]
	DescendingStart() Index[T]
	AscendingEnd() Index[T]
	DescendingEnd() Index[T]
	Ascending() Index[T]
	Descending() Index[T]

	First() (T, bool)
	Last() (T, bool)

	ContainsSpan(s Span) bool
	Contains(l T) bool

	// List copies the labels in the current order.
	List() []T
	// All iterates the labels in the current order.
	All() iter.Seq[T]

	Len() int
	IsEmpty() bool
	Kind() Kind
	Order() Order
}

// AnyIndex is the type-erased surface used when enumerating a document's indexes
type AnyIndex interface {
	Type() reflect.Type
	Kind() Kind
	Len() int
	Labels() []Label
}

// Erase wraps idx for heterogeneous enumeration
func Erase[T Label](idx Index[T]) AnyIndex {
	return erased[T]{idx: idx}
}

type erased[T Label] struct {
	idx Index[T]
}

func (e erased[T]) Type() reflect.Type { return reflect.TypeFor[T]() }
func (e erased[T]) Kind() Kind         { return e.idx.Kind() }
func (e erased[T]) Len() int           { return e.idx.Len() }

func (e erased[T]) Labels() []Label {
	out := make([]Label, 0, e.idx.Len())
	for l := range e.idx.All() {
		out = append(out, l)
	}
	return out
}

// Spans returns the locations of idx in its current order
func Spans[T Label](idx Index[T]) []Span {
	out := make([]Span, 0)
	for l := range idx.All() {
		out = append(out, l.Location())
	}
	return out
}
