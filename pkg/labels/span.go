// ABOUTME: Half-open text span [Start, End) and location ordering
// ABOUTME: Validation, containment predicates and comparison helpers

package labels

import (
	"cmp"
	"fmt"
)

// Span is a half-open interval [Start, End) over a document's text.
type Span struct {
	Start int
	End   int
}

// NewSpan returns a validated span
func NewSpan(start, end int) (Span, error) {
	if err := CheckSpan(start, end); err != nil {
		return Span{}, err
	}
	return Span{Start: start, End: end}, nil
}

// MustSpan is NewSpan for constant arguments; it panics on invalid input
func MustSpan(start, end int) Span {
	s, err := NewSpan(start, end)
	if err != nil {
		panic(err)
	}
	return s
}

// CheckSpan reports whether [start, end) is a usable span
func CheckSpan(start, end int) error {
	if start < 0 {
		return fmt.Errorf("%w: negative start %d", ErrInvalidSpan, start)
	}
	if end < start {
		return fmt.Errorf("%w: end %d before start %d", ErrInvalidSpan, end, start)
	}
	return nil
}

// Valid reports whether the span satisfies 0 <= Start <= End
func (s Span) Valid() bool {
	return CheckSpan(s.Start, s.End) == nil
}

// Len returns the number of text positions covered
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span is zero-length
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Compare orders spans by start, then by end
func (s Span) Compare(o Span) int {
	if c := cmp.Compare(s.Start, o.Start); c != 0 {
		return c
	}
	return cmp.Compare(s.End, o.End)
}

// LocationEquals reports whether both spans cover exactly the same positions
func (s Span) LocationEquals(o Span) bool {
	return s.Start == o.Start && s.End == o.End
}

// Contains reports whether o lies within s
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && s.End >= o.End
}

// Inside reports whether s lies within o
func (s Span) Inside(o Span) bool {
	return o.Contains(s)
}

// Covers reports whether text position i falls inside the span
func (s Span) Covers(i int) bool {
	return s.Start <= i && i < s.End
}

// Overlaps reports whether the spans share at least one text position
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Text returns the covered substring of text, clamped to its length
func (s Span) Text(text string) string {
	start, end := min(s.Start, len(text)), min(s.End, len(text))
	return text[start:end]
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End)
}

// MustCheck panics with an ErrInvalidSpan-wrapping error for unusable query arguments.
// Index implementations call it on every positional query, before any search runs.
func MustCheck(start, end int) {
	if err := CheckSpan(start, end); err != nil {
		panic(err)
	}
}

// MustCheckPosition panics for a negative text position
func MustCheckPosition(i int) {
	if i < 0 {
		panic(fmt.Errorf("%w: negative position %d", ErrInvalidSpan, i))
	}
}
