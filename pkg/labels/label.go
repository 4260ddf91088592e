// ABOUTME: Label contract and the embeddable Base that implements it
// ABOUTME: Owner back-reference and insertion id are assigned exactly once

package labels

import "fmt"

// Owner is the document a label belongs to
type Owner interface {
	ID() string
	Text() string
}

// Label is a span of text plus immutable payload. Concrete label types embed Base
// and are used through a pointer, e.g. *Token.
type Label interface {
	Location() Span
	Owner() Owner
	ID() int

	attach(owner Owner, id int) error
}

// Base carries the location and the write-once fields of a label
type Base struct {
	span  Span
	owner Owner
	id    int
}

// At returns a Base covering [start, end). The span is validated when the label is
// added to a labeler.
func At(start, end int) Base {
	return Base{span: Span{Start: start, End: end}, id: -1}
}

// AtSpan returns a Base covering s
func AtSpan(s Span) Base {
	return Base{span: s, id: -1}
}

// Location returns the label's span
func (b *Base) Location() Span {
	return b.span
}

// Start returns the first covered text position
func (b *Base) Start() int {
	return b.span.Start
}

// End returns the position just past the label
func (b *Base) End() int {
	return b.span.End
}

// Owner returns the document that accepted the label, or nil before acceptance
func (b *Base) Owner() Owner {
	return b.owner
}

// ID returns the insertion-order identifier, or -1 before acceptance
func (b *Base) ID() int {
	if b.owner == nil {
		return -1
	}
	return b.id
}

// Covered returns the text under the label, or "" before acceptance
func (b *Base) Covered() string {
	if b.owner == nil {
		return ""
	}
	return b.span.Text(b.owner.Text())
}

func (b *Base) attach(owner Owner, id int) error {
	if b.owner != nil {
		return fmt.Errorf("%w: id %d on %s", ErrAlreadyAttached, b.id, b.owner.ID())
	}
	b.owner = owner
	b.id = id
	return nil
}

// Attach stamps l with its owner and insertion id. Only labelers call this.
func Attach(l Label, owner Owner, id int) error {
	if owner == nil {
		return fmt.Errorf("labels: attach %s: nil owner", l.Location())
	}
	return l.attach(owner, id)
}

// Same reports whether a and b are the same label object
func Same[T Label](a, b T) bool {
	return any(a) == any(b)
}
