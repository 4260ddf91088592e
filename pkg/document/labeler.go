// ABOUTME: Append-only labeler per (document, label type)
// ABOUTME: Freezes into a Standard or Distinct index on first read

package document

import (
	"fmt"
	"sync"
	"time"

	"github.com/nainya/spanindex/pkg/labelindex"
	"github.com/nainya/spanindex/pkg/labels"
)

// Labeler is the write handle for one label type on one document.
//
// It is Open until the first call to Index, which sorts the buffered labels into
// the engine declared for the type. It is Frozen from then on: Add fails and
// Index returns the same cached index.
type Labeler[T labels.Label] struct {
	doc  *Document
	info labels.TypeInfo

	mu    sync.Mutex
	buf   []T
	added int
	index labels.Index[T] // nil while open
}

// frozenIndexer is the type-erased labeler surface a Document enumerates
type frozenIndexer interface {
	typeName() string
	anyIndex() labels.AnyIndex
}

// LabelerOf returns the labeler for T on d, creating it on first use.
// Fails with labels.ErrUndeclaredType when T was never declared.
func LabelerOf[T labels.Label](d *Document) (*Labeler[T], error) {
	info, err := labels.KindOf[T]()
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", d.Name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.labelers[info.Type]; ok {
		return existing.(*Labeler[T]), nil
	}
	l := &Labeler[T]{doc: d, info: info}
	d.labelers[info.Type] = l
	return l, nil
}

// IndexOf returns the frozen index of T on d, freezing its labeler if needed
func IndexOf[T labels.Label](d *Document) (labels.Index[T], error) {
	l, err := LabelerOf[T](d)
	if err != nil {
		return nil, err
	}
	return l.Index(), nil
}

// MustIndexOf is IndexOf for types known to be declared
func MustIndexOf[T labels.Label](d *Document) labels.Index[T] {
	idx, err := IndexOf[T](d)
	if err != nil {
		panic(err)
	}
	return idx
}

// Add appends labels of type T to d
func Add[T labels.Label](d *Document, items ...T) error {
	l, err := LabelerOf[T](d)
	if err != nil {
		return err
	}
	return l.AddAll(items...)
}

// Add stamps the label with its document and insertion id and buffers it
func (l *Labeler[T]) Add(label T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.index != nil {
		return fmt.Errorf("%w: %s on %s", ErrFrozen, l.info.Name, l.doc.Name)
	}

	loc := label.Location()
	if err := labels.CheckSpan(loc.Start, loc.End); err != nil {
		return fmt.Errorf("add %s: %w", l.info.Name, err)
	}
	if loc.End > len(l.doc.text) {
		return fmt.Errorf("add %s: %w: %s past end of text (%d)", l.info.Name, labels.ErrInvalidSpan, loc, len(l.doc.text))
	}

	if err := labels.Attach(label, l.doc, l.added); err != nil {
		return fmt.Errorf("add %s: %w", l.info.Name, err)
	}
	l.added++
	l.buf = append(l.buf, label)
	return nil
}

// AddAll adds labels in order, stopping at the first failure
func (l *Labeler[T]) AddAll(items ...T) error {
	for _, item := range items {
		if err := l.Add(item); err != nil {
			return err
		}
	}
	return nil
}

// Index freezes the labeler on first call and returns the cached index.
// The observer is notified after the lock is released.
func (l *Labeler[T]) Index() labels.Index[T] {
	idx, event, froze := l.freeze()
	if froze && l.doc.observer != nil {
		l.doc.observer.LabelerFrozen(event)
	}
	return idx
}

func (l *Labeler[T]) freeze() (labels.Index[T], FreezeEvent, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.index != nil {
		return l.index, FreezeEvent{}, false
	}

	start := time.Now()
	l.index = labelindex.New(l.info.Kind, l.buf)
	l.buf = nil

	return l.index, FreezeEvent{
		DocumentID: l.doc.id,
		TypeName:   l.info.Name,
		Kind:       l.info.Kind,
		Count:      l.added,
		Duration:   time.Since(start),
	}, true
}

// Len returns the number of labels accepted so far
func (l *Labeler[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.added
}

// Frozen reports whether the index has been built
func (l *Labeler[T]) Frozen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index != nil
}

// Kind returns the engine kind declared for T
func (l *Labeler[T]) Kind() labels.Kind {
	return l.info.Kind
}

func (l *Labeler[T]) typeName() string {
	return l.info.Name
}

func (l *Labeler[T]) anyIndex() labels.AnyIndex {
	return labels.Erase(l.Index())
}
