// ABOUTME: Document and Artifact data model for annotated text
// ABOUTME: A document owns one labeler per label type; an artifact groups named documents

package document

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nainya/spanindex/pkg/labels"
)

var (
	// ErrFrozen indicates an Add after the labeler's index was first read
	ErrFrozen = errors.New("document: labeler is frozen")

	// ErrDocumentExists indicates a duplicate document name within an artifact
	ErrDocumentExists = errors.New("document: document already exists")

	// ErrDocumentNotFound indicates an unknown document name within an artifact
	ErrDocumentNotFound = errors.New("document: document not found")
)

// Document is a text buffer plus the labels attached to it
type Document struct {
	id        string
	Name      string            // View name within an artifact (e.g. "original")
	Metadata  map[string]string // Additional metadata
	CreatedAt time.Time         // Creation timestamp

	text     string
	observer Observer

	mu       sync.Mutex // guards labelers; creation only
	labelers map[reflect.Type]frozenIndexer
}

// Option configures a Document
type Option func(*Document)

// WithObserver reports labeler freezes to o
func WithObserver(o Observer) Option {
	return func(d *Document) { d.observer = o }
}

// WithMetadata attaches metadata to the document
func WithMetadata(md map[string]string) Option {
	return func(d *Document) { d.Metadata = md }
}

// NewDocument creates a document over text
func NewDocument(name, text string, opts ...Option) *Document {
	d := &Document{
		id:        uuid.NewString(),
		Name:      name,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now(),
		text:      text,
		labelers:  make(map[reflect.Type]frozenIndexer),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ID returns the document's unique identifier
func (d *Document) ID() string {
	return d.id
}

// Text returns the document text
func (d *Document) Text() string {
	return d.text
}

// Indexes freezes every labeler and returns the non-empty indexes, ordered by
// declared type name
func (d *Document) Indexes() []labels.AnyIndex {
	d.mu.Lock()
	all := make([]frozenIndexer, 0, len(d.labelers))
	for _, l := range d.labelers {
		all = append(all, l)
	}
	d.mu.Unlock()

	slices.SortFunc(all, func(a, b frozenIndexer) int {
		return strings.Compare(a.typeName(), b.typeName())
	})

	out := make([]labels.AnyIndex, 0, len(all))
	for _, l := range all {
		if idx := l.anyIndex(); idx.Len() > 0 {
			out = append(out, idx)
		}
	}
	return out
}

func (d *Document) String() string {
	return fmt.Sprintf("document %s (%s, %d bytes)", d.Name, d.id, len(d.text))
}

// Artifact groups the documents derived from one unit of input, keyed by name
type Artifact struct {
	ID        string
	CreatedAt time.Time

	mu        sync.RWMutex
	documents map[string]*Document
}

// NewArtifact creates an empty artifact
func NewArtifact() *Artifact {
	return &Artifact{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		documents: make(map[string]*Document),
	}
}

// AddDocument creates and registers a named document
func (a *Artifact) AddDocument(name, text string, opts ...Option) (*Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.documents[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentExists, name)
	}
	d := NewDocument(name, text, opts...)
	a.documents[name] = d
	return d, nil
}

// Document returns the named document
func (a *Artifact) Document(name string) (*Document, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	d, ok := a.documents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
	}
	return d, nil
}

// Names returns the document names in sorted order
func (a *Artifact) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.documents))
	for name := range a.documents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Documents returns the documents ordered by name
func (a *Artifact) Documents() []*Document {
	names := a.Names()

	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*Document, 0, len(names))
	for _, name := range names {
		out = append(out, a.documents[name])
	}
	return out
}
