// Package labels defines the positional data model shared by every label index:
// half-open text spans, labels carrying them, per-type engine declarations, and
// the query contract that both index engines satisfy.
package labels

import "errors"

var (
	// ErrInvalidSpan indicates a span with a negative start or an end before its start
	ErrInvalidSpan = errors.New("labels: invalid span")

	// ErrAlreadyAttached indicates a label that was already accepted by a labeler
	ErrAlreadyAttached = errors.New("labels: label already attached to a document")

	// ErrUndeclaredType indicates a label type with no Standard/Distinct declaration
	ErrUndeclaredType = errors.New("labels: undeclared label type")

	// ErrConflictingDeclaration indicates a label type declared twice with different kinds
	ErrConflictingDeclaration = errors.New("labels: conflicting label type declaration")
)
