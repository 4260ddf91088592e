package labels

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOwner struct {
	id, text string
}

func (o fakeOwner) ID() string   { return o.id }
func (o fakeOwner) Text() string { return o.text }

type word struct {
	Base
	Lemma string
}

type sentence struct {
	Base
}

type neverDeclared struct {
	Base
}

func TestAttachOnce(t *testing.T) {
	w := &word{Base: At(4, 9), Lemma: "quick"}
	assert.Equal(t, -1, w.ID())
	assert.Nil(t, w.Owner())
	assert.Equal(t, "", w.Covered())

	owner := fakeOwner{id: "doc-1", text: "the quick fox"}
	require.NoError(t, Attach(w, owner, 3))
	assert.Equal(t, 3, w.ID())
	assert.Equal(t, "quick", w.Covered())
	assert.Equal(t, Span{4, 9}, w.Location())
	assert.Equal(t, 4, w.Start())
	assert.Equal(t, 9, w.End())

	err := Attach(w, owner, 4)
	assert.True(t, errors.Is(err, ErrAlreadyAttached))
	assert.Equal(t, 3, w.ID(), "identifier is write-once")
}

func TestAttachNilOwner(t *testing.T) {
	w := &word{Base: At(0, 1)}
	assert.Error(t, Attach(w, nil, 0))
}

func TestSame(t *testing.T) {
	a := &word{Base: At(0, 3)}
	b := &word{Base: At(0, 3)}
	assert.True(t, Same(a, a))
	assert.False(t, Same(a, b))
}

func TestDeclare(t *testing.T) {
	require.NoError(t, Declare[*word]("word", Standard))
	require.NoError(t, Declare[*word]("word", Standard), "same kind again is a no-op")

	err := Declare[*word]("word", Distinct)
	assert.True(t, errors.Is(err, ErrConflictingDeclaration))

	info, err := KindOf[*word]()
	require.NoError(t, err)
	assert.Equal(t, "word", info.Name)
	assert.Equal(t, Standard, info.Kind)

	s := MustDeclare[*sentence]("", Distinct)
	assert.Equal(t, Distinct, s.Kind)
	assert.Contains(t, s.Name, "sentence")
}

func TestKindOfUndeclared(t *testing.T) {
	_, err := KindOf[*neverDeclared]()
	assert.True(t, errors.Is(err, ErrUndeclaredType))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "standard", Standard.String())
	assert.Equal(t, "distinct", Distinct.String())
	assert.Equal(t, "kind(7)", Kind(7).String())
}
