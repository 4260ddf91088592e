// ABOUTME: Per-type Standard/Distinct declarations
// ABOUTME: A process-wide table read once when a labeler is first created

package labels

import (
	"fmt"
	"reflect"
	"sync"
)

// Kind selects the index engine backing a label type
type Kind int

const (
	// Standard labels may overlap one another
	Standard Kind = iota
	// Distinct labels never overlap
	Distinct
)

func (k Kind) String() string {
	switch k {
	case Standard:
		return "standard"
	case Distinct:
		return "distinct"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TypeInfo is the declaration recorded for a label type
type TypeInfo struct {
	Name string
	Kind Kind
	Type reflect.Type
}

var declarations = struct {
	sync.RWMutex
	byType map[reflect.Type]TypeInfo
}{byType: make(map[reflect.Type]TypeInfo)}

// Declare records whether labels of type T may overlap. It is meant to be called from
// package init or a var block, once per type. Re-declaring with the same kind is a no-op.
func Declare[T Label](name string, kind Kind) error {
	t := reflect.TypeFor[T]()
	if name == "" {
		name = t.String()
	}

	declarations.Lock()
	defer declarations.Unlock()

	if prev, ok := declarations.byType[t]; ok {
		if prev.Kind != kind {
			return fmt.Errorf("%w: %s is %s, redeclared %s", ErrConflictingDeclaration, prev.Name, prev.Kind, kind)
		}
		return nil
	}
	declarations.byType[t] = TypeInfo{Name: name, Kind: kind, Type: t}
	return nil
}

// MustDeclare is Declare for package-level registration
func MustDeclare[T Label](name string, kind Kind) TypeInfo {
	if err := Declare[T](name, kind); err != nil {
		panic(err)
	}
	info, _ := KindOf[T]()
	return info
}

// KindOf returns the declaration for T
func KindOf[T Label]() (TypeInfo, error) {
	t := reflect.TypeFor[T]()

	declarations.RLock()
	info, ok := declarations.byType[t]
	declarations.RUnlock()

	if !ok {
		return TypeInfo{}, fmt.Errorf("%w: %s", ErrUndeclaredType, t)
	}
	return info, nil
}
