package yamlet

import (
	"github.com/KimNorgaard/go-yamlet/internal/tree"
)

// Kind identifies the shape of a Value.
type Kind uint8

const (
	// KindEmpty is the zero Value: an absent or empty node.
	KindEmpty Kind = iota
	// KindScalar is a single piece of text.
	KindScalar
	// KindList is an ordered sequence of values.
	KindList
	// KindMap is an order-preserving mapping with unique string keys.
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "empty"
	}
}

// Value is the uniform dynamically-shaped value produced by parsing:
// empty, scalar text, a list, or an order-preserving map. All text is
// owned by the Value, so it remains valid after the source buffer and
// the syntax tree are gone.
//
// The zero Value has KindEmpty.
type Value struct {
	kind  Kind
	str   string
	list  []Value
	keys  []string
	elems []Value
	index map[string]int
}

// Kind returns the shape of v.
func (v Value) Kind() Kind { return v.kind }

// Scalar returns the text of a scalar Value, or "".
func (v Value) Scalar() string { return v.str }

// Len returns the number of list elements or map entries.
func (v Value) Len() int {
	if v.kind == KindMap {
		return len(v.keys)
	}
	return len(v.list)
}

// Index returns the i'th element of a list Value.
func (v Value) Index(i int) Value { return v.list[i] }

// Keys returns the map keys in source order.
func (v Value) Keys() []string { return v.keys }

// Get returns the value for key in a map Value.
func (v Value) Get(key string) (Value, bool) {
	i, ok := v.index[key]
	if !ok {
		return Value{}, false
	}
	return v.elems[i], true
}

// EntryAt returns the i'th key and value of a map Value in source
// order.
func (v Value) EntryAt(i int) (string, Value) {
	return v.keys[i], v.elems[i]
}

func scalarValue(s string) Value {
	return Value{kind: KindScalar, str: s}
}

func listValue(elems []Value) Value {
	return Value{kind: KindList, list: elems}
}

// mapBuilder accumulates map entries, rejecting duplicate keys at
// insertion time.
type mapBuilder struct {
	keys  []string
	elems []Value
	index map[string]int
}

func newMapBuilder(n int) *mapBuilder {
	return &mapBuilder{
		keys:  make([]string, 0, n),
		elems: make([]Value, 0, n),
		index: make(map[string]int, n),
	}
}

func (b *mapBuilder) put(key string, val Value) error {
	if _, exists := b.index[key]; exists {
		return &DuplicateKeyError{Key: key}
	}
	b.index[key] = len(b.keys)
	b.keys = append(b.keys, key)
	b.elems = append(b.elems, val)
	return nil
}

func (b *mapBuilder) value() Value {
	return Value{kind: KindMap, keys: b.keys, elems: b.elems, index: b.index}
}

// materialize builds an owned Value from a tree node. It is total over
// all node tags; the only failure is a duplicate map key, which aborts
// the whole load.
func materialize(t *tree.Tree, n tree.NodeIndex) (Value, error) {
	if n == tree.NilNode {
		return Value{}, nil
	}
	switch t.Tag(n) {
	case tree.TagScalar, tree.TagString:
		return scalarValue(t.ScalarText(n)), nil
	case tree.TagListEmpty, tree.TagListOne, tree.TagListTwo, tree.TagListMany:
		elems := make([]Value, t.ListLen(n))
		for i := range elems {
			ev, err := materialize(t, t.ListElem(n, i))
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return listValue(elems), nil
	case tree.TagMapSingle, tree.TagMapMany:
		b := newMapBuilder(t.MapLen(n))
		for i := 0; i < t.MapLen(n); i++ {
			key, vn := t.MapEntryAt(n, i)
			ev, err := materialize(t, vn)
			if err != nil {
				return Value{}, err
			}
			if err := b.put(key, ev); err != nil {
				return Value{}, err
			}
		}
		return b.value(), nil
	default:
		// Document nodes are never materialized directly.
		return materialize(t, t.DocValue(n))
	}
}
