// Package tree holds the compact syntax tree produced by the parser.
//
// Nodes live in one flat array and are addressed by index. Each node
// has a tag and three generic payload words; small collections (one or
// two list elements, a single map entry) fit entirely in the node, and
// only the "many" variants spill into a shared extra-data array. This
// keeps parsing to a handful of slice appends instead of one heap
// allocation per node.
//
// Scalar nodes reference the original source buffer by span and copy
// nothing. Quoted scalars are unescaped once, into a string table
// owned by the tree. Either way, text is materialized into owned
// strings only when a value is built from the tree.
package tree

import "math"

// NodeIndex addresses a node within one Tree. Indices are meaningless
// across trees.
type NodeIndex uint32

// NilNode marks an absent node, such as the value of an empty document
// or of a key with nothing after the colon.
const NilNode NodeIndex = math.MaxUint32

// Tag discriminates the node payload.
type Tag uint8

const (
	// TagDocument is a document without a directive. A holds the value
	// node or NilNode.
	TagDocument Tag = iota
	// TagDocumentDirective is a document with a "--- !name" directive.
	// A holds the value node or NilNode; B and C span the directive
	// name in the source.
	TagDocumentDirective
	// TagScalar is a plain scalar; A and B span the source.
	TagScalar
	// TagString is a quoted scalar; A and B span the string table.
	TagString
	// TagListEmpty is a list with no elements.
	TagListEmpty
	// TagListOne is a list with one element, in A.
	TagListOne
	// TagListTwo is a list with two elements, in A and B.
	TagListTwo
	// TagListMany is a list with B elements starting at extra[A].
	TagListMany
	// TagMapSingle is a map with one entry: key ref in A, key length
	// in B, value node in C.
	TagMapSingle
	// TagMapMany is a map with B entries stored as (key ref, key
	// length, value node) triples starting at extra[A].
	TagMapMany
)

// strtabBit marks a key ref that points into the string table rather
// than the source buffer.
const strtabBit = uint32(1) << 31

// Node is a tagged record. The meaning of A, B and C depends on Tag.
type Node struct {
	Tag     Tag
	A, B, C uint32
}

// KeyRef locates a map key's text.
type KeyRef struct {
	Pos      uint32
	Len      uint32
	InStrtab bool
}

// MapEntry is one key/value pair handed to AddMap.
type MapEntry struct {
	Key   KeyRef
	Value NodeIndex
}

// Tree owns the node array, the extra-data array, the string table for
// unescaped quoted text, and a reference to the original source.
type Tree struct {
	source []byte
	nodes  []Node
	extra  []uint32
	strtab []byte
	docs   []NodeIndex
}

// New returns an empty tree over source.
func New(source []byte) *Tree {
	return &Tree{source: source}
}

// Source returns the original source buffer.
func (t *Tree) Source() []byte { return t.source }

// Docs returns the document nodes in source order.
func (t *Tree) Docs() []NodeIndex { return t.docs }

// Tag returns the tag of node n.
func (t *Tree) Tag(n NodeIndex) Tag { return t.nodes[n].Tag }

func (t *Tree) add(n Node) NodeIndex {
	t.nodes = append(t.nodes, n)
	return NodeIndex(len(t.nodes) - 1)
}

// AddScalar records a plain scalar spanning source[start:end].
func (t *Tree) AddScalar(start, end int) NodeIndex {
	return t.add(Node{Tag: TagScalar, A: uint32(start), B: uint32(end)})
}

// AddString interns unescaped quoted text into the string table.
func (t *Tree) AddString(text []byte) NodeIndex {
	start := len(t.strtab)
	t.strtab = append(t.strtab, text...)
	return t.add(Node{Tag: TagString, A: uint32(start), B: uint32(len(t.strtab))})
}

// AddList records a list node, specializing by arity.
func (t *Tree) AddList(elems []NodeIndex) NodeIndex {
	switch len(elems) {
	case 0:
		return t.add(Node{Tag: TagListEmpty})
	case 1:
		return t.add(Node{Tag: TagListOne, A: uint32(elems[0])})
	case 2:
		return t.add(Node{Tag: TagListTwo, A: uint32(elems[0]), B: uint32(elems[1])})
	default:
		start := len(t.extra)
		for _, e := range elems {
			t.extra = append(t.extra, uint32(e))
		}
		return t.add(Node{Tag: TagListMany, A: uint32(start), B: uint32(len(elems))})
	}
}

func packKey(k KeyRef) uint32 {
	if k.InStrtab {
		return k.Pos | strtabBit
	}
	return k.Pos
}

// AddMap records a map node, specializing the single-entry case. Key
// uniqueness is deliberately not checked here; structurally duplicated
// keys stay representable until value materialization rejects them.
func (t *Tree) AddMap(entries []MapEntry) NodeIndex {
	if len(entries) == 1 {
		e := entries[0]
		return t.add(Node{Tag: TagMapSingle, A: packKey(e.Key), B: e.Key.Len, C: uint32(e.Value)})
	}
	start := len(t.extra)
	for _, e := range entries {
		t.extra = append(t.extra, packKey(e.Key), e.Key.Len, uint32(e.Value))
	}
	return t.add(Node{Tag: TagMapMany, A: uint32(start), B: uint32(len(entries))})
}

// KeyFromSpan makes a KeyRef for a plain key spanning source[start:end].
func (t *Tree) KeyFromSpan(start, end int) KeyRef {
	return KeyRef{Pos: uint32(start), Len: uint32(end - start)}
}

// InternKey interns unescaped quoted key text and returns its ref.
func (t *Tree) InternKey(text []byte) KeyRef {
	start := len(t.strtab)
	t.strtab = append(t.strtab, text...)
	return KeyRef{Pos: uint32(start), Len: uint32(len(text)), InStrtab: true}
}

// AddDocument records a document node. directive is the directive name
// span in the source, or start == end for none.
func (t *Tree) AddDocument(value NodeIndex, dirStart, dirEnd int) NodeIndex {
	var n NodeIndex
	if dirStart == dirEnd {
		n = t.add(Node{Tag: TagDocument, A: uint32(value)})
	} else {
		n = t.add(Node{Tag: TagDocumentDirective, A: uint32(value), B: uint32(dirStart), C: uint32(dirEnd)})
	}
	t.docs = append(t.docs, n)
	return n
}

// DocValue returns the value node of document n, or NilNode.
func (t *Tree) DocValue(n NodeIndex) NodeIndex {
	return NodeIndex(t.nodes[n].A)
}

// Directive returns the directive name of document n, if any.
func (t *Tree) Directive(n NodeIndex) (string, bool) {
	node := t.nodes[n]
	if node.Tag != TagDocumentDirective {
		return "", false
	}
	return string(t.source[node.B:node.C]), true
}

// ScalarText returns the text of a scalar node as an owned string.
func (t *Tree) ScalarText(n NodeIndex) string {
	node := t.nodes[n]
	if node.Tag == TagString {
		return string(t.strtab[node.A:node.B])
	}
	return string(t.source[node.A:node.B])
}

// ListLen returns the element count of a list node.
func (t *Tree) ListLen(n NodeIndex) int {
	switch node := t.nodes[n]; node.Tag {
	case TagListEmpty:
		return 0
	case TagListOne:
		return 1
	case TagListTwo:
		return 2
	default:
		return int(node.B)
	}
}

// ListElem returns the i'th element of a list node.
func (t *Tree) ListElem(n NodeIndex, i int) NodeIndex {
	switch node := t.nodes[n]; node.Tag {
	case TagListOne:
		return NodeIndex(node.A)
	case TagListTwo:
		if i == 0 {
			return NodeIndex(node.A)
		}
		return NodeIndex(node.B)
	default:
		return NodeIndex(t.extra[int(node.A)+i])
	}
}

// MapLen returns the entry count of a map node.
func (t *Tree) MapLen(n NodeIndex) int {
	if t.nodes[n].Tag == TagMapSingle {
		return 1
	}
	return int(t.nodes[n].B)
}

// MapEntryAt returns the i'th key and value of a map node in source
// order.
func (t *Tree) MapEntryAt(n NodeIndex, i int) (string, NodeIndex) {
	node := t.nodes[n]
	if node.Tag == TagMapSingle {
		return t.keyText(node.A, node.B), NodeIndex(node.C)
	}
	base := int(node.A) + i*3
	return t.keyText(t.extra[base], t.extra[base+1]), NodeIndex(t.extra[base+2])
}

func (t *Tree) keyText(packed, length uint32) string {
	pos := packed &^ strtabBit
	if packed&strtabBit != 0 {
		return string(t.strtab[pos : pos+length])
	}
	return string(t.source[pos : pos+length])
}
