package yamlet

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/KimNorgaard/go-yamlet/internal/parser"
)

// Document is one parsed document: its value and the directive name
// from its "--- !name" marker, if any.
type Document struct {
	Value     Value
	Directive string
}

// DocumentSet is the ordered collection of documents produced by one
// Load. It is immutable and can be decoded any number of times.
type DocumentSet struct {
	docs []Document
}

// Len returns the number of documents.
func (ds *DocumentSet) Len() int { return len(ds.docs) }

// At returns the i'th document.
func (ds *DocumentSet) At(i int) Document { return ds.docs[i] }

// Load parses source text into a DocumentSet. The input may hold zero
// or more documents separated by "---" markers. On syntax errors it
// returns a ParseErrors bundle; a duplicate map key anywhere fails the
// whole load with a DuplicateKeyError.
func Load(data []byte) (*DocumentSet, error) {
	p := parser.New(data)
	t := p.Parse()

	if errs := p.Errors(); len(errs) > 0 {
		bundle := make(ParseErrors, len(errs))
		for i, e := range errs {
			bundle[i] = ParseError{Message: e.Message, Line: e.Line, Column: e.Column}
		}
		return nil, bundle
	}

	ds := &DocumentSet{}
	for _, dn := range t.Docs() {
		v, err := materialize(t, dn)
		if err != nil {
			return nil, err
		}
		dir, _ := t.Directive(dn)
		ds.docs = append(ds.docs, Document{Value: v, Directive: dir})
	}
	return ds, nil
}

// Decode stores the document set in the value pointed to by v. A
// single document decodes directly into v's type. With several
// documents, v must point to a slice or an array, one document per
// element. An empty set decodes only into an empty struct, and an
// empty struct accepts only an empty set.
func (ds *DocumentSet) Decode(v any, opts ...Option) error {
	c, err := applyOptions(opts)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("yamlet: Decode(non-pointer %T or nil)", v)
	}
	elem := rv.Elem()
	state := &decodeState{depth: c.maxDepth, policies: c.policies}

	switch len(ds.docs) {
	case 0:
		if elem.Kind() == reflect.Struct && elem.NumField() == 0 {
			return nil
		}
		return fmt.Errorf("yamlet: cannot decode empty document set into %s: %w", elem.Type(), ErrTypeMismatch)
	case 1:
		if elem.Kind() == reflect.Struct && elem.NumField() == 0 {
			return fmt.Errorf("yamlet: cannot decode a non-empty document set into %s: %w", elem.Type(), ErrTypeMismatch)
		}
		return state.decode(ds.docs[0].Value, elem)
	}

	switch elem.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(elem.Type(), len(ds.docs), len(ds.docs))
		for i, d := range ds.docs {
			if err := state.decode(d.Value, out.Index(i)); err != nil {
				return err
			}
		}
		elem.Set(out)
		return nil
	case reflect.Array:
		if elem.Len() != len(ds.docs) {
			return fmt.Errorf("yamlet: cannot decode %d documents into array of length %d: %w",
				len(ds.docs), elem.Len(), ErrArraySize)
		}
		for i, d := range ds.docs {
			if err := state.decode(d.Value, elem.Index(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("yamlet: cannot decode %d documents into %s: %w",
			len(ds.docs), elem.Type(), ErrTypeMismatch)
	}
}

// Stringify renders every document with its "---" framing, repeating
// each document's recorded directive, and closes the stream with
// "...".
func (ds *DocumentSet) Stringify(w io.Writer) error {
	s := newStringifier(w)
	for _, d := range ds.docs {
		marker := "---\n"
		if d.Directive != "" {
			marker = "--- !" + d.Directive + "\n"
		}
		if err := s.write(marker); err != nil {
			return err
		}
		if err := s.emitDoc(d.Value); err != nil {
			return err
		}
	}
	return s.write("...\n")
}

// Unmarshal parses the data and stores the result in the value pointed
// to by v. See Load and DocumentSet.Decode for the conversion rules.
func Unmarshal(data []byte, v any, opts ...Option) error {
	ds, err := Load(data)
	if err != nil {
		return err
	}
	return ds.Decode(v, opts...)
}

// Marshal returns the text encoding of v.
func Marshal(v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, opts...)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decoder reads and decodes documents from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option
}

// NewDecoder returns a new decoder that reads from r.
//
// Note: this is a non-streaming implementation. It reads the entire
// reader into memory before parsing.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads all documents from the input and stores them in the
// value pointed to by v.
func (d *Decoder) Decode(v any) error {
	if d.r == nil {
		return fmt.Errorf("yamlet: Decode(nil reader)")
	}
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	return Unmarshal(data, v, d.opts...)
}

// Encoder writes encoded values to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the text encoding of v to the stream.
func (e *Encoder) Encode(v any) error {
	c, err := applyOptions(e.opts)
	if err != nil {
		return err
	}

	es := &encodeState{policies: c.policies}
	val, ok, err := es.encode(reflect.ValueOf(v), Policy{})
	if err != nil {
		return err
	}
	if !ok {
		val = Value{}
	}
	return newStringifier(e.w).emitDoc(val)
}
