package yamlet

import (
	"fmt"
	"reflect"
	"sync"
)

// Format selects the text rendering of a field's value. Integer
// formats apply to integer fields, float formats to float fields and
// boolean formats to boolean fields; attaching a format to a field of
// another kind is an encode-time type mismatch.
type Format int

const (
	// FormatDefault renders decimal integers, shortest-form floats and
	// true/false booleans.
	FormatDefault Format = iota

	FormatBinary  // 0b1010
	FormatOctal   // 0o12
	FormatDecimal // 10
	FormatHex     // 0xa

	FormatFixed      // 10.5
	FormatScientific // 1.05e+01

	FormatBoolYN        // y / n
	FormatBoolYesNo     // yes / no
	FormatBoolOnOff     // on / off
	FormatBoolTrueFalse // true / false
)

// Policy is a per-field override of parsing, encoding and formatting
// behavior.
//
// When Parse is set it replaces the shape-driven decode of the field:
// it receives the intermediate value and a pointer to the destination
// field. When Encode is set it replaces the shape-driven encode: it
// receives a pointer to the source field and returns the value to
// render. With ElementType set, the intermediate value is a pointer to
// a freshly decoded instance of that type (and Encode's result is
// encoded under that type's default rules); without it, the callbacks
// see the raw Value.
type Policy struct {
	Format      Format
	ElementType reflect.Type
	Parse       func(intermediate any, field any) error
	Encode      func(field any) (any, error)

	// AlwaysEmit emits the field even when its value equals the
	// field's default.
	AlwaysEmit bool
}

type policyKey struct {
	owner reflect.Type
	field string
}

// Policies is a table of per-(type, field) overrides consulted by the
// decoder, the encoder and the text emitter. A nil *Policies is valid
// and empty.
type Policies struct {
	entries map[policyKey]Policy
}

// NewPolicies returns an empty policy table.
func NewPolicies() *Policies {
	return &Policies{entries: make(map[policyKey]Policy)}
}

// Define records a policy for the named field of owner's struct type
// and returns p for chaining. A policy declared on an embedded struct
// type also applies where that struct's fields are promoted, unless
// the outer type declares its own policy for the field. Declaring a
// policy for a field the type does not have is a programming error
// and panics.
func (p *Policies) Define(owner any, field string, pol Policy) *Policies {
	t := reflect.TypeOf(owner)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("yamlet: Define called with non-struct owner %T", owner))
	}
	if _, ok := t.FieldByName(field); !ok {
		panic(fmt.Sprintf("yamlet: Define: type %s has no field %q", t, field))
	}
	p.entries[policyKey{owner: t, field: field}] = pol
	return p
}

func (p *Policies) lookup(owner reflect.Type, field string) (Policy, bool) {
	if p == nil || p.entries == nil {
		return Policy{}, false
	}
	pol, ok := p.entries[policyKey{owner: owner, field: field}]
	return pol, ok
}

// fieldPolicy resolves the policy for a possibly promoted field: the
// outer struct type wins, then the type declaring the field.
func (p *Policies) fieldPolicy(outer, declaring reflect.Type, field string) (Policy, bool) {
	if pol, ok := p.lookup(outer, field); ok {
		return pol, true
	}
	if declaring != outer {
		return p.lookup(declaring, field)
	}
	return Policy{}, false
}

func (f Format) isInt() bool {
	return f == FormatBinary || f == FormatOctal || f == FormatDecimal || f == FormatHex
}

func (f Format) isFloat() bool {
	return f == FormatFixed || f == FormatScientific
}

func (f Format) isBool() bool {
	return f == FormatBoolYN || f == FormatBoolYesNo || f == FormatBoolOnOff || f == FormatBoolTrueFalse
}

// enumSet holds the registered names of one enumeration type.
type enumSet struct {
	byName  map[string]reflect.Value
	byValue map[any]string
}

// enumRegistry maps reflect.Type to *enumSet. Like the decoder's field
// cache, it is written once per type and read concurrently.
var enumRegistry sync.Map

// DefineEnum registers the variant names of an enumeration type, given
// any value of the type and a name-to-value table. Decoding a scalar
// into the type matches names case-sensitively; encoding renders the
// matching name. Registration is process-global, in the manner of
// gob.Register, and panics on a mismatched value type.
func DefineEnum(zero any, values map[string]any) {
	t := reflect.TypeOf(zero)
	set := &enumSet{
		byName:  make(map[string]reflect.Value, len(values)),
		byValue: make(map[any]string, len(values)),
	}
	for name, val := range values {
		rv := reflect.ValueOf(val)
		if rv.Type() != t {
			panic(fmt.Sprintf("yamlet: DefineEnum: value for %q has type %s, want %s", name, rv.Type(), t))
		}
		set.byName[name] = rv
		set.byValue[val] = name
	}
	enumRegistry.Store(t, set)
}

func lookupEnum(t reflect.Type) (*enumSet, bool) {
	v, ok := enumRegistry.Load(t)
	if !ok {
		return nil, false
	}
	return v.(*enumSet), true
}

// unionRegistry maps an interface type to its ordered candidate
// variants.
var unionRegistry sync.Map

// DefineUnion registers the candidate concrete types of a tagged
// union, given a nil pointer to the interface type (for example
// (*Shape)(nil)) and sample values of each variant in declaration
// order. Decoding into the interface tries each variant in order and
// keeps the first that decodes cleanly. Panics if iface is not a
// pointer to an interface type or a variant does not implement it.
func DefineUnion(iface any, variants ...any) {
	pt := reflect.TypeOf(iface)
	if pt == nil || pt.Kind() != reflect.Pointer || pt.Elem().Kind() != reflect.Interface {
		panic(fmt.Sprintf("yamlet: DefineUnion: want pointer to interface, got %T", iface))
	}
	it := pt.Elem()
	types := make([]reflect.Type, len(variants))
	for i, v := range variants {
		vt := reflect.TypeOf(v)
		if !vt.Implements(it) {
			panic(fmt.Sprintf("yamlet: DefineUnion: %s does not implement %s", vt, it))
		}
		types[i] = vt
	}
	unionRegistry.Store(it, types)
}

func lookupUnion(t reflect.Type) ([]reflect.Type, bool) {
	v, ok := unionRegistry.Load(t)
	if !ok {
		return nil, false
	}
	return v.([]reflect.Type), true
}
