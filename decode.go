package yamlet

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

type decodeState struct {
	depth    int
	policies *Policies
}

// decode populates rv from v, dispatching on the destination type.
func (ds *decodeState) decode(v Value, rv reflect.Value) error { //nolint:gocyclo
	ds.depth--
	if ds.depth <= 0 {
		return fmt.Errorf("yamlet: reached max recursion depth")
	}
	defer func() { ds.depth++ }()

	if rv.Kind() == reflect.Pointer {
		if v.Kind() == KindEmpty {
			rv.SetZero()
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return ds.decode(v, rv.Elem())
	}

	// An empty value zeroes any destination, so it must win over the
	// enum and union dispatch below.
	if v.Kind() == KindEmpty {
		rv.SetZero()
		return nil
	}

	if set, ok := lookupEnum(rv.Type()); ok {
		return decodeEnum(v, rv, set)
	}

	if rv.Kind() == reflect.Interface {
		if rv.NumMethod() == 0 {
			return decodeAny(v, rv)
		}
		return ds.decodeUnion(v, rv)
	}

	switch rv.Kind() {
	case reflect.Bool:
		return decodeBool(v, rv)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decodeInt(v, rv)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return decodeUint(v, rv)
	case reflect.Float32, reflect.Float64:
		return decodeFloat(v, rv)
	case reflect.String:
		return decodeString(v, rv)
	case reflect.Slice:
		return ds.decodeSlice(v, rv)
	case reflect.Array:
		return ds.decodeArray(v, rv)
	case reflect.Struct:
		return ds.decodeStruct(v, rv)
	case reflect.Map:
		return ds.decodeMap(v, rv)
	default:
		return fmt.Errorf("yamlet: cannot decode into Go value of type %s: %w", rv.Type(), ErrUnimplemented)
	}
}

func mismatch(v Value, t reflect.Type) error {
	return fmt.Errorf("yamlet: cannot decode %s into Go value of type %s: %w", v.Kind(), t, ErrTypeMismatch)
}

func decodeString(v Value, rv reflect.Value) error {
	if v.Kind() != KindScalar {
		return mismatch(v, rv.Type())
	}
	rv.SetString(v.Scalar())
	return nil
}

// splitBase detects the numeric base of a literal from its 0x/0o/0b
// prefix, keeping any leading sign.
func splitBase(s string) (digits string, base int) {
	sign := ""
	rest := s
	if strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "+") {
		sign, rest = rest[:1], rest[1:]
	}
	if len(rest) > 1 && rest[0] == '0' {
		switch rest[1] {
		case 'x', 'X':
			return sign + rest[2:], 16
		case 'o', 'O':
			return sign + rest[2:], 8
		case 'b', 'B':
			return sign + rest[2:], 2
		}
	}
	return s, 10
}

func numErr(s string, t reflect.Type, err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
		return fmt.Errorf("yamlet: value %q overflows Go value of type %s: %w", s, t, ErrOverflow)
	}
	return fmt.Errorf("yamlet: cannot parse %q as %s: %w", s, t, ErrInvalidCharacter)
}

func decodeInt(v Value, rv reflect.Value) error {
	if v.Kind() != KindScalar {
		return mismatch(v, rv.Type())
	}
	s := v.Scalar()
	digits, base := splitBase(s)
	n, err := strconv.ParseInt(digits, base, rv.Type().Bits())
	if err != nil {
		return numErr(s, rv.Type(), err)
	}
	rv.SetInt(n)
	return nil
}

func decodeUint(v Value, rv reflect.Value) error {
	if v.Kind() != KindScalar {
		return mismatch(v, rv.Type())
	}
	s := v.Scalar()
	digits, base := splitBase(s)
	n, err := strconv.ParseUint(digits, base, rv.Type().Bits())
	if err != nil {
		return numErr(s, rv.Type(), err)
	}
	rv.SetUint(n)
	return nil
}

func decodeFloat(v Value, rv reflect.Value) error {
	if v.Kind() != KindScalar {
		return mismatch(v, rv.Type())
	}
	s := v.Scalar()
	f, err := strconv.ParseFloat(s, rv.Type().Bits())
	if err != nil {
		return numErr(s, rv.Type(), err)
	}
	rv.SetFloat(f)
	return nil
}

// Boolean literals, matched case-insensitively.
var (
	trueWords  = map[string]bool{"y": true, "yes": true, "on": true, "true": true}
	falseWords = map[string]bool{"n": true, "no": true, "off": true, "false": true}
)

func decodeBool(v Value, rv reflect.Value) error {
	if v.Kind() != KindScalar {
		return mismatch(v, rv.Type())
	}
	s := strings.ToLower(v.Scalar())
	switch {
	case trueWords[s]:
		rv.SetBool(true)
	case falseWords[s]:
		rv.SetBool(false)
	default:
		return fmt.Errorf("yamlet: %q is not a boolean literal: %w", v.Scalar(), ErrTypeMismatch)
	}
	return nil
}

func decodeEnum(v Value, rv reflect.Value, set *enumSet) error {
	if v.Kind() != KindScalar {
		return mismatch(v, rv.Type())
	}
	val, ok := set.byName[v.Scalar()]
	if !ok {
		return fmt.Errorf("yamlet: no variant named %q in %s: %w", v.Scalar(), rv.Type(), ErrEnumTagMissing)
	}
	rv.Set(val)
	return nil
}

func (ds *decodeState) decodeSlice(v Value, rv reflect.Value) error {
	t := rv.Type()
	// A scalar decodes verbatim into a byte sequence.
	if t.Elem().Kind() == reflect.Uint8 && v.Kind() == KindScalar {
		rv.SetBytes([]byte(v.Scalar()))
		return nil
	}
	if v.Kind() != KindList {
		return mismatch(v, t)
	}
	out := reflect.MakeSlice(t, v.Len(), v.Len())
	for i := 0; i < v.Len(); i++ {
		if err := ds.decode(v.Index(i), out.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (ds *decodeState) decodeArray(v Value, rv reflect.Value) error {
	if v.Kind() != KindList {
		return mismatch(v, rv.Type())
	}
	if v.Len() != rv.Len() {
		return fmt.Errorf("yamlet: cannot decode list of length %d into array of length %d: %w",
			v.Len(), rv.Len(), ErrArraySize)
	}
	for i := 0; i < v.Len(); i++ {
		if err := ds.decode(v.Index(i), rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (ds *decodeState) decodeStruct(v Value, rv reflect.Value) error {
	if v.Kind() != KindMap {
		return mismatch(v, rv.Type())
	}
	t := rv.Type()
	for _, f := range cachedFields(t) {
		fv := rv.FieldByIndex(f.idx)
		val, ok := v.Get(f.name)
		if !ok {
			val, ok = v.Get(f.alt)
		}
		if !ok {
			switch {
			case f.typ.Kind() == reflect.Pointer:
				fv.SetZero()
			case f.omitempty:
				// The destination keeps whatever it already holds, so
				// in-place decoding supplies field defaults.
			default:
				return fmt.Errorf("yamlet: missing key %q for field %s.%s: %w", f.name, t, f.goName, ErrFieldMissing)
			}
			continue
		}

		if pol, ok := ds.policies.fieldPolicy(t, f.owner, f.goName); ok && pol.Parse != nil {
			if err := ds.decodeCustom(val, fv, pol); err != nil {
				return fmt.Errorf("yamlet: field %s.%s: %w", t, f.goName, err)
			}
			continue
		}
		if err := ds.decode(val, fv); err != nil {
			return err
		}
	}
	return nil
}

// decodeCustom routes a field through its policy's Parse callback.
func (ds *decodeState) decodeCustom(v Value, fv reflect.Value, pol Policy) error {
	dst := fv.Addr().Interface()
	if pol.ElementType == nil {
		return pol.Parse(v, dst)
	}
	inter := reflect.New(pol.ElementType)
	if err := ds.decode(v, inter.Elem()); err != nil {
		return err
	}
	return pol.Parse(inter.Interface(), dst)
}

func (ds *decodeState) decodeMap(v Value, rv reflect.Value) error {
	t := rv.Type()
	if t.Key().Kind() != reflect.String {
		return fmt.Errorf("yamlet: cannot decode into map with non-string key type %s: %w", t.Key(), ErrUnimplemented)
	}
	if v.Kind() != KindMap {
		return mismatch(v, t)
	}
	out := reflect.MakeMapWithSize(t, v.Len())
	for i := 0; i < v.Len(); i++ {
		key, ev := v.EntryAt(i)
		elem := reflect.New(t.Elem()).Elem()
		if err := ds.decode(ev, elem); err != nil {
			return err
		}
		out.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), elem)
	}
	rv.Set(out)
	return nil
}

// decodeUnion tries each registered variant in declaration order and
// keeps the first that decodes cleanly. Shape errors move on to the
// next variant; anything else aborts.
func (ds *decodeState) decodeUnion(v Value, rv reflect.Value) error {
	variants, ok := lookupUnion(rv.Type())
	if !ok {
		return fmt.Errorf("yamlet: interface %s has no variants registered: %w", rv.Type(), ErrUntaggedUnion)
	}
	for _, vt := range variants {
		inst := reflect.New(vt).Elem()
		err := ds.decode(v, inst)
		if err == nil {
			rv.Set(inst)
			return nil
		}
		if errors.Is(err, ErrInvalidCharacter) || errors.Is(err, ErrTypeMismatch) || errors.Is(err, ErrFieldMissing) {
			continue
		}
		return err
	}
	return fmt.Errorf("yamlet: no variant of %s matched the value: %w", rv.Type(), ErrUnionTagMissing)
}

// decodeAny materializes v into untyped Go data: string, []any or
// map[string]any.
func decodeAny(v Value, rv reflect.Value) error {
	if v.Kind() == KindEmpty {
		rv.SetZero()
		return nil
	}
	rv.Set(reflect.ValueOf(toAny(v)))
	return nil
}

func toAny(v Value) any {
	switch v.Kind() {
	case KindScalar:
		return v.Scalar()
	case KindList:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = toAny(v.Index(i))
		}
		return out
	case KindMap:
		out := make(map[string]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			key, ev := v.EntryAt(i)
			out[key] = toAny(ev)
		}
		return out
	default:
		return nil
	}
}

// A field represents a single decodable field of a struct.
type field struct {
	name      string // the key to look up: tag name or Go field name
	alt       string // name with underscores replaced by hyphens
	goName    string
	owner     reflect.Type // the struct type declaring the field
	idx       []int
	typ       reflect.Type
	omitempty bool
}

// fieldCache caches the decodable fields per struct type.
var fieldCache sync.Map // map[reflect.Type][]field

// cachedFields returns the decodable fields of t, flattening embedded
// structs. The result is cached to avoid repeated reflection work.
func cachedFields(t reflect.Type) []field {
	if f, ok := fieldCache.Load(t); ok {
		return f.([]field)
	}

	var fields []field
	var walk func(t reflect.Type, idx []int)
	walk = func(t reflect.Type, idx []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				walk(sf.Type, append(idx, i))
				continue
			}
			if !sf.IsExported() {
				continue
			}

			tag := sf.Tag.Get("yamlet")
			if tag == "-" {
				continue
			}
			name, opts := parseTag(tag)
			if name == "" {
				name = sf.Name
			}

			fields = append(fields, field{
				name:      name,
				alt:       strings.ReplaceAll(name, "_", "-"),
				goName:    sf.Name,
				owner:     t,
				idx:       append(append([]int(nil), idx...), i),
				typ:       sf.Type,
				omitempty: opts["omitempty"],
			})
		}
	}
	walk(t, nil)

	fieldCache.Store(t, fields)
	return fields
}

// parseTag splits a yamlet struct tag into its name and options.
func parseTag(tag string) (string, map[string]bool) {
	parts := strings.Split(tag, ",")
	options := make(map[string]bool)
	for _, part := range parts[1:] {
		options[strings.TrimSpace(part)] = true
	}
	return parts[0], options
}
