package yamlet

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

type encodeState struct {
	policies *Policies
}

// encode renders rv as a Value. The second result is false when the
// value renders to nothing (a nil pointer or interface), in which case
// the caller omits it entirely rather than emitting an explicit null.
func (es *encodeState) encode(rv reflect.Value, pol Policy) (Value, bool, error) { //nolint:gocyclo
	if !rv.IsValid() {
		return Value{}, false, nil
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Value{}, false, nil
		}
		rv = rv.Elem()
	}

	if set, ok := lookupEnum(rv.Type()); ok {
		name, ok := set.byValue[rv.Interface()]
		if !ok {
			return Value{}, false, fmt.Errorf("yamlet: value %v of %s matches no registered variant: %w",
				rv.Interface(), rv.Type(), ErrCannotEncode)
		}
		return scalarValue(name), true, nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		s, err := formatBool(rv.Bool(), pol.Format)
		if err != nil {
			return Value{}, false, err
		}
		return scalarValue(s), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s, err := formatInt(rv.Int(), pol.Format)
		if err != nil {
			return Value{}, false, err
		}
		return scalarValue(s), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		s, err := formatUint(rv.Uint(), pol.Format)
		if err != nil {
			return Value{}, false, err
		}
		return scalarValue(s), true, nil
	case reflect.Float32, reflect.Float64:
		s, err := formatFloat(rv.Float(), rv.Type().Bits(), pol.Format)
		if err != nil {
			return Value{}, false, err
		}
		return scalarValue(s), true, nil
	case reflect.String:
		return scalarValue(rv.String()), true, nil
	case reflect.Slice, reflect.Array:
		return es.encodeSequence(rv, pol)
	case reflect.Map:
		return es.encodeMap(rv)
	case reflect.Struct:
		return es.encodeStruct(rv)
	default:
		return Value{}, false, fmt.Errorf("yamlet: unsupported type for encoding: %s: %w", rv.Type(), ErrCannotEncode)
	}
}

func (es *encodeState) encodeSequence(rv reflect.Value, pol Policy) (Value, bool, error) {
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return scalarValue(string(rv.Bytes())), true, nil
	}
	elems := make([]Value, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev, _, err := es.encode(rv.Index(i), pol)
		if err != nil {
			return Value{}, false, err
		}
		elems[i] = ev
	}
	return listValue(elems), true, nil
}

func (es *encodeState) encodeMap(rv reflect.Value) (Value, bool, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return Value{}, false, fmt.Errorf("yamlet: map key type must be a string, got %s: %w",
			rv.Type().Key(), ErrCannotEncode)
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	b := newMapBuilder(len(keys))
	for _, key := range keys {
		ev, ok, err := es.encode(rv.MapIndex(key), Policy{})
		if err != nil {
			return Value{}, false, err
		}
		if !ok {
			ev = Value{}
		}
		if err := b.put(key.String(), ev); err != nil {
			return Value{}, false, err
		}
	}
	return b.value(), true, nil
}

func (es *encodeState) encodeStruct(rv reflect.Value) (Value, bool, error) {
	t := rv.Type()
	fields := cachedFields(t)
	b := newMapBuilder(len(fields))

	for _, f := range fields {
		fv := rv.FieldByIndex(f.idx)
		pol, _ := es.policies.fieldPolicy(t, f.owner, f.goName)

		// A field equal to its default is omitted unless its policy
		// insists otherwise.
		if isEmptyValue(fv) && !pol.AlwaysEmit {
			continue
		}

		var ev Value
		var ok bool
		var err error
		if pol.Encode != nil {
			ev, ok, err = es.encodeCustom(fv, pol)
		} else {
			ev, ok, err = es.encode(fv, pol)
		}
		if err != nil {
			return Value{}, false, fmt.Errorf("yamlet: field %s.%s: %w", t, f.goName, err)
		}
		if !ok {
			continue
		}
		if err := b.put(f.name, ev); err != nil {
			return Value{}, false, err
		}
	}
	return b.value(), true, nil
}

// encodeCustom routes a field through its policy's Encode callback.
func (es *encodeState) encodeCustom(fv reflect.Value, pol Policy) (Value, bool, error) {
	var src reflect.Value
	if fv.CanAddr() {
		src = fv.Addr()
	} else {
		src = reflect.New(fv.Type())
		src.Elem().Set(fv)
	}
	ret, err := pol.Encode(src.Interface())
	if err != nil {
		return Value{}, false, err
	}
	if ret == nil {
		return Value{}, false, nil
	}
	if v, ok := ret.(Value); ok {
		return v, true, nil
	}
	return es.encode(reflect.ValueOf(ret), Policy{Format: pol.Format})
}

func formatInt(n int64, f Format) (string, error) {
	var prefix string
	var base int
	switch f {
	case FormatDefault, FormatDecimal:
		return strconv.FormatInt(n, 10), nil
	case FormatHex:
		prefix, base = "0x", 16
	case FormatOctal:
		prefix, base = "0o", 8
	case FormatBinary:
		prefix, base = "0b", 2
	default:
		return "", fmt.Errorf("format %d does not apply to an integer field: %w", f, ErrTypeMismatch)
	}
	s := strconv.FormatInt(n, base)
	if s[0] == '-' {
		return "-" + prefix + s[1:], nil
	}
	return prefix + s, nil
}

func formatUint(n uint64, f Format) (string, error) {
	switch f {
	case FormatDefault, FormatDecimal:
		return strconv.FormatUint(n, 10), nil
	case FormatHex:
		return "0x" + strconv.FormatUint(n, 16), nil
	case FormatOctal:
		return "0o" + strconv.FormatUint(n, 8), nil
	case FormatBinary:
		return "0b" + strconv.FormatUint(n, 2), nil
	default:
		return "", fmt.Errorf("format %d does not apply to an integer field: %w", f, ErrTypeMismatch)
	}
}

func formatFloat(x float64, bits int, f Format) (string, error) {
	switch f {
	case FormatDefault:
		return strconv.FormatFloat(x, 'g', -1, bits), nil
	case FormatFixed:
		return strconv.FormatFloat(x, 'f', -1, bits), nil
	case FormatScientific:
		return strconv.FormatFloat(x, 'e', -1, bits), nil
	default:
		return "", fmt.Errorf("format %d does not apply to a float field: %w", f, ErrTypeMismatch)
	}
}

func formatBool(b bool, f Format) (string, error) {
	var yes, no string
	switch f {
	case FormatDefault, FormatBoolTrueFalse:
		yes, no = "true", "false"
	case FormatBoolYN:
		yes, no = "y", "n"
	case FormatBoolYesNo:
		yes, no = "yes", "no"
	case FormatBoolOnOff:
		yes, no = "on", "off"
	default:
		return "", fmt.Errorf("format %d does not apply to a boolean field: %w", f, ErrTypeMismatch)
	}
	if b {
		return yes, nil
	}
	return no, nil
}

// isEmptyValue reports whether the value v equals its type's default.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	case reflect.Struct:
		return v.IsZero()
	}
	return false
}
