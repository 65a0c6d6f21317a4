package yamlet

import (
	"io"
	"strings"
)

// stringifier renders a Value to text. Scalars and lists of scalars
// stay inline; everything else is laid out block-style: list entries
// on dashed lines with nested content two columns past the dash, map
// values on the key's line when inline-eligible and otherwise on the
// following lines four columns past the key.
type stringifier struct {
	w io.Writer
}

func newStringifier(w io.Writer) *stringifier {
	return &stringifier{w: w}
}

func (s *stringifier) write(text string) error {
	_, err := io.WriteString(s.w, text)
	return err
}

func indentOf(n int) string {
	return strings.Repeat(" ", n)
}

// isInline reports whether v renders on a single line.
func isInline(v Value) bool {
	switch v.Kind() {
	case KindEmpty, KindScalar:
		return true
	case KindMap:
		return v.Len() == 0
	default:
		for i := 0; i < v.Len(); i++ {
			k := v.Index(i).Kind()
			if k != KindScalar {
				return false
			}
		}
		return true
	}
}

// inlineText renders an inline-eligible value.
func inlineText(v Value) string {
	switch v.Kind() {
	case KindScalar:
		return v.Scalar()
	case KindMap:
		return "{}"
	case KindList:
		if v.Len() == 0 {
			return "[]"
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = v.Index(i).Scalar()
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	default:
		return ""
	}
}

// emitDoc renders one document value at column zero.
func (s *stringifier) emitDoc(v Value) error {
	switch {
	case v.Kind() == KindEmpty:
		return nil
	case isInline(v):
		return s.write(inlineText(v) + "\n")
	case v.Kind() == KindList:
		return s.emitList(v, 0)
	default:
		return s.emitMap(v, 0, false)
	}
}

func (s *stringifier) emitList(v Value, indent int) error {
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if err := s.write(indentOf(indent)); err != nil {
			return err
		}
		switch {
		case elem.Kind() == KindMap && elem.Len() > 0:
			// The sole map of a dashed entry inlines its first key
			// after the dash.
			if err := s.write("- "); err != nil {
				return err
			}
			if err := s.emitMap(elem, indent+2, true); err != nil {
				return err
			}
		case elem.Kind() == KindEmpty:
			if err := s.write("-\n"); err != nil {
				return err
			}
		case isInline(elem):
			if err := s.write("- " + inlineText(elem) + "\n"); err != nil {
				return err
			}
		default:
			if err := s.write("-\n"); err != nil {
				return err
			}
			if err := s.emitList(elem, indent+2); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *stringifier) emitMap(v Value, indent int, inlineFirst bool) error {
	for i := 0; i < v.Len(); i++ {
		key, val := v.EntryAt(i)
		if !(inlineFirst && i == 0) {
			if err := s.write(indentOf(indent)); err != nil {
				return err
			}
		}
		if err := s.write(key + ":"); err != nil {
			return err
		}
		switch {
		case val.Kind() == KindEmpty:
			if err := s.write("\n"); err != nil {
				return err
			}
		case isInline(val):
			if err := s.write(" " + inlineText(val) + "\n"); err != nil {
				return err
			}
		case val.Kind() == KindList:
			if err := s.write("\n"); err != nil {
				return err
			}
			if err := s.emitList(val, indent+4); err != nil {
				return err
			}
		default:
			if err := s.write("\n"); err != nil {
				return err
			}
			if err := s.emitMap(val, indent+4, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders v using the block/flow layout rules.
func (v Value) String() string {
	var b strings.Builder
	s := newStringifier(&b)
	_ = s.emitDoc(v)
	return b.String()
}
