package yamlet

import (
	"errors"
	"fmt"
)

// ParseError represents a single error that occurred during parsing.
// It includes the position of the error.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

// ParseErrors is a slice of ParseError that implements the error
// interface. This allows returning all syntax errors found during
// parsing at once.
type ParseErrors []ParseError

func (p ParseErrors) Error() string {
	if len(p) == 0 {
		return ""
	}
	// For simplicity, the default error message for the collection
	// just reports the first error.
	return fmt.Sprintf("yamlet: parsing error at line %d, column %d: %s", p[0].Line, p[0].Column, p[0].Message)
}

// Sentinel errors classifying decode and encode failures. They are
// always returned wrapped with context; test with errors.Is.
var (
	// ErrTypeMismatch reports a value whose shape does not fit the
	// destination type, including decoding a multi-document set into a
	// non-collection type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidCharacter reports a malformed numeric literal.
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrOverflow reports a numeric literal out of range for the
	// destination type.
	ErrOverflow = errors.New("overflow")

	// ErrEnumTagMissing reports a scalar that matches no registered
	// name of the destination enumeration.
	ErrEnumTagMissing = errors.New("enum tag missing")

	// ErrFieldMissing reports a required struct field absent from the
	// source map.
	ErrFieldMissing = errors.New("struct field missing")

	// ErrArraySize reports a list whose length differs from the
	// destination array's length.
	ErrArraySize = errors.New("array size mismatch")

	// ErrUnionTagMissing reports that no registered union variant
	// accepted the value.
	ErrUnionTagMissing = errors.New("union tag missing")

	// ErrUntaggedUnion reports decoding into a non-empty interface
	// type with no variants registered via DefineUnion.
	ErrUntaggedUnion = errors.New("untagged union")

	// ErrCannotEncode reports a value that could not be rendered.
	ErrCannotEncode = errors.New("cannot encode value")

	// ErrUnimplemented reports a destination type the decoder does not
	// support, such as channels or functions.
	ErrUnimplemented = errors.New("unsupported destination type")
)

// A DuplicateKeyError reports a map key that occurs more than once in
// one mapping. It is fatal to the whole load.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("yamlet: duplicate map key %q", e.Key)
}
