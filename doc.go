/*
Package yamlet implements a small, strict dialect of YAML covering block
and flow collections, quoted and plain scalars, comments and multiple
documents per stream. The API is designed to be familiar to Go
developers, closely mirroring the standard `encoding/json` package.

The package offers two primary workflows depending on the use case:

1. Reflective Decoding and Encoding

For the common task of converting text into Go structs (and vice versa),
the Marshal and Unmarshal functions provide a simple and direct API:

	var data = []byte("name: yamlet\nversion: 1.0\n")

	type Config struct {
		Name    string  `yamlet:"name"`
		Version float64 `yamlet:"version"`
	}

	var cfg Config
	if err := yamlet.Unmarshal(data, &cfg); err != nil {
		// handle error
	}
	// cfg is now populated with {Name: "yamlet", Version: 1.0}

Every struct field must be present in the source unless it is a pointer
(optional, nil when absent) or carries the omitempty tag option, in
which case the field keeps whatever value it already holds; decoding
into a pre-populated struct therefore supplies field defaults.

Behavior beyond what tags can express is declared in a Policies table
passed via WithPolicies: per-field Parse and Encode callbacks, output
formats such as FormatHex or FormatBoolYesNo, and AlwaysEmit to defeat
the encoder's default suppression of zero values. Enumerations and
tagged unions are registered process-wide with DefineEnum and
DefineUnion.

2. Dynamic Document Access

When the shape of the input is not known up front, Load parses a stream
into a DocumentSet of uniform Value trees that can be walked directly:

	ds, err := yamlet.Load(data)
	if err != nil {
		// handle error
	}
	doc := ds.At(0).Value
	if port, ok := doc.Get("port"); ok {
		// port.Scalar(), port.Kind(), ...
	}

A DocumentSet can also be decoded later with DocumentSet.Decode, and
re-rendered with document framing via DocumentSet.Stringify.

Syntax errors are reported as a ParseErrors bundle with line and column
positions. Duplicate keys within one mapping are rejected at load time.
Decode and encode failures wrap the package's sentinel errors
(ErrTypeMismatch, ErrOverflow, ErrFieldMissing, ...) and should be
tested with errors.Is.
*/
package yamlet
