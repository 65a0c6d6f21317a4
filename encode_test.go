package yamlet_test

import (
	"testing"

	yamlet "github.com/KimNorgaard/go-yamlet"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", "hello\n"},
		{"int", 42, "42\n"},
		{"negative int", -7, "-7\n"},
		{"float", 3.14, "3.14\n"},
		{"bool", true, "true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := yamlet.Marshal(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(out))
		})
	}
}

func TestMarshal_Struct(t *testing.T) {
	type config struct {
		Name string `yamlet:"name"`
		Port int    `yamlet:"port"`
	}

	out, err := yamlet.Marshal(config{Name: "widget", Port: 8080})
	require.NoError(t, err)
	require.Equal(t, "name: widget\nport: 8080\n", string(out))
}

func TestMarshal_ZeroValuesSuppressed(t *testing.T) {
	type config struct {
		Name  string `yamlet:"name"`
		Port  int    `yamlet:"port"`
		Debug bool   `yamlet:"debug"`
		Tags  []int  `yamlet:"tags"`
	}

	out, err := yamlet.Marshal(config{Name: "a"})
	require.NoError(t, err)
	require.Equal(t, "name: a\n", string(out))
}

func TestMarshal_AlwaysEmit(t *testing.T) {
	type config struct {
		Port int `yamlet:"port"`
	}

	pols := yamlet.NewPolicies().
		Define(config{}, "Port", yamlet.Policy{AlwaysEmit: true})

	out, err := yamlet.Marshal(config{}, yamlet.WithPolicies(pols))
	require.NoError(t, err)
	require.Equal(t, "port: 0\n", string(out))
}

func TestMarshal_IntegerFormats(t *testing.T) {
	type row struct {
		N int `yamlet:"n"`
	}

	tests := []struct {
		name   string
		format yamlet.Format
		n      int
		want   string
	}{
		{"hex", yamlet.FormatHex, 255, "n: 0xff\n"},
		{"octal", yamlet.FormatOctal, 8, "n: 0o10\n"},
		{"binary", yamlet.FormatBinary, 5, "n: 0b101\n"},
		{"decimal", yamlet.FormatDecimal, 255, "n: 255\n"},
		{"negative hex", yamlet.FormatHex, -255, "n: -0xff\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pols := yamlet.NewPolicies().
				Define(row{}, "N", yamlet.Policy{Format: tt.format})
			out, err := yamlet.Marshal(row{N: tt.n}, yamlet.WithPolicies(pols))
			require.NoError(t, err)
			require.Equal(t, tt.want, string(out))
		})
	}
}

func TestMarshal_FloatFormats(t *testing.T) {
	type row struct {
		F float64 `yamlet:"f"`
	}

	pols := yamlet.NewPolicies().
		Define(row{}, "F", yamlet.Policy{Format: yamlet.FormatFixed})
	out, err := yamlet.Marshal(row{F: 10.5}, yamlet.WithPolicies(pols))
	require.NoError(t, err)
	require.Equal(t, "f: 10.5\n", string(out))

	pols = yamlet.NewPolicies().
		Define(row{}, "F", yamlet.Policy{Format: yamlet.FormatScientific})
	out, err = yamlet.Marshal(row{F: 10.5}, yamlet.WithPolicies(pols))
	require.NoError(t, err)
	require.Equal(t, "f: 1.05e+01\n", string(out))
}

func TestMarshal_BoolFormats(t *testing.T) {
	type row struct {
		B bool `yamlet:"b"`
	}

	tests := []struct {
		format    yamlet.Format
		wantTrue  string
		wantFalse string
	}{
		{yamlet.FormatBoolYN, "y", "n"},
		{yamlet.FormatBoolYesNo, "yes", "no"},
		{yamlet.FormatBoolOnOff, "on", "off"},
		{yamlet.FormatBoolTrueFalse, "true", "false"},
	}
	for _, tt := range tests {
		pols := yamlet.NewPolicies().
			Define(row{}, "B", yamlet.Policy{Format: tt.format, AlwaysEmit: true})

		out, err := yamlet.Marshal(row{B: true}, yamlet.WithPolicies(pols))
		require.NoError(t, err)
		require.Equal(t, "b: "+tt.wantTrue+"\n", string(out))

		out, err = yamlet.Marshal(row{B: false}, yamlet.WithPolicies(pols))
		require.NoError(t, err)
		require.Equal(t, "b: "+tt.wantFalse+"\n", string(out))
	}
}

func TestMarshal_FormatKindMismatch(t *testing.T) {
	t.Run("Bool Format On Int", func(t *testing.T) {
		type row struct {
			N int `yamlet:"n"`
		}
		pols := yamlet.NewPolicies().
			Define(row{}, "N", yamlet.Policy{Format: yamlet.FormatBoolYesNo})
		_, err := yamlet.Marshal(row{N: 1}, yamlet.WithPolicies(pols))
		require.ErrorIs(t, err, yamlet.ErrTypeMismatch)
	})

	t.Run("Int Format On Float", func(t *testing.T) {
		type row struct {
			F float64 `yamlet:"f"`
		}
		pols := yamlet.NewPolicies().
			Define(row{}, "F", yamlet.Policy{Format: yamlet.FormatHex})
		_, err := yamlet.Marshal(row{F: 1.5}, yamlet.WithPolicies(pols))
		require.ErrorIs(t, err, yamlet.ErrTypeMismatch)
	})
}

func TestMarshal_MapKeysSorted(t *testing.T) {
	out, err := yamlet.Marshal(map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	require.Equal(t, "a: 1\nb: 2\nc: 3\n", string(out))
}

func TestMarshal_Bytes(t *testing.T) {
	type row struct {
		Raw []byte `yamlet:"raw"`
	}
	out, err := yamlet.Marshal(row{Raw: []byte("abc")})
	require.NoError(t, err)
	require.Equal(t, "raw: abc\n", string(out))
}

func TestMarshal_NilPointerOmitted(t *testing.T) {
	type row struct {
		Name string `yamlet:"name"`
		Port *int   `yamlet:"port"`
	}
	out, err := yamlet.Marshal(row{Name: "a"})
	require.NoError(t, err)
	require.Equal(t, "name: a\n", string(out))

	port := 80
	out, err = yamlet.Marshal(row{Name: "a", Port: &port})
	require.NoError(t, err)
	require.Equal(t, "name: a\nport: 80\n", string(out))
}

func TestMarshal_Enum(t *testing.T) {
	type row struct {
		C color `yamlet:"c"`
	}
	out, err := yamlet.Marshal(row{C: colorBlue})
	require.NoError(t, err)
	require.Equal(t, "c: blue\n", string(out))

	_, err = yamlet.Marshal(row{C: color(99)})
	require.ErrorIs(t, err, yamlet.ErrCannotEncode)
}

func TestMarshal_UnsupportedType(t *testing.T) {
	_, err := yamlet.Marshal(func() {})
	require.ErrorIs(t, err, yamlet.ErrCannotEncode)

	_, err = yamlet.Marshal(map[int]string{1: "a"})
	require.ErrorIs(t, err, yamlet.ErrCannotEncode)
}
