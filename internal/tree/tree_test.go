package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestList_AritySpecialization(t *testing.T) {
	tr := New([]byte("abcdef"))
	a := tr.AddScalar(0, 1)
	b := tr.AddScalar(1, 2)
	c := tr.AddScalar(2, 3)

	tests := []struct {
		name  string
		elems []NodeIndex
		tag   Tag
	}{
		{"empty", nil, TagListEmpty},
		{"one", []NodeIndex{a}, TagListOne},
		{"two", []NodeIndex{a, b}, TagListTwo},
		{"many", []NodeIndex{a, b, c}, TagListMany},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tr.AddList(tt.elems)
			require.Equal(t, tt.tag, tr.Tag(n))
			require.Equal(t, len(tt.elems), tr.ListLen(n))
			for i, want := range tt.elems {
				require.Equal(t, want, tr.ListElem(n, i))
			}
		})
	}
}

func TestMap_Entries(t *testing.T) {
	src := []byte("key: value\nother: 2\n")
	tr := New(src)

	v1 := tr.AddScalar(5, 10)
	v2 := tr.AddScalar(18, 19)

	single := tr.AddMap([]MapEntry{{Key: tr.KeyFromSpan(0, 3), Value: v1}})
	require.Equal(t, TagMapSingle, tr.Tag(single))
	require.Equal(t, 1, tr.MapLen(single))
	key, val := tr.MapEntryAt(single, 0)
	require.Equal(t, "key", key)
	require.Equal(t, "value", tr.ScalarText(val))

	many := tr.AddMap([]MapEntry{
		{Key: tr.KeyFromSpan(0, 3), Value: v1},
		{Key: tr.KeyFromSpan(11, 16), Value: v2},
	})
	require.Equal(t, TagMapMany, tr.Tag(many))
	require.Equal(t, 2, tr.MapLen(many))
	key, val = tr.MapEntryAt(many, 1)
	require.Equal(t, "other", key)
	require.Equal(t, "2", tr.ScalarText(val))
}

func TestMap_InternedKeys(t *testing.T) {
	tr := New([]byte("x: 1"))
	v := tr.AddScalar(3, 4)

	// A quoted key's unescaped text lives in the string table, not the
	// source.
	n := tr.AddMap([]MapEntry{{Key: tr.InternKey([]byte("it's")), Value: v}})
	key, _ := tr.MapEntryAt(n, 0)
	require.Equal(t, "it's", key)
}

func TestStrings_Interned(t *testing.T) {
	tr := New(nil)
	n := tr.AddString([]byte("a\tb"))
	require.Equal(t, TagString, tr.Tag(n))
	require.Equal(t, "a\tb", tr.ScalarText(n))
}

func TestDocuments(t *testing.T) {
	src := []byte("--- !meta\nx")
	tr := New(src)

	v := tr.AddScalar(10, 11)
	withDir := tr.AddDocument(v, 5, 9)
	bare := tr.AddDocument(NilNode, 0, 0)

	require.Equal(t, []NodeIndex{withDir, bare}, tr.Docs())

	dir, ok := tr.Directive(withDir)
	require.True(t, ok)
	require.Equal(t, "meta", dir)
	require.Equal(t, v, tr.DocValue(withDir))

	_, ok = tr.Directive(bare)
	require.False(t, ok)
	require.Equal(t, NilNode, tr.DocValue(bare))
}
