package parser

import (
	"strings"
	"testing"

	"github.com/KimNorgaard/go-yamlet/internal/tree"
	"github.com/stretchr/testify/require"
)

// parseOne parses src and returns the tree and the value of the single
// document, failing the test on any parse error.
func parseOne(t *testing.T, src string) (*tree.Tree, tree.NodeIndex) {
	t.Helper()
	p := New([]byte(src))
	tr := p.Parse()
	require.Empty(t, p.Errors())
	require.Len(t, tr.Docs(), 1)
	return tr, tr.DocValue(tr.Docs()[0])
}

func TestParse_BlockMap(t *testing.T) {
	tr, root := parseOne(t, "name: widget\ncount: 3\n")

	require.Equal(t, tree.TagMapMany, tr.Tag(root))
	require.Equal(t, 2, tr.MapLen(root))

	key, val := tr.MapEntryAt(root, 0)
	require.Equal(t, "name", key)
	require.Equal(t, "widget", tr.ScalarText(val))

	key, val = tr.MapEntryAt(root, 1)
	require.Equal(t, "count", key)
	require.Equal(t, "3", tr.ScalarText(val))
}

func TestParse_NestedBlockMap(t *testing.T) {
	src := "server:\n" +
		"    host: localhost\n" +
		"    port: 8080\n" +
		"debug: true\n"
	tr, root := parseOne(t, src)

	require.Equal(t, 2, tr.MapLen(root))
	key, server := tr.MapEntryAt(root, 0)
	require.Equal(t, "server", key)
	require.Equal(t, 2, tr.MapLen(server))

	key, host := tr.MapEntryAt(server, 0)
	require.Equal(t, "host", key)
	require.Equal(t, "localhost", tr.ScalarText(host))
}

func TestParse_BlockList(t *testing.T) {
	tr, root := parseOne(t, "- one\n- two\n- three\n")

	require.Equal(t, 3, tr.ListLen(root))
	require.Equal(t, "one", tr.ScalarText(tr.ListElem(root, 0)))
	require.Equal(t, "three", tr.ScalarText(tr.ListElem(root, 2)))
}

func TestParse_ListAtKeyColumn(t *testing.T) {
	// A block list may sit at the same column as the key that owns it.
	src := "items:\n" +
		"- a\n" +
		"- b\n" +
		"done: yes\n"
	tr, root := parseOne(t, src)

	require.Equal(t, 2, tr.MapLen(root))
	key, items := tr.MapEntryAt(root, 0)
	require.Equal(t, "items", key)
	require.Equal(t, 2, tr.ListLen(items))
	require.Equal(t, "a", tr.ScalarText(tr.ListElem(items, 0)))

	key, done := tr.MapEntryAt(root, 1)
	require.Equal(t, "done", key)
	require.Equal(t, "yes", tr.ScalarText(done))
}

func TestParse_ListOfMaps(t *testing.T) {
	src := "- name: a\n" +
		"  size: 1\n" +
		"- name: b\n" +
		"  size: 2\n"
	tr, root := parseOne(t, src)

	require.Equal(t, 2, tr.ListLen(root))
	first := tr.ListElem(root, 0)
	require.Equal(t, 2, tr.MapLen(first))
	key, val := tr.MapEntryAt(first, 1)
	require.Equal(t, "size", key)
	require.Equal(t, "1", tr.ScalarText(val))
}

func TestParse_EmptyValues(t *testing.T) {
	src := "present: 1\n" +
		"absent:\n" +
		"also: 2\n"
	tr, root := parseOne(t, src)

	require.Equal(t, 3, tr.MapLen(root))
	_, absent := tr.MapEntryAt(root, 1)
	require.Equal(t, tree.NilNode, absent)
}

func TestParse_FlowCollections(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		tr, root := parseOne(t, "[ 1, 2, 3 ]\n")
		require.Equal(t, 3, tr.ListLen(root))
		require.Equal(t, "2", tr.ScalarText(tr.ListElem(root, 1)))
	})

	t.Run("trailing comma", func(t *testing.T) {
		tr, root := parseOne(t, "[ a, b, ]\n")
		require.Equal(t, 2, tr.ListLen(root))
	})

	t.Run("empty sequence", func(t *testing.T) {
		tr, root := parseOne(t, "[]\n")
		require.Equal(t, tree.TagListEmpty, tr.Tag(root))
	})

	t.Run("mapping", func(t *testing.T) {
		tr, root := parseOne(t, "{ a: 1, b: 2 }\n")
		require.Equal(t, 2, tr.MapLen(root))
		key, val := tr.MapEntryAt(root, 1)
		require.Equal(t, "b", key)
		require.Equal(t, "2", tr.ScalarText(val))
	})

	t.Run("empty mapping", func(t *testing.T) {
		tr, root := parseOne(t, "{}\n")
		require.Equal(t, 0, tr.MapLen(root))
	})

	t.Run("nested in block map", func(t *testing.T) {
		tr, root := parseOne(t, "tags: [ red, blue ]\n")
		_, tags := tr.MapEntryAt(root, 0)
		require.Equal(t, 2, tr.ListLen(tags))
	})
}

func TestParse_QuotedScalars(t *testing.T) {
	tr, root := parseOne(t, "a: 'it''s'\nb: \"x\\ty\"\n'c d': plain\n")

	_, a := tr.MapEntryAt(root, 0)
	require.Equal(t, "it's", tr.ScalarText(a))

	_, b := tr.MapEntryAt(root, 1)
	require.Equal(t, "x\ty", tr.ScalarText(b))

	key, _ := tr.MapEntryAt(root, 2)
	require.Equal(t, "c d", key)
}

func TestParse_MultipleDocuments(t *testing.T) {
	src := "---\na: 1\n---\nb: 2\n...\n"
	p := New([]byte(src))
	tr := p.Parse()
	require.Empty(t, p.Errors())
	require.Len(t, tr.Docs(), 2)

	key, _ := tr.MapEntryAt(tr.DocValue(tr.Docs()[0]), 0)
	require.Equal(t, "a", key)
	key, _ = tr.MapEntryAt(tr.DocValue(tr.Docs()[1]), 0)
	require.Equal(t, "b", key)
}

func TestParse_Directive(t *testing.T) {
	src := "--- !config\na: 1\n"
	p := New([]byte(src))
	tr := p.Parse()
	require.Empty(t, p.Errors())
	require.Len(t, tr.Docs(), 1)

	dir, ok := tr.Directive(tr.Docs()[0])
	require.True(t, ok)
	require.Equal(t, "config", dir)
}

func TestParse_EmptyDocument(t *testing.T) {
	src := "---\n---\na: 1\n"
	p := New([]byte(src))
	tr := p.Parse()
	require.Empty(t, p.Errors())
	require.Len(t, tr.Docs(), 2)
	require.Equal(t, tree.NilNode, tr.DocValue(tr.Docs()[0]))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"leading comma", "[ , a ]\n", "unexpected ',' in flow sequence"},
		{"consecutive commas", "[ a, , b ]\n", "consecutive commas in flow sequence"},
		{"unterminated sequence", "[ a, b\n", "unterminated flow sequence"},
		{"unterminated mapping", "{ a: 1\n", "unterminated flow mapping"},
		{"list content under dash", "-\nx\n", "unexpected content after document value"},
		{"content on next line", "- a\n  b: 1\n", "unexpected content after document value"},
		{"glued comment", "[ a ]#x\n", "comment must be separated from preceding content by whitespace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New([]byte(tt.input))
			p.Parse()
			errs := p.Errors()
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.Contains(e.Message, tt.msg) {
					found = true
				}
			}
			require.True(t, found, "expected %q among %v", tt.msg, errs)
		})
	}
}

func TestParse_ErrorPositions(t *testing.T) {
	p := New([]byte("a: 1\n[ x,, ]\n"))
	p.Parse()
	errs := p.Errors()
	require.NotEmpty(t, errs)
	require.Equal(t, 2, errs[0].Line)
}
