package doc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	type tc struct {
		doc   Doc
		width int
		tabs  bool
		want  string
	}

	id := GroupID(1)

	tests := map[string]tc{
		"group fits flat": {
			doc:   Group(Text("a"), Line, Text("b")),
			width: 10,
			want:  "a b",
		},
		"group breaks when too wide": {
			doc:   Group(Text("a"), Line, Text("b")),
			width: 2,
			want:  "a\nb",
		},
		"group exactly at width stays flat": {
			doc:   Group(Text("a"), Line, Text("b")),
			width: 3,
			want:  "a b",
		},
		"fill breaks each separator on its own": {
			doc:   Fill(Text("aaaa"), Line, Text("b"), Line, Text("cccccccc")),
			width: 5,
			want:  "aaaa\nb\ncccccccc",
		},
		"fill keeps later pairs flat": {
			doc:   Fill(Text("aa"), Line, Text("bbbbbb"), Line, Text("cc"), Line, Text("dd")),
			width: 6,
			want:  "aa\nbbbbbb\ncc dd",
		},
		"indent with spaces": {
			doc:   Group(Text("foo("), Indent(SoftLine, Text("bar")), SoftLine, Text(")")),
			width: 5,
			want:  "foo(\n  bar\n)",
		},
		"indent with tabs": {
			doc:   Group(Text("foo("), Indent(SoftLine, Text("bar")), SoftLine, Text(")")),
			width: 5,
			tabs:  true,
			want:  "foo(\n\tbar\n)",
		},
		"soft line flat prints nothing": {
			doc:   Group(Text("foo("), Indent(SoftLine, Text("bar")), SoftLine, Text(")")),
			width: 80,
			want:  "foo(bar)",
		},
		"if break follows referenced group when flat": {
			doc: Concat{
				GroupWithID(id, Text("["), Indent(SoftLine, Text("a")), SoftLine, Text("]")),
				IfBreakFor(id, Text(","), Text("")),
			},
			width: 80,
			want:  "[a]",
		},
		"if break follows referenced group when broken": {
			doc: Concat{
				&GroupDoc{ID: id, ShouldBreak: true, Contents: Concat{Text("["), Indent(SoftLine, Text("a")), SoftLine, Text("]")}},
				IfBreakFor(id, Text(","), Text("")),
			},
			width: 80,
			want:  "[\n  a\n],",
		},
		"if break uses enclosing group": {
			doc:   Group(IfBreak(Text("("), nil), Indent(SoftLine, Text("value")), SoftLine, IfBreak(Text(")"), nil)),
			width: 4,
			want:  "(\n  value\n)",
		},
		"rest of line counts toward fit": {
			doc:   Concat{Group(Text("a"), Line, Text("b")), Text("ccccc")},
			width: 5,
			want:  "a\nbccccc",
		},
		"line suffix flushed before newline": {
			doc:   Concat{Text("a"), LineSuffix(Text(" // c")), Text(";"), HardLine, Text("b")},
			width: 80,
			want:  "a; // c\nb",
		},
		"line suffix flushed at end": {
			doc:   Concat{Text("a"), LineSuffix(Text(" // c"))},
			width: 80,
			want:  "a // c",
		},
		"line suffix boundary forces break": {
			doc:   Concat{Text("a"), LineSuffix(Text(" // c")), LineSuffixBoundary, Text("b")},
			width: 80,
			want:  "a // c\nb",
		},
		"trim removes trailing spaces": {
			doc:   Concat{Text("a  "), Trim, Text("b")},
			width: 80,
			want:  "ab",
		},
		"blank line does not keep indentation": {
			doc:   Concat{Text("a"), Indent(HardLine, HardLine, Text("b"))},
			width: 80,
			want:  "a\n\n  b",
		},
		"break parent breaks enclosing groups": {
			doc:   Group(Text("a"), Line, Group(Text("b"), BreakParent)),
			width: 80,
			want:  "a\nb",
		},
		"hard line breaks enclosing group": {
			doc:   Group(Text("a"), Line, Text("b"), HardLine, Text("c")),
			width: 80,
			want:  "a\nb\nc",
		},
		"literal line ignores indentation": {
			doc:   Concat{Text("a"), Indent(HardLine, Literal("x\n  y"))},
			width: 80,
			want:  "a\n  x\n  y",
		},
		"unbounded width never breaks": {
			doc:   Group(Text(strings.Repeat("x", 200)), Line, Text("b")),
			width: Unbounded,
			want:  strings.Repeat("x", 200) + " b",
		},
		"wide runes count by display width": {
			doc:   Group(Text("日本語"), Line, Text("b")),
			width: 7,
			want:  "日本語\nb",
		},
		"nil parts are ignored": {
			doc:   Concat{nil, Text("a"), nil},
			width: 80,
			want:  "a",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := Print(tt.doc, Options{PrintWidth: tt.width, TabWidth: 2, UseTabs: tt.tabs})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrint_SharedGroup(t *testing.T) {
	shared := Group(Text("x"), Line, Text("y"))
	d := Concat{shared, HardLine, shared}

	got := Print(d, Options{PrintWidth: 80})
	assert.Equal(t, "x y\nx y", got)
}

func TestPrint_SharedGroupBreak(t *testing.T) {
	shared := Group(Text("x"), HardLine, Text("y"))
	d := Concat{Group(Text("["), Indent(SoftLine, shared), SoftLine, Text("]")), HardLine, Group(shared)}

	got := Print(d, Options{PrintWidth: 80})
	assert.Equal(t, "[\n  x\n  y\n]\nx\ny", got)
}

func TestPrint_GroupDecisionIsStable(t *testing.T) {
	var ids IDs
	id := ids.New()
	d := Concat{
		GroupWithID(id, Text("aaaa"), Line, Text("bbbb")),
		IfBreakFor(id, Text(" broken"), Text(" flat")),
		HardLine,
		IfBreakFor(id, Text("broken"), Text("flat")),
	}

	assert.Equal(t, "aaaa\nbbbb broken\nbroken", Print(d, Options{PrintWidth: 6}))
	assert.Equal(t, "aaaa bbbb flat\nflat", Print(d, Options{PrintWidth: 80}))
}

func TestPrint_TextWithNewlinePanics(t *testing.T) {
	require.PanicsWithError(t, `doc: invariant violated: text "a\nb" contains a raw newline`, func() {
		Print(Text("a\nb"), Options{PrintWidth: 80})
	})
}

func TestPrint_Idempotent(t *testing.T) {
	d := Group(
		Text("call("),
		Indent(SoftLine, Join(Concat{Text(","), Line}, []Doc{Text("first"), Text("second"), Text("third")})),
		IfBreak(Text(","), nil),
		SoftLine,
		Text(")"),
	)
	opts := Options{PrintWidth: 12, TabWidth: 2}

	first := Print(d, opts)
	assert.Equal(t, "call(\n  first,\n  second,\n  third,\n)", first)
	assert.Equal(t, first, Print(d, opts))
}

func TestIDs(t *testing.T) {
	var a, b IDs
	assert.Equal(t, GroupID(1), a.New())
	assert.Equal(t, GroupID(2), a.New())
	assert.Equal(t, GroupID(1), b.New())
}
