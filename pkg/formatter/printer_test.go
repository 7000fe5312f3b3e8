package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindlemire/tagfmt/pkg/doc"
	"github.com/grindlemire/tagfmt/pkg/markup"
)

func TestSplice(t *testing.T) {
	type tc struct {
		doc     doc.Doc
		docs    []doc.Doc
		want    string
		wantErr string
	}

	tests := map[string]tc{
		"no placeholders": {
			doc:  doc.Text("a b"),
			want: "a b",
		},
		"placeholder inside text": {
			doc:  doc.Concat{doc.Text("a " + sentinel(0) + " b")},
			docs: []doc.Doc{doc.Text("X")},
			want: "a X b",
		},
		"placeholder split across leaves": {
			doc:  doc.Concat{doc.Text("__EMBEDDED_"), doc.Text("PLACEHOLDER_0__;")},
			docs: []doc.Doc{doc.Text("X")},
			want: "X;",
		},
		"two placeholders": {
			doc:  doc.Concat{doc.Text(sentinel(1) + "+" + sentinel(0))},
			docs: []doc.Doc{doc.Text("a"), doc.Text("b")},
			want: "b+a",
		},
		"unused placeholder": {
			doc:     doc.Concat{doc.Text(sentinel(0))},
			docs:    []doc.Doc{doc.Text("a"), doc.Text("b")},
			wantErr: "placeholder 1 was used 0 times",
		},
		"unknown placeholder": {
			doc:     doc.Concat{doc.Text(sentinel(3))},
			docs:    []doc.Doc{doc.Text("a")},
			wantErr: "unknown placeholder 3",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := splice(tt.doc, tt.docs)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.PrintText(got))
		})
	}
}

func TestTrimText(t *testing.T) {
	type tc struct {
		text     string
		siblings []markup.Child
		want     string
	}

	text := &markup.Text{}
	placeholder := &markup.Placeholder{}
	tag := &markup.Tag{NameText: "div"}

	tests := map[string]tc{
		"blank text dropped": {
			text:     "\n  \n",
			siblings: []markup.Child{text},
			want:     "",
		},
		"edges trimmed and spaces collapsed": {
			text:     "\n  hello   world\n",
			siblings: []markup.Child{text},
			want:     "hello world",
		},
		"inline sibling keeps trailing space": {
			text:     "\n  hello\n  ",
			siblings: []markup.Child{text, placeholder},
			want:     "hello ",
		},
		"block sibling drops break": {
			text:     "hello\n",
			siblings: []markup.Child{text, tag},
			want:     "hello",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, trimText(tt.text, tt.siblings, 0, isInlineHTML))
		})
	}
}

func TestWrapConciseText(t *testing.T) {
	type tc struct {
		text  string
		width int
		want  string
	}

	tests := map[string]tc{
		"flat": {
			text:  "hello",
			width: 80,
			want:  "-- hello",
		},
		"broken uses longer dash run": {
			text:  "a -- b",
			width: 3,
			want:  "---\na -- b\n---",
		},
		"broken plain": {
			text:  "hello",
			width: 3,
			want:  "--\nhello\n--",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := doc.Print(wrapConciseText(doc.Text(tt.text)), doc.Options{PrintWidth: tt.width, TabWidth: 2})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringLiteral(t *testing.T) {
	type tc struct {
		code string
		want string
		ok   bool
	}

	tests := map[string]tc{
		"double quoted":  {code: `"a b"`, want: "a b", ok: true},
		"single quoted":  {code: `'a'`, want: "a", ok: true},
		"escape refused": {code: `"a\"b"`},
		"not a string":   {code: "a"},
		"mismatched":     {code: `"a'`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := stringLiteral(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
