package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, code string) *Parsed {
	t.Helper()
	parsed, err := Parse("test.marko", code)
	require.NoError(t, err)
	return parsed
}

func TestParse_HTMLTag(t *testing.T) {
	parsed := mustParse(t, `<div class="a" id=x/>`)
	require.Len(t, parsed.Program.Body, 1)

	tag, ok := parsed.Program.Body[0].(*Tag)
	require.True(t, ok)
	assert.Equal(t, "div", tag.NameText)
	assert.False(t, tag.Concise)
	assert.False(t, tag.HasBody)
	require.Len(t, tag.Attrs, 2)

	class := tag.Attrs[0].(*AttrNamed)
	assert.Equal(t, "class", parsed.Read(class.Name))
	assert.Equal(t, `"a"`, parsed.Read(class.Value.Value))

	id := tag.Attrs[1].(*AttrNamed)
	assert.Equal(t, "id", parsed.Read(id.Name))
	assert.Equal(t, "x", parsed.Read(id.Value.Value))
}

func TestParse_AttrValues(t *testing.T) {
	type tc struct {
		code  string
		value string
		bound bool
	}

	tests := map[string]tc{
		"operator joins spaces": {
			code:  `<div x=a + b y=1/>`,
			value: "a + b",
		},
		"arrow function": {
			code:  `<div x=() => 1 y=1/>`,
			value: "() => 1",
		},
		"comparison before close": {
			code:  `<div x=a > b/>`,
			value: "a",
		},
		"bound value": {
			code:  `<input value:=name/>`,
			value: "name",
			bound: true,
		},
		"brackets keep spaces": {
			code:  `<div x=fn(a, b) y=1/>`,
			value: "fn(a, b)",
		},
		"concise comparison": {
			code:  "div x=a > b\n",
			value: "a > b",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			parsed, _ := Parse("test.marko", tt.code)
			tag := parsed.Program.Body[0].(*Tag)
			require.NotEmpty(t, tag.Attrs)
			attr := tag.Attrs[0].(*AttrNamed)
			require.NotNil(t, attr.Value)
			assert.Equal(t, tt.value, parsed.Read(attr.Value.Value))
			assert.Equal(t, tt.bound, attr.Value.Bound)
		})
	}
}

func TestParse_TagParts(t *testing.T) {
	parsed := mustParse(t, "for|item, i| of=list\n  const/x=item\n  my-tag(a, b) onClick(e) { go(e) } ...rest\n")

	loop := parsed.Program.Body[0].(*Tag)
	assert.Equal(t, "for", loop.NameText)
	require.NotNil(t, loop.Params)
	assert.Equal(t, "item, i", parsed.Read(*loop.Params))
	require.Len(t, loop.Body, 2)

	bind := loop.Body[0].(*Tag)
	assert.Equal(t, "const", bind.NameText)
	require.NotNil(t, bind.Var)
	assert.Equal(t, "x", parsed.Read(*bind.Var))
	require.Len(t, bind.Attrs, 1)
	assert.True(t, bind.Attrs[0].(*AttrNamed).IsDefault())
	assert.Equal(t, BodyVoid, bind.BodyType)

	custom := loop.Body[1].(*Tag)
	require.NotNil(t, custom.Args)
	assert.Equal(t, "a, b", parsed.Read(*custom.Args))
	require.Len(t, custom.Attrs, 2)
	method := custom.Attrs[0].(*AttrNamed)
	require.NotNil(t, method.Method)
	assert.Equal(t, "(e) { go(e) }", parsed.Read(*method.Method))
	spread := custom.Attrs[1].(*AttrSpread)
	assert.Equal(t, "rest", parsed.Read(spread.Value))
}

func TestParse_ConciseBody(t *testing.T) {
	parsed := mustParse(t, "div.foo#bar x=1\n  span -- Hello ${name}\n  -- text\n")
	require.Len(t, parsed.Program.Body, 1)

	div := parsed.Program.Body[0].(*Tag)
	assert.True(t, div.Concise)
	require.NotNil(t, div.ShorthandID)
	assert.Equal(t, "bar", parsed.Read(div.ShorthandID.Range))
	require.Len(t, div.ShorthandClassNames, 1)
	assert.Equal(t, "foo", parsed.Read(div.ShorthandClassNames[0].Range))
	require.Len(t, div.Body, 2)

	span := div.Body[0].(*Tag)
	require.Len(t, span.Body, 2)
	assert.Equal(t, "Hello ", span.Body[0].(*Text).Value)
	placeholder := span.Body[1].(*Placeholder)
	assert.True(t, placeholder.Escape)
	assert.Equal(t, "name", parsed.Read(placeholder.Value))

	assert.Equal(t, "text", div.Body[1].(*Text).Value)
}

func TestParse_TextBlock(t *testing.T) {
	parsed := mustParse(t, "pre\n  --\n  line one\n    line two\n  --\n")

	pre := parsed.Program.Body[0].(*Tag)
	require.Len(t, pre.Body, 1)
	assert.Equal(t, "line one\n  line two", pre.Body[0].(*Text).Value)
}

func TestParse_ConciseAttrBlock(t *testing.T) {
	parsed := mustParse(t, "div [\n  a=1\n  b=2\n]\n  -- hi\n")

	div := parsed.Program.Body[0].(*Tag)
	require.Len(t, div.Attrs, 2)
	assert.Equal(t, "b", parsed.Read(div.Attrs[1].(*AttrNamed).Name))
	require.Len(t, div.Body, 1)
}

func TestParse_RootStatements(t *testing.T) {
	parsed := mustParse(t, "import x from \"y\"\nstatic const a = 1\nstyle.less { .a { color: red } }\n// note\n$ const b = 2;\n")
	body := parsed.Program.Body
	require.Len(t, body, 5)

	_, ok := body[0].(*Import)
	assert.True(t, ok)

	static := body[1].(*Static)
	assert.Equal(t, "static", static.Target)
	assert.Equal(t, "const a = 1", parsed.Read(static.Value))
	assert.False(t, static.Block)

	style := body[2].(*Style)
	assert.Equal(t, ".less", style.Ext)
	assert.Equal(t, " .a { color: red } ", parsed.Read(style.Value))

	comment := body[3].(*Comment)
	assert.Equal(t, CommentLine, comment.Kind)
	assert.Equal(t, " note", parsed.Read(comment.Value))

	scriptlet := body[4].(*Scriptlet)
	assert.Equal(t, "const b = 2;", parsed.Read(scriptlet.Value))
	assert.False(t, scriptlet.Block)
}

func TestParse_EmptyStatic(t *testing.T) {
	type tc struct {
		code      string
		target    string
		wantNodes int
	}

	tests := map[string]tc{
		"trailing space":     {code: "static ", target: "static", wantNodes: 1},
		"several spaces":     {code: "server  ", target: "server", wantNodes: 1},
		"followed by a line": {code: "static \n<div/>\n", target: "static", wantNodes: 2},
		"tab before newline": {code: "client\t\n", target: "client", wantNodes: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			parsed := mustParse(t, tt.code)
			require.Len(t, parsed.Program.Body, tt.wantNodes)

			static := parsed.Program.Body[0].(*Static)
			assert.Equal(t, tt.target, static.Target)
			assert.LessOrEqual(t, static.Value.Start, static.Value.End)
			assert.Equal(t, static.End, static.Value.End)
			assert.Empty(t, parsed.Read(static.Value))
		})
	}
}

func TestParse_HTMLContent(t *testing.T) {
	parsed := mustParse(t, "<!doctype html>\n<p>a \\${b} <!-- c --> $!{d}</p>\n<script>if (a < b) ${x}</script>\n")
	body := parsed.Program.Body
	require.Len(t, body, 3)

	doctype := body[0].(*Doctype)
	assert.Equal(t, "doctype html", parsed.Read(doctype.Value))

	p := body[1].(*Tag)
	require.Len(t, p.Body, 4)
	assert.Equal(t, "a ${b} ", p.Body[0].(*Text).Value)
	assert.Equal(t, CommentHTML, p.Body[1].(*Comment).Kind)
	assert.Equal(t, " ", p.Body[2].(*Text).Value)
	assert.False(t, p.Body[3].(*Placeholder).Escape)

	script := body[2].(*Tag)
	assert.Equal(t, BodyText, script.BodyType)
	require.Len(t, script.Body, 2)
	text := script.Body[0].(*Text)
	assert.True(t, text.Raw)
	assert.Equal(t, "if (a < b) ", text.Value)
}

func TestParse_CRLF(t *testing.T) {
	parsed := mustParse(t, "div\r\n  -- a\r\n")
	assert.Equal(t, "div\n  -- a\n", parsed.Code)
}

func TestParse_Errors(t *testing.T) {
	type tc struct {
		code string
		want string
		kind ErrorKind
	}

	tests := map[string]tc{
		"unclosed tag": {
			code: "<div>",
			want: "test.marko:1:1: error: missing closing tag for <div> (add </div> or self-close the tag with />)",
			kind: ErrClosingTag,
		},
		"mismatched closing tag": {
			code: "<div></span>",
			want: "test.marko:1:6: error: mismatched closing tag </span>, expected </div>",
			kind: ErrClosingTag,
		},
		"unterminated placeholder": {
			code: "<p>${a</p>",
			want: `missing '}'`,
			kind: ErrUnterminated,
		},
		"unterminated text block": {
			code: "div\n  --\n  a\n",
			want: "unterminated text block",
			kind: ErrUnterminated,
		},
		"inconsistent indentation": {
			code: "div\n  -- a\n    -- b\n",
			want: "inconsistent indentation",
			kind: ErrIndentation,
		},
		"stray closing tag": {
			code: "</div>\n",
			want: "unexpected closing tag",
			kind: ErrUnexpected,
		},
		"missing attribute value": {
			code: "<div x=/>",
			want: "missing attribute value",
			kind: ErrMissingValue,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("test.marko", tt.code)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var list *ErrorList
			require.ErrorAs(t, err, &list)
			assert.True(t, list.HasErrors())
			assert.True(t, list.Has(tt.kind), "kinds of %v", list.Errors())
		})
	}
}

func TestErrorList_SourceOrder(t *testing.T) {
	parsed := newParsed("test.marko", "<p>${a</p>")
	p := &parser{parsed: parsed, src: parsed.Code, errors: &ErrorList{}}

	p.missingClose(&Tag{Range: Range{Start: 0}, Name: Template{Range: Range{Start: 1, End: 2}}, NameText: "p"})
	p.unterminated(5, "placeholder", "")
	p.unexpected(5, "end of input")
	p.errorf(3, "first")

	errs := p.errors.Errors()
	require.Len(t, errs, 3)
	assert.Equal(t, []int{0, 3, 5}, []int{errs[0].Offset, errs[1].Offset, errs[2].Offset})
	assert.Equal(t, ErrUnterminated, errs[2].Kind)
	assert.Equal(t, "unterminated placeholder", errs[2].Message)
	assert.Equal(t, Position{File: "test.marko", Line: 1, Column: 6}, errs[2].Pos)
	assert.False(t, p.errors.Has(ErrIndentation))
	assert.Equal(t, "closing-tag", errs[0].Kind.String())
}

func TestPositionAt(t *testing.T) {
	parsed := mustParse(t, "a\nbc\n")
	assert.Equal(t, Position{File: "test.marko", Line: 1, Column: 1}, parsed.PositionAt(0))
	assert.Equal(t, Position{File: "test.marko", Line: 2, Column: 2}, parsed.PositionAt(3))
	assert.Equal(t, "test.marko:2:2", parsed.PositionAt(3).String())
}
