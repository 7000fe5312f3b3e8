package embed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindlemire/tagfmt/pkg/doc"
)

func format(t *testing.T, opts Options, code string, syntax Syntax, width int) (string, error) {
	t.Helper()
	d, err := New(opts).Format(context.Background(), code, syntax)
	if err != nil {
		return "", err
	}
	return doc.Print(d, doc.Options{PrintWidth: width, TabWidth: 2}), nil
}

func TestFormatScript(t *testing.T) {
	type tc struct {
		code   string
		syntax Syntax
		opts   Options
		width  int
		want   string
	}

	tests := map[string]tc{
		"binary expression spacing": {
			code:   "a+b",
			syntax: SyntaxExpression,
			want:   "a + b",
		},
		"binary expression breaks after operator": {
			code:   "aaaa+bbbb",
			syntax: SyntaxExpression,
			width:  6,
			want:   "aaaa +\n  bbbb",
		},
		"call arguments": {
			code:   "foo(a,b)",
			syntax: SyntaxExpression,
			want:   "foo(a, b)",
		},
		"object literal": {
			code:   "{a:1}",
			syntax: SyntaxExpression,
			want:   "{ a: 1 }",
		},
		"broken array gets trailing comma": {
			code:   "[aaaa, bbbb]",
			syntax: SyntaxExpression,
			width:  8,
			want:   "[\n  aaaa,\n  bbbb,\n]",
		},
		"broken array without trailing comma": {
			code:   "[aaaa, bbbb]",
			syntax: SyntaxExpression,
			opts:   Options{TrailingComma: TrailingCommaNone},
			width:  8,
			want:   "[\n  aaaa,\n  bbbb\n]",
		},
		"single quotes become double": {
			code:   "'a'",
			syntax: SyntaxExpression,
			want:   `"a"`,
		},
		"single quote option": {
			code:   `"a"`,
			syntax: SyntaxExpression,
			opts:   Options{SingleQuote: true},
			want:   `'a'`,
		},
		"quote kept when it saves escapes": {
			code:   `'a"b'`,
			syntax: SyntaxExpression,
			want:   `'a"b'`,
		},
		"json keeps quotes": {
			code:   `{"a":1}`,
			syntax: SyntaxJSON,
			opts:   Options{SingleQuote: true},
			want:   `{ "a": 1 }`,
		},
		"statements get semicolons": {
			code:   "let a=1\nfoo()",
			syntax: SyntaxStatements,
			want:   "let a = 1;\nfoo();",
		},
		"if block": {
			code:   "if (a) {b()}",
			syntax: SyntaxStatements,
			want:   "if (a) {\n  b();\n}",
		},
		"args print parentheses": {
			code:   "a,b",
			syntax: SyntaxArgs,
			want:   "(a, b)",
		},
		"params print pipes": {
			code:   "a,b",
			syntax: SyntaxParams,
			want:   "|a, b|",
		},
		"method shorthand": {
			code:   "(a) {return a}",
			syntax: SyntaxMethod,
			want:   "(a) {\n  return a;\n}",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			width := tt.width
			if width == 0 {
				width = 80
			}
			got, err := format(t, tt.opts, tt.code, tt.syntax, width)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatScript_Errors(t *testing.T) {
	type tc struct {
		code   string
		syntax Syntax
	}

	tests := map[string]tc{
		"semicolon in expression": {code: "a;b", syntax: SyntaxExpression},
		"empty expression":        {code: "  ", syntax: SyntaxExpression},
		"unclosed call":           {code: "foo(", syntax: SyntaxExpression},
		"mismatched bracket":      {code: "foo(]", syntax: SyntaxStatements},
		"method without body":     {code: "(a)", syntax: SyntaxMethod},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := format(t, Options{}, tt.code, tt.syntax, 80)
			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr), "got %v", err)
			assert.Equal(t, tt.syntax, syntaxErr.Syntax)
		})
	}
}

func TestFormat_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).Format(ctx, "a", SyntaxExpression)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTrailingComma(t *testing.T) {
	for _, want := range []TrailingComma{TrailingCommaAll, TrailingCommaES5, TrailingCommaNone} {
		got, err := ParseTrailingComma(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTrailingComma("sometimes")
	assert.Error(t, err)
}
