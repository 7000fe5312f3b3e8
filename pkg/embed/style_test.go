package embed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatStyle(t *testing.T) {
	type tc struct {
		code   string
		syntax Syntax
		want   string
	}

	tests := map[string]tc{
		"single rule": {
			code:   "a{color:red}",
			syntax: SyntaxCSS,
			want:   "a {\n  color: red;\n}",
		},
		"empty rule": {
			code:   "a{}",
			syntax: SyntaxCSS,
			want:   "a {}",
		},
		"selector list": {
			code:   "a,b{x:1}",
			syntax: SyntaxCSS,
			want:   "a,\nb {\n  x: 1;\n}",
		},
		"combinator spacing": {
			code:   "a>b{}",
			syntax: SyntaxCSS,
			want:   "a > b {}",
		},
		"value whitespace collapses": {
			code:   "a{border:1px   solid  red}",
			syntax: SyntaxCSS,
			want:   "a {\n  border: 1px solid red;\n}",
		},
		"function arguments": {
			code:   "a{color:rgba(0,0,0)}",
			syntax: SyntaxCSS,
			want:   "a {\n  color: rgba(0, 0, 0);\n}",
		},
		"blank lines between rules": {
			code:   "a{}\n\n\nb{}",
			syntax: SyntaxCSS,
			want:   "a {}\n\nb {}",
		},
		"at rule with nested rule": {
			code:   "@media (max-width: 100px){a{b:c}}",
			syntax: SyntaxCSS,
			want:   "@media (max-width: 100px) {\n  a {\n    b: c;\n  }\n}",
		},
		"at statement": {
			code:   `@import "a.css"`,
			syntax: SyntaxCSS,
			want:   `@import "a.css";`,
		},
		"block comment kept": {
			code:   "/* hi */\na{}",
			syntax: SyntaxCSS,
			want:   "/* hi */\na {}",
		},
		"scss line comment": {
			code:   "a{\n// note\ncolor:red}",
			syntax: SyntaxSCSS,
			want:   "a {\n  // note\n  color: red;\n}",
		},
		"scss nesting": {
			code:   ".a{.b{x:1}}",
			syntax: SyntaxSCSS,
			want:   ".a {\n  .b {\n    x: 1;\n  }\n}",
		},
		"less url keeps slashes": {
			code:   "a{background:url(//x.png)}",
			syntax: SyntaxLESS,
			want:   "a {\n  background: url(//x.png);\n}",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := format(t, Options{}, tt.code, tt.syntax, 80)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatStyle_Errors(t *testing.T) {
	type tc struct {
		code   string
		syntax Syntax
	}

	tests := map[string]tc{
		"unclosed rule":         {code: "a{color:red", syntax: SyntaxCSS},
		"stray close":           {code: "}", syntax: SyntaxCSS},
		"missing selector":      {code: "{color:red}", syntax: SyntaxCSS},
		"unterminated comment":  {code: "a{} /* oops", syntax: SyntaxCSS},
		"line comment in value": {code: "a{color: // red\nblue}", syntax: SyntaxSCSS},
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
