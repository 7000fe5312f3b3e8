package embed

import (
	"context"
	"fmt"
	"strings"

	"github.com/grindlemire/tagfmt/pkg/doc"
)

// Syntax names the grammar of an embedded snippet.
type Syntax int

const (
	SyntaxExpression Syntax = iota // a single expression
	SyntaxStatements               // a statement list
	SyntaxArgs                     // the inside of an argument list, printed with parentheses
	SyntaxParams                   // the inside of |params|, printed with pipes
	SyntaxMethod                   // "(params) { body }"
	SyntaxJSON
	SyntaxCSS
	SyntaxLESS
	SyntaxSCSS
)

var syntaxNames = map[Syntax]string{
	SyntaxExpression: "expression",
	SyntaxStatements: "statements",
	SyntaxArgs:       "args",
	SyntaxParams:     "params",
	SyntaxMethod:     "method",
	SyntaxJSON:       "json",
	SyntaxCSS:        "css",
	SyntaxLESS:       "less",
	SyntaxSCSS:       "scss",
}

func (s Syntax) String() string {
	if name, ok := syntaxNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Syntax(%d)", int(s))
}

// IsStyle reports whether s is a stylesheet syntax.
func (s Syntax) IsStyle() bool {
	return s == SyntaxCSS || s == SyntaxLESS || s == SyntaxSCSS
}

// TrailingComma controls trailing commas in broken lists.
type TrailingComma int

const (
	TrailingCommaAll  TrailingComma = iota // everywhere the grammar allows, including argument lists
	TrailingCommaES5                       // arrays and objects only
	TrailingCommaNone
)

func (t TrailingComma) String() string {
	switch t {
	case TrailingCommaAll:
		return "all"
	case TrailingCommaES5:
		return "es5"
	case TrailingCommaNone:
		return "none"
	}
	return fmt.Sprintf("TrailingComma(%d)", int(t))
}

// ParseTrailingComma parses "all", "es5" or "none".
func ParseTrailingComma(s string) (TrailingComma, error) {
	switch strings.ToLower(s) {
	case "all", "":
		return TrailingCommaAll, nil
	case "es5":
		return TrailingCommaES5, nil
	case "none":
		return TrailingCommaNone, nil
	}
	return 0, fmt.Errorf("invalid trailing comma %q: expected all, es5 or none", s)
}

// Options configures the sub-formatters.
type Options struct {
	SingleQuote   bool
	TrailingComma TrailingComma
}

// SyntaxError reports code that a sub-formatter could not parse. Offset is a
// byte offset into the snippet.
type SyntaxError struct {
	Syntax  Syntax
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: offset %d: %s", e.Syntax, e.Offset, e.Message)
}

// Registry dispatches snippets to the formatter for their syntax.
type Registry struct {
	opts Options
}

// New creates a Registry with the given options.
func New(opts Options) *Registry {
	return &Registry{opts: opts}
}

// Format formats code in the given syntax.
func (r *Registry) Format(ctx context.Context, code string, syntax Syntax) (doc.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if syntax.IsStyle() {
		return formatStyle(code, syntax)
	}
	return formatScript(code, syntax, r.opts)
}
