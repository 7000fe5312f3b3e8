package formatter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/grindlemire/tagfmt/pkg/doc"
	"github.com/grindlemire/tagfmt/pkg/embed"
)

// Syntax selects the output dialect.
type Syntax int

const (
	SyntaxAuto    Syntax = iota // follow the first root tag of the input
	SyntaxHTML                  // delimiter based: <div>...</div>
	SyntaxConcise               // indentation based
)

func (s Syntax) String() string {
	switch s {
	case SyntaxAuto:
		return "auto"
	case SyntaxHTML:
		return "html"
	case SyntaxConcise:
		return "concise"
	}
	return fmt.Sprintf("Syntax(%d)", int(s))
}

// ParseSyntax parses "auto", "html" or "concise".
func ParseSyntax(s string) (Syntax, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return SyntaxAuto, nil
	case "html":
		return SyntaxHTML, nil
	case "concise":
		return SyntaxConcise, nil
	}
	return 0, fmt.Errorf("invalid syntax %q: expected auto, html or concise", s)
}

const (
	DefaultPrintWidth = 80
	DefaultTabWidth   = 2
)

// Options configures a Formatter. Zero values are replaced by defaults.
type Options struct {
	// PrintWidth is the target maximum line width (default: 80).
	PrintWidth int
	// TabWidth is the width of one indentation level (default: 2).
	TabWidth int
	// UseTabs indents with tabs instead of spaces.
	UseTabs bool
	// SingleQuote prefers single quotes in embedded code.
	SingleQuote bool
	// TrailingComma controls trailing commas in embedded code (default: all).
	TrailingComma embed.TrailingComma
	// Syntax selects the output dialect (default: auto).
	Syntax Syntax
	// AttrParen wraps attribute values containing spaced operators in
	// parentheses even when the value would parse without them.
	AttrParen bool
	// Embed formats embedded code. Defaults to the pkg/embed registry.
	Embed SubFormatter
	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
}

// withDefaults returns a copy of o with zero values filled in.
func (o Options) withDefaults() Options {
	if o.PrintWidth == 0 {
		o.PrintWidth = DefaultPrintWidth
	}
	if o.TabWidth == 0 {
		o.TabWidth = DefaultTabWidth
	}
	if o.Embed == nil {
		o.Embed = embed.New(embed.Options{SingleQuote: o.SingleQuote, TrailingComma: o.TrailingComma})
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Validate reports options that cannot be used.
func (o Options) Validate() error {
	var errs []error
	if o.PrintWidth < 0 {
		errs = append(errs, fmt.Errorf("print width must not be negative, got %d", o.PrintWidth))
	}
	if o.TabWidth < 0 {
		errs = append(errs, fmt.Errorf("tab width must not be negative, got %d", o.TabWidth))
	}
	if o.Syntax < SyntaxAuto || o.Syntax > SyntaxConcise {
		errs = append(errs, fmt.Errorf("invalid syntax %s", o.Syntax))
	}
	if o.TrailingComma < embed.TrailingCommaAll || o.TrailingComma > embed.TrailingCommaNone {
		errs = append(errs, fmt.Errorf("invalid trailing comma %s", o.TrailingComma))
	}
	return errors.Join(errs...)
}

func (o *Options) docOptions() doc.Options {
	return doc.Options{PrintWidth: o.PrintWidth, TabWidth: o.TabWidth, UseTabs: o.UseTabs}
}
