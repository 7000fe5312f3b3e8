// Package formatter provides code formatting for .marko templates.
package formatter

import (
	"context"
	"fmt"

	"github.com/grindlemire/tagfmt/pkg/doc"
	"github.com/grindlemire/tagfmt/pkg/markup"
)

// Formatter formats .marko source code.
type Formatter struct {
	Options Options
}

// New creates a new Formatter. Zero options are replaced by defaults when
// formatting.
func New(opts Options) *Formatter {
	return &Formatter{Options: opts}
}

// Format parses and reformats the given source code.
// Returns the formatted code and any error encountered during parsing.
func (f *Formatter) Format(filename, source string) (string, error) {
	res, err := f.FormatContext(context.Background(), filename, source)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

// FormatResult contains the result of formatting a file.
type FormatResult struct {
	// Content is the formatted content.
	Content string
	// Changed indicates if the content was different from the original.
	Changed bool
	// Diagnostics lists constructs that were printed verbatim.
	Diagnostics []Diagnostic
}

// FormatWithResult formats the source and indicates if it changed.
func (f *Formatter) FormatWithResult(filename, source string) (FormatResult, error) {
	return f.FormatContext(context.Background(), filename, source)
}

// FormatContext formats the source. Parse errors are returned as a
// *markup.ErrorList. A malformed document built by the printer is returned
// as a *doc.InvariantError.
func (f *Formatter) FormatContext(ctx context.Context, filename, source string) (res FormatResult, err error) {
	if err := f.Options.Validate(); err != nil {
		return FormatResult{}, fmt.Errorf("invalid options: %w", err)
	}
	opts := f.Options.withDefaults()

	parsed, err := markup.Parse(filename, source)
	if err != nil {
		return FormatResult{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*doc.InvariantError)
			if !ok {
				panic(r)
			}
			res, err = FormatResult{}, fmt.Errorf("formatting %s: %w", filename, ie)
		}
	}()

	p := newPrinter(ctx, &opts, parsed)
	d := p.printProgram(parsed.Program)
	if p.err != nil {
		return FormatResult{}, p.err
	}

	opts.Logger.Debug("printing", "file", filename, "concise", p.concise, "diagnostics", len(p.diags))
	content := doc.Print(d, opts.docOptions())
	return FormatResult{
		Content:     content,
		Changed:     content != source,
		Diagnostics: p.diags,
	}, nil
}
