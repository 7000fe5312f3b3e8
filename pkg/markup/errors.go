package markup

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// ErrorKind classifies a syntax error.
type ErrorKind int

const (
	ErrSyntax       ErrorKind = iota // malformed tag head or statement
	ErrUnterminated                  // a bracket, string, comment, tag or block never closes
	ErrUnexpected                    // a character or closing tag with nothing to close
	ErrClosingTag                    // a missing or mismatched closing tag
	ErrIndentation                   // concise lines indented inconsistently
	ErrMissingValue                  // an attribute or spread with no expression
)

var errorKindNames = [...]string{
	ErrSyntax:       "syntax",
	ErrUnterminated: "unterminated",
	ErrUnexpected:   "unexpected",
	ErrClosingTag:   "closing-tag",
	ErrIndentation:  "indentation",
	ErrMissingValue: "missing-value",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// Error is one syntax error in a template.
type Error struct {
	Kind    ErrorKind
	Offset  int
	Pos     Position
	Message string
	Hint    string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Pos.String())
	sb.WriteString(": error: ")
	sb.WriteString(e.Message)
	if e.Hint != "" {
		fmt.Fprintf(&sb, " (%s)", e.Hint)
	}
	return sb.String()
}

// ErrorList holds the errors of one Parse call in source order, at most one
// per offset.
type ErrorList struct {
	errs []*Error
}

// add keeps the first error reported at an offset.
func (l *ErrorList) add(e *Error) {
	i, found := slices.BinarySearchFunc(l.errs, e.Offset, func(x *Error, offset int) int {
		return cmp.Compare(x.Offset, offset)
	})
	if found {
		return
	}
	l.errs = slices.Insert(l.errs, i, e)
}

func (l *ErrorList) Len() int { return len(l.errs) }

func (l *ErrorList) HasErrors() bool { return len(l.errs) > 0 }

// Has reports whether any error is of kind k.
func (l *ErrorList) Has(k ErrorKind) bool {
	return slices.ContainsFunc(l.errs, func(e *Error) bool { return e.Kind == k })
}

// Errors returns a copy of the errors.
func (l *ErrorList) Errors() []*Error {
	return slices.Clone(l.errs)
}

// Error joins the errors with newlines.
func (l *ErrorList) Error() string {
	msgs := make([]string, len(l.errs))
	for i, e := range l.errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns l, or nil when it is empty.
func (l *ErrorList) Err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return l
}

func (p *parser) report(kind ErrorKind, offset int, hint, format string, args ...any) {
	p.errors.add(&Error{
		Kind:    kind,
		Offset:  offset,
		Pos:     p.parsed.PositionAt(offset),
		Message: fmt.Sprintf(format, args...),
		Hint:    hint,
	})
}

func (p *parser) errorf(offset int, format string, args ...any) {
	p.report(ErrSyntax, offset, "", format, args...)
}

func (p *parser) scanErr(err *scanError) {
	p.report(err.kind, err.pos, "", "%s", err.msg)
}

// unterminated reports a construct starting at offset that runs out of
// input.
func (p *parser) unterminated(offset int, what, hint string) {
	p.report(ErrUnterminated, offset, hint, "unterminated %s", what)
}

func (p *parser) unexpected(offset int, what string) {
	p.report(ErrUnexpected, offset, "", "unexpected %s", what)
}

func (p *parser) missingValue(offset int, what string) {
	p.report(ErrMissingValue, offset, "", "missing %s", what)
}

// missingClose reports an html tag whose body runs to the end of input.
func (p *parser) missingClose(tag *Tag) {
	p.report(ErrClosingTag, tag.Start, "add </"+tag.NameText+"> or self-close the tag with />",
		"missing closing tag for <%s>", p.src[tag.Name.Start:tag.Name.End])
}

func (p *parser) mismatchedClose(offset int, name string, tag *Tag) {
	p.report(ErrClosingTag, offset, "", "mismatched closing tag </%s>, expected </%s>", name, tag.NameText)
}

func (p *parser) inconsistentIndent(offset int) {
	p.report(ErrIndentation, offset, "only tags can contain more deeply indented lines", "inconsistent indentation")
}
