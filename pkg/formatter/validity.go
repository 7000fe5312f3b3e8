package formatter

import (
	"strings"

	"github.com/grindlemire/tagfmt/pkg/doc"
	"github.com/grindlemire/tagfmt/pkg/markup"
)

var (
	anyCode          = markup.Sticky(`[\s\S]`)
	htmlAttrBreak    = markup.Sticky(`\s|>|,`)
	conciseAttrBreak = markup.Sticky(`\s|,`)
)

// toValidAttrValue wraps an attribute value in parentheses when its text
// would otherwise end the attribute early. Values that only need them once
// broken across lines get conditional parentheses.
func (p *printer) toValidAttrValue(d doc.Doc) doc.Doc {
	code := strings.TrimSpace(doc.PrintText(d))
	if !markup.OuterCodeMatches(code, anyCode, true) {
		return d
	}

	test := htmlAttrBreak
	if p.concise {
		test = conciseAttrBreak
	}
	if markup.OuterCodeMatches(code, test, p.opts.AttrParen) {
		return doc.Group(doc.Text("("), doc.Indent(doc.SoftLine, d), doc.SoftLine, doc.Text(")"))
	}
	return doc.Group(
		doc.IfBreak(doc.Text("("), doc.Text("")),
		doc.Indent(doc.SoftLine, d),
		doc.SoftLine,
		doc.IfBreak(doc.Text(")"), doc.Text("")),
	)
}

// toValidBlock wraps statements in braces when there is more than one, or
// when the rendering of a single one spans several lines outside of any
// brackets.
func (p *printer) toValidBlock(d doc.Doc) doc.Doc {
	if !hasStatementBreak(d) && !doc.WouldWrap(d, p.docOpts, markup.OuterLineBreak) {
		return d
	}
	return doc.Group(
		doc.Indent(doc.IfBreak(doc.Concat{doc.Text("{"), doc.Line}, doc.Text("")), d),
		doc.IfBreak(doc.Concat{doc.Line, doc.Text("}")}, doc.Text("")),
	)
}

// hasStatementBreak reports a hard line among the top-level parts of d,
// which is how statement lists separate their statements.
func hasStatementBreak(d doc.Doc) bool {
	parts, ok := d.(doc.Concat)
	if !ok {
		return false
	}
	for _, part := range parts {
		switch part := part.(type) {
		case doc.LineDoc:
			if part.Hard {
				return true
			}
		case doc.Concat:
			if doc.IsLine(part) && part[0].(doc.LineDoc).Hard {
				return true
			}
		}
	}
	return false
}
