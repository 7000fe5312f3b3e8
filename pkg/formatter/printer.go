package formatter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/grindlemire/tagfmt/pkg/doc"
	"github.com/grindlemire/tagfmt/pkg/embed"
	"github.com/grindlemire/tagfmt/pkg/markup"
)

// printer converts a parsed template into a Doc. One printer serves one
// Format call.
type printer struct {
	ctx     context.Context
	opts    *Options
	parsed  *markup.Parsed
	log     *log.Logger
	docOpts doc.Options

	// concise selects the output dialect.
	concise bool
	// preserve is set while printing inside a whitespace preserving tag.
	preserve bool

	diags []Diagnostic
	// err is a cancellation seen while calling the sub-formatter.
	err error
}

func newPrinter(ctx context.Context, opts *Options, parsed *markup.Parsed) *printer {
	return &printer{
		ctx:     ctx,
		opts:    opts,
		parsed:  parsed,
		log:     opts.Logger,
		docOpts: opts.docOptions(),
		concise: useConcise(opts.Syntax, parsed.Program),
	}
}

// useConcise resolves the output dialect. Auto follows the first root tag.
func useConcise(s Syntax, prog *markup.Program) bool {
	switch s {
	case SyntaxHTML:
		return false
	case SyntaxConcise:
		return true
	}
	for _, c := range prog.Body {
		if t, ok := c.(*markup.Tag); ok {
			return t.Concise
		}
	}
	return false
}

func (p *printer) read(r markup.Range) string {
	return p.parsed.Read(r)
}

// verbatim prints the source of n unchanged.
func (p *printer) verbatim(n markup.Node) doc.Doc {
	return doc.Literal(p.read(n.Span()))
}

func (p *printer) printProgram(prog *markup.Program) doc.Doc {
	b := p.printBody(prog.Body, nil, false)
	if b == nil {
		return doc.HardLine
	}
	if b.inline {
		return doc.Concat{wrapConciseText(b.content[0]), doc.HardLine}
	}
	return doc.Concat{doc.Join(doc.HardLine, b.content), doc.HardLine}
}

// printChild prints one body node. A nil result means the node prints
// nothing.
func (p *printer) printChild(c markup.Child) doc.Doc {
	switch n := c.(type) {
	case *markup.Tag:
		return p.printTag(n)
	case *markup.Text:
		return doc.Literal(p.textSource(n))
	case *markup.Placeholder:
		return p.printPlaceholder(n)
	case *markup.Comment:
		return p.printComment(n)
	case *markup.Scriptlet:
		return p.printScriptlet(n)
	case *markup.Doctype:
		return doc.Text("<!" + strings.Join(strings.Fields(p.read(n.Value)), " ") + ">")
	case *markup.Declaration:
		return doc.Literal("<?" + strings.TrimSpace(p.read(n.Value)) + "?>")
	case *markup.CDATA:
		return doc.Literal("<![CDATA[" + p.read(n.Value) + "]]>")
	case *markup.Import:
		return p.printEmbedded(n, p.read(n.Range), embed.SyntaxStatements)
	case *markup.Export:
		return p.printEmbedded(n, p.read(n.Range), embed.SyntaxStatements)
	case *markup.Class:
		return p.printEmbedded(n, p.read(n.Range), embed.SyntaxExpression)
	case *markup.Style:
		return p.printStyle(n)
	case *markup.Static:
		return p.printStatic(n)
	}

	p.diagnose(UnexpectedNode, c, fmt.Errorf("no printer for %s", markup.KindName(c)))
	return p.verbatim(c)
}

// printEmbedded formats the whole of n as code, falling back to its source.
func (p *printer) printEmbedded(n markup.Node, code string, syntax embed.Syntax) doc.Doc {
	d, ok := p.embed(n, code, syntax)
	if !ok {
		return p.verbatim(n)
	}
	return d
}

func (p *printer) printPlaceholder(n *markup.Placeholder) doc.Doc {
	code := p.read(n.Value)
	if code == `" "` || code == `' '` {
		return doc.Text(p.visibleSpace())
	}

	d, ok := p.embed(n, code, embed.SyntaxExpression)
	if !ok {
		return p.verbatim(n)
	}
	open := "${"
	if !n.Escape {
		open = "$!{"
	}
	return doc.Group(
		doc.Text(open),
		doc.Indent(doc.SoftLine, d),
		doc.SoftLine,
		doc.LineSuffixBoundary,
		doc.Text("}"),
	)
}

func (p *printer) printComment(n *markup.Comment) doc.Doc {
	code := p.read(n.Range)
	if n.Kind == markup.CommentLine {
		return doc.LineSuffix(doc.Text(code))
	}
	if !strings.Contains(code, "\n") {
		return doc.Text(code)
	}

	lines := strings.Split(code, "\n")
	indent := -1
	for _, line := range lines[1:] {
		ws := len(line) - len(strings.TrimLeft(line, " \t"))
		if ws == 0 {
			indent = 0
			break
		}
		if indent < 0 || ws < indent {
			indent = ws
		}
	}

	parts := doc.Concat{doc.Text(lines[0])}
	for _, line := range lines[1:] {
		if indent > 0 {
			line = line[indent:]
		}
		parts = append(parts, doc.HardLine)
		if line != "" {
			parts = append(parts, doc.Text(line))
		}
	}
	return parts
}

var blockBodyReg = regexp.MustCompile(`^\s*\{([\s\S]*)\}\s*$`)

// blockContents strips the braces around a block statement.
func blockContents(code string) string {
	if m := blockBodyReg.FindStringSubmatch(code); m != nil {
		code = m[1]
	}
	return strings.TrimSpace(code)
}

func (p *printer) printScriptlet(n *markup.Scriptlet) doc.Doc {
	code := blockContents(p.read(n.Value))
	if code == "" {
		return nil
	}
	d, ok := p.embed(n, code, embed.SyntaxStatements)
	if !ok {
		return p.verbatim(n)
	}
	return doc.Concat{doc.BreakParent, doc.Text("$ "), p.toValidBlock(d)}
}

func (p *printer) printStatic(n *markup.Static) doc.Doc {
	code := blockContents(p.read(n.Value))
	if code == "" {
		return nil
	}
	d, ok := p.embed(n, code, embed.SyntaxStatements)
	if !ok {
		return p.verbatim(n)
	}
	return doc.Concat{doc.Text(n.Target + " "), p.toValidBlock(d)}
}

func (p *printer) printStyle(n *markup.Style) doc.Doc {
	ext := ".css"
	if i := strings.LastIndexByte(n.Ext, '.'); i >= 0 {
		ext = n.Ext[i:]
	}
	syntax, ok := syntaxForExt(ext)
	if !ok {
		return p.verbatim(n)
	}

	d, ok := p.embed(n, strings.TrimSpace(p.read(n.Value)), syntax)
	if !ok {
		return p.verbatim(n)
	}
	return doc.Group(
		doc.Text("style"+n.Ext+" {"),
		doc.Indent(doc.Line, d),
		doc.Line,
		doc.Text("}"),
	)
}

var textEscaper = strings.NewReplacer(`\`, `\\`, "${", `\${`, "$!{", `\$!{`)

// textSource returns text as it must be written in a template.
func (p *printer) textSource(t *markup.Text) string {
	if t.Raw {
		return t.Value
	}
	return textEscaper.Replace(t.Value)
}

const (
	doubleQuoteSpace = `${" "}`
	singleQuoteSpace = `${' '}`
)

// visibleSpace is a placeholder that prints a space which layout would
// otherwise drop.
func (p *printer) visibleSpace() string {
	if p.opts.SingleQuote {
		return singleQuoteSpace
	}
	return doubleQuoteSpace
}

func isVisibleSpace(s string) bool {
	return s == doubleQuoteSpace || s == singleQuoteSpace
}
