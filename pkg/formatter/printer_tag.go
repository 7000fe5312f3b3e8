package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/grindlemire/tagfmt/pkg/doc"
	"github.com/grindlemire/tagfmt/pkg/embed"
	"github.com/grindlemire/tagfmt/pkg/markup"
)

func (p *printer) printTag(tag *markup.Tag) doc.Doc {
	var b *body
	switch syntax, mode := p.embeddedBody(tag); mode {
	case bodyFormat, bodyVerbatim:
		if content, ok := p.formattedBody(tag, syntax, mode == bodyVerbatim); ok {
			b = &body{inline: true, preserve: mode == bodyVerbatim, content: []doc.Doc{content}}
		} else {
			b = p.printTagBody(tag)
		}
	default:
		b = p.printTagBody(tag)
	}

	if p.concise {
		return p.printConciseTag(tag, b)
	}
	return p.printHTMLTag(tag, b)
}

// formattedBody formats the body of a script or style tag as one snippet,
// with sentinels standing in for placeholders.
func (p *printer) formattedBody(tag *markup.Tag, syntax embed.Syntax, verbatim bool) (doc.Doc, bool) {
	var code strings.Builder
	var placeholders []doc.Doc
	for _, child := range tag.Body {
		switch c := child.(type) {
		case *markup.Placeholder:
			code.WriteString(sentinel(len(placeholders)))
			placeholders = append(placeholders, p.printPlaceholder(c))
		case *markup.Text:
			if c.Raw {
				code.WriteString(c.Value)
			} else {
				code.WriteString(p.read(c.Range))
			}
		default:
			code.WriteString(p.read(child.Span()))
		}
	}

	var d doc.Doc
	if verbatim {
		d = doc.Literal(code.String())
	} else {
		var ok bool
		if d, ok = p.embed(tag, code.String(), syntax); !ok {
			return nil, false
		}
	}

	d, err := splice(d, placeholders)
	if err != nil {
		p.diagnose(EmbedSyntax, tag, err)
		return nil, false
	}
	return d, true
}

func (p *printer) printHTMLTag(tag *markup.Tag, b *body) doc.Doc {
	open := doc.Concat{doc.Text("<"), p.printTagBeforeAttrs(tag, shorthands{})}
	open = append(open, p.printAttrs(tag, tag.Attrs, func(attrs []doc.Doc) doc.Doc {
		return doc.Concat{doc.Indent(doc.Line, doc.Join(doc.Line, attrs)), doc.SoftLine}
	})...)

	if b == nil && tag.BodyType != markup.BodyVoid {
		open = append(open, doc.Text("/>"))
		return doc.Group(open...)
	}
	open = append(open, doc.Text(">"))
	if b == nil {
		return doc.Group(open...)
	}

	closeTag := doc.Text("</>")
	if tag.Name.Static() {
		closeTag = doc.Text("</" + p.read(tag.Name.Range) + ">")
	}
	if b.preserve {
		return doc.Group(doc.Group(open...), b.doc(), closeTag)
	}

	bodyLine := doc.HardLine
	inner := doc.Join(bodyLine, b.content)
	if b.inline {
		bodyLine = doc.SoftLine
		inner = b.content[0]
	}
	return doc.Group(
		doc.Group(open...),
		doc.Indent(bodyLine, inner),
		bodyLine,
		closeTag,
	)
}

func (p *printer) printConciseTag(tag *markup.Tag, b *body) doc.Doc {
	sh := p.shorthands(tag)
	parts := doc.Concat{p.printTagBeforeAttrs(tag, sh)}

	attrs := tag.Attrs
	if sh.skip != nil {
		attrs = nil
		for _, a := range tag.Attrs {
			if a != sh.skip[0] && a != sh.skip[1] {
				attrs = append(attrs, a)
			}
		}
	}
	parts = append(parts, p.printAttrs(tag, attrs, func(attrs []doc.Doc) doc.Doc {
		return doc.Group(
			doc.IfBreak(doc.Text(" ["), doc.Text("")),
			doc.Indent(doc.Line, doc.Join(doc.Line, attrs)),
			doc.IfBreak(doc.Concat{doc.Line, doc.Text("]")}, doc.Text("")),
		)
	})...)

	switch {
	case b == nil:
	case b.inline && doc.IsEmpty(b.content[0]):
	case b.inline && b.preserve:
		parts = append(parts, doc.Group(doc.Indent(doc.Line, wrapConciseText(b.content[0]))))
	case b.inline:
		parts = append(parts, doc.Group(doc.Text(" --"), doc.Indent(doc.Line, b.content[0])))
	default:
		parts = append(parts, doc.Group(doc.Indent(doc.HardLine, doc.Join(doc.HardLine, b.content))))
	}
	return doc.Group(parts...)
}

// printAttrs prints the default attribute fused to the tag head, a lone
// attribute after a space, and anything more through list.
func (p *printer) printAttrs(tag *markup.Tag, attrs []markup.Attr, list func([]doc.Doc) doc.Doc) doc.Concat {
	if len(attrs) == 0 {
		return nil
	}

	var out doc.Concat
	hasDefault := false
	if named, ok := attrs[0].(*markup.AttrNamed); ok && named.IsDefault() {
		hasDefault = true
		out = append(out, p.printAttr(named))
		attrs = attrs[1:]
	}
	if len(attrs) == 0 {
		return out
	}

	docs := make([]doc.Doc, len(attrs))
	for i, a := range attrs {
		docs[i] = p.printAttr(a)
	}
	if len(docs) == 1 && !hasDefault && tag.Params == nil && tag.Args == nil {
		return append(out, doc.Text(" "), docs[0])
	}
	return append(out, list(docs))
}

func (p *printer) printAttr(a markup.Attr) doc.Doc {
	switch a := a.(type) {
	case *markup.AttrNamed:
		return p.printNamedAttr(a)
	case *markup.AttrSpread:
		d, ok := p.embed(a, p.read(a.Value), embed.SyntaxExpression)
		if !ok {
			return p.verbatim(a)
		}
		return doc.Group(doc.Text("..."), p.toValidAttrValue(d))
	}
	p.diagnose(UnexpectedNode, a, fmt.Errorf("no printer for attribute %s", markup.KindName(a)))
	return p.verbatim(a)
}

func (p *printer) printNamedAttr(a *markup.AttrNamed) doc.Doc {
	name := p.read(a.Name)
	if a.Args == nil && a.Value == nil && a.Method == nil {
		return doc.Text(name)
	}

	parts := doc.Concat{doc.Text(name)}
	if a.Args != nil && !p.parsed.IsBlank(a.Args) {
		d, ok := p.embed(a, strings.TrimSpace(p.read(*a.Args)), embed.SyntaxArgs)
		if !ok {
			return p.verbatim(a)
		}
		parts = append(parts, d)
	}

	switch {
	case a.Method != nil:
		d, ok := p.embed(a, p.read(*a.Method), embed.SyntaxMethod)
		if !ok {
			return p.verbatim(a)
		}
		parts = append(parts, d)
	case a.Value != nil:
		d, ok := p.embed(a, p.read(a.Value.Value), embed.SyntaxExpression)
		if !ok {
			return p.verbatim(a)
		}
		op := "="
		if a.Value.Bound {
			op = ":="
		}
		parts = append(parts, doc.Text(op), p.toValidAttrValue(d))
	}
	return doc.Group(parts...)
}

// printTagBeforeAttrs prints the name, shorthands, arguments, variable and
// parameters of a tag.
func (p *printer) printTagBeforeAttrs(tag *markup.Tag, sh shorthands) doc.Doc {
	parts := doc.Concat{p.printTemplate(tag, tag.Name)}

	switch {
	case tag.ShorthandID != nil:
		parts = append(parts, doc.Text("#"), p.printTemplate(tag, *tag.ShorthandID))
	case sh.id != "":
		parts = append(parts, doc.Text("#"+sh.id))
	}
	for _, class := range tag.ShorthandClassNames {
		parts = append(parts, doc.Text("."), p.printTemplate(tag, class))
	}
	for _, class := range sh.classes {
		parts = append(parts, doc.Text("."+class))
	}

	if tag.Args != nil && !p.parsed.IsBlank(tag.Args) {
		if d, ok := p.embed(tag, strings.TrimSpace(p.read(*tag.Args)), embed.SyntaxArgs); ok {
			parts = append(parts, d)
		} else {
			parts = append(parts, doc.Literal("("+p.read(*tag.Args)+")"))
		}
	}
	if tag.Var != nil {
		if d, ok := p.embed(tag, strings.TrimSpace(p.read(*tag.Var)), embed.SyntaxExpression); ok {
			parts = append(parts, doc.Text("/"), d)
		} else {
			parts = append(parts, doc.Literal("/"+p.read(*tag.Var)))
		}
	}
	if tag.Params != nil && !p.parsed.IsBlank(tag.Params) {
		if d, ok := p.embed(tag, strings.TrimSpace(p.read(*tag.Params)), embed.SyntaxParams); ok {
			parts = append(parts, d)
		} else {
			parts = append(parts, doc.Literal("|"+p.read(*tag.Params)+"|"))
		}
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return parts
}

// printTemplate prints a name with ${} interpolations formatted.
func (p *printer) printTemplate(n markup.Node, t markup.Template) doc.Doc {
	if t.Static() {
		return doc.Text(p.read(t.Range))
	}

	parts := doc.Concat{doc.Text(p.read(t.Quasis[0]))}
	for i, expr := range t.Expressions {
		d, ok := p.embed(n, p.read(expr), embed.SyntaxExpression)
		if !ok {
			return doc.Literal(p.read(t.Range))
		}
		parts = append(parts, doc.Group(
			doc.Text("${"),
			doc.Indent(doc.SoftLine, d),
			doc.SoftLine,
			doc.Text("}"),
		))
		if quasi := p.read(t.Quasis[i+1]); quasi != "" {
			parts = append(parts, doc.Text(quasi))
		}
	}
	return parts
}

var shorthandReg = regexp.MustCompile(`^[a-zA-Z0-9_$][a-zA-Z0-9_$-]*(?:\s+[a-zA-Z0-9_$][a-zA-Z0-9_$-]*)*$`)

// shorthands are id and class attributes printed as #id and .class.
type shorthands struct {
	id      string
	classes []string
	skip    []markup.Attr // always two entries when set
}

// shorthands picks the first plain string id and class attributes of a tag
// that has none of its own, for the concise dialect.
func (p *printer) shorthands(tag *markup.Tag) shorthands {
	var sh shorthands
	if !tag.Name.Static() || strings.HasPrefix(tag.NameText, "@") {
		return sh
	}

	wantID := tag.ShorthandID == nil
	wantClass := len(tag.ShorthandClassNames) == 0
	var skipID, skipClass markup.Attr

	for _, a := range tag.Attrs {
		named, ok := a.(*markup.AttrNamed)
		if !ok || named.Value == nil || named.Value.Bound || named.Args != nil || named.Method != nil {
			continue
		}
		value, ok := stringLiteral(p.read(named.Value.Value))
		if !ok || !shorthandReg.MatchString(value) {
			continue
		}

		switch p.read(named.Name) {
		case "id":
			if wantID && !strings.ContainsAny(value, " \t\n") {
				sh.id, skipID, wantID = value, a, false
			}
		case "class":
			if wantClass {
				sh.classes, skipClass, wantClass = strings.Fields(value), a, false
			}
		}
	}

	if skipID != nil || skipClass != nil {
		sh.skip = []markup.Attr{skipID, skipClass}
	}
	return sh
}
