package formatter

import (
	"strings"

	"github.com/grindlemire/tagfmt/pkg/embed"
	"github.com/grindlemire/tagfmt/pkg/markup"
)

// inlineTags flow with surrounding text in the html dialect.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "acronym": true, "b": true, "bdo": true, "big": true,
	"br": true, "cite": true, "code": true, "dfn": true, "em": true, "i": true,
	"img": true, "kbd": true, "label": true, "map": true, "object": true,
	"output": true, "q": true, "samp": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "tt": true, "var": true,
}

// preserveSpaceTags keep their text exactly as written.
var preserveSpaceTags = map[string]bool{
	"textarea":     true,
	"pre":          true,
	"html-comment": true,
	"html-script":  true,
	"html-style":   true,
}

// IsInlineTag reports whether the html dialect flows the tag with text.
func IsInlineTag(name string) bool { return inlineTags[name] }

// IsPreserveSpaceTag reports whether the tag's text is printed verbatim.
func IsPreserveSpaceTag(name string) bool { return preserveSpaceTags[name] }

func isTextLike(c markup.Child) bool {
	switch c.(type) {
	case *markup.Text, *markup.Placeholder:
		return true
	}
	return false
}

func isInlineHTML(c markup.Child) bool {
	if t, ok := c.(*markup.Tag); ok {
		return t.NameText != "" && inlineTags[t.NameText]
	}
	return isTextLike(c)
}

// isBlockComment reports an html or block comment, which may continue an
// inline run. Line comments end one.
func isBlockComment(c markup.Child) bool {
	cm, ok := c.(*markup.Comment)
	return ok && cm.Kind != markup.CommentLine
}

// bodyMode says how a tag's body reaches the output.
type bodyMode int

const (
	bodyMarkup   bodyMode = iota // printed node by node
	bodyFormat                   // formatted as embedded code
	bodyVerbatim                 // kept as written, placeholders still formatted
)

// hasEmbeddedBody reports tags whose body is code in another language.
func hasEmbeddedBody(tag *markup.Tag) bool {
	switch tag.NameText {
	case "script", "html-script", "style", "html-style":
		return true
	}
	return false
}

// embeddedBody picks the sub-formatter syntax for a tag's body.
func (p *printer) embeddedBody(tag *markup.Tag) (embed.Syntax, bodyMode) {
	if !tag.HasBody {
		return 0, bodyMarkup
	}
	switch tag.NameText {
	case "script", "html-script":
		return p.scriptSyntax(tag)
	case "style":
		ext := ".css"
		if lang := p.attrString(tag, "lang"); lang != "" {
			ext = "." + lang
		}
		if n := len(tag.ShorthandClassNames); n > 0 {
			ext = "." + p.read(tag.ShorthandClassNames[n-1].Range)
		}
		if syntax, ok := syntaxForExt(ext); ok {
			return syntax, bodyFormat
		}
		return 0, bodyVerbatim
	case "html-style":
		return embed.SyntaxCSS, bodyFormat
	}
	return 0, bodyMarkup
}

func (p *printer) scriptSyntax(tag *markup.Tag) (embed.Syntax, bodyMode) {
	if !p.hasAttr(tag, "type") {
		return embed.SyntaxStatements, bodyFormat
	}
	switch p.attrString(tag, "type") {
	case "module", "text/javascript", "application/javascript":
		return embed.SyntaxStatements, bodyFormat
	case "importmap", "speculationrules", "application/json":
		return embed.SyntaxJSON, bodyFormat
	}
	return 0, bodyVerbatim
}

func (p *printer) hasAttr(tag *markup.Tag, name string) bool {
	for _, a := range tag.Attrs {
		if named, ok := a.(*markup.AttrNamed); ok && named.Value != nil && p.read(named.Name) == name {
			return true
		}
	}
	return false
}

// attrString returns the contents of a quoted attribute value, or "" when
// the attribute is missing or not a plain string.
func (p *printer) attrString(tag *markup.Tag, name string) string {
	for _, a := range tag.Attrs {
		named, ok := a.(*markup.AttrNamed)
		if !ok || named.Value == nil || p.read(named.Name) != name {
			continue
		}
		if s, ok := stringLiteral(p.read(named.Value.Value)); ok {
			return s
		}
		return ""
	}
	return ""
}

// stringLiteral unquotes a single or double quoted string without escapes.
func stringLiteral(code string) (string, bool) {
	if len(code) < 2 {
		return "", false
	}
	q := code[0]
	if q != '"' && q != '\'' || code[len(code)-1] != q {
		return "", false
	}
	s := code[1 : len(code)-1]
	if strings.IndexByte(s, q) >= 0 || strings.IndexByte(s, '\\') >= 0 {
		return "", false
	}
	return s, true
}

func syntaxForExt(ext string) (embed.Syntax, bool) {
	switch ext {
	case ".css":
		return embed.SyntaxCSS, true
	case ".less":
		return embed.SyntaxLESS, true
	case ".scss":
		return embed.SyntaxSCSS, true
	case ".js", ".mjs", ".cjs", ".ts", ".mts", ".cts":
		return embed.SyntaxStatements, true
	}
	return 0, false
}
