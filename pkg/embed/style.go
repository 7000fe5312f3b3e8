package embed

import (
	"errors"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/grindlemire/tagfmt/pkg/doc"
)

// lineCommentMarker disguises less and scss line comments as block comments
// so the css lexer keeps them as single tokens.
const lineCommentMarker = "/*__LINE_COMMENT__"

type cssToken struct {
	tt       css.TokenType
	text     string
	offset   int
	space    bool // whitespace before the token
	newlines int
}

func (t cssToken) isLineComment() bool {
	return t.tt == css.CommentToken && strings.HasPrefix(t.text, "//")
}

type cssKind int

const (
	cssRule cssKind = iota
	cssDeclaration
	cssStatement
	cssComment
)

type cssNode struct {
	kind     cssKind
	prelude  []cssToken // selector, at-rule prelude, statement, or declaration name
	value    []cssToken // declaration value
	children []*cssNode
	comment  string
	blank    bool // blank line before
	trailing bool // comment on the same line as the previous node
}

func formatStyle(code string, syntax Syntax) (doc.Doc, error) {
	tokens, err := lexStyle(code, syntax)
	if err != nil {
		return nil, err
	}
	p := &styleParser{tokens: tokens, syntax: syntax}
	nodes, err := p.parseBlock(false)
	if err != nil {
		return nil, err
	}
	return printStyleNodes(nodes), nil
}

func lexStyle(code string, syntax Syntax) ([]cssToken, error) {
	src := code
	if syntax != SyntaxCSS {
		var err error
		if src, err = hideLineComments(code, syntax); err != nil {
			return nil, err
		}
	}

	l := css.NewLexer(parse.NewInputString(src))
	var tokens []cssToken
	offset := 0
	space, newlines := false, 0

	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, &SyntaxError{Syntax: syntax, Offset: offset, Message: err.Error()}
			}
			return tokens, nil
		}

		text := string(data)
		switch tt {
		case css.WhitespaceToken:
			space = true
			newlines += strings.Count(text, "\n")
		case css.BadStringToken, css.BadURLToken:
			return nil, &SyntaxError{Syntax: syntax, Offset: offset, Message: "unterminated string"}
		default:
			if tt == css.CommentToken {
				if !strings.HasSuffix(text, "*/") || len(text) < 4 {
					return nil, &SyntaxError{Syntax: syntax, Offset: offset, Message: "unterminated comment"}
				}
				if strings.HasPrefix(text, lineCommentMarker) {
					text = "//" + strings.TrimSuffix(strings.TrimPrefix(text, lineCommentMarker), "*/")
				}
			}
			tokens = append(tokens, cssToken{tt: tt, text: text, offset: offset, space: space, newlines: newlines})
			space, newlines = false, 0
		}
		offset += len(data)
	}
}

// hideLineComments rewrites "// text" as a marked block comment, skipping
// strings, block comments and unquoted urls.
func hideLineComments(code string, syntax Syntax) (string, error) {
	var b strings.Builder
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(code) && code[j] != c && code[j] != '\n' {
				if code[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(code) {
				j = len(code) - 1
			}
			b.WriteString(code[i : j+1])
			i = j
		case strings.HasPrefix(code[i:], "/*"):
			end := strings.Index(code[i+2:], "*/")
			if end < 0 {
				b.WriteString(code[i:])
				return b.String(), nil
			}
			b.WriteString(code[i : i+end+4])
			i += end + 3
		case len(code)-i >= 4 && strings.EqualFold(code[i:i+4], "url("):
			end := strings.IndexByte(code[i:], ')')
			if end < 0 {
				end = len(code) - i - 1
			}
			b.WriteString(code[i : i+end+1])
			i += end
		case strings.HasPrefix(code[i:], "//"):
			end := strings.IndexByte(code[i:], '\n')
			if end < 0 {
				end = len(code) - i
			}
			text := code[i+2 : i+end]
			if strings.Contains(text, "*/") {
				return "", &SyntaxError{Syntax: syntax, Offset: i, Message: "line comment contains */"}
			}
			b.WriteString(lineCommentMarker + strings.TrimRight(text, " \t\r") + "*/")
			i += end - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

type styleParser struct {
	tokens []cssToken
	pos    int
	syntax Syntax
}

func (p *styleParser) errorf(offset int, msg string) error {
	return &SyntaxError{Syntax: p.syntax, Offset: offset, Message: msg}
}

// parseBlock parses rules, declarations and comments up to the closing brace
// of a nested block, or to the end of input at the top level.
func (p *styleParser) parseBlock(nested bool) ([]*cssNode, error) {
	var nodes []*cssNode
	var prelude []cssToken
	depth := 0

	finish := func() error {
		if len(prelude) == 0 {
			return nil
		}
		n, err := p.statement(prelude)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
		prelude = nil
		return nil
	}

	for p.pos < len(p.tokens) {
		t := p.tokens[p.pos]

		switch {
		case t.tt == css.CommentToken && len(prelude) == 0:
			nodes = append(nodes, &cssNode{
				kind:     cssComment,
				comment:  t.text,
				blank:    t.newlines > 1,
				trailing: t.newlines == 0 && len(nodes) > 0,
			})
			p.pos++
			continue

		case t.tt == css.LeftBraceToken && depth == 0 && !interpolates(prelude, t):
			if len(prelude) == 0 {
				return nil, p.errorf(t.offset, "missing selector before {")
			}
			p.pos++
			children, err := p.parseBlock(true)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &cssNode{kind: cssRule, prelude: prelude, children: children, blank: prelude[0].newlines > 1})
			prelude = nil
			continue

		case t.tt == css.SemicolonToken && depth == 0:
			p.pos++
			if err := finish(); err != nil {
				return nil, err
			}
			continue

		case t.tt == css.RightBraceToken && depth == 0:
			if !nested {
				return nil, p.errorf(t.offset, "unexpected }")
			}
			p.pos++
			if err := finish(); err != nil {
				return nil, err
			}
			return nodes, nil

		case t.tt == css.LeftParenthesisToken || t.tt == css.FunctionToken || t.tt == css.LeftBracketToken || t.tt == css.LeftBraceToken:
			depth++
		case t.tt == css.RightParenthesisToken || t.tt == css.RightBracketToken || t.tt == css.RightBraceToken:
			depth--
		}

		if t.isLineComment() {
			return nil, p.errorf(t.offset, "line comment inside a rule prelude or declaration")
		}
		prelude = append(prelude, t)
		p.pos++
	}

	if nested {
		return nil, p.errorf(len(p.tokens), "missing }")
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// interpolates reports whether brace opens #{...} or @{...}.
func interpolates(prelude []cssToken, brace cssToken) bool {
	if len(prelude) == 0 || brace.space {
		return false
	}
	last := prelude[len(prelude)-1]
	return last.tt == css.DelimToken && (last.text == "#" || last.text == "@")
}

func (p *styleParser) statement(tokens []cssToken) (*cssNode, error) {
	n := &cssNode{kind: cssStatement, prelude: tokens, blank: tokens[0].newlines > 1}
	if tokens[0].tt == css.AtKeywordToken {
		return n, nil
	}

	depth := 0
	for i, t := range tokens {
		switch t.tt {
		case css.LeftParenthesisToken, css.FunctionToken, css.LeftBracketToken, css.LeftBraceToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken, css.RightBraceToken:
			depth--
		case css.ColonToken:
			if depth == 0 {
				n.kind = cssDeclaration
				n.prelude, n.value = tokens[:i], tokens[i+1:]
				if len(n.prelude) == 0 {
					return nil, p.errorf(t.offset, "missing property name")
				}
				return n, nil
			}
		}
	}
	return n, nil
}

func opensParen(t cssToken) bool {
	return t.tt == css.LeftParenthesisToken || t.tt == css.FunctionToken || t.tt == css.LeftBracketToken
}

// joinValue joins tokens with single spaces where the source had whitespace,
// and always after commas.
func joinValue(tokens []cssToken) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 {
			prev := tokens[i-1]
			closing := t.tt == css.RightParenthesisToken || t.tt == css.RightBracketToken || t.tt == css.CommaToken
			if !closing && (prev.tt == css.CommaToken || t.space && !opensParen(prev)) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.text)
	}
	return b.String()
}

// joinSelector joins one selector, putting single spaces around top-level
// combinators.
func joinSelector(tokens []cssToken) string {
	var b strings.Builder
	depth := 0
	afterCombinator := false

	for i, t := range tokens {
		combinator := depth == 0 && t.tt == css.DelimToken && (t.text == ">" || t.text == "+" || t.text == "~")
		switch {
		case combinator:
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t.text)
			b.WriteByte(' ')
			afterCombinator = true
			continue
		case i > 0 && t.space && !afterCombinator && !opensParen(tokens[i-1]) && t.tt != css.RightParenthesisToken && t.tt != css.RightBracketToken:
			b.WriteByte(' ')
		}

		switch {
		case opensParen(t):
			depth++
		case t.tt == css.RightParenthesisToken || t.tt == css.RightBracketToken:
			depth--
		}
		b.WriteString(t.text)
		afterCombinator = false
	}
	return b.String()
}

// splitSelectors splits a selector list at top-level commas.
func splitSelectors(tokens []cssToken) [][]cssToken {
	var out [][]cssToken
	depth, start := 0, 0
	for i, t := range tokens {
		switch {
		case opensParen(t):
			depth++
		case t.tt == css.RightParenthesisToken || t.tt == css.RightBracketToken:
			depth--
		case t.tt == css.CommaToken && depth == 0:
			out = append(out, tokens[start:i])
			start = i + 1
		}
	}
	return append(out, tokens[start:])
}

func printStyleNodes(nodes []*cssNode) doc.Doc {
	out := doc.Concat{}
	for i, n := range nodes {
		if i > 0 {
			if n.kind == cssComment && n.trailing {
				out = append(out, doc.Text(" "), doc.Literal(n.comment))
				continue
			}
			out = append(out, doc.HardLine)
			if n.blank {
				out = append(out, doc.HardLine)
			}
		}
		out = append(out, printStyleNode(n))
	}
	return out
}

func printStyleNode(n *cssNode) doc.Doc {
	switch n.kind {
	case cssComment:
		return doc.Literal(n.comment)
	case cssDeclaration:
		text := joinValue(n.prelude) + ":"
		if value := joinValue(n.value); value != "" {
			text += " " + value
		}
		return doc.Literal(text + ";")
	case cssStatement:
		return doc.Literal(joinValue(n.prelude) + ";")
	}

	var head doc.Doc
	if n.prelude[0].tt == css.AtKeywordToken {
		head = doc.Literal(joinValue(n.prelude))
	} else {
		var selectors []doc.Doc
		for _, sel := range splitSelectors(n.prelude) {
			selectors = append(selectors, doc.Literal(joinSelector(sel)))
		}
		head = doc.Join(doc.Concat{doc.Text(","), doc.HardLine}, selectors)
	}

	if len(n.children) == 0 {
		return doc.Concat{head, doc.Text(" {}")}
	}
	return doc.Concat{
		head,
		doc.Text(" {"),
		doc.Indent(doc.HardLine, printStyleNodes(n.children)),
		doc.HardLine,
		doc.Text("}"),
	}
}
