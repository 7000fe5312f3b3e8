package embed

import (
	"fmt"
	"strings"

	"github.com/grindlemire/tagfmt/pkg/doc"
)

// node is a token, or a bracketed group of nodes.
type node struct {
	tok      token // the opening bracket for groups
	group    bool
	children []*node
	close    token
	block    bool // braces holding statements
	class    bool // class body
}

func (n *node) isGroup(open string) bool {
	return n.group && n.tok.text == open
}

func (n *node) isPunct(texts ...string) bool {
	if n.group || n.tok.kind != tokPunct {
		return false
	}
	for _, text := range texts {
		if n.tok.text == text {
			return true
		}
	}
	return false
}

func (n *node) isWord(texts ...string) bool {
	if n.group || n.tok.kind != tokIdent {
		return false
	}
	for _, text := range texts {
		if n.tok.text == text {
			return true
		}
	}
	return false
}

func (n *node) isComment() bool {
	return !n.group && n.tok.isComment()
}

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

func buildTree(tokens []token, syntax Syntax) ([]*node, error) {
	type frame struct {
		n      *node
		closer string
	}
	root := &node{group: true}
	stack := []frame{{n: root}}

	for _, t := range tokens {
		top := stack[len(stack)-1]
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				n := &node{tok: t, group: true}
				top.n.children = append(top.n.children, n)
				stack = append(stack, frame{n: n, closer: closers[t.text]})
				continue
			case ")", "]", "}":
				if t.text != top.closer {
					msg := fmt.Sprintf("unexpected %q", t.text)
					if top.closer != "" {
						msg = fmt.Sprintf("expected %q but found %q", top.closer, t.text)
					}
					return nil, &SyntaxError{Syntax: syntax, Offset: t.offset, Message: msg}
				}
				top.n.close = t
				stack = stack[:len(stack)-1]
				continue
			}
		}
		top.n.children = append(top.n.children, &node{tok: t})
	}

	if len(stack) > 1 {
		top := stack[len(stack)-1]
		return nil, &SyntaxError{Syntax: syntax, Offset: top.n.tok.offset, Message: fmt.Sprintf("missing %q", top.closer)}
	}
	return root.children, nil
}

var keywords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "export": true, "extends": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "let": true, "new": true, "return": true, "switch": true,
	"throw": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "await": true,
}

var binaryOperators = map[string]bool{
	"&&": true, "||": true, "??": true, "+": true, "-": true, "*": true, "/": true,
	"%": true, "**": true, "==": true, "===": true, "!=": true, "!==": true,
	"<": true, ">": true, "<=": true, ">=": true, "|": true, "&": true, "^": true,
	"<<": true, ">>": true, ">>>": true, "instanceof": true,
}

// endsExpr reports whether n can end an expression, which decides between
// unary and binary operators, calls and grouping parentheses, and member
// access and array literals.
func endsExpr(n *node) bool {
	if n.group {
		return true
	}
	switch n.tok.kind {
	case tokNumber, tokString, tokTemplate, tokRegex:
		return true
	case tokIdent:
		return !keywords[n.tok.text]
	case tokPunct:
		return n.tok.text == "++" || n.tok.text == "--"
	}
	return false
}

func callable(prev *node) bool {
	return endsExpr(prev) && !prev.isWord("async")
}

type scriptPrinter struct {
	opts   Options
	syntax Syntax
}

func formatScript(code string, syntax Syntax, opts Options) (doc.Doc, error) {
	tokens, err := tokenize(code, syntax)
	if err != nil {
		return nil, err
	}
	nodes, err := buildTree(tokens, syntax)
	if err != nil {
		return nil, err
	}

	p := &scriptPrinter{opts: opts, syntax: syntax}
	switch syntax {
	case SyntaxStatements:
		p.classify(nodes, true)
		return p.printStatements(nodes, false), nil

	case SyntaxArgs, SyntaxParams:
		p.classify(nodes, false)
		items := splitItems(nodes)
		if syntax == SyntaxParams {
			return p.printList("|", "|", items, false, false, false), nil
		}
		return p.printList("(", ")", items, p.trailing(items, TrailingCommaAll), false, false), nil

	case SyntaxMethod:
		if len(nodes) != 2 || !nodes[0].isGroup("(") || !nodes[1].isGroup("{") {
			return nil, &SyntaxError{Syntax: syntax, Message: "expected (params) { body }"}
		}
		p.classify(nodes[0].children, false)
		nodes[1].block = true
		p.classify(nodes[1].children, true)
		params := splitItems(nodes[0].children)
		return doc.Concat{
			p.printList("(", ")", params, p.trailing(params, TrailingCommaAll), false, false),
			doc.Text(" "),
			p.printBlock(nodes[1]),
		}, nil
	}

	// Expressions and JSON values.
	significant := 0
	for _, n := range nodes {
		if n.isPunct(";") {
			return nil, &SyntaxError{Syntax: syntax, Offset: n.tok.offset, Message: "unexpected \";\" in expression"}
		}
		if !n.isComment() {
			significant++
		}
	}
	if significant == 0 {
		return nil, &SyntaxError{Syntax: syntax, Message: "expected an expression"}
	}
	p.classify(nodes, false)
	return p.printSeq(nodes), nil
}

// trailing reports whether a broken list gets a trailing comma. A rest
// element must stay last, so lists ending in one never get one.
func (p *scriptPrinter) trailing(items [][]*node, level TrailingComma) bool {
	if p.syntax == SyntaxJSON || p.opts.TrailingComma > level || len(items) == 0 {
		return false
	}
	for _, n := range items[len(items)-1] {
		if n.isComment() {
			continue
		}
		return !n.isPunct("...")
	}
	return false
}

// classify marks which brace groups are blocks rather than object literals.
func (p *scriptPrinter) classify(nodes []*node, statements bool) {
	classPending := false
	var prev *node

	for i, n := range nodes {
		if n.isComment() {
			continue
		}
		if !n.group {
			if n.isWord("class") && !(i+1 < len(nodes) && nodes[i+1].isPunct(":")) {
				classPending = true
			}
			prev = n
			continue
		}

		if n.tok.text == "{" && p.syntax != SyntaxJSON {
			switch {
			case classPending:
				n.block, n.class = true, true
				classPending = false
			case prev == nil:
				n.block = statements
			case prev.group:
				n.block = prev.tok.text == "("
			default:
				n.block = statements && prev.isPunct(";") ||
					prev.isPunct("=>") || prev.isWord("else", "try", "finally", "do")
			}
		}
		p.classify(n.children, n.block)
		prev = n
	}
}

// splitItems splits list contents at top-level commas. Comments on the same
// line as the preceding comma stay with the preceding item, and a trailing
// comma in the source does not produce an empty last item.
func splitItems(nodes []*node) [][]*node {
	var items [][]*node
	var cur []*node
	started := false

	for _, n := range nodes {
		if n.isPunct(",") {
			items = append(items, cur)
			cur = nil
			started = true
			continue
		}
		if started && len(cur) == 0 && n.isComment() && n.tok.newlines == 0 && len(items) > 0 {
			items[len(items)-1] = append(items[len(items)-1], n)
			continue
		}
		cur = append(cur, n)
	}

	if len(cur) > 0 {
		onlyComments := true
		for _, n := range cur {
			if !n.isComment() {
				onlyComments = false
			}
		}
		if onlyComments && len(items) > 0 {
			items[len(items)-1] = append(items[len(items)-1], cur...)
		} else {
			items = append(items, cur)
		}
	}
	return items
}

func (p *scriptPrinter) printList(open, close string, items [][]*node, trailing, spacing, broken bool) doc.Doc {
	if len(items) == 0 {
		return doc.Text(open + close)
	}

	line := doc.SoftLine
	if spacing {
		line = doc.Line
	}
	docs := make([]doc.Doc, len(items))
	for i, item := range items {
		docs[i] = p.printSeq(item)
	}

	var trail doc.Doc = doc.Text("")
	if trailing {
		trail = doc.IfBreak(doc.Text(","), doc.Text(""))
	}
	parts := []doc.Doc{
		doc.Text(open),
		doc.Indent(line, doc.Join(doc.Concat{doc.Text(","), doc.Line}, docs)),
		trail,
		line,
		doc.Text(close),
	}
	if broken {
		return doc.BrokenGroup(parts...)
	}
	return doc.Group(parts...)
}

func (p *scriptPrinter) printBlock(n *node) doc.Doc {
	if len(n.children) == 0 {
		return doc.Text("{}")
	}
	return doc.Concat{
		doc.Text("{"),
		doc.Indent(doc.HardLine, p.printStatements(n.children, n.class)),
		doc.HardLine,
		doc.Text("}"),
	}
}

type separator int

const (
	sepSpace separator = iota
	sepNone
	sepLine
)

// printSeq prints a run of nodes with no list structure: an expression, a
// statement or one list item. Binary and conditional operators offer line
// breaks; continuation lines are indented.
func (p *scriptPrinter) printSeq(nodes []*node) doc.Doc {
	var head, rest doc.Concat
	out := &head
	ternary := 0

	var prev *node
	prefix := false
	lineAfter := false
	afterComment := false

	for i, n := range nodes {
		if n.isComment() {
			if n.tok.kind == tokLineComment {
				*out = append(*out, doc.LineSuffix(doc.Text(" "+n.tok.text)), doc.BreakParent)
				continue
			}
			if prev != nil || afterComment {
				*out = append(*out, doc.Text(" "))
			}
			*out = append(*out, doc.Literal(n.tok.text))
			afterComment = true
			continue
		}

		var next *node
		for _, m := range nodes[i+1:] {
			if !m.isComment() {
				next = m
				break
			}
		}

		sep := sepSpace
		switch {
		case prev == nil:
			sep = sepNone
			if afterComment {
				sep = sepSpace
			}
		case prefix:
			sep = sepNone
		case n.isPunct(",", ";", ".", "?."):
			sep = sepNone
		case prev.isPunct(".", "?.", "@"):
			sep = sepNone
		case n.isPunct("++", "--") && endsExpr(prev):
			sep = sepNone
		case n.isPunct("?") && p.syntax != SyntaxJSON:
			sep = sepLine
			ternary++
		case n.isPunct(":"):
			sep = sepNone
			if ternary > 0 {
				sep = sepLine
				ternary--
			}
		case n.isGroup("("):
			if callable(prev) {
				sep = sepNone
			}
		case n.isGroup("["):
			if endsExpr(prev) {
				sep = sepNone
			}
		case n.tok.kind == tokTemplate && prev.tok.kind == tokIdent && endsExpr(prev):
			sep = sepNone
		}
		if lineAfter && sep == sepSpace {
			sep = sepLine
		}

		switch sep {
		case sepSpace:
			*out = append(*out, doc.Text(" "))
		case sepLine:
			out = &rest
			*out = append(*out, doc.Line)
		}

		*out = append(*out, p.printNode(n, prev, next))

		wasPostfix := n.isPunct("++", "--") && prev != nil && endsExpr(prev) && sep == sepNone
		prefix = n.isPunct("!", "~", "...", "@") ||
			n.isPunct("+", "-") && (prev == nil || !endsExpr(prev) || prefix) ||
			n.isPunct("++", "--") && !wasPostfix
		lineAfter = !prefix && (binaryOperators[n.tok.text] && !n.group && n.tok.kind != tokString)
		prev = n
		afterComment = false
	}

	if len(rest) == 0 {
		if len(head) == 1 {
			return head[0]
		}
		return head
	}
	return doc.Group(head, doc.Indent(rest))
}

func (p *scriptPrinter) printNode(n *node, prev, next *node) doc.Doc {
	if !n.group {
		text := n.tok.text
		if n.tok.kind == tokString && p.syntax != SyntaxJSON {
			text = normalizeQuotes(text, p.opts.SingleQuote)
		}
		return doc.Literal(text)
	}

	switch n.tok.text {
	case "(":
		if hasTopLevel(n.children, ";") {
			return p.printForHead(n.children)
		}
		items := splitItems(n.children)
		callLike := prev != nil && (callable(prev) || prev.isWord("function", "async")) ||
			next != nil && next.isPunct("=>")
		if !callLike && len(items) == 1 {
			return doc.Group(
				doc.Text("("),
				doc.Indent(doc.SoftLine, p.printSeq(items[0])),
				doc.SoftLine,
				doc.Text(")"),
			)
		}
		return p.printList("(", ")", items, callLike && p.trailing(items, TrailingCommaAll), false, false)

	case "[":
		if prev != nil && endsExpr(prev) {
			return doc.Concat{doc.Text("["), p.printSeq(n.children), doc.Text("]")}
		}
		items := splitItems(n.children)
		return p.printList("[", "]", items, p.trailing(items, TrailingCommaES5), false, false)
	}

	if n.block {
		return p.printBlock(n)
	}
	items := splitItems(n.children)
	broken := len(n.children) > 0 && n.children[0].tok.newlines > 0
	return p.printList("{", "}", items, p.trailing(items, TrailingCommaES5), true, broken)
}

func hasTopLevel(nodes []*node, punct string) bool {
	for _, n := range nodes {
		if n.isPunct(punct) {
			return true
		}
	}
	return false
}

// printForHead prints the clauses of for (init; test; update) on one line.
func (p *scriptPrinter) printForHead(nodes []*node) doc.Doc {
	out := doc.Concat{doc.Text("(")}
	var clause []*node
	flush := func(last bool) {
		if len(clause) > 0 {
			if len(out) > 1 {
				out = append(out, doc.Text(" "))
			}
			out = append(out, p.printSeq(clause))
		}
		if !last {
			out = append(out, doc.Text(";"))
		}
		clause = nil
	}
	for _, n := range nodes {
		if n.isPunct(";") {
			flush(false)
			continue
		}
		clause = append(clause, n)
	}
	flush(true)
	return append(out, doc.Text(")"))
}

type statement struct {
	nodes    []*node
	comment  *node
	trailing []*node
	blank    bool
}

func splitStatements(nodes []*node) []*statement {
	var stmts []*statement
	cur := &statement{}
	flush := func() {
		if len(cur.nodes) > 0 {
			stmts = append(stmts, cur)
		}
		cur = &statement{}
	}

	for _, n := range nodes {
		newlines := n.tok.newlines
		switch {
		case n.isComment() && len(cur.nodes) == 0:
			if newlines == 0 && len(stmts) > 0 {
				last := stmts[len(stmts)-1]
				last.trailing = append(last.trailing, n)
			} else {
				stmts = append(stmts, &statement{comment: n, blank: newlines > 1})
			}
			continue
		case n.isPunct(";"):
			flush()
			continue
		case len(cur.nodes) > 0 && newlines > 0 && asiBreak(cur.nodes, n):
			flush()
		}
		if len(cur.nodes) == 0 {
			cur.blank = newlines > 1
		}
		cur.nodes = append(cur.nodes, n)
	}
	flush()
	return stmts
}

func lastSignificant(nodes []*node) (*node, int) {
	for i := len(nodes) - 1; i >= 0; i-- {
		if !nodes[i].isComment() {
			return nodes[i], i
		}
	}
	return nil, -1
}

func firstSignificant(nodes []*node) *node {
	for _, n := range nodes {
		if !n.isComment() {
			return n
		}
	}
	return nil
}

// asiBreak reports whether a line break before next ends the statement in
// cur, following automatic semicolon insertion.
func asiBreak(cur []*node, next *node) bool {
	last, i := lastSignificant(cur)
	if last == nil {
		return false
	}

	switch {
	case next.group:
		if next.tok.text != "{" || next.block {
			return false
		}
	case next.tok.kind == tokPunct:
		if !next.isPunct("++", "--", "!", "~", "@") {
			return false
		}
	case next.tok.kind == tokTemplate:
		return false
	case next.isWord("else", "catch", "finally", "instanceof", "in", "of", "as", "satisfies", "extends"):
		return false
	case next.isWord("while"):
		if first := firstSignificant(cur); first != nil && first.isWord("do") {
			return false
		}
	}

	if last.isWord("break", "continue", "return", "debugger") {
		return true
	}
	if last.isGroup("(") && i > 0 {
		if head := cur[i-1]; head.isWord("if", "for", "while", "with") {
			return false
		}
	}
	return endsExpr(last)
}

func needsSemicolon(nodes []*node, inClass bool) bool {
	last, _ := lastSignificant(nodes)
	if last == nil || last.isPunct(":") {
		return false
	}
	if !last.block {
		return true
	}
	if inClass {
		return false
	}

	var words []*node
	for _, n := range nodes {
		if !n.isComment() {
			words = append(words, n)
		}
	}
	if len(words) == 1 {
		return false
	}
	for _, n := range words {
		if n.isWord("export", "default", "async") {
			continue
		}
		return !n.isWord("if", "for", "while", "function", "class", "try", "switch", "with")
	}
	return true
}

func (p *scriptPrinter) printStatements(nodes []*node, inClass bool) doc.Doc {
	stmts := splitStatements(nodes)
	out := doc.Concat{}

	for i, s := range stmts {
		if i > 0 {
			out = append(out, doc.HardLine)
			if s.blank {
				out = append(out, doc.HardLine)
			}
		}

		if s.comment != nil {
			out = append(out, doc.Literal(s.comment.tok.text))
		} else {
			out = append(out, p.printSeq(s.nodes))
			if needsSemicolon(s.nodes, inClass) {
				out = append(out, doc.Text(";"))
			}
		}

		for _, c := range s.trailing {
			if c.tok.kind == tokLineComment {
				out = append(out, doc.LineSuffix(doc.Text(" "+c.tok.text)), doc.BreakParent)
			} else {
				out = append(out, doc.Text(" "), doc.Literal(c.tok.text))
			}
		}
	}
	return out
}

// normalizeQuotes re-quotes a string literal with the preferred quote unless
// that would need more escapes than the other quote.
func normalizeQuotes(s string, single bool) string {
	if len(s) < 2 {
		return s
	}
	preferred, alternate := byte('"'), byte('\'')
	if single {
		preferred, alternate = alternate, preferred
	}

	content := s[1 : len(s)-1]
	count := map[byte]int{}
	for i := 0; i < len(content); i++ {
		if content[i] == '\\' {
			i++
			continue
		}
		count[content[i]]++
	}

	enclosing := preferred
	if count[preferred] > count[alternate] {
		enclosing = alternate
	}
	if enclosing == s[0] {
		return s
	}

	var b strings.Builder
	b.WriteByte(enclosing)
	for i := 0; i < len(content); i++ {
		c := content[i]
		if c == '\\' && i+1 < len(content) {
			if next := content[i+1]; next == s[0] {
				b.WriteByte(next)
			} else {
				b.WriteByte(c)
				b.WriteByte(next)
			}
			i++
			continue
		}
		if c == enclosing {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte(enclosing)
	return b.String()
}
