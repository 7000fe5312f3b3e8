package embed

import "strings"

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokTemplate
	tokRegex
	tokPunct
	tokLineComment
	tokBlockComment
)

type token struct {
	kind     tokenKind
	text     string
	offset   int
	newlines int // line breaks between the previous token and this one
}

func (t token) isComment() bool {
	return t.kind == tokLineComment || t.kind == tokBlockComment
}

func (t token) is(text string) bool {
	return (t.kind == tokPunct || t.kind == tokIdent) && t.text == text
}

// Longest first.
var punctuators = []string{
	">>>=", "...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**", "<<", ">>",
}

var regexAfterWords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

type lexer struct {
	src    string
	syntax Syntax
	pos    int
	tokens []token
}

func tokenize(src string, syntax Syntax) ([]token, error) {
	l := &lexer{src: src, syntax: syntax}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) errorf(offset int, msg string) error {
	return &SyntaxError{Syntax: l.syntax, Offset: offset, Message: msg}
}

func (l *lexer) regexAllowed() bool {
	for i := len(l.tokens) - 1; i >= 0; i-- {
		t := l.tokens[i]
		if t.isComment() {
			continue
		}
		switch t.kind {
		case tokIdent:
			return regexAfterWords[t.text]
		case tokPunct:
			return t.text != ")" && t.text != "]" && t.text != "}" && t.text != "++" && t.text != "--"
		}
		return false
	}
	return true
}

func (l *lexer) run() error {
	newlines := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		start := l.pos

		switch {
		case c == '\n':
			newlines++
			l.pos++
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
			continue
		}

		var kind tokenKind
		switch {
		case strings.HasPrefix(l.src[l.pos:], "//"):
			kind = tokLineComment
			if end := strings.IndexByte(l.src[l.pos:], '\n'); end >= 0 {
				l.pos += end
			} else {
				l.pos = len(l.src)
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			kind = tokBlockComment
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				return l.errorf(start, "unterminated comment")
			}
			l.pos += end + 4
		case c == '"' || c == '\'':
			kind = tokString
			if err := l.skipString(); err != nil {
				return err
			}
		case c == '`':
			kind = tokTemplate
			end, err := skipTemplate(l.src, l.pos)
			if err != nil {
				return l.errorf(start, err.Error())
			}
			l.pos = end
		case c >= '0' && c <= '9' || c == '.' && l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9':
			kind = tokNumber
			l.skipNumber()
		case isIdentStart(c):
			kind = tokIdent
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
		case c == '/' && l.regexAllowed():
			kind = tokRegex
			if err := l.skipRegex(); err != nil {
				return err
			}
		default:
			kind = tokPunct
			l.pos++
			for _, p := range punctuators {
				if strings.HasPrefix(l.src[start:], p) {
					l.pos = start + len(p)
					break
				}
			}
		}

		l.tokens = append(l.tokens, token{kind: kind, text: l.src[start:l.pos], offset: start, newlines: newlines})
		newlines = 0
	}
	return nil
}

func (l *lexer) skipString() error {
	start := l.pos
	quote := l.src[l.pos]
	for i := l.pos + 1; i < len(l.src); i++ {
		switch l.src[i] {
		case '\\':
			i++
		case '\n':
			return l.errorf(start, "unterminated string literal")
		case quote:
			l.pos = i + 1
			return nil
		}
	}
	return l.errorf(start, "unterminated string literal")
}

func (l *lexer) skipNumber() {
	hex := strings.HasPrefix(l.src[l.pos:], "0x") || strings.HasPrefix(l.src[l.pos:], "0X")
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isIdentPart(c) || c == '.':
			l.pos++
		case (c == '+' || c == '-') && !hex && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E'):
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) skipRegex() error {
	start := l.pos
	inClass := false
	for i := l.pos + 1; i < len(l.src); i++ {
		switch c := l.src[i]; {
		case c == '\\':
			i++
		case c == '\n':
			return l.errorf(start, "unterminated regular expression")
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			i++
			for i < len(l.src) && isIdentPart(l.src[i]) {
				i++
			}
			l.pos = i
			return nil
		}
	}
	return l.errorf(start, "unterminated regular expression")
}

type lexError string

func (e lexError) Error() string { return string(e) }

// skipTemplate returns the offset after the template literal starting at i.
func skipTemplate(src string, i int) (int, error) {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '`':
			return j + 1, nil
		case '$':
			if j+1 < len(src) && src[j+1] == '{' {
				end, err := skipBraces(src, j+2)
				if err != nil {
					return 0, err
				}
				j = end
			}
		}
	}
	return 0, lexError("unterminated template literal")
}

// skipBraces returns the offset of the "}" closing a brace opened before i.
func skipBraces(src string, i int) (int, error) {
	depth := 0
	for j := i; j < len(src); j++ {
		switch src[j] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return j, nil
			}
			depth--
		case '"', '\'':
			quote := src[j]
			for j++; j < len(src) && src[j] != quote; j++ {
				if src[j] == '\\' {
					j++
				}
			}
		case '`':
			end, err := skipTemplate(src, j)
			if err != nil {
				return 0, err
			}
			j = end - 1
		}
	}
	return 0, lexError("unterminated template literal")
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c == '#' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
