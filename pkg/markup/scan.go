package markup

import (
	"fmt"
	"strings"
)

// scanError is a problem found while skipping embedded code.
type scanError struct {
	pos  int
	kind ErrorKind
	msg  string
}

func (e *scanError) Error() string { return fmt.Sprintf("offset %d: %s", e.pos, e.msg) }

// scanCode walks JavaScript-like code from start and returns the offset at
// which stop first reports true while no bracket is open. Strings, template
// literals, comments and regular expressions are skipped as units. Reaching
// limit with brackets still open is an error.
func scanCode(src string, start, limit int, stop func(i int) bool) (int, *scanError) {
	var stack []byte
	var prev byte
	i := start

	for i < limit {
		c := src[i]
		if len(stack) == 0 && stop(i) {
			return i, nil
		}

		switch {
		case c == '"' || c == '\'':
			end, ok := skipQuoted(src, i, limit)
			if !ok {
				return i, &scanError{i, ErrUnterminated, "unterminated string literal"}
			}
			i, prev = end, c
			continue
		case c == '`':
			end, err := skipTemplateLiteral(src, i, limit)
			if err != nil {
				return i, err
			}
			i, prev = end, c
			continue
		case c == '/' && i+1 < limit && src[i+1] == '/':
			for i < limit && src[i] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < limit && src[i+1] == '*':
			end := strings.Index(src[i+2:limit], "*/")
			if end < 0 {
				return i, &scanError{i, ErrUnterminated, "unterminated comment"}
			}
			i += end + 4
			continue
		case c == '/' && regexAllowedAfter(prev):
			if end, ok := skipRegex(src, i, limit); ok {
				i, prev = end, 'a'
				continue
			}
		case c == '(':
			stack = append(stack, ')')
		case c == '[':
			stack = append(stack, ']')
		case c == '{':
			stack = append(stack, '}')
		case c == ')' || c == ']' || c == '}':
			if len(stack) == 0 {
				return i, &scanError{i, ErrUnexpected, fmt.Sprintf("unexpected %q", c)}
			}
			if stack[len(stack)-1] != c {
				return i, &scanError{i, ErrUnexpected, fmt.Sprintf("expected %q but found %q", stack[len(stack)-1], c)}
			}
			stack = stack[:len(stack)-1]
		}

		if !isSpace(c) {
			prev = c
		}
		i++
	}

	if len(stack) > 0 {
		return i, &scanError{i, ErrUnterminated, fmt.Sprintf("missing %q", stack[len(stack)-1])}
	}
	return i, nil
}

// scanUntilClose returns the offset of the bracket that closes the one just
// before start.
func scanUntilClose(src string, start, limit int, closer byte) (int, *scanError) {
	end, err := scanCode(src, start, limit, func(i int) bool { return src[i] == closer })
	if err != nil {
		return end, err
	}
	if end >= limit {
		return end, &scanError{start, ErrUnterminated, fmt.Sprintf("missing %q", closer)}
	}
	return end, nil
}

func skipQuoted(src string, i, limit int) (int, bool) {
	quote := src[i]
	for j := i + 1; j < limit; j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return j, false
		case quote:
			return j + 1, true
		}
	}
	return limit, false
}

func skipTemplateLiteral(src string, i, limit int) (int, *scanError) {
	for j := i + 1; j < limit; j++ {
		switch src[j] {
		case '\\':
			j++
		case '`':
			return j + 1, nil
		case '$':
			if j+1 < limit && src[j+1] == '{' {
				end, err := scanUntilClose(src, j+2, limit, '}')
				if err != nil {
					return end, err
				}
				j = end
			}
		}
	}
	return limit, &scanError{i, ErrUnterminated, "unterminated template literal"}
}

func skipRegex(src string, i, limit int) (int, bool) {
	inClass := false
	for j := i + 1; j < limit; j++ {
		switch c := src[j]; {
		case c == '\\':
			j++
		case c == '\n':
			return 0, false
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			j++
			for j < limit && isIdentPart(src[j]) {
				j++
			}
			return j, true
		}
	}
	return 0, false
}

func regexAllowedAfter(prev byte) bool {
	if prev == 0 {
		return true
	}
	return strings.IndexByte("(,=:[!&|?{};+-*%<>~^", prev) >= 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// wordBefore returns the identifier that ends at end, if any.
func wordBefore(src string, start, end int) string {
	i := end
	for i > start && isIdentPart(src[i-1]) {
		i--
	}
	return src[i:end]
}

var continuationWords = map[string]bool{
	"as": true, "async": true, "await": true, "delete": true, "extends": true,
	"in": true, "instanceof": true, "keyof": true, "new": true,
	"satisfies": true, "typeof": true, "void": true,
}

// joinsAcrossSpace reports whether the whitespace run [i, j) inside an
// expression is surrounded by an operator, so the expression continues
// after it. src[j] is the first byte after the run.
func joinsAcrossSpace(src string, start, i, j, limit int, concise bool) bool {
	k := i
	for k > start && isSpace(src[k-1]) {
		k--
	}
	if k > start {
		switch prev := src[k-1]; prev {
		case '=', '+', '-', '*', '/', '%', '&', '|', '^', '!', '<', '?', ':', '~':
			return true
		case '>':
			return concise || k-2 >= start && (src[k-2] == '=' || src[k-2] == '>')
		}
		if continuationWords[wordBefore(src, start, k)] {
			return true
		}
	}

	if j >= limit {
		return false
	}
	rest := src[j:limit]
	switch c := rest[0]; c {
	case '+', '*', '%', '&', '|', '^', '?', ':', '<', '.':
		return true
	case '=':
		return true
	case '!':
		return strings.HasPrefix(rest, "!=")
	case '-':
		if concise && strings.HasPrefix(rest, "--") && (len(rest) == 2 || isSpace(rest[2])) {
			return false
		}
		return true
	case '/':
		return !strings.HasPrefix(rest, "/>") && !strings.HasPrefix(rest, "//") && !strings.HasPrefix(rest, "/*")
	case '>':
		return concise
	}
	for _, word := range []string{"instanceof", "in", "as", "satisfies"} {
		if strings.HasPrefix(rest, word) && (len(rest) == len(word) || !isIdentPart(rest[len(word)])) {
			return true
		}
	}
	return false
}
