package markup

import "github.com/dlclark/regexp2"

// codePattern is a sticky pattern consumed while walking code. A pattern
// with an until regexp opens a nested region that is walked with patterns
// until until matches.
type codePattern struct {
	match    *regexp2.Regexp
	until    *regexp2.Regexp
	patterns []codePattern
}

var (
	enclosedPatterns   []codePattern
	unenclosedPatterns []codePattern
	// lineBreakPatterns are unenclosedPatterns whose keyword and bracket
	// openers do not swallow a preceding line break.
	lineBreakPatterns []codePattern

	lineBreak = Sticky(`[\n\r]`)
)

// Sticky compiles expr so that it only matches at the starting offset it is
// given, which is how OuterCodeMatches applies its test.
func Sticky(expr string) *regexp2.Regexp {
	return regexp2.MustCompile(`\G(?:`+expr+`)`, regexp2.None)
}

func init() {
	templatePatterns := []codePattern{
		{match: Sticky(`\\.|\$(?!\{)|[^` + "`" + `\\$]+`)},
		{match: Sticky(`\$\{`), until: Sticky(`\}`)},
	}

	enclosedPatterns = []codePattern{
		{match: Sticky(`(?i:[a-z0-9_$#@.]+)`)},
		{match: Sticky(`//[^\n]*`)},
		{match: Sticky(`/\*[\s\S]*?\*/`)},
	}
	enclosedPatterns = append(enclosedPatterns, bracketPatterns(`\s*`)...)
	enclosedPatterns = append(enclosedPatterns, literalPatterns(templatePatterns)...)
	for i := range enclosedPatterns {
		if enclosedPatterns[i].until != nil && enclosedPatterns[i].patterns == nil {
			enclosedPatterns[i].patterns = enclosedPatterns
		}
	}
	templatePatterns[1].patterns = enclosedPatterns

	unenclosedPatterns = append([]codePattern{
		{match: Sticky(`\b\s*` + keywordOperators)},
		{match: Sticky(`\s*` + symbolOperators + `\s*`)},
	}, enclosedPatterns...)

	lineBreakPatterns = []codePattern{
		{match: Sticky(`\b[ \t]*` + keywordOperators)},
		{match: Sticky(`[ \t]*` + symbolOperators + `\s*`)},
	}
	lineBreakPatterns = append(lineBreakPatterns, enclosedPatterns[:3]...)
	for _, pattern := range bracketPatterns(`[ \t]*`) {
		pattern.patterns = enclosedPatterns
		lineBreakPatterns = append(lineBreakPatterns, pattern)
	}
	lineBreakPatterns = append(lineBreakPatterns, enclosedPatterns[6:]...)
}

// bracketPatterns open a nested region at an opening bracket after lead.
func bracketPatterns(lead string) []codePattern {
	return []codePattern{
		{match: Sticky(lead + `\(`), until: Sticky(`\)`)},
		{match: Sticky(lead + `\{`), until: Sticky(`\}`)},
		{match: Sticky(lead + `\[`), until: Sticky(`\]`)},
	}
}

func literalPatterns(template []codePattern) []codePattern {
	return []codePattern{
		{match: Sticky(`'(?:\\.|[^'\\])*'`)},
		{match: Sticky(`"(?:\\.|[^"\\])*"`)},
		{match: Sticky("`"), until: Sticky("`"), patterns: template},
		{match: Sticky(`(?i:/(?:\\.|\[(?:\\.|[^\]\\\n]+)\]|[^\[/\\\n])+/[a-z]*)`)},
	}
}

const (
	keywordOperators = `(?:as|async|await|class|function|in(?:stanceof)?|new|void|delete|keyof|typeof|satisfies|extends)(?:\s+|\b)`
	symbolOperators  = `(?:[\^~%!]|\+{1,2}|\*{1,2}|-(?:-(?!\s))?|&{1,2}|\|{1,2}|!={0,2}|===?|<{1,3}|>{2,3}|<=?|=>)`
)

// OuterCodeMatches reports whether test matches somewhere in code outside of
// any brackets, string, template literal, comment or regular expression. When
// enclosed is false, whitespace around operators is also skipped, so
// "a + b" has no outer whitespace while "a b" does. test must be anchored
// with Sticky.
func OuterCodeMatches(code string, test *regexp2.Regexp, enclosed bool) bool {
	if enclosed {
		return outerMatches(code, test, enclosedPatterns)
	}
	return outerMatches(code, test, unenclosedPatterns)
}

// OuterLineBreak reports whether code has a line break outside of any
// brackets, string, template literal, comment or regular expression. A break
// after an operator continues the expression and does not count. A line
// starting with a bracket or keyword does.
func OuterLineBreak(code string) bool {
	return outerMatches(code, lineBreak, lineBreakPatterns)
}

func outerMatches(code string, test *regexp2.Regexp, patterns []codePattern) bool {
	src := []rune(code)
	root := codePattern{until: test, patterns: patterns}

	stack := []codePattern{root}
	pos := 0
	for {
		top := stack[len(stack)-1]
	walk:
		for pos < len(src) {
			for _, pattern := range top.patterns {
				n := matchAt(pattern.match, src, pos)
				if n <= 0 {
					continue
				}
				pos += n
				if pattern.until != nil {
					stack = append(stack, pattern)
					break walk
				}
				continue walk
			}

			if n := matchAt(top.until, src, pos); n >= 0 {
				pos += n
				if len(stack) == 1 {
					return true
				}
				stack = stack[:len(stack)-1]
				break
			}
			pos++
		}

		if pos >= len(src) || len(stack) == 0 {
			return false
		}
	}
}

func matchAt(re *regexp2.Regexp, src []rune, pos int) int {
	m, err := re.FindRunesMatchStartingAt(src, pos)
	if err != nil || m == nil {
		return -1
	}
	return m.Length
}
