package markup

import (
	"regexp"
	"strconv"
	"strings"
)

// Parse parses a template. CRLF line endings are normalized to LF first; the
// returned Parsed refers to the normalized code. When the template has
// syntax errors, the returned error is an *ErrorList and the Program holds
// whatever could be recovered.
func Parse(filename, code string) (*Parsed, error) {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	p := &parser{
		parsed: newParsed(filename, code),
		src:    code,
		errors: &ErrorList{},
	}
	program := &Program{Range: Range{Start: 0, End: len(code)}}
	program.Body = p.parseConciseChildren(-1, true)
	p.parsed.Program = program
	return p.parsed, p.errors.Err()
}

type parser struct {
	parsed *Parsed
	src    string
	pos    int
	errors *ErrorList

	// strip is how much indentation is dropped after each newline of text
	// inside a concise text block.
	strip int
	// raw is set while parsing the body of a raw text tag such as script.
	raw        bool
	rawPlaceho bool
	// lastEnd is the end of the last line of content consumed.
	lastEnd int
}

func (p *parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) lineEnd(i int) int {
	if j := strings.IndexByte(p.src[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(p.src)
}

func (p *parser) nextLine(i int) int {
	end := p.lineEnd(i)
	if end < len(p.src) {
		return end + 1
	}
	return end
}

// restIsBlank reports whether only spaces and tabs follow i on its line.
func (p *parser) restIsBlank(i int) bool {
	for ; i < len(p.src) && p.src[i] != '\n'; i++ {
		if p.src[i] != ' ' && p.src[i] != '\t' {
			return false
		}
	}
	return true
}

func (p *parser) skipInlineSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

// finishLine consumes the rest of the current line, which must be blank.
func (p *parser) finishLine() {
	p.skipInlineSpace()
	end := p.pos
	for end > 0 && (p.src[end-1] == ' ' || p.src[end-1] == '\t') {
		end--
	}
	if end > p.lastEnd {
		p.lastEnd = end
	}
	if p.pos >= len(p.src) {
		return
	}
	if p.src[p.pos] != '\n' {
		p.unexpected(p.pos, strconv.Quote(p.src[p.pos:p.lineEnd(p.pos)]))
		p.pos = p.lineEnd(p.pos)
		p.lastEnd = p.pos
		if p.pos >= len(p.src) {
			return
		}
	}
	p.pos++
}

// atLineStart reports whether only indentation precedes p.pos on its line.
func (p *parser) atLineStart() bool {
	for i := p.pos - 1; i >= 0; i-- {
		switch p.src[i] {
		case '\n':
			return true
		case ' ', '\t':
		default:
			return false
		}
	}
	return true
}

func countDashes(s string) int {
	n := 0
	for n < len(s) && s[n] == '-' {
		n++
	}
	return n
}

// dashesAt returns the length of a "--" text marker at i, or 0.
func (p *parser) dashesAt(i int) int {
	n := countDashes(p.src[i:])
	if n < 2 {
		return 0
	}
	if i+n < len(p.src) && !isSpace(p.src[i+n]) {
		return 0
	}
	return n
}

// parseConciseChildren parses lines indented deeper than parentIndent.
func (p *parser) parseConciseChildren(parentIndent int, root bool) []Child {
	var children []Child
	blockIndent := -1

	for p.pos < len(p.src) {
		lineStart := p.pos
		textStart := lineStart
		for textStart < len(p.src) && (p.src[textStart] == ' ' || p.src[textStart] == '\t') {
			textStart++
		}
		if textStart >= len(p.src) || p.src[textStart] == '\n' {
			p.pos = p.nextLine(textStart)
			continue
		}

		indent := textStart - lineStart
		if indent <= parentIndent {
			p.pos = lineStart
			break
		}
		switch {
		case blockIndent < 0:
			blockIndent = indent
		case indent != blockIndent:
			p.inconsistentIndent(textStart)
		}

		p.pos = textStart
		children = append(children, p.parseConciseLine(indent, root)...)
	}

	return children
}

func (p *parser) parseConciseLine(indent int, root bool) []Child {
	start := p.pos
	rest := p.src[start:]

	switch {
	case rest[0] == '<':
		children := p.parseInline(len(p.src), true)
		p.finishLine()
		return children
	case p.dashesAt(start) > 0:
		n := p.dashesAt(start)
		if p.restIsBlank(start + n) {
			return p.parseTextBlock(start, n, indent)
		}
		p.pos = start + n
		p.skipInlineSpace()
		children := p.parseInline(len(p.src), true)
		p.finishLine()
		return children
	case strings.HasPrefix(rest, "$ ") || strings.HasPrefix(rest, "$\t"):
		s := p.parseScriptlet()
		p.finishLine()
		return []Child{s}
	case strings.HasPrefix(rest, "//") || strings.HasPrefix(rest, "/*"):
		c := p.parseJSComment()
		p.finishLine()
		return []Child{c}
	}

	if root && indent == 0 {
		if s := p.parseRootStatement(); s != nil {
			p.finishLine()
			return []Child{s}
		}
	}

	return []Child{p.parseConciseTag(indent)}
}

// parseTextBlock parses a "--" delimited block. The block ends at a line
// holding only the same run of dashes.
func (p *parser) parseTextBlock(start, dashes, indent int) []Child {
	marker := p.src[start : start+dashes]
	contentStart := p.nextLine(start)

	closeLine := -1
	for i := contentStart; i < len(p.src); i = p.nextLine(i) {
		if strings.TrimSpace(p.src[i:p.lineEnd(i)]) == marker {
			closeLine = i
			break
		}
	}
	if closeLine < 0 {
		p.unterminated(start, "text block", "close it with a line containing only "+marker)
		closeLine = len(p.src)
	}

	contentEnd := contentStart
	if closeLine > contentStart {
		contentEnd = closeLine - 1
	}

	saved := p.strip
	p.strip = indent
	p.pos = contentStart
	p.skipStrip(contentEnd)
	children := p.parseInline(contentEnd, false)
	p.strip = saved

	if closeLine < len(p.src) {
		p.lastEnd = closeLine + strings.Index(p.src[closeLine:], marker) + len(marker)
	} else {
		p.lastEnd = len(p.src)
	}
	p.pos = p.nextLine(closeLine)
	return children
}

// parseIndentedText parses the lines after "tag --" that are indented deeper
// than the tag as its text body.
func (p *parser) parseIndentedText(indent int) []Child {
	first := -1
	firstIndent := 0
	contentEnd := -1
	next := p.pos

	for i := p.pos; i < len(p.src); i = p.nextLine(i) {
		j := i
		for j < len(p.src) && (p.src[j] == ' ' || p.src[j] == '\t') {
			j++
		}
		if j >= len(p.src) || p.src[j] == '\n' {
			if j >= len(p.src) {
				break
			}
			continue
		}
		if j-i <= indent {
			break
		}
		if first < 0 {
			first, firstIndent = j, j-i
		}
		contentEnd = p.lineEnd(i)
		next = p.nextLine(i)
	}
	if first < 0 {
		return nil
	}

	saved := p.strip
	p.strip = firstIndent
	p.pos = first
	children := p.parseInline(contentEnd, false)
	p.strip = saved

	p.lastEnd = contentEnd
	p.pos = next
	return children
}

func (p *parser) skipStrip(limit int) {
	for n := 0; n < p.strip && p.pos < limit && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t'); n++ {
		p.pos++
	}
}

// parseInline parses a run of markup, or raw text inside a raw text tag.
func (p *parser) parseInline(limit int, lineMode bool) []Child {
	if p.raw {
		return p.parseRawContent("", limit, lineMode)
	}
	return p.parseHTMLContent(nil, limit, lineMode)
}

func (p *parser) parseConciseTag(indent int) *Tag {
	tag := &Tag{Concise: true}
	tag.Start = p.pos

	p.parseTagHead(tag, true)
	if tag.Name.Len() == 0 && len(tag.Attrs) == 0 {
		p.unexpected(p.pos, strconv.Quote(p.src[p.pos:p.lineEnd(p.pos)]))
		p.pos = p.lineEnd(p.pos)
	}
	headEnd := p.pos
	for headEnd > tag.Start && isSpace(p.src[headEnd-1]) {
		headEnd--
	}
	p.lastEnd = headEnd

	savedRaw, savedPlaceholders := p.raw, p.rawPlaceho
	p.raw = IsRawTextTag(tag.NameText)
	p.rawPlaceho = tag.NameText != "html-comment"

	p.skipInlineSpace()
	if n := p.dashesAt(p.pos); n > 0 {
		if p.restIsBlank(p.pos + n) {
			p.pos += n
			p.finishLine()
			tag.Body = append(tag.Body, p.parseIndentedText(indent)...)
		} else {
			p.pos += n
			p.skipInlineSpace()
			tag.Body = append(tag.Body, p.parseInline(len(p.src), true)...)
			p.finishLine()
		}
	} else {
		p.finishLine()
	}
	tag.Body = append(tag.Body, p.parseConciseChildren(indent, false)...)
	p.raw, p.rawPlaceho = savedRaw, savedPlaceholders

	tag.HasBody = len(tag.Body) > 0
	tag.BodyType = bodyTypeFor(tag.NameText)
	tag.End = max(p.lastEnd, headEnd)
	return tag
}

func bodyTypeFor(name string) BodyType {
	switch {
	case IsVoidTag(name):
		return BodyVoid
	case IsRawTextTag(name):
		return BodyText
	}
	return BodyHTML
}

func (p *parser) parseScriptlet() *Scriptlet {
	s := &Scriptlet{}
	s.Start = p.pos
	p.pos++ // $
	p.skipInlineSpace()
	valueStart := p.pos

	if p.pos < len(p.src) && p.src[p.pos] == '{' {
		end, err := scanUntilClose(p.src, p.pos+1, len(p.src), '}')
		if err != nil {
			p.scanErr(err)
			end = p.lineEnd(p.pos) - 1
		}
		p.pos = end + 1
		s.Block = true
	} else {
		end, err := scanCode(p.src, p.pos, len(p.src), func(i int) bool { return p.src[i] == '\n' })
		if err != nil {
			p.scanErr(err)
			end = p.lineEnd(p.pos)
		}
		p.pos = end
	}

	end := p.pos
	for end > valueStart && isSpace(p.src[end-1]) {
		end--
	}
	s.Value = Range{Start: valueStart, End: end}
	s.End = end
	return s
}

func (p *parser) parseJSComment() *Comment {
	c := &Comment{}
	c.Start = p.pos
	if p.hasPrefix("//") {
		c.Kind = CommentLine
		end := p.lineEnd(p.pos)
		for end > p.pos && (p.src[end-1] == ' ' || p.src[end-1] == '\t') {
			end--
		}
		c.Value = Range{Start: p.pos + 2, End: end}
		c.End = end
		p.pos = end
		return c
	}

	c.Kind = CommentBlock
	end := strings.Index(p.src[p.pos+2:], "*/")
	if end < 0 {
		p.unterminated(p.pos, "comment", "")
		c.Value = Range{Start: p.pos + 2, End: len(p.src)}
		p.pos = len(p.src)
	} else {
		c.Value = Range{Start: p.pos + 2, End: p.pos + 2 + end}
		p.pos += end + 4
	}
	c.End = p.pos
	return c
}

var styleBlockReg = regexp.MustCompile(`^style((?:\.[^\s\\/:*?"<>|({]+)+)?\s*\{`)

func hasWord(s, word string, followers string) bool {
	if !strings.HasPrefix(s, word) || len(s) == len(word) {
		return false
	}
	return strings.IndexByte(followers, s[len(word)]) >= 0
}

// parseRootStatement parses import, export, static, class and style blocks
// that may only appear unindented at the top of a template.
func (p *parser) parseRootStatement() Child {
	start := p.pos
	rest := p.src[start:]

	switch {
	case hasWord(rest, "import", " \t{\"'*"):
		return &Import{Range: p.scanStatement(start)}
	case hasWord(rest, "export", " \t{*"):
		return &Export{Range: p.scanStatement(start)}
	case hasWord(rest, "class", " \t{"):
		r := p.scanStatement(start)
		return &Class{Range: r}
	}

	for _, target := range []string{"static", "server", "client"} {
		if !hasWord(rest, target, " \t") {
			continue
		}
		s := &Static{Target: target}
		p.pos = start + len(target)
		p.skipInlineSpace()
		s.Block = p.pos < len(p.src) && p.src[p.pos] == '{'
		valueStart := p.pos
		s.Range = p.scanStatement(start)
		// scanStatement trims trailing space, which may end before the value.
		s.Value = Range{Start: min(valueStart, s.End), End: s.End}
		return s
	}

	if m := styleBlockReg.FindStringSubmatchIndex(rest); m != nil {
		s := &Style{}
		s.Start = start
		if m[2] >= 0 {
			s.Ext = rest[m[2]:m[3]]
		}
		open := start + m[1]
		end, err := scanUntilClose(p.src, open, len(p.src), '}')
		if err != nil {
			p.scanErr(err)
			end = len(p.src) - 1
		}
		s.Value = Range{Start: open, End: end}
		s.End = end + 1
		p.pos = s.End
		return s
	}

	return nil
}

// scanStatement reads code from start to the end of its line, continuing
// across lines while brackets are open.
func (p *parser) scanStatement(start int) Range {
	end, err := scanCode(p.src, start, len(p.src), func(i int) bool { return p.src[i] == '\n' })
	if err != nil {
		p.scanErr(err)
		end = p.lineEnd(start)
	}
	for end > start && isSpace(p.src[end-1]) {
		end--
	}
	p.pos = end
	return Range{Start: start, End: end}
}
