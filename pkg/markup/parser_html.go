package markup

import "strings"

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
	"const": true, "debug": true, "id": true, "let": true, "lifecycle": true,
	"log": true, "return": true,
}

var rawTextTags = map[string]bool{
	"script": true, "style": true, "textarea": true,
	"html-comment": true, "html-script": true, "html-style": true,
}

// IsVoidTag reports whether a tag never has a body or closing tag.
func IsVoidTag(name string) bool { return voidTags[name] }

// IsRawTextTag reports whether a tag's body is raw text rather than markup.
func IsRawTextTag(name string) bool { return rawTextTags[name] }

func isTagStart(s string) bool {
	if len(s) < 2 || s[0] != '<' {
		return false
	}
	c := s[1]
	return isIdentStart(c) || c == '@' || strings.HasPrefix(s[1:], "${")
}

// parseHTMLContent parses markup until limit, the closing tag of parent, or
// in lineMode the end of the line.
func (p *parser) parseHTMLContent(parent *Tag, limit int, lineMode bool) []Child {
	var children []Child
	var text strings.Builder
	textStart := -1

	flush := func(end int) {
		if textStart < 0 {
			return
		}
		children = append(children, &Text{Range: Range{Start: textStart, End: end}, Value: text.String()})
		text.Reset()
		textStart = -1
	}
	mark := func() {
		if textStart < 0 {
			textStart = p.pos
		}
	}

	for p.pos < limit {
		c := p.src[p.pos]

		switch {
		case c == '\n' && lineMode && parent == nil:
			if textStart >= 0 {
				value := strings.TrimRight(text.String(), " \t")
				end := textStart + len(strings.TrimRight(p.src[textStart:p.pos], " \t"))
				if value != "" {
					children = append(children, &Text{Range: Range{Start: textStart, End: end}, Value: value})
				}
				text.Reset()
				textStart = -1
			}
			return children

		case c == '\n':
			mark()
			text.WriteByte('\n')
			p.pos++
			p.skipStrip(limit)
			continue

		case c == '<':
			switch {
			case strings.HasPrefix(p.src[p.pos:], "</"):
				if parent != nil {
					flush(p.pos)
					return children
				}
				p.unexpected(p.pos, "closing tag")
				flush(p.pos)
				if end := strings.IndexByte(p.src[p.pos:limit], '>'); end >= 0 {
					p.pos += end + 1
				} else {
					p.pos = limit
				}
				continue
			case strings.HasPrefix(p.src[p.pos:], "<!--"):
				flush(p.pos)
				children = append(children, p.parseHTMLComment())
				continue
			case strings.HasPrefix(p.src[p.pos:], "<![CDATA["):
				flush(p.pos)
				start := p.pos
				value := p.parseDelimited("<![CDATA[", "]]>")
				children = append(children, &CDATA{Range: Range{Start: start, End: p.pos}, Value: value})
				continue
			case strings.HasPrefix(p.src[p.pos:], "<!"):
				flush(p.pos)
				start := p.pos
				value := p.parseDelimited("<!", ">")
				children = append(children, &Doctype{Range: Range{Start: start, End: p.pos}, Value: value})
				continue
			case strings.HasPrefix(p.src[p.pos:], "<?"):
				flush(p.pos)
				start := p.pos
				value := p.parseDelimited("<?", "?>")
				children = append(children, &Declaration{Range: Range{Start: start, End: p.pos}, Value: value})
				continue
			case isTagStart(p.src[p.pos:]):
				flush(p.pos)
				children = append(children, p.parseHTMLTag())
				continue
			}

		case c == '$' && (strings.HasPrefix(p.src[p.pos:], "${") || strings.HasPrefix(p.src[p.pos:], "$!{")):
			flush(p.pos)
			children = append(children, p.parsePlaceholder(limit))
			continue

		case c == '$' && p.pos+1 < limit && (p.src[p.pos+1] == ' ' || p.src[p.pos+1] == '\t') && p.atLineStart():
			flush(p.pos)
			children = append(children, p.parseScriptlet())
			continue

		case c == '/' && p.pos+1 < limit && (p.src[p.pos+1] == '/' || p.src[p.pos+1] == '*') && p.atLineStart():
			flush(p.pos)
			children = append(children, p.parseJSComment())
			continue

		case c == '\\' && p.pos+1 < limit && (p.src[p.pos+1] == '\\' || p.src[p.pos+1] == '$'):
			mark()
			text.WriteByte(p.src[p.pos+1])
			p.pos += 2
			continue
		}

		mark()
		text.WriteByte(c)
		p.pos++
	}

	flush(p.pos)
	return children
}

// parseRawContent parses the body of a raw text tag. In the html dialect it
// stops at the closing tag named closeName; otherwise at limit or, in
// lineMode, at the end of the line.
func (p *parser) parseRawContent(closeName string, limit int, lineMode bool) []Child {
	var children []Child
	textStart := -1
	var text strings.Builder

	flush := func(end int) {
		if textStart < 0 {
			return
		}
		children = append(children, &Text{Range: Range{Start: textStart, End: end}, Value: text.String(), Raw: true})
		text.Reset()
		textStart = -1
	}
	mark := func() {
		if textStart < 0 {
			textStart = p.pos
		}
	}

	for p.pos < limit {
		c := p.src[p.pos]
		switch {
		case c == '\n' && lineMode:
			if textStart >= 0 {
				value := strings.TrimRight(text.String(), " \t")
				text.Reset()
				text.WriteString(value)
				flush(textStart + len(value))
			}
			return children
		case c == '\n':
			mark()
			text.WriteByte('\n')
			p.pos++
			p.skipStrip(limit)
			continue
		case closeName != "" && p.atClosingTag(closeName):
			flush(p.pos)
			return children
		case c == '\\' && p.pos+1 < limit && p.src[p.pos+1] == '$':
			mark()
			text.WriteString(`\$`)
			p.pos += 2
			continue
		case c == '$' && p.rawPlaceho && (strings.HasPrefix(p.src[p.pos:], "${") || strings.HasPrefix(p.src[p.pos:], "$!{")):
			flush(p.pos)
			children = append(children, p.parsePlaceholder(limit))
			continue
		}
		mark()
		text.WriteByte(c)
		p.pos++
	}

	flush(p.pos)
	return children
}

func (p *parser) atClosingTag(name string) bool {
	rest := p.src[p.pos:]
	if !strings.HasPrefix(rest, "</") {
		return false
	}
	rest = rest[2:]
	if strings.HasPrefix(rest, ">") {
		return true
	}
	if !strings.HasPrefix(rest, name) {
		return false
	}
	rest = strings.TrimLeft(rest[len(name):], " \t\n")
	return strings.HasPrefix(rest, ">")
}

// parseDelimited consumes open...close and returns the range between them.
func (p *parser) parseDelimited(open, close string) Range {
	start := p.pos
	p.pos += len(open)
	end := strings.Index(p.src[p.pos:], close)
	if end < 0 {
		p.report(ErrUnterminated, start, "", "missing %q", close)
		value := Range{Start: p.pos, End: len(p.src)}
		p.pos = len(p.src)
		return value
	}
	value := Range{Start: p.pos, End: p.pos + end}
	p.pos += end + len(close)
	return value
}

func (p *parser) parseHTMLComment() *Comment {
	c := &Comment{Kind: CommentHTML}
	c.Start = p.pos
	c.Value = p.parseDelimited("<!--", "-->")
	c.End = p.pos
	return c
}

func (p *parser) parsePlaceholder(limit int) Child {
	start := p.pos
	ph := &Placeholder{Escape: p.src[p.pos+1] == '{'}
	valueStart := p.pos + 2
	if !ph.Escape {
		valueStart++
	}

	end, err := scanUntilClose(p.src, valueStart, limit, '}')
	if err != nil {
		p.scanErr(err)
		p.pos = p.lineEnd(start)
		if p.pos > limit {
			p.pos = limit
		}
		return &Text{Range: Range{Start: start, End: p.pos}, Value: p.src[start:p.pos], Raw: true}
	}

	ph.Range = Range{Start: start, End: end + 1}
	ph.Value = Range{Start: valueStart, End: end}
	p.pos = end + 1
	return ph
}

// parseHTMLTag parses <name ...> with its body and closing tag.
func (p *parser) parseHTMLTag() *Tag {
	tag := &Tag{}
	tag.Start = p.pos
	p.pos++ // <

	p.parseTagHead(tag, false)
	tag.BodyType = bodyTypeFor(tag.NameText)

	switch {
	case p.hasPrefix("/>"):
		p.pos += 2
		tag.End = p.pos
		return tag
	case p.hasPrefix(">"):
		p.pos++
	default:
		p.unterminated(tag.Start, "tag <"+p.src[tag.Name.Start:tag.Name.End]+">", "")
		tag.End = p.pos
		return tag
	}

	if tag.BodyType == BodyVoid {
		tag.End = p.pos
		return tag
	}

	tag.HasBody = true
	if tag.BodyType == BodyText {
		saved := p.rawPlaceho
		p.rawPlaceho = tag.NameText != "html-comment"
		tag.Body = p.parseRawContent(tag.NameText, len(p.src), false)
		p.rawPlaceho = saved
	} else {
		tag.Body = p.parseHTMLContent(tag, len(p.src), false)
	}

	p.parseClosingTag(tag)
	tag.End = p.pos
	return tag
}

func (p *parser) parseClosingTag(tag *Tag) {
	if !p.hasPrefix("</") {
		p.missingClose(tag)
		return
	}

	start := p.pos
	end := strings.IndexByte(p.src[p.pos:], '>')
	if end < 0 {
		p.unterminated(start, "closing tag", "")
		p.pos = len(p.src)
		return
	}
	name := strings.TrimSpace(p.src[p.pos+2 : p.pos+end])
	p.pos += end + 1

	if name != "" && tag.NameText != "" && name != tag.NameText {
		p.mismatchedClose(start, name, tag)
	}
}
