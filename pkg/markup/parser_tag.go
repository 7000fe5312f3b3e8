package markup

import (
	"strconv"
	"strings"
)

func isNameStop(c byte) bool {
	return isSpace(c) || strings.IndexByte("<>/()|=#.,;[]'\"`{}", c) >= 0
}

func isAttrNameStop(c byte) bool {
	return isSpace(c) || strings.IndexByte("<>/()|=,;[]'\"`{}", c) >= 0
}

// parseTemplate reads a name that may contain ${} interpolations.
func (p *parser) parseTemplate() Template {
	t := Template{Range: Range{Start: p.pos}}
	quasiStart := p.pos

	for p.pos < len(p.src) {
		if strings.HasPrefix(p.src[p.pos:], "${") {
			t.Quasis = append(t.Quasis, Range{Start: quasiStart, End: p.pos})
			end, err := scanUntilClose(p.src, p.pos+2, len(p.src), '}')
			if err != nil {
				p.scanErr(err)
				t.Expressions = append(t.Expressions, Range{Start: p.pos + 2, End: p.pos + 2})
				p.pos = p.lineEnd(p.pos)
				quasiStart = p.pos
				break
			}
			t.Expressions = append(t.Expressions, Range{Start: p.pos + 2, End: end})
			p.pos = end + 1
			quasiStart = p.pos
			continue
		}
		if isNameStop(p.src[p.pos]) {
			break
		}
		p.pos++
	}

	t.Quasis = append(t.Quasis, Range{Start: quasiStart, End: p.pos})
	t.End = p.pos
	return t
}

// parseTagHead parses everything between the "<" (or line start) and the end
// of the attributes: name, shorthands, arguments, variable, parameters, the
// default attribute and the attribute list.
func (p *parser) parseTagHead(tag *Tag, concise bool) {
	tag.Name = p.parseTemplate()
	if tag.Name.Static() {
		tag.NameText = p.src[tag.Name.Start:tag.Name.End]
	}

	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '#':
			p.pos++
			t := p.parseTemplate()
			if tag.ShorthandID != nil {
				p.errorf(t.Start-1, "tag has more than one shorthand id")
			}
			tag.ShorthandID = &t
			continue
		case '.':
			p.pos++
			tag.ShorthandClassNames = append(tag.ShorthandClassNames, p.parseTemplate())
			continue
		}
		break
	}

	if tag.Name.Len() == 0 && tag.ShorthandID == nil && len(tag.ShorthandClassNames) == 0 {
		if !concise {
			p.errorf(tag.Start, "expected a tag name")
		}
		return
	}

	if p.hasPrefix("(") {
		end, err := scanUntilClose(p.src, p.pos+1, len(p.src), ')')
		if err != nil {
			p.scanErr(err)
			return
		}
		tag.Args = &Range{Start: p.pos + 1, End: end}
		p.pos = end + 1
	}

	if p.hasPrefix("/") && p.pos+1 < len(p.src) && p.src[p.pos+1] != '>' {
		start := p.pos + 1
		end, err := scanCode(p.src, start, len(p.src), func(i int) bool {
			c := p.src[i]
			return isSpace(c) || strings.IndexByte("|>(,=", c) >= 0 || c == '/' && i > start
		})
		if err != nil {
			p.scanErr(err)
			return
		}
		tag.Var = &Range{Start: start, End: end}
		p.pos = end
	}

	if p.hasPrefix("|") {
		p.parseParams(tag)
	}

	if p.hasPrefix("=") || p.hasPrefix(":=") {
		attr := &AttrNamed{Name: Range{Start: p.pos, End: p.pos}}
		attr.Start = p.pos
		attr.Value = p.parseAttrValue(concise, false)
		attr.End = p.pos
		tag.Attrs = append(tag.Attrs, attr)
	}

	p.parseAttrs(tag, concise)
}

func (p *parser) parseParams(tag *Tag) {
	start := p.pos + 1
	end, err := scanCode(p.src, start, len(p.src), func(i int) bool { return p.src[i] == '|' })
	if err != nil || end >= len(p.src) {
		p.report(ErrUnterminated, p.pos, "", "missing closing | for tag parameters")
		p.pos = p.lineEnd(p.pos)
		return
	}
	if tag.Params != nil {
		p.errorf(p.pos, "tag has more than one parameter list")
	}
	tag.Params = &Range{Start: start, End: end}
	p.pos = end + 1
}

// parseAttrs parses attributes up to ">" or "/>" in the html dialect, or up
// to the end of the line or a "--" in the concise dialect. Concise
// attributes may span lines inside [ ].
func (p *parser) parseAttrs(tag *Tag, concise bool) {
	inBlock := false

	for p.pos < len(p.src) {
		c := p.src[p.pos]

		if concise {
			switch {
			case c == '\n' && !inBlock:
				return
			case isSpace(c) || c == ',' || c == ';':
				p.pos++
				continue
			case c == '[' && !inBlock:
				inBlock = true
				p.pos++
				continue
			case c == ']' && inBlock:
				inBlock = false
				p.pos++
				continue
			case !inBlock && p.dashesAt(p.pos) > 0:
				return
			}
		} else {
			switch {
			case isSpace(c) || c == ',':
				p.pos++
				continue
			case c == '>' || p.hasPrefix("/>"):
				return
			}
		}

		switch {
		case c == '|':
			p.parseParams(tag)
		case p.hasPrefix("..."):
			tag.Attrs = append(tag.Attrs, p.parseSpread(concise, inBlock))
		default:
			attr := p.parseNamedAttr(concise, inBlock)
			if attr == nil {
				p.unexpected(p.pos, strconv.QuoteRune(rune(c))+" in attributes")
				p.pos++
				continue
			}
			tag.Attrs = append(tag.Attrs, attr)
		}
	}

	if inBlock {
		p.report(ErrUnterminated, p.pos, "", "missing ] after attributes")
	} else if !concise {
		p.unterminated(tag.Start, "tag <"+p.src[tag.Name.Start:tag.Name.End]+">", "")
	}
}

func (p *parser) parseSpread(concise, inBlock bool) *AttrSpread {
	a := &AttrSpread{}
	a.Start = p.pos
	p.pos += 3
	a.Value = p.scanAttrValue(concise, inBlock)
	if a.Value.Len() == 0 {
		p.missingValue(a.Start, "expression after ...")
	}
	a.End = p.pos
	return a
}

func (p *parser) parseNamedAttr(concise, inBlock bool) *AttrNamed {
	start := p.pos
	for p.pos < len(p.src) && !isAttrNameStop(p.src[p.pos]) && !p.hasPrefix(":=") {
		p.pos++
	}
	if p.pos == start {
		return nil
	}

	attr := &AttrNamed{Name: Range{Start: start, End: p.pos}}
	attr.Start = start

	if p.hasPrefix("(") {
		open := p.pos
		end, err := scanUntilClose(p.src, open+1, len(p.src), ')')
		if err != nil {
			p.scanErr(err)
			p.pos = p.lineEnd(p.pos)
			attr.End = p.pos
			return attr
		}
		j := end + 1
		for j < len(p.src) && (p.src[j] == ' ' || p.src[j] == '\t') {
			j++
		}
		if j < len(p.src) && p.src[j] == '{' {
			close, err := scanUntilClose(p.src, j+1, len(p.src), '}')
			if err != nil {
				p.scanErr(err)
				p.pos = len(p.src)
				attr.End = p.pos
				return attr
			}
			attr.Method = &Range{Start: open, End: close + 1}
			p.pos = close + 1
			attr.End = p.pos
			return attr
		}
		attr.Args = &Range{Start: open + 1, End: end}
		p.pos = end + 1
	}

	// Allow spaces around "=".
	j := p.pos
	for j < len(p.src) && (p.src[j] == ' ' || p.src[j] == '\t') {
		j++
	}
	if strings.HasPrefix(p.src[j:], ":=") || strings.HasPrefix(p.src[j:], "=") && !strings.HasPrefix(p.src[j:], "=>") {
		p.pos = j
		attr.Value = p.parseAttrValue(concise, inBlock)
	}

	attr.End = p.pos
	return attr
}

// parseAttrValue parses "=expr" or ":=expr" at p.pos.
func (p *parser) parseAttrValue(concise, inBlock bool) *AttrValue {
	v := &AttrValue{}
	v.Start = p.pos
	if p.hasPrefix(":=") {
		v.Bound = true
		p.pos += 2
	} else {
		p.pos++
	}
	p.skipInlineSpace()

	v.Value = p.scanAttrValue(concise, inBlock)
	if v.Value.Len() == 0 {
		p.missingValue(v.Start, "attribute value")
	}
	v.End = p.pos
	return v
}

// scanAttrValue reads an attribute value expression. Whitespace ends the
// value unless an operator on either side continues it.
func (p *parser) scanAttrValue(concise, inBlock bool) Range {
	start := p.pos
	limit := len(p.src)

	end, err := scanCode(p.src, start, limit, func(i int) bool {
		c := p.src[i]
		switch {
		case c == ',':
			return true
		case !concise && c == '>':
			return i == start || p.src[i-1] != '='
		case !concise && c == '/' && i+1 < limit && p.src[i+1] == '>':
			return true
		case concise && inBlock && c == ']':
			return true
		case isSpace(c):
			j := i
			for j < limit && isSpace(p.src[j]) {
				if p.src[j] == '\n' && concise && !inBlock {
					return true
				}
				j++
			}
			return !joinsAcrossSpace(p.src, start, i, j, limit, concise)
		}
		return false
	})
	if err != nil {
		p.scanErr(err)
		end = p.lineEnd(start)
	}

	p.pos = end
	for end > start && isSpace(p.src[end-1]) {
		end--
	}
	return Range{Start: start, End: end}
}
