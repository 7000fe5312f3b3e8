package formatter

import (
	"regexp"
	"strings"

	"github.com/grindlemire/tagfmt/pkg/doc"
	"github.com/grindlemire/tagfmt/pkg/markup"
)

// body is the printed content of a program or tag. An inline body is a
// single run of text-like content; otherwise each entry goes on its own
// line.
type body struct {
	inline   bool
	preserve bool
	content  []doc.Doc
}

func (b *body) doc() doc.Doc {
	if b.inline {
		return b.content[0]
	}
	return doc.Concat(b.content)
}

// printTagBody prints the children of tag, or returns nil when it has none.
func (p *printer) printTagBody(tag *markup.Tag) *body {
	if !tag.HasBody {
		return nil
	}
	preserve := p.preserve || preserveSpaceTags[tag.NameText] || hasEmbeddedBody(tag)

	saved := p.preserve
	p.preserve = p.preserve || preserveSpaceTags[tag.NameText]
	defer func() { p.preserve = saved }()

	return p.printBody(tag.Body, tag, preserve)
}

// printBody coalesces runs of inline children into fills and puts every
// other child on its own line. tag is nil for the program root.
func (p *printer) printBody(children []markup.Child, tag *markup.Tag, preserve bool) *body {
	concise := tag == nil || p.concise
	isInline := isInlineHTML
	if concise {
		isInline = isTextLike
	}

	var content, run []doc.Doc
	runIndex := -1
	inRun := false

	startRun := func() {
		if !inRun {
			inRun = true
			run = nil
			runIndex = len(content)
			content = append(content, nil)
		}
	}
	finishRun := func() {
		if preserve {
			content[runIndex] = doc.Concat(run)
		} else {
			content[runIndex] = doc.Fill(run...)
		}
	}
	closeRun := func() {
		finishRun()
		if concise {
			content[runIndex] = wrapConciseText(content[runIndex])
		}
		inRun = false
	}

	if preserve {
		nl := doc.LiteralLine
		if p.concise {
			nl = doc.HardLine
		}
		inlineChild := false
		for _, child := range children {
			inlineChild = isInline(child) || inlineChild && isBlockComment(child)
			if !inlineChild {
				if inRun {
					if concise {
						p.ensureVisibleTrailingSpace(run)
					}
					closeRun()
				}
				if d := p.printChild(child); d != nil {
					content = append(content, d)
				}
				continue
			}

			startRun()
			if t, ok := child.(*markup.Text); ok {
				run = appendLines(run, p.textSource(t), nl)
			} else if d := p.printChild(child); d != nil {
				run = append(run, d)
			}
		}
		if inRun && concise {
			p.ensureVisibleTrailingSpace(run)
		}
	} else {
		textInline := isInlineHTML
		if tag == nil || tag.Concise {
			textInline = isTextLike
		}

		inlineChild, isInlineTag, explicitLine := false, false, false
		for i, child := range children {
			wasInlineTag := isInlineTag

			var d doc.Doc
			var text string
			if t, ok := child.(*markup.Text); ok {
				if text = trimText(p.textSource(t), children, i, textInline); text == "" {
					continue
				}
			} else if d = p.printChild(child); d == nil {
				continue
			}

			isInlineTag = false
			inlineChild = isInline(child) || inlineChild && isBlockComment(child)

			if explicitLine {
				last := len(content) - 1
				explicitLine = false
				content[last] = doc.Concat{content[last], doc.HardLine}
			}

			if !inlineChild {
				explicitLine = i < len(children)-1 && p.hasExplicitLine(child)
				if inRun {
					p.ensureVisibleSpace(run)
					closeRun()
				}
				content = append(content, d)
				continue
			}

			startRun()
			switch child.(type) {
			case *markup.Text:
				start := 0
				for j := 0; j < len(text); j++ {
					if text[j] != ' ' {
						continue
					}
					if start != j {
						run = append(run, doc.Text(text[start:j]))
					}
					if j > 0 || !endsWithLine(run) {
						run = append(run, doc.Line)
					}
					start = j + 1
				}
				if start == len(text) {
					continue
				}
				d = doc.Text(text[start:])
			case *markup.Placeholder:
				if t, ok := d.(doc.Text); ok && isVisibleSpace(string(t)) {
					if endsWithLine(run) {
						continue
					}
					d = doc.Line
				}
			case *markup.Tag:
				isInlineTag = true
				p.ensureVisibleSpaceBetweenTags(run)
				if wasInlineTag {
					run = append(run, doc.SoftLine)
				}
			}
			run = append(run, d)
		}
	}

	if len(content) == 0 {
		return nil
	}
	if inRun {
		p.ensureVisibleSpace(run)
		finishRun()
		if runIndex == 0 {
			return &body{inline: true, preserve: preserve, content: content[:1]}
		}
		if concise {
			content[runIndex] = wrapConciseText(content[runIndex])
		}
	}
	return &body{preserve: preserve, content: content}
}

// appendLines appends text, turning each newline into nl.
func appendLines(run []doc.Doc, text string, nl doc.Doc) []doc.Doc {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			run = append(run, nl)
		}
		if line != "" {
			run = append(run, doc.Text(line))
		}
	}
	return run
}

var (
	blankTextReg     = regexp.MustCompile(`^(?:\n\s*)?(?:\n\s*)?$`)
	leadingBreakReg  = regexp.MustCompile(`^\n\s*`)
	trailingBreakReg = regexp.MustCompile(`\n\s*$`)
	spaceRunReg      = regexp.MustCompile(`\s+`)
)

// trimText collapses whitespace in a text child. Line breaks at either edge
// are dropped unless an inline sibling continues the run on that side.
// Scriptlets and comments are skipped when looking for siblings.
func trimText(text string, siblings []markup.Child, i int, isInline func(markup.Child) bool) string {
	if blankTextReg.MatchString(text) {
		return ""
	}

	var prev, next markup.Child
	for j := i - 1; j >= 0; j-- {
		if !isScriptletOrComment(siblings[j]) {
			prev = siblings[j]
			break
		}
	}
	for j := i + 1; j < len(siblings); j++ {
		if !isScriptletOrComment(siblings[j]) {
			next = siblings[j]
			break
		}
	}

	if prev == nil || !isInline(prev) {
		text = leadingBreakReg.ReplaceAllString(text, "")
	}
	if next == nil || !isInline(next) {
		text = trailingBreakReg.ReplaceAllString(text, "")
	}
	return spaceRunReg.ReplaceAllString(text, " ")
}

func isScriptletOrComment(c markup.Child) bool {
	switch c.(type) {
	case *markup.Scriptlet, *markup.Comment:
		return true
	}
	return false
}

// hasExplicitLine reports a blank line after n in the source.
func (p *printer) hasExplicitLine(n markup.Node) bool {
	code := p.parsed.Code
	newlines := 0
	for i := n.Span().End; i < len(code); i++ {
		switch code[i] {
		case '\n':
			if newlines++; newlines == 2 {
				return true
			}
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return false
}

func endsWithLine(run []doc.Doc) bool {
	return len(run) > 0 && doc.IsLine(run[len(run)-1])
}

func isPlainLine(d doc.Doc) bool {
	l, ok := d.(doc.LineDoc)
	return ok && l == doc.LineDoc{}
}

// ensureVisibleSpace keeps a space at either edge of a run from being
// dropped by the surrounding layout.
func (p *printer) ensureVisibleSpace(run []doc.Doc) {
	if len(run) == 0 {
		return
	}
	if isPlainLine(run[0]) {
		run[0] = doc.Text(p.visibleSpace())
	}
	if last := len(run) - 1; isPlainLine(run[last]) {
		run[last] = doc.Text(p.visibleSpace())
	}
}

func (p *printer) ensureVisibleTrailingSpace(run []doc.Doc) {
	last := len(run) - 1
	if last < 0 {
		return
	}
	if t, ok := run[last].(doc.Text); ok && (strings.HasSuffix(string(t), " ") || strings.HasSuffix(string(t), "\t")) {
		run[last] = doc.Text(string(t[:len(t)-1]) + p.visibleSpace())
	}
}

// ensureVisibleSpaceBetweenTags keeps the space between two inline tags
// when the line breaks there.
func (p *printer) ensureVisibleSpaceBetweenTags(run []doc.Doc) {
	last := len(run) - 1
	if last <= 0 || !isPlainLine(run[last]) {
		return
	}
	if _, ok := run[last-1].(doc.Text); !ok {
		run[last] = doc.IfBreak(doc.Concat{doc.Text(p.visibleSpace()), doc.Line}, doc.Text(" "))
	}
}

// wrapConciseText delimits a text run for the concise dialect, using a dash
// run longer than any inside the text.
func wrapConciseText(d doc.Doc) doc.Doc {
	maxDashes := 0
	doc.Traverse(d, func(n doc.Doc) bool {
		t, ok := n.(doc.Text)
		if !ok {
			return true
		}
		current := 0
		for i := 0; i < len(t); i++ {
			if t[i] != '-' {
				current = 0
				continue
			}
			if current++; current > maxDashes {
				maxDashes = current
			}
		}
		return true
	})

	dashes := "--"
	if maxDashes > 1 {
		dashes = strings.Repeat("-", maxDashes+1)
	}
	return doc.Group(
		doc.IfBreak(doc.Text(dashes), doc.Text("--")),
		doc.Line,
		d,
		doc.IfBreak(doc.Concat{doc.Line, doc.Text(dashes)}, doc.Text("")),
	)
}
