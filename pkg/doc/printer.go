package doc

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Unbounded is a PrintWidth that never forces a group to break.
const Unbounded = math.MaxInt

// Options controls rendering.
type Options struct {
	// PrintWidth is the target maximum line width.
	PrintWidth int
	// TabWidth is the width of one indentation unit.
	TabWidth int
	// UseTabs indents with tabs instead of TabWidth spaces.
	UseTabs bool
}

// InvariantError reports a malformed Doc. It is raised with panic: it is a
// bug in whatever built the Doc, not a property of the input being formatted.
type InvariantError struct {
	Message string
	Doc     Doc
}

func (e *InvariantError) Error() string {
	return "doc: invariant violated: " + e.Message
}

func invariant(d Doc, format string, args ...any) {
	panic(&InvariantError{Message: fmt.Sprintf(format, args...), Doc: d})
}

type mode int

const (
	modeBreak mode = iota
	modeFlat
)

type indentation struct {
	value  string
	length int
}

type command struct {
	ind  indentation
	mode mode
	doc  Doc
}

// renderer holds the state of one Print call. Nothing survives the call.
type renderer struct {
	opts      Options
	unit      string
	unitWidth int

	breaks    map[*GroupDoc]bool
	groupMode map[GroupID]mode
}

// Print renders d within opts.PrintWidth. Width is a target: content that
// cannot fit is printed anyway.
func Print(d Doc, opts Options) string {
	if opts.TabWidth <= 0 {
		opts.TabWidth = 2
	}
	if opts.PrintWidth <= 0 {
		opts.PrintWidth = 80
	}
	r := &renderer{
		opts:      opts,
		breaks:    propagateBreaks(d),
		groupMode: make(map[GroupID]mode),
	}
	if opts.UseTabs {
		r.unit, r.unitWidth = "\t", opts.TabWidth
	} else {
		r.unit, r.unitWidth = strings.Repeat(" ", opts.TabWidth), opts.TabWidth
	}
	return r.print(d)
}

func (r *renderer) makeIndent(ind indentation) indentation {
	return indentation{value: ind.value + r.unit, length: ind.length + r.unitWidth}
}

func (r *renderer) broken(g *GroupDoc) bool {
	return g.ShouldBreak || r.breaks[g]
}

func (r *renderer) print(root Doc) string {
	var (
		out             []string
		pos             int
		shouldRemeasure bool
		lineSuffixes    []command
	)
	cmds := []command{{mode: modeBreak, doc: root}}

	for len(cmds) > 0 {
		cmd := cmds[len(cmds)-1]
		cmds = cmds[:len(cmds)-1]

		switch d := cmd.doc.(type) {
		case nil:
		case Text:
			if strings.ContainsRune(string(d), '\n') {
				invariant(d, "text %q contains a raw newline", string(d))
			}
			if d != "" {
				out = append(out, string(d))
				pos += textWidth(string(d))
			}
		case Concat:
			for i := len(d) - 1; i >= 0; i-- {
				cmds = append(cmds, command{ind: cmd.ind, mode: cmd.mode, doc: d[i]})
			}
		case IndentDoc:
			cmds = append(cmds, command{ind: r.makeIndent(cmd.ind), mode: cmd.mode, doc: d.Contents})
		case TrimDoc:
			pos -= trim(&out)
		case *GroupDoc:
			if d == nil {
				invariant(d, "nil group")
			}
			switch {
			case cmd.mode == modeFlat && !shouldRemeasure:
				m := modeFlat
				if r.broken(d) {
					m = modeBreak
				}
				cmds = append(cmds, command{ind: cmd.ind, mode: m, doc: d.Contents})
			default:
				shouldRemeasure = false
				next := command{ind: cmd.ind, mode: modeFlat, doc: d.Contents}
				if !r.broken(d) && r.fits(next, cmds, r.opts.PrintWidth-pos, len(lineSuffixes) > 0, false) {
					cmds = append(cmds, next)
				} else {
					cmds = append(cmds, command{ind: cmd.ind, mode: modeBreak, doc: d.Contents})
				}
			}
			if d.ID != 0 {
				r.groupMode[d.ID] = cmds[len(cmds)-1].mode
			}
		case FillDoc:
			cmds = r.pushFill(cmds, cmd, d, r.opts.PrintWidth-pos, len(lineSuffixes) > 0)
		case IfBreakDoc:
			m := cmd.mode
			if d.GroupID != 0 {
				m = r.lookupGroupMode(d.GroupID)
			}
			contents := d.Flat
			if m == modeBreak {
				contents = d.Break
			}
			if contents != nil {
				cmds = append(cmds, command{ind: cmd.ind, mode: cmd.mode, doc: contents})
			}
		case LineSuffixDoc:
			lineSuffixes = append(lineSuffixes, command{ind: cmd.ind, mode: cmd.mode, doc: d.Contents})
		case LineSuffixBoundaryDoc:
			if len(lineSuffixes) > 0 {
				cmds = append(cmds, command{ind: cmd.ind, mode: cmd.mode, doc: hardlineWithoutBreakParent})
			}
		case LineDoc:
			if cmd.mode == modeFlat && !d.Hard {
				if !d.Soft {
					out = append(out, " ")
					pos++
				}
				break
			}
			if cmd.mode == modeFlat {
				// A hard line inside a flat group: the groups that follow
				// must be measured again from the new line.
				shouldRemeasure = true
			}
			if len(lineSuffixes) > 0 {
				cmds = append(cmds, command{ind: cmd.ind, mode: cmd.mode, doc: d})
				for i := len(lineSuffixes) - 1; i >= 0; i-- {
					cmds = append(cmds, lineSuffixes[i])
				}
				lineSuffixes = nil
				break
			}
			if d.Literal {
				out = append(out, "\n")
				pos = 0
			} else {
				pos -= trim(&out)
				out = append(out, "\n"+cmd.ind.value)
				pos = cmd.ind.length
			}
		case BreakParentDoc:
		default:
			invariant(d, "unknown doc variant %T", d)
		}

		if len(cmds) == 0 && len(lineSuffixes) > 0 {
			for i := len(lineSuffixes) - 1; i >= 0; i-- {
				cmds = append(cmds, lineSuffixes[i])
			}
			lineSuffixes = nil
		}
	}

	return strings.Join(out, "")
}

func (r *renderer) lookupGroupMode(id GroupID) mode {
	if m, ok := r.groupMode[id]; ok {
		return m
	}
	return modeFlat
}

// pushFill handles the first content/separator pair of a fill and queues the
// rest. Each separator breaks only if the content after it would not fit.
func (r *renderer) pushFill(cmds []command, cmd command, d FillDoc, rem int, hasLineSuffix bool) []command {
	parts := d.Parts
	if len(parts) == 0 {
		return cmds
	}

	content := parts[0]
	contentFlat := command{ind: cmd.ind, mode: modeFlat, doc: content}
	contentBreak := command{ind: cmd.ind, mode: modeBreak, doc: content}
	contentFits := r.fits(contentFlat, nil, rem, hasLineSuffix, true)

	if len(parts) == 1 {
		if contentFits {
			return append(cmds, contentFlat)
		}
		return append(cmds, contentBreak)
	}

	whitespace := parts[1]
	whitespaceFlat := command{ind: cmd.ind, mode: modeFlat, doc: whitespace}
	whitespaceBreak := command{ind: cmd.ind, mode: modeBreak, doc: whitespace}

	if len(parts) == 2 {
		if contentFits {
			return append(cmds, whitespaceFlat, contentFlat)
		}
		return append(cmds, whitespaceBreak, contentBreak)
	}

	remaining := command{ind: cmd.ind, mode: cmd.mode, doc: FillDoc{Parts: parts[2:]}}
	pair := command{ind: cmd.ind, mode: modeFlat, doc: Concat{content, whitespace, parts[2]}}
	pairFits := r.fits(pair, nil, rem, hasLineSuffix, true)

	switch {
	case pairFits:
		return append(cmds, remaining, whitespaceFlat, contentFlat)
	case contentFits:
		return append(cmds, remaining, whitespaceBreak, contentFlat)
	default:
		return append(cmds, remaining, whitespaceBreak, contentBreak)
	}
}

type fitCommand struct {
	mode mode
	doc  Doc
}

// fits reports whether next, followed by the rest of the current line taken
// from rest, fits in width columns. Commands from rest keep their own mode,
// so the first line break in a broken parent ends the measurement.
func (r *renderer) fits(next command, rest []command, width int, hasLineSuffix, mustBeFlat bool) bool {
	if r.opts.PrintWidth == Unbounded {
		return true
	}
	restIdx := len(rest)
	cmds := []fitCommand{{mode: next.mode, doc: next.doc}}
	var out []string

	for width >= 0 {
		if len(cmds) == 0 {
			if restIdx == 0 {
				return true
			}
			restIdx--
			cmds = append(cmds, fitCommand{mode: rest[restIdx].mode, doc: rest[restIdx].doc})
			continue
		}
		c := cmds[len(cmds)-1]
		cmds = cmds[:len(cmds)-1]

		switch d := c.doc.(type) {
		case nil:
		case Text:
			out = append(out, string(d))
			width -= textWidth(string(d))
		case Concat:
			for i := len(d) - 1; i >= 0; i-- {
				cmds = append(cmds, fitCommand{mode: c.mode, doc: d[i]})
			}
		case FillDoc:
			for i := len(d.Parts) - 1; i >= 0; i-- {
				cmds = append(cmds, fitCommand{mode: c.mode, doc: d.Parts[i]})
			}
		case IndentDoc:
			cmds = append(cmds, fitCommand{mode: c.mode, doc: d.Contents})
		case TrimDoc:
			width += trim(&out)
		case *GroupDoc:
			if mustBeFlat && r.broken(d) {
				return false
			}
			m := c.mode
			if r.broken(d) {
				m = modeBreak
			}
			cmds = append(cmds, fitCommand{mode: m, doc: d.Contents})
		case IfBreakDoc:
			m := c.mode
			if d.GroupID != 0 {
				m = r.lookupGroupMode(d.GroupID)
			}
			contents := d.Flat
			if m == modeBreak {
				contents = d.Break
			}
			if contents != nil {
				cmds = append(cmds, fitCommand{mode: c.mode, doc: contents})
			}
		case LineDoc:
			if c.mode == modeBreak || d.Hard {
				return true
			}
			if !d.Soft {
				out = append(out, " ")
				width--
			}
		case LineSuffixDoc:
			hasLineSuffix = true
		case LineSuffixBoundaryDoc:
			if hasLineSuffix {
				return true
			}
		case BreakParentDoc:
		default:
			invariant(d, "unknown doc variant %T", d)
		}
	}
	return false
}

// trim drops trailing spaces and tabs from out and returns how many columns
// were removed.
func trim(out *[]string) int {
	count := 0
	for len(*out) > 0 {
		last := (*out)[len(*out)-1]
		trimmed := strings.TrimRight(last, " \t")
		count += len(last) - len(trimmed)
		if trimmed != "" {
			(*out)[len(*out)-1] = trimmed
			break
		}
		*out = (*out)[:len(*out)-1]
	}
	return count
}

func textWidth(s string) int {
	return runewidth.StringWidth(s)
}

// propagateBreaks marks every group that contains a hard break or a broken
// descendant group. Groups reachable through several paths are visited once.
func propagateBreaks(root Doc) map[*GroupDoc]bool {
	breaks := make(map[*GroupDoc]bool)
	visited := make(map[*GroupDoc]bool)
	var groups []*GroupDoc

	breakParent := func() {
		if len(groups) > 0 {
			breaks[groups[len(groups)-1]] = true
		}
	}

	walk(root, func(d Doc) bool {
		g, ok := d.(*GroupDoc)
		if !ok {
			return true
		}
		groups = append(groups, g)
		if visited[g] {
			return false
		}
		visited[g] = true
		return true
	}, func(d Doc) {
		switch d := d.(type) {
		case BreakParentDoc:
			breakParent()
		case *GroupDoc:
			groups = groups[:len(groups)-1]
			if d.ShouldBreak || breaks[d] {
				breakParent()
			}
		}
	})
	return breaks
}
