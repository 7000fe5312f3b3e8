package doc

import (
	"strings"
)

// Doc is a node of the layout IR. The set of variants is closed; every
// implementation lives in this package.
type Doc interface {
	doc()
}

// Text is a literal run. It must not contain a raw newline.
type Text string

// Concat renders its parts in order.
type Concat []Doc

// LineDoc is a possible line break. A plain line prints a space when flat,
// a soft line prints nothing when flat. Hard lines always break; literal
// lines always break and ignore indentation.
type LineDoc struct {
	Hard    bool
	Soft    bool
	Literal bool
}

// IndentDoc increases the indentation of line breaks inside it by one unit.
type IndentDoc struct {
	Contents Doc
}

// GroupDoc is a unit of flat/break choice.
type GroupDoc struct {
	ID          GroupID
	Contents    Doc
	ShouldBreak bool
}

// IfBreakDoc prints Break when the referenced group is broken and Flat
// otherwise. A zero GroupID refers to the enclosing group.
type IfBreakDoc struct {
	Break   Doc
	Flat    Doc
	GroupID GroupID
}

// FillDoc holds alternating content and separator parts.
type FillDoc struct {
	Parts []Doc
}

// LineSuffixDoc defers its contents to the end of the current line.
type LineSuffixDoc struct {
	Contents Doc
}

// LineSuffixBoundaryDoc flushes pending line suffixes with a hard break.
type LineSuffixBoundaryDoc struct{}

// TrimDoc removes trailing whitespace already written on the current line.
type TrimDoc struct{}

// BreakParentDoc forces every enclosing group to break.
type BreakParentDoc struct{}

func (Text) doc()                  {}
func (Concat) doc()                {}
func (LineDoc) doc()               {}
func (IndentDoc) doc()             {}
func (*GroupDoc) doc()             {}
func (IfBreakDoc) doc()            {}
func (FillDoc) doc()               {}
func (LineSuffixDoc) doc()         {}
func (LineSuffixBoundaryDoc) doc() {}
func (TrimDoc) doc()               {}
func (BreakParentDoc) doc()        {}

var (
	// Line prints a space when flat and a newline when broken.
	Line Doc = LineDoc{}
	// SoftLine prints nothing when flat and a newline when broken.
	SoftLine Doc = LineDoc{Soft: true}
	// HardLine always breaks and forces the enclosing group to break.
	HardLine Doc = Concat{hardlineWithoutBreakParent, BreakParentDoc{}}
	// LiteralLine always breaks without indenting the next line.
	LiteralLine Doc = Concat{literallineWithoutBreakParent, BreakParentDoc{}}

	BreakParent        Doc = BreakParentDoc{}
	Trim               Doc = TrimDoc{}
	LineSuffixBoundary Doc = LineSuffixBoundaryDoc{}

	hardlineWithoutBreakParent    = LineDoc{Hard: true}
	literallineWithoutBreakParent = LineDoc{Hard: true, Literal: true}
)

// Indent increases indentation for the concatenation of parts.
func Indent(parts ...Doc) Doc {
	return IndentDoc{Contents: concat(parts)}
}

// Group creates a group around the concatenation of parts.
func Group(parts ...Doc) *GroupDoc {
	return &GroupDoc{Contents: concat(parts)}
}

// GroupWithID creates a group whose decision can be referenced by IfBreakFor.
func GroupWithID(id GroupID, parts ...Doc) *GroupDoc {
	return &GroupDoc{ID: id, Contents: concat(parts)}
}

// BrokenGroup creates a group that always prints broken.
func BrokenGroup(parts ...Doc) *GroupDoc {
	return &GroupDoc{Contents: concat(parts), ShouldBreak: true}
}

// IfBreak picks between two docs based on the enclosing group.
func IfBreak(breakContents, flatContents Doc) Doc {
	return IfBreakDoc{Break: breakContents, Flat: flatContents}
}

// IfBreakFor picks between two docs based on the group with the given id.
func IfBreakFor(id GroupID, breakContents, flatContents Doc) Doc {
	return IfBreakDoc{Break: breakContents, Flat: flatContents, GroupID: id}
}

// Fill creates a fill from alternating content and separator parts.
func Fill(parts ...Doc) Doc {
	return FillDoc{Parts: parts}
}

// LineSuffix defers parts to the end of the line.
func LineSuffix(parts ...Doc) Doc {
	return LineSuffixDoc{Contents: concat(parts)}
}

// Join interleaves sep between docs.
func Join(sep Doc, docs []Doc) Doc {
	out := make(Concat, 0, len(docs)*2)
	for i, d := range docs {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, d)
	}
	return out
}

// Literal converts text that may contain newlines into Text runs separated
// by literal lines, so it prints exactly as given.
func Literal(s string) Doc {
	if !strings.Contains(s, "\n") {
		return Text(s)
	}
	lines := strings.Split(s, "\n")
	out := make(Concat, 0, len(lines)*2)
	for i, line := range lines {
		if i > 0 {
			out = append(out, LiteralLine)
		}
		if line != "" {
			out = append(out, Text(line))
		}
	}
	return out
}

// IsLine reports whether d is one of the line variants, including the
// HardLine and LiteralLine concatenations.
func IsLine(d Doc) bool {
	switch d := d.(type) {
	case LineDoc:
		return true
	case Concat:
		if len(d) != 2 {
			return false
		}
		_, isLine := d[0].(LineDoc)
		_, isBreak := d[1].(BreakParentDoc)
		return isLine && isBreak
	}
	return false
}

// IsEmpty reports whether d prints nothing.
func IsEmpty(d Doc) bool {
	switch d := d.(type) {
	case nil:
		return true
	case Text:
		return d == ""
	case Concat:
		for _, part := range d {
			if !IsEmpty(part) {
				return false
			}
		}
		return true
	}
	return false
}

func concat(parts []Doc) Doc {
	if len(parts) == 1 {
		return parts[0]
	}
	return Concat(parts)
}

// GroupID names a group so an IfBreak elsewhere can follow its decision.
// The zero value means "no id".
type GroupID int

// IDs mints group ids for one print pass. Ids from different allocators
// must not be mixed in one Doc.
type IDs struct {
	next GroupID
}

// New returns a fresh id, unique within this allocator.
func (a *IDs) New() GroupID {
	a.next++
	return a.next
}
