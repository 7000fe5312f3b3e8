package markup

import (
	"fmt"
	"sort"
)

// Position is a human readable source location.
type Position struct {
	File   string
	Line   int
	Column int
}

// String returns a formatted position string.
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Range is a half-open byte range [Start, End) into the source.
type Range struct {
	Start int
	End   int
}

// Span returns the range itself. Embedding Range gives every node its span.
func (r Range) Span() Range { return r }

// Len returns the number of bytes covered.
func (r Range) Len() int { return r.End - r.Start }

// Parsed is the result of parsing one template.
type Parsed struct {
	Filename string
	Code     string
	// Lines holds the byte offset at which each line starts.
	Lines   []int
	Program *Program
}

func newParsed(filename, code string) *Parsed {
	lines := []int{0}
	for i := 0; i < len(code); i++ {
		if code[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &Parsed{Filename: filename, Code: code, Lines: lines}
}

// Read returns the source text covered by r.
func (p *Parsed) Read(r Range) string {
	return p.Code[r.Start:r.End]
}

// PositionAt maps a byte offset to a 1-based line and column.
func (p *Parsed) PositionAt(offset int) Position {
	line := sort.Search(len(p.Lines), func(i int) bool { return p.Lines[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{File: p.Filename, Line: line + 1, Column: offset - p.Lines[line] + 1}
}

// IsBlank reports whether r is empty or only whitespace.
func (p *Parsed) IsBlank(r *Range) bool {
	if r == nil {
		return true
	}
	for i := r.Start; i < r.End; i++ {
		if !isSpace(p.Code[i]) {
			return false
		}
	}
	return true
}
