package doc

import (
	"strings"
)

// Traverse visits every node of d depth first, parents before children.
// Returning false from fn skips the node's children. Both branches of an
// IfBreak are visited.
func Traverse(d Doc, fn func(Doc) bool) {
	walk(d, fn, nil)
}

func walk(root Doc, enter func(Doc) bool, exit func(Doc)) {
	type frame struct {
		doc  Doc
		exit bool
	}
	stack := []frame{{doc: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.exit {
			exit(f.doc)
			continue
		}
		if f.doc == nil {
			continue
		}
		if exit != nil {
			stack = append(stack, frame{doc: f.doc, exit: true})
		}
		if !enter(f.doc) {
			continue
		}

		switch d := f.doc.(type) {
		case Concat:
			for i := len(d) - 1; i >= 0; i-- {
				stack = append(stack, frame{doc: d[i]})
			}
		case FillDoc:
			for i := len(d.Parts) - 1; i >= 0; i-- {
				stack = append(stack, frame{doc: d.Parts[i]})
			}
		case IfBreakDoc:
			stack = append(stack, frame{doc: d.Flat}, frame{doc: d.Break})
		case IndentDoc:
			stack = append(stack, frame{doc: d.Contents})
		case *GroupDoc:
			stack = append(stack, frame{doc: d.Contents})
		case LineSuffixDoc:
			stack = append(stack, frame{doc: d.Contents})
		}
	}
}

// Map rebuilds d bottom up, replacing every node with fn(node) after its
// children were mapped. Shared groups stay shared in the result.
func Map(d Doc, fn func(Doc) Doc) Doc {
	groups := make(map[*GroupDoc]*GroupDoc)
	var rec func(Doc) Doc
	rec = func(d Doc) Doc {
		switch d := d.(type) {
		case nil:
			return nil
		case Concat:
			parts := make(Concat, len(d))
			for i, part := range d {
				parts[i] = rec(part)
			}
			return fn(parts)
		case FillDoc:
			parts := make([]Doc, len(d.Parts))
			for i, part := range d.Parts {
				parts[i] = rec(part)
			}
			return fn(FillDoc{Parts: parts})
		case IfBreakDoc:
			return fn(IfBreakDoc{Break: rec(d.Break), Flat: rec(d.Flat), GroupID: d.GroupID})
		case IndentDoc:
			return fn(IndentDoc{Contents: rec(d.Contents)})
		case LineSuffixDoc:
			return fn(LineSuffixDoc{Contents: rec(d.Contents)})
		case *GroupDoc:
			if g, ok := groups[d]; ok {
				return g
			}
			mapped := fn(&GroupDoc{ID: d.ID, Contents: rec(d.Contents), ShouldBreak: d.ShouldBreak})
			if g, ok := mapped.(*GroupDoc); ok {
				groups[d] = g
			}
			return mapped
		default:
			return fn(d)
		}
	}
	return rec(d)
}

// ReplaceText rewrites text runs. Adjacent Text leaves of one Concat are
// merged before fn sees them, so a token split across leaves is still found.
// fn returns the replacement and whether it changed anything.
func ReplaceText(d Doc, fn func(string) (Doc, bool)) Doc {
	return Map(d, func(d Doc) Doc {
		switch d := d.(type) {
		case Text:
			if r, ok := fn(string(d)); ok {
				return r
			}
			return d
		case Concat:
			merged := mergeText(d)
			changed := false
			for i, part := range merged {
				t, ok := part.(Text)
				if !ok {
					continue
				}
				if r, ok := fn(string(t)); ok {
					merged[i] = r
					changed = true
				}
			}
			if !changed && len(merged) == len(d) {
				return d
			}
			return merged
		}
		return d
	})
}

// mergeText flattens nested concatenations and joins adjacent Text leaves.
func mergeText(parts Concat) Concat {
	var out Concat
	var pending strings.Builder
	hasPending := false
	flush := func() {
		if hasPending {
			out = append(out, Text(pending.String()))
			pending.Reset()
			hasPending = false
		}
	}
	var add func(Doc)
	add = func(d Doc) {
		switch d := d.(type) {
		case Text:
			pending.WriteString(string(d))
			hasPending = true
		case Concat:
			for _, part := range d {
				add(part)
			}
		default:
			flush()
			out = append(out, d)
		}
	}
	for _, part := range parts {
		add(part)
	}
	flush()
	return out
}

// PrintText renders d as if every group were flat and the width unbounded,
// keeping only the text. Lines become spaces, hard and literal lines become
// newlines. Used to inspect content, not to produce output.
func PrintText(d Doc) string {
	var sb strings.Builder
	printText(&sb, d)
	return sb.String()
}

func printText(sb *strings.Builder, d Doc) {
	switch d := d.(type) {
	case Text:
		sb.WriteString(string(d))
	case Concat:
		for _, part := range d {
			printText(sb, part)
		}
	case FillDoc:
		for _, part := range d.Parts {
			printText(sb, part)
		}
	case IndentDoc:
		printText(sb, d.Contents)
	case *GroupDoc:
		printText(sb, d.Contents)
	case LineSuffixDoc:
		printText(sb, d.Contents)
	case IfBreakDoc:
		printText(sb, d.Flat)
	case LineDoc:
		switch {
		case d.Hard || d.Literal:
			sb.WriteByte('\n')
		case !d.Soft:
			sb.WriteByte(' ')
		}
	}
}

// Probe fully renders d with opts, exactly as Print would, so the caller can
// inspect the text before committing to a layout.
func Probe(d Doc, opts Options) string {
	return Print(d, opts)
}

// WouldWrap reports whether pred holds for the trimmed rendering of d.
func WouldWrap(d Doc, opts Options, pred func(string) bool) bool {
	return pred(strings.TrimSpace(Probe(d, opts)))
}
