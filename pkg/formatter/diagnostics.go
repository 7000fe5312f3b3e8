package formatter

import (
	"fmt"

	"github.com/grindlemire/tagfmt/pkg/markup"
)

// DiagnosticKind classifies a recoverable formatting problem.
type DiagnosticKind int

const (
	// EmbedSyntax means embedded code could not be parsed by its formatter.
	EmbedSyntax DiagnosticKind = iota
	// UnexpectedNode means a node had a shape the printer cannot lay out.
	UnexpectedNode
)

func (k DiagnosticKind) String() string {
	switch k {
	case EmbedSyntax:
		return "embed-syntax"
	case UnexpectedNode:
		return "unexpected-node"
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// Diagnostic describes a construct that was printed verbatim instead of
// being reformatted.
type Diagnostic struct {
	Kind DiagnosticKind
	Pos  markup.Position
	Node string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: unable to format %s: %v", d.Pos, d.Kind, d.Node, d.Err)
}

// diagnose records a diagnostic for n and logs it.
func (p *printer) diagnose(kind DiagnosticKind, n markup.Node, err error) {
	d := Diagnostic{
		Kind: kind,
		Pos:  p.parsed.PositionAt(n.Span().Start),
		Node: markup.KindName(n),
		Err:  err,
	}
	p.diags = append(p.diags, d)
	p.log.Warn("printing verbatim", "kind", d.Kind, "node", d.Node, "pos", d.Pos, "err", err)
}
