package lsp

import (
	"github.com/grindlemire/tagfmt/pkg/formatter"
)

// DiagnosticSeverity represents the severity of a diagnostic.
type DiagnosticSeverity int

const (
	// DiagnosticSeverityError reports an error.
	DiagnosticSeverityError DiagnosticSeverity = 1
	// DiagnosticSeverityWarning reports a warning.
	DiagnosticSeverityWarning DiagnosticSeverity = 2
)

// Diagnostic represents a diagnostic, such as a compiler error or warning.
type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     string             `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

// PublishDiagnosticsParams represents the parameters for publishDiagnostics.
type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     *int         `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

const diagnosticSource = "tagfmt"

// highlightLength is how many columns a diagnostic covers; positions carry
// no end.
const highlightLength = 1

// publishDiagnostics sends the parse errors of doc followed by extra.
func (s *Server) publishDiagnostics(doc *Document, extra []Diagnostic) {
	if doc == nil {
		return
	}

	diagnostics := make([]Diagnostic, 0, len(doc.Errors)+len(extra))
	for _, err := range doc.Errors {
		msg := err.Message
		if err.Hint != "" {
			msg += " (" + err.Hint + ")"
		}
		diagnostics = append(diagnostics, Diagnostic{
			Range:    markupPosToRange(doc.Content, err.Pos, highlightLength),
			Severity: DiagnosticSeverityError,
			Code:     err.Kind.String(),
			Source:   diagnosticSource,
			Message:  msg,
		})
	}
	diagnostics = append(diagnostics, extra...)

	version := doc.Version
	params := PublishDiagnosticsParams{URI: doc.URI, Version: &version, Diagnostics: diagnostics}
	if err := s.sendNotification("textDocument/publishDiagnostics", params); err != nil {
		s.log.Error("publishing diagnostics", "err", err)
	}
}

// formatterDiagnostics converts the constructs printed verbatim into warnings.
func formatterDiagnostics(content string, diags []formatter.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, len(diags))
	for i, d := range diags {
		out[i] = Diagnostic{
			Range:    markupPosToRange(content, d.Pos, highlightLength),
			Severity: DiagnosticSeverityWarning,
			Code:     d.Kind.String(),
			Source:   diagnosticSource,
			Message:  "unable to format " + d.Node + ": " + d.Err.Error(),
		}
	}
	return out
}
