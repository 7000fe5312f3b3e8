package lsp

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/grindlemire/tagfmt/pkg/config"
	"github.com/grindlemire/tagfmt/pkg/formatter"
)

// DocumentFormattingParams represents textDocument/formatting parameters.
type DocumentFormattingParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Options      FormattingOptions      `json:"options"`
}

// FormattingOptions represents formatting options.
type FormattingOptions struct {
	TabSize      int  `json:"tabSize"`
	InsertSpaces bool `json:"insertSpaces"`
}

// TextEdit represents a text edit.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// handleFormatting replaces the whole document with its formatted text.
// Documents that fail to format get no edits.
func (s *Server) handleFormatting(params json.RawMessage) (any, *Error) {
	var p DocumentFormattingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}

	doc := s.docs.Get(p.TextDocument.URI)
	if doc == nil {
		return []TextEdit{}, nil
	}

	opts, err := s.formatOptions(doc, p.Options)
	if err != nil {
		s.log.Warn("formatting options", "uri", doc.URI, "err", err)
		return []TextEdit{}, nil
	}

	res, err := formatter.New(opts).FormatContext(context.Background(), filepath.Base(uriToPath(doc.URI)), doc.Content)
	if err != nil {
		s.log.Warn("formatting", "uri", doc.URI, "err", err)
		return []TextEdit{}, nil
	}
	s.publishDiagnostics(doc, formatterDiagnostics(doc.Content, res.Diagnostics))

	if !res.Changed {
		return []TextEdit{}, nil
	}
	return []TextEdit{{Range: fullRange(doc.Content), NewText: res.Content}}, nil
}

// formatOptions layers the client's indentation settings and the nearest
// config file over the server's base options.
func (s *Server) formatOptions(doc *Document, client FormattingOptions) (formatter.Options, error) {
	opts := s.base
	if client.TabSize > 0 {
		opts.TabWidth = client.TabSize
	}
	opts.UseTabs = !client.InsertSpaces
	opts.Logger = s.log

	if s.discover {
		cfg, err := config.Discover(filepath.Dir(uriToPath(doc.URI)))
		if err != nil {
			return opts, err
		}
		if err := cfg.Apply(&opts); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// fullRange covers all of content.
func fullRange(content string) Range {
	return Range{End: OffsetToPosition(content, len(content))}
}
