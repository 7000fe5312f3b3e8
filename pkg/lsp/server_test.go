package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindlemire/tagfmt/pkg/formatter"
	"github.com/grindlemire/tagfmt/pkg/markup"
)

// mockReadWriter provides a mock for testing LSP communication.
type mockReadWriter struct {
	input  *bytes.Buffer
	output *bytes.Buffer
}

func newMockReadWriter() *mockReadWriter {
	return &mockReadWriter{
		input:  new(bytes.Buffer),
		output: new(bytes.Buffer),
	}
}

// message is either a response or a server notification.
type message struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// writeRequest writes a JSON-RPC request to the mock input. A nil id makes
// it a notification.
func (m *mockReadWriter) writeRequest(t *testing.T, id any, method string, params any) {
	t.Helper()
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
	}
	if id != nil {
		req["id"] = id
	}
	if params != nil {
		req["params"] = params
	}

	content, err := json.Marshal(req)
	require.NoError(t, err)
	fmt.Fprintf(m.input, "Content-Length: %d\r\n\r\n", len(content))
	m.input.Write(content)
}

// readMessages drains every framed message from the mock output.
func (m *mockReadWriter) readMessages(t *testing.T) []message {
	t.Helper()
	var msgs []message
	for {
		var contentLength int
		for {
			line, err := m.output.ReadString('\n')
			if err == io.EOF {
				return msgs
			}
			require.NoError(t, err)
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			if lenStr, ok := strings.CutPrefix(line, "Content-Length:"); ok {
				_, err := fmt.Sscanf(strings.TrimSpace(lenStr), "%d", &contentLength)
				require.NoError(t, err)
			}
		}

		content := make([]byte, contentLength)
		_, err := io.ReadFull(m.output, content)
		require.NoError(t, err)

		var msg message
		require.NoError(t, json.Unmarshal(content, &msg))
		msgs = append(msgs, msg)
	}
}

// run feeds the queued requests followed by shutdown to a fresh server and
// returns everything it wrote.
func (m *mockReadWriter) run(t *testing.T, opts ...Option) []message {
	t.Helper()
	m.writeRequest(t, 999, "shutdown", nil)
	server := NewServer(m.input, m.output, opts...)
	require.NoError(t, server.Run(context.Background()))
	return m.readMessages(t)
}

func responseFor(t *testing.T, msgs []message, id float64) message {
	t.Helper()
	for _, msg := range msgs {
		if msg.ID == id {
			return msg
		}
	}
	t.Fatalf("no response with id %v", id)
	return message{}
}

func diagnosticsIn(t *testing.T, msgs []message) []PublishDiagnosticsParams {
	t.Helper()
	var out []PublishDiagnosticsParams
	for _, msg := range msgs {
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var p PublishDiagnosticsParams
		require.NoError(t, json.Unmarshal(msg.Params, &p))
		out = append(out, p)
	}
	return out
}

func openParams(uri, text string) DidOpenParams {
	return DidOpenParams{TextDocument: TextDocumentItem{
		URI:        uri,
		LanguageID: "marko",
		Version:    1,
		Text:       text,
	}}
}

func TestServerInitialize(t *testing.T) {
	mock := newMockReadWriter()
	mock.writeRequest(t, 1, "initialize", InitializeParams{RootURI: "file:///test"})
	mock.writeRequest(t, nil, "initialized", map[string]any{})

	msgs := mock.run(t)

	resp := responseFor(t, msgs, 1)
	require.Nil(t, resp.Error)

	var result InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.True(t, result.Capabilities.DocumentFormattingProvider)
	require.NotNil(t, result.Capabilities.TextDocumentSync)
	assert.True(t, result.Capabilities.TextDocumentSync.OpenClose)
	assert.Equal(t, TextDocumentSyncKindFull, result.Capabilities.TextDocumentSync.Change)

	shutdown := responseFor(t, msgs, 999)
	assert.Nil(t, shutdown.Error)
}

func TestServerDiagnostics(t *testing.T) {
	type tc struct {
		text      string
		wantCount int
		wantMsg   string
		wantCode  string
	}

	tests := map[string]tc{
		"valid template": {
			text:      "<div>\n  <p>Hello</p>\n</div>\n",
			wantCount: 0,
		},
		"unclosed tag": {
			text:      "<div>\n",
			wantCount: 1,
			wantMsg:   "missing closing tag for <div>",
			wantCode:  "closing-tag",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mock := newMockReadWriter()
			mock.writeRequest(t, nil, "textDocument/didOpen", openParams("file:///test.marko", tt.text))

			diags := diagnosticsIn(t, mock.run(t))
			require.Len(t, diags, 1)
			assert.Equal(t, "file:///test.marko", diags[0].URI)
			require.Len(t, diags[0].Diagnostics, tt.wantCount)
			if tt.wantMsg != "" {
				d := diags[0].Diagnostics[0]
				assert.Contains(t, d.Message, tt.wantMsg)
				assert.Equal(t, DiagnosticSeverityError, d.Severity)
				assert.Equal(t, "tagfmt", d.Source)
				assert.Equal(t, tt.wantCode, d.Code)
			}
		})
	}
}

func TestServerDidChangeAndClose(t *testing.T) {
	mock := newMockReadWriter()
	mock.writeRequest(t, nil, "textDocument/didOpen", openParams("file:///test.marko", "<div>\n"))
	mock.writeRequest(t, nil, "textDocument/didChange", DidChangeParams{
		TextDocument: VersionedTextDocumentIdentifier{URI: "file:///test.marko", Version: 2},
		ContentChanges: []TextDocumentContentChangeEvent{
			{Text: "<span>\n"},
			{Text: "<div/>\n"},
		},
	})
	mock.writeRequest(t, nil, "textDocument/didClose", DidCloseParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///test.marko"},
	})

	diags := diagnosticsIn(t, mock.run(t))
	require.Len(t, diags, 3)
	assert.NotEmpty(t, diags[0].Diagnostics)
	assert.Empty(t, diags[1].Diagnostics)
	require.NotNil(t, diags[1].Version)
	assert.Equal(t, 2, *diags[1].Version)
	assert.Empty(t, diags[2].Diagnostics)
}

func TestServerFormatting(t *testing.T) {
	type tc struct {
		text      string
		options   FormattingOptions
		wantEdits []TextEdit
	}

	tests := map[string]tc{
		"reformats document": {
			text:    "<div>\n<p>Hello</p>\n</div>\n",
			options: FormattingOptions{TabSize: 2, InsertSpaces: true},
			wantEdits: []TextEdit{{
				Range:   Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 3, Character: 0}},
				NewText: "<div>\n  <p>Hello</p>\n</div>\n",
			}},
		},
		"uses client indentation": {
			text:    "<div>\n<p>Hello</p>\n</div>\n",
			options: FormattingOptions{TabSize: 4, InsertSpaces: false},
			wantEdits: []TextEdit{{
				Range:   Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 3, Character: 0}},
				NewText: "<div>\n\t<p>Hello</p>\n</div>\n",
			}},
		},
		"already formatted": {
			text:      "<div>\n  <p>Hello</p>\n</div>\n",
			options:   FormattingOptions{TabSize: 2, InsertSpaces: true},
			wantEdits: []TextEdit{},
		},
		"parse error": {
			text:      "<div>\n",
			options:   FormattingOptions{TabSize: 2, InsertSpaces: true},
			wantEdits: []TextEdit{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mock := newMockReadWriter()
			mock.writeRequest(t, nil, "textDocument/didOpen", openParams("file:///test.marko", tt.text))
			mock.writeRequest(t, 2, "textDocument/formatting", DocumentFormattingParams{
				TextDocument: TextDocumentIdentifier{URI: "file:///test.marko"},
				Options:      tt.options,
			})

			resp := responseFor(t, mock.run(t, WithOptions(formatter.Options{PrintWidth: 80})), 2)
			require.Nil(t, resp.Error)

			var edits []TextEdit
			require.NoError(t, json.Unmarshal(resp.Result, &edits))
			assert.Equal(t, tt.wantEdits, edits)
		})
	}
}

func TestServerFormatting_UnknownDocument(t *testing.T) {
	mock := newMockReadWriter()
	mock.writeRequest(t, 1, "textDocument/formatting", DocumentFormattingParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///missing.marko"},
	})

	resp := responseFor(t, mock.run(t), 1)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, "[]", string(resp.Result))
}

func TestServerErrors(t *testing.T) {
	type tc struct {
		method   string
		params   any
		wantCode int
	}

	tests := map[string]tc{
		"unknown method": {
			method:   "textDocument/hover",
			params:   map[string]any{},
			wantCode: CodeMethodNotFound,
		},
		"invalid params": {
			method:   "textDocument/formatting",
			params:   []int{1},
			wantCode: CodeInvalidParams,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mock := newMockReadWriter()
			mock.writeRequest(t, 1, tt.method, tt.params)

			resp := responseFor(t, mock.run(t), 1)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestOffsetToPosition(t *testing.T) {
	type tc struct {
		content string
		offset  int
		want    Position
	}

	tests := map[string]tc{
		"start":           {content: "ab\ncd", offset: 0, want: Position{Line: 0, Character: 0}},
		"same line":       {content: "ab\ncd", offset: 1, want: Position{Line: 0, Character: 1}},
		"next line":       {content: "ab\ncd", offset: 4, want: Position{Line: 1, Character: 1}},
		"past the end":    {content: "ab", offset: 10, want: Position{Line: 0, Character: 2}},
		"after a newline": {content: "ab\n", offset: 3, want: Position{Line: 1, Character: 0}},
		"two byte rune":   {content: "é=1", offset: 3, want: Position{Line: 0, Character: 2}},
		"three byte rune": {content: "€x", offset: 4, want: Position{Line: 0, Character: 2}},
		"surrogate pair":  {content: "a😀b", offset: 5, want: Position{Line: 0, Character: 3}},
		"negative offset": {content: "ab", offset: -1, want: Position{Line: 0, Character: 0}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, OffsetToPosition(tt.content, tt.offset))
		})
	}
}

func TestFullRange(t *testing.T) {
	type tc struct {
		content string
		want    Position
	}

	tests := map[string]tc{
		"empty":               {content: "", want: Position{}},
		"trailing newline":    {content: "<div/>\n", want: Position{Line: 1, Character: 0}},
		"ascii last line":     {content: "a\nbc", want: Position{Line: 1, Character: 2}},
		"non-ascii last line": {content: "a\n<p>é😀</p>", want: Position{Line: 1, Character: 10}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, Range{End: tt.want}, fullRange(tt.content))
		})
	}
}

func TestMarkupPosToRange(t *testing.T) {
	content := "<p>é</p>\n<😀>x</div>\n"

	got := markupPosToRange(content, markup.Position{Line: 1, Column: 6}, 1)
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 4}, End: Position{Line: 0, Character: 5}}, got)

	got = markupPosToRange(content, markup.Position{Line: 2, Column: 8}, 1)
	assert.Equal(t, Range{Start: Position{Line: 1, Character: 5}, End: Position{Line: 1, Character: 6}}, got)
}
