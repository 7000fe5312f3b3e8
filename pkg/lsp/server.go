// Package lsp provides a Language Server Protocol server for .marko files.
// It publishes parse errors as diagnostics and answers document formatting
// requests with the template formatter.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/grindlemire/tagfmt/pkg/formatter"
)

// Server represents the template LSP server.
type Server struct {
	// Input/output for JSON-RPC communication
	reader *bufio.Reader
	writer io.Writer
	mu     sync.Mutex // protects writer

	docs *DocumentManager
	log  *log.Logger

	// base holds the options every formatting request starts from.
	base formatter.Options
	// discover enables .tagfmt.toml lookup next to each document.
	discover bool

	initialized bool
	shutdown    bool
	rootURI     string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for protocol traffic and errors.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithOptions sets the formatter options requests start from.
func WithOptions(opts formatter.Options) Option {
	return func(s *Server) { s.base = opts }
}

// WithConfigDiscovery makes formatting read the nearest config file above
// each document.
func WithConfigDiscovery() Option {
	return func(s *Server) { s.discover = true }
}

// NewServer creates a new LSP server that communicates over the given reader/writer.
func NewServer(reader io.Reader, writer io.Writer, opts ...Option) *Server {
	s := &Server{
		reader: bufio.NewReader(reader),
		writer: writer,
		docs:   NewDocumentManager(),
		log:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the LSP server main loop. It returns nil when the client
// closes the connection or after a shutdown request.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("LSP server starting")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Info("connection closed")
				return nil
			}
			return fmt.Errorf("reading message: %w", err)
		}

		s.log.Debug("received", "msg", string(msg))

		response, err := s.handleMessage(msg)
		if err != nil {
			s.log.Error("handling message", "err", err)
			continue
		}

		if response != nil {
			if err := s.writeMessage(response); err != nil {
				return fmt.Errorf("writing response: %w", err)
			}
		}

		if s.shutdown {
			s.log.Info("server shutdown requested")
			return nil
		}
	}
}

// readMessage reads a JSON-RPC message from the input.
// Messages are formatted as HTTP-like headers followed by content:
// Content-Length: <length>\r\n
// \r\n
// <content>
func (s *Server) readMessage() ([]byte, error) {
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if lenStr, ok := strings.CutPrefix(line, "Content-Length:"); ok {
			contentLength, err = strconv.Atoi(strings.TrimSpace(lenStr))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	content := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, content); err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	return content, nil
}

// writeMessage writes a JSON-RPC message to the output.
func (s *Server) writeMessage(msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(msg))
	if _, err := io.WriteString(s.writer, header); err != nil {
		return err
	}
	if _, err := s.writer.Write(msg); err != nil {
		return err
	}

	s.log.Debug("sent", "msg", string(msg))
	return nil
}

// sendNotification sends a notification (no response expected).
func (s *Server) sendNotification(method string, params any) error {
	data, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return err
	}
	return s.writeMessage(data)
}

// Request represents a JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"` // can be number or string
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Result  any    `json:"result"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents a JSON-RPC error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON-RPC error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// handleMessage processes a single JSON-RPC message.
func (s *Server) handleMessage(msg []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return s.errorResponse(nil, CodeParseError, "Parse error")
	}

	s.log.Debug("handling", "method", req.Method)
	result, rpcErr := s.route(req)

	// Notifications don't get responses
	if req.ID == nil {
		return nil, nil
	}
	if rpcErr != nil {
		return s.errorResponse(req.ID, rpcErr.Code, rpcErr.Message)
	}
	return json.Marshal(Response{JSONRPC: "2.0", ID: req.ID, Result: result})
}

// route dispatches a request to its handler.
func (s *Server) route(req Request) (any, *Error) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.Params)
	case "initialized":
		return s.handleInitialized()
	case "shutdown":
		return s.handleShutdown()
	case "exit":
		return nil, nil

	case "textDocument/didOpen":
		return s.handleDidOpen(req.Params)
	case "textDocument/didChange":
		return s.handleDidChange(req.Params)
	case "textDocument/didClose":
		return s.handleDidClose(req.Params)
	case "textDocument/didSave":
		return nil, nil

	case "textDocument/formatting":
		return s.handleFormatting(req.Params)
	}

	s.log.Debug("unknown method", "method", req.Method)
	return nil, &Error{Code: CodeMethodNotFound, Message: "Method not found: " + req.Method}
}

// errorResponse creates an error response.
func (s *Server) errorResponse(id any, code int, message string) ([]byte, error) {
	return json.Marshal(Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	})
}
