package lsp

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/grindlemire/tagfmt/pkg/markup"
)

// Document represents an open .marko file with its parsed state.
type Document struct {
	URI     string
	Content string
	Version int
	Parsed  *markup.Parsed
	Errors  []*markup.Error
}

// DocumentManager tracks all open documents.
type DocumentManager struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentManager creates a new document manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{docs: make(map[string]*Document)}
}

// Open opens a new document and parses it.
func (dm *DocumentManager) Open(uri, content string, version int) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc := &Document{URI: uri, Content: content, Version: version}
	parseDocument(doc)
	dm.docs[uri] = doc
	return doc
}

// Update replaces the content of a document, opening it if needed.
func (dm *DocumentManager) Update(uri, content string, version int) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		dm.docs[uri] = doc
	}
	doc.Content = content
	doc.Version = version
	parseDocument(doc)
	return doc
}

// Close closes a document.
func (dm *DocumentManager) Close(uri string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	delete(dm.docs, uri)
}

// Get retrieves a document by URI.
func (dm *DocumentManager) Get(uri string) *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.docs[uri]
}

func parseDocument(doc *Document) {
	parsed, err := markup.Parse(uriToPath(doc.URI), doc.Content)
	doc.Parsed = parsed
	doc.Errors = nil

	var list *markup.ErrorList
	if errors.As(err, &list) {
		doc.Errors = list.Errors()
	}
}

// uriToPath converts a file:// URI to a file path.
func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return u.Path
}

// Position represents a position in a document (0-indexed).
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range represents a range in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// OffsetToPosition converts a byte offset to a Position. Characters are
// counted in UTF-16 code units, as the protocol requires.
func OffsetToPosition(content string, offset int) Position {
	offset = min(max(offset, 0), len(content))
	line, col := 0, 0
	for _, r := range content[:offset] {
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col += utf16Len(r)
	}
	return Position{Line: line, Character: col}
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// markupPosToRange converts a 1-indexed markup position, whose column counts
// bytes, to an LSP range of the given length in content.
func markupPosToRange(content string, pos markup.Position, length int) Range {
	lineStart := 0
	for line := 1; line < pos.Line; line++ {
		i := strings.IndexByte(content[lineStart:], '\n')
		if i < 0 {
			break
		}
		lineStart += i + 1
	}
	start := OffsetToPosition(content, lineStart+pos.Column-1)
	end := Position{Line: start.Line, Character: start.Character + length}
	return Range{Start: start, End: end}
}
