// Package markup parses .marko templates into a read-only AST.
//
// Templates mix two surface syntaxes. The HTML dialect uses explicit
// open and close tags. The concise dialect is indentation based: one tag
// per line, text after "--", scriptlets after "$". Both may appear in the
// same file; every Tag records which one it was written in.
package markup
