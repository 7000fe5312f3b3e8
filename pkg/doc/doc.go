// Package doc implements a Wadler-style layout IR and the width-resolution
// engine that renders it.
//
// A Doc tree describes text plus layout choices (line breaks, indentation,
// groups that print flat or broken, fills that wrap word by word). Print
// resolves those choices against a width budget. PrintText and Probe render
// a Doc only to inspect the resulting text before deciding how to embed it.
package doc
