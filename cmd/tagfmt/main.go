// Package main provides the tagfmt command line tool for formatting .marko
// templates.
//
// Usage:
//
//	tagfmt fmt [path...]      Format .marko files in place
//	tagfmt check [path...]    Check .marko files for syntax errors
//	tagfmt version            Print version information
//
// Examples:
//
//	tagfmt fmt ./...               Recursively format all .marko files
//	tagfmt fmt --check ./...       Check formatting without modifying
//	tagfmt fmt --stdout page.marko Print formatted output to stdout
//	tagfmt fmt --diff ./views      Show what would change
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
