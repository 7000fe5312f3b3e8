package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorDim    = lipgloss.Color("240")
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
)

func printFormatted(w io.Writer, path string) {
	fmt.Fprintf(w, "%s Formatted %s\n", styleSuccess.Render(iconSuccess), path)
}

func printUnformatted(w io.Writer, path string) {
	fmt.Fprintf(w, "%s %s is not formatted\n", styleError.Render(iconError), path)
}

func printWarning(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", styleWarning.Render(iconWarning), msg)
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", styleError.Render("error:"), err)
}

func printFileError(w io.Writer, path string, err error) {
	fmt.Fprintf(w, "%s %s: %v\n", styleError.Render(iconError), path, err)
}

func printSummary(w io.Writer, msg string) {
	fmt.Fprintln(w, styleDim.Render(msg))
}
