package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/grindlemire/tagfmt/pkg/lsp"
)

func newLSPCmd() *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server on stdio",
		Long: `Start a language server for editor integration. It reports parse errors
as diagnostics and formats documents using the nearest .tagfmt.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []lsp.Option{lsp.WithConfigDiscovery()}

			// stdout carries the protocol, so logs only go to a file.
			if logPath != "" {
				logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer logFile.Close()
				opts = append(opts, lsp.WithLogger(newLogger(logFile, log.DebugLevel)))
			}

			server := lsp.NewServer(os.Stdin, os.Stdout, opts...)
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "path to log file for debugging")
	return cmd
}
