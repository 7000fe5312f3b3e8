package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grindlemire/tagfmt/pkg/markup"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [path...]",
		Short: "Check .marko files for syntax errors",
		Long:  `Parse .marko files without formatting them and report every syntax error found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runCheck(cmd, args)
		},
	}
}

// runCheck parses each file and reports its errors.
func runCheck(cmd *cobra.Command, paths []string) error {
	logger := loggerFromContext(cmd.Context())
	stderr := cmd.ErrOrStderr()

	files, err := collectTemplates(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found", templateExt)
	}

	logger.Debug("checking", "files", len(files))

	var errorCount int
	for _, path := range files {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		logger.Debug("checking", "file", path)

		if err := checkFile(path); err != nil {
			var list *markup.ErrorList
			if errors.As(err, &list) {
				for _, e := range list.Errors() {
					printError(stderr, e)
				}
			} else {
				printFileError(stderr, path, err)
			}
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("%d file(s) had errors", errorCount)
	}
	printSummary(stderr, fmt.Sprintf("All %d file(s) passed checks", len(files)))
	return nil
}

// checkFile parses a single file. Errors carry the file path.
func checkFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	_, err = markup.Parse(path, string(source))
	return err
}
