package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/grindlemire/tagfmt/pkg/config"
	"github.com/grindlemire/tagfmt/pkg/embed"
	"github.com/grindlemire/tagfmt/pkg/formatter"
)

type fmtFlags struct {
	check  bool // exit 1 if any file is not formatted
	stdout bool // print to stdout instead of modifying files
	diff   bool // print a unified diff instead of modifying files

	configPath string
	trace      string

	width         int
	tabWidth      int
	useTabs       bool
	singleQuote   bool
	trailingComma string
	syntax        string
	attrParen     bool
}

func newFmtCmd() *cobra.Command {
	var flags fmtFlags

	cmd := &cobra.Command{
		Use:   "fmt [path...]",
		Short: "Format .marko files",
		Long: `Format .marko files in place.

Paths may be files, directories, or a directory followed by /... to search
recursively. Settings are read from the nearest .tagfmt.toml above each file
unless --config is given; flags override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runFmt(cmd, flags, args)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.check, "check", false, "check formatting without modifying files")
	f.BoolVar(&flags.stdout, "stdout", false, "print formatted output to stdout")
	f.BoolVar(&flags.diff, "diff", false, "print a unified diff of the changes")
	f.StringVar(&flags.configPath, "config", "", "config file (default: nearest "+config.FileName+")")
	f.StringVar(&flags.trace, "trace", "", "write a debug trace of the formatter to this file")
	f.IntVar(&flags.width, "width", formatter.DefaultPrintWidth, "target line width")
	f.IntVar(&flags.tabWidth, "tab-width", formatter.DefaultTabWidth, "width of one indentation level")
	f.BoolVar(&flags.useTabs, "use-tabs", false, "indent with tabs")
	f.BoolVar(&flags.singleQuote, "single-quote", false, "prefer single quotes in embedded code")
	f.StringVar(&flags.trailingComma, "trailing-comma", "all", "trailing commas in embedded code: all, es5 or none")
	f.StringVar(&flags.syntax, "syntax", "auto", "output dialect: auto, html or concise")
	f.BoolVar(&flags.attrParen, "attr-paren", false, "parenthesize attribute values containing spaces")
	cmd.MarkFlagsMutuallyExclusive("check", "stdout", "diff")

	return cmd
}

type fmtResult struct {
	path   string
	source string
	res    formatter.FormatResult
	err    error
}

func runFmt(cmd *cobra.Command, flags fmtFlags, paths []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	files, err := collectTemplates(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found", templateExt)
	}

	resolve, err := newOptionsResolver(cmd, flags)
	if err != nil {
		return err
	}

	if flags.trace != "" {
		f, err := os.Create(flags.trace)
		if err != nil {
			return fmt.Errorf("opening trace file: %w", err)
		}
		defer f.Close()
		resolve.logger = newLogger(f, log.DebugLevel)
	}

	logger.Debug("formatting", "files", len(files))
	results, err := formatFiles(ctx, resolve, files)
	if err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var errorCount, changedCount int
	for _, r := range results {
		if r.err != nil {
			printFileError(stderr, r.path, r.err)
			errorCount++
			continue
		}
		for _, d := range r.res.Diagnostics {
			printWarning(stderr, fmt.Sprintf("%s: %s", r.path, d))
		}
		if r.res.Changed {
			changedCount++
		}

		switch {
		case flags.check:
			if r.res.Changed {
				printUnformatted(stderr, r.path)
			}
		case flags.stdout:
			if len(results) > 1 {
				fmt.Fprintf(stdout, "// %s\n", r.path)
			}
			fmt.Fprint(stdout, r.res.Content)
		case flags.diff:
			if err := writeDiff(stdout, r); err != nil {
				printFileError(stderr, r.path, err)
				errorCount++
			}
		default:
			if !r.res.Changed {
				continue
			}
			if err := writeFile(r.path, r.res.Content); err != nil {
				printFileError(stderr, r.path, err)
				errorCount++
				continue
			}
			printFormatted(stderr, r.path)
		}
	}

	logger.Debug("done", "files", len(results), "changed", changedCount, "errors", errorCount)
	if errorCount > 0 {
		return fmt.Errorf("%d file(s) had errors", errorCount)
	}
	if flags.check && changedCount > 0 {
		return fmt.Errorf("%d file(s) not formatted", changedCount)
	}
	if flags.check {
		printSummary(stderr, fmt.Sprintf("%d file(s) formatted", len(results)))
	}
	return nil
}

// formatFiles formats files concurrently. Results are in input order; a
// failure of one file is recorded in its result and does not stop others.
func formatFiles(ctx context.Context, resolve *optionsResolver, files []string) ([]fmtResult, error) {
	results := make([]fmtResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range files {
		g.Go(func() error {
			results[i] = formatFile(ctx, resolve, path)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func formatFile(ctx context.Context, resolve *optionsResolver, path string) fmtResult {
	r := fmtResult{path: path}

	source, err := os.ReadFile(path)
	if err != nil {
		r.err = fmt.Errorf("reading file: %w", err)
		return r
	}
	r.source = string(source)

	opts, err := resolve.options(filepath.Dir(path))
	if err != nil {
		r.err = err
		return r
	}

	r.res, r.err = formatter.New(opts).FormatContext(ctx, filepath.Base(path), r.source)
	return r
}

func writeFile(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func writeDiff(w io.Writer, r fmtResult) error {
	if !r.res.Changed {
		return nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(r.source),
		B:        difflib.SplitLines(r.res.Content),
		FromFile: r.path + ".orig",
		ToFile:   r.path,
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("computing diff: %w", err)
	}
	_, err = io.WriteString(w, diff)
	return err
}

// optionsResolver builds the formatter options for a directory: the config
// file (explicit or discovered) with flags applied on top.
type optionsResolver struct {
	cmd    *cobra.Command
	flags  fmtFlags
	fixed  *config.Config
	logger *log.Logger

	mu    sync.Mutex
	byDir map[string]*config.Config
}

func newOptionsResolver(cmd *cobra.Command, flags fmtFlags) (*optionsResolver, error) {
	r := &optionsResolver{cmd: cmd, flags: flags, byDir: make(map[string]*config.Config)}
	if flags.configPath != "" {
		cfg, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		r.fixed = cfg
	}

	// Surface bad flag values once, before any file is read.
	if _, err := r.applyFlags(formatter.Options{}); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *optionsResolver) configFor(dir string) (*config.Config, error) {
	if r.fixed != nil {
		return r.fixed, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg, ok := r.byDir[dir]; ok {
		return cfg, nil
	}
	cfg, err := config.Discover(dir)
	if err != nil {
		return nil, err
	}
	r.byDir[dir] = cfg
	return cfg, nil
}

func (r *optionsResolver) options(dir string) (formatter.Options, error) {
	cfg, err := r.configFor(dir)
	if err != nil {
		return formatter.Options{}, err
	}

	var opts formatter.Options
	if err := cfg.Apply(&opts); err != nil {
		return formatter.Options{}, err
	}
	opts, err = r.applyFlags(opts)
	if err != nil {
		return formatter.Options{}, err
	}
	opts.Logger = r.logger
	return opts, nil
}

// applyFlags overrides opts with the flags given on the command line.
func (r *optionsResolver) applyFlags(opts formatter.Options) (formatter.Options, error) {
	changed := r.cmd.Flags().Changed
	if changed("width") {
		opts.PrintWidth = r.flags.width
	}
	if changed("tab-width") {
		opts.TabWidth = r.flags.tabWidth
	}
	if changed("use-tabs") {
		opts.UseTabs = r.flags.useTabs
	}
	if changed("single-quote") {
		opts.SingleQuote = r.flags.singleQuote
	}
	if changed("attr-paren") {
		opts.AttrParen = r.flags.attrParen
	}
	if changed("trailing-comma") {
		tc, err := embed.ParseTrailingComma(r.flags.trailingComma)
		if err != nil {
			return opts, err
		}
		opts.TrailingComma = tc
	}
	if changed("syntax") {
		s, err := formatter.ParseSyntax(r.flags.syntax)
		if err != nil {
			return opts, err
		}
		opts.Syntax = s
	}
	return opts, opts.Validate()
}
