// Package config loads formatter settings from a .tagfmt.toml file.
//
// A config file looks like:
//
//	print_width = 100
//	tab_width = 2
//	use_tabs = false
//	single_quote = true
//	trailing_comma = "es5"
//	syntax = "auto"
//	attr_paren = false
//
// Every key is optional. Unknown keys are an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/grindlemire/tagfmt/pkg/embed"
	"github.com/grindlemire/tagfmt/pkg/formatter"
)

// FileName is the name searched for by Find.
const FileName = ".tagfmt.toml"

// Config holds the settings of one config file. Nil fields were not set.
type Config struct {
	PrintWidth    *int    `toml:"print_width"`
	TabWidth      *int    `toml:"tab_width"`
	UseTabs       *bool   `toml:"use_tabs"`
	SingleQuote   *bool   `toml:"single_quote"`
	TrailingComma *string `toml:"trailing_comma"`
	Syntax        *string `toml:"syntax"`
	AttrParen     *bool   `toml:"attr_paren"`

	// Path is the file the config was read from.
	Path string `toml:"-"`
}

// Load reads and decodes the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes config file contents.
func Parse(data string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// Find looks for a config file in dir and each of its parents. It returns
// an empty path when none exists.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		info, err := os.Stat(path)
		switch {
		case err == nil && !info.IsDir():
			return path, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("stat %s: %w", path, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Discover loads the nearest config file for dir. It returns an empty
// Config when there is none.
func Discover(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &Config{}, nil
	}
	return Load(path)
}

// Apply copies the settings that are set onto opts.
func (c *Config) Apply(opts *formatter.Options) error {
	if c.PrintWidth != nil {
		opts.PrintWidth = *c.PrintWidth
	}
	if c.TabWidth != nil {
		opts.TabWidth = *c.TabWidth
	}
	if c.UseTabs != nil {
		opts.UseTabs = *c.UseTabs
	}
	if c.SingleQuote != nil {
		opts.SingleQuote = *c.SingleQuote
	}
	if c.AttrParen != nil {
		opts.AttrParen = *c.AttrParen
	}
	if c.TrailingComma != nil {
		tc, err := embed.ParseTrailingComma(*c.TrailingComma)
		if err != nil {
			return c.wrap(err)
		}
		opts.TrailingComma = tc
	}
	if c.Syntax != nil {
		s, err := formatter.ParseSyntax(*c.Syntax)
		if err != nil {
			return c.wrap(err)
		}
		opts.Syntax = s
	}
	return c.wrap(opts.Validate())
}

func (c *Config) wrap(err error) error {
	if err == nil || c.Path == "" {
		return err
	}
	return fmt.Errorf("%s: %w", c.Path, err)
}
