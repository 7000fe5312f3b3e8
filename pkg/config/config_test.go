package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindlemire/tagfmt/pkg/embed"
	"github.com/grindlemire/tagfmt/pkg/formatter"
)

func TestParseAndApply(t *testing.T) {
	type tc struct {
		data    string
		base    formatter.Options
		want    formatter.Options
		wantErr string
	}

	tests := map[string]tc{
		"empty file keeps options": {
			data: "",
			base: formatter.Options{PrintWidth: 100},
			want: formatter.Options{PrintWidth: 100},
		},
		"every key": {
			data: `
print_width = 120
tab_width = 4
use_tabs = true
single_quote = true
trailing_comma = "es5"
syntax = "concise"
attr_paren = true
`,
			want: formatter.Options{
				PrintWidth:    120,
				TabWidth:      4,
				UseTabs:       true,
				SingleQuote:   true,
				TrailingComma: embed.TrailingCommaES5,
				Syntax:        formatter.SyntaxConcise,
				AttrParen:     true,
			},
		},
		"false overrides true": {
			data: "use_tabs = false\n",
			base: formatter.Options{UseTabs: true},
			want: formatter.Options{},
		},
		"unknown key": {
			data:    "print_widht = 80\n",
			wantErr: "unknown config keys: print_widht",
		},
		"bad syntax value": {
			data:    `syntax = "xml"`,
			wantErr: "invalid syntax",
		},
		"bad trailing comma": {
			data:    `trailing_comma = "some"`,
			wantErr: "invalid trailing comma",
		},
		"negative width": {
			data:    "print_width = -1\n",
			wantErr: "print width must not be negative",
		},
		"wrong type": {
			data:    `print_width = "wide"`,
			wantErr: "print_width",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			opts := tt.base
			cfg, err := Parse(tt.data)
			if err == nil {
				err = cfg.Apply(&opts)
			}
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts)
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := Find(nested)
	require.NoError(t, err)
	if path != "" {
		// A config above the temp dir is outside this test's control.
		assert.NotContains(t, path, root)
	}

	cfgPath := filepath.Join(root, "a", FileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte("print_width = 90\n"), 0o644))

	path, err = Find(nested)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)

	cfg, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, cfg.Path)
	require.NotNil(t, cfg.PrintWidth)
	assert.Equal(t, 90, *cfg.PrintWidth)
}

func TestLoad_ErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("colour = 1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "colour")
}
