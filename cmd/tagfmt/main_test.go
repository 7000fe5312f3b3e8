package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	unformatted = "<div>\n<p>Hello</p>\n</div>\n"
	formatted   = "<div>\n  <p>Hello</p>\n</div>\n"
)

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestFmt_InPlace(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "page.marko", unformatted)

	_, stderr, err := run(t, "fmt", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Formatted "+path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, formatted, string(got))
}

func TestFmt_Stdout(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "page.marko", unformatted)

	stdout, _, err := run(t, "fmt", "--stdout", path)
	require.NoError(t, err)
	assert.Equal(t, formatted, stdout)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, unformatted, string(got), "stdout mode must not touch the file")
}

func TestFmt_Check(t *testing.T) {
	type tc struct {
		content string
		wantErr bool
	}

	tests := map[string]tc{
		"formatted passes": {content: formatted},
		"unformatted fails": {
			content: unformatted,
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeTemplate(t, t.TempDir(), "page.marko", tt.content)
			_, stderr, err := run(t, "fmt", "--check", path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, stderr, path+" is not formatted")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFmt_Diff(t *testing.T) {
	path := writeTemplate(t, t.TempDir(), "page.marko", unformatted)

	stdout, _, err := run(t, "fmt", "--diff", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "--- "+path+".orig")
	assert.Contains(t, stdout, "+  <p>Hello</p>")
	assert.Contains(t, stdout, "-<p>Hello</p>")
}

func TestFmt_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, ".tagfmt.toml", "tab_width = 4\nsyntax = \"html\"\n")
	path := writeTemplate(t, dir, "page.marko", unformatted)

	stdout, _, err := run(t, "fmt", "--stdout", path)
	require.NoError(t, err)
	assert.Equal(t, "<div>\n    <p>Hello</p>\n</div>\n", stdout)

	stdout, _, err = run(t, "fmt", "--stdout", "--syntax", "concise", path)
	require.NoError(t, err)
	assert.Equal(t, "div\n    p -- Hello\n", stdout)
}

func TestFmt_BadFlags(t *testing.T) {
	path := writeTemplate(t, t.TempDir(), "page.marko", unformatted)

	_, _, err := run(t, "fmt", "--syntax", "xml", path)
	assert.ErrorContains(t, err, "invalid syntax")

	_, _, err = run(t, "fmt", "--check", "--stdout", path)
	assert.Error(t, err)
}

func TestFmt_ParseErrorReported(t *testing.T) {
	dir := t.TempDir()
	bad := writeTemplate(t, dir, "bad.marko", "<div>")
	good := writeTemplate(t, dir, "good.marko", unformatted)

	_, stderr, err := run(t, "fmt", dir)
	assert.ErrorContains(t, err, "1 file(s) had errors")
	assert.Contains(t, stderr, bad)

	got, err := os.ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, formatted, string(got))
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "good.marko", formatted)

	_, stderr, err := run(t, "check", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "passed checks")

	writeTemplate(t, dir, "bad.marko", "<div></span>")
	_, stderr, err = run(t, "check", dir)
	require.Error(t, err)
	assert.Contains(t, stderr, "mismatched closing tag")
}

func TestCollectTemplates(t *testing.T) {
	dir := t.TempDir()
	a := writeTemplate(t, dir, "a.marko", "")
	b := writeTemplate(t, dir, "sub/b.marko", "")
	writeTemplate(t, dir, "sub/c.txt", "")
	writeTemplate(t, dir, "node_modules/x/d.marko", "")
	writeTemplate(t, dir, ".hidden/e.marko", "")

	type tc struct {
		paths []string
		want  []string
	}

	tests := map[string]tc{
		"recursive": {
			paths: []string{dir + "/..."},
			want:  []string{a, b},
		},
		"directory only": {
			paths: []string{dir},
			want:  []string{a},
		},
		"file listed twice": {
			paths: []string{a, a},
			want:  []string{a},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := collectTemplates(tt.paths)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := collectTemplates([]string{filepath.Join(dir, "missing.marko")})
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tagfmt version "+version+"\n", stdout)
}
