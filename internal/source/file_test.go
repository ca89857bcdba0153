package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCanonicalCollapsesSymlinksAndRelativeForms(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	writeFile(t, filepath.Join(real, "main.less"), "")
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(real, link))

	viaReal := New(filepath.Join(real, "main.less"))
	viaLink := New(filepath.Join(link, "main.less"))
	viaDots := New(filepath.Join(real, "sub", "..", "main.less"))

	assert.True(t, viaReal.Equal(viaLink))
	assert.True(t, viaReal.Equal(viaDots))
	assert.Equal(t, viaReal, viaLink, "values must compare equal with ==")
}

func TestCanonicalMissingFileKeepsResolvedParent(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	require.NoError(t, os.MkdirAll(real, 0o755))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(real, link))

	a := New(filepath.Join(link, "missing.less"))
	b := New(filepath.Join(real, "missing.less"))
	assert.Equal(t, a.Path(), b.Path())
	assert.False(t, a.Exists())
}

func TestZeroValueNeverEqual(t *testing.T) {
	var a, b File
	assert.True(t, a.IsZero())
	assert.False(t, a.Equal(b))
}

func TestParseImports(t *testing.T) {
	dir := t.TempDir()
	text := `@import "vars";
@import "mixins.less";
@import "../shared/base";
@import 'single-quoted';
@import "vars";
.a { color: red; }`

	imports := ParseImports(dir, text)
	require.Len(t, imports, 3)
	assert.Equal(t, New(filepath.Join(dir, "vars.less")), imports[0])
	assert.Equal(t, New(filepath.Join(dir, "mixins.less")), imports[1])
	assert.Equal(t, New(filepath.Join(filepath.Dir(dir), "shared", "base.less")), imports[2])
}

func TestResolveImportName(t *testing.T) {
	tests := map[string]string{
		"main":         "main.less",
		"main.less":    "main.less",
		"dir/partial":  "dir/partial.less",
		"theme.bundle": "theme.bundle.less",
	}
	for in, want := range tests {
		assert.Equal(t, want, ResolveImportName(in), in)
	}
}

func TestImportsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.less"), ".m{}")
	writeFile(t, filepath.Join(dir, "dep.less"), `@import "main";`)

	dep := New(filepath.Join(dir, "dep.less"))
	main := New(filepath.Join(dir, "main.less"))

	ok, err := dep.ImportsFile(main)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = main.ImportsFile(dep)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadMissingFileIsFilesystemError(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "nope.less"))
	_, err := f.Read()
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "sub/a.css", OutputName("sub/a.less"))
	assert.Equal(t, "theme.less.css", OutputName("theme.less.less"))
	assert.Equal(t, "notes.txt", OutputName("notes.txt"))
}

func TestIsAncestor(t *testing.T) {
	root := filepath.FromSlash("/src/styles")
	assert.True(t, IsAncestor(root, filepath.FromSlash("/src/styles/a.less")))
	assert.True(t, IsAncestor(root, filepath.FromSlash("/src/styles/sub/a.less")))
	assert.False(t, IsAncestor(root, root))
	assert.False(t, IsAncestor(root, filepath.FromSlash("/src/styles-old/a.less")))
	assert.False(t, IsAncestor(root, filepath.FromSlash("/src/a.less")))
}
