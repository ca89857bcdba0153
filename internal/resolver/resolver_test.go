package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/source"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	return root
}

func names(root string, files []source.File) []string {
	out := make([]string, 0, len(files))
	canon := source.Canonical(root)
	for _, f := range files {
		rel, _ := filepath.Rel(canon, f.Path())
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestFirstLevelDependents(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.less":       `@import "dep.less"; body { color: red; }`,
		"other.less":      `@import "dep";`,
		"dep.less":        `@import "dep.less"; @c: red;`,
		"sub/nested.less": `@import "../dep.less";`,
		"sub/unused.less": `a { }`,
		"sub/notes.txt":   `@import "../dep.less";`,
		"sub/single.less": `@import 'dep.less';`,
		"sub/spaced.less": `@import  "../dep.less";`,
	})
	p := profile.New("site", root, []string{t.TempDir()}, "", "", false)

	deps, err := FirstLevelDependents(source.Join(root, "dep.less"), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.less", "other.less", "sub/nested.less"}, names(root, deps))
}

func TestDependentsRecursiveChainAndDiamond(t *testing.T) {
	root := writeTree(t, map[string]string{
		"base.less":   `@c: red;`,
		"mixins.less": `@import "base";`,
		"colors.less": `@import "base";`,
		"theme.less":  `@import "mixins"; @import "colors";`,
		"site.less":   `@import "theme";`,
	})
	p := profile.New("site", root, []string{t.TempDir()}, "", "", false)

	deps, err := DependentsRecursive(source.Join(root, "base.less"), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"colors.less", "mixins.less", "theme.less", "site.less"}, names(root, deps))
}

func TestDependentsRecursiveVisitsNearestImportersFirst(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.less": `@c: red;`,
		"a.less":    `@import "main";`,
		"b.less":    `@import "main";`,
		"c.less":    `@import "a";`,
	})
	p := profile.New("site", root, []string{t.TempDir()}, "", "", false)

	deps, err := DependentsRecursive(source.Join(root, "main.less"), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.less", "b.less", "c.less"}, names(root, deps))
}

func TestDependentsRecursiveTerminatesOnCycles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.less": `@import "b";`,
		"b.less": `@import "a";`,
		"c.less": `@import "c"; @import "a";`,
	})
	p := profile.New("site", root, []string{t.TempDir()}, "", "", false)

	deps, err := DependentsRecursive(source.Join(root, "a.less"), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.less", "c.less"}, names(root, deps))
}

func TestDependentsRecursiveKeepsFilesBehindExcludedPartials(t *testing.T) {
	root := writeTree(t, map[string]string{
		"vars.less":     `@c: red;`,
		"_partial.less": `@import "vars";`,
		"site.less":     `@import "_partial";`,
	})
	p := profile.New("site", root, []string{t.TempDir()}, "", "*/_*", false)

	deps, err := DependentsRecursive(source.Join(root, "vars.less"), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"site.less"}, names(root, deps))
}

func TestDependentsRecursiveInactiveProfile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.less": `@c: red;`,
		"b.less": `@import "a";`,
	})
	p := profile.New("site", root, nil, "", "", false)

	deps, err := DependentsRecursive(source.Join(root, "a.less"), p)
	require.NoError(t, err)
	assert.Empty(t, deps)

	all, err := Compilable(p)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDependentsRecursiveIsIdempotent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.less": `@c: red;`,
		"b.less": `@import "a";`,
		"c.less": `@import "b";`,
	})
	p := profile.New("site", root, []string{t.TempDir()}, "", "", false)
	f := source.Join(root, "a.less")

	first, err := DependentsRecursive(f, p)
	require.NoError(t, err)
	second, err := DependentsRecursive(f, p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPassSeesChangesOnlyInNewPass(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.less": `@c: red;`,
		"b.less": `b { }`,
	})
	p := profile.New("site", root, []string{t.TempDir()}, "", "", false)
	f := source.Join(root, "a.less")

	pass := NewPass(p)
	deps, err := pass.FirstLevelDependents(f)
	require.NoError(t, err)
	assert.Empty(t, deps)

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.less"), []byte(`@import "a";`), 0o600))

	deps, err = pass.FirstLevelDependents(f)
	require.NoError(t, err)
	assert.Empty(t, deps, "a pass keeps the import index it already built")

	deps, err = NewPass(p).FirstLevelDependents(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.less"}, names(root, deps))
}

func TestCompilableHonoursPatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.less":        ``,
		"_b.less":       ``,
		"vendor/c.less": ``,
		"vendor/d.css":  ``,
	})
	p := profile.New("site", root, []string{t.TempDir()}, "", "*/_*;vendor/*", false)

	all, err := Compilable(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.less"}, names(root, all))
}

func TestSourcesMissingRoot(t *testing.T) {
	p := profile.New("site", filepath.Join(t.TempDir(), "missing"), []string{t.TempDir()}, "", "", false)
	_, err := NewPass(p).Sources()
	require.Error(t, err)
}
