package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lesswatch/internal/source"
)

func TestWildcardMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"/src/a.less", "*/a.less", true},
		{"/src/sub/a.less", "*/a.less", true},
		{"/src/sub/_partial.less", "*/_*", true},
		{"/src/sub/partial.less", "*/_*", false},
		{"/src/a.less", "/src/?.less", true},
		{"/src/ab.less", "/src/?.less", false},
		{"/src/theme/dark.less", "*/theme/*", true},
		{"/src/a.less", "*", true},
		{"", "*", true},
		{"/src/a.less", "", false},
		{"/src/[old]/a.less", "*/[old]/*", true},
		{"/src/o/a.less", "*/[old]/*", false},
		{"/src/{x,y}.less", "*/{x,y}.less", true},
		{"/src/x.less", "*/{x,y}.less", false},
	}
	for _, tt := range tests {
		t.Run(tt.name+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, WildcardMatch(filepath.FromSlash(tt.name), filepath.FromSlash(tt.pattern)))
		})
	}
}

func TestNormalizePatterns(t *testing.T) {
	got := NormalizePatterns(" _*.less ;;vendor/*; _*.less")
	sep := string(filepath.Separator)
	assert.Equal(t, []string{"*" + sep + "_*.less", "*" + sep + "vendor/*"}, got)
	assert.Empty(t, NormalizePatterns(""))
}

func newTree(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "less")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	return src, filepath.Join(dir, "css")
}

func TestShouldCompile(t *testing.T) {
	src, out := newTree(t)
	file := func(rel string) source.File { return source.New(filepath.Join(src, rel)) }

	t.Run("empty include includes everything", func(t *testing.T) {
		p := New("all", src, []string{out}, "", "", false)
		assert.True(t, p.ShouldCompile(file("main.less")))
	})

	t.Run("exclude wins", func(t *testing.T) {
		p := New("partials", src, []string{out}, "", "_*.less", false)
		assert.True(t, p.ShouldCompile(file("main.less")))
		assert.False(t, p.ShouldCompile(file("sub/_vars.less")))
	})

	t.Run("include narrows", func(t *testing.T) {
		p := New("sub", src, []string{out}, "sub/*", "", false)
		assert.True(t, p.ShouldCompile(file("sub/a.less")))
		assert.False(t, p.ShouldCompile(file("main.less")))
	})

	t.Run("inactive profile compiles nothing", func(t *testing.T) {
		p := New("inactive", src, nil, "", "", false)
		assert.False(t, p.Active())
		assert.False(t, p.ShouldCompile(file("main.less")))
	})
}

func TestLookupFirstMatchWins(t *testing.T) {
	src, out := newTree(t)
	outer := New("outer", src, []string{out}, "", "", false)
	inner := New("inner", filepath.Join(src, "sub"), []string{out}, "", "", false)

	f := source.New(filepath.Join(src, "sub", "a.less"))
	assert.Same(t, outer, Lookup([]*Profile{outer, inner}, f))
	assert.Same(t, inner, Lookup([]*Profile{inner, outer}, f))
	assert.Nil(t, Lookup([]*Profile{inner}, source.New(filepath.Join(src, "main.less"))))
}

func TestRel(t *testing.T) {
	src, out := newTree(t)
	p := New("p", src, []string{out, ""}, "", "", false)
	require.Len(t, p.OutputRoots, 1)

	rel, err := p.Rel(source.New(filepath.Join(src, "sub", "a.less")))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("sub", "a.less"), rel)
}
