package transform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
)

func TestParseCompilerOutput(t *testing.T) {
	out := "ParseError: Unrecognised input in /src/a.less on line 3, column 1:\n" +
		"2 a {\n" +
		"3 }}\t\n" +
		"\n"
	te := ParseCompilerOutput(out)
	assert.Equal(t, "Parse", te.Kind)
	assert.Equal(t, "Unrecognised input", te.Message)
	assert.Equal(t, "/src/a.less", te.Filename)
	assert.Equal(t, 3, te.Line)
	assert.Equal(t, 1, te.Column)
	assert.Equal(t, []string{"2 a {", "3 }}    "}, te.Extract)
}

func TestParseCompilerOutputWithoutStructure(t *testing.T) {
	te := ParseCompilerOutput("\n\nsomething broke\n")
	assert.Empty(t, te.Kind)
	assert.Equal(t, "something broke", te.Message)
	assert.Zero(t, te.Line)

	te = ParseCompilerOutput("")
	assert.Equal(t, "stylesheet compiler failed without output", te.Message)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "fakelessc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o700)) //nolint:gosec // test script must be executable
	return path
}

func TestExecEngineReturnsStdout(t *testing.T) {
	bin := writeScript(t, `echo "args: $*"; cat`)
	e := NewExecEngine(bin, []string{"--strict-math=on"}, time.Second)

	loc := filepath.Join(t.TempDir(), "a.less")
	out, err := e.Compile(t.Context(), "a { b: c; }", loc, true)
	require.NoError(t, err)
	assert.Equal(t, "args: --no-color --include-path="+filepath.Dir(loc)+" --compress --strict-math=on -\na { b: c; }", out)
}

func TestExecEngineParsesFailures(t *testing.T) {
	bin := writeScript(t, `echo "NameError: variable @x is undefined in - on line 2, column 5:" >&2; echo "2 a { b: @x; }" >&2; exit 1`)
	e := NewExecEngine(bin, nil, time.Second)

	loc := filepath.Join(t.TempDir(), "a.less")
	_, err := e.Compile(t.Context(), "", loc, false)
	var te *compile.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Name", te.Kind)
	assert.Equal(t, loc, te.Filename)
	assert.Equal(t, 2, te.Line)
	assert.Equal(t, []string{"2 a { b: @x; }"}, te.Extract)
}

func TestExecEngineTimeout(t *testing.T) {
	bin := writeScript(t, `exec sleep 5`)
	e := NewExecEngine(bin, nil, 50*time.Millisecond)

	_, err := e.Compile(t.Context(), "", filepath.Join(t.TempDir(), "a.less"), false)
	require.ErrorIs(t, err, ErrEngineTimeout)
}

func TestExecEngineMissingBinary(t *testing.T) {
	e := NewExecEngine("lesswatch-no-such-compiler", nil, 0)
	_, err := e.Compile(t.Context(), "", "/tmp/a.less", false)
	require.ErrorIs(t, err, ErrEngineNotFound)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTransform))
}

func TestCopyEngine(t *testing.T) {
	out, err := CopyEngine{}.Compile(t.Context(), "a{}", "/x.less", true)
	require.NoError(t, err)
	assert.Equal(t, "a{}", out)
}
