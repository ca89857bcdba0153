package compile

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lesswatch/internal/profile"
)

func TestBuildSkipsFilesCoveredByEarlierJobs(t *testing.T) {
	tr := newTree(t, map[string]string{
		"a.less":     `@c: red;`,
		"b.less":     `@import "a";`,
		"c.less":     `body {}`,
		"_skip.less": `@x: 1;`,
		"sub/d.less": `@import "../a";`,
	}, 1)
	p := profile.New("site", tr.src, tr.outs, "", "_*", false)
	engine := &fakeEngine{}

	res, err := Build(t.Context(), p, engine)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Jobs)
	assert.Equal(t, []string{"a.less", "b.less", "d.less", "c.less"}, engine.calls)
	assert.Len(t, res.Changed, 4)
	assert.FileExists(t, filepath.Join(tr.outs[0], "sub", "d.css"))
	assert.NoFileExists(t, filepath.Join(tr.outs[0], "_skip.css"))
}

func TestBuildContinuesAfterFailure(t *testing.T) {
	tr := newTree(t, map[string]string{
		"a.less": `broken`,
		"b.less": `body {}`,
	}, 1)
	p := profile.New("site", tr.src, tr.outs, "", "", false)
	engine := &fakeEngine{fail: map[string]error{"a.less": errors.New("boom")}}

	res, err := Build(t.Context(), p, engine)
	require.Error(t, err)
	assert.Equal(t, 2, res.Jobs)
	assert.Equal(t, []string{"a.less", "b.less"}, engine.calls)
	assert.FileExists(t, filepath.Join(tr.outs[0], "b.css"))
}

func TestBuildInactiveProfile(t *testing.T) {
	tr := newTree(t, map[string]string{"a.less": `x`}, 0)
	p := profile.New("site", tr.src, nil, "", "", false)

	res, err := Build(t.Context(), p, &fakeEngine{})
	require.NoError(t, err)
	assert.Zero(t, res.Jobs)
}
