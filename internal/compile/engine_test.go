package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		msg          string
		line, column int
		ok           bool
	}{
		{"Syntax Error on line 4, column 10", 4, 10, true},
		{"LINE 1, COLUMN 0", 1, 0, true},
		{"no position here", 0, 0, false},
	}
	for _, tt := range tests {
		line, column, ok := ParseLocation(tt.msg)
		assert.Equal(t, tt.ok, ok, tt.msg)
		assert.Equal(t, tt.line, line, tt.msg)
		assert.Equal(t, tt.column, column, tt.msg)
	}
}

func TestTransformErrorMessage(t *testing.T) {
	err := &TransformError{Kind: "Name", Message: "variable @x is undefined", Filename: "/s/a.less", Line: 2, Column: 5}
	assert.Equal(t, "Name Error: variable @x is undefined in /s/a.less on line 2, column 5", err.Error())
	assert.Equal(t, "bad", (&TransformError{Message: "bad"}).Error())
}

func TestShouldCompress(t *testing.T) {
	assert.False(t, ShouldCompress("a{}", false))
	assert.True(t, ShouldCompress("a{}", true))
	assert.True(t, ShouldCompress("//simpless:minify\n", false))
	assert.False(t, ShouldCompress("//simpless:!minify\n", true))
	assert.True(t, ShouldCompress("//simpless:!minify\n//simpless:minify\n", true))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "No output files changed", Summary(0))
	assert.Equal(t, "1 file compiled", Summary(1))
	assert.Equal(t, "4 files compiled", Summary(4))
}
