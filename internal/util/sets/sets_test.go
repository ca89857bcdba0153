package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New("a", "b")
	s.Add("c")
	assert.True(t, s.Has("b"))
	s.Delete("b")
	assert.False(t, s.Has("b"))
	assert.Len(t, s, 2)
}

func TestOrderedKeepsFirstInsertion(t *testing.T) {
	o := NewOrdered("b", "a")
	assert.True(t, o.Add("c"))
	assert.False(t, o.Add("a"))
	assert.Equal(t, []string{"b", "a", "c"}, o.Values())
	assert.Equal(t, 3, o.Len())

	vals := o.Values()
	vals[0] = "z"
	assert.Equal(t, "b", o.Values()[0], "Values must return a copy")
}
