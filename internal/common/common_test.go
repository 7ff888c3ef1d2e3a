package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearch(t *testing.T) {
	idx := []int{0, 3, 5, 9}
	tests := []struct {
		i    int
		want int
	}{
		{0, 0},
		{3, 1},
		{5, 2},
		{9, 3},
		{1, -1},
		{4, -1},
		{10, -1},
		{-1, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Search(idx, tt.i), "search %d", tt.i)
	}
	assert.Equal(t, -1, Search(nil, 0))
}

func TestIsSortedStrict(t *testing.T) {
	assert.True(t, IsSortedStrict(nil, 0))
	assert.True(t, IsSortedStrict([]int{0, 2, 7}, 8))
	assert.False(t, IsSortedStrict([]int{0, 2, 2}, 8))
	assert.False(t, IsSortedStrict([]int{2, 1}, 8))
	assert.False(t, IsSortedStrict([]int{0, 8}, 8))
	assert.False(t, IsSortedStrict([]int{-1, 0}, 8))
}

func TestRepr(t *testing.T) {
	got := Repr("P", []string{"a", "b", "c", "d"}, []any{"x\"y", nil, 3, []int{1, 2}})
	assert.Equal(t, `P(a="x\"y", b=nil, c=3, d=[1 2])`, got)
	assert.Equal(t, "P()", Repr("P", nil, nil))
}
