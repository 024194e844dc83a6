package idscodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteLength(t *testing.T) {
	huge := []int{65536, 65536, 65536, 65536}
	tests := []struct {
		name  string
		t     DataType
		shape []int
		want  int
	}{
		{"Scalar", Double, nil, 8},
		{"Vector", Char, []int{29}, 29},
		{"Matrix", Complex, []int{2, 3}, 96},
		{"ZeroDimension", Integer, []int{4, 0, 7}, 0},
		{"ZeroDimensionAfterHuge", Char, append(append([]int(nil), huge...), 0), 0},
		{"Negative", Integer, []int{2, -1}, -1},
		{"UnknownType", DataType(9), []int{1}, -1},
		{"Wraps", Char, huge, -1},
		{"PastBlobLimit", Double, []int{1 << 29, 2}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ByteLength(tt.t, tt.shape))
		})
	}
}

func TestCheckShape(t *testing.T) {
	assert.NoError(t, checkShape(Integer, []int{2}, 8))
	assert.NoError(t, checkShape(Char, []int{0, 65536, 65536, 65536, 65536}, 0))
	assert.ErrorContains(t, checkShape(Integer, []int{2}, 4), "needs 8 bytes")
	assert.ErrorContains(t, checkShape(Char, []int{65536, 65536, 65536, 65536}, 0), "blob limit")
	assert.ErrorContains(t, checkShape(Integer, []int{-2}, 0), "negative")
	assert.ErrorContains(t, checkShape(DataType(1), nil, 0), "unknown")
}
