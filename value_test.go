package idscodec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() Structure {
	return Structure{
		{Name: "ids_properties/comment", Value: chars("Example IDS for serialization")},
		{Name: "ids_properties/homogeneous_time", Value: Leaf{Type: Integer, Data: int32s(1)}},
		{Name: "time", Value: double1d(0, 0.1)},
		{Name: "profiles_1d", Value: AoS{
			{
				{Name: "t_i_average", Value: double1d(1, 2, 3)},
				{Name: "ion", Value: AoS{
					{{Name: "z_ion", Value: Leaf{Type: Double, Data: doubles(1)}}},
					{{Name: "label", Value: chars("D")}},
				}},
			},
			{},
			{{Name: "grid", Value: Leaf{Type: Complex, Shape: []int{1, 2}, Data: make([]byte, 32)}}},
		}},
	}
}

func TestTreeRoundTrip(t *testing.T) {
	root := sampleTree()
	buf, err := EncodeTree(root)
	require.NoError(t, err)

	back, err := DecodeTree(buf)
	require.NoError(t, err)
	assert.Equal(t, root, back)
}

func TestTreeEmptyAoSDisappears(t *testing.T) {
	root := Structure{
		{Name: "a", Value: AoS{}},
		{Name: "x", Value: chars("x")},
	}
	buf, err := EncodeTree(root)
	require.NoError(t, err)
	back, err := DecodeTree(buf)
	require.NoError(t, err)
	assert.Equal(t, root[1:], back)
}

func TestTreeUnsupportedValue(t *testing.T) {
	_, err := EncodeTree(Structure{{Name: "x", Value: nil}})
	assert.ErrorIs(t, err, ErrProtocolMisuse)
}

func TestStructureGet(t *testing.T) {
	s := Structure{
		{Name: "x", Value: chars("first")},
		{Name: "y", Value: chars("y")},
		{Name: "x", Value: chars("second")},
	}
	v, ok := s.Get("x")
	require.True(t, ok)
	assert.Equal(t, chars("second"), v)

	_, ok = s.Get("z")
	assert.False(t, ok)
}

func TestLeafRankAndLen(t *testing.T) {
	scalar := Leaf{Type: Double, Data: doubles(1)}
	assert.Zero(t, scalar.Rank())
	assert.Equal(t, 1, scalar.Len())

	grid := Leaf{Type: Integer, Shape: []int{2, 3}}
	assert.Equal(t, 2, grid.Rank())
	assert.Equal(t, 6, grid.Len())
	assert.Equal(t, 24, ByteLength(grid.Type, grid.Shape))

	wrapped := Leaf{Type: Char, Shape: []int{65536, 65536, 65536, 65536}}
	assert.Equal(t, -1, wrapped.Len())
	assert.Equal(t, -1, Leaf{Type: Char, Shape: []int{-1}}.Len())
}

func TestTreeCodec(t *testing.T) {
	tree := &Tree{Root: sampleTree()}

	data, err := tree.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, len(data), tree.Size())

	t.Run("MarshalTo", func(t *testing.T) {
		p := make([]byte, tree.Size()+3)
		n, err := tree.MarshalTo(p)
		require.NoError(t, err)
		assert.Equal(t, data, p[:n])

		_, err = tree.MarshalTo(p[:tree.Size()-1])
		assert.ErrorIs(t, err, io.ErrShortBuffer)
	})

	t.Run("WriteToReadFrom", func(t *testing.T) {
		var b bytes.Buffer
		n, err := tree.WriteTo(&b)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), n)

		var back Tree
		n, err = back.ReadFrom(&b)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), n)
		assert.Equal(t, tree.Root, back.Root)
	})

	t.Run("NilIO", func(t *testing.T) {
		_, err := tree.WriteTo(nil)
		assert.ErrorIs(t, err, ErrNilIO)
		_, err = (&Tree{}).ReadFrom(nil)
		assert.ErrorIs(t, err, ErrNilIO)
	})

	t.Run("UnmarshalBinary", func(t *testing.T) {
		var back Tree
		require.NoError(t, back.UnmarshalBinary(data))
		assert.Equal(t, tree.Root, back.Root)

		assert.ErrorIs(t, back.UnmarshalBinary(data[:len(data)-1]), ErrTruncatedData)
	})

	t.Run("EmptyTree", func(t *testing.T) {
		empty := &Tree{}
		data, err := empty.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, empty.Size(), len(data))
	})
}

func TestDump(t *testing.T) {
	tree := &Tree{Root: sampleTree()}
	out := tree.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "version 1, marker 0x04030201, "), lines[0])
	for _, want := range []string{
		`ids_properties/comment: char[29] "Example IDS for serialization"`,
		`ids_properties/homogeneous_time: int[] 4 bytes`,
		`time: double[2] 16 bytes`,
		`profiles_1d: aos[3]`,
		`  [0]`,
		`    t_i_average: double[3] 24 bytes`,
		`    ion: aos[2]`,
		`        label: char[1] "D"`,
		`  [1]`,
		`    grid: complex[1 2] 32 bytes`,
	} {
		assert.Contains(t, out, want+"\n")
	}
	assert.NotContains(t, out, "!error")

	bad := DumpString([]byte{9})
	assert.Contains(t, bad, "!error:")
	assert.ErrorIs(t, Dump(nil, nil), ErrNilIO)
}
