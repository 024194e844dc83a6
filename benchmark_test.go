package idscodec

import (
	"testing"
)

// benchTree is an equilibrium-sized IDS: a few root leaves and an AoS of
// profiles, each with a nested AoS.
func benchTree() Structure {
	profiles := make(AoS, 64)
	for i := range profiles {
		ions := make(AoS, 4)
		for j := range ions {
			ions[j] = Structure{
				{Name: "z_ion", Value: Leaf{Type: Double, Data: doubles(float64(j))}},
				{Name: "density", Value: double1d(make([]float64, 100)...)},
			}
		}
		profiles[i] = Structure{
			{Name: "t_i_average", Value: double1d(make([]float64, 100)...)},
			{Name: "ion", Value: ions},
		}
	}
	return Structure{
		{Name: "ids_properties/comment", Value: chars("Example IDS for serialization")},
		{Name: "time", Value: double1d(make([]float64, 64)...)},
		{Name: "profiles_1d", Value: profiles},
	}
}

func BenchmarkEncodeTree(b *testing.B) {
	root := benchTree()
	tree := &Tree{Root: root}
	b.SetBytes(int64(tree.Size()))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = EncodeTree(root, WithSizeHint(tree.Size()))
	}
}

func BenchmarkDecodeTree(b *testing.B) {
	buf, err := EncodeTree(benchTree())
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(buf)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeTree(buf)
	}
}

// BenchmarkDecodeRandomElement reads one field of one element, the access
// pattern of a caller that only needs a slice of the data.
func BenchmarkDecodeRandomElement(b *testing.B) {
	buf, err := EncodeTree(benchTree())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec := NewDecoder()
		_ = dec.ImportBuffer(buf)
		_ = dec.BeginOperation()
		_, _ = dec.BeginArrayOfStructures("profiles_1d")
		_ = dec.SetElementIndex(i % 64)
		_, _, _ = dec.ReadField("t_i_average")
		_ = dec.EndArrayOfStructures()
		_ = dec.EndOperation()
	}
}

type benchHeader struct {
	Magic  uint32
	Length uint64
	Sum    uint64
}

func BenchmarkFixedMarshalTo(b *testing.B) {
	c := &Fixed[benchHeader]{Payload: benchHeader{Magic: 1, Length: 100}}
	buf := make([]byte, c.Size())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.MarshalTo(buf)
	}
}

func BenchmarkFixedUnmarshalBinary(b *testing.B) {
	c := &Fixed[benchHeader]{Payload: benchHeader{Magic: 1, Length: 100}}
	data, _ := c.MarshalBinary()
	var c2 Fixed[benchHeader]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c2.UnmarshalBinary(data)
	}
}
