package idscodec

import (
	"encoding/binary"
	"math"
)

func doubles(vs ...float64) []byte {
	b := make([]byte, 8*len(vs))
	for i, v := range vs {
		Native.PutUint64(b[8*i:], math.Float64bits(v))
	}
	return b
}

func int32s(vs ...int32) []byte {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		Native.PutUint32(b[4*i:], uint32(v))
	}
	return b
}

func chars(s string) Leaf {
	return Leaf{Type: Char, Shape: []int{len(s)}, Data: []byte(s)}
}

func double1d(vs ...float64) Leaf {
	return Leaf{Type: Double, Shape: []int{len(vs)}, Data: doubles(vs...)}
}

// foreignOrder is the byte order this machine does not use.
func foreignOrder() binary.ByteOrder {
	if Native.Uint16([]byte{1, 0}) == 1 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
