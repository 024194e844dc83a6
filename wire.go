package idscodec

import (
	"fmt"
	"math"
)

const (
	// Version is the protocol byte prepended to every exported buffer.
	Version byte = 1

	// Marker is written as the first root element in native byte order.
	// A little-endian writer emits 01 02 03 04; a reader on the other byte
	// order sees 0x01020304 and refuses the buffer.
	Marker uint32 = 0x04030201
)

// Kind is the one-byte tag that starts every element on the wire.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindKey          // NUL-terminated bytes
	KindInt          // 4-byte signed integer
	KindInts         // uint32 count, count × int32
	KindBlob         // uint32 length, raw bytes
	KindVector       // uint32 count, uint32 body length, body
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindInt:
		return "int"
	case KindInts:
		return "ints"
	case KindBlob:
		return "blob"
	case KindVector:
		return "vector"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

const (
	tagSize          = 1
	intSize          = 4
	lenSize          = 4
	vectorHeaderSize = tagSize + 2*lenSize

	// maxBlobLen is the largest payload a blob length prefix can carry and
	// this platform can address.
	maxBlobLen uint64 = min(math.MaxUint32, math.MaxInt)

	// markerOffset is where the marker's payload sits inside the root vector,
	// relative to the start of the buffer with the version byte stripped.
	markerOffset = vectorHeaderSize + tagSize
)

// Inspect validates the version byte and the endian marker of an exported
// buffer without parsing the tree.
func Inspect(buf []byte) error {
	if len(buf) == 0 {
		return dataErrf(0, ErrTruncatedData, "empty buffer")
	}
	if buf[0] != Version {
		return &VersionError{Found: buf[0]}
	}
	return checkMarker(buf[1:])
}

// checkMarker reads the marker before any length prefix is trusted, so a
// byte-swapped buffer is reported as such and not as garbage lengths.
func checkMarker(body []byte) error {
	if len(body) < markerOffset+intSize {
		return dataErrf(0, ErrTruncatedData, "buffer too short for root marker")
	}
	if Kind(body[0]) != KindVector || Kind(body[vectorHeaderSize]) != KindInt {
		return dataErrf(0, ErrMalformed, "root does not start with a marker")
	}
	if found := Native.Uint32(body[markerOffset:]); found != Marker {
		return &EndiannessError{Expected: Marker, Found: found}
	}
	return nil
}
