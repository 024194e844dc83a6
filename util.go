package idscodec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/constraints"
)

var (
	BE = binary.BigEndian
	LE = binary.LittleEndian
	// Native is the byte order of tree buffers. Writers never convert it.
	Native binary.ByteOrder = binary.NativeEndian
	// Order is the byte order of fixed-size headers (see Fixed).
	Order binary.ByteOrder = BE
)

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// product multiplies the dimensions of a shape. The empty product is 1 and
// a zero dimension makes it 0. ok is false for a negative dimension or when
// the product exceeds limit.
func product[T constraints.Integer](dims []T, limit uint64) (n uint64, ok bool) {
	for _, d := range dims {
		if d == 0 {
			return 0, true
		}
	}
	n = 1
	for _, d := range dims {
		if d < 0 || n > limit/uint64(d) {
			return 0, false
		}
		n *= uint64(d)
	}
	return n, true
}

// keyEnd returns the offset of the NUL terminating the key starting at off,
// or -1 when the buffer ends first.
func keyEnd(buf []byte, off int) int {
	if off >= len(buf) {
		return -1
	}
	i := bytes.IndexByte(buf[off:], 0)
	if i < 0 {
		return -1
	}
	return off + i
}

// MAX_PADDING bounds how many trailing bytes CheckBufferNotZeros inspects.
const MAX_PADDING = 1024 // 1KB

// CheckBufferNotZeros verifies that the bytes left over after a fixed-size
// decode are zero padding and not a second, unparsed payload.
func CheckBufferNotZeros(trailing []byte) error {
	if len(trailing) > MAX_PADDING {
		return fmt.Errorf("%w: exceeds maximum expected size of %d bytes", ErrTrailingData, MAX_PADDING)
	}
	for i, b := range trailing {
		if b != 0 {
			return fmt.Errorf("%w: found non-zero byte 0x%02x at offset %d", ErrTrailingData, b, i)
		}
	}
	return nil
}
