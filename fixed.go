package idscodec

import (
	"encoding/binary"
	"fmt"
	"io"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the cost of reflection in `binary.Size` on every call.
// It is shared by every Fixed instantiation and safe for concurrent use.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// Fixed is a Codec for a struct made only of fixed-size fields, encoded
// in Order (big-endian). Storage layers use it for frame headers that must
// read the same on every platform, unlike tree buffers.
//
// Constraint: Payload MUST NOT contain slices, maps, or strings.
type Fixed[Payload any] struct {
	Payload Payload
}

var _ Codec = (*Fixed[struct{}])(nil)

// Size returns the fixed size of the payload in bytes.
func (c *Fixed[Payload]) Size() int {
	t := reflect.TypeOf((*Payload)(nil)).Elem()
	size, _ := sizeCache.LoadOrCompute(t, func() (int, bool) {
		return binary.Size(&c.Payload), false
	})
	return size
}

// MarshalBinary implements `encoding.BinaryMarshaler`.
func (c *Fixed[Payload]) MarshalBinary() ([]byte, error) {
	buf := make([]byte, c.Size())
	if _, err := binary.Encode(buf, Order, &c.Payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return buf, nil
}

// UnmarshalBinary implements `encoding.BinaryUnmarshaler`. Bytes past the
// payload must be zero padding.
func (c *Fixed[Payload]) UnmarshalBinary(data []byte) error {
	n, err := binary.Decode(data, Order, &c.Payload)
	if err != nil {
		return ErrTruncatedData // binary.Decode only fails when data is too short
	}
	if len(data) > n {
		return CheckBufferNotZeros(data[n:])
	}
	return nil
}

// ReadFrom implements `io.ReaderFrom`.
func (c *Fixed[Payload]) ReadFrom(r io.Reader) (int64, error) {
	if err := binary.Read(r, Order, &c.Payload); err != nil {
		return 0, err
	}
	return int64(c.Size()), nil
}

// WriteTo implements `io.WriterTo`.
func (c *Fixed[Payload]) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, Order, &c.Payload); err != nil {
		return 0, err
	}
	return int64(c.Size()), nil
}

// MarshalTo encodes the payload into p without allocating.
func (c *Fixed[Payload]) MarshalTo(p []byte) (int, error) {
	n, err := binary.Encode(p, Order, &c.Payload)
	if err != nil {
		return n, io.ErrShortBuffer // binary.Encode only fails when p is too small
	}
	return n, nil
}
