package idscodec

import (
	"encoding/binary"
	"io"
)

// Reader decodes primitives from a BytesReader at absolute offsets.
// It tracks the first error; subsequent reads become no-ops.
type Reader struct {
	r     *BytesReader
	err   error // first error encountered.
	order binary.ByteOrder
}

// NewReader creates a Reader over r in native byte order.
func NewReader(r *BytesReader) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	return &Reader{r: r, order: Native}, nil
}

// WithByteOrder allows setting a custom byte order and returns
// the configured for chaining.
func (r *Reader) WithByteOrder(order binary.ByteOrder) *Reader {
	r.order = order
	return r
}

func (r *Reader) Err() error  { return r.err }
func (r *Reader) Offset() int { return r.r.N }
func (r *Reader) Size() int   { return r.r.Size() }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// SeekTo moves the read position to the absolute offset off.
func (r *Reader) SeekTo(off int) {
	if r.err != nil {
		return
	}
	_, err := r.r.Seek(int64(off), io.SeekStart)
	r.setError(err)
}

// next is an internal helper returning a view of the next n bytes.
func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	b, err := r.r.Next(n)
	r.setError(err)
	return b
}

// ReadBytes reads n bytes and returns a new byte slice owned by the caller.
func (r *Reader) ReadBytes(n int) []byte {
	b := r.next(n)
	if r.err != nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// --- Primitive Read Operations ---

func (r *Reader) ReadUint8(dest *uint8) {
	if r.err != nil {
		return
	}
	b, err := r.r.ReadByte()
	if err == nil {
		*dest = b
	} else {
		r.err = io.ErrUnexpectedEOF
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	buf := r.next(4)
	if r.err == nil {
		*dest = r.order.Uint32(buf)
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	buf := r.next(4)
	if r.err == nil {
		*dest = int32(r.order.Uint32(buf))
	}
}
