package idscodec

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Writer appends tagged wire elements to a Buffer.
// It tracks the first error that occurs; after an error all subsequent
// write operations become no-ops.
type Writer struct {
	b     *Buffer
	err   error // first error encountered. Subsequent writes become no-ops.
	order binary.ByteOrder
}

// NewWriter creates a Writer appending to b in native byte order.
func NewWriter(b *Buffer) (*Writer, error) {
	if b == nil {
		return nil, ErrNilIO
	}
	return &Writer{b: b, order: Native}, nil
}

// WithByteOrder allows setting a custom byte order and returns
// the configured for chaining.
func (w *Writer) WithByteOrder(order binary.ByteOrder) *Writer {
	w.order = order
	return w
}

func (w *Writer) Count() int { return w.b.Len() }
func (w *Writer) Err() error { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// PatchUint32 overwrites a length prefix written earlier at off.
func (w *Writer) PatchUint32(off int, v uint32) {
	if w.err != nil {
		return
	}
	if off < 0 || off+lenSize > w.b.Len() {
		w.setError(fmt.Errorf("%w: patch at %d outside %d written bytes", ErrInvalidSeek, off, w.b.Len()))
		return
	}
	w.order.PutUint32(w.b.B[off:], v)
}

// --- Primitive Write Operations ---

func (w *Writer) WriteUint8(v uint8) {
	if w.err != nil {
		return
	}
	w.setError(w.b.WriteByte(v))
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	w.order.PutUint32(buf[:], v)
	_, err := w.b.Write(buf[:])
	w.setError(err)
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(buf []byte) {
	if len(buf) == 0 || w.err != nil {
		return
	}
	_, err := w.b.Write(buf)
	w.setError(err)
}

// WriteCString writes s followed by a NUL terminator.
func (w *Writer) WriteCString(s string) {
	if w.err != nil {
		return
	}
	if strings.IndexByte(s, 0) >= 0 {
		w.setError(fmt.Errorf("%w: key %q contains NUL", ErrMalformed, s))
		return
	}
	_, err := w.b.WriteString(s)
	w.setError(err)
	w.setError(w.b.WriteByte(0))
}
