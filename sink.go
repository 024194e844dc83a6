package idscodec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// VectorHandle identifies a vector opened with Sink.AppendVector.
type VectorHandle struct {
	depth int
	off   int
}

type openVector struct {
	off   int
	count int
}

// Sink is the append-only builder for tree buffers. Vectors are written
// depth-first: the count and body length of a vector are reserved when it is
// opened and patched when it is closed.
type Sink struct {
	w    *Writer
	buf  *Buffer
	open []openVector
	done bool
}

// NewSink creates a Sink with an initial capacity hint.
func NewSink(size int) *Sink {
	buf := NewBuffer(size)
	w, _ := NewWriter(buf)
	return &Sink{w: w, buf: buf}
}

// WithByteOrder changes the byte order of every integer the sink writes.
// Readers only accept buffers written in their own native order.
func (s *Sink) WithByteOrder(order binary.ByteOrder) *Sink {
	s.w.WithByteOrder(order)
	return s
}

// Err returns the first error the sink encountered.
func (s *Sink) Err() error { return s.w.Err() }

// Depth returns the number of vectors currently open.
func (s *Sink) Depth() int { return len(s.open) }

// Len returns the number of bytes written so far.
func (s *Sink) Len() int { return s.w.Count() }

// element counts one more element into the innermost open vector.
func (s *Sink) element() {
	if n := len(s.open); n > 0 {
		s.open[n-1].count++
	}
}

// AppendByte writes a raw byte outside the element grammar. It is only valid
// before the first vector is opened.
func (s *Sink) AppendByte(b byte) {
	if len(s.open) > 0 || s.w.Count() != 0 {
		s.w.setError(fmt.Errorf("%w: raw byte after elements", ErrMalformed))
		return
	}
	s.w.WriteUint8(b)
}

// AppendVector opens a nested vector and returns its handle.
func (s *Sink) AppendVector() VectorHandle {
	s.element()
	off := s.w.Count()
	s.w.WriteUint8(uint8(KindVector))
	s.w.WriteUint32(0) // count, patched on close
	s.w.WriteUint32(0) // body length, patched on close
	s.open = append(s.open, openVector{off: off})
	return VectorHandle{depth: len(s.open) - 1, off: off}
}

// CloseVector closes the innermost open vector, which must be h.
func (s *Sink) CloseVector(h VectorHandle) error {
	if err := s.w.Err(); err != nil {
		return err
	}
	n := len(s.open)
	if n == 0 || h.depth != n-1 || s.open[n-1].off != h.off {
		s.w.setError(fmt.Errorf("%w: closing vector at %d out of order", ErrMalformed, h.off))
		return s.w.Err()
	}
	v := s.open[n-1]
	s.open = s.open[:n-1]

	body := s.w.Count() - (v.off + vectorHeaderSize)
	if uint64(body) > math.MaxUint32 || uint64(v.count) > math.MaxUint32 {
		s.w.setError(fmt.Errorf("%w: vector at %d exceeds 4GiB", ErrMalformed, v.off))
		return s.w.Err()
	}
	s.w.PatchUint32(v.off+tagSize, uint32(v.count))
	s.w.PatchUint32(v.off+tagSize+lenSize, uint32(body))
	return s.w.Err()
}

// AppendKey writes a NUL-terminated key.
func (s *Sink) AppendKey(key string) {
	s.element()
	s.w.WriteUint8(uint8(KindKey))
	s.w.WriteCString(key)
}

// AppendInt writes a 4-byte signed integer.
func (s *Sink) AppendInt(v int32) {
	s.element()
	s.w.WriteUint8(uint8(KindInt))
	s.w.WriteInt32(v)
}

// AppendInts writes a length-prefixed run of 4-byte integers.
func (s *Sink) AppendInts(v []int) {
	s.element()
	s.w.WriteUint8(uint8(KindInts))
	s.w.WriteUint32(uint32(len(v)))
	for _, x := range v {
		if x < math.MinInt32 || x > math.MaxInt32 {
			s.w.setError(fmt.Errorf("%w: %d does not fit in 32 bits", ErrMalformed, x))
			return
		}
		s.w.WriteInt32(int32(x))
	}
}

// AppendBlob writes a length-prefixed run of raw bytes.
func (s *Sink) AppendBlob(b []byte) {
	s.element()
	if uint64(len(b)) > math.MaxUint32 {
		s.w.setError(fmt.Errorf("%w: blob of %d bytes exceeds 4GiB", ErrMalformed, len(b)))
		return
	}
	s.w.WriteUint8(uint8(KindBlob))
	s.w.WriteUint32(uint32(len(b)))
	s.w.WriteBytes(b)
}

// Finish returns the encoded bytes. All vectors must be closed. The sink
// gives up the buffer; further appends are errors.
func (s *Sink) Finish() ([]byte, error) {
	if err := s.w.Err(); err != nil {
		return nil, err
	}
	if s.done {
		return nil, ErrNoBuilder
	}
	if len(s.open) != 0 {
		return nil, fmt.Errorf("%w: %d vectors still open", ErrMalformed, len(s.open))
	}
	s.done = true
	out := s.buf.Bytes()
	s.buf.B = nil
	s.w.setError(ErrNoBuilder)
	return out, nil
}
