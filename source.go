package idscodec

import (
	"encoding/binary"
	"io"
	"math"
)

// Source is a read-only, random-access view over a finished tree buffer
// (the version byte already stripped). It borrows the slice it is given.
type Source struct {
	buf []byte
	r   *Reader
}

// NewSource creates a Source over body.
func NewSource(body []byte) *Source {
	r, _ := NewReader(NewBytesReader(body))
	return &Source{buf: body, r: r}
}

// WithByteOrder changes the byte order used for lengths and integers.
func (s *Source) WithByteOrder(order binary.ByteOrder) *Source {
	s.r.WithByteOrder(order)
	return s
}

// Err returns the first read error, if any.
func (s *Source) Err() error { return s.r.Err() }

// View is one parsed vector: the offsets of its elements. Building a View
// scans its direct children once; nested vectors are skipped by their
// body length and only parsed when asked for.
type View struct {
	src   *Source
	off   int
	stop  int
	elems []int
}

// Root parses the outermost vector, which must span the whole buffer.
func (s *Source) Root() (View, error) {
	v, err := s.vectorAt(0, len(s.buf))
	if err != nil {
		return View{}, err
	}
	if v.stop != len(s.buf) {
		return View{}, dataErrf(v.stop, ErrMalformed, "%d trailing bytes after root vector", len(s.buf)-v.stop)
	}
	return v, nil
}

// fail wraps the latched reader error (or err) with the offset it occurred at.
func (s *Source) fail(off int, err error, format string, args ...any) error {
	if rerr := s.r.Err(); rerr != nil {
		if rerr == io.ErrUnexpectedEOF {
			rerr = ErrTruncatedData
		}
		return dataErrf(off, rerr, format, args...)
	}
	return dataErrf(off, err, format, args...)
}

func (s *Source) header(off int) (count, body uint32) {
	var tag uint8
	s.r.SeekTo(off)
	s.r.ReadUint8(&tag)
	if s.r.Err() == nil && Kind(tag) != KindVector {
		s.r.setError(ErrMalformed)
		return 0, 0
	}
	s.r.ReadUint32(&count)
	s.r.ReadUint32(&body)
	return count, body
}

func (s *Source) vectorAt(off, limit int) (View, error) {
	count, body := s.header(off)
	if s.r.Err() != nil {
		return View{}, s.fail(off, ErrMalformed, "bad vector header")
	}
	start := off + vectorHeaderSize
	end := int64(start) + int64(body)
	if end > int64(limit) {
		return View{}, dataErrf(off, ErrTruncatedData, "vector body of %d bytes overruns its container", body)
	}
	// Every element is at least two bytes, so a count larger than that is
	// garbage and must not drive the allocation below.
	if int64(count) > int64(body)/2+1 {
		return View{}, dataErrf(off, ErrMalformed, "vector claims %d elements in %d bytes", count, body)
	}

	v := View{src: s, off: off, stop: int(end), elems: make([]int, 0, count)}
	p := start
	for i := uint32(0); i < count; i++ {
		v.elems = append(v.elems, p)
		next, err := s.skip(p, int(end))
		if err != nil {
			return View{}, err
		}
		p = next
	}
	if p != int(end) {
		return View{}, dataErrf(p, ErrMalformed, "vector at %d has %d unaccounted bytes", off, int(end)-p)
	}
	return v, nil
}

// skip returns the offset just past the element starting at p.
func (s *Source) skip(p, end int) (int, error) {
	if p >= end {
		return 0, dataErrf(p, ErrTruncatedData, "element missing")
	}
	var next int64
	switch k := Kind(s.buf[p]); k {
	case KindKey:
		e := keyEnd(s.buf[:end], p+tagSize)
		if e < 0 {
			return 0, dataErrf(p, ErrTruncatedData, "unterminated key")
		}
		next = int64(e) + 1
	case KindInt:
		next = int64(p) + tagSize + intSize
	case KindInts, KindBlob, KindVector:
		var n uint32
		s.r.SeekTo(p + tagSize)
		if k == KindVector {
			s.r.SeekTo(p + tagSize + lenSize)
		}
		s.r.ReadUint32(&n)
		if s.r.Err() != nil {
			return 0, s.fail(p, ErrTruncatedData, "%v length", k)
		}
		switch k {
		case KindInts:
			next = int64(p) + tagSize + lenSize + int64(n)*intSize
		case KindBlob:
			next = int64(p) + tagSize + lenSize + int64(n)
		default:
			next = int64(p) + vectorHeaderSize + int64(n)
		}
	default:
		return 0, dataErrf(p, ErrMalformed, "unknown element tag %d", uint8(k))
	}
	if next > int64(end) {
		return 0, dataErrf(p, ErrTruncatedData, "%v overruns its vector", Kind(s.buf[p]))
	}
	return int(next), nil
}

// Len returns the number of elements in the vector.
func (v View) Len() int { return len(v.elems) }

// Offset returns the position of the vector's tag in the buffer.
func (v View) Offset() int { return v.off }

// Kind returns the tag of element i, or KindInvalid when i is out of range.
func (v View) Kind(i int) Kind {
	if i < 0 || i >= len(v.elems) {
		return KindInvalid
	}
	return Kind(v.src.buf[v.elems[i]])
}

// seek positions the reader on the payload of element i after checking its kind.
func (v View) seek(i int, want Kind) (int, error) {
	if got := v.Kind(i); got != want {
		off := v.off
		if i >= 0 && i < len(v.elems) {
			off = v.elems[i]
		}
		return 0, dataErrf(off, ErrMalformed, "element %d is %v, want %v", i, got, want)
	}
	p := v.elems[i]
	v.src.r.SeekTo(p + tagSize)
	return p, nil
}

// Key returns element i as a key.
func (v View) Key(i int) (string, error) {
	p, err := v.seek(i, KindKey)
	if err != nil {
		return "", err
	}
	e := keyEnd(v.src.buf, p+tagSize)
	b := v.src.r.next(e - (p + tagSize))
	if v.src.r.Err() != nil {
		return "", v.src.fail(p, ErrTruncatedData, "key")
	}
	return string(b), nil
}

// Int returns element i as a 4-byte integer.
func (v View) Int(i int) (int32, error) {
	p, err := v.seek(i, KindInt)
	if err != nil {
		return 0, err
	}
	var x int32
	v.src.r.ReadInt32(&x)
	if v.src.r.Err() != nil {
		return 0, v.src.fail(p, ErrTruncatedData, "int")
	}
	return x, nil
}

// Ints returns element i as a slice of integers.
func (v View) Ints(i int) ([]int, error) {
	p, err := v.seek(i, KindInts)
	if err != nil {
		return nil, err
	}
	var n uint32
	v.src.r.ReadUint32(&n)
	switch {
	case v.src.r.Err() != nil:
		return nil, v.src.fail(p, ErrTruncatedData, "ints")
	case uint64(n) > math.MaxInt32:
		return nil, dataErrf(p, ErrMalformed, "ints length %d", n)
	case n == 0:
		return nil, nil
	}
	out := make([]int, 0, n)
	for j := uint32(0); j < n && v.src.r.Err() == nil; j++ {
		var x int32
		v.src.r.ReadInt32(&x)
		out = append(out, int(x))
	}
	if v.src.r.Err() != nil {
		return nil, v.src.fail(p, ErrTruncatedData, "ints")
	}
	return out, nil
}

// Blob returns a copy of element i's bytes; the caller owns the result.
func (v View) Blob(i int) ([]byte, error) {
	p, err := v.seek(i, KindBlob)
	if err != nil {
		return nil, err
	}
	var n uint32
	v.src.r.ReadUint32(&n)
	b := v.src.r.ReadBytes(int(n))
	if v.src.r.Err() != nil {
		return nil, v.src.fail(p, ErrTruncatedData, "blob")
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

// Vector parses element i as a nested vector.
func (v View) Vector(i int) (View, error) {
	if got := v.Kind(i); got != KindVector {
		return View{}, dataErrf(v.off, ErrMalformed, "element %d is %v, want %v", i, got, KindVector)
	}
	return v.src.vectorAt(v.elems[i], v.stop)
}
