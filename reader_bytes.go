package idscodec

import "io"

// BytesReader reads a finished buffer in place. Next hands out views that
// alias B; only Read and the Reader's ReadBytes copy.
type BytesReader struct {
	B []byte // finished buffer, never modified
	N int    // read position
}

// NewBytesReader creates a BytesReader positioned at the start of b.
func NewBytesReader(b []byte) *BytesReader {
	return &BytesReader{B: b}
}

// Read implements [io.Reader].
func (r *BytesReader) Read(p []byte) (int, error) {
	rest := r.B[min(r.N, len(r.B)):]
	if len(rest) == 0 {
		return 0, io.EOF
	}
	n := copy(p, rest)
	r.N += n
	return n, nil
}

// ReadByte implements [io.ByteReader].
func (r *BytesReader) ReadByte() (byte, error) {
	if r.Available() == 0 {
		return 0, io.EOF
	}
	r.N++
	return r.B[r.N-1], nil
}

// Next returns a view of the next n bytes and moves past them. A short
// buffer moves the position to the end and reports io.ErrUnexpectedEOF.
func (r *BytesReader) Next(n int) ([]byte, error) {
	switch {
	case n < 0:
		return nil, ErrInvalidRead
	case n > r.Available():
		r.N = len(r.B)
		return nil, io.ErrUnexpectedEOF
	}
	start := r.N
	r.N += n
	return r.B[start:r.N:r.N], nil
}

// Seek implements [io.Seeker]. Positions past the end are rejected: an
// element never starts there.
func (r *BytesReader) Seek(offset int64, whence int) (int64, error) {
	base := int64(0)
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(r.N)
	case io.SeekEnd:
		base = int64(len(r.B))
	default:
		return 0, ErrInvalidWhence
	}
	abs := base + offset
	if abs < 0 || abs > int64(len(r.B)) {
		return 0, ErrInvalidSeek
	}
	r.N = int(abs)
	return abs, nil
}

// Size returns the length of the whole buffer.
func (r *BytesReader) Size() int { return len(r.B) }

// Available returns how many bytes are left to read.
func (r *BytesReader) Available() int { return max(len(r.B)-r.N, 0) }
