package idscodec

import (
	"encoding"
	"io"
)

// Sizer reports the exact encoded size, so callers can allocate once.
type Sizer interface {
	Size() int
}

// Marshaler encodes into a new slice, a stream, or a caller's buffer.
type Marshaler interface {
	encoding.BinaryMarshaler
	io.WriterTo

	// MarshalTo encodes into buf and returns io.ErrShortBuffer when buf
	// holds fewer than Size bytes.
	MarshalTo(buf []byte) (int, error)
}

// Unmarshaler decodes from a slice or a stream.
type Unmarshaler interface {
	encoding.BinaryUnmarshaler
	io.ReaderFrom
}

// Codec is implemented by Tree and by Fixed headers.
type Codec interface {
	Sizer
	Marshaler
	Unmarshaler
}
