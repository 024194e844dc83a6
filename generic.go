package idscodec

import (
	"bytes"
	"encoding"
	"io"
)

// ReadFromGeneric provides a generic, non-streaming `io.ReaderFrom` implementation.
// WARNING: This is NOT a streaming implementation. It reads the entire `io.Reader`
// into a memory buffer before unmarshalling. A tree buffer has to be complete
// before its root vector can be parsed anyway.
func ReadFromGeneric[T encoding.BinaryUnmarshaler](v T, r io.Reader) (int64, error) {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	n, err := buf.ReadFrom(r)
	if err != nil {
		return n, err
	}
	return n, v.UnmarshalBinary(buf.Bytes())
}

// WriteToGeneric provides a generic `io.WriterTo` implementation.
// It adapts a type that can marshal to a byte slice to the streaming io.Writer interface.
func WriteToGeneric[T encoding.BinaryMarshaler](v T, w io.Writer) (int64, error) {
	buf, err := v.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	if err != nil {
		return int64(n), err
	}
	if n < len(buf) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

// MarshalToGeneric provides a fallback implementation for the MarshalTo method.
func MarshalToGeneric[T interface {
	Size() int
	encoding.BinaryMarshaler
}](v T, p []byte) (int, error) {
	if len(p) < v.Size() {
		return 0, io.ErrShortBuffer
	}
	buf, err := v.MarshalBinary()
	if err != nil {
		return 0, err
	}
	if len(buf) > len(p) {
		return 0, io.ErrShortBuffer
	}
	return copy(p, buf), nil
}
