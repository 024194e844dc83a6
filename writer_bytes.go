package idscodec

// growChunk is the granularity Buffer grows its capacity in.
const growChunk = 4096

// Buffer is an append-only byte buffer that grows on demand and allows
// already-written bytes to be patched in place.
type Buffer struct {
	B []byte // written data
}

// NewBuffer creates a Buffer with at least size bytes of capacity.
func NewBuffer(size int) *Buffer {
	return &Buffer{B: make([]byte, 0, Roundup(max(size, 1), growChunk))}
}

func (w *Buffer) grow(n int) {
	if len(w.B)+n <= cap(w.B) {
		return
	}
	// Double to amortize appends, rounded so small trees stay in one page.
	size := Roundup(max(2*cap(w.B), len(w.B)+n), growChunk)
	b := make([]byte, len(w.B), size)
	copy(b, w.B)
	w.B = b
}

// Write implements the io.Writer interface.
func (w *Buffer) Write(p []byte) (int, error) {
	w.grow(len(p))
	w.B = append(w.B, p...)
	return len(p), nil
}

// WriteString implements the io.StringWriter interface for efficiency.
func (w *Buffer) WriteString(s string) (int, error) {
	w.grow(len(s))
	w.B = append(w.B, s...)
	return len(s), nil
}

// WriteByte implements the io.ByteWriter interface for efficiency.
func (w *Buffer) WriteByte(c byte) error {
	w.grow(1)
	w.B = append(w.B, c)
	return nil
}

// Len returns the number of bytes written.
func (w *Buffer) Len() int { return len(w.B) }

// Bytes returns a slice view of the written data.
func (w *Buffer) Bytes() []byte { return w.B }
