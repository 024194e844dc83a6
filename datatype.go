package idscodec

import "fmt"

// DataType identifies the element type of a leaf field.
type DataType int32

const (
	Char    DataType = 50
	Integer DataType = 51
	Double  DataType = 52
	Complex DataType = 53
)

// Width returns the size of one element in bytes, or 0 for an unknown type.
func (t DataType) Width() int {
	switch t {
	case Char:
		return 1
	case Integer:
		return 4
	case Double:
		return 8
	case Complex:
		return 16
	}
	return 0
}

// Valid reports whether t is one of the four defined data types.
func (t DataType) Valid() bool { return t.Width() != 0 }

func (t DataType) String() string {
	switch t {
	case Char:
		return "char"
	case Integer:
		return "int"
	case Double:
		return "double"
	case Complex:
		return "complex"
	}
	return fmt.Sprintf("datatype(%d)", int32(t))
}

// ByteLength returns Width × product(shape). A nil or empty shape is a scalar.
// It returns -1 for an unknown type, a negative dimension, or a payload that
// would not fit in one blob.
func ByteLength(t DataType, shape []int) int {
	w := uint64(t.Width())
	if w == 0 {
		return -1
	}
	n, ok := product(shape, maxBlobLen/w)
	if !ok {
		return -1
	}
	return int(n * w)
}

// checkShape validates that a leaf payload matches its declared type and shape.
func checkShape(t DataType, shape []int, n int) error {
	if !t.Valid() {
		return fmt.Errorf("unknown %v", t)
	}
	for i, d := range shape {
		if d < 0 {
			return fmt.Errorf("negative dimension %d at axis %d", d, i)
		}
	}
	want := ByteLength(t, shape)
	if want < 0 {
		return fmt.Errorf("%v%v exceeds the %d-byte blob limit", t, shape, maxBlobLen)
	}
	if want != n {
		return fmt.Errorf("%v%v needs %d bytes, got %d", t, shape, want, n)
	}
	return nil
}
