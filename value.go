package idscodec

import (
	"fmt"
	"io"
)

// Leaf is a typed, shaped array of raw element bytes.
type Leaf struct {
	Type  DataType
	Shape []int
	Data  []byte
}

// Rank returns the number of dimensions; 0 is a scalar.
func (l Leaf) Rank() int { return len(l.Shape) }

// Len returns the number of elements, or -1 when the shape is invalid.
func (l Leaf) Len() int {
	n, ok := product(l.Shape, maxBlobLen)
	if !ok {
		return -1
	}
	return int(n)
}

// Value is a Leaf or an AoS.
type Value interface{ isValue() }

func (Leaf) isValue() {}
func (AoS) isValue()  {}

// Member is one named entry of a Structure.
type Member struct {
	Name  string
	Value Value
}

// Structure is an ordered list of named values: the root of an IDS or one
// element of an array of structures.
type Structure []Member

// AoS is an array of structures.
type AoS []Structure

// Get returns the value called name. As on the wire, when a name repeats
// the last entry wins.
func (s Structure) Get(name string) (Value, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Name == name {
			return s[i].Value, true
		}
	}
	return nil, false
}

// EncodeTree writes root in one traversal and returns the exported buffer.
// An empty AoS writes nothing and therefore does not come back from
// DecodeTree.
func EncodeTree(root Structure, opts ...Option) ([]byte, error) {
	enc := NewEncoder(opts...)
	if err := enc.BeginOperation(); err != nil {
		return nil, err
	}
	if err := encodeStructure(enc, root); err != nil {
		return nil, err
	}
	if err := enc.EndOperation(); err != nil {
		return nil, err
	}
	return enc.ExportBuffer()
}

func encodeStructure(enc *Encoder, s Structure) error {
	for _, m := range s {
		switch v := m.Value.(type) {
		case Leaf:
			if err := enc.WriteField(m.Name, v.Type, v.Shape, v.Data); err != nil {
				return err
			}
		case AoS:
			if err := enc.BeginArrayOfStructures(m.Name, len(v)); err != nil {
				return err
			}
			for i, el := range v {
				if err := enc.SetElementIndex(i); err != nil {
					return err
				}
				if err := encodeStructure(enc, el); err != nil {
					return err
				}
			}
			if err := enc.EndArrayOfStructures(); err != nil {
				return err
			}
		default:
			return enc.fail(misusef("EncodeTree", "member %q has unsupported value %T", m.Name, m.Value))
		}
	}
	return nil
}

// DecodeTree reads a whole buffer back into a Structure without a schema.
func DecodeTree(buf []byte, opts ...Option) (Structure, error) {
	dec := NewDecoder(opts...)
	if err := dec.ImportBuffer(buf); err != nil {
		return nil, err
	}
	if err := dec.BeginOperation(); err != nil {
		return nil, err
	}
	root, err := decodeStructure(dec)
	if err != nil {
		return nil, err
	}
	if err := dec.EndOperation(); err != nil {
		return nil, err
	}
	return root, nil
}

func decodeStructure(dec *Decoder) (Structure, error) {
	entries, err := dec.Entries()
	if err != nil {
		return nil, err
	}
	s := make(Structure, 0, len(entries))
	for _, e := range entries {
		if !e.AoS {
			leaf, _, err := dec.ReadField(e.Name)
			if err != nil {
				return nil, err
			}
			s = append(s, Member{Name: e.Name, Value: leaf})
			continue
		}
		n, err := dec.BeginArrayOfStructures(e.Name)
		if err != nil {
			return nil, err
		}
		aos := make(AoS, n)
		for i := range aos {
			if err := dec.SetElementIndex(i); err != nil {
				return nil, err
			}
			if aos[i], err = decodeStructure(dec); err != nil {
				return nil, err
			}
		}
		if err := dec.EndArrayOfStructures(); err != nil {
			return nil, err
		}
		if n > 0 {
			s = append(s, Member{Name: e.Name, Value: aos})
		}
	}
	return s, nil
}

// Tree is a whole IDS held in memory. It implements Codec.
type Tree struct {
	Root Structure
}

var _ Codec = (*Tree)(nil)

// Size returns the exact length of the exported buffer.
func (t *Tree) Size() int {
	return tagSize + vectorHeaderSize + tagSize + intSize + structureSize(t.Root)
}

func structureSize(s Structure) int {
	n := 0
	for _, m := range s {
		switch v := m.Value.(type) {
		case Leaf:
			n += tagSize + len(m.Name) + 1
			n += tagSize + intSize
			n += tagSize + lenSize + intSize*len(v.Shape)
			n += tagSize + lenSize + len(v.Data)
		case AoS:
			if len(v) == 0 {
				continue
			}
			n += tagSize + len(m.Name) + 1
			n += vectorHeaderSize
			for _, el := range v {
				n += vectorHeaderSize + structureSize(el)
			}
		}
	}
	return n
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *Tree) MarshalBinary() ([]byte, error) {
	return EncodeTree(t.Root, WithSizeHint(t.Size()))
}

// MarshalTo encodes into p, which must hold at least Size bytes.
func (t *Tree) MarshalTo(p []byte) (int, error) {
	return MarshalToGeneric(t, p)
}

// WriteTo implements io.WriterTo.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	if w == nil {
		return 0, ErrNilIO
	}
	return WriteToGeneric(t, w)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *Tree) UnmarshalBinary(data []byte) error {
	root, err := DecodeTree(data)
	if err != nil {
		return err
	}
	t.Root = root
	return nil
}

// ReadFrom reads r to EOF and decodes the result.
func (t *Tree) ReadFrom(r io.Reader) (int64, error) {
	if r == nil {
		return 0, ErrNilIO
	}
	return ReadFromGeneric(t, r)
}

// String renders the tree in the Dump format.
func (t *Tree) String() string {
	buf, err := t.MarshalBinary()
	if err != nil {
		return fmt.Sprintf("<invalid tree: %v>", err)
	}
	return DumpString(buf)
}
