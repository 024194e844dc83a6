package idscodec

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type decFrame struct {
	vec      View           // the operation root or the current element
	elements View           // the AoS vector (aos scopes only)
	fields   map[string]int // field name → index of its key element in vec
}

// Decoder is the read side of a session. It borrows an imported buffer and
// answers name lookups in the innermost open scope in O(1); AoS elements
// are reached by direct index without scanning their predecessors.
//
// A Decoder is not safe for concurrent use. The first error is latched.
type Decoder struct {
	stack   scopeStack[decFrame]
	src     *Source
	started bool
	err     error
	sugar   *zap.SugaredLogger
}

// NewDecoder creates a Decoder waiting for ImportBuffer.
func NewDecoder(opts ...Option) *Decoder {
	o := buildOptions(opts)
	return &Decoder{sugar: o.logger.Sugar()}
}

// Err returns the latched error, if any.
func (d *Decoder) Err() error { return d.err }

func (d *Decoder) fail(err error) error {
	if d.err == nil && err != nil {
		d.err = err
		d.sugar.Debugw("decoder failed", "path", d.stack.path(), "error", err)
	}
	return d.err
}

// ImportBuffer takes the buffer to read. buf[0] must be the protocol version;
// the rest is borrowed until the operation ends.
func (d *Decoder) ImportBuffer(buf []byte) error {
	if d.err != nil {
		return d.err
	}
	if d.src != nil || d.started {
		return d.fail(misusef("ImportBuffer", "buffer already imported"))
	}
	if len(buf) == 0 {
		return d.fail(dataErrf(0, ErrTruncatedData, "empty buffer"))
	}
	if buf[0] != Version {
		return d.fail(&VersionError{Found: buf[0]})
	}
	d.src = NewSource(buf[1:])
	return nil
}

// BeginOperation checks the endian marker and opens the root scope.
func (d *Decoder) BeginOperation() error {
	const op = "BeginOperation"
	if d.err != nil {
		return d.err
	}
	switch {
	case d.started:
		return d.fail(misusef(op, "operation already started"))
	case d.src == nil:
		return d.fail(misusef(op, "no buffer imported"))
	}
	d.started = true
	if err := checkMarker(d.src.buf); err != nil {
		return d.fail(err)
	}
	root, err := d.src.Root()
	if err != nil {
		return d.fail(err)
	}
	fields, err := d.index(root, 1)
	if err != nil {
		return d.fail(err)
	}
	d.stack.push(scope[decFrame]{
		kind:  operationScope,
		index: -1,
		state: decFrame{vec: root, fields: fields},
	})
	return nil
}

// index maps field names to positions for the vector v, starting at element
// start. A leaf takes four elements (key, type, shape, data), an AoS two
// (key, vector). A repeated name resolves to its last occurrence.
func (d *Decoder) index(v View, start int) (map[string]int, error) {
	fields := make(map[string]int, (v.Len()-start)/2)
	for i := start; i < v.Len(); {
		name, err := v.Key(i)
		if err != nil {
			return nil, err
		}
		stride := 2
		switch v.Kind(i + 1) {
		case KindInt:
			if v.Kind(i+2) != KindInts || v.Kind(i+3) != KindBlob {
				return nil, dataErrf(v.Offset(), ErrMalformed, "field %q is not a type/shape/data triple", name)
			}
			stride = 4
		case KindVector:
		default:
			return nil, dataErrf(v.Offset(), ErrMalformed, "field %q has %v payload", name, v.Kind(i+1))
		}
		if prev, dup := fields[name]; dup {
			d.sugar.Debugw("duplicate field name, later entry wins", "field", name, "first", prev, "second", i)
		}
		fields[name] = i
		i += stride
	}
	return fields, nil
}

// ReadField looks up name in the innermost open scope. A missing field
// reports false and no error. The returned Data is a copy.
func (d *Decoder) ReadField(name string) (Leaf, bool, error) {
	const op = "ReadField"
	if d.err != nil {
		return Leaf{}, false, d.err
	}
	sc, err := d.stack.open(op)
	if err != nil {
		return Leaf{}, false, d.fail(err)
	}
	if sc.degenerate() {
		return Leaf{}, false, nil
	}
	i, ok := sc.state.fields[name]
	if !ok {
		return Leaf{}, false, nil
	}
	leaf, err := readLeaf(sc.state.vec, i)
	if err != nil {
		return Leaf{}, false, d.fail(err)
	}
	return leaf, true, nil
}

func readLeaf(v View, i int) (Leaf, error) {
	if v.Kind(i+1) != KindInt {
		return Leaf{}, dataErrf(v.Offset(), ErrMalformed, "element %d is an array of structures, not a leaf", i)
	}
	t, err := v.Int(i + 1)
	if err != nil {
		return Leaf{}, err
	}
	shape, err := v.Ints(i + 2)
	if err != nil {
		return Leaf{}, err
	}
	data, err := v.Blob(i + 3)
	if err != nil {
		return Leaf{}, err
	}
	if err := checkShape(DataType(t), shape, len(data)); err != nil {
		return Leaf{}, dataErrf(v.Offset(), ErrMalformed, "element %d: %v", i, err)
	}
	return Leaf{Type: DataType(t), Shape: shape, Data: data}, nil
}

// BeginArrayOfStructures opens the AoS called name and returns its size with
// element 0 selected. A missing or empty AoS returns 0; the scope must
// still be closed, and everything inside it reads as absent.
func (d *Decoder) BeginArrayOfStructures(name string) (int, error) {
	const op = "BeginArrayOfStructures"
	if d.err != nil {
		return 0, d.err
	}
	sc, err := d.stack.open(op)
	if err != nil {
		return 0, d.fail(err)
	}
	empty := scope[decFrame]{kind: aosScope, name: name, index: -1}
	if sc.degenerate() {
		d.stack.push(empty)
		return 0, nil
	}
	i, ok := sc.state.fields[name]
	if !ok {
		d.stack.push(empty)
		return 0, nil
	}
	if sc.state.vec.Kind(i+1) != KindVector {
		return 0, d.fail(dataErrf(sc.state.vec.Offset(), ErrMalformed, "field %q is a leaf, not an array of structures", name))
	}
	elements, err := sc.state.vec.Vector(i + 1)
	if err != nil {
		return 0, d.fail(err)
	}
	if elements.Len() == 0 {
		d.stack.push(empty)
		return 0, nil
	}
	elem, fields, err := d.element(elements, 0)
	if err != nil {
		return 0, d.fail(err)
	}
	d.stack.push(scope[decFrame]{
		kind:  aosScope,
		name:  name,
		size:  elements.Len(),
		state: decFrame{vec: elem, elements: elements, fields: fields},
	})
	return elements.Len(), nil
}

func (d *Decoder) element(elements View, i int) (View, map[string]int, error) {
	elem, err := elements.Vector(i)
	if err != nil {
		return View{}, nil, err
	}
	fields, err := d.index(elem, 0)
	if err != nil {
		return View{}, nil, err
	}
	return elem, fields, nil
}

// SetElementIndex selects element i of the innermost AoS. Any order is
// allowed. On an empty AoS it does nothing.
func (d *Decoder) SetElementIndex(i int) error {
	const op = "SetElementIndex"
	if d.err != nil {
		return d.err
	}
	sc, err := d.stack.aos(op)
	if err != nil {
		return d.fail(err)
	}
	switch {
	case sc.degenerate(), i == sc.index:
		return nil
	case i < 0 || i >= sc.size:
		return d.fail(misusef(op, "index %d outside %q of size %d", i, sc.name, sc.size))
	}
	sc.state.fields = nil
	elem, fields, err := d.element(sc.state.elements, i)
	if err != nil {
		return d.fail(err)
	}
	sc.index = i
	sc.state.vec = elem
	sc.state.fields = fields
	return nil
}

// EndArrayOfStructures closes the innermost AoS.
func (d *Decoder) EndArrayOfStructures() error {
	if d.err != nil {
		return d.err
	}
	if _, err := d.stack.aos("EndArrayOfStructures"); err != nil {
		return d.fail(err)
	}
	d.stack.pop()
	return nil
}

// EndOperation closes the root scope and releases the imported buffer.
func (d *Decoder) EndOperation() error {
	if d.err != nil {
		return d.err
	}
	if _, err := d.stack.operation("EndOperation"); err != nil {
		return d.fail(err)
	}
	d.stack.pop()
	d.src = nil
	return nil
}

// Entry names one field of the innermost open scope.
type Entry struct {
	Name string
	AoS  bool // an array of structures rather than a leaf
}

// Entries lists the fields of the innermost open scope in the order they
// were written, so a caller without a schema can walk the tree.
func (d *Decoder) Entries() ([]Entry, error) {
	if d.err != nil {
		return nil, d.err
	}
	sc, err := d.stack.open("Entries")
	if err != nil {
		return nil, d.fail(err)
	}
	if sc.degenerate() {
		return nil, nil
	}
	type pos struct {
		i int
		e Entry
	}
	all := make([]pos, 0, len(sc.state.fields))
	for name, i := range sc.state.fields {
		all = append(all, pos{i, Entry{Name: name, AoS: sc.state.vec.Kind(i+1) == KindVector}})
	}
	slices.SortFunc(all, func(a, b pos) int { return a.i - b.i })
	out := make([]Entry, len(all))
	for j, p := range all {
		out[j] = p.e
	}
	return out, nil
}
