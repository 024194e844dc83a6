package idscodec

import (
	"strings"

	"go.uber.org/zap"
)

type encFrame struct {
	vec    VectorHandle // root vector, or the vector of the current element
	aos    VectorHandle // the AoS vector itself (aos scopes only)
	target int          // last index requested with SetElementIndex
}

// Encoder is the write side of a session: it turns one root-to-root
// traversal into a tree buffer. An Encoder is not safe for concurrent use
// and serves exactly one operation.
//
// The first error is latched; every later call returns it.
type Encoder struct {
	stack    scopeStack[encFrame]
	sink     *Sink
	out      []byte
	started  bool
	err      error
	sizeHint int
	sugar    *zap.SugaredLogger
}

// NewEncoder creates an Encoder ready for BeginOperation.
func NewEncoder(opts ...Option) *Encoder {
	o := buildOptions(opts)
	return &Encoder{sizeHint: o.sizeHint, sugar: o.logger.Sugar()}
}

// Err returns the latched error, if any.
func (e *Encoder) Err() error { return e.err }

func (e *Encoder) fail(err error) error {
	if e.err == nil && err != nil {
		e.err = err
		e.sugar.Debugw("encoder failed", "path", e.stack.path(), "error", err)
	}
	return e.err
}

// check latches a sink error.
func (e *Encoder) check() error {
	if e.sink != nil {
		if err := e.sink.Err(); err != nil {
			return e.fail(err)
		}
	}
	return e.err
}

// BeginOperation opens the root scope and writes the endian marker.
func (e *Encoder) BeginOperation() error {
	if e.err != nil {
		return e.err
	}
	if e.started {
		return e.fail(misusef("BeginOperation", "operation already started"))
	}
	e.started = true
	e.sink = NewSink(e.sizeHint)
	e.sink.AppendByte(Version)
	root := e.sink.AppendVector()
	e.sink.AppendInt(int32(Marker))
	e.stack.push(scope[encFrame]{kind: operationScope, index: -1, state: encFrame{vec: root}})
	return e.check()
}

// receiver returns the innermost scope able to take a new element, after
// moving an AoS to the element the caller last selected.
func (e *Encoder) receiver(op string) (*scope[encFrame], error) {
	sc, err := e.stack.open(op)
	if err != nil {
		return nil, err
	}
	if sc.degenerate() {
		return nil, misusef(op, "array of structures %q was declared empty", sc.name)
	}
	if sc.kind == aosScope {
		e.reconcile(sc)
	}
	return sc, nil
}

// reconcile closes and opens element vectors until the current element is
// the requested one. Elements skipped over stay empty.
func (e *Encoder) reconcile(sc *scope[encFrame]) {
	for sc.index < sc.state.target {
		e.sink.CloseVector(sc.state.vec)
		sc.state.vec = e.sink.AppendVector()
		sc.index++
	}
}

func checkName(op, name string) error {
	switch {
	case name == "":
		return misusef(op, "empty name")
	case strings.IndexByte(name, 0) >= 0:
		return misusef(op, "name %q contains NUL", name)
	}
	return nil
}

// WriteField appends a leaf to the innermost open scope. len(data) must
// equal ByteLength(t, shape).
func (e *Encoder) WriteField(name string, t DataType, shape []int, data []byte) error {
	const op = "WriteField"
	if e.err != nil {
		return e.err
	}
	if err := checkName(op, name); err != nil {
		return e.fail(err)
	}
	if err := checkShape(t, shape, len(data)); err != nil {
		return e.fail(misusef(op, "field %q: %v", name, err))
	}
	if _, err := e.receiver(op); err != nil {
		return e.fail(err)
	}
	e.sink.AppendKey(name)
	e.sink.AppendInt(int32(t))
	e.sink.AppendInts(shape)
	e.sink.AppendBlob(data)
	return e.check()
}

// BeginArrayOfStructures opens an AoS of size elements with element 0
// selected. A size of zero or less writes nothing at all; the scope still
// has to be closed with EndArrayOfStructures.
func (e *Encoder) BeginArrayOfStructures(name string, size int) error {
	const op = "BeginArrayOfStructures"
	if e.err != nil {
		return e.err
	}
	if err := checkName(op, name); err != nil {
		return e.fail(err)
	}
	if _, err := e.receiver(op); err != nil {
		return e.fail(err)
	}
	if size <= 0 {
		e.stack.push(scope[encFrame]{kind: aosScope, name: name, index: -1})
		return nil
	}
	e.sink.AppendKey(name)
	aos := e.sink.AppendVector()
	elem := e.sink.AppendVector()
	e.stack.push(scope[encFrame]{
		kind:  aosScope,
		name:  name,
		size:  size,
		state: encFrame{vec: elem, aos: aos},
	})
	return e.check()
}

// SetElementIndex selects the element subsequent writes go to. Indices only
// move forward; the element vectors in between are emitted empty on the
// next write.
func (e *Encoder) SetElementIndex(i int) error {
	const op = "SetElementIndex"
	if e.err != nil {
		return e.err
	}
	sc, err := e.stack.aos(op)
	if err != nil {
		return e.fail(err)
	}
	switch {
	case sc.degenerate():
		return e.fail(misusef(op, "array of structures %q was declared empty", sc.name))
	case i < 0 || i >= sc.size:
		return e.fail(misusef(op, "index %d outside %q of size %d", i, sc.name, sc.size))
	case i < sc.state.target:
		return e.fail(misusef(op, "index %d after %d in %q: writes only move forward", i, sc.state.target, sc.name))
	}
	sc.state.target = i
	return nil
}

// EndArrayOfStructures closes the innermost AoS. Elements up to the declared
// size that were never written are emitted empty so the size round-trips.
func (e *Encoder) EndArrayOfStructures() error {
	const op = "EndArrayOfStructures"
	if e.err != nil {
		return e.err
	}
	sc, err := e.stack.aos(op)
	if err != nil {
		return e.fail(err)
	}
	if sc.degenerate() {
		e.stack.pop()
		return nil
	}
	sc.state.target = sc.size - 1
	e.reconcile(sc)
	e.sink.CloseVector(sc.state.vec)
	e.sink.CloseVector(sc.state.aos)
	e.stack.pop()
	return e.check()
}

// EndOperation closes the root scope and finishes the buffer.
func (e *Encoder) EndOperation() error {
	const op = "EndOperation"
	if e.err != nil {
		return e.err
	}
	sc, err := e.stack.operation(op)
	if err != nil {
		return e.fail(err)
	}
	e.sink.CloseVector(sc.state.vec)
	e.stack.pop()
	out, err := e.sink.Finish()
	if err != nil {
		return e.fail(err)
	}
	e.out = out
	e.sink = nil
	return nil
}

// ExportBuffer hands the finished buffer, version byte first, to the caller.
// It can be called once, after EndOperation.
func (e *Encoder) ExportBuffer() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.out == nil {
		return nil, ErrNoBuilder
	}
	out := e.out
	e.out = nil
	return out, nil
}
