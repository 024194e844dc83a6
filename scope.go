package idscodec

import (
	"strconv"
	"strings"
)

type scopeKind uint8

const (
	operationScope scopeKind = iota + 1
	aosScope
)

// scope is one level of open nesting. An aos scope with index >= 0 also
// stands for the element (structure) at that index; index -1 marks an AoS
// with no elements, whose operations are no-ops.
type scope[T any] struct {
	kind  scopeKind
	name  string
	index int
	size  int
	state T
}

func (s *scope[T]) degenerate() bool { return s.kind == aosScope && s.index < 0 }

// scopeStack is the traversal state machine shared by Encoder and Decoder.
// The caller drives it one call at a time, so nesting lives here and not on
// the Go call stack. Frames alternate Operation → Aos → Aos …, each Aos
// implying its current element.
type scopeStack[T any] struct {
	frames []scope[T]
}

func (s *scopeStack[T]) top() *scope[T] {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

func (s *scopeStack[T]) push(sc scope[T]) *scope[T] {
	s.frames = append(s.frames, sc)
	return &s.frames[len(s.frames)-1]
}

func (s *scopeStack[T]) pop() scope[T] {
	n := len(s.frames) - 1
	sc := s.frames[n]
	var zero scope[T]
	s.frames[n] = zero
	s.frames = s.frames[:n]
	return sc
}

// open returns the innermost scope that can receive fields: the operation,
// or an AoS element. op names the caller for the error message.
func (s *scopeStack[T]) open(op string) (*scope[T], error) {
	sc := s.top()
	if sc == nil {
		return nil, misusef(op, "no operation in progress")
	}
	return sc, nil
}

// aos returns the innermost scope, which must be an AoS.
func (s *scopeStack[T]) aos(op string) (*scope[T], error) {
	sc := s.top()
	switch {
	case sc == nil:
		return nil, misusef(op, "no operation in progress")
	case sc.kind != aosScope:
		return nil, misusef(op, "no array of structures is open")
	}
	return sc, nil
}

// operation returns the operation scope, which must be the only one open.
func (s *scopeStack[T]) operation(op string) (*scope[T], error) {
	sc := s.top()
	switch {
	case sc == nil:
		return nil, misusef(op, "no operation in progress")
	case sc.kind != operationScope:
		return nil, misusef(op, "array of structures %s still open", s.path())
	}
	return sc, nil
}

// path renders the open chain for messages, e.g. "profiles_1d[1]/ion[0]".
func (s *scopeStack[T]) path() string {
	var b strings.Builder
	for _, sc := range s.frames {
		if sc.kind != aosScope {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(sc.name)
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(sc.index))
		b.WriteByte(']')
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
