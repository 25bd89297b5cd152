// Released under an MIT license. See LICENSE.

package core

import (
	"sync"

	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// Frame is a single function application.
type Frame struct {
	Func  tag.T
	Argv  []tag.T
	Value tag.T
}

// lexical holds a stack of active frames for each function.
type lexical struct {
	sync.RWMutex
	index  map[tag.T]int
	stacks [][]*Frame
}

func newLexical() *lexical {
	return &lexical{index: map[tag.T]int{}}
}

func (l *lexical) depth(fn tag.T) int {
	l.RLock()
	defer l.RUnlock()

	n, ok := l.index[fn]
	if !ok {
		return 0
	}

	return len(l.stacks[n])
}

func (l *lexical) each(fn func(*Frame)) {
	l.RLock()
	defer l.RUnlock()

	for _, s := range l.stacks {
		for _, fr := range s {
			fn(fr)
		}
	}
}

func (l *lexical) fork() *lexical {
	l.RLock()
	defer l.RUnlock()

	c := newLexical()
	for fn, n := range l.index {
		c.index[fn] = len(c.stacks)
		c.stacks = append(c.stacks, append([]*Frame(nil), l.stacks[n]...))
	}

	return c
}

// frame returns frame n of fn's stack, counting from the bottom.
func (l *lexical) frame(fn tag.T, n int) (*Frame, bool) {
	l.RLock()
	defer l.RUnlock()

	i, ok := l.index[fn]
	if !ok || n < 0 || n >= len(l.stacks[i]) {
		return nil, false
	}

	return l.stacks[i][n], true
}

func (l *lexical) push(fr *Frame) {
	l.Lock()
	defer l.Unlock()

	n, ok := l.index[fr.Func]
	if !ok {
		n = len(l.stacks)
		l.index[fr.Func] = n
		l.stacks = append(l.stacks, nil)
	}

	l.stacks[n] = append(l.stacks[n], fr)
}

func (l *lexical) pop(fn tag.T) (*Frame, bool) {
	l.Lock()
	defer l.Unlock()

	n, ok := l.index[fn]
	if !ok || len(l.stacks[n]) == 0 {
		return nil, false
	}

	s := l.stacks[n]
	fr := s[len(s)-1]
	l.stacks[n] = s[:len(s)-1]

	return fr, true
}

// top returns the innermost active frame for fn.
func (l *lexical) top(fn tag.T) (*Frame, bool) {
	l.RLock()
	defer l.RUnlock()

	n, ok := l.index[fn]
	if !ok || len(l.stacks[n]) == 0 {
		return nil, false
	}

	return l.stacks[n][len(l.stacks[n])-1], true
}

func (l *lexical) truncate(fn tag.T, depth int) {
	l.Lock()
	defer l.Unlock()

	n, ok := l.index[fn]
	if ok && len(l.stacks[n]) > depth {
		l.stacks[n] = l.stacks[n][:depth]
	}
}

// FrameRef returns argument index of the innermost active frame for fn.
func (e *Env) FrameRef(fn tag.T, index int) (tag.T, error) {
	fr, ok := e.lexical.top(fn)
	if !ok {
		return tag.Nil, exception.New(fn, exception.Range, "mu:%frame-ref")
	}

	if index < 0 || index >= len(fr.Argv) {
		return tag.Nil, exception.New(tag.MustFixnum(index), exception.Range, "mu:%frame-ref")
	}

	return fr.Argv[index], nil
}

func (e *Env) pushFrame(fr *Frame) {
	e.dynamic.push(fr.Func, e.lexical.depth(fr.Func))
	e.lexical.push(fr)
}

func (e *Env) popFrame(fn tag.T) (*Frame, bool) {
	fr, ok := e.lexical.pop(fn)
	if ok {
		e.dynamic.drop(fn)
	}

	return fr, ok
}

// frameRef resolves a compiled lexical reference.
func frameRef(e *Env, fr *Frame) error {
	if err := e.check("mu:%frame-ref", fr, types.Function, types.Fixnum); err != nil {
		return err
	}

	v, err := e.FrameRef(fr.Argv[0], int(fr.Argv[1].Int()))
	fr.Value = v

	return err
}

// framePush pushes a frame given as (function . argument-vector).
func framePush(e *Env, fr *Frame) error {
	if err := e.check("mu:%frame-push", fr, types.Cons); err != nil {
		return err
	}

	fn, argv := e.Car(fr.Argv[0]), e.Cdr(fr.Argv[0])
	if types.Of(fn) != types.Function {
		return exception.New(fn, exception.Type, "mu:%frame-push")
	}

	if types.Of(argv) != types.Vector || e.VectorType(argv) != types.Any {
		return exception.New(argv, exception.Type, "mu:%frame-push")
	}

	e.pushFrame(&Frame{Func: fn, Argv: e.VectorElements(argv), Value: tag.Nil})

	fr.Value = fr.Argv[0]

	return nil
}

func framePop(e *Env, fr *Frame) error {
	if err := e.check("mu:%frame-pop", fr, types.Function); err != nil {
		return err
	}

	if _, ok := e.popFrame(fr.Argv[0]); !ok {
		return exception.New(fr.Argv[0], exception.Range, "mu:%frame-pop")
	}

	fr.Value = fr.Argv[0]

	return nil
}

// frameStack returns the active frames, innermost first, as (function . argument-vector) pairs.
func frameStack(e *Env, fr *Frame) error {
	frames := []tag.T{}

	for _, m := range e.dynamic.snapshot() {
		f, ok := e.lexical.frame(m.fn, m.depth)
		if !ok {
			continue
		}

		argv, err := e.MakeVector(f.Argv)
		if err != nil {
			return err
		}

		pair, err := e.Cons(f.Func, argv)
		if err != nil {
			return err
		}

		frames = append([]tag.T{pair}, frames...)
	}

	l, err := e.List(frames...)
	fr.Value = l

	return err
}
