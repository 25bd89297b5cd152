// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// Cons creates a new cons with car and cdr.
func (e *Env) Cons(car, cdr tag.T) (tag.T, error) {
	return e.evict(tag.ConsKind, []tag.T{car, cdr}, nil)
}

// Car returns the head of the list c. The head of nil is nil.
func (e *Env) Car(c tag.T) tag.T {
	if c.Kind() != tag.ConsKind {
		return tag.Nil
	}

	return e.word(c, 0)
}

// Cdr returns the tail of the list c. The tail of nil is nil.
func (e *Env) Cdr(c tag.T) tag.T {
	if c.Kind() != tag.ConsKind {
		return tag.Nil
	}

	return e.word(c, 1)
}

// List creates a proper list of ts.
func (e *Env) List(ts ...tag.T) (tag.T, error) {
	return e.ListDotted(tag.Nil, ts...)
}

// ListDotted creates a list of ts ending in tail.
func (e *Env) ListDotted(tail tag.T, ts ...tag.T) (tag.T, error) {
	l := tail

	for i := len(ts) - 1; i >= 0; i-- {
		c, err := e.Cons(ts[i], l)
		if err != nil {
			return tag.Nil, err
		}

		l = c
	}

	return l, nil
}

// Slice returns the elements of the list l. A dotted tail is ignored.
func (e *Env) Slice(l tag.T) []tag.T {
	s := []tag.T{}

	for ; l.Kind() == tag.ConsKind; l = e.Cdr(l) {
		s = append(s, e.Car(l))
	}

	return s
}

// IsList returns true if t is nil or a cons.
func IsList(t tag.T) bool {
	return t == tag.Nil || t.Kind() == tag.ConsKind
}

// IsProperList returns true if the list l ends in nil.
func (e *Env) IsProperList(l tag.T) bool {
	for ; l.Kind() == tag.ConsKind; l = e.Cdr(l) {
	}

	return l == tag.Nil
}

// Length returns the number of conses in the list l.
func (e *Env) Length(l tag.T) int {
	n := 0
	for ; l.Kind() == tag.ConsKind; l = e.Cdr(l) {
		n++
	}

	return n
}

// Nthcdr returns the result of taking the cdr of l n times.
func (e *Env) Nthcdr(n int, l tag.T) tag.T {
	for ; n > 0 && l.Kind() == tag.ConsKind; n-- {
		l = e.Cdr(l)
	}

	return l
}

// Append concatenates the lists in lists. The last list is shared, not copied.
func (e *Env) Append(lists []tag.T) (tag.T, error) {
	if len(lists) == 0 {
		return tag.Nil, nil
	}

	elements := []tag.T{}

	for _, l := range lists[:len(lists)-1] {
		if !IsList(l) {
			return tag.Nil, exception.New(l, exception.Type, "mu:append")
		}

		elements = append(elements, e.Slice(l)...)
	}

	return e.ListDotted(lists[len(lists)-1], elements...)
}

func consAppend(e *Env, fr *Frame) error {
	if err := e.check("mu:append", fr, types.List); err != nil {
		return err
	}

	v, err := e.Append(e.Slice(fr.Argv[0]))
	fr.Value = v

	return err
}

func consCar(e *Env, fr *Frame) error {
	if err := e.check("mu:car", fr, types.List); err != nil {
		return err
	}

	fr.Value = e.Car(fr.Argv[0])

	return nil
}

func consCdr(e *Env, fr *Frame) error {
	if err := e.check("mu:cdr", fr, types.List); err != nil {
		return err
	}

	fr.Value = e.Cdr(fr.Argv[0])

	return nil
}

func consCons(e *Env, fr *Frame) error {
	v, err := e.Cons(fr.Argv[0], fr.Argv[1])
	fr.Value = v

	return err
}

func consLength(e *Env, fr *Frame) error {
	if err := e.check("mu:length", fr, types.List); err != nil {
		return err
	}

	fr.Value = tag.MustFixnum(e.Length(fr.Argv[0]))

	return nil
}

func consNth(e *Env, fr *Frame) error {
	if err := e.check("mu:nth", fr, types.Fixnum, types.List); err != nil {
		return err
	}

	n := fr.Argv[0].Int()
	if n < 0 {
		return exception.New(fr.Argv[0], exception.Range, "mu:nth")
	}

	fr.Value = e.Car(e.Nthcdr(int(n), fr.Argv[1]))

	return nil
}

func consNthcdr(e *Env, fr *Frame) error {
	if err := e.check("mu:nthcdr", fr, types.Fixnum, types.List); err != nil {
		return err
	}

	n := fr.Argv[0].Int()
	if n < 0 {
		return exception.New(fr.Argv[0], exception.Range, "mu:nthcdr")
	}

	fr.Value = e.Nthcdr(int(n), fr.Argv[1])

	return nil
}
