// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// compileQuasi expands (:quasi template) into calls to append and cons
// and compiles the result.
func (e *Env) compileQuasi(expr tag.T) (tag.T, error) {
	rest := e.Cdr(expr)
	if types.Of(rest) != types.Cons || e.Cdr(rest) != tag.Nil {
		return tag.Nil, exception.New(expr, exception.Syntax, "mu:compile")
	}

	form, err := e.expand(e.Car(rest))
	if err != nil {
		return tag.Nil, err
	}

	return e.Compile(form)
}

// unquoted returns the operand of (:comma x) or (:splice x).
func (e *Env) unquoted(t, which tag.T) (tag.T, bool) {
	if types.Of(t) != types.Cons || e.Car(t) != which {
		return tag.Nil, false
	}

	return e.Car(e.Cdr(t)), true
}

func (e *Env) expand(t tag.T) (tag.T, error) {
	if types.Of(t) != types.Cons {
		return e.Cons(quoteKey, t)
	}

	if x, ok := e.unquoted(t, commaKey); ok {
		return x, nil
	}

	if _, ok := e.unquoted(t, spliceKey); ok {
		return tag.Nil, exception.New(t, exception.Quasi, "mu:compile")
	}

	parts := []tag.T{}

	for rest := t; rest != tag.Nil; {
		if types.Of(rest) != types.Cons {
			// Dotted tail.
			q, err := e.Cons(quoteKey, rest)
			if err != nil {
				return tag.Nil, err
			}

			parts = append(parts, q)

			break
		}

		if x, ok := e.unquoted(rest, commaKey); ok {
			parts = append(parts, x)

			break
		}

		if _, ok := e.unquoted(rest, spliceKey); ok {
			return tag.Nil, exception.New(rest, exception.Quasi, "mu:compile")
		}

		el := e.Car(rest)

		part, err := e.expandElement(el)
		if err != nil {
			return tag.Nil, err
		}

		parts = append(parts, part)
		rest = e.Cdr(rest)
	}

	// Build (cons p0 (cons p1 ... nil)) to hand append its list of lists.
	lists := tag.Nil

	for i := len(parts) - 1; i >= 0; i-- {
		l, err := e.List(e.consFn, parts[i], lists)
		if err != nil {
			return tag.Nil, err
		}

		lists = l
	}

	return e.List(e.appendFn, lists)
}

func (e *Env) expandElement(el tag.T) (tag.T, error) {
	if x, ok := e.unquoted(el, spliceKey); ok {
		return x, nil
	}

	if x, ok := e.unquoted(el, commaKey); ok {
		return e.List(e.consFn, x, tag.Nil)
	}

	x, err := e.expand(el)
	if err != nil {
		return tag.Nil, err
	}

	return e.List(e.consFn, x, tag.Nil)
}
