// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// Function images are [arity, form]. The form is nil for a stub, a
// vector #(namespace name offset) for a builtin or a list of body forms.

// MakeFunction creates a function.
func (e *Env) MakeFunction(arity int, form tag.T) (tag.T, error) {
	return e.evict(tag.FunctionKind, []tag.T{tag.MustFixnum(arity), form}, nil)
}

// FunctionArity returns the number of arguments fn requires.
func (e *Env) FunctionArity(fn tag.T) int {
	return int(e.word(fn, 0).Int())
}

// FunctionForm returns the body of fn.
func (e *Env) FunctionForm(fn tag.T) tag.T {
	return e.word(fn, 1)
}

// FunctionName returns the name of a builtin, or the empty string.
func (e *Env) FunctionName(fn tag.T) string {
	form := e.FunctionForm(fn)
	if types.Of(form) != types.Vector {
		return ""
	}

	name, _ := e.VectorRef(form, 1)

	return e.StringOf(name)
}

func (e *Env) setFunctionForm(fn, form tag.T) {
	e.rewrite(fn, e.word(fn, 0), form)
}
