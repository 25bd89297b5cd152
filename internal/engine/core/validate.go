// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// check raises :type, on behalf of source, for the first argument in fr
// that does not have the corresponding type in want.
func (e *Env) check(source string, fr *Frame, want ...types.T) error {
	for i, w := range want {
		if i >= len(fr.Argv) {
			return exception.New(fr.Func, exception.Arity, source)
		}

		if !e.is(fr.Argv[i], w) {
			return exception.New(fr.Argv[i], exception.Type, source)
		}
	}

	return nil
}

func (e *Env) is(t tag.T, want types.T) bool {
	actual := types.Of(t)

	switch want {
	case types.Any:
		return true
	case types.Keyword:
		return actual == types.Keyword || actual == types.Null
	case types.List:
		return actual == types.Null || actual == types.Cons
	case types.String:
		return actual == types.Vector && e.VectorType(t) == types.Char
	case types.Symbol:
		return actual == types.Symbol || actual == types.Keyword || actual == types.Null
	}

	return actual == want
}
