// Released under an MIT license. See LICENSE.

package core

import (
	"strings"

	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// UnwindProtect applies thunk. If it raises, the frame stacks are unwound
// to where they were on entry and handler is applied to the exception's
// object, condition keyword and source.
func (e *Env) UnwindProtect(handler, thunk tag.T) (tag.T, error) {
	depth := e.dynamic.depth()

	v, err := e.Funcall(thunk)
	if err == nil {
		return v, nil
	}

	ex, ok := exception.As(err)
	if !ok {
		return tag.Nil, err
	}

	e.unwind(depth)

	e.log.Debug("exception caught", "condition", ex.Condition.String(), "source", ex.Source)

	source, serr := e.SourceSymbol(ex.Source)
	if serr != nil {
		return tag.Nil, serr
	}

	return e.Funcall(handler, ex.Object, ex.Condition.Keyword(), source)
}

// SourceSymbol returns the symbol named by a source such as "mu:car", or
// the source as a string if no such symbol exists.
func (e *Env) SourceSymbol(source string) (tag.T, error) {
	if i := strings.IndexByte(source, ':'); i >= 0 {
		if ns, ok := e.FindNamespace(source[:i]); ok {
			if sym, ok := e.FindSymbol(ns, source[i+1:]); ok {
				return sym, nil
			}
		}
	}

	return e.MakeString(source)
}

func exceptionRaise(e *Env, fr *Frame) error {
	if err := e.check("mu:raise", fr, types.Any, types.Keyword); err != nil {
		return err
	}

	c, ok := exception.FromKeyword(fr.Argv[1])
	if !ok {
		return exception.New(fr.Argv[1], exception.Type, "mu:raise")
	}

	return exception.New(fr.Argv[0], c, "mu:raise")
}

func exceptionUnwindProtect(e *Env, fr *Frame) error {
	if err := e.check("mu:unwind-protect", fr, types.Function, types.Function); err != nil {
		return err
	}

	v, err := e.UnwindProtect(fr.Argv[0], fr.Argv[1])
	fr.Value = v

	return err
}
