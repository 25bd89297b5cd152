// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

//nolint:gochecknoglobals
var (
	commaKey  = tag.MustKeyword("comma")
	ifKey     = tag.MustKeyword("if")
	lambdaKey = tag.MustKeyword("lambda")
	quasiKey  = tag.MustKeyword("quasi")
	quoteKey  = tag.MustKeyword("quote")
	spliceKey = tag.MustKeyword("splice")
)

// lexFrame is the compile-time view of a lambda being compiled.
type lexFrame struct {
	fn     tag.T
	params []tag.T
}

// Compile rewrites the form expr for evaluation. Lexical variables become
// frame references, special forms are expanded and globally bound
// constants are substituted.
func (e *Env) Compile(expr tag.T) (tag.T, error) {
	switch types.Of(expr) {
	case types.Cons:
		return e.compileList(expr)
	case types.Symbol:
		return e.compileSymbol(expr)
	}

	return expr, nil
}

func (e *Env) compileArgs(args tag.T) (tag.T, error) {
	if !e.IsProperList(args) {
		return tag.Nil, exception.New(args, exception.Syntax, "mu:compile")
	}

	compiled := []tag.T{}

	for _, arg := range e.Slice(args) {
		c, err := e.Compile(arg)
		if err != nil {
			return tag.Nil, err
		}

		compiled = append(compiled, c)
	}

	return e.List(compiled...)
}

func (e *Env) compileIf(expr tag.T) (tag.T, error) {
	args := e.Slice(e.Cdr(expr))
	if len(args) != 3 || !e.IsProperList(e.Cdr(expr)) {
		return tag.Nil, exception.New(expr, exception.Syntax, "mu:compile")
	}

	thunks := []tag.T{e.ifFn, args[0]}

	for _, branch := range args[1:] {
		thunk, err := e.List(lambdaKey, tag.Nil, branch)
		if err != nil {
			return tag.Nil, err
		}

		thunks = append(thunks, thunk)
	}

	form, err := e.List(thunks...)
	if err != nil {
		return tag.Nil, err
	}

	return e.Compile(form)
}

func (e *Env) compileLambda(expr tag.T) (tag.T, error) {
	if types.Of(e.Cdr(expr)) != types.Cons {
		return tag.Nil, exception.New(expr, exception.Syntax, "mu:compile")
	}

	params, body := e.Car(e.Cdr(expr)), e.Cdr(e.Cdr(expr))

	if !IsList(params) || !e.IsProperList(params) {
		return tag.Nil, exception.New(params, exception.Syntax, "mu:compile")
	}

	names := e.Slice(params)

	for i, p := range names {
		if types.Of(p) != types.Symbol {
			return tag.Nil, exception.New(p, exception.Type, "mu:compile")
		}

		for _, q := range names[:i] {
			if p == q {
				return tag.Nil, exception.New(p, exception.Syntax, "mu:compile")
			}
		}
	}

	// The function must exist before its body is compiled so that
	// references to parameters can name it.
	fn, err := e.MakeFunction(len(names), tag.Nil)
	if err != nil {
		return tag.Nil, err
	}

	e.lexenv = append(e.lexenv, lexFrame{fn: fn, params: names})

	form, err := e.compileArgs(body)

	e.lexenv = e.lexenv[:len(e.lexenv)-1]

	if err != nil {
		return tag.Nil, err
	}

	e.setFunctionForm(fn, form)

	return fn, nil
}

func (e *Env) compileList(expr tag.T) (tag.T, error) {
	head, args := e.Car(expr), e.Cdr(expr)

	switch types.Of(head) {
	case types.Keyword:
		switch head {
		case ifKey:
			return e.compileIf(expr)
		case lambdaKey:
			return e.compileLambda(expr)
		case quasiKey:
			return e.compileQuasi(expr)
		case quoteKey:
			return expr, nil
		case commaKey, spliceKey:
			return tag.Nil, exception.New(expr, exception.Quasi, "mu:compile")
		}

		return tag.Nil, exception.New(head, exception.Type, "mu:compile")
	case types.Symbol:
		compiled, err := e.compileArgs(args)
		if err != nil {
			return tag.Nil, err
		}

		if !e.IsBound(head) {
			return e.Cons(head, compiled)
		}

		fn := e.SymbolValue(head)
		if types.Of(fn) != types.Function {
			return tag.Nil, exception.New(head, exception.Type, "mu:compile")
		}

		return e.Cons(fn, compiled)
	case types.Function:
		compiled, err := e.compileArgs(args)
		if err != nil {
			return tag.Nil, err
		}

		return e.Cons(head, compiled)
	case types.Cons:
		fn, err := e.Compile(head)
		if err != nil {
			return tag.Nil, err
		}

		if types.Of(fn) != types.Function {
			return tag.Nil, exception.New(head, exception.Type, "mu:compile")
		}

		compiled, err := e.compileArgs(args)
		if err != nil {
			return tag.Nil, err
		}

		return e.Cons(fn, compiled)
	}

	return tag.Nil, exception.New(head, exception.Type, "mu:compile")
}

func (e *Env) compileSymbol(sym tag.T) (tag.T, error) {
	for i := len(e.lexenv) - 1; i >= 0; i-- {
		for n, p := range e.lexenv[i].params {
			if p == sym {
				return e.List(e.frameRefFn, e.lexenv[i].fn, tag.MustFixnum(n))
			}
		}
	}

	if e.IsBound(sym) {
		switch v := e.SymbolValue(sym); types.Of(v) {
		case types.Cons, types.Symbol:
		default:
			return v, nil
		}
	}

	return sym, nil
}

func envCompile(e *Env, fr *Frame) error {
	v, err := e.Compile(fr.Argv[0])
	fr.Value = v

	return err
}
