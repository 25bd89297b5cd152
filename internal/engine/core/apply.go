// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/system/interrupt"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// Apply applies fn to the arguments in fr. A symbol is applied through its value.
func (e *Env) Apply(fr *Frame, fn tag.T) (tag.T, error) {
	// The interrupt belongs to the foreground evaluation. Detached
	// futures abort but leave the flag for it.
	if interrupt.Pending() {
		if !e.forked {
			interrupt.Clear()
		}

		return tag.Nil, exception.New(fn, exception.SigInt, "mu:apply")
	}

	switch types.Of(fn) {
	case types.Symbol:
		if !e.IsBound(fn) {
			return tag.Nil, exception.New(fn, exception.Unbound, "mu:apply")
		}

		return e.Apply(fr, e.SymbolValue(fn))
	case types.Function:
	default:
		return tag.Nil, exception.New(fn, exception.Type, "mu:apply")
	}

	if len(fr.Argv) != e.FunctionArity(fn) {
		return tag.Nil, exception.New(fn, exception.Arity, "mu:apply")
	}

	fr.Func = fn

	form := e.FunctionForm(fn)

	switch types.Of(form) {
	case types.Null:
		return tag.Nil, nil
	case types.Vector:
		fr.Value = tag.Nil
		err := e.natives[e.nativeOffset(fn)].Fn(e, fr)

		return fr.Value, err
	case types.Cons:
		return e.applyBody(fr, form)
	}

	return tag.Nil, exception.New(form, exception.Type, "mu:apply")
}

// ApplyList applies fn to the elements of the list args.
func (e *Env) ApplyList(fn, args tag.T) (tag.T, error) {
	return e.Apply(&Frame{Func: fn, Argv: e.Slice(args), Value: tag.Nil}, fn)
}

// Funcall applies fn to argv.
func (e *Env) Funcall(fn tag.T, argv ...tag.T) (tag.T, error) {
	return e.Apply(&Frame{Func: fn, Argv: argv, Value: tag.Nil}, fn)
}

// Eval evaluates the compiled form expr.
func (e *Env) Eval(expr tag.T) (tag.T, error) {
	switch types.Of(expr) {
	case types.Cons:
	case types.Symbol:
		if !e.IsBound(expr) {
			return tag.Nil, exception.New(expr, exception.Unbound, "mu:eval")
		}

		return e.SymbolValue(expr), nil
	default:
		return expr, nil
	}

	head := e.Car(expr)
	if head == quoteKey {
		return e.Cdr(expr), nil
	}

	fn := head

	switch types.Of(head) {
	case types.Function:
	case types.Symbol:
		if !e.IsBound(head) {
			return tag.Nil, exception.New(head, exception.Unbound, "mu:eval")
		}

		fn = e.SymbolValue(head)
		if types.Of(fn) != types.Function {
			return tag.Nil, exception.New(head, exception.Type, "mu:eval")
		}
	default:
		return tag.Nil, exception.New(head, exception.Type, "mu:eval")
	}

	// Evaluated arguments stay on the pending stack, where the collector
	// can see them, until the application returns.
	base := len(e.pending)
	defer func() {
		e.pending = e.pending[:base]
	}()

	for args := e.Cdr(expr); args.Kind() == tag.ConsKind; args = e.Cdr(args) {
		v, err := e.Eval(e.Car(args))
		if err != nil {
			return tag.Nil, err
		}

		e.pending = append(e.pending, v)
	}

	argv := append([]tag.T(nil), e.pending[base:]...)

	return e.Apply(&Frame{Func: fn, Argv: argv, Value: tag.Nil}, fn)
}

func (e *Env) applyBody(fr *Frame, body tag.T) (tag.T, error) {
	depth := e.dynamic.depth()

	e.pushFrame(fr)
	defer e.unwind(depth)

	value := tag.Nil

	for ; body.Kind() == tag.ConsKind; body = e.Cdr(body) {
		v, err := e.Eval(e.Car(body))
		if err != nil {
			return tag.Nil, err
		}

		value = v
	}

	fr.Value = value

	return value, nil
}

func envApply(e *Env, fr *Frame) error {
	if err := e.check("mu:apply", fr, types.Function, types.List); err != nil {
		return err
	}

	v, err := e.ApplyList(fr.Argv[0], fr.Argv[1])
	fr.Value = v

	return err
}

func envEval(e *Env, fr *Frame) error {
	v, err := e.Eval(fr.Argv[0])
	fr.Value = v

	return err
}

// envFix applies fn to its own result, starting from value, until the result stops changing.
func envFix(e *Env, fr *Frame) error {
	if err := e.check("mu:fix", fr, types.Function, types.Any); err != nil {
		return err
	}

	fn, value := fr.Argv[0], fr.Argv[1]

	for {
		next, err := e.Funcall(fn, value)
		if err != nil {
			return err
		}

		if next == value {
			fr.Value = value

			return nil
		}

		value = next
	}
}

func envIf(e *Env, fr *Frame) error {
	if err := e.check("mu:%if", fr, types.Any, types.Function, types.Function); err != nil {
		return err
	}

	branch := fr.Argv[1]
	if fr.Argv[0] == tag.Nil {
		branch = fr.Argv[2]
	}

	v, err := e.Funcall(branch)
	fr.Value = v

	return err
}
