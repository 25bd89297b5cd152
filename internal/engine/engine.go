// Released under an MIT license. See LICENSE.

// Package engine provides an evaluator for mu source text.
package engine

import (
	"sort"

	"github.com/joomcode/errorx"
	"github.com/michaelmacinnis/mu/internal/engine/boot"
	"github.com/michaelmacinnis/mu/internal/engine/core"
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/reader"
	"github.com/michaelmacinnis/mu/internal/system/config"
	"github.com/michaelmacinnis/mu/internal/system/interrupt"
	"github.com/michaelmacinnis/mu/internal/system/streams"
	"github.com/michaelmacinnis/mu/internal/type/tag"
)

// Phases in which a form can fail.
const (
	Compile = "compile"
	Eval    = "eval"
	Read    = "reader"
)

//nolint:gochecknoglobals
var inputKey = tag.MustKeyword("input")

// Result is the outcome of reading, compiling and evaluating one form.
type Result struct {
	Value     tag.T
	Exception *exception.T
	Phase     string
}

// T (engine) is a facade in front of the machinery for evaluating mu code.
type T struct {
	env     *core.Env
	eof     tag.T
	release func()
}

type engine = T

// New creates a new T and evaluates the mu prelude.
func New(c *config.T, opts ...core.Option) (*T, error) {
	env, err := core.New(c, append(opts, core.WithReader(reader.Read))...)
	if err != nil {
		return nil, err
	}

	// The reader never returns an existing uninterned symbol,
	// so this one can mark the end of input.
	eof, err := env.MakeSymbol("eof", tag.Unbound)
	if err != nil {
		_ = env.Close()

		return nil, err
	}

	e := &T{env: env, eof: eof, release: env.Protect(eof)}

	var failed *Result

	e.Evaluate(boot.Script(), func(r Result) {
		if r.Exception != nil && failed == nil {
			failed = &r
		}
	})

	if failed != nil {
		msg := e.Report(*failed)

		_ = e.Close()

		return nil, errorx.InitializationFailed.New("cannot evaluate prelude: %s", msg)
	}

	env.Logger().Debug("prelude evaluated")

	return e, nil
}

// Close releases the engine's runtime.
func (e *engine) Close() error {
	e.release()

	return e.env.Close()
}

// Env returns the engine's runtime.
func (e *engine) Env() *core.Env {
	return e.env
}

// Evaluate reads, compiles and evaluates each form in text, passing the
// outcome of each to emit. If text ends part way through a form, Evaluate
// returns the text of that form. Otherwise it returns the empty string.
func (e *engine) Evaluate(text string, emit func(Result)) string {
	in := &counted{T: streams.Input(text)}

	st, err := e.env.MakeStream(in, inputKey)
	if err != nil {
		emit(e.result(tag.Nil, err, Read))

		return ""
	}

	defer e.env.Protect(st)()

	runes := []rune(text)

	for {
		start := in.n

		form, err := reader.Read(e.env, st, false, e.eof)
		if ex, ok := exception.As(err); ok && ex.Condition == exception.Eof {
			return string(runes[start:])
		} else if err != nil {
			emit(e.result(tag.Nil, err, Read))

			continue
		}

		if form == e.eof {
			return ""
		}

		emit(e.evaluate(form))

		e.env.MaybeCollect()
	}
}

// Flush writes any buffered standard output and error output.
func (e *engine) Flush() error {
	for _, name := range []string{"*standard-output*", "*error-output*"} {
		if err := e.env.Flush(e.env.Standard(name)); err != nil {
			return err
		}
	}

	return nil
}

// Names returns the names of the symbols visible without qualification.
func (e *engine) Names() []string {
	names := []string{}

	for _, ns := range []tag.T{e.env.MuNamespace(), e.env.NullNamespace()} {
		for _, s := range e.env.NamespaceSymbols(ns) {
			names = append(names, e.env.SymbolName(s))
		}
	}

	sort.Strings(names)

	return names
}

// Report formats r the way the REPL prints it.
func (e *engine) Report(r Result) string {
	if r.Exception == nil {
		return e.env.String(r.Value, true)
	}

	return r.Phase + " exception raised by " + r.Exception.Source +
		", :" + r.Exception.Condition.String() +
		" condition on " + e.env.String(r.Exception.Object, true)
}

func (e *engine) evaluate(form tag.T) Result {
	release := e.env.Protect(form)
	defer release()

	fn, err := e.env.Compile(form)
	if err != nil {
		return e.result(tag.Nil, err, Compile)
	}

	defer e.env.Protect(fn)()

	v, err := e.env.Eval(fn)

	return e.result(v, err, Eval)
}

func (e *engine) result(v tag.T, err error, phase string) Result {
	if err == nil {
		return Result{Value: v, Phase: phase}
	}

	ex, ok := exception.As(err)
	if !ok {
		e.env.Logger().Warn("unexpected error", "phase", phase, "error", err)

		ex = exception.New(tag.Nil, exception.Error, "mu:"+phase)
	}

	// A future can relay an interrupt without consuming it.
	if ex.Condition == exception.SigInt {
		interrupt.Clear()
	}

	return Result{Value: tag.Nil, Exception: ex, Phase: phase}
}

// counted tracks how many characters have been taken from a stream.
type counted struct {
	streams.T
	n int
}

func (c *counted) ReadChar() (rune, error) {
	r, err := c.T.ReadChar()
	if err == nil {
		c.n++
	}

	return r, err
}

func (c *counted) UnreadChar(r rune) error {
	err := c.T.UnreadChar(r)
	if err == nil {
		c.n--
	}

	return err
}
