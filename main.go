// Released under an MIT license. See LICENSE.

/*
Mu is a small Lisp runtime. It reads mu forms and evaluates them on a
tagged, garbage collected heap.

	mu -e "(mapcar (:lambda (x) (mul x x)) '(1 2 3))"
	mu -f prelude.mu -e "(main)"
	mu -c npages:4096,gcmode:auto
	echo "(add 1 2)" | mu
	mu -q -e "(gc)" --dump=mu.img && mu --info=mu.img

With no file or expression, and a terminal on stdin, mu starts an
interactive session.

Mu is released under an MIT-style license.
*/
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/michaelmacinnis/mu/internal/engine"
	"github.com/michaelmacinnis/mu/internal/engine/core"
	"github.com/michaelmacinnis/mu/internal/system/config"
	"github.com/michaelmacinnis/mu/internal/system/image"
	"github.com/michaelmacinnis/mu/internal/system/interrupt"
	"github.com/michaelmacinnis/mu/internal/system/options"
	"github.com/michaelmacinnis/mu/internal/ui"
)

func main() {
	options.Parse()

	os.Exit(run(os.Stdin, os.Stdout, os.Stderr))
}

// run evaluates the forms named by the parsed options and returns the exit status.
func run(in io.Reader, out, errs io.Writer) int {
	level := slog.LevelWarn
	if os.Getenv("MU_DEBUG") != "" {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(errs, &slog.HandlerOptions{Level: level}))

	if path := options.Info(); path != "" {
		return describe(path, out, errs)
	}

	c, err := configuration(options.Config())
	if err != nil {
		fmt.Fprintln(errs, err)

		return 1
	}

	e, err := engine.New(c,
		core.WithLogger(logger),
		core.WithStandardStreams(in, out, errs),
	)
	if err != nil {
		fmt.Fprintln(errs, err)

		return 1
	}

	stop := interrupt.Notify()
	defer stop()

	status := 0

	if options.Interactive() {
		if err := ui.Run(e, out, errs); err != nil {
			logger.Warn("cannot save history", "error", err)
		}
	} else if !batch(e, in, out, errs) {
		status = 1
	}

	if path := options.Dump(); path != "" {
		if err := image.New(c, e.Env().Heap()).Save(path); err != nil {
			fmt.Fprintln(errs, err)

			status = 1
		}
	}

	if err := e.Close(); err != nil {
		fmt.Fprintln(errs, err)

		status = 1
	}

	return status
}

func batch(e *engine.T, in io.Reader, out, errs io.Writer) bool {
	ok := true

	if path := options.File(); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(errs, err)

			return false
		}

		ok = evaluate(e, string(b), nil, errs)
	}

	printed := out
	if options.Quiet() {
		printed = nil
	}

	if expr := options.Expr(); expr != "" {
		return evaluate(e, expr, printed, errs) && ok
	}

	if options.File() != "" {
		return ok
	}

	b, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintln(errs, err)

		return false
	}

	return evaluate(e, string(b), printed, errs)
}

// evaluate evaluates text, printing each value to out if out is not nil.
// It returns false if any form raised an exception or text ended part way
// through a form.
func evaluate(e *engine.T, text string, out, errs io.Writer) bool {
	ok := true

	incomplete := e.Evaluate(text, func(r engine.Result) {
		if err := e.Flush(); err != nil {
			fmt.Fprintln(errs, err)
		}

		switch {
		case r.Exception != nil:
			ok = false

			fmt.Fprintln(errs, e.Report(r))
		case out != nil:
			fmt.Fprintln(out, e.Report(r))
		}
	})

	if err := e.Flush(); err != nil {
		fmt.Fprintln(errs, err)
	}

	if incomplete != "" {
		fmt.Fprintf(errs, "reader exception raised by mu:read, :eof condition on %q\n", incomplete)

		return false
	}

	return ok
}

func describe(path string, out, errs io.Writer) int {
	i, err := image.Load(path)
	if err != nil {
		fmt.Fprintln(errs, err)

		return 1
	}

	if err := i.Describe(out); err != nil {
		fmt.Fprintln(errs, err)

		return 1
	}

	return 0
}

func configuration(arg string) (*config.T, error) {
	if arg == "" {
		return config.Default(), nil
	}

	if _, err := os.Stat(arg); err == nil {
		return config.Load(arg)
	}

	return config.Parse(arg)
}
