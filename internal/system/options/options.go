// Released under an MIT license. See LICENSE.

// Package options parses mu's command line.
package options

import (
	"os"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"

	"github.com/michaelmacinnis/mu/internal/system/config"
)

//nolint:gochecknoglobals
var (
	configuration string
	dump          string
	expr          string
	file          string
	info          string
	interactive   bool
	quiet         bool
	usage         = `mu

Usage:
  mu [-q] [-c CONFIG] [-f FILE] [-e EXPR] [--dump=PATH]
  mu --info=PATH
  mu -h
  mu -v

Options:
  -c, --config=CONFIG  Heap configuration, a YAML file or "npages:N,gcmode:MODE".
  -f, --file=FILE      Evaluate the forms in FILE.
  -e, --eval=EXPR      Evaluate EXPR and print each result.
  --dump=PATH          Save the heap image to PATH before exiting.
  --info=PATH          Print the allocator record of the heap image at PATH.
  -q, --quiet          Do not print results.
  -h, --help           Display this help.
  -v, --version        Print mu version.

If neither FILE nor EXPR is given and mu's stdin is a TTY, mu starts an
interactive session. Otherwise, forms are read from stdin.
`
)

// Config returns the heap configuration argument.
func Config() string {
	return configuration
}

// Dump returns the path the heap image is saved to, if any.
func Dump() string {
	return dump
}

// Expr returns the expression to evaluate, if any.
func Expr() string {
	return expr
}

// File returns the file to evaluate, if any.
func File() string {
	return file
}

// Info returns the path of the heap image to describe, if any.
func Info() string {
	return info
}

func Interactive() bool {
	return interactive
}

func Quiet() bool {
	return quiet
}

// Parse parses the process's command line.
func Parse() {
	ParseArgs(os.Args[1:])
}

// ParseArgs parses argv. It exits for -h, -v or a usage error.
func ParseArgs(argv []string) {
	opts, err := docopt.ParseArgs(usage, argv, "mu "+config.Version)
	if err != nil {
		// Error in the usage doc. This should never happen.
		panic(err.Error())
	}

	configuration, _ = opts.String("--config")
	dump, _ = opts.String("--dump")
	expr, _ = opts.String("--eval")
	file, _ = opts.String("--file")
	info, _ = opts.String("--info")
	quiet, _ = opts.Bool("--quiet")

	interactive = expr == "" && file == "" && info == "" && isatty.IsTerminal(os.Stdin.Fd())
}
