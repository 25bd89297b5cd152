// Released under an MIT license. See LICENSE.

// Package ui provides an interactive command-line interface for mu.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/michaelmacinnis/mu/internal/engine"
	"github.com/michaelmacinnis/mu/internal/system/history"
)

const (
	prompt       = "mu> "
	continuation = "... "
)

// Evaluator is the interface for things that want to process mu source text.
type Evaluator interface {
	Evaluate(text string, emit func(engine.Result)) string
	Flush() error
	Names() []string
	Report(r engine.Result) string
}

// Run launches the UI, which passes each line entered to the Evaluator.
// It returns when input ends.
func Run(e Evaluator, out, errs io.Writer) error {
	cli := liner.NewLiner()
	defer cli.Close()

	cli.SetCtrlCAborts(true)
	cli.SetWordCompleter(completer(e.Names))

	if err := history.Load(cli.ReadHistory); err != nil {
		fmt.Fprintln(errs, err)
	}

	s := &session{e: e, out: out, errs: errs}

	for {
		line, err := cli.Prompt(s.prompt())

		switch {
		case err == nil:
			if strings.TrimSpace(line) != "" {
				cli.AppendHistory(line)
			}

			s.line(line)

			continue
		case errors.Is(err, liner.ErrPromptAborted):
			s.pending = ""

			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(out)
		default:
			fmt.Fprintln(errs, err)
		}

		break
	}

	return history.Save(cli.WriteHistory)
}

// session accumulates lines until they form complete forms.
type session struct {
	e       Evaluator
	errs    io.Writer
	out     io.Writer
	pending string
}

func (s *session) line(text string) {
	s.pending = s.e.Evaluate(s.pending+text+"\n", func(r engine.Result) {
		if err := s.e.Flush(); err != nil {
			fmt.Fprintln(s.errs, err)
		}

		if r.Exception != nil {
			fmt.Fprintln(s.errs, s.e.Report(r))
		} else {
			fmt.Fprintln(s.out, s.e.Report(r))
		}
	})
}

func (s *session) prompt() string {
	if s.pending != "" {
		return continuation
	}

	return prompt
}

func completer(names func() []string) liner.WordCompleter {
	return func(line string, pos int) (string, []string, string) {
		head, tail := line[:pos], line[pos:]

		start := strings.LastIndexAny(head, " \t\"'(),;`") + 1
		word := head[start:]

		if word == "" {
			return head, nil, tail
		}

		found := []string{}

		for _, name := range names() {
			if strings.HasPrefix(name, word) {
				found = append(found, name)
			}
		}

		return head[:start], found, tail
	}
}
