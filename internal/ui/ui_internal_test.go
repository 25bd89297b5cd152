// Released under an MIT license. See LICENSE.

package ui

import (
	"strings"
	"testing"

	"github.com/michaelmacinnis/mu/internal/engine"
	"github.com/michaelmacinnis/mu/internal/system/config"
)

func setup(t *testing.T) (*session, *strings.Builder, *strings.Builder) {
	t.Helper()

	c := config.Default()
	c.Npages = 256
	c.GCMode = config.Demand

	e, err := engine.New(c)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = e.Close() })

	out := &strings.Builder{}
	errs := &strings.Builder{}

	return &session{e: e, out: out, errs: errs}, out, errs
}

func TestSessionLine(t *testing.T) {
	s, out, errs := setup(t)

	s.line("(add 1 2) (car '(a b))")

	if out.String() != "3\na\n" {
		t.Fatalf("Expected %q; got %q", "3\na\n", out.String())
	}

	if errs.String() != "" {
		t.Fatalf("Expected no errors; got %q", errs.String())
	}
}

func TestSessionContinuation(t *testing.T) {
	s, out, _ := setup(t)

	s.line("(add 1")

	if s.prompt() != continuation {
		t.Fatalf("Expected prompt %q; got %q", continuation, s.prompt())
	}

	if out.String() != "" {
		t.Fatalf("Expected no output; got %q", out.String())
	}

	s.line("2)")

	if s.prompt() != prompt {
		t.Fatalf("Expected prompt %q; got %q", prompt, s.prompt())
	}

	if out.String() != "3\n" {
		t.Fatalf("Expected %q; got %q", "3\n", out.String())
	}
}

func TestSessionException(t *testing.T) {
	s, out, errs := setup(t)

	s.line("(div 4 0)")

	if out.String() != "" {
		t.Fatalf("Expected no output; got %q", out.String())
	}

	expected := "eval exception raised by mu:div, :div0 condition on 4\n"
	if errs.String() != expected {
		t.Fatalf("Expected %q; got %q", expected, errs.String())
	}
}

func TestCompleter(t *testing.T) {
	complete := completer(func() []string {
		return []string{"car", "cdr", "cons", "mapcar"}
	})

	head, found, tail := complete("(co x)", 3)
	if head != "(" || tail != " x)" {
		t.Fatalf("Expected head %q and tail %q; got %q and %q", "(", " x)", head, tail)
	}

	if len(found) != 1 || found[0] != "cons" {
		t.Fatalf("Expected [cons]; got %v", found)
	}

	if _, found, _ := complete("(c", 2); len(found) != 3 {
		t.Fatalf("Expected 3 completions; got %v", found)
	}

	if _, found, _ := complete("(", 1); len(found) != 0 {
		t.Fatalf("Expected no completions; got %v", found)
	}
}
