// Released under an MIT license. See LICENSE.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/michaelmacinnis/mu/internal/system/image"
	"github.com/michaelmacinnis/mu/internal/system/options"
)

func mu(t *testing.T, stdin string, argv ...string) (int, string, string) {
	t.Helper()

	options.ParseArgs(append([]string{"-c", "npages:256"}, argv...))

	out := &strings.Builder{}
	errs := &strings.Builder{}

	status := run(strings.NewReader(stdin), out, errs)

	return status, out.String(), errs.String()
}

func TestExpression(t *testing.T) {
	status, out, errs := mu(t, "", "-e", "(add 2 3)")

	if status != 0 || errs != "" {
		t.Fatalf("Expected success; got %d and %q", status, errs)
	}

	if out != "5\n" {
		t.Fatalf("Expected %q; got %q", "5\n", out)
	}
}

func TestException(t *testing.T) {
	status, out, errs := mu(t, "", "-e", "(div 4 0)")

	if status != 1 {
		t.Fatalf("Expected failure; got %d", status)
	}

	if out != "" {
		t.Fatalf("Expected no output; got %q", out)
	}

	expected := "eval exception raised by mu:div, :div0 condition on 4\n"
	if errs != expected {
		t.Fatalf("Expected %q; got %q", expected, errs)
	}
}

func TestQuiet(t *testing.T) {
	status, out, _ := mu(t, "", "-q", "-e", "(add 2 3)")

	if status != 0 || out != "" {
		t.Fatalf("Expected silent success; got %d and %q", status, out)
	}
}

func TestStdin(t *testing.T) {
	status, out, errs := mu(t, "(add 1 2)\n(mul 2 3)\n")

	if status != 0 || errs != "" {
		t.Fatalf("Expected success; got %d and %q", status, errs)
	}

	if out != "3\n6\n" {
		t.Fatalf("Expected %q; got %q", "3\n6\n", out)
	}
}

func TestIncomplete(t *testing.T) {
	status, _, errs := mu(t, "(add 1")

	if status != 1 {
		t.Fatalf("Expected failure; got %d", status)
	}

	if !strings.Contains(errs, ":eof condition") {
		t.Fatalf("Expected an :eof report; got %q", errs)
	}
}

func TestFileThenExpression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.mu")

	src := `(intern (find-namespace "") "square" (:lambda (x) (mul x x)))`
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	status, out, errs := mu(t, "", "-f", path, "-e", "(square 7)")

	if status != 0 || errs != "" {
		t.Fatalf("Expected success; got %d and %q", status, errs)
	}

	if out != "49\n" {
		t.Fatalf("Expected %q; got %q", "49\n", out)
	}
}

func TestStreamOutput(t *testing.T) {
	status, out, _ := mu(t, "", "-e", `(write-char #\a *standard-output*)`)

	if status != 0 {
		t.Fatalf("Expected success; got %d", status)
	}

	if out != "a#\\a\n" {
		t.Fatalf("Expected %q; got %q", "a#\\a\n", out)
	}
}

func TestDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mu.img")

	if status, _, errs := mu(t, "", "-q", "-e", "(cons 1 2)", "--dump="+path); status != 0 {
		t.Fatalf("Expected success; got %d and %q", status, errs)
	}

	i, err := image.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if i.Config.Npages != 256 {
		t.Fatalf("Expected 256 pages; got %d", i.Config.Npages)
	}

	if len(i.Image) == 0 {
		t.Fatal("Expected a non-empty image")
	}
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mu.img")

	if status, _, errs := mu(t, "", "-q", "-e", "(gc)", "--dump="+path); status != 0 {
		t.Fatalf("Expected success; got %d and %q", status, errs)
	}

	options.ParseArgs([]string{"--info=" + path})

	out := &strings.Builder{}
	errs := &strings.Builder{}

	if status := run(strings.NewReader(""), out, errs); status != 0 {
		t.Fatalf("Expected success; got %d and %q", status, errs.String())
	}

	for _, field := range []string{"config:", "npages: 256", "barrier:", "types:"} {
		if !strings.Contains(out.String(), field) {
			t.Fatalf("Expected %q in %q", field, out.String())
		}
	}

	options.ParseArgs([]string{"--info=" + path + ".missing"})

	if status := run(strings.NewReader(""), out, errs); status != 1 {
		t.Fatalf("Expected failure for a missing image; got %d", status)
	}
}
