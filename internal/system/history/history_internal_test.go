// Released under an MIT license. See LICENSE.

//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package history

import (
	"io"
	"strings"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	err := Save(func(w io.Writer) (int, error) {
		return io.WriteString(w, "(add 1 2)\n")
	})
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder

	err = Load(func(r io.Reader) (int, error) {
		n, err := io.Copy(&b, r)

		return int(n), err
	})
	if err != nil {
		t.Fatal(err)
	}

	if b.String() != "(add 1 2)\n" {
		t.Fatalf("Expected %q; got %q", "(add 1 2)\n", b.String())
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	called := false

	err := Load(func(r io.Reader) (int, error) {
		called = true

		return 0, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if called {
		t.Fatal("Expected no history to read")
	}
}
