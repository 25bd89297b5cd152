// Released under an MIT license. See LICENSE.

package core

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/system/config"
	"github.com/michaelmacinnis/mu/internal/type/tag"
)

func open(t *testing.T, e *Env, kind, direction, arg string) tag.T {
	t.Helper()

	s, err := e.MakeString(arg)
	if err != nil {
		t.Fatal(err)
	}

	st, err := e.Funcall(builtin(t, e, "open"), tag.MustKeyword(kind), tag.MustKeyword(direction), s, tag.True)
	if err != nil {
		t.Fatal(err)
	}

	return st
}

func TestStringInput(t *testing.T) {
	e := setup(t)

	st := open(t, e, "string", "input", "ab")
	readChar := builtin(t, e, "read-char")

	v, err := e.Funcall(readChar, st, tag.Nil, tag.Nil)
	if err != nil || v != tag.Char('a') {
		t.Fatalf("read-char: %v %s", err, e.String(v, true))
	}

	if _, err := e.Funcall(builtin(t, e, "unread-char"), v, st); err != nil {
		t.Fatal(err)
	}

	for _, r := range "ab" {
		v, err = e.Funcall(readChar, st, tag.Nil, tag.Nil)
		if err != nil || v != tag.Char(r) {
			t.Fatalf("read-char: %v %s", err, e.String(v, true))
		}
	}

	eof := tag.MustKeyword("done")

	v, err = e.Funcall(readChar, st, tag.Nil, eof)
	if err != nil || v != eof {
		t.Fatalf("expected the end of input value, got %v %s", err, e.String(v, true))
	}

	_, err = e.Funcall(readChar, st, tag.True, tag.Nil)
	condition(t, err, exception.Eof)
}

func TestStringOutput(t *testing.T) {
	e := setup(t)

	st := open(t, e, "string", "output", "")

	if _, err := e.Funcall(builtin(t, e, "write-char"), tag.Char('x'), st); err != nil {
		t.Fatal(err)
	}

	l, _ := e.List(fx(1), tag.Char('y'))
	if _, err := e.Funcall(builtin(t, e, "write"), l, tag.True, st); err != nil {
		t.Fatal(err)
	}

	v, err := e.Funcall(builtin(t, e, "get-string"), st)
	if err != nil || e.StringOf(v) != `x(1 #\y)` {
		t.Fatalf("get-string: %v %s", err, e.String(v, true))
	}
}

func TestClose(t *testing.T) {
	e := setup(t)

	st := open(t, e, "string", "input", "abc")

	v, err := e.Funcall(builtin(t, e, "close"), st)
	if err != nil || v != tag.True {
		t.Fatalf("close: %v %s", err, e.String(v, true))
	}

	if v, _ := e.Funcall(builtin(t, e, "openp"), st); v != tag.Nil {
		t.Fatal("closed stream is open")
	}

	if v, _ := e.Funcall(builtin(t, e, "close"), st); v != tag.Nil {
		t.Fatal("closing twice should return nil")
	}

	_, err = e.Funcall(builtin(t, e, "read-char"), st, tag.Nil, tag.Nil)
	condition(t, err, exception.Open)
}

func TestFileStreams(t *testing.T) {
	e := setup(t)

	path := filepath.Join(t.TempDir(), "bytes")

	out := open(t, e, "file", "output", path)
	for _, b := range []int{1, 2, 255} {
		if _, err := e.Funcall(builtin(t, e, "write-byte"), fx(b), out); err != nil {
			t.Fatal(err)
		}
	}

	_, err := e.Funcall(builtin(t, e, "write-byte"), fx(256), out)
	condition(t, err, exception.Range)

	if _, err := e.Funcall(builtin(t, e, "close"), out); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(b, []byte{1, 2, 255}) {
		t.Fatalf("unexpected file contents %v %v", b, err)
	}

	in := open(t, e, "file", "input", path)

	for _, expected := range []int{1, 2, 255} {
		v, err := e.Funcall(builtin(t, e, "read-byte"), in, tag.Nil, tag.Nil)
		if err != nil || v != fx(expected) {
			t.Fatalf("read-byte: %v %s", err, e.String(v, true))
		}
	}

	missing, _ := e.MakeString(filepath.Join(t.TempDir(), "missing"))

	v, err := e.Funcall(builtin(t, e, "open"), fileKey, inputKey, missing, tag.Nil)
	if err != nil || v != tag.Nil {
		t.Fatalf("open of a missing file: %v %s", err, e.String(v, true))
	}

	_, err = e.Funcall(builtin(t, e, "open"), fileKey, inputKey, missing, tag.True)
	condition(t, err, exception.Open)
}

func TestStandardStreams(t *testing.T) {
	var out bytes.Buffer

	c := config.Default()
	c.Npages = 256

	e, err := New(c, WithStandardStreams(bytes.NewBufferString("z"), &out, &out))
	if err != nil {
		t.Fatal(err)
	}

	v, err := e.Funcall(builtin(t, e, "read-char"), e.Standard("*standard-input*"), tag.Nil, tag.Nil)
	if err != nil || v != tag.Char('z') {
		t.Fatalf("read-char: %v %s", err, e.String(v, true))
	}

	s, _ := e.MakeString("hello")
	if _, err := e.Funcall(builtin(t, e, "write"), s, tag.Nil, e.Standard("*standard-output*")); err != nil {
		t.Fatal(err)
	}

	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	if out.String() != "hello" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestReadWithoutReader(t *testing.T) {
	e := setup(t)

	st := open(t, e, "string", "input", "(1 2)")

	_, err := e.Funcall(builtin(t, e, "read"), st, tag.Nil, tag.Nil)
	condition(t, err, exception.Read)

	e.SetReader(func(e *Env, stream tag.T, _ bool, _ tag.T) (tag.T, error) {
		return fx(99), nil
	})

	v, err := e.Funcall(builtin(t, e, "read"), st, tag.Nil, tag.Nil)
	if err != nil || v != fx(99) {
		t.Fatalf("read: %v %s", err, e.String(v, true))
	}
}
