// Released under an MIT license. See LICENSE.

package hash

import (
	"errors"
	"testing"

	"github.com/michaelmacinnis/mu/internal/type/tag"
)

func set(h *T, k string, v tag.T) {
	_, _, _ = h.SetIfAbsent(k, func() (tag.T, error) { return v, nil })
}

func TestSetGetDel(t *testing.T) {
	h := New()

	set(h, "a", tag.MustFixnum(1))

	if h.Size() != 1 {
		t.Fatalf("expected 1 entry, got %d", h.Size())
	}

	v, ok := h.Get("a")
	if !ok || v != tag.MustFixnum(1) {
		t.Fatal("value not found")
	}

	if !h.Del("a") || h.Del("a") {
		t.Fatal("delete should succeed once")
	}

	if h.Size() != 0 {
		t.Fail()
	}
}

func TestEachIsOrdered(t *testing.T) {
	h := New()

	for _, k := range []string{"c", "a", "b"} {
		set(h, k, tag.Nil)
	}

	s := ""
	h.Each(func(k string, _ tag.T) { s += k })

	if s != "abc" {
		t.Fatalf("expected abc, got %s", s)
	}
}

func TestSetIfAbsent(t *testing.T) {
	h := New()

	v, created, err := h.SetIfAbsent("x", func() (tag.T, error) { return tag.True, nil })
	if err != nil || !created || v != tag.True {
		t.Fatal("first call should create")
	}

	v, created, _ = h.SetIfAbsent("x", func() (tag.T, error) { return tag.Nil, nil })
	if created || v != tag.True {
		t.Fatal("second call should find the existing value")
	}

	failure := errors.New("no")

	_, _, err = h.SetIfAbsent("y", func() (tag.T, error) { return tag.Nil, failure })
	if !errors.Is(err, failure) {
		t.Fatal("error should propagate")
	}

	if _, ok := h.Get("y"); ok {
		t.Fatal("failed creation should not associate")
	}
}

func TestNilHash(t *testing.T) {
	var h *T

	if _, ok := h.Get("a"); ok || h.Del("a") || h.Size() != 0 {
		t.Fail()
	}
}
