// Released under an MIT license. See LICENSE.

package core

import (
	"testing"

	"github.com/michaelmacinnis/mu/internal/system/config"
	"github.com/michaelmacinnis/mu/internal/type/tag"
)

func TestCollectReclaimsGarbage(t *testing.T) {
	e := setup(t)

	for i := 0; i < 10; i++ {
		if _, err := e.Cons(fx(i), tag.Nil); err != nil {
			t.Fatal(err)
		}
	}

	if !e.Collect() {
		t.Fatal("collection refused")
	}

	if free := e.heap.Stats()[tag.ConsKind].Free; free < 10 {
		t.Fatalf("expected at least 10 free conses, got %d", free)
	}

	barrier := e.heap.Barrier()

	for i := 0; i < 10; i++ {
		if _, err := e.Cons(fx(i), tag.Nil); err != nil {
			t.Fatal(err)
		}
	}

	if e.heap.Barrier() != barrier {
		t.Fatal("free conses were not reused")
	}
}

func TestCollectKeepsReachable(t *testing.T) {
	e := setup(t)

	inner, _ := e.MakeString("reachable through a vector")
	v, _ := e.MakeVector([]tag.T{fx(1), inner})
	l, _ := e.List(fx(1), v)

	release := e.Protect(l)
	defer release()

	bound, _ := e.Cons(fx(2), fx(3))
	if _, err := e.Intern(e.nullNS, "bound", bound); err != nil {
		t.Fatal(err)
	}

	if !e.Collect() {
		t.Fatal("collection refused")
	}

	// Anything reused from a free list would overwrite the values below.
	for i := 0; i < 32; i++ {
		_, _ = e.Cons(fx(-1), fx(-1))
		_, _ = e.MakeString("garbage garbage garbage garbage")
		_, _ = e.MakeVector([]tag.T{fx(-1), fx(-1)})
	}

	if e.Car(l) != fx(1) || e.Car(e.Cdr(l)) != v {
		t.Fatalf("protected list was reclaimed: %s", e.String(l, true))
	}

	if el, _ := e.VectorRef(v, 1); e.StringOf(el) != "reachable through a vector" {
		t.Fatal("vector element was reclaimed")
	}

	if e.Car(bound) != fx(2) || e.Cdr(bound) != fx(3) {
		t.Fatal("symbol value was reclaimed")
	}

	fn := builtin(t, e, "car")
	if e.FunctionName(fn) != "car" {
		t.Fatal("builtin was reclaimed")
	}
}

func TestCollectRefusedWhileDetached(t *testing.T) {
	e := setup(t)

	e.futures.add(&future{eager: true, fn: tag.Nil, args: tag.Nil, value: tag.Nil})

	if e.Collect() {
		t.Fatal("collected with a detached future in flight")
	}

	e.futures.finish()

	if !e.Collect() {
		t.Fatal("collection refused")
	}
}

func TestGCBuiltin(t *testing.T) {
	e := setup(t)

	v, err := e.Funcall(builtin(t, e, "gc"))
	if err != nil || v != tag.True {
		t.Fatalf("gc: %v %s", err, e.String(v, true))
	}

	e.config.GCMode = config.None

	v, err = e.Funcall(builtin(t, e, "gc"))
	if err != nil || v != tag.Nil {
		t.Fatalf("gc with collection disabled: %v %s", err, e.String(v, true))
	}
}

func TestMaybeCollect(t *testing.T) {
	e := setup(t)

	if e.MaybeCollect() {
		t.Fatal("collected on demand mode")
	}

	e.config.GCMode = config.Auto
	e.lastBarrier = e.heap.Barrier()

	if e.MaybeCollect() {
		t.Fatal("collected without allocation")
	}

	for e.heap.Barrier()-e.lastBarrier < e.heap.Capacity()/16 {
		if _, err := e.Cons(fx(0), tag.Nil); err != nil {
			t.Fatal(err)
		}
	}

	if !e.MaybeCollect() {
		t.Fatal("did not collect after allocation")
	}
}

func TestHeapBuiltins(t *testing.T) {
	e := setup(t)

	info, err := e.Funcall(builtin(t, e, "heap-info"))
	if err != nil {
		t.Fatal(err)
	}

	npages, pagesize := e.heap.Geometry()
	parts := e.VectorElements(info)

	if len(parts) != 3 || parts[0] != bumpKey || parts[1] != fx(pagesize) || parts[2] != fx(npages) {
		t.Fatalf("unexpected heap-info %s", e.String(info, true))
	}

	stat, err := e.Funcall(builtin(t, e, "heap-stat"))
	if err != nil {
		t.Fatal(err)
	}

	if e.VectorLength(stat) != len(heapTypes)*4 {
		t.Fatalf("unexpected heap-stat %s", e.String(stat, true))
	}

	c, _ := e.Cons(fx(1), fx(2))

	for v, expected := range map[tag.T]int{fx(1): 8, c: 24} {
		size, err := e.Funcall(builtin(t, e, "heap-size"), v)
		if err != nil || size != fx(expected) {
			t.Fatalf("heap-size %s: expected %d, got %s", e.String(v, true), expected, e.String(size, true))
		}
	}
}
