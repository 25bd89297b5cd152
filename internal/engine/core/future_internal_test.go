// Released under an MIT license. See LICENSE.

package core

import (
	"testing"
	"time"

	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/system/interrupt"
	"github.com/michaelmacinnis/mu/internal/type/tag"
)

func TestDetachAndForce(t *testing.T) {
	e := setup(t)

	f, err := e.Detach(builtin(t, e, "add"), list(t, e, fx(2), fx(3)))
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)

	for {
		done, err := e.Poll(f)
		if err != nil {
			t.Fatal(err)
		}

		if done {
			break
		}

		if time.Now().After(deadline) {
			t.Fatal("detached future never completed")
		}

		time.Sleep(time.Millisecond)
	}

	v, err := e.Force(f)
	if err != nil || v != fx(5) {
		t.Fatalf("force: %v %s", err, e.String(v, true))
	}

	_, err = e.Force(f)
	condition(t, err, exception.Future)

	if e.futures.running() {
		t.Fatal("future still counted as running")
	}
}

func TestDetachedLambda(t *testing.T) {
	e := setup(t)

	n := sym(t, e, "n")

	fn, err := e.Compile(lambda(t, e, list(t, e, n), list(t, e, sym(t, e, "mul"), n, n)))
	if err != nil {
		t.Fatal(err)
	}

	futures := []tag.T{}

	for i := 0; i < 8; i++ {
		f, err := e.Detach(fn, list(t, e, fx(i)))
		if err != nil {
			t.Fatal(err)
		}

		futures = append(futures, f)
	}

	for i, f := range futures {
		v, err := e.Force(f)
		if err != nil || v != fx(i*i) {
			t.Fatalf("future %d: %v %s", i, err, e.String(v, true))
		}
	}
}

func TestDetachedException(t *testing.T) {
	e := setup(t)

	f, err := e.Detach(builtin(t, e, "div"), list(t, e, fx(1), fx(0)))
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Force(f)
	condition(t, err, exception.ZeroDivide)
}

func TestDefer(t *testing.T) {
	e := setup(t)

	f, err := e.Defer(builtin(t, e, "cons"), list(t, e, fx(1), fx(2)))
	if err != nil {
		t.Fatal(err)
	}

	done, err := e.Poll(f)
	if err != nil || done {
		t.Fatal("a deferred future completes only when forced")
	}

	v, err := e.Force(f)
	if err != nil || e.Car(v) != fx(1) || e.Cdr(v) != fx(2) {
		t.Fatalf("force: %v %s", err, e.String(v, true))
	}

	_, err = e.Poll(f)
	condition(t, err, exception.Future)
}

func TestFutureBuiltins(t *testing.T) {
	e := setup(t)

	args := quote(t, e, list(t, e, fx(20), fx(22)))

	f := mustEval(t, e, list(t, e, sym(t, e, "detach"), sym(t, e, "add"), args))
	v := mustEval(t, e, list(t, e, sym(t, e, "force"), f))

	if v != fx(42) {
		t.Fatalf("expected 42, got %s", e.String(v, true))
	}

	f = mustEval(t, e, list(t, e, sym(t, e, "defer"), sym(t, e, "add"), args))
	if mustEval(t, e, list(t, e, sym(t, e, "poll"), f)) != tag.Nil {
		t.Fatal("deferred future polled as complete")
	}

	_, err := eval(e, list(t, e, sym(t, e, "force"), fx(1)))
	condition(t, err, exception.Type)
}

func TestInterruptBelongsToForeground(t *testing.T) {
	e := setup(t)

	interrupt.Raise()
	defer interrupt.Clear()

	add := list(t, e, sym(t, e, "add"), fx(1), fx(2))

	_, err := eval(e.fork(), add)
	condition(t, err, exception.SigInt)

	if !interrupt.Pending() {
		t.Fatal("a detached context should leave the interrupt pending")
	}

	_, err = eval(e, add)
	condition(t, err, exception.SigInt)

	if interrupt.Pending() {
		t.Fatal("the foreground context should consume the interrupt")
	}

	if v := mustEval(t, e, add); v != fx(3) {
		t.Fatalf("expected 3, got %s", e.String(v, true))
	}
}
