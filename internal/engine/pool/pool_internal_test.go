// Released under an MIT license. See LICENSE.

package pool

import (
	"sync/atomic"
	"testing"
)

func TestSubmit(t *testing.T) {
	p := New(4)

	var n int64

	for i := 0; i < 100; i++ {
		if !p.Submit(func() { atomic.AddInt64(&n, 1) }) {
			t.Fatal("submit failed")
		}
	}

	p.Close()

	if n != 100 {
		t.Fatalf("expected 100 jobs to run, got %d", n)
	}
}

func TestClosed(t *testing.T) {
	p := New(1)
	p.Close()
	p.Close()

	if p.Submit(func() {}) {
		t.Fatal("closed pools should reject jobs")
	}
}
