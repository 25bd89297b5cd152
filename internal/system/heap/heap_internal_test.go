// Released under an MIT license. See LICENSE.

package heap

import (
	"bytes"
	"testing"
)

const (
	cons   = 1
	vector = 6
)

func setup(t *testing.T, npages int) *T {
	h, err := New(npages, 4096, 8)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := h.Close(); err != nil {
			t.Error(err)
		}
	})

	return h
}

func TestAllocAndRead(t *testing.T) {
	h := setup(t, 1)

	index, ok := h.Alloc([]uint64{1, 2}, nil, cons)
	if !ok {
		t.Fatal("allocation failed")
	}

	if index != 1 {
		t.Fatalf("first image should have id 1, got %d", index)
	}

	for n, expected := range []uint64{1, 2} {
		w, ok := h.Word(index, n)
		if !ok || w != expected {
			t.Fatalf("word %d: expected %d, got %d", n, expected, w)
		}
	}

	if _, ok := h.Word(index, 2); ok {
		t.Fatal("read past the end of an image")
	}

	info, ok := h.Info(index)
	if !ok || info.Type != cons || info.Len != 3 || info.Mark {
		t.Fatalf("bad header %+v", info)
	}
}

func TestIndexZeroIsInvalid(t *testing.T) {
	h := setup(t, 1)

	h.Alloc([]uint64{0, 0}, nil, cons)

	if _, ok := h.Info(0); ok {
		t.Fatal("id 0 should never be valid")
	}

	if _, ok := h.Word(0, 0); ok {
		t.Fatal("id 0 should never be valid")
	}
}

func TestVectorData(t *testing.T) {
	h := setup(t, 1)

	data := []byte("hello, world")

	index, ok := h.Alloc([]uint64{0, uint64(len(data))}, data, vector)
	if !ok {
		t.Fatal("allocation failed")
	}

	info, _ := h.Info(index)
	if info.Len != 1+2+2 {
		t.Fatalf("vector data should be padded to whole words, got %d words", info.Len)
	}

	b, ok := h.Data(index, 16, len(data))
	if !ok || !bytes.Equal(b, data) {
		t.Fatalf("expected %q, got %q", data, b)
	}
}

func TestExhaustion(t *testing.T) {
	h := setup(t, 1)

	n := 0
	for {
		if _, ok := h.Alloc([]uint64{0, 0}, nil, cons); !ok {
			break
		}
		n++
	}

	if expected := 4096 / 24; n != expected {
		t.Fatalf("expected %d conses, got %d", expected, n)
	}

	if h.Barrier() > h.Capacity() {
		t.Fatal("allocation passed the end of the arena")
	}
}

func TestCollectReusesUnmarked(t *testing.T) {
	h := setup(t, 1)

	live, _ := h.Alloc([]uint64{1, 1}, nil, cons)
	dead, _ := h.Alloc([]uint64{2, 2}, nil, cons)

	h.Collect(func(m *Marker) {
		if m.Mark(live) {
			t.Error("live image was already marked")
		}

		if !m.Mark(live) {
			t.Error("second mark should report the image as marked")
		}
	})

	if ti := h.TypeInfo(cons); ti.Free != 1 || ti.Total != 2 {
		t.Fatalf("unexpected stats %+v", ti)
	}

	barrier := h.Barrier()

	index, ok := h.Alloc([]uint64{3, 3}, nil, cons)
	if !ok || index != dead {
		t.Fatalf("expected reuse of %d, got %d", dead, index)
	}

	if h.Barrier() != barrier {
		t.Fatal("reuse should not move the barrier")
	}

	if ti := h.TypeInfo(cons); ti.Free != 0 {
		t.Fatalf("free count should drop after reuse: %+v", ti)
	}

	if w, _ := h.Word(live, 0); w != 1 {
		t.Fatal("live image was clobbered")
	}
}

func TestFreeListsArePerType(t *testing.T) {
	h := setup(t, 1)

	dead, _ := h.Alloc([]uint64{0, 0}, nil, cons)

	h.Collect(func(*Marker) {})

	index, ok := h.Alloc([]uint64{0, 0}, nil, vector)
	if !ok || index == dead {
		t.Fatal("a vector must not reuse a cons image")
	}
}

func TestWriteImage(t *testing.T) {
	h := setup(t, 1)

	index, _ := h.Alloc([]uint64{1, 2}, nil, cons)

	if !h.WriteImage([]uint64{7}, index) {
		t.Fatal("write failed")
	}

	if w, _ := h.Word(index, 0); w != 7 {
		t.Fatalf("expected 7, got %d", w)
	}

	if h.WriteImage([]uint64{1, 2, 3}, index) {
		t.Fatal("write past the end of an image should fail")
	}
}

func TestSnapshotRestore(t *testing.T) {
	h := setup(t, 1)

	a, _ := h.Alloc([]uint64{1, 2}, nil, cons)
	h.Alloc([]uint64{3, 4}, nil, cons)

	h.Collect(func(m *Marker) { m.Mark(a) })

	s := h.Snapshot()

	g := setup(t, 1)
	if err := g.Restore(s); err != nil {
		t.Fatal(err)
	}

	if g.Barrier() != h.Barrier() {
		t.Fatal("barrier not restored")
	}

	if w, _ := g.Word(a, 1); w != 2 {
		t.Fatal("image not restored")
	}

	if g.TypeInfo(cons) != h.TypeInfo(cons) {
		t.Fatal("stats not restored")
	}
}

func TestBadGeometry(t *testing.T) {
	if _, err := New(0, 4096, 8); err == nil {
		t.Fail()
	}
}
