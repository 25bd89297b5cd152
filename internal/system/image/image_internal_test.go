// Released under an MIT license. See LICENSE.

package image

import (
	"archive/tar"
	"bytes"
	"path/filepath"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/michaelmacinnis/mu/internal/system/config"
	"github.com/michaelmacinnis/mu/internal/system/heap"
)

func setup(t *testing.T) (*config.T, *heap.T) {
	t.Helper()

	c := config.Default()
	c.Npages = 4
	c.PageSize = 4096

	h, err := heap.New(c.Npages, c.PageSize, 8)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := h.Close(); err != nil {
			t.Error(err)
		}
	})

	return c, h
}

func TestRoundTrip(t *testing.T) {
	c, h := setup(t)

	a, _ := h.Alloc([]uint64{1, 2}, nil, 1)
	b, _ := h.Alloc([]uint64{3}, []byte("hello"), 6)

	var buf bytes.Buffer

	if err := Write(&buf, New(c, h)); err != nil {
		t.Fatal(err)
	}

	i, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if i.Barrier != h.Barrier() || len(i.Image) != h.Barrier() {
		t.Fatalf("barrier %d, image %d bytes, heap barrier %d", i.Barrier, len(i.Image), h.Barrier())
	}

	if *i.Config != *c {
		t.Fatalf("expected configuration %v, got %v", c, i.Config)
	}

	_, restored := setup(t)

	if err := i.Restore(restored); err != nil {
		t.Fatal(err)
	}

	if w, ok := restored.Word(a, 1); !ok || w != 2 {
		t.Fatalf("expected 2, got %d", w)
	}

	if d, ok := restored.Data(b, 8, 5); !ok || string(d) != "hello" {
		t.Fatalf("expected hello, got %q", d)
	}

	if restored.Barrier() != h.Barrier() {
		t.Fatal("restored barrier does not match")
	}
}

func TestSaveAndLoad(t *testing.T) {
	c, h := setup(t)

	h.Alloc([]uint64{7, 7}, nil, 1)

	path := filepath.Join(t.TempDir(), "mu.image")

	if err := New(c, h).Save(path); err != nil {
		t.Fatal(err)
	}

	i, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if i.Barrier != h.Barrier() {
		t.Fatalf("expected barrier %d, got %d", h.Barrier(), i.Barrier)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing")); !errorx.IsOfType(err, errorx.ExternalError) {
		t.Fatalf("expected an external error, got %v", err)
	}
}

func TestVersionMismatch(t *testing.T) {
	c, h := setup(t)

	old := *c
	old.Version = "0.0.0"

	var buf bytes.Buffer

	if err := Write(&buf, New(&old, h)); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(&buf); !errorx.IsOfType(err, errorx.UnsupportedVersion) {
		t.Fatalf("expected an unsupported version error, got %v", err)
	}
}

func TestMissingMember(t *testing.T) {
	var buf bytes.Buffer

	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{Name: imageMember, Mode: 0o600}); err != nil {
		t.Fatal(err)
	}

	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	_, err := Read(&buf)
	if err == nil || !errorx.IsOfType(err, errorx.IllegalFormat) {
		t.Fatalf("expected an illegal format error, got %v", err)
	}
}
