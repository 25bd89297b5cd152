// Released under an MIT license. See LICENSE.

package core

import (
	"sync"

	"github.com/michaelmacinnis/mu/internal/system/config"
	"github.com/michaelmacinnis/mu/internal/system/heap"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// roots are values that must survive collection but are only held by Go code.
type roots struct {
	sync.Mutex
	list []tag.T
}

// Protect keeps ts alive across collections until the returned function is called.
func (e *Env) Protect(ts ...tag.T) func() {
	e.roots.Lock()
	base := len(e.roots.list)
	e.roots.list = append(e.roots.list, ts...)
	e.roots.Unlock()

	return func() {
		e.roots.Lock()
		defer e.roots.Unlock()

		if len(e.roots.list) >= base+len(ts) {
			e.roots.list = append(e.roots.list[:base], e.roots.list[base+len(ts):]...)
		}
	}
}

// Collect runs a full mark-sweep collection. It returns false, without
// collecting, when detached futures are running.
func (e *Env) Collect() bool {
	if e.futures.running() {
		e.log.Debug("collection refused", "reason", "detached futures running")

		return false
	}

	before := e.heap.Stats()

	e.heap.Collect(func(m *heap.Marker) {
		e.roots.Lock()
		for _, t := range e.roots.list {
			e.mark(m, t)
		}
		e.roots.Unlock()

		for _, t := range e.pending {
			e.mark(m, t)
		}

		e.lexical.each(func(fr *Frame) {
			e.mark(m, fr.Func)
			e.mark(m, fr.Value)

			for _, t := range fr.Argv {
				e.mark(m, t)
			}
		})

		for _, lf := range e.lexenv {
			e.mark(m, lf.fn)
		}

		e.namespaces.each(func(n *namespace) {
			n.symbols.Each(func(_ string, sym tag.T) {
				e.mark(m, sym)
			})
		})

		e.futures.each(func(f *future) {
			e.mark(m, f.fn)
			e.mark(m, f.args)
			e.mark(m, f.value)
		})
	})

	e.lastBarrier = e.heap.Barrier()

	after := e.heap.Stats()

	freed := 0
	for id := range after {
		freed += after[id].Free - before[id].Free
	}

	e.log.Debug("collection complete", "barrier", e.lastBarrier, "freed", freed)

	return true
}

// MaybeCollect collects in auto mode once the write barrier has advanced
// by a sixteenth of the heap since the last collection. It must only be
// called between top level evaluations.
func (e *Env) MaybeCollect() bool {
	if e.config.GCMode != config.Auto {
		return false
	}

	if e.heap.Barrier()-e.lastBarrier < e.heap.Capacity()/16 {
		return false
	}

	return e.Collect()
}

func (e *Env) mark(m *heap.Marker, t tag.T) {
	work := []tag.T{t}

	for len(work) > 0 {
		t = work[len(work)-1]
		work = work[:len(work)-1]

		if t.IsDirect() || m.Mark(t.Index()) {
			continue
		}

		word := func(n int) tag.T {
			w, _ := m.Word(t.Index(), n)

			return tag.T(w)
		}

		switch t.Kind() {
		case tag.ConsKind, tag.FunctionKind, tag.StructKind:
			work = append(work, word(0), word(1))
		case tag.SymbolKind:
			work = append(work, word(0), word(1), word(2))
		case tag.VectorKind:
			vt, _ := types.FromKeyword(word(0))
			if vt != types.Any {
				continue
			}

			for i, n := 0, int(word(1).Int()); i < n; i++ {
				work = append(work, word(2+i))
			}
		case tag.StreamKind, tag.DirectKind:
		}
	}
}

func heapGC(e *Env, fr *Frame) error {
	fr.Value = tag.Nil

	if e.config.GCMode != config.None && e.Collect() {
		fr.Value = tag.True
	}

	return nil
}
