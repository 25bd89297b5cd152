// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

//nolint:gochecknoglobals
var (
	bumpKey = tag.MustKeyword("bump")

	// Heap image types in the order the heap records them.
	heapTypes = [...]struct {
		kind tag.Kind
		typ  types.T
	}{
		{tag.ConsKind, types.Cons},
		{tag.FunctionKind, types.Function},
		{tag.StreamKind, types.Stream},
		{tag.StructKind, types.Struct},
		{tag.SymbolKind, types.Symbol},
		{tag.VectorKind, types.Vector},
	}
)

// View returns the components of t as a general vector.
func (e *Env) View(t tag.T) (tag.T, error) {
	var parts []tag.T

	switch types.Of(t) {
	case types.Cons:
		parts = []tag.T{e.Car(t), e.Cdr(t)}
	case types.Function:
		parts = []tag.T{tag.MustFixnum(e.FunctionArity(t)), e.FunctionForm(t)}
	case types.Stream:
		parts = []tag.T{tag.MustFixnum(e.StreamID(t)), e.StreamDirection(t)}
	case types.Struct:
		parts = []tag.T{e.StructType(t), e.StructVector(t)}
	case types.Symbol:
		name, err := e.MakeString(e.SymbolName(t))
		if err != nil {
			return tag.Nil, err
		}

		parts = []tag.T{e.SymbolNamespace(t), name, e.SymbolValue(t)}
	case types.Vector:
		parts = []tag.T{e.VectorType(t).Keyword(), tag.MustFixnum(e.VectorLength(t))}
	default:
		parts = []tag.T{t}
	}

	return e.MakeVector(parts)
}

// HeapSize returns the number of bytes t occupies.
func (e *Env) HeapSize(t tag.T) int {
	if t.IsDirect() {
		return 8
	}

	info, ok := e.heap.Info(t.Index())
	if !ok {
		return 8
	}

	return info.Len * 8
}

func typesEq(_ *Env, fr *Frame) error {
	fr.Value = boolean(fr.Argv[0] == fr.Argv[1])

	return nil
}

func typesTypeOf(_ *Env, fr *Frame) error {
	fr.Value = types.Of(fr.Argv[0]).Keyword()

	return nil
}

func typesView(e *Env, fr *Frame) error {
	v, err := e.View(fr.Argv[0])
	fr.Value = v

	return err
}

func heapInfo(e *Env, fr *Frame) error {
	npages, pagesize := e.heap.Geometry()

	v, err := e.MakeVector([]tag.T{bumpKey, tag.MustFixnum(pagesize), tag.MustFixnum(npages)})
	fr.Value = v

	return err
}

// heapStat returns #(:t type size total free ...) for each heap image type.
func heapStat(e *Env, fr *Frame) error {
	stats := e.heap.Stats()
	parts := make([]tag.T, 0, len(heapTypes)*4)

	for _, ht := range heapTypes {
		s := stats[ht.kind]
		parts = append(parts, ht.typ.Keyword(), tag.MustFixnum(s.Size), tag.MustFixnum(s.Total), tag.MustFixnum(s.Free))
	}

	v, err := e.MakeVector(parts)
	fr.Value = v

	return err
}

func heapSize(e *Env, fr *Frame) error {
	fr.Value = tag.MustFixnum(e.HeapSize(fr.Argv[0]))

	return nil
}
