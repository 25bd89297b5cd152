// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// Struct images are [type, vector].

// MakeStruct creates a struct of type typ holding elements.
func (e *Env) MakeStruct(typ tag.T, elements []tag.T) (tag.T, error) {
	v, err := e.MakeVector(elements)
	if err != nil {
		return tag.Nil, err
	}

	return e.evict(tag.StructKind, []tag.T{typ, v}, nil)
}

// StructType returns the type keyword of the struct s.
func (e *Env) StructType(s tag.T) tag.T {
	return e.word(s, 0)
}

// StructVector returns the vector holding the elements of the struct s.
func (e *Env) StructVector(s tag.T) tag.T {
	return e.word(s, 1)
}

func structMake(e *Env, fr *Frame) error {
	if err := e.check("mu:make-struct", fr, types.Keyword, types.List); err != nil {
		return err
	}

	s, err := e.MakeStruct(fr.Argv[0], e.Slice(fr.Argv[1]))
	fr.Value = s

	return err
}

func structType(e *Env, fr *Frame) error {
	if err := e.check("mu:struct-type", fr, types.Struct); err != nil {
		return err
	}

	fr.Value = e.StructType(fr.Argv[0])

	return nil
}

func structVec(e *Env, fr *Frame) error {
	if err := e.check("mu:struct-vec", fr, types.Struct); err != nil {
		return err
	}

	fr.Value = e.StructVector(fr.Argv[0])

	return nil
}
