// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

func floatBinary(source string, op func(a, b float32) float32) func(*Env, *Frame) error {
	return func(e *Env, fr *Frame) error {
		if err := e.check(source, fr, types.Float, types.Float); err != nil {
			return err
		}

		fr.Value = tag.Float(op(fr.Argv[0].Float32(), fr.Argv[1].Float32()))

		return nil
	}
}

func floatDiv(e *Env, fr *Frame) error {
	if err := e.check("mu:fdiv", fr, types.Float, types.Float); err != nil {
		return err
	}

	a, b := fr.Argv[0].Float32(), fr.Argv[1].Float32()
	if b == 0 {
		return exception.New(fr.Argv[0], exception.ZeroDivide, "mu:fdiv")
	}

	fr.Value = tag.Float(a / b)

	return nil
}

func floatLessThan(e *Env, fr *Frame) error {
	if err := e.check("mu:fless-than", fr, types.Float, types.Float); err != nil {
		return err
	}

	fr.Value = boolean(fr.Argv[0].Float32() < fr.Argv[1].Float32())

	return nil
}
