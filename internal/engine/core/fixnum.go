// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// overflow is the direction a result left the int64 range: zero if it did not.
type overflow int

// fixnum converts an exact result to a fixnum, raising :over or :under
// on behalf of source with object when it falls outside the fixnum range.
func fixnum(n int64, o overflow, object tag.T, source string) (tag.T, error) {
	switch {
	case o > 0 || (o == 0 && n > tag.MaxFixnum):
		return tag.Nil, exception.New(object, exception.Over, source)
	case o < 0 || n < tag.MinFixnum:
		return tag.Nil, exception.New(object, exception.Under, source)
	}

	t, _ := tag.Fixnum(n)

	return t, nil
}

func fixnumBinary(source string, op func(a, b int64) (int64, overflow)) func(*Env, *Frame) error {
	return func(e *Env, fr *Frame) error {
		if err := e.check(source, fr, types.Fixnum, types.Fixnum); err != nil {
			return err
		}

		n, o := op(fr.Argv[0].Int(), fr.Argv[1].Int())

		v, err := fixnum(n, o, fr.Argv[0], source)
		fr.Value = v

		return err
	}
}

// Operands are fixnums, so only multiplication and shifts can leave the int64 range.

func add(a, b int64) (int64, overflow) {
	return a + b, 0
}

func ash(n, shift int64) (int64, overflow) {
	switch {
	case n == 0:
		return 0, 0
	case shift <= -63:
		if n < 0 {
			return -1, 0
		}

		return 0, 0
	case shift < 0:
		return n >> -shift, 0
	case shift < 63 && (n<<shift)>>shift == n:
		return n << shift, 0
	case n < 0:
		return 0, -1
	}

	return 0, 1
}

func logand(a, b int64) (int64, overflow) {
	return a & b, 0
}

func logor(a, b int64) (int64, overflow) {
	return a | b, 0
}

func mul(a, b int64) (int64, overflow) {
	if a == 0 || b == 0 {
		return 0, 0
	}

	r := a * b
	if r/b == a {
		return r, 0
	}

	if (a < 0) != (b < 0) {
		return 0, -1
	}

	return 0, 1
}

func sub(a, b int64) (int64, overflow) {
	return a - b, 0
}

func fixnumDiv(e *Env, fr *Frame) error {
	if err := e.check("mu:div", fr, types.Fixnum, types.Fixnum); err != nil {
		return err
	}

	a, b := fr.Argv[0].Int(), fr.Argv[1].Int()
	if b == 0 {
		return exception.New(fr.Argv[0], exception.ZeroDivide, "mu:div")
	}

	v, err := fixnum(a/b, 0, fr.Argv[0], "mu:div")
	fr.Value = v

	return err
}

func fixnumLessThan(e *Env, fr *Frame) error {
	if err := e.check("mu:less-than", fr, types.Fixnum, types.Fixnum); err != nil {
		return err
	}

	fr.Value = boolean(fr.Argv[0].Int() < fr.Argv[1].Int())

	return nil
}

func fixnumLognot(e *Env, fr *Frame) error {
	if err := e.check("mu:lognot", fr, types.Fixnum); err != nil {
		return err
	}

	fr.Value, _ = tag.Fixnum(^fr.Argv[0].Int())

	return nil
}
