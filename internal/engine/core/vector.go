// Released under an MIT license. See LICENSE.

package core

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/joomcode/errorx"

	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// Vector images are [element-type, length] followed by element data.
const vectorHeader = 2 * 8

// MakeBytes creates a byte vector.
func (e *Env) MakeBytes(b []byte) (tag.T, error) {
	if t, ok := tag.Bytes(b); ok {
		return t, nil
	}

	return e.evict(tag.VectorKind, []tag.T{types.Byte.Keyword(), tag.MustFixnum(len(b))}, b)
}

// MakeString creates a character vector.
func (e *Env) MakeString(s string) (tag.T, error) {
	if t, ok := tag.String(s); ok {
		return t, nil
	}

	n := utf8.RuneCountInString(s)

	return e.evict(tag.VectorKind, []tag.T{types.Char.Keyword(), tag.MustFixnum(n)}, []byte(s))
}

// MakeVector creates a general vector.
func (e *Env) MakeVector(elements []tag.T) (tag.T, error) {
	return e.MakeTyped(types.Any, elements)
}

// MakeTyped creates a vector of vt holding elements. Elements that do not
// belong in a vector of vt raise :type.
func (e *Env) MakeTyped(vt types.T, elements []tag.T) (tag.T, error) {
	switch vt {
	case types.Any, types.Bit, types.Byte, types.Char, types.Fixnum, types.Float:
	default:
		return tag.Nil, exception.New(vt.Keyword(), exception.Type, "mu:make-vector")
	}

	var vdata []byte

	for _, el := range elements {
		ok := true

		switch vt {
		case types.Any:
			vdata = binary.LittleEndian.AppendUint64(vdata, uint64(el))
		case types.Bit:
			ok = types.Of(el) == types.Fixnum && (el.Int() == 0 || el.Int() == 1)
		case types.Byte:
			ok = types.Of(el) == types.Fixnum && el.Int() >= 0 && el.Int() <= math.MaxUint8
			vdata = append(vdata, byte(el.Int()))
		case types.Char:
			ok = types.Of(el) == types.Char
			vdata = utf8.AppendRune(vdata, el.Rune())
		case types.Fixnum:
			ok = types.Of(el) == types.Fixnum
			vdata = binary.LittleEndian.AppendUint64(vdata, uint64(el.Int()))
		case types.Float:
			ok = types.Of(el) == types.Float
			vdata = binary.LittleEndian.AppendUint32(vdata, math.Float32bits(el.Float32()))
		}

		if !ok {
			return tag.Nil, exception.New(el, exception.Type, "mu:make-vector")
		}
	}

	switch vt {
	case types.Bit:
		vdata = make([]byte, (len(elements)+7)/8)
		for i, el := range elements {
			if el.Int() == 1 {
				vdata[i/8] |= 1 << (i % 8)
			}
		}
	case types.Byte:
		return e.MakeBytes(vdata)
	case types.Char:
		return e.MakeString(string(vdata))
	}

	return e.evict(tag.VectorKind, []tag.T{vt.Keyword(), tag.MustFixnum(len(elements))}, vdata)
}

// VectorType returns the element type of the vector v.
func (e *Env) VectorType(v tag.T) types.T {
	if v.IsDirect() {
		switch v.DirectType() {
		case tag.ByteVecType:
			return types.Byte
		case tag.StringType:
			return types.Char
		}

		errorx.Panic(errorx.AssertionFailed.New("%#x is not a vector", uint64(v)))
	}

	vt, ok := types.FromKeyword(e.word(v, 0))
	if !ok {
		errorx.Panic(errorx.AssertionFailed.New("vector %#x has a corrupt type", uint64(v)))
	}

	return vt
}

// VectorLength returns the number of elements in the vector v.
func (e *Env) VectorLength(v tag.T) int {
	if v.IsDirect() {
		if v.DirectType() == tag.StringType {
			return utf8.RuneCount(v.Text())
		}

		return v.Length()
	}

	return int(e.word(v, 1).Int())
}

// VectorRef returns element i of the vector v.
func (e *Env) VectorRef(v tag.T, i int) (tag.T, bool) {
	n := e.VectorLength(v)
	if i < 0 || i >= n {
		return tag.Nil, false
	}

	switch vt := e.VectorType(v); vt {
	case types.Any:
		return e.word(v, 2+i), true
	case types.Bit:
		b := e.data(v, i/8, 1)

		return tag.MustFixnum(int(b[0] >> (i % 8) & 1)), true
	case types.Byte:
		return tag.MustFixnum(int(e.Bytes(v)[i])), true
	case types.Char:
		return tag.Char([]rune(e.StringOf(v))[i]), true
	case types.Fixnum:
		b := e.data(v, i*8, 8)
		t, _ := tag.Fixnum(int64(binary.LittleEndian.Uint64(b)))

		return t, true
	case types.Float:
		b := e.data(v, i*4, 4)

		return tag.Float(math.Float32frombits(binary.LittleEndian.Uint32(b))), true
	}

	return tag.Nil, false
}

// VectorElements returns every element of the vector v.
func (e *Env) VectorElements(v tag.T) []tag.T {
	n := e.VectorLength(v)
	elements := make([]tag.T, 0, n)

	if e.VectorType(v) == types.Char {
		for _, r := range e.StringOf(v) {
			elements = append(elements, tag.Char(r))
		}

		return elements
	}

	for i := 0; i < n; i++ {
		el, _ := e.VectorRef(v, i)
		elements = append(elements, el)
	}

	return elements
}

// Bytes returns the contents of a byte vector.
func (e *Env) Bytes(v tag.T) []byte {
	if v.IsDirect() {
		return v.Text()
	}

	return e.data(v, 0, e.VectorLength(v))
}

// StringOf returns the contents of a character vector.
func (e *Env) StringOf(v tag.T) string {
	if v.IsDirect() {
		return string(v.Text())
	}

	info, ok := e.heap.Info(v.Index())
	if !ok {
		errorx.Panic(errorx.AssertionFailed.New("no image for %#x", uint64(v)))
	}

	// Only the rune count is recorded, so decode that many runes.
	b := e.data(v, 0, (info.Len-3)*8)
	end := 0

	for n := e.VectorLength(v); n > 0; n-- {
		_, w := utf8.DecodeRune(b[end:])
		end += w
	}

	return string(b[:end])
}

func (e *Env) data(v tag.T, offset, n int) []byte {
	b, ok := e.heap.Data(v.Index(), vectorHeader+offset, n)
	if !ok {
		errorx.Panic(errorx.AssertionFailed.New("vector %#x has no data at %d", uint64(v), offset))
	}

	return b
}

func vectorMake(e *Env, fr *Frame) error {
	if err := e.check("mu:make-vector", fr, types.Keyword, types.List); err != nil {
		return err
	}

	vt, ok := types.FromKeyword(fr.Argv[0])
	if !ok {
		return exception.New(fr.Argv[0], exception.Type, "mu:make-vector")
	}

	v, err := e.MakeTyped(vt, e.Slice(fr.Argv[1]))
	fr.Value = v

	return err
}

func vectorRef(e *Env, fr *Frame) error {
	if err := e.check("mu:svref", fr, types.Vector, types.Fixnum); err != nil {
		return err
	}

	v, ok := e.VectorRef(fr.Argv[0], int(fr.Argv[1].Int()))
	if !ok {
		return exception.New(fr.Argv[1], exception.Range, "mu:svref")
	}

	fr.Value = v

	return nil
}

func vectorLength(e *Env, fr *Frame) error {
	if err := e.check("mu:vector-length", fr, types.Vector); err != nil {
		return err
	}

	fr.Value = tag.MustFixnum(e.VectorLength(fr.Argv[0]))

	return nil
}

func vectorType(e *Env, fr *Frame) error {
	if err := e.check("mu:vector-type", fr, types.Vector); err != nil {
		return err
	}

	fr.Value = e.VectorType(fr.Argv[0]).Keyword()

	return nil
}
