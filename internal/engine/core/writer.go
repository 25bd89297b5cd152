// Released under an MIT license. See LICENSE.

package core

import (
	"strconv"
	"strings"

	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

//nolint:gochecknoglobals
var charNames = map[rune]string{
	' ':  "space",
	'\t': "tab",
	'\n': "linefeed",
	'\f': "page",
	'\r': "return",
}

// String returns the printed representation of t. With escape set,
// characters and strings are written so the reader can read them back.
func (e *Env) String(t tag.T, escape bool) string {
	var b strings.Builder

	e.write(&b, t, escape)

	return b.String()
}

//nolint:cyclop
func (e *Env) write(b *strings.Builder, t tag.T, escape bool) {
	switch types.Of(t) {
	case types.Char:
		r := t.Rune()
		if !escape {
			b.WriteRune(r)

			return
		}

		b.WriteString(`#\`)

		if name, ok := charNames[r]; ok {
			b.WriteString(name)
		} else {
			b.WriteRune(r)
		}
	case types.Cons:
		e.writeList(b, t, escape)
	case types.Fixnum:
		b.WriteString(strconv.FormatInt(t.Int(), 10))
	case types.Float:
		s := strconv.FormatFloat(float64(t.Float32()), 'g', -1, 32)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}

		b.WriteString(s)
	case types.Function:
		b.WriteString("#<function: ")
		b.WriteString(strconv.Itoa(e.FunctionArity(t)))
		b.WriteByte(' ')

		if name := e.FunctionName(t); name != "" {
			b.WriteString("mu:" + name)
		} else {
			b.WriteString(":lambda")
		}

		b.WriteByte('>')
	case types.Keyword, types.Null:
		b.WriteByte(':')
		b.Write(t.Text())
	case types.Namespace:
		b.WriteString("#<namespace: ")
		b.WriteString(strconv.Quote(e.NamespaceName(t)))
		b.WriteByte('>')
	case types.Stream:
		b.WriteString("#<stream: ")
		b.WriteString(strconv.Itoa(e.StreamID(t)))
		b.WriteByte(' ')
		e.write(b, e.StreamDirection(t), true)
		b.WriteByte('>')
	case types.Struct:
		b.WriteString("#s(")
		e.write(b, e.StructType(t), true)

		for _, el := range e.VectorElements(e.StructVector(t)) {
			b.WriteByte(' ')
			e.write(b, el, true)
		}

		b.WriteByte(')')
	case types.Symbol:
		e.writeSymbol(b, t)
	case types.Vector:
		e.writeVector(b, t, escape)
	default:
		b.WriteString("#<unknown: ")
		b.WriteString(strconv.FormatUint(uint64(t), 16))
		b.WriteByte('>')
	}
}

func (e *Env) writeList(b *strings.Builder, t tag.T, escape bool) {
	b.WriteByte('(')

	for first := true; ; first = false {
		if !first {
			b.WriteByte(' ')
		}

		e.write(b, e.Car(t), escape)

		t = e.Cdr(t)
		if t.Kind() != tag.ConsKind {
			break
		}
	}

	if t != tag.Nil {
		b.WriteString(" . ")
		e.write(b, t, escape)
	}

	b.WriteByte(')')
}

func (e *Env) writeSymbol(b *strings.Builder, t tag.T) {
	switch ns := e.SymbolNamespace(t); ns {
	case tag.Nil:
		b.WriteString("#:")
	case e.nullNS:
	default:
		b.WriteString(e.NamespaceName(ns))
		b.WriteByte(':')
	}

	b.WriteString(e.SymbolName(t))
}

func (e *Env) writeVector(b *strings.Builder, t tag.T, escape bool) {
	switch vt := e.VectorType(t); vt {
	case types.Char:
		if escape {
			b.WriteString(strconv.Quote(e.StringOf(t)))
		} else {
			b.WriteString(e.StringOf(t))
		}
	case types.Bit:
		b.WriteString("#*")

		for _, bit := range e.VectorElements(t) {
			b.WriteString(strconv.FormatInt(bit.Int(), 10))
		}
	default:
		b.WriteString("#(")
		e.write(b, vt.Keyword(), true)

		for _, el := range e.VectorElements(t) {
			b.WriteByte(' ')
			e.write(b, el, true)
		}

		b.WriteByte(')')
	}
}
