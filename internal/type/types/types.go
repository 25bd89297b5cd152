// Released under an MIT license. See LICENSE.

// Package types provides the closed set of mu value types.
package types

import (
	"github.com/joomcode/errorx"

	"github.com/michaelmacinnis/mu/internal/type/tag"
)

// T (types) is a mu value type.
type T uint8

// Types. Any, List and String are only used when checking arguments.
const (
	Any T = iota
	Bit
	Byte
	Char
	Cons
	Fixnum
	Float
	Function
	Keyword
	List
	Namespace
	Null
	Stream
	String
	Struct
	Symbol
	Vector
)

//nolint:gochecknoglobals
var (
	names = [...]string{
		Any:       "t",
		Bit:       "bit",
		Byte:      "byte",
		Char:      "char",
		Cons:      "cons",
		Fixnum:    "fixnum",
		Float:     "float",
		Function:  "func",
		Keyword:   "keyword",
		List:      "list",
		Namespace: "ns",
		Null:      "null",
		Stream:    "stream",
		String:    "string",
		Struct:    "struct",
		Symbol:    "symbol",
		Vector:    "vector",
	}

	keywords = map[tag.T]T{}
)

func init() {
	for t, name := range names {
		keywords[tag.MustKeyword(name)] = T(t)
	}
}

// FromKeyword returns the type named by the keyword k.
func FromKeyword(k tag.T) (T, bool) {
	t, ok := keywords[k]

	return t, ok
}

// Of returns the type of the value t.
func Of(t tag.T) T {
	switch t.Kind() {
	case tag.ConsKind:
		return Cons
	case tag.FunctionKind:
		return Function
	case tag.StreamKind:
		return Stream
	case tag.StructKind:
		return Struct
	case tag.SymbolKind:
		return Symbol
	case tag.VectorKind:
		return Vector
	case tag.DirectKind:
		return direct(t)
	}

	errorx.Panic(errorx.AssertionFailed.New("unknown tag kind %#x", uint64(t)))

	return Any
}

// Keyword returns the keyword that names the type t.
func (t T) Keyword() tag.T {
	return tag.MustKeyword(names[t])
}

// String returns the name of the type t.
func (t T) String() string {
	return names[t]
}

func direct(t tag.T) T {
	switch t.DirectType() {
	case tag.ByteVecType, tag.StringType:
		return Vector
	case tag.KeywordType:
		if t == tag.Nil {
			return Null
		}

		return Keyword
	case tag.ExtType:
		switch t.Ext() {
		case tag.CharExt:
			return Char
		case tag.FixnumExt:
			return Fixnum
		case tag.FloatExt:
			return Float
		case tag.NamespaceExt:
			return Namespace
		}
	}

	errorx.Panic(errorx.AssertionFailed.New("malformed direct tag %#x", uint64(t)))

	return Any
}
