// Released under an MIT license. See LICENSE.

// Package tag provides mu's tagged 64-bit value word.
//
// The low three bits select the tag kind. Direct tags carry their value in
// the word itself; indirect tags carry the word index of a heap image.
//
//	direct:   [data:56][length or ext:3][direct type:2][kind:3]
//	indirect: [image id:59][heap id:2][kind:3]
package tag

import (
	"encoding/binary"
	"math"

	"github.com/joomcode/errorx"
)

// T (tag) is a mu value.
type T uint64

type tag = T

// Kind is the tag type held in the low three bits.
type Kind uint8

// Tag kinds.
const (
	DirectKind Kind = iota
	ConsKind
	FunctionKind
	StreamKind
	StructKind
	SymbolKind
	VectorKind
)

// DirectType distinguishes the different direct encodings.
type DirectType uint8

// Direct types.
const (
	ExtType DirectType = iota
	ByteVecType
	KeywordType
	StringType
)

// Ext distinguishes extended direct values.
type Ext uint8

// Extended direct types.
const (
	CharExt Ext = iota
	FixnumExt
	FloatExt
	NamespaceExt
)

// Fixnum limits.
const (
	MaxFixnum = 1<<55 - 1
	MinFixnum = -(1 << 55)
)

// DirectMax is the longest string, byte vector or keyword held in a direct tag.
const DirectMax = 7

//nolint:gochecknoglobals
var (
	// Nil is the empty list and false value.
	Nil = MustKeyword("nil")

	// True is the canonical true value.
	True = MustKeyword("t")

	// Unbound fills the value slot of a symbol with no value.
	Unbound = direct(KeywordType, 0, 0)
)

func direct(dt DirectType, ext uint8, data uint64) T {
	return T(data<<8 | uint64(ext&7)<<5 | uint64(dt&3)<<3 | uint64(DirectKind))
}

func packed(dt DirectType, b []byte) T {
	var buf [8]byte

	copy(buf[:], b)

	return direct(dt, uint8(len(b)), binary.LittleEndian.Uint64(buf[:]))
}

// Bytes creates a direct byte vector. It fails if b is too long.
func Bytes(b []byte) (T, bool) {
	if len(b) > DirectMax {
		return 0, false
	}

	return packed(ByteVecType, b), true
}

// Char creates a character.
func Char(r rune) T {
	return direct(ExtType, uint8(CharExt), uint64(uint32(r)))
}

// Fixnum creates a fixnum. It fails if n does not fit in 56 bits.
func Fixnum(n int64) (T, bool) {
	if n > MaxFixnum || n < MinFixnum {
		return 0, false
	}

	return T(uint64(n)<<8 | uint64(FixnumExt)<<5), true
}

// Float creates a single precision float.
func Float(f float32) T {
	return direct(ExtType, uint8(FloatExt), uint64(math.Float32bits(f)))
}

// Indirect creates a tag referring to the heap image at index.
func Indirect(kind Kind, index int) T {
	if kind == DirectKind || kind > VectorKind || index <= 0 {
		errorx.Panic(errorx.IllegalArgument.New("no indirect %d tag for index %d", kind, index))
	}

	return T(uint64(index)<<5 | uint64(kind))
}

// Keyword creates a keyword. It fails if name is empty or too long.
func Keyword(name string) (T, bool) {
	if name == "" || len(name) > DirectMax {
		return 0, false
	}

	return packed(KeywordType, []byte(name)), true
}

// MustFixnum is Fixnum for values known to fit.
func MustFixnum(n int) T {
	t, ok := Fixnum(int64(n))
	if !ok {
		errorx.Panic(errorx.IllegalArgument.New("fixnum out of range: %d", n))
	}

	return t
}

// MustKeyword is Keyword for names known to fit.
func MustKeyword(name string) T {
	t, ok := Keyword(name)
	if !ok {
		errorx.Panic(errorx.IllegalArgument.New("bad keyword name: %q", name))
	}

	return t
}

// Namespace creates a reference to the namespace at index.
func Namespace(index int) T {
	return direct(ExtType, uint8(NamespaceExt), uint64(index))
}

// String creates a direct string. It fails if s is too long.
func String(s string) (T, bool) {
	if len(s) > DirectMax {
		return 0, false
	}

	return packed(StringType, []byte(s)), true
}

// Data returns the 56-bit payload of a direct tag.
func (t tag) Data() uint64 {
	return uint64(t) >> 8
}

// DirectType returns the direct type bits.
func (t tag) DirectType() DirectType {
	return DirectType(t >> 3 & 3)
}

// Ext returns the extended type bits of a direct tag.
func (t tag) Ext() Ext {
	return Ext(t >> 5 & 7)
}

// Float32 returns the float held in t.
func (t tag) Float32() float32 {
	return math.Float32frombits(uint32(t.Data()))
}

// Index returns the heap image index of an indirect tag.
func (t tag) Index() int {
	return int(uint64(t) >> 5)
}

// Int returns the fixnum held in t.
func (t tag) Int() int64 {
	return int64(t) >> 8
}

// IsDirect returns true if t carries its value in the word.
func (t tag) IsDirect() bool {
	return t.Kind() == DirectKind
}

// Kind returns the tag kind.
func (t tag) Kind() Kind {
	return Kind(t & 7)
}

// Length returns the byte length of a direct string, byte vector or keyword.
func (t tag) Length() int {
	return int(t >> 5 & 7)
}

// NamespaceIndex returns the index of the namespace referred to by t.
func (t tag) NamespaceIndex() int {
	return int(t.Data())
}

// Rune returns the character held in t.
func (t tag) Rune() rune {
	return rune(uint32(t.Data()))
}

// Text returns the bytes of a direct string, byte vector or keyword.
func (t tag) Text() []byte {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], t.Data())

	return buf[:t.Length()]
}
