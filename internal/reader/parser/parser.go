// Released under an MIT license. See LICENSE.

// Package parser provides a recursive descent parser for mu forms.
package parser

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/michaelmacinnis/adapted"
	"github.com/michaelmacinnis/mu/internal/engine/core"
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/reader/token"
	"github.com/michaelmacinnis/mu/internal/type/loc"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

const source = "mu:read"

//nolint:gochecknoglobals
var (
	commaKey  = tag.MustKeyword("comma")
	quasiKey  = tag.MustKeyword("quasi")
	quoteKey  = tag.MustKeyword("quote")
	spliceKey = tag.MustKeyword("splice")

	charNames = map[string]rune{
		"linefeed": '\n',
		"newline":  '\n',
		"page":     '\f',
		"return":   '\r',
		"space":    ' ',
		"tab":      '\t',
	}
)

// T holds the state of the parser.
type T struct {
	ahead int             // Lookahead count.
	env   *core.Env       // Allocator for parsed values.
	item  func() *token.T // Function to call to get another token.
	token *token.T        // Token lookahead.
	where func() loc.T    // Current location, for end of input errors.
}

// New creates a new parser.
// It connects a producer of tokens with a consumer of forms.
func New(e *core.Env, item func() *token.T, where func() loc.T) *T {
	return &T{env: e, item: item, where: where}
}

// Parse consumes the tokens for one form and returns it. If there are no
// tokens before the end of input, Parse returns io.EOF.
func (p *T) Parse() (v tag.T, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		ex, ok := r.(*exception.T)
		if !ok {
			panic(r)
		}

		v, err = tag.Nil, ex
	}()

	if p.peek() == nil {
		return tag.Nil, io.EOF
	}

	return p.datum(), nil
}

func (p *T) consume() *token.T {
	if p.ahead == 0 {
		panic("nothing to consume.")
	}

	t := p.token

	p.ahead = 0
	p.token = nil

	return t
}

func (p *T) check(v tag.T, err error) tag.T {
	if err == nil {
		return v
	}

	var ex *exception.T
	if errors.As(err, &ex) {
		panic(ex)
	}

	panic(exception.New(tag.Nil, exception.Read, source))
}

func (p *T) expect(c token.Class) {
	if p.peek().Is(c) {
		p.consume()

		return
	}

	p.unexpected(p.peek())
}

func (p *T) peek() *token.T {
	if p.ahead > 0 {
		return p.token
	}

	t := p.item()

	p.token = t
	p.ahead = 1

	return t
}

func (p *T) syntax(at loc.T, msg string) {
	s := p.check(p.env.MakeString(at.String() + ": " + msg))

	panic(exception.New(s, exception.Syntax, source))
}

func (p *T) unexpected(t *token.T) {
	if t == nil {
		l := p.where()
		s := p.check(p.env.MakeString(l.String() + ": unexpected end of input"))

		panic(exception.New(s, exception.Eof, source))
	}

	p.syntax(t.Source(), "unexpected '"+t.Value()+"'")
}

// T state functions.

// <datum> ::= <list> | <vector> | <struct> | <prefixed> | <atom> .
func (p *T) datum() tag.T {
	t := p.peek()

	switch {
	case t.Is('('):
		p.consume()

		return p.list()
	case t.Is(token.VectorOpen):
		p.consume()

		return p.vector()
	case t.Is(token.StructOpen):
		p.consume()

		return p.structure()
	case t.Is('\''):
		p.consume()

		return p.check(p.env.Cons(quoteKey, p.datum()))
	case t.Is('`'):
		return p.prefixed(quasiKey)
	case t.Is(','):
		return p.prefixed(commaKey)
	case t.Is(token.CommaAt):
		return p.prefixed(spliceKey)
	case t.Is(')'), t.Is(token.Error), t == nil:
		p.unexpected(t)
	}

	return p.atom(p.consume())
}

// <list> ::= ')' | <datum>+ ('.' <datum>)? ')' .
func (p *T) list() tag.T {
	elements := []tag.T{}
	tail := tag.Nil

	for {
		t := p.peek()
		if t.Is(')') {
			p.consume()

			break
		}

		if t.Is(token.Symbol) && t.Value() == "." {
			if len(elements) == 0 {
				p.unexpected(t)
			}

			p.consume()

			tail = p.datum()

			p.expect(')')

			break
		}

		elements = append(elements, p.datum())
	}

	return p.check(p.env.ListDotted(tail, elements...))
}

// <prefixed> ::= ('`' | ',' | ',@') <datum> .
func (p *T) prefixed(k tag.T) tag.T {
	p.consume()

	return p.check(p.env.List(k, p.datum()))
}

// <struct> ::= '#s(' <keyword> <datum>* ')' .
func (p *T) structure() tag.T {
	t := p.peek()
	typ := p.datum()

	if types.Of(typ) != types.Keyword {
		p.syntax(t.Source(), "struct type must be a keyword")
	}

	return p.check(p.env.MakeStruct(typ, p.elements()))
}

// <vector> ::= '#(' <keyword> <datum>* ')' .
func (p *T) vector() tag.T {
	t := p.peek()

	vt, ok := types.FromKeyword(p.datum())
	if !ok {
		p.syntax(t.Source(), "unknown vector type '"+t.Value()+"'")
	}

	return p.check(p.env.MakeTyped(vt, p.elements()))
}

func (p *T) elements() []tag.T {
	elements := []tag.T{}

	for !p.peek().Is(')') {
		if p.peek() == nil {
			p.unexpected(nil)
		}

		elements = append(elements, p.datum())
	}

	p.consume()

	return elements
}

//nolint:cyclop
func (p *T) atom(t *token.T) tag.T {
	text := t.Value()

	switch {
	case t.Is(token.Bits):
		return p.bits(t, text[2:])
	case t.Is(token.Char):
		return p.char(t, text[2:])
	case t.Is(token.DoubleQuoted):
		s, err := adapted.ActualBytes(text[1 : len(text)-1])
		if err != nil {
			p.syntax(t.Source(), "malformed string")
		}

		return p.check(p.env.MakeString(s))
	case t.Is(token.Hex):
		return p.fixnum(t, text[2:], 16)
	case t.Is(token.Uninterned):
		if len(text) == 2 {
			p.syntax(t.Source(), "missing symbol name")
		}

		return p.check(p.env.MakeSymbol(text[2:], tag.Unbound))
	}

	return p.symbol(t, unescape(text))
}

func (p *T) bits(t *token.T, digits string) tag.T {
	bits := make([]tag.T, 0, len(digits))

	for _, r := range digits {
		switch r {
		case '0', '1':
			bits = append(bits, tag.MustFixnum(int(r-'0')))
		default:
			p.syntax(t.Source(), "bad bit vector '"+t.Value()+"'")
		}
	}

	return p.check(p.env.MakeTyped(types.Bit, bits))
}

func (p *T) char(t *token.T, name string) tag.T {
	if r, ok := charNames[name]; ok {
		return tag.Char(r)
	}

	r, w := utf8.DecodeRuneInString(name)
	if w == 0 || w != len(name) {
		p.syntax(t.Source(), "unknown character '"+t.Value()+"'")
	}

	return tag.Char(r)
}

func (p *T) fixnum(t *token.T, digits string, base int) tag.T {
	n, err := strconv.ParseInt(digits, base, 64)
	if errors.Is(err, strconv.ErrRange) {
		p.check(tag.Nil, p.over(t))
	} else if err != nil {
		p.syntax(t.Source(), "bad number '"+t.Value()+"'")
	}

	v, ok := tag.Fixnum(n)
	if !ok {
		p.check(tag.Nil, p.over(t))
	}

	return v
}

func (p *T) over(t *token.T) error {
	s := p.check(p.env.MakeString(t.Value()))

	return exception.New(s, exception.Over, source)
}

//nolint:cyclop
func (p *T) symbol(t *token.T, text string) tag.T {
	switch text {
	case ".":
		p.unexpected(t)
	case "nil":
		return tag.Nil
	case "t":
		return tag.True
	}

	if looksNumeric(text) {
		if _, err := strconv.ParseInt(text, 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
			return p.fixnum(t, text, 10)
		}

		if strings.ContainsAny(text, ".eE") {
			f, err := strconv.ParseFloat(text, 32)
			if errors.Is(err, strconv.ErrRange) {
				p.check(tag.Nil, p.over(t))
			}

			if err == nil {
				return tag.Float(float32(f))
			}
		}
	}

	if text[0] == ':' {
		k, ok := tag.Keyword(text[1:])
		if !ok {
			p.syntax(t.Source(), "bad keyword '"+text+"'")
		}

		return k
	}

	qualifier, name, found := strings.Cut(text, ":")
	if !found {
		qualifier, name = "", text
	} else if qualifier == "" || name == "" {
		p.syntax(t.Source(), "bad symbol '"+text+"'")
	}

	return p.check(p.env.Resolve(qualifier, name))
}

// Helper functions.

func looksNumeric(s string) bool {
	s = strings.TrimLeft(s, "+-")

	return s != "" && (s[0] == '.' || s[0] >= '0' && s[0] <= '9')
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder

	escaped := false

	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true

			continue
		}

		escaped = false

		b.WriteRune(r)
	}

	return b.String()
}
