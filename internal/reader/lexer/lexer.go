// Released under an MIT license. See LICENSE.

// Package lexer provides a lexical scanner for mu forms.
//
// The mu lexer adapts the state function approach used by Go's text/template
// lexer and described in detail in Rob Pike's talk "Lexical Scanning in Go".
// See https://talks.golang.org/2011/lex.slide for more information.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/michaelmacinnis/mu/internal/reader/token"
	"github.com/michaelmacinnis/mu/internal/type/loc"
)

// T holds the state of the scanner.
type T struct {
	bytes string   // Buffer being scanned.
	first int      // Index of the current token's first byte.
	index int      // Index of the current byte.
	queue []string // Buffers waiting to be scanned.
	runes int      // Runes scanned on the current line.
	saved action   // Escaped action.
	state action   // Current action.

	source loc.T

	tokens chan *token.T
}

// New creates a new T. Label can be a file name or other identifier.
func New(label string) *T {
	l := &T{
		runes: 1,
		source: loc.T{
			Char: 1,
			Line: 1,
			Name: label,
		},
	}

	l.state = skipWhitespace

	return l
}

// Location returns the position of the next unscanned token.
func (l *T) Location() loc.T {
	return l.source
}

// Remainder returns everything passed to Scan that has not been
// consumed by an emitted or skipped token.
func (l *T) Remainder() string {
	s := ""
	if l.first < len(l.bytes) {
		s = l.bytes[l.first:]
	}

	return s + strings.Join(l.queue, "")
}

// Scan passes a text buffer to the lexer for scanning.
// If a buffer is currently being scanned, the new buffer will
// be appended to the list of buffers waiting to be scanned.
func (l *T) Scan(text string) {
	l.queue = append(l.queue, text)
}

// Text is used to return the text corresponding to the current token.
func (l *T) Text() string {
	return l.bytes[l.first:l.index]
}

// Token returns the next scanned token, or nil if no token is available.
func (l *T) Token() *token.T {
	for {
		l.gather()
		if len(l.bytes) == 0 {
			return nil
		}

		select {
		case t := <-l.tokens:
			return t
		default:
			state := l.state(l)
			if state != nil {
				l.state = state
			} else {
				close(l.tokens)
			}
		}
	}
}

type action func(*T) action

const eof = -1

func (l *T) accept(r token.Class, w int) {
	if r == '\n' {
		l.source.Line++
		l.runes = 1
	} else if r != eof {
		l.runes++
	}

	l.index += w
}

func (l *T) emit(c token.Class) {
	l.tokens <- token.New(c, l.Text(), l.source)
	l.skip()
}

func (l *T) escape(escaped, a action) action {
	l.saved = escaped

	return a
}

func (l *T) gather() {
	if len(l.queue) == 0 {
		return
	}

	bytes := strings.Join(l.queue, "")

	if l.first < len(l.bytes) {
		// Prepend leftover to new bytes.
		bytes = l.bytes[l.first:] + bytes
	}

	l.queue = nil
	l.bytes = bytes
	l.index -= l.first
	l.first = 0
	l.tokens = make(chan *token.T, 1)
}

func (l *T) next() token.Class {
	r, w := l.peek()
	l.accept(r, w)

	return r
}

func (l *T) peek() (token.Class, int) {
	r, w := rune(eof), 0
	if l.index < len(l.bytes) {
		r, w = utf8.DecodeRuneInString(l.bytes[l.index:])
	}

	return token.Class(r), w
}

func (l *T) resume() action {
	resumed := l.saved
	l.saved = nil

	return resumed
}

func (l *T) skip() {
	l.source.Char = l.runes
	l.first = l.index
}

// T states.

func afterComma(l *T) action {
	r, w := l.peek()

	switch r {
	case eof:
		return nil
	case '@':
		l.accept(r, w)
		l.emit(token.CommaAt)
	default:
		l.emit(',')
	}

	return skipWhitespace
}

func afterSharp(l *T) action {
	r, w := l.peek()

	switch r {
	case eof:
		return nil
	case '(':
		l.accept(r, w)
		l.emit(token.VectorOpen)

		return skipWhitespace
	case '*':
		l.accept(r, w)

		return scanAtom(token.Bits)
	case ':':
		l.accept(r, w)

		return scanAtom(token.Uninterned)
	case '\\':
		l.accept(r, w)

		return scanChar
	case 's':
		l.accept(r, w)

		return afterSharpS
	case 'x':
		l.accept(r, w)

		return scanAtom(token.Hex)
	case '|':
		l.accept(r, w)

		return skipBlockComment
	}

	l.accept(r, w)
	l.emit(token.Error)

	return skipWhitespace
}

func afterSharpS(l *T) action {
	r, w := l.peek()

	switch r {
	case eof:
		return nil
	case '(':
		l.accept(r, w)
		l.emit(token.StructOpen)
	default:
		l.emit(token.Error)
	}

	return skipWhitespace
}

func escapeNextCharacter(l *T) action {
	r := l.next()

	if r == eof {
		return nil
	}

	return l.resume()
}

// scanAtom returns a state that collects characters up to the next
// delimiter and emits them as a token of class c.
func scanAtom(c token.Class) action {
	var scan action

	scan = func(l *T) action {
		for {
			r, w := l.peek()

			switch {
			case r == eof:
				return nil
			case terminating(r):
				l.emit(c)

				return skipWhitespace
			case r == '\\' && c == token.Symbol:
				l.accept(r, w)

				return l.escape(scan, escapeNextCharacter)
			default:
				l.accept(r, w)
			}
		}
	}

	return scan
}

func scanChar(l *T) action {
	// The first character is taken as is, even if it is a delimiter.
	r := l.next()
	if r == eof {
		return nil
	}

	return scanAtom(token.Char)
}

func scanDoubleQuoted(l *T) action {
	for {
		c := l.next()

		switch c {
		case eof:
			return nil
		case '"':
			l.emit(token.DoubleQuoted)

			return skipWhitespace
		case '\\':
			return l.escape(scanDoubleQuoted, escapeNextCharacter)
		}
	}
}

func skipBlockComment(l *T) action {
	for {
		r := l.next()

		switch r {
		case eof:
			return nil
		case '|':
			if n, w := l.peek(); n == '#' {
				l.accept(n, w)
				l.skip()

				return skipWhitespace
			}
		}
	}
}

func skipComment(l *T) action {
	for {
		r := l.next()

		switch r {
		case eof:
			return nil
		case '\n':
			l.skip()

			return skipWhitespace
		}
	}
}

func skipWhitespace(l *T) action {
	for {
		r := l.next()

		switch r {
		case eof:
			return nil
		case '\t', '\n', '\f', '\r', ' ':
			l.skip()

			continue
		case '(', ')', '\'', '`':
			l.emit(r)
		case '"':
			return scanDoubleQuoted
		case '#':
			return afterSharp
		case ',':
			return afterComma
		case ';':
			return skipComment
		case '\\':
			return l.escape(scanAtom(token.Symbol), escapeNextCharacter)
		default:
			return scanAtom(token.Symbol)
		}

		return skipWhitespace
	}
}

// Helper functions (well, function).

func terminating(r token.Class) bool {
	switch r {
	case '\t', '\n', '\f', '\r', ' ', '"', '\'', '(', ')', ',', ';', '`':
		return true
	}

	return false
}
