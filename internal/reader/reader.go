// Released under an MIT license. See LICENSE.

// Package reader connects mu streams to the mu lexer and parser.
package reader

import (
	"errors"
	"io"
	"strings"

	"github.com/michaelmacinnis/mu/internal/engine/core"
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/reader/lexer"
	"github.com/michaelmacinnis/mu/internal/reader/parser"
	"github.com/michaelmacinnis/mu/internal/reader/token"
	"github.com/michaelmacinnis/mu/internal/type/tag"
)

// T (reader) reads forms from a single mu stream.
type T struct {
	env    *core.Env
	lexer  *lexer.T
	parser *parser.T
	stream tag.T

	err      error // First stream error.
	ended    bool  // Stream is at end of input.
	sentinel bool  // Trailing newline supplied at end of input.
}

type reader = T

// New creates a new reader for stream.
func New(e *core.Env, stream tag.T) *T {
	r := &T{
		env:    e,
		lexer:  lexer.New(e.String(stream, true)),
		stream: stream,
	}

	r.parser = parser.New(e, r.item, r.lexer.Location)

	return r
}

// Read reads one form from stream. It has the signature of core.Reader.
//
// Characters read from the stream past the end of the form are pushed
// back so the next read, by this or any other reader, sees them.
func Read(e *core.Env, stream tag.T, eofError bool, eofValue tag.T) (tag.T, error) {
	return New(e, stream).Read(eofError, eofValue)
}

// Read reads one form. At end of input it returns eofValue or,
// if eofError is set, raises :eof.
func (r *reader) Read(eofError bool, eofValue tag.T) (tag.T, error) {
	v, err := r.parser.Parse()

	// Input left over from a form, or from any error other than
	// running out of input, belongs to the next read.
	if ex, ok := exception.As(err); err == nil || ok && ex.Condition != exception.Eof {
		r.unread(r.remainder())
	}

	if r.err != nil {
		return tag.Nil, r.err
	}

	switch {
	case errors.Is(err, io.EOF):
		// Unterminated tokens are never emitted.
		if eofError || strings.TrimSpace(r.lexer.Remainder()) != "" {
			return tag.Nil, exception.New(r.stream, exception.Eof, "mu:read")
		}

		return eofValue, nil
	case err != nil:
		return tag.Nil, err
	}

	return v, nil
}

func (r *reader) item() *token.T {
	for {
		t := r.lexer.Token()
		if t != nil {
			return t
		}

		if r.ended {
			if r.sentinel {
				return nil
			}

			// A final newline terminates any trailing atom.
			r.sentinel = true
			r.lexer.Scan("\n")

			continue
		}

		r.line()
	}
}

// line passes the next line from the stream to the lexer.
func (r *reader) line() {
	var b strings.Builder

	for {
		c, ok, err := r.env.ReadChar(r.stream)
		if err != nil && r.err == nil {
			r.err = err
		}

		if !ok || err != nil {
			r.ended = true

			break
		}

		b.WriteRune(c)

		if c == '\n' {
			break
		}
	}

	if b.Len() > 0 {
		r.lexer.Scan(b.String())
	}
}

func (r *reader) remainder() string {
	s := r.lexer.Remainder()
	if r.sentinel {
		s = strings.TrimSuffix(s, "\n")
	}

	return s
}

func (r *reader) unread(s string) {
	runes := []rune(s)

	for i := len(runes) - 1; i >= 0; i-- {
		if err := r.env.UnreadChar(r.stream, runes[i]); err != nil {
			if r.err == nil {
				r.err = err
			}

			return
		}
	}
}
