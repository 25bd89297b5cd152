// Released under an MIT license. See LICENSE.

package core

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/system/streams"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// Stream images are [id, direction]. The id indexes the stream table.

//nolint:gochecknoglobals
var (
	bidirKey  = tag.MustKeyword("bidir")
	fileKey   = tag.MustKeyword("file")
	inputKey  = tag.MustKeyword("input")
	outputKey = tag.MustKeyword("output")
	stringKey = tag.MustKeyword("string")
)

type stream struct {
	backend streams.T
	open    bool
}

type streamTable struct {
	sync.RWMutex
	table []*stream
}

// MakeStream registers backend and returns a stream for it.
func (e *Env) MakeStream(backend streams.T, direction tag.T) (tag.T, error) {
	e.streams.Lock()
	id := len(e.streams.table)
	e.streams.table = append(e.streams.table, &stream{backend: backend, open: true})
	e.streams.Unlock()

	return e.evict(tag.StreamKind, []tag.T{tag.MustFixnum(id), direction}, nil)
}

// StreamDirection returns :input, :output or :bidir.
func (e *Env) StreamDirection(st tag.T) tag.T {
	return e.word(st, 1)
}

// StreamID returns the stream table index of st.
func (e *Env) StreamID(st tag.T) int {
	return int(e.word(st, 0).Int())
}

// IsOpen returns true if st has not been closed.
func (e *Env) IsOpen(st tag.T) bool {
	s, ok := e.stream(st)

	return ok && s.open
}

// ReadChar reads a character from st. At end of input it returns false.
func (e *Env) ReadChar(st tag.T) (rune, bool, error) {
	b, err := e.backend(st, "mu:read-char")
	if err != nil {
		return 0, false, err
	}

	r, err := b.ReadChar()
	if errors.Is(err, io.EOF) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, exception.New(st, exception.Read, "mu:read-char")
	}

	return r, true, nil
}

// UnreadChar pushes r back onto st.
func (e *Env) UnreadChar(st tag.T, r rune) error {
	b, err := e.backend(st, "mu:unread-char")
	if err != nil {
		return err
	}

	if err := b.UnreadChar(r); err != nil {
		return exception.New(st, exception.Stream, "mu:unread-char")
	}

	return nil
}

// WriteString writes s to st.
func (e *Env) WriteString(st tag.T, s string) error {
	b, err := e.backend(st, "mu:write")
	if err != nil {
		return err
	}

	for _, r := range s {
		if err := b.WriteRune(r); err != nil {
			return exception.New(st, exception.Write, "mu:write")
		}
	}

	return nil
}

// Flush writes any buffered output of st.
func (e *Env) Flush(st tag.T) error {
	b, err := e.backend(st, "mu:flush")
	if err != nil {
		return err
	}

	if err := b.Flush(); err != nil {
		return exception.New(st, exception.Write, "mu:flush")
	}

	return nil
}

func (e *Env) backend(st tag.T, source string) (streams.T, error) {
	s, ok := e.stream(st)
	if !ok {
		return nil, exception.New(st, exception.Type, source)
	}

	if !s.open {
		return nil, exception.New(st, exception.Open, source)
	}

	return s.backend, nil
}

func (e *Env) stream(st tag.T) (*stream, bool) {
	if types.Of(st) != types.Stream {
		return nil, false
	}

	id := e.StreamID(st)

	e.streams.RLock()
	defer e.streams.RUnlock()

	if id < 0 || id >= len(e.streams.table) {
		return nil, false
	}

	return e.streams.table[id], true
}

func streamClose(e *Env, fr *Frame) error {
	if err := e.check("mu:close", fr, types.Stream); err != nil {
		return err
	}

	s, ok := e.stream(fr.Argv[0])
	if !ok {
		return exception.New(fr.Argv[0], exception.Type, "mu:close")
	}

	e.streams.Lock()
	wasOpen := s.open
	s.open = false
	e.streams.Unlock()

	fr.Value = tag.Nil

	if wasOpen {
		if err := s.backend.Close(); err != nil {
			return exception.New(fr.Argv[0], exception.Stream, "mu:close")
		}

		fr.Value = tag.True
	}

	return nil
}

func streamFlush(e *Env, fr *Frame) error {
	if err := e.check("mu:flush", fr, types.Stream); err != nil {
		return err
	}

	fr.Value = tag.Nil

	return e.Flush(fr.Argv[0])
}

func streamGetString(e *Env, fr *Frame) error {
	if err := e.check("mu:get-string", fr, types.Stream); err != nil {
		return err
	}

	b, err := e.backend(fr.Argv[0], "mu:get-string")
	if err != nil {
		return err
	}

	s, ok := b.Contents()
	if !ok {
		return exception.New(fr.Argv[0], exception.Type, "mu:get-string")
	}

	v, err := e.MakeString(s)
	fr.Value = v

	return err
}

func streamOpen(e *Env, fr *Frame) error {
	err := e.check("mu:open", fr, types.Keyword, types.Keyword, types.String, types.Any)
	if err != nil {
		return err
	}

	kind, direction, arg, raise := fr.Argv[0], fr.Argv[1], e.StringOf(fr.Argv[2]), fr.Argv[3] != tag.Nil

	var backend streams.T

	switch kind {
	case fileKey:
		switch direction {
		case inputKey:
			f, ferr := os.Open(arg)
			if ferr != nil {
				return openFailure(fr, raise, fr.Argv[2])
			}

			backend = streams.Reader(f)
		case outputKey:
			f, ferr := os.Create(arg)
			if ferr != nil {
				return openFailure(fr, raise, fr.Argv[2])
			}

			backend = streams.Writer(f)
		}
	case stringKey:
		switch direction {
		case inputKey:
			backend = streams.Input(arg)
		case outputKey:
			backend = streams.Output()
			for _, r := range arg {
				_ = backend.WriteRune(r)
			}
		case bidirKey:
			backend = streams.Bidirectional(arg)
		}
	default:
		return exception.New(kind, exception.Type, "mu:open")
	}

	if backend == nil {
		if !raise {
			fr.Value = tag.Nil

			return nil
		}

		return exception.New(direction, exception.Type, "mu:open")
	}

	st, err := e.MakeStream(backend, direction)
	fr.Value = st

	return err
}

func openFailure(fr *Frame, raise bool, path tag.T) error {
	fr.Value = tag.Nil

	if !raise {
		return nil
	}

	return exception.New(path, exception.Open, "mu:open")
}

func streamOpenp(e *Env, fr *Frame) error {
	if err := e.check("mu:openp", fr, types.Stream); err != nil {
		return err
	}

	fr.Value = tag.Nil
	if e.IsOpen(fr.Argv[0]) {
		fr.Value = fr.Argv[0]
	}

	return nil
}

func streamReadByte(e *Env, fr *Frame) error {
	if err := e.check("mu:read-byte", fr, types.Stream, types.Any, types.Any); err != nil {
		return err
	}

	b, err := e.backend(fr.Argv[0], "mu:read-byte")
	if err != nil {
		return err
	}

	c, err := b.ReadByte()

	switch {
	case errors.Is(err, io.EOF):
		if fr.Argv[1] != tag.Nil {
			return exception.New(fr.Argv[0], exception.Eof, "mu:read-byte")
		}

		fr.Value = fr.Argv[2]
	case err != nil:
		return exception.New(fr.Argv[0], exception.Read, "mu:read-byte")
	default:
		fr.Value = tag.MustFixnum(int(c))
	}

	return nil
}

func streamReadChar(e *Env, fr *Frame) error {
	if err := e.check("mu:read-char", fr, types.Stream, types.Any, types.Any); err != nil {
		return err
	}

	r, ok, err := e.ReadChar(fr.Argv[0])
	if err != nil {
		return err
	}

	switch {
	case ok:
		fr.Value = tag.Char(r)
	case fr.Argv[1] != tag.Nil:
		return exception.New(fr.Argv[0], exception.Eof, "mu:read-char")
	default:
		fr.Value = fr.Argv[2]
	}

	return nil
}

func streamUnreadChar(e *Env, fr *Frame) error {
	if err := e.check("mu:unread-char", fr, types.Char, types.Stream); err != nil {
		return err
	}

	fr.Value = fr.Argv[0]

	return e.UnreadChar(fr.Argv[1], fr.Argv[0].Rune())
}

func streamWriteByte(e *Env, fr *Frame) error {
	if err := e.check("mu:write-byte", fr, types.Fixnum, types.Stream); err != nil {
		return err
	}

	n := fr.Argv[0].Int()
	if n < 0 || n > 255 {
		return exception.New(fr.Argv[0], exception.Range, "mu:write-byte")
	}

	b, err := e.backend(fr.Argv[1], "mu:write-byte")
	if err != nil {
		return err
	}

	if err := b.WriteByte(byte(n)); err != nil {
		return exception.New(fr.Argv[1], exception.Write, "mu:write-byte")
	}

	fr.Value = fr.Argv[0]

	return nil
}

func streamWriteChar(e *Env, fr *Frame) error {
	if err := e.check("mu:write-char", fr, types.Char, types.Stream); err != nil {
		return err
	}

	b, err := e.backend(fr.Argv[1], "mu:write-char")
	if err != nil {
		return err
	}

	if err := b.WriteRune(fr.Argv[0].Rune()); err != nil {
		return exception.New(fr.Argv[1], exception.Write, "mu:write-char")
	}

	fr.Value = fr.Argv[0]

	return nil
}

func streamRead(e *Env, fr *Frame) error {
	if err := e.check("mu:read", fr, types.Stream, types.Any, types.Any); err != nil {
		return err
	}

	if e.reader == nil {
		return exception.New(fr.Argv[0], exception.Read, "mu:read")
	}

	v, err := e.reader(e, fr.Argv[0], fr.Argv[1] != tag.Nil, fr.Argv[2])
	fr.Value = v

	return err
}

func streamWrite(e *Env, fr *Frame) error {
	if err := e.check("mu:write", fr, types.Any, types.Any, types.Stream); err != nil {
		return err
	}

	fr.Value = fr.Argv[0]

	return e.WriteString(fr.Argv[2], e.String(fr.Argv[0], fr.Argv[1] != tag.Nil))
}
