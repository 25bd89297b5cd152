// Released under an MIT license. See LICENSE.

// Package streams provides the byte and character sources and sinks behind mu streams.
package streams

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/joomcode/errorx"
)

// ErrUnsupported is returned for an operation that does not match the stream's direction.
var ErrUnsupported = errorx.UnsupportedOperation.New("operation not supported by stream") //nolint:gochecknoglobals

// T (streams) is a stream backend. ReadChar and ReadByte return io.EOF at end of input.
type T interface {
	Close() error
	Contents() (string, bool)
	Flush() error
	ReadByte() (byte, error)
	ReadChar() (rune, error)
	UnreadChar(r rune) error
	WriteByte(b byte) error
	WriteRune(r rune) error
}

type input struct {
	sync.Mutex
	r       *bufio.Reader
	c       io.Closer
	pending []rune
}

// Input returns a stream that reads from the string s.
func Input(s string) T {
	return &input{r: bufio.NewReader(strings.NewReader(s))}
}

// Reader returns a stream that reads from r.
func Reader(r io.Reader) T {
	i := &input{r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		i.c = c
	}

	return i
}

func (i *input) Close() error {
	if i.c == nil {
		return nil
	}

	return i.c.Close()
}

func (i *input) Contents() (string, bool) {
	return "", false
}

func (i *input) Flush() error {
	return nil
}

func (i *input) ReadByte() (byte, error) {
	i.Lock()
	defer i.Unlock()

	if n := len(i.pending); n > 0 {
		r := i.pending[n-1]
		if r < utf8.RuneSelf {
			i.pending = i.pending[:n-1]

			return byte(r), nil
		}
	}

	return i.r.ReadByte()
}

func (i *input) ReadChar() (rune, error) {
	i.Lock()
	defer i.Unlock()

	if n := len(i.pending); n > 0 {
		r := i.pending[n-1]
		i.pending = i.pending[:n-1]

		return r, nil
	}

	r, _, err := i.r.ReadRune()

	return r, err
}

func (i *input) UnreadChar(r rune) error {
	i.Lock()
	defer i.Unlock()

	i.pending = append(i.pending, r)

	return nil
}

func (i *input) WriteByte(byte) error {
	return ErrUnsupported
}

func (i *input) WriteRune(rune) error {
	return ErrUnsupported
}

type output struct {
	sync.Mutex
	b *strings.Builder
	w *bufio.Writer
	c io.Closer
}

// Output returns a stream that accumulates everything written to it.
func Output() T {
	b := &strings.Builder{}

	return &output{b: b, w: bufio.NewWriter(b)}
}

// Writer returns a stream that writes to w.
func Writer(w io.Writer) T {
	o := &output{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		o.c = c
	}

	return o
}

func (o *output) Close() error {
	err := o.Flush()
	if o.c != nil {
		if cerr := o.c.Close(); err == nil {
			err = cerr
		}
	}

	return err
}

// Contents returns and resets everything written so far to a string output stream.
func (o *output) Contents() (string, bool) {
	o.Lock()
	defer o.Unlock()

	if o.b == nil {
		return "", false
	}

	_ = o.w.Flush()

	s := o.b.String()
	o.b.Reset()

	return s, true
}

func (o *output) Flush() error {
	o.Lock()
	defer o.Unlock()

	return o.w.Flush()
}

func (o *output) ReadByte() (byte, error) {
	return 0, ErrUnsupported
}

func (o *output) ReadChar() (rune, error) {
	return 0, ErrUnsupported
}

func (o *output) UnreadChar(rune) error {
	return ErrUnsupported
}

func (o *output) WriteByte(b byte) error {
	o.Lock()
	defer o.Unlock()

	return o.w.WriteByte(b)
}

func (o *output) WriteRune(r rune) error {
	o.Lock()
	defer o.Unlock()

	_, err := o.w.WriteRune(r)

	return err
}

type bidir struct {
	*input
	*output
}

// Bidirectional returns a string stream that reads s and accumulates writes.
func Bidirectional(s string) T {
	return &bidir{
		input:  Input(s).(*input),
		output: Output().(*output),
	}
}

func (b *bidir) Close() error                { return nil }
func (b *bidir) Contents() (string, bool)    { return b.output.Contents() }
func (b *bidir) Flush() error                { return b.output.Flush() }
func (b *bidir) ReadByte() (byte, error)     { return b.input.ReadByte() }
func (b *bidir) ReadChar() (rune, error)     { return b.input.ReadChar() }
func (b *bidir) UnreadChar(r rune) error     { return b.input.UnreadChar(r) }
func (b *bidir) WriteByte(c byte) error      { return b.output.WriteByte(c) }
func (b *bidir) WriteRune(r rune) error      { return b.output.WriteRune(r) }
