// Released under an MIT license. See LICENSE.

// Package core provides mu's runtime: heap objects, namespaces, the
// compiler, the evaluator, the collector and futures.
package core

import (
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/joomcode/errorx"

	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/engine/pool"
	"github.com/michaelmacinnis/mu/internal/system/config"
	"github.com/michaelmacinnis/mu/internal/system/heap"
	"github.com/michaelmacinnis/mu/internal/system/streams"
	"github.com/michaelmacinnis/mu/internal/type/tag"
)

// Reader reads the next form from stream. At end of input it returns
// eofValue, or raises :eof if eofError is true.
type Reader func(e *Env, stream tag.T, eofError bool, eofValue tag.T) (tag.T, error)

// Option configures a new Env.
type Option func(*shared)

// Env is an evaluation context. Contexts created for detached futures share
// the heap, namespaces and streams but keep their own frame stacks.
type Env struct {
	*shared

	dynamic *dynamic
	forked  bool // Runs a detached future.
	lexenv  []lexFrame
	lexical *lexical
	pending []tag.T
}

type shared struct {
	config *config.T
	heap   *heap.T
	log    *slog.Logger

	futures    *futures
	namespaces *namespaces
	natives    []Native
	pool       *pool.T
	reader     Reader
	roots      *roots
	streams    *streamTable

	stdin, stdout, stderr streams.T

	lastBarrier int

	keywordNS, muNS, nullNS tag.T

	appendFn, consFn, frameRefFn, ifFn tag.T
}

// WithLogger sets the logger used for runtime events.
func WithLogger(l *slog.Logger) Option {
	return func(s *shared) {
		s.log = l
	}
}

// WithReader installs the reader used by the read builtin.
func WithReader(r Reader) Option {
	return func(s *shared) {
		s.reader = r
	}
}

// WithStandardStreams replaces the streams bound to standard input, output and error.
func WithStandardStreams(in io.Reader, out, err io.Writer) Option {
	return func(s *shared) {
		s.stdin = streams.Reader(in)
		s.stdout = streams.Writer(out)
		s.stderr = streams.Writer(err)
	}
}

// New creates an Env with a fresh heap sized by c.
func New(c *config.T, opts ...Option) (*Env, error) {
	h, err := heap.New(c.Npages, c.PageSize, int(tag.VectorKind)+1)
	if err != nil {
		return nil, err
	}

	s := &shared{
		config:     c,
		heap:       h,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		futures:    newFutures(),
		namespaces: newNamespaces(),
		roots:      &roots{},
		streams:    &streamTable{},
		stdin:      streams.Reader(os.Stdin),
		stdout:     streams.Writer(os.Stdout),
		stderr:     streams.Writer(os.Stderr),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.pool = pool.New(runtime.NumCPU())

	e := &Env{
		shared:  s,
		dynamic: &dynamic{},
		lexical: newLexical(),
	}

	if err := e.boot(); err != nil {
		_ = e.Close()

		return nil, errorx.InitializationFailed.Wrap(err, "cannot boot runtime")
	}

	e.log.Debug("runtime booted", "config", c.String(), "natives", len(e.natives))

	return e, nil
}

// Close waits for detached futures, flushes the standard streams and releases the heap.
func (e *Env) Close() error {
	e.pool.Close()

	_ = e.stdout.Flush()
	_ = e.stderr.Flush()

	return e.heap.Close()
}

// Config returns the configuration the Env was created with.
func (e *Env) Config() *config.T {
	return e.config
}

// Heap returns the Env's heap.
func (e *Env) Heap() *heap.T {
	return e.heap
}

// Logger returns the Env's logger.
func (e *Env) Logger() *slog.Logger {
	return e.log
}

// MuNamespace returns the namespace holding the builtins.
func (e *Env) MuNamespace() tag.T {
	return e.muNS
}

// NullNamespace returns the default user namespace.
func (e *Env) NullNamespace() tag.T {
	return e.nullNS
}

// KeywordNamespace returns the keyword namespace.
func (e *Env) KeywordNamespace() tag.T {
	return e.keywordNS
}

// SetReader installs the reader used by the read builtin.
func (e *Env) SetReader(r Reader) {
	e.reader = r
}

// Standard returns the stream tag bound to the mu symbol name, such as
// "*standard-output*".
func (e *Env) Standard(name string) tag.T {
	sym, ok := e.FindSymbol(e.muNS, name)
	if !ok {
		return tag.Nil
	}

	return e.SymbolValue(sym)
}

func (e *Env) boot() error {
	for _, name := range []string{"keyword", "mu", ""} {
		ns, err := e.MakeNamespace(name)
		if err != nil {
			return err
		}

		switch name {
		case "keyword":
			e.keywordNS = ns
		case "mu":
			e.muNS = ns
		default:
			e.nullNS = ns
		}
	}

	e.natives = table()

	for offset, n := range e.natives {
		name, err := e.MakeString(n.Name)
		if err != nil {
			return err
		}

		form, err := e.MakeVector([]tag.T{e.muNS, name, tag.MustFixnum(offset)})
		if err != nil {
			return err
		}

		fn, err := e.MakeFunction(int(n.Arity), form)
		if err != nil {
			return err
		}

		if _, err := e.Intern(e.muNS, n.Name, fn); err != nil {
			return err
		}

		switch n.Name {
		case "append":
			e.appendFn = fn
		case "cons":
			e.consFn = fn
		case "%frame-ref":
			e.frameRefFn = fn
		case "%if":
			e.ifFn = fn
		}
	}

	for _, s := range []struct {
		name      string
		backend   streams.T
		direction string
	}{
		{"*standard-input*", e.stdin, "input"},
		{"*standard-output*", e.stdout, "output"},
		{"*error-output*", e.stderr, "output"},
	} {
		st, err := e.MakeStream(s.backend, tag.MustKeyword(s.direction))
		if err != nil {
			return err
		}

		if _, err := e.Intern(e.muNS, s.name, st); err != nil {
			return err
		}
	}

	version, err := e.MakeString(config.Version)
	if err != nil {
		return err
	}

	if _, err := e.Intern(e.muNS, "*version*", version); err != nil {
		return err
	}

	e.namespaces.seal(e.muNS.NamespaceIndex())

	return nil
}

// evict commits a new image of kind to the heap.
func (e *Env) evict(kind tag.Kind, image []tag.T, vdata []byte) (tag.T, error) {
	words := make([]uint64, len(image))
	for i, t := range image {
		words[i] = uint64(t)
	}

	index, ok := e.heap.Alloc(words, vdata, uint8(kind))
	if !ok {
		e.log.Warn("heap exhausted", "barrier", e.heap.Barrier(), "capacity", e.heap.Capacity())

		return tag.Nil, exception.New(tag.MustFixnum(len(words)*8+len(vdata)), exception.Error, "mu:evict")
	}

	return tag.Indirect(kind, index), nil
}

// word returns word n of the image t refers to.
func (e *Env) word(t tag.T, n int) tag.T {
	w, ok := e.heap.Word(t.Index(), n)
	if !ok {
		errorx.Panic(errorx.AssertionFailed.New("no word %d in image %#x", n, uint64(t)))
	}

	return tag.T(w)
}

// rewrite replaces the leading words of the image t refers to.
func (e *Env) rewrite(t tag.T, image ...tag.T) {
	words := make([]uint64, len(image))
	for i, w := range image {
		words[i] = uint64(w)
	}

	if !e.heap.WriteImage(words, t.Index()) {
		errorx.Panic(errorx.AssertionFailed.New("cannot rewrite image %#x", uint64(t)))
	}
}

func (e *Env) fork() *Env {
	return &Env{
		shared:  e.shared,
		dynamic: &dynamic{},
		forked:  true,
		lexical: e.lexical.fork(),
	}
}

func boolean(b bool) tag.T {
	if b {
		return tag.True
	}

	return tag.Nil
}
