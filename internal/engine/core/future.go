// Released under an MIT license. See LICENSE.

package core

import (
	"sync"

	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

//nolint:gochecknoglobals
var futureKey = tag.MustKeyword("future")

type future struct {
	eager bool
	fn    tag.T
	args  tag.T

	done  chan struct{}
	value tag.T
	err   error
}

type futures struct {
	sync.Mutex
	inflight int
	next     int
	table    map[int]*future
}

func newFutures() *futures {
	return &futures{table: map[int]*future{}}
}

func (fs *futures) add(f *future) int {
	fs.Lock()
	defer fs.Unlock()

	fs.next++
	fs.table[fs.next] = f

	if f.eager {
		fs.inflight++
	}

	return fs.next
}

func (fs *futures) each(fn func(*future)) {
	fs.Lock()
	defer fs.Unlock()

	for _, f := range fs.table {
		fn(f)
	}
}

func (fs *futures) finish() {
	fs.Lock()
	defer fs.Unlock()

	fs.inflight--
}

func (fs *futures) get(id int) (*future, bool) {
	fs.Lock()
	defer fs.Unlock()

	f, ok := fs.table[id]

	return f, ok
}

func (fs *futures) remove(id int) (*future, bool) {
	fs.Lock()
	defer fs.Unlock()

	f, ok := fs.table[id]
	if ok {
		delete(fs.table, id)
	}

	return f, ok
}

func (fs *futures) running() bool {
	fs.Lock()
	defer fs.Unlock()

	return fs.inflight > 0
}

// Defer creates a future that applies fn to args when it is forced.
func (e *Env) Defer(fn, args tag.T) (tag.T, error) {
	return e.makeFuture(&future{fn: fn, args: args, value: tag.Nil})
}

// Detach creates a future that applies fn to args on a worker goroutine.
// The application runs in its own context over the shared heap.
func (e *Env) Detach(fn, args tag.T) (tag.T, error) {
	f := &future{eager: true, fn: fn, args: args, value: tag.Nil, done: make(chan struct{})}

	ft, err := e.makeFuture(f)
	if err != nil {
		return tag.Nil, err
	}

	child := e.fork()

	job := func() {
		defer close(f.done)
		defer e.futures.finish()

		f.value, f.err = child.ApplyList(fn, args)

		e.log.Debug("future complete", "future", uint64(ft), "failed", f.err != nil)
	}

	if !e.pool.Submit(job) {
		job()
	}

	return ft, nil
}

// Force waits for the future ft and returns its result. A future can only be forced once.
func (e *Env) Force(ft tag.T) (tag.T, error) {
	id, ok := e.futureID(ft)
	if !ok {
		return tag.Nil, exception.New(ft, exception.Type, "mu:force")
	}

	f, ok := e.futures.remove(id)
	if !ok {
		return tag.Nil, exception.New(ft, exception.Future, "mu:force")
	}

	if !f.eager {
		return e.ApplyList(f.fn, f.args)
	}

	<-f.done

	return f.value, f.err
}

// Poll returns true if the future ft has completed. Deferred futures
// only complete when forced.
func (e *Env) Poll(ft tag.T) (bool, error) {
	id, ok := e.futureID(ft)
	if !ok {
		return false, exception.New(ft, exception.Type, "mu:poll")
	}

	f, ok := e.futures.get(id)
	if !ok {
		return false, exception.New(ft, exception.Future, "mu:poll")
	}

	if !f.eager {
		return false, nil
	}

	select {
	case <-f.done:
		return true, nil
	default:
		return false, nil
	}
}

func (e *Env) futureID(ft tag.T) (int, bool) {
	if types.Of(ft) != types.Struct || e.StructType(ft) != futureKey {
		return 0, false
	}

	id, ok := e.VectorRef(e.StructVector(ft), 0)
	if !ok || types.Of(id) != types.Fixnum {
		return 0, false
	}

	return int(id.Int()), true
}

func (e *Env) makeFuture(f *future) (tag.T, error) {
	id := e.futures.add(f)

	ft, err := e.MakeStruct(futureKey, []tag.T{tag.MustFixnum(id)})
	if err != nil {
		e.futures.remove(id)

		if f.eager {
			e.futures.finish()
		}

		return tag.Nil, err
	}

	e.log.Debug("future created", "id", id, "eager", f.eager)

	return ft, nil
}

func futureDefer(e *Env, fr *Frame) error {
	if err := e.check("mu:defer", fr, types.Function, types.List); err != nil {
		return err
	}

	ft, err := e.Defer(fr.Argv[0], fr.Argv[1])
	fr.Value = ft

	return err
}

func futureDetach(e *Env, fr *Frame) error {
	if err := e.check("mu:detach", fr, types.Function, types.List); err != nil {
		return err
	}

	ft, err := e.Detach(fr.Argv[0], fr.Argv[1])
	fr.Value = ft

	return err
}

func futureForce(e *Env, fr *Frame) error {
	v, err := e.Force(fr.Argv[0])
	fr.Value = v

	return err
}

func futurePoll(e *Env, fr *Frame) error {
	done, err := e.Poll(fr.Argv[0])
	if err != nil {
		return err
	}

	fr.Value = tag.Nil
	if done {
		fr.Value = fr.Argv[0]
	}

	return nil
}
