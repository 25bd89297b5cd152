// Released under an MIT license. See LICENSE.

package core

import (
	"sync"

	"github.com/michaelmacinnis/mu/internal/type/tag"
)

// marker records that a frame for fn was pushed when fn's stack was depth deep.
type marker struct {
	fn    tag.T
	depth int
}

// dynamic is the stack of frame pushes in the order they happened.
type dynamic struct {
	sync.Mutex
	markers []marker
}

func (d *dynamic) depth() int {
	d.Lock()
	defer d.Unlock()

	return len(d.markers)
}

// drop removes the innermost marker for fn.
func (d *dynamic) drop(fn tag.T) {
	d.Lock()
	defer d.Unlock()

	for i := len(d.markers) - 1; i >= 0; i-- {
		if d.markers[i].fn == fn {
			d.markers = append(d.markers[:i], d.markers[i+1:]...)

			return
		}
	}
}

func (d *dynamic) push(fn tag.T, depth int) {
	d.Lock()
	defer d.Unlock()

	d.markers = append(d.markers, marker{fn, depth})
}

func (d *dynamic) snapshot() []marker {
	d.Lock()
	defer d.Unlock()

	return append([]marker(nil), d.markers...)
}

// unwind discards every marker above depth, innermost first, handing each to fn.
func (d *dynamic) unwind(depth int, fn func(marker)) {
	d.Lock()
	popped := []marker{}

	for len(d.markers) > depth {
		n := len(d.markers) - 1
		popped = append(popped, d.markers[n])
		d.markers = d.markers[:n]
	}
	d.Unlock()

	for _, m := range popped {
		fn(m)
	}
}

// unwind restores the frame stacks to the state they were in when the
// dynamic stack was depth deep.
func (e *Env) unwind(depth int) {
	e.dynamic.unwind(depth, func(m marker) {
		e.lexical.truncate(m.fn, m.depth)
	})
}
