// Released under an MIT license. See LICENSE.

package heap

import (
	"github.com/joomcode/errorx"
)

// Snapshot is a copy of the live portion of a heap.
type Snapshot struct {
	Barrier int
	Free    [][]int
	Image   []byte
	Types   []TypeInfo
}

// Snapshot copies every image below the write barrier.
func (h *heap) Snapshot() Snapshot {
	h.RLock()
	defer h.RUnlock()

	image := make([]byte, h.barrier)
	copy(image, h.arena[:h.barrier])

	free := make([][]int, len(h.free))
	for id, list := range h.free {
		free[id] = append([]int(nil), list...)
	}

	return Snapshot{
		Barrier: h.barrier,
		Free:    free,
		Image:   image,
		Types:   append([]TypeInfo(nil), h.types...),
	}
}

// Restore replaces the contents of the heap with s.
func (h *heap) Restore(s Snapshot) error {
	h.Lock()
	defer h.Unlock()

	if s.Barrier != len(s.Image) || s.Barrier%word != 0 {
		return errorx.IllegalFormat.New("image of %d bytes does not match barrier %d", len(s.Image), s.Barrier)
	}

	if s.Barrier > len(h.arena) {
		return errorx.IllegalArgument.New("image of %d bytes exceeds heap of %d", s.Barrier, len(h.arena))
	}

	if len(s.Types) != len(h.types) || len(s.Free) != len(h.free) {
		return errorx.IllegalFormat.New("image has %d types, heap has %d", len(s.Types), len(h.types))
	}

	copy(h.arena, s.Image)

	for i := s.Barrier; i < len(h.arena); i++ {
		h.arena[i] = 0
	}

	h.barrier = s.Barrier
	copy(h.types, s.Types)

	for id, list := range s.Free {
		for _, index := range list {
			if !h.valid(index) {
				return errorx.IllegalFormat.New("free image %d is past the barrier", index)
			}
		}

		h.free[id] = append([]int(nil), list...)
	}

	return nil
}
