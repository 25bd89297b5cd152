// Released under an MIT license. See LICENSE.

package heap

import (
	"github.com/joomcode/errorx"
)

// Marker is handed to the mark phase of a collection. The heap's writer
// lock is held for as long as the Marker is in use.
type Marker struct {
	h *heap
}

// Mark sets the mark bit of the image at index and returns the bit's
// previous value. Invalid indexes report true so that they are not traversed.
func (m *Marker) Mark(index int) bool {
	if !m.h.valid(index) {
		return true
	}

	offset := (index - 1) * word

	info := m.h.info(offset)
	if info.Mark {
		return true
	}

	info.Mark = true
	m.h.setInfo(offset, info)

	return false
}

// Word returns word n of the image at index.
func (m *Marker) Word(index, n int) (uint64, bool) {
	return m.h.word(index, n)
}

// Collect clears every mark bit, calls mark to mark the reachable images
// and then sweeps every unmarked image onto its type's free list.
func (h *heap) Collect(mark func(*Marker)) {
	h.Lock()
	defer h.Unlock()

	h.clearMarks()
	mark(&Marker{h})
	h.sweep()
}

// Each calls fn with the index and header of every image below the write barrier.
func (h *heap) Each(fn func(int, Info)) {
	h.RLock()
	defer h.RUnlock()

	h.each(fn)
}

// Stats returns the allocation record of every image type.
func (h *heap) Stats() []TypeInfo {
	h.RLock()
	defer h.RUnlock()

	return append([]TypeInfo(nil), h.types...)
}

func (h *heap) clearMarks() {
	for id := range h.free {
		h.free[id] = nil
		h.types[id].Free = 0
	}

	h.each(func(index int, info Info) {
		if info.Mark {
			info.Mark = false
			h.setInfo((index-1)*word, info)
		}
	})
}

func (h *heap) each(fn func(int, Info)) {
	for offset := 0; offset < h.barrier; {
		info := h.info(offset)
		if info.Len <= 0 {
			errorx.Panic(errorx.AssertionFailed.New("corrupt image header at offset %d", offset))
		}

		fn(offset/word+1, info)

		offset += info.Len * word
	}
}

func (h *heap) sweep() {
	h.each(func(index int, info Info) {
		if info.Mark {
			return
		}

		id := int(info.Type)
		if id >= len(h.free) {
			errorx.Panic(errorx.AssertionFailed.New("image %d has unknown type %d", index, id))
		}

		h.free[id] = append(h.free[id], index)
		h.types[id].Free++
	})
}
