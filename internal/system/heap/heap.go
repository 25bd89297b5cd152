// Released under an MIT license. See LICENSE.

// Package heap provides mu's image heap: a fixed size arena carved up by a
// bump allocator, with per-type free lists refilled by the collector.
//
// Every image starts with a header word:
//
//	[length in words:23][type:8][mark:1][reloc:32]
//
// The length includes the header. An image id is the word index of the
// first word after the header, so id zero is never valid.
package heap

import (
	"encoding/binary"
	"sync"

	"github.com/joomcode/errorx"
)

const word = 8

// Info is an image header.
type Info struct {
	Reloc uint32
	Mark  bool
	Type  uint8
	Len   int
}

// TypeInfo is the allocation record for a single image type.
type TypeInfo struct {
	Size  int `yaml:"size"`
	Total int `yaml:"total"`
	Free  int `yaml:"free"`
}

// T (heap) is an arena of images.
type T struct {
	sync.RWMutex
	arena    []byte
	barrier  int
	free     [][]int
	npages   int
	pagesize int
	release  func() error
	types    []TypeInfo
}

type heap = T

// New maps npages of pagesize bytes and prepares allocation records for ntypes image types.
func New(npages, pagesize, ntypes int) (*T, error) {
	if npages <= 0 || pagesize <= 0 || pagesize%word != 0 {
		return nil, errorx.IllegalArgument.New("bad heap geometry: %d pages of %d bytes", npages, pagesize)
	}

	arena, release, err := mmap(npages * pagesize)
	if err != nil {
		return nil, errorx.InitializationFailed.Wrap(err, "cannot map heap")
	}

	return &T{
		arena:    arena,
		free:     make([][]int, ntypes),
		npages:   npages,
		pagesize: pagesize,
		release:  release,
		types:    make([]TypeInfo, ntypes),
	}, nil
}

// Alloc commits an image of type id holding the words in image followed by vdata.
// The first free image of type id that is large enough is reused before bumping
// the write barrier. Alloc fails if the arena is exhausted.
func (h *heap) Alloc(image []uint64, vdata []byte, id uint8) (int, bool) {
	h.Lock()
	defer h.Unlock()

	words := 1 + len(image) + (len(vdata)+word-1)/word

	if index, ok := h.reuse(words, id); ok {
		h.write(image, vdata, index)

		return index, true
	}

	offset := h.barrier
	if offset+words*word > len(h.arena) {
		return 0, false
	}

	h.barrier += words * word
	h.setInfo(offset, Info{Type: id, Len: words})

	index := offset/word + 1

	h.write(image, vdata, index)

	h.types[id].Size += words * word
	h.types[id].Total++

	return index, true
}

// Barrier returns the byte offset of the next bump allocation.
func (h *heap) Barrier() int {
	h.RLock()
	defer h.RUnlock()

	return h.barrier
}

// Capacity returns the size of the arena in bytes.
func (h *heap) Capacity() int {
	return len(h.arena)
}

// Close unmaps the arena.
func (h *heap) Close() error {
	h.Lock()
	defer h.Unlock()

	if h.release == nil {
		return nil
	}

	err := h.release()
	h.arena = nil
	h.release = nil

	return err
}

// Data returns a copy of n bytes starting offset bytes into the image at index.
func (h *heap) Data(index, offset, n int) ([]byte, bool) {
	h.RLock()
	defer h.RUnlock()

	start, ok := h.span(index, offset, n)
	if !ok {
		return nil, false
	}

	b := make([]byte, n)
	copy(b, h.arena[start:start+n])

	return b, true
}

// Geometry returns the number of pages and the page size.
func (h *heap) Geometry() (int, int) {
	return h.npages, h.pagesize
}

// Info returns the header of the image at index.
func (h *heap) Info(index int) (Info, bool) {
	h.RLock()
	defer h.RUnlock()

	if !h.valid(index) {
		return Info{}, false
	}

	return h.info((index - 1) * word), true
}

// TypeInfo returns the allocation record for type id.
func (h *heap) TypeInfo(id uint8) TypeInfo {
	h.RLock()
	defer h.RUnlock()

	if int(id) >= len(h.types) {
		return TypeInfo{}
	}

	return h.types[id]
}

// Word returns word n of the image at index.
func (h *heap) Word(index, n int) (uint64, bool) {
	h.RLock()
	defer h.RUnlock()

	return h.word(index, n)
}

// WriteImage overwrites the leading words of the image at index.
func (h *heap) WriteImage(image []uint64, index int) bool {
	h.Lock()
	defer h.Unlock()

	if _, ok := h.span(index, 0, len(image)*word); !ok {
		return false
	}

	h.write(image, nil, index)

	return true
}

// WriteInfo replaces the header of the image at index.
func (h *heap) WriteInfo(info Info, index int) bool {
	h.Lock()
	defer h.Unlock()

	if !h.valid(index) {
		return false
	}

	h.setInfo((index-1)*word, info)

	return true
}

func decode(w uint64) Info {
	return Info{
		Reloc: uint32(w),
		Mark:  w>>32&1 == 1,
		Type:  uint8(w >> 33),
		Len:   int(w >> 41),
	}
}

func encode(info Info) uint64 {
	w := uint64(info.Reloc) | uint64(info.Type)<<33 | uint64(info.Len)<<41
	if info.Mark {
		w |= 1 << 32
	}

	return w
}

func (h *heap) info(offset int) Info {
	return decode(binary.LittleEndian.Uint64(h.arena[offset:]))
}

func (h *heap) reuse(words int, id uint8) (int, bool) {
	if int(id) >= len(h.free) {
		errorx.Panic(errorx.IllegalArgument.New("no image type %d", id))
	}

	for n, index := range h.free[id] {
		info := h.info((index - 1) * word)
		if info.Len < words {
			continue
		}

		h.free[id] = append(h.free[id][:n], h.free[id][n+1:]...)
		h.types[id].Free--

		info.Mark = false
		h.setInfo((index-1)*word, info)

		return index, true
	}

	return 0, false
}

func (h *heap) setInfo(offset int, info Info) {
	binary.LittleEndian.PutUint64(h.arena[offset:], encode(info))
}

// span returns the arena offset of n bytes at offset into the image at
// index if they lie within the image.
func (h *heap) span(index, offset, n int) (int, bool) {
	if !h.valid(index) || offset < 0 || n < 0 {
		return 0, false
	}

	info := h.info((index - 1) * word)
	if offset+n > (info.Len-1)*word {
		return 0, false
	}

	return index*word + offset, true
}

func (h *heap) valid(index int) bool {
	return index > 0 && (index-1)*word < h.barrier
}

func (h *heap) word(index, n int) (uint64, bool) {
	start, ok := h.span(index, n*word, word)
	if !ok {
		return 0, false
	}

	return binary.LittleEndian.Uint64(h.arena[start:]), true
}

func (h *heap) write(image []uint64, vdata []byte, index int) {
	offset := index * word
	for _, w := range image {
		binary.LittleEndian.PutUint64(h.arena[offset:], w)
		offset += word
	}

	copy(h.arena[offset:], vdata)
}
