// Released under an MIT license. See LICENSE.

// Package hash provides mu's name to symbol mapping type.
package hash

import (
	"sort"
	"sync"

	"github.com/michaelmacinnis/mu/internal/type/tag"
)

// T (hash) maps names to symbols.
type T struct {
	sync.RWMutex
	m map[string]tag.T
}

// New creates a new hash.
func New() *T {
	return &T{m: map[string]tag.T{}}
}

// Del frees the name k from any association in the hash h.
func (h *T) Del(k string) bool {
	if h == nil {
		return false
	}

	h.Lock()
	defer h.Unlock()

	_, ok := h.m[k]
	if !ok {
		return false
	}

	delete(h.m, k)

	return true
}

// Each calls fn for every association in h, in name order.
func (h *T) Each(fn func(string, tag.T)) {
	if h == nil {
		return
	}

	h.RLock()

	keys := make([]string, 0, len(h.m))
	for k := range h.m {
		keys = append(keys, k)
	}

	values := make([]tag.T, len(keys))

	sort.Strings(keys)

	for i, k := range keys {
		values[i] = h.m[k]
	}

	h.RUnlock()

	for i, k := range keys {
		fn(k, values[i])
	}
}

// Get retrieves the value associated with the name k in the hash h.
func (h *T) Get(k string) (tag.T, bool) {
	if h == nil {
		return tag.Nil, false
	}

	h.RLock()
	defer h.RUnlock()

	v, ok := h.m[k]

	return v, ok
}

// SetIfAbsent associates k with the value returned by fn unless k is already present.
// It returns the value associated with k and whether fn was called.
func (h *T) SetIfAbsent(k string, fn func() (tag.T, error)) (tag.T, bool, error) {
	h.Lock()
	defer h.Unlock()

	if v, ok := h.m[k]; ok {
		return v, false, nil
	}

	v, err := fn()
	if err != nil {
		return tag.Nil, false, err
	}

	h.m[k] = v

	return v, true, nil
}

// Size returns the number of entries in the hash h.
func (h *T) Size() int {
	if h == nil {
		return 0
	}

	h.RLock()
	defer h.RUnlock()

	return len(h.m)
}
