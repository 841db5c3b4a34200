package objdb

import "reflect"

// slabChunkLen is how many values of a given type each typed slab chunk holds.
const slabChunkLen = 256

// heap is a session-local, allocation-only arena. Typed allocations go into
// per-type slabs of append-only chunks; dynamically sized allocations come
// from byte chunks. Nothing is ever freed or moved, so pointers handed out
// stay valid until a future compaction pass (not implemented) reclaims dead
// space wholesale.
type heap struct {
	slabs     map[reflect.Type]any // reflect.Type -> *slab[T]
	raw       []byte
	rawChunks int
	chunkSize int
}

func newHeap(chunkSize int) heap {
	return heap{
		slabs:     make(map[reflect.Type]any),
		chunkSize: chunkSize,
	}
}

type slab[T any] struct {
	chunks [][]T
	used   int
}

// allocTyped bump-allocates space for value in the slab for T and
// move-initializes it, returning a stable pointer.
func allocTyped[T any](h *heap, value T) *T {
	t := reflect.TypeOf((*T)(nil))
	s, ok := h.slabs[t].(*slab[T])
	if !ok {
		s = &slab[T]{}
		h.slabs[t] = s
	}
	if len(s.chunks) == 0 || s.used == slabChunkLen {
		s.chunks = append(s.chunks, make([]T, slabChunkLen))
		s.used = 0
	}
	chunk := s.chunks[len(s.chunks)-1]
	p := &chunk[s.used]
	s.used++
	*p = value
	return p
}

// allocRaw carves size bytes out of the byte arena. The caller initializes
// the contents afterward. Oversized requests get a dedicated chunk so the
// bump pointer never skips usable space.
func (h *heap) allocRaw(size int) []byte {
	if size > h.chunkSize {
		buf := make([]byte, size)
		h.rawChunks++
		return buf
	}
	if len(h.raw) < size {
		h.raw = make([]byte, h.chunkSize)
		h.rawChunks++
	}
	buf := h.raw[:size:size]
	h.raw = h.raw[size:]
	return buf
}
