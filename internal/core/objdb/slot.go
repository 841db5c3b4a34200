package objdb

import "sync/atomic"

// payloadCell is the atomically published pointer target of a slot. The value
// is a *T produced by the typed heap path, or a []byte from the dynamic path.
type payloadCell struct {
	value any
}

// Slot is an address-stable storage location for one live object at a time.
// Slots are carved out of append-only chunks (see slotManager) and never move
// or get deallocated; they cycle through many occupants over the process
// lifetime, each distinguished by generation.
type Slot struct {
	// Packed extGen of the current occupant; zero when dead. Written before
	// payload on acquire so a racing reader that sees a stale payload also
	// sees a mismatched generation and refuses the fetch.
	state   atomic.Uint64
	payload atomic.Pointer[payloadCell]
}

// acquire installs a new occupant. The slot must be free.
func (s *Slot) acquire(eg extGen, p *payloadCell) {
	s.state.Store(uint64(eg))
	s.payload.Store(p)
}

// tryGetBase returns the payload if the handle generation matches the current
// occupant and the session may access its lock. On failure it returns the
// slot's actual state so the caller can tell a lock miss from a dead object.
func (s *Slot) tryGetBase(sess *Session, handleGen uint64) (*payloadCell, extGen, bool) {
	p := s.payload.Load()
	cur := extGen(s.state.Load())
	if cur.gen() == handleGen && sess.canAccess(cur.lock()) {
		return p, cur, true
	}
	return nil, cur, false
}

// release marks the slot dead iff the current generation matches. The compare
// and swap guarantees exactly one caller wins a destroy race.
func (s *Slot) release(handleGen uint64) bool {
	cur := s.state.Load()
	if extGen(cur).gen() != handleGen {
		return false
	}
	return s.state.CompareAndSwap(cur, 0)
}

// isAlive is a heuristic liveness probe; the slot may be released between
// this check and a subsequent fetch.
func (s *Slot) isAlive(handleGen uint64) bool {
	return extGen(s.state.Load()).gen() == handleGen
}

// slotManager owns a session's slot storage: append-only chunks that pin
// every Slot address for the process lifetime, plus a free stack so released
// slots are recycled before new chunks are carved.
type slotManager struct {
	chunks    [][]Slot
	used      int
	chunkSize int
	free      []*Slot
}

func newSlotManager(chunkSize int) slotManager {
	return slotManager{chunkSize: chunkSize}
}

func (m *slotManager) reserve() *Slot {
	if n := len(m.free); n > 0 {
		s := m.free[n-1]
		m.free = m.free[:n-1]
		return s
	}
	return m.grow()
}

func (m *slotManager) grow() *Slot {
	if len(m.chunks) == 0 || m.used == m.chunkSize {
		m.chunks = append(m.chunks, make([]Slot, m.chunkSize))
		m.used = 0
	}
	chunk := m.chunks[len(m.chunks)-1]
	s := &chunk[m.used]
	m.used++
	return s
}

// unreserve returns a fully released slot to the free stack. Callers must
// have observed release() succeed first.
func (m *slotManager) unreserve(s *Slot) {
	m.free = append(m.free, s)
}

// reserveCapacity pre-grows the free stack so a burst of allocations does not
// have to touch chunk bookkeeping.
func (m *slotManager) reserveCapacity(n int) {
	for len(m.free) < n {
		m.free = append(m.free, m.grow())
	}
}
