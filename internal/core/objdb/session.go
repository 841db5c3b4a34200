package objdb

import (
	"fmt"

	"github.com/slotdb/slotdb/internal/core/observability/log"
)

// Session is the capability token for one logical task. It names the locks
// the task may access and owns the task's allocator state (heap, slot
// free-list, generation batch), so it must stay confined to the goroutine
// that created it; a Session is not safe for concurrent use.
//
// While a Session is live, no other session anywhere in the process can hold
// any of its locks. Sessions never block: acquisition either succeeds
// entirely or fails immediately.
type Session struct {
	db     *ObjectDB
	can    [256]bool
	held   []Lock
	heap   heap
	slots  slotManager
	gen    genBatch
	closed bool
}

// NewSession acquires every lock in locks as one atomic batch. If any of them
// is held by another live session, it returns a *LockHeldError naming the
// conflict and leaves none of them marked held.
func (db *ObjectDB) NewSession(locks ...Lock) (*Session, error) {
	db.mu.Lock()
	for _, l := range locks {
		if !l.regular() {
			db.mu.Unlock()
			return nil, fmt.Errorf("%w: %d", ErrInvalidLock, l)
		}
		if db.held.Contains(uint32(l)) {
			err := &LockHeldError{Lock: l, Name: db.names[l]}
			db.mu.Unlock()
			db.log.Debug("session acquisition failed",
				log.String("db", db.id.String()),
				log.Uint8("lock", uint8(l)),
				log.String("name", err.Name),
			)
			return nil, err
		}
	}
	for _, l := range locks {
		db.held.Add(uint32(l))
	}
	db.mu.Unlock()

	s := &Session{
		db:    db,
		slots: newSlotManager(db.cfg.SlotChunkSize),
		heap:  newHeap(db.cfg.HeapChunkSize),
	}
	s.can[LockNone] = true
	for _, l := range locks {
		if !s.can[l] {
			s.held = append(s.held, l)
		}
		s.can[l] = true
	}
	db.liveSessions.Add(1)
	return s, nil
}

// MustNewSession is the fail-fast form of NewSession: a lock conflict is a
// scheduling bug upstream, so it panics with the conflict diagnostic.
func (db *ObjectDB) MustNewSession(locks ...Lock) *Session {
	s, err := db.NewSession(locks...)
	if err != nil {
		panic(err)
	}
	return s
}

// Close releases the session's lock set. Handles created through the session
// stay valid; only the capability to dereference lock-guarded ones goes away.
// Close is idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	s.db.mu.Lock()
	for _, l := range s.held {
		s.db.held.Remove(uint32(l))
	}
	s.db.mu.Unlock()

	for _, l := range s.held {
		s.can[l] = false
	}
	s.db.liveSessions.Add(-1)
}

// CanLock reports whether the session holds l. LockNone is always
// accessible.
func (s *Session) CanLock(l Lock) bool {
	return s.can[l]
}

// Locks returns the lock set the session was created with.
func (s *Session) Locks() []Lock {
	out := make([]Lock, len(s.held))
	copy(out, s.held)
	return out
}

// DB returns the database this session belongs to.
func (s *Session) DB() *ObjectDB { return s.db }

// ReserveSlotCapacity pre-allocates slot records ahead of an allocation
// burst.
func (s *Session) ReserveSlotCapacity(n int) {
	s.slots.reserveCapacity(n)
}

// canAccess is the per-dereference check: dead slots report their occupant as
// lock 0, which never matches a real session-held lock but must fall through
// to the generation comparison, so it is treated as accessible here.
func (s *Session) canAccess(l Lock) bool {
	return l == 0 || s.can[l]
}

func (s *Session) allocSlot(lock Lock, value any) RawObj {
	if s.closed {
		panic(ErrSessionClosed)
	}
	gen := s.gen.generate(&s.db.genCounter, s.db.cfg.GenBatchSize)
	slot := s.slots.reserve()
	slot.acquire(packGen(lock, gen), &payloadCell{value: value})
	s.db.liveSlots.Add(1)
	s.db.totalAllocs.Add(1)
	return RawObj{slot: slot, gen: gen}
}
