package objdb

import (
	"github.com/slotdb/slotdb/internal/core/observability/log"
)

// Lock names a coarse access-control domain. Many objects may share one lock;
// a lock may be reserved before any object using it exists. Ids 0 and 0xFF
// are never issued: LockNone marks objects accessible from any session.
type Lock uint8

// LockNone is the sentinel for objects that require no lock.
const LockNone Lock = 0xFF

// maxLockID is the highest reservable lock id.
const maxLockID = 0xFE

func (l Lock) regular() bool { return l != 0 && l != LockNone }

// ReserveLock allocates an unused lock id and associates it with a debug
// name. It panics when the 8-bit id space is exhausted; needing more than 254
// concurrent locks is an application-scale failure, not a runtime condition.
func (db *ObjectDB) ReserveLock(name string) Lock {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id := uint32(1); id <= maxLockID; id++ {
		if db.reserved.Contains(id) {
			continue
		}
		db.reserved.Add(id)
		db.names[id] = name
		db.log.Debug("lock reserved",
			log.String("db", db.id.String()),
			log.Uint8("lock", uint8(id)),
			log.String("name", name),
		)
		return Lock(id)
	}
	panic("objdb: cannot reserve more than 254 locks concurrently")
}

// UnreserveLock returns a lock id to the pool. The caller must guarantee no
// live object still carries it; that contract is not runtime-checked.
func (db *ObjectDB) UnreserveLock(l Lock) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.reserved.Remove(uint32(l))
	db.names[l] = ""
	db.log.Debug("lock unreserved",
		log.String("db", db.id.String()),
		log.Uint8("lock", uint8(l)),
	)
}

// IsLockHeldSomewhere reports whether any live session currently holds l.
func (db *ObjectDB) IsLockHeldSomewhere(l Lock) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.held.Contains(uint32(l))
}

// LockName returns the debug name the lock was reserved with.
func (db *ObjectDB) LockName(l Lock) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.names[l]
}
