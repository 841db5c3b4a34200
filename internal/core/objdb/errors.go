package objdb

import (
	"errors"
	"fmt"
)

// Core database errors
var (
	ErrSessionClosed = errors.New("session is closed")
	ErrInvalidLock   = errors.New("lock id is not reservable")
	ErrLockHeld      = errors.New("lock is already held by another session")
)

// LockHeldError is returned by NewSession when one of the requested locks is
// currently held by another live session. The acquisition is all-or-nothing:
// when this error is returned, none of the requested locks were marked held.
type LockHeldError struct {
	Lock Lock
	Name string
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("failed to acquire lock %d (%q): already held by another session", e.Lock, e.Name)
}

func (e *LockHeldError) Unwrap() error { return ErrLockHeld }

// ObjDeadError reports a generation mismatch: the object behind the handle
// was destroyed. NewGen is the generation of whatever object now occupies the
// slot, or zero if the slot is empty. It identifies an unrelated object and
// must never be treated as a newer version of the requested one.
type ObjDeadError struct {
	Requested RawObj
	NewGen    uint64
}

func (e *ObjDeadError) Error() string {
	if e.NewGen != 0 {
		return fmt.Sprintf("object %v is dead; its slot was recycled for generation %d", e.Requested, e.NewGen)
	}
	return fmt.Sprintf("object %v is dead", e.Requested)
}

// ObjLockedError reports that the fetching session does not hold the lock the
// object was allocated under.
type ObjLockedError struct {
	Requested RawObj
	Lock      Lock
	Name      string
}

func (e *ObjLockedError) Error() string {
	return fmt.Sprintf("object %v is guarded by lock %d (%q), which the session has not acquired", e.Requested, e.Lock, e.Name)
}

// IsDead reports whether err is an ObjDeadError.
func IsDead(err error) bool {
	var dead *ObjDeadError
	return errors.As(err, &dead)
}

// IsLocked reports whether err is an ObjLockedError.
func IsLocked(err error) bool {
	var locked *ObjLockedError
	return errors.As(err, &locked)
}
