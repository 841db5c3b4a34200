package objdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_MutualExclusion(t *testing.T) {
	db := New()
	a := db.ReserveLock("a")
	b := db.ReserveLock("b")

	t.Run("Second Holder Rejected", func(t *testing.T) {
		s1, err := db.NewSession(a)
		require.NoError(t, err)

		_, err = db.NewSession(a)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrLockHeld)

		var held *LockHeldError
		require.ErrorAs(t, err, &held)
		require.Equal(t, a, held.Lock)
		require.Equal(t, "a", held.Name)

		s1.Close()

		s2, err := db.NewSession(a)
		require.NoError(t, err)
		s2.Close()
	})

	t.Run("Disjoint Sets Coexist", func(t *testing.T) {
		s1, err := db.NewSession(a)
		require.NoError(t, err)
		s2, err := db.NewSession(b)
		require.NoError(t, err)
		s1.Close()
		s2.Close()
	})

	t.Run("MustNewSession Panics On Conflict", func(t *testing.T) {
		s1 := db.MustNewSession(a)
		require.Panics(t, func() { db.MustNewSession(a) })
		s1.Close()
	})
}

func TestSession_AllOrNothing(t *testing.T) {
	db := New()
	a := db.ReserveLock("a")
	b := db.ReserveLock("b")

	holder := db.MustNewSession(b)

	// A is free, B is held: the whole acquisition must fail...
	_, err := db.NewSession(a, b)
	require.Error(t, err)

	// ...without leaving A marked held.
	require.False(t, db.IsLockHeldSomewhere(a))
	solo, err := db.NewSession(a)
	require.NoError(t, err)
	solo.Close()

	holder.Close()
}

func TestSession_CanLock(t *testing.T) {
	db := New()
	a := db.ReserveLock("a")
	b := db.ReserveLock("b")

	s := db.MustNewSession(a)
	require.True(t, s.CanLock(a))
	require.False(t, s.CanLock(b))
	require.True(t, s.CanLock(LockNone))
	require.Equal(t, []Lock{a}, s.Locks())
	s.Close()
}

func TestSession_CloseReleasesLocks(t *testing.T) {
	db := New()
	a := db.ReserveLock("a")

	s := db.MustNewSession(a)
	require.True(t, db.IsLockHeldSomewhere(a))

	s.Close()
	require.False(t, db.IsLockHeldSomewhere(a))

	// Idempotent.
	s.Close()
	require.False(t, db.IsLockHeldSomewhere(a))
}

func TestSession_InvalidLocks(t *testing.T) {
	db := New()

	_, err := db.NewSession(LockNone)
	require.ErrorIs(t, err, ErrInvalidLock)

	_, err = db.NewSession(Lock(0))
	require.ErrorIs(t, err, ErrInvalidLock)
}

func TestSession_UseAfterClosePanics(t *testing.T) {
	db := New()
	s := db.MustNewSession()
	s.Close()

	require.PanicsWithValue(t, ErrSessionClosed, func() {
		NewObj(s, 1)
	})
}

func TestLockRegistry(t *testing.T) {
	t.Run("Reserve And Name", func(t *testing.T) {
		db := New()
		l := db.ReserveLock("physics")
		require.True(t, l.regular())
		require.Equal(t, "physics", db.LockName(l))

		db.UnreserveLock(l)
		require.Equal(t, "", db.LockName(l))
	})

	t.Run("Ids Recycle After Unreserve", func(t *testing.T) {
		db := New()
		l1 := db.ReserveLock("first")
		db.UnreserveLock(l1)
		l2 := db.ReserveLock("second")
		require.Equal(t, l1, l2)
	})

	t.Run("Exhaustion Panics", func(t *testing.T) {
		db := New()
		for i := 0; i < 254; i++ {
			db.ReserveLock("")
		}
		require.Panics(t, func() { db.ReserveLock("one too many") })
	})

	t.Run("Reservable Before Any Object", func(t *testing.T) {
		db := New()
		l := db.ReserveLock("early")
		require.False(t, db.IsLockHeldSomewhere(l))
	})
}

func TestSnapshot(t *testing.T) {
	db := New()
	a := db.ReserveLock("physics")
	db.ReserveLock("render")

	s := db.MustNewSession(a)
	obj := NewObjIn(s, a, 1)

	snap := db.TakeSnapshot()
	require.Equal(t, db.ID().String(), snap.ID)
	require.Equal(t, int64(1), snap.LiveSlots)
	require.Equal(t, int64(1), snap.LiveSessions)
	require.Equal(t, uint64(1), snap.TotalAllocs)
	require.Len(t, snap.Locks, 2)
	require.Equal(t, "physics", snap.Locks[0].Name)
	require.True(t, snap.Locks[0].Held)
	require.False(t, snap.Locks[1].Held)

	obj.Destroy(s)
	s.Close()

	snap = db.TakeSnapshot()
	require.Equal(t, int64(0), snap.LiveSlots)
	require.Equal(t, int64(0), snap.LiveSessions)

	var lockHeldErr error
	require.NotPanics(t, func() {
		_, lockHeldErr = db.NewSession(a)
	})
	require.NoError(t, lockHeldErr)
}
