package objdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObj_EndToEnd(t *testing.T) {
	db := New()
	l := db.ReserveLock("physics")

	s := db.MustNewSession(l)
	obj := NewObjIn(s, l, uint32(42))

	require.Equal(t, uint32(42), *obj.Get(s))
	require.True(t, obj.IsAliveNow(s))

	require.True(t, obj.Destroy(s))

	_, err := obj.TryGet(s)
	var dead *ObjDeadError
	require.ErrorAs(t, err, &dead)
	require.Equal(t, uint64(0), dead.NewGen)
	require.False(t, obj.IsAliveNow(s))

	s.Close()
	require.NotPanics(t, func() { db.UnreserveLock(l) })
}

func TestObj_UseAfterDestroy(t *testing.T) {
	db := New()
	s := db.MustNewSession()

	const sentinel = "live payload"
	obj := NewObj(s, sentinel)
	handle := obj // copied before destruction

	require.True(t, obj.Destroy(s))
	require.False(t, obj.Destroy(s), "second destroy must report no effect")

	_, err := handle.TryGet(s)
	require.True(t, IsDead(err))

	// The value must never be observable again through the handle.
	require.Panics(t, func() { handle.Get(s) })

	s.Close()
}

func TestObj_SlotReuseDoesNotAliasIdentity(t *testing.T) {
	db := New()
	s := db.MustNewSession()

	old := NewObj(s, 1)
	require.True(t, old.Destroy(s))

	// The session's free-list hands the same slot to the next allocation.
	repl := NewObj(s, 2)
	require.Same(t, old.Raw().slot, repl.Raw().slot, "test assumes slot reuse")

	require.NotEqual(t, old, repl)

	_, err := old.TryGet(s)
	var dead *ObjDeadError
	require.ErrorAs(t, err, &dead)
	require.Equal(t, repl.Gen(), dead.NewGen)

	require.Equal(t, 2, *repl.Get(s))
	s.Close()
}

func TestObj_LockedError(t *testing.T) {
	db := New()
	l := db.ReserveLock("render")

	owner := db.MustNewSession(l)
	obj := NewObjIn(owner, l, "mesh")
	require.Equal(t, "mesh", *obj.Get(owner))
	owner.Close()

	outsider := db.MustNewSession()
	_, err := obj.TryGet(outsider)
	require.True(t, IsLocked(err))

	var locked *ObjLockedError
	require.ErrorAs(t, err, &locked)
	require.Equal(t, l, locked.Lock)
	require.Equal(t, "render", locked.Name)

	// The object is alive, just inaccessible from this session.
	require.True(t, obj.IsAliveNow(outsider))
	outsider.Close()

	reader := db.MustNewSession(l)
	require.Equal(t, "mesh", *obj.Get(reader))
	reader.Close()
}

func TestObj_NoLockAccessibleAnywhere(t *testing.T) {
	db := New()

	s1 := db.MustNewSession()
	obj := NewObj(s1, 3.14)
	s1.Close()

	s2 := db.MustNewSession()
	require.Equal(t, 3.14, *obj.Get(s2))
	s2.Close()
}

func TestObj_HandleEquality(t *testing.T) {
	db := New()
	s := db.MustNewSession()

	a := NewObj(s, 1)
	b := NewObj(s, 1)
	require.NotEqual(t, a, b, "distinct incarnations compare unequal even with equal payloads")

	c := a
	require.Equal(t, a, c)

	// Handles are usable as map keys.
	seen := map[Obj[int]]bool{a: true}
	require.True(t, seen[c])
	require.False(t, seen[b])

	s.Close()
}

func TestObj_PointerStableAcrossGrowth(t *testing.T) {
	db := New(WithConfig(Config{GenBatchSize: 8, SlotChunkSize: 4, HeapChunkSize: 128}))
	s := db.MustNewSession()

	first := NewObj(s, 100)
	firstPtr := first.Get(s)

	// Force multiple slot chunks and typed slab chunks.
	for i := 0; i < 2000; i++ {
		NewObj(s, i)
	}

	require.Same(t, firstPtr, first.Get(s))
	require.Equal(t, 100, *firstPtr)
	s.Close()
}

func TestRawObj_DynamicPayload(t *testing.T) {
	db := New()
	l := db.ReserveLock("blob")
	s := db.MustNewSession(l)

	raw, buf := NewRawObj(s, l, 16)
	require.Len(t, buf, 16)
	copy(buf, "voxel chunk data")

	got, err := raw.TryGetValue(s)
	require.NoError(t, err)
	require.Equal(t, []byte("voxel chunk data"), got.([]byte))

	require.True(t, raw.Destroy(s))
	_, err = raw.TryGetValue(s)
	require.True(t, IsDead(err))
	s.Close()
}

func TestWrapRaw(t *testing.T) {
	db := New()
	s := db.MustNewSession()

	obj := NewObj(s, "payload")
	rewrapped := WrapRaw[string](obj.Raw())
	require.Equal(t, "payload", *rewrapped.Get(s))

	// Wrapping at the wrong type panics on dereference, not silently misreads.
	wrong := WrapRaw[int](obj.Raw())
	require.Panics(t, func() { wrong.Get(s) })

	s.Close()
}

func TestSlotManager_Recycling(t *testing.T) {
	m := newSlotManager(4)

	s1 := m.reserve()
	s2 := m.reserve()
	require.NotSame(t, s1, s2)

	m.unreserve(s1)
	require.Same(t, s1, m.reserve())

	m.reserveCapacity(16)
	require.GreaterOrEqual(t, len(m.free), 16)
}

func TestHeap_AllocRaw(t *testing.T) {
	h := newHeap(64)

	a := h.allocRaw(16)
	b := h.allocRaw(16)
	require.Len(t, a, 16)
	require.Len(t, b, 16)

	a[0] = 0xAA
	b[0] = 0xBB
	require.Equal(t, byte(0xAA), a[0], "allocations must not overlap")

	// Oversized requests get dedicated chunks.
	big := h.allocRaw(1024)
	require.Len(t, big, 1024)
}
