package objdb

import "fmt"

// RawObj is a type-erased handle: the slot it points at plus the generation
// it was created with. Handles are small copyable values; copying one never
// copies or extends the referent's lifetime. Two handles are equal iff they
// name the same object incarnation — a recycled slot compares unequal because
// the generation differs.
type RawObj struct {
	slot *Slot
	gen  uint64
}

// Gen returns the generation captured at creation time.
func (r RawObj) Gen() uint64 { return r.gen }

func (r RawObj) String() string {
	return fmt.Sprintf("RawObj(gen=%d)", r.gen)
}

// NewRawObj allocates size bytes of type-erased storage guarded by lock and
// returns the handle along with the buffer for the caller to initialize.
func NewRawObj(s *Session, lock Lock, size int) (RawObj, []byte) {
	buf := s.heap.allocRaw(size)
	return s.allocSlot(lock, buf), buf
}

// TryGetValue fetches the payload, validating generation and lock. The
// failure is a *ObjLockedError when the session lacks the occupant's lock,
// otherwise a *ObjDeadError carrying the replacement generation (zero when
// the slot is simply empty).
func (r RawObj) TryGetValue(s *Session) (any, error) {
	p, cur, ok := r.slot.tryGetBase(s, r.gen)
	if ok {
		return p.value, nil
	}
	return nil, r.decodeError(s, cur)
}

func (r RawObj) decodeError(s *Session, cur extGen) error {
	if l := cur.lock(); !s.canAccess(l) {
		return &ObjLockedError{Requested: r, Lock: l, Name: s.db.LockName(l)}
	}
	return &ObjDeadError{Requested: r, NewGen: cur.gen()}
}

// GetValue is the panicking form of TryGetValue.
func (r RawObj) GetValue(s *Session) any {
	v, err := r.TryGetValue(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Destroy releases the slot. It returns whether this call performed the
// release; a second destroy, or a destroy through a stale handle, returns
// false. Outstanding handles with the old generation become permanently
// invalid. The backing storage is not reclaimed until a compaction pass.
func (r RawObj) Destroy(s *Session) bool {
	if r.slot.release(r.gen) {
		s.slots.unreserve(r.slot)
		s.db.liveSlots.Add(-1)
		return true
	}
	return false
}

// IsAliveNow is a non-panicking liveness probe. The answer can go stale the
// moment it is returned.
func (r RawObj) IsAliveNow(_ *Session) bool {
	return r.slot.isAlive(r.gen)
}

// Obj is a typed handle over the same slot/generation pair as RawObj. The
// payload type travels in the type parameter, so no per-handle metadata is
// needed and handles stay two words.
type Obj[T any] struct {
	raw RawObj
}

// NewObj allocates value with no lock: the resulting object is readable from
// any session.
func NewObj[T any](s *Session, value T) Obj[T] {
	return NewObjIn(s, LockNone, value)
}

// NewObjIn allocates value guarded by lock.
func NewObjIn[T any](s *Session, lock Lock, value T) Obj[T] {
	ptr := allocTyped(&s.heap, value)
	return Obj[T]{raw: s.allocSlot(lock, ptr)}
}

// Raw returns the type-erased form of the handle.
func (o Obj[T]) Raw() RawObj { return o.raw }

// Gen returns the generation captured at creation time.
func (o Obj[T]) Gen() uint64 { return o.raw.gen }

// TryGet dereferences the handle under s. The returned pointer stays valid
// as long as the object is alive; destroying the object does not recycle the
// memory, only the identity.
func (o Obj[T]) TryGet(s *Session) (*T, error) {
	v, err := o.raw.TryGetValue(s)
	if err != nil {
		return nil, err
	}
	ptr, ok := v.(*T)
	if !ok {
		panic(fmt.Sprintf("objdb: handle type %T does not match stored payload %T", o, v))
	}
	return ptr, nil
}

// Get is the panicking form of TryGet, for call sites that established by
// construction that the access succeeds.
func (o Obj[T]) Get(s *Session) *T {
	ptr, err := o.TryGet(s)
	if err != nil {
		panic(err)
	}
	return ptr
}

// Destroy releases the underlying slot. See RawObj.Destroy.
func (o Obj[T]) Destroy(s *Session) bool {
	return o.raw.Destroy(s)
}

// IsAliveNow is a non-panicking liveness probe.
func (o Obj[T]) IsAliveNow(s *Session) bool {
	return o.raw.IsAliveNow(s)
}

func (o Obj[T]) String() string {
	return fmt.Sprintf("Obj(gen=%d)", o.raw.gen)
}

// WrapRaw retypes a RawObj whose payload was produced by NewObjIn[T]. The
// type is re-checked on every dereference.
func WrapRaw[T any](r RawObj) Obj[T] {
	return Obj[T]{raw: r}
}
