// Package entity layers a dynamically extensible, typed component map on top
// of objdb handles. An Entity is itself an Obj wrapping a mutex-guarded map
// from typed keys to component handles; components keep their own lifetimes
// and are not destroyed with the entity.
package entity

import (
	"sync"

	"github.com/slotdb/slotdb/internal/core/objdb"
)

type componentMap struct {
	mu sync.Mutex
	m  map[RawKey]any
}

func (c *componentMap) insert(key RawKey, handle any) {
	c.mu.Lock()
	c.m[key] = handle
	c.mu.Unlock()
}

func (c *componentMap) lookup(key RawKey) (any, bool) {
	c.mu.Lock()
	h, ok := c.m[key]
	c.mu.Unlock()
	return h, ok
}

type state struct {
	components *componentMap
}

// Entity is a copyable handle to a set of typed component bindings. It is
// alive exactly as long as its backing object.
type Entity struct {
	obj objdb.Obj[state]
}

// Binding pairs a typed key with an erased component handle. Build them with
// Bind.
type Binding struct {
	key    RawKey
	handle any
}

// Bind associates a component handle with a key for Add or NewWith.
func Bind[T any](key Key[T], obj objdb.Obj[T]) Binding {
	return Binding{key: key.raw, handle: obj}
}

// New creates an empty entity. The backing map is allocated with no lock, so
// the binding table itself is reachable from any session; the components it
// points at still enforce their own locks.
func New(s *objdb.Session) Entity {
	return NewWith(s)
}

// NewWith creates an entity with an initial set of bindings.
func NewWith(s *objdb.Session, bindings ...Binding) Entity {
	cm := &componentMap{m: make(map[RawKey]any, len(bindings))}
	for _, b := range bindings {
		cm.m[b.key] = b.handle
	}
	return Entity{obj: objdb.NewObj(s, state{components: cm})}
}

// Add inserts bindings into the entity's component map. Re-binding an
// existing key replaces the entry; there is no uniqueness guard beyond the
// map's overwrite semantics. Panics if the entity itself is dead.
func (e Entity) Add(s *objdb.Session, bindings ...Binding) {
	st := e.obj.Get(s)
	for _, b := range bindings {
		st.components.insert(b.key, b.handle)
	}
}

// Destroy releases the entity's backing object. Component objects it
// referenced are left alive; cascading teardown is a policy for callers.
func (e Entity) Destroy(s *objdb.Session) bool {
	return e.obj.Destroy(s)
}

// IsAliveNow is a non-panicking liveness probe for the entity itself.
func (e Entity) IsAliveNow(s *objdb.Session) bool {
	return e.obj.IsAliveNow(s)
}

// TryGet looks key up on e and dereferences the bound component under the
// same session. The three failure modes stay distinguishable: the entity's
// own handle failing (DerefError), the key being absent (MissingError), and
// the component's handle failing (ComponentError).
func TryGet[T any](e Entity, s *objdb.Session, key Key[T]) (*T, error) {
	st, err := e.obj.TryGet(s)
	if err != nil {
		return nil, &DerefError{Err: err}
	}
	h, ok := st.components.lookup(key.raw)
	if !ok {
		return nil, &MissingError{Key: key.raw}
	}
	obj, ok := h.(objdb.Obj[T])
	if !ok {
		return nil, &MissingError{Key: key.raw}
	}
	ptr, err := obj.TryGet(s)
	if err != nil {
		return nil, &ComponentError{Key: key.raw, Err: err}
	}
	return ptr, nil
}

// Get is the panicking form of TryGet.
func Get[T any](e Entity, s *objdb.Session, key Key[T]) *T {
	ptr, err := TryGet(e, s, key)
	if err != nil {
		panic(err)
	}
	return ptr
}

// Handle returns the component handle bound to key without dereferencing it,
// or false if the key is absent. Panics if the entity itself is dead.
func Handle[T any](e Entity, s *objdb.Session, key Key[T]) (objdb.Obj[T], bool) {
	st := e.obj.Get(s)
	h, ok := st.components.lookup(key.raw)
	if !ok {
		return objdb.Obj[T]{}, false
	}
	obj, ok := h.(objdb.Obj[T])
	return obj, ok
}
