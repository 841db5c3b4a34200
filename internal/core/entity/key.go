package entity

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// RawKey is the erased identity of a typed key: a stable 64-bit hash of the
// component type, optionally qualified by a label so one type can be bound
// under several roles.
type RawKey uint64

// Key addresses a component of type T in an entity's map.
type Key[T any] struct {
	raw RawKey
}

// Raw returns the erased identity.
func (k Key[T]) Raw() RawKey { return k.raw }

// KeyOf returns the default key for T: two calls with the same type argument
// always address the same binding.
func KeyOf[T any]() Key[T] {
	return Key[T]{raw: hashType[T]("")}
}

// NamedKey returns a label-qualified key for T, distinct from KeyOf[T]() and
// from any other label.
func NamedKey[T any](label string) Key[T] {
	return Key[T]{raw: hashType[T](label)}
}

func hashType[T any](label string) RawKey {
	t := reflect.TypeOf((*T)(nil)).Elem()
	h := xxhash.New()
	_, _ = h.WriteString(t.PkgPath())
	_, _ = h.WriteString("/")
	_, _ = h.WriteString(t.String())
	if label != "" {
		_, _ = h.WriteString("#")
		_, _ = h.WriteString(label)
	}
	return RawKey(h.Sum64())
}
