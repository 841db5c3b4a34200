// Package generic holds small type-parameterized utilities shared across the
// repo.
package generic

import (
	"bytes"
	"sync"
)

// Pool is a typed wrapper over sync.Pool.
type Pool[T any] struct {
	pool sync.Pool
}

// NewPool builds a pool whose misses are filled by generate.
func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	p.pool.Put(value)
}

// NewBufferPool returns a pool of reset byte buffers.
func NewBufferPool() *Pool[*bytes.Buffer] {
	return NewPool(func() *bytes.Buffer { return new(bytes.Buffer) })
}
