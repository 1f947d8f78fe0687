// Package memory provides the typed object pool used to keep queue nodes and
// per-command scratch objects out of the garbage collector in steady state.
package memory

import "sync"

// Pool is a typed wrapper around sync.Pool.
type Pool[T any] struct {
	p *sync.Pool
}

func NewPool[T any](ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
	}
}

func (p *Pool[T]) Get() *T {
	return p.p.Get().(*T)
}

// Put returns an object to the pool. The caller must not touch it afterwards.
func (p *Pool[T]) Put(v *T) {
	p.p.Put(v)
}
