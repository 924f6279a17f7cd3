package generic

import "sync"

// Pool is a typed sync.Pool. Values are reset before they go back.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

type PoolOption[T any] func(p *Pool[T], generate func() T)

// WithReset runs reset on every value passed to Put.
func WithReset[T any](reset func(T)) PoolOption[T] {
	return func(p *Pool[T], _ func() T) {
		p.reset = reset
	}
}

// WithWarm pre-allocates n values.
func WithWarm[T any](n int) PoolOption[T] {
	return func(p *Pool[T], generate func() T) {
		for i := 0; i < n; i++ {
			p.pool.Put(generate())
		}
	}
}

func NewPool[T any](generate func() T, opts ...PoolOption[T]) *Pool[T] {
	p := &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
	for _, opt := range opts {
		opt(p, generate)
	}
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		p.reset(value)
	}
	p.pool.Put(value)
}
