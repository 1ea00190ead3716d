package buffer

import "sync"

// Pool provides sync.Pool-based Array reuse to reduce GC pressure when the
// same working shapes are needed over and over, as in shift-averaging
// loops that transform one scratch copy per iteration.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &Array{}
			},
		},
	}
}

// Get returns a zeroed Array with the requested shape, reusing a pooled
// backing slice when its capacity suffices.
// Callers must return it via Put when done.
func (p *Pool) Get(shape ...int) *Array {
	a := p.pool.Get().(*Array)
	if len(shape) == 0 {
		shape = []int{1}
	}
	a.shape = a.shape[:0]
	for _, n := range shape {
		if n < 1 {
			n = 1
		}
		a.shape = append(a.shape, n)
	}
	a.strides = stridesFor(a.shape)

	n := product(a.shape)
	if cap(a.samples) >= n {
		a.samples = a.samples[:n]
	} else {
		a.samples = make([]float64, n)
	}
	a.Zero()
	return a
}

// Put returns an Array to the pool for reuse.
// The caller must not use the array after calling Put.
func (p *Pool) Put(a *Array) {
	if a == nil {
		return
	}
	p.pool.Put(a)
}
