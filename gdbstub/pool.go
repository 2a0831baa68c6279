package gdbstub

import "sync"

// BufferPool recycles growBuffer backing arrays across Sessions, the same
// sync.Pool-based reuse the donor's allocator.MemoryPool applies to
// fixed-size-class byte slices (internal/allocator/allocator.go). A single
// class is enough here: growBuffer already grows through doubling
// reallocation, so there is no fixed size to classify by — only whether a
// previously-grown backing array can be handed to the next Session instead
// of starting from zero.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates an empty pool, following the donor's own
// NewMemoryPool constructor idiom rather than exposing the zero value.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} { return &growBuffer{} },
		},
	}
}

// Get returns a growBuffer ready for use, its length reset to zero but any
// previously-grown backing array's capacity intact.
func (p *BufferPool) Get() *growBuffer {
	gb, _ := p.pool.Get().(*growBuffer)
	gb.reset()

	return gb
}

// Put returns gb to the pool for a later Get to reuse. Callers must not
// touch gb again afterward.
func (p *BufferPool) Put(gb *growBuffer) {
	if gb == nil {
		return
	}

	p.pool.Put(gb)
}
