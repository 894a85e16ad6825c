// Package pool provides buffer reuse for the hot paths of the codec and
// playback pipeline. A 1080p RGB frame is ~6 MiB; allocating one per decoded
// frame at 60 fps would put ~360 MiB/s of pressure on the garbage collector.
package pool

import "sync"

// PixelBufferPool hands out pixel buffers of one fixed size. Each stream
// geometry gets its own pool so every buffer coming out has exactly the
// length the codec expects.
type PixelBufferPool struct {
	size int
	pool sync.Pool
}

// NewPixelBufferPool creates a pool of byte slices of the given length.
func NewPixelBufferPool(size int) *PixelBufferPool {
	p := &PixelBufferPool{size: size}
	p.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}

	return p
}

// Get returns a buffer of exactly the pool's size. Contents are undefined;
// callers that need zeroed or seeded memory must fill it themselves.
func (p *PixelBufferPool) Get() []byte {
	ptr, _ := p.pool.Get().(*[]byte)

	return *ptr
}

// Put returns a buffer to the pool. Buffers of the wrong size are dropped so
// a geometry mix-up cannot poison the pool.
func (p *PixelBufferPool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	buf = buf[:p.size]
	p.pool.Put(&buf)
}

// Size returns the fixed buffer length handed out by this pool.
func (p *PixelBufferPool) Size() int {
	return p.size
}
