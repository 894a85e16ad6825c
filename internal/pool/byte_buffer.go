package pool

import "sync"

// Default and maximum retained capacities for pooled scratch buffers. The
// delta encoder's RLE stream is usually a small fraction of the frame size,
// but a worst-case frame (identical and differing bytes alternating) needs
// 2.5x the pixel count, so oversized buffers are let go instead of pinned
// forever.
const (
	ScratchBufferDefaultSize  = 64 * 1024
	ScratchBufferMaxThreshold = 16 * 1024 * 1024
)

// ByteBuffer is an append-oriented scratch buffer for building RLE streams
// and serialized records.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// WriteByte appends a single byte.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// Write appends data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

var byteBufferPool = sync.Pool{
	New: func() any {
		return &ByteBuffer{B: make([]byte, 0, ScratchBufferDefaultSize)}
	},
}

// GetByteBuffer retrieves an empty scratch buffer from the pool.
func GetByteBuffer() *ByteBuffer {
	bb, _ := byteBufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutByteBuffer returns a scratch buffer to the pool, dropping buffers that
// grew past the retention threshold.
func PutByteBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > ScratchBufferMaxThreshold {
		return
	}
	byteBufferPool.Put(bb)
}
