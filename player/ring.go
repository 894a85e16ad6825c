package player

import (
	"context"
	"io"

	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/frame"
)

// DefaultRingSize is the decode-ahead depth between decoder and display.
const DefaultRingSize = 16

// Ring is the bounded FIFO of decoded frames between the decoder (producer)
// and the display loop (consumer). Put blocks when full, Get blocks when
// empty, and both wake promptly when the context is cancelled. Frames move
// through with single ownership: a successful Put transfers the frame to the
// ring, a successful Get transfers it to the caller.
type Ring struct {
	ch chan *frame.RawFrame
}

// NewRing creates a ring holding up to capacity decoded frames.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}

	return &Ring{ch: make(chan *frame.RawFrame, capacity)}
}

// Put enqueues a frame, blocking while the ring is full. Returns
// errs.ErrStopped if the context is cancelled first; the caller then still
// owns the frame and must release it.
func (r *Ring) Put(ctx context.Context, f *frame.RawFrame) error {
	select {
	case r.ch <- f:
		return nil
	case <-ctx.Done():
		return errs.ErrStopped
	}
}

// Get dequeues the oldest frame, blocking while the ring is empty. Returns
// io.EOF once the ring is closed and drained, or errs.ErrStopped on
// cancellation.
func (r *Ring) Get(ctx context.Context) (*frame.RawFrame, error) {
	select {
	case f, ok := <-r.ch:
		if !ok {
			return nil, io.EOF
		}
		return f, nil
	case <-ctx.Done():
		return nil, errs.ErrStopped
	}
}

// Close marks the producer side done. Get drains remaining frames and then
// reports io.EOF.
func (r *Ring) Close() {
	close(r.ch)
}

// Drain empties the ring without blocking and hands each remaining frame to
// release. Used on the abort path to reclaim frames the display never took.
func (r *Ring) Drain(release func(*frame.RawFrame)) {
	for {
		select {
		case f, ok := <-r.ch:
			if !ok {
				return
			}
			release(f)
		default:
			return
		}
	}
}

// Len reports the number of frames currently queued.
func (r *Ring) Len() int {
	return len(r.ch)
}
