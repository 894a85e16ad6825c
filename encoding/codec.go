package encoding

import (
	"fmt"

	"github.com/gitvid/gitvid/compress"
	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/frame"
	"github.com/gitvid/gitvid/internal/pool"
)

// FrameCodec encodes and decodes frames of one fixed stream geometry with one
// entropy codec. Decoded pixel buffers come from an internal pool; the owner
// of a decoded frame returns it with Release when done.
//
// FrameCodec is safe for concurrent use.
type FrameCodec struct {
	geo    format.Geometry
	codec  compress.Codec
	pixels *pool.PixelBufferPool
}

// NewFrameCodec creates a codec for the given geometry and entropy
// compression type.
func NewFrameCodec(geo format.Geometry, compressionType format.CompressionType) (*FrameCodec, error) {
	codec, err := compress.CreateCodec(compressionType, "frame codec")
	if err != nil {
		return nil, err
	}

	return &FrameCodec{
		geo:    geo,
		codec:  codec,
		pixels: pool.NewPixelBufferPool(geo.PixelCount()),
	}, nil
}

// Geometry returns the stream geometry this codec validates against.
func (c *FrameCodec) Geometry() format.Geometry {
	return c.geo
}

// Encode compresses a frame, choosing raw mode when prev is nil and delta
// mode otherwise, and stamps the record with the given frame number.
func (c *FrameCodec) Encode(cur, prev *frame.RawFrame, frameNumber uint32) (*frame.Record, error) {
	var (
		rec *frame.Record
		err error
	)
	if prev == nil {
		rec, err = c.EncodeRaw(cur)
	} else {
		rec, err = c.EncodeDelta(cur, prev)
	}
	if err != nil {
		return nil, err
	}
	rec.Header.FrameNumber = frameNumber

	return rec, nil
}

// Decode reconstructs a frame from a record. A delta record with a nil
// reference is treated as raw (stream restart coercion); any other mode
// byte was already rejected by frame.Deserialize.
func (c *FrameCodec) Decode(rec *frame.Record, prev *frame.RawFrame) (*frame.RawFrame, error) {
	switch rec.Header.Mode {
	case format.ModeRaw:
		return c.DecodeRaw(rec)
	case format.ModeDelta:
		if prev == nil {
			return c.DecodeRaw(rec)
		}
		return c.DecodeDelta(rec, prev)
	default:
		return nil, fmt.Errorf("%w: 0x%02X", errs.ErrInvalidMode, byte(rec.Header.Mode))
	}
}

// Clone copies a frame into a pooled buffer. The playback decoder clones
// each decoded frame into the ring while keeping the original as the next
// delta reference.
func (c *FrameCodec) Clone(f *frame.RawFrame) *frame.RawFrame {
	out := c.newOutputFrame()
	copy(out.Pixels, f.Pixels)

	return out
}

// Release returns a decoded frame's pixel buffer to the codec's pool. The
// frame must not be used afterwards.
func (c *FrameCodec) Release(f *frame.RawFrame) {
	if f == nil {
		return
	}
	c.pixels.Put(f.Pixels)
	f.Pixels = nil
}

// newOutputFrame builds a frame around a pooled pixel buffer.
func (c *FrameCodec) newOutputFrame() *frame.RawFrame {
	return &frame.RawFrame{
		Width:    c.geo.Width,
		Height:   c.geo.Height,
		Channels: c.geo.Channels,
		Pixels:   c.pixels.Get(),
	}
}
