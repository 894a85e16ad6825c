package encoding

import (
	"fmt"

	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/frame"
)

// EncodeRaw entropy-codes the whole pixel buffer into a raw-mode record.
func (c *FrameCodec) EncodeRaw(f *frame.RawFrame) (*frame.Record, error) {
	if err := f.Validate(c.geo); err != nil {
		return nil, err
	}

	payload, err := c.codec.Compress(f.Pixels)
	if err != nil {
		return nil, fmt.Errorf("%w: raw frame: %v", errs.ErrCompression, err)
	}

	return frame.NewRecord(0, c.geo, format.ModeRaw, payload), nil
}

// DecodeRaw entropy-decodes a raw-mode payload into a fresh frame. The
// decoded length must equal the geometry's pixel count exactly.
func (c *FrameCodec) DecodeRaw(rec *frame.Record) (*frame.RawFrame, error) {
	pixels, err := c.codec.Decompress(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v", errs.ErrCompression, rec.Header.FrameNumber, err)
	}
	if len(pixels) != c.geo.PixelCount() {
		return nil, fmt.Errorf("%w: frame %d decoded to %d bytes, want %d",
			errs.ErrIntegrityCheck, rec.Header.FrameNumber, len(pixels), c.geo.PixelCount())
	}

	out := c.newOutputFrame()
	copy(out.Pixels, pixels)

	return out, nil
}
