package encoding

import (
	"fmt"

	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/frame"
	"github.com/gitvid/gitvid/internal/pool"
)

// RLE segment tags in a delta payload.
const (
	tagIdentical = 0x00
	tagDiffering = 0x01

	maxRunLength = 255
)

// EncodeDelta run-length encodes the byte differences between cur and its
// reference and entropy-codes the result into a delta-mode record.
//
// The scan alternates: first measure the identical run at the cursor (up to
// 255); if nonzero emit (0x00, len). Otherwise measure the differing run and
// emit (0x01, len) followed by len signed byte deltas, truncated to 8 bits.
// Every segment advances the cursor by at least one byte, so the stream
// always covers exactly the pixel count.
func (c *FrameCodec) EncodeDelta(cur, prev *frame.RawFrame) (*frame.Record, error) {
	if err := cur.Validate(c.geo); err != nil {
		return nil, err
	}
	if err := prev.Validate(c.geo); err != nil {
		return nil, err
	}

	rle := pool.GetByteBuffer()
	defer pool.PutByteBuffer(rle)

	pixelCount := c.geo.PixelCount()
	cp, pp := cur.Pixels, prev.Pixels

	for i := 0; i < pixelCount; {
		run := 0
		for i+run < pixelCount && run < maxRunLength && cp[i+run] == pp[i+run] {
			run++
		}
		if run > 0 {
			rle.B = append(rle.B, tagIdentical, byte(run))
			i += run

			continue
		}

		diff := 0
		for i+diff < pixelCount && diff < maxRunLength && cp[i+diff] != pp[i+diff] {
			diff++
		}
		rle.B = append(rle.B, tagDiffering, byte(diff))
		for j := 0; j < diff; j++ {
			rle.B = append(rle.B, cp[i+j]-pp[i+j])
		}
		i += diff
	}

	payload, err := c.codec.Compress(rle.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: delta frame: %v", errs.ErrCompression, err)
	}

	return frame.NewRecord(0, c.geo, format.ModeDelta, payload), nil
}

// DecodeDelta reconstructs a frame from a delta-mode record and its
// reference. The output is seeded with the reference before segments are
// applied, so identical runs cost nothing and the result does not depend on
// prior buffer contents.
func (c *FrameCodec) DecodeDelta(rec *frame.Record, prev *frame.RawFrame) (*frame.RawFrame, error) {
	if err := prev.Validate(c.geo); err != nil {
		return nil, err
	}

	rle, err := c.codec.Decompress(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v", errs.ErrCompression, rec.Header.FrameNumber, err)
	}

	// Every segment covers at least one pixel byte with at most three stream
	// bytes (a length-1 differing run), so no valid stream exceeds 3P.
	pixelCount := c.geo.PixelCount()
	if len(rle) > 3*pixelCount {
		return nil, fmt.Errorf("%w: frame %d: %d byte RLE stream exceeds the 3x pixel bound",
			errs.ErrMalformedRecord, rec.Header.FrameNumber, len(rle))
	}

	out := c.newOutputFrame()
	copy(out.Pixels, prev.Pixels)

	pos := 0
	pixel := 0
	for pos < len(rle) {
		if pos+2 > len(rle) {
			c.Release(out)
			return nil, fmt.Errorf("%w: frame %d: truncated segment header at offset %d",
				errs.ErrMalformedRecord, rec.Header.FrameNumber, pos)
		}
		tag, length := rle[pos], int(rle[pos+1])
		pos += 2

		if length == 0 {
			c.Release(out)
			return nil, fmt.Errorf("%w: frame %d: zero-length segment at offset %d",
				errs.ErrMalformedRecord, rec.Header.FrameNumber, pos-2)
		}
		if pixel+length > pixelCount {
			c.Release(out)
			return nil, fmt.Errorf("%w: frame %d: segment overruns pixel count (%d+%d > %d)",
				errs.ErrMalformedRecord, rec.Header.FrameNumber, pixel, length, pixelCount)
		}

		switch tag {
		case tagIdentical:
			// Already seeded from the reference.
			pixel += length
		case tagDiffering:
			if pos+length > len(rle) {
				c.Release(out)
				return nil, fmt.Errorf("%w: frame %d: truncated delta run at offset %d",
					errs.ErrMalformedRecord, rec.Header.FrameNumber, pos)
			}
			for j := 0; j < length; j++ {
				out.Pixels[pixel] = clampByte(int16(out.Pixels[pixel]) + int16(int8(rle[pos+j])))
				pixel++
			}
			pos += length
		default:
			c.Release(out)
			return nil, fmt.Errorf("%w: frame %d: RLE tag 0x%02X",
				errs.ErrInvalidMode, rec.Header.FrameNumber, tag)
		}
	}

	if pixel != pixelCount {
		c.Release(out)
		return nil, fmt.Errorf("%w: frame %d: RLE stream covers %d of %d pixel bytes",
			errs.ErrMalformedRecord, rec.Header.FrameNumber, pixel, pixelCount)
	}

	return out, nil
}

// clampByte saturates a reconstructed value into the valid byte range.
// Corrupt deltas saturate instead of failing.
func clampByte(v int16) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}

	return byte(v)
}
