package frame

import (
	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
)

// RawFrame is a decoded frame in memory: one byte per channel, row-major,
// top-left origin, no padding.
//
// A RawFrame has exactly one owner at any time. Ownership moves along the
// pipeline (decoder -> ring -> display); whoever holds it last returns the
// pixel buffer to its pool or lets it go to the collector.
type RawFrame struct {
	Width    uint32
	Height   uint32
	Channels uint32
	Pixels   []byte
}

// NewRawFrame allocates a zeroed frame of the given geometry.
func NewRawFrame(geo format.Geometry) *RawFrame {
	return &RawFrame{
		Width:    geo.Width,
		Height:   geo.Height,
		Channels: geo.Channels,
		Pixels:   make([]byte, geo.PixelCount()),
	}
}

// NewRawFrameBuffer wraps an existing pixel buffer, taking ownership of it.
// The buffer length must equal the geometry's pixel count.
func NewRawFrameBuffer(geo format.Geometry, pixels []byte) (*RawFrame, error) {
	if len(pixels) != geo.PixelCount() {
		return nil, errs.ErrInvalidGeometry
	}

	return &RawFrame{
		Width:    geo.Width,
		Height:   geo.Height,
		Channels: geo.Channels,
		Pixels:   pixels,
	}, nil
}

// Geometry returns the frame's dimensions.
func (f *RawFrame) Geometry() format.Geometry {
	return format.Geometry{Width: f.Width, Height: f.Height, Channels: f.Channels}
}

// Validate checks the frame against the stream geometry and that the pixel
// buffer has exactly W*H*C bytes.
func (f *RawFrame) Validate(geo format.Geometry) error {
	if f.Geometry() != geo {
		return errs.ErrInvalidGeometry
	}
	if len(f.Pixels) != geo.PixelCount() {
		return errs.ErrInvalidGeometry
	}

	return nil
}
