package frame

import (
	"encoding/binary"

	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
)

// Record wire layout, all integers little-endian:
//
//	offset 0   4B  magic 0x47564346 ("GVCF")
//	offset 4   4B  frame number
//	offset 8   4B  width
//	offset 12  4B  height
//	offset 16  4B  channels
//	offset 20  4B  compressed payload size
//	offset 24  4B  CRC-32/IEEE of the payload
//	offset 28  1B  compression mode (0=raw, 1=delta)
//	offset 29  3B  reserved, written as zero
//	offset 32      payload
const (
	MagicNumber uint32 = 0x47564346

	// HeaderSize is the fixed header after the magic number.
	HeaderSize = 28
	// RecordOverhead is the serialized size of a record minus its payload.
	RecordOverhead = 4 + HeaderSize
)

// Header is the fixed-size portion of a frame record.
type Header struct {
	// FrameNumber is the zero-based monotonic index within the stream.
	FrameNumber uint32
	Width       uint32
	Height      uint32
	Channels    uint32
	// CompressedSize is the payload length in bytes.
	CompressedSize uint32
	// Checksum is the CRC-32/IEEE of the payload only.
	Checksum uint32
	// Mode records how the payload was produced.
	Mode format.Mode
}

// Geometry returns the frame dimensions recorded in the header.
func (h *Header) Geometry() format.Geometry {
	return format.Geometry{Width: h.Width, Height: h.Height, Channels: h.Channels}
}

// parse reads the 28 header bytes that follow the magic number. The reserved
// bytes are not inspected.
func (h *Header) parse(data []byte) error {
	if len(data) < HeaderSize {
		return errs.ErrMalformedRecord
	}

	h.FrameNumber = binary.LittleEndian.Uint32(data[0:4])
	h.Width = binary.LittleEndian.Uint32(data[4:8])
	h.Height = binary.LittleEndian.Uint32(data[8:12])
	h.Channels = binary.LittleEndian.Uint32(data[12:16])
	h.CompressedSize = binary.LittleEndian.Uint32(data[16:20])
	h.Checksum = binary.LittleEndian.Uint32(data[20:24])
	h.Mode = format.Mode(data[24])

	return nil
}

// appendTo serializes the header after the magic number, reserved bytes
// zeroed.
func (h *Header) appendTo(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, h.FrameNumber)
	buf = binary.LittleEndian.AppendUint32(buf, h.Width)
	buf = binary.LittleEndian.AppendUint32(buf, h.Height)
	buf = binary.LittleEndian.AppendUint32(buf, h.Channels)
	buf = binary.LittleEndian.AppendUint32(buf, h.CompressedSize)
	buf = binary.LittleEndian.AppendUint32(buf, h.Checksum)
	buf = append(buf, byte(h.Mode), 0, 0, 0)

	return buf
}
