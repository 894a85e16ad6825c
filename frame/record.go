// Package frame defines the self-describing per-frame record written to the
// store: magic number, fixed header, and a compressed payload protected by a
// CRC-32 checksum.
package frame

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
)

// Record is the serialized form of one frame.
type Record struct {
	Header  Header
	Payload []byte
}

// NewRecord builds a record for the given payload, filling in the payload
// size and checksum. The payload is referenced, not copied.
func NewRecord(frameNumber uint32, geo format.Geometry, mode format.Mode, payload []byte) *Record {
	return &Record{
		Header: Header{
			FrameNumber:    frameNumber,
			Width:          geo.Width,
			Height:         geo.Height,
			Channels:       geo.Channels,
			CompressedSize: uint32(len(payload)),
			Checksum:       Checksum(payload),
			Mode:           mode,
		},
		Payload: payload,
	}
}

// Checksum computes the CRC-32/IEEE of a payload, the value stored in the
// record header.
func Checksum(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}

// Serialize writes magic, header, and payload in order. No checksum is
// computed here; the header already carries it. The result length is always
// RecordOverhead + len(Payload).
func (r *Record) Serialize() []byte {
	buf := make([]byte, 0, RecordOverhead+len(r.Payload))
	buf = binary.LittleEndian.AppendUint32(buf, MagicNumber)
	buf = r.Header.appendTo(buf)
	buf = append(buf, r.Payload...)

	return buf
}

// Deserialize parses and validates a serialized record against the stream
// geometry.
//
// Validation order: buffer length, magic number, geometry, mode, payload
// bound, payload checksum. Structural problems return errors under
// errs.ErrMalformedRecord; a checksum mismatch returns errs.ErrIntegrityCheck.
// The payload is copied out of the input buffer, so the caller may recycle
// the input immediately.
func Deserialize(data []byte, geo format.Geometry) (*Record, error) {
	if len(data) < RecordOverhead {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d byte record overhead",
			errs.ErrMalformedRecord, len(data), RecordOverhead)
	}

	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != MagicNumber {
		return nil, fmt.Errorf("%w: 0x%08X", errs.ErrInvalidMagicNumber, magic)
	}

	var rec Record
	if err := rec.Header.parse(data[4:]); err != nil {
		return nil, err
	}

	if rec.Header.Geometry() != geo {
		return nil, fmt.Errorf("%w: record is %s, stream is %s",
			errs.ErrInvalidGeometry, rec.Header.Geometry(), geo)
	}
	if !rec.Header.Mode.Valid() {
		return nil, fmt.Errorf("%w: 0x%02X", errs.ErrInvalidMode, byte(rec.Header.Mode))
	}

	payloadEnd := RecordOverhead + int(rec.Header.CompressedSize)
	if payloadEnd > len(data) {
		return nil, fmt.Errorf("%w: header claims %d payload bytes, %d available",
			errs.ErrMalformedRecord, rec.Header.CompressedSize, len(data)-RecordOverhead)
	}

	rec.Payload = make([]byte, rec.Header.CompressedSize)
	copy(rec.Payload, data[RecordOverhead:payloadEnd])

	if sum := Checksum(rec.Payload); sum != rec.Header.Checksum {
		return nil, fmt.Errorf("%w: stored 0x%08X, computed 0x%08X",
			errs.ErrIntegrityCheck, rec.Header.Checksum, sum)
	}

	return &rec, nil
}
