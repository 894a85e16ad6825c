package frame

import (
	"encoding/binary"
	"testing"

	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
	"github.com/stretchr/testify/require"
)

var testGeo = format.Geometry{Width: 8, Height: 4, Channels: 3}

func testRecord(t *testing.T) *Record {
	t.Helper()

	payload := []byte{0x10, 0x20, 0x30, 0x40, 0x55}
	rec := NewRecord(7, testGeo, format.ModeDelta, payload)
	require.Equal(t, uint32(len(payload)), rec.Header.CompressedSize)
	require.Equal(t, Checksum(payload), rec.Header.Checksum)

	return rec
}

func TestRecordRoundTrip(t *testing.T) {
	rec := testRecord(t)

	data := rec.Serialize()
	require.Len(t, data, RecordOverhead+len(rec.Payload))

	parsed, err := Deserialize(data, testGeo)
	require.NoError(t, err)
	require.Equal(t, rec.Header, parsed.Header)
	require.Equal(t, rec.Payload, parsed.Payload)
}

func TestSerializeLayout(t *testing.T) {
	rec := testRecord(t)
	data := rec.Serialize()

	require.Equal(t, MagicNumber, binary.LittleEndian.Uint32(data[0:4]))
	require.Equal(t, uint32(7), binary.LittleEndian.Uint32(data[4:8]))
	require.Equal(t, uint32(8), binary.LittleEndian.Uint32(data[8:12]))
	require.Equal(t, uint32(4), binary.LittleEndian.Uint32(data[12:16]))
	require.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[16:20]))
	require.Equal(t, uint32(5), binary.LittleEndian.Uint32(data[20:24]))
	require.Equal(t, rec.Header.Checksum, binary.LittleEndian.Uint32(data[24:28]))
	require.Equal(t, byte(format.ModeDelta), data[28])
	require.Equal(t, []byte{0, 0, 0}, data[29:32])
	require.Equal(t, rec.Payload, data[32:])
}

func TestDeserializeTruncated(t *testing.T) {
	data := testRecord(t).Serialize()

	t.Run("below overhead", func(t *testing.T) {
		_, err := Deserialize(data[:RecordOverhead-1], testGeo)
		require.ErrorIs(t, err, errs.ErrMalformedRecord)
	})

	t.Run("payload short by one byte", func(t *testing.T) {
		_, err := Deserialize(data[:len(data)-1], testGeo)
		require.ErrorIs(t, err, errs.ErrMalformedRecord)
	})
}

func TestDeserializeBadMagic(t *testing.T) {
	data := testRecord(t).Serialize()
	data[0], data[1], data[2], data[3] = 0, 0, 0, 0

	_, err := Deserialize(data, testGeo)
	require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestDeserializeGeometryMismatch(t *testing.T) {
	data := testRecord(t).Serialize()

	_, err := Deserialize(data, format.Geometry{Width: 16, Height: 4, Channels: 3})
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)
}

func TestDeserializeReservedMode(t *testing.T) {
	data := testRecord(t).Serialize()
	data[28] = 0x07

	_, err := Deserialize(data, testGeo)
	require.ErrorIs(t, err, errs.ErrInvalidMode)
}

func TestDeserializePayloadBitFlip(t *testing.T) {
	rec := testRecord(t)
	data := rec.Serialize()

	// Flip every bit of the payload one at a time; all must be caught.
	for i := RecordOverhead; i < len(data); i++ {
		for bit := 0; bit < 8; bit++ {
			data[i] ^= 1 << bit

			_, err := Deserialize(data, testGeo)
			require.ErrorIs(t, err, errs.ErrIntegrityCheck, "byte %d bit %d", i, bit)

			data[i] ^= 1 << bit
		}
	}
}

func TestDeserializeHeaderCorruption(t *testing.T) {
	data := testRecord(t).Serialize()

	// A corrupted geometry, size, checksum, or mode byte fails under the
	// malformed umbrella. The frame number field (offset 4) is not validated
	// by Deserialize, so corrupting it goes undetected.
	for _, off := range []int{8, 12, 16, 20, 24, 28} {
		corrupt := make([]byte, len(data))
		copy(corrupt, data)
		corrupt[off] ^= 0xFF

		_, err := Deserialize(corrupt, testGeo)
		require.ErrorIs(t, err, errs.ErrMalformedRecord, "offset %d", off)
	}
}

func TestDeserializeIgnoresReservedBytes(t *testing.T) {
	data := testRecord(t).Serialize()
	data[29], data[30], data[31] = 0xAA, 0xBB, 0xCC

	_, err := Deserialize(data, testGeo)
	require.NoError(t, err)
}

func TestDeserializeCopiesPayload(t *testing.T) {
	rec := testRecord(t)
	data := rec.Serialize()

	parsed, err := Deserialize(data, testGeo)
	require.NoError(t, err)

	// Mutating the input buffer must not reach into the parsed record.
	data[RecordOverhead] ^= 0xFF
	require.Equal(t, rec.Payload, parsed.Payload)
}

func TestRawFrameValidate(t *testing.T) {
	f := NewRawFrame(testGeo)
	require.NoError(t, f.Validate(testGeo))
	require.Len(t, f.Pixels, testGeo.PixelCount())

	f.Pixels = f.Pixels[:len(f.Pixels)-1]
	require.ErrorIs(t, f.Validate(testGeo), errs.ErrInvalidGeometry)

	_, err := NewRawFrameBuffer(testGeo, make([]byte, 3))
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)
}
