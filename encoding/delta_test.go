package encoding

import (
	"testing"

	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/frame"
	"github.com/stretchr/testify/require"
)

var testGeo = format.Geometry{Width: 32, Height: 20, Channels: 3}

func newTestCodec(t *testing.T) *FrameCodec {
	t.Helper()

	c, err := NewFrameCodec(testGeo, format.CompressionZstd)
	require.NoError(t, err)

	return c
}

func filledFrame(geo format.Geometry, value byte) *frame.RawFrame {
	f := frame.NewRawFrame(geo)
	for i := range f.Pixels {
		f.Pixels[i] = value
	}

	return f
}

// rleStream entropy-decodes a delta payload back to its RLE stream.
func rleStream(t *testing.T, c *FrameCodec, rec *frame.Record) []byte {
	t.Helper()

	rle, err := c.codec.Decompress(rec.Payload)
	require.NoError(t, err)

	return rle
}

// deltaRecord wraps a hand-built RLE stream in a valid delta record.
func deltaRecord(t *testing.T, c *FrameCodec, rle []byte) *frame.Record {
	t.Helper()

	payload, err := c.codec.Compress(rle)
	require.NoError(t, err)

	return frame.NewRecord(1, testGeo, format.ModeDelta, payload)
}

func TestDeltaRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	prev := filledFrame(testGeo, 128)

	cur := filledFrame(testGeo, 128)
	// A spread of in-range byte deltas, including both signs at the extremes
	// of the signed range.
	cur.Pixels[0] = 1               // -127
	cur.Pixels[100] = 255           // +127
	cur.Pixels[500] = 130           // +2
	cur.Pixels[len(cur.Pixels)-1] = 60 // -68

	rec, err := c.EncodeDelta(cur, prev)
	require.NoError(t, err)
	require.Equal(t, format.ModeDelta, rec.Header.Mode)
	require.Equal(t, uint32(len(rec.Payload)), rec.Header.CompressedSize)
	require.Equal(t, frame.Checksum(rec.Payload), rec.Header.Checksum)

	out, err := c.DecodeDelta(rec, prev)
	require.NoError(t, err)
	require.Equal(t, cur.Pixels, out.Pixels)
}

func TestDeltaIdenticalFrames(t *testing.T) {
	c := newTestCodec(t)
	prev := filledFrame(testGeo, 128)
	cur := filledFrame(testGeo, 128)

	rec, err := c.EncodeDelta(cur, prev)
	require.NoError(t, err)

	// The stream must be ceil(P/255) identical-run segments and nothing else.
	rle := rleStream(t, c, rec)
	pixelCount := testGeo.PixelCount()
	wantSegments := (pixelCount + 254) / 255
	require.Len(t, rle, 2*wantSegments)

	covered := 0
	for i := 0; i < len(rle); i += 2 {
		require.Equal(t, byte(tagIdentical), rle[i])
		require.NotZero(t, rle[i+1])
		covered += int(rle[i+1])
	}
	require.Equal(t, pixelCount, covered)

	out, err := c.DecodeDelta(rec, prev)
	require.NoError(t, err)
	require.Equal(t, cur.Pixels, out.Pixels)
}

func TestDeltaSinglePixelDiff(t *testing.T) {
	c := newTestCodec(t)
	prev := filledFrame(testGeo, 10)
	cur := filledFrame(testGeo, 10)
	cur.Pixels[100] = 120

	rec, err := c.EncodeDelta(cur, prev)
	require.NoError(t, err)

	rle := rleStream(t, c, rec)
	diffSegments := 0
	for i := 0; i < len(rle); {
		tag, length := rle[i], int(rle[i+1])
		i += 2
		if tag == tagDiffering {
			diffSegments++
			require.Equal(t, 1, length)
			i += length
		}
	}
	require.Equal(t, 1, diffSegments)

	out, err := c.DecodeDelta(rec, prev)
	require.NoError(t, err)
	require.Equal(t, cur.Pixels, out.Pixels)
}

func TestDeltaNeverEmitsAdjacentIdenticalRuns(t *testing.T) {
	c := newTestCodec(t)
	prev := filledFrame(testGeo, 0)
	cur := filledFrame(testGeo, 0)
	// Sparse diffs so the stream alternates between long identical runs
	// (fused up to 255) and single differing bytes.
	for i := 0; i < len(cur.Pixels); i += 700 {
		cur.Pixels[i] = 5
	}

	rec, err := c.EncodeDelta(cur, prev)
	require.NoError(t, err)

	rle := rleStream(t, c, rec)
	prevTag := byte(0xFF)
	prevLen := 0
	for i := 0; i < len(rle); {
		tag, length := rle[i], int(rle[i+1])
		i += 2
		if tag == tagDiffering {
			i += length
		}
		if prevTag == tagIdentical && tag == tagIdentical {
			// Two identical runs in a row are only legal when the first was
			// cut by the 255 cap.
			require.Equal(t, maxRunLength, prevLen)
		}
		prevTag, prevLen = tag, length
	}
}

func TestDeltaDecodeSeedsInternally(t *testing.T) {
	c := newTestCodec(t)
	prev := filledFrame(testGeo, 77)
	cur := filledFrame(testGeo, 77)
	cur.Pixels[42] = 99

	rec, err := c.EncodeDelta(cur, prev)
	require.NoError(t, err)

	// Decode twice; pooled output buffers carry arbitrary prior contents, so
	// equal results prove the decoder seeds from the reference each time.
	first, err := c.DecodeDelta(rec, prev)
	require.NoError(t, err)
	firstCopy := append([]byte(nil), first.Pixels...)
	c.Release(first)

	second, err := c.DecodeDelta(rec, prev)
	require.NoError(t, err)
	require.Equal(t, firstCopy, second.Pixels)
	require.Equal(t, cur.Pixels, second.Pixels)
}

func TestDeltaDecodeClampsUnderflow(t *testing.T) {
	c := newTestCodec(t)
	prev := filledFrame(testGeo, 10)

	// Hand-built stream: subtract 50 from the first byte (reference value
	// 10), leave the rest identical. Must saturate to 0, not wrap to 216.
	pixelCount := testGeo.PixelCount()
	delta := int8(-50)
	rle := []byte{tagDiffering, 1, byte(delta)}
	rle = appendIdenticalRuns(rle, pixelCount-1)

	out, err := c.DecodeDelta(deltaRecord(t, c, rle), prev)
	require.NoError(t, err)
	require.Equal(t, byte(0), out.Pixels[0])
	require.Equal(t, byte(10), out.Pixels[1])
}

func TestDeltaDecodeClampsOverflow(t *testing.T) {
	c := newTestCodec(t)
	prev := filledFrame(testGeo, 200)

	rle := []byte{tagDiffering, 1, 100}
	rle = appendIdenticalRuns(rle, testGeo.PixelCount()-1)

	out, err := c.DecodeDelta(deltaRecord(t, c, rle), prev)
	require.NoError(t, err)
	require.Equal(t, byte(255), out.Pixels[0])
}

func TestDeltaDecodeMalformedStreams(t *testing.T) {
	c := newTestCodec(t)
	prev := filledFrame(testGeo, 0)
	pixelCount := testGeo.PixelCount()

	cases := map[string][]byte{
		"unknown tag":         append([]byte{0x02, 1, 0}, appendIdenticalRuns(nil, pixelCount-1)...),
		"zero length segment": append([]byte{tagIdentical, 0}, appendIdenticalRuns(nil, pixelCount)...),
		"cursor overrun":      appendIdenticalRuns(nil, pixelCount+255),
		"short coverage":      appendIdenticalRuns(nil, pixelCount-1),
		"truncated header":    append(appendIdenticalRuns(nil, pixelCount-1), tagIdentical),
		"truncated deltas":    append(appendIdenticalRuns(nil, pixelCount-3), tagDiffering, 3, 1),
	}

	for name, rle := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.DecodeDelta(deltaRecord(t, c, rle), prev)
			require.ErrorIs(t, err, errs.ErrMalformedRecord)
		})
	}
}

func TestDeltaGeometryMismatch(t *testing.T) {
	c := newTestCodec(t)
	other := format.Geometry{Width: 4, Height: 4, Channels: 1}

	_, err := c.EncodeDelta(frame.NewRawFrame(other), frame.NewRawFrame(testGeo))
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)

	_, err = c.EncodeDelta(frame.NewRawFrame(testGeo), frame.NewRawFrame(other))
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)
}

// appendIdenticalRuns appends identical-run segments covering n pixel bytes.
func appendIdenticalRuns(rle []byte, n int) []byte {
	for n > 0 {
		run := n
		if run > maxRunLength {
			run = maxRunLength
		}
		rle = append(rle, tagIdentical, byte(run))
		n -= run
	}

	return rle
}
