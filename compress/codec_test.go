package compress

import (
	"bytes"
	"testing"

	"github.com/gitvid/gitvid/format"
	"github.com/stretchr/testify/require"
)

// payloadSamples builds inputs shaped like real frame payloads: a flat pixel
// gradient (raw mode) and a sparse RLE delta stream (delta mode).
func payloadSamples() map[string][]byte {
	gradient := make([]byte, 64*36*3)
	for i := range gradient {
		gradient[i] = byte(i % 251)
	}

	rle := make([]byte, 0, 1024)
	for i := 0; i < 100; i++ {
		rle = append(rle, 0x00, 255)
	}
	rle = append(rle, 0x01, 3, 0x10, 0xF0, 0x01)

	return map[string][]byte{
		"pixel gradient": gradient,
		"rle stream":     rle,
		"single byte":    {0x42},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	types := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	for _, ct := range types {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			for name, input := range payloadSamples() {
				t.Run(name, func(t *testing.T) {
					compressed, err := codec.Compress(input)
					require.NoError(t, err)

					restored, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.True(t, bytes.Equal(input, restored))
				})
			}
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(nil)
		require.NoError(t, err)

		restored, err := codec.Decompress(compressed)
		require.NoError(t, err)
		require.Empty(t, restored)
	}
}

func TestZstdRejectsCorruptInput(t *testing.T) {
	codec := NewZstdCompressor()

	_, err := codec.Decompress([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01})
	require.Error(t, err)
}

func TestCreateCodec(t *testing.T) {
	codec, err := CreateCodec(format.CompressionZstd, "encoder")
	require.NoError(t, err)
	require.NotNil(t, codec)

	_, err = CreateCodec(format.CompressionType(0xEE), "encoder")
	require.Error(t, err)
	require.Contains(t, err.Error(), "encoder")
}

func TestGetCodecUnknown(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0xEE))
	require.Error(t, err)
}
