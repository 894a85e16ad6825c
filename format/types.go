// Package format defines the stream-wide constants and enums shared by the
// frame codec, the encoder driver, and the playback pipeline.
package format

import "fmt"

type (
	// Mode identifies how a frame payload was produced.
	Mode uint8
	// CompressionType identifies the entropy codec applied to a payload.
	CompressionType uint8
)

const (
	ModeRaw   Mode = 0 // ModeRaw is a whole-frame entropy-coded payload.
	ModeDelta Mode = 1 // ModeDelta is an RLE delta against the previous frame, entropy-coded.

	CompressionNone CompressionType = 0x1 // CompressionNone bypasses the entropy stage.
	CompressionZstd CompressionType = 0x2 // CompressionZstd is Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 is S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 is LZ4 block compression.
)

// Reference stream configuration. The geometry is fixed per stream; these are
// the values used by the CLI tools and the reference repository layout.
const (
	FrameWidth    = 1920
	FrameHeight   = 1080
	FrameChannels = 3
	FrameSize     = FrameWidth * FrameHeight * FrameChannels

	TargetFPS   = 60
	FrameTimeNs = 1_000_000_000 / TargetFPS
)

// FrameFileName is the blob name each frame commit tracks in its tree.
const FrameFileName = "frame.bin"

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeDelta:
		return "delta"
	default:
		return "unknown"
	}
}

// Valid reports whether the mode is one of the defined payload modes.
// Values other than raw and delta are reserved.
func (m Mode) Valid() bool {
	return m == ModeRaw || m == ModeDelta
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseCompressionType maps a CLI flag value to a CompressionType.
func ParseCompressionType(name string) (CompressionType, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression codec %q", name)
	}
}

// Geometry describes the fixed per-stream frame dimensions.
type Geometry struct {
	Width    uint32
	Height   uint32
	Channels uint32
}

// DefaultGeometry returns the reference 1920x1080 RGB stream geometry.
func DefaultGeometry() Geometry {
	return Geometry{Width: FrameWidth, Height: FrameHeight, Channels: FrameChannels}
}

// PixelCount returns the number of pixel bytes in one frame: W*H*C.
func (g Geometry) PixelCount() int {
	return int(g.Width) * int(g.Height) * int(g.Channels)
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%dx%d", g.Width, g.Height, g.Channels)
}
