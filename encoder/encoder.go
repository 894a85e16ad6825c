// Package encoder drives the encode side of the system: for each incoming
// raw frame it picks the compression mode, builds the serialized record, and
// commits it to the store chained to the previous frame's commit.
package encoder

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gitvid/gitvid/encoding"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/frame"
	"github.com/gitvid/gitvid/internal/logging"
	"github.com/gitvid/gitvid/internal/metrics"
	"github.com/gitvid/gitvid/store"
)

// Config carries the encode options.
type Config struct {
	// Geometry of the stream; defaults to the reference 1920x1080 RGB.
	Geometry format.Geometry
	// Compression is the stream-wide entropy codec.
	Compression format.CompressionType
	// ProgressEvery logs progress after that many frames; defaults to 60.
	ProgressEvery int
	// Logger defaults to the process logger.
	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Geometry == (format.Geometry{}) {
		c.Geometry = format.DefaultGeometry()
	}
	if c.Compression == 0 {
		c.Compression = format.CompressionZstd
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = 60
	}
	if c.Logger == nil {
		c.Logger = logging.L()
	}
}

// Stats summarizes one encode run.
type Stats struct {
	Frames          int
	OriginalBytes   int64
	CompressedBytes int64
	// HeadCommit is the oid of the last committed frame, empty when no
	// frames were encoded.
	HeadCommit string
}

// Encoder writes a frame sequence into a store as a commit chain.
type Encoder struct {
	st    *store.Store
	codec *encoding.FrameCodec
	cfg   Config
}

// New creates an encoder over an initialized store.
func New(st *store.Store, cfg Config) (*Encoder, error) {
	cfg.applyDefaults()

	codec, err := encoding.NewFrameCodec(cfg.Geometry, cfg.Compression)
	if err != nil {
		return nil, err
	}

	return &Encoder{st: st, codec: codec, cfg: cfg}, nil
}

// EncodeSequence drains the source and commits one frame per commit, frame 0
// in raw mode and every later frame as a delta against its predecessor.
//
// Any failure aborts the run. Context cancellation is returned as-is; every
// other error is wrapped with the frame number. Frames already committed
// stay in the store: the DAG is append-only and the head reference moves per
// frame, so an aborted encode leaves a valid, playable prefix.
func (e *Encoder) EncodeSequence(ctx context.Context, src Source) (Stats, error) {
	log := e.cfg.Logger

	var (
		stats  Stats
		prev   *frame.RawFrame
		parent string
	)

	for n := uint32(0); ; n++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		cur, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("frame %d: %w", n, err)
		}
		if err := cur.Validate(e.cfg.Geometry); err != nil {
			return stats, fmt.Errorf("frame %d: %w", n, err)
		}

		commitOID, recordSize, mode, err := e.encodeFrame(cur, prev, n, parent)
		if err != nil {
			return stats, fmt.Errorf("frame %d: %w", n, err)
		}

		stats.Frames++
		stats.OriginalBytes += int64(len(cur.Pixels))
		stats.CompressedBytes += int64(recordSize)
		stats.HeadCommit = commitOID

		metrics.FramesEncoded.Inc()
		metrics.BytesCommitted.Add(float64(recordSize))

		prev = cur
		parent = commitOID

		if stats.Frames%e.cfg.ProgressEvery == 0 {
			log.Info("encode_progress",
				"frames", stats.Frames,
				"mode", mode.String(),
				"compressed_bytes", stats.CompressedBytes,
				"ratio", float64(stats.OriginalBytes)/float64(stats.CompressedBytes),
			)
		}
	}

	log.Info("encode_done",
		"frames", stats.Frames,
		"original_bytes", stats.OriginalBytes,
		"compressed_bytes", stats.CompressedBytes,
		"head", stats.HeadCommit,
	)

	return stats, nil
}

// encodeFrame compresses, serializes, and commits a single frame, returning
// the new commit oid.
func (e *Encoder) encodeFrame(cur, prev *frame.RawFrame, n uint32, parent string) (string, int, format.Mode, error) {
	rec, err := e.codec.Encode(cur, prev, n)
	if err != nil {
		return "", 0, 0, err
	}
	mode := rec.Header.Mode

	data := rec.Serialize()

	blobOID, err := e.st.PutBlob(data)
	if err != nil {
		return "", 0, 0, err
	}

	treeOID, err := e.st.PutFrameTree(format.FrameFileName, blobOID)
	if err != nil {
		return "", 0, 0, err
	}

	message := fmt.Sprintf("Frame %06d (%s, %d bytes)", n, mode, rec.Header.CompressedSize)
	commitOID, err := e.st.PutCommit(treeOID, parent, message)
	if err != nil {
		return "", 0, 0, err
	}

	if err := e.st.SetHead(commitOID); err != nil {
		return "", 0, 0, err
	}

	return commitOID, len(data), mode, nil
}
