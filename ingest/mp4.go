// Package ingest converts an MP4 file into a frame repository by piping
// ffmpeg's rawvideo output straight into the encoder. ffmpeg is an external
// collaborator: it handles demuxing, decoding, scaling, and padding; this
// package only owns the pipe and the encode driver.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/gitvid/gitvid/encoder"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/internal/logging"
	"github.com/gitvid/gitvid/store"
)

// Config carries the ingest options.
type Config struct {
	Geometry    format.Geometry
	Compression format.CompressionType
	// FFmpegPath overrides the binary looked up on PATH.
	FFmpegPath string
	Logger     *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Geometry == (format.Geometry{}) {
		c.Geometry = format.DefaultGeometry()
	}
	if c.Compression == 0 {
		c.Compression = format.CompressionZstd
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.Logger == nil {
		c.Logger = logging.L()
	}
}

// scaleFilter letterboxes arbitrary input into the stream geometry.
func scaleFilter(geo format.Geometry) string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		geo.Width, geo.Height, geo.Width, geo.Height,
	)
}

// Run decodes mp4Path through ffmpeg and commits every frame to a fresh or
// existing repository at repoPath. Returns the encode stats on success.
func Run(ctx context.Context, mp4Path, repoPath string, cfg Config) (encoder.Stats, error) {
	cfg.applyDefaults()
	log := cfg.Logger

	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return encoder.Stats{}, fmt.Errorf("ffmpeg not available: %w", err)
	}

	st, err := store.Init(repoPath)
	if err != nil {
		return encoder.Stats{}, err
	}

	enc, err := encoder.New(st, encoder.Config{
		Geometry:    cfg.Geometry,
		Compression: cfg.Compression,
		Logger:      log,
	})
	if err != nil {
		return encoder.Stats{}, err
	}

	cmd := exec.CommandContext(ctx, cfg.FFmpegPath, FFmpegArgs(mp4Path, cfg.Geometry)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return encoder.Stats{}, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return encoder.Stats{}, fmt.Errorf("start ffmpeg: %w", err)
	}

	log.Info("ingest_started", "input", mp4Path, "repo", repoPath, "geometry", cfg.Geometry.String())

	stats, encErr := enc.EncodeSequence(ctx, encoder.NewReaderSource(stdout, cfg.Geometry))
	if encErr != nil {
		// ffmpeg may be blocked writing into the pipe; kill it so Wait
		// cannot hang on the abort path.
		_ = cmd.Process.Kill()
		_ = cmd.Wait()

		return stats, encErr
	}

	waitErr := cmd.Wait()
	if waitErr != nil {
		return stats, fmt.Errorf("ffmpeg failed: %w: %s", waitErr, lastLine(stderr.Bytes()))
	}

	return stats, nil
}

// FFmpegArgs builds the argument list for the rawvideo pipe.
func FFmpegArgs(mp4Path string, geo format.Geometry) []string {
	return []string{
		"-i", mp4Path,
		"-vf", scaleFilter(geo),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-v", "error",
		"-",
	}
}

// lastLine extracts the final non-empty stderr line for the error message.
func lastLine(out []byte) string {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	if len(lines) == 0 {
		return ""
	}

	return string(lines[len(lines)-1])
}
