// Package gitvid stores a fixed-resolution raw video stream inside a git
// object database and plays it back in real time.
//
// Each frame is one commit: the commit's tree tracks a single frame.bin blob
// holding a compressed, self-describing frame record, and parent links define
// playback order. Frame 0 is entropy-coded whole (raw mode); every later
// frame is a run-length-encoded delta against its predecessor (delta mode),
// entropy-coded with a stream-wide codec. Every record carries a CRC-32 over
// its payload, verified on every read.
//
// # Basic Usage
//
// Encoding a directory of raw RGB frames:
//
//	st, _ := store.Init("video.git")
//	enc, _ := encoder.New(st, encoder.Config{})
//	src, _ := encoder.NewDirSource("frames/", format.DefaultGeometry())
//	stats, _ := enc.EncodeSequence(ctx, src)
//
// Playing it back:
//
//	st, _ := store.Open("video.git")
//	p, _ := player.New(st, player.Config{Pacing: true, Prefetch: true})
//	stats, _ := p.Play(ctx)
//
// This package provides top-level wrappers around those steps for the common
// cases. For fine-grained control (custom display sinks, cache sizing,
// explicit commit lists), use the encoder, player, and store packages
// directly.
package gitvid

import (
	"context"

	"github.com/gitvid/gitvid/encoder"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/player"
	"github.com/gitvid/gitvid/store"
)

// EncodeDirectory commits every frame_NNNNNN.rgb file under dir to a fresh
// or existing repository at repoPath, in frame-number order.
func EncodeDirectory(ctx context.Context, dir, repoPath string) (encoder.Stats, error) {
	st, err := store.Init(repoPath)
	if err != nil {
		return encoder.Stats{}, err
	}

	src, err := encoder.NewDirSource(dir, format.DefaultGeometry())
	if err != nil {
		return encoder.Stats{}, err
	}

	enc, err := encoder.New(st, encoder.Config{})
	if err != nil {
		return encoder.Stats{}, err
	}

	return enc.EncodeSequence(ctx, src)
}

// EncodeTestPattern commits count generated test frames to repoPath.
func EncodeTestPattern(ctx context.Context, repoPath string, count int) (encoder.Stats, error) {
	st, err := store.Init(repoPath)
	if err != nil {
		return encoder.Stats{}, err
	}

	enc, err := encoder.New(st, encoder.Config{})
	if err != nil {
		return encoder.Stats{}, err
	}

	return enc.EncodeSequence(ctx, encoder.NewPatternSource(format.DefaultGeometry(), count))
}

// Play reconstructs the stream at repoPath through the given display sink
// with prefetch and pacing enabled. A nil display logs throughput instead of
// presenting.
func Play(ctx context.Context, repoPath string, display player.Display) (player.Stats, error) {
	st, err := store.Open(repoPath)
	if err != nil {
		return player.Stats{}, err
	}

	p, err := player.New(st, player.Config{
		Display:  display,
		Pacing:   true,
		Prefetch: true,
	})
	if err != nil {
		return player.Stats{}, err
	}

	return p.Play(ctx)
}
