package gitvid

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitvid/gitvid/player"
)

// The full-geometry end-to-end path: test pattern frames through an on-disk
// repository and back out through a counting sink. Kept short because each
// reference-geometry frame is ~6 MiB.
func TestEncodeTestPatternThenPlay(t *testing.T) {
	if testing.Short() {
		t.Skip("full-geometry round trip")
	}

	repoPath := filepath.Join(t.TempDir(), "video.git")
	ctx := context.Background()

	const frames = 3
	encStats, err := EncodeTestPattern(ctx, repoPath, frames)
	require.NoError(t, err)
	require.Equal(t, frames, encStats.Frames)

	d := &player.NullDisplay{}
	playStats, err := Play(ctx, repoPath, d)
	require.NoError(t, err)
	require.Equal(t, frames, playStats.FramesDisplayed)
	require.Equal(t, uint64(frames), d.Presented())
}

func TestEncodeDirectoryMissingDir(t *testing.T) {
	_, err := EncodeDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "repo"))
	require.Error(t, err)
}
