package encoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/frame"
	"github.com/gitvid/gitvid/store"
)

var testGeo = format.Geometry{Width: 16, Height: 9, Channels: 3}

func newTestEncoder(t *testing.T) (*Encoder, *store.Store) {
	t.Helper()

	st, err := store.NewMemory()
	require.NoError(t, err)

	enc, err := New(st, Config{Geometry: testGeo, Compression: format.CompressionZstd})
	require.NoError(t, err)

	return enc, st
}

func TestEncodeSequenceCommitChain(t *testing.T) {
	enc, st := newTestEncoder(t)

	const frames = 7
	stats, err := enc.EncodeSequence(context.Background(), NewPatternSource(testGeo, frames))
	require.NoError(t, err)
	require.Equal(t, frames, stats.Frames)
	require.Len(t, stats.HeadCommit, 40)
	require.Equal(t, int64(frames*testGeo.PixelCount()), stats.OriginalBytes)

	oids, err := st.ListCommitsOldestFirst()
	require.NoError(t, err)
	require.Len(t, oids, frames)
	require.Equal(t, stats.HeadCommit, oids[frames-1])
}

func TestEncodeSequenceModes(t *testing.T) {
	enc, st := newTestEncoder(t)

	_, err := enc.EncodeSequence(context.Background(), NewPatternSource(testGeo, 3))
	require.NoError(t, err)

	oids, err := st.ListCommitsOldestFirst()
	require.NoError(t, err)

	for i, oid := range oids {
		data, err := st.ReadFrameBlob(oid)
		require.NoError(t, err)

		rec, err := frame.Deserialize(data, testGeo)
		require.NoError(t, err)
		require.Equal(t, uint32(i), rec.Header.FrameNumber)

		want := format.ModeDelta
		if i == 0 {
			want = format.ModeRaw
		}
		require.Equal(t, want, rec.Header.Mode, "frame %d", i)
	}
}

func TestEncodeSequenceEmptySource(t *testing.T) {
	enc, st := newTestEncoder(t)

	stats, err := enc.EncodeSequence(context.Background(), NewPatternSource(testGeo, 0))
	require.NoError(t, err)
	require.Zero(t, stats.Frames)
	require.Empty(t, stats.HeadCommit)

	oids, err := st.ListCommitsOldestFirst()
	require.NoError(t, err)
	require.Empty(t, oids)
}

func TestEncodeSequenceGeometryMismatch(t *testing.T) {
	enc, _ := newTestEncoder(t)

	wrong := NewPatternSource(format.Geometry{Width: 8, Height: 8, Channels: 3}, 1)
	_, err := enc.EncodeSequence(context.Background(), wrong)
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)
}

func TestEncodeSequenceCancellationKeepsPrefix(t *testing.T) {
	enc, st := newTestEncoder(t)
	ctx, cancel := context.WithCancel(context.Background())

	// Encode a first batch, then cancel before the second.
	_, err := enc.EncodeSequence(ctx, NewPatternSource(testGeo, 4))
	require.NoError(t, err)

	cancel()
	_, err = enc.EncodeSequence(ctx, NewPatternSource(testGeo, 4))
	require.ErrorIs(t, err, context.Canceled)

	// The committed prefix survives the abort.
	oids, err := st.ListCommitsOldestFirst()
	require.NoError(t, err)
	require.Len(t, oids, 4)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	geo := format.Geometry{Width: 4, Height: 2, Channels: 3}

	// Written out of order on purpose; the source sorts by frame number.
	for _, n := range []int{2, 0, 1} {
		data := make([]byte, geo.PixelCount())
		for i := range data {
			data[i] = byte(n)
		}
		name := fmt.Sprintf("frame_%06d.rgb", n)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	// Distractors that must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame_12.rgb"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	src, err := NewDirSource(dir, geo)
	require.NoError(t, err)
	require.Equal(t, 3, src.Len())

	for n := 0; n < 3; n++ {
		f, err := src.Next()
		require.NoError(t, err)
		require.Equal(t, byte(n), f.Pixels[0])
	}

	_, err = src.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestDirSourceWrongSize(t *testing.T) {
	dir := t.TempDir()
	geo := format.Geometry{Width: 4, Height: 2, Channels: 3}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame_000000.rgb"), []byte{1, 2, 3}, 0o644))

	src, err := NewDirSource(dir, geo)
	require.NoError(t, err)

	_, err = src.Next()
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)
}

func TestDirSourceEmptyDir(t *testing.T) {
	_, err := NewDirSource(t.TempDir(), testGeo)
	require.Error(t, err)
}

func TestReaderSource(t *testing.T) {
	geo := format.Geometry{Width: 2, Height: 2, Channels: 1}

	stream := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	src := NewReaderSource(bytes.NewReader(stream), geo)

	f1, err := src.Next()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, f1.Pixels)

	f2, err := src.Next()
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6, 7, 8}, f2.Pixels)

	_, err = src.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderSourceMidFrameEOF(t *testing.T) {
	geo := format.Geometry{Width: 2, Height: 2, Channels: 1}
	src := NewReaderSource(bytes.NewReader([]byte{1, 2, 3}), geo)

	_, err := src.Next()
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)
}

func TestPatternSourceDeterministic(t *testing.T) {
	a := NewPatternSource(testGeo, 2)
	b := NewPatternSource(testGeo, 2)

	for i := 0; i < 2; i++ {
		fa, err := a.Next()
		require.NoError(t, err)
		fb, err := b.Next()
		require.NoError(t, err)
		require.Equal(t, fa.Pixels, fb.Pixels)
	}
}
