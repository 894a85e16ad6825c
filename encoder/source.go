package encoder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/frame"
)

// Source yields raw frames in stream order. Next returns io.EOF after the
// last frame. The caller owns each returned frame.
type Source interface {
	Next() (*frame.RawFrame, error)
}

// frameFilePattern matches raw frame dumps like frame_000042.rgb.
var frameFilePattern = regexp.MustCompile(`^frame_([0-9]{6})\.rgb$`)

// DirSource reads raw RGB files named frame_NNNNNN.rgb from a directory in
// frame-number order. Each file must hold exactly W*H*C bytes.
type DirSource struct {
	geo   format.Geometry
	paths []string
	next  int
}

// NewDirSource scans dir for frame files and orders them by the number in
// the filename.
func NewDirSource(dir string, geo format.Geometry) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory %s: %w", dir, err)
	}

	type numbered struct {
		n    int
		path string
	}
	var files []numbered
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := frameFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		files = append(files, numbered{n: n, path: filepath.Join(dir, e.Name())})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no frame_NNNNNN.rgb files in %s", dir)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}

	return &DirSource{geo: geo, paths: paths}, nil
}

// Next reads the next frame file.
func (s *DirSource) Next() (*frame.RawFrame, error) {
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frame %s: %w", path, err)
	}
	if len(data) != s.geo.PixelCount() {
		return nil, fmt.Errorf("%w: %s holds %d bytes, want %d",
			errs.ErrInvalidGeometry, path, len(data), s.geo.PixelCount())
	}

	return frame.NewRawFrameBuffer(s.geo, data)
}

// Len returns the number of frames the source will yield.
func (s *DirSource) Len() int {
	return len(s.paths)
}

// PatternSource generates an animated gradient test sequence, used by the
// "test" input of the encoder CLI and by benchmarks. Between consecutive
// frames channels 0 and 2 shift by one intensity step and channel 1 shifts
// by one step every second frame, so delta payloads stay small.
type PatternSource struct {
	geo   format.Geometry
	count int
	next  int
}

// NewPatternSource yields count generated frames of the given geometry.
func NewPatternSource(geo format.Geometry, count int) *PatternSource {
	return &PatternSource{geo: geo, count: count}
}

// Next generates the next pattern frame.
func (s *PatternSource) Next() (*frame.RawFrame, error) {
	if s.next >= s.count {
		return nil, io.EOF
	}
	n := uint32(s.next)
	s.next++

	f := frame.NewRawFrame(s.geo)
	idx := 0
	for y := uint32(0); y < s.geo.Height; y++ {
		for x := uint32(0); x < s.geo.Width; x++ {
			f.Pixels[idx] = byte((x + n) % 256)
			if s.geo.Channels > 1 {
				f.Pixels[idx+1] = byte((y + n/2) % 256)
			}
			if s.geo.Channels > 2 {
				f.Pixels[idx+2] = byte((x + y + n) % 256)
			}
			idx += int(s.geo.Channels)
		}
	}

	return f, nil
}

// Len returns the number of frames the source will yield.
func (s *PatternSource) Len() int {
	return s.count
}

// ReaderSource slices a byte stream into fixed-size frames, used to ingest
// rawvideo output piped from an external decoder. The stream must end on a
// frame boundary.
type ReaderSource struct {
	geo format.Geometry
	r   io.Reader
}

// NewReaderSource wraps an io.Reader producing back-to-back W*H*C frames.
func NewReaderSource(r io.Reader, geo format.Geometry) *ReaderSource {
	return &ReaderSource{geo: geo, r: r}
}

// Next reads one full frame from the stream.
func (s *ReaderSource) Next() (*frame.RawFrame, error) {
	buf := make([]byte, s.geo.PixelCount())

	_, err := io.ReadFull(s.r, buf)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("%w: stream ended mid-frame", errs.ErrInvalidGeometry)
	}
	if err != nil {
		return nil, fmt.Errorf("read frame stream: %w", err)
	}

	return frame.NewRawFrameBuffer(s.geo, buf)
}
