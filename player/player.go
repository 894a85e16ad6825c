// Package player implements the concurrent playback pipeline: a decoder
// goroutine walking the commit chain, a bounded ring of decoded frames, an
// optional background prefetcher, and the display loop with frame pacing.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gitvid/gitvid/encoding"
	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/frame"
	"github.com/gitvid/gitvid/internal/logging"
	"github.com/gitvid/gitvid/internal/metrics"
	"github.com/gitvid/gitvid/store"
)

// Config carries the playback options.
type Config struct {
	// Geometry of the stream; defaults to the reference 1920x1080 RGB.
	Geometry format.Geometry
	// Compression is the stream-wide entropy codec; must match the encoder.
	Compression format.CompressionType
	// Display is the presentation sink; defaults to a throughput logger.
	Display Display
	// CacheSize and RingSize default to 32 and 16 slots.
	CacheSize int
	RingSize  int
	// TargetFPS paces the display loop when Pacing is set; defaults to 60.
	TargetFPS int
	// Pacing sleeps the display loop to the target frame period. Off means
	// maximum throughput: the pipeline runs as fast as the sink accepts.
	Pacing bool
	// Prefetch enables the background blob prefetcher.
	Prefetch bool
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
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.RingSize <= 0 {
		c.RingSize = DefaultRingSize
	}
	if c.TargetFPS <= 0 {
		c.TargetFPS = format.TargetFPS
	}
	if c.Logger == nil {
		c.Logger = logging.L()
	}
	if c.Display == nil {
		c.Display = NewStatsDisplay(c.Logger)
	}
}

// Stats summarizes one playback run.
type Stats struct {
	FramesDisplayed int
	FramesSkipped   int
	Elapsed         time.Duration
}

// Player owns every resource of one playback run: the store handle, blob
// cache, prefetcher, decode ring, and display sink. All state is explicit;
// two players over the same repository do not interact.
type Player struct {
	st    *store.Store
	codec *encoding.FrameCodec
	cache *BlobCache
	cfg   Config

	skipped int
	mu      sync.Mutex
}

// New creates a player over an opened store.
func New(st *store.Store, cfg Config) (*Player, error) {
	cfg.applyDefaults()

	codec, err := encoding.NewFrameCodec(cfg.Geometry, cfg.Compression)
	if err != nil {
		return nil, err
	}

	return &Player{
		st:    st,
		codec: codec,
		cache: NewBlobCache(cfg.CacheSize),
		cfg:   cfg,
	}, nil
}

// Play reconstructs the stream from the first commit and drives every frame
// through the display sink in order. It returns after the last frame is
// presented, the sink asks to close, or ctx is cancelled. Per-frame decode
// failures are logged and skipped; only display and store-enumeration
// failures abort the run.
func (p *Player) Play(ctx context.Context) (Stats, error) {
	oids, err := p.st.ListCommitsOldestFirst()
	if err != nil {
		return Stats{}, err
	}

	return p.PlayCommits(ctx, oids)
}

// PlayCommits plays an explicit, already-ordered commit list. The stdin mode
// of the CLI player resolves its oid list first and enters here.
func (p *Player) PlayCommits(ctx context.Context, oids []string) (Stats, error) {
	start := time.Now()
	log := p.cfg.Logger

	if len(oids) == 0 {
		log.Info("playback_empty", "frames", 0)
		return Stats{Elapsed: time.Since(start)}, nil
	}

	if err := p.cfg.Display.Init(p.cfg.Geometry); err != nil {
		return Stats{}, fmt.Errorf("%w: init: %v", errs.ErrDisplay, err)
	}
	defer p.cfg.Display.Cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if p.cfg.Prefetch {
		pf := StartPrefetcher(ctx, p.st, p.cache, oids, log)
		defer pf.Stop()
	}

	ring := NewRing(p.cfg.RingSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.decodeLoop(ctx, oids, ring)
	}()

	stats, err := p.displayLoop(ctx, ring, cancel)

	// Unblock and join the decoder, then reclaim anything it left queued.
	cancel()
	wg.Wait()
	ring.Drain(p.codec.Release)

	stats.Elapsed = time.Since(start)
	stats.FramesSkipped = p.takeSkipped()

	return stats, err
}

// decodeLoop is the producer: it walks the commit list in order, decodes
// each record against the retained previous frame, and pushes clones into
// the ring. It owns the reference frame for its whole lifetime.
func (p *Player) decodeLoop(ctx context.Context, oids []string, ring *Ring) {
	defer ring.Close()

	log := p.cfg.Logger

	var prev *frame.RawFrame
	defer func() {
		if prev != nil {
			p.codec.Release(prev)
		}
	}()

	for _, oid := range oids {
		if ctx.Err() != nil {
			return
		}

		decoded, err := p.decodeOne(oid, prev)
		if err != nil {
			// Malformed, integrity, and store failures skip the frame; the
			// reference stays as-is, so a following delta frame may fail too
			// until the next raw-typed frame resynchronizes the stream.
			log.Error("frame_decode_failed", "oid", oid, "error", err)
			metrics.FramesSkipped.Inc()
			p.addSkipped()

			continue
		}
		metrics.FramesDecoded.Inc()

		clone := p.codec.Clone(decoded)
		if err := ring.Put(ctx, clone); err != nil {
			p.codec.Release(clone)
			p.codec.Release(decoded)

			return
		}
		metrics.RingDepth.Set(float64(ring.Len()))

		if prev != nil {
			p.codec.Release(prev)
		}
		prev = decoded
	}
}

// decodeOne fetches, deserializes, and decompresses a single commit's frame.
func (p *Player) decodeOne(oid string, prev *frame.RawFrame) (*frame.RawFrame, error) {
	data, err := p.fetchBlob(oid)
	if err != nil {
		return nil, err
	}

	rec, err := frame.Deserialize(data, p.cfg.Geometry)
	if err != nil {
		return nil, err
	}

	return p.codec.Decode(rec, prev)
}

// fetchBlob consults the cache first and falls through to a synchronous
// store read on a miss. Misses are not inserted back into the cache: the
// decoder reads each commit exactly once, so a miss is only useful to the
// prefetcher, which is already past it.
func (p *Player) fetchBlob(oid string) ([]byte, error) {
	if data, ok := p.cache.Get(oid); ok {
		metrics.CacheHits.Inc()
		return data, nil
	}
	metrics.CacheMisses.Inc()

	return p.st.ReadFrameBlob(oid)
}

// displayLoop is the consumer: it pops frames in order, paces to the target
// frame period when enabled, and hands each frame to the sink.
func (p *Player) displayLoop(ctx context.Context, ring *Ring, cancel context.CancelFunc) (Stats, error) {
	var stats Stats

	framePeriod := time.Second / time.Duration(p.cfg.TargetFPS)

	for {
		frameStart := time.Now()

		f, err := ring.Get(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, errs.ErrStopped) {
				return stats, nil
			}

			return stats, err
		}

		if p.cfg.Display.ShouldClose() {
			p.codec.Release(f)
			cancel()

			return stats, nil
		}

		presentErr := p.cfg.Display.Present(f)
		p.codec.Release(f)
		if presentErr != nil {
			cancel()

			return stats, fmt.Errorf("%w: %v", errs.ErrDisplay, presentErr)
		}

		stats.FramesDisplayed++
		metrics.FramesDisplayed.Inc()

		if p.cfg.Pacing {
			if remaining := framePeriod - time.Since(frameStart); remaining > 0 {
				select {
				case <-time.After(remaining):
				case <-ctx.Done():
					return stats, nil
				}
			}
		}
	}
}

func (p *Player) addSkipped() {
	p.mu.Lock()
	p.skipped++
	p.mu.Unlock()
}

func (p *Player) takeSkipped() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.skipped
	p.skipped = 0

	return n
}
