package player

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/frame"
)

// Display is the external presentation sink. The pipeline calls Init once
// before the first frame, Present once per frame in order, polls ShouldClose
// between frames, and calls Cleanup exactly once on every exit path.
//
// Present receives a borrowed frame: the pixel buffer is only valid for the
// duration of the call.
type Display interface {
	Init(geo format.Geometry) error
	Present(f *frame.RawFrame) error
	ShouldClose() bool
	Cleanup()
}

// NullDisplay discards frames and counts them. Used in tests and for
// decode-throughput measurement.
type NullDisplay struct {
	presented atomic.Uint64
}

var _ Display = (*NullDisplay)(nil)

func (d *NullDisplay) Init(format.Geometry) error { return nil }

func (d *NullDisplay) Present(*frame.RawFrame) error {
	d.presented.Add(1)
	return nil
}

func (d *NullDisplay) ShouldClose() bool { return false }
func (d *NullDisplay) Cleanup()          {}

// Presented returns the number of frames handed to the sink so far.
func (d *NullDisplay) Presented() uint64 {
	return d.presented.Load()
}

// StatsDisplay discards pixel data but logs throughput once per second of
// wall time. It is the default sink for the headless CLI player.
type StatsDisplay struct {
	log *slog.Logger

	start     time.Time
	lastLog   time.Time
	presented uint64
}

var _ Display = (*StatsDisplay)(nil)

// NewStatsDisplay creates a throughput-logging sink.
func NewStatsDisplay(log *slog.Logger) *StatsDisplay {
	return &StatsDisplay{log: log}
}

func (d *StatsDisplay) Init(geo format.Geometry) error {
	d.start = time.Now()
	d.lastLog = d.start
	d.log.Info("display_init", "geometry", geo.String())

	return nil
}

func (d *StatsDisplay) Present(f *frame.RawFrame) error {
	d.presented++

	now := time.Now()
	if now.Sub(d.lastLog) >= time.Second {
		elapsed := now.Sub(d.start).Seconds()
		d.log.Info("playback_progress",
			"frames", d.presented,
			"fps", float64(d.presented)/elapsed,
			"elapsed_s", elapsed,
		)
		d.lastLog = now
	}

	return nil
}

func (d *StatsDisplay) ShouldClose() bool { return false }

func (d *StatsDisplay) Cleanup() {
	elapsed := time.Since(d.start).Seconds()
	if elapsed > 0 {
		d.log.Info("playback_done",
			"frames", d.presented,
			"fps", float64(d.presented)/elapsed,
			"elapsed_s", elapsed,
		)
	}
}
