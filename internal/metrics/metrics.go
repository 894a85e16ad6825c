// Package metrics exposes Prometheus instrumentation for the encoder and
// playback pipeline, plus an optional HTTP endpoint to scrape it from.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gitvid/gitvid/internal/logging"
)

// Prometheus counters and gauges.
var (
	FramesEncoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gitvid_frames_encoded_total",
		Help: "Total frames compressed and committed to the store.",
	})
	BytesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gitvid_bytes_committed_total",
		Help: "Total serialized frame record bytes written as blobs.",
	})
	FramesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gitvid_frames_decoded_total",
		Help: "Total frames decoded by the playback pipeline.",
	})
	FramesDisplayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gitvid_frames_displayed_total",
		Help: "Total frames handed to the display sink.",
	})
	FramesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gitvid_frames_skipped_total",
		Help: "Total frames skipped due to per-frame decode failures.",
	})
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gitvid_blob_cache_hits_total",
		Help: "Total blob cache lookups served from the cache.",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gitvid_blob_cache_misses_total",
		Help: "Total blob cache lookups that fell through to the store.",
	})
	PrefetchFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gitvid_prefetch_fetches_total",
		Help: "Total blobs fetched ahead of playback by the prefetcher.",
	})
	RingDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gitvid_ring_depth",
		Help: "Decoded frames currently queued between decoder and display.",
	})
	DisplayFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gitvid_display_fps",
		Help: "Frames per second observed at the display sink.",
	})
)

// StartHTTP serves /metrics on addr in a background goroutine and returns the
// server for shutdown. Errors after startup are logged, not fatal: metrics
// are an observer of playback, never a reason to stop it.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()

	return srv
}
