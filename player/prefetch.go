package player

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gitvid/gitvid/internal/metrics"
	"github.com/gitvid/gitvid/store"
)

// Prefetcher is a single background worker that walks the playback-ordered
// commit list and warms the blob cache ahead of the decoder. It never
// reorders anything the decoder observes: the decoder consults the cache
// atomically and fetches on its own when the prefetcher has not gotten there
// yet.
type Prefetcher struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// StartPrefetcher launches the worker over the given commit oids. Stop must
// be called on every exit path of the owner.
func StartPrefetcher(ctx context.Context, st *store.Store, cache *BlobCache, oids []string, log *slog.Logger) *Prefetcher {
	ctx, cancel := context.WithCancel(ctx)
	p := &Prefetcher{cancel: cancel}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		for _, oid := range oids {
			if ctx.Err() != nil {
				return
			}
			if _, ok := cache.Get(oid); ok {
				continue
			}

			data, err := st.ReadFrameBlob(oid)
			if err != nil {
				// The decoder will retry this commit itself and report the
				// failure with full context; the prefetcher just moves on.
				log.Debug("prefetch_read_failed", "oid", oid, "error", err)
				continue
			}

			cache.Put(oid, data)
			metrics.PrefetchFetches.Inc()
		}
	}()

	return p
}

// Stop signals the worker and waits for it to exit.
func (p *Prefetcher) Stop() {
	p.cancel()
	p.wg.Wait()
}
