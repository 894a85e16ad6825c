package player

import (
	"sync"

	"github.com/gitvid/gitvid/internal/hash"
)

// DefaultCacheSize is the number of blob slots the playback cache holds.
const DefaultCacheSize = 32

type cacheSlot struct {
	key  uint64
	oid  string
	data []byte
}

// BlobCache is a fixed-capacity cache of fetched frame blobs keyed by commit
// oid. Eviction is FIFO by insertion order: inserts overwrite the slot at the
// write position and advance it, so the cache always holds the most recently
// fetched window of the stream. Lookup is a linear scan; with a few dozen
// slots a scan over xxhash keys is cheaper than maintaining a map plus
// eviction list.
//
// The cache is a performance aid only: a miss falls through to a synchronous
// store read, so playback is correct with an empty cache.
type BlobCache struct {
	mu       sync.Mutex
	slots    []cacheSlot
	writePos int
}

// NewBlobCache creates a cache with the given number of slots.
func NewBlobCache(capacity int) *BlobCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}

	return &BlobCache{slots: make([]cacheSlot, capacity)}
}

// Get returns the cached blob for oid, if present.
func (c *BlobCache) Get(oid string) ([]byte, bool) {
	key := hash.ID(oid)

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.slots {
		if c.slots[i].key == key && c.slots[i].oid == oid {
			return c.slots[i].data, true
		}
	}

	return nil, false
}

// Put inserts a blob, overwriting whatever occupies the current write slot.
// The evicted entry is dropped before the new one is installed.
func (c *BlobCache) Put(oid string, data []byte) {
	key := hash.ID(oid)

	c.mu.Lock()
	defer c.mu.Unlock()

	slot := &c.slots[c.writePos]
	slot.key = key
	slot.oid = oid
	slot.data = data

	c.writePos = (c.writePos + 1) % len(c.slots)
}
