// Package hash provides fast non-cryptographic keys for cache lookups.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string. The blob cache keys commit
// oids by this hash so the linear scan compares a single word before falling
// back to the full hex string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
