// Package lutcache caches decompressed LUT groups across reads. A LUT
// group (spec section 4.1, LUT_CHUNK_COUNT=256 entries) is cheap to
// decompress but, for a Reader serving many small random-access
// requests against the same file, re-fetching and re-decoding the same
// group on every request is wasted work; these caches let a Reader skip
// straight to the decompressed offsets it already has.
//
// GroupCache is an in-process, size-bounded cache keyed by (file
// identity, group index); DiskCache additionally persists groups across
// process restarts for backends that expose a stable Identity (spec
// section 6's Identifiable).
package lutcache

import (
	"encoding/binary"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
)

// GroupKey identifies one decompressed LUT group: the file it belongs
// to (backend.Identifiable.Identity(), or "" for anonymous backends)
// plus the variable's LUT offset (distinguishing variables within the
// same file) and the group index.
type GroupKey struct {
	FileIdentity string
	LUTOffset    uint64
	Group        uint64
}

// string renders the key as tinylfu's map key: an xxhash digest of the
// three fields rather than a formatted string, since FileIdentity can be
// an arbitrarily long backend identity (e.g. a file path) and every
// lookup pays for building this key.
func (k GroupKey) string() string {
	b := make([]byte, 0, len(k.FileIdentity)+16)
	b = append(b, k.FileIdentity...)
	b = binary.LittleEndian.AppendUint64(b, k.LUTOffset)
	b = binary.LittleEndian.AppendUint64(b, k.Group)
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}

// GroupCache wraps a tinylfu admission-filtered LRU cache, which is
// well suited here: most files are read by short-lived requests that
// touch a handful of groups once, so a plain LRU gets polluted by
// one-shot scans, while tinylfu's frequency sketch keeps a hot file's
// groups resident across many cold ones.
type GroupCache struct {
	c *tinylfu.T
}

// NewGroupCache builds a cache admitting up to size groups, sampling
// samples recent keys to estimate access frequency (tinylfu's
// constructor parameters).
func NewGroupCache(size, samples int) *GroupCache {
	return &GroupCache{c: tinylfu.New(size, samples)}
}

// Get returns the decompressed absolute offsets for key, if cached.
func (c *GroupCache) Get(key GroupKey) ([]uint64, bool) {
	v, ok := c.c.Get(key.string())
	if !ok {
		return nil, false
	}
	offsets, ok := v.([]uint64)
	return offsets, ok
}

// Put stores the decompressed absolute offsets for key.
func (c *GroupCache) Put(key GroupKey, offsets []uint64) {
	c.c.Add(key.string(), offsets)
}
