package lutcache

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble/v2"
)

// DiskCache persists decompressed LUT groups across process restarts,
// for the case a long-lived data pipeline reopens the same backing
// files repeatedly (e.g. a forecast archive read by many short batch
// jobs): the LUT groups only ever need to be decompressed once per
// file, ever, not once per process.
type DiskCache struct {
	db *pebble.DB
}

// OpenDiskCache opens (creating if absent) a pebble store at dir to
// back a DiskCache.
func OpenDiskCache(dir string) (*DiskCache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("lutcache: open disk cache at %q: %w", dir, err)
	}
	return &DiskCache{db: db}, nil
}

// Close closes the underlying pebble store.
func (c *DiskCache) Close() error { return c.db.Close() }

func diskKey(key GroupKey) []byte { return []byte(key.string()) }

// Get returns the decompressed absolute offsets for key, if present.
func (c *DiskCache) Get(key GroupKey) ([]uint64, bool) {
	raw, closer, err := c.db.Get(diskKey(key))
	if err != nil {
		return nil, false
	}
	defer closer.Close()
	if len(raw)%8 != 0 {
		return nil, false
	}
	offsets := make([]uint64, len(raw)/8)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}
	return offsets, true
}

// Put stores the decompressed absolute offsets for key, durably but
// without forcing an fsync per write (WAL sync happens on Close or on
// pebble's own background flush cadence; a crash can lose the most
// recent puts, which only costs a re-decompress on the next open, never
// correctness).
func (c *DiskCache) Put(key GroupKey, offsets []uint64) error {
	raw := make([]byte, len(offsets)*8)
	for i, v := range offsets {
		binary.LittleEndian.PutUint64(raw[i*8:], v)
	}
	return c.db.Set(diskKey(key), raw, pebble.NoSync)
}
