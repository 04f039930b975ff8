// Package backend defines the storage collaborator the codec, planner,
// and container layers read and write through, plus the handful of
// concrete backends spec section 6 asks for (memory-mapped file,
// buffered file handle, in-memory buffer).
//
// Every Backend call is the only place that may block or suspend;
// everything above this package (convert/filter/entropy, the planner's
// coalescing) is synchronous CPU work.
package backend

import "context"

// ReadBackend is the minimal capability set a Reader needs. Bytes
// returned by Read must remain valid for the duration of any subsequent
// call that references them (e.g. a decode reading straight out of a
// memory-mapped region); WithRead exists for backends that can hand out
// such a view without a copy.
type ReadBackend interface {
	// Length returns the total byte size of the backing store.
	Length() (uint64, error)

	// Read returns count bytes starting at offset. It may suspend; it is
	// safe to call concurrently from multiple goroutines.
	Read(ctx context.Context, offset, count uint64) ([]byte, error)

	// WithRead is the scoped variant: fn receives a byte slice valid only
	// for the duration of the call. Implementations that can avoid a copy
	// (e.g. mmap) should. fn's return value is propagated unchanged.
	WithRead(ctx context.Context, offset, count uint64, fn func([]byte) error) error

	// Prefetch is advisory; a no-op implementation is always valid.
	Prefetch(ctx context.Context, offset, count uint64)
}

// WriteBackend is the minimal capability set a Writer needs.
type WriteBackend interface {
	Write(ctx context.Context, p []byte) error
	Synchronize(ctx context.Context) error
}

// Identifiable backends expose a stable identity suitable for use as a
// cross-session cache key (see internal/lutcache.DiskCache). Backends
// that cannot offer one (e.g. an anonymous in-memory buffer) need not
// implement it; callers fall back to an in-process-only cache.
type Identifiable interface {
	Identity() string
}
