package omfile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/open-meteo/om-file-format/backend"
	"github.com/open-meteo/om-file-format/internal/codec"
	"github.com/open-meteo/om-file-format/internal/container"
	"github.com/open-meteo/om-file-format/internal/lutcache"
)

const (
	defaultIOSizeMerge = 512
	defaultIOSizeMax   = 65536
)

// Option configures a Reader at Open time.
type Option func(*Reader)

// WithGroupCache attaches an in-process cache of decompressed LUT
// groups, shared across Readers that pass the same *lutcache.GroupCache.
func WithGroupCache(c *lutcache.GroupCache) Option {
	return func(r *Reader) { r.groupCache = c }
}

// WithDiskCache attaches a cross-session LUT group cache. Only useful
// when the backend implements backend.Identifiable; otherwise groups are
// still served correctly, just never persisted.
func WithDiskCache(c *lutcache.DiskCache) Option {
	return func(r *Reader) { r.diskCache = c }
}

// WithIOSizes overrides the planner's merge/split thresholds (spec
// section 4.3's io_size_merge/io_size_max), in bytes.
func WithIOSizes(merge, max uint64) Option {
	return func(r *Reader) { r.ioSizeMerge, r.ioSizeMax = merge, max }
}

// Reader opens an existing om file and navigates its variable tree (spec
// section 4.6).
type Reader struct {
	be       backend.ReadBackend
	identity string
	root     *Variable

	groupCache *lutcache.GroupCache
	diskCache  *lutcache.DiskCache

	ioSizeMerge uint64
	ioSizeMax   uint64
}

// Open locates the root variable record, preferring the v3 trailer and
// falling back to the legacy header (container.ReadRoot), and returns a
// Reader positioned at it.
func Open(ctx context.Context, be backend.ReadBackend, opts ...Option) (*Reader, error) {
	kind, rootOffset, rootSize, err := container.ReadRoot(ctx, be)
	if err != nil {
		return nil, err
	}

	var rec container.Record
	switch kind {
	case container.OpenV3:
		rec, err = container.ReadRecord(ctx, be, rootOffset, rootSize)
	case container.OpenLegacy:
		rec, err = container.ReadLegacyRecord(ctx, be, rootSize)
	}
	if err != nil {
		return nil, wrapIo(err)
	}

	r := &Reader{
		be:          be,
		root:        variableFromRecord(rec),
		ioSizeMerge: defaultIOSizeMerge,
		ioSizeMax:   defaultIOSizeMax,
	}
	if id, ok := be.(backend.Identifiable); ok {
		r.identity = id.Identity()
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.identity == "" {
		// An anonymous backend has nothing durable to key persisted groups on.
		r.diskCache = nil
	}

	slog.Debug("omfile: opened", "legacy", kind == container.OpenLegacy, "root_type", dataTypeString(r.root.DataType))
	return r, nil
}

// OpenCached is Open plus a disk-backed LUT group cache at cacheDir
// (created via lutcache.OpenDiskCache) and a groupCacheSize-entry
// in-process cache layered in front of it, for callers that reopen the
// same backing files repeatedly across process restarts (spec section
// 4.3's index-read cursor turns into disk-cache hits instead of
// re-decompressing LUT groups). Returns the opened DiskCache so the
// caller can Close it; Reader itself does not own its lifetime.
func OpenCached(ctx context.Context, be backend.ReadBackend, cacheDir string, groupCacheSize int, opts ...Option) (*Reader, *lutcache.DiskCache, error) {
	disk, err := lutcache.OpenDiskCache(cacheDir)
	if err != nil {
		return nil, nil, err
	}
	allOpts := append([]Option{
		WithDiskCache(disk),
		WithGroupCache(lutcache.NewGroupCache(groupCacheSize, groupCacheSize*10)),
	}, opts...)
	r, err := Open(ctx, be, allOpts...)
	if err != nil {
		disk.Close()
		return nil, nil, err
	}
	return r, disk, nil
}

// Root returns the file's root variable.
func (r *Reader) Root() *Variable { return r.root }

// ChildrenCount returns the number of children v has without reading
// any of them.
func (r *Reader) ChildrenCount(v *Variable) int { return len(v.Children) }

// Child decodes and returns v's i'th child record, caching the result so
// a later ChildByName lookup over the same index never re-reads it.
func (r *Reader) Child(ctx context.Context, v *Variable, i int) (*Variable, error) {
	if i < 0 || i >= len(v.Children) {
		return nil, fmt.Errorf("omfile: %w: child index %d out of range (%d children)", ErrInvalidArgument, i, len(v.Children))
	}
	if v.resolvedChildren != nil && v.resolvedChildren[i] != nil {
		return v.resolvedChildren[i], nil
	}
	cp := v.Children[i]
	rec, err := container.ReadRecord(ctx, r.be, cp.Offset, cp.Size)
	if err != nil {
		return nil, wrapIo(err)
	}
	child := variableFromRecord(rec)
	if v.resolvedChildren == nil {
		v.resolvedChildren = make([]*Variable, len(v.Children))
	}
	v.resolvedChildren[i] = child
	return child, nil
}

// ChildByName looks up v's child named name. ChildPointer carries no
// Name (only an (offset, size) back-pointer), so the first call against
// a given v must read every child once to learn their names; it builds
// an xxhash(name)->index map as it goes so every subsequent lookup,
// including repeated misses, is index-only. Returns (nil, nil), not an
// error, when no child matches: a missing variable is an ordinary
// outcome for tree navigation, not a failure of the read itself.
func (r *Reader) ChildByName(ctx context.Context, v *Variable, name string) (*Variable, error) {
	if v.childByHash == nil {
		v.childByHash = make(map[uint64][]int, len(v.Children))
		for i := range v.Children {
			child, err := r.Child(ctx, v, i)
			if err != nil {
				return nil, err
			}
			h := xxhash.Sum64String(child.Name)
			v.childByHash[h] = append(v.childByHash[h], i)
		}
	}
	for _, i := range v.childByHash[xxhash.Sum64String(name)] {
		child, err := r.Child(ctx, v, i)
		if err != nil {
			return nil, err
		}
		if child.Name == name {
			return child, nil
		}
	}
	return nil, nil
}

// ReadScalar decodes v's scalar payload as T. v.DataType must be the
// scalar DataType matching T (e.g. DataTypeFloat for T=float32).
func ReadScalar[T Numeric](v *Variable) (T, error) {
	var zero T
	want := scalarTypeForSample[T]()
	if v.DataType != want {
		return zero, fmt.Errorf("omfile: %w: variable %q has type %s, not %s",
			ErrInvalidArgument, v.Name, dataTypeString(v.DataType), dataTypeString(want))
	}
	return decodeScalarBytes[T](v.ScalarBytes)
}

// ReadString decodes v's scalar payload as a string. v.DataType must be
// DataTypeString.
func ReadString(v *Variable) (string, error) {
	if v.DataType != DataTypeString {
		return "", fmt.Errorf("omfile: %w: variable %q has type %s, not string",
			ErrInvalidArgument, v.Name, dataTypeString(v.DataType))
	}
	return string(v.ScalarBytes), nil
}

// NewArrayReader builds an ArrayReader[T] over array variable v. v.DataType
// must be the array DataType matching T (e.g. DataTypeFloatArray for
// T=float32).
func NewArrayReader[T Numeric](r *Reader, v *Variable) (*ArrayReader[T], error) {
	want := arrayTypeForSample[T]()
	if v.DataType != want {
		return nil, fmt.Errorf("omfile: %w: variable %q has type %s, not %s",
			ErrInvalidArgument, v.Name, dataTypeString(v.DataType), dataTypeString(want))
	}
	var sample []T
	return &ArrayReader[T]{
		r:            r,
		v:            v,
		chunksPerDim: v.ChunksPerDim(),
		totalChunks:  v.TotalChunks(),
		dec:          codec.NewDecoder(v.Dimensions, v.Chunks, v.Compression, v.ScaleFactor, v.AddOffset, sample),
	}, nil
}

func decodeScalarBytes[T Numeric](raw []byte) (T, error) {
	var zero T
	n := byteSize[T]()
	if len(raw) < n {
		return zero, fmt.Errorf("omfile: %w: scalar payload too short (%d bytes, want %d)", ErrOutOfBoundRead, len(raw), n)
	}
	return decodeTyped[T](raw), nil
}
