package omfile

import (
	"context"
	"runtime"

	"github.com/open-meteo/om-file-format/internal/codec"
	"github.com/open-meteo/om-file-format/internal/lutcache"
	"golang.org/x/sync/errgroup"
)

// ArrayReader reads an array Variable's chunked payload (spec section
// 4.6: ArrayReader<T>). It owns the variable's compressed LUT cursor and
// the codec.Decoder matching T's element type; both the offset requested
// and the cube it is placed into may differ, per spec section 4.2.
type ArrayReader[T Numeric] struct {
	r *Reader
	v *Variable

	chunksPerDim []uint64
	totalChunks  uint64
	dec          *codec.Decoder
}

// Dimensions returns the array's logical shape.
func (a *ArrayReader[T]) Dimensions() []uint64 { return a.v.Dimensions }

// ChunkDimensions returns the nominal (uncropped) chunk shape.
func (a *ArrayReader[T]) ChunkDimensions() []uint64 { return a.v.Chunks }

// Compression returns the variable's convert/filter/entropy triple.
func (a *ArrayReader[T]) Compression() CompressionType { return a.v.Compression }

// ScaleFactor returns the variable's convert-step scale.
func (a *ArrayReader[T]) ScaleFactor() float32 { return a.v.ScaleFactor }

// AddOffset returns the variable's convert-step offset.
func (a *ArrayReader[T]) AddOffset() float32 { return a.v.AddOffset }

func (a *ArrayReader[T]) groupKey(group int) lutcache.GroupKey {
	return lutcache.GroupKey{FileIdentity: a.r.identity, LUTOffset: a.v.LUTOffset, Group: uint64(group)}
}

func (a *ArrayReader[T]) cachedGroup(group int) ([]uint64, bool) {
	key := a.groupKey(group)
	if a.r.groupCache != nil {
		if vals, ok := a.r.groupCache.Get(key); ok {
			return vals, true
		}
	}
	if a.r.diskCache != nil {
		if vals, ok := a.r.diskCache.Get(key); ok {
			if a.r.groupCache != nil {
				a.r.groupCache.Put(key, vals)
			}
			return vals, true
		}
	}
	return nil, false
}

func (a *ArrayReader[T]) cacheGroup(group int, vals []uint64) {
	key := a.groupKey(group)
	if a.r.groupCache != nil {
		a.r.groupCache.Put(key, vals)
	}
	if a.r.diskCache != nil {
		_ = a.r.diskCache.Put(key, vals)
	}
}

func storeEntries(entries map[uint64]uint64, group int, vals []uint64) {
	base := uint64(group) * codec.LUTGroupSize
	for i, v := range vals {
		entries[base+uint64(i)] = v
	}
}

// entriesForSpans resolves every LUT entry chunkSpans need (the index-
// read cursor of spec section 4.3), serving cached groups directly and
// coalescing the rest through the planner before decompressing.
func (a *ArrayReader[T]) entriesForSpans(ctx context.Context, chunkSpans []codec.ChunkSpan) (map[uint64]uint64, error) {
	totalEntries := int(a.totalChunks) + 1
	planned := codec.PlanIndexReads(a.v.LUTOffset, a.v.LUTSize, totalEntries, chunkSpans, a.r.ioSizeMerge, a.r.ioSizeMax)

	entries := make(map[uint64]uint64, len(chunkSpans)*2)
	for _, pr := range planned {
		var raw []byte
		for _, tag := range pr.Tags {
			group := int(tag)
			if vals, ok := a.cachedGroup(group); ok {
				storeEntries(entries, group, vals)
				continue
			}
			if raw == nil {
				var err error
				raw, err = a.r.be.Read(ctx, pr.Range.Offset, pr.Range.Length)
				if err != nil {
					return nil, wrapIo(err)
				}
			}
			off, length := codec.GroupByteRange(a.v.LUTOffset, a.v.LUTSize, totalEntries, group)
			rel := off - pr.Range.Offset
			vals, err := codec.DecodeOneGroup(raw[rel:rel+length], totalEntries, group)
			if err != nil {
				return nil, err
			}
			a.cacheGroup(group, vals)
			storeEntries(entries, group, vals)
		}
	}
	return entries, nil
}

// dataReadPlan is the data-read cursor (spec section 4.3) resolved for
// one request: the planner's coalesced byte ranges, plus the absolute
// LUT entries needed to turn a chunk index back into its byte range
// within whichever planned read fetched it.
type dataReadPlan struct {
	planned []codec.PlannedRead
	entries map[uint64]uint64
}

func (p dataReadPlan) byteRange(pr codec.PlannedRead, chunkIndex uint64) (start, end uint64) {
	return p.entries[chunkIndex] - pr.Range.Offset, p.entries[chunkIndex+1] - pr.Range.Offset
}

func (a *ArrayReader[T]) resolveDataReads(ctx context.Context, offset, count []uint64) (dataReadPlan, error) {
	first, last := codec.IntersectingChunkCoordRange(offset, count, a.v.Chunks)
	chunkSpans := codec.ChunkIndexSpans(a.chunksPerDim, first, last)
	entries, err := a.entriesForSpans(ctx, chunkSpans)
	if err != nil {
		return dataReadPlan{}, err
	}
	offsetAt := func(entry uint64) uint64 { return entries[entry] }
	planned := codec.PlanDataReads(chunkSpans, offsetAt, a.r.ioSizeMerge, a.r.ioSizeMax)
	return dataReadPlan{planned: planned, entries: entries}, nil
}

// ReadInto implements ArrayReader::read_into (spec section 4.6):
// decompresses and scatters [offset, offset+count) into outCube, a
// buffer of shape intoCubeDimensions whose placement begins at
// intoCubeOffset.
func (a *ArrayReader[T]) ReadInto(ctx context.Context, offset, count []uint64, outCube []T, intoCubeOffset, intoCubeDimensions []uint64) error {
	if err := a.dec.ValidateRequest(offset, count, intoCubeOffset, intoCubeDimensions); err != nil {
		return err
	}
	plan, err := a.resolveDataReads(ctx, offset, count)
	if err != nil {
		return err
	}
	for _, pr := range plan.planned {
		raw, err := a.r.be.Read(ctx, pr.Range.Offset, pr.Range.Length)
		if err != nil {
			return wrapIo(err)
		}
		for _, k := range pr.Tags {
			start, end := plan.byteRange(pr, k)
			if err := a.dec.DecodeChunkInto(k, raw[start:end], offset, count, intoCubeOffset, intoCubeDimensions, outCube); err != nil {
				return err
			}
		}
	}
	return nil
}

// Read implements ArrayReader::read: allocates an output cube exactly
// shaped count and reads [offset, offset+count) into it directly.
func (a *ArrayReader[T]) Read(ctx context.Context, offset, count []uint64) ([]T, error) {
	out := make([]T, elemCount(count))
	zero := make([]uint64, len(count))
	if err := a.ReadInto(ctx, offset, count, out, zero, count); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadConcurrent implements ArrayReader::read_concurrent: the same
// result as Read, but each planner-coalesced data read is fetched and
// decoded by its own goroutine, bounded to concurrency in flight at
// once (concurrency <= 0 uses runtime.GOMAXPROCS(0)). Safe because
// distinct chunks never scatter into overlapping regions of the output
// cube.
func (a *ArrayReader[T]) ReadConcurrent(ctx context.Context, offset, count []uint64, concurrency int) ([]T, error) {
	zero := make([]uint64, len(count))
	if err := a.dec.ValidateRequest(offset, count, zero, count); err != nil {
		return nil, err
	}
	out := make([]T, elemCount(count))

	plan, err := a.resolveDataReads(ctx, offset, count)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(concurrency)
	for _, pr := range plan.planned {
		pr := pr
		g.Go(func() error {
			raw, err := a.r.be.Read(gctx, pr.Range.Offset, pr.Range.Length)
			if err != nil {
				return wrapIo(err)
			}
			for _, k := range pr.Tags {
				start, end := plan.byteRange(pr, k)
				if err := a.dec.DecodeChunkInto(k, raw[start:end], offset, count, zero, count, out); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WillNeed implements ArrayReader::will_need: resolves the LUT entries
// for [offset, offset+count) and issues an advisory Prefetch for every
// coalesced data range, without decompressing any chunk.
func (a *ArrayReader[T]) WillNeed(ctx context.Context, offset, count []uint64) error {
	plan, err := a.resolveDataReads(ctx, offset, count)
	if err != nil {
		return err
	}
	for _, pr := range plan.planned {
		a.r.be.Prefetch(ctx, pr.Range.Offset, pr.Range.Length)
	}
	return nil
}

func elemCount(count []uint64) uint64 {
	n := uint64(1)
	for _, c := range count {
		n *= c
	}
	return n
}
