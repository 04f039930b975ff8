package codec

import "sort"

// ByteRange is a half-open [Offset, Offset+Length) byte span in the
// backend.
type ByteRange struct {
	Offset uint64
	Length uint64
}

// ChunkSpan is an inclusive range of contiguous, increasing chunk
// indices (spec section 4.3 relies on chunk index and file offset
// increasing together, since the encoder emits chunks in chunk_index
// order).
type ChunkSpan struct {
	Lo, Hi uint64
}

// ChunkIndexSpans decomposes the chunk-coordinate box [first, last]
// into contiguous linear chunk-index ranges: one span per distinct
// combination of the outer (non-fastest) chunk coordinates, since only
// the fastest axis is guaranteed to map to consecutive linear indices.
// Spans that happen to be adjacent are not merged.
func ChunkIndexSpans(chunksPerDim, first, last []uint64) []ChunkSpan {
	rank := len(first)
	if rank == 0 {
		return []ChunkSpan{{0, 0}}
	}
	if rank == 1 {
		return []ChunkSpan{{first[0], last[0]}}
	}

	idx := append([]uint64(nil), first[:rank-1]...)
	var spans []ChunkSpan
	for {
		base := uint64(0)
		for i := 0; i < rank-1; i++ {
			base = base*chunksPerDim[i] + idx[i]
		}
		base *= chunksPerDim[rank-1]
		spans = append(spans, ChunkSpan{Lo: base + first[rank-1], Hi: base + last[rank-1]})

		carry := true
		for i := rank - 2; i >= 0 && carry; i-- {
			idx[i]++
			if idx[i] <= last[i] {
				carry = false
			} else {
				idx[i] = first[i]
			}
		}
		if carry {
			break
		}
	}
	return spans
}

// Unit is one indivisible item a planned read may bundle together: a
// LUT group or a single compressed chunk, each with its own byte range
// in the backend and an opaque tag (the group or chunk index it
// represents).
type Unit struct {
	Range ByteRange
	Tag   uint64
}

// PlannedRead is one emitted backend read: a coalesced byte range plus
// the units (in increasing order) it was built from.
type PlannedRead struct {
	Range ByteRange
	Tags  []uint64
}

// CoalesceReads implements the merge-small/split-large rule shared by
// the index-read and data-read cursors (spec section 4.3): units must
// already be sorted by ascending, non-overlapping Range.Offset. Gaps of
// at most ioSizeMerge bytes are merged into one read; any merged read
// whose span would exceed ioSizeMax is re-split on unit boundaries.
func CoalesceReads(units []Unit, ioSizeMerge, ioSizeMax uint64) []PlannedRead {
	if len(units) == 0 {
		return nil
	}

	var groups [][]Unit
	cur := []Unit{units[0]}
	for i := 1; i < len(units); i++ {
		prevEnd := cur[len(cur)-1].Range.Offset + cur[len(cur)-1].Range.Length
		gap := units[i].Range.Offset - prevEnd
		if gap <= ioSizeMerge {
			cur = append(cur, units[i])
		} else {
			groups = append(groups, cur)
			cur = []Unit{units[i]}
		}
	}
	groups = append(groups, cur)

	var out []PlannedRead
	for _, g := range groups {
		out = append(out, splitGroup(g, ioSizeMax)...)
	}
	return out
}

func splitGroup(units []Unit, ioSizeMax uint64) []PlannedRead {
	var out []PlannedRead
	i := 0
	for i < len(units) {
		start := units[i].Range.Offset
		end := units[i].Range.Offset + units[i].Range.Length
		tags := []uint64{units[i].Tag}
		j := i + 1
		for j < len(units) {
			newEnd := units[j].Range.Offset + units[j].Range.Length
			if newEnd-start > ioSizeMax {
				break
			}
			end = newEnd
			tags = append(tags, units[j].Tag)
			j++
		}
		out = append(out, PlannedRead{Range: ByteRange{Offset: start, Length: end - start}, Tags: tags})
		i = j
	}
	return out
}

// PlanIndexReads produces the coalesced LUT byte ranges needed to
// decompress the LUT groups covering chunkSpans (spec section 4.3's
// index-read cursor). Each chunk k needs LUT entries k and k+1, so the
// entry range for a chunk span [lo,hi] is [lo, hi+1].
func PlanIndexReads(lutOffset uint64, lutSize uint64, totalEntries int, chunkSpans []ChunkSpan, ioSizeMerge, ioSizeMax uint64) []PlannedRead {
	nGroups := numLUTGroups(totalEntries)
	if nGroups == 0 {
		return nil
	}
	lutChunkLength := (int(lutSize) - lutReservedFooter) / nGroups

	seen := make(map[uint64]bool)
	var groupIdx []uint64
	for _, span := range chunkSpans {
		firstGroup, lastGroup := GroupRange(int(span.Lo), int(span.Hi)+1)
		for g := firstGroup; g <= lastGroup; g++ {
			if !seen[uint64(g)] {
				seen[uint64(g)] = true
				groupIdx = append(groupIdx, uint64(g))
			}
		}
	}
	sort.Slice(groupIdx, func(i, j int) bool { return groupIdx[i] < groupIdx[j] })

	units := make([]Unit, len(groupIdx))
	for i, g := range groupIdx {
		units[i] = Unit{
			Range: ByteRange{Offset: lutOffset + g*uint64(lutChunkLength), Length: uint64(lutChunkLength)},
			Tag:   g,
		}
	}
	return CoalesceReads(units, ioSizeMerge, ioSizeMax)
}

// PlanDataReads produces the coalesced compressed-chunk byte ranges for
// chunkSpans, given the decompressed absolute chunk offsets covering at
// least [spans[0].Lo, spans[last].Hi+1] (spec section 4.3's data-read
// cursor). offsetAt(k) must return lut entry k (the start of chunk k;
// offsetAt(k+1) is its end).
func PlanDataReads(chunkSpans []ChunkSpan, offsetAt func(entry uint64) uint64, ioSizeMerge, ioSizeMax uint64) []PlannedRead {
	var units []Unit
	for _, span := range chunkSpans {
		for k := span.Lo; k <= span.Hi; k++ {
			start := offsetAt(k)
			end := offsetAt(k + 1)
			units = append(units, Unit{Range: ByteRange{Offset: start, Length: end - start}, Tag: k})
		}
	}
	return CoalesceReads(units, ioSizeMerge, ioSizeMax)
}
