package codec

import (
	"math/rand"
	"testing"
)

func TestChunksPerDimAndTotalChunks(t *testing.T) {
	dims := []uint64{10, 7}
	chunks := []uint64{4, 3}
	cpd := ChunksPerDim(dims, chunks)
	if cpd[0] != 3 || cpd[1] != 3 {
		t.Fatalf("ChunksPerDim = %v, want [3 3]", cpd)
	}
	if got := TotalChunks(dims, chunks); got != 9 {
		t.Fatalf("TotalChunks = %d, want 9", got)
	}
}

func TestChunkCoordOffsetRoundTrip(t *testing.T) {
	dims := []uint64{10, 7, 5}
	chunks := []uint64{4, 3, 2}
	cpd := ChunksPerDim(dims, chunks)
	total := TotalChunks(dims, chunks)

	seen := make(map[uint64]bool)
	for k := uint64(0); k < total; k++ {
		coord := ChunkCoordOffset(k, cpd, chunks)
		for i := range coord {
			if coord[i]%chunks[i] != 0 {
				t.Fatalf("chunk %d coord[%d]=%d not aligned to chunk size %d", k, i, coord[i], chunks[i])
			}
			if coord[i] >= dims[i] {
				t.Fatalf("chunk %d coord[%d]=%d out of bounds (dim %d)", k, i, coord[i], dims[i])
			}
		}
		key := coord[0]*1000000 + coord[1]*1000 + coord[2]
		if seen[key] {
			t.Fatalf("chunk %d produced a coordinate already seen: %v", k, coord)
		}
		seen[key] = true
	}
	if uint64(len(seen)) != total {
		t.Fatalf("got %d distinct chunk coordinates, want %d", len(seen), total)
	}
}

func TestChunkValidShapeClipsTrailingEdge(t *testing.T) {
	dims := []uint64{10, 7}
	chunks := []uint64{4, 3}
	// Last chunk along axis 0 starts at 8, only 2 elements remain.
	shape := ChunkValidShape([]uint64{8, 3}, chunks, dims)
	if shape[0] != 2 || shape[1] != 3 {
		t.Fatalf("ChunkValidShape = %v, want [2 3]", shape)
	}
	// An interior chunk keeps the nominal shape.
	shape = ChunkValidShape([]uint64{0, 0}, chunks, dims)
	if shape[0] != 4 || shape[1] != 3 {
		t.Fatalf("ChunkValidShape = %v, want [4 3]", shape)
	}
}

func TestForEachIntersectingChunkCoversExactlyTheBox(t *testing.T) {
	chunksPerDim := []uint64{3, 4}
	first := []uint64{1, 1}
	last := []uint64{2, 3}

	var visited []uint64
	ForEachIntersectingChunk(chunksPerDim, first, last, func(idx uint64, coord []uint64) {
		visited = append(visited, idx)
	})
	want := (last[0] - first[0] + 1) * (last[1] - first[1] + 1)
	if uint64(len(visited)) != want {
		t.Fatalf("visited %d chunks, want %d", len(visited), want)
	}
	seen := make(map[uint64]bool)
	for _, idx := range visited {
		if seen[idx] {
			t.Fatalf("chunk index %d visited twice", idx)
		}
		seen[idx] = true
	}
}

// TestVisitChunkOverlapGatherScatterRoundTrip builds a small logical
// array, splits it into chunks, gathers every chunk's overlap from a
// source cube, then scatters it back into a fresh destination cube, and
// checks the result matches the source exactly — the same traversal
// Encoder.WriteData and Decoder.DecodeChunkInto rely on.
func TestVisitChunkOverlapGatherScatterRoundTrip(t *testing.T) {
	dims := []uint64{5, 7}
	chunks := []uint64{2, 3}
	cpd := ChunksPerDim(dims, chunks)
	total := TotalChunks(dims, chunks)

	src := make([]float64, dims[0]*dims[1])
	for i := range src {
		src[i] = float64(i)
	}
	dst := make([]float64, len(src))

	for k := uint64(0); k < total; k++ {
		chunkOff := ChunkCoordOffset(k, cpd, chunks)
		validShape := ChunkValidShape(chunkOff, chunks, dims)

		scratch := make([]float64, chunks[0]*chunks[1])
		cubeBase := ToInt64([]uint64{0, 0})
		VisitChunkOverlap(chunkOff, chunks, validShape, cubeBase, dims, []uint64{0, 0}, dims,
			func(chunkBufOff, cubeBufOff, n uint64) {
				copy(scratch[chunkBufOff:chunkBufOff+n], src[cubeBufOff:cubeBufOff+n])
			})
		VisitChunkOverlap(chunkOff, chunks, validShape, cubeBase, dims, []uint64{0, 0}, dims,
			func(chunkBufOff, cubeBufOff, n uint64) {
				copy(dst[cubeBufOff:cubeBufOff+n], scratch[chunkBufOff:chunkBufOff+n])
			})
	}

	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("element %d: got %v, want %v", i, dst[i], src[i])
		}
	}
}

func TestIntersectingChunkCoordRange(t *testing.T) {
	chunks := []uint64{4, 3}
	first, last := IntersectingChunkCoordRange([]uint64{2, 4}, []uint64{5, 2}, chunks)
	// axis 0: elements [2,7) -> chunks 0,1; axis 1: elements [4,6) -> chunk 1
	if first[0] != 0 || last[0] != 1 {
		t.Fatalf("axis 0 range = [%d,%d], want [0,1]", first[0], last[0])
	}
	if first[1] != 1 || last[1] != 1 {
		t.Fatalf("axis 1 range = [%d,%d], want [1,1]", first[1], last[1])
	}
}

// FuzzVisitChunkOverlapNeverOverrunsBuffers exercises the traversal over
// random small geometries and sub-cube windows, and checks every visited
// run stays within both buffers' bounds — the property the encoder and
// decoder both depend on to avoid an out-of-range slice operation.
func FuzzVisitChunkOverlapNeverOverrunsBuffers(f *testing.F) {
	f.Add(uint64(5), uint64(7), uint64(2), uint64(3), uint64(1), uint64(1), uint64(3), uint64(4))
	f.Fuzz(func(t *testing.T, d0, d1, c0, c1, o0, o1, n0, n1 uint64) {
		d0 = 1 + d0%12
		d1 = 1 + d1%12
		c0 = 1 + c0%d0
		c1 = 1 + c1%d1
		o0 = o0 % d0
		o1 = o1 % d1
		n0 = 1 + n0%(d0-o0)
		n1 = 1 + n1%(d1-o1)

		dims := []uint64{d0, d1}
		chunks := []uint64{c0, c1}
		offset := []uint64{o0, o1}
		count := []uint64{n0, n1}

		cpd := ChunksPerDim(dims, chunks)
		first, last := IntersectingChunkCoordRange(offset, count, chunks)

		ForEachIntersectingChunk(cpd, first, last, func(chunkIndex uint64, _ []uint64) {
			chunkOff := ChunkCoordOffset(chunkIndex, cpd, chunks)
			validShape := ChunkValidShape(chunkOff, chunks, dims)
			chunkElems := chunks[0] * chunks[1]
			cubeElems := count[0] * count[1]
			cubeBase := ToInt64(offset)

			VisitChunkOverlap(chunkOff, chunks, validShape, cubeBase, count, offset, count,
				func(chunkBufOff, cubeBufOff, n uint64) {
					if chunkBufOff+n > chunkElems {
						t.Fatalf("chunk buffer overrun: off=%d n=%d cap=%d", chunkBufOff, n, chunkElems)
					}
					if cubeBufOff+n > cubeElems {
						t.Fatalf("cube buffer overrun: off=%d n=%d cap=%d", cubeBufOff, n, cubeElems)
					}
				})
		})
	})
}

func TestStridesRowMajor(t *testing.T) {
	s := Strides([]uint64{2, 3, 4})
	want := []uint64{12, 4, 1}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("Strides = %v, want %v", s, want)
		}
	}
}

func TestChunkIndexSpansCoverageMatchesForEach(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		dims := []uint64{uint64(1 + rnd.Intn(20)), uint64(1 + rnd.Intn(20))}
		chunks := []uint64{uint64(1 + rnd.Intn(5)), uint64(1 + rnd.Intn(5))}
		cpd := ChunksPerDim(dims, chunks)

		first := []uint64{uint64(rnd.Intn(int(cpd[0]))), uint64(rnd.Intn(int(cpd[1])))}
		last := []uint64{first[0] + uint64(rnd.Intn(int(cpd[0]-first[0]))), first[1] + uint64(rnd.Intn(int(cpd[1]-first[1])))}

		var want []uint64
		ForEachIntersectingChunk(cpd, first, last, func(idx uint64, _ []uint64) {
			want = append(want, idx)
		})

		var got []uint64
		for _, span := range ChunkIndexSpans(cpd, first, last) {
			for k := span.Lo; k <= span.Hi; k++ {
				got = append(got, k)
			}
		}

		if len(got) != len(want) {
			t.Fatalf("trial %d: ChunkIndexSpans produced %d indices, ForEachIntersectingChunk produced %d", trial, len(got), len(want))
		}
		seen := make(map[uint64]bool, len(want))
		for _, idx := range want {
			seen[idx] = true
		}
		for _, idx := range got {
			if !seen[idx] {
				t.Fatalf("trial %d: ChunkIndexSpans produced index %d not in ForEachIntersectingChunk's set", trial, idx)
			}
		}
	}
}
