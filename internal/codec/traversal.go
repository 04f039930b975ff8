// Package codec implements the write-side Encoder (spec section 4.1),
// read-side Decoder (section 4.2), and the I/O planner (section 4.3)
// that sit between the container layer and the Reader/Writer facades.
package codec

// Strides returns the row-major element strides for shape: the step, in
// elements, between consecutive indices along each axis.
func Strides(shape []uint64) []uint64 {
	rank := len(shape)
	s := make([]uint64, rank)
	acc := uint64(1)
	for i := rank - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}

// ToInt64 widens an absolute-coordinate slice for use as VisitChunkOverlap's
// cubeBase when no translation is needed (the common gather-on-write case,
// where the cube buffer's element 0 sits exactly at cubeOffset).
func ToInt64(s []uint64) []int64 {
	out := make([]int64, len(s))
	for i, v := range s {
		out[i] = int64(v)
	}
	return out
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// ChunksPerDim returns ceil(dims[i]/chunks[i]) per axis.
func ChunksPerDim(dims, chunks []uint64) []uint64 {
	out := make([]uint64, len(dims))
	for i := range dims {
		out[i] = (dims[i] + chunks[i] - 1) / chunks[i]
	}
	return out
}

// TotalChunks returns the product of ChunksPerDim.
func TotalChunks(dims, chunks []uint64) uint64 {
	total := uint64(1)
	for _, n := range ChunksPerDim(dims, chunks) {
		total *= n
	}
	return total
}

// ChunkCoordOffset decomposes a linear, row-major chunk index into the
// chunk's starting coordinate in array-element space (chunkIndex's
// digits are read slowest-axis-first, matching TotalChunks' product
// order and the "canonical chunk-major order" spec section 4.7 requires
// of sequential ArrayEncoder.WriteData calls).
func ChunkCoordOffset(chunkIndex uint64, chunksPerDim, chunks []uint64) []uint64 {
	rank := len(chunks)
	coord := make([]uint64, rank)
	digits := make([]uint64, rank)
	rem := chunkIndex
	for i := rank - 1; i >= 0; i-- {
		digits[i] = rem % chunksPerDim[i]
		rem /= chunksPerDim[i]
	}
	for i := 0; i < rank; i++ {
		coord[i] = digits[i] * chunks[i]
	}
	return coord
}

// ChunkValidShape returns the chunk's shape clipped to the array bounds:
// equal to chunks[] except at the trailing edge chunk of each axis.
func ChunkValidShape(chunkCoordOffset, chunks, dims []uint64) []uint64 {
	shape := make([]uint64, len(chunks))
	for i := range chunks {
		remaining := dims[i] - chunkCoordOffset[i]
		if remaining < chunks[i] {
			shape[i] = remaining
		} else {
			shape[i] = chunks[i]
		}
	}
	return shape
}

// IntersectingChunkCoordRange returns, per axis, the inclusive range of
// chunk-coordinate indices (not element offsets) touched by
// [offset, offset+count).
func IntersectingChunkCoordRange(offset, count, chunks []uint64) (first, last []uint64) {
	rank := len(chunks)
	first = make([]uint64, rank)
	last = make([]uint64, rank)
	for i := 0; i < rank; i++ {
		first[i] = offset[i] / chunks[i]
		last[i] = (offset[i] + count[i] - 1) / chunks[i]
	}
	return
}

// ForEachIntersectingChunk enumerates, in increasing linear-index order,
// every chunk whose coordinate box lies within [first, last] inclusive
// per axis.
func ForEachIntersectingChunk(chunksPerDim, first, last []uint64, visit func(chunkIndex uint64, chunkCoord []uint64)) {
	rank := len(first)
	if rank == 0 {
		visit(0, nil)
		return
	}
	idx := append([]uint64(nil), first...)
	for {
		linear := uint64(0)
		for i := 0; i < rank; i++ {
			linear = linear*chunksPerDim[i] + idx[i]
		}
		visit(linear, append([]uint64(nil), idx...))

		carry := true
		for i := rank - 1; i >= 0 && carry; i-- {
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
}

// VisitChunkOverlap iterates every maximal contiguous run shared between
// a chunk's scratch buffer (nominal shape chunkNominalShape — always
// the full chunks[] geometry, even at an edge chunk — with its valid
// region chunkValidShape starting at chunkCoordOffset in absolute array
// coordinates) and a cube buffer (shape cubeShape, whose element 0 sits
// at absolute coordinate cubeBase) restricted to the request window
// [reqOffset, reqOffset+reqCount).
//
// This is the mixed-base counter spec section 4.1 calls "the identical
// traversal used on the read side": the outer axes (everything but the
// fastest) are walked one coordinate at a time; on the fastest axis a
// single run is emitted per outer position, because within one row both
// the chunk buffer and the cube buffer are contiguous in memory
// regardless of how many elements of that row actually overlap.
//
// cubeBase is signed because the cube buffer's element 0 need not sit
// at a non-negative array coordinate relative to itself: when scattering
// into a caller's output cube placed at intoCubeOffset while the source
// request starts at a different offset, cubeBase is a translation
// (offset - intoCubeOffset) that can be negative even though every
// coordinate actually visited resolves to a non-negative cube index.
func VisitChunkOverlap(
	chunkCoordOffset, chunkNominalShape, chunkValidShape []uint64,
	cubeBase []int64, cubeShape, reqOffset, reqCount []uint64,
	visit func(chunkBufOffset, cubeBufOffset, runLen uint64),
) {
	rank := len(chunkCoordOffset)
	if rank == 0 {
		visit(0, 0, 1)
		return
	}

	lo := make([]uint64, rank)
	hi := make([]uint64, rank)
	for i := 0; i < rank; i++ {
		lo[i] = max64(chunkCoordOffset[i], reqOffset[i])
		chunkEnd := chunkCoordOffset[i] + chunkValidShape[i]
		reqEnd := reqOffset[i] + reqCount[i]
		hi[i] = min64(chunkEnd, reqEnd)
		if lo[i] >= hi[i] {
			return
		}
	}

	chunkStrides := Strides(chunkNominalShape)
	cubeStrides := Strides(cubeShape)

	if rank == 1 {
		runLen := hi[0] - lo[0]
		chunkOff := (lo[0] - chunkCoordOffset[0]) * chunkStrides[0]
		cubeOff := (int64(lo[0]) - cubeBase[0]) * int64(cubeStrides[0])
		visit(chunkOff, uint64(cubeOff), runLen)
		return
	}

	idx := append([]uint64(nil), lo[:rank-1]...)
	for {
		var chunkOff uint64
		var cubeOff int64
		for i := 0; i < rank-1; i++ {
			chunkOff += (idx[i] - chunkCoordOffset[i]) * chunkStrides[i]
			cubeOff += (int64(idx[i]) - cubeBase[i]) * int64(cubeStrides[i])
		}
		chunkOff += (lo[rank-1] - chunkCoordOffset[rank-1]) * chunkStrides[rank-1]
		cubeOff += (int64(lo[rank-1]) - cubeBase[rank-1]) * int64(cubeStrides[rank-1])
		runLen := hi[rank-1] - lo[rank-1]
		visit(chunkOff, uint64(cubeOff), runLen)

		carry := true
		for i := rank - 2; i >= 0 && carry; i-- {
			idx[i]++
			if idx[i] < hi[i] {
				carry = false
			} else {
				idx[i] = lo[i]
			}
		}
		if carry {
			break
		}
	}
}
