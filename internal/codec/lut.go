package codec

import (
	"fmt"

	"github.com/open-meteo/om-file-format/internal/bitpack"
	"github.com/open-meteo/om-file-format/internal/container"
)

// LUTGroupSize is spec section 4.1's LUT_CHUNK_COUNT: the number of
// absolute chunk offsets bit-packed together as one independently
// seekable group.
const LUTGroupSize = container.LUTChunkCount

// lutReservedFooter is the fixed "32*8" trailing byte count spec
// section 4.1 reserves at the end of a compressed LUT, used by both
// LUTBound and the reader to recover lut_chunk_length from
// compressed_lut_size without re-deriving max_group_len.
const lutReservedFooter = 32 * 8

func numLUTGroups(lutLen int) int {
	return (lutLen + LUTGroupSize - 1) / LUTGroupSize
}

// LUTBound returns an upper bound on compress_lut's output size for a
// LUT of lutLen absolute offsets (spec section 4.1: lut_bound).
func LUTBound(lutLen int) int {
	nGroups := numLUTGroups(lutLen)
	maxGroupLen := bitpack.CompressedBound(LUTGroupSize, 8)
	return maxGroupLen*nGroups + lutReservedFooter
}

// encodeLUTGroup bit-packs one group of up to LUTGroupSize monotonic
// absolute offsets using the 64-bit PFor-delta coder: the first entry
// is stored as an absolute value, every subsequent entry as a
// non-negative delta from its predecessor (lut offsets are
// monotonically non-decreasing per spec section 3), which is what lets
// a block of mostly-similar chunk sizes pack into a handful of bits.
func encodeLUTGroup(group []uint64) []byte {
	deltas := make([]uint64, len(group))
	prev := uint64(0)
	for i, v := range group {
		if i == 0 {
			deltas[i] = v
		} else {
			deltas[i] = v - prev
		}
		prev = v
	}
	return bitpack.CompressUint64(deltas, nil)
}

func decodeLUTGroup(src []byte, n int) ([]uint64, error) {
	deltas, ok := bitpack.DecompressUint64(src, n, make([]uint64, 0, n))
	if !ok {
		return nil, fmt.Errorf("codec: %w: lut group decode", container.ErrDeflatedSizeMismatch)
	}
	out := make([]uint64, n)
	var acc uint64
	for i, d := range deltas {
		if i == 0 {
			acc = d
		} else {
			acc += d
		}
		out[i] = acc
	}
	return out, nil
}

// CompressLUT implements spec section 4.1's compress_lut: lut is sliced
// into fixed groups of LUTGroupSize absolute offsets, each bit-packed
// independently and placed at a fixed stride (lutChunkLength bytes) so
// any single group can be fetched and decoded without touching its
// neighbours (the I/O planner's index-read cursor relies on this).
func CompressLUT(lut []uint64) []byte {
	nGroups := numLUTGroups(len(lut))
	if nGroups == 0 {
		return make([]byte, lutReservedFooter)
	}
	groups := make([][]byte, nGroups)
	lutChunkLength := 0
	for g := 0; g < nGroups; g++ {
		start := g * LUTGroupSize
		end := min(start+LUTGroupSize, len(lut))
		groups[g] = encodeLUTGroup(lut[start:end])
		if len(groups[g]) > lutChunkLength {
			lutChunkLength = len(groups[g])
		}
	}

	out := make([]byte, nGroups*lutChunkLength+lutReservedFooter)
	for g, gb := range groups {
		copy(out[g*lutChunkLength:], gb)
	}
	return out
}

// DecodeLUTGroups decompresses the groups in [firstGroup, lastGroup]
// (inclusive, 0-based) out of a compressed LUT blob of totalEntries
// absolute offsets, returning the absolute offsets belonging to those
// groups in increasing order. compressedLUTSize is the LUT_size field
// from the variable record, needed to recover lutChunkLength.
func DecodeLUTGroups(compressed []byte, totalEntries int, compressedLUTSize int, firstGroup, lastGroup int) ([]uint64, error) {
	nGroups := numLUTGroups(totalEntries)
	if nGroups == 0 {
		return nil, nil
	}
	lutChunkLength := (compressedLUTSize - lutReservedFooter) / nGroups
	if lutChunkLength <= 0 {
		return nil, fmt.Errorf("codec: %w: degenerate lut chunk length", container.ErrOutOfBoundRead)
	}

	var out []uint64
	for g := firstGroup; g <= lastGroup; g++ {
		start := g * lutChunkLength
		end := start + lutChunkLength
		if end > len(compressed) {
			return nil, fmt.Errorf("codec: %w: lut group %d out of bound", container.ErrOutOfBoundRead, g)
		}
		groupStart := g * LUTGroupSize
		groupEnd := min(groupStart+LUTGroupSize, totalEntries)
		vals, err := decodeLUTGroup(compressed[start:end], groupEnd-groupStart)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	return out, nil
}

// GroupRange returns the inclusive [firstGroup, lastGroup] LUT groups
// that cover absolute entry indices [firstEntry, lastEntry].
func GroupRange(firstEntry, lastEntry int) (int, int) {
	return firstEntry / LUTGroupSize, lastEntry / LUTGroupSize
}

// GroupByteRange returns group g's absolute [offset, offset+length) byte
// range within the backend, given the variable's own lutOffset/lutSize
// record fields and its total LUT entry count (totalChunks+1).
func GroupByteRange(lutOffset uint64, lutSize uint64, totalEntries int, group int) (offset, length uint64) {
	nGroups := numLUTGroups(totalEntries)
	lutChunkLength := uint64(int(lutSize)-lutReservedFooter) / uint64(nGroups)
	return lutOffset + uint64(group)*lutChunkLength, lutChunkLength
}

// DecodeOneGroup decodes the bytes of a single LUT group (exactly the
// span GroupByteRange(group) names), given the variable's total LUT
// entry count.
func DecodeOneGroup(src []byte, totalEntries int, group int) ([]uint64, error) {
	groupStart := group * LUTGroupSize
	groupEnd := min(groupStart+LUTGroupSize, totalEntries)
	return decodeLUTGroup(src, groupEnd-groupStart)
}
