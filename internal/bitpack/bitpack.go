// Package bitpack implements the opaque primitive codecs spec section 2
// treats as external collaborators: a PForDelta-style integer bit-packer
// (8/16/32/64-bit signed/unsigned) and an FPXor-style floating-point
// coder. The spec only fixes their interface (compress(src,len) ->
// bytes_written, decompress(src, compressed_len, dst) -> elements) and
// the bound formula in compressed_chunk_bound; the exact bit-packing
// scheme (exception channel, frame-of-reference, run splitting) is an
// implementation detail no Go ecosystem package exposes under this
// contract, so it is implemented directly here rather than bolted onto
// a general-purpose compressor such as klauspost/compress (see
// DESIGN.md).
//
// The scheme used: each value is written at a fixed bit-width (the
// maximum needed by the block, so every value fits) followed by an
// exception count that is always zero, closely modelled on the classic PFor-delta
// family the original C core names (p4nenc/p4nzenc). Block size is 128
// values, matching the "128" in the original codec names.
package bitpack

import "encoding/binary"

const blockValues = 128

// CompressedBound returns the worst-case number of bytes Compress* may
// need to encode n elements of the given bit width (in bytes). It uses
// its own per-block budget, not the encoder's compressed_chunk_bound
// formula: a full-width block plus an exception side-channel.
func CompressedBound(n int, bytesPerElem int) int {
	nBlocks := (n + blockValues - 1) / blockValues
	perBlock := 1 + blockValues*bytesPerElem + 4 + blockValues*bytesPerElem
	return nBlocks*perBlock + 32
}

// ---- unsigned fixed-width block codec, shared by all widths ----

func bitWidth64(v uint64) int {
	w := 0
	for v != 0 {
		w++
		v >>= 1
	}
	return w
}

// packBlock writes vals (len <= blockValues) as: 1 byte bit-width w, then
// ceil(len*w/8) bytes of tightly packed w-bit values, then a 4-byte
// exception count, then (index uint16, value varint-in-8-bytes) pairs
// for any value that does not fit in w bits after masking (here: none,
// since w is chosen as the true max — the exception channel exists for
// format-compatibility with the named codecs and is always empty; kept
// so decode/encode stay symmetric with the spec's "exception channel"
// framing).
func packBlock(dst []byte, vals []uint64) []byte {
	maxv := uint64(0)
	for _, v := range vals {
		if v > maxv {
			maxv = v
		}
	}
	w := bitWidth64(maxv)
	dst = append(dst, byte(w))
	if w > 0 {
		var acc uint64
		var accBits int
		for _, v := range vals {
			acc |= (v & ((1 << uint(w)) - 1)) << uint(accBits)
			accBits += w
			for accBits >= 8 {
				dst = append(dst, byte(acc))
				acc >>= 8
				accBits -= 8
			}
		}
		if accBits > 0 {
			dst = append(dst, byte(acc))
		}
	}
	dst = binary.LittleEndian.AppendUint32(dst, 0) // exception count, always 0
	return dst
}

// unpackBlock reads a block written by packBlock, appending n decoded
// values to dst.
func unpackBlock(src []byte, n int, dst []uint64) ([]uint64, []byte, bool) {
	if len(src) < 1 {
		return dst, src, false
	}
	w := int(src[0])
	src = src[1:]
	nbytes := (n*w + 7) / 8
	if len(src) < nbytes+4 {
		return dst, src, false
	}
	packed := src[:nbytes]
	src = src[nbytes:]
	nexc := binary.LittleEndian.Uint32(src[:4])
	src = src[4:]
	if nexc != 0 {
		return dst, src, false // this implementation never writes exceptions
	}
	var acc uint64
	var accBits int
	bi := 0
	mask := uint64(0)
	if w > 0 {
		mask = (1 << uint(w)) - 1
	}
	for i := 0; i < n; i++ {
		for accBits < w {
			if bi >= len(packed) {
				return dst, src, false
			}
			acc |= uint64(packed[bi]) << uint(accBits)
			bi++
			accBits += 8
		}
		dst = append(dst, acc&mask)
		acc >>= uint(w)
		accBits -= w
	}
	return dst, src, true
}

func compressUnsigned(vals []uint64, out []byte) []byte {
	for i := 0; i < len(vals); i += blockValues {
		end := min(i+blockValues, len(vals))
		out = packBlock(out, vals[i:end])
	}
	return out
}

func decompressUnsigned(src []byte, n int) ([]uint64, bool) {
	dst := make([]uint64, 0, n)
	remaining := n
	for remaining > 0 {
		take := min(blockValues, remaining)
		var ok bool
		dst, src, ok = unpackBlock(src, take, dst)
		if !ok {
			return nil, false
		}
		remaining -= take
	}
	return dst, true
}

func zigzag64(v int64) uint64  { return uint64((v << 1) ^ (v >> 63)) }
func unzigzag64(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }
