package bitpack

// Each function pair below is one row of spec section 4.1's
// convert/filter/compress table: p4nenc/p4nzenc (unsigned/zig-zag
// signed PForDelta) and fpxenc (FPXor entropy stage, applied after the
// 2-D xor filter has already turned neighbouring floats into small
// bit-pattern deltas — see internal/filter).

// CompressUint8 bit-packs n uint8 values, appending to out.
func CompressUint8(src []uint8, out []byte) []byte {
	vals := make([]uint64, len(src))
	for i, v := range src {
		vals[i] = uint64(v)
	}
	return compressUnsigned(vals, out)
}

func DecompressUint8(src []byte, n int, dst []uint8) ([]uint8, bool) {
	vals, ok := decompressUnsigned(src, n)
	if !ok {
		return dst, false
	}
	for _, v := range vals {
		dst = append(dst, uint8(v))
	}
	return dst, true
}

func CompressInt8(src []int8, out []byte) []byte {
	vals := make([]uint64, len(src))
	for i, v := range src {
		vals[i] = zigzag64(int64(v))
	}
	return compressUnsigned(vals, out)
}

func DecompressInt8(src []byte, n int, dst []int8) ([]int8, bool) {
	vals, ok := decompressUnsigned(src, n)
	if !ok {
		return dst, false
	}
	for _, v := range vals {
		dst = append(dst, int8(unzigzag64(v)))
	}
	return dst, true
}

func CompressUint16(src []uint16, out []byte) []byte {
	vals := make([]uint64, len(src))
	for i, v := range src {
		vals[i] = uint64(v)
	}
	return compressUnsigned(vals, out)
}

func DecompressUint16(src []byte, n int, dst []uint16) ([]uint16, bool) {
	vals, ok := decompressUnsigned(src, n)
	if !ok {
		return dst, false
	}
	for _, v := range vals {
		dst = append(dst, uint16(v))
	}
	return dst, true
}

func CompressInt16(src []int16, out []byte) []byte {
	vals := make([]uint64, len(src))
	for i, v := range src {
		vals[i] = zigzag64(int64(v))
	}
	return compressUnsigned(vals, out)
}

func DecompressInt16(src []byte, n int, dst []int16) ([]int16, bool) {
	vals, ok := decompressUnsigned(src, n)
	if !ok {
		return dst, false
	}
	for _, v := range vals {
		dst = append(dst, int16(unzigzag64(v)))
	}
	return dst, true
}

func CompressUint32(src []uint32, out []byte) []byte {
	vals := make([]uint64, len(src))
	for i, v := range src {
		vals[i] = uint64(v)
	}
	return compressUnsigned(vals, out)
}

func DecompressUint32(src []byte, n int, dst []uint32) ([]uint32, bool) {
	vals, ok := decompressUnsigned(src, n)
	if !ok {
		return dst, false
	}
	for _, v := range vals {
		dst = append(dst, uint32(v))
	}
	return dst, true
}

func CompressInt32(src []int32, out []byte) []byte {
	vals := make([]uint64, len(src))
	for i, v := range src {
		vals[i] = zigzag64(int64(v))
	}
	return compressUnsigned(vals, out)
}

func DecompressInt32(src []byte, n int, dst []int32) ([]int32, bool) {
	vals, ok := decompressUnsigned(src, n)
	if !ok {
		return dst, false
	}
	for _, v := range vals {
		dst = append(dst, int32(unzigzag64(v)))
	}
	return dst, true
}

func CompressUint64(src []uint64, out []byte) []byte {
	return compressUnsigned(src, out)
}

func DecompressUint64(src []byte, n int, dst []uint64) ([]uint64, bool) {
	vals, ok := decompressUnsigned(src, n)
	if !ok {
		return dst, false
	}
	return append(dst, vals...), true
}

func CompressInt64(src []int64, out []byte) []byte {
	vals := make([]uint64, len(src))
	for i, v := range src {
		vals[i] = zigzag64(v)
	}
	return compressUnsigned(vals, out)
}

func DecompressInt64(src []byte, n int, dst []int64) ([]int64, bool) {
	vals, ok := decompressUnsigned(src, n)
	if !ok {
		return dst, false
	}
	for _, v := range vals {
		dst = append(dst, unzigzag64(v))
	}
	return dst, true
}

// CompressFPXor32/64 entropy-code the already-xor-filtered bit patterns
// (see internal/filter.XOR2D) with the same block bit-packer: a run of
// small deltas from a slowly varying series xors down to mostly leading
// zero bytes, which is exactly what the fixed-width block packer
// exploits.
func CompressFPXor32(src []uint32, out []byte) []byte { return CompressUint32(src, out) }

func DecompressFPXor32(src []byte, n int, dst []uint32) ([]uint32, bool) {
	return DecompressUint32(src, n, dst)
}

func CompressFPXor64(src []uint64, out []byte) []byte { return CompressUint64(src, out) }

func DecompressFPXor64(src []byte, n int, dst []uint64) ([]uint64, bool) {
	return DecompressUint64(src, n, dst)
}
