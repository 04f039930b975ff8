package codec

import (
	"fmt"
	"math"

	"github.com/open-meteo/om-file-format/internal/bitpack"
	"github.com/open-meteo/om-file-format/internal/container"
	"github.com/open-meteo/om-file-format/internal/convert"
	"github.com/open-meteo/om-file-format/internal/filter"
)

// DataType/CompressionType aliases so callers of this package never
// need to import internal/container directly.
type (
	DataType        = container.DataType
	CompressionType = container.CompressionType
)

// BytesPerStoredElem returns the on-disk element width for the
// (dataType, compression) pair, per the convert/filter/compress table
// in spec section 4.1.
func BytesPerStoredElem(dataType DataType, compression CompressionType) (int, error) {
	switch dataType {
	case container.DataTypeFloatArray:
		switch compression {
		case container.CompressionPForDelta2DInt16, container.CompressionPForDelta2DInt16Log10:
			return 2, nil
		case container.CompressionFPXor2D:
			return 4, nil
		case container.CompressionPForDelta2D:
			return 4, nil
		}
	case container.DataTypeDoubleArray:
		switch compression {
		case container.CompressionFPXor2D:
			return 8, nil
		case container.CompressionPForDelta2D:
			return 8, nil
		}
	case container.DataTypeInt8Array, container.DataTypeUint8Array:
		if compression == container.CompressionPForDelta2D {
			return 1, nil
		}
	case container.DataTypeInt16Array, container.DataTypeUint16Array:
		if compression == container.CompressionPForDelta2D {
			return 2, nil
		}
	case container.DataTypeInt32Array, container.DataTypeUint32Array:
		if compression == container.CompressionPForDelta2D {
			return 4, nil
		}
	case container.DataTypeInt64Array, container.DataTypeUint64Array:
		if compression == container.CompressionPForDelta2D {
			return 8, nil
		}
	}
	return 0, fmt.Errorf("codec: %w: data type %v does not support compression %v", container.ErrInvalidCompressionType, dataType, compression)
}

// CompressedChunkBound implements spec section 4.1's
// compressed_chunk_bound() formula, with its "+32" and "(n+255)/256"
// terms. Nothing in this module calls it: the encoder compresses into a
// fresh slice and hands the finished bytes to BufWriter.Write. It does
// not bound internal/bitpack's output, whose blocks carry 5 header
// bytes per 128 values; bitpack.CompressedBound is that coder's own
// worst case.
func CompressedChunkBound(chunkElems int, bytesPerElemStored int) int {
	return (chunkElems+255)/256 + (chunkElems+32)*bytesPerElemStored
}

// EncodeChunkF32 compresses a fully-gathered float32 chunk buffer
// (length rows*cols, zero-padded at an edge chunk) per the row of spec
// section 4.1's table selected by compression, appending to out.
func EncodeChunkF32(values []float32, rows, cols int, compression CompressionType, scale, offset float32, out []byte) ([]byte, error) {
	switch compression {
	case container.CompressionPForDelta2DInt16:
		ints := make([]int16, len(values))
		for i, v := range values {
			ints[i] = convert.FloatToInt16(v, scale, offset)
		}
		filter.DeltaEncodeInt16(ints, rows, cols)
		return bitpack.CompressInt16(ints, out), nil
	case container.CompressionPForDelta2DInt16Log10:
		ints := make([]int16, len(values))
		for i, v := range values {
			ints[i] = convert.FloatToInt16Log10(v, scale, offset)
		}
		filter.DeltaEncodeInt16(ints, rows, cols)
		return bitpack.CompressInt16(ints, out), nil
	case container.CompressionPForDelta2D:
		ints := make([]int32, len(values))
		for i, v := range values {
			ints[i] = convert.FloatToInt32(v, scale, offset)
		}
		filter.DeltaEncodeInt32(ints, rows, cols)
		return bitpack.CompressInt32(ints, out), nil
	case container.CompressionFPXor2D:
		bits := make([]uint32, len(values))
		for i, v := range values {
			bits[i] = math.Float32bits(v)
		}
		filter.XOR2D32(bits, rows, cols)
		return bitpack.CompressFPXor32(bits, out), nil
	}
	return nil, fmt.Errorf("codec: %w: float32 chunk with compression %v", container.ErrInvalidCompressionType, compression)
}

// DecodeChunkF32 is EncodeChunkF32's inverse: decompress, un-filter,
// un-convert, appending n user-space float32 values to dst.
func DecodeChunkF32(src []byte, n, rows, cols int, compression CompressionType, scale, offset float32, dst []float32) ([]float32, error) {
	switch compression {
	case container.CompressionPForDelta2DInt16:
		ints, ok := bitpack.DecompressInt16(src, n, make([]int16, 0, n))
		if !ok {
			return dst, fmt.Errorf("codec: %w: int16 block decode", container.ErrDeflatedSizeMismatch)
		}
		filter.DeltaDecodeInt16(ints, rows, cols)
		for _, v := range ints {
			dst = append(dst, convert.Int16ToFloat(v, scale, offset))
		}
		return dst, nil
	case container.CompressionPForDelta2DInt16Log10:
		ints, ok := bitpack.DecompressInt16(src, n, make([]int16, 0, n))
		if !ok {
			return dst, fmt.Errorf("codec: %w: int16-log10 block decode", container.ErrDeflatedSizeMismatch)
		}
		filter.DeltaDecodeInt16(ints, rows, cols)
		for _, v := range ints {
			dst = append(dst, convert.Int16Log10ToFloat(v, scale, offset))
		}
		return dst, nil
	case container.CompressionPForDelta2D:
		ints, ok := bitpack.DecompressInt32(src, n, make([]int32, 0, n))
		if !ok {
			return dst, fmt.Errorf("codec: %w: int32 block decode", container.ErrDeflatedSizeMismatch)
		}
		filter.DeltaDecodeInt32(ints, rows, cols)
		for _, v := range ints {
			dst = append(dst, convert.Int32ToFloat(v, scale, offset))
		}
		return dst, nil
	case container.CompressionFPXor2D:
		bits, ok := bitpack.DecompressFPXor32(src, n, make([]uint32, 0, n))
		if !ok {
			return dst, fmt.Errorf("codec: %w: fpxor32 block decode", container.ErrDeflatedSizeMismatch)
		}
		filter.XOR2D32Inverse(bits, rows, cols)
		for _, v := range bits {
			dst = append(dst, math.Float32frombits(v))
		}
		return dst, nil
	}
	return dst, fmt.Errorf("codec: %w: float32 chunk with compression %v", container.ErrInvalidCompressionType, compression)
}

// EncodeChunkF64 is EncodeChunkF32's double-precision counterpart,
// covering the table's double rows (FPXor2D and PForDelta2D only — no
// int16 variants exist for doubles).
func EncodeChunkF64(values []float64, rows, cols int, compression CompressionType, scale, offset float32, out []byte) ([]byte, error) {
	switch compression {
	case container.CompressionPForDelta2D:
		ints := make([]int64, len(values))
		for i, v := range values {
			ints[i] = convert.DoubleToInt64(v, scale, offset)
		}
		filter.DeltaEncodeInt64(ints, rows, cols)
		return bitpack.CompressInt64(ints, out), nil
	case container.CompressionFPXor2D:
		bits := make([]uint64, len(values))
		for i, v := range values {
			bits[i] = math.Float64bits(v)
		}
		filter.XOR2D64(bits, rows, cols)
		return bitpack.CompressFPXor64(bits, out), nil
	}
	return nil, fmt.Errorf("codec: %w: double chunk with compression %v", container.ErrInvalidCompressionType, compression)
}

func DecodeChunkF64(src []byte, n, rows, cols int, compression CompressionType, scale, offset float32, dst []float64) ([]float64, error) {
	switch compression {
	case container.CompressionPForDelta2D:
		ints, ok := bitpack.DecompressInt64(src, n, make([]int64, 0, n))
		if !ok {
			return dst, fmt.Errorf("codec: %w: int64 block decode", container.ErrDeflatedSizeMismatch)
		}
		filter.DeltaDecodeInt64(ints, rows, cols)
		for _, v := range ints {
			dst = append(dst, convert.Int64ToDouble(v, scale, offset))
		}
		return dst, nil
	case container.CompressionFPXor2D:
		bits, ok := bitpack.DecompressFPXor64(src, n, make([]uint64, 0, n))
		if !ok {
			return dst, fmt.Errorf("codec: %w: fpxor64 block decode", container.ErrDeflatedSizeMismatch)
		}
		filter.XOR2D64Inverse(bits, rows, cols)
		for _, v := range bits {
			dst = append(dst, math.Float64frombits(v))
		}
		return dst, nil
	}
	return dst, fmt.Errorf("codec: %w: double chunk with compression %v", container.ErrInvalidCompressionType, compression)
}

// EncodeChunkInt8/Uint8/... implement the table's integer rows: memcpy
// convert (identity), delta2d_int{N} filter, then bitpack's zig-zag
// coder for every type (unsigned values are reinterpreted as the signed
// type of the same width first). Only
// PForDelta2D is valid for integer data types.

func EncodeChunkInt8(values []int8, rows, cols int, compression CompressionType, out []byte) ([]byte, error) {
	if compression != container.CompressionPForDelta2D {
		return nil, fmt.Errorf("codec: %w: int8 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	buf := append([]int8(nil), values...)
	filter.DeltaEncodeInt8(buf, rows, cols)
	return bitpack.CompressInt8(buf, out), nil
}

func DecodeChunkInt8(src []byte, n, rows, cols int, compression CompressionType, dst []int8) ([]int8, error) {
	if compression != container.CompressionPForDelta2D {
		return dst, fmt.Errorf("codec: %w: int8 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints, ok := bitpack.DecompressInt8(src, n, make([]int8, 0, n))
	if !ok {
		return dst, fmt.Errorf("codec: %w: int8 block decode", container.ErrDeflatedSizeMismatch)
	}
	filter.DeltaDecodeInt8(ints, rows, cols)
	return append(dst, ints...), nil
}

func EncodeChunkUint8(values []uint8, rows, cols int, compression CompressionType, out []byte) ([]byte, error) {
	if compression != container.CompressionPForDelta2D {
		return nil, fmt.Errorf("codec: %w: uint8 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints := make([]int8, len(values))
	for i, v := range values {
		ints[i] = int8(v)
	}
	filter.DeltaEncodeInt8(ints, rows, cols)
	return bitpack.CompressInt8(ints, out), nil
}

func DecodeChunkUint8(src []byte, n, rows, cols int, compression CompressionType, dst []uint8) ([]uint8, error) {
	if compression != container.CompressionPForDelta2D {
		return dst, fmt.Errorf("codec: %w: uint8 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints, ok := bitpack.DecompressInt8(src, n, make([]int8, 0, n))
	if !ok {
		return dst, fmt.Errorf("codec: %w: uint8 block decode", container.ErrDeflatedSizeMismatch)
	}
	filter.DeltaDecodeInt8(ints, rows, cols)
	for _, v := range ints {
		dst = append(dst, uint8(v))
	}
	return dst, nil
}

func EncodeChunkInt16(values []int16, rows, cols int, compression CompressionType, out []byte) ([]byte, error) {
	if compression != container.CompressionPForDelta2D {
		return nil, fmt.Errorf("codec: %w: int16 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	buf := append([]int16(nil), values...)
	filter.DeltaEncodeInt16(buf, rows, cols)
	return bitpack.CompressInt16(buf, out), nil
}

func DecodeChunkInt16(src []byte, n, rows, cols int, compression CompressionType, dst []int16) ([]int16, error) {
	if compression != container.CompressionPForDelta2D {
		return dst, fmt.Errorf("codec: %w: int16 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints, ok := bitpack.DecompressInt16(src, n, make([]int16, 0, n))
	if !ok {
		return dst, fmt.Errorf("codec: %w: int16 block decode", container.ErrDeflatedSizeMismatch)
	}
	filter.DeltaDecodeInt16(ints, rows, cols)
	return append(dst, ints...), nil
}

func EncodeChunkUint16(values []uint16, rows, cols int, compression CompressionType, out []byte) ([]byte, error) {
	if compression != container.CompressionPForDelta2D {
		return nil, fmt.Errorf("codec: %w: uint16 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints := make([]int16, len(values))
	for i, v := range values {
		ints[i] = int16(v)
	}
	filter.DeltaEncodeInt16(ints, rows, cols)
	return bitpack.CompressInt16(ints, out), nil
}

func DecodeChunkUint16(src []byte, n, rows, cols int, compression CompressionType, dst []uint16) ([]uint16, error) {
	if compression != container.CompressionPForDelta2D {
		return dst, fmt.Errorf("codec: %w: uint16 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints, ok := bitpack.DecompressInt16(src, n, make([]int16, 0, n))
	if !ok {
		return dst, fmt.Errorf("codec: %w: uint16 block decode", container.ErrDeflatedSizeMismatch)
	}
	filter.DeltaDecodeInt16(ints, rows, cols)
	for _, v := range ints {
		dst = append(dst, uint16(v))
	}
	return dst, nil
}

func EncodeChunkInt32(values []int32, rows, cols int, compression CompressionType, out []byte) ([]byte, error) {
	if compression != container.CompressionPForDelta2D {
		return nil, fmt.Errorf("codec: %w: int32 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	buf := append([]int32(nil), values...)
	filter.DeltaEncodeInt32(buf, rows, cols)
	return bitpack.CompressInt32(buf, out), nil
}

func DecodeChunkInt32(src []byte, n, rows, cols int, compression CompressionType, dst []int32) ([]int32, error) {
	if compression != container.CompressionPForDelta2D {
		return dst, fmt.Errorf("codec: %w: int32 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints, ok := bitpack.DecompressInt32(src, n, make([]int32, 0, n))
	if !ok {
		return dst, fmt.Errorf("codec: %w: int32 block decode", container.ErrDeflatedSizeMismatch)
	}
	filter.DeltaDecodeInt32(ints, rows, cols)
	return append(dst, ints...), nil
}

func EncodeChunkUint32(values []uint32, rows, cols int, compression CompressionType, out []byte) ([]byte, error) {
	if compression != container.CompressionPForDelta2D {
		return nil, fmt.Errorf("codec: %w: uint32 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints := make([]int32, len(values))
	for i, v := range values {
		ints[i] = int32(v)
	}
	filter.DeltaEncodeInt32(ints, rows, cols)
	return bitpack.CompressInt32(ints, out), nil
}

func DecodeChunkUint32(src []byte, n, rows, cols int, compression CompressionType, dst []uint32) ([]uint32, error) {
	if compression != container.CompressionPForDelta2D {
		return dst, fmt.Errorf("codec: %w: uint32 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints, ok := bitpack.DecompressInt32(src, n, make([]int32, 0, n))
	if !ok {
		return dst, fmt.Errorf("codec: %w: uint32 block decode", container.ErrDeflatedSizeMismatch)
	}
	filter.DeltaDecodeInt32(ints, rows, cols)
	for _, v := range ints {
		dst = append(dst, uint32(v))
	}
	return dst, nil
}

func EncodeChunkInt64(values []int64, rows, cols int, compression CompressionType, out []byte) ([]byte, error) {
	if compression != container.CompressionPForDelta2D {
		return nil, fmt.Errorf("codec: %w: int64 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	buf := append([]int64(nil), values...)
	filter.DeltaEncodeInt64(buf, rows, cols)
	return bitpack.CompressInt64(buf, out), nil
}

func DecodeChunkInt64(src []byte, n, rows, cols int, compression CompressionType, dst []int64) ([]int64, error) {
	if compression != container.CompressionPForDelta2D {
		return dst, fmt.Errorf("codec: %w: int64 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints, ok := bitpack.DecompressInt64(src, n, make([]int64, 0, n))
	if !ok {
		return dst, fmt.Errorf("codec: %w: int64 block decode", container.ErrDeflatedSizeMismatch)
	}
	filter.DeltaDecodeInt64(ints, rows, cols)
	return append(dst, ints...), nil
}

func EncodeChunkUint64(values []uint64, rows, cols int, compression CompressionType, out []byte) ([]byte, error) {
	if compression != container.CompressionPForDelta2D {
		return nil, fmt.Errorf("codec: %w: uint64 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints := make([]int64, len(values))
	for i, v := range values {
		ints[i] = int64(v)
	}
	filter.DeltaEncodeInt64(ints, rows, cols)
	return bitpack.CompressInt64(ints, out), nil
}

func DecodeChunkUint64(src []byte, n, rows, cols int, compression CompressionType, dst []uint64) ([]uint64, error) {
	if compression != container.CompressionPForDelta2D {
		return dst, fmt.Errorf("codec: %w: uint64 chunk with compression %v", container.ErrInvalidCompressionType, compression)
	}
	ints, ok := bitpack.DecompressInt64(src, n, make([]int64, 0, n))
	if !ok {
		return dst, fmt.Errorf("codec: %w: uint64 block decode", container.ErrDeflatedSizeMismatch)
	}
	filter.DeltaDecodeInt64(ints, rows, cols)
	for _, v := range ints {
		dst = append(dst, uint64(v))
	}
	return dst, nil
}
