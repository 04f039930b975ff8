package codec

import (
	"fmt"

	"github.com/open-meteo/om-file-format/internal/container"
)

// EncodeChunk dispatches to the typed EncodeChunk* function matching
// values' concrete type, centralizing the one switch every caller of
// the convert/filter/compress table (spec section 4.1) would otherwise
// have to repeat.
func EncodeChunk(compression CompressionType, values any, rows, cols int, scale, offset float32, out []byte) ([]byte, error) {
	switch v := values.(type) {
	case []float32:
		return EncodeChunkF32(v, rows, cols, compression, scale, offset, out)
	case []float64:
		return EncodeChunkF64(v, rows, cols, compression, scale, offset, out)
	case []int8:
		return EncodeChunkInt8(v, rows, cols, compression, out)
	case []uint8:
		return EncodeChunkUint8(v, rows, cols, compression, out)
	case []int16:
		return EncodeChunkInt16(v, rows, cols, compression, out)
	case []uint16:
		return EncodeChunkUint16(v, rows, cols, compression, out)
	case []int32:
		return EncodeChunkInt32(v, rows, cols, compression, out)
	case []uint32:
		return EncodeChunkUint32(v, rows, cols, compression, out)
	case []int64:
		return EncodeChunkInt64(v, rows, cols, compression, out)
	case []uint64:
		return EncodeChunkUint64(v, rows, cols, compression, out)
	}
	return nil, fmt.Errorf("codec: %w: unsupported value kind %T", container.ErrInvalidDataType, values)
}

// DecodeChunk is EncodeChunk's inverse: sample determines which typed
// DecodeChunk* function to call and the concrete type of the returned
// any.
func DecodeChunk(compression CompressionType, src []byte, n, rows, cols int, scale, offset float32, sample any) (any, error) {
	switch sample.(type) {
	case []float32:
		return DecodeChunkF32(src, n, rows, cols, compression, scale, offset, make([]float32, 0, n))
	case []float64:
		return DecodeChunkF64(src, n, rows, cols, compression, scale, offset, make([]float64, 0, n))
	case []int8:
		return DecodeChunkInt8(src, n, rows, cols, compression, make([]int8, 0, n))
	case []uint8:
		return DecodeChunkUint8(src, n, rows, cols, compression, make([]uint8, 0, n))
	case []int16:
		return DecodeChunkInt16(src, n, rows, cols, compression, make([]int16, 0, n))
	case []uint16:
		return DecodeChunkUint16(src, n, rows, cols, compression, make([]uint16, 0, n))
	case []int32:
		return DecodeChunkInt32(src, n, rows, cols, compression, make([]int32, 0, n))
	case []uint32:
		return DecodeChunkUint32(src, n, rows, cols, compression, make([]uint32, 0, n))
	case []int64:
		return DecodeChunkInt64(src, n, rows, cols, compression, make([]int64, 0, n))
	case []uint64:
		return DecodeChunkUint64(src, n, rows, cols, compression, make([]uint64, 0, n))
	}
	return nil, fmt.Errorf("codec: %w: unsupported value kind %T", container.ErrInvalidDataType, sample)
}
