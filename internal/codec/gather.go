package codec

import "fmt"

// CopyRun copies runLen elements from src[srcOff:] to dst[dstOff:]; src
// and dst must be one of the ten supported user-facing slice kinds and
// hold the same concrete type. This is the one place VisitChunkOverlap's
// abstract (chunkBufOffset, cubeBufOffset, runLen) triples turn into an
// actual memory copy, for both the encoder's gather-into-scratch path
// and the decoder's scatter-into-output path.
func CopyRun(dst, src any, dstOff, srcOff, runLen uint64) error {
	switch s := src.(type) {
	case []float32:
		d, ok := dst.([]float32)
		if !ok {
			return fmt.Errorf("codec: CopyRun type mismatch: dst is %T, src is %T", dst, src)
		}
		copy(d[dstOff:dstOff+runLen], s[srcOff:srcOff+runLen])
	case []float64:
		d := dst.([]float64)
		copy(d[dstOff:dstOff+runLen], s[srcOff:srcOff+runLen])
	case []int8:
		d := dst.([]int8)
		copy(d[dstOff:dstOff+runLen], s[srcOff:srcOff+runLen])
	case []uint8:
		d := dst.([]uint8)
		copy(d[dstOff:dstOff+runLen], s[srcOff:srcOff+runLen])
	case []int16:
		d := dst.([]int16)
		copy(d[dstOff:dstOff+runLen], s[srcOff:srcOff+runLen])
	case []uint16:
		d := dst.([]uint16)
		copy(d[dstOff:dstOff+runLen], s[srcOff:srcOff+runLen])
	case []int32:
		d := dst.([]int32)
		copy(d[dstOff:dstOff+runLen], s[srcOff:srcOff+runLen])
	case []uint32:
		d := dst.([]uint32)
		copy(d[dstOff:dstOff+runLen], s[srcOff:srcOff+runLen])
	case []int64:
		d := dst.([]int64)
		copy(d[dstOff:dstOff+runLen], s[srcOff:srcOff+runLen])
	case []uint64:
		d := dst.([]uint64)
		copy(d[dstOff:dstOff+runLen], s[srcOff:srcOff+runLen])
	default:
		return fmt.Errorf("codec: CopyRun: unsupported value kind %T", src)
	}
	return nil
}

// NewValues allocates a zero-valued slice of n elements of the kind
// carried by sample (one of the ten supported user-facing types),
// used to size an encoder's scratch chunk buffer or a decoder's output
// cube.
func NewValues(sample any, n int) any {
	switch sample.(type) {
	case []float32:
		return make([]float32, n)
	case []float64:
		return make([]float64, n)
	case []int8:
		return make([]int8, n)
	case []uint8:
		return make([]uint8, n)
	case []int16:
		return make([]int16, n)
	case []uint16:
		return make([]uint16, n)
	case []int32:
		return make([]int32, n)
	case []uint32:
		return make([]uint32, n)
	case []int64:
		return make([]int64, n)
	case []uint64:
		return make([]uint64, n)
	default:
		panic(fmt.Sprintf("codec: NewValues: unsupported value kind %T", sample))
	}
}
