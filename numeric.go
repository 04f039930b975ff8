package omfile

import (
	"encoding/binary"
	"math"
)

// Numeric is the set of element types a Variable's chunked array payload
// may hold (spec section 2's data-type table, excluding the string
// variants, which never have a chunked representation).
type Numeric interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// arrayTypeForSample returns the DataType an array Variable of element
// type T must carry.
func arrayTypeForSample[T Numeric]() DataType {
	var z T
	switch any(z).(type) {
	case int8:
		return DataTypeInt8Array
	case uint8:
		return DataTypeUint8Array
	case int16:
		return DataTypeInt16Array
	case uint16:
		return DataTypeUint16Array
	case int32:
		return DataTypeInt32Array
	case uint32:
		return DataTypeUint32Array
	case int64:
		return DataTypeInt64Array
	case uint64:
		return DataTypeUint64Array
	case float32:
		return DataTypeFloatArray
	case float64:
		return DataTypeDoubleArray
	default:
		return DataTypeNone
	}
}

// scalarTypeForSample returns the DataType a scalar Variable of element
// type T must carry.
func scalarTypeForSample[T Numeric]() DataType {
	var z T
	switch any(z).(type) {
	case int8:
		return DataTypeInt8
	case uint8:
		return DataTypeUint8
	case int16:
		return DataTypeInt16
	case uint16:
		return DataTypeUint16
	case int32:
		return DataTypeInt32
	case uint32:
		return DataTypeUint32
	case int64:
		return DataTypeInt64
	case uint64:
		return DataTypeUint64
	case float32:
		return DataTypeFloat
	case float64:
		return DataTypeDouble
	default:
		return DataTypeNone
	}
}

// byteSize returns sizeof(T) for a Numeric T, little-endian on disk.
func byteSize[T Numeric]() int {
	var z T
	switch any(z).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	case int64, uint64, float64:
		return 8
	default:
		return 0
	}
}

// decodeTyped decodes a little-endian scalar payload as T. raw must have
// at least byteSize[T]() bytes.
func decodeTyped[T Numeric](raw []byte) T {
	var z T
	switch p := any(&z).(type) {
	case *int8:
		*p = int8(raw[0])
	case *uint8:
		*p = raw[0]
	case *int16:
		*p = int16(binary.LittleEndian.Uint16(raw))
	case *uint16:
		*p = binary.LittleEndian.Uint16(raw)
	case *int32:
		*p = int32(binary.LittleEndian.Uint32(raw))
	case *uint32:
		*p = binary.LittleEndian.Uint32(raw)
	case *int64:
		*p = int64(binary.LittleEndian.Uint64(raw))
	case *uint64:
		*p = binary.LittleEndian.Uint64(raw)
	case *float32:
		*p = math.Float32frombits(binary.LittleEndian.Uint32(raw))
	case *float64:
		*p = math.Float64frombits(binary.LittleEndian.Uint64(raw))
	}
	return z
}

// encodeTyped appends T's little-endian scalar encoding to buf.
func encodeTyped[T Numeric](buf []byte, v T) []byte {
	switch x := any(v).(type) {
	case int8:
		return append(buf, byte(x))
	case uint8:
		return append(buf, x)
	case int16:
		return binary.LittleEndian.AppendUint16(buf, uint16(x))
	case uint16:
		return binary.LittleEndian.AppendUint16(buf, x)
	case int32:
		return binary.LittleEndian.AppendUint32(buf, uint32(x))
	case uint32:
		return binary.LittleEndian.AppendUint32(buf, x)
	case int64:
		return binary.LittleEndian.AppendUint64(buf, uint64(x))
	case uint64:
		return binary.LittleEndian.AppendUint64(buf, x)
	case float32:
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(x))
	case float64:
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(x))
	default:
		return buf
	}
}
