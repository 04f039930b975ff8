package omfile

import "github.com/open-meteo/om-file-format/internal/container"

// DataType tags the payload interpretation of a Variable record (spec
// section 3). Aliased from internal/container, which owns the
// canonical definition so the container and root packages never
// disagree on numeric values or validity (container cannot import this
// package, so the direction of truth runs root -> container).
type DataType = container.DataType

const (
	DataTypeNone        = container.DataTypeNone
	DataTypeInt8        = container.DataTypeInt8
	DataTypeUint8       = container.DataTypeUint8
	DataTypeInt16       = container.DataTypeInt16
	DataTypeUint16      = container.DataTypeUint16
	DataTypeInt32       = container.DataTypeInt32
	DataTypeUint32      = container.DataTypeUint32
	DataTypeInt64       = container.DataTypeInt64
	DataTypeUint64      = container.DataTypeUint64
	DataTypeFloat       = container.DataTypeFloat
	DataTypeDouble      = container.DataTypeDouble
	DataTypeString      = container.DataTypeString
	DataTypeStringArray = container.DataTypeStringArray
	DataTypeInt8Array   = container.DataTypeInt8Array
	DataTypeUint8Array  = container.DataTypeUint8Array
	DataTypeInt16Array  = container.DataTypeInt16Array
	DataTypeUint16Array = container.DataTypeUint16Array
	DataTypeInt32Array  = container.DataTypeInt32Array
	DataTypeUint32Array = container.DataTypeUint32Array
	DataTypeInt64Array  = container.DataTypeInt64Array
	DataTypeUint64Array = container.DataTypeUint64Array
	DataTypeFloatArray  = container.DataTypeFloatArray
	DataTypeDoubleArray = container.DataTypeDoubleArray
)

// dataTypeString names a DataType for logging/Describe; kept here
// rather than on the aliased type since container has no use for
// human-readable names.
func dataTypeString(d DataType) string {
	switch d {
	case DataTypeNone:
		return "none"
	case DataTypeInt8:
		return "int8"
	case DataTypeUint8:
		return "uint8"
	case DataTypeInt16:
		return "int16"
	case DataTypeUint16:
		return "uint16"
	case DataTypeInt32:
		return "int32"
	case DataTypeUint32:
		return "uint32"
	case DataTypeInt64:
		return "int64"
	case DataTypeUint64:
		return "uint64"
	case DataTypeFloat:
		return "float"
	case DataTypeDouble:
		return "double"
	case DataTypeString:
		return "string"
	case DataTypeStringArray:
		return "string_array"
	case DataTypeInt8Array:
		return "int8_array"
	case DataTypeUint8Array:
		return "uint8_array"
	case DataTypeInt16Array:
		return "int16_array"
	case DataTypeUint16Array:
		return "uint16_array"
	case DataTypeInt32Array:
		return "int32_array"
	case DataTypeUint32Array:
		return "uint32_array"
	case DataTypeInt64Array:
		return "int64_array"
	case DataTypeUint64Array:
		return "uint64_array"
	case DataTypeFloatArray:
		return "float_array"
	case DataTypeDoubleArray:
		return "double_array"
	default:
		return "unknown"
	}
}

// CompressionType selects the convert/filter/entropy triple used by an
// array variable (spec section 4.1 table). Aliased from
// internal/container for the same reason as DataType.
type CompressionType = container.CompressionType

const (
	CompressionPForDelta2D           = container.CompressionPForDelta2D
	CompressionPForDelta2DInt16      = container.CompressionPForDelta2DInt16
	CompressionPForDelta2DInt16Log10 = container.CompressionPForDelta2DInt16Log10
	CompressionFPXor2D               = container.CompressionFPXor2D
)

func compressionTypeString(c CompressionType) string {
	switch c {
	case CompressionPForDelta2D:
		return "PForDelta2D"
	case CompressionPForDelta2DInt16:
		return "PForDelta2D-Int16"
	case CompressionPForDelta2DInt16Log10:
		return "PForDelta2D-Int16-log10"
	case CompressionFPXor2D:
		return "FPXor2D"
	default:
		return "unknown"
	}
}

// ChildPointer is a (offset, size) back-pointer to another variable
// record already written earlier in the same file.
type ChildPointer = container.ChildPointer

// Variable is the in-memory view of one on-disk variable record: either
// a scalar (a fixed-width or length-prefixed payload) or an array (chunk
// geometry plus a LUT pointer). Decoded lazily by the Reader from the
// bytes of a single record.
type Variable struct {
	DataType DataType
	Name     string
	Children []ChildPointer

	// Scalar payload, present only when !DataType.IsArray() && DataType != DataTypeNone.
	ScalarBytes []byte

	// Array fields, present only when DataType.IsArray().
	Dimensions  []uint64
	Chunks      []uint64
	Compression CompressionType
	ScaleFactor float32
	AddOffset   float32
	LUTOffset   uint64
	LUTSize     uint64

	// childByHash and resolvedChildren cache Reader.ChildByName's work:
	// ChildPointer carries no Name, so the only way to learn a child's
	// name is to read its record once. Built lazily, on a variable's
	// first ChildByName call, from then on every lookup (hit or miss)
	// is index-only.
	childByHash      map[uint64][]int
	resolvedChildren []*Variable
}

// TotalChunks returns product(ceil(dims[i]/chunks[i])) (spec section 3
// invariant). Callers must ensure DataType.IsArray().
func (v *Variable) TotalChunks() uint64 {
	total := uint64(1)
	for i := range v.Dimensions {
		total *= ceilDiv(v.Dimensions[i], v.Chunks[i])
	}
	return total
}

// ChunksPerDim returns ceil(dims[i]/chunks[i]) for every axis.
func (v *Variable) ChunksPerDim() []uint64 {
	out := make([]uint64, len(v.Dimensions))
	for i := range v.Dimensions {
		out[i] = ceilDiv(v.Dimensions[i], v.Chunks[i])
	}
	return out
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// variableFromRecord wraps a decoded container.Record with Variable's
// navigation behaviour.
func variableFromRecord(rec container.Record) *Variable {
	return &Variable{
		DataType:    rec.DataType,
		Name:        rec.Name,
		Children:    rec.Children,
		ScalarBytes: rec.ScalarBytes,
		Dimensions:  rec.Dimensions,
		Chunks:      rec.Chunks,
		Compression: rec.Compression,
		ScaleFactor: rec.ScaleFactor,
		AddOffset:   rec.AddOffset,
		LUTOffset:   rec.LUTOffset,
		LUTSize:     rec.LUTSize,
	}
}
