package container

// DataType tags the payload interpretation of a Variable record (spec
// section 3). Numeric values match the on-disk byte so records can be
// switched on directly.
type DataType uint8

const (
	DataTypeNone DataType = iota
	DataTypeInt8
	DataTypeUint8
	DataTypeInt16
	DataTypeUint16
	DataTypeInt32
	DataTypeUint32
	DataTypeInt64
	DataTypeUint64
	DataTypeFloat
	DataTypeDouble
	DataTypeString
	DataTypeStringArray
	DataTypeInt8Array
	DataTypeUint8Array
	DataTypeInt16Array
	DataTypeUint16Array
	DataTypeInt32Array
	DataTypeUint32Array
	DataTypeInt64Array
	DataTypeUint64Array
	DataTypeFloatArray
	DataTypeDoubleArray
)

func (d DataType) IsArray() bool {
	switch d {
	case DataTypeStringArray, DataTypeInt8Array, DataTypeUint8Array,
		DataTypeInt16Array, DataTypeUint16Array, DataTypeInt32Array,
		DataTypeUint32Array, DataTypeInt64Array, DataTypeUint64Array,
		DataTypeFloatArray, DataTypeDoubleArray:
		return true
	}
	return false
}

func (d DataType) Valid() bool { return d <= DataTypeDoubleArray }

// CompressionType selects the convert/filter/entropy triple used by an
// array variable (spec section 4.1 table).
type CompressionType uint8

const (
	CompressionPForDelta2D CompressionType = iota
	CompressionPForDelta2DInt16
	CompressionPForDelta2DInt16Log10
	CompressionFPXor2D
)

func (c CompressionType) Valid() bool { return c <= CompressionFPXor2D }

// ChildPointer is a (offset, size) back-pointer to another variable
// record already written earlier in the same file.
type ChildPointer struct {
	Offset uint64
	Size   uint64
}

// Record is the fully decoded content of one variable record, in the
// shape records.go reads/writes it. Higher layers (the root package's
// Variable) wrap this with navigation behaviour.
type Record struct {
	DataType    DataType
	Name        string
	Children    []ChildPointer
	ScalarBytes []byte

	Dimensions  []uint64
	Chunks      []uint64
	Compression CompressionType
	ScaleFactor float32
	AddOffset   float32
	LUTOffset   uint64
	LUTSize     uint64
}
