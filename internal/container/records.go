package container

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/open-meteo/om-file-format/backend"
)

// Scalar record layout (spec section 4.4), little-endian, padded to
// ScalarAlign:
//
//	type            u8
//	reserved        u8   (always 0; keeps the header 8-byte friendly)
//	children_count  u32
//	name_length     u16
//	name_bytes      [name_length]byte
//	(child_offset u64, child_size u64) * children_count
//	payload_bytes   (bytes_per_type, or u32 length + bytes for strings)
//
// Array record layout, padded to ArrayAlign:
//
//	type            u8
//	compression     u8
//	reserved        u16
//	scale_factor    f32 (as u32 bits)
//	add_offset      f32 (as u32 bits)
//	rank            u64
//	dimensions      [rank]u64
//	chunks          [rank]u64
//	lut_size        u64
//	lut_offset      u64
//	children_count  u32
//	name_length     u16
//	reserved2       u16
//	(child_offset u64, child_size u64) * children_count
//	name_bytes      [name_length]byte

// WriteScalarRecord writes rec (DataType must not be IsArray()) through
// w, aligns to ScalarAlign, and returns (offset, size) of the record.
func WriteScalarRecord(ctx context.Context, w *BufWriter, rec Record) (offset, size uint64, err error) {
	if rec.DataType.IsArray() {
		return 0, 0, fmt.Errorf("container: WriteScalarRecord given array data type %d", rec.DataType)
	}
	start := w.TotalBytesWritten()

	hdr := make([]byte, 0, 8+2+len(rec.Name)+16*len(rec.Children))
	hdr = append(hdr, byte(rec.DataType), 0)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(rec.Children)))
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(len(rec.Name)))
	hdr = append(hdr, rec.Name...)
	for _, c := range rec.Children {
		hdr = binary.LittleEndian.AppendUint64(hdr, c.Offset)
		hdr = binary.LittleEndian.AppendUint64(hdr, c.Size)
	}
	if err := w.Write(ctx, hdr); err != nil {
		return 0, 0, err
	}

	if rec.DataType == DataTypeString {
		lenbuf := binary.LittleEndian.AppendUint32(nil, uint32(len(rec.ScalarBytes)))
		if err := w.Write(ctx, lenbuf); err != nil {
			return 0, 0, err
		}
	}
	if err := w.Write(ctx, rec.ScalarBytes); err != nil {
		return 0, 0, err
	}

	if err := w.AlignTo(ctx, ScalarAlign); err != nil {
		return 0, 0, err
	}
	end := w.TotalBytesWritten()
	return start, end - start, nil
}

// EncodeArrayRecord renders rec's array-record bytes exactly as
// WriteArrayRecord would, without touching any writer or backend. Its
// length does not depend on the *values* of LUTOffset/LUTSize (they are
// fixed-width fields), which BuildLegacyFile relies on to size a record
// before those values are known.
func EncodeArrayRecord(rec Record) ([]byte, error) {
	if !rec.DataType.IsArray() {
		return nil, fmt.Errorf("container: EncodeArrayRecord given scalar data type %d", rec.DataType)
	}
	if len(rec.Dimensions) != len(rec.Chunks) {
		return nil, fmt.Errorf("container: dimensions/chunks rank mismatch (%d vs %d)", len(rec.Dimensions), len(rec.Chunks))
	}

	buf := make([]byte, 0, 64+16*len(rec.Dimensions)+16*len(rec.Children)+len(rec.Name))
	buf = append(buf, byte(rec.DataType), byte(rec.Compression), 0, 0)
	buf = binary.LittleEndian.AppendUint32(buf, float32bits(rec.ScaleFactor))
	buf = binary.LittleEndian.AppendUint32(buf, float32bits(rec.AddOffset))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(rec.Dimensions)))
	for _, d := range rec.Dimensions {
		buf = binary.LittleEndian.AppendUint64(buf, d)
	}
	for _, c := range rec.Chunks {
		buf = binary.LittleEndian.AppendUint64(buf, c)
	}
	buf = binary.LittleEndian.AppendUint64(buf, rec.LUTSize)
	buf = binary.LittleEndian.AppendUint64(buf, rec.LUTOffset)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(rec.Children)))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(rec.Name)))
	buf = binary.LittleEndian.AppendUint16(buf, 0)
	for _, c := range rec.Children {
		buf = binary.LittleEndian.AppendUint64(buf, c.Offset)
		buf = binary.LittleEndian.AppendUint64(buf, c.Size)
	}
	buf = append(buf, rec.Name...)
	return buf, nil
}

// WriteArrayRecord writes rec (DataType.IsArray() must hold), aligns to
// ArrayAlign, and returns (offset, size).
func WriteArrayRecord(ctx context.Context, w *BufWriter, rec Record) (offset, size uint64, err error) {
	buf, err := EncodeArrayRecord(rec)
	if err != nil {
		return 0, 0, err
	}
	start := w.TotalBytesWritten()
	if err := w.Write(ctx, buf); err != nil {
		return 0, 0, err
	}
	if err := w.AlignTo(ctx, ArrayAlign); err != nil {
		return 0, 0, err
	}
	end := w.TotalBytesWritten()
	return start, end - start, nil
}

// ReadRecord fetches size bytes at offset from be and decodes either a
// scalar or array record, dispatching on the leading type byte.
func ReadRecord(ctx context.Context, be backend.ReadBackend, offset, size uint64) (Record, error) {
	raw, err := be.Read(ctx, offset, size)
	if err != nil {
		return Record{}, fmt.Errorf("container: read record [%d,%d): %w", offset, offset+size, err)
	}
	if len(raw) < 1 {
		return Record{}, fmt.Errorf("container: record too short")
	}
	dt := DataType(raw[0])
	if !dt.Valid() {
		return Record{}, fmt.Errorf("container: %w: %d", ErrInvalidDataType, raw[0])
	}
	if dt.IsArray() {
		return decodeArrayRecord(raw)
	}
	return decodeScalarRecord(dt, raw)
}

func decodeScalarRecord(dt DataType, raw []byte) (Record, error) {
	if len(raw) < 8 {
		return Record{}, fmt.Errorf("container: scalar record too short")
	}
	nchild := binary.LittleEndian.Uint32(raw[2:6])
	nameLen := binary.LittleEndian.Uint16(raw[6:8])
	p := 8
	if len(raw) < p+int(nameLen) {
		return Record{}, fmt.Errorf("container: scalar record name overruns buffer")
	}
	name := string(raw[p : p+int(nameLen)])
	p += int(nameLen)

	children := make([]ChildPointer, nchild)
	for i := range children {
		if len(raw) < p+16 {
			return Record{}, fmt.Errorf("container: scalar record children overrun buffer")
		}
		children[i] = ChildPointer{
			Offset: binary.LittleEndian.Uint64(raw[p : p+8]),
			Size:   binary.LittleEndian.Uint64(raw[p+8 : p+16]),
		}
		p += 16
	}

	var payload []byte
	if dt == DataTypeString {
		if len(raw) < p+4 {
			return Record{}, fmt.Errorf("container: scalar string length overruns buffer")
		}
		slen := binary.LittleEndian.Uint32(raw[p : p+4])
		p += 4
		if len(raw) < p+int(slen) {
			return Record{}, fmt.Errorf("container: scalar string payload overruns buffer")
		}
		payload = raw[p : p+int(slen)]
	} else if dt != DataTypeNone {
		payload = raw[p:]
		// trailing zero padding is harmless: callers read exactly
		// the type's width (the root package's byteSize[T]()) out of
		// ScalarBytes.
	}

	return Record{DataType: dt, Name: name, Children: children, ScalarBytes: append([]byte(nil), payload...)}, nil
}

func decodeArrayRecord(raw []byte) (Record, error) {
	if len(raw) < 20 {
		return Record{}, fmt.Errorf("container: array record too short")
	}
	dt := DataType(raw[0])
	comp := CompressionType(raw[1])
	if !comp.Valid() {
		return Record{}, fmt.Errorf("container: %w: %d", ErrInvalidCompressionType, raw[1])
	}
	scale := float32frombits(binary.LittleEndian.Uint32(raw[4:8]))
	offset := float32frombits(binary.LittleEndian.Uint32(raw[8:12]))
	rank := binary.LittleEndian.Uint64(raw[12:20])
	p := 20
	need := int(rank)*16 + 4 + 2 + 2 + 16
	if len(raw) < p+need {
		return Record{}, fmt.Errorf("container: array record geometry overruns buffer")
	}
	dims := make([]uint64, rank)
	for i := range dims {
		dims[i] = binary.LittleEndian.Uint64(raw[p : p+8])
		p += 8
	}
	chunks := make([]uint64, rank)
	for i := range chunks {
		chunks[i] = binary.LittleEndian.Uint64(raw[p : p+8])
		p += 8
	}
	lutSize := binary.LittleEndian.Uint64(raw[p : p+8])
	p += 8
	lutOffset := binary.LittleEndian.Uint64(raw[p : p+8])
	p += 8
	nchild := binary.LittleEndian.Uint32(raw[p : p+4])
	p += 4
	nameLen := binary.LittleEndian.Uint16(raw[p : p+2])
	p += 2 + 2 // skip reserved2

	children := make([]ChildPointer, nchild)
	for i := range children {
		if len(raw) < p+16 {
			return Record{}, fmt.Errorf("container: array record children overrun buffer")
		}
		children[i] = ChildPointer{
			Offset: binary.LittleEndian.Uint64(raw[p : p+8]),
			Size:   binary.LittleEndian.Uint64(raw[p+8 : p+16]),
		}
		p += 16
	}
	if len(raw) < p+int(nameLen) {
		return Record{}, fmt.Errorf("container: array record name overruns buffer")
	}
	name := string(raw[p : p+int(nameLen)])

	return Record{
		DataType:    dt,
		Name:        name,
		Children:    children,
		Dimensions:  dims,
		Chunks:      chunks,
		Compression: comp,
		ScaleFactor: scale,
		AddOffset:   offset,
		LUTOffset:   lutOffset,
		LUTSize:     lutSize,
	}, nil
}

func float32bits(f float32) uint32 {
	return mathFloat32bits(f)
}

func float32frombits(u uint32) float32 {
	return mathFloat32frombits(u)
}
