package container

import (
	"context"
	"testing"

	"github.com/open-meteo/om-file-format/backend"
)

func TestWriteReadScalarRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(nil)
	w := NewBufWriter(mem, 0)

	rec := Record{
		DataType:    DataTypeFloat,
		Name:        "temperature",
		ScalarBytes: []byte{0, 0, 0x80, 0x3f}, // 1.0f little-endian
	}
	offset, size, err := WriteScalarRecord(ctx, w, rec)
	if err != nil {
		t.Fatalf("WriteScalarRecord: %v", err)
	}
	if err := w.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if size%ScalarAlign != 0 {
		t.Fatalf("record size %d not aligned to ScalarAlign %d", size, ScalarAlign)
	}

	got, err := ReadRecord(ctx, mem, offset, size)
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if got.Name != rec.Name || got.DataType != rec.DataType {
		t.Fatalf("got %+v, want name/type %q/%v", got, rec.Name, rec.DataType)
	}
	if len(got.ScalarBytes) < 4 {
		t.Fatalf("scalar payload too short: %v", got.ScalarBytes)
	}
}

func TestWriteReadScalarRecordWithChildren(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(nil)
	w := NewBufWriter(mem, 0)

	childRec := Record{DataType: DataTypeInt32, Name: "child", ScalarBytes: []byte{1, 0, 0, 0}}
	childOffset, childSize, err := WriteScalarRecord(ctx, w, childRec)
	if err != nil {
		t.Fatalf("write child: %v", err)
	}

	parentRec := Record{
		DataType: DataTypeNone,
		Name:     "root",
		Children: []ChildPointer{{Offset: childOffset, Size: childSize}},
	}
	parentOffset, parentSize, err := WriteScalarRecord(ctx, w, parentRec)
	if err != nil {
		t.Fatalf("write parent: %v", err)
	}
	if err := w.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadRecord(ctx, mem, parentOffset, parentSize)
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if len(got.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(got.Children))
	}
	child, err := ReadRecord(ctx, mem, got.Children[0].Offset, got.Children[0].Size)
	if err != nil {
		t.Fatalf("ReadRecord(child): %v", err)
	}
	if child.Name != "child" {
		t.Fatalf("child name = %q, want %q", child.Name, "child")
	}
}

func TestWriteReadStringScalarRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(nil)
	w := NewBufWriter(mem, 0)

	rec := Record{DataType: DataTypeString, Name: "units", ScalarBytes: []byte("celsius")}
	offset, size, err := WriteScalarRecord(ctx, w, rec)
	if err != nil {
		t.Fatalf("WriteScalarRecord: %v", err)
	}
	if err := w.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadRecord(ctx, mem, offset, size)
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if string(got.ScalarBytes) != "celsius" {
		t.Fatalf("got %q, want %q", got.ScalarBytes, "celsius")
	}
}

func TestWriteReadArrayRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(nil)
	w := NewBufWriter(mem, 0)

	rec := Record{
		DataType:    DataTypeFloatArray,
		Name:        "grid",
		Dimensions:  []uint64{10, 20},
		Chunks:      []uint64{4, 5},
		Compression: CompressionFPXor2D,
		ScaleFactor: 1,
		AddOffset:   0,
		LUTOffset:   12345,
		LUTSize:     678,
	}
	offset, size, err := WriteArrayRecord(ctx, w, rec)
	if err != nil {
		t.Fatalf("WriteArrayRecord: %v", err)
	}
	if err := w.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if size%ArrayAlign != 0 {
		t.Fatalf("record size %d not aligned to ArrayAlign %d", size, ArrayAlign)
	}

	got, err := ReadRecord(ctx, mem, offset, size)
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if got.Name != rec.Name || got.Compression != rec.Compression {
		t.Fatalf("got %+v", got)
	}
	if len(got.Dimensions) != 2 || got.Dimensions[0] != 10 || got.Dimensions[1] != 20 {
		t.Fatalf("got dimensions %v, want [10 20]", got.Dimensions)
	}
	if got.LUTOffset != rec.LUTOffset || got.LUTSize != rec.LUTSize {
		t.Fatalf("got lut offset/size %d/%d, want %d/%d", got.LUTOffset, got.LUTSize, rec.LUTOffset, rec.LUTSize)
	}
}

func TestV3RoundTripThroughTrailer(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(nil)
	w := NewBufWriter(mem, 0)

	if err := WriteV3Header(ctx, w); err != nil {
		t.Fatalf("WriteV3Header: %v", err)
	}
	rec := Record{DataType: DataTypeDouble, Name: "root", ScalarBytes: make([]byte, 8)}
	offset, size, err := WriteScalarRecord(ctx, w, rec)
	if err != nil {
		t.Fatalf("WriteScalarRecord: %v", err)
	}
	if err := WriteTrailer(ctx, w, offset, size); err != nil {
		t.Fatalf("WriteTrailer: %v", err)
	}

	kind, rootOffset, rootSize, err := ReadRoot(ctx, mem)
	if err != nil {
		t.Fatalf("ReadRoot: %v", err)
	}
	if kind != OpenV3 {
		t.Fatalf("kind = %v, want OpenV3", kind)
	}
	if rootOffset != offset || rootSize != size {
		t.Fatalf("got (%d,%d), want (%d,%d)", rootOffset, rootSize, offset, size)
	}
}

func TestLegacyFileReadsBack(t *testing.T) {
	ctx := context.Background()
	rec := Record{
		DataType:    DataTypeFloatArray,
		Name:        "legacy_grid",
		Dimensions:  []uint64{4, 4},
		Chunks:      []uint64{2, 2},
		Compression: CompressionPForDelta2D,
		ScaleFactor: 1,
	}
	chunkData := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	lutBytes := []byte{9, 9, 9, 9}

	raw, err := BuildLegacyFile(rec, chunkData, lutBytes)
	if err != nil {
		t.Fatalf("BuildLegacyFile: %v", err)
	}
	mem := backend.NewMemory(raw)

	kind, _, rootSize, err := ReadRoot(ctx, mem)
	if err != nil {
		t.Fatalf("ReadRoot: %v", err)
	}
	if kind != OpenLegacy {
		t.Fatalf("kind = %v, want OpenLegacy", kind)
	}

	got, err := ReadLegacyRecord(ctx, mem, rootSize)
	if err != nil {
		t.Fatalf("ReadLegacyRecord: %v", err)
	}
	if got.Name != rec.Name {
		t.Fatalf("got name %q, want %q", got.Name, rec.Name)
	}
	if got.LUTSize != uint64(len(lutBytes)) {
		t.Fatalf("got lut size %d, want %d", got.LUTSize, len(lutBytes))
	}

	lutRaw, err := mem.Read(ctx, got.LUTOffset, got.LUTSize)
	if err != nil {
		t.Fatalf("read lut bytes: %v", err)
	}
	for i, b := range lutBytes {
		if lutRaw[i] != b {
			t.Fatalf("lut byte %d = %d, want %d", i, lutRaw[i], b)
		}
	}
}

func TestReadRootRejectsGarbage(t *testing.T) {
	mem := backend.NewMemory([]byte("not an om file at all, just garbage bytes padded out"))
	if _, _, _, err := ReadRoot(context.Background(), mem); err == nil {
		t.Fatal("ReadRoot accepted garbage input")
	}
}
