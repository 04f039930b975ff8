package omfile

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/open-meteo/om-file-format/backend"
)

func TestWriteReadScalarAndArrayGrid(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(nil)
	w := NewWriter(mem, 0)

	rows, cols := 5, 5
	chunkRows, chunkCols := 2, 2
	values := make([]float32, rows*cols)
	for i := range values {
		values[i] = float32(i) * 1.25
	}

	arrPtr, err := WriteArray[float32](ctx, w, "grid", values,
		[]uint64{uint64(rows), uint64(cols)}, []uint64{uint64(chunkRows), uint64(chunkCols)},
		CompressionPForDelta2D, 100, 0, nil)
	if err != nil {
		t.Fatalf("WriteArray: %v", err)
	}

	scalarPtr, err := WriteScalar[int32](ctx, w, "count", int32(rows*cols), nil)
	if err != nil {
		t.Fatalf("WriteScalar: %v", err)
	}

	rootPtr, err := WriteStringScalar(ctx, w, "root", "dataset", []ChildPointer{arrPtr, scalarPtr})
	if err != nil {
		t.Fatalf("WriteStringScalar (root): %v", err)
	}
	if err := w.WriteTrailer(ctx, rootPtr); err != nil {
		t.Fatalf("WriteTrailer: %v", err)
	}

	readBack := backend.NewMemory(mem.Bytes())
	r, err := Open(ctx, readBack)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	root := r.Root()
	if root.Name != "root" {
		t.Fatalf("root name = %q, want %q", root.Name, "root")
	}
	gotRootVal, err := ReadString(root)
	if err != nil || gotRootVal != "dataset" {
		t.Fatalf("ReadString(root) = %q, %v", gotRootVal, err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children))
	}

	grid, err := r.ChildByName(ctx, root, "grid")
	if err != nil {
		t.Fatalf("ChildByName(grid): %v", err)
	}
	if grid == nil {
		t.Fatal("ChildByName(grid) = nil")
	}
	count, err := r.ChildByName(ctx, root, "count")
	if err != nil || count == nil {
		t.Fatalf("ChildByName(count): %v, %v", count, err)
	}
	gotCount, err := ReadScalar[int32](count)
	if err != nil || gotCount != int32(rows*cols) {
		t.Fatalf("ReadScalar(count) = %d, %v", gotCount, err)
	}
	missing, err := r.ChildByName(ctx, root, "does-not-exist")
	if err != nil {
		t.Fatalf("ChildByName(missing) returned error: %v", err)
	}
	if missing != nil {
		t.Fatal("ChildByName(missing) returned a variable")
	}

	ar, err := NewArrayReader[float32](r, grid)
	if err != nil {
		t.Fatalf("NewArrayReader: %v", err)
	}
	got, err := ar.Read(ctx, []uint64{0, 0}, []uint64{uint64(rows), uint64(cols)})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range values {
		if math.Abs(float64(got[i]-values[i])) > 0.01 {
			t.Fatalf("element %d: got %v, want %v", i, got[i], values[i])
		}
	}

	sub, err := ar.Read(ctx, []uint64{1, 1}, []uint64{3, 3})
	if err != nil {
		t.Fatalf("Read sub-cube: %v", err)
	}
	for r0 := 0; r0 < 3; r0++ {
		for c0 := 0; c0 < 3; c0++ {
			want := values[(r0+1)*cols+(c0+1)]
			got := sub[r0*3+c0]
			if math.Abs(float64(got-want)) > 0.01 {
				t.Fatalf("sub-cube (%d,%d): got %v, want %v", r0, c0, got, want)
			}
		}
	}

	concurrent, err := ar.ReadConcurrent(ctx, []uint64{0, 0}, []uint64{uint64(rows), uint64(cols)}, 4)
	if err != nil {
		t.Fatalf("ReadConcurrent: %v", err)
	}
	for i := range values {
		if math.Abs(float64(concurrent[i]-values[i])) > 0.01 {
			t.Fatalf("ReadConcurrent element %d: got %v, want %v", i, concurrent[i], values[i])
		}
	}

	if err := ar.WillNeed(ctx, []uint64{0, 0}, []uint64{uint64(rows), uint64(cols)}); err != nil {
		t.Fatalf("WillNeed: %v", err)
	}

	desc := r.Describe(ctx, root)
	if desc == "" {
		t.Fatal("Describe returned empty string")
	}

	matches, err := r.Glob(ctx, "*/grid")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) != 1 || matches[0].Path != "root/grid" {
		t.Fatalf("Glob(*/grid) = %+v", matches)
	}
}

func TestArrayWithInt16NaNRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(nil)
	w := NewWriter(mem, 0)

	n := 20
	values := make([]float32, n)
	for i := range values {
		values[i] = float32(i) - 5
	}
	values[7] = float32(math.NaN())

	ptr, err := WriteArray[float32](ctx, w, "series", values,
		[]uint64{uint64(n)}, []uint64{6}, CompressionPForDelta2DInt16, 10, 0, nil)
	if err != nil {
		t.Fatalf("WriteArray: %v", err)
	}
	if err := w.WriteTrailer(ctx, ptr); err != nil {
		t.Fatalf("WriteTrailer: %v", err)
	}

	r, err := Open(ctx, backend.NewMemory(mem.Bytes()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ar, err := NewArrayReader[float32](r, r.Root())
	if err != nil {
		t.Fatalf("NewArrayReader: %v", err)
	}
	got, err := ar.Read(ctx, []uint64{0}, []uint64{uint64(n)})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range values {
		if i == 7 {
			if !math.IsNaN(float64(got[i])) {
				t.Fatalf("element 7 = %v, want NaN", got[i])
			}
			continue
		}
		if math.Abs(float64(got[i]-values[i])) > 0.02 {
			t.Fatalf("element %d: got %v, want %v", i, got[i], values[i])
		}
	}
}

func TestArray3DFPXorBitExact(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(nil)
	w := NewWriter(mem, 0)

	dims := []uint64{3, 4, 5}
	chunks := []uint64{2, 2, 3}
	n := int(dims[0] * dims[1] * dims[2])
	rnd := rand.New(rand.NewSource(11))
	values := make([]float64, n)
	for i := range values {
		values[i] = rnd.Float64() * 1000
	}

	ptr, err := WriteArray[float64](ctx, w, "cube", values, dims, chunks, CompressionFPXor2D, 1, 0, nil)
	if err != nil {
		t.Fatalf("WriteArray: %v", err)
	}
	if err := w.WriteTrailer(ctx, ptr); err != nil {
		t.Fatalf("WriteTrailer: %v", err)
	}

	r, err := Open(ctx, backend.NewMemory(mem.Bytes()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ar, err := NewArrayReader[float64](r, r.Root())
	if err != nil {
		t.Fatalf("NewArrayReader: %v", err)
	}
	got, err := ar.Read(ctx, []uint64{0, 0, 0}, dims)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range values {
		if got[i] != values[i] {
			t.Fatalf("element %d: got %v, want %v (bit-exact FPXor2D)", i, got[i], values[i])
		}
	}
}

func TestWriteArrayStreamingCoversWholeArray(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(nil)
	w := NewWriter(mem, 0)

	dims := []uint64{7, 9}
	chunks := []uint64{3, 4}
	sliceDims := []uint64{2, 9}
	values := make([]float32, dims[0]*dims[1])
	for i := range values {
		values[i] = float32(i)
	}

	fill := func(sliceOffset []uint64, slice []float32) error {
		for i := range slice {
			slice[i] = 0
		}
		rowStart := sliceOffset[0]
		for r := uint64(0); r < sliceDims[0] && rowStart+r < dims[0]; r++ {
			for c := uint64(0); c < dims[1]; c++ {
				slice[r*sliceDims[1]+c] = values[(rowStart+r)*dims[1]+c]
			}
		}
		return nil
	}

	ptr, err := WriteArrayStreaming[float32](ctx, w, "streamed", dims, chunks, CompressionPForDelta2D, 100, 0, sliceDims, fill, nil)
	if err != nil {
		t.Fatalf("WriteArrayStreaming: %v", err)
	}
	if err := w.WriteTrailer(ctx, ptr); err != nil {
		t.Fatalf("WriteTrailer: %v", err)
	}

	r, err := Open(ctx, backend.NewMemory(mem.Bytes()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ar, err := NewArrayReader[float32](r, r.Root())
	if err != nil {
		t.Fatalf("NewArrayReader: %v", err)
	}
	got, err := ar.Read(ctx, []uint64{0, 0}, dims)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range values {
		if math.Abs(float64(got[i]-values[i])) > 0.01 {
			t.Fatalf("element %d: got %v, want %v", i, got[i], values[i])
		}
	}
}
