package bitpack

import (
	"math/rand"
	"testing"
)

func TestCompressDecompressUint8RoundTrip(t *testing.T) {
	src := []uint8{0, 1, 2, 255, 128, 17, 0, 0}
	out := CompressUint8(src, nil)
	got, ok := DecompressUint8(out, len(src), nil)
	if !ok {
		t.Fatal("DecompressUint8 reported failure")
	}
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("element %d: got %d, want %d", i, got[i], src[i])
		}
	}
}

func TestCompressDecompressInt8RoundTripNegative(t *testing.T) {
	src := []int8{-128, -1, 0, 1, 127, -64, 64}
	out := CompressInt8(src, nil)
	got, ok := DecompressInt8(out, len(src), nil)
	if !ok {
		t.Fatal("DecompressInt8 reported failure")
	}
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("element %d: got %d, want %d", i, got[i], src[i])
		}
	}
}

func TestCompressDecompressInt32RoundTripRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	src := make([]int32, 500)
	for i := range src {
		src[i] = int32(rnd.Int63() - rnd.Int63())
	}
	out := CompressInt32(src, nil)
	got, ok := DecompressInt32(out, len(src), nil)
	if !ok {
		t.Fatal("DecompressInt32 reported failure")
	}
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("element %d: got %d, want %d", i, got[i], src[i])
		}
	}
}

func TestCompressDecompressUint64RoundTripRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	src := make([]uint64, 300)
	for i := range src {
		src[i] = rnd.Uint64()
	}
	out := CompressUint64(src, nil)
	got, ok := DecompressUint64(out, len(src), nil)
	if !ok {
		t.Fatal("DecompressUint64 reported failure")
	}
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("element %d: got %d, want %d", i, got[i], src[i])
		}
	}
}

func TestCompressDecompressFPXor32RoundTrip(t *testing.T) {
	src := []uint32{0, 0x3f800000, 0xdeadbeef, 1, 0}
	out := CompressFPXor32(src, nil)
	got, ok := DecompressFPXor32(out, len(src), nil)
	if !ok {
		t.Fatal("DecompressFPXor32 reported failure")
	}
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("element %d: got %#x, want %#x", i, got[i], src[i])
		}
	}
}

func TestCompressHandlesMultipleBlocks(t *testing.T) {
	// blockValues is 128; exercise a length that spans several blocks
	// with a non-full final block.
	src := make([]uint16, 128*3+17)
	for i := range src {
		src[i] = uint16(i * 37 % 65536)
	}
	out := CompressUint16(src, nil)
	got, ok := DecompressUint16(out, len(src), nil)
	if !ok {
		t.Fatal("DecompressUint16 reported failure")
	}
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("element %d: got %d, want %d", i, got[i], src[i])
		}
	}
}

func TestCompressedBoundCoversActualOutput(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	n := 1000
	src := make([]int64, n)
	for i := range src {
		src[i] = rnd.Int63()
	}
	out := CompressInt64(src, nil)
	bound := CompressedBound(n, 8)
	if len(out) > bound {
		t.Fatalf("compressed output %d bytes exceeds CompressedBound %d", len(out), bound)
	}
}

func TestDecompressRejectsTruncatedInput(t *testing.T) {
	src := []uint32{1, 2, 3, 4, 5}
	out := CompressUint32(src, nil)
	_, ok := DecompressUint32(out[:len(out)-1], len(src), nil)
	if ok {
		t.Fatal("DecompressUint32 accepted truncated input")
	}
}
