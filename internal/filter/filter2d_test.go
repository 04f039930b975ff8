package filter

import (
	"math/rand"
	"testing"
)

func TestDeltaEncodeDecodeInt32RoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	rows, cols := 5, 7
	orig := make([]int32, rows*cols)
	for i := range orig {
		orig[i] = int32(rnd.Intn(2000) - 1000)
	}
	buf := append([]int32(nil), orig...)
	DeltaEncodeInt32(buf, rows, cols)
	DeltaDecodeInt32(buf, rows, cols)
	for i := range orig {
		if buf[i] != orig[i] {
			t.Fatalf("element %d: got %d, want %d", i, buf[i], orig[i])
		}
	}
}

func TestDeltaEncodeDecodeInt8RoundTrip(t *testing.T) {
	orig := []int8{1, 2, 3, 4, 5, 6, -128, 127, 0, 0, 0, 0}
	rows, cols := 3, 4
	buf := append([]int8(nil), orig...)
	DeltaEncodeInt8(buf, rows, cols)
	DeltaDecodeInt8(buf, rows, cols)
	for i := range orig {
		if buf[i] != orig[i] {
			t.Fatalf("element %d: got %d, want %d", i, buf[i], orig[i])
		}
	}
}

func TestDeltaSingleRowIsNoop(t *testing.T) {
	orig := []int64{1, 2, 3}
	buf := append([]int64(nil), orig...)
	DeltaEncodeInt64(buf, 1, 3)
	for i := range orig {
		if buf[i] != orig[i] {
			t.Fatalf("single-row delta changed element %d: got %d, want %d", i, buf[i], orig[i])
		}
	}
}

func TestXOR2D32RoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	rows, cols := 4, 6
	orig := make([]uint32, rows*cols)
	for i := range orig {
		orig[i] = rnd.Uint32()
	}
	buf := append([]uint32(nil), orig...)
	XOR2D32(buf, rows, cols)
	XOR2D32Inverse(buf, rows, cols)
	for i := range orig {
		if buf[i] != orig[i] {
			t.Fatalf("element %d: got %#x, want %#x", i, buf[i], orig[i])
		}
	}
}

func TestXOR2D64RoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(9))
	rows, cols := 3, 5
	orig := make([]uint64, rows*cols)
	for i := range orig {
		orig[i] = rnd.Uint64()
	}
	buf := append([]uint64(nil), orig...)
	XOR2D64(buf, rows, cols)
	XOR2D64Inverse(buf, rows, cols)
	for i := range orig {
		if buf[i] != orig[i] {
			t.Fatalf("element %d: got %#x, want %#x", i, buf[i], orig[i])
		}
	}
}
