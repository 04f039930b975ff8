package convert

import (
	"math"
	"testing"
)

func TestFloatToInt16RoundTrip(t *testing.T) {
	cases := []float32{0, 1.5, -1.5, 100, -100, 0.001}
	for _, v := range cases {
		i := FloatToInt16(v, 100, 0)
		got := Int16ToFloat(i, 100, 0)
		if math.Abs(float64(got-v)) > 0.02 {
			t.Fatalf("round trip for %v: got %v", v, got)
		}
	}
}

func TestFloatToInt16NaNSentinel(t *testing.T) {
	i := FloatToInt16(float32(math.NaN()), 100, 0)
	if i != Int16Max {
		t.Fatalf("NaN encoded as %d, want sentinel %d", i, Int16Max)
	}
	got := Int16ToFloat(i, 100, 0)
	if !math.IsNaN(float64(got)) {
		t.Fatalf("sentinel decoded as %v, want NaN", got)
	}
}

func TestFloatToInt16ClampsAwayFromSentinel(t *testing.T) {
	// A legitimate huge value must never collide with the NaN sentinel.
	i := FloatToInt16(1e9, 1, 0)
	if i == Int16Max {
		t.Fatal("a finite huge value collided with the NaN sentinel")
	}
}

func TestFloatToInt16Log10RoundTrip(t *testing.T) {
	cases := []float32{0, 1, 10, 100, 0.5}
	for _, v := range cases {
		i := FloatToInt16Log10(v, 1000, 0)
		got := Int16Log10ToFloat(i, 1000, 0)
		if math.Abs(float64(got-v)) > 0.05*math.Abs(float64(v))+0.01 {
			t.Fatalf("log10 round trip for %v: got %v", v, got)
		}
	}
}

func TestFloatToInt32RoundTrip(t *testing.T) {
	cases := []float32{0, 12345.6, -12345.6}
	for _, v := range cases {
		i := FloatToInt32(v, 1000, 0)
		got := Int32ToFloat(i, 1000, 0)
		if math.Abs(float64(got-v)) > 0.01 {
			t.Fatalf("round trip for %v: got %v", v, got)
		}
	}
}

func TestFloatToInt32NaNSentinel(t *testing.T) {
	i := FloatToInt32(float32(math.NaN()), 1, 0)
	if i != Int32Max {
		t.Fatalf("NaN encoded as %d, want sentinel %d", i, Int32Max)
	}
	if !math.IsNaN(float64(Int32ToFloat(i, 1, 0))) {
		t.Fatal("sentinel decoded as non-NaN")
	}
}

func TestDoubleToInt64RoundTripAndNaN(t *testing.T) {
	v := 123456.789
	i := DoubleToInt64(v, 1000, 0)
	got := Int64ToDouble(i, 1000, 0)
	if math.Abs(got-v) > 0.01 {
		t.Fatalf("round trip for %v: got %v", v, got)
	}

	nanEnc := DoubleToInt64(math.NaN(), 1, 0)
	if nanEnc != Int64Max {
		t.Fatalf("NaN encoded as %d, want sentinel %d", nanEnc, Int64Max)
	}
	if !math.IsNaN(Int64ToDouble(nanEnc, 1, 0)) {
		t.Fatal("sentinel decoded as non-NaN")
	}
}
