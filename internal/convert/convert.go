// Package convert implements the element-wise transforms between stored
// integer form and user float/double form: linear scale+offset with a
// NaN sentinel, and a log10(1+x) variant (spec section 2 and the
// section 4.1 conversion table). NaN sentinels are always the signed
// max of the stored type; decode maps that exact value back to NaN.
package convert

import "math"

const (
	Int16Max = math.MaxInt16
	Int32Max = math.MaxInt32
	Int64Max = math.MaxInt64
)

func roundHalfAwayFromZero(v float64) float64 {
	if v >= 0 {
		return math.Floor(v + 0.5)
	}
	return math.Ceil(v - 0.5)
}

// FloatToInt16 implements the PForDelta2D-Int16 convert row: round-half-
// away-from-zero, clamp to int16 range, NaN -> INT16_MAX.
func FloatToInt16(v float32, scale, offset float32) int16 {
	if math_IsNaN32(v) {
		return Int16Max
	}
	scaled := roundHalfAwayFromZero(float64(v)*float64(scale) + float64(offset))
	if scaled >= Int16Max {
		return Int16Max - 1 // leave the sentinel exclusively for NaN
	}
	if scaled <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(scaled)
}

func Int16ToFloat(v int16, scale, offset float32) float32 {
	if v == Int16Max {
		return float32(math.NaN())
	}
	return float32((float64(v) - float64(offset)) / float64(scale))
}

// FloatToInt16Log10 implements the PForDelta2D-Int16-log10 convert row:
// log10(1+x)*scale, same rounding/clamp/NaN handling.
func FloatToInt16Log10(v float32, scale, offset float32) int16 {
	if math_IsNaN32(v) {
		return Int16Max
	}
	l := math.Log10(1 + float64(v))
	scaled := roundHalfAwayFromZero(l*float64(scale) + float64(offset))
	if scaled >= Int16Max {
		return Int16Max - 1
	}
	if scaled <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(scaled)
}

func Int16Log10ToFloat(v int16, scale, offset float32) float32 {
	if v == Int16Max {
		return float32(math.NaN())
	}
	l := (float64(v) - float64(offset)) / float64(scale)
	return float32(math.Pow(10, l) - 1)
}

// FloatToInt32 implements the PForDelta2D convert row for float: scale+
// offset, clamp, NaN -> INT32_MAX.
func FloatToInt32(v float32, scale, offset float32) int32 {
	if math_IsNaN32(v) {
		return Int32Max
	}
	scaled := roundHalfAwayFromZero(float64(v)*float64(scale) + float64(offset))
	if scaled >= Int32Max {
		return Int32Max - 1
	}
	if scaled <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(scaled)
}

func Int32ToFloat(v int32, scale, offset float32) float32 {
	if v == Int32Max {
		return float32(math.NaN())
	}
	return float32((float64(v) - float64(offset)) / float64(scale))
}

// DoubleToInt64 implements the PForDelta2D convert row for double.
func DoubleToInt64(v float64, scale, offset float32) int64 {
	if math.IsNaN(v) {
		return Int64Max
	}
	scaled := roundHalfAwayFromZero(v*float64(scale) + float64(offset))
	if scaled >= Int64Max {
		return Int64Max - 1
	}
	if scaled <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(scaled)
}

func Int64ToDouble(v int64, scale, offset float32) float64 {
	if v == Int64Max {
		return math.NaN()
	}
	return (float64(v) - float64(offset)) / float64(scale)
}

func math_IsNaN32(v float32) bool { return v != v }
