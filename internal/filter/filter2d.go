// Package filter implements the in-place 2-D delta/xor filter applied
// to a chunk buffer before entropy coding (spec section 2 and the
// convert/filter/compress table in section 4.1). The chunk is reshaped
// as (rows, cols) where cols is the chunk's fastest (last) dimension and
// rows is the product of every slower dimension; Encode subtracts (or
// xors) each row's predecessor row in place, Decode inverts it by
// running prefix sums (or cumulative xor) back up.
package filter

// DeltaEncodeInt64 turns each row (after the first) into
// row[i] - row[i-1] as a plain two's-complement difference (wrapping on
// overflow); the zig-zag mapping the entropy coder needs is applied
// afterwards by internal/bitpack.
func DeltaEncodeInt64(buf []int64, rows, cols int) {
	for r := rows - 1; r > 0; r-- {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] -= prev[c]
		}
	}
}

func DeltaDecodeInt64(buf []int64, rows, cols int) {
	for r := 1; r < rows; r++ {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] += prev[c]
		}
	}
}

func DeltaEncodeInt32(buf []int32, rows, cols int) {
	for r := rows - 1; r > 0; r-- {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] -= prev[c]
		}
	}
}

func DeltaDecodeInt32(buf []int32, rows, cols int) {
	for r := 1; r < rows; r++ {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] += prev[c]
		}
	}
}

func DeltaEncodeInt16(buf []int16, rows, cols int) {
	for r := rows - 1; r > 0; r-- {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] -= prev[c]
		}
	}
}

func DeltaDecodeInt16(buf []int16, rows, cols int) {
	for r := 1; r < rows; r++ {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] += prev[c]
		}
	}
}

func DeltaEncodeInt8(buf []int8, rows, cols int) {
	for r := rows - 1; r > 0; r-- {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] -= prev[c]
		}
	}
}

func DeltaDecodeInt8(buf []int8, rows, cols int) {
	for r := 1; r < rows; r++ {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] += prev[c]
		}
	}
}

// XOR2D32/64 encode a chunk in place, xoring each row (from the last
// backward) with its as-yet-unmodified predecessor row; XOR2D32Inverse
// and XOR2D64Inverse invert it by walking forward instead.

func XOR2D32(buf []uint32, rows, cols int) {
	for r := rows - 1; r > 0; r-- {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] ^= prev[c]
		}
	}
}

func XOR2D64(buf []uint64, rows, cols int) {
	for r := rows - 1; r > 0; r-- {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] ^= prev[c]
		}
	}
}

// XOR2D32Inverse and XOR2D64Inverse invert the encode by walking rows
// forward instead of backward (cur ^= prev where prev is the *already
// restored* row).
func XOR2D32Inverse(buf []uint32, rows, cols int) {
	for r := 1; r < rows; r++ {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] ^= prev[c]
		}
	}
}

func XOR2D64Inverse(buf []uint64, rows, cols int) {
	for r := 1; r < rows; r++ {
		cur := buf[r*cols : r*cols+cols]
		prev := buf[(r-1)*cols : (r-1)*cols+cols]
		for c := range cur {
			cur[c] ^= prev[c]
		}
	}
}
