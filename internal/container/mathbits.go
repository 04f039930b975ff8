package container

import (
	"errors"
	"math"
)

// Sentinel errors shared with the root package's taxonomy (spec section
// 7); the root package aliases these rather than redefining them so
// errors.Is works across the package boundary.
var (
	ErrInvalidDataType        = errors.New("omfile: invalid data type")
	ErrInvalidCompressionType = errors.New("omfile: invalid compression type")
	ErrOutOfBoundRead         = errors.New("omfile: out of bound read")
	ErrNotAnOmFile            = errors.New("omfile: not an om file")
	ErrDeflatedSizeMismatch   = errors.New("omfile: deflated size mismatch")
	ErrInvalidArgument        = errors.New("omfile: invalid argument")
)

func mathFloat32bits(f float32) uint32    { return math.Float32bits(f) }
func mathFloat32frombits(u uint32) float32 { return math.Float32frombits(u) }
