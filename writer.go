package omfile

import (
	"context"
	"log/slog"

	"github.com/open-meteo/om-file-format/backend"
	"github.com/open-meteo/om-file-format/internal/codec"
	"github.com/open-meteo/om-file-format/internal/container"
)

// Writer builds a v3 om file (spec section 4.7). Variables are written
// in post-order: every child must be finished (and its ChildPointer in
// hand) before the parent record naming it is written, since a v3
// record's only back-pointers are to already-written bytes.
type Writer struct {
	bw            *container.BufWriter
	headerWritten bool
}

// NewWriter wraps be with a buffered writer of the given initial
// scratch capacity (spec section 4.5; 0 picks container.BufWriter's own
// default).
func NewWriter(be backend.WriteBackend, initialCapacity int) *Writer {
	return &Writer{bw: container.NewBufWriter(be, initialCapacity)}
}

func (w *Writer) ensureHeader(ctx context.Context) error {
	if w.headerWritten {
		return nil
	}
	if err := container.WriteV3Header(ctx, w.bw); err != nil {
		return wrapIo(err)
	}
	w.headerWritten = true
	return nil
}

// WriteScalar implements Writer::write_scalar for a numeric T: writes a
// fixed-width scalar record and returns a ChildPointer the parent record
// should list among its Children.
func WriteScalar[T Numeric](ctx context.Context, w *Writer, name string, value T, children []ChildPointer) (ChildPointer, error) {
	if err := w.ensureHeader(ctx); err != nil {
		return ChildPointer{}, err
	}
	rec := container.Record{
		DataType:    scalarTypeForSample[T](),
		Name:        name,
		Children:    children,
		ScalarBytes: encodeTyped(nil, value),
	}
	offset, size, err := container.WriteScalarRecord(ctx, w.bw, rec)
	if err != nil {
		return ChildPointer{}, wrapIo(err)
	}
	return ChildPointer{Offset: offset, Size: size}, nil
}

// WriteStringScalar implements Writer::write_scalar for DataTypeString,
// whose payload is length-prefixed rather than fixed-width.
func WriteStringScalar(ctx context.Context, w *Writer, name, value string, children []ChildPointer) (ChildPointer, error) {
	if err := w.ensureHeader(ctx); err != nil {
		return ChildPointer{}, err
	}
	rec := container.Record{
		DataType:    DataTypeString,
		Name:        name,
		Children:    children,
		ScalarBytes: []byte(value),
	}
	offset, size, err := container.WriteScalarRecord(ctx, w.bw, rec)
	if err != nil {
		return ChildPointer{}, wrapIo(err)
	}
	return ChildPointer{Offset: offset, Size: size}, nil
}

// ArrayEncoder accumulates an array variable's chunked payload and emits
// it as a finished record (spec section 4.7: ArrayEncoder<T>). Build one
// with PrepareArray, call WriteData any number of times in canonical
// chunk-major order, then Finalise.
type ArrayEncoder[T Numeric] struct {
	w         *Writer
	enc       *codec.Encoder
	dataStart uint64
	ctx       context.Context
}

// PrepareArray implements Writer::prepare_array: fixes the array's
// geometry and compression scheme and marks the current write position
// as the start of its compressed chunk stream.
func PrepareArray[T Numeric](ctx context.Context, w *Writer, dimensions, chunks []uint64, compression CompressionType, scale, offset float32) (*ArrayEncoder[T], error) {
	if err := w.ensureHeader(ctx); err != nil {
		return nil, err
	}
	ae := &ArrayEncoder[T]{w: w, dataStart: w.bw.TotalBytesWritten()}
	var sample []T
	ae.enc = codec.NewEncoder(dimensions, chunks, compression, scale, offset, sample, ae.dataStart, func(b []byte) error {
		return w.bw.Write(ae.ctx, b)
	})
	return ae, nil
}

// WriteData implements ArrayEncoder::write_data: cube is the caller's
// buffer of shape cubeDims, whose element 0 sits at absolute array
// coordinate cubeOffset, of which [cubeOffset, cubeOffset+cubeCount) is
// valid data to gather. Calls must arrive in canonical chunk-major
// order (spec section 4.7); WriteData rejects any call whose lowest
// touched chunk has already been compressed and flushed.
func (a *ArrayEncoder[T]) WriteData(ctx context.Context, cube []T, cubeDims, cubeOffset, cubeCount []uint64) error {
	a.ctx = ctx
	return a.enc.WriteData(cube, cubeDims, cubeOffset, cubeCount)
}

// Finalise implements ArrayEncoder::finalise: flushes any chunk not yet
// written, emits the compressed LUT, writes the array record naming
// children, and returns a ChildPointer for the parent to list.
func (a *ArrayEncoder[T]) Finalise(ctx context.Context, name string, children []ChildPointer) (ChildPointer, error) {
	a.ctx = ctx
	result, err := a.enc.Finalise()
	if err != nil {
		return ChildPointer{}, err
	}
	lutOffset := a.dataStart + result.DataSize
	if err := a.w.bw.Write(ctx, result.LUT); err != nil {
		return ChildPointer{}, wrapIo(err)
	}

	rec := container.Record{
		DataType:    arrayTypeForSample[T](),
		Name:        name,
		Children:    children,
		Dimensions:  result.Dimensions,
		Chunks:      result.Chunks,
		Compression: result.Compression,
		ScaleFactor: result.ScaleFactor,
		AddOffset:   result.AddOffset,
		LUTOffset:   lutOffset,
		LUTSize:     uint64(len(result.LUT)),
	}
	offset, size, err := container.WriteArrayRecord(ctx, a.w.bw, rec)
	if err != nil {
		return ChildPointer{}, wrapIo(err)
	}
	return ChildPointer{Offset: offset, Size: size}, nil
}

// WriteArrayStreaming drives WriteData across an entire array without
// the caller hand-computing chunk boundaries: fill reports the row-major
// slab of shape sliceDims starting at sliceOffset into slice, for as
// many slabs as it takes to cover dimensions once. Slabs are visited in
// row-major order of their offsets (last axis fastest) and are not
// reordered into chunk-major order; a slab that WriteData cannot accept
// at that point makes the call fail with WriteData's error. Useful when
// the full array does not fit comfortably in memory at once. WriteArray
// does not go through this function.
func WriteArrayStreaming[T Numeric](ctx context.Context, w *Writer, name string, dimensions, chunks []uint64, compression CompressionType, scale, offset float32, sliceDims []uint64, fill func(sliceOffset []uint64, slice []T) error, children []ChildPointer) (ChildPointer, error) {
	ae, err := PrepareArray[T](ctx, w, dimensions, chunks, compression, scale, offset)
	if err != nil {
		return ChildPointer{}, err
	}

	rank := len(dimensions)
	sliceOffset := make([]uint64, rank)
	slice := make([]T, elemCount(sliceDims))
	for {
		count := make([]uint64, rank)
		for i := 0; i < rank; i++ {
			count[i] = min(sliceDims[i], dimensions[i]-sliceOffset[i])
		}
		if err := fill(sliceOffset, slice); err != nil {
			return ChildPointer{}, err
		}
		if err := ae.WriteData(ctx, slice, sliceDims, sliceOffset, count); err != nil {
			return ChildPointer{}, err
		}

		axis := rank - 1
		for axis >= 0 {
			sliceOffset[axis] += sliceDims[axis]
			if sliceOffset[axis] < dimensions[axis] {
				break
			}
			sliceOffset[axis] = 0
			axis--
		}
		if axis < 0 {
			break
		}
	}
	return ae.Finalise(ctx, name, children)
}

// WriteArray is the non-streaming convenience Writer::write_array
// describes: gather all of values (row-major, shape == dimensions) into
// one array variable in a single call.
func WriteArray[T Numeric](ctx context.Context, w *Writer, name string, values []T, dimensions, chunks []uint64, compression CompressionType, scale, offset float32, children []ChildPointer) (ChildPointer, error) {
	ae, err := PrepareArray[T](ctx, w, dimensions, chunks, compression, scale, offset)
	if err != nil {
		return ChildPointer{}, err
	}
	zero := make([]uint64, len(dimensions))
	if err := ae.WriteData(ctx, values, dimensions, zero, dimensions); err != nil {
		return ChildPointer{}, err
	}
	return ae.Finalise(ctx, name, children)
}

// WriteTrailer implements Writer::write_trailer: emits the fixed
// trailer naming root and flushes/synchronizes the backend. This is
// always the writer's final operation.
func (w *Writer) WriteTrailer(ctx context.Context, root ChildPointer) error {
	if err := container.WriteTrailer(ctx, w.bw, root.Offset, root.Size); err != nil {
		return wrapIo(err)
	}
	slog.Debug("omfile: wrote trailer", "root_offset", root.Offset, "root_size", root.Size)
	return nil
}
