package codec

import (
	"fmt"

	"github.com/open-meteo/om-file-format/internal/container"
)

// Geometry is the chunk-shape bookkeeping shared by Encoder and
// Decoder: dimensions, chunks, and their derived ceil-divide products
// (spec section 3's invariants).
type Geometry struct {
	Dimensions   []uint64
	Chunks       []uint64
	ChunksPerDim []uint64
	TotalChunks  uint64
}

func NewGeometry(dimensions, chunks []uint64) Geometry {
	return Geometry{
		Dimensions:   dimensions,
		Chunks:       chunks,
		ChunksPerDim: ChunksPerDim(dimensions, chunks),
		TotalChunks:  TotalChunks(dimensions, chunks),
	}
}

func chunkElemCount(chunks []uint64) uint64 {
	n := uint64(1)
	for _, c := range chunks {
		n *= c
	}
	return n
}

// rowsCols returns the (rows, cols) reshape spec section 4.1 specifies
// for the 2-D filter: cols is the chunk's fastest axis, rows is the
// product of every slower axis.
func (g Geometry) rowsCols() (rows, cols int) {
	n := len(g.Chunks)
	cols = int(g.Chunks[n-1])
	rows = 1
	for i := 0; i < n-1; i++ {
		rows *= int(g.Chunks[i])
	}
	return rows, cols
}

// FinalisedArray is the result of Encoder.Finalise: everything
// write_array (spec section 4.7) needs to emit the array record, once
// the caller has written DataSize bytes of compressed chunk stream
// (via the Emit callback) at some DataOffset and then LUT immediately
// after.
type FinalisedArray struct {
	Dimensions  []uint64
	Chunks      []uint64
	Compression CompressionType
	ScaleFactor float32
	AddOffset   float32
	DataSize    uint64
	LUT         []byte
}

// Encoder implements spec section 4.1's write-side array codec: it
// gathers a caller-provided sub-cube into per-chunk scratch buffers in
// canonical chunk-major order, compresses each chunk as soon as no
// future WriteData call could still touch it, and maintains the LUT of
// absolute file byte offsets of the chunks.
type Encoder struct {
	Geometry
	Compression CompressionType
	Scale       float32
	Offset      float32

	sample          any
	emit            func([]byte) error
	dataStartOffset uint64

	pending       map[uint64]any
	lut           []uint64
	written       uint64
	completedUpTo uint64
}

// NewEncoder constructs an Encoder. sample is a zero-length slice of
// the user element type (e.g. []float32(nil)), used to allocate typed
// scratch buffers without generics leaking into this package. emit is
// called once per compressed chunk, in chunk_index order; the caller
// (the root Writer) is expected to forward these bytes straight into
// its BufWriter. dataStartOffset is the absolute file offset the first
// compressed chunk will land at (the BufWriter's current
// TotalBytesWritten), since spec section 3 defines LUT entries as
// absolute byte offsets, not offsets relative to this array.
func NewEncoder(dimensions, chunks []uint64, compression CompressionType, scale, offset float32, sample any, dataStartOffset uint64, emit func([]byte) error) *Encoder {
	return &Encoder{
		Geometry:        NewGeometry(dimensions, chunks),
		Compression:     compression,
		Scale:           scale,
		Offset:          offset,
		sample:          sample,
		emit:            emit,
		dataStartOffset: dataStartOffset,
		pending:         make(map[uint64]any),
		lut:             []uint64{dataStartOffset},
	}
}

// WriteData implements ArrayEncoder::write_data (spec section 4.7): cube
// is the caller's buffer of shape cubeDims, whose element 0 sits at
// absolute array coordinate cubeOffset, of which [cubeOffset,
// cubeOffset+cubeCount) is valid data to gather.
func (e *Encoder) WriteData(cube any, cubeDims, cubeOffset, cubeCount []uint64) error {
	rank := len(e.Dimensions)
	if len(cubeDims) != rank || len(cubeOffset) != rank || len(cubeCount) != rank {
		return fmt.Errorf("codec: %w: write_data rank mismatch", container.ErrInvalidArgument)
	}
	for i := 0; i < rank; i++ {
		if cubeOffset[i]+cubeCount[i] > e.Dimensions[i] {
			return fmt.Errorf("codec: %w: write_data axis %d out of bounds", container.ErrInvalidArgument, i)
		}
	}

	first, last := IntersectingChunkCoordRange(cubeOffset, cubeCount, e.Chunks)
	cubeBase := ToInt64(cubeOffset)

	minChunk := ^uint64(0)
	var werr error
	ForEachIntersectingChunk(e.ChunksPerDim, first, last, func(chunkIndex uint64, _ []uint64) {
		if werr != nil {
			return
		}
		if chunkIndex < minChunk {
			minChunk = chunkIndex
		}
		scratch, ok := e.pending[chunkIndex]
		if !ok {
			scratch = NewValues(e.sample, int(chunkElemCount(e.Chunks)))
			e.pending[chunkIndex] = scratch
		}
		chunkCoordOffset := ChunkCoordOffset(chunkIndex, e.ChunksPerDim, e.Chunks)
		chunkValidShape := ChunkValidShape(chunkCoordOffset, e.Chunks, e.Dimensions)
		VisitChunkOverlap(chunkCoordOffset, e.Chunks, chunkValidShape, cubeBase, cubeDims, cubeOffset, cubeCount,
			func(chunkOff, cubeOff, n uint64) {
				if werr != nil {
					return
				}
				werr = CopyRun(scratch, cube, chunkOff, cubeOff, n)
			})
	})
	if werr != nil {
		return werr
	}
	if minChunk == ^uint64(0) {
		return nil
	}
	if minChunk < e.completedUpTo {
		return fmt.Errorf("codec: %w: write_data touched chunk %d, already finalised up to %d (writes must advance in canonical chunk-major order)",
			container.ErrInvalidArgument, minChunk, e.completedUpTo)
	}
	for k := e.completedUpTo; k < minChunk; k++ {
		if err := e.flushChunk(k); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) flushChunk(chunkIndex uint64) error {
	scratch, ok := e.pending[chunkIndex]
	if !ok {
		scratch = NewValues(e.sample, int(chunkElemCount(e.Chunks)))
	} else {
		delete(e.pending, chunkIndex)
	}
	rows, cols := e.rowsCols()
	out, err := EncodeChunk(e.Compression, scratch, rows, cols, e.Scale, e.Offset, nil)
	if err != nil {
		return err
	}
	if err := e.emit(out); err != nil {
		return err
	}
	e.written += uint64(len(out))
	e.lut = append(e.lut, e.dataStartOffset+e.written)
	e.completedUpTo = chunkIndex + 1
	return nil
}

// Finalise implements ArrayEncoder::finalise (spec section 4.7): flush
// any chunk not yet completed (zero-filling chunks that were never
// written at all) and emit the compressed LUT.
func (e *Encoder) Finalise() (FinalisedArray, error) {
	for k := e.completedUpTo; k < e.TotalChunks; k++ {
		if err := e.flushChunk(k); err != nil {
			return FinalisedArray{}, err
		}
	}
	return FinalisedArray{
		Dimensions:  e.Dimensions,
		Chunks:      e.Chunks,
		Compression: e.Compression,
		ScaleFactor: e.Scale,
		AddOffset:   e.Offset,
		DataSize:    e.written,
		LUT:         CompressLUT(e.lut),
	}, nil
}
