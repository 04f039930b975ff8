package codec

import (
	"fmt"

	"github.com/open-meteo/om-file-format/internal/container"
)

// Decoder implements spec section 4.2's read-side array codec: given a
// compressed chunk's bytes and the chunk's index, it decompresses,
// un-filters, un-converts, and scatters the overlap with the caller's
// requested sub-cube into the caller's output buffer, using the same
// traversal as Encoder.WriteData.
type Decoder struct {
	Geometry
	Compression CompressionType
	Scale       float32
	Offset      float32

	sample any
}

// NewDecoder constructs a Decoder. sample is a zero-length slice of the
// user element type, fixing both the value kind DecodeChunk produces
// and the kind CopyRun expects the caller's output cube to be.
func NewDecoder(dimensions, chunks []uint64, compression CompressionType, scale, offset float32, sample any) *Decoder {
	return &Decoder{
		Geometry:    NewGeometry(dimensions, chunks),
		Compression: compression,
		Scale:       scale,
		Offset:      offset,
		sample:      sample,
	}
}

// ValidateRequest implements the decoder init correctness rule (spec
// section 4.2): rank must match, and both the source sub-cube and its
// placement in the output cube must fit in bounds.
func (d *Decoder) ValidateRequest(offset, count, intoCubeOffset, intoCubeDimensions []uint64) error {
	rank := len(d.Dimensions)
	if len(offset) != rank || len(count) != rank {
		return fmt.Errorf("codec: %w: request rank %d does not match variable rank %d", container.ErrInvalidArgument, len(offset), rank)
	}
	for i := 0; i < rank; i++ {
		if offset[i]+count[i] > d.Dimensions[i] {
			return fmt.Errorf("codec: %w: request axis %d [%d,%d) exceeds dimension %d", container.ErrInvalidArgument, i, offset[i], offset[i]+count[i], d.Dimensions[i])
		}
		if intoCubeOffset != nil {
			if intoCubeOffset[i]+count[i] > intoCubeDimensions[i] {
				return fmt.Errorf("codec: %w: placement axis %d [%d,%d) exceeds output dimension %d", container.ErrInvalidArgument, i, intoCubeOffset[i], intoCubeOffset[i]+count[i], intoCubeDimensions[i])
			}
		}
	}
	return nil
}

// DecodeChunkInto decompresses the chunk identified by chunkIndex from
// src and scatters the elements overlapping [offset, offset+count) into
// outCube, a buffer of shape intoCubeDimensions whose placement of the
// requested sub-cube begins at intoCubeOffset.
func (d *Decoder) DecodeChunkInto(chunkIndex uint64, src []byte, offset, count, intoCubeOffset, intoCubeDimensions []uint64, outCube any) error {
	chunkElems := int(chunkElemCount(d.Chunks))
	rows, cols := d.rowsCols()
	values, err := DecodeChunk(d.Compression, src, chunkElems, rows, cols, d.Scale, d.Offset, d.sample)
	if err != nil {
		return err
	}

	chunkCoordOffset := ChunkCoordOffset(chunkIndex, d.ChunksPerDim, d.Chunks)
	chunkValidShape := ChunkValidShape(chunkCoordOffset, d.Chunks, d.Dimensions)

	rank := len(d.Dimensions)
	cubeBase := make([]int64, rank)
	for i := 0; i < rank; i++ {
		cubeBase[i] = int64(offset[i]) - int64(intoCubeOffset[i])
	}

	var cerr error
	VisitChunkOverlap(chunkCoordOffset, d.Chunks, chunkValidShape, cubeBase, intoCubeDimensions, offset, count,
		func(chunkOff, cubeOff, n uint64) {
			if cerr != nil {
				return
			}
			cerr = CopyRun(outCube, values, cubeOff, chunkOff, n)
		})
	return cerr
}
