package container

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/open-meteo/om-file-format/backend"
)

// WriteV3Header writes the fixed v3 header (magic, no payload) at the
// very start of the stream; the Writer facade calls this lazily before
// its first other operation (spec section 4.7).
func WriteV3Header(ctx context.Context, w *BufWriter) error {
	buf := make([]byte, HeaderSize)
	copy(buf, v3Magic[:])
	return w.Write(ctx, buf)
}

// WriteTrailer writes the fixed trailer record (magic, root_offset,
// root_size) and flushes. This is always the final operation of a
// write session (spec section 4.7: "write_trailer(root) - emits trailer
// and flushes").
func WriteTrailer(ctx context.Context, w *BufWriter, rootOffset, rootSize uint64) error {
	buf := make([]byte, 0, TrailerSize)
	buf = append(buf, trailerTag[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, rootOffset)
	buf = binary.LittleEndian.AppendUint64(buf, rootSize)
	if err := w.Write(ctx, buf); err != nil {
		return err
	}
	return w.Close(ctx)
}

// OpenKind distinguishes how a file's root variable was located.
type OpenKind int

const (
	OpenV3 OpenKind = iota
	OpenLegacy
)

// ReadRoot implements the Reader facade's open sequence (spec section
// 4.6): try the v3 trailer first; on any validation failure, fall back
// to the legacy header; if neither validates, ErrNotAnOmFile.
func ReadRoot(ctx context.Context, be backend.ReadBackend) (kind OpenKind, rootOffset, rootSize uint64, err error) {
	length, err := be.Length()
	if err != nil {
		return 0, 0, 0, err
	}

	if length >= TrailerSize {
		tail, terr := be.Read(ctx, length-TrailerSize, TrailerSize)
		if terr == nil && string(tail[:8]) == string(trailerTag[:]) {
			root := binary.LittleEndian.Uint64(tail[8:16])
			size := binary.LittleEndian.Uint64(tail[16:24])
			return OpenV3, root, size, nil
		}
	}

	if length >= LegacyHeaderMinSize {
		head, herr := be.Read(ctx, 0, LegacyHeaderMinSize)
		if herr == nil && string(head[:3]) == string(legacyMagic[:]) {
			return OpenLegacy, 0, length, nil
		}
	}

	return 0, 0, 0, fmt.Errorf("container: %w", ErrNotAnOmFile)
}

// LegacyHeaderMinSize is the smallest a legacy-header file can be: the
// 3-byte magic plus one reserved byte, rounded up to ScalarAlign so the
// same alignment rule as scalar records applies.
const LegacyHeaderMinSize = 8

// BuildLegacyFile renders a complete legacy-header file in memory: magic,
// then a fixed-position array record (with LUTOffset/LUTSize computed
// from the layout below rather than taken from rec), then the raw
// compressed chunk stream, then the compressed LUT. Because a legacy
// file has no trailer, its single variable record must sit at a fixed
// offset known before any data is written — unlike the v3 format, whose
// post-order writer only ever emits a record once its children's offsets
// are already known. This helper exists so the read path (spec section
// 9: "should accept v2 (legacy) only on read") can be exercised in
// tests and by tools migrating old files; it is not part of the public
// Writer, which only ever writes v3.
func BuildLegacyFile(rec Record, chunkData, lutBytes []byte) ([]byte, error) {
	probe := rec
	probe.LUTOffset, probe.LUTSize = 0, 0
	sized, err := EncodeArrayRecord(probe)
	if err != nil {
		return nil, err
	}
	recordSize := AlignUp64(uint64(len(sized)))

	rec.LUTOffset = uint64(LegacyHeaderMinSize) + recordSize + uint64(len(chunkData))
	rec.LUTSize = uint64(len(lutBytes))
	final, err := EncodeArrayRecord(rec)
	if err != nil {
		return nil, err
	}
	if uint64(len(final)) != uint64(len(sized)) {
		return nil, fmt.Errorf("container: array record size changed after filling in lut fields (%d vs %d)", len(final), len(sized))
	}

	out := make([]byte, 0, rec.LUTOffset+rec.LUTSize)
	out = append(out, legacyMagic[:]...)
	out = append(out, make([]byte, LegacyHeaderMinSize-len(legacyMagic))...)
	out = append(out, final...)
	out = append(out, make([]byte, recordSize-uint64(len(final)))...)
	out = append(out, chunkData...)
	out = append(out, lutBytes...)
	return out, nil
}

// ReadLegacyRecord decodes the single array record following the
// legacy header in a file of length.
func ReadLegacyRecord(ctx context.Context, be backend.ReadBackend, length uint64) (Record, error) {
	return ReadRecord(ctx, be, LegacyHeaderMinSize, length-LegacyHeaderMinSize)
}
