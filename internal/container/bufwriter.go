package container

import (
	"context"

	"github.com/open-meteo/om-file-format/backend"
)

// BufWriter is the append-only byte buffer spec section 4.5 describes:
// a caller can write straight into BufferAtWritePosition and advance
// with IncrementWritePosition (Write and AlignTo do so), without knowing
// whether a flush will occur in between. TotalBytesWritten is the monotonic file offset used as the
// basis for every (offset, size) back-pointer in the container.
type BufWriter struct {
	be      backend.WriteBackend
	buf     []byte
	pos     int // write position, index into buf valid [0,pos)
	total   uint64
	flushAt int // flush once buf grows past this, chosen generously vs minCapacity requests
}

// NewBufWriter wraps be with an initial scratch capacity.
func NewBufWriter(be backend.WriteBackend, initialCapacity int) *BufWriter {
	if initialCapacity < 4096 {
		initialCapacity = 4096
	}
	return &BufWriter{
		be:      be,
		buf:     make([]byte, 0, initialCapacity),
		flushAt: initialCapacity * 4,
	}
}

// TotalBytesWritten returns the monotonically advancing absolute file
// offset: bytes already flushed plus bytes buffered but not yet flushed.
func (w *BufWriter) TotalBytesWritten() uint64 { return w.total + uint64(w.pos) }

// Reserve grows the buffer so at least minCapacity contiguous bytes are
// available from the current write position, flushing first if that is
// the only way to make room (Write calls it with len(p), which is how
// the encoder's finished chunks get room whether or not a flush happens
// in between).
func (w *BufWriter) Reserve(ctx context.Context, minCapacity int) error {
	if cap(w.buf)-w.pos >= minCapacity {
		return nil
	}
	if w.pos > 0 {
		if err := w.Flush(ctx); err != nil {
			return err
		}
	}
	if cap(w.buf) < minCapacity {
		grown := make([]byte, 0, minCapacity)
		w.buf = grown
	}
	return nil
}

// BufferAtWritePosition returns a slice of length n starting at the
// current write position. The caller must have Reserve'd enough room.
func (w *BufWriter) BufferAtWritePosition(n int) []byte {
	for cap(w.buf)-w.pos < n {
		w.buf = append(w.buf[:cap(w.buf)], 0)
		w.buf = w.buf[:cap(w.buf)]
	}
	w.buf = w.buf[:w.pos+n]
	return w.buf[w.pos : w.pos+n]
}

// IncrementWritePosition advances the write cursor by n bytes, which
// must already have been populated via BufferAtWritePosition.
func (w *BufWriter) IncrementWritePosition(n int) {
	w.pos += n
	if w.pos > len(w.buf) {
		w.buf = w.buf[:w.pos]
	}
}

// Write appends p verbatim, growing/flushing as needed.
func (w *BufWriter) Write(ctx context.Context, p []byte) error {
	if err := w.Reserve(ctx, len(p)); err != nil {
		return err
	}
	dst := w.BufferAtWritePosition(len(p))
	copy(dst, p)
	w.IncrementWritePosition(len(p))
	if w.pos >= w.flushAt {
		return w.Flush(ctx)
	}
	return nil
}

// AlignTo pads the write position with zero bytes up to the next
// multiple of align (8 or 64, per spec section 4.5).
func (w *BufWriter) AlignTo(ctx context.Context, align uint64) error {
	target := alignUp(w.TotalBytesWritten(), align)
	pad := int(target - w.TotalBytesWritten())
	if pad == 0 {
		return nil
	}
	if err := w.Reserve(ctx, pad); err != nil {
		return err
	}
	dst := w.BufferAtWritePosition(pad)
	for i := range dst {
		dst[i] = 0
	}
	w.IncrementWritePosition(pad)
	return nil
}

// Flush writes all buffered bytes to the backend and resets the buffer.
func (w *BufWriter) Flush(ctx context.Context) error {
	if w.pos == 0 {
		return nil
	}
	if err := w.be.Write(ctx, w.buf[:w.pos]); err != nil {
		return err
	}
	w.total += uint64(w.pos)
	w.pos = 0
	w.buf = w.buf[:0]
	return nil
}

// Close flushes and synchronizes the backend.
func (w *BufWriter) Close(ctx context.Context) error {
	if err := w.Flush(ctx); err != nil {
		return err
	}
	return w.be.Synchronize(ctx)
}
