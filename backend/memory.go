package backend

import (
	"context"
	"fmt"
)

// Memory is an in-memory byte buffer backend: read and write, no
// identity (two Memory backends with identical bytes are not the same
// cache key — there is nothing durable to key on).
type Memory struct {
	buf []byte
}

// NewMemory wraps an existing byte slice for reading, or starts an empty
// writable buffer if initial is nil.
func NewMemory(initial []byte) *Memory {
	return &Memory{buf: initial}
}

func (m *Memory) Length() (uint64, error) { return uint64(len(m.buf)), nil }

func (m *Memory) Read(_ context.Context, offset, count uint64) ([]byte, error) {
	if offset+count > uint64(len(m.buf)) {
		return nil, fmt.Errorf("memory backend: read [%d,%d) past end (len %d)", offset, offset+count, len(m.buf))
	}
	out := make([]byte, count)
	copy(out, m.buf[offset:offset+count])
	return out, nil
}

func (m *Memory) WithRead(ctx context.Context, offset, count uint64, fn func([]byte) error) error {
	if offset+count > uint64(len(m.buf)) {
		return fmt.Errorf("memory backend: read [%d,%d) past end (len %d)", offset, offset+count, len(m.buf))
	}
	return fn(m.buf[offset : offset+count])
}

func (m *Memory) Prefetch(context.Context, uint64, uint64) {}

func (m *Memory) Write(_ context.Context, p []byte) error {
	m.buf = append(m.buf, p...)
	return nil
}

func (m *Memory) Synchronize(context.Context) error { return nil }

// Bytes returns the current contents. The caller must not retain it
// across further writes.
func (m *Memory) Bytes() []byte { return m.buf }
