package backend

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MMap is a read-only memory-mapped file backend. Read returns a copy of
// the mapped bytes; WithRead exposes a slice directly into the mapping; Prefetch calls
// madvise(WILLNEED) on a page-aligned range, the contract spec section 6
// asks the mmap backend to honor.
type MMap struct {
	f        *os.File
	data     []byte
	identity string
}

// OpenMMap maps path read-only for its entire length.
func OpenMMap(path string) (*MMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := st.Size()
	if size == 0 {
		return &MMap{f: f, data: nil, identity: identityOf(path, f)}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap backend: mmap %s: %w", path, err)
	}
	return &MMap{f: f, data: data, identity: identityOf(path, f)}, nil
}

func (m *MMap) Length() (uint64, error) { return uint64(len(m.data)), nil }

func (m *MMap) Read(_ context.Context, offset, count uint64) ([]byte, error) {
	if offset+count > uint64(len(m.data)) {
		return nil, fmt.Errorf("mmap backend: read [%d,%d) past end (len %d)", offset, offset+count, len(m.data))
	}
	out := make([]byte, count)
	copy(out, m.data[offset:offset+count])
	return out, nil
}

// WithRead hands the caller a direct view into the mapping: no copy.
// The slice is valid only until Close (or a future truncating remap,
// which this backend never performs).
func (m *MMap) WithRead(_ context.Context, offset, count uint64, fn func([]byte) error) error {
	if offset+count > uint64(len(m.data)) {
		return fmt.Errorf("mmap backend: read [%d,%d) past end (len %d)", offset, offset+count, len(m.data))
	}
	return fn(m.data[offset : offset+count])
}

const pageSize = 4096

// Prefetch calls madvise(WILLNEED) on the page-aligned range covering
// [offset, offset+count), an advisory hint that the kernel should start
// reading those pages into cache now.
func (m *MMap) Prefetch(_ context.Context, offset, count uint64) {
	if len(m.data) == 0 || count == 0 {
		return
	}
	start := offset &^ (pageSize - 1)
	end := offset + count
	if end > uint64(len(m.data)) {
		end = uint64(len(m.data))
	}
	if start >= end {
		return
	}
	_ = unix.Madvise(m.data[start:end], unix.MADV_WILLNEED)
}

func (m *MMap) Identity() string { return m.identity }

func (m *MMap) Close() error {
	var err error
	if len(m.data) > 0 {
		err = unix.Munmap(m.data)
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
