//go:build linux

package devmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mapping is a window of physical memory mapped shared and uncached
// (O_SYNC) into the process.
type Mapping struct {
	data  []byte
	delta int
	phys  uint64
	size  uintptr
}

// Map maps size bytes of physical memory at phys from the device at path
// (DefaultPath if empty). phys need not be page aligned.
func Map(path string, phys uint64, size uintptr) (*Mapping, error) {
	if path == "" {
		path = DefaultPath
	}
	start, delta, length, err := span(phys, size, unix.Getpagesize())
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &Error{Op: "open " + path, Err: err}
	}
	// The mapping stays valid after the descriptor is closed.
	defer unix.Close(fd)

	data, err := unix.Mmap(fd, int64(start), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, &Error{Op: "mmap", Err: fmt.Errorf("0x%x (%d bytes): %w", start, length, err)}
	}
	return &Mapping{data: data, delta: delta, phys: phys, size: size}, nil
}

// Pointer returns the address of phys inside the mapping, suitable for
// pl011.New. It is nil after Close.
func (m *Mapping) Pointer() unsafe.Pointer {
	if m.data == nil {
		return nil
	}
	return unsafe.Pointer(&m.data[m.delta])
}

// Phys returns the physical address the mapping was made for.
func (m *Mapping) Phys() uint64 { return m.phys }

// Size returns the requested size.
func (m *Mapping) Size() uintptr { return m.size }

// Close unmaps the window.
func (m *Mapping) Close() error {
	if m.data == nil {
		return ErrNotMapped
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if err != nil {
		return &Error{Op: "munmap", Err: err}
	}
	return nil
}
