// devmem/devmem.go

// Package devmem maps physical device registers into the process through
// /dev/mem, for driving a PL011 from privileged Linux user space. The
// mapping belongs to the caller: the pl011 handle built on it never unmaps
// anything, so Close the Mapping only once the handle is no longer used.
package devmem

import "fmt"

// DefaultPath is the physical memory device.
const DefaultPath = "/dev/mem"

// Error is returned by Map and Close.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "devmem: " + e.Op + ": " + e.Err.Error()
	}
	return "devmem: " + e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Common errors
var (
	ErrInvalidSize = &Error{Op: "invalid size"}
	ErrNotMapped   = &Error{Op: "not mapped"}
)

// span returns the page-aligned window covering [phys, phys+size): its
// start, the offset of phys inside it, and its length.
func span(phys uint64, size uintptr, pageSize int) (start uint64, delta, length int, err error) {
	if size == 0 {
		return 0, 0, 0, ErrInvalidSize
	}
	if pageSize <= 0 || pageSize&(pageSize-1) != 0 {
		return 0, 0, 0, &Error{Op: "page size", Err: fmt.Errorf("%d is not a power of two", pageSize)}
	}
	ps := uint64(pageSize)
	start = phys &^ (ps - 1)
	delta = int(phys - start)
	end := (phys + uint64(size) + ps - 1) &^ (ps - 1)
	if end <= start {
		return 0, 0, 0, &Error{Op: "range", Err: fmt.Errorf("0x%x+0x%x wraps", phys, size)}
	}
	return start, delta, int(end - start), nil
}
