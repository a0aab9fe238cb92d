//go:build tinygo

// pl011/mmio_tinygo.go

package pl011

import (
	"runtime/volatile"
	"unsafe"
)

// mmio is the Bus for a register block on bare metal.
type mmio struct {
	base unsafe.Pointer
}

func (m mmio) reg(off uintptr) *uint32 { return (*uint32)(unsafe.Add(m.base, off)) }

func (m mmio) Load32(off uintptr) uint32 { return volatile.LoadUint32(m.reg(off)) }

func (m mmio) Store32(off uintptr, v uint32) { volatile.StoreUint32(m.reg(off), v) }
