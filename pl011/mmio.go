//go:build !tinygo

// pl011/mmio.go

package pl011

import (
	"sync/atomic"
	"unsafe"
)

// mmio is the Bus for a register block mapped into a hosted process.
//
// The accesses go through sync/atomic so the compiler can neither elide nor
// reorder them. Only on arm and arm64 do they lower to single word loads and
// stores (with barriers), which is what device memory needs. On amd64 a store
// is a locked exchange that reads the register first, which would pop a
// character from DR; the tools that map real hardware build for arm and
// arm64 only.
type mmio struct {
	base unsafe.Pointer
}

func (m mmio) reg(off uintptr) *uint32 { return (*uint32)(unsafe.Add(m.base, off)) }

func (m mmio) Load32(off uintptr) uint32 { return atomic.LoadUint32(m.reg(off)) }

func (m mmio) Store32(off uintptr, v uint32) { atomic.StoreUint32(m.reg(off), v) }
