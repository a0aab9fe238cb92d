// pl011/bus.go

package pl011

// Bus performs volatile 32-bit accesses at byte offsets within a PL011
// register block. Every call is exactly one device access: implementations
// must not cache, merge, split or reorder them.
type Bus interface {
	Load32(off uintptr) uint32
	Store32(off uintptr, v uint32)
}
