//go:build pl011debug

package pl011

import "sync/atomic"

// Stats holds counters since the last reset.
type Stats struct {
	// Transmit
	TxBytes   uint32 // bytes written to DR
	TxSpins   uint32 // FR polls that found TXFF set
	BusySpins uint32 // FR polls that found BUSY set in WaitIdle

	// Receive
	RxBytes uint32 // characters returned without error
	RxEmpty uint32 // ReadByte calls that found RXFE set

	// Per-character error bits from DR
	ErrFraming uint32 // FE
	ErrParity  uint32 // PE
	ErrBreak   uint32 // BE
	ErrOverrun uint32 // OE
}

func (u *UART) DebugReset() {
	// Zero the struct by reassigning (safe as Stats is POD)
	u.stats = Stats{}
}

func (u *UART) DebugStats() Stats {
	// Return a copy; 32-bit atomic loads keep each counter whole.
	return Stats{
		TxBytes:   atomic.LoadUint32(&u.stats.TxBytes),
		TxSpins:   atomic.LoadUint32(&u.stats.TxSpins),
		BusySpins: atomic.LoadUint32(&u.stats.BusySpins),

		RxBytes: atomic.LoadUint32(&u.stats.RxBytes),
		RxEmpty: atomic.LoadUint32(&u.stats.RxEmpty),

		ErrFraming: atomic.LoadUint32(&u.stats.ErrFraming),
		ErrParity:  atomic.LoadUint32(&u.stats.ErrParity),
		ErrBreak:   atomic.LoadUint32(&u.stats.ErrBreak),
		ErrOverrun: atomic.LoadUint32(&u.stats.ErrOverrun),
	}
}
