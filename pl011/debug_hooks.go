//go:build pl011debug

package pl011

import "sync/atomic"

func (u *UART) dbgTxSpin()   { atomic.AddUint32(&u.stats.TxSpins, 1) }
func (u *UART) dbgBusySpin() { atomic.AddUint32(&u.stats.BusySpins, 1) }
func (u *UART) dbgTx()       { atomic.AddUint32(&u.stats.TxBytes, 1) }
func (u *UART) dbgRx()       { atomic.AddUint32(&u.stats.RxBytes, 1) }
func (u *UART) dbgRxEmpty()  { atomic.AddUint32(&u.stats.RxEmpty, 1) }

// Called per errored character with the error bits read from DR. Every set
// bit is counted, not only the one reported to the caller.
func (u *UART) dbgRxError(e DataError) {
	if e.Has(DataFraming) {
		atomic.AddUint32(&u.stats.ErrFraming, 1)
	}
	if e.Has(DataParity) {
		atomic.AddUint32(&u.stats.ErrParity, 1)
	}
	if e.Has(DataBreak) {
		atomic.AddUint32(&u.stats.ErrBreak, 1)
	}
	if e.Has(DataOverrun) {
		atomic.AddUint32(&u.stats.ErrOverrun, 1)
	}
}
