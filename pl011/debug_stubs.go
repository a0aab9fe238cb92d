//go:build !pl011debug

package pl011

type Stats struct{}

func (u *UART) DebugReset()       {}
func (u *UART) DebugStats() Stats { return Stats{} }

func (u *UART) dbgTxSpin()           {}
func (u *UART) dbgBusySpin()         {}
func (u *UART) dbgTx()               {}
func (u *UART) dbgRx()               {}
func (u *UART) dbgRxEmpty()          {}
func (u *UART) dbgRxError(DataError) {}
