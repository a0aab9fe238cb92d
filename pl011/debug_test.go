//go:build pl011debug

package pl011_test

import (
	"testing"

	"github.com/jangala-dev/tinygo-pl011/pl011"
)

func TestDebugStats_Counts(t *testing.T) {
	u, sim := newTestUART()

	sim.SetTxFull(2)
	_ = u.WriteByte('a')
	sim.SetBusy(3, 0)
	u.WaitIdle()

	_, _ = u.ReadByte()                      // empty
	sim.Receive('x', 0x0500|'y', 0x0800|'z') // ok, FE+BE, OE
	for i := 0; i < 3; i++ {
		_, _ = u.ReadByte()
	}

	want := pl011.Stats{
		TxBytes:    1,
		TxSpins:    2,
		BusySpins:  3,
		RxBytes:    1,
		RxEmpty:    1,
		ErrFraming: 1,
		ErrBreak:   1,
		ErrOverrun: 1,
	}
	if got := u.DebugStats(); got != want {
		t.Fatalf("stats = %+v; want %+v", got, want)
	}

	u.DebugReset()
	if got := u.DebugStats(); got != (pl011.Stats{}) {
		t.Fatalf("after reset: %+v", got)
	}
}
