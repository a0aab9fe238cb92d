package board

import (
	"testing"

	"github.com/jangala-dev/tinygo-pl011/pl011"
	"github.com/jangala-dev/tinygo-pl011/pl011sim"
)

func TestDescribe_ProgrammedBaud(t *testing.T) {
	u := pl011.NewUART(pl011.NewBus(pl011sim.New()))
	u.Init(pl011.DefaultClockHz, 115200)

	if got, want := Describe(BaseRPi4, u), "0xfe201000 at 115200 baud"; got != want {
		t.Fatalf("Describe = %q; want %q", got, want)
	}
}

func TestDescribe_UnprogrammedShowsDivisors(t *testing.T) {
	sim := pl011sim.New()
	sim.SetRegister(pl011.OffsetIBRD, 26)
	sim.SetRegister(pl011.OffsetFBRD, 3)
	u := pl011.NewUART(pl011.NewBus(sim))

	got := Describe(BaseRPi3, u)
	if want := "0x3f201000, divisor 26+3/64 (left as found)"; got != want {
		t.Fatalf("Describe = %q; want %q", got, want)
	}
}
