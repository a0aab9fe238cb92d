//go:build linux && (arm || arm64)

// Package board opens a PL011 for the command-line tools: it maps the
// register block through /dev/mem and wraps it in a driver.
package board

import (
	"flag"
	"fmt"

	"github.com/jangala-dev/tinygo-pl011/devmem"
	"github.com/jangala-dev/tinygo-pl011/pl011"
)

// Flags are the command-line settings shared by the tools.
type Flags struct {
	Mem     string
	Base    uint64
	Clock   uint
	Baud    uint
	Minimal bool
}

// Register adds the shared flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Mem, "mem", devmem.DefaultPath, "physical memory device")
	fs.Uint64Var(&f.Base, "base", BaseRPi4, "PL011 physical base address")
	fs.UintVar(&f.Clock, "clock", pl011.DefaultClockHz, "UARTCLK in Hz")
	fs.UintVar(&f.Baud, "baud", pl011.DefaultBaudRate, "baud rate")
	fs.BoolVar(&f.Minimal, "minimal", false, "synchronous transmit, no receive error decoding")
}

// Open maps the register block and returns the driver and the mapping. The
// caller closes the mapping once done with the driver.
func (f *Flags) Open() (*pl011.UART, *devmem.Mapping, error) {
	m, err := devmem.Map(f.Mem, f.Base, pl011.RegisterBlockSize)
	if err != nil {
		return nil, nil, fmt.Errorf("mapping PL011 at 0x%x: %w", f.Base, err)
	}
	profile := pl011.ProfileFull
	if f.Minimal {
		profile = pl011.ProfileMinimal
	}
	u := pl011.NewUART(pl011.New(m.Pointer()), pl011.WithProfile(profile))
	return u, m, nil
}

// Configure applies the clock and baud from the flags with an 8N1 format.
func (f *Flags) Configure(u *pl011.UART) error {
	return u.Configure(pl011.Config{
		ClockHz:  uint32(f.Clock),
		BaudRate: uint32(f.Baud),
	})
}
