// pl011sim/device.go

// Package pl011sim simulates a PL011 register block behind the pl011.Bus
// interface. It records every access in order, models the receive FIFO and
// the per-character error bits, and lets tests script the transmit side
// (FIFO full, busy) a number of flag register polls at a time.
package pl011sim

import (
	"fmt"
	"sync"

	"github.com/jangala-dev/tinygo-pl011/pl011"
)

// Op is the direction of a recorded access.
type Op uint8

const (
	Load Op = iota
	Store
)

// Access is one recorded register access.
type Access struct {
	Op     Op
	Offset uintptr
	Value  uint32
}

func (a Access) String() string {
	name := pl011.RegisterName(a.Offset)
	if name == "" {
		name = fmt.Sprintf("0x%03x", a.Offset)
	}
	if a.Op == Store {
		return fmt.Sprintf("store %s=0x%04x", name, a.Value)
	}
	return fmt.Sprintf("load %s=0x%04x", name, a.Value)
}

// Device is a simulated PL011. The zero value is not usable; call New.
// All methods are safe for concurrent use, so a test can feed the receive
// side from one goroutine while the driver polls from another.
type Device struct {
	mu sync.Mutex

	regs [pl011.RegisterBlockSize / 4]uint32
	log  []Access

	// receive side
	rx      fifo
	rsr     pl011.ReceiveStatus
	overrun bool // a character was lost; flag the next one accepted

	// transmit side
	tx          []byte
	txFull      int  // FR polls still to report TXFF
	busy        int  // FR polls still to report BUSY
	busyPerByte int  // busy polls started by each DR write
	sawTxFull   bool // the last FR poll reported TXFF
	writesFull  int  // DR writes made while sawTxFull

	modem pl011.Flags // CTS, DSR, DCD and RI inputs
}

// New returns a simulated PL011 in its reset state: disabled, FIFOs empty.
func New() *Device {
	d := &Device{}
	d.regs[pl011.OffsetCR/4] = uint32(pl011.ControlRXE | pl011.ControlTXE)
	return d
}

// Load32 implements pl011.Bus.
func (d *Device) Load32(off uintptr) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	var v uint32
	switch off {
	case pl011.OffsetDR:
		if w, ok := d.rx.Get(); ok {
			v = uint32(w)
			d.rsr = pl011.ReceiveStatus(w>>8) & 0xF
		}
	case pl011.OffsetRSR:
		v = uint32(d.rsr)
	case pl011.OffsetFR:
		v = uint32(d.flags())
	case pl011.OffsetICR:
		// write only
	default:
		v = d.regs[off/4]
	}
	d.log = append(d.log, Access{Op: Load, Offset: off, Value: v})
	return v
}

// flags computes FR and advances the scripted transmit state by one poll.
func (d *Device) flags() pl011.Flags {
	f := d.modem
	switch n := d.rx.Used(); {
	case n == 0:
		f |= pl011.FlagRXFE
	case n == d.rx.Size():
		f |= pl011.FlagRXFF
	}
	d.sawTxFull = d.txFull > 0
	if d.sawTxFull {
		f |= pl011.FlagTXFF
		d.txFull--
	} else {
		f |= pl011.FlagTXFE
	}
	if d.busy > 0 {
		f |= pl011.FlagBUSY
		d.busy--
	}
	return f
}

// Store32 implements pl011.Bus.
func (d *Device) Store32(off uintptr, v uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.log = append(d.log, Access{Op: Store, Offset: off, Value: v})
	switch off {
	case pl011.OffsetDR:
		if d.sawTxFull {
			d.writesFull++
		}
		d.tx = append(d.tx, byte(v))
		d.busy = d.busyPerByte
		if pl011.Control(d.regs[pl011.OffsetCR/4]).Has(pl011.ControlLBE) {
			d.receive(uint16(v & 0xFF))
		}
	case pl011.OffsetECR:
		d.rsr = 0
	case pl011.OffsetFR, pl011.OffsetRIS, pl011.OffsetMIS:
		// read only
	default:
		d.regs[off/4] = v
	}
}

func (d *Device) receive(w uint16) {
	if d.overrun {
		w |= uint16(pl011.DataOverrun)
	}
	if !d.rx.Put(w) {
		d.overrun = true
		d.rsr |= pl011.StatusOverrun
		return
	}
	d.overrun = false
}

// Receive queues words (character plus DR error bits) as if they had come
// in on the line. Words arriving at a full FIFO are lost and the next word
// accepted carries the overrun bit.
func (d *Device) Receive(words ...uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range words {
		d.receive(w & 0xFFF)
	}
}

// ReceiveBytes queues error-free characters.
func (d *Device) ReceiveBytes(p []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range p {
		d.receive(uint16(b))
	}
}

// SetTxFull makes the next n FR polls report the transmit FIFO full.
func (d *Device) SetTxFull(n int) {
	d.mu.Lock()
	d.txFull = n
	d.mu.Unlock()
}

// SetBusy makes the next n FR polls report BUSY, and every later DR write
// start another perByte polls of BUSY.
func (d *Device) SetBusy(n, perByte int) {
	d.mu.Lock()
	d.busy, d.busyPerByte = n, perByte
	d.mu.Unlock()
}

// SetModem sets the modem status inputs reported in FR. Bits other than
// CTS, DSR, DCD and RI are ignored.
func (d *Device) SetModem(f pl011.Flags) {
	d.mu.Lock()
	d.modem = f & (pl011.FlagCTS | pl011.FlagDSR | pl011.FlagDCD | pl011.FlagRI)
	d.mu.Unlock()
}

// SetRegister seeds a plain register without recording an access.
func (d *Device) SetRegister(off uintptr, v uint32) {
	d.mu.Lock()
	d.regs[off/4] = v
	d.mu.Unlock()
}

// Register returns the last value stored in a plain register.
func (d *Device) Register(off uintptr) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[off/4]
}

// Accesses returns a copy of the access log.
func (d *Device) Accesses() []Access {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Access(nil), d.log...)
}

// Stores returns the recorded stores, in order.
func (d *Device) Stores() []Access {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Access
	for _, a := range d.log {
		if a.Op == Store {
			out = append(out, a)
		}
	}
	return out
}

// Count returns how many accesses of kind op hit off.
func (d *Device) Count(op Op, off uintptr) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, a := range d.log {
		if a.Op == op && a.Offset == off {
			n++
		}
	}
	return n
}

// ResetLog forgets the recorded accesses.
func (d *Device) ResetLog() {
	d.mu.Lock()
	d.log = nil
	d.mu.Unlock()
}

// Transmitted returns a copy of every character written to DR.
func (d *Device) Transmitted() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.tx...)
}

// WritesWhileFull returns how many DR writes followed an FR poll that
// reported the transmit FIFO full.
func (d *Device) WritesWhileFull() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writesFull
}

// Pending returns the number of words in the receive FIFO.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int(d.rx.Used())
}
