// pl011/device.go

package pl011

import "unsafe"

// Device is the handle to one PL011 register block. It exposes the raw
// volatile accessors; UART builds the driver operations on top of it.
//
// The status accessors (Flags, ReceiveStatus and the other plain reads) may
// be called from several goroutines at once. Accessors that write, and Data
// (whose read pops the receive FIFO), need the caller to hold the handle
// exclusively. Device does no locking of its own.
type Device struct {
	bus Bus
}

// New returns the handle for the PL011 whose registers start at base.
//
// The caller guarantees, and New cannot check, that base points to the
// control registers of a PL011 mapped as device (strongly-ordered,
// non-cacheable) memory, that the mapping covers at least RegisterBlockSize
// bytes and outlives the handle, and that nothing else accesses those
// registers while the handle is in use. Releasing the mapping is the
// caller's business; a Device has nothing to close.
func New(base unsafe.Pointer) *Device {
	return &Device{bus: mmio{base: base}}
}

// NewBus returns a handle whose accesses go through b, typically a
// simulated register block.
func NewBus(b Bus) *Device {
	return &Device{bus: b}
}

// Flags reads FR.
func (d *Device) Flags() Flags { return Flags(d.bus.Load32(OffsetFR)) & flagsMask }

// Data reads DR. This pops the receive FIFO.
func (d *Device) Data() Data { return Data(d.bus.Load32(OffsetDR)) }

// SetData writes DR, queueing one character for transmission.
func (d *Device) SetData(c byte) { d.bus.Store32(OffsetDR, uint32(c)) }

// ReceiveStatus reads RSR.
func (d *Device) ReceiveStatus() ReceiveStatus {
	return ReceiveStatus(d.bus.Load32(OffsetRSR)) & receiveStatusMask
}

// ClearReceiveStatus writes ECR. Any write clears all four error bits; s is
// written as given.
func (d *Device) ClearReceiveStatus(s ReceiveStatus) { d.bus.Store32(OffsetECR, uint32(s)) }

// Control reads CR.
func (d *Device) Control() Control { return Control(d.bus.Load32(OffsetCR)) }

// SetControl writes CR.
func (d *Device) SetControl(c Control) { d.bus.Store32(OffsetCR, uint32(c)) }

// LineControl reads LCR_H.
func (d *Device) LineControl() LineControl { return LineControl(d.bus.Load32(OffsetLCR_H)) }

// SetLineControl writes LCR_H. On the PL011 this write also latches the
// baud divisors.
func (d *Device) SetLineControl(l LineControl) { d.bus.Store32(OffsetLCR_H, uint32(l)) }

func (d *Device) IntegerDivisor() uint32 { return d.bus.Load32(OffsetIBRD) }

func (d *Device) SetIntegerDivisor(v uint32) { d.bus.Store32(OffsetIBRD, v) }

func (d *Device) FractionalDivisor() uint32 { return d.bus.Load32(OffsetFBRD) }

func (d *Device) SetFractionalDivisor(v uint32) { d.bus.Store32(OffsetFBRD, v) }

// Regs is a snapshot of the registers the driver can read without side
// effects. DR is left out because reading it consumes a character.
type Regs struct {
	RSR   uint32
	FR    uint32
	ILPR  uint32
	IBRD  uint32
	FBRD  uint32
	LCR_H uint32
	CR    uint32
	IFLS  uint32
	IMSC  uint32
	RIS   uint32
	MIS   uint32
	DMACR uint32
}

// Snapshot reads every side-effect free register once, in address order.
func (d *Device) Snapshot() Regs {
	return Regs{
		RSR:   d.bus.Load32(OffsetRSR),
		FR:    d.bus.Load32(OffsetFR),
		ILPR:  d.bus.Load32(OffsetILPR),
		IBRD:  d.bus.Load32(OffsetIBRD),
		FBRD:  d.bus.Load32(OffsetFBRD),
		LCR_H: d.bus.Load32(OffsetLCR_H),
		CR:    d.bus.Load32(OffsetCR),
		IFLS:  d.bus.Load32(OffsetIFLS),
		IMSC:  d.bus.Load32(OffsetIMSC),
		RIS:   d.bus.Load32(OffsetRIS),
		MIS:   d.bus.Load32(OffsetMIS),
		DMACR: d.bus.Load32(OffsetDMACR),
	}
}
