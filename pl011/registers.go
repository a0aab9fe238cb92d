// pl011/registers.go

package pl011

import "unsafe"

// Registers describes the PL011 control block. It is never allocated by this
// package: it only gives the shape of a hardware-owned region, and the
// Offset* constants below are derived from it.
//
// Every register occupies a 32-bit word slot. The comment on each field gives
// the number of meaningful bits; the rest read as zero and must be written as
// zero.
type Registers struct {
	DR    uint32    // 0x000 data (12): character + FE/PE/BE/OE
	RSR   uint32    // 0x004 receive status (4) / error clear on write
	_     [4]uint32 // 0x008
	FR    uint32    // 0x018 flags (9)
	_     uint32    // 0x01C
	ILPR  uint32    // 0x020 IrDA low-power counter (8)
	IBRD  uint32    // 0x024 integer baud divisor (16)
	FBRD  uint32    // 0x028 fractional baud divisor (6)
	LCR_H uint32    // 0x02C line control (8)
	CR    uint32    // 0x030 control (16)
	IFLS  uint32    // 0x034 interrupt FIFO level select (6)
	IMSC  uint32    // 0x038 interrupt mask set/clear (11)
	RIS   uint32    // 0x03C raw interrupt status (11)
	MIS   uint32    // 0x040 masked interrupt status (11)
	ICR   uint32    // 0x044 interrupt clear (11)
	DMACR uint32    // 0x048 DMA control (3)
}

// Register byte offsets within the block.
const (
	OffsetDR    = unsafe.Offsetof(Registers{}.DR)
	OffsetRSR   = unsafe.Offsetof(Registers{}.RSR)
	OffsetECR   = OffsetRSR // same address; writes clear the error status
	OffsetFR    = unsafe.Offsetof(Registers{}.FR)
	OffsetILPR  = unsafe.Offsetof(Registers{}.ILPR)
	OffsetIBRD  = unsafe.Offsetof(Registers{}.IBRD)
	OffsetFBRD  = unsafe.Offsetof(Registers{}.FBRD)
	OffsetLCR_H = unsafe.Offsetof(Registers{}.LCR_H)
	OffsetCR    = unsafe.Offsetof(Registers{}.CR)
	OffsetIFLS  = unsafe.Offsetof(Registers{}.IFLS)
	OffsetIMSC  = unsafe.Offsetof(Registers{}.IMSC)
	OffsetRIS   = unsafe.Offsetof(Registers{}.RIS)
	OffsetMIS   = unsafe.Offsetof(Registers{}.MIS)
	OffsetICR   = unsafe.Offsetof(Registers{}.ICR)
	OffsetDMACR = unsafe.Offsetof(Registers{}.DMACR)

	// RegisterBlockSize is the number of bytes a mapping must cover.
	RegisterBlockSize = unsafe.Sizeof(Registers{})
)

// Layout assertions. An offset that drifts from the PL011 memory map makes
// the constant index either negative (overflow) or out of range.
var (
	_ = [1]struct{}{}[OffsetDR-0x000]
	_ = [1]struct{}{}[OffsetRSR-0x004]
	_ = [1]struct{}{}[OffsetFR-0x018]
	_ = [1]struct{}{}[OffsetILPR-0x020]
	_ = [1]struct{}{}[OffsetIBRD-0x024]
	_ = [1]struct{}{}[OffsetFBRD-0x028]
	_ = [1]struct{}{}[OffsetLCR_H-0x02C]
	_ = [1]struct{}{}[OffsetCR-0x030]
	_ = [1]struct{}{}[OffsetIFLS-0x034]
	_ = [1]struct{}{}[OffsetIMSC-0x038]
	_ = [1]struct{}{}[OffsetRIS-0x03C]
	_ = [1]struct{}{}[OffsetMIS-0x040]
	_ = [1]struct{}{}[OffsetICR-0x044]
	_ = [1]struct{}{}[OffsetDMACR-0x048]
	_ = [1]struct{}{}[RegisterBlockSize-0x04C]
)

// RegisterName returns the mnemonic for a register offset, or "" if the
// offset does not address a register.
func RegisterName(off uintptr) string {
	switch off {
	case OffsetDR:
		return "DR"
	case OffsetRSR:
		return "RSR"
	case OffsetFR:
		return "FR"
	case OffsetILPR:
		return "ILPR"
	case OffsetIBRD:
		return "IBRD"
	case OffsetFBRD:
		return "FBRD"
	case OffsetLCR_H:
		return "LCR_H"
	case OffsetCR:
		return "CR"
	case OffsetIFLS:
		return "IFLS"
	case OffsetIMSC:
		return "IMSC"
	case OffsetRIS:
		return "RIS"
	case OffsetMIS:
		return "MIS"
	case OffsetICR:
		return "ICR"
	case OffsetDMACR:
		return "DMACR"
	}
	return ""
}
