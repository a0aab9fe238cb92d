// pl011/flags.go

package pl011

import "strings"

// Flags are the bits of the flag register (FR).
type Flags uint16

const (
	FlagCTS  Flags = 1 << 0 // clear to send
	FlagDSR  Flags = 1 << 1 // data set ready
	FlagDCD  Flags = 1 << 2 // data carrier detect
	FlagBUSY Flags = 1 << 3 // UART busy transmitting data
	FlagRXFE Flags = 1 << 4 // receive FIFO empty
	FlagTXFF Flags = 1 << 5 // transmit FIFO full
	FlagRXFF Flags = 1 << 6 // receive FIFO full
	FlagTXFE Flags = 1 << 7 // transmit FIFO empty
	FlagRI   Flags = 1 << 8 // ring indicator

	flagsMask Flags = 1<<9 - 1
)

var flagNames = []string{"CTS", "DSR", "DCD", "BUSY", "RXFE", "TXFF", "RXFF", "TXFE", "RI"}

// Has reports whether every bit of m is set in f.
func (f Flags) Has(m Flags) bool { return f&m == m }

// Any reports whether at least one bit of m is set in f.
func (f Flags) Any(m Flags) bool { return f&m != 0 }

// With returns f with the bits of m set.
func (f Flags) With(m Flags) Flags { return f | m }

// Without returns f with the bits of m cleared.
func (f Flags) Without(m Flags) Flags { return f &^ m }

func (f Flags) String() string { return formatBits(uint32(f), flagNames) }

// ReceiveStatus are the bits of the receive status / error clear register
// (RSR/ECR). They describe the character most recently read from DR, except
// for overrun which is set as soon as it happens.
type ReceiveStatus uint8

const (
	StatusFraming ReceiveStatus = 1 << 0
	StatusParity  ReceiveStatus = 1 << 1
	StatusBreak   ReceiveStatus = 1 << 2
	StatusOverrun ReceiveStatus = 1 << 3

	receiveStatusMask ReceiveStatus = 0xF
)

var errorNames = []string{"FE", "PE", "BE", "OE"}

func (s ReceiveStatus) Has(m ReceiveStatus) bool { return s&m == m }

func (s ReceiveStatus) Any(m ReceiveStatus) bool { return s&m != 0 }

func (s ReceiveStatus) With(m ReceiveStatus) ReceiveStatus { return s | m }

func (s ReceiveStatus) Without(m ReceiveStatus) ReceiveStatus { return s &^ m }

func (s ReceiveStatus) String() string { return formatBits(uint32(s), errorNames) }

// DataError are the per-character error bits the PL011 packs above the
// received byte in DR.
type DataError uint16

const (
	DataFraming DataError = 1 << 8
	DataParity  DataError = 1 << 9
	DataBreak   DataError = 1 << 10
	DataOverrun DataError = 1 << 11

	dataErrorMask DataError = 0xF << 8
)

func (e DataError) Has(m DataError) bool { return e&m == m }

func (e DataError) Any(m DataError) bool { return e&m != 0 }

func (e DataError) With(m DataError) DataError { return e | m }

func (e DataError) Without(m DataError) DataError { return e &^ m }

func (e DataError) String() string { return formatBits(uint32(e>>8), errorNames) }

// Data is a raw word read from DR.
type Data uint16

// Char returns the received character.
func (d Data) Char() byte { return byte(d) }

// Errors returns the error bits received with the character.
func (d Data) Errors() DataError { return DataError(d) & dataErrorMask }

// Control are the bits of the control register (CR).
type Control uint16

const (
	ControlUARTEN Control = 1 << 0  // UART enable
	ControlSIREN  Control = 1 << 1  // SIR (IrDA) enable
	ControlSIRLP  Control = 1 << 2  // SIR low-power mode
	ControlLBE    Control = 1 << 7  // loopback enable
	ControlTXE    Control = 1 << 8  // transmit enable
	ControlRXE    Control = 1 << 9  // receive enable
	ControlDTR    Control = 1 << 10 // data transmit ready
	ControlRTS    Control = 1 << 11 // request to send
	ControlOUT1   Control = 1 << 12 // complement of modem status output 1
	ControlOUT2   Control = 1 << 13 // complement of modem status output 2
	ControlRTSEN  Control = 1 << 14 // RTS hardware flow control
	ControlCTSEN  Control = 1 << 15 // CTS hardware flow control
)

var controlNames = []string{
	"UARTEN", "SIREN", "SIRLP", "", "", "", "", "LBE",
	"TXE", "RXE", "DTR", "RTS", "OUT1", "OUT2", "RTSEN", "CTSEN",
}

func (c Control) Has(m Control) bool { return c&m == m }

func (c Control) Any(m Control) bool { return c&m != 0 }

func (c Control) With(m Control) Control { return c | m }

func (c Control) Without(m Control) Control { return c &^ m }

func (c Control) String() string { return formatBits(uint32(c), controlNames) }

// LineControl are the bits of the line control register (LCR_H).
type LineControl uint8

const (
	LineBRK  LineControl = 1 << 0 // send break
	LinePEN  LineControl = 1 << 1 // parity enable
	LineEPS  LineControl = 1 << 2 // even parity select
	LineSTP2 LineControl = 1 << 3 // two stop bits
	LineFEN  LineControl = 1 << 4 // FIFO enable
	LineSPS  LineControl = 1 << 7 // stick parity
)

const (
	lineWLENPos              = 5
	lineWLENMask LineControl = 3 << lineWLENPos
)

var lineNames = []string{"BRK", "PEN", "EPS", "STP2", "FEN", "", "", "SPS"}

func (l LineControl) Has(m LineControl) bool { return l&m == m }

func (l LineControl) Any(m LineControl) bool { return l&m != 0 }

func (l LineControl) With(m LineControl) LineControl { return l | m }

func (l LineControl) Without(m LineControl) LineControl { return l &^ m }

// WordLength returns the configured number of data bits (5..8).
func (l LineControl) WordLength() uint8 { return uint8(l&lineWLENMask)>>lineWLENPos + 5 }

// WithWordLength returns l with the data bit count set; n must be 5..8.
func (l LineControl) WithWordLength(n uint8) LineControl {
	return l&^lineWLENMask | LineControl(n-5)<<lineWLENPos&lineWLENMask
}

func (l LineControl) String() string {
	s := formatBits(uint32(l&^lineWLENMask), lineNames)
	w := "WLEN" + string(rune('0'+l.WordLength()))
	if s == "0" {
		return w
	}
	return s + "|" + w
}

// formatBits renders the set bits of v by name, falling back to the bit
// index for unnamed positions.
func formatBits(v uint32, names []string) string {
	if v == 0 {
		return "0"
	}
	var b strings.Builder
	for i := 0; v != 0; i++ {
		if v&1 != 0 {
			if b.Len() > 0 {
				b.WriteByte('|')
			}
			if i < len(names) && names[i] != "" {
				b.WriteString(names[i])
			} else {
				b.WriteString("bit")
				b.WriteString(string(rune('0' + i/10)))
				b.WriteString(string(rune('0' + i%10)))
			}
		}
		v >>= 1
	}
	return b.String()
}
