// pl011/uart.go

// Package pl011 is a polling driver for ARM PrimeCell PL011 UARTs reached
// through memory-mapped registers. Transmit and receive work one byte at a
// time and busy-wait on the flag register; there are no interrupts, no DMA
// and no goroutines. Callers that need timeouts poll the readiness queries
// (or use the context helpers on Stream) instead of the blocking calls.
package pl011

// Profile selects how transmit completes and how received words are
// interpreted. The two are fixed together so a UART never mixes them.
type Profile uint8

const (
	// ProfileFull returns from WriteByte once the byte is queued in the
	// transmit FIFO and decodes the per-character error bits on receive.
	ProfileFull Profile = iota
	// ProfileMinimal waits in WriteByte until the UART is no longer busy and
	// returns received characters without looking at their error bits.
	ProfileMinimal
)

func (p Profile) String() string {
	if p == ProfileMinimal {
		return "minimal"
	}
	return "full"
}

// Parity is the parity setting used by Configure and SetFormat.
type Parity uint8

const (
	// ParityNone disables parity generation and checking (the most common setting).
	ParityNone Parity = iota
	// ParityEven sets even parity (total number of 1 bits is even).
	ParityEven
	// ParityOdd sets odd parity (total number of 1 bits is odd).
	ParityOdd
)

const (
	// DefaultClockHz is the UARTCLK of the QEMU virt and Raspberry Pi PL011s.
	DefaultClockHz = 24000000
	// DefaultBaudRate is used by Configure when Config.BaudRate is zero.
	DefaultBaudRate = 115200
)

// Config is the full line setup applied by Configure.
type Config struct {
	ClockHz     uint32 // UARTCLK; zero means DefaultClockHz
	BaudRate    uint32 // zero means DefaultBaudRate
	DataBits    uint8  // 5..8; zero means 8
	StopBits    uint8  // 1 or 2; zero means 1
	Parity      Parity
	FlowControl bool // RTS/CTS hardware flow control
}

// Option configures a UART at construction.
type Option func(*UART)

// WithProfile selects the transmit/receive profile. The default is
// ProfileFull.
func WithProfile(p Profile) Option {
	return func(u *UART) { u.profile = p }
}

// UART drives one PL011. Its methods are not safe for concurrent use except
// for the status queries Flags, IsTransmitting, ReadReady and WriteReady.
type UART struct {
	dev     *Device
	profile Profile

	baud uint32 // last programmed baud, for diagnostics

	stats Stats
}

// NewUART returns a driver for dev. It does not touch the hardware; call
// Init or Configure before use unless firmware already set the UART up.
func NewUART(dev *Device, opts ...Option) *UART {
	u := &UART{dev: dev}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Device returns the underlying register handle.
func (u *UART) Device() *Device { return u.dev }

// Profile returns the profile chosen at construction.
func (u *UART) Profile() Profile { return u.profile }

// Baud returns the last baud rate programmed through Init or Configure, or
// zero.
func (u *UART) Baud() uint32 { return u.baud }

// Divisors returns the integer and fractional baud divisors for clockHz and
// baud. The divisor is (clockHz*4)/baud in 6-bit fixed point. baud must not
// be zero.
func Divisors(clockHz, baud uint32) (ibrd, fbrd uint32) {
	div := (uint64(clockHz) << 2) / uint64(baud)
	return uint32(div >> 6), uint32(div & 0x3F)
}

// Init programs the baud rate and enables the UART for transmit and
// receive. The register writes are, in order: clear UARTEN in CR (keeping
// the other bits), IBRD, FBRD, clear the receive errors, and CR with RXE,
// TXE and UARTEN set. The divisors may only change while the UART is
// disabled, and the stale error status is cleared so the first read after
// reconfiguration does not see it.
//
// A zero baud is a caller bug and panics.
func (u *UART) Init(clockHz, baud uint32) {
	ibrd, fbrd := Divisors(clockHz, baud)

	u.dev.SetControl(u.dev.Control().Without(ControlUARTEN))
	u.dev.SetIntegerDivisor(ibrd)
	u.dev.SetFractionalDivisor(fbrd)
	u.dev.ClearReceiveStatus(0)
	u.dev.SetControl(ControlRXE | ControlTXE | ControlUARTEN)

	u.baud = baud
}

// Configure applies a full line setup: disable, divisors, LCR_H (format and
// FIFO enable), clear errors, enable. Unlike Init it also writes LCR_H, which
// latches the divisors on real hardware.
func (u *UART) Configure(cfg Config) error {
	if cfg.ClockHz == 0 {
		cfg.ClockHz = DefaultClockHz
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	lcr, err := lineControl(cfg.DataBits, cfg.StopBits, cfg.Parity)
	if err != nil {
		return err
	}
	ibrd, fbrd := Divisors(cfg.ClockHz, cfg.BaudRate)

	// 1) Disable while configuring.
	u.dev.SetControl(u.dev.Control().Without(ControlUARTEN))

	// 2) Baud and format. The LCR_H write must follow the divisor writes.
	u.dev.SetIntegerDivisor(ibrd)
	u.dev.SetFractionalDivisor(fbrd)
	u.dev.SetLineControl(lcr)

	// 3) Clear sticky RX errors.
	u.dev.ClearReceiveStatus(0)

	// 4) Enable, with flow control if asked.
	cr := ControlRXE | ControlTXE | ControlUARTEN
	if cfg.FlowControl {
		cr |= ControlRTSEN | ControlCTSEN
	}
	u.dev.SetControl(cr)

	u.baud = cfg.BaudRate
	return nil
}

// SetFormat sets data bits, stop bits and parity, and enables the FIFOs.
// The UART is disabled around the LCR_H write and CR is then restored.
// A zero dataBits or stopBits keeps the 8N1 default for that field.
func (u *UART) SetFormat(dataBits, stopBits uint8, parity Parity) error {
	lcr, err := lineControl(dataBits, stopBits, parity)
	if err != nil {
		return err
	}
	cr := u.dev.Control()
	u.dev.SetControl(cr.Without(ControlUARTEN))
	u.dev.SetLineControl(lcr)
	u.dev.SetControl(cr)
	return nil
}

func lineControl(dataBits, stopBits uint8, parity Parity) (LineControl, error) {
	if dataBits == 0 {
		dataBits = 8
	}
	if stopBits == 0 {
		stopBits = 1
	}
	if dataBits < 5 || dataBits > 8 {
		return 0, ErrInvalidDataBits
	}
	if stopBits != 1 && stopBits != 2 {
		return 0, ErrInvalidStopBits
	}

	lcr := LineFEN.WithWordLength(dataBits)
	if stopBits == 2 {
		lcr |= LineSTP2
	}
	switch parity {
	case ParityEven:
		lcr |= LinePEN | LineEPS
	case ParityOdd:
		lcr |= LinePEN
	}
	return lcr, nil
}

// SetLoopback connects the transmitter to the receiver inside the UART
// (CR.LBE). Used by self tests.
func (u *UART) SetLoopback(on bool) {
	cr := u.dev.Control()
	if on {
		cr = cr.With(ControlLBE)
	} else {
		cr = cr.Without(ControlLBE)
	}
	u.dev.SetControl(cr)
}

// ClearErrors clears the receive status register.
func (u *UART) ClearErrors() { u.dev.ClearReceiveStatus(0) }

// ReceiveStatus returns the error status of the last character read.
func (u *UART) ReceiveStatus() ReceiveStatus { return u.dev.ReceiveStatus() }

// Flags returns the current flag register.
func (u *UART) Flags() Flags { return u.dev.Flags() }

// IsTransmitting reports whether the UART is still shifting out data.
func (u *UART) IsTransmitting() bool { return u.dev.Flags().Has(FlagBUSY) }

// WriteReady reports whether WriteByte would return without waiting for
// FIFO space.
func (u *UART) WriteReady() bool { return !u.dev.Flags().Has(FlagTXFF) }

// ReadReady reports whether ReadByte would return a character (or a receive
// error) rather than ErrNoData.
func (u *UART) ReadReady() bool { return !u.dev.Flags().Has(FlagRXFE) }

// WriteByte queues c for transmission, spinning while the transmit FIFO is
// full. With ProfileFull it returns once c is in the FIFO; with
// ProfileMinimal it also waits until the UART is no longer busy. There is no
// timeout: a wedged UART spins forever. The error is always nil; the
// signature is io.ByteWriter's.
func (u *UART) WriteByte(c byte) error {
	for u.dev.Flags().Has(FlagTXFF) {
		u.dbgTxSpin()
	}
	u.dev.SetData(c)
	u.dbgTx()

	if u.profile == ProfileMinimal {
		u.WaitIdle()
	}
	return nil
}

// WaitIdle spins until the UART has finished sending everything queued.
func (u *UART) WaitIdle() {
	for u.dev.Flags().Has(FlagBUSY) {
		u.dbgBusySpin()
	}
}

// ReadByte returns the next received character without waiting. It returns
// ErrNoData when the receive FIFO is empty. With ProfileFull a character
// received with errors is reported as ErrFraming, ErrParity, ErrBreak or
// ErrOverrun (the first that applies, in that order) and is consumed all the
// same; the next call returns the next character.
func (u *UART) ReadByte() (byte, error) {
	if u.dev.Flags().Has(FlagRXFE) {
		u.dbgRxEmpty()
		return 0, ErrNoData
	}
	d := u.dev.Data()
	if u.profile == ProfileFull {
		if err := decodeError(d.Errors()); err != nil {
			u.dbgRxError(d.Errors())
			return 0, err
		}
	}
	u.dbgRx()
	return d.Char(), nil
}
