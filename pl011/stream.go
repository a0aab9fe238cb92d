// pl011/stream.go

package pl011

import (
	"context"
	"time"
)

// Stream adapts the byte primitives of a UART to buffer-oriented reads and
// writes. Each call moves at most one byte, so callers loop.
//
// Write returns 1 for a non-empty buffer whatever its length. That is short
// by io.Writer's rules; use Console for text output.
type Stream struct {
	uart *UART
}

// Stream returns the buffer adapter for u.
func (u *UART) Stream() *Stream { return &Stream{uart: u} }

// Write sends p[0] and returns 1. An empty p returns 0 without touching the
// device.
func (s *Stream) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := s.uart.WriteByte(p[0]); err != nil {
		return 0, err
	}
	return 1, nil
}

// WriteReady reports whether the transmit FIFO has room.
func (s *Stream) WriteReady() bool { return s.uart.WriteReady() }

// Flush does nothing with ProfileFull. With ProfileMinimal it spins until
// the UART is no longer busy.
func (s *Stream) Flush() error {
	if s.uart.profile == ProfileMinimal {
		s.uart.WaitIdle()
	}
	return nil
}

// Read spins until a character or a receive error is available, stores the
// character in p[0] and returns 1. Receive errors are returned as they are
// found; the next Read continues with the following character. An empty p
// returns 0 at once.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		b, err := s.uart.ReadByte()
		if err == ErrNoData {
			continue
		}
		if err != nil {
			return 0, err
		}
		p[0] = b
		return 1, nil
	}
}

// ReadReady reports whether the receive FIFO holds anything.
func (s *Stream) ReadReady() bool { return s.uart.ReadReady() }

// WaitReadable polls until the receive FIFO is not empty or ctx is done.
func (s *Stream) WaitReadable(ctx context.Context) error {
	return s.wait(ctx, s.uart.ReadReady)
}

// WaitWritable polls until the transmit FIFO has room or ctx is done.
func (s *Stream) WaitWritable(ctx context.Context) error {
	return s.wait(ctx, s.uart.WriteReady)
}

// ReadContext is Read with a deadline: it waits for data with WaitReadable
// and then reads one character.
func (s *Stream) ReadContext(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if err := s.WaitReadable(ctx); err != nil {
			return 0, err
		}
		b, err := s.uart.ReadByte()
		if err == ErrNoData {
			continue
		}
		if err != nil {
			return 0, err
		}
		p[0] = b
		return 1, nil
	}
}

// WriteContext sends p[0] once the transmit FIFO has room, or returns the
// context error.
func (s *Stream) WriteContext(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := s.WaitWritable(ctx); err != nil {
		return 0, err
	}
	return s.Write(p)
}

func (s *Stream) wait(ctx context.Context, ready func() bool) error {
	if ready() {
		return nil
	}
	t := time.NewTicker(s.uart.pollTick())
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if ready() {
				return nil
			}
		}
	}
}

// pollTick returns the readiness polling interval: about one character time
// at 8N1 for the configured baud, with a lower bound to avoid a hot loop.
func (u *UART) pollTick() time.Duration {
	if u.baud == 0 {
		return 50 * time.Microsecond
	}
	t := 10 * (time.Second / time.Duration(u.baud))
	if t < 20*time.Microsecond {
		t = 20 * time.Microsecond
	}
	return t
}

// Console writes whole buffers by looping over WriteByte. It implements
// io.Writer and io.StringWriter for text output.
type Console struct {
	uart *UART
}

// Console returns a text writer for u.
func (u *UART) Console() *Console { return &Console{uart: u} }

func (c *Console) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := c.uart.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

func (c *Console) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if err := c.uart.WriteByte(s[i]); err != nil {
			return i, err
		}
	}
	return len(s), nil
}
