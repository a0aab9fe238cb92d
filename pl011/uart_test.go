package pl011_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/jangala-dev/tinygo-pl011/pl011"
	"github.com/jangala-dev/tinygo-pl011/pl011sim"
)

// newTestUART returns a driver wired to a fresh simulated PL011.
func newTestUART(opts ...pl011.Option) (*pl011.UART, *pl011sim.Device) {
	sim := pl011sim.New()
	return pl011.NewUART(pl011.NewBus(sim), opts...), sim
}

func store(off uintptr, v uint32) pl011sim.Access {
	return pl011sim.Access{Op: pl011sim.Store, Offset: off, Value: v}
}

func wantStores(t *testing.T, sim *pl011sim.Device, want []pl011sim.Access) {
	t.Helper()
	got := sim.Stores()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("register stores differ\n got: %s\nwant: %s", spew.Sdump(got), spew.Sdump(want))
	}
}

func TestDivisors_KnownValues(t *testing.T) {
	cases := []struct {
		clock, baud uint32
		ibrd, fbrd  uint32
	}{
		{24000000, 115200, 13, 1},
		{48000000, 115200, 26, 2},
		{3000000, 9600, 19, 34},
		{125000000, 921600, 8, 30},
	}
	for _, c := range cases {
		ibrd, fbrd := pl011.Divisors(c.clock, c.baud)
		if ibrd != c.ibrd || fbrd != c.fbrd {
			t.Errorf("Divisors(%d, %d) = %d, %d; want %d, %d", c.clock, c.baud, ibrd, fbrd, c.ibrd, c.fbrd)
		}
	}
}

func TestInit_ProgramsDivisors(t *testing.T) {
	clocks := []uint32{1, 7372800, 24000000, 48000000, 125000000, 0xFFFFFFFF}
	bauds := []uint32{1, 300, 9600, 115200, 921600, 3000000}
	for _, clk := range clocks {
		for _, baud := range bauds {
			u, sim := newTestUART()
			u.Init(clk, baud)

			div := uint64(clk) * 4 / uint64(baud)
			if got, want := sim.Register(pl011.OffsetIBRD), uint32(div>>6); got != want {
				t.Fatalf("clk=%d baud=%d: IBRD=%d want %d", clk, baud, got, want)
			}
			if got, want := sim.Register(pl011.OffsetFBRD), uint32(div&0x3F); got != want {
				t.Fatalf("clk=%d baud=%d: FBRD=%d want %d", clk, baud, got, want)
			}
			if u.Baud() != baud {
				t.Fatalf("Baud()=%d want %d", u.Baud(), baud)
			}
		}
	}
}

func TestInit_WriteOrder(t *testing.T) {
	u, sim := newTestUART()
	cr := pl011.ControlLBE | pl011.ControlTXE | pl011.ControlRXE | pl011.ControlUARTEN
	sim.SetRegister(pl011.OffsetCR, uint32(cr))

	u.Init(24000000, 115200)

	acc := sim.Accesses()
	if len(acc) == 0 || acc[0].Op != pl011sim.Load || acc[0].Offset != pl011.OffsetCR {
		t.Fatalf("Init must start by reading CR, got %s", spew.Sdump(acc))
	}
	wantStores(t, sim, []pl011sim.Access{
		store(pl011.OffsetCR, uint32(cr.Without(pl011.ControlUARTEN))),
		store(pl011.OffsetIBRD, 13),
		store(pl011.OffsetFBRD, 1),
		store(pl011.OffsetECR, 0),
		store(pl011.OffsetCR, uint32(pl011.ControlRXE|pl011.ControlTXE|pl011.ControlUARTEN)),
	})
}

func TestInit_ZeroBaudPanics(t *testing.T) {
	u, _ := newTestUART()
	defer func() {
		if recover() == nil {
			t.Fatal("Init with baud 0 did not panic")
		}
	}()
	u.Init(24000000, 0)
}

func TestConfigure_Defaults(t *testing.T) {
	u, sim := newTestUART()
	if err := u.Configure(pl011.Config{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ibrd, fbrd := pl011.Divisors(pl011.DefaultClockHz, pl011.DefaultBaudRate)
	reset := pl011.ControlTXE | pl011.ControlRXE
	wantStores(t, sim, []pl011sim.Access{
		store(pl011.OffsetCR, uint32(reset)),
		store(pl011.OffsetIBRD, ibrd),
		store(pl011.OffsetFBRD, fbrd),
		store(pl011.OffsetLCR_H, uint32(pl011.LineFEN.WithWordLength(8))),
		store(pl011.OffsetECR, 0),
		store(pl011.OffsetCR, uint32(pl011.ControlRXE|pl011.ControlTXE|pl011.ControlUARTEN)),
	})
	if u.Baud() != pl011.DefaultBaudRate {
		t.Fatalf("Baud()=%d", u.Baud())
	}
}

func TestConfigure_FormatAndFlowControl(t *testing.T) {
	u, sim := newTestUART()
	err := u.Configure(pl011.Config{
		ClockHz:     48000000,
		BaudRate:    9600,
		DataBits:    7,
		StopBits:    2,
		Parity:      pl011.ParityEven,
		FlowControl: true,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	lcr := pl011.LineControl(sim.Register(pl011.OffsetLCR_H))
	want := pl011.LineFEN.WithWordLength(7) | pl011.LineSTP2 | pl011.LinePEN | pl011.LineEPS
	if lcr != want {
		t.Fatalf("LCR_H=%v want %v", lcr, want)
	}
	cr := pl011.Control(sim.Register(pl011.OffsetCR))
	if !cr.Has(pl011.ControlRTSEN | pl011.ControlCTSEN | pl011.ControlUARTEN) {
		t.Fatalf("CR=%v, want flow control enabled", cr)
	}
}

func TestConfigure_RejectsBadFormat(t *testing.T) {
	u, sim := newTestUART()
	if err := u.Configure(pl011.Config{DataBits: 9}); !errors.Is(err, pl011.ErrInvalidDataBits) {
		t.Fatalf("DataBits 9: err=%v", err)
	}
	if err := u.Configure(pl011.Config{StopBits: 3}); !errors.Is(err, pl011.ErrInvalidStopBits) {
		t.Fatalf("StopBits 3: err=%v", err)
	}
	if n := len(sim.Accesses()); n != 0 {
		t.Fatalf("rejected Configure touched the device %d times", n)
	}
}

func TestSetFormat_RestoresControl(t *testing.T) {
	u, sim := newTestUART()
	u.Init(24000000, 115200)
	sim.ResetLog()

	if err := u.SetFormat(8, 1, pl011.ParityOdd); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	on := pl011.ControlRXE | pl011.ControlTXE | pl011.ControlUARTEN
	wantStores(t, sim, []pl011sim.Access{
		store(pl011.OffsetCR, uint32(on.Without(pl011.ControlUARTEN))),
		store(pl011.OffsetLCR_H, uint32(pl011.LineFEN.WithWordLength(8)|pl011.LinePEN)),
		store(pl011.OffsetCR, uint32(on)),
	})
}

func TestWriteByte_WaitsForFIFOSpace(t *testing.T) {
	u, sim := newTestUART()
	sim.SetTxFull(3)

	if err := u.WriteByte('x'); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n := sim.WritesWhileFull(); n != 0 {
		t.Fatalf("%d DR writes while TXFF was set", n)
	}
	if n := sim.Count(pl011sim.Load, pl011.OffsetFR); n != 4 {
		t.Fatalf("FR polled %d times; want 4", n)
	}
	if got := string(sim.Transmitted()); got != "x" {
		t.Fatalf("transmitted %q", got)
	}
}

func TestWriteByte_QueuesWithoutWaitingForIdle(t *testing.T) {
	u, sim := newTestUART()
	sim.SetBusy(0, 5)

	_ = u.WriteByte('a')
	if n := sim.Count(pl011sim.Load, pl011.OffsetFR); n != 1 {
		t.Fatalf("FR polled %d times; want 1", n)
	}
	if !u.IsTransmitting() {
		t.Fatal("IsTransmitting should report BUSY right after a write")
	}
}

func TestWriteByte_MinimalWaitsForIdle(t *testing.T) {
	u, sim := newTestUART(pl011.WithProfile(pl011.ProfileMinimal))
	sim.SetBusy(0, 2)

	_ = u.WriteByte('a')
	// one TXFF poll, two BUSY polls, one idle poll
	if n := sim.Count(pl011sim.Load, pl011.OffsetFR); n != 4 {
		t.Fatalf("FR polled %d times; want 4", n)
	}
	if u.IsTransmitting() {
		t.Fatal("UART still busy after a synchronous write")
	}
}

func TestWriteByte_KeepsCallOrder(t *testing.T) {
	u, sim := newTestUART()
	for i, c := range []byte("ordered") {
		sim.SetTxFull(i % 3)
		_ = u.WriteByte(c)
	}
	if got := string(sim.Transmitted()); got != "ordered" {
		t.Fatalf("transmitted %q", got)
	}
	if n := sim.WritesWhileFull(); n != 0 {
		t.Fatalf("%d DR writes while TXFF was set", n)
	}
}

func TestReadByte_NoData(t *testing.T) {
	u, sim := newTestUART()

	b, err := u.ReadByte()
	if !errors.Is(err, pl011.ErrNoData) || b != 0 {
		t.Fatalf("ReadByte on empty: b=%#x err=%v; want 0, ErrNoData", b, err)
	}
	if n := sim.Count(pl011sim.Load, pl011.OffsetDR); n != 0 {
		t.Fatalf("DR read %d times with RXFE set", n)
	}
	if u.ReadReady() {
		t.Fatal("ReadReady with RXFE set")
	}
}

func TestReadByte_ErrorPriority(t *testing.T) {
	cases := []struct {
		word uint16
		want error
	}{
		{0x0F41, pl011.ErrFraming},
		{0x0E41, pl011.ErrParity},
		{0x0C41, pl011.ErrBreak},
		{0x0841, pl011.ErrOverrun},
		{0x0A41, pl011.ErrParity},
		{0x0541, pl011.ErrFraming},
		{0x0941, pl011.ErrFraming},
		{0x0041, nil},
	}
	for _, c := range cases {
		u, sim := newTestUART()
		sim.Receive(c.word)

		b, err := u.ReadByte()
		if err != c.want {
			t.Errorf("word %#04x: err=%v want %v", c.word, err, c.want)
			continue
		}
		if err == nil && b != 0x41 {
			t.Errorf("word %#04x: got %#x want 0x41", c.word, b)
		}
		if sim.Pending() != 0 {
			t.Errorf("word %#04x: character not consumed", c.word)
		}
	}
}

func TestReadByte_ErrorConsumesCharacter(t *testing.T) {
	u, sim := newTestUART()
	sim.Receive(0x0141, 0x0042)

	if _, err := u.ReadByte(); err != pl011.ErrFraming {
		t.Fatalf("first read: err=%v want ErrFraming", err)
	}
	b, err := u.ReadByte()
	if err != nil || b != 'B' {
		t.Fatalf("second read: b=%q err=%v; want 'B', nil", b, err)
	}
	if _, err := u.ReadByte(); err != pl011.ErrNoData {
		t.Fatalf("third read: err=%v want ErrNoData", err)
	}
}

func TestReadByte_MinimalIgnoresErrorBits(t *testing.T) {
	u, sim := newTestUART(pl011.WithProfile(pl011.ProfileMinimal))
	sim.Receive(0x0F41)

	b, err := u.ReadByte()
	if err != nil || b != 'A' {
		t.Fatalf("got %q, %v; want 'A', nil", b, err)
	}
}

func TestReceiveStatus_ReportsAndClears(t *testing.T) {
	u, sim := newTestUART()
	sim.Receive(0x0241)

	_, _ = u.ReadByte()
	if s := u.ReceiveStatus(); s != pl011.StatusParity {
		t.Fatalf("RSR=%v want PE", s)
	}
	u.ClearErrors()
	if s := u.ReceiveStatus(); s != 0 {
		t.Fatalf("RSR=%v after ClearErrors", s)
	}
}

func TestOverrun_MarksNextCharacter(t *testing.T) {
	u, sim := newTestUART()
	for i := 0; i < int(pl011sim.FIFODepth)+1; i++ {
		sim.ReceiveBytes([]byte{byte(i)})
	}
	for i := 0; i < int(pl011sim.FIFODepth); i++ {
		if _, err := u.ReadByte(); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
	sim.ReceiveBytes([]byte{'n'})
	if _, err := u.ReadByte(); err != pl011.ErrOverrun {
		t.Fatalf("err=%v want ErrOverrun", err)
	}
}

func TestError_Categories(t *testing.T) {
	cases := []struct {
		err  error
		kind pl011.ErrorKind
		cat  pl011.Category
	}{
		{pl011.ErrBreak, pl011.KindBreak, pl011.CategoryOther},
		{pl011.ErrOverrun, pl011.KindOverrun, pl011.CategoryOther},
		{pl011.ErrFraming, pl011.KindFraming, pl011.CategoryInvalidData},
		{pl011.ErrParity, pl011.KindParity, pl011.CategoryInvalidData},
	}
	for _, c := range cases {
		var e *pl011.Error
		if !errors.As(c.err, &e) {
			t.Fatalf("%v is not a *pl011.Error", c.err)
		}
		if e.Kind != c.kind || e.Category() != c.cat {
			t.Errorf("%v: kind=%v cat=%v; want %v, %v", c.err, e.Kind, e.Category(), c.kind, c.cat)
		}
	}
	if errors.Is(pl011.ErrNoData, pl011.ErrBreak) {
		t.Fatal("ErrNoData must not match a receive error")
	}
}

func TestLoopback_Echo(t *testing.T) {
	u, _ := newTestUART()
	u.Init(24000000, 115200)
	u.SetLoopback(true)

	for _, c := range []byte("ping") {
		_ = u.WriteByte(c)
		b, err := u.ReadByte()
		if err != nil || b != c {
			t.Fatalf("echo of %q: got %q, %v", c, b, err)
		}
	}

	u.SetLoopback(false)
	_ = u.WriteByte('x')
	if _, err := u.ReadByte(); err != pl011.ErrNoData {
		t.Fatalf("loopback off: err=%v want ErrNoData", err)
	}
}

func TestEndToEnd_WriteThenRead(t *testing.T) {
	u, sim := newTestUART()
	if !u.Flags().Has(pl011.FlagRXFE) || u.Flags().Has(pl011.FlagTXFF) {
		t.Fatalf("unexpected reset flags %v", u.Flags())
	}
	sim.ResetLog()

	_ = u.WriteByte(0x41)
	wantStores(t, sim, []pl011sim.Access{store(pl011.OffsetDR, 0x0041)})
	if n := sim.Count(pl011sim.Load, pl011.OffsetFR); n != 1 {
		t.Fatalf("FR polled %d times; want 1 (no spinning)", n)
	}

	sim.Receive(0x0042)
	b, err := u.ReadByte()
	if err != nil || b != 0x42 {
		t.Fatalf("got %#x, %v; want 0x42, nil", b, err)
	}
}

func TestSnapshot_ReadsEachRegisterOnceInOrder(t *testing.T) {
	u, sim := newTestUART()
	sim.SetRegister(pl011.OffsetIBRD, 13)
	sim.SetRegister(pl011.OffsetFBRD, 1)
	sim.ReceiveBytes([]byte{'s'})

	r := u.Device().Snapshot()

	want := []uintptr{
		pl011.OffsetRSR, pl011.OffsetFR, pl011.OffsetILPR, pl011.OffsetIBRD,
		pl011.OffsetFBRD, pl011.OffsetLCR_H, pl011.OffsetCR, pl011.OffsetIFLS,
		pl011.OffsetIMSC, pl011.OffsetRIS, pl011.OffsetMIS, pl011.OffsetDMACR,
	}
	acc := sim.Accesses()
	if len(acc) != len(want) {
		t.Fatalf("%d accesses; want %d\n%s", len(acc), len(want), spew.Sdump(acc))
	}
	for i, a := range acc {
		if a.Op != pl011sim.Load || a.Offset != want[i] {
			t.Fatalf("access %d = %v; want load of %s", i, a, pl011.RegisterName(want[i]))
		}
	}
	if r.IBRD != 13 || r.FBRD != 1 {
		t.Fatalf("IBRD=%d FBRD=%d; want 13, 1", r.IBRD, r.FBRD)
	}
	if sim.Pending() != 1 {
		t.Fatal("Snapshot consumed received data")
	}
}
