//go:build linux && (arm || arm64)

// pl011_probe maps a PL011 through /dev/mem and prints its registers,
// optionally after programming it and running an internal loopback check.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/jangala-dev/tinygo-pl011/internal/board"
	"github.com/jangala-dev/tinygo-pl011/pl011"
)

var (
	cfg      board.Flags
	doInit   = flag.Bool("init", false, "program baud rate and enable the UART")
	loopback = flag.Bool("loopback", false, "send a probe string through internal loopback (implies -init)")
)

func main() {
	cfg.Register(flag.CommandLine)
	flag.Parse()

	u, m, err := cfg.Open()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer m.Close()
	log.Printf("mapped 0x%x (%d bytes) from %s", m.Phys(), m.Size(), cfg.Mem)

	report("before", u)

	if *doInit || *loopback {
		u.Init(uint32(cfg.Clock), uint32(cfg.Baud))
		report("after Init", u)
	}

	if *loopback {
		if err := runLoopback(u); err != nil {
			log.Printf("loopback: FAIL: %v", err)
			os.Exit(1)
		}
		log.Printf("loopback: PASS")
	}

	spew.Dump(u.DebugStats())
}

func report(label string, u *pl011.UART) {
	r := u.Device().Snapshot()
	fmt.Printf("== %s\n", label)
	fmt.Printf("FR   = %v\n", pl011.Flags(r.FR))
	fmt.Printf("CR   = %v\n", pl011.Control(r.CR))
	fmt.Printf("LCRH = %v\n", pl011.LineControl(r.LCR_H))
	fmt.Printf("RSR  = %v\n", pl011.ReceiveStatus(r.RSR))
	fmt.Printf("baud divisor = %d + %d/64\n", r.IBRD, r.FBRD)
	spew.Dump(r)
}

func runLoopback(u *pl011.UART) error {
	const probe = "pl011 probe"

	u.SetLoopback(true)
	defer u.SetLoopback(false)

	// drop anything left over
	for u.ReadReady() {
		_, _ = u.ReadByte()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	s := u.Stream()
	buf := make([]byte, 1)
	for i := 0; i < len(probe); i++ {
		if _, err := s.WriteContext(ctx, []byte{probe[i]}); err != nil {
			return fmt.Errorf("write %d: %w", i, err)
		}
		if _, err := s.ReadContext(ctx, buf); err != nil {
			return fmt.Errorf("read %d: %w", i, err)
		}
		if buf[0] != probe[i] {
			return fmt.Errorf("byte %d: got 0x%02x want 0x%02x", i, buf[0], probe[i])
		}
	}
	return nil
}
