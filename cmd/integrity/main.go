//go:build linux && (arm || arm64)

// cmd/integrity/main.go
// Cross-port integrity test between a PL011 driven through /dev/mem and a
// host serial port wired to it.
// Wiring:
//   PL011 TX -> peer RX
//   peer TX  -> PL011 RX
// Flow control unused (RTS/CTS not connected).

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.bug.st/serial"

	"github.com/jangala-dev/tinygo-pl011/internal/board"
	"github.com/jangala-dev/tinygo-pl011/pl011"
)

/*** Tunables ***/
var (
	cfg            board.Flags
	peerPath       = flag.String("peer", "/dev/ttyUSB0", "host serial port wired to the PL011")
	totalBytes     = flag.Int("bytes", 16*1024, "bytes per direction")
	timeoutPerTest = flag.Duration("timeout", 10*time.Second, "time limit per direction")
)

const (
	// Mitigation for first-byte artefact: the receiver skips one preamble byte.
	preambleByte = 0x55
	guardDelay   = 2 * time.Millisecond

	contextRadius = 16 // surrounding bytes shown on mismatch
)

/*** Patterns (deterministic) ***/
func patternA(i int) byte { return byte((i*31 + 0x55) & 0xFF) }
func patternB(i int) byte { return byte((i*17 + 0xA6) & 0xFF) }

func main() {
	cfg.Register(flag.CommandLine)
	flag.Parse()

	u, m, err := cfg.Open()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer m.Close()
	if err := cfg.Configure(u); err != nil {
		log.Fatalf("configure: %v", err)
	}

	peer, err := serial.Open(*peerPath, &serial.Mode{
		BaudRate: int(cfg.Baud),
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		log.Fatalf("failed to open peer port %s: %v", *peerPath, err)
	}
	defer peer.Close()
	if err := peer.SetReadTimeout(100 * time.Millisecond); err != nil {
		log.Fatalf("failed to set read timeout: %v", err)
	}

	log.Printf("pl011 integrity test: base=0x%x baud=%d bytes/dir=%d profile=%v peer=%s",
		cfg.Base, u.Baud(), *totalBytes, u.Profile(), *peerPath)

	pass, fail := 0, 0
	report := func(name string, err error) {
		if err == nil {
			log.Printf("[PASS] %s", name)
			pass++
		} else {
			log.Printf("[FAIL] %s: %v", name, err)
			fail++
		}
	}

	report("PL011 -> peer", runToPeer(u, peer, patternA, *totalBytes))
	report("peer -> PL011", runFromPeer(u, peer, patternB, *totalBytes))

	log.Printf("summary: passed=%d failed=%d", pass, fail)
	if fail != 0 {
		os.Exit(1)
	}
}

/*** Test runners ***/

func runToPeer(u *pl011.UART, peer serial.Port, gen func(int) byte, n int) error {
	drain(u)
	if err := peer.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset peer input: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutPerTest)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- checkPeer(ctx, peer, gen, n) }()

	s := u.Stream()
	if _, err := s.WriteContext(ctx, []byte{preambleByte}); err != nil {
		return err
	}
	time.Sleep(guardDelay)
	for i := 0; i < n; i++ {
		if _, err := s.WriteContext(ctx, []byte{gen(i)}); err != nil {
			return fmt.Errorf("send stalled at %d: %w", i, err)
		}
	}
	u.WaitIdle()

	return <-errCh
}

func runFromPeer(u *pl011.UART, peer serial.Port, gen func(int) byte, n int) error {
	drain(u)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutPerTest)
	defer cancel()

	go func() {
		buf := make([]byte, n+1)
		buf[0] = preambleByte
		for i := 0; i < n; i++ {
			buf[i+1] = gen(i)
		}
		if _, err := peer.Write(buf); err != nil {
			log.Printf("peer write: %v", err)
		}
	}()

	counts := map[pl011.ErrorKind]int{}
	s := u.Stream()
	got := make([]byte, 0, n)
	var one [1]byte
	skipped := false
	for len(got) < n {
		_, err := s.ReadContext(ctx, one[:])
		var rxErr *pl011.Error
		switch {
		case errors.As(err, &rxErr):
			counts[rxErr.Kind]++
			continue
		case err != nil:
			return fmt.Errorf("after %d bytes: %w (line errors %v)", len(got), err, counts)
		}
		if !skipped {
			skipped = true
			continue
		}
		got = append(got, one[0])
	}

	if len(counts) != 0 {
		return fmt.Errorf("line errors %v", counts)
	}
	return compare(gen, got)
}

/*** Helpers ***/

func drain(u *pl011.UART) {
	for u.ReadReady() {
		_, _ = u.ReadByte()
	}
	u.ClearErrors()
}

// checkPeer reads n bytes (after the preamble) from the peer port and
// compares them with gen.
func checkPeer(ctx context.Context, peer io.Reader, gen func(int) byte, n int) error {
	got := make([]byte, 0, n+1)
	buf := make([]byte, 256)
	for len(got) < n+1 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("peer received %d of %d bytes: %w", len(got), n+1, err)
		}
		k, err := peer.Read(buf)
		if err != nil {
			return fmt.Errorf("peer read: %w", err)
		}
		got = append(got, buf[:k]...)
	}
	if got[0] != preambleByte {
		return fmt.Errorf("preamble: got 0x%02X want 0x%02X", got[0], preambleByte)
	}
	return compare(gen, got[1:n+1])
}

// compare checks got against gen and describes the first mismatch.
func compare(gen func(int) byte, got []byte) error {
	for i, act := range got {
		if exp := gen(i); act != exp {
			printContext(gen, got, i, contextRadius)
			return fmt.Errorf("integrity mismatch at offset %d: got 0x%02X want 0x%02X", i, act, exp)
		}
	}
	return nil
}

/*** Context dump ***/

func printContext(gen func(int) byte, got []byte, off, radius int) {
	start := off - radius
	if start < 0 {
		start = 0
	}
	end := off + radius + 1
	if end > len(got) {
		end = len(got)
	}

	fmt.Printf("Context (hex): bytes %d to %d\n", start, end-1)
	fmt.Print(" exp: ")
	for i := start; i < end; i++ {
		printHex(gen(i), i == off)
	}
	fmt.Print("\n act: ")
	for i := start; i < end; i++ {
		printHex(got[i], i == off)
	}
	fmt.Println()
}

func printHex(v byte, pivot bool) {
	if pivot {
		fmt.Printf("[%02X]", v)
		return
	}
	fmt.Printf(" %02X ", v)
}
