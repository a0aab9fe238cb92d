//go:build linux && (arm || arm64)

// pl011term bridges the local terminal to a PL011 mapped through /dev/mem.
// Keys typed are sent to the UART and received characters are printed.
// Ctrl-] exits.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tty "github.com/mattn/go-tty"

	"github.com/jangala-dev/tinygo-pl011/internal/board"
	"github.com/jangala-dev/tinygo-pl011/pl011"
)

const escape = 0x1d // Ctrl-]

var (
	cfg    board.Flags
	doInit = flag.Bool("init", true, "program baud rate and enable the UART")
	idle   = flag.Duration("idle", time.Millisecond, "sleep between polls when nothing was received")
)

func main() {
	cfg.Register(flag.CommandLine)
	flag.Parse()

	u, m, err := cfg.Open()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer m.Close()

	if *doInit {
		if err := cfg.Configure(u); err != nil {
			log.Fatalf("configure: %v", err)
		}
	}

	t, err := tty.Open()
	if err != nil {
		log.Fatalf("open tty: %v", err)
	}
	defer t.Close()

	restore, err := t.Raw()
	if err != nil {
		log.Fatalf("raw mode: %v", err)
	}
	defer restore()

	fmt.Fprintf(t.Output(), "pl011term: %s, Ctrl-] to quit\r\n", board.Describe(cfg.Base, u))

	keys := make(chan rune, 64)
	go func() {
		defer close(keys)
		for {
			r, err := t.ReadRune()
			if err != nil {
				return
			}
			keys <- r
		}
	}()

	out := t.Output()
	con := u.Console()
	for {
		select {
		case r, ok := <-keys:
			if !ok || r == escape {
				fmt.Fprint(out, "\r\n")
				return
			}
			if _, err := con.WriteString(string(r)); err != nil {
				fmt.Fprintf(out, "\r\n[write: %v]\r\n", err)
			}
			continue
		default:
		}

		if !pump(u, out) {
			time.Sleep(*idle)
		}
	}
}

// pump copies whatever the receive FIFO holds to out and reports whether
// anything was there.
func pump(u *pl011.UART, out *os.File) bool {
	got := false
	for {
		b, err := u.ReadByte()
		switch {
		case err == pl011.ErrNoData:
			return got
		case err != nil:
			fmt.Fprintf(out, "[%v]", err)
		default:
			out.Write([]byte{b})
		}
		got = true
	}
}
