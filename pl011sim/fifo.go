// pl011sim/fifo.go

package pl011sim

// FIFODepth is the depth of the simulated receive FIFO (PL011 r1p5).
const FIFODepth uint8 = 32

// fifo is the receive FIFO: 12-bit words (character plus error bits).
type fifo struct {
	words      [FIFODepth]uint16
	head, tail uint8
}

// Size returns the total capacity in words.
func (f *fifo) Size() uint8 { return FIFODepth }

// Used returns how many words are queued.
func (f *fifo) Used() uint8 { return f.head - f.tail }

// Put queues a word. If the FIFO is already full, it returns false.
func (f *fifo) Put(w uint16) bool {
	if f.Used() == FIFODepth {
		return false
	}
	f.words[f.head%FIFODepth] = w
	f.head++
	return true
}

// Get pops the oldest word. If the FIFO is empty, it returns (0, false).
func (f *fifo) Get() (uint16, bool) {
	if f.Used() == 0 {
		return 0, false
	}
	w := f.words[f.tail%FIFODepth]
	f.tail++
	return w, true
}
