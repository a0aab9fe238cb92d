package board

import (
	"fmt"

	"github.com/jangala-dev/tinygo-pl011/pl011"
)

// Describe names the UART at base for banners. The baud rate is only known
// once Init or Configure ran; before that the divisors found in the
// registers are shown instead.
func Describe(base uint64, u *pl011.UART) string {
	if b := u.Baud(); b != 0 {
		return fmt.Sprintf("0x%x at %d baud", base, b)
	}
	ibrd := u.Device().IntegerDivisor()
	fbrd := u.Device().FractionalDivisor()
	return fmt.Sprintf("0x%x, divisor %d+%d/64 (left as found)", base, ibrd, fbrd)
}
