package board

// Well-known PL011 base addresses.
const (
	BaseQEMUVirt = 0x09000000 // QEMU virt machine UART0
	BaseRPi3     = 0x3F201000 // BCM2837 UART0
	BaseRPi4     = 0xFE201000 // BCM2711 UART0
)
