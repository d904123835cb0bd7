package network

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HWAddr is a 48-bit link-layer hardware address.
type HWAddr [6]byte

func (a HWAddr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		a[0], a[1], a[2], a[3], a[4], a[5])
}

// ErrHWAddrNotSupported is returned when an address type has no defined
// hardware-address representation.
var ErrHWAddrNotSupported = errors.New(
	"network: hardware address conversion not yet supported")

// TocinoAddress addresses a node by its coordinate in a 3-D torus
// interconnect. The three coordinates and a reserved byte pack into a
// single 32-bit value.
type TocinoAddress struct {
	X, Y, Z  uint8
	Reserved uint8
}

// TocinoAddressFromRaw unpacks an address from its 32-bit wire form.
func TocinoAddressFromRaw(raw uint32) TocinoAddress {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], raw)
	return TocinoAddress{X: b[0], Y: b[1], Z: b[2], Reserved: b[3]}
}

// Raw returns the packed 32-bit form of the address.
func (a TocinoAddress) Raw() uint32 {
	var b [4]byte
	b[0] = a.X
	b[1] = a.Y
	b[2] = a.Z
	b[3] = a.Reserved
	return binary.LittleEndian.Uint32(b[:])
}

func (a TocinoAddress) String() string {
	return fmt.Sprintf("(%d,%d,%d)", a.X, a.Y, a.Z)
}

// AsHWAddr converts the torus coordinate into a link-layer hardware
// address. There is no defined mapping yet, so this always fails with
// ErrHWAddrNotSupported instead of guessing a zero address.
func (a TocinoAddress) AsHWAddr() (HWAddr, error) {
	return HWAddr{}, ErrHWAddrNotSupported
}
