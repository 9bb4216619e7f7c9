// Package wire provides the endian-aware primitives shared by the DNS and
// DHCP codecs: big-endian integer reads and writes over byte buffers, IPv4
// text conversion, and a diagnostic hex dump.
//
// All functions are pure. Out-of-bounds access is a programming error and
// panics through the normal slice bounds checks.
package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFormat is returned when text input does not match the expected format.
var ErrFormat = errors.New("malformed value")

// ReadUint16 reads a big-endian unsigned 16-bit value at offset.
func ReadUint16(buf []byte, offset int) uint16 {
	return uint16(buf[offset])<<8 | uint16(buf[offset+1])
}

// ReadUint32 reads a big-endian unsigned 32-bit value at offset.
func ReadUint32(buf []byte, offset int) uint32 {
	return uint32(buf[offset])<<24 |
		uint32(buf[offset+1])<<16 |
		uint32(buf[offset+2])<<8 |
		uint32(buf[offset+3])
}

// WriteUint16 writes value big-endian at offset. The caller guarantees the
// buffer has room.
func WriteUint16(buf []byte, offset int, value uint16) {
	buf[offset] = byte(value >> 8)
	buf[offset+1] = byte(value & 0xFF)
}

// WriteUint32 writes value big-endian at offset.
func WriteUint32(buf []byte, offset int, value uint32) {
	buf[offset] = byte(value >> 24)
	buf[offset+1] = byte(value >> 16)
	buf[offset+2] = byte(value >> 8)
	buf[offset+3] = byte(value & 0xFF)
}

// IPv4String formats the 4 bytes at offset as a dotted-decimal address.
func IPv4String(buf []byte, offset int) string {
	return fmt.Sprintf("%d.%d.%d.%d",
		buf[offset], buf[offset+1], buf[offset+2], buf[offset+3])
}

// ParseIPv4 converts a dotted-decimal string into 4 bytes. The input must be
// exactly four dot-separated numeric octets, each in 0-255.
func ParseIPv4(s string) ([4]byte, error) {
	var addr [4]byte

	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return addr, fmt.Errorf("%q is not a dotted-decimal IPv4 address: %w", s, ErrFormat)
	}

	for i, part := range parts {
		octet, err := strconv.Atoi(part)
		if err != nil {
			return addr, fmt.Errorf("octet %q in %q is not numeric: %w", part, s, ErrFormat)
		}
		if octet < 0 || octet > 255 {
			return addr, fmt.Errorf("octet %d in %q is out of range: %w", octet, s, ErrFormat)
		}
		addr[i] = byte(octet)
	}

	return addr, nil
}

// IsZeroIPv4 reports whether a 4-byte address is all zeros.
func IsZeroIPv4(addr [4]byte) bool {
	return addr == [4]byte{}
}
