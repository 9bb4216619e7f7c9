package wire

import (
	"fmt"
	"strings"
)

// HexDump renders buf 16 bytes per row as offset, hex values, and ASCII.
// Diagnostic output only; nothing on an encode or decode path depends on it.
func HexDump(buf []byte) string {
	var sb strings.Builder

	for row := 0; row < len(buf); row += 16 {
		fmt.Fprintf(&sb, "%04X  ", row)

		for col := 0; col < 16; col++ {
			if row+col < len(buf) {
				fmt.Fprintf(&sb, "%02X ", buf[row+col])
			} else {
				sb.WriteString("   ")
			}
			if col == 7 {
				sb.WriteByte(' ')
			}
		}

		sb.WriteString(" |")
		for col := 0; col < 16 && row+col < len(buf); col++ {
			c := buf[row+col]
			if c >= 32 && c < 127 {
				sb.WriteByte(c)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}

	return sb.String()
}
