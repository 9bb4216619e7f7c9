package dns

import (
	"fmt"
	"strings"

	"github.com/pavel-gr/protolab/pkg/wire"
)

const (
	maxLabelLength = 63

	// compressionMask marks the two high bits of a length byte that turn
	// it into a pointer (RFC 1035 section 4.1.4).
	compressionMask = 0xC0

	// maxCompressionHops bounds pointer chains. Together with the
	// strictly-backward target check this makes decoding terminate on any
	// input.
	maxCompressionHops = 16
)

// EncodeDomainName converts a dot-separated domain into wire format: a
// sequence of length-prefixed labels followed by the zero root label.
func EncodeDomainName(domain string) ([]byte, error) {
	labels := strings.Split(domain, ".")

	encoded := make([]byte, 0, len(domain)+2)
	for _, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("empty label in domain %q: %w", domain, wire.ErrFormat)
		}
		if len(label) > maxLabelLength {
			return nil, fmt.Errorf("label %q exceeds %d bytes: %w", label, maxLabelLength, wire.ErrFormat)
		}
		encoded = append(encoded, byte(len(label)))
		encoded = append(encoded, label...)
	}

	return append(encoded, 0), nil
}

// DecodeDomainName reads a name starting at offset inside msg, following
// compression pointers against the full message. It returns the decoded
// dot-separated name and the offset of the first byte after the name as it
// appears at the original position: once a pointer has been followed, the
// return offset stays fixed at the byte after that first pointer.
//
// Pointer targets must point strictly backward and chains are length
// bounded, so malicious input fails with ErrMalformedCompression instead of
// looping.
func DecodeDomainName(msg []byte, offset int) (string, int, error) {
	var name strings.Builder

	cursor := offset
	returnOffset := -1
	hops := 0

	for {
		if cursor >= len(msg) {
			return "", 0, fmt.Errorf("name at offset %d runs past message end: %w", offset, ErrTruncated)
		}

		length := int(msg[cursor])

		switch {
		case length == 0:
			cursor++
			if returnOffset >= 0 {
				return name.String(), returnOffset, nil
			}
			return name.String(), cursor, nil

		case length&compressionMask == compressionMask:
			if cursor+1 >= len(msg) {
				return "", 0, fmt.Errorf("pointer at offset %d missing second byte: %w", cursor, ErrTruncated)
			}

			target := int(wire.ReadUint16(msg, cursor) & 0x3FFF)
			if target >= cursor {
				return "", 0, fmt.Errorf(
					"pointer at offset %d references offset %d ahead of itself: %w",
					cursor, target, ErrMalformedCompression)
			}

			hops++
			if hops > maxCompressionHops {
				return "", 0, fmt.Errorf(
					"name at offset %d follows more than %d pointers: %w",
					offset, maxCompressionHops, ErrMalformedCompression)
			}

			if returnOffset < 0 {
				returnOffset = cursor + 2
			}
			cursor = target

		case length&compressionMask != 0:
			// 0x40 and 0x80 label types are reserved.
			return "", 0, fmt.Errorf("reserved label type 0x%02X at offset %d: %w", length&compressionMask, cursor, ErrMalformedCompression)

		default:
			if cursor+1+length > len(msg) {
				return "", 0, fmt.Errorf("label at offset %d truncated: %w", cursor, ErrTruncated)
			}
			if name.Len() > 0 {
				name.WriteByte('.')
			}
			name.Write(msg[cursor+1 : cursor+1+length])
			cursor += 1 + length
		}
	}
}
