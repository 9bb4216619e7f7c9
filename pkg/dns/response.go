package dns

import (
	"fmt"
	"strings"

	"github.com/pavel-gr/protolab/pkg/wire"
)

// Header represents the 12-byte DNS message header.
type Header struct {
	ID                    uint16
	Flags                 DNSFlag
	QuestionCount         uint16
	AnswerRecordCount     uint16
	AuthorityRecordCount  uint16
	AdditionalRecordCount uint16
}

// Question represents one entry of the question section.
type Question struct {
	Name  string
	Type  DNSType
	Class DNSClass
}

// Record represents a decoded resource record. Data holds the RDATA rendered
// per type: dotted-decimal for A, colon-grouped hex for AAAA, a domain name
// for CNAME, preference plus domain for MX, and a byte-count placeholder for
// every other type.
type Record struct {
	Name  string
	Type  DNSType
	Class DNSClass
	TTL   uint32
	Data  string
}

// String renders the record in zone-listing style.
func (r Record) String() string {
	return fmt.Sprintf("%-30s %-6s %-5s TTL=%-8d %s", r.Name, r.Type, "IN", r.TTL, r.Data)
}

// Response represents a decoded DNS response message. Answers keep wire
// order; duplicates are preserved.
type Response struct {
	Header    Header
	Questions []Question
	Answers   []Record
}

// DecodeResponse parses a raw DNS response. Unknown record types are kept as
// byte-count placeholders, never dropped. The returned structure owns all of
// its data; the input buffer is not retained.
func DecodeResponse(data []byte) (*Response, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf(
			"response is %d bytes, need at least %d for the header: %w",
			len(data), headerSize, ErrTruncated)
	}

	resp := &Response{
		Header: Header{
			ID:                    wire.ReadUint16(data, 0),
			Flags:                 DNSFlag(wire.ReadUint16(data, 2)),
			QuestionCount:         wire.ReadUint16(data, 4),
			AnswerRecordCount:     wire.ReadUint16(data, 6),
			AuthorityRecordCount:  wire.ReadUint16(data, 8),
			AdditionalRecordCount: wire.ReadUint16(data, 10),
		},
	}

	offset := headerSize

	for range resp.Header.QuestionCount {
		name, next, err := DecodeDomainName(data, offset)
		if err != nil {
			return nil, fmt.Errorf("question section: %w", err)
		}
		if next+4 > len(data) {
			return nil, fmt.Errorf("question at offset %d missing type and class: %w", offset, ErrTruncated)
		}

		resp.Questions = append(resp.Questions, Question{
			Name:  name,
			Type:  DNSType(wire.ReadUint16(data, next)),
			Class: DNSClass(wire.ReadUint16(data, next+2)),
		})
		offset = next + 4
	}

	for range resp.Header.AnswerRecordCount {
		record, next, err := decodeRecord(data, offset)
		if err != nil {
			return nil, fmt.Errorf("answer section: %w", err)
		}
		resp.Answers = append(resp.Answers, record)
		offset = next
	}

	return resp, nil
}

// decodeRecord parses one resource record starting at offset and returns it
// with the offset of the following record.
func decodeRecord(data []byte, offset int) (Record, int, error) {
	name, next, err := DecodeDomainName(data, offset)
	if err != nil {
		return Record{}, 0, err
	}

	// type(2) + class(2) + ttl(4) + rdlength(2)
	if next+10 > len(data) {
		return Record{}, 0, fmt.Errorf("record at offset %d missing fixed fields: %w", offset, ErrTruncated)
	}

	record := Record{
		Name:  name,
		Type:  DNSType(wire.ReadUint16(data, next)),
		Class: DNSClass(wire.ReadUint16(data, next+2)),
		TTL:   wire.ReadUint32(data, next+4),
	}

	rdLength := int(wire.ReadUint16(data, next+8))
	rdataStart := next + 10
	if rdataStart+rdLength > len(data) {
		return Record{}, 0, fmt.Errorf(
			"record %q declares %d RDATA bytes past message end: %w",
			name, rdLength, ErrTruncated)
	}

	record.Data, err = decodeRData(data, rdataStart, rdLength, record.Type)
	if err != nil {
		return Record{}, 0, err
	}

	// Advance past RDATA regardless of whether the type was recognized.
	return record, rdataStart + rdLength, nil
}

// decodeRData renders RDATA as text per record type.
func decodeRData(data []byte, offset, length int, rtype DNSType) (string, error) {
	switch {
	case rtype == TYPE_A && length == 4:
		return wire.IPv4String(data, offset), nil

	case rtype == TYPE_AAAA && length == 16:
		return ipv6String(data[offset : offset+16]), nil

	case rtype == TYPE_CNAME:
		name, _, err := DecodeDomainName(data, offset)
		if err != nil {
			return "", fmt.Errorf("CNAME target: %w", err)
		}
		return name, nil

	case rtype == TYPE_MX:
		if length < 2 {
			return "", fmt.Errorf("MX RDATA of %d bytes has no preference: %w", length, ErrTruncated)
		}
		preference := wire.ReadUint16(data, offset)
		exchange, _, err := DecodeDomainName(data, offset+2)
		if err != nil {
			return "", fmt.Errorf("MX exchange: %w", err)
		}
		return fmt.Sprintf("%d %s", preference, exchange), nil

	default:
		return fmt.Sprintf("(%d bytes of type %d)", length, rtype), nil
	}
}

// ipv6String formats 16 bytes as eight colon-separated hex groups.
func ipv6String(addr []byte) string {
	var sb strings.Builder
	for i := 0; i < 16; i += 2 {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02x%02x", addr[i], addr[i+1])
	}
	return sb.String()
}
