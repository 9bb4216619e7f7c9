package dns

import (
	"errors"
	"testing"

	"github.com/pavel-gr/protolab/pkg/wire"
)

// buildResponse fabricates a response message: the header, a single
// example.com question, then the given raw answer records.
func buildResponse(t *testing.T, id uint16, answers ...[]byte) []byte {
	t.Helper()

	answerCount := uint16(len(answers))

	msg := make([]byte, 12)
	wire.WriteUint16(msg, 0, id)
	wire.WriteUint16(msg, 2, uint16(FLAG_QR_RESPONSE|FLAG_RD_RECURSION_DESIRED))
	wire.WriteUint16(msg, 4, 1)
	wire.WriteUint16(msg, 6, answerCount)

	name, err := EncodeDomainName("example.com")
	if err != nil {
		t.Fatalf("encode question name: %v", err)
	}
	msg = append(msg, name...)
	msg = append(msg, 0x00, 0x01, 0x00, 0x01) // QTYPE=A, QCLASS=IN

	for _, answer := range answers {
		msg = append(msg, answer...)
	}
	return msg
}

// rawRecord fabricates one uncompressed answer record.
func rawRecord(t *testing.T, domain string, rtype DNSType, ttl uint32, rdata []byte) []byte {
	t.Helper()

	name, err := EncodeDomainName(domain)
	if err != nil {
		t.Fatalf("encode record name: %v", err)
	}

	fixed := make([]byte, 10)
	wire.WriteUint16(fixed, 0, uint16(rtype))
	wire.WriteUint16(fixed, 2, uint16(CLASS_IN))
	wire.WriteUint32(fixed, 4, ttl)
	wire.WriteUint16(fixed, 8, uint16(len(rdata)))

	record := append(name, fixed...)
	return append(record, rdata...)
}

func TestDecodeResponseHeader(t *testing.T) {
	msg := buildResponse(t, 0xBEEF)

	resp, err := DecodeResponse(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Header.ID != 0xBEEF {
		t.Errorf("ID: got 0x%04X, want 0xBEEF", resp.Header.ID)
	}
	if resp.Header.QuestionCount != 1 {
		t.Errorf("QDCOUNT: got %d, want 1", resp.Header.QuestionCount)
	}
	if resp.Header.Flags&FLAG_QR_RESPONSE == 0 {
		t.Errorf("QR flag not parsed: 0x%04X", resp.Header.Flags)
	}
	if len(resp.Questions) != 1 || resp.Questions[0].Name != "example.com" {
		t.Errorf("question section: %+v", resp.Questions)
	}
	if resp.Questions[0].Type != TYPE_A || resp.Questions[0].Class != CLASS_IN {
		t.Errorf("question type/class: %+v", resp.Questions[0])
	}
}

func TestDecodeResponseRecordTypes(t *testing.T) {
	tests := []struct {
		name         string
		rtype        DNSType
		rdata        []byte
		expectedData string
	}{
		{
			name:         "A record",
			rtype:        TYPE_A,
			rdata:        []byte{93, 184, 216, 34},
			expectedData: "93.184.216.34",
		},
		{
			name:  "AAAA record",
			rtype: TYPE_AAAA,
			rdata: []byte{
				0x26, 0x06, 0x28, 0x00, 0x02, 0x20, 0x00, 0x01,
				0x02, 0x48, 0x18, 0x93, 0x25, 0xc8, 0x19, 0x46,
			},
			expectedData: "2606:2800:0220:0001:0248:1893:25c8:1946",
		},
		{
			name:  "CNAME record",
			rtype: TYPE_CNAME,
			rdata: []byte{3, 'w', 'w', 'w', 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0},

			expectedData: "www.example.com",
		},
		{
			name:         "MX record",
			rtype:        TYPE_MX,
			rdata:        append([]byte{0x00, 0x0A}, []byte{4, 'm', 'a', 'i', 'l', 3, 'c', 'o', 'm', 0}...),
			expectedData: "10 mail.com",
		},
		{
			name:         "unknown type kept as placeholder",
			rtype:        DNSType(99),
			rdata:        []byte{1, 2, 3, 4, 5},
			expectedData: "(5 bytes of type 99)",
		},
		{
			name:         "A with wrong length kept as placeholder",
			rtype:        TYPE_A,
			rdata:        []byte{1, 2, 3},
			expectedData: "(3 bytes of type 1)",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			msg := buildResponse(t, 1,
				rawRecord(t, "example.com", test.rtype, 3600, test.rdata))

			resp, err := DecodeResponse(msg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(resp.Answers) != 1 {
				t.Fatalf("got %d answers, want 1", len(resp.Answers))
			}

			answer := resp.Answers[0]
			if answer.Name != "example.com" {
				t.Errorf("name: got %q", answer.Name)
			}
			if answer.Type != test.rtype {
				t.Errorf("type: got %d, want %d", answer.Type, test.rtype)
			}
			if answer.TTL != 3600 {
				t.Errorf("TTL: got %d, want 3600", answer.TTL)
			}
			if answer.Data != test.expectedData {
				t.Errorf("data: got %q, want %q", answer.Data, test.expectedData)
			}
		})
	}
}

func TestDecodeResponseMultipleAnswersKeepWireOrder(t *testing.T) {
	msg := buildResponse(t, 7,
		rawRecord(t, "example.com", TYPE_A, 60, []byte{10, 0, 0, 1}),
		rawRecord(t, "example.com", TYPE_A, 60, []byte{10, 0, 0, 2}),
		rawRecord(t, "example.com", TYPE_A, 60, []byte{10, 0, 0, 1}),
	)

	resp, err := DecodeResponse(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"10.0.0.1", "10.0.0.2", "10.0.0.1"}
	if len(resp.Answers) != len(expected) {
		t.Fatalf("got %d answers, want %d", len(resp.Answers), len(expected))
	}
	for i, want := range expected {
		if resp.Answers[i].Data != want {
			t.Errorf("answer %d: got %q, want %q", i, resp.Answers[i].Data, want)
		}
	}
}

func TestDecodeResponseCompressedAnswerName(t *testing.T) {
	// The answer's name is a pointer back to the question name at offset 12.
	answer := []byte{0xC0, 0x0C}
	fixed := make([]byte, 10)
	wire.WriteUint16(fixed, 0, uint16(TYPE_A))
	wire.WriteUint16(fixed, 2, uint16(CLASS_IN))
	wire.WriteUint32(fixed, 4, 300)
	wire.WriteUint16(fixed, 8, 4)
	answer = append(answer, fixed...)
	answer = append(answer, 93, 184, 216, 34)

	msg := buildResponse(t, 2, answer)

	resp, err := DecodeResponse(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Answers) != 1 {
		t.Fatalf("got %d answers, want 1", len(resp.Answers))
	}
	if resp.Answers[0].Name != "example.com" {
		t.Errorf("compressed name: got %q, want %q", resp.Answers[0].Name, "example.com")
	}
	if resp.Answers[0].Data != "93.184.216.34" {
		t.Errorf("data: got %q", resp.Answers[0].Data)
	}
}

// rdataFor fabricates valid RDATA for the given record type: an encoded
// name for CNAME, preference plus name for MX, an opaque byte otherwise.
func rdataFor(t *testing.T, rtype DNSType) []byte {
	t.Helper()

	switch rtype {
	case TYPE_CNAME:
		name, err := EncodeDomainName("alias.example.com")
		if err != nil {
			t.Fatalf("encode rdata name: %v", err)
		}
		return name
	case TYPE_MX:
		name, err := EncodeDomainName("mail.example.com")
		if err != nil {
			t.Fatalf("encode rdata name: %v", err)
		}
		return append([]byte{0x00, 0x0A}, name...)
	default:
		return []byte{0xAB}
	}
}

func TestDecodeResponseRoundTripFromQuery(t *testing.T) {
	// decodeResponse(encodeQuery ++ fabricated answer) must hand back the
	// question domain exactly as given.
	for _, qtype := range []DNSType{TYPE_A, TYPE_NS, TYPE_CNAME, TYPE_MX, TYPE_AAAA} {
		t.Run(qtype.String(), func(t *testing.T) {
			query := NewQuery("round.trip.example.com", qtype)
			packet, err := query.Encode()
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			// Flip to a response with one uncompressed answer.
			wire.WriteUint16(packet, 2, uint16(FLAG_QR_RESPONSE))
			wire.WriteUint16(packet, 6, 1)
			packet = append(packet,
				rawRecord(t, "round.trip.example.com", qtype, 30, rdataFor(t, qtype))...)

			resp, err := DecodeResponse(packet)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Header.ID != query.ID {
				t.Errorf("ID: got 0x%04X, want 0x%04X", resp.Header.ID, query.ID)
			}
			if resp.Questions[0].Name != "round.trip.example.com" {
				t.Errorf("question name: got %q", resp.Questions[0].Name)
			}
			if resp.Answers[0].Name != "round.trip.example.com" {
				t.Errorf("answer name: got %q", resp.Answers[0].Name)
			}
		})
	}
}

func TestDecodeResponseErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(t *testing.T) []byte
		expected error
	}{
		{
			name: "shorter than header",
			mutate: func(t *testing.T) []byte {
				return []byte{0x12, 0x34, 0x00}
			},
			expected: ErrTruncated,
		},
		{
			name: "question cut before type and class",
			mutate: func(t *testing.T) []byte {
				msg := buildResponse(t, 1)
				return msg[:len(msg)-3]
			},
			expected: ErrTruncated,
		},
		{
			name: "answer fixed fields cut",
			mutate: func(t *testing.T) []byte {
				msg := buildResponse(t, 1,
					rawRecord(t, "example.com", TYPE_A, 60, []byte{1, 2, 3, 4}))
				return msg[:len(msg)-10]
			},
			expected: ErrTruncated,
		},
		{
			name: "rdlength past message end",
			mutate: func(t *testing.T) []byte {
				record := rawRecord(t, "example.com", TYPE_A, 60, []byte{1, 2, 3, 4})
				// Claim more RDATA than is present.
				wire.WriteUint16(record, len(record)-6, 200)
				return buildResponse(t, 1, record)
			},
			expected: ErrTruncated,
		},
		{
			name: "forward pointer in answer name",
			mutate: func(t *testing.T) []byte {
				record := []byte{0xC0, 0xFF, 0, 1, 0, 1, 0, 0, 0, 0, 0, 0}
				return buildResponse(t, 1, record)
			},
			expected: ErrMalformedCompression,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeResponse(test.mutate(t))
			if err == nil {
				t.Fatalf("expected error but got none")
			}
			if !errors.Is(err, test.expected) {
				t.Errorf("got %v, want %v", err, test.expected)
			}
		})
	}
}
