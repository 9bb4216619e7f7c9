package dns

import (
	"fmt"
	"math/rand/v2"

	"github.com/pavel-gr/protolab/pkg/wire"
)

const headerSize = 12

// Query represents a single-question DNS query. Immutable once constructed;
// create one per resolution request.
type Query struct {
	ID     uint16
	Domain string
	Type   DNSType
	Class  DNSClass
}

// NewQuery creates a query for the given domain and record type with a
// random transaction ID and class IN.
func NewQuery(domain string, qtype DNSType) *Query {
	return &Query{
		ID:     uint16(rand.Uint32()),
		Domain: domain,
		Type:   qtype,
		Class:  CLASS_IN,
	}
}

// Encode builds the raw query packet: a 12-byte header with the recursion
// desired flag and QDCOUNT=1, followed by the encoded question.
func (q *Query) Encode() ([]byte, error) {
	name, err := EncodeDomainName(q.Domain)
	if err != nil {
		return nil, fmt.Errorf("can't encode query for %q: %w", q.Domain, err)
	}

	packet := make([]byte, headerSize, headerSize+len(name)+4)
	wire.WriteUint16(packet, 0, q.ID)
	wire.WriteUint16(packet, 2, uint16(FLAG_RD_RECURSION_DESIRED))
	wire.WriteUint16(packet, 4, 1) // QDCOUNT

	packet = append(packet, name...)

	tail := make([]byte, 4)
	wire.WriteUint16(tail, 0, uint16(q.Type))
	wire.WriteUint16(tail, 2, uint16(q.Class))

	return append(packet, tail...), nil
}
