package dns

import (
	"strconv"
	"strings"
)

// DNSType represents a DNS record type
type DNSType uint16

// DNS Type constants
const (
	TYPE_A     DNSType = 1  // a host address
	TYPE_NS    DNSType = 2  // an authoritative name server
	TYPE_CNAME DNSType = 5  // the canonical name for an alias
	TYPE_MX    DNSType = 15 // mail exchange
	TYPE_AAAA  DNSType = 28 // IPv6 host address
)

// DNSClass represents a DNS class
type DNSClass uint16

// DNS Class constants
const (
	CLASS_IN DNSClass = 1 // Internet
)

// DNSFlag represents the 16-bit flags field of the DNS header
type DNSFlag uint16

// DNS Flag constants
const (
	FLAG_QR_RESPONSE          = DNSFlag(1 << 15) // Query/Response
	FLAG_AA_AUTHORITATIVE     = DNSFlag(1 << 10) // Authoritative Answer
	FLAG_TC_TRUNCATED         = DNSFlag(1 << 9)  // Truncated
	FLAG_RD_RECURSION_DESIRED = DNSFlag(1 << 8)  // Recursion Desired
	FLAG_RA_RECURSION_AVAIL   = DNSFlag(1 << 7)  // Recursion Available
)

// String returns the conventional record type mnemonic.
func (t DNSType) String() string {
	switch t {
	case TYPE_A:
		return "A"
	case TYPE_NS:
		return "NS"
	case TYPE_CNAME:
		return "CNAME"
	case TYPE_MX:
		return "MX"
	case TYPE_AAAA:
		return "AAAA"
	default:
		return "TYPE" + strconv.Itoa(int(t))
	}
}

// TypeFromString maps a record type mnemonic to its DNSType value.
func TypeFromString(s string) (DNSType, bool) {
	switch strings.ToUpper(s) {
	case "A":
		return TYPE_A, true
	case "NS":
		return TYPE_NS, true
	case "CNAME":
		return TYPE_CNAME, true
	case "MX":
		return TYPE_MX, true
	case "AAAA":
		return TYPE_AAAA, true
	default:
		return 0, false
	}
}
