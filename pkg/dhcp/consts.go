package dhcp

import "strconv"

// Operation codes (op field)
const (
	OP_REQUEST byte = 1 // client to server
	OP_REPLY   byte = 2 // server to client
)

// Hardware type constants, fixed to Ethernet in this design
const (
	HTYPE_ETHERNET byte = 1
	HLEN_ETHERNET  byte = 6
)

// MessageType represents the DHCP message type carried in option 53
type MessageType byte

// DHCP message types
const (
	DHCP_DISCOVER MessageType = 1
	DHCP_OFFER    MessageType = 2
	DHCP_REQUEST  MessageType = 3
	DHCP_DECLINE  MessageType = 4
	DHCP_ACK      MessageType = 5
	DHCP_NAK      MessageType = 6
	DHCP_RELEASE  MessageType = 7
)

// DHCP option codes (RFC 2132)
const (
	OPT_PAD          byte = 0
	OPT_SUBNET_MASK  byte = 1
	OPT_ROUTER       byte = 3
	OPT_DNS_SERVER   byte = 6
	OPT_REQUESTED_IP byte = 50
	OPT_LEASE_TIME   byte = 51
	OPT_MSG_TYPE     byte = 53
	OPT_SERVER_ID    byte = 54
	OPT_END          byte = 255
)

// Fixed layout constants (RFC 2131 section 2)
const (
	// HeaderSize is the fixed header before the magic cookie.
	HeaderSize = 236

	// CookieOffset is where the 4-byte magic cookie sits.
	CookieOffset = 236

	// OptionsOffset is where the options section starts.
	OptionsOffset = 240

	// PacketSize is the serialized size of every message: the 576-byte
	// minimum IP datagram, zero padded past the end option.
	PacketSize = 576

	// FLAG_BROADCAST is the broadcast bit of the flags field.
	FLAG_BROADCAST uint16 = 0x8000
)

// MagicCookie separates the fixed header from the options section.
var MagicCookie = [4]byte{99, 130, 83, 99}

// String returns the conventional message type name.
func (t MessageType) String() string {
	switch t {
	case DHCP_DISCOVER:
		return "DISCOVER"
	case DHCP_OFFER:
		return "OFFER"
	case DHCP_REQUEST:
		return "REQUEST"
	case DHCP_DECLINE:
		return "DECLINE"
	case DHCP_ACK:
		return "ACK"
	case DHCP_NAK:
		return "NAK"
	case DHCP_RELEASE:
		return "RELEASE"
	default:
		return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
	}
}
