// Package dhcp implements the DHCPv4 message format of RFC 2131 and the
// option encoding of RFC 2132: a 236-byte fixed header, the magic cookie,
// and a TLV options section inside a fixed 576-byte packet.
package dhcp

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/pavel-gr/protolab/pkg/wire"
)

// ErrTruncated is returned when a buffer ends before the fixed header, the
// magic cookie, or a declared option value.
var ErrTruncated = errors.New("truncated dhcp message")

// Message represents a single DHCP message. The xid correlates a whole
// exchange: the DISCOVER picks it at random and every later message echoes
// it verbatim.
type Message struct {
	Op    byte
	HType byte
	HLen  byte
	Hops  byte
	XID   uint32
	Secs  uint16
	Flags uint16

	CIAddr [4]byte // client's current address
	YIAddr [4]byte // address assigned by the server
	SIAddr [4]byte // server address
	GIAddr [4]byte // relay gateway address

	CHAddr [16]byte // client hardware address, 6 significant bytes

	Type MessageType

	// Options, each serialized only when the message type calls for it.
	RequestedIP [4]byte
	SubnetMask  [4]byte
	Router      [4]byte
	DNSServer   [4]byte
	ServerID    [4]byte
	LeaseTime   uint32
}

// OfferParams carries the server-side configuration an OFFER or ACK hands
// out to the client.
type OfferParams struct {
	OfferedIP  [4]byte
	ServerIP   [4]byte
	SubnetMask [4]byte
	Router     [4]byte
	DNSServer  [4]byte
	LeaseTime  uint32
}

// NewDiscover creates a DISCOVER with a fresh random xid, the broadcast flag
// set, and the given hardware address.
func NewDiscover(mac [6]byte) *Message {
	msg := &Message{
		Op:    OP_REQUEST,
		HType: HTYPE_ETHERNET,
		HLen:  HLEN_ETHERNET,
		XID:   rand.Uint32(),
		Flags: FLAG_BROADCAST,
		Type:  DHCP_DISCOVER,
	}
	copy(msg.CHAddr[:], mac[:])
	return msg
}

// NewOffer creates an OFFER answering the given DISCOVER. The xid and
// hardware address are copied from the predecessor; the offered address and
// network options come from the server parameters.
func NewOffer(discover *Message, params OfferParams) *Message {
	msg := &Message{
		Op:         OP_REPLY,
		HType:      HTYPE_ETHERNET,
		HLen:       HLEN_ETHERNET,
		XID:        discover.XID,
		YIAddr:     params.OfferedIP,
		SIAddr:     params.ServerIP,
		CHAddr:     discover.CHAddr,
		Type:       DHCP_OFFER,
		SubnetMask: params.SubnetMask,
		Router:     params.Router,
		DNSServer:  params.DNSServer,
		ServerID:   params.ServerIP,
		LeaseTime:  params.LeaseTime,
	}
	return msg
}

// NewRequest creates a REQUEST continuing the exchange started by pred
// (the client's DISCOVER), asking for requestedIP from the server
// identified by serverID.
func NewRequest(pred *Message, requestedIP, serverID [4]byte) *Message {
	return &Message{
		Op:          OP_REQUEST,
		HType:       HTYPE_ETHERNET,
		HLen:        HLEN_ETHERNET,
		XID:         pred.XID,
		CHAddr:      pred.CHAddr,
		Type:        DHCP_REQUEST,
		RequestedIP: requestedIP,
		ServerID:    serverID,
	}
}

// NewAck creates an ACK answering the given REQUEST, confirming the address
// in params.OfferedIP.
func NewAck(request *Message, params OfferParams) *Message {
	msg := NewOffer(request, params)
	msg.Type = DHCP_ACK
	return msg
}

// ToBytes serializes the message into a fixed 576-byte packet: the header
// field by field at its RFC 2131 offset, the magic cookie at 236, then the
// options from 240 terminated by the end marker. The unused tail stays zero.
func (m *Message) ToBytes() []byte {
	packet := make([]byte, PacketSize)

	packet[0] = m.Op
	packet[1] = m.HType
	packet[2] = m.HLen
	packet[3] = m.Hops
	wire.WriteUint32(packet, 4, m.XID)
	wire.WriteUint16(packet, 8, m.Secs)
	wire.WriteUint16(packet, 10, m.Flags)
	copy(packet[12:16], m.CIAddr[:])
	copy(packet[16:20], m.YIAddr[:])
	copy(packet[20:24], m.SIAddr[:])
	copy(packet[24:28], m.GIAddr[:])
	copy(packet[28:44], m.CHAddr[:])
	// sname (44..108) and file (108..236) stay zeroed.

	copy(packet[CookieOffset:], MagicCookie[:])

	offset := OptionsOffset

	packet[offset] = OPT_MSG_TYPE
	packet[offset+1] = 1
	packet[offset+2] = byte(m.Type)
	offset += 3

	if m.Type == DHCP_REQUEST && !wire.IsZeroIPv4(m.RequestedIP) {
		offset = putAddrOption(packet, offset, OPT_REQUESTED_IP, m.RequestedIP)
	}
	if !wire.IsZeroIPv4(m.ServerID) {
		offset = putAddrOption(packet, offset, OPT_SERVER_ID, m.ServerID)
	}

	if m.Type == DHCP_OFFER || m.Type == DHCP_ACK {
		if !wire.IsZeroIPv4(m.SubnetMask) {
			offset = putAddrOption(packet, offset, OPT_SUBNET_MASK, m.SubnetMask)
		}
		if !wire.IsZeroIPv4(m.Router) {
			offset = putAddrOption(packet, offset, OPT_ROUTER, m.Router)
		}
		if !wire.IsZeroIPv4(m.DNSServer) {
			offset = putAddrOption(packet, offset, OPT_DNS_SERVER, m.DNSServer)
		}
		if m.LeaseTime > 0 {
			packet[offset] = OPT_LEASE_TIME
			packet[offset+1] = 4
			wire.WriteUint32(packet, offset+2, m.LeaseTime)
			offset += 6
		}
	}

	packet[offset] = OPT_END

	return packet
}

// putAddrOption writes one 4-byte address option and returns the next offset.
func putAddrOption(packet []byte, offset int, code byte, addr [4]byte) int {
	packet[offset] = code
	packet[offset+1] = 4
	copy(packet[offset+2:offset+6], addr[:])
	return offset + 6
}

// FromBytes deserializes a DHCP message. The fixed header is read at its
// RFC 2131 offsets, the magic cookie is verified, and the options section is
// walked as code/length/value triples until the end marker or the buffer
// boundary. Pad bytes are skipped without a length byte; unknown codes are
// skipped by their declared length. The result owns its data; the input
// buffer is not retained.
func FromBytes(data []byte) (*Message, error) {
	if len(data) < OptionsOffset {
		return nil, fmt.Errorf(
			"buffer is %d bytes, need %d for header and magic cookie: %w",
			len(data), OptionsOffset, ErrTruncated)
	}

	if [4]byte(data[CookieOffset:OptionsOffset]) != MagicCookie {
		return nil, fmt.Errorf(
			"bad magic cookie % X at offset %d: %w",
			data[CookieOffset:OptionsOffset], CookieOffset, wire.ErrFormat)
	}

	msg := &Message{
		Op:    data[0],
		HType: data[1],
		HLen:  data[2],
		Hops:  data[3],
		XID:   wire.ReadUint32(data, 4),
		Secs:  wire.ReadUint16(data, 8),
		Flags: wire.ReadUint16(data, 10),
	}
	copy(msg.CIAddr[:], data[12:16])
	copy(msg.YIAddr[:], data[16:20])
	copy(msg.SIAddr[:], data[20:24])
	copy(msg.GIAddr[:], data[24:28])
	copy(msg.CHAddr[:], data[28:44])

	offset := OptionsOffset
	for offset < len(data) {
		code := data[offset]
		offset++

		if code == OPT_END {
			break
		}
		if code == OPT_PAD {
			continue
		}

		if offset >= len(data) {
			return nil, fmt.Errorf("option %d has no length byte: %w", code, ErrTruncated)
		}
		length := int(data[offset])
		offset++

		if offset+length > len(data) {
			return nil, fmt.Errorf(
				"option %d declares %d bytes past buffer end: %w",
				code, length, ErrTruncated)
		}
		value := data[offset : offset+length]

		switch code {
		case OPT_MSG_TYPE:
			if length >= 1 {
				msg.Type = MessageType(value[0])
			}
		case OPT_REQUESTED_IP:
			copy(msg.RequestedIP[:], value)
		case OPT_SERVER_ID:
			copy(msg.ServerID[:], value)
		case OPT_SUBNET_MASK:
			copy(msg.SubnetMask[:], value)
		case OPT_ROUTER:
			copy(msg.Router[:], value)
		case OPT_DNS_SERVER:
			copy(msg.DNSServer[:], value)
		case OPT_LEASE_TIME:
			if length >= 4 {
				msg.LeaseTime = wire.ReadUint32(value, 0)
			}
		default:
			// Unknown option, skipped by its declared length.
		}

		offset += length
	}

	return msg, nil
}

// MACString formats the 6 significant hardware address bytes.
func (m *Message) MACString() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		m.CHAddr[0], m.CHAddr[1], m.CHAddr[2],
		m.CHAddr[3], m.CHAddr[4], m.CHAddr[5])
}

// Summary renders a one-line description for logs.
func (m *Message) Summary() string {
	return fmt.Sprintf("DHCP %s  xid=0x%08X  yiaddr=%s  siaddr=%s",
		m.Type, m.XID,
		wire.IPv4String(m.YIAddr[:], 0),
		wire.IPv4String(m.SIAddr[:], 0))
}
