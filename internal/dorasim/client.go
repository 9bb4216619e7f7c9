package dorasim

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/pavel-gr/protolab/pkg/dhcp"
	"github.com/pavel-gr/protolab/pkg/wire"
)

// ClientState tracks the client's position in the DORA exchange
type ClientState int

// Client states, in exchange order
const (
	StateInit ClientState = iota
	StateDiscoverSent
	StateOfferReceived
	StateRequestSent
	StateAckReceived
)

// String returns the state name for logs.
func (s ClientState) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateDiscoverSent:
		return "DISCOVER_SENT"
	case StateOfferReceived:
		return "OFFER_RECEIVED"
	case StateRequestSent:
		return "REQUEST_SENT"
	case StateAckReceived:
		return "ACK_RECEIVED"
	default:
		return fmt.Sprintf("STATE(%d)", int(s))
	}
}

// Lease is the result of a completed exchange.
type Lease struct {
	XID        uint32
	Address    [4]byte
	SubnetMask [4]byte
	Router     [4]byte
	DNSServer  [4]byte
	ServerID   [4]byte
	LeaseTime  uint32
}

// ClientConfig configures the client role.
type ClientConfig struct {
	MAC        [6]byte
	ServerAddr net.Addr      // where DISCOVER and REQUEST are sent
	Timeout    time.Duration // bound for each awaited reply
}

// Client drives the client half of the exchange over an injected transport.
type Client struct {
	cfg       ClientConfig
	transport Transport
	state     ClientState
}

// NewClient creates a client in the INIT state.
func NewClient(cfg ClientConfig, transport Transport) *Client {
	return &Client{
		cfg:       cfg,
		transport: transport,
		state:     StateInit,
	}
}

// State returns the client's current exchange state.
func (c *Client) State() ClientState {
	return c.state
}

// Run performs the full DORA exchange and returns the confirmed lease. A
// lost DISCOVER or REQUEST is not retried: the bounded wait elapses and the
// exchange fails with ErrTimeout.
func (c *Client) Run(ctx context.Context) (*Lease, error) {
	discover := dhcp.NewDiscover(c.cfg.MAC)
	if err := c.transport.Send(discover.ToBytes(), c.cfg.ServerAddr); err != nil {
		return nil, fmt.Errorf("failed to send DISCOVER: %w", err)
	}
	c.state = StateDiscoverSent
	log.Printf("client: sent DISCOVER xid=0x%08X", discover.XID)

	offer, err := c.awaitReply(ctx, discover.XID, dhcp.DHCP_OFFER)
	if err != nil {
		return nil, fmt.Errorf("waiting for OFFER: %w", err)
	}
	c.state = StateOfferReceived
	log.Printf("client: received OFFER of %s from %s",
		wire.IPv4String(offer.YIAddr[:], 0), wire.IPv4String(offer.ServerID[:], 0))

	request := dhcp.NewRequest(discover, offer.YIAddr, offer.ServerID)
	if err := c.transport.Send(request.ToBytes(), c.cfg.ServerAddr); err != nil {
		return nil, fmt.Errorf("failed to send REQUEST: %w", err)
	}
	c.state = StateRequestSent
	log.Printf("client: sent REQUEST for %s", wire.IPv4String(request.RequestedIP[:], 0))

	ack, err := c.awaitReply(ctx, discover.XID, dhcp.DHCP_ACK)
	if err != nil {
		return nil, fmt.Errorf("waiting for ACK: %w", err)
	}
	c.state = StateAckReceived
	log.Printf("client: received ACK, lease of %s for %d seconds",
		wire.IPv4String(ack.YIAddr[:], 0), ack.LeaseTime)

	return &Lease{
		XID:        ack.XID,
		Address:    ack.YIAddr,
		SubnetMask: ack.SubnetMask,
		Router:     ack.Router,
		DNSServer:  ack.DNSServer,
		ServerID:   ack.ServerID,
		LeaseTime:  ack.LeaseTime,
	}, nil
}

// awaitReply receives until a message with the exchange's xid and the
// expected type arrives, the bounded wait elapses, or a correlated message
// of the wrong type shows up. Undecodable datagrams and foreign xids are
// logged and ignored; malformed traffic on a shared port is expected.
func (c *Client) awaitReply(ctx context.Context, xid uint32, expected dhcp.MessageType) (*dhcp.Message, error) {
	deadline := time.Now().Add(c.cfg.Timeout)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrTimeout
		}

		payload, _, err := c.transport.Receive(remaining)
		if err != nil {
			return nil, err
		}

		msg, err := dhcp.FromBytes(payload)
		if err != nil {
			log.Printf("client: ignoring undecodable datagram: %v", err)
			continue
		}
		if msg.XID != xid {
			log.Printf("client: ignoring foreign xid 0x%08X", msg.XID)
			continue
		}
		if msg.Type != expected {
			return nil, fmt.Errorf("got %s while waiting for %s: %w",
				msg.Type, expected, ErrUnexpectedType)
		}

		return msg, nil
	}
}
