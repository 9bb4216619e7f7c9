package dorasim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/pavel-gr/protolab/pkg/dhcp"
	"github.com/pavel-gr/protolab/pkg/wire"
)

// ServerConfig configures the single lease the server hands out.
type ServerConfig struct {
	OfferedIP  [4]byte
	ServerIP   [4]byte
	SubnetMask [4]byte
	Router     [4]byte
	DNSServer  [4]byte
	LeaseTime  uint32
	Timeout    time.Duration // per-receive bound, not a limit on the whole exchange
}

// Server answers exactly one DISCOVER and one REQUEST, then stops. It keeps
// no lease table: every exchange is offered the same configured address.
type Server struct {
	cfg       ServerConfig
	transport Transport
}

// NewServer creates a server over the given transport.
func NewServer(cfg ServerConfig, transport Transport) *Server {
	return &Server{cfg: cfg, transport: transport}
}

// Run serves one full exchange. Receive timeouts are tolerated and the wait
// continues until ctx is cancelled; undecodable or out-of-order messages are
// logged and ignored.
func (s *Server) Run(ctx context.Context) error {
	discover, addr, err := s.awaitMessage(ctx, dhcp.DHCP_DISCOVER, nil)
	if err != nil {
		return fmt.Errorf("waiting for DISCOVER: %w", err)
	}
	log.Printf("server: DISCOVER from %s xid=0x%08X", discover.MACString(), discover.XID)

	offer := dhcp.NewOffer(discover, s.offerParams())
	if err := s.transport.Send(offer.ToBytes(), addr); err != nil {
		return fmt.Errorf("failed to send OFFER: %w", err)
	}
	log.Printf("server: offered %s to %s", wire.IPv4String(offer.YIAddr[:], 0), discover.MACString())

	request, addr, err := s.awaitMessage(ctx, dhcp.DHCP_REQUEST, &discover.XID)
	if err != nil {
		return fmt.Errorf("waiting for REQUEST: %w", err)
	}
	log.Printf("server: REQUEST for %s", wire.IPv4String(request.RequestedIP[:], 0))

	ack := dhcp.NewAck(request, s.offerParams())
	if err := s.transport.Send(ack.ToBytes(), addr); err != nil {
		return fmt.Errorf("failed to send ACK: %w", err)
	}
	log.Printf("server: acknowledged %s, exchange complete", wire.IPv4String(ack.YIAddr[:], 0))

	return nil
}

func (s *Server) offerParams() dhcp.OfferParams {
	return dhcp.OfferParams{
		OfferedIP:  s.cfg.OfferedIP,
		ServerIP:   s.cfg.ServerIP,
		SubnetMask: s.cfg.SubnetMask,
		Router:     s.cfg.Router,
		DNSServer:  s.cfg.DNSServer,
		LeaseTime:  s.cfg.LeaseTime,
	}
}

// awaitMessage receives until a message of the wanted type arrives. When xid
// is non-nil only messages from that exchange are accepted.
func (s *Server) awaitMessage(ctx context.Context, want dhcp.MessageType, xid *uint32) (*dhcp.Message, net.Addr, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		payload, addr, err := s.transport.Receive(s.cfg.Timeout)
		if errors.Is(err, ErrTimeout) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		msg, err := dhcp.FromBytes(payload)
		if err != nil {
			log.Printf("server: ignoring undecodable datagram: %v", err)
			continue
		}
		if msg.Type != want {
			log.Printf("server: ignoring %s while waiting for %s", msg.Type, want)
			continue
		}
		if xid != nil && msg.XID != *xid {
			log.Printf("server: ignoring foreign xid 0x%08X", msg.XID)
			continue
		}

		return msg, addr, nil
	}
}
