// Package dorasim drives the simulated four-message DHCP exchange:
// DISCOVER, OFFER, REQUEST, ACK. The client and server roles are
// independent actors talking over an injected datagram transport; the
// transport is unreliable by contract, so both roles treat timeouts and
// undecodable traffic as normal events.
package dorasim

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/pavel-gr/protolab/pkg/dhcp"
)

var (
	// ErrTimeout is returned when no datagram arrives within the bound.
	ErrTimeout = errors.New("receive timed out")

	// ErrUnexpectedType is returned when a decoded DHCP message does not
	// match the expected next transition.
	ErrUnexpectedType = errors.New("unexpected dhcp message type")
)

// Transport carries raw datagrams between the simulated roles. A send may
// be lost; a receive blocks for at most the given timeout and reports
// ErrTimeout when nothing arrived.
type Transport interface {
	Send(payload []byte, addr net.Addr) error
	Receive(timeout time.Duration) ([]byte, net.Addr, error)
	Close() error
}

// UDPTransport implements Transport over a UDP socket bound to a
// non-privileged port.
type UDPTransport struct {
	conn *net.UDPConn
}

// NewUDPTransport binds a UDP socket on the given address, e.g.
// "127.0.0.1:6700". Port 0 picks a free port.
func NewUDPTransport(listenAddr string) (*UDPTransport, error) {
	addr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listen address %s: %w", listenAddr, err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", listenAddr, err)
	}

	return &UDPTransport{conn: conn}, nil
}

// LocalAddr returns the bound address, useful when the port was 0.
func (t *UDPTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// Send transmits one datagram to addr.
func (t *UDPTransport) Send(payload []byte, addr net.Addr) error {
	if _, err := t.conn.WriteTo(payload, addr); err != nil {
		return fmt.Errorf("failed to send datagram: %w", err)
	}
	return nil
}

// Receive waits up to timeout for one datagram. The deadline expiring is
// reported as ErrTimeout, not a failure.
func (t *UDPTransport) Receive(timeout time.Duration) ([]byte, net.Addr, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	buffer := make([]byte, dhcp.PacketSize)
	size, addr, err := t.conn.ReadFrom(buffer)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil, ErrTimeout
		}
		return nil, nil, fmt.Errorf("failed to receive datagram: %w", err)
	}

	return buffer[:size], addr, nil
}

// Close releases the socket. Blocked receives return an error afterwards.
func (t *UDPTransport) Close() error {
	return t.conn.Close()
}

var _ Transport = (*UDPTransport)(nil)
