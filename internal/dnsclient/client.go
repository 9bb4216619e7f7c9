// Package dnsclient sends DNS queries over UDP and decodes the replies.
package dnsclient

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/pavel-gr/protolab/pkg/dns"
	"github.com/pavel-gr/protolab/pkg/wire"
)

// Config configures the client.
type Config struct {
	Server     string        // host:port of the upstream server
	Timeout    time.Duration // per-attempt bound when ctx has no deadline
	MaxRetries int
	Verbose    bool // hex-dump every packet sent and received
}

// Client resolves single questions against one upstream server.
type Client struct {
	config Config
}

// NewClient creates a client for the configured server.
func NewClient(config Config) *Client {
	return &Client{config: config}
}

// Resolve sends a query for the given domain and type and returns the decoded
// response. Failed attempts are retried with a growing backoff up to
// MaxRetries additional tries.
func (c *Client) Resolve(ctx context.Context, domain string, qtype dns.DNSType) (*dns.Response, error) {
	query := dns.NewQuery(domain, qtype)

	packet, err := query.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		response, err := c.exchange(ctx, query, packet)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if attempt == c.config.MaxRetries {
			break
		}

		// Wait before retrying (exponential backoff)
		select {
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("query for %s failed after %d attempts: %w",
		domain, c.config.MaxRetries+1, lastErr)
}

// exchange performs one send/receive round trip.
func (c *Client) exchange(ctx context.Context, query *dns.Query, packet []byte) (*dns.Response, error) {
	serverAddr, err := net.ResolveUDPAddr("udp", c.config.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve server address %s: %w", c.config.Server, err)
	}

	conn, err := net.DialUDP("udp", nil, serverAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.config.Server, err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	if c.config.Verbose {
		log.Printf("sending %d bytes to %s:\n%s", len(packet), serverAddr, wire.HexDump(packet))
	}

	if _, err := conn.Write(packet); err != nil {
		return nil, fmt.Errorf("failed to send query: %w", err)
	}

	buffer := make([]byte, 4096)
	size, err := conn.Read(buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to receive response: %w", err)
	}

	if c.config.Verbose {
		log.Printf("received %d bytes:\n%s", size, wire.HexDump(buffer[:size]))
	}

	response, err := dns.DecodeResponse(buffer[:size])
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if response.Header.ID != query.ID {
		return nil, fmt.Errorf("response ID 0x%04X does not match query ID 0x%04X",
			response.Header.ID, query.ID)
	}

	return response, nil
}
