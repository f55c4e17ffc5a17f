package transport

import (
	"context"
	"net"
	"time"
)

// TCPDialer opens a direct TCP connection to the game server.
type TCPDialer struct {
	Timeout time.Duration
	// KeepAlive is the TCP keepalive period.  0 uses the Go default,
	// negative disables keepalives.
	KeepAlive time.Duration
}

// Dial connects to address.  An empty network means "tcp".
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if network == "" {
		network = "tcp"
	}
	nd := net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}
	conn, err := nd.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		// Commands are tiny and strictly alternate with replies.
		tc.SetNoDelay(true) //nolint:errcheck
	}
	return conn, nil
}

// Close is a no-op; a TCPDialer holds no resources between dials.
func (d *TCPDialer) Close() error { return nil }
