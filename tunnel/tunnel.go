// Package tunnel reaches a game server that sits behind an SSH bastion.
// The SSH implementation is backed by golang.org/x/crypto/ssh.
package tunnel

import (
	"context"
	"net"
)

// Tunnel is a gateway session through which connections to the game
// server are forwarded.
type Tunnel interface {
	// Connect opens the session to the gateway.
	Connect(ctx context.Context) error

	// Dial opens a forwarded connection to address.  It fails with
	// ErrNotConnected before Connect.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close ends the gateway session.
	Close() error

	// IsAlive reports whether the gateway session is still up.
	IsAlive() bool
}
