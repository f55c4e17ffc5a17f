// Package transport owns the byte stream between the client and a game
// server.  A Dialer decides how the stream is reached (plain TCP or
// through an SSH gateway); a Link frames it into lines.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections.  Implementations include
// a plain TCP dialer and an SSH-tunnelled dialer that routes traffic
// through a bastion host.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}
